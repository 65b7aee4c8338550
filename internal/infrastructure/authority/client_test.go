package authority

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hirehub/portal-core/internal/core/domain"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, WithTimeout(time.Second))
}

func TestListPending_SendsCredentialAndDecodes(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/v1/moderation/article/pending" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("Authorization = %q", got)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"items": []map[string]any{{"id": "1", "kind": "article", "status": "PENDING"}},
		})
	})

	items, err := c.ListPending(context.Background(), "tok", domain.KindArticle)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 || items[0].ID != "1" || items[0].Status != domain.StatusPending {
		t.Fatalf("unexpected items: %+v", items)
	}
}

func TestDecide_PostsToDecisionPath(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/moderation/company/42/reject" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"id": "42", "kind": "company", "status": "REJECTED"})
	})

	e, err := c.Decide(context.Background(), "tok", domain.KindCompany, "42", domain.DecisionReject)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.Status != domain.StatusRejected {
		t.Fatalf("status = %s", e.Status)
	}
}

func TestReposition_SendsPositions(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/v1/placements/HOME_MIDDLE/banners/positions" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var body repositionRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if len(body.Positions) != 2 || body.Positions[0].ID != "b" || body.Positions[1].Position != 1 {
			t.Errorf("unexpected positions: %+v", body.Positions)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"banners": []map[string]any{
			{"id": "b", "placement_key": "HOME_MIDDLE", "position": 0},
			{"id": "a", "placement_key": "HOME_MIDDLE", "position": 1},
		}})
	})

	got, err := c.Reposition(context.Background(), "tok", "HOME_MIDDLE", domain.PositionsFromOrder([]string{"b", "a"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0].ID != "b" {
		t.Fatalf("unexpected banners: %+v", got)
	}
}

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{"unauthorized", http.StatusUnauthorized, domain.ErrSessionInvalid},
		{"forbidden", http.StatusForbidden, domain.ErrSessionInvalid},
		{"not found", http.StatusNotFound, domain.ErrStateConflict},
		{"conflict", http.StatusConflict, domain.ErrStateConflict},
		{"server error", http.StatusInternalServerError, domain.ErrTransient},
		{"unavailable", http.StatusServiceUnavailable, domain.ErrTransient},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(`{"error":"nope"}`))
			})
			_, err := c.ListBanners(context.Background(), "tok", "FOOTER")
			if !errors.Is(err, tc.want) {
				t.Fatalf("got %v, want %v", err, tc.want)
			}
		})
	}
}

func TestOtherClientErrorsKeepStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"error":"invalid placement"}`))
	})

	_, err := c.ListBanners(context.Background(), "tok", "footer")
	var ae *Error
	if !errors.As(err, &ae) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if ae.StatusCode != http.StatusUnprocessableEntity || ae.Message != "invalid placement" {
		t.Fatalf("unexpected error: %+v", ae)
	}
	if domain.Classify(err) != domain.FailureUnknown {
		t.Fatalf("classified as %s", domain.Classify(err))
	}
}

func TestTimeoutIsTransient(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c := NewClient(srv.URL, WithTimeout(50*time.Millisecond))
	_, err := c.ListPending(context.Background(), "tok", domain.KindDirectory)
	if !errors.Is(err, domain.ErrTransient) {
		t.Fatalf("got %v, want transient", err)
	}
}

func TestUnreachableIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := NewClient(url, WithTimeout(time.Second))
	_, err := c.Decide(context.Background(), "tok", domain.KindArticle, "1", domain.DecisionApprove)
	if !errors.Is(err, domain.ErrTransient) {
		t.Fatalf("got %v, want transient", err)
	}
}

func TestTruncatedBodyIsTransient(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Length", "512")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"items":[{"id":"1","kind":"art`))
	})

	_, err := c.ListPending(context.Background(), "tok", domain.KindArticle)
	if !errors.Is(err, domain.ErrTransient) {
		t.Fatalf("got %v, want transient", err)
	}
}

func TestMalformedBodyIsNotTransient(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	})

	_, err := c.ListPending(context.Background(), "tok", domain.KindArticle)
	if err == nil || errors.Is(err, domain.ErrTransient) {
		t.Fatalf("got %v, want a non-transient decode error", err)
	}
}
