package portal

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hirehub/portal-core/internal/core/domain"
	"github.com/hirehub/portal-core/internal/core/workflow"
)

type reorderRequest struct {
	Order []string `json:"order" validate:"required"`
}

type pendingView struct {
	Kind  domain.EntityKind        `json:"kind"`
	Items []domain.SubmittedEntity `json:"items"`
}

type placementView struct {
	Placement string          `json:"placement"`
	Banners   []domain.Banner `json:"banners"`
}

func (s *Server) moderationEngine(c echo.Context) *workflow.ModerationEngine {
	return workflow.NewModerationEngine(s.moderation, storeFrom(c), s.log)
}

func (s *Server) orderingEngine(c echo.Context) *workflow.OrderingEngine {
	return workflow.NewOrderingEngine(s.ordering, storeFrom(c), s.log)
}

// Pending lists the entities of one kind awaiting a decision.
func (s *Server) Pending(c echo.Context) error {
	kind, err := domain.ParseEntityKind(c.Param("kind"))
	if err != nil {
		return s.fail(c, err, nil)
	}
	items, err := s.moderationEngine(c).ListPending(c.Request().Context(), kind)
	if err != nil {
		return s.fail(c, err, nil)
	}
	return c.JSON(http.StatusOK, pendingView{Kind: kind, Items: items})
}

// AllPending lists the pending entities of every kind.
func (s *Server) AllPending(c echo.Context) error {
	all, err := s.moderationEngine(c).ListAllPending(c.Request().Context())
	if err != nil {
		return s.fail(c, err, nil)
	}
	views := make([]pendingView, 0, len(domain.EntityKinds))
	for _, kind := range domain.EntityKinds {
		views = append(views, pendingView{Kind: kind, Items: all[kind]})
	}
	return c.JSON(http.StatusOK, map[string]any{"pending": views})
}

// Approve approves one pending entity.
func (s *Server) Approve(c echo.Context) error {
	return s.decide(c, domain.DecisionApprove)
}

// Reject rejects one pending entity.
func (s *Server) Reject(c echo.Context) error {
	return s.decide(c, domain.DecisionReject)
}

func (s *Server) decide(c echo.Context, decision domain.Decision) error {
	kind, err := domain.ParseEntityKind(c.Param("kind"))
	if err != nil {
		return s.fail(c, err, nil)
	}
	ctx := c.Request().Context()
	engine := s.moderationEngine(c)

	// The engine lives for this request only, so load its view before
	// staging the decision against it.
	if _, err := engine.ListPending(ctx, kind); err != nil {
		return s.fail(c, err, nil)
	}

	var updated *domain.SubmittedEntity
	if decision == domain.DecisionApprove {
		updated, err = engine.Approve(ctx, kind, c.Param("id"))
	} else {
		updated, err = engine.Reject(ctx, kind, c.Param("id"))
	}
	if err == nil {
		return c.JSON(http.StatusOK, map[string]any{
			"entity":  updated,
			"pending": pendingView{Kind: kind, Items: engine.Pending(kind)},
		})
	}

	// A failed decision was reverted, so the view still lists the entity.
	var current any = pendingView{Kind: kind, Items: engine.Pending(kind)}
	if domain.Classify(err) == domain.FailureConflict {
		// Show what the authority now holds so the admin sees the outcome.
		if items, lerr := engine.ListPending(ctx, kind); lerr == nil {
			current = pendingView{Kind: kind, Items: items}
		}
	}
	return s.fail(c, err, current)
}

// Banners shows the confirmed order of a placement.
func (s *Server) Banners(c echo.Context) error {
	placement, err := domain.ParsePlacementKey(c.Param("placement"))
	if err != nil {
		return s.fail(c, err, nil)
	}
	banners, err := s.orderingEngine(c).Load(c.Request().Context(), placement)
	if err != nil {
		return s.fail(c, err, nil)
	}
	return c.JSON(http.StatusOK, placementView{Placement: placement, Banners: banners})
}

// Reorder persists a new order for a placement. On failure the response
// carries the last confirmed order.
func (s *Server) Reorder(c echo.Context) error {
	placement, err := domain.ParsePlacementKey(c.Param("placement"))
	if err != nil {
		return s.fail(c, err, nil)
	}

	var req reorderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	engine := s.orderingEngine(c)
	banners, err := engine.Reorder(c.Request().Context(), placement, req.Order)
	if err != nil {
		return s.fail(c, err, placementView{Placement: placement, Banners: engine.Order(placement)})
	}
	return c.JSON(http.StatusOK, placementView{Placement: placement, Banners: banners})
}

// View renders a role landing page as JSON.
func (s *Server) View(name string) echo.HandlerFunc {
	return func(c echo.Context) error {
		body := map[string]any{"view": name}
		if store := storeFrom(c); store != nil {
			if sess, ok := store.Current(); ok {
				body["subject"] = sess.Identity.SubjectID
				body["onboarded"] = sess.Identity.Onboarded
			}
		}
		return c.JSON(http.StatusOK, body)
	}
}

// JobPosting is public even though it sits under the recruiter area.
func (s *Server) JobPosting(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{"view": "job_posting", "job_id": c.Param("id")})
}
