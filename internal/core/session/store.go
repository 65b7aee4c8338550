// Package session holds the identity of one client session and mirrors it to
// persisted storage.
//
// A Store is the only owner of that identity: it is initialised by Load or
// Set and torn down by Clear. A missing, unparsable or incomplete persisted
// record is indistinguishable from "logged out".
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/hirehub/portal-core/internal/core/domain"
	"github.com/hirehub/portal-core/internal/core/ports"
)

const (
	keyPrefix  = "portal:session:"
	DefaultTTL = 24 * time.Hour
)

// record is the persisted shape: {credential, identity}.
type record struct {
	Credential string          `json:"credential" validate:"required"`
	Identity   *identityRecord `json:"identity"   validate:"required"`
}

type identityRecord struct {
	SubjectID string `json:"subject_id" validate:"required"`
	Role      string `json:"role"       validate:"required,oneof=admin recruiter candidate"`
	Onboarded *bool  `json:"onboarded"  validate:"required"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Store is the session holder for a single client session.
type Store struct {
	repo ports.SessionRecordRepository
	key  string
	ttl  time.Duration
	log  zerolog.Logger

	current *domain.Session
	// cleared is set by Clear and reset by Set; while set, Load does not read
	// storage, so a failed delete cannot bring the session back.
	cleared bool
}

// Factory builds Stores that share a repository, TTL and logger.
type Factory struct {
	repo ports.SessionRecordRepository
	ttl  time.Duration
	log  zerolog.Logger
}

// NewFactory returns a Factory. A non-positive ttl falls back to DefaultTTL.
func NewFactory(repo ports.SessionRecordRepository, ttl time.Duration, log zerolog.Logger) *Factory {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Factory{repo: repo, ttl: ttl, log: log}
}

// For returns the Store of the client session identified by clientID.
func (f *Factory) For(clientID string) *Store {
	return &Store{
		repo: f.repo,
		key:  keyPrefix + clientID,
		ttl:  f.ttl,
		log:  f.log.With().Str("session_key", keyPrefix+clientID).Logger(),
	}
}

// Current returns the in-memory session without touching storage.
func (s *Store) Current() (domain.Session, bool) {
	if s.current == nil {
		return domain.Session{}, false
	}
	return *s.current, true
}

// Load returns the current session, reconstructing it from storage when the
// store is empty. It never fails: read faults and corrupt records both yield
// "no session", and a corrupt record is deleted.
func (s *Store) Load(ctx context.Context) (sess domain.Session, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error().Interface("panic", r).Msg("session load panicked, treating as absent")
			s.current = nil
			sess, ok = domain.Session{}, false
		}
	}()

	if s.current != nil {
		return *s.current, true
	}
	if s.cleared {
		return domain.Session{}, false
	}

	raw, err := s.repo.Get(ctx, s.key)
	if errors.Is(err, ports.ErrRecordNotFound) {
		return domain.Session{}, false
	}
	if err != nil {
		s.log.Warn().Err(err).Msg("session read failed, treating as absent")
		return domain.Session{}, false
	}

	decoded, err := decode(raw)
	if err != nil {
		s.log.Info().Err(err).Msg("discarding corrupt session record")
		if delErr := s.repo.Delete(ctx, s.key); delErr != nil {
			s.log.Warn().Err(delErr).Msg("failed to delete corrupt session record")
		}
		return domain.Session{}, false
	}

	s.current = &decoded
	return decoded, true
}

// Set stores and persists identity with its credential, replacing any prior
// session. The in-memory state only changes once persistence succeeded.
func (s *Store) Set(ctx context.Context, identity domain.Identity, credential string) error {
	raw, err := encode(identity, credential)
	if err != nil {
		return err
	}
	if err := s.repo.Put(ctx, s.key, raw, s.ttl); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	s.current = &domain.Session{Identity: identity, Credential: credential}
	s.cleared = false
	s.log.Debug().Str("subject", identity.SubjectID).Str("role", identity.Role.String()).Msg("session set")
	return nil
}

// Clear removes the in-memory and persisted session. Clearing an empty store
// is a no-op. The store reports no session afterwards even when the
// persisted record could not be deleted.
func (s *Store) Clear(ctx context.Context) error {
	s.current = nil
	s.cleared = true
	if err := s.repo.Delete(ctx, s.key); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func encode(identity domain.Identity, credential string) ([]byte, error) {
	onboarded := identity.Onboarded
	rec := record{
		Credential: credential,
		Identity: &identityRecord{
			SubjectID: identity.SubjectID,
			Role:      string(identity.Role),
			Onboarded: &onboarded,
		},
	}
	if err := validate.Struct(rec); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSessionCorrupt, err)
	}
	return json.Marshal(rec)
}

func decode(raw []byte) (domain.Session, error) {
	var rec record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return domain.Session{}, fmt.Errorf("%w: %v", domain.ErrSessionCorrupt, err)
	}
	if err := validate.Struct(rec); err != nil {
		return domain.Session{}, fmt.Errorf("%w: %v", domain.ErrSessionCorrupt, err)
	}
	role, err := domain.ParseRole(rec.Identity.Role)
	if err != nil {
		return domain.Session{}, fmt.Errorf("%w: %v", domain.ErrSessionCorrupt, err)
	}
	return domain.Session{
		Identity: domain.Identity{
			SubjectID: rec.Identity.SubjectID,
			Role:      role,
			Onboarded: *rec.Identity.Onboarded,
		},
		Credential: rec.Credential,
	}, nil
}
