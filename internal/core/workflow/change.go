// Package workflow drives moderation decisions and banner reordering against
// the remote authority on behalf of one client session.
//
// Both engines keep a local view that is updated optimistically. Each
// mutation is an explicit two-phase Change: tentatively applied, then
// committed once the authority confirms or reverted when it does not.
package workflow

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/hirehub/portal-core/internal/core/domain"
)

// Change is a tentatively applied local update.
type Change struct {
	commit func()
	revert func()
	done   bool
}

func newChange(commit, revert func()) *Change {
	return &Change{commit: commit, revert: revert}
}

// Commit finalises the change. Calls after the first Commit or Revert are
// no-ops.
func (c *Change) Commit() {
	if c.done {
		return
	}
	c.done = true
	if c.commit != nil {
		c.commit()
	}
}

// Revert restores the state from before the change was applied.
func (c *Change) Revert() {
	if c.done {
		return
	}
	c.done = true
	if c.revert != nil {
		c.revert()
	}
}

// SessionHolder is the narrow view of the session store the engines need.
type SessionHolder interface {
	Load(ctx context.Context) (domain.Session, bool)
	Clear(ctx context.Context) error
}

// requireAdmin re-checks the admin capability. The guard should already have
// blocked the view; this fails closed regardless.
func requireAdmin(ctx context.Context, holder SessionHolder) (domain.Session, error) {
	sess, ok := holder.Load(ctx)
	if !ok {
		return domain.Session{}, fmt.Errorf("%w: no session", domain.ErrCapabilityDenied)
	}
	if sess.Identity.Role != domain.RoleAdmin {
		return domain.Session{}, fmt.Errorf("%w: role %s", domain.ErrCapabilityDenied, sess.Identity.Role)
	}
	return sess, nil
}

// remoteFailure clears the session when the authority rejected the
// credential, and returns err unchanged.
func remoteFailure(ctx context.Context, holder SessionHolder, log zerolog.Logger, err error) error {
	if errors.Is(err, domain.ErrSessionInvalid) {
		if clearErr := holder.Clear(ctx); clearErr != nil {
			log.Warn().Err(clearErr).Msg("failed to clear rejected session")
		}
	}
	return err
}
