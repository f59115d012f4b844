package guard

import (
	"context"
	"log"
	"time"

	"github.com/sessionkit/guard/remember"
)

// Engine defines a public type used by guard APIs.
//
// Engine instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
// An Engine is safe to share across goroutines; request-scoped state lives
// on the [Guard] instances it hands out.
type Engine struct {
	config    Config
	provider  UserProvider
	hasher    PasswordHasher
	tokens    *remember.Manager
	attempts  AttemptStore
	events    *eventDispatcher
	purgeRand func() float64
}

// Guard binds the engine to one request-processing unit's session store and
// response layer. The returned Guard caches the authenticated identity and
// must not be shared across concurrent requests. responder may be nil for
// non-HTTP callers.
func (e *Engine) Guard(sess SessionStore, responder Responder) *Guard {
	return &Guard{
		engine:    e,
		session:   sess,
		responder: responder,
	}
}

// Close drains and stops the event dispatcher.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.events != nil {
		e.events.Close()
	}
}

// EventsDropped reports how many lifecycle events were discarded under
// backpressure since the engine was built.
func (e *Engine) EventsDropped() uint64 {
	if e == nil {
		return 0
	}
	return e.events.Dropped()
}

// RememberTokens exposes the remember-token manager for maintenance callers
// (scheduled purges, admin revocation tooling).
func (e *Engine) RememberTokens() *remember.Manager {
	if e == nil {
		return nil
	}
	return e.tokens
}

// recordAttempt appends one audit row. Insert failures are non-fatal to the
// caller's login outcome but are surfaced to the operational log.
func (e *Engine) recordAttempt(ctx context.Context, identifier string, success bool, userID string) {
	if e.attempts == nil {
		return
	}

	_, err := e.attempts.Insert(ctx, LoginAttempt{
		Identifier: identifier,
		Success:    success,
		IPAddress:  clientIPFromContext(ctx),
		UserID:     userID,
		At:         time.Now().UTC(),
	})
	if err != nil {
		log.Print("guard: login attempt record failed")
	}
}

func (e *Engine) emitEvent(ctx context.Context, name, userID, identifier string, rememberMe bool) {
	if e.events == nil {
		return
	}

	e.events.Emit(ctx, Event{
		Timestamp:  time.Now().UTC(),
		Name:       name,
		UserID:     userID,
		Identifier: identifier,
		IP:         clientIPFromContext(ctx),
		Remember:   rememberMe,
	})
}

// maybePurge runs the expired-token sweep on a PurgeChance coin flip so
// table growth stays bounded without a scheduler. Failures are logged and
// swallowed.
func (e *Engine) maybePurge(ctx context.Context) {
	if e.tokens == nil || e.config.Remember.PurgeChance <= 0 {
		return
	}
	if e.purgeRand() >= e.config.Remember.PurgeChance {
		return
	}
	if _, err := e.tokens.PurgeExpired(ctx); err != nil {
		log.Print("guard: remember token purge failed")
	}
}
