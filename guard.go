package guard

import (
	"context"
	"fmt"
	"log"
	"sort"

	"github.com/sessionkit/guard/remember"
)

// Guard is the per-request session authenticator. It moves one request's
// identity between anonymous and authenticated, persisting the transition
// through the bound [SessionStore]. A Guard is scoped to a single
// request-processing unit and carries no locking; obtain one per request
// via [Engine.Guard].
type Guard struct {
	engine    *Engine
	session   SessionStore
	responder Responder
	user      *UserRecord
}

// Attempt verifies the submitted credentials and, on success, logs the
// matched identity in. The outcome is always audited: a failed attempt
// writes one attempt-log row and emits [EventFailedLogin]; a successful one
// writes a row keyed by the submitted identifier plus a second row written
// by Login keyed by the resolved identity.
func (g *Guard) Attempt(ctx context.Context, creds Credentials, rememberMe bool) (AuthResult, error) {
	result, err := g.engine.CheckCredentials(ctx, creds)
	if err != nil {
		return AuthResult{}, err
	}

	identifier := identifierFromCredentials(creds)

	if !result.OK {
		g.user = nil
		g.engine.recordAttempt(ctx, identifier, false, "")
		g.engine.emitEvent(ctx, EventFailedLogin, "", identifier, rememberMe)
		return result, nil
	}

	g.engine.recordAttempt(ctx, identifier, true, result.User.UserID)
	if err := g.Login(ctx, result.User, rememberMe); err != nil {
		return AuthResult{}, err
	}

	return result, nil
}

// Login establishes session state for an already-verified identity:
// regenerates the session identifier against fixation, writes the identity
// id into the session, disables response caching, optionally issues a
// remember-me cookie, and emits [EventLogin]. Only a session-store failure
// is fatal; remember-token and purge failures are logged and swallowed.
func (g *Guard) Login(ctx context.Context, user *UserRecord, rememberMe bool) error {
	if user == nil {
		return ErrInvalidUser
	}

	g.user = user

	if g.engine.config.Session.RegenerateOnLogin {
		if err := g.session.RegenerateID(ctx, false); err != nil {
			g.user = nil
			g.engine.recordAttempt(ctx, identifierForUser(user), false, user.UserID)
			return fmt.Errorf("guard: session regenerate: %w", err)
		}
	}
	if err := g.session.Set(ctx, g.engine.config.Session.Key, user.UserID); err != nil {
		g.user = nil
		g.engine.recordAttempt(ctx, identifierForUser(user), false, user.UserID)
		return fmt.Errorf("guard: session write: %w", err)
	}

	if g.responder != nil {
		g.responder.NoCache()
	}

	if rememberMe && g.engine.config.Remember.Enabled {
		g.rememberUser(ctx, user.UserID)
	}

	g.engine.recordAttempt(ctx, identifierForUser(user), true, user.UserID)
	g.engine.maybePurge(ctx)
	g.engine.emitEvent(ctx, EventLogin, user.UserID, identifierForUser(user), rememberMe)

	return nil
}

// LoginByID logs in the identity with the given id without a password
// check. An unknown id is caller misuse and returns [ErrInvalidUser].
func (g *Guard) LoginByID(ctx context.Context, id string, rememberMe bool) error {
	user, err := g.engine.provider.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("guard: identity lookup: %w", err)
	}
	if user == nil {
		g.engine.recordAttempt(ctx, id, false, id)
		return ErrInvalidUser
	}

	return g.Login(ctx, user, rememberMe)
}

// Logout clears every session key so no residual state survives, forces a
// session-identifier regeneration (the session stays usable for one-shot
// data like flash messages), revokes the identity's remember tokens,
// expires the remember cookie, and emits [EventLogout].
func (g *Guard) Logout(ctx context.Context) error {
	userID := ""
	identifier := ""
	if g.user != nil {
		userID = g.user.UserID
		identifier = identifierForUser(g.user)
	} else {
		id, err := g.session.Get(ctx, g.engine.config.Session.Key)
		if err != nil {
			return fmt.Errorf("guard: session read: %w", err)
		}
		userID = id
	}

	if err := g.session.Clear(ctx); err != nil {
		return fmt.Errorf("guard: session clear: %w", err)
	}
	if err := g.session.RegenerateID(ctx, true); err != nil {
		return fmt.Errorf("guard: session regenerate: %w", err)
	}

	if userID != "" && g.engine.tokens != nil {
		if err := g.engine.tokens.RevokeAll(ctx, userID); err != nil {
			log.Print("guard: remember token revocation failed on logout")
		}
	}
	g.forgetCookie()

	g.engine.emitEvent(ctx, EventLogout, userID, identifier, false)
	g.user = nil

	return nil
}

// LoggedIn reports whether the request is authenticated. A cached identity
// answers immediately; otherwise the session's identity key is resolved
// through the provider and cached on success.
func (g *Guard) LoggedIn(ctx context.Context) bool {
	if g.user != nil {
		return true
	}

	id, err := g.session.Get(ctx, g.engine.config.Session.Key)
	if err != nil || id == "" {
		return false
	}

	user, err := g.engine.provider.FindByID(ctx, id)
	if err != nil || user == nil {
		return false
	}

	g.user = user
	return true
}

// Forget revokes every remember token for the given user id, or for the
// currently authenticated identity when id is empty (a no-op when
// anonymous). Acting on the current identity also expires the cookie.
func (g *Guard) Forget(ctx context.Context, id string) error {
	current := g.user != nil && (id == "" || id == g.user.UserID)
	if id == "" {
		if g.user == nil {
			return nil
		}
		id = g.user.UserID
	}

	if current {
		g.forgetCookie()
	}
	if g.engine.tokens == nil {
		return nil
	}
	return g.engine.tokens.RevokeAll(ctx, id)
}

// User returns the cached in-memory identity without touching the session,
// or nil when anonymous.
func (g *Guard) User() *UserRecord {
	return g.user
}

// RecallRemembered re-establishes a session from a remember-me token
// without a password. The presented token is rotated; the replacement is
// delivered through the responder. Redemption failures return
// [remember.ErrTokenNotFound] and leave session state untouched.
func (g *Guard) RecallRemembered(ctx context.Context, token string) error {
	if g.engine.tokens == nil || !g.engine.config.Remember.Enabled {
		return remember.ErrTokenNotFound
	}

	userID, replacement, err := g.engine.tokens.Redeem(ctx, token)
	if err != nil {
		return err
	}

	user, err := g.engine.provider.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("guard: identity lookup: %w", err)
	}
	if user == nil {
		// The account vanished after issuance; drop its remaining tokens.
		if err := g.engine.tokens.RevokeAll(ctx, userID); err != nil {
			log.Print("guard: remember token revocation failed for removed user")
		}
		return ErrInvalidUser
	}

	if err := g.Login(ctx, user, false); err != nil {
		return err
	}
	g.setRememberCookie(replacement)

	return nil
}

// rememberUser issues a token and schedules its cookie. Best-effort: a
// remember failure must not fail an otherwise successful login.
func (g *Guard) rememberUser(ctx context.Context, userID string) {
	if g.engine.tokens == nil {
		return
	}

	token, err := g.engine.tokens.Issue(ctx, userID)
	if err != nil {
		log.Print("guard: remember token issuance failed")
		return
	}
	g.setRememberCookie(token)
}

func (g *Guard) setRememberCookie(token string) {
	if g.responder == nil {
		return
	}

	cfg := g.engine.config.Remember
	g.responder.SetCookie(RememberCookie{
		Name:     cfg.CookieName,
		Value:    token,
		MaxAge:   int(cfg.Length.Seconds()),
		Domain:   cfg.CookieDomain,
		Path:     cfg.CookiePath,
		Prefix:   cfg.CookiePrefix,
		Secure:   cfg.CookieSecure,
		HTTPOnly: true,
	})
}

func (g *Guard) forgetCookie() {
	if g.responder == nil {
		return
	}

	cfg := g.engine.config.Remember
	g.responder.SetCookie(RememberCookie{
		Name:     cfg.CookieName,
		Value:    "",
		MaxAge:   -1,
		Domain:   cfg.CookieDomain,
		Path:     cfg.CookiePath,
		Prefix:   cfg.CookiePrefix,
		Secure:   cfg.CookieSecure,
		HTTPOnly: true,
	})
}

// identifierFromCredentials picks the audit identifier from a credential
// set, preferring an email-like field over a username-like one. Remaining
// fields are considered in sorted order for determinism.
func identifierFromCredentials(creds Credentials) string {
	if v := creds["email"]; v != "" {
		return v
	}
	if v := creds["username"]; v != "" {
		return v
	}

	names := make([]string, 0, len(creds))
	for name := range creds {
		if name != CredentialPasswordField {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	for _, name := range names {
		if creds[name] != "" {
			return creds[name]
		}
	}
	return ""
}

func identifierForUser(user *UserRecord) string {
	if user.Email != "" {
		return user.Email
	}
	if user.Username != "" {
		return user.Username
	}
	return user.UserID
}
