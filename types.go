package guard

import (
	"context"

	"github.com/sessionkit/guard/attempts"
)

// CredentialPasswordField is the Credentials key holding the plaintext
// password. It is stripped from the lookup criteria before the persistence
// provider is consulted and is never persisted anywhere.
const CredentialPasswordField = "password"

// Credentials is the raw field-name → value mapping a caller submits. It
// must contain CredentialPasswordField plus at least one identifying field
// such as "email" or "username". Ephemeral; never stored.
type Credentials map[string]string

// UserRecord is the identity record returned by [UserProvider]. The engine
// borrows it for one request; the provider owns it.
type UserRecord struct {
	UserID       string
	Email        string
	Username     string
	PasswordHash string
}

// FailureReason identifies why a credential check was rejected. The set is
// deliberately small: a missing field and a missing account share
// ReasonBadAttempt so callers cannot probe for account existence.
type FailureReason string

const (
	// ReasonBadAttempt covers malformed credential sets and lookups that
	// matched no record.
	ReasonBadAttempt FailureReason = "badAttempt"
	// ReasonInvalidPassword covers a matched record whose password did not
	// verify.
	ReasonInvalidPassword FailureReason = "invalidPassword"
)

// Message returns the user-facing text for the reason.
func (r FailureReason) Message() string {
	switch r {
	case ReasonBadAttempt:
		return "Unable to log you in. Please check your credentials."
	case ReasonInvalidPassword:
		return "Unable to log you in. Please check your password."
	default:
		return "Unable to log you in."
	}
}

// AuthResult is the outcome of a credential check. When OK is true, User is
// set and Reason is empty; otherwise Reason identifies the failure and User
// is nil.
type AuthResult struct {
	OK     bool
	Reason FailureReason
	User   *UserRecord
}

// LoginAttempt is a single immutable audit row in the attempt log.
type LoginAttempt = attempts.Record

// AttemptStore receives one [LoginAttempt] per authentication attempt.
type AttemptStore = attempts.Store

// UserProvider is the persistence contract callers must implement to
// integrate guard with their user database.
//
// FindByCredentials receives the identifying fields only (the password has
// already been stripped) and must return (nil, nil) when no unique record
// matches. FindByID likewise returns (nil, nil) for an unknown id. Errors
// are reserved for infrastructure failures.
type UserProvider interface {
	FindByCredentials(ctx context.Context, fields map[string]string) (*UserRecord, error)
	FindByID(ctx context.Context, id string) (*UserRecord, error)
	UpdatePasswordHash(ctx context.Context, userID, newHash string) error
}

// PasswordHasher is the password primitive contract. Verify must compare in
// constant time. NeedsRehash reports whether the stored hash was produced
// with outdated parameters and should be regenerated on the next successful
// verification.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, encoded string) (bool, error)
	NeedsRehash(encoded string) (bool, error)
}

// SessionStore is the per-request session key-value contract. Get returns
// ("", nil) for an absent key. Clear removes every key while leaving the
// session usable for subsequent writes. RegenerateID issues a fresh session
// identifier, migrating the current data; destroyOld controls whether the
// old identifier's data is discarded.
type SessionStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
	RegenerateID(ctx context.Context, destroyOld bool) error
}

// RememberCookie describes the remember-me cookie handed to a [Responder].
// MaxAge is in seconds; a negative MaxAge instructs the responder to expire
// the cookie immediately.
type RememberCookie struct {
	Name     string
	Value    string
	MaxAge   int
	Domain   string
	Path     string
	Prefix   string
	Secure   bool
	HTTPOnly bool
}

// Responder is the response-layer contract the engine uses during login and
// logout: delivering or expiring the remember-me cookie and marking the
// response uncacheable. A nil Responder on a [Guard] disables both.
type Responder interface {
	SetCookie(cookie RememberCookie)
	NoCache()
}
