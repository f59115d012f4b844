package guard

import (
	"context"
	"fmt"
	"log"
)

// CheckCredentials validates a raw credential set against the user
// provider: a password plus at least one identifying field is required, the
// password is stripped before lookup, and verification is constant time.
// Validation failures come back as AuthResult values; the error return is
// reserved for provider infrastructure failures.
//
// A malformed credential set and an unmatched lookup produce the same
// ReasonBadAttempt so the response never reveals whether an account exists.
func (e *Engine) CheckCredentials(ctx context.Context, creds Credentials) (AuthResult, error) {
	if e == nil || e.hasher == nil || e.provider == nil {
		return AuthResult{}, ErrEngineNotReady
	}

	if len(creds) < 2 || creds[CredentialPasswordField] == "" {
		return failureResult(ReasonBadAttempt), nil
	}

	plain := creds[CredentialPasswordField]
	fields := make(map[string]string, len(creds)-1)
	for name, value := range creds {
		if name != CredentialPasswordField {
			fields[name] = value
		}
	}

	user, err := e.provider.FindByCredentials(ctx, fields)
	if err != nil {
		return AuthResult{}, fmt.Errorf("guard: credential lookup: %w", err)
	}
	if user == nil {
		return failureResult(ReasonBadAttempt), nil
	}

	ok, err := e.hasher.Verify(plain, user.PasswordHash)
	if err != nil || !ok {
		return failureResult(ReasonInvalidPassword), nil
	}

	if e.config.Password.RehashOnLogin {
		e.upgradeHash(ctx, user, plain)
	}

	return successResult(user), nil
}

// upgradeHash rewrites an outdated stored hash from the just-verified
// plaintext. Best-effort: any failure is logged and the login proceeds.
func (e *Engine) upgradeHash(ctx context.Context, user *UserRecord, plain string) {
	outdated, err := e.hasher.NeedsRehash(user.PasswordHash)
	if err != nil || !outdated {
		return
	}

	upgraded, err := e.hasher.Hash(plain)
	if err != nil {
		log.Print("guard: password hash upgrade generation failed")
		return
	}
	if err := e.provider.UpdatePasswordHash(ctx, user.UserID, upgraded); err != nil {
		log.Print("guard: password hash upgrade update failed")
		return
	}
	user.PasswordHash = upgraded
}

func failureResult(reason FailureReason) AuthResult {
	return AuthResult{Reason: reason}
}

func successResult(user *UserRecord) AuthResult {
	return AuthResult{OK: true, User: user}
}
