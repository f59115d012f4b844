// Package guard provides a session-based authentication engine: credential
// verification with transparent hash upgrades, login/logout state transitions
// over a pluggable session store, a selector/validator "remember me" token
// protocol, login-attempt auditing, and lifecycle event emission.
//
// # Architecture boundaries
//
// guard is the public surface. It exposes [Engine], [Builder], [Config],
// [Guard], and value types (AuthResult, Event, LoginAttempt). Backing-store
// implementations live in subpackages (session, remember, attempts) and edge
// adapters in httpio and eventbus; all of them are reachable only through the
// collaborator interfaces declared here.
//
// # What this package must NOT do
//
//   - Store a password or password hash in session state.
//   - Persist a remember-me validator in plaintext (only its SHA-256 digest).
//   - Report whether an account exists: a missing record and a malformed
//     credential set produce the same failure reason.
//
// # Request scoping
//
// An [Engine] is built once and shared. A [Guard] is obtained per
// request-processing unit via [Engine.Guard] and must not be shared across
// concurrent requests; it caches the authenticated identity for the lifetime
// of that one request.
package guard
