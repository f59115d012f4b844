// Package attempts persists the login-attempt audit log. Every
// authentication attempt, successful or not, is appended here exactly once
// by the engine; rows are never mutated afterwards.
package attempts
