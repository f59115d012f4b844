// Package password implements the password-hashing primitive used by the
// engine: Argon2id in PHC string format with constant-time verification and
// a NeedsRehash check that drives transparent hash upgrades on login.
package password
