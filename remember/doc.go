// Package remember implements the persistent "remember me" token protocol.
//
// A token is two hex strings joined by a colon: a public selector used as
// the lookup key and a secret validator of which only the SHA-256 digest is
// persisted. Redemption rotates the token: the presented row is deleted and
// a replacement selector/validator pair is issued for the same user, so a
// captured token has a single-use replay window.
package remember
