// Package session provides SessionStore implementations: a Redis-backed
// store for production and an in-memory store for tests and single-process
// embedding. Both support identifier regeneration with data migration,
// which the engine triggers on login and logout to defeat session fixation.
package session
