package guard

import (
	"errors"
	"time"
)

// Config defines a public type used by guard APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	RedisPrefix string

	Session  SessionConfig
	Remember RememberConfig
	Password PasswordConfig
	Events   EventsConfig
}

/*
====================================
SESSION CONFIG
====================================
*/

// SessionConfig defines a public type used by guard APIs.
//
// SessionConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type SessionConfig struct {
	// Key is the session field that holds the authenticated identity's id.
	Key string
	// RegenerateOnLogin rotates the session identifier on every login to
	// defeat session fixation. Disable only in non-interactive test
	// harnesses.
	RegenerateOnLogin bool
	// Lifetime bounds the Redis session store's key TTL. Zero means no
	// expiry is applied by this library.
	Lifetime time.Duration
}

/*
====================================
REMEMBER CONFIG
====================================
*/

// RememberConfig defines a public type used by guard APIs.
//
// RememberConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type RememberConfig struct {
	Enabled      bool
	Length       time.Duration
	CookieName   string
	CookieDomain string
	CookiePath   string
	CookiePrefix string
	CookieSecure bool
	// PurgeChance is the probability, per successful login, that expired
	// remember tokens are swept. 0 disables the opportunistic purge.
	PurgeChance float64
}

/*
====================================
PASSWORD CONFIG
====================================
*/

// PasswordConfig defines a public type used by guard APIs.
//
// PasswordConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type PasswordConfig struct {
	Memory      uint32 // in KB
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
	// RehashOnLogin upgrades a stored hash in place when a login verifies
	// against outdated parameters.
	RehashOnLogin bool
}

// EventsConfig defines a public type used by guard APIs.
//
// EventsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type EventsConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

func defaultConfig() Config {
	return Config{
		RedisPrefix: "guard",
		Session: SessionConfig{
			Key:               "logged_in",
			RegenerateOnLogin: true,
		},
		Remember: RememberConfig{
			Enabled:     true,
			Length:      30 * 24 * time.Hour,
			CookieName:  "remember",
			CookiePath:  "/",
			PurgeChance: 0.2,
		},
		Password: PasswordConfig{
			Memory:        64 * 1024,
			Time:          3,
			Parallelism:   2,
			SaltLength:    16,
			KeyLength:     32,
			RehashOnLogin: true,
		},
		Events: EventsConfig{
			Enabled:    true,
			BufferSize: 256,
			DropIfFull: true,
		},
	}
}

// Validate describes the validate operation and its observable behavior.
//
// Validate may return an error when input validation, dependency calls, or security checks fail.
func (c Config) Validate() error {
	if c.Session.Key == "" {
		return errors.New("session identity key required")
	}
	if c.Remember.Enabled {
		if c.Remember.Length <= 0 {
			return errors.New("remember length must be positive")
		}
		if c.Remember.CookieName == "" {
			return errors.New("remember cookie name required")
		}
	}
	if c.Remember.PurgeChance < 0 || c.Remember.PurgeChance > 1 {
		return errors.New("remember purge chance must be within [0, 1]")
	}
	if c.Events.Enabled && c.Events.BufferSize < 0 {
		return errors.New("event buffer size must not be negative")
	}
	return nil
}
