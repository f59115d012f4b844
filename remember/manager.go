package remember

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

const (
	selectorSize  = 12 // 96 bits, 24 hex characters
	validatorSize = 20 // 160 bits, 40 hex characters
)

// ErrTokenNotFound covers every redemption failure (unknown selector,
// validator mismatch, expiry) so a caller cannot tell which occurred.
var ErrTokenNotFound = errors.New("remember token not found")

// Token is the persisted remember-me row. ValidatorHash is the hex-encoded
// SHA-256 digest of the validator; the validator itself is never stored.
type Token struct {
	UserID        string
	Selector      string
	ValidatorHash string
	ExpiresAt     time.Time
}

// Expired reports whether the token is past its expiry at the given time.
func (t Token) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// Store is the remember-token persistence contract. FindBySelector returns
// (nil, nil) for an unknown selector. PurgeExpired must be safe to call
// concurrently and redundantly; it returns the number of rows removed.
type Store interface {
	Save(ctx context.Context, token Token) error
	FindBySelector(ctx context.Context, selector string) (*Token, error)
	DeleteBySelector(ctx context.Context, selector string) error
	DeleteAllForUser(ctx context.Context, userID string) error
	PurgeExpired(ctx context.Context) (int, error)
}

// Manager issues, redeems, and revokes remember-me tokens over a [Store].
// It is safe for concurrent use when the store is.
type Manager struct {
	store  Store
	length time.Duration
	now    func() time.Time
	random io.Reader
}

// NewManager creates a Manager whose issued tokens expire after length.
func NewManager(store Store, length time.Duration) *Manager {
	return &Manager{
		store:  store,
		length: length,
		now:    time.Now,
		random: rand.Reader,
	}
}

// Issue stores a fresh token row for userID and returns the opaque
// "selector:validator" string to hand to the caller (typically a cookie).
func (m *Manager) Issue(ctx context.Context, userID string) (string, error) {
	selector, err := randomHex(m.random, selectorSize)
	if err != nil {
		return "", fmt.Errorf("remember: generate selector: %w", err)
	}
	validator, err := randomHex(m.random, validatorSize)
	if err != nil {
		return "", fmt.Errorf("remember: generate validator: %w", err)
	}

	token := Token{
		UserID:        userID,
		Selector:      selector,
		ValidatorHash: hashValidator(validator),
		ExpiresAt:     m.now().Add(m.length),
	}
	if err := m.store.Save(ctx, token); err != nil {
		return "", fmt.Errorf("remember: save token: %w", err)
	}

	return selector + ":" + validator, nil
}

// Redeem validates the presented token and returns the owning user id plus
// a replacement token (rotation-on-use). Unknown selectors, validator
// mismatches, and expired rows all return [ErrTokenNotFound].
func (m *Manager) Redeem(ctx context.Context, token string) (string, string, error) {
	selector, validator, ok := strings.Cut(token, ":")
	if !ok || selector == "" || validator == "" {
		return "", "", ErrTokenNotFound
	}

	row, err := m.store.FindBySelector(ctx, selector)
	if err != nil {
		return "", "", fmt.Errorf("remember: lookup token: %w", err)
	}
	if row == nil {
		return "", "", ErrTokenNotFound
	}

	computed := hashValidator(validator)
	if subtle.ConstantTimeCompare([]byte(computed), []byte(row.ValidatorHash)) != 1 {
		return "", "", ErrTokenNotFound
	}
	if row.Expired(m.now()) {
		_ = m.store.DeleteBySelector(ctx, selector)
		return "", "", ErrTokenNotFound
	}

	// Rotation must not leave the presented token live; a failed delete
	// fails the redemption.
	if err := m.store.DeleteBySelector(ctx, selector); err != nil {
		return "", "", fmt.Errorf("remember: rotate token: %w", err)
	}

	replacement, err := m.Issue(ctx, row.UserID)
	if err != nil {
		return "", "", err
	}

	return row.UserID, replacement, nil
}

// RevokeAll removes every token issued to userID across all devices.
func (m *Manager) RevokeAll(ctx context.Context, userID string) error {
	return m.store.DeleteAllForUser(ctx, userID)
}

// PurgeExpired sweeps rows past expiry and returns how many were removed.
func (m *Manager) PurgeExpired(ctx context.Context) (int, error) {
	return m.store.PurgeExpired(ctx)
}

func hashValidator(validator string) string {
	sum := sha256.Sum256([]byte(validator))
	return hex.EncodeToString(sum[:])
}

func randomHex(r io.Reader, size int) (string, error) {
	buf := make([]byte, size)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
