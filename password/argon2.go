package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"
)

const (
	minMemoryKB    uint32 = 8 * 1024
	minTimeCost    uint32 = 1
	minParallelism uint8  = 1
	minSaltLength  uint32 = 16
	minKeyLength   uint32 = 16
	algorithmID           = "argon2id"
)

// Config holds the Argon2id cost parameters. Raising any of them makes
// previously stored hashes report NeedsRehash on the next verification.
type Config struct {
	Memory      uint32 // in KB
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// Argon2 defines a public type used by guard APIs.
//
// Argon2 instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Argon2 struct {
	config Config
}

// NewArgon2 validates the cost parameters and returns a hasher.
func NewArgon2(cfg Config) (*Argon2, error) {
	switch {
	case cfg.Memory < minMemoryKB:
		return nil, errors.New("password memory must be >= 8192 KB")
	case cfg.Time < minTimeCost:
		return nil, errors.New("password time must be >= 1")
	case cfg.Parallelism < minParallelism:
		return nil, errors.New("password parallelism must be >= 1")
	case cfg.SaltLength < minSaltLength:
		return nil, errors.New("password salt length must be >= 16")
	case cfg.KeyLength < minKeyLength:
		return nil, errors.New("password key length must be >= 16")
	}

	return &Argon2{config: cfg}, nil
}

// Hash derives an Argon2id digest of plain under a fresh random salt and
// encodes it in PHC string format. Raw string bytes are hashed exactly as
// provided (no Unicode normalization).
func (a *Argon2) Hash(plain string) (string, error) {
	if plain == "" {
		return "", errors.New("password must not be empty")
	}

	salt := make([]byte, a.config.SaltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", err
	}

	key := argon2.IDKey(
		[]byte(plain),
		salt,
		a.config.Time,
		a.config.Memory,
		a.config.Parallelism,
		a.config.KeyLength,
	)

	return fmt.Sprintf(
		"$%s$v=%d$m=%d,t=%d,p=%d$%s$%s",
		algorithmID,
		argon2.Version,
		a.config.Memory,
		a.config.Time,
		a.config.Parallelism,
		base64.StdEncoding.EncodeToString(salt),
		base64.StdEncoding.EncodeToString(key),
	), nil
}

// Verify recomputes the digest with the parameters embedded in encoded and
// compares in constant time.
func (a *Argon2) Verify(plain, encoded string) (bool, error) {
	params, err := decodePHC(encoded)
	if err != nil {
		return false, err
	}

	computed := argon2.IDKey(
		[]byte(plain),
		params.salt,
		params.time,
		params.memory,
		params.parallelism,
		uint32(len(params.key)),
	)

	return subtle.ConstantTimeCompare(computed, params.key) == 1, nil
}

// NeedsRehash reports whether encoded was produced with costs below the
// hasher's configured parameters, meaning the hash should be regenerated
// from the plaintext on the next successful verification.
func (a *Argon2) NeedsRehash(encoded string) (bool, error) {
	params, err := decodePHC(encoded)
	if err != nil {
		return false, err
	}

	outdated := a.config.Memory > params.memory ||
		a.config.Time > params.time ||
		a.config.Parallelism > params.parallelism ||
		a.config.KeyLength != uint32(len(params.key))
	return outdated, nil
}

type phcParams struct {
	memory      uint32
	time        uint32
	parallelism uint8
	salt        []byte
	key         []byte
}

func decodePHC(encoded string) (*phcParams, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" {
		return nil, errors.New("invalid PHC format")
	}
	if parts[1] != algorithmID {
		return nil, errors.New("unsupported algorithm")
	}

	version, err := strconv.Atoi(strings.TrimPrefix(parts[2], "v="))
	if !strings.HasPrefix(parts[2], "v=") || err != nil || version != argon2.Version {
		return nil, errors.New("unsupported argon2 version")
	}

	var params phcParams
	seen := map[string]bool{}
	for _, pair := range strings.Split(parts[3], ",") {
		k, v, ok := strings.Cut(pair, "=")
		if !ok || seen[k] {
			return nil, errors.New("invalid parameter entry")
		}
		seen[k] = true

		switch k {
		case "m":
			n, err := strconv.ParseUint(v, 10, 32)
			if err != nil || n < uint64(minMemoryKB) {
				return nil, errors.New("invalid memory parameter")
			}
			params.memory = uint32(n)
		case "t":
			n, err := strconv.ParseUint(v, 10, 32)
			if err != nil || n < uint64(minTimeCost) {
				return nil, errors.New("invalid time parameter")
			}
			params.time = uint32(n)
		case "p":
			n, err := strconv.ParseUint(v, 10, 8)
			if err != nil || n < uint64(minParallelism) {
				return nil, errors.New("invalid parallelism parameter")
			}
			params.parallelism = uint8(n)
		default:
			return nil, errors.New("unsupported parameter")
		}
	}
	if !seen["m"] || !seen["t"] || !seen["p"] {
		return nil, errors.New("missing parameters")
	}

	params.salt, err = base64.StdEncoding.DecodeString(parts[4])
	if err != nil || len(params.salt) < int(minSaltLength) {
		return nil, errors.New("invalid salt")
	}
	params.key, err = base64.StdEncoding.DecodeString(parts[5])
	if err != nil || len(params.key) == 0 {
		return nil, errors.New("invalid key")
	}

	return &params, nil
}
