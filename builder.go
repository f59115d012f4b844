package guard

import (
	"errors"
	"math/rand/v2"

	"github.com/redis/go-redis/v9"

	"github.com/sessionkit/guard/attempts"
	"github.com/sessionkit/guard/password"
	"github.com/sessionkit/guard/remember"
)

// Builder defines a public type used by guard APIs.
//
// Builder instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Builder struct {
	config Config
	redis  *redis.Client

	provider     UserProvider
	hasher       PasswordHasher
	tokenStore   remember.Store
	attemptStore AttemptStore
	eventSink    EventSink
	purgeRand    func() float64

	built bool
}

// New creates a Builder seeded with the default configuration.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the builder's configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithRedis supplies the client backing the default remember-token and
// attempt-log stores.
func (b *Builder) WithRedis(client *redis.Client) *Builder {
	b.redis = client
	return b
}

// WithUserProvider supplies the persistence provider. Required.
func (b *Builder) WithUserProvider(provider UserProvider) *Builder {
	b.provider = provider
	return b
}

// WithHasher overrides the default Argon2id password hasher.
func (b *Builder) WithHasher(hasher PasswordHasher) *Builder {
	b.hasher = hasher
	return b
}

// WithRememberStore overrides the default Redis remember-token store.
func (b *Builder) WithRememberStore(store remember.Store) *Builder {
	b.tokenStore = store
	return b
}

// WithAttemptStore overrides the default Redis attempt-log store.
func (b *Builder) WithAttemptStore(store AttemptStore) *Builder {
	b.attemptStore = store
	return b
}

// WithEventSink supplies the lifecycle notification sink.
func (b *Builder) WithEventSink(sink EventSink) *Builder {
	b.eventSink = sink
	return b
}

// WithPurgeRand overrides the random source driving the probabilistic
// expired-token purge. The function must return values in [0, 1); tests use
// this for deterministic purge behavior.
func (b *Builder) WithPurgeRand(f func() float64) *Builder {
	b.purgeRand = f
	return b
}

// Build validates the configuration, wires defaults, and returns the
// immutable Engine. A Builder is single-use.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, ErrBuilderUsed
	}

	cfg := b.config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if b.provider == nil {
		return nil, errors.New("user provider required")
	}

	hasher := b.hasher
	if hasher == nil {
		var err error
		hasher, err = password.NewArgon2(password.Config{
			Memory:      cfg.Password.Memory,
			Time:        cfg.Password.Time,
			Parallelism: cfg.Password.Parallelism,
			SaltLength:  cfg.Password.SaltLength,
			KeyLength:   cfg.Password.KeyLength,
		})
		if err != nil {
			return nil, err
		}
	}

	tokenStore := b.tokenStore
	attemptStore := b.attemptStore
	if tokenStore == nil || attemptStore == nil {
		if b.redis == nil {
			return nil, errors.New("redis client required unless remember and attempt stores are provided")
		}
		if tokenStore == nil {
			tokenStore = remember.NewRedisStore(b.redis, cfg.RedisPrefix)
		}
		if attemptStore == nil {
			attemptStore = attempts.NewRedisStore(b.redis, cfg.RedisPrefix)
		}
	}

	purgeRand := b.purgeRand
	if purgeRand == nil {
		purgeRand = rand.Float64
	}

	b.built = true

	return &Engine{
		config:    cfg,
		provider:  b.provider,
		hasher:    hasher,
		tokens:    remember.NewManager(tokenStore, cfg.Remember.Length),
		attempts:  attemptStore,
		events:    newEventDispatcher(cfg.Events, b.eventSink),
		purgeRand: purgeRand,
	}, nil
}
