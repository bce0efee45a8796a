package aap

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fivetwenty-io/aap-client/internal/constants"
)

// CacheType selects where autocomplete results are kept.
type CacheType string

const (
	// CacheTypeMemory keeps results in the current process.
	CacheTypeMemory CacheType = "memory"

	// CacheTypeNATS shares results through a JetStream key/value bucket,
	// with a memory tier in front.
	CacheTypeNATS CacheType = "nats"

	// CacheTypeNone turns caching off.
	CacheTypeNone CacheType = "none"
)

// Static errors for err113 compliance.
var (
	ErrNATSConfigRequired   = errors.New("NATS configuration required for NATS cache")
	ErrUnsupportedCacheType = errors.New("unsupported cache type")
	ErrCacheDisabled        = errors.New("cache disabled")
)

// ParseCacheType reads a cache type as written in configuration files and
// flags. An empty value selects the memory cache.
func ParseCacheType(value string) (CacheType, error) {
	cacheType := CacheType(strings.ToLower(strings.TrimSpace(value)))

	switch cacheType {
	case "":
		return CacheTypeMemory, nil
	case CacheTypeMemory, CacheTypeNATS, CacheTypeNone:
		return cacheType, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedCacheType, value)
	}
}

// CacheConfig describes the autocomplete cache to build.
type CacheConfig struct {
	Type CacheType

	// MaxEntries bounds the memory tier.
	MaxEntries int

	// TTL is used by the NATS bucket when NATS.TTL is not set.
	TTL time.Duration

	NATS *NATSKVConfig
}

// DefaultCacheConfig returns an in-memory cache configuration.
func DefaultCacheConfig() *CacheConfig {
	return &CacheConfig{
		Type:       CacheTypeMemory,
		MaxEntries: constants.DefaultCacheSize,
		TTL:        constants.DefaultCacheTTL,
	}
}

// NewCacheFromConfig builds the cache described by config. A nil config
// selects DefaultCacheConfig.
func NewCacheFromConfig(config *CacheConfig) (Cache, error) {
	if config == nil {
		config = DefaultCacheConfig()
	}

	cacheType, err := ParseCacheType(string(config.Type))
	if err != nil {
		return nil, err
	}

	maxEntries := config.MaxEntries
	if maxEntries <= 0 {
		maxEntries = constants.DefaultCacheSize
	}

	switch cacheType {
	case CacheTypeNone:
		return NewDisabledCache(), nil
	case CacheTypeNATS:
		if config.NATS == nil {
			return nil, ErrNATSConfigRequired
		}

		natsConfig := *config.NATS
		if natsConfig.TTL == 0 {
			natsConfig.TTL = config.TTL
		}

		shared, err := NewNATSKVCache(&natsConfig)
		if err != nil {
			return nil, err
		}

		return NewTieredCache(NewMemoryCache(maxEntries), shared), nil
	default:
		return NewMemoryCache(maxEntries), nil
	}
}

// NewEntry wraps data in an entry expiring after ttl. A ttl of zero never
// expires.
func NewEntry(data []byte, ttl time.Duration) *CacheEntry {
	entry := &CacheEntry{Data: data}
	if ttl > 0 {
		entry.ExpiresAt = time.Now().Add(ttl)
	}

	return entry
}

// DisabledCache stores nothing. Every lookup misses with ErrCacheDisabled.
type DisabledCache struct{}

// NewDisabledCache creates a cache that stores nothing.
func NewDisabledCache() *DisabledCache {
	return &DisabledCache{}
}

func (DisabledCache) Get(context.Context, string) (*CacheEntry, error) { return nil, ErrCacheDisabled }

func (DisabledCache) Set(context.Context, string, *CacheEntry) error { return nil }

func (DisabledCache) Delete(context.Context, string) error { return nil }

func (DisabledCache) Clear(context.Context) error { return nil }

func (DisabledCache) Has(context.Context, string) bool { return false }

// TieredCache reads through its tiers in order and refills the faster tiers
// on a hit further down. Writes go to every tier.
type TieredCache struct {
	tiers []Cache
}

// NewTieredCache creates a cache over tiers, fastest first.
func NewTieredCache(tiers ...Cache) *TieredCache {
	return &TieredCache{tiers: tiers}
}

// Get returns the entry from the first tier holding it.
func (t *TieredCache) Get(ctx context.Context, key string) (*CacheEntry, error) {
	for depth, tier := range t.tiers {
		entry, err := tier.Get(ctx, key)
		if err != nil {
			continue
		}

		for _, faster := range t.tiers[:depth] {
			_ = faster.Set(ctx, key, entry)
		}

		return entry, nil
	}

	return nil, ErrCacheKeyNotFound
}

// Set stores entry in every tier.
func (t *TieredCache) Set(ctx context.Context, key string, entry *CacheEntry) error {
	return t.each(func(tier Cache) error { return tier.Set(ctx, key, entry) })
}

// Delete removes key from every tier.
func (t *TieredCache) Delete(ctx context.Context, key string) error {
	return t.each(func(tier Cache) error { return tier.Delete(ctx, key) })
}

// Clear empties every tier.
func (t *TieredCache) Clear(ctx context.Context) error {
	return t.each(func(tier Cache) error { return tier.Clear(ctx) })
}

// Has reports whether any tier holds key.
func (t *TieredCache) Has(ctx context.Context, key string) bool {
	for _, tier := range t.tiers {
		if tier.Has(ctx, key) {
			return true
		}
	}

	return false
}

// Close releases tiers that hold a connection.
func (t *TieredCache) Close() {
	for _, tier := range t.tiers {
		if closer, ok := tier.(interface{ Close() }); ok {
			closer.Close()
		}
	}
}

// each applies fn to all tiers, even after a failure.
func (t *TieredCache) each(fn func(Cache) error) error {
	errs := make([]error, 0, len(t.tiers))
	for _, tier := range t.tiers {
		errs = append(errs, fn(tier))
	}

	return errors.Join(errs...)
}
