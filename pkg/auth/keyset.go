package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/platinummonkey/coffeeshop/pkg/observability"
)

const maxJWKSBytes = 1 << 20

// KeyProvider resolves a token's kid to a verification key
type KeyProvider interface {
	Key(ctx context.Context, kid string) (interface{}, error)
}

// KeySetConfig configures a KeySet
type KeySetConfig struct {
	// URL of the JWKS document
	URL string
	// TTL of cached keys. A TTL below MinRefreshInterval is raised to it, so
	// a key never expires while refetches are throttled.
	TTL time.Duration
	// Size caps the number of cached keys
	Size int
	// MinRefreshInterval throttles refetches triggered by unknown kids. Zero
	// disables throttling.
	MinRefreshInterval time.Duration
	HTTPClient         *http.Client
}

// KeySet fetches signing keys from a JWKS endpoint and caches them by kid.
// A kid that is not cached triggers one refetch, which picks up rotated keys.
type KeySet struct {
	url        string
	client     *http.Client
	cache      *expirable.LRU[string, interface{}]
	minRefresh time.Duration
	logger     *logrus.Logger
	metrics    *observability.Metrics
	otel       *observability.OTelMetrics

	mu        sync.Mutex
	lastFetch time.Time
}

// NewKeySet creates a key set. No request is made until the first lookup.
func NewKeySet(cfg KeySetConfig, logger *logrus.Logger) *KeySet {
	if cfg.TTL <= 0 {
		cfg.TTL = 10 * time.Minute
	}
	if cfg.TTL < cfg.MinRefreshInterval {
		cfg.TTL = cfg.MinRefreshInterval
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{
			Timeout:   10 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}

	return &KeySet{
		url:        cfg.URL,
		client:     cfg.HTTPClient,
		cache:      expirable.NewLRU[string, interface{}](cfg.Size, nil, cfg.TTL),
		minRefresh: cfg.MinRefreshInterval,
		logger:     logger,
	}
}

// WithMetrics records fetches and cache lookups
func (k *KeySet) WithMetrics(metrics *observability.Metrics, otelMetrics *observability.OTelMetrics) *KeySet {
	k.metrics = metrics
	k.otel = otelMetrics
	return k
}

// URL returns the JWKS location
func (k *KeySet) URL() string {
	return k.url
}

// Key returns the verification key for kid. It returns an error wrapping
// ErrKeyNotFound when the identity provider does not publish kid, and a
// plain error when the JWKS document could not be fetched.
func (k *KeySet) Key(ctx context.Context, kid string) (interface{}, error) {
	if key, ok := k.cache.Get(kid); ok {
		k.otel.RecordKeyLookup(ctx, true)
		return key, nil
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	// another request may have refreshed while we waited
	if key, ok := k.cache.Get(kid); ok {
		k.otel.RecordKeyLookup(ctx, true)
		return key, nil
	}
	k.otel.RecordKeyLookup(ctx, false)

	if k.minRefresh > 0 && !k.lastFetch.IsZero() && time.Since(k.lastFetch) < k.minRefresh {
		return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, kid)
	}

	if err := k.refreshLocked(ctx); err != nil {
		return nil, err
	}

	if key, ok := k.cache.Get(kid); ok {
		return key, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, kid)
}

// Refresh refetches the JWKS document and replaces the cached keys
func (k *KeySet) Refresh(ctx context.Context) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.refreshLocked(ctx)
}

// Ping checks that the JWKS endpoint is reachable and well formed
func (k *KeySet) Ping(ctx context.Context) error {
	_, err := k.fetch(ctx)
	return err
}

func (k *KeySet) refreshLocked(ctx context.Context) error {
	doc, err := k.fetch(ctx)
	k.metrics.ObserveJWKSFetch(err)
	if err != nil {
		k.logger.WithError(err).WithField("jwks_url", k.url).Error("Failed to fetch JWKS")
		return err
	}

	k.cache.Purge()
	loaded := 0
	for _, raw := range doc.Keys {
		kid, key, err := parseSigningKey(raw)
		if errors.Is(err, errMissingKID) {
			continue
		}
		if err != nil {
			k.logger.WithError(err).WithField("kid", kid).Warn("Skipping unusable JWK")
			continue
		}
		k.cache.Add(kid, key)
		loaded++
	}
	k.lastFetch = time.Now()

	k.logger.WithFields(logrus.Fields{
		"jwks_url": k.url,
		"keys":     loaded,
	}).Info("Loaded signing keys")
	return nil
}

func (k *KeySet) fetch(ctx context.Context) (*keyDocument, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, k.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build JWKS request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := k.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch JWKS from %s: %w", k.url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("jwks endpoint %s returned status %d", k.url, resp.StatusCode)
	}

	var doc keyDocument
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxJWKSBytes)).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode JWKS from %s: %w", k.url, err)
	}
	return &doc, nil
}
