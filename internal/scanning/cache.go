package scanning

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const cacheTimeout = 2 * time.Second

// CachedScanner remembers extraction results in Redis, keyed by a hash of
// the uploaded bytes, so re-submitting the same itinerary skips the model.
type CachedScanner struct {
	next  Scanner
	redis *redis.Client
	ttl   time.Duration
}

// NewCachedScanner wraps next. A ttl <= 0 turns off writes.
func NewCachedScanner(next Scanner, client *redis.Client, ttl time.Duration) *CachedScanner {
	return &CachedScanner{
		next:  next,
		redis: client,
		ttl:   ttl,
	}
}

// ScanItinerary returns the cached result for imageData or scans it.
// Redis failures are logged and never fail the scan.
func (c *CachedScanner) ScanItinerary(imageData []byte, contentType string) (*ItineraryData, error) {
	key := itineraryKey(imageData)

	cached, err := c.get(key)
	switch {
	case err == nil:
		slog.Debug("Itinerary served from cache", "key", key)
		return cached, nil
	case !errors.Is(err, redis.Nil):
		slog.Warn("Failed to read itinerary cache", "key", key, "error", err)
	}

	data, err := c.next.ScanItinerary(imageData, contentType)
	if err != nil {
		return nil, err
	}

	// Incomplete extractions are not cached so a retry reaches the model again
	if data.Departure != "" && data.Arrival != "" {
		if err := c.set(key, data); err != nil {
			slog.Warn("Failed to write itinerary cache", "key", key, "error", err)
		}
	}

	return data, nil
}

func (c *CachedScanner) get(key string) (*ItineraryData, error) {
	ctx, cancel := context.WithTimeout(context.Background(), cacheTimeout)
	defer cancel()

	raw, err := c.redis.Get(ctx, key).Bytes()
	if err != nil {
		return nil, err
	}

	var data ItineraryData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("unmarshaling cached itinerary: %w", err)
	}
	return &data, nil
}

func (c *CachedScanner) set(key string, data *ItineraryData) error {
	if c.ttl <= 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), cacheTimeout)
	defer cancel()

	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshaling itinerary for cache: %w", err)
	}
	if err := c.redis.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set itinerary: %w", err)
	}
	return nil
}

// Close closes the wrapped scanner and the Redis client
func (c *CachedScanner) Close() error {
	return errors.Join(c.next.Close(), c.redis.Close())
}

func itineraryKey(imageData []byte) string {
	sum := sha256.Sum256(imageData)
	return "itinerary:" + hex.EncodeToString(sum[:])
}
