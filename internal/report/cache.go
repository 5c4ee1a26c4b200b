package report

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/zezinho10632/DouglasApi/pkg/logger"
	"github.com/zezinho10632/DouglasApi/pkg/redis"
)

// Cache keeps rendered report bodies per sector.
// Entries are JSON documents so aggregated ids survive the round trip.
// A nil Cache or a disabled Redis client always builds fresh.
type Cache struct {
	cache  *redis.Cache
	ttl    time.Duration
	logger *logger.Logger
}

// NewCache creates a report cache with the given TTL
func NewCache(cache *redis.Cache, ttl time.Duration, log *logger.Logger) *Cache {
	if ttl <= 0 {
		ttl = redis.TTLShort
	}
	return &Cache{
		cache:  cache,
		ttl:    ttl,
		logger: log.WithFields(map[string]interface{}{"module": "report_cache"}),
	}
}

// Fetch returns the cached body stored under (sectorID, kind, query),
// calling build and storing its JSON encoding on a miss
func (c *Cache) Fetch(ctx context.Context, sectorID uuid.UUID, kind, query string, build func() (interface{}, error)) (json.RawMessage, error) {
	if c == nil {
		return encode(build)
	}

	key := redis.ReportKey(sectorID.String(), kind, query)

	var body json.RawMessage
	found, err := c.cache.Get(ctx, key, &body)
	if err != nil {
		c.logger.WithError(err).Warn("Report cache read failed")
	}
	if found {
		return body, nil
	}

	body, err = encode(build)
	if err != nil {
		return nil, err
	}
	if err := c.cache.Set(ctx, key, body, c.ttl); err != nil {
		c.logger.WithError(err).Warn("Report cache write failed")
	}
	return body, nil
}

func encode(build func() (interface{}, error)) (json.RawMessage, error) {
	v, err := build()
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode report: %w", err)
	}
	return data, nil
}

// SectorChanged drops every cached report of the sector
func (c *Cache) SectorChanged(ctx context.Context, sectorID uuid.UUID) {
	if c == nil {
		return
	}
	n, err := c.cache.DeletePattern(ctx, redis.SectorReportPattern(sectorID.String()))
	if err != nil {
		c.logger.WithError(err).WithField("sector_id", sectorID).Warn("Report cache invalidation failed")
		return
	}
	if n > 0 {
		c.logger.WithFields(map[string]interface{}{
			"sector_id": sectorID,
			"keys":      n,
		}).Debug("Report cache invalidated")
	}
}

// Purge drops every cached report and returns how many were removed
func (c *Cache) Purge(ctx context.Context) (int, error) {
	if c == nil {
		return 0, nil
	}
	return c.cache.DeletePattern(ctx, "report:*")
}
