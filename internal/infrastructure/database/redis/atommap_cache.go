package redis

import (
	"context"
	"encoding/json"

	goredis "github.com/redis/go-redis/v9"

	"github.com/turtacn/ChemRxn-Core/internal/infrastructure/monitoring/logging"
	appErrors "github.com/turtacn/ChemRxn-Core/pkg/errors"
	"github.com/turtacn/ChemRxn-Core/pkg/types/common"
)

// ─────────────────────────────────────────────────────────────────────────────
// AtomMapCache
// ─────────────────────────────────────────────────────────────────────────────

// AtomMapCache stores computed atom maps keyed by reaction ID.  An atom map
// only changes when a reaction's geometries change, so entries carry no TTL
// and are dropped by explicit invalidation.
type AtomMapCache struct {
	client *Client
	logger logging.Logger
	prefix string
}

// NewAtomMapCache builds a cache over the shared Redis client.  keyPrefix is
// the application namespace from configuration, e.g. "chemrxn".
func NewAtomMapCache(client *Client, keyPrefix string, log logging.Logger) *AtomMapCache {
	if keyPrefix == "" {
		keyPrefix = "chemrxn"
	}
	return &AtomMapCache{client: client, logger: log, prefix: keyPrefix + ":atommap:"}
}

// Get returns the cached atom map and whether the entry exists.  A missing
// key is not an error.
func (c *AtomMapCache) Get(ctx context.Context, id common.ID) ([]int, bool, error) {
	raw, err := c.client.Get(ctx, c.key(id)).Bytes()
	if err == goredis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrCodeCacheError, "failed to read atom map from cache")
	}

	var atomMap []int
	if err := json.Unmarshal(raw, &atomMap); err != nil {
		// A corrupt entry is treated as a miss after dropping it.
		c.logger.Warn("Dropping corrupt atom map cache entry",
			logging.String("reaction_id", string(id)), logging.Err(err))
		_ = c.client.Del(ctx, c.key(id)).Err()
		return nil, false, nil
	}
	return atomMap, true, nil
}

// Set stores the atom map for a reaction.
func (c *AtomMapCache) Set(ctx context.Context, id common.ID, atomMap []int) error {
	raw, err := json.Marshal(atomMap)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrCodeSerialization, "failed to marshal atom map")
	}
	if err := c.client.Set(ctx, c.key(id), raw, 0).Err(); err != nil {
		return appErrors.Wrap(err, appErrors.ErrCodeCacheError, "failed to write atom map to cache")
	}
	return nil
}

// Invalidate removes the cached atom map for a reaction, if present.
func (c *AtomMapCache) Invalidate(ctx context.Context, id common.ID) error {
	if err := c.client.Del(ctx, c.key(id)).Err(); err != nil {
		return appErrors.Wrap(err, appErrors.ErrCodeCacheError, "failed to invalidate atom map cache entry")
	}
	return nil
}

func (c *AtomMapCache) key(id common.ID) string {
	return c.prefix + string(id)
}
