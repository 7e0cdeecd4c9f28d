package history

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/arbor-cms/arbor/internal/platform/cache"
	"github.com/arbor-cms/arbor/internal/users"
)

// UserLister lists the users that acted on a page.
type UserLister interface {
	Users(ctx context.Context, pageID int64) ([]users.Choice, error)
}

// CachedUsers keeps the user filter choices of each page in Redis for a
// short time. Redis failures fall back to the source.
type CachedUsers struct {
	source UserLister
	client *redis.Client
	ttl    time.Duration
}

// NewCachedUsers wraps source with a Redis cache.
func NewCachedUsers(source UserLister, client *redis.Client, ttl time.Duration) *CachedUsers {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &CachedUsers{source: source, client: client, ttl: ttl}
}

// Users returns the cached choices of the page, loading them on a miss.
func (c *CachedUsers) Users(ctx context.Context, pageID int64) ([]users.Choice, error) {
	key := usersKey(pageID)
	raw, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var choices []users.Choice
		if json.Unmarshal(raw, &choices) == nil {
			return choices, nil
		}
	}

	choices, err := c.source.Users(ctx, pageID)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(choices); err == nil {
		_ = c.client.Set(ctx, key, data, c.ttl).Err()
	}
	return choices, nil
}

// Invalidate drops the cached choices of a page.
func (c *CachedUsers) Invalidate(ctx context.Context, pageID int64) error {
	err := c.client.Del(ctx, usersKey(pageID)).Err()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	return err
}

func usersKey(pageID int64) string {
	return cache.Key("history", "users", strconv.FormatInt(pageID, 10))
}
