package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"eventure/internal/logger"
	"eventure/internal/models"
)

const identityKeyPrefix = "identity:"

// IdentityCache keeps token-resolved users in Redis for a short TTL
// so repeated requests on the same token skip the store lookup.
// Staleness is bounded by the TTL; deletions are not invalidated early.
type IdentityCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewIdentityCache(client *redis.Client, ttl time.Duration) *IdentityCache {
	return &IdentityCache{Client: client, TTL: ttl}
}

// Get returns the cached user for a token's jti, or nil on a miss.
func (c *IdentityCache) Get(ctx context.Context, jti string) (*models.User, error) {
	if c == nil || c.Client == nil {
		return nil, nil
	}

	payload, err := c.Client.Get(ctx, identityKeyPrefix+jti).Result()
	if err == redis.Nil {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to get identity from Redis: %w", err)
	}

	var user models.User
	if err := json.Unmarshal([]byte(payload), &user); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached identity: %w", err)
	}
	return &user, nil
}

func (c *IdentityCache) Set(ctx context.Context, jti string, user *models.User) error {
	if c == nil || c.Client == nil {
		return nil
	}

	payload, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to marshal identity: %w", err)
	}
	if err := c.Client.Set(ctx, identityKeyPrefix+jti, payload, c.TTL).Err(); err != nil {
		return fmt.Errorf("failed to store identity in Redis: %w", err)
	}
	return nil
}

// InitializeIdentityCache sets up the Redis client backing the
// identity cache and tests the connection.
func InitializeIdentityCache(redisAddr string, log *logger.Logger) (*redis.Client, error) {
	redisClient := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: "",
		DB:       0,
		PoolSize: 10,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := redisClient.Ping(ctx).Result(); err != nil {
		if log != nil {
			log.Error("AUTH", fmt.Sprintf("Failed to connect to Redis at %s: %v", redisAddr, err))
		}
		return nil, err
	}

	if log != nil {
		log.Info("AUTH", fmt.Sprintf("Connected to Redis at %s for identity caching", redisAddr))
	}
	return redisClient, nil
}
