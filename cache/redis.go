package cache

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore implements Store on a shared Redis instance so multiple API
// replicas see the same invalidations. Every failure degrades to a miss or a
// no-op; Redis being down must not take order mutations down with it.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to the given address and verifies the connection.
func NewRedisStore(addr, password string, db int) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}

	log.Printf("Redis cache connected at %s", addr)
	return &RedisStore{client: client}, nil
}

// Get returns the cached value for key, treating errors as misses.
func (r *RedisStore) Get(key string) ([]byte, bool) {
	b, err := r.client.Get(context.Background(), key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		log.Printf("cache: redis get %s failed: %v", key, err)
		return nil, false
	}
	return b, true
}

// Set stores value under key for the given TTL.
func (r *RedisStore) Set(key string, value []byte, ttl time.Duration) {
	if err := r.client.Set(context.Background(), key, value, ttl).Err(); err != nil {
		log.Printf("cache: redis set %s failed: %v", key, err)
	}
}

// Delete removes key.
func (r *RedisStore) Delete(key string) {
	if err := r.client.Del(context.Background(), key).Err(); err != nil {
		log.Printf("cache: redis del %s failed: %v", key, err)
	}
}

// DeletePattern removes every key containing substr using SCAN, so large
// keyspaces are not blocked by a KEYS call.
func (r *RedisStore) DeletePattern(substr string) {
	ctx := context.Background()
	iter := r.client.Scan(ctx, 0, "*"+substr+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := r.client.Del(ctx, iter.Val()).Err(); err != nil {
			log.Printf("cache: redis del %s failed: %v", iter.Val(), err)
		}
	}
	if err := iter.Err(); err != nil {
		log.Printf("cache: redis scan %q failed: %v", substr, err)
	}
}

// Flush clears the whole database.
func (r *RedisStore) Flush() {
	if err := r.client.FlushDB(context.Background()).Err(); err != nil {
		log.Printf("cache: redis flushdb failed: %v", err)
	}
}
