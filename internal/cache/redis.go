// Package cache stores short-lived JSON snapshots (profile pages) in Redis.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Olprog59/go-familyhub/internal/ports"
	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

var _ ports.Cache = (*Redis)(nil)

// Redis implements ports.Cache on a Redis server / Implémente ports.Cache sur Redis
type Redis struct {
	client *redis.Client
	prefix string
}

// NewRedis connects and pings the server / Se connecte et vérifie le serveur
// redisURL accepts redis:// URLs or a bare host:port.
func NewRedis(ctx context.Context, redisURL, prefix string) (*Redis, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		opt = &redis.Options{Addr: redisURL}
	}

	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisWithClient(client, prefix), nil
}

// NewRedisWithClient wraps an existing client / Enveloppe un client existant
func NewRedisWithClient(client *redis.Client, prefix string) *Redis {
	return &Redis{client: client, prefix: prefix}
}

func (r *Redis) key(k string) string {
	return r.prefix + k
}

// GetJSON decodes a cached value into dest / Décode une valeur du cache dans dest
func (r *Redis) GetJSON(ctx context.Context, key string, dest any) error {
	data, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return ports.ErrCacheMiss
	}
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("failed to unmarshal cached %s: %w", key, err)
	}
	return nil
}

// SetJSON stores value as JSON with a TTL / Stocke la valeur en JSON avec TTL
func (r *Redis) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	return r.client.Set(ctx, r.key(key), data, ttl).Err()
}

// Delete removes keys / Supprime les clés
func (r *Redis) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = r.key(k)
	}
	return r.client.Del(ctx, full...).Err()
}

// Ping checks the connection / Vérifie la connexion
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the client / Ferme le client
func (r *Redis) Close() error {
	return r.client.Close()
}
