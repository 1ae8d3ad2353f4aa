package maskcache

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisOptions configures a Redis-backed cache.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
	Prefix   string // prepended to every key, default "overlay:"
}

// Redis stores decoded masks in Redis as varint-packed payloads.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedis connects to Redis. The connection is lazy; call Ping to verify
// it.
func NewRedis(opts RedisOptions) *Redis {
	prefix := opts.Prefix
	if prefix == "" {
		prefix = "overlay:"
	}
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	return &Redis{client: client, ttl: opts.TTL, prefix: prefix}
}

// Ping checks that the server is reachable.
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *Redis) Get(ctx context.Context, key string) ([]int64, bool, error) {
	data, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("maskcache: redis get: %w", err)
	}
	px, err := unpack(data)
	if err != nil {
		return nil, false, err
	}
	return px, true, nil
}

func (r *Redis) Set(ctx context.Context, key string, pixels []int64) error {
	if err := r.client.Set(ctx, r.prefix+key, pack(pixels), r.ttl).Err(); err != nil {
		return fmt.Errorf("maskcache: redis set: %w", err)
	}
	return nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}

// pack writes the pixel count followed by each value as a signed varint.
// Mask values are small class indices, so most pixels take one byte.
func pack(pixels []int64) []byte {
	buf := make([]byte, 0, binary.MaxVarintLen64+len(pixels))
	buf = binary.AppendUvarint(buf, uint64(len(pixels)))
	for _, v := range pixels {
		buf = binary.AppendVarint(buf, v)
	}
	return buf
}

func unpack(data []byte) ([]int64, error) {
	n, k := binary.Uvarint(data)
	if k <= 0 || n > uint64(len(data)) {
		return nil, errors.New("maskcache: corrupt payload header")
	}
	data = data[k:]
	px := make([]int64, 0, n)
	for len(data) > 0 {
		v, k := binary.Varint(data)
		if k <= 0 {
			return nil, errors.New("maskcache: corrupt payload")
		}
		px = append(px, v)
		data = data[k:]
	}
	if uint64(len(px)) != n {
		return nil, fmt.Errorf("maskcache: payload has %d values, header says %d", len(px), n)
	}
	return px, nil
}
