package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jonesrussell/content-extraction/internal/domain"
)

const redisDisplayName = "Redis"

// redisRowField is the stream entry field holding the JSON row.
const redisRowField = "row"

// RedisStreamWriter appends one stream entry per article.
type RedisStreamWriter struct {
	client *redis.Client
	stream string
	maxLen int64
}

// NewRedisStreamWriter creates a writer for stream. A positive maxLen trims
// the stream approximately on every append.
func NewRedisStreamWriter(client *redis.Client, stream string, maxLen int64) *RedisStreamWriter {
	if stream == "" {
		stream = DefaultTable
	}
	return &RedisStreamWriter{client: client, stream: stream, maxLen: maxLen}
}

// Driver returns the configuration name of this writer.
func (w *RedisStreamWriter) Driver() string { return DriverRedis }

// Ping checks the Redis connection.
func (w *RedisStreamWriter) Ping(ctx context.Context) error {
	return w.client.Ping(ctx).Err()
}

// Store appends one entry.
func (w *RedisStreamWriter) Store(ctx context.Context, article domain.RawArticle, record domain.ExtractedRecord) error {
	payload, err := json.Marshal(NewRow(article, record, time.Now()))
	if err != nil {
		return storageError(redisDisplayName, fmt.Errorf("marshal row: %w", err))
	}

	args := &redis.XAddArgs{
		Stream: w.stream,
		Values: map[string]any{
			redisRowField: string(payload),
		},
	}
	if w.maxLen > 0 {
		args.MaxLen = w.maxLen
		args.Approx = true
	}

	if err = w.client.XAdd(ctx, args).Err(); err != nil {
		return storageError(redisDisplayName, err)
	}
	return nil
}
