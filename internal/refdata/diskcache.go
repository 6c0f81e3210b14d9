package refdata

import (
	"encoding/json"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/swapstats/revenue-api/internal/logger"
)

type envelope[T any] struct {
	Data      T     `json:"data"`
	Timestamp int64 `json:"timestamp"`
	ExpiresAt int64 `json:"expiresAt"`
}

// diskCache persists one reference dataset between process restarts as a
// single JSON document. Read and write failures degrade to a cache miss,
// never an error: the loader falls through to the network.
type diskCache[T any] struct {
	path string
	ttl  time.Duration
	now  func() time.Time
}

func newDiskCache[T any](path string, ttl time.Duration) *diskCache[T] {
	return &diskCache[T]{path: path, ttl: ttl, now: time.Now}
}

func (c *diskCache[T]) get() (T, bool) {
	var zero T

	content, err := os.ReadFile(c.path)
	if err != nil {
		return zero, false
	}

	var cached envelope[T]
	if err := json.Unmarshal(content, &cached); err != nil {
		logger.Warn("failed to decode reference-data cache file",
			zap.String("path", c.path), zap.Error(err))
		return zero, false
	}

	if c.now().UnixMilli() > cached.ExpiresAt {
		logger.Debug("reference-data cache expired", zap.String("path", c.path))
		return zero, false
	}

	return cached.Data, true
}

func (c *diskCache[T]) set(data T) {
	cached := envelope[T]{
		Data:      data,
		Timestamp: c.now().UnixMilli(),
		ExpiresAt: c.now().Add(c.ttl).UnixMilli(),
	}

	content, err := json.Marshal(cached)
	if err != nil {
		logger.Warn("failed to encode reference-data cache",
			zap.String("path", c.path), zap.Error(err))
		return
	}

	if err := os.WriteFile(c.path, content, 0o644); err != nil {
		logger.Warn("failed to write reference-data cache file",
			zap.String("path", c.path), zap.Error(err))
	}
}
