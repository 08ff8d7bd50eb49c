package dataset

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"enrolpulse/internal/infrastructure"
	"enrolpulse/pkg/contracts/domain"
)

const loadKey = "dataset"

// Cache holds the dataset loaded from path for the process lifetime
type Cache struct {
	loader  *Loader
	path    string
	metrics *infrastructure.BusinessMetrics
	logger  *slog.Logger

	group singleflight.Group

	mu      sync.RWMutex
	dataset *Dataset
}

// NewCache creates a cache; nothing is read until the first Get.
// metrics may be nil.
func NewCache(loader *Loader, path string, metrics *infrastructure.BusinessMetrics, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{
		loader:  loader,
		path:    path,
		metrics: metrics,
		logger:  logger.With(slog.String("component", "dataset_cache")),
	}
}

// Get returns the cached dataset, loading it on first use. Concurrent
// callers share a single load. A failed load is not cached.
func (c *Cache) Get(ctx context.Context) (*Dataset, error) {
	if ds := c.current(); ds != nil {
		return ds, nil
	}

	ch := c.group.DoChan(loadKey, func() (interface{}, error) {
		if ds := c.current(); ds != nil {
			return ds, nil
		}

		// The load outlives any single caller's cancellation
		loadCtx := context.WithoutCancel(ctx)
		start := time.Now()
		ds, err := c.loader.LoadFile(loadCtx, c.path)

		records, dropped := 0, 0
		if ds != nil {
			records, dropped = ds.Info.Records, ds.Info.Dropped
		}
		infrastructure.RecordDatasetLoad(loadCtx, c.metrics, c.path, time.Since(start), records, dropped, err)

		if err != nil {
			c.logger.ErrorContext(loadCtx, "dataset load failed",
				slog.String("path", c.path),
				slog.String("error", err.Error()),
			)
			return nil, err
		}

		c.mu.Lock()
		c.dataset = ds
		c.mu.Unlock()
		return ds, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Dataset), nil
	}
}

// Info describes the cached dataset; ok is false until a load has succeeded
func (c *Cache) Info() (domain.DatasetInfo, bool) {
	ds := c.current()
	if ds == nil {
		return domain.DatasetInfo{}, false
	}
	return ds.Info, true
}

// Path returns the file the cache loads from
func (c *Cache) Path() string {
	return c.path
}

func (c *Cache) current() *Dataset {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.dataset
}
