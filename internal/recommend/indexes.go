// Cicerone - Conversational Point-of-Interest Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cicerone

package recommend

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/tomtom215/cicerone/internal/logging"
	"github.com/tomtom215/cicerone/internal/metrics"
)

// indexCache builds each region's index at most once. Failed builds are
// not cached so a later request retries.
type indexCache struct {
	source CatalogSource
	build  IndexBuilder

	group singleflight.Group

	mu    sync.RWMutex
	built map[string]TextIndex
}

func newIndexCache(source CatalogSource, build IndexBuilder) *indexCache {
	return &indexCache{
		source: source,
		build:  build,
		built:  make(map[string]TextIndex),
	}
}

func (c *indexCache) lookup(region string) (TextIndex, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ix, ok := c.built[region]
	return ix, ok
}

// get returns the region's index, building it if needed.
func (c *indexCache) get(ctx context.Context, region string) (TextIndex, error) {
	if ix, ok := c.lookup(region); ok {
		return ix, nil
	}

	// The build is shared with every waiter, so it must not end with the
	// turn that happened to start it.
	buildCtx := context.WithoutCancel(ctx)
	v, err, _ := c.group.Do(region, func() (any, error) {
		// Another caller may have finished while we waited for the group.
		if ix, ok := c.lookup(region); ok {
			return ix, nil
		}

		venues, ok := c.source.Venues(region)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownRegion, region)
		}

		start := time.Now()
		ix, err := c.build(buildCtx, venues)
		metrics.RecordIndexBuild(region, time.Since(start), err)
		if err != nil {
			return nil, fmt.Errorf("build index for %s: %w", region, err)
		}

		c.mu.Lock()
		c.built[region] = ix
		c.mu.Unlock()

		logging.Ctx(ctx).Info().
			Str("region", region).
			Int("venues", len(venues)).
			Dur("duration", time.Since(start)).
			Msg("Region index built")
		return ix, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(TextIndex), nil
}

// regions returns the names of the regions with a built index.
func (c *indexCache) regions() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.built))
	for r := range c.built {
		out = append(out, r)
	}
	return out
}

// close releases every built index that holds resources and forgets it.
func (c *indexCache) close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var errs []error
	for region, ix := range c.built {
		if closer, ok := ix.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close index for %s: %w", region, err))
			}
		}
		delete(c.built, region)
	}
	return errors.Join(errs...)
}
