/*
Copyright © 2019 the GasLift authors.
This file is part of GasLift.

GasLift is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

GasLift is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with GasLift.  If not, see <http://www.gnu.org/licenses/>.
*/

package gaslift

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/ctessum/requestcache"
	"github.com/liftmodel/gaslift/internal/hash"
	"github.com/sirupsen/logrus"
)

// DefaultCacheSize is the number of curves kept in memory by a
// CurveCache.
const DefaultCacheSize = 100

// CurveCache builds hydraulic performance curves on demand. Identical
// concurrent requests are computed once and recent results are kept in
// memory. Returned curves are shared between callers; they are
// immutable so this is safe.
type CurveCache struct {
	Builder CurveBuilder

	// CacheSize is the number of curves held in memory. Zero means
	// DefaultCacheSize.
	CacheSize int

	Log logrus.FieldLogger

	cache    *requestcache.Cache
	initOnce sync.Once
}

// NewCurveCache returns a cache that builds curves with b.
func NewCurveCache(b CurveBuilder) *CurveCache {
	return &CurveCache{Builder: b, Log: logrus.StandardLogger()}
}

func (c *CurveCache) init() {
	c.initOnce.Do(func() {
		size := c.CacheSize
		if size == 0 {
			size = DefaultCacheSize
		}
		if c.Log == nil {
			c.Log = logrus.StandardLogger()
		}
		c.cache = requestcache.NewCache(func(ctx context.Context, request interface{}) (interface{}, error) {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			w := request.(WellConfig)
			c.Log.WithField("well", w.Name).Debug("building performance curve")
			return c.Builder.Build(w)
		}, runtime.GOMAXPROCS(-1),
			requestcache.Deduplicate(), requestcache.Memory(size))
	})
}

// Curve returns the performance curve for w.
func (c *CurveCache) Curve(ctx context.Context, w WellConfig) (*PerformanceCurve, error) {
	c.init()
	key := hash.Hash(w, c.Builder.steps(), c.Builder.segments())
	result, err := c.cache.NewRequest(ctx, w, key).Result()
	if err != nil {
		return nil, err
	}
	return result.(*PerformanceCurve), nil
}

// Curves builds the curves for all wells in parallel, returning them
// in the same order. The first error encountered is returned.
func (c *CurveCache) Curves(ctx context.Context, wells []WellConfig) ([]*PerformanceCurve, error) {
	out := make([]*PerformanceCurve, len(wells))
	errs := make([]error, len(wells))
	var wg sync.WaitGroup
	wg.Add(len(wells))
	for i, w := range wells {
		go func(i int, w WellConfig) {
			defer wg.Done()
			out[i], errs[i] = c.Curve(ctx, w)
		}(i, w)
	}
	wg.Wait()
	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("gaslift: performance curve for well %d (%q): %v", i, wells[i].Name, err)
		}
	}
	return out, nil
}
