package core

import (
	"context"
	"errors"
	"time"

	"github.com/seeyebe/gmap/internal/contract"
	"github.com/seeyebe/gmap/schema"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// MinFetchSpacing is the shortest time allowed between two fetches started by watch.
const MinFetchSpacing = 300 * time.Millisecond

// ExecuteWatch polls HEAD every WatchInterval and syncs again whenever it moves.
// It returns nil when ctx is cancelled.
func ExecuteWatch(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager, objects contract.ObjectStore) error {
	once := cfg.Clone()
	once.DryRun = false
	return watch(ctx, cfg.WatchInterval, objects.Head, func(ctx context.Context) error {
		return ExecuteSync(ctx, once, mgr, objects)
	}, contract.Logger())
}

// watch calls run once up front and again after every observed change of head.
func watch(ctx context.Context, interval time.Duration, head func(context.Context) (string, error), run func(context.Context) error, logger *logrus.Logger) error {
	limiter := rate.NewLimiter(rate.Every(MinFetchSpacing), 1)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var last string
	for {
		current, err := head(ctx)
		if err != nil {
			return err
		}
		if current != last {
			logger.WithFields(logrus.Fields{
				"from": schema.ShortID(last),
				"to":   schema.ShortID(current),
			}).Info("head moved")

			if err := limiter.Wait(ctx); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return err
			}
			if err := run(ctx); err != nil {
				if errors.Is(err, context.Canceled) {
					return nil
				}
				return err
			}
			last = current
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
