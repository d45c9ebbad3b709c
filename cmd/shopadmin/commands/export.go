package commands

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/MikeMC777/customtees/internal/export"
)

// newExportFlow wires Chrome, EmailJS and the API upload into an export
// flow. With redis.addr set, exports of the same order are serialised across
// every console sharing that redis.
func newExportFlow(ctx context.Context) (*export.Flow, func(), error) {
	chrome := export.NewChrome(rt.cfg.Chrome, rt.log)
	closers := []func(){chrome.Close}

	var locker export.Locker = export.NewLocalLocker()
	if rt.cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     rt.cfg.Redis.Addr,
			Password: rt.cfg.Redis.Password,
			DB:       rt.cfg.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			chrome.Close()
			return nil, nil, fmt.Errorf("redis ping: %w", err)
		}
		locker = export.NewRedisLocker(rdb, rt.cfg.Redis.LockTTL)
		closers = append(closers, func() { _ = rdb.Close() })
		rt.log.Debug("export lock on redis", zap.String("addr", rt.cfg.Redis.Addr))
	}

	flow := export.New(export.Deps{
		Rasterizer: chrome,
		Documenter: chrome,
		Uploader:   rt.client,
		Mailer:     export.NewEmailJS(rt.cfg.Email),
		Locker:     locker,
		FromName:   rt.cfg.Email.FromName,
		Log:        rt.log.Named("export"),
	})
	cleanup := func() {
		flow.Close()
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	return flow, cleanup, nil
}
