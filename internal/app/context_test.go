package app_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oggyb/muzz-matching/internal/app"
	"github.com/oggyb/muzz-matching/internal/cache"
	"github.com/oggyb/muzz-matching/internal/config"
	"github.com/oggyb/muzz-matching/internal/db"
	"github.com/oggyb/muzz-matching/internal/db/dbtest"
)

func TestNew_WiresEngineAndInbox(t *testing.T) {
	for _, backend := range []string{"redis", "ledger"} {
		t.Run(backend, func(t *testing.T) {
			gdb := dbtest.Open(t)
			mr := miniredis.RunT(t)
			rdb := cache.NewFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), 0)
			t.Cleanup(func() { _ = rdb.Close() })

			cfg := &config.Config{Matching: config.DefaultMatching()}
			cfg.Matching.RateLimit.Backend = backend
			appCtx := app.New(cfg, gdb, rdb, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))

			m := dbtest.User(t, gdb, "m", db.RoleMember, db.Profile{})
			p := dbtest.User(t, gdb, "p", db.RoleProvider, db.Profile{})

			ctx := context.Background()
			_, err := appCtx.Engine.RecordDecision(ctx, m.ID, p.ID, "LIKE")
			require.NoError(t, err)
			out, err := appCtx.Engine.RecordDecision(ctx, p.ID, m.ID, "LIKE")
			require.NoError(t, err)
			assert.True(t, out.Matched)
			appCtx.Dispatcher.Wait()

			// one like notice for p, one match notice each
			var n int64
			require.NoError(t, gdb.Model(&db.Notification{}).Count(&n).Error)
			assert.Equal(t, int64(3), n)
		})
	}
}
