package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/okian/underdog/internal/adapters/repository"
	app "github.com/okian/underdog/internal/app"
	"github.com/okian/underdog/internal/config"
	"github.com/okian/underdog/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func TestMainFunction(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		convey.Convey("When testing configuration loading", func() {
			_ = os.Setenv("UNDERDOG_ADDR", ":8080")
			_ = os.Setenv("UNDERDOG_WINDOW_SIZE", "50")
			defer func() {
				_ = os.Unsetenv("UNDERDOG_ADDR")
				_ = os.Unsetenv("UNDERDOG_WINDOW_SIZE")
			}()

			convey.Convey("Then configuration should be loadable", func() {
				cfg, err := config.Load(context.Background())
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.WindowSize, convey.ShouldEqual, 50)
			})
		})

		convey.Convey("When testing invalid configuration", func() {
			_ = os.Setenv("UNDERDOG_ADDR", "")
			defer func() { _ = os.Unsetenv("UNDERDOG_ADDR") }()

			convey.Convey("Then configuration loading should fail", func() {
				cfg, err := config.Load(context.Background())
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

func TestOpenStore(t *testing.T) {
	convey.Convey("Given store driver settings", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("When the memory driver is selected", func() {
			store, err := openStore(cfg)
			convey.So(err, convey.ShouldBeNil)
			_, ok := store.(*repository.MemoryStore)
			convey.So(ok, convey.ShouldBeTrue)
		})

		convey.Convey("When the sqlite driver is selected", func() {
			cfg.StoreDriver = config.StoreSQLite
			cfg.SQLitePath = filepath.Join(t.TempDir(), "underdog.db")

			store, err := openStore(cfg)
			convey.So(err, convey.ShouldBeNil)
			defer func() { _ = store.Close() }()
			_, ok := store.(*repository.SQLiteStore)
			convey.So(ok, convey.ShouldBeTrue)
		})

		convey.Convey("When the driver is unknown", func() {
			cfg.StoreDriver = "redis"
			_, err := openStore(cfg)
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
		})
	})
}

func TestMainApplicationIntegration(t *testing.T) {
	convey.Convey("Given a service and server built from config", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		cfg := config.New(ctx)
		cfg.Roster = []string{"A", "B", "C"}
		cfg.RecentSize = 3
		cfg.WindowSize = 6
		cfg.RateLimitRPS = 0

		svc, err := newService(ctx, cfg, logger.Get())
		convey.So(err, convey.ShouldBeNil)
		defer svc.Stop()

		srv := newHTTPServer(ctx, cfg, svc)
		convey.So(srv.Addr, convey.ShouldEqual, cfg.Addr)

		convey.Convey("Then business routes are served", func() {
			req := httptest.NewRequest(http.MethodPost, "/analyze",
				strings.NewReader(`{"recent":["A","A","B"],"counts":{"A":3,"B":2,"C":1}}`))
			w := httptest.NewRecorder()
			srv.Handler.ServeHTTP(w, req)

			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			convey.So(w.Body.String(), convey.ShouldContainSubstring, `"recommendation":["C"]`)
		})

		convey.Convey("And docs routes are served", func() {
			req := httptest.NewRequest(http.MethodGet, "/openapi.yaml", http.NoBody)
			w := httptest.NewRecorder()
			srv.Handler.ServeHTTP(w, req)
			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
		})

		convey.Convey("And the configured thresholds reach the analyzer", func() {
			stats := svc.GetStats()
			convey.So(stats["windowSize"], convey.ShouldEqual, 6)
			convey.So(stats["started"], convey.ShouldEqual, true)
		})
	})

	convey.Convey("Given a roster that cannot be built", t, func() {
		cfg := config.New(context.Background())
		cfg.Roster = []string{"A", "A"}

		_, err := newService(context.Background(), cfg, logger.Get())
		convey.So(err, convey.ShouldNotBeNil)
	})
}

func TestMainApplicationComponents(t *testing.T) {
	convey.Convey("Given main application components", t, func() {
		convey.Convey("When testing system metrics updater", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
			defer cancel()

			convey.So(func() {
				startSystemMetricsUpdater(ctx)
			}, convey.ShouldNotPanic)
		})

		convey.Convey("When testing service metrics updater", func() {
			svc := app.New()
			ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
			defer cancel()

			convey.So(func() {
				startServiceMetricsUpdater(ctx, svc)
			}, convey.ShouldNotPanic)
		})

		convey.Convey("When updating metrics directly", func() {
			svc := app.New()
			convey.So(func() {
				updateSystemMetrics()
				updateServiceMetrics(svc)
			}, convey.ShouldNotPanic)
		})
	})
}
