package config_test

import (
	"context"
	"errors"
	"runtime"
	"testing"
	"time"

	"github.com/okian/staffing/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, "")
			convey.So(cfg.LogFormat, convey.ShouldEqual, "text")
			convey.So(cfg.AllocatorBudget(), convey.ShouldEqual, 20*time.Second)
			convey.So(cfg.AllocatorAttempts, convey.ShouldEqual, 10)
			convey.So(cfg.AllocatorWorkers, convey.ShouldEqual, runtime.NumCPU())
			convey.So(cfg.AllocatorSettle(), convey.ShouldEqual, 25*time.Millisecond)
			convey.So(cfg.SelectionTopK, convey.ShouldEqual, 16)
			convey.So(cfg.ExplorerBranches, convey.ShouldEqual, 0)
			convey.So(cfg.MetricsRefresh(), convey.ShouldEqual, 10*time.Second)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given a default config", t, func() {
		cfg := config.New(context.Background())

		cases := []struct {
			name   string
			mutate func(c *config.Config)
		}{
			{"unknown log level", func(c *config.Config) { c.LogLevel = "loud" }},
			{"unknown log format", func(c *config.Config) { c.LogFormat = "xml" }},
			{"unknown input format", func(c *config.Config) { c.InputFormat = "csv" }},
			{"zero budget", func(c *config.Config) { c.AllocatorBudgetMS = 0 }},
			{"zero attempts", func(c *config.Config) { c.AllocatorAttempts = 0 }},
			{"negative workers", func(c *config.Config) { c.AllocatorWorkers = -1 }},
			{"zero top k", func(c *config.Config) { c.SelectionTopK = 0 }},
			{"negative settle", func(c *config.Config) { c.AllocatorSettleMS = -5 }},
			{"negative branches", func(c *config.Config) { c.ExplorerBranches = -1 }},
			{"zero explorer queue", func(c *config.Config) { c.ExplorerQueueSize = 0 }},
			{"zero explorer workers", func(c *config.Config) { c.ExplorerWorkers = 0 }},
			{"zero metrics refresh", func(c *config.Config) { c.MetricsRefreshMS = 0 }},
		}
		for _, tc := range cases {
			convey.Convey("When it has "+tc.name, func() {
				tc.mutate(cfg)

				convey.Convey("Then validation fails with ErrInvalidConfig", func() {
					convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
				})
			})
		}
	})
}
