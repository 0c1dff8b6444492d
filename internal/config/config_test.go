package config_test

import (
	"errors"
	"testing"
	"time"

	"github.com/okian/pmv/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with defaults", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
			convey.So(cfg.DBPath, convey.ShouldEqual, "pmv.db")
			convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			convey.So(cfg.LogFormat, convey.ShouldEqual, "text")
			convey.So(cfg.RedisURL, convey.ShouldBeEmpty)
			convey.So(cfg.IdempotencyCacheSize, convey.ShouldEqual, 10_000)
			convey.So(cfg.CORSOrigins, convey.ShouldResemble, []string{"*"})
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})

		convey.Convey("Then durations should be derived from the numeric fields", func() {
			convey.So(cfg.BusyTimeout(), convey.ShouldEqual, 5*time.Second)
			convey.So(cfg.StatsCacheTTL(), convey.ShouldEqual, 30*time.Second)
			convey.So(cfg.RequestTimeout(), convey.ShouldEqual, 15*time.Second)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given configs with one bad field", t, func() {
		cases := map[string]func(*config.Config){
			"empty addr":       func(c *config.Config) { c.Addr = " " },
			"empty db path":    func(c *config.Config) { c.DBPath = "" },
			"bad log format":   func(c *config.Config) { c.LogFormat = "xml" },
			"zero busy wait":   func(c *config.Config) { c.BusyTimeoutMS = 0 },
			"negative ttl":     func(c *config.Config) { c.StatsCacheTTLSeconds = -1 },
			"negative cache":   func(c *config.Config) { c.IdempotencyCacheSize = -1 },
			"zero req timeout": func(c *config.Config) { c.RequestTimeoutSeconds = 0 },
		}
		for name, mutate := range cases {
			convey.Convey("When validating with "+name, func() {
				cfg := config.New()
				mutate(cfg)
				err := cfg.Validate()

				convey.Convey("Then it should fail with ErrInvalidConfig", func() {
					convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				})
			})
		}

		convey.Convey("Then a zero ttl and zero cache size are allowed", func() {
			cfg := config.New()
			cfg.StatsCacheTTLSeconds = 0
			cfg.IdempotencyCacheSize = 0
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}
