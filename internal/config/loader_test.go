package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/pmv/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

var configEnvVars = []string{
	"PMV_CONFIG", "PMV_ENV_FILE", "PMV_ADDR", "PMV_DB_PATH", "PMV_LOG_LEVEL",
	"PMV_LOG_FORMAT", "PMV_REDIS_URL", "PMV_BUSY_TIMEOUT_MS", "PMV_CORS_ORIGINS",
	"PMV_IDEMPOTENCY_CACHE_SIZE", "PMV_STATS_CACHE_TTL_SECONDS", "DB_PATH",
}

func clearConfigEnvVars() {
	for _, v := range configEnvVars {
		_ = os.Unsetenv(v)
	}
}

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()
		// Point at a missing .env so a stray file in the package dir is ignored.
		_ = os.Setenv("PMV_ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
		defer clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.DBPath, convey.ShouldEqual, "pmv.db")
				convey.So(cfg.BusyTimeoutMS, convey.ShouldEqual, 5000)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("PMV_ADDR", ":9090")
			_ = os.Setenv("PMV_DB_PATH", "/data/match.db")
			_ = os.Setenv("PMV_BUSY_TIMEOUT_MS", "250")
			_ = os.Setenv("PMV_REDIS_URL", "redis://cache:6379/1")
			_ = os.Setenv("PMV_CORS_ORIGINS", "http://a.test,http://b.test")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.DBPath, convey.ShouldEqual, "/data/match.db")
				convey.So(cfg.BusyTimeoutMS, convey.ShouldEqual, 250)
				convey.So(cfg.RedisURL, convey.ShouldEqual, "redis://cache:6379/1")
				convey.So(cfg.CORSOrigins, convey.ShouldResemble, []string{"http://a.test", "http://b.test"})
			})
		})

		convey.Convey("When only the legacy DB_PATH is set", func() {
			_ = os.Setenv("DB_PATH", "legacy.db")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should be used as the database path", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.DBPath, convey.ShouldEqual, "legacy.db")
			})

			convey.Convey("And PMV_DB_PATH should win when both are set", func() {
				_ = os.Setenv("PMV_DB_PATH", "new.db")
				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.DBPath, convey.ShouldEqual, "new.db")
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			path := writeTempFile(t, "pmv.yaml", `
addr: ":7070"
db_path: "file.db"
log_format: json
idempotency_cache_size: 42
`)
			_ = os.Setenv("PMV_CONFIG", path)
			_ = os.Setenv("PMV_ADDR", ":6060")

			cfg, err := config.Load(ctx)

			convey.Convey("Then env should override the file and the file the defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":6060")
				convey.So(cfg.DBPath, convey.ShouldEqual, "file.db")
				convey.So(cfg.LogFormat, convey.ShouldEqual, "json")
				convey.So(cfg.IdempotencyCacheSize, convey.ShouldEqual, 42)
				convey.So(cfg.RequestTimeoutSeconds, convey.ShouldEqual, 15)
			})
		})

		convey.Convey("When a .env file is present", func() {
			path := writeTempFile(t, "test.env", "PMV_DB_PATH=dotenv.db\nPMV_LOG_LEVEL=debug\n")
			_ = os.Setenv("PMV_ENV_FILE", path)
			_ = os.Setenv("PMV_LOG_LEVEL", "warn")
			defer func() {
				_ = os.Unsetenv("PMV_DB_PATH")
				_ = os.Unsetenv("PMV_LOG_LEVEL")
			}()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should fill unset variables only", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.DBPath, convey.ShouldEqual, "dotenv.db")
				convey.So(cfg.LogLevel, convey.ShouldEqual, "warn")
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			path := writeTempFile(t, "bad.yaml", `invalid: yaml: content: [`)
			_ = os.Setenv("PMV_CONFIG", path)

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("PMV_CONFIG", "/non/existent/file.yaml")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with an unusable value", func() {
			_ = os.Setenv("PMV_LOG_FORMAT", "xml")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "log_format")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("PMV_BUSY_TIMEOUT_MS", "soon")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}
