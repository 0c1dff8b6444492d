package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/okian/pmv/internal/config"
	"github.com/okian/pmv/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func TestMainFunction(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		convey.Convey("When loading configuration from the environment", func() {
			t.Setenv("PMV_ADDR", ":9090")
			t.Setenv("PMV_DB_PATH", "/tmp/pmv-test.db")
			t.Setenv("PMV_IDEMPOTENCY_CACHE_SIZE", "50")

			cfg, err := config.Load(context.Background())
			convey.So(err, convey.ShouldBeNil)
			convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
			convey.So(cfg.DBPath, convey.ShouldEqual, "/tmp/pmv-test.db")
			convey.So(cfg.IdempotencyCacheSize, convey.ShouldEqual, 50)

			convey.Convey("Then the service is built from it", func() {
				svc := newService(cfg, logger.Nop())
				convey.So(svc, convey.ShouldNotBeNil)
				convey.So(svc.GetStats(context.Background())["db_path"], convey.ShouldEqual, "/tmp/pmv-test.db")
			})
		})
	})
}

func TestRouter(t *testing.T) {
	convey.Convey("Given a router over a started service", t, func() {
		cfg := config.New()
		cfg.DBPath = filepath.Join(t.TempDir(), "pmv.db")
		cfg.CORSOrigins = []string{"https://scorer.example"}

		svc := newService(cfg, logger.Nop())
		convey.So(svc.Start(context.Background()), convey.ShouldBeNil)
		defer svc.Stop()
		h := newRouter(cfg, svc)

		convey.Convey("Then API routes are mounted", func() {
			req := httptest.NewRequest(http.MethodPost, "/events", strings.NewReader(`{"player":"Ann","action":"serve_point"}`))
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)
			convey.So(w.Code, convey.ShouldEqual, http.StatusCreated)

			req = httptest.NewRequest(http.MethodGet, "/games/current", http.NoBody)
			w = httptest.NewRecorder()
			h.ServeHTTP(w, req)
			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
		})

		convey.Convey("And the docs are served", func() {
			req := httptest.NewRequest(http.MethodGet, "/openapi.yaml", http.NoBody)
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)
			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
		})

		convey.Convey("And CORS preflight allows the idempotency header", func() {
			req := httptest.NewRequest(http.MethodOptions, "/events", http.NoBody)
			req.Header.Set("Origin", "https://scorer.example")
			req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			req.Header.Set("Access-Control-Request-Headers", "Idempotency-Key")
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)
			convey.So(w.Header().Get("Access-Control-Allow-Origin"), convey.ShouldEqual, "https://scorer.example")
		})

		convey.Convey("And unknown routes are 404", func() {
			req := httptest.NewRequest(http.MethodGet, "/nope", http.NoBody)
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)
			convey.So(w.Code, convey.ShouldEqual, http.StatusNotFound)
		})
	})
}
