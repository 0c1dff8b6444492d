package simulate_test

import (
	"context"
	"errors"
	"math/rand/v2"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/okian/pmv/internal/adapters/http/api"
	service "github.com/okian/pmv/internal/app"
	"github.com/okian/pmv/internal/domain/stats"
	"github.com/okian/pmv/internal/simulate"
	"github.com/okian/pmv/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func newTracker(t *testing.T) string {
	t.Helper()
	svc := service.New(
		service.WithDBPath(filepath.Join(t.TempDir(), "pmv.db")),
		service.WithLogger(logger.Nop()),
	)
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("start service: %v", err)
	}
	r := chi.NewRouter()
	api.NewServer(svc).Register(r)
	srv := httptest.NewServer(r)
	t.Cleanup(func() {
		srv.Close()
		svc.Stop()
	})
	return srv.URL
}

func TestGenerate(t *testing.T) {
	Convey("Given a seeded generator", t, func() {
		cfg := &simulate.Config{Players: 4, Games: 2, Events: 50, RetryRate: 0.5}

		Convey("it produces the requested number of unique submissions", func() {
			subs := simulate.Generate(cfg, rand.New(rand.NewPCG(1, 2)))
			So(subs, ShouldHaveLength, 100)

			keys := map[string]bool{}
			roster := map[string]bool{}
			for _, name := range simulate.Roster(4) {
				roster[name] = true
			}
			for _, s := range subs {
				So(keys[s.Key], ShouldBeFalse)
				keys[s.Key] = true
				So(roster[s.Player], ShouldBeTrue)
				So(s.Game, ShouldBeBetweenOrEqual, 0, 1)
			}
		})

		Convey("the action mix depends only on the seed", func() {
			a := simulate.Generate(cfg, rand.New(rand.NewPCG(7, 7)))
			b := simulate.Generate(cfg, rand.New(rand.NewPCG(7, 7)))
			for i := range a {
				So(a[i].Player, ShouldEqual, b[i].Player)
				So(a[i].Action, ShouldEqual, b[i].Action)
				So(a[i].Retry, ShouldEqual, b[i].Retry)
			}
		})
	})
}

func TestConfigValidate(t *testing.T) {
	Convey("Given simulation configs", t, func() {
		valid := simulate.Config{BaseURL: "http://x", Players: 1, Games: 1, Events: 1, Workers: 1}
		So(valid.Validate(), ShouldBeNil)

		for _, mutate := range []func(*simulate.Config){
			func(c *simulate.Config) { c.BaseURL = "" },
			func(c *simulate.Config) { c.Players = 0 },
			func(c *simulate.Config) { c.Games = 0 },
			func(c *simulate.Config) { c.Events = -1 },
			func(c *simulate.Config) { c.Workers = 0 },
			func(c *simulate.Config) { c.RetryRate = 1.5 },
		} {
			c := valid
			mutate(&c)
			So(errors.Is(c.Validate(), simulate.ErrInvalidConfig), ShouldBeTrue)
		}
	})
}

func TestVerify(t *testing.T) {
	Convey("Given two stats tables", t, func() {
		pct := 50.0
		want := []stats.PlayerStats{{Player: "Ann", AttacksTotal: 2, AttackPoints: 1, AttackErrors: 1, AttackSuccessPct: &pct}}

		So(simulate.Verify(want, want), ShouldBeNil)
		So(errors.Is(simulate.Verify(want, nil), simulate.ErrMismatch), ShouldBeTrue)

		other := []stats.PlayerStats{want[0]}
		other[0].AttackSuccessPct = nil
		So(errors.Is(simulate.Verify(want, other), simulate.ErrMismatch), ShouldBeTrue)

		miscounted := []stats.PlayerStats{want[0]}
		miscounted[0].AttackErrors = 0
		So(errors.Is(simulate.Verify(want, miscounted), simulate.ErrMismatch), ShouldBeTrue)
	})
}

func TestRun(t *testing.T) {
	Convey("Given a running tracker", t, func() {
		url := newTracker(t)
		cfg := &simulate.Config{
			BaseURL:   url,
			Players:   5,
			Games:     2,
			Events:    40,
			Workers:   8,
			RetryRate: 0.25,
			Seed:      42,
			Timeout:   5 * time.Second,
		}

		Convey("a simulated match is recorded and the stats agree", func() {
			report, err := simulate.Run(context.Background(), cfg)
			So(err, ShouldBeNil)
			So(report.Games, ShouldHaveLength, 2)
			So(report.Submitted, ShouldEqual, 80)
			So(report.Created, ShouldEqual, 80)
			So(report.Failed, ShouldEqual, 0)
			So(report.Players, ShouldBeBetweenOrEqual, 1, 5)
		})

		Convey("an unreachable service fails the health check", func() {
			cfg.BaseURL = "http://127.0.0.1:1"
			cfg.Timeout = time.Second
			_, err := simulate.Run(context.Background(), cfg)
			So(err, ShouldNotBeNil)
		})
	})
}
