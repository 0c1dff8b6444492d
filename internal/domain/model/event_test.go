package model_test

import (
	"errors"
	"testing"
	"time"

	model "github.com/okian/pmv/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestNormalizePlayerName(t *testing.T) {
	convey.Convey("Given player names from user input", t, func() {
		convey.Convey("When the name has surrounding whitespace", func() {
			name, err := model.NormalizePlayerName("  Ana \t")

			convey.Convey("Then it should be trimmed", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(name, convey.ShouldEqual, "Ana")
			})
		})

		convey.Convey("When the name is empty or blank", func() {
			for _, in := range []string{"", "   ", "\n\t"} {
				_, err := model.NormalizePlayerName(in)
				convey.So(errors.Is(err, model.ErrInvalidInput), convey.ShouldBeTrue)
			}
		})

		convey.Convey("When the name differs only in case", func() {
			a, _ := model.NormalizePlayerName("ana")
			b, _ := model.NormalizePlayerName("Ana")

			convey.Convey("Then case should be preserved", func() {
				convey.So(a, convey.ShouldNotEqual, b)
			})
		})
	})
}

func TestEvent(t *testing.T) {
	convey.Convey("Given an Event struct", t, func() {
		gameID := int64(5)
		ts := time.Date(2025, 3, 1, 18, 30, 0, 0, time.UTC)
		event := model.Event{ID: 1, GameID: &gameID, Player: "Ana", Action: model.AttackPoint, CreatedAt: ts}

		convey.Convey("Then it should keep the denormalized player name", func() {
			convey.So(event.Player, convey.ShouldEqual, "Ana")
			convey.So(*event.GameID, convey.ShouldEqual, 5)
			convey.So(event.CreatedAt, convey.ShouldEqual, ts)
		})

		convey.Convey("When the event has no game", func() {
			event.GameID = nil
			convey.So(event.GameID, convey.ShouldBeNil)
		})
	})
}

func TestEventFilter(t *testing.T) {
	convey.Convey("Given an event filter", t, func() {
		convey.Convey("When no game ids are set", func() {
			convey.So(model.EventFilter{}.HasGames(), convey.ShouldBeFalse)
			convey.So(model.EventFilter{GameIDs: []int64{}}.HasGames(), convey.ShouldBeFalse)
		})

		convey.Convey("When game ids are set", func() {
			convey.So(model.EventFilter{GameIDs: []int64{3}}.HasGames(), convey.ShouldBeTrue)
		})
	})
}
