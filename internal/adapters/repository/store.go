// Package repository persists players, games and events in a relational store.
package repository

import (
	"context"

	"github.com/okian/pmv/internal/domain/model"
)

// PlayerRegistry resolves player names to ids.
type PlayerRegistry interface {
	// AddPlayer trims name and inserts it, or returns the existing id when the
	// name is already registered. Empty names fail with model.ErrInvalidInput.
	AddPlayer(ctx context.Context, name string) (int64, error)
	// ListPlayers returns every name ordered case-insensitively.
	ListPlayers(ctx context.Context) ([]string, error)
}

// GameSessions creates and lists game sessions.
type GameSessions interface {
	// StartNewGame opens a new session and returns its id.
	StartNewGame(ctx context.Context) (int64, error)
	// CurrentGameID returns the newest session id. ok is false when none exist.
	CurrentGameID(ctx context.Context) (id int64, ok bool, err error)
	// ListGames returns every session, newest first.
	ListGames(ctx context.Context) ([]model.Game, error)
}

// EventLog appends and queries events.
type EventLog interface {
	// InsertEvent records action for player. A nil gameID means the current
	// session, created on demand.
	InsertEvent(ctx context.Context, player string, action model.Action, gameID *int64) (model.Event, error)
	// QueryEvents returns the events matching f in insertion order.
	QueryEvents(ctx context.Context, f model.EventFilter) ([]model.Event, error)
	// ResolveFilter replaces the Latest selector with a concrete game id.
	ResolveFilter(ctx context.Context, f model.EventFilter) (model.EventFilter, error)
}

// Counts reports table sizes.
type Counts struct {
	Players int `json:"players"`
	Games   int `json:"games"`
	Events  int `json:"events"`
}

// Store provides read/write access to the tracker state.
type Store interface {
	PlayerRegistry
	GameSessions
	EventLog

	// Count returns the number of rows per table.
	Count(ctx context.Context) (Counts, error)
	Close() error
}
