// Package model contains domain models passed between layers.
package model

import (
	"strings"
	"time"
)

// Game is a session that groups events, e.g. one match.
type Game struct {
	ID        int64     `json:"id"`
	CreatedAt time.Time `json:"created_at"`
}

// Event is one recorded player action.
// Player holds the player's name, not a row id.
type Event struct {
	ID        int64     `json:"id"`
	GameID    *int64    `json:"game_id"`
	Player    string    `json:"player"`
	Action    Action    `json:"action"`
	CreatedAt time.Time `json:"created_at"`
}

// NormalizePlayerName trims surrounding whitespace and rejects empty names.
func NormalizePlayerName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrInvalidInput
	}
	return name, nil
}
