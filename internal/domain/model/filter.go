package model

import "time"

// EventFilter narrows an event query. All set fields must match.
//
// Latest selects the most recent game and, when set, replaces GameIDs. It is
// resolved once per query, never per row.
type EventFilter struct {
	GameIDs []int64
	Latest  bool
	Start   *time.Time
	End     *time.Time
}

// HasGames reports whether the filter restricts by game.
func (f EventFilter) HasGames() bool {
	return len(f.GameIDs) > 0
}
