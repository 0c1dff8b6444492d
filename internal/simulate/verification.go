package simulate

import (
	"errors"
	"fmt"

	"github.com/okian/pmv/internal/domain/model"
	"github.com/okian/pmv/internal/domain/stats"
)

// ErrMismatch is returned when the served stats disagree with the submissions.
var ErrMismatch = errors.New("stats mismatch")

// expectedStats computes the table the server should serve for subs.
func expectedStats(subs []Submission) []stats.PlayerStats {
	events := make([]model.Event, len(subs))
	for i, s := range subs {
		events[i] = model.Event{Player: s.Player, Action: model.Action(s.Action)}
	}
	return stats.Compute(events)
}

// Verify compares the served table with the expected one row by row.
func Verify(want, got []stats.PlayerStats) error {
	if len(want) != len(got) {
		return fmt.Errorf("%w: %d rows served, %d expected", ErrMismatch, len(got), len(want))
	}
	for i := range want {
		w, g := want[i], got[i]
		if w.Player != g.Player {
			return fmt.Errorf("%w: row %d is %q, expected %q", ErrMismatch, i, g.Player, w.Player)
		}
		for _, c := range model.Categories() {
			wr, gr := w.Ratio(c), g.Ratio(c)
			if wr.Total != gr.Total || wr.Good != gr.Good || wr.Bad != gr.Bad {
				return fmt.Errorf("%w: %s counts for %q are %d/%d/%d, expected %d/%d/%d",
					ErrMismatch, c, w.Player, gr.Good, gr.Bad, gr.Total, wr.Good, wr.Bad, wr.Total)
			}
			if !samePct(wr.Pct, gr.Pct) {
				return fmt.Errorf("%w: %s percentage for %q differs", ErrMismatch, c, w.Player)
			}
		}
	}
	return nil
}

func samePct(a, b *float64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
