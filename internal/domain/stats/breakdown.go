package stats

import "github.com/okian/pmv/internal/domain/model"

// ActionBreakdown summarises how a set of events splits across kinds and actions.
type ActionBreakdown struct {
	Total    int                  `json:"total"`
	ByKind   map[model.Kind]int   `json:"by_kind"`
	ByAction map[model.Action]int `json:"by_action"`
}

// Breakdown counts events per kind and per action. Every known kind and
// action is present in the result, with zero when absent from events.
func Breakdown(events []model.Event) ActionBreakdown {
	b := ActionBreakdown{
		Total:    len(events),
		ByKind:   map[model.Kind]int{model.KindPoint: 0, model.KindError: 0, model.KindReception: 0},
		ByAction: make(map[model.Action]int, len(model.Actions())),
	}
	for _, a := range model.Actions() {
		b.ByAction[a] = 0
	}
	for _, e := range events {
		b.ByKind[e.Action.Kind()]++
		b.ByAction[e.Action]++
	}
	return b
}
