// Package stats derives per-player efficiency figures from recorded events.
//
// Everything here is pure: no storage access and no side effects.
package stats

import (
	"math"
	"sort"

	"github.com/okian/pmv/internal/domain/model"
)

const (
	percentScale = 100
	// roundingFactor keeps one decimal place.
	roundingFactor = 10
)

// Ratio counts the attempts of one category.
type Ratio struct {
	Total int
	Good  int
	Bad   int
	Pct   *float64
}

// PlayerStats is one output row of Compute.
type PlayerStats struct {
	Player string `json:"player"`

	AttacksTotal     int      `json:"attacks_total"`
	AttackPoints     int      `json:"attack_points"`
	AttackErrors     int      `json:"attack_errors"`
	AttackSuccessPct *float64 `json:"attack_success_pct"`

	ServesTotal     int      `json:"serves_total"`
	ServePoints     int      `json:"serve_points"`
	ServeErrors     int      `json:"serve_errors"`
	ServeSuccessPct *float64 `json:"serve_success_pct"`

	ReceptionTotal         int      `json:"reception_total"`
	ReceptionGood          int      `json:"reception_good"`
	ReceptionBad           int      `json:"reception_bad"`
	ReceptionEfficiencyPct *float64 `json:"reception_efficiency_pct"`
}

// Compute returns one row per distinct player in events, sorted by name.
// A ratio with no attempts has a nil percentage.
func Compute(events []model.Event) []PlayerStats {
	if len(events) == 0 {
		return []PlayerStats{}
	}

	byPlayer := make(map[string]*PlayerStats)
	for _, e := range events {
		row, ok := byPlayer[e.Player]
		if !ok {
			row = &PlayerStats{Player: e.Player}
			byPlayer[e.Player] = row
		}
		row.tally(e.Action)
	}

	out := make([]PlayerStats, 0, len(byPlayer))
	for _, row := range byPlayer {
		row.AttacksTotal = row.AttackPoints + row.AttackErrors
		row.AttackSuccessPct = Percent(row.AttackPoints, row.AttacksTotal)
		row.ServesTotal = row.ServePoints + row.ServeErrors
		row.ServeSuccessPct = Percent(row.ServePoints, row.ServesTotal)
		row.ReceptionTotal = row.ReceptionGood + row.ReceptionBad
		row.ReceptionEfficiencyPct = Percent(row.ReceptionGood, row.ReceptionTotal)
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Player < out[j].Player })
	return out
}

// Percent returns good/total*100 rounded to one decimal, or nil when total is zero.
// Halves round away from zero, so 6.25 becomes 6.3.
func Percent(good, total int) *float64 {
	if total <= 0 {
		return nil
	}
	v := float64(good) * percentScale / float64(total)
	v = math.Round(v*roundingFactor) / roundingFactor
	return &v
}

// tally counts a toward the good or bad side of its category.
// Unknown actions still create the player's row but count nowhere.
func (p *PlayerStats) tally(a model.Action) {
	if !a.Valid() {
		return
	}
	good, bad := p.counters(a.Category())
	if a.Positive() {
		*good++
	} else {
		*bad++
	}
}

func (p *PlayerStats) counters(c model.Category) (good, bad *int) {
	switch c {
	case model.CategoryAttack:
		return &p.AttackPoints, &p.AttackErrors
	case model.CategoryServe:
		return &p.ServePoints, &p.ServeErrors
	default:
		return &p.ReceptionGood, &p.ReceptionBad
	}
}

// Ratio returns the figures of one category of the row.
func (p PlayerStats) Ratio(c model.Category) Ratio {
	switch c {
	case model.CategoryAttack:
		return Ratio{Total: p.AttacksTotal, Good: p.AttackPoints, Bad: p.AttackErrors, Pct: p.AttackSuccessPct}
	case model.CategoryServe:
		return Ratio{Total: p.ServesTotal, Good: p.ServePoints, Bad: p.ServeErrors, Pct: p.ServeSuccessPct}
	case model.CategoryReception:
		return Ratio{Total: p.ReceptionTotal, Good: p.ReceptionGood, Bad: p.ReceptionBad, Pct: p.ReceptionEfficiencyPct}
	}
	return Ratio{}
}
