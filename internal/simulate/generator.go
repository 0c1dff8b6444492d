package simulate

import (
	"fmt"
	"math/rand/v2"

	"github.com/google/uuid"
	"github.com/okian/pmv/internal/domain/model"
)

// actionWeights skews the mix toward receptions and serves, as in a real rally.
var actionWeights = []struct {
	action model.Action
	weight int
}{
	{model.ServePoint, 2},
	{model.ServeError, 2},
	{model.AttackPoint, 3},
	{model.AttackError, 2},
	{model.ReceptionGood, 4},
	{model.ReceptionBad, 2},
}

// Roster returns n player names.
func Roster(n int) []string {
	names := make([]string, n)
	for i := range names {
		names[i] = fmt.Sprintf("Player %02d", i+1)
	}
	return names
}

// Generate creates cfg.Events submissions for each of cfg.Games sessions.
// Every submission gets its own Idempotency-Key.
func Generate(cfg *Config, rng *rand.Rand) []Submission {
	roster := Roster(cfg.Players)
	total := 0
	for _, w := range actionWeights {
		total += w.weight
	}

	out := make([]Submission, 0, cfg.Games*cfg.Events)
	for g := 0; g < cfg.Games; g++ {
		for i := 0; i < cfg.Events; i++ {
			out = append(out, Submission{
				Key:    uuid.NewString(),
				Game:   g,
				Player: roster[rng.IntN(len(roster))],
				Action: string(pickAction(rng.IntN(total))),
				Retry:  rng.Float64() < cfg.RetryRate,
			})
		}
	}
	return out
}

func pickAction(n int) model.Action {
	for _, w := range actionWeights {
		if n < w.weight {
			return w.action
		}
		n -= w.weight
	}
	return actionWeights[len(actionWeights)-1].action
}
