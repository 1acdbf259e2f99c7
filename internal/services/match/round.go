package match

import (
	"fmt"

	"github.com/mcoot/dicearena-go/internal/model"
)

// RoundOutcome is the result of resolving one pair of rolls
type RoundOutcome struct {
	Health  [2]int
	Damage  int
	Striker int // seat that dealt damage, -1 for a draw
	Message string
}

// ResolveRound applies a pair of rolls to the participants' health.
// The higher roller deals |a-b| * DamagePerPip to the other, floored at 0.
// Equal rolls leave both untouched.
func ResolveRound(health [2]int, rolls [2]int) RoundOutcome {
	out := RoundOutcome{Health: health, Striker: -1, Message: model.MsgRoundDraw}

	diff := rolls[0] - rolls[1]
	switch {
	case diff > 0:
		out.Striker = 0
	case diff < 0:
		out.Striker = 1
		diff = -diff
	default:
		return out
	}

	out.Damage = diff * model.DamagePerPip
	target := 1 - out.Striker
	out.Health[target] = max(0, out.Health[target]-out.Damage)
	out.Message = fmt.Sprintf("P%d struck! (-%d)", out.Striker+1, out.Damage)
	return out
}

// Winner returns the seat that wins once a health has reached zero, or -1
// while both are still standing. If both are at zero, P1 wins.
func Winner(health [2]int) int {
	switch {
	case health[0] > 0 && health[1] > 0:
		return -1
	case health[0] == 0 && health[1] > 0:
		return 1
	default:
		return 0
	}
}
