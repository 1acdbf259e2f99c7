package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveRound(t *testing.T) {
	tests := []struct {
		name    string
		health  [2]int
		rolls   [2]int
		want    [2]int
		damage  int
		striker int
		message string
	}{
		{
			name:    "p1 rolls higher",
			health:  [2]int{100, 100},
			rolls:   [2]int{6, 2},
			want:    [2]int{100, 60},
			damage:  40,
			striker: 0,
			message: "P1 struck! (-40)",
		},
		{
			name:    "p2 rolls higher",
			health:  [2]int{100, 60},
			rolls:   [2]int{1, 6},
			want:    [2]int{50, 60},
			damage:  50,
			striker: 1,
			message: "P2 struck! (-50)",
		},
		{
			name:    "equal rolls draw",
			health:  [2]int{70, 30},
			rolls:   [2]int{4, 4},
			want:    [2]int{70, 30},
			damage:  0,
			striker: -1,
			message: "Draw!",
		},
		{
			name:    "damage floored at zero",
			health:  [2]int{100, 20},
			rolls:   [2]int{6, 1},
			want:    [2]int{100, 0},
			damage:  50,
			striker: 0,
			message: "P1 struck! (-50)",
		},
		{
			name:    "minimum damage",
			health:  [2]int{100, 100},
			rolls:   [2]int{3, 4},
			want:    [2]int{90, 100},
			damage:  10,
			striker: 1,
			message: "P2 struck! (-10)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := ResolveRound(tt.health, tt.rolls)
			assert.Equal(t, tt.want, out.Health)
			assert.Equal(t, tt.damage, out.Damage)
			assert.Equal(t, tt.striker, out.Striker)
			assert.Equal(t, tt.message, out.Message)
		})
	}
}

func TestResolveRoundDamagesAtMostOneSide(t *testing.T) {
	for a := 1; a <= 6; a++ {
		for b := 1; b <= 6; b++ {
			out := ResolveRound([2]int{100, 100}, [2]int{a, b})
			assert.Equal(t, abs(a-b)*10, out.Damage)
			assert.True(t, out.Health[0] == 100 || out.Health[1] == 100,
				"rolls %d,%d damaged both sides", a, b)
		}
	}
}

func TestWinner(t *testing.T) {
	assert.Equal(t, -1, Winner([2]int{10, 10}))
	assert.Equal(t, 0, Winner([2]int{10, 0}))
	assert.Equal(t, 1, Winner([2]int{0, 10}))
	assert.Equal(t, 0, Winner([2]int{0, 0}), "double knockout goes to p1")
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
