package alphableed_test

import (
	"testing"

	"github.com/setanarut/alphableed"
	"github.com/stretchr/testify/assert"
)

func TestNeighbors(t *testing.T) {
	cases := []struct {
		name string
		p    alphableed.Position
		w, h int
		want []alphableed.Position
	}{
		{"Single", alphableed.Position{}, 1, 1, nil},
		{"Corner", alphableed.Position{X: 0, Y: 0}, 3, 3, []alphableed.Position{{X: 1, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1}}},
		{"Edge", alphableed.Position{X: 1, Y: 0}, 3, 3, []alphableed.Position{{X: 0, Y: 0}, {X: 2, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1}, {X: 2, Y: 1}}},
		{"Row", alphableed.Position{X: 2, Y: 0}, 3, 1, []alphableed.Position{{X: 1, Y: 0}}},
		{"Interior", alphableed.Position{X: 1, Y: 1}, 3, 3, []alphableed.Position{
			{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 0},
			{X: 0, Y: 1}, {X: 2, Y: 1},
			{X: 0, Y: 2}, {X: 1, Y: 2}, {X: 2, Y: 2},
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.ElementsMatch(t, tc.want, alphableed.Neighbors(tc.p, tc.w, tc.h))
		})
	}
}

func TestNeighbors_InBoundsAndUnique(t *testing.T) {
	const w, h = 5, 4
	for y := range h {
		for x := range w {
			seen := map[alphableed.Position]bool{}
			for _, n := range alphableed.Neighbors(alphableed.Position{X: x, Y: y}, w, h) {
				assert.True(t, n.X >= 0 && n.X < w && n.Y >= 0 && n.Y < h, "%v out of bounds", n)
				assert.False(t, seen[n], "%v repeated", n)
				assert.NotEqual(t, alphableed.Position{X: x, Y: y}, n)
				seen[n] = true
				dx, dy := n.X-x, n.Y-y
				assert.True(t, dx >= -1 && dx <= 1 && dy >= -1 && dy <= 1)
			}
		}
	}
}
