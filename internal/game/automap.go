package game

import (
	"fmt"
	"strings"

	"github.com/pixil98/go-mudmaze/internal/topology"
)

// Automap is a per-level record of the rooms a player has visited.
type Automap struct {
	grid  topology.Grid
	cells [][]bool
}

// NewAutomap returns an empty automap sized to g.
func NewAutomap(g topology.Grid) *Automap {
	cells := make([][]bool, g.Depth)
	for l := range cells {
		cells[l] = make([]bool, g.Size())
	}
	return &Automap{grid: g, cells: cells}
}

// Visit marks p as visited. Positions outside the grid are ignored.
func (a *Automap) Visit(p topology.Position) {
	if a.grid.Contains(p) {
		a.cells[p.Level][p.Room] = true
	}
}

// Visited reports whether p has been visited.
func (a *Automap) Visited(p topology.Position) bool {
	return a.grid.Contains(p) && a.cells[p.Level][p.Room]
}

// Level returns a copy of the visited cells of one level.
func (a *Automap) Level(level int) []bool {
	if level < 0 || level >= a.grid.Depth {
		return nil
	}
	return append([]bool(nil), a.cells[level]...)
}

// Render draws a level as a bordered grid: '@' marks here, '#' visited rooms.
func (a *Automap) Render(level int, here topology.Position) (string, error) {
	if level < 0 || level >= a.grid.Depth {
		return "", fmt.Errorf("level %d out of range", level)
	}

	var b strings.Builder
	edge := strings.Repeat("─", a.grid.Width+2)
	b.WriteString("┌" + edge + "┐\n")
	for y := 0; y < a.grid.Height; y++ {
		b.WriteString("│ ")
		for x := 0; x < a.grid.Width; x++ {
			p := a.grid.Index(x, y, level)
			switch {
			case p == here:
				b.WriteByte('@')
			case a.cells[level][p.Room]:
				b.WriteByte('#')
			default:
				b.WriteByte(' ')
			}
		}
		b.WriteString(" │\n")
	}
	b.WriteString("└" + edge + "┘")

	return b.String(), nil
}
