package game

import (
	"slices"

	"github.com/pixil98/go-mudmaze/internal/topology"
)

// ghost drifts through walls: a direction without an exit carries it along
// the straight line to the next room.
type ghost struct {
	mobileObject
}

func newGhost() *ghost {
	return &ghost{mobileObject{
		kind:       KindGhost,
		stepSound:  "shackles",
		directions: topology.Directions,
	}}
}

func (g *ghost) chooseMove(w *World) (topology.Direction, route, bool) {
	room := w.maze.Room(g.pos)
	if room == nil {
		return "", route{}, false
	}

	dirs := slices.Clone(g.directions)
	if g.lastMove != "" {
		back := g.lastMove.Opposite()
		dirs = slices.DeleteFunc(dirs, func(d topology.Direction) bool { return d == back })
	}

	for len(dirs) > 0 {
		i := w.rand.IntN(len(dirs))
		d := dirs[i]
		dirs = slices.Delete(dirs, i, i+1)

		if ex, ok := room.exits[d]; ok {
			if ex.Escape {
				continue
			}
			to, rt, err := w.maze.landing(room, d)
			if err != nil || to == nil {
				continue
			}
			return d, rt, true
		}

		for _, pos := range w.maze.grid.Ray(g.pos, d) {
			if w.maze.Room(pos) != nil {
				return d, route{to: pos, fromDir: d.Opposite().Long()}, true
			}
		}
	}
	return "", route{}, false
}
