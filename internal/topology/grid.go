package topology

import "fmt"

// Position addresses a room by level and flattened room index (x + width*y).
type Position struct {
	Level int `json:"level" yaml:"level"`
	Room  int `json:"room" yaml:"room"`
}

func (p Position) String() string {
	return fmt.Sprintf("(%d, %d)", p.Level, p.Room)
}

// Grid describes the dimensions of a maze: depth stacked levels of width*height rooms.
type Grid struct {
	Depth  int
	Width  int
	Height int
}

// Size is the number of rooms on a single level.
func (g Grid) Size() int {
	return g.Width * g.Height
}

// Contains reports whether p lies inside the grid.
func (g Grid) Contains(p Position) bool {
	return p.Level >= 0 && p.Level < g.Depth && p.Room >= 0 && p.Room < g.Size()
}

// Index flattens x, y, z coordinates into a position.
func (g Grid) Index(x, y, z int) Position {
	return Position{Level: z, Room: x + g.Width*y}
}

// Coords expands a position into x, y, z coordinates.
func (g Grid) Coords(p Position) (x, y, z int) {
	return p.Room % g.Width, p.Room / g.Width, p.Level
}

// Adjacent returns the neighbor of p in direction d. The second return is false
// when the neighbor falls outside the grid, including row wraparound on the
// east and west edges.
func (g Grid) Adjacent(p Position, d Direction) (Position, bool) {
	off, ok := offsets[d]
	if !ok || !g.Contains(p) {
		return Position{}, false
	}

	x, y, z := g.Coords(p)
	x, y, z = x+off[0], y+off[1], z+off[2]
	if x < 0 || x >= g.Width || y < 0 || y >= g.Height || z < 0 || z >= g.Depth {
		return Position{}, false
	}

	return g.Index(x, y, z), true
}

// Neighbor is an in-grid position next to some origin, with the direction that
// leads from the origin to it.
type Neighbor struct {
	Position  Position
	Direction Direction
}

// Neighbors returns every in-grid position one step away from p in canonical
// direction order.
func (g Grid) Neighbors(p Position) []Neighbor {
	var ns []Neighbor
	for _, d := range Directions {
		if n, ok := g.Adjacent(p, d); ok {
			ns = append(ns, Neighbor{Position: n, Direction: d})
		}
	}
	return ns
}

// Ray walks from p in direction d, returning every in-grid position along the
// straight line, nearest first.
func (g Grid) Ray(p Position, d Direction) []Position {
	var out []Position
	cur := p
	for {
		next, ok := g.Adjacent(cur, d)
		if !ok {
			return out
		}
		out = append(out, next)
		cur = next
	}
}
