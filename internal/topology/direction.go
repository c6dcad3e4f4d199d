package topology

import (
	"fmt"
	"strings"
)

// Direction is one of the ten movement codes understood by the maze.
type Direction string

const (
	North     Direction = "n"
	NorthEast Direction = "ne"
	East      Direction = "e"
	SouthEast Direction = "se"
	South     Direction = "s"
	SouthWest Direction = "sw"
	West      Direction = "w"
	NorthWest Direction = "nw"
	Up        Direction = "u"
	Down      Direction = "d"
)

// Directions lists every direction in canonical order.
var Directions = []Direction{North, NorthEast, East, SouthEast, South, SouthWest, West, NorthWest, Up, Down}

// Planar lists the eight compass directions.
var Planar = []Direction{North, NorthEast, East, SouthEast, South, SouthWest, West, NorthWest}

var opposites = map[Direction]Direction{
	North:     South,
	NorthEast: SouthWest,
	East:      West,
	SouthEast: NorthWest,
	South:     North,
	SouthWest: NorthEast,
	West:      East,
	NorthWest: SouthEast,
	Up:        Down,
	Down:      Up,
}

var names = map[Direction]string{
	North:     "north",
	NorthEast: "northeast",
	East:      "east",
	SouthEast: "southeast",
	South:     "south",
	SouthWest: "southwest",
	West:      "west",
	NorthWest: "northwest",
	Up:        "up",
	Down:      "down",
}

// offsets holds the column, row and level deltas for each direction.
var offsets = map[Direction][3]int{
	North:     {0, -1, 0},
	NorthEast: {1, -1, 0},
	East:      {1, 0, 0},
	SouthEast: {1, 1, 0},
	South:     {0, 1, 0},
	SouthWest: {-1, 1, 0},
	West:      {-1, 0, 0},
	NorthWest: {-1, -1, 0},
	Up:        {0, 0, 1},
	Down:      {0, 0, -1},
}

// ParseDirection accepts a direction code or its command word ("n", "north", "up").
func ParseDirection(s string) (Direction, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if d := Direction(s); d.Valid() {
		return d, nil
	}
	for d, name := range names {
		if name == s {
			return d, nil
		}
	}
	return "", fmt.Errorf("unknown direction %q", s)
}

// Valid reports whether d is one of the ten direction codes.
func (d Direction) Valid() bool {
	_, ok := opposites[d]
	return ok
}

// Vertical reports whether d moves between levels.
func (d Direction) Vertical() bool {
	return d == Up || d == Down
}

// Opposite returns the reverse direction. Invalid directions return "".
func (d Direction) Opposite() Direction {
	return opposites[d]
}

// Name is the command word for d, as used in exit lists ("north", "up").
func (d Direction) Name() string {
	return names[d]
}

// Long is the narrative name for d. Vertical moves read as "level above" and
// "level below" so they fit "exits to the ..." and "from the ..." sentences.
func (d Direction) Long() string {
	switch d {
	case Up:
		return "level above"
	case Down:
		return "level below"
	default:
		return names[d]
	}
}

func (d Direction) String() string {
	return string(d)
}
