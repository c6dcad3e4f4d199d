package game

import (
	"fmt"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-mudmaze/internal/topology"
)

// Exit is one edge out of a room. The zero value follows grid adjacency,
// Escape leaves the maze and Dest overrides the destination.
type Exit struct {
	Escape bool         `json:"escape,omitempty" yaml:"escape,omitempty"`
	Dest   *Destination `json:"dest,omitempty" yaml:"dest,omitempty"`
}

// Destination is an explicit exit target. FromDir is how the arrival is
// announced to the destination room ("enters from the <FromDir>").
type Destination struct {
	Position topology.Position `json:"position" yaml:"position"`
	FromDir  string            `json:"from_dir,omitempty" yaml:"from_dir,omitempty"`
}

// RoomSpec declares a single room of the layout.
type RoomSpec struct {
	X     int                         `json:"x" yaml:"x"`
	Y     int                         `json:"y" yaml:"y"`
	Z     int                         `json:"z" yaml:"z"`
	Name  string                      `json:"name,omitempty" yaml:"name,omitempty"`
	Desc  string                      `json:"desc,omitempty" yaml:"desc,omitempty"`
	Exits map[topology.Direction]Exit `json:"exits" yaml:"exits"`
}

// MobSpawns enables mob kinds. Rats and cultists spawn one per level, the
// others one per maze.
type MobSpawns struct {
	Cat         bool `json:"cat,omitempty" yaml:"cat,omitempty"`
	Rat         bool `json:"rat,omitempty" yaml:"rat,omitempty"`
	Cultist     bool `json:"cultist,omitempty" yaml:"cultist,omitempty"`
	GiantSpider bool `json:"giant_spider,omitempty" yaml:"giant_spider,omitempty"`
	Ghost       bool `json:"ghost,omitempty" yaml:"ghost,omitempty"`
	Banshee     bool `json:"banshee,omitempty" yaml:"banshee,omitempty"`
}

// MazeSpec is the declarative layout asset a Maze is built from.
type MazeSpec struct {
	Name            string            `json:"name" yaml:"name"`
	Description     string            `json:"description" yaml:"description"`
	CaptiveText     string            `json:"captive_text,omitempty" yaml:"captive_text,omitempty"`
	Depth           int               `json:"depth" yaml:"depth"`
	Width           int               `json:"width" yaml:"width"`
	Height          int               `json:"height" yaml:"height"`
	Spawn           topology.Position `json:"spawn" yaml:"spawn"`
	DefaultRoomName string            `json:"default_room_name,omitempty" yaml:"default_room_name,omitempty"`
	DefaultRoomDesc string            `json:"default_room_desc,omitempty" yaml:"default_room_desc,omitempty"`
	Footsteps       bool              `json:"footsteps,omitempty" yaml:"footsteps,omitempty"`
	Mobs            MobSpawns         `json:"mobs,omitempty" yaml:"mobs,omitempty"`
	Strings         Strings           `json:"strings,omitempty" yaml:"strings,omitempty"`
	Rooms           []RoomSpec        `json:"rooms" yaml:"rooms"`
}

func (s *MazeSpec) grid() topology.Grid {
	return topology.Grid{Depth: s.Depth, Width: s.Width, Height: s.Height}
}

// Validate checks direction codes, coordinates and destinations.
func (s *MazeSpec) Validate() error {
	el := errors.NewErrorList()

	if s.Name == "" {
		el.Add(fmt.Errorf("name is required"))
	}
	if s.Depth <= 0 || s.Width <= 0 || s.Height <= 0 {
		el.Add(fmt.Errorf("depth, width and height must be positive"))
		return el.Err()
	}

	g := s.grid()
	defined := make(map[topology.Position]bool, len(s.Rooms))
	for _, r := range s.Rooms {
		if r.X < 0 || r.X >= s.Width || r.Y < 0 || r.Y >= s.Height || r.Z < 0 || r.Z >= s.Depth {
			el.Add(fmt.Errorf("room (%d, %d, %d) is outside the grid", r.X, r.Y, r.Z))
			continue
		}
		p := g.Index(r.X, r.Y, r.Z)
		if defined[p] {
			el.Add(fmt.Errorf("room (%d, %d, %d) is defined twice", r.X, r.Y, r.Z))
		}
		defined[p] = true
	}

	for _, r := range s.Rooms {
		for dir, ex := range r.Exits {
			if !dir.Valid() {
				el.Add(fmt.Errorf("room (%d, %d, %d): %w %q", r.X, r.Y, r.Z, ErrInvalidDirection, dir))
			}
			if ex.Dest != nil && !defined[ex.Dest.Position] {
				el.Add(fmt.Errorf("room (%d, %d, %d) exit %s: %w %v", r.X, r.Y, r.Z, dir, ErrInvalidDestination, ex.Dest.Position))
			}
		}
	}

	if !defined[s.Spawn] {
		el.Add(fmt.Errorf("spawn %v is not a room", s.Spawn))
	}

	return el.Err()
}

// Maze is the room grid built from a MazeSpec.
type Maze struct {
	spec  *MazeSpec
	grid  topology.Grid
	rooms [][]*Room
}

// NewMaze validates spec and builds its rooms.
func NewMaze(spec *MazeSpec) (*Maze, error) {
	if spec == nil {
		return nil, fmt.Errorf("maze spec is required")
	}
	if err := spec.Validate(); err != nil {
		return nil, fmt.Errorf("validating maze %q: %w", spec.Name, err)
	}

	cp := *spec
	cp.Strings = spec.Strings.withDefaults()
	m := &Maze{
		spec: &cp,
		grid: cp.grid(),
	}

	m.rooms = make([][]*Room, spec.Depth)
	for l := range m.rooms {
		m.rooms[l] = make([]*Room, m.grid.Size())
	}
	for _, rs := range spec.Rooms {
		r := newRoom(m, rs)
		m.rooms[rs.Z][r.pos.Room] = r
	}

	return m, nil
}

func (m *Maze) Name() string        { return m.spec.Name }
func (m *Maze) Description() string { return m.spec.Description }
func (m *Maze) CaptiveText() string { return m.spec.CaptiveText }
func (m *Maze) Footsteps() bool     { return m.spec.Footsteps }
func (m *Maze) Grid() topology.Grid { return m.grid }
func (m *Maze) Spawn() topology.Position {
	return m.spec.Spawn
}

// Room returns the room at p, or nil for empty cells and positions outside the grid.
func (m *Maze) Room(p topology.Position) *Room {
	if !m.grid.Contains(p) {
		return nil
	}
	return m.rooms[p.Level][p.Room]
}

// SpawnRoom returns the room players start in.
func (m *Maze) SpawnRoom() *Room {
	return m.Room(m.spec.Spawn)
}

// Rooms returns every room, ordered by level then index. A level of -1 means all levels.
func (m *Maze) Rooms(level int) []*Room {
	var out []*Room
	for l, rooms := range m.rooms {
		if level >= 0 && l != level {
			continue
		}
		for _, r := range rooms {
			if r != nil {
				out = append(out, r)
			}
		}
	}
	return out
}

// route is the resolved target of an exit.
type route struct {
	to      topology.Position
	fromDir string
	escape  bool
}

// resolve resolves the exit of r in direction d. Exits that lead off the grid
// resolve as escapes; a missing exit or a malformed override is an error.
func (m *Maze) resolve(r *Room, d topology.Direction) (route, error) {
	ex, ok := r.exits[d]
	if !ok {
		return route{}, ErrNoExit
	}
	if ex.Escape {
		return route{escape: true}, nil
	}
	if ex.Dest != nil {
		if !m.grid.Contains(ex.Dest.Position) {
			return route{}, fmt.Errorf("room %v exit %s: %w %v", r.pos, d, ErrInvalidDestination, ex.Dest.Position)
		}
		return route{to: ex.Dest.Position, fromDir: ex.Dest.FromDir}, nil
	}

	to, ok := m.grid.Adjacent(r.pos, d)
	if !ok {
		return route{escape: true}, nil
	}
	return route{to: to, fromDir: d.Opposite().Long()}, nil
}

// landing returns the room an exit leads into, or nil if it leaves the maze.
func (m *Maze) landing(r *Room, d topology.Direction) (*Room, route, error) {
	rt, err := m.resolve(r, d)
	if err != nil {
		return nil, rt, err
	}
	if rt.escape {
		return nil, rt, nil
	}
	return m.Room(rt.to), rt, nil
}
