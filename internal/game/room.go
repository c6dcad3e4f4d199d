package game

import (
	"slices"
	"strings"

	"github.com/pixil98/go-mudmaze/internal/display"
	"github.com/pixil98/go-mudmaze/internal/topology"
)

const (
	spawnRoomName   = "Spawn"
	deadEndRoomName = "Dead End"
	deadEndDesc     = "You have reached a dead end."
)

// Room is one cell of the maze with its exits and occupants.
type Room struct {
	maze  *Maze
	pos   topology.Position
	x, y  int
	name  string
	desc  string
	exits map[topology.Direction]Exit

	players []*Player
	mobs    []Mob
}

func newRoom(m *Maze, rs RoomSpec) *Room {
	exits := make(map[topology.Direction]Exit, len(rs.Exits))
	for d, ex := range rs.Exits {
		exits[d] = ex
	}
	return &Room{
		maze:  m,
		pos:   m.grid.Index(rs.X, rs.Y, rs.Z),
		x:     rs.X,
		y:     rs.Y,
		name:  rs.Name,
		desc:  rs.Desc,
		exits: exits,
	}
}

// Position returns the room's level and index.
func (r *Room) Position() topology.Position {
	return r.pos
}

// Coords returns the room's x, y, z coordinates.
func (r *Room) Coords() (x, y, z int) {
	return r.x, r.y, r.pos.Level
}

// Exits returns the room's exit directions in canonical order.
func (r *Room) Exits() []topology.Direction {
	var out []topology.Direction
	for _, d := range topology.Directions {
		if _, ok := r.exits[d]; ok {
			out = append(out, d)
		}
	}
	return out
}

// Exit returns the exit in direction d.
func (r *Room) Exit(d topology.Direction) (Exit, bool) {
	ex, ok := r.exits[d]
	return ex, ok
}

// Name resolves the room name: explicit, "Spawn", "Dead End", then the maze default.
func (r *Room) Name() string {
	switch {
	case r.name != "":
		return r.name
	case r.pos == r.maze.Spawn():
		return spawnRoomName
	case len(r.exits) == 1:
		return deadEndRoomName
	default:
		return r.maze.spec.DefaultRoomName
	}
}

// Description resolves the room description. Rooms without an authored
// description get the maze default (or the dead end text) plus the exit list.
func (r *Room) Description() string {
	if r.desc != "" {
		return r.desc
	}

	desc := deadEndDesc
	if len(r.exits) > 1 {
		desc = r.maze.spec.DefaultRoomDesc
	}
	if desc == "" {
		return exitSentence(r.Exits())
	}
	return desc + " " + exitSentence(r.Exits())
}

// Describe renders the room name on its own line followed by the description.
func (r *Room) Describe() string {
	return r.Name() + "\n" + r.Description()
}

func exitSentence(dirs []topology.Direction) string {
	names := make([]string, len(dirs))
	for i, d := range dirs {
		names[i] = d.Name()
	}

	switch len(names) {
	case 0:
		return "There are no exits."
	case 1:
		return "An exit leads " + names[0] + "."
	default:
		return "Exits lead " + display.JoinList(names) + "."
	}
}

// Players returns the players in the room in arrival order.
func (r *Room) Players() []*Player {
	return slices.Clone(r.players)
}

// Mobs returns the mobs in the room in arrival order.
func (r *Room) Mobs() []Mob {
	return slices.Clone(r.mobs)
}

// HasPlayers reports whether any player is in the room.
func (r *Room) HasPlayers() bool {
	return len(r.players) > 0
}

// hasActivePlayers reports whether any player in the room is not away.
func (r *Room) hasActivePlayers() bool {
	for _, p := range r.players {
		if !p.Flags.Away {
			return true
		}
	}
	return false
}

// playersExcept returns the room's players other than p.
func (r *Room) playersExcept(p *Player) []*Player {
	out := make([]*Player, 0, len(r.players))
	for _, o := range r.players {
		if o != p {
			out = append(out, o)
		}
	}
	return out
}

// PlayerSentence lists the players other than self, marking those who are away.
func (r *Room) PlayerSentence(self *Player) string {
	var names []string
	for _, p := range r.players {
		if p == self {
			continue
		}
		names = append(names, p.displayName())
	}
	return display.Presence(names)
}

// MobSentence lists the mobs in the room ("A cat and a rat are here.").
func (r *Room) MobSentence() string {
	names := make([]string, len(r.mobs))
	for i, m := range r.mobs {
		names[i] = display.Article(string(m.Kind()))
	}
	return display.Presence(names)
}

// View renders the room as seen by p: header, description and occupants.
func (r *Room) View(p *Player) string {
	parts := []string{r.Describe()}
	if s := r.PlayerSentence(p); s != "" {
		parts = append(parts, s)
	}
	if s := r.MobSentence(); s != "" {
		parts = append(parts, s)
	}
	return display.Wrap(strings.Join(parts, "\n"))
}

func (r *Room) addPlayer(p *Player) {
	if !slices.Contains(r.players, p) {
		r.players = append(r.players, p)
	}
}

func (r *Room) removePlayer(p *Player) bool {
	i := slices.Index(r.players, p)
	if i < 0 {
		return false
	}
	r.players = slices.Delete(r.players, i, i+1)
	return true
}

func (r *Room) addMob(m Mob) {
	if !slices.Contains(r.mobs, m) {
		r.mobs = append(r.mobs, m)
	}
}

func (r *Room) removeMob(m Mob) bool {
	i := slices.Index(r.mobs, m)
	if i < 0 {
		return false
	}
	r.mobs = slices.Delete(r.mobs, i, i+1)
	return true
}
