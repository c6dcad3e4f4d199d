package game

import (
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/pixil98/go-mudmaze/internal/topology"
)

// Kind names a mob variety.
type Kind string

const (
	KindCat         Kind = "cat"
	KindRat         Kind = "rat"
	KindCultist     Kind = "cultist"
	KindGiantSpider Kind = "giant spider"
	KindGhost       Kind = "ghost"
	KindBanshee     Kind = "banshee"
)

const (
	DefaultMoveDelay  = 15 * time.Second
	DefaultMoveJitter = 45
)

// Mob is an autonomous maze occupant. The set of implementations is closed:
// every kind embeds mobileObject.
type Mob interface {
	ID() int
	Kind() Kind
	Position() topology.Position
	StepSound() string

	occupantName() string
	base() *mobileObject
}

// Optional hooks a mob kind may implement. They run as deferred tasks after
// the triggering operation, so implementations revalidate presence first.
type (
	playerEnterHook  interface{ onPlayerEnter(w *World, p *Player) }
	playerExitHook   interface{ onPlayerExit(w *World, p *Player) }
	playerAwayHook   interface{ onPlayerAway(w *World, p *Player) }
	playerQuitHook   interface{ onPlayerQuit(w *World, p *Player) }
	playerEscapeHook interface{ onPlayerEscape(w *World, p *Player) }
	afterMoveHook    interface{ afterMove(w *World) }
	moveChooser      interface{ chooseMove(w *World) (topology.Direction, route, bool) }
)

// mobileObject is the state shared by every mob kind.
type mobileObject struct {
	id         int
	kind       Kind
	stepSound  string
	pos        topology.Position
	directions []topology.Direction
	lastMove   topology.Direction
	timer      *timer
}

func (m *mobileObject) ID() int                     { return m.id }
func (m *mobileObject) Kind() Kind                  { return m.kind }
func (m *mobileObject) Position() topology.Position { return m.pos }
func (m *mobileObject) StepSound() string           { return m.stepSound }
func (m *mobileObject) base() *mobileObject         { return m }

func (m *mobileObject) occupantName() string {
	return "A " + string(m.kind)
}

// alive reports whether m is still registered with the world.
func (w *World) alive(m Mob) bool {
	cur, ok := w.mobs[m.base().id]
	return ok && cur == m
}

// sharesRoom reports whether m is alive and standing with the online player p.
func (w *World) sharesRoom(m Mob, p *Player) bool {
	return w.alive(m) && p.Flags.Online && p.Position == m.Position()
}

// moveDelay is the random wait before a mob's next move.
func (w *World) moveDelay() time.Duration {
	return DefaultMoveDelay + time.Duration(w.rand.IntN(DefaultMoveJitter+1))*time.Second
}

// armMob replaces the mob's move timer.
func (w *World) armMob(m Mob, d time.Duration) {
	b := m.base()
	b.timer.stop()
	b.timer = w.after(d, func() {
		b.timer = nil
		w.moveMob(m)
	})
}

// stopMob cancels the mob's move timer.
func (w *World) stopMob(m Mob) {
	b := m.base()
	b.timer.stop()
	b.timer = nil
}

// moveMob takes one random step and re-arms the mob's timer.
func (w *World) moveMob(m Mob) {
	if !w.alive(m) {
		return
	}
	w.stopMob(m)

	var (
		dir   topology.Direction
		rt    route
		moved bool
	)
	if c, ok := m.(moveChooser); ok {
		dir, rt, moved = c.chooseMove(w)
	} else {
		dir, rt, moved = w.chooseMove(m)
	}

	b := m.base()
	if moved {
		from := w.maze.Room(b.pos)
		to := w.maze.Room(rt.to)
		err := w.relocate(m, from, to, transition{toDir: dir.Long(), fromDir: rt.fromDir})
		if err != nil {
			slog.Error("moving mob", "mob", b.id, "kind", b.kind, "error", err)
			moved = false
		} else {
			b.lastMove = dir
			w.observer.MobMoved(b.kind)
		}
	}

	w.armMob(m, w.moveDelay())

	if h, ok := m.(afterMoveHook); ok && moved {
		h.afterMove(w)
	}
}

// chooseMove picks a random usable exit of the mob's room within its allowed
// directions, avoiding an immediate reversal when there is a choice.
func (w *World) chooseMove(m Mob) (topology.Direction, route, bool) {
	b := m.base()
	room := w.maze.Room(b.pos)
	if room == nil {
		return "", route{}, false
	}

	type candidate struct {
		dir topology.Direction
		rt  route
	}
	var cands []candidate
	for _, d := range b.directions {
		ex, ok := room.exits[d]
		if !ok || ex.Escape {
			continue
		}
		to, rt, err := w.maze.landing(room, d)
		if err != nil || to == nil {
			continue
		}
		cands = append(cands, candidate{dir: d, rt: rt})
	}

	if len(cands) > 1 && b.lastMove != "" {
		back := b.lastMove.Opposite()
		cands = slices.DeleteFunc(cands, func(c candidate) bool { return c.dir == back })
	}
	if len(cands) == 0 {
		return "", route{}, false
	}

	c := cands[w.rand.IntN(len(cands))]
	return c.dir, c.rt, true
}

// spawnPositions lists rooms a mob may appear in: not the spawn room and
// without players. A negative level means any level.
func (w *World) spawnPositions(level int) []topology.Position {
	var out []topology.Position
	for _, r := range w.maze.Rooms(level) {
		if r.pos == w.maze.Spawn() || r.HasPlayers() {
			continue
		}
		out = append(out, r.pos)
	}
	return out
}

// spawnMob registers m at a random free room and starts its timer.
func (w *World) spawnMob(m Mob, level int) error {
	positions := w.spawnPositions(level)
	if len(positions) == 0 {
		return ErrNoSpawnRoom
	}
	pos := positions[w.rand.IntN(len(positions))]

	b := m.base()
	w.nextMobID++
	b.id = w.nextMobID
	b.pos = pos
	w.mobs[b.id] = m

	if err := w.enterRoom(w.maze.Room(pos), m, transition{quiet: true}); err != nil {
		delete(w.mobs, b.id)
		return err
	}
	w.armMob(m, w.moveDelay())
	return nil
}

// respawn spawns a fresh mob, logging rather than failing when the maze is full.
func (w *World) respawn(m Mob, level int) {
	if err := w.spawnMob(m, level); err != nil {
		slog.Error("respawning mob", "kind", m.Kind(), "level", level, "error", err)
	}
}

// destroyMob removes m from its room and the registry.
func (w *World) destroyMob(m Mob) {
	w.stopMob(m)
	if r := w.maze.Room(m.base().pos); r != nil {
		r.removeMob(m)
	}
	delete(w.mobs, m.base().id)
}

// newMob builds a mob of the given kind.
func newMob(k Kind) Mob {
	switch k {
	case KindCat:
		return newCat()
	case KindRat:
		return newRat()
	case KindCultist:
		return newCultist()
	case KindGiantSpider:
		return newGiantSpider()
	case KindGhost:
		return newGhost()
	case KindBanshee:
		return newBanshee()
	default:
		return nil
	}
}

// populate spawns the mobs enabled by the layout.
func (w *World) populate() error {
	spawns := w.maze.spec.Mobs
	perMaze := []struct {
		on   bool
		kind Kind
	}{
		{spawns.Cat, KindCat},
		{spawns.GiantSpider, KindGiantSpider},
		{spawns.Ghost, KindGhost},
		{spawns.Banshee, KindBanshee},
	}
	perLevel := []struct {
		on   bool
		kind Kind
	}{
		{spawns.Rat, KindRat},
		{spawns.Cultist, KindCultist},
	}

	for _, s := range perLevel {
		if !s.on {
			continue
		}
		for l := 0; l < w.maze.grid.Depth; l++ {
			if err := w.spawnMob(newMob(s.kind), l); err != nil {
				return fmt.Errorf("spawning %s on level %d: %w", s.kind, l, err)
			}
		}
	}
	for _, s := range perMaze {
		if !s.on {
			continue
		}
		if err := w.spawnMob(newMob(s.kind), -1); err != nil {
			return fmt.Errorf("spawning %s: %w", s.kind, err)
		}
	}
	return nil
}
