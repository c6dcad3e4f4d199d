package game

import (
	"fmt"
	"strings"

	"github.com/pixil98/go-mudmaze/internal/display"
	"github.com/pixil98/go-mudmaze/internal/topology"
)

// Occupant is anything that can stand in a room: a *Player or a Mob.
type Occupant interface {
	StepSound() string
	occupantName() string
}

// transition describes how an occupant leaves or arrives.
type transition struct {
	fromDir   string
	toDir     string
	stepSound string
	teleport  bool
	quiet     bool
}

// exitRoom removes o from r and tells the players left behind.
func (w *World) exitRoom(r *Room, o Occupant, t transition) error {
	switch e := o.(type) {
	case *Player:
		r.removePlayer(e)
		if !t.teleport {
			for _, m := range r.mobs {
				if h, ok := m.(playerExitHook); ok {
					w.later(func() { h.onPlayerExit(w, e) })
				}
			}
		}
		if t.toDir != "" {
			w.tellAll(r.players, fmt.Sprintf("%s exits to the %s.", e.occupantName(), t.toDir))
		}
	case Mob:
		r.removeMob(e)
		if t.toDir != "" {
			w.tellAll(r.players, fmt.Sprintf("%s exits to the %s.", e.base().occupantName(), t.toDir))
		}
	default:
		return fmt.Errorf("%w %T", ErrUnknownEntity, o)
	}
	return nil
}

// enterRoom adds o to r and runs the arrival side effects.
func (w *World) enterRoom(r *Room, o Occupant, t transition) error {
	if r == nil {
		return fmt.Errorf("%w: no room", ErrInvalidDestination)
	}

	switch e := o.(type) {
	case *Player:
		prev := e.Position
		w.announceArrival(r, e.occupantName(), t)

		r.addPlayer(e)
		e.Position = r.pos
		e.Automap.Visit(r.pos)

		w.tell(e, w.arrivalText(r, e))
		for _, m := range r.mobs {
			if h, ok := m.(playerEnterHook); ok {
				w.later(func() { h.onPlayerEnter(w, e) })
			}
		}
		e.Flags.Captive = false

		if !t.quiet {
			w.footsteps(r, o, t, prev)
		}
		if sounds := w.sounds(r.pos, e, prev); len(sounds) > 0 {
			w.tell(e, strings.Join(sounds, "\n"))
		}
		e.recordRoom(r.pos)
	case Mob:
		b := e.base()
		prev := b.pos
		w.announceArrival(r, b.occupantName(), t)
		r.addMob(e)
		b.pos = r.pos
		if !t.quiet {
			w.footsteps(r, o, t, prev)
		}
	default:
		return fmt.Errorf("%w %T", ErrUnknownEntity, o)
	}
	return nil
}

func (w *World) announceArrival(r *Room, name string, t transition) {
	if t.fromDir == "" {
		return
	}
	w.tellAll(r.players, fmt.Sprintf("%s enters from the %s.", name, t.fromDir))
}

// arrivalText is what a player sees on entering r.
func (w *World) arrivalText(r *Room, p *Player) string {
	var b strings.Builder
	if p.Flags.Joining {
		b.WriteString(display.Wrap(fmt.Sprintf("Welcome to %s! %s Type `help` for help!", w.maze.Name(), w.maze.Description())))
		b.WriteString("\n\n")
	}

	if p.Flags.Captive && w.maze.CaptiveText() != "" {
		parts := []string{r.Name() + "\n" + w.maze.CaptiveText() + " " + r.Description()}
		if s := r.PlayerSentence(p); s != "" {
			parts = append(parts, s)
		}
		if s := r.MobSentence(); s != "" {
			parts = append(parts, s)
		}
		b.WriteString(display.Wrap(strings.Join(parts, "\n")))
	} else {
		b.WriteString(r.View(p))
	}
	return b.String()
}

// footsteps tells players in occupied neighbor rooms that o arrived in r. The
// room o came from is skipped.
func (w *World) footsteps(r *Room, o Occupant, t transition, prev topology.Position) {
	if !w.maze.Footsteps() {
		return
	}
	sound := t.stepSound
	if sound == "" {
		sound = o.StepSound()
	}
	if sound == "" {
		return
	}

	for _, n := range w.maze.grid.Neighbors(r.pos) {
		if n.Position == prev {
			continue
		}
		nr := w.maze.Room(n.Position)
		if nr == nil {
			continue
		}
		w.tellAll(nr.players, fmt.Sprintf("You hear %s from the %s.", sound, n.Direction.Opposite().Long()))
	}
}

// sounds lists what self hears from occupants of the rooms around pos,
// skipping the room at exclude.
func (w *World) sounds(pos topology.Position, self *Player, exclude topology.Position) []string {
	var out []string
	for _, n := range w.maze.grid.Neighbors(pos) {
		if n.Position == exclude {
			continue
		}
		nr := w.maze.Room(n.Position)
		if nr == nil {
			continue
		}
		for _, m := range nr.mobs {
			out = append(out, fmt.Sprintf("You hear %s from the %s.", m.StepSound(), n.Direction.Long()))
		}
		for _, p := range nr.players {
			if p == self {
				continue
			}
			out = append(out, fmt.Sprintf("You hear %s from the %s.", p.StepSound(), n.Direction.Long()))
		}
	}
	return out
}

// relocate moves o from one room to another as a single step.
func (w *World) relocate(o Occupant, from, to *Room, t transition) error {
	if to == nil {
		return fmt.Errorf("%w: no room", ErrInvalidDestination)
	}
	if from != nil {
		if err := w.exitRoom(from, o, t); err != nil {
			return err
		}
	}
	return w.enterRoom(to, o, t)
}
