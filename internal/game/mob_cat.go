package game

import (
	"log/slog"

	"github.com/pixil98/go-mudmaze/internal/topology"
)

const catFollowChance = 0.5

// cat wanders the whole maze but sits still while anyone is paying attention
// to it, and sometimes trails a player who walks away.
type cat struct {
	mobileObject
}

func newCat() *cat {
	return &cat{mobileObject{
		kind:       KindCat,
		stepSound:  "faint footfalls",
		directions: topology.Directions,
	}}
}

// settle pauses the cat while an active player shares its room and wakes it
// once nobody is left.
func (c *cat) settle(w *World) {
	if !w.alive(c) {
		return
	}
	if room := w.maze.Room(c.pos); room != nil && room.hasActivePlayers() {
		w.stopMob(c)
		return
	}
	if !c.timer.pending() {
		w.armMob(c, w.moveDelay())
	}
}

func (c *cat) onPlayerEnter(w *World, _ *Player) { c.settle(w) }
func (c *cat) onPlayerAway(w *World, _ *Player)  { c.settle(w) }
func (c *cat) onPlayerQuit(w *World, _ *Player)  { c.settle(w) }
func (c *cat) afterMove(w *World)                { c.settle(w) }

func (c *cat) onPlayerEscape(w *World, _ *Player) { c.settle(w) }

func (c *cat) onPlayerExit(w *World, p *Player) {
	if !w.alive(c) {
		return
	}
	defer c.settle(w)

	room := w.maze.Room(c.pos)
	if room == nil || room.HasPlayers() {
		return
	}
	dir, ok := p.lastMove()
	if !ok || !p.Flags.Online || p.Flags.Escaped {
		return
	}
	if w.rand.Float64() >= catFollowChance {
		return
	}

	to := w.maze.Room(p.Position)
	if to == nil || to == room {
		return
	}
	err := w.relocate(c, room, to, transition{toDir: dir.Long(), fromDir: dir.Opposite().Long()})
	if err != nil {
		slog.Error("cat following player", "user", p.Username, "error", err)
		return
	}
	c.lastMove = dir
	w.observer.MobMoved(c.kind)
}
