package game

import (
	"log/slog"

	"github.com/pixil98/go-mudmaze/internal/topology"
)

const (
	cultistCaptiveChance = 0.1
	cultistForgetChance  = 0.5
)

// cultist keeps to its level and ambushes the first player it meets, then
// vanishes and a new one appears elsewhere on the level.
type cultist struct {
	mobileObject
}

func newCultist() *cultist {
	return &cultist{mobileObject{
		kind:       KindCultist,
		stepSound:  "chanting",
		directions: topology.Planar,
	}}
}

func (c *cultist) onPlayerEnter(w *World, p *Player) {
	if w.sharesRoom(c, p) {
		c.encounter(w, p)
	}
}

func (c *cultist) afterMove(w *World) {
	if p := randomPlayerAt(w, c.pos); p != nil {
		c.encounter(w, p)
	}
}

func (c *cultist) encounter(w *World, p *Player) {
	room := w.maze.Room(c.pos)
	level := c.pos.Level
	w.destroyMob(c)

	s := w.maze.spec.Strings
	bystanders := room.playersExcept(p)
	if len(bystanders) > 0 && w.rand.Float64() < cultistCaptiveChance {
		w.tell(p, w.text(s.CultistCaptive, p))
		w.tellAll(bystanders, w.text(s.CultistCaptiveBystander, p))
		if err := w.capture(p); err != nil {
			slog.Error("cultist capturing player", "user", p.Username, "error", err)
		}
	} else {
		if w.rand.Float64() < cultistForgetChance {
			// The current room is marked again on the next entry
			p.Automap = NewAutomap(w.maze.Grid())
			w.tell(p, w.text(s.CultistLoseMap, p))
		} else {
			w.tell(p, w.text(s.CultistKeepMap, p))
		}
		w.tellAll(bystanders, w.text(s.CultistBystander, p))
	}

	w.respawn(newCultist(), level)
}

// randomPlayerAt picks one of the players at pos, or nil.
func randomPlayerAt(w *World, pos topology.Position) *Player {
	room := w.maze.Room(pos)
	if room == nil || len(room.players) == 0 {
		return nil
	}
	return room.players[w.rand.IntN(len(room.players))]
}
