package game

import (
	"time"

	"github.com/pixil98/go-mudmaze/internal/topology"
)

const (
	bansheeDisorientChance = 0.75
	bansheeMinDisorient    = 30 * time.Second
	bansheeDisorientJitter = 30
)

// banshee wails at everyone in the room it meets them in, scrambling their
// sense of direction, then fades and rises again elsewhere.
type banshee struct {
	mobileObject
}

func newBanshee() *banshee {
	return &banshee{mobileObject{
		kind:       KindBanshee,
		stepSound:  "wailing",
		directions: topology.Directions,
	}}
}

func (b *banshee) onPlayerEnter(w *World, p *Player) {
	if w.sharesRoom(b, p) {
		b.encounter(w)
	}
}

func (b *banshee) afterMove(w *World) {
	b.encounter(w)
}

func (b *banshee) encounter(w *World) {
	room := w.maze.Room(b.pos)
	if room == nil || len(room.players) == 0 {
		return
	}
	players := room.Players()
	s := w.maze.spec.Strings

	w.tellAll(players, w.text(s.BansheeAction, nil))
	for _, p := range players {
		if w.rand.Float64() < bansheeDisorientChance {
			d := bansheeMinDisorient + time.Duration(w.rand.IntN(bansheeDisorientJitter+1))*time.Second
			w.disorient(p, d, w.text(s.BansheeStop, p))
			w.tell(p, w.text(s.BansheeStart, p))
		} else {
			w.tell(p, w.text(s.BansheeFail, p))
		}
	}

	w.destroyMob(b)
	w.respawn(newBanshee(), -1)
}
