package game

import (
	"log/slog"

	"github.com/pixil98/go-mudmaze/internal/topology"
)

// giantSpider carries off the first player it meets to the spawn room and
// reappears somewhere else in the maze.
type giantSpider struct {
	mobileObject
}

func newGiantSpider() *giantSpider {
	return &giantSpider{mobileObject{
		kind:       KindGiantSpider,
		stepSound:  "clicking",
		directions: topology.Directions,
	}}
}

func (s *giantSpider) onPlayerEnter(w *World, p *Player) {
	if w.sharesRoom(s, p) {
		s.encounter(w, p)
	}
}

func (s *giantSpider) afterMove(w *World) {
	if p := randomPlayerAt(w, s.pos); p != nil {
		s.encounter(w, p)
	}
}

func (s *giantSpider) encounter(w *World, p *Player) {
	room := w.maze.Room(s.pos)
	w.destroyMob(s)

	text := w.maze.spec.Strings
	w.tell(p, w.text(text.SpiderCaptive, p))
	w.tellAll(room.playersExcept(p), w.text(text.SpiderBystander, p))
	if err := w.capture(p); err != nil {
		slog.Error("spider capturing player", "user", p.Username, "error", err)
	}

	w.respawn(newGiantSpider(), -1)
}
