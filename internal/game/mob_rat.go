package game

import "github.com/pixil98/go-mudmaze/internal/topology"

// maxRatFlights bounds how many rooms a rat runs through in one scare.
const maxRatFlights = 3

// rat keeps to its level and bolts whenever a player comes near.
type rat struct {
	mobileObject
	flights int
}

func newRat() *rat {
	return &rat{mobileObject: mobileObject{
		kind:       KindRat,
		stepSound:  "scurrying",
		directions: topology.Planar,
	}}
}

func (r *rat) onPlayerEnter(w *World, p *Player) {
	if !w.sharesRoom(r, p) {
		return
	}
	r.flights = 0
	r.flee(w)
}

func (r *rat) flee(w *World) {
	if !w.alive(r) || r.flights >= maxRatFlights {
		return
	}
	r.flights++
	w.moveMob(r)
}

func (r *rat) afterMove(w *World) {
	if room := w.maze.Room(r.pos); room != nil && room.HasPlayers() {
		w.later(func() { r.flee(w) })
		return
	}
	r.flights = 0
}
