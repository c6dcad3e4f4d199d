package game

// Notifier delivers text to a player's private channel. Notify must not block;
// delivery happens asynchronously and may be retried.
type Notifier interface {
	Notify(userID string, msg string)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(userID string, msg string)

func (f NotifierFunc) Notify(userID string, msg string) {
	f(userID, msg)
}

// Observer receives world events for metrics.
type Observer interface {
	PlayersChanged(online, high, total int)
	Escaped(rec EscapeRecord)
	MobMoved(kind Kind)
}

// EscapeSink persists escape records. Record must not block.
type EscapeSink interface {
	Record(rec EscapeRecord)
}

type noopObserver struct{}

func (noopObserver) PlayersChanged(int, int, int) {}
func (noopObserver) Escaped(EscapeRecord)         {}
func (noopObserver) MobMoved(Kind)                {}

type noopSink struct{}

func (noopSink) Record(EscapeRecord) {}

// tell sends msg to a single player.
func (w *World) tell(p *Player, msg string) {
	if p == nil || msg == "" {
		return
	}
	w.notifier.Notify(p.ID, msg)
}

// tellAll sends msg to each player.
func (w *World) tellAll(players []*Player, msg string) {
	for _, p := range players {
		w.tell(p, msg)
	}
}

// Tell sends msg to a player.
func (w *World) Tell(p *Player, msg string) {
	w.tell(p, msg)
}
