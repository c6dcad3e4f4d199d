package game

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-mudmaze/internal/display"
	"github.com/pixil98/go-mudmaze/internal/topology"
)

const (
	DefaultAwayTimeout = 300 * time.Second
	idleAwayMessage    = "Idle"
)

// World owns the maze, its players and mobs. Every exported method expects
// to be called from inside Exec.
type World struct {
	mu       sync.Mutex
	deferred []func()

	maze     *Maze
	clock    Clock
	rand     Rand
	notifier Notifier
	observer Observer
	sink     EscapeSink

	admins      map[string]bool
	awayTimeout time.Duration

	players   map[string]*Player
	mobs      map[int]Mob
	nextMobID int

	started time.Time
	online  int
	high    int
	total   int

	escapes []EscapeRecord
	stats   EscapeStats
}

type WorldOpt func(*World)

func WithClock(c Clock) WorldOpt {
	return func(w *World) {
		w.clock = c
	}
}

func WithRand(r Rand) WorldOpt {
	return func(w *World) {
		w.rand = r
	}
}

func WithNotifier(n Notifier) WorldOpt {
	return func(w *World) {
		w.notifier = n
	}
}

func WithObserver(o Observer) WorldOpt {
	return func(w *World) {
		w.observer = o
	}
}

// WithEscapeSink sets where new escape records are persisted.
func WithEscapeSink(s EscapeSink) WorldOpt {
	return func(w *World) {
		w.sink = s
	}
}

// WithAdmins sets the user ids allowed to run admin commands.
func WithAdmins(ids ...string) WorldOpt {
	return func(w *World) {
		for _, id := range ids {
			w.admins[id] = true
		}
	}
}

func WithAwayTimeout(d time.Duration) WorldOpt {
	return func(w *World) {
		w.awayTimeout = d
	}
}

// WithEscapeHistory seeds the escape log with previously persisted records.
func WithEscapeHistory(recs []EscapeRecord) WorldOpt {
	return func(w *World) {
		w.escapes = append(w.escapes, recs...)
	}
}

// NewWorld builds a world around m and spawns its mobs.
func NewWorld(m *Maze, opts ...WorldOpt) (*World, error) {
	w := &World{
		maze:        m,
		clock:       systemClock{},
		rand:        NewRand(uint64(time.Now().UnixNano())),
		notifier:    NotifierFunc(func(string, string) {}),
		observer:    noopObserver{},
		sink:        noopSink{},
		admins:      map[string]bool{},
		awayTimeout: DefaultAwayTimeout,
		players:     map[string]*Player{},
		mobs:        map[int]Mob{},
		stats:       newEscapeStats(),
	}

	for _, opt := range opts {
		opt(w)
	}

	w.started = w.clock.Now()
	for i := range w.escapes {
		w.stats.add(w.escapes, i)
	}

	err := w.Exec(func() error {
		return w.populate()
	})
	if err != nil {
		return nil, err
	}

	return w, nil
}

// Exec runs fn under the world lock. Mob hooks queued by fn run afterwards,
// still under the lock, before Exec returns.
func (w *World) Exec(fn func() error) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	err := fn()
	for len(w.deferred) > 0 {
		next := w.deferred[0]
		w.deferred = w.deferred[1:]
		next()
	}
	return err
}

// later queues f to run once the current operation finishes.
func (w *World) later(f func()) {
	w.deferred = append(w.deferred, f)
}

func (w *World) Maze() *Maze {
	return w.maze
}

// Player returns the player for a user id.
func (w *World) Player(id string) (*Player, bool) {
	p, ok := w.players[id]
	return p, ok
}

// Players returns every known player ordered by username.
func (w *World) Players() []*Player {
	out := make([]*Player, 0, len(w.players))
	for _, p := range w.players {
		out = append(out, p)
	}
	slices.SortFunc(out, func(a, b *Player) int {
		return cmp.Or(cmp.Compare(a.Username, b.Username), cmp.Compare(a.ID, b.ID))
	})
	return out
}

// OnlinePlayers returns the players currently in the maze.
func (w *World) OnlinePlayers() []*Player {
	return slices.DeleteFunc(w.Players(), func(p *Player) bool { return !p.Flags.Online })
}

// Mobs returns the live mobs ordered by id.
func (w *World) Mobs() []Mob {
	out := make([]Mob, 0, len(w.mobs))
	for _, m := range w.mobs {
		out = append(out, m)
	}
	slices.SortFunc(out, func(a, b Mob) int { return cmp.Compare(a.ID(), b.ID()) })
	return out
}

func (w *World) IsAdmin(userID string) bool {
	return w.admins[userID]
}

func (w *World) Now() time.Time {
	return w.clock.Now()
}

func (w *World) othersOnline(p *Player) []*Player {
	return slices.DeleteFunc(w.OnlinePlayers(), func(o *Player) bool { return o == p })
}

func (w *World) playersChanged() {
	w.observer.PlayersChanged(w.online, w.high, w.total)
}

// Join brings a user into the maze, creating their player on first visit.
func (w *World) Join(u User) (*Player, error) {
	p, known := w.players[u.ID]
	if known && p.Flags.Online {
		return nil, ErrPlayerOnline
	}

	now := w.clock.Now()
	if !known {
		w.tellAll(w.OnlinePlayers(), fmt.Sprintf("%s has entered the maze!", u.Username))
		p = newPlayer(u, w.maze, now)
		for i, rec := range w.escapes {
			if rec.UserID == p.ID {
				p.Stats.add(w.escapes, i)
			}
		}
		w.players[u.ID] = p
		w.total++
	}

	room := w.maze.Room(p.Position)
	if room == nil {
		room = w.maze.SpawnRoom()
	}
	if known {
		w.tellAll(room.players, fmt.Sprintf("%s joins", p.Username))
	}

	p.LastJoin = now
	p.Flags.Online = true
	p.Flags.Away = false
	p.Flags.Quit = false
	p.Flags.Joining = true
	p.AwayMessage = ""

	w.online++
	w.high = max(w.high, w.online)

	t := transition{}
	if p.Flags.Captive {
		t.stepSound = thudStepSound
	}
	if err := w.enterRoom(room, p, t); err != nil {
		return nil, err
	}
	p.Flags.Joining = false

	w.StartIdleTimer(p)
	w.playersChanged()

	slog.Info("player joined", "user", p.Username, "id", p.ID, "position", p.Position)
	return p, nil
}

// Quit thanks the player and takes them out of the maze.
func (w *World) Quit(p *Player) error {
	if !p.Flags.Online {
		return ErrNotPlaying
	}
	w.tell(p, fmt.Sprintf("Thank you for playing %s!", w.maze.Name()))
	p.Flags.Quit = true
	return w.leave(p, fmt.Sprintf("%s quits", p.Username))
}

// Disconnect takes a player out of the maze when their connection drops.
func (w *World) Disconnect(p *Player) error {
	if !p.Flags.Online {
		return nil
	}
	return w.leave(p, fmt.Sprintf("%s quits", p.Username))
}

func (w *World) leave(p *Player, notice string) error {
	if room := w.maze.Room(p.Position); room != nil {
		if err := w.exitRoom(room, p, transition{teleport: true}); err != nil {
			return err
		}
		w.tellAll(room.players, notice)
		for _, m := range room.mobs {
			if h, ok := m.(playerQuitHook); ok {
				w.later(func() { h.onPlayerQuit(w, p) })
			}
		}
	}

	w.logout(p)
	if p.Flags.Debug && !p.Flags.Escaped {
		w.reinsert(p)
	}
	w.playersChanged()

	slog.Info("player left", "user", p.Username, "id", p.ID)
	return nil
}

// logout ends the online interval. The caller has already taken the player
// out of their room.
func (w *World) logout(p *Player) {
	now := w.clock.Now()
	p.LastQuit = now
	p.Time += now.Sub(p.LastJoin)
	p.Flags.Online = false
	w.online--

	w.StopIdleTimer(p)
	w.stopDisorientation(p)
}

// reinsert starts a fresh run at the spawn room.
func (w *World) reinsert(p *Player) {
	p.Time = 0
	p.Moves = 0
	p.Automap = NewAutomap(w.maze.Grid())
	p.Flags.Escaped = false
	p.Flags.Debug = false
	p.Flags.Captive = true
	p.Position = w.maze.Spawn()
}

// Move walks p through the exit in direction dir. A disoriented player goes
// through a random exit instead.
func (w *World) Move(p *Player, dir topology.Direction) error {
	if !p.Flags.Online {
		return ErrNotPlaying
	}
	room := w.maze.Room(p.Position)
	if room == nil {
		return fmt.Errorf("%w: %s is at %v", ErrOccupancyViolation, p.Username, p.Position)
	}

	if p.Flags.Disoriented {
		if exits := room.Exits(); len(exits) > 0 {
			dir = exits[w.rand.IntN(len(exits))]
		}
	}

	to, rt, err := w.maze.landing(room, dir)
	if err != nil {
		return err
	}

	if err := w.exitRoom(room, p, transition{toDir: dir.Long()}); err != nil {
		return err
	}
	p.recordMove(dir)
	p.Moves++

	if rt.escape || to == nil {
		w.escape(p, room)
		return nil
	}
	return w.enterRoom(to, p, transition{fromDir: rt.fromDir})
}

// escape ends the player's run after they left through room.
func (w *World) escape(p *Player, room *Room) {
	p.Flags.Escaped = true
	w.logout(p)

	msg := "Congratulations! You have escaped the maze!"
	if !p.Flags.Debug {
		rec := EscapeRecord{
			ID:       uuid.NewString(),
			UserID:   p.ID,
			Username: p.Username,
			Escaped:  w.clock.Now(),
			Time:     p.Time,
			Moves:    p.Moves,
		}
		w.escapes = append(w.escapes, rec)
		idx := len(w.escapes) - 1

		if w.stats.add(w.escapes, idx) {
			msg += " New record!"
		}
		p.Stats.add(w.escapes, idx)

		w.sink.Record(rec)
		w.observer.Escaped(rec)
		w.tellAll(w.othersOnline(p), fmt.Sprintf("%s has escaped the maze!", p.Username))

		slog.Info("player escaped", "user", p.Username, "id", p.ID, "time", p.Time, "moves", p.Moves)
	}
	w.tell(p, fmt.Sprintf("%s\nTime: %s\nMoves: %d", msg, display.Duration(p.Time), p.Moves))

	for _, m := range room.mobs {
		if h, ok := m.(playerEscapeHook); ok {
			w.later(func() { h.onPlayerEscape(w, p) })
		}
	}

	w.reinsert(p)
	w.playersChanged()
}

// Teleport moves p directly to pos and turns on debug mode.
func (w *World) Teleport(p *Player, pos topology.Position) error {
	if !p.Flags.Online {
		return ErrNotPlaying
	}
	to := w.maze.Room(pos)
	if to == nil {
		return fmt.Errorf("%w %v", ErrInvalidDestination, pos)
	}

	w.SetDebug(p)
	p.Flags.Captive = true
	return w.relocate(p, w.maze.Room(p.Position), to, transition{teleport: true})
}

// SetDebug discards the stats of the player's current run.
func (w *World) SetDebug(p *Player) {
	p.Flags.Debug = true
	w.tell(p, "*Debug mode enabled until logout or escape. Stats will be discarded.*")
}

// capture drags p back to the spawn room as a captive.
func (w *World) capture(p *Player) error {
	p.Flags.Captive = true
	return w.relocate(p, w.maze.Room(p.Position), w.maze.SpawnRoom(), transition{
		stepSound: thudStepSound,
		teleport:  true,
	})
}

// SetAway marks p away with an optional message.
func (w *World) SetAway(p *Player, msg string) {
	p.Flags.Away = true
	p.AwayMessage = msg
	w.StopIdleTimer(p)

	if msg != "" {
		w.tell(p, "You are now away: "+msg)
	} else {
		w.tell(p, "You are now away.")
	}
	w.awayChanged(p)
}

// ClearAway marks p present again.
func (w *World) ClearAway(p *Player) {
	if !p.Flags.Away {
		return
	}
	p.Flags.Away = false
	p.AwayMessage = ""
	w.tell(p, "You are no longer away.")
	w.awayChanged(p)
}

func (w *World) awayChanged(p *Player) {
	room := w.maze.Room(p.Position)
	if room == nil || !p.Flags.Online {
		return
	}
	for _, m := range room.mobs {
		if h, ok := m.(playerAwayHook); ok {
			w.later(func() { h.onPlayerAway(w, p) })
		}
	}
}

// StartIdleTimer arms the timer that marks p away after a period without input.
func (w *World) StartIdleTimer(p *Player) {
	w.StopIdleTimer(p)
	if !p.Flags.Online || p.Flags.Away || w.awayTimeout <= 0 {
		return
	}
	p.awayTimer = w.after(w.awayTimeout, func() {
		p.awayTimer = nil
		if p.Flags.Online && !p.Flags.Away {
			w.SetAway(p, idleAwayMessage)
		}
	})
}

func (w *World) StopIdleTimer(p *Player) {
	p.awayTimer.stop()
	p.awayTimer = nil
}

// disorient scrambles p's movement for d, replacing any running disorientation.
func (w *World) disorient(p *Player, d time.Duration, stopMsg string) {
	p.disorientTimer.stop()
	p.Flags.Disoriented = true
	p.disorientTimer = w.after(d, func() {
		p.disorientTimer = nil
		p.Flags.Disoriented = false
		w.tell(p, stopMsg)
	})
}

func (w *World) stopDisorientation(p *Player) {
	p.disorientTimer.stop()
	p.disorientTimer = nil
	p.Flags.Disoriented = false
}

// Look describes the player's room to them.
func (w *World) Look(p *Player) error {
	room := w.maze.Room(p.Position)
	if room == nil || !p.Flags.Online {
		return ErrNotPlaying
	}
	w.tell(p, room.View(p))
	return nil
}

// Listen returns what p hears from every neighboring room.
func (w *World) Listen(p *Player) ([]string, error) {
	if !p.Flags.Online {
		return nil, ErrNotPlaying
	}
	return w.sounds(p.Position, p, topology.Position{Level: -1}), nil
}

// Stats is a snapshot of the world-wide counters.
type Stats struct {
	Started time.Time
	Online  int
	High    int
	Total   int
	Escapes EscapeStats
}

func (w *World) GlobalStats() Stats {
	return Stats{
		Started: w.started,
		Online:  w.online,
		High:    w.high,
		Total:   w.total,
		Escapes: w.stats,
	}
}

// EscapeRecord returns entry i of the escape log.
func (w *World) EscapeRecord(i int) (EscapeRecord, bool) {
	if i < 0 || i >= len(w.escapes) {
		return EscapeRecord{}, false
	}
	return w.escapes[i], true
}

// Audit checks that every online player and every mob stands in exactly one
// room, and that offline players stand nowhere.
func (w *World) Audit() error {
	el := errors.NewErrorList()

	playerRooms := map[*Player]int{}
	mobRooms := map[Mob]int{}
	for _, r := range w.maze.Rooms(-1) {
		for _, p := range r.players {
			playerRooms[p]++
			if p.Position != r.pos {
				el.Add(fmt.Errorf("%w: %s is listed in %v but positioned at %v", ErrOccupancyViolation, p.Username, r.pos, p.Position))
			}
		}
		for _, m := range r.mobs {
			mobRooms[m]++
			if !w.alive(m) {
				el.Add(fmt.Errorf("%w: unregistered %s %d in %v", ErrOccupancyViolation, m.Kind(), m.ID(), r.pos))
			}
		}
	}

	for _, p := range w.players {
		exp := 0
		if p.Flags.Online {
			exp = 1
		}
		if n := playerRooms[p]; n != exp {
			el.Add(fmt.Errorf("%w: %s is in %d rooms", ErrOccupancyViolation, p.Username, n))
		}
	}
	for _, m := range w.mobs {
		if n := mobRooms[m]; n != 1 {
			el.Add(fmt.Errorf("%w: %s %d is in %d rooms", ErrOccupancyViolation, m.Kind(), m.ID(), n))
		}
	}

	return el.Err()
}

// Auditor periodically runs Audit from the driver loop.
type Auditor struct {
	world *World
}

func NewAuditor(w *World) *Auditor {
	return &Auditor{world: w}
}

func (a *Auditor) Tick(ctx context.Context) error {
	err := a.world.Exec(a.world.Audit)
	if err != nil {
		slog.ErrorContext(ctx, "world audit failed", "error", err)
	}
	return nil
}
