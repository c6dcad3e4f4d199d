package commands

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/pixil98/go-mudmaze/internal/game"
	"github.com/pixil98/go-mudmaze/internal/topology"
)

type manualTimer struct {
	at   time.Time
	f    func()
	done bool
}

func (t *manualTimer) Stop() bool {
	if t.done {
		return false
	}
	t.done = true
	return true
}

// manualClock only fires timers from Advance.
type manualClock struct {
	now    time.Time
	timers []*manualTimer
}

func (c *manualClock) Now() time.Time {
	return c.now
}

func (c *manualClock) AfterFunc(d time.Duration, f func()) game.Timer {
	t := &manualTimer{at: c.now.Add(d), f: f}
	c.timers = append(c.timers, t)
	return t
}

func (c *manualClock) Advance(d time.Duration) {
	target := c.now.Add(d)
	for {
		var next *manualTimer
		for _, t := range c.timers {
			if t.done || t.at.After(target) {
				continue
			}
			if next == nil || t.at.Before(next.at) {
				next = t
			}
		}
		if next == nil {
			break
		}
		c.now = next.at
		next.done = true
		next.f()
	}
	c.now = target
}

type inbox struct {
	msgs map[string][]string
}

func (i *inbox) Notify(userID string, msg string) {
	i.msgs[userID] = append(i.msgs[userID], msg)
}

func (i *inbox) text(userID string) string {
	return strings.Join(i.msgs[userID], "\n")
}

func (i *inbox) reset() {
	i.msgs = map[string][]string{}
}

type countingObserver struct {
	runs map[string]int
}

func (o *countingObserver) CommandRun(name string) {
	o.runs[name]++
}

// corridorSpec is a row of three rooms. Walking east out of the last room
// leaves the maze.
func corridorSpec() *game.MazeSpec {
	return &game.MazeSpec{
		Name:            "Test Maze",
		Description:     "A maze for testing.",
		Depth:           1,
		Width:           3,
		Height:          1,
		DefaultRoomName: "Passage",
		DefaultRoomDesc: "A narrow passage.",
		Rooms: []game.RoomSpec{
			{X: 0, Exits: map[topology.Direction]game.Exit{topology.East: {}}},
			{X: 1, Exits: map[topology.Direction]game.Exit{topology.West: {}, topology.East: {}}},
			{X: 2, Exits: map[topology.Direction]game.Exit{topology.West: {}, topology.East: {}}},
		},
	}
}

type fixture struct {
	world *game.World
	h     *Handler
	clock *manualClock
	inbox *inbox
}

func newFixture(t *testing.T, opts ...HandlerOpt) *fixture {
	t.Helper()

	m, err := game.NewMaze(corridorSpec())
	if err != nil {
		t.Fatalf("building maze: %v", err)
	}

	f := &fixture{
		clock: &manualClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)},
		inbox: &inbox{msgs: map[string][]string{}},
	}
	f.world, err = game.NewWorld(m,
		game.WithClock(f.clock),
		game.WithRand(game.NewRand(1)),
		game.WithNotifier(f.inbox),
		game.WithAdmins("1"),
	)
	if err != nil {
		t.Fatalf("building world: %v", err)
	}

	f.h, err = NewHandler(f.world, opts...)
	if err != nil {
		t.Fatalf("building handler: %v", err)
	}
	return f
}

func (f *fixture) join(t *testing.T, id, name string) {
	t.Helper()
	if err := f.h.Join(context.Background(), game.User{ID: id, Username: name}); err != nil {
		t.Fatalf("joining %s: %v", name, err)
	}
}

func (f *fixture) exec(t *testing.T, id, line string) {
	t.Helper()
	if err := f.h.Exec(context.Background(), id, line); err != nil {
		t.Fatalf("exec %q: %v", line, err)
	}
}

func assertContains(t *testing.T, label, got, want string) {
	t.Helper()
	if !strings.Contains(got, want) {
		t.Errorf("%s: expected %q in:\n%s", label, want, got)
	}
}

func assertNotContains(t *testing.T, label, got, unwanted string) {
	t.Helper()
	if strings.Contains(got, unwanted) {
		t.Errorf("%s: did not expect %q in:\n%s", label, unwanted, got)
	}
}
