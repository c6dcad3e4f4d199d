package game

import (
	"strings"
	"testing"
	"time"

	"github.com/pixil98/go-mudmaze/internal/topology"
)

type fakeTimer struct {
	at      time.Time
	f       func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// fakeClock fires timers synchronously from Advance.
type fakeClock struct {
	now    time.Time
	timers []*fakeTimer
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	t := &fakeTimer{at: c.now.Add(d), f: f}
	c.timers = append(c.timers, t)
	return t
}

func (c *fakeClock) Advance(d time.Duration) {
	target := c.now.Add(d)
	for {
		var next *fakeTimer
		for _, t := range c.timers {
			if t.stopped || t.fired || t.at.After(target) {
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
		next.fired = true
		next.f()
	}
	c.now = target
}

// scriptedRand replays fixed draws. Once exhausted IntN returns 0 and
// Float64 returns 0.99, which fails every chance roll.
type scriptedRand struct {
	ints   []int
	floats []float64
}

func (r *scriptedRand) IntN(n int) int {
	if len(r.ints) == 0 {
		return 0
	}
	v := r.ints[0]
	r.ints = r.ints[1:]
	return v % n
}

func (r *scriptedRand) Float64() float64 {
	if len(r.floats) == 0 {
		return 0.99
	}
	v := r.floats[0]
	r.floats = r.floats[1:]
	return v
}

type recorder struct {
	msgs map[string][]string
}

func newRecorder() *recorder {
	return &recorder{msgs: map[string][]string{}}
}

func (r *recorder) Notify(userID string, msg string) {
	r.msgs[userID] = append(r.msgs[userID], msg)
}

func (r *recorder) text(userID string) string {
	return strings.Join(r.msgs[userID], "\n")
}

func (r *recorder) reset() {
	r.msgs = map[string][]string{}
}

type sinkRecorder struct {
	recs []EscapeRecord
}

func (s *sinkRecorder) Record(rec EscapeRecord) {
	s.recs = append(s.recs, rec)
}

// rowSpec is a single-row maze of n rooms joined east to west. The spawn room
// is at x=0.
func rowSpec(n int, mobs MobSpawns) *MazeSpec {
	spec := &MazeSpec{
		Name:            "Test Maze",
		Description:     "A maze for testing.",
		Depth:           1,
		Width:           n,
		Height:          1,
		DefaultRoomName: "Passage",
		DefaultRoomDesc: "A narrow passage.",
		Mobs:            mobs,
	}
	for x := 0; x < n; x++ {
		exits := map[topology.Direction]Exit{}
		if x > 0 {
			exits[topology.West] = Exit{}
		}
		if x < n-1 {
			exits[topology.East] = Exit{}
		}
		spec.Rooms = append(spec.Rooms, RoomSpec{X: x, Exits: exits})
	}
	return spec
}

func at(x int) topology.Position {
	return topology.Position{Level: 0, Room: x}
}

type testWorld struct {
	*World
	clock *fakeClock
	rand  *scriptedRand
	msgs  *recorder
	sink  *sinkRecorder
}

func newTestWorld(t *testing.T, spec *MazeSpec, rnd *scriptedRand, opts ...WorldOpt) *testWorld {
	t.Helper()

	m, err := NewMaze(spec)
	if err != nil {
		t.Fatalf("building maze: %v", err)
	}
	if rnd == nil {
		rnd = &scriptedRand{}
	}

	tw := &testWorld{
		clock: newFakeClock(),
		rand:  rnd,
		msgs:  newRecorder(),
		sink:  &sinkRecorder{},
	}
	opts = append([]WorldOpt{
		WithClock(tw.clock),
		WithRand(tw.rand),
		WithNotifier(tw.msgs),
		WithEscapeSink(tw.sink),
	}, opts...)

	w, err := NewWorld(m, opts...)
	if err != nil {
		t.Fatalf("building world: %v", err)
	}
	tw.World = w
	return tw
}

// do runs fn inside the world lock and fails the test on error.
func (tw *testWorld) do(t *testing.T, fn func() error) {
	t.Helper()
	if err := tw.Exec(fn); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func (tw *testWorld) join(t *testing.T, id, name string) *Player {
	t.Helper()
	var p *Player
	tw.do(t, func() error {
		var err error
		p, err = tw.Join(User{ID: id, Username: name})
		return err
	})
	return p
}

func (tw *testWorld) move(t *testing.T, p *Player, d topology.Direction) {
	t.Helper()
	tw.do(t, func() error { return tw.Move(p, d) })
}

func (tw *testWorld) audit(t *testing.T) {
	t.Helper()
	if err := tw.Exec(tw.Audit); err != nil {
		t.Errorf("audit: %v", err)
	}
}

func (tw *testWorld) mobsOf(k Kind) []Mob {
	var out []Mob
	for _, m := range tw.Mobs() {
		if m.Kind() == k {
			out = append(out, m)
		}
	}
	return out
}

func assertContains(t *testing.T, name, got, substr string) {
	t.Helper()
	if !strings.Contains(got, substr) {
		t.Errorf("%s: %q does not contain %q", name, got, substr)
	}
}

func assertNotContains(t *testing.T, name, got, substr string) {
	t.Helper()
	if strings.Contains(got, substr) {
		t.Errorf("%s: %q unexpectedly contains %q", name, got, substr)
	}
}
