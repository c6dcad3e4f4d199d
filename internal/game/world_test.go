package game

import (
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/pixil98/go-mudmaze/internal/topology"
	"github.com/pixil98/go-testutil"
)

func escapeSpec() *MazeSpec {
	spec := rowSpec(2, MobSpawns{})
	spec.Rooms[1].Exits[topology.East] = Exit{Escape: true}
	return spec
}

func TestWorld_JoinAndMove(t *testing.T) {
	tw := newTestWorld(t, escapeSpec(), nil)

	p := tw.join(t, "u1", "alice")
	testutil.AssertEqual(t, "online", p.Flags.Online, true)
	testutil.AssertEqual(t, "captive cleared", p.Flags.Captive, false)
	testutil.AssertEqual(t, "position", p.Position, at(0))
	testutil.AssertEqual(t, "spawn visited", p.Automap.Visited(at(0)), true)
	assertContains(t, "welcome", tw.msgs.text("u1"), "Welcome to Test Maze!")
	assertContains(t, "room name", tw.msgs.text("u1"), "Spawn")

	tw.move(t, p, topology.East)
	testutil.AssertEqual(t, "position", p.Position, at(1))
	testutil.AssertEqual(t, "moves", p.Moves, 1)
	if got := p.Automap.Level(0); !slices.Equal(got, []bool{true, true}) {
		t.Errorf("automap = %v, expected [true true]", got)
	}
	tw.audit(t)
}

func TestWorld_JoinTwice(t *testing.T) {
	tw := newTestWorld(t, escapeSpec(), nil)
	tw.join(t, "u1", "alice")

	err := tw.Exec(func() error {
		_, err := tw.Join(User{ID: "u1", Username: "alice"})
		return err
	})
	if !errors.Is(err, ErrPlayerOnline) {
		t.Errorf("error = %v, expected %v", err, ErrPlayerOnline)
	}
}

func TestWorld_MoveNotifiesOccupants(t *testing.T) {
	tw := newTestWorld(t, rowSpec(3, MobSpawns{}), nil)
	alice := tw.join(t, "u1", "alice")
	bob := tw.join(t, "u2", "bob")
	assertContains(t, "new player broadcast", tw.msgs.text("u1"), "bob has entered the maze!")

	tw.msgs.reset()
	tw.move(t, alice, topology.East)
	assertContains(t, "exit notice", tw.msgs.text("u2"), "alice exits to the east.")

	tw.msgs.reset()
	tw.move(t, bob, topology.East)
	assertContains(t, "enter notice", tw.msgs.text("u1"), "bob enters from the west.")
	assertContains(t, "occupants", tw.msgs.text("u2"), "Alice is here.")
}

func TestWorld_MoveNoExit(t *testing.T) {
	tw := newTestWorld(t, rowSpec(3, MobSpawns{}), nil)
	p := tw.join(t, "u1", "alice")

	err := tw.Exec(func() error { return tw.Move(p, topology.North) })
	if !errors.Is(err, ErrNoExit) {
		t.Errorf("error = %v, expected %v", err, ErrNoExit)
	}
	testutil.AssertEqual(t, "position", p.Position, at(0))
	testutil.AssertEqual(t, "moves", p.Moves, 0)
}

func TestWorld_Footsteps(t *testing.T) {
	spec := rowSpec(3, MobSpawns{})
	spec.Footsteps = true
	tw := newTestWorld(t, spec, nil)

	alice := tw.join(t, "u1", "alice")
	tw.move(t, alice, topology.East)
	tw.move(t, alice, topology.East)
	bob := tw.join(t, "u2", "bob")

	tw.msgs.reset()
	tw.move(t, bob, topology.East)
	assertContains(t, "alice hears", tw.msgs.text("u1"), "You hear footsteps from the west.")
	assertContains(t, "bob hears", tw.msgs.text("u2"), "You hear footsteps from the east.")
}

func TestWorld_FootstepsSkipRoomLeft(t *testing.T) {
	spec := rowSpec(3, MobSpawns{})
	spec.Footsteps = true
	tw := newTestWorld(t, spec, nil)

	tw.join(t, "u1", "alice")
	bob := tw.join(t, "u2", "bob")

	tw.msgs.reset()
	tw.move(t, bob, topology.East)
	assertNotContains(t, "alice hears", tw.msgs.text("u1"), "You hear")
}

func TestWorld_Listen(t *testing.T) {
	tw := newTestWorld(t, rowSpec(2, MobSpawns{}), nil)
	alice := tw.join(t, "u1", "alice")
	bob := tw.join(t, "u2", "bob")
	tw.move(t, bob, topology.East)

	var got []string
	tw.do(t, func() error {
		var err error
		got, err = tw.Listen(alice)
		return err
	})
	if exp := []string{"You hear footsteps from the east."}; !slices.Equal(got, exp) {
		t.Errorf("listen = %v, expected %v", got, exp)
	}
}

func TestWorld_Escape(t *testing.T) {
	tw := newTestWorld(t, escapeSpec(), nil)
	carol := tw.join(t, "u3", "carol")
	alice := tw.join(t, "u1", "alice")

	tw.move(t, alice, topology.East)
	tw.clock.Advance(90 * time.Second)
	tw.msgs.reset()
	tw.move(t, alice, topology.East)

	out := tw.msgs.text("u1")
	assertContains(t, "congratulations", out, "Congratulations! You have escaped the maze! New record!")
	assertContains(t, "time", out, "Time: 1 minute and 30 seconds")
	assertContains(t, "moves", out, "Moves: 2")
	assertContains(t, "broadcast", tw.msgs.text(carol.ID), "alice has escaped the maze!")

	if len(tw.sink.recs) != 1 {
		t.Fatalf("sink recorded %d escapes, expected 1", len(tw.sink.recs))
	}
	rec := tw.sink.recs[0]
	testutil.AssertEqual(t, "record user", rec.UserID, "u1")
	testutil.AssertEqual(t, "record time", rec.Time, 90*time.Second)
	testutil.AssertEqual(t, "record moves", rec.Moves, 2)

	testutil.AssertEqual(t, "online", alice.Flags.Online, false)
	testutil.AssertEqual(t, "escaped reset", alice.Flags.Escaped, false)
	testutil.AssertEqual(t, "captive", alice.Flags.Captive, true)
	testutil.AssertEqual(t, "position", alice.Position, at(0))
	testutil.AssertEqual(t, "moves reset", alice.Moves, 0)
	testutil.AssertEqual(t, "time reset", alice.Time, time.Duration(0))
	testutil.AssertEqual(t, "automap reset", alice.Automap.Visited(at(1)), false)
	testutil.AssertEqual(t, "player escapes", alice.Stats.Count, 1)

	stats := tw.GlobalStats()
	testutil.AssertEqual(t, "global escapes", stats.Escapes.Count, 1)
	testutil.AssertEqual(t, "fastest", stats.Escapes.Records.Time, 0)
	testutil.AssertEqual(t, "online count", stats.Online, 1)
	tw.audit(t)

	tw.join(t, "u1", "alice")
	testutil.AssertEqual(t, "rejoined at spawn", alice.Position, at(0))
	testutil.AssertEqual(t, "rejoined captive cleared", alice.Flags.Captive, false)
	tw.audit(t)
}

func TestWorld_EscapeRecordsAreStrict(t *testing.T) {
	tw := newTestWorld(t, escapeSpec(), nil)

	alice := tw.join(t, "u1", "alice")
	tw.move(t, alice, topology.East)
	tw.clock.Advance(90 * time.Second)
	tw.move(t, alice, topology.East)

	bob := tw.join(t, "u2", "bob")
	tw.move(t, bob, topology.East)
	tw.clock.Advance(2 * time.Minute)
	tw.msgs.reset()
	tw.move(t, bob, topology.East)

	assertNotContains(t, "no new record", tw.msgs.text("u2"), "New record!")
	stats := tw.GlobalStats()
	testutil.AssertEqual(t, "escapes", stats.Escapes.Count, 2)
	testutil.AssertEqual(t, "fastest stays", stats.Escapes.Records.Time, 0)
	testutil.AssertEqual(t, "fewest moves stays", stats.Escapes.Records.Moves, 0)
	testutil.AssertEqual(t, "average time", stats.Escapes.Averages.Time, 105*time.Second)
	testutil.AssertEqual(t, "last", stats.Escapes.Last, 1)
}

func TestWorld_DebugEscapeDiscardsStats(t *testing.T) {
	tw := newTestWorld(t, escapeSpec(), nil)
	carol := tw.join(t, "u3", "carol")
	alice := tw.join(t, "u1", "alice")

	tw.do(t, func() error { return tw.Teleport(alice, at(1)) })
	testutil.AssertEqual(t, "debug", alice.Flags.Debug, true)
	assertContains(t, "debug notice", tw.msgs.text("u1"), "*Debug mode enabled until logout or escape. Stats will be discarded.*")

	tw.msgs.reset()
	tw.move(t, alice, topology.East)
	assertContains(t, "congratulations", tw.msgs.text("u1"), "Congratulations! You have escaped the maze!")
	assertNotContains(t, "no broadcast", tw.msgs.text(carol.ID), "has escaped")
	testutil.AssertEqual(t, "sink", len(tw.sink.recs), 0)
	testutil.AssertEqual(t, "global escapes", tw.GlobalStats().Escapes.Count, 0)
	testutil.AssertEqual(t, "debug cleared", alice.Flags.Debug, false)
}

func TestWorld_TeleportInvalid(t *testing.T) {
	tw := newTestWorld(t, escapeSpec(), nil)
	p := tw.join(t, "u1", "alice")

	err := tw.Exec(func() error { return tw.Teleport(p, at(7)) })
	if !errors.Is(err, ErrInvalidDestination) {
		t.Errorf("error = %v, expected %v", err, ErrInvalidDestination)
	}
	testutil.AssertEqual(t, "debug", p.Flags.Debug, false)
}

func TestWorld_QuitAndRejoin(t *testing.T) {
	tw := newTestWorld(t, escapeSpec(), nil)
	bob := tw.join(t, "u2", "bob")
	alice := tw.join(t, "u1", "alice")

	tw.clock.Advance(time.Minute)
	tw.do(t, func() error { return tw.Quit(alice) })
	assertContains(t, "thanks", tw.msgs.text("u1"), "Thank you for playing Test Maze!")
	assertContains(t, "room notice", tw.msgs.text(bob.ID), "alice quits")
	testutil.AssertEqual(t, "online", alice.Flags.Online, false)
	testutil.AssertEqual(t, "quit", alice.Flags.Quit, true)
	testutil.AssertEqual(t, "time", alice.Time, time.Minute)
	tw.audit(t)

	tw.msgs.reset()
	tw.join(t, "u1", "alice")
	testutil.AssertEqual(t, "quit cleared", alice.Flags.Quit, false)
	assertContains(t, "rejoin notice", tw.msgs.text(bob.ID), "alice joins")

	stats := tw.GlobalStats()
	testutil.AssertEqual(t, "total", stats.Total, 2)
	testutil.AssertEqual(t, "high", stats.High, 2)
	tw.audit(t)
}

func TestWorld_DebugQuitReinserts(t *testing.T) {
	tw := newTestWorld(t, escapeSpec(), nil)
	p := tw.join(t, "u1", "alice")

	tw.do(t, func() error { return tw.Teleport(p, at(1)) })
	tw.do(t, func() error { return tw.Quit(p) })

	testutil.AssertEqual(t, "position", p.Position, at(0))
	testutil.AssertEqual(t, "debug", p.Flags.Debug, false)
	testutil.AssertEqual(t, "captive", p.Flags.Captive, true)
}

func TestWorld_Disoriented(t *testing.T) {
	tw := newTestWorld(t, rowSpec(3, MobSpawns{}), nil)
	p := tw.join(t, "u1", "alice")
	tw.move(t, p, topology.East)

	tw.do(t, func() error {
		tw.disorient(p, 30*time.Second, "Your head clears.")
		return nil
	})
	testutil.AssertEqual(t, "disoriented", p.Flags.Disoriented, true)

	tw.rand.ints = []int{1}
	tw.move(t, p, topology.North)
	testutil.AssertEqual(t, "remapped to west", p.Position, at(0))

	tw.clock.Advance(30 * time.Second)
	testutil.AssertEqual(t, "cleared", p.Flags.Disoriented, false)
	assertContains(t, "stop message", tw.msgs.text("u1"), "Your head clears.")

	err := tw.Exec(func() error { return tw.Move(p, topology.North) })
	if !errors.Is(err, ErrNoExit) {
		t.Errorf("error = %v, expected %v", err, ErrNoExit)
	}
}

func TestWorld_DisorientedStumblesOut(t *testing.T) {
	tw := newTestWorld(t, escapeSpec(), nil)
	p := tw.join(t, "u1", "alice")
	tw.move(t, p, topology.East)

	tw.do(t, func() error {
		tw.disorient(p, 30*time.Second, "Your head clears.")
		return nil
	})

	// Exits of the far room are east (the way out) then west
	tw.rand.ints = []int{0}
	tw.move(t, p, topology.West)

	assertContains(t, "escaped", tw.msgs.text("u1"), "Congratulations! You have escaped the maze!")
	testutil.AssertEqual(t, "escapes", len(tw.sink.recs), 1)
	testutil.AssertEqual(t, "back at spawn", p.Position, at(0))
}

func TestWorld_DisorientReplacesTimer(t *testing.T) {
	tw := newTestWorld(t, rowSpec(2, MobSpawns{}), nil)
	p := tw.join(t, "u1", "alice")

	tw.do(t, func() error {
		tw.disorient(p, 30*time.Second, "first")
		return nil
	})
	tw.clock.Advance(20 * time.Second)
	tw.do(t, func() error {
		tw.disorient(p, 30*time.Second, "second")
		return nil
	})

	tw.clock.Advance(20 * time.Second)
	testutil.AssertEqual(t, "still disoriented", p.Flags.Disoriented, true)
	assertNotContains(t, "first timer cancelled", tw.msgs.text("u1"), "first")

	tw.clock.Advance(10 * time.Second)
	testutil.AssertEqual(t, "cleared", p.Flags.Disoriented, false)
}

func TestWorld_IdleTimer(t *testing.T) {
	tw := newTestWorld(t, rowSpec(2, MobSpawns{}), nil, WithAwayTimeout(time.Minute))
	p := tw.join(t, "u1", "alice")

	tw.clock.Advance(59 * time.Second)
	testutil.AssertEqual(t, "not yet away", p.Flags.Away, false)

	tw.clock.Advance(time.Second)
	testutil.AssertEqual(t, "away", p.Flags.Away, true)
	testutil.AssertEqual(t, "away message", p.AwayMessage, "Idle")
	assertContains(t, "notice", tw.msgs.text("u1"), "You are now away: Idle")

	tw.do(t, func() error {
		tw.ClearAway(p)
		return nil
	})
	testutil.AssertEqual(t, "back", p.Flags.Away, false)
	assertContains(t, "back notice", tw.msgs.text("u1"), "You are no longer away.")
}

func TestWorld_EscapeHistoryRestoresStats(t *testing.T) {
	history := []EscapeRecord{
		{ID: "a", UserID: "u1", Username: "alice", Time: 2 * time.Minute, Moves: 10},
		{ID: "b", UserID: "u2", Username: "bob", Time: time.Minute, Moves: 12},
		{ID: "c", UserID: "u1", Username: "alice", Time: 3 * time.Minute, Moves: 8},
	}
	tw := newTestWorld(t, rowSpec(2, MobSpawns{}), nil, WithEscapeHistory(history))

	stats := tw.GlobalStats()
	testutil.AssertEqual(t, "count", stats.Escapes.Count, 3)
	testutil.AssertEqual(t, "fastest", stats.Escapes.Records.Time, 1)
	testutil.AssertEqual(t, "fewest moves", stats.Escapes.Records.Moves, 2)
	testutil.AssertEqual(t, "average moves", stats.Escapes.Averages.Moves, 10)

	alice := tw.join(t, "u1", "alice")
	testutil.AssertEqual(t, "player count", alice.Stats.Count, 2)
	testutil.AssertEqual(t, "player fastest", alice.Stats.Records.Time, 0)
	testutil.AssertEqual(t, "player fewest moves", alice.Stats.Records.Moves, 2)
}

func TestWorld_AuditDetectsDoubleOccupancy(t *testing.T) {
	tw := newTestWorld(t, rowSpec(2, MobSpawns{}), nil)
	p := tw.join(t, "u1", "alice")

	err := tw.Exec(func() error {
		tw.maze.Room(at(1)).addPlayer(p)
		return tw.Audit()
	})
	testutil.AssertErrorContains(t, err, ErrOccupancyViolation.Error())
}
