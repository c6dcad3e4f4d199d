package game

import (
	"errors"
	"testing"
	"time"

	"github.com/pixil98/go-mudmaze/internal/topology"
	"github.com/pixil98/go-testutil"
)

func onlyMob(t *testing.T, tw *testWorld, k Kind) Mob {
	t.Helper()
	mobs := tw.mobsOf(k)
	if len(mobs) != 1 {
		t.Fatalf("found %d %s mobs, expected 1", len(mobs), k)
	}
	return mobs[0]
}

func TestNewWorld_Populate(t *testing.T) {
	spec := rowSpec(4, MobSpawns{Cat: true, Rat: true, Cultist: true, GiantSpider: true, Ghost: true, Banshee: true})
	spec.Depth = 2
	for x := 0; x < 4; x++ {
		spec.Rooms = append(spec.Rooms, RoomSpec{X: x, Z: 1, Exits: map[topology.Direction]Exit{topology.Down: {}}})
	}
	tw := newTestWorld(t, spec, nil)

	tests := map[string]struct {
		kind Kind
		exp  int
	}{
		"one cat":             {kind: KindCat, exp: 1},
		"a rat per level":     {kind: KindRat, exp: 2},
		"a cultist per level": {kind: KindCultist, exp: 2},
		"one spider":          {kind: KindGiantSpider, exp: 1},
		"one ghost":           {kind: KindGhost, exp: 1},
		"one banshee":         {kind: KindBanshee, exp: 1},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			testutil.AssertEqual(t, "count", len(tw.mobsOf(tt.kind)), tt.exp)
		})
	}

	for _, m := range tw.Mobs() {
		if m.Position() == spec.Spawn {
			t.Errorf("%s %d spawned in the spawn room", m.Kind(), m.ID())
		}
	}
	tw.audit(t)
}

func TestNewWorld_NoSpawnRoom(t *testing.T) {
	m, err := NewMaze(rowSpec(1, MobSpawns{Cat: true}))
	if err != nil {
		t.Fatalf("building maze: %v", err)
	}

	_, err = NewWorld(m, WithClock(newFakeClock()), WithRand(&scriptedRand{}))
	if !errors.Is(err, ErrNoSpawnRoom) {
		t.Errorf("error = %v, expected %v", err, ErrNoSpawnRoom)
	}
}

func TestWorld_MobAvoidsReversal(t *testing.T) {
	tw := newTestWorld(t, rowSpec(3, MobSpawns{Cat: true}), nil)
	c := onlyMob(t, tw, KindCat)
	testutil.AssertEqual(t, "spawned", c.Position(), at(1))

	c.base().lastMove = topology.West
	dir, rt, ok := tw.chooseMove(c)
	testutil.AssertEqual(t, "moved", ok, true)
	testutil.AssertEqual(t, "direction", dir, topology.West)
	testutil.AssertEqual(t, "destination", rt.to, at(0))
}

func TestWorld_MobTimerMoves(t *testing.T) {
	tw := newTestWorld(t, rowSpec(3, MobSpawns{Ghost: true}), nil)
	g := onlyMob(t, tw, KindGhost)
	from := g.Position()

	tw.clock.Advance(DefaultMoveDelay)
	if g.Position() == from {
		t.Errorf("ghost did not move from %v", from)
	}
	testutil.AssertEqual(t, "timer re-armed", g.base().timer.pending(), true)
	tw.audit(t)
}

func TestCultist_Encounter(t *testing.T) {
	tests := map[string]struct {
		floats    []float64
		expText   string
		expForgot bool
	}{
		"keeps the map": {expText: "You hold your breath"},
		"loses the map": {floats: []float64{0.1}, expText: "no longer remember", expForgot: true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			tw := newTestWorld(t, rowSpec(3, MobSpawns{Cultist: true}), &scriptedRand{floats: tt.floats})
			first := onlyMob(t, tw, KindCultist)
			testutil.AssertEqual(t, "spawned", first.Position(), at(1))

			p := tw.join(t, "u1", "alice")
			tw.move(t, p, topology.East)

			assertContains(t, "encounter text", tw.msgs.text("u1"), tt.expText)
			testutil.AssertEqual(t, "spawn forgotten", !p.Automap.Visited(at(0)), tt.expForgot)
			testutil.AssertEqual(t, "here visited", p.Automap.Visited(at(1)), !tt.expForgot)

			next := onlyMob(t, tw, KindCultist)
			if next == first {
				t.Errorf("cultist was not replaced")
			}
			testutil.AssertEqual(t, "respawned on level", next.Position(), at(2))
			testutil.AssertEqual(t, "old cultist gone", tw.alive(first), false)
			tw.audit(t)
		})
	}
}

func TestCultist_Captive(t *testing.T) {
	rnd := &scriptedRand{ints: []int{1}, floats: []float64{0.05}}
	tw := newTestWorld(t, rowSpec(3, MobSpawns{Cultist: true}), rnd)
	testutil.AssertEqual(t, "spawned", onlyMob(t, tw, KindCultist).Position(), at(2))

	alice := tw.join(t, "u1", "alice")
	bob := tw.join(t, "u2", "bob")
	tw.move(t, alice, topology.East)
	tw.move(t, bob, topology.East)

	tw.clock.Advance(DefaultMoveDelay)

	testutil.AssertEqual(t, "alice dragged to spawn", alice.Position, at(0))
	testutil.AssertEqual(t, "bob stays", bob.Position, at(1))
	assertContains(t, "captive text", tw.msgs.text("u1"), "dragged away blindfolded")
	assertContains(t, "bystander text", tw.msgs.text("u2"), "Hooded cultists seize alice")
	testutil.AssertEqual(t, "respawned", onlyMob(t, tw, KindCultist).Position(), at(2))
	tw.audit(t)
}

func TestGiantSpider_Encounter(t *testing.T) {
	spec := rowSpec(3, MobSpawns{GiantSpider: true})
	spec.CaptiveText = "You wake up on a cold floor."
	tw := newTestWorld(t, spec, nil)
	first := onlyMob(t, tw, KindGiantSpider)

	p := tw.join(t, "u1", "alice")
	tw.move(t, p, topology.East)

	out := tw.msgs.text("u1")
	assertContains(t, "captured", out, "giant spider hauls you off")
	assertContains(t, "captive framing", out, "You wake up on a cold floor.")
	testutil.AssertEqual(t, "returned to spawn", p.Position, at(0))
	testutil.AssertEqual(t, "captive cleared on entry", p.Flags.Captive, false)

	next := onlyMob(t, tw, KindGiantSpider)
	if next == first {
		t.Errorf("spider was not replaced")
	}
	tw.audit(t)
}

func TestRat_Flees(t *testing.T) {
	tw := newTestWorld(t, rowSpec(3, MobSpawns{Rat: true}), nil)
	r := onlyMob(t, tw, KindRat)

	p := tw.join(t, "u1", "alice")
	tw.move(t, p, topology.East)

	assertContains(t, "flight", tw.msgs.text("u1"), "A rat exits to the east.")
	testutil.AssertEqual(t, "rat position", r.Position(), at(2))
	testutil.AssertEqual(t, "last move", r.base().lastMove, topology.East)
	tw.audit(t)
}

func TestGhost_PassesThroughWalls(t *testing.T) {
	spec := &MazeSpec{
		Name:   "Hollow",
		Depth:  1,
		Width:  3,
		Height: 1,
		Mobs:   MobSpawns{Ghost: true},
		Rooms: []RoomSpec{
			{X: 0, Exits: map[topology.Direction]Exit{}},
			{X: 2, Exits: map[topology.Direction]Exit{}},
		},
	}
	tw := newTestWorld(t, spec, nil)
	g := onlyMob(t, tw, KindGhost)
	testutil.AssertEqual(t, "spawned", g.Position(), at(2))

	tw.join(t, "u1", "alice")
	tw.do(t, func() error {
		tw.moveMob(g)
		return nil
	})

	testutil.AssertEqual(t, "ghost position", g.Position(), at(0))
	assertContains(t, "arrival", tw.msgs.text("u1"), "A ghost enters from the east.")
	tw.audit(t)
}

func TestBanshee_Disorients(t *testing.T) {
	tw := newTestWorld(t, rowSpec(3, MobSpawns{Banshee: true}), &scriptedRand{floats: []float64{0.1}})
	testutil.AssertEqual(t, "spawned", onlyMob(t, tw, KindBanshee).Position(), at(1))

	p := tw.join(t, "u1", "alice")
	tw.move(t, p, topology.East)

	testutil.AssertEqual(t, "disoriented", p.Flags.Disoriented, true)
	assertContains(t, "wail", tw.msgs.text("u1"), "piercing wail")
	assertContains(t, "start", tw.msgs.text("u1"), "no longer trust your sense of direction")
	testutil.AssertEqual(t, "respawned elsewhere", onlyMob(t, tw, KindBanshee).Position(), at(2))

	// North has no exit here; disorientation sends the player east instead.
	tw.move(t, p, topology.North)
	testutil.AssertEqual(t, "remapped", p.Position, at(2))
	testutil.AssertEqual(t, "moves", p.Moves, 2)
	assertContains(t, "second encounter failed", tw.msgs.text("u1"), "You clap your hands over your ears")
	testutil.AssertEqual(t, "still disoriented", p.Flags.Disoriented, true)
	tw.audit(t)
}

func TestCat_SettlesAndFollows(t *testing.T) {
	tw := newTestWorld(t, rowSpec(3, MobSpawns{Cat: true}), nil)
	c := onlyMob(t, tw, KindCat)
	testutil.AssertEqual(t, "spawned", c.Position(), at(1))

	p := tw.join(t, "u1", "alice")
	tw.move(t, p, topology.East)
	testutil.AssertEqual(t, "paused", c.base().timer.pending(), false)

	tw.clock.Advance(time.Minute)
	testutil.AssertEqual(t, "stays put", c.Position(), at(1))

	tw.rand.floats = []float64{0.1}
	tw.msgs.reset()
	tw.move(t, p, topology.East)
	testutil.AssertEqual(t, "followed", c.Position(), at(2))
	assertContains(t, "arrival", tw.msgs.text("u1"), "A cat enters from the west.")
	testutil.AssertEqual(t, "paused again", c.base().timer.pending(), false)

	tw.do(t, func() error {
		tw.SetAway(p, "")
		return nil
	})
	testutil.AssertEqual(t, "wakes when ignored", c.base().timer.pending(), true)
	tw.audit(t)
}
