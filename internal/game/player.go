package game

import (
	"time"

	"github.com/pixil98/go-mudmaze/internal/topology"
)

const (
	playerStepSound = "footsteps"
	thudStepSound   = "a loud thud"
	historyLimit    = 100
)

// User identifies the person behind a player session.
type User struct {
	ID       string
	Username string
}

// Flags is the player's session state.
type Flags struct {
	Online      bool
	Away        bool
	Joining     bool
	Quit        bool
	Captive     bool
	Escaped     bool
	Disoriented bool
	Debug       bool
}

// History keeps the most recent commands, moves and rooms visited.
type History struct {
	Commands []string
	Moves    []topology.Direction
	Rooms    []topology.Position
}

// Player is the session state of a user in the maze. It survives logout;
// only Online toggles and Time accrues the online interval.
type Player struct {
	User

	Position    topology.Position
	Flags       Flags
	AwayMessage string

	FirstJoin time.Time
	LastJoin  time.Time
	LastQuit  time.Time

	Moves   int
	Time    time.Duration
	Automap *Automap
	History History
	Stats   EscapeStats

	stepSound      string
	awayTimer      *timer
	disorientTimer *timer
}

func newPlayer(u User, m *Maze, now time.Time) *Player {
	return &Player{
		User:      u,
		Position:  m.Spawn(),
		Flags:     Flags{Captive: true},
		FirstJoin: now,
		Automap:   NewAutomap(m.Grid()),
		Stats:     newEscapeStats(),
		stepSound: playerStepSound,
	}
}

// StepSound is what neighbors hear when the player moves.
func (p *Player) StepSound() string {
	return p.stepSound
}

func (p *Player) occupantName() string {
	return p.Username
}

// displayName is the username with an away marker.
func (p *Player) displayName() string {
	if p.Flags.Away {
		return p.Username + " (away)"
	}
	return p.Username
}

// SessionTime is the accumulated time in the current run, including the
// online interval still accruing.
func (p *Player) SessionTime(now time.Time) time.Duration {
	t := p.Time
	if p.Flags.Online {
		t += now.Sub(p.LastJoin)
	}
	return t
}

// RecordCommand appends a raw input line to the history.
func (p *Player) RecordCommand(line string) {
	p.History.Commands = appendBounded(p.History.Commands, line)
}

func (p *Player) recordMove(d topology.Direction) {
	p.History.Moves = appendBounded(p.History.Moves, d)
}

func (p *Player) recordRoom(pos topology.Position) {
	p.History.Rooms = appendBounded(p.History.Rooms, pos)
}

// lastMove is the direction of the player's most recent move.
func (p *Player) lastMove() (topology.Direction, bool) {
	if len(p.History.Moves) == 0 {
		return "", false
	}
	return p.History.Moves[len(p.History.Moves)-1], true
}

func appendBounded[T any](s []T, v T) []T {
	s = append(s, v)
	if len(s) > historyLimit {
		s = s[len(s)-historyLimit:]
	}
	return s
}
