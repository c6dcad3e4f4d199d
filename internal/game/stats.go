package game

import "time"

// EscapeRecord is one completed escape in the append-only escape log.
type EscapeRecord struct {
	ID       string        `json:"id"`
	UserID   string        `json:"user_id"`
	Username string        `json:"username"`
	Escaped  time.Time     `json:"escaped"`
	Time     time.Duration `json:"time"`
	Moves    int           `json:"moves"`
}

// RecordIndex points at the best entries of the escape log. -1 means none.
type RecordIndex struct {
	Time  int
	Moves int
}

// Averages are the running means over a set of escapes. Moves truncates.
type Averages struct {
	Time  time.Duration
	Moves int
}

// EscapeStats aggregates a set of escapes incrementally.
type EscapeStats struct {
	Count    int
	Averages Averages
	Records  RecordIndex
	Last     int

	totalTime  time.Duration
	totalMoves int
}

func newEscapeStats() EscapeStats {
	return EscapeStats{
		Records: RecordIndex{Time: -1, Moves: -1},
		Last:    -1,
	}
}

// add folds log[idx] into the stats, comparing only against the previous
// best. It reports whether either record index moved.
func (s *EscapeStats) add(log []EscapeRecord, idx int) bool {
	rec := log[idx]

	s.Count++
	s.totalTime += rec.Time
	s.totalMoves += rec.Moves
	s.Averages = Averages{
		Time:  s.totalTime / time.Duration(s.Count),
		Moves: s.totalMoves / s.Count,
	}
	s.Last = idx

	changed := false
	if s.Records.Time < 0 || rec.Time < log[s.Records.Time].Time {
		s.Records.Time = idx
		changed = true
	}
	if s.Records.Moves < 0 || rec.Moves < log[s.Records.Moves].Moves {
		s.Records.Moves = idx
		changed = true
	}
	return changed
}
