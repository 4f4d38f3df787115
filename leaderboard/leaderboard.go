package leaderboard

import "sort"

// DefaultCapacity is the number of final scores kept for the process lifetime.
const DefaultCapacity = 10

type Entry struct {
	Username string
	Score    int
}

// Leaderboard keeps the best final scores in descending order. Equal scores
// keep submission order, so the earlier submission ranks higher.
//
// A Leaderboard is not safe for concurrent use; the hub goroutine owns it.
type Leaderboard struct {
	capacity int
	entries  []Entry
}

func New(capacity int) *Leaderboard {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Leaderboard{
		capacity: capacity,
		entries:  make([]Entry, 0, capacity+1),
	}
}

// Submit inserts a final score, re-sorts and trims the board back to capacity.
// It reports whether the board changed.
func (l *Leaderboard) Submit(username string, score int) bool {
	// A full board whose last entry ties or beats the newcomer would evict the
	// newcomer right away: later submissions sort after earlier equal ones.
	if len(l.entries) >= l.capacity && score <= l.entries[len(l.entries)-1].Score {
		return false
	}

	l.entries = append(l.entries, Entry{Username: username, Score: score})
	sort.SliceStable(l.entries, func(i, j int) bool {
		return l.entries[i].Score > l.entries[j].Score
	})
	if len(l.entries) > l.capacity {
		l.entries = l.entries[:l.capacity]
	}
	return true
}

func (l *Leaderboard) Snapshot() []Entry {
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

func (l *Leaderboard) Len() int {
	return len(l.entries)
}
