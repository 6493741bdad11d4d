package schedule

import (
	"github.com/dd-mooon/tennismatcher/internal/roster"
	"github.com/dd-mooon/tennismatcher/internal/strategy"
)

// Counters are the fairness counters of one participant.
type Counters struct {
	GamesPlayed         int
	RoundsRested        int
	MixedParticipations int
}

// Ledger tracks Counters per participant id for the duration of a run.
type Ledger struct {
	counts map[string]*Counters
}

func NewLedger(players []roster.Participant) *Ledger {
	l := &Ledger{counts: make(map[string]*Counters, len(players))}
	for _, p := range players {
		l.counts[p.ID] = &Counters{}
	}
	return l
}

// Get returns a copy of the counters for a participant id.
func (l *Ledger) Get(id string) Counters {
	if c, ok := l.counts[id]; ok {
		return *c
	}
	return Counters{}
}

func (l *Ledger) entry(id string) *Counters {
	c, ok := l.counts[id]
	if !ok {
		c = &Counters{}
		l.counts[id] = c
	}
	return c
}

// Rest records one rested round.
func (l *Ledger) Rest(p roster.Participant) {
	l.entry(p.ID).RoundsRested++
}

// Record counts a game for each player, and a mixed participation when the
// court is mixed doubles.
func (l *Ledger) Record(players []roster.Participant, t strategy.MatchType) {
	for _, p := range players {
		e := l.entry(p.ID)
		e.GamesPlayed++
		if t == strategy.MixedDoubles {
			e.MixedParticipations++
		}
	}
}

func (l *Ledger) seat(c Court) {
	l.Record(c.Players(), c.Type)
}

// Totals sums every participant's counters.
func (l *Ledger) Totals() Counters {
	var t Counters
	for _, c := range l.counts {
		t.GamesPlayed += c.GamesPlayed
		t.RoundsRested += c.RoundsRested
		t.MixedParticipations += c.MixedParticipations
	}
	return t
}

// PlayerStats pairs a participant with their final counters.
type PlayerStats struct {
	Participant roster.Participant
	Counters
}

// Snapshot returns the counters of every player in roster order.
func (l *Ledger) Snapshot(r *roster.Roster) []PlayerStats {
	players := r.Players()
	out := make([]PlayerStats, 0, len(players))
	for _, p := range players {
		out = append(out, PlayerStats{Participant: p, Counters: l.Get(p.ID)})
	}
	return out
}
