package schedule

import (
	"fmt"

	"github.com/dd-mooon/tennismatcher/internal/config"
	"github.com/dd-mooon/tennismatcher/internal/roster"
	"github.com/dd-mooon/tennismatcher/internal/strategy"
)

// SkippedOverride is a manual court that was dropped in favour of automatic
// composition.
type SkippedOverride struct {
	Override config.Override
	Reason   string
}

// buildOverride resolves one override against the roster. taken holds the
// court numbers and player ids already fixed this round.
func buildOverride(o config.Override, r *roster.Roster, courts int, takenCourts map[int]bool, takenPlayers map[string]int) (Court, error) {
	if o.Court < 1 || o.Court > courts {
		return Court{}, fmt.Errorf("court %d is outside 1..%d", o.Court, courts)
	}
	if takenCourts[o.Court] {
		return Court{}, fmt.Errorf("court %d is already fixed this round", o.Court)
	}

	names := o.Names()
	if len(names) != 4 {
		return Court{}, fmt.Errorf("need four players, got %d", len(names))
	}

	players := make([]roster.Participant, 0, 4)
	seen := make(map[string]bool, 4)
	for _, name := range names {
		p, ok := r.Lookup(name)
		if !ok {
			return Court{}, fmt.Errorf("unknown player %q", name)
		}
		if seen[p.ID] {
			return Court{}, fmt.Errorf("player %q is listed twice", name)
		}
		if court, ok := takenPlayers[p.ID]; ok {
			return Court{}, fmt.Errorf("player %q is already fixed on court %d", name, court)
		}
		seen[p.ID] = true
		players = append(players, p)
	}

	c := Court{
		Number: o.Court,
		Team1:  [2]roster.Participant{players[0], players[1]},
		Team2:  [2]roster.Participant{players[2], players[3]},
		Type:   strategy.Classify(players),
		Manual: true,
	}
	if o.Representative != "" {
		for _, p := range players {
			if p.Name == o.Representative && p.IsClub() {
				rep := p
				c.Representative = &rep
				break
			}
		}
	}
	return c, nil
}

// applyOverrides fixes the manual courts of a round in file order. Overrides
// that cannot be resolved are returned as skipped and leave the pool alone.
func (s *scheduler) applyOverrides(round int, pool []roster.Participant) ([]Court, []roster.Participant, []SkippedOverride) {
	var fixed []Court
	var skipped []SkippedOverride
	takenCourts := make(map[int]bool)
	takenPlayers := make(map[string]int)

	for _, o := range s.overrides[round] {
		c, err := buildOverride(o, s.roster, s.settings.Courts, takenCourts, takenPlayers)
		if err != nil {
			s.log.Warn().Int("round", round).Int("court", o.Court).Err(err).Msg("Skipping manual court")
			skipped = append(skipped, SkippedOverride{Override: o, Reason: err.Error()})
			continue
		}
		if o.Representative != "" && c.Representative == nil {
			s.log.Warn().Int("round", round).Int("court", o.Court).
				Str("representative", o.Representative).
				Msg("Manual representative is not a club player on this court; leaving it empty")
		}
		takenCourts[c.Number] = true
		for _, p := range c.Players() {
			takenPlayers[p.ID] = c.Number
		}
		fixed = append(fixed, c)
	}

	var manual []roster.Participant
	for _, c := range fixed {
		manual = append(manual, c.Players()...)
	}
	return fixed, without(pool, manual), skipped
}
