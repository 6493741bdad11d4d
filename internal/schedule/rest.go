package schedule

import (
	"sort"

	"github.com/dd-mooon/tennismatcher/internal/roster"
)

// selectRest picks min(quota, len(pool)) resting players, least rested first.
// The quota is split between genders: the larger gender group (male on a tie)
// takes the rounded-up half. A gender group that is too small is backfilled
// from everyone else. Ties keep pool order. The chosen players are returned
// in pool order and their rest counters are incremented.
func selectRest(pool []roster.Participant, ledger *Ledger, quota int) []roster.Participant {
	want := quota
	if want > len(pool) {
		want = len(pool)
	}
	if want <= 0 {
		return nil
	}

	var females, males []roster.Participant
	for _, p := range pool {
		if p.Gender == roster.Female {
			females = append(females, p)
		} else {
			males = append(males, p)
		}
	}
	byRested := func(ps []roster.Participant) {
		sort.SliceStable(ps, func(i, j int) bool {
			return ledger.Get(ps[i].ID).RoundsRested < ledger.Get(ps[j].ID).RoundsRested
		})
	}
	byRested(females)
	byRested(males)

	small, large := want/2, want-want/2
	femaleShare, maleShare := small, large
	if len(females) > len(males) {
		femaleShare, maleShare = large, small
	}

	chosen := make(map[string]bool, want)
	take := func(ps []roster.Participant, n int) {
		for i := 0; i < n && i < len(ps); i++ {
			chosen[ps[i].ID] = true
		}
	}
	take(females, femaleShare)
	take(males, maleShare)

	if shortfall := want - len(chosen); shortfall > 0 {
		var rest []roster.Participant
		for _, p := range pool {
			if !chosen[p.ID] {
				rest = append(rest, p)
			}
		}
		byRested(rest)
		take(rest, shortfall)
	}

	resting := make([]roster.Participant, 0, want)
	for _, p := range pool {
		if chosen[p.ID] {
			resting = append(resting, p)
			ledger.Rest(p)
		}
	}
	return resting
}

// without returns the players of pool not in drop, keeping order.
func without(pool, drop []roster.Participant) []roster.Participant {
	ids := make(map[string]bool, len(drop))
	for _, p := range drop {
		ids[p.ID] = true
	}
	out := make([]roster.Participant, 0, len(pool))
	for _, p := range pool {
		if !ids[p.ID] {
			out = append(out, p)
		}
	}
	return out
}
