package schedule

import (
	"sort"

	"github.com/dd-mooon/tennismatcher/internal/roster"
	"github.com/dd-mooon/tennismatcher/internal/strategy"
)

// genderPools holds the unassigned players of a round as two queues, drawn
// from the front.
type genderPools struct {
	female []roster.Participant
	male   []roster.Participant
}

// newGenderPools splits pool by gender and orders each queue by games played,
// club players first on a tie, pool order after that.
func newGenderPools(pool []roster.Participant, ledger *Ledger) *genderPools {
	gp := &genderPools{}
	for _, p := range pool {
		q := gp.queue(p.Gender)
		*q = append(*q, p)
	}
	for _, q := range [][]roster.Participant{gp.female, gp.male} {
		sort.SliceStable(q, func(i, j int) bool {
			gi, gj := ledger.Get(q[i].ID).GamesPlayed, ledger.Get(q[j].ID).GamesPlayed
			if gi != gj {
				return gi < gj
			}
			return q[i].IsClub() && !q[j].IsClub()
		})
	}
	return gp
}

func (gp *genderPools) queue(g roster.Gender) *[]roster.Participant {
	if g == roster.Female {
		return &gp.female
	}
	return &gp.male
}

func (gp *genderPools) take(g roster.Gender, n int) []roster.Participant {
	q := gp.queue(g)
	taken := make([]roster.Participant, n)
	copy(taken, (*q)[:n])
	*q = (*q)[n:]
	return taken
}

func (gp *genderPools) fits(t strategy.MatchType) bool {
	switch t {
	case strategy.FemaleDoubles:
		return len(gp.female) >= 4
	case strategy.MaleDoubles:
		return len(gp.male) >= 4
	case strategy.MixedDoubles:
		return len(gp.female) >= 2 && len(gp.male) >= 2
	default:
		return false
	}
}

// choose returns the preferred type when it fits, otherwise the first type of
// the fallback order that fits.
func (gp *genderPools) choose(preferred strategy.MatchType) (strategy.MatchType, bool) {
	if gp.fits(preferred) {
		return preferred, true
	}
	for _, t := range strategy.Fallback {
		if gp.fits(t) {
			return t, true
		}
	}
	return strategy.Indeterminate, false
}

// draw seats four players from the front of the queues. Mixed courts pair one
// man with one woman on each team.
func (gp *genderPools) draw(t strategy.MatchType, number int) Court {
	c := Court{Number: number, Type: t}
	switch t {
	case strategy.FemaleDoubles, strategy.MaleDoubles:
		g := roster.Female
		if t == strategy.MaleDoubles {
			g = roster.Male
		}
		ps := gp.take(g, 4)
		c.Team1 = [2]roster.Participant{ps[0], ps[1]}
		c.Team2 = [2]roster.Participant{ps[2], ps[3]}
	case strategy.MixedDoubles:
		ms := gp.take(roster.Male, 2)
		ws := gp.take(roster.Female, 2)
		c.Team1 = [2]roster.Participant{ms[0], ws[0]}
		c.Team2 = [2]roster.Participant{ms[1], ws[1]}
	}
	return c
}

// swapInClub replaces the first guest on c that has a club player of the same
// gender still waiting. The guest goes to the back of its queue.
func (gp *genderPools) swapInClub(c *Court) bool {
	for i := 0; i < 4; i++ {
		seat := c.seat(i)
		q := gp.queue(seat.Gender)
		for j, p := range *q {
			if !p.IsClub() {
				continue
			}
			*q = append((*q)[:j:j], (*q)[j+1:]...)
			*q = append(*q, *seat)
			*seat = p
			return true
		}
	}
	return false
}

func (gp *genderPools) remaining() []roster.Participant {
	out := make([]roster.Participant, 0, len(gp.female)+len(gp.male))
	out = append(out, gp.female...)
	return append(out, gp.male...)
}

// spreadClubs moves a club player across the net when one team has none and
// the other has two, exchanging them with a guest of the same gender.
func spreadClubs(c *Court) {
	clubs := func(t [2]roster.Participant) int {
		n := 0
		for _, p := range t {
			if p.IsClub() {
				n++
			}
		}
		return n
	}

	from, to := &c.Team2, &c.Team1
	switch {
	case clubs(c.Team1) == 0 && clubs(c.Team2) == 2:
	case clubs(c.Team2) == 0 && clubs(c.Team1) == 2:
		from, to = &c.Team1, &c.Team2
	default:
		return
	}

	for i := range from {
		for j := range to {
			if from[i].Gender == to[j].Gender {
				from[i], to[j] = to[j], from[i]
				return
			}
		}
	}
}
