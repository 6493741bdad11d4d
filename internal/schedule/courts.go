package schedule

import (
	"sort"
	"strings"

	"github.com/dd-mooon/tennismatcher/internal/roster"
	"github.com/dd-mooon/tennismatcher/internal/strategy"
)

// Court is one doubles match of a round.
type Court struct {
	Number         int
	Team1          [2]roster.Participant
	Team2          [2]roster.Participant
	Representative *roster.Participant
	Type           strategy.MatchType
	Manual         bool
}

// Players returns the four players, team 1 first.
func (c Court) Players() []roster.Participant {
	return []roster.Participant{c.Team1[0], c.Team1[1], c.Team2[0], c.Team2[1]}
}

// seat returns a pointer to position i (0..3) of the court.
func (c *Court) seat(i int) *roster.Participant {
	if i < 2 {
		return &c.Team1[i]
	}
	return &c.Team2[i-2]
}

func (c Court) hasClub() bool {
	for _, p := range c.Players() {
		if p.IsClub() {
			return true
		}
	}
	return false
}

func (c Court) has(id string) bool {
	for _, p := range c.Players() {
		if p.ID == id {
			return true
		}
	}
	return false
}

// swapPartners exchanges the second player of team 1 with the first player of
// team 2. The set of players on the court does not change.
func (c *Court) swapPartners() {
	c.Team1[1], c.Team2[0] = c.Team2[0], c.Team1[1]
}

func (c Court) String() string {
	return teamString(c.Team1) + " vs " + teamString(c.Team2)
}

func teamString(t [2]roster.Participant) string {
	return t[0].Name + " / " + t[1].Name
}

// openCourts returns the court numbers 1..total not taken by fixed courts.
func openCourts(total int, fixed []Court) []int {
	used := make(map[int]bool, len(fixed))
	for _, c := range fixed {
		used[c.Number] = true
	}
	var open []int
	for n := 1; n <= total; n++ {
		if !used[n] {
			open = append(open, n)
		}
	}
	return open
}

func sortCourts(courts []Court) {
	sort.SliceStable(courts, func(i, j int) bool {
		return courts[i].Number < courts[j].Number
	})
}

func names(ps []roster.Participant) string {
	parts := make([]string, len(ps))
	for i, p := range ps {
		parts[i] = p.Name
	}
	return strings.Join(parts, ", ")
}
