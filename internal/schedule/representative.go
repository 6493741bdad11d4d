package schedule

import (
	"math/rand"

	"github.com/dd-mooon/tennismatcher/internal/roster"
)

// pickRepresentative chooses one club player of the court uniformly at random.
// Courts without a club player have no representative.
func pickRepresentative(c Court, rng *rand.Rand) *roster.Participant {
	var clubs []roster.Participant
	for _, p := range c.Players() {
		if p.IsClub() {
			clubs = append(clubs, p)
		}
	}
	if len(clubs) == 0 {
		return nil
	}
	p := clubs[rng.Intn(len(clubs))]
	return &p
}
