package strategy

import (
	"fmt"

	"github.com/dd-mooon/tennismatcher/internal/roster"
)

// MatchType is the gender make-up of a court.
type MatchType int

const (
	FemaleDoubles MatchType = iota
	MaleDoubles
	MixedDoubles
	Indeterminate
)

func (t MatchType) String() string {
	switch t {
	case FemaleDoubles:
		return "female-doubles"
	case MaleDoubles:
		return "male-doubles"
	case MixedDoubles:
		return "mixed-doubles"
	default:
		return "indeterminate"
	}
}

// ParseMatchType is the inverse of String.
func ParseMatchType(s string) MatchType {
	switch s {
	case "female-doubles":
		return FemaleDoubles
	case "male-doubles":
		return MaleDoubles
	case "mixed-doubles":
		return MixedDoubles
	default:
		return Indeterminate
	}
}

// Classify derives the match type from the four players on a court.
// Anything other than 4-0, 0-4 or 2-2 is Indeterminate.
func Classify(players []roster.Participant) MatchType {
	if len(players) != 4 {
		return Indeterminate
	}
	male, female := 0, 0
	for _, p := range players {
		switch p.Gender {
		case roster.Male:
			male++
		case roster.Female:
			female++
		}
	}
	switch {
	case female == 4:
		return FemaleDoubles
	case male == 4:
		return MaleDoubles
	case male == 2 && female == 2:
		return MixedDoubles
	default:
		return Indeterminate
	}
}

// Fallback is the order in which match types are tried when the preferred
// type cannot be filled.
var Fallback = []MatchType{FemaleDoubles, MaleDoubles, MixedDoubles}

// Pattern chooses the preferred match type for a court.
type Pattern interface {
	// Preferred returns the type to try first for a 1-based round and a
	// 0-based court index.
	Preferred(round, court int) MatchType
}

// Get returns a Pattern by name. An empty name selects the rotating pattern.
func Get(name string) (Pattern, error) {
	switch name {
	case "", "rotating":
		return &Rotating{}, nil
	case "fixed":
		return &Fixed{}, nil
	default:
		return nil, fmt.Errorf("unknown strategy: %q", name)
	}
}

// Rotating prefers female doubles on every court of the first round and then
// rotates female, male and mixed doubles by (round + court) mod 3.
type Rotating struct{}

func (Rotating) Preferred(round, court int) MatchType {
	if round <= 1 {
		return FemaleDoubles
	}
	return MatchType((round + court) % 3)
}

// Fixed always prefers female doubles, so every round is filled in plain
// fallback order: female, then male, then mixed.
type Fixed struct{}

func (Fixed) Preferred(round, court int) MatchType {
	return FemaleDoubles
}
