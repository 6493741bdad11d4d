package roster

import (
	"fmt"
	"strings"
)

type Gender string

const (
	Male   Gender = "male"
	Female Gender = "female"
)

// ParseGender accepts "male"/"female" in any case.
func ParseGender(s string) (Gender, error) {
	switch g := Gender(strings.ToLower(strings.TrimSpace(s))); g {
	case Male, Female:
		return g, nil
	default:
		return "", fmt.Errorf("invalid gender %q (want male or female)", s)
	}
}

type Category string

const (
	Club  Category = "club"
	Guest Category = "guest"
)

// ParseCategory accepts "club"/"guest" in any case. An empty string means guest.
func ParseCategory(s string) (Category, error) {
	switch c := Category(strings.ToLower(strings.TrimSpace(s))); c {
	case Club, Guest:
		return c, nil
	case "":
		return Guest, nil
	default:
		return "", fmt.Errorf("invalid category %q (want club or guest)", s)
	}
}

// Participant is one player of a session.
type Participant struct {
	ID       string
	Name     string
	Gender   Gender
	Category Category
}

func (p Participant) IsClub() bool {
	return p.Category == Club
}

func (p Participant) String() string {
	return p.Name
}

// Roster is an immutable, ordered snapshot of the players of one run.
type Roster struct {
	players []Participant
	byName  map[string]int
	byID    map[string]int
}

// New builds a Roster. Names and ids must be non-empty and unique.
func New(players []Participant) (*Roster, error) {
	r := &Roster{
		players: make([]Participant, len(players)),
		byName:  make(map[string]int, len(players)),
		byID:    make(map[string]int, len(players)),
	}
	copy(r.players, players)

	for i, p := range r.players {
		if p.Name == "" {
			return nil, fmt.Errorf("player %d has no name", i+1)
		}
		if p.ID == "" {
			return nil, fmt.Errorf("player %q has no id", p.Name)
		}
		if p.Gender != Male && p.Gender != Female {
			return nil, fmt.Errorf("player %q: invalid gender %q", p.Name, p.Gender)
		}
		if p.Category != Club && p.Category != Guest {
			return nil, fmt.Errorf("player %q: invalid category %q", p.Name, p.Category)
		}
		if _, ok := r.byName[p.Name]; ok {
			return nil, fmt.Errorf("player name %q appears more than once", p.Name)
		}
		if _, ok := r.byID[p.ID]; ok {
			return nil, fmt.Errorf("player id %q appears more than once", p.ID)
		}
		r.byName[p.Name] = i
		r.byID[p.ID] = i
	}
	return r, nil
}

func (r *Roster) Len() int {
	return len(r.players)
}

// Players returns a copy of the roster in its original order.
func (r *Roster) Players() []Participant {
	out := make([]Participant, len(r.players))
	copy(out, r.players)
	return out
}

// Lookup resolves a player by exact name.
func (r *Roster) Lookup(name string) (Participant, bool) {
	i, ok := r.byName[name]
	if !ok {
		return Participant{}, false
	}
	return r.players[i], true
}

// Index returns the roster position of the player with the given id, or -1.
func (r *Roster) Index(id string) int {
	i, ok := r.byID[id]
	if !ok {
		return -1
	}
	return i
}

// Count returns how many players of the given gender are on the roster.
func (r *Roster) Count(g Gender) int {
	n := 0
	for _, p := range r.players {
		if p.Gender == g {
			n++
		}
	}
	return n
}

// ClubCount returns how many club players are on the roster.
func (r *Roster) ClubCount() int {
	n := 0
	for _, p := range r.players {
		if p.IsClub() {
			n++
		}
	}
	return n
}
