package validator

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/dd-mooon/tennismatcher/internal/config"
	"github.com/dd-mooon/tennismatcher/internal/excel"
	"github.com/dd-mooon/tennismatcher/internal/roster"
	"github.com/dd-mooon/tennismatcher/internal/strategy"
)

// Violation is a rule or guideline broken by a schedule workbook.
type Violation struct {
	Row     int
	Round   int
	Type    string // "error" or "warning"
	Message string
}

// Validate reads a schedule workbook and checks it against the session file.
func Validate(cfg *config.Config, path string) ([]Violation, error) {
	settings, err := cfg.Session.Resolve()
	if err != nil {
		return nil, err
	}
	r, err := cfg.Roster()
	if err != nil {
		return nil, fmt.Errorf("building roster: %w", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	rounds, err := excel.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading rounds: %w", err)
	}
	return Check(settings, r, rounds), nil
}

// Check runs every rule and guideline over parsed rounds.
func Check(settings config.Settings, r *roster.Roster, rounds []excel.Round) []Violation {
	var violations []Violation

	// Rules
	violations = append(violations, checkRoundCount(settings, rounds)...)
	violations = append(violations, checkCoverage(r, rounds)...)
	violations = append(violations, checkTeamSize(rounds)...)
	violations = append(violations, checkRestQuota(settings, r, rounds)...)
	violations = append(violations, checkCourtNumbers(settings, rounds)...)
	violations = append(violations, checkRepresentatives(r, rounds)...)

	// Guidelines
	violations = append(violations, checkGuestOnlyCourts(r, rounds)...)
	violations = append(violations, checkCourtTypes(r, rounds)...)
	violations = append(violations, checkRepeatedGroups(rounds)...)
	violations = append(violations, checkGameBalance(r, rounds)...)

	return violations
}

func checkRoundCount(settings config.Settings, rounds []excel.Round) []Violation {
	var violations []Violation
	if len(rounds) != settings.Rounds {
		violations = append(violations, Violation{
			Type:    "error",
			Message: fmt.Sprintf("schedule has %d rounds (want %d)", len(rounds), settings.Rounds),
		})
	}
	for i, round := range rounds {
		if round.Number != i+1 {
			violations = append(violations, Violation{
				Round:   round.Number,
				Type:    "error",
				Message: fmt.Sprintf("round %d found where round %d was expected", round.Number, i+1),
			})
			break
		}
	}
	return violations
}

func checkCoverage(r *roster.Roster, rounds []excel.Round) []Violation {
	var violations []Violation
	for _, round := range rounds {
		seen := make(map[string]int)
		var names []string
		for _, c := range round.Courts {
			names = append(names, c.Players()...)
		}
		names = append(names, round.Resting...)
		names = append(names, round.Idle...)

		for _, name := range names {
			if _, ok := r.Lookup(name); !ok {
				violations = append(violations, Violation{
					Round:   round.Number,
					Type:    "error",
					Message: fmt.Sprintf("round %d: %q is not on the roster", round.Number, name),
				})
				continue
			}
			seen[name]++
		}

		for _, p := range r.Players() {
			switch n := seen[p.Name]; {
			case n == 0:
				violations = append(violations, Violation{
					Round:   round.Number,
					Type:    "error",
					Message: fmt.Sprintf("round %d: %s is neither playing nor resting", round.Number, p.Name),
				})
			case n > 1:
				violations = append(violations, Violation{
					Round:   round.Number,
					Type:    "error",
					Message: fmt.Sprintf("round %d: %s appears %d times", round.Number, p.Name, n),
				})
			}
		}
	}
	return violations
}

func checkTeamSize(rounds []excel.Round) []Violation {
	var violations []Violation
	for _, round := range rounds {
		for _, c := range round.Courts {
			if len(c.Team1) != 2 || len(c.Team2) != 2 {
				violations = append(violations, Violation{
					Row:     c.Row,
					Round:   round.Number,
					Type:    "error",
					Message: fmt.Sprintf("round %d court %d: teams of %d and %d (want 2 and 2)", round.Number, c.Number, len(c.Team1), len(c.Team2)),
				})
			}
		}
	}
	return violations
}

// checkRestQuota expects min(quota, players left after manual courts) resting
// players in every round.
func checkRestQuota(settings config.Settings, r *roster.Roster, rounds []excel.Round) []Violation {
	var violations []Violation
	for _, round := range rounds {
		pool := r.Len()
		for _, c := range round.Courts {
			if c.Manual {
				pool -= len(c.Players())
			}
		}
		want := settings.RestPerRound
		if pool < want {
			want = pool
		}
		if want < 0 {
			want = 0
		}
		if len(round.Resting) != want {
			violations = append(violations, Violation{
				Row:     round.RestRow,
				Round:   round.Number,
				Type:    "error",
				Message: fmt.Sprintf("round %d: %d players resting (want %d)", round.Number, len(round.Resting), want),
			})
		}
	}
	return violations
}

func checkCourtNumbers(settings config.Settings, rounds []excel.Round) []Violation {
	var violations []Violation
	for _, round := range rounds {
		used := make(map[int]bool)
		for _, c := range round.Courts {
			if c.Number < 1 || c.Number > settings.Courts {
				violations = append(violations, Violation{
					Row:     c.Row,
					Round:   round.Number,
					Type:    "error",
					Message: fmt.Sprintf("round %d: court %d is outside 1..%d", round.Number, c.Number, settings.Courts),
				})
			}
			if used[c.Number] {
				violations = append(violations, Violation{
					Row:     c.Row,
					Round:   round.Number,
					Type:    "error",
					Message: fmt.Sprintf("round %d: court %d is used twice", round.Number, c.Number),
				})
			}
			used[c.Number] = true
		}
	}
	return violations
}

func checkRepresentatives(r *roster.Roster, rounds []excel.Round) []Violation {
	var violations []Violation
	for _, round := range rounds {
		for _, c := range round.Courts {
			if c.Representative == "" {
				if len(clubPlayers(r, c)) > 0 {
					violations = append(violations, Violation{
						Row:     c.Row,
						Round:   round.Number,
						Type:    "warning",
						Message: fmt.Sprintf("round %d court %d: club players present but no representative", round.Number, c.Number),
					})
				}
				continue
			}
			onCourt := false
			for _, name := range c.Players() {
				if name == c.Representative {
					onCourt = true
				}
			}
			p, known := r.Lookup(c.Representative)
			if !onCourt || !known || !p.IsClub() {
				violations = append(violations, Violation{
					Row:     c.Row,
					Round:   round.Number,
					Type:    "error",
					Message: fmt.Sprintf("round %d court %d: representative %s must be a club player on the court", round.Number, c.Number, c.Representative),
				})
			}
		}
	}
	return violations
}

func checkGuestOnlyCourts(r *roster.Roster, rounds []excel.Round) []Violation {
	var violations []Violation
	for _, round := range rounds {
		for _, c := range round.Courts {
			if len(clubPlayers(r, c)) == 0 {
				violations = append(violations, Violation{
					Row:     c.Row,
					Round:   round.Number,
					Type:    "warning",
					Message: fmt.Sprintf("round %d court %d has no club player", round.Number, c.Number),
				})
			}
		}
	}
	return violations
}

func checkCourtTypes(r *roster.Roster, rounds []excel.Round) []Violation {
	var violations []Violation
	for _, round := range rounds {
		for _, c := range round.Courts {
			var ps []roster.Participant
			for _, name := range c.Players() {
				if p, ok := r.Lookup(name); ok {
					ps = append(ps, p)
				}
			}
			derived := strategy.Classify(ps)
			switch {
			case derived == strategy.Indeterminate:
				violations = append(violations, Violation{
					Row:     c.Row,
					Round:   round.Number,
					Type:    "warning",
					Message: fmt.Sprintf("round %d court %d is neither single-gender nor 2-2 mixed", round.Number, c.Number),
				})
			case c.Type != "" && c.Type != derived.String():
				violations = append(violations, Violation{
					Row:     c.Row,
					Round:   round.Number,
					Type:    "warning",
					Message: fmt.Sprintf("round %d court %d is marked %s but plays as %s", round.Number, c.Number, c.Type, derived),
				})
			}
		}
	}
	return violations
}

// checkRepeatedGroups flags courts that share three or more players with a
// court of the previous round.
func checkRepeatedGroups(rounds []excel.Round) []Violation {
	var violations []Violation
	for i := 1; i < len(rounds); i++ {
		prev, cur := rounds[i-1], rounds[i]
		for _, c := range cur.Courts {
			for _, p := range prev.Courts {
				shared := sharedNames(p.Players(), c.Players())
				if len(shared) >= 3 {
					violations = append(violations, Violation{
						Row:   c.Row,
						Round: cur.Number,
						Type:  "warning",
						Message: fmt.Sprintf("round %d court %d repeats %s from round %d court %d",
							cur.Number, c.Number, strings.Join(shared, ", "), prev.Number, p.Number),
					})
				}
			}
		}
	}
	return violations
}

func checkGameBalance(r *roster.Roster, rounds []excel.Round) []Violation {
	stats := excel.Stats(r, rounds)
	if len(stats) == 0 {
		return nil
	}
	minGames, maxGames := stats[0].GamesPlayed, stats[0].GamesPlayed
	var fewest, most string
	for _, s := range stats {
		if s.GamesPlayed <= minGames {
			minGames, fewest = s.GamesPlayed, s.Participant.Name
		}
		if s.GamesPlayed >= maxGames {
			maxGames, most = s.GamesPlayed, s.Participant.Name
		}
	}
	if maxGames-minGames > 1 {
		return []Violation{{
			Type:    "warning",
			Message: fmt.Sprintf("game imbalance: %s plays %d, %s plays %d", fewest, minGames, most, maxGames),
		}}
	}
	return nil
}

func clubPlayers(r *roster.Roster, c excel.Court) []roster.Participant {
	var clubs []roster.Participant
	for _, name := range c.Players() {
		if p, ok := r.Lookup(name); ok && p.IsClub() {
			clubs = append(clubs, p)
		}
	}
	return clubs
}

func sharedNames(a, b []string) []string {
	in := make(map[string]bool, len(a))
	for _, name := range a {
		in[name] = true
	}
	var shared []string
	for _, name := range b {
		if in[name] {
			shared = append(shared, name)
			delete(in, name)
		}
	}
	return shared
}
