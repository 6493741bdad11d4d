package schedule

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/dd-mooon/tennismatcher/internal/config"
	"github.com/dd-mooon/tennismatcher/internal/roster"
	"github.com/dd-mooon/tennismatcher/internal/strategy"
)

// clubRoster builds ten women W1..W10 followed by ten men M1..M10. The first
// clubPerGender of each gender are club players.
func clubRoster(t *testing.T, clubPerGender int) *roster.Roster {
	t.Helper()
	var ps []roster.Participant
	for _, g := range []roster.Gender{roster.Female, roster.Male} {
		prefix := "W"
		if g == roster.Male {
			prefix = "M"
		}
		for i := 1; i <= 10; i++ {
			cat := roster.Guest
			if i <= clubPerGender {
				cat = roster.Club
			}
			name := fmt.Sprintf("%s%d", prefix, i)
			ps = append(ps, roster.Participant{ID: "id-" + name, Name: name, Gender: g, Category: cat})
		}
	}
	r, err := roster.New(ps)
	if err != nil {
		t.Fatalf("roster.New() error: %v", err)
	}
	return r
}

func presetConfig(n int) *config.Config {
	return &config.Config{Session: config.Session{Participants: n}}
}

func runSchedule(t *testing.T, cfg *config.Config, r *roster.Roster, seed int64) *Result {
	t.Helper()
	result, err := Schedule(cfg, r, Options{Rand: rand.New(rand.NewSource(seed))})
	if err != nil {
		t.Fatalf("Schedule() error: %v", err)
	}
	return result
}

func courtNames(c Court) []string {
	var out []string
	for _, p := range c.Players() {
		out = append(out, p.Name)
	}
	return out
}

func TestScheduleFullSession(t *testing.T) {
	r := clubRoster(t, 3)
	result := runSchedule(t, presetConfig(20), r, 1)

	t.Run("five rounds", func(t *testing.T) {
		if len(result.Rounds) != 5 {
			t.Fatalf("rounds = %d, want 5", len(result.Rounds))
		}
		for i, round := range result.Rounds {
			if round.Number != i+1 {
				t.Errorf("round %d numbered %d", i+1, round.Number)
			}
		}
	})

	t.Run("every player appears exactly once per round", func(t *testing.T) {
		for _, round := range result.Rounds {
			seen := make(map[string]int)
			for _, p := range round.Seated() {
				seen[p.ID]++
			}
			for _, p := range round.Resting {
				seen[p.ID]++
			}
			for _, p := range round.Idle {
				seen[p.ID]++
			}
			for _, p := range r.Players() {
				if seen[p.ID] != 1 {
					t.Errorf("round %d: %s appears %d times", round.Number, p.Name, seen[p.ID])
				}
			}
			if len(seen) != r.Len() {
				t.Errorf("round %d: %d distinct players, want %d", round.Number, len(seen), r.Len())
			}
		}
	})

	t.Run("teams have two distinct players", func(t *testing.T) {
		for _, round := range result.Rounds {
			for _, c := range round.Courts {
				if !c.full() {
					t.Errorf("round %d court %d is not four distinct players: %v", round.Number, c.Number, courtNames(c))
				}
			}
		}
	})

	t.Run("rest quota every round", func(t *testing.T) {
		for _, round := range result.Rounds {
			if len(round.Resting) != 4 {
				t.Errorf("round %d: %d resting, want 4", round.Number, len(round.Resting))
			}
		}
	})

	t.Run("court numbers are unique and in range", func(t *testing.T) {
		for _, round := range result.Rounds {
			used := make(map[int]bool)
			for _, c := range round.Courts {
				if c.Number < 1 || c.Number > 4 || used[c.Number] {
					t.Errorf("round %d: bad court number %d", round.Number, c.Number)
				}
				used[c.Number] = true
			}
		}
	})

	t.Run("ledger matches rounds", func(t *testing.T) {
		rested := make(map[string]int)
		games := make(map[string]int)
		for _, round := range result.Rounds {
			for _, p := range round.Resting {
				rested[p.ID]++
			}
			for _, p := range round.Seated() {
				games[p.ID]++
			}
		}
		for _, st := range result.Stats {
			id := st.Participant.ID
			if st.RoundsRested != rested[id] || st.GamesPlayed != games[id] {
				t.Errorf("%s: ledger %+v, rounds say rested %d games %d",
					st.Participant.Name, st.Counters, rested[id], games[id])
			}
		}
	})

	t.Run("rest rotates through the whole roster", func(t *testing.T) {
		for _, st := range result.Stats {
			if st.RoundsRested != 1 {
				t.Errorf("%s rested %d times, want 1", st.Participant.Name, st.RoundsRested)
			}
			if st.GamesPlayed != 4 {
				t.Errorf("%s played %d games, want 4", st.Participant.Name, st.GamesPlayed)
			}
		}
	})

	t.Run("court types match players", func(t *testing.T) {
		for _, round := range result.Rounds {
			for _, c := range round.Courts {
				if got := strategy.Classify(c.Players()); got != c.Type {
					t.Errorf("round %d court %d type %s, players say %s", round.Number, c.Number, c.Type, got)
				}
			}
		}
	})

	t.Run("representatives are club players on their court", func(t *testing.T) {
		for _, round := range result.Rounds {
			for _, c := range round.Courts {
				if c.Representative == nil {
					if c.hasClub() {
						t.Errorf("round %d court %d has club players but no representative", round.Number, c.Number)
					}
					continue
				}
				if !c.Representative.IsClub() || !c.has(c.Representative.ID) {
					t.Errorf("round %d court %d: bad representative %s", round.Number, c.Number, c.Representative.Name)
				}
			}
		}
	})

	t.Run("most courts have a club player", func(t *testing.T) {
		total, withClub := 0, 0
		for _, round := range result.Rounds {
			for _, c := range round.Courts {
				total++
				if c.hasClub() {
					withClub++
				}
			}
		}
		if withClub*2 <= total {
			t.Errorf("%d of %d courts have a club player", withClub, total)
		}
	})
}

func TestScheduleFirstRound(t *testing.T) {
	r := clubRoster(t, 3)
	result := runSchedule(t, presetConfig(20), r, 42)
	first := result.Rounds[0]

	if len(first.Courts) != 4 {
		t.Fatalf("round 1 courts = %d, want 4", len(first.Courts))
	}
	if len(first.Resting) != 4 {
		t.Fatalf("round 1 resting = %d, want 4", len(first.Resting))
	}

	t.Run("least rested first with a gender split", func(t *testing.T) {
		want := []string{"W1", "W2", "M1", "M2"}
		for i, p := range first.Resting {
			if p.Name != want[i] {
				t.Errorf("resting[%d] = %s, want %s", i, p.Name, want[i])
			}
		}
	})

	t.Run("female doubles first while four women remain", func(t *testing.T) {
		want := []strategy.MatchType{strategy.FemaleDoubles, strategy.FemaleDoubles, strategy.MaleDoubles, strategy.MaleDoubles}
		for i, c := range first.Courts {
			if c.Type != want[i] {
				t.Errorf("court %d = %s, want %s", c.Number, c.Type, want[i])
			}
		}
	})

	t.Run("club players are drawn first", func(t *testing.T) {
		c := first.Courts[0]
		if c.Team1[0].Name != "W3" {
			t.Errorf("court 1 first seat = %s, want W3", c.Team1[0].Name)
		}
		if c.Representative == nil || c.Representative.Name != "W3" {
			t.Errorf("court 1 representative = %v, want W3", c.Representative)
		}
	})
}

func TestScheduleDeterministic(t *testing.T) {
	r := clubRoster(t, 3)
	a := runSchedule(t, presetConfig(20), r, 7)
	b := runSchedule(t, presetConfig(20), r, 7)

	for i := range a.Rounds {
		ra, rb := a.Rounds[i], b.Rounds[i]
		if len(ra.Courts) != len(rb.Courts) {
			t.Fatalf("round %d court counts differ", ra.Number)
		}
		for j := range ra.Courts {
			ca, cb := ra.Courts[j], rb.Courts[j]
			if ca.String() != cb.String() {
				t.Errorf("round %d court %d: %s vs %s", ra.Number, ca.Number, ca, cb)
			}
			if (ca.Representative == nil) != (cb.Representative == nil) ||
				(ca.Representative != nil && ca.Representative.ID != cb.Representative.ID) {
				t.Errorf("round %d court %d representatives differ", ra.Number, ca.Number)
			}
		}
	}
}

func TestScheduleShuffleTieBreak(t *testing.T) {
	r := clubRoster(t, 3)
	cfg := presetConfig(20)
	cfg.TieBreak = config.TieBreakShuffle
	a := runSchedule(t, cfg, r, 3)
	b := runSchedule(t, cfg, r, 3)

	for i := range a.Rounds {
		if len(a.Rounds[i].Resting) != 4 {
			t.Errorf("round %d: %d resting, want 4", i+1, len(a.Rounds[i].Resting))
		}
		if names(a.Rounds[i].Resting) != names(b.Rounds[i].Resting) {
			t.Errorf("round %d: same seed gave different rest sets", i+1)
		}
	}
	for _, st := range a.Stats {
		if st.RoundsRested != 1 {
			t.Errorf("%s rested %d times, want 1", st.Participant.Name, st.RoundsRested)
		}
	}
}

func TestScheduleClubGuarantee(t *testing.T) {
	r := clubRoster(t, 9)
	result := runSchedule(t, presetConfig(20), r, 5)

	for _, round := range result.Rounds {
		for _, c := range round.Courts {
			if !c.hasClub() {
				t.Errorf("round %d court %d has no club player: %v", round.Number, c.Number, courtNames(c))
			}
		}
	}
}

func TestScheduleRejectsWrongSize(t *testing.T) {
	r := clubRoster(t, 3)

	_, err := Schedule(presetConfig(15), r, Options{})
	var sizeErr *SizeError
	if !errors.As(err, &sizeErr) {
		t.Fatalf("error = %v, want *SizeError", err)
	}
	if sizeErr.Expected != 15 || sizeErr.Actual != 20 {
		t.Errorf("SizeError = %+v, want expected 15 actual 20", sizeErr)
	}
}

func TestScheduleRejectsUnsupportedPreset(t *testing.T) {
	r := clubRoster(t, 3)
	r12, _ := roster.New(r.Players()[:12])
	_, err := Schedule(presetConfig(12), r12, Options{})
	if !errors.Is(err, config.ErrUnsupportedSize) {
		t.Errorf("error = %v, want ErrUnsupportedSize", err)
	}
}

func TestScheduleCustomSettings(t *testing.T) {
	r := clubRoster(t, 3)
	rest, courts, rounds := 8, 3, 6
	cfg := &config.Config{Session: config.Session{
		Participants: 20, RestPerRound: &rest, Courts: &courts, Rounds: &rounds,
	}}
	result := runSchedule(t, cfg, r, 1)

	if len(result.Rounds) != 6 {
		t.Fatalf("rounds = %d, want 6", len(result.Rounds))
	}
	for _, round := range result.Rounds {
		if len(round.Resting) != 8 {
			t.Errorf("round %d: %d resting, want 8", round.Number, len(round.Resting))
		}
		if len(round.Courts) != 3 {
			t.Errorf("round %d: %d courts, want 3", round.Number, len(round.Courts))
		}
	}
}

func TestScheduleUnderfilledRound(t *testing.T) {
	// Three women and thirteen men: after three male courts one man and
	// three women are left and no court type fits.
	var ps []roster.Participant
	for i := 1; i <= 3; i++ {
		ps = append(ps, roster.Participant{ID: fmt.Sprintf("w%d", i), Name: fmt.Sprintf("W%d", i), Gender: roster.Female, Category: roster.Guest})
	}
	for i := 1; i <= 13; i++ {
		ps = append(ps, roster.Participant{ID: fmt.Sprintf("m%d", i), Name: fmt.Sprintf("M%d", i), Gender: roster.Male, Category: roster.Guest})
	}
	r, err := roster.New(ps)
	if err != nil {
		t.Fatal(err)
	}
	rest, courts, rounds := 0, 4, 1
	cfg := &config.Config{Session: config.Session{Participants: 16, RestPerRound: &rest, Courts: &courts, Rounds: &rounds}}

	result := runSchedule(t, cfg, r, 1)
	round := result.Rounds[0]

	if len(round.Courts) != 3 {
		t.Fatalf("courts = %d, want 3", len(round.Courts))
	}
	for _, c := range round.Courts {
		if c.Type != strategy.MaleDoubles {
			t.Errorf("court %d = %s, want male-doubles", c.Number, c.Type)
		}
	}
	if got := names(round.Idle); got != "W1, W2, W3, M13" {
		t.Errorf("idle = %q, want W1, W2, W3, M13", got)
	}
	if len(result.Warnings) == 0 {
		t.Error("expected a warning for unfilled courts")
	}
	for _, st := range result.Stats {
		if st.Participant.Gender == roster.Female && st.GamesPlayed != 0 {
			t.Errorf("%s played %d games, want 0", st.Participant.Name, st.GamesPlayed)
		}
	}
}
