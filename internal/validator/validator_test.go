package validator

import (
	"fmt"
	"math/rand"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dd-mooon/tennismatcher/internal/config"
	"github.com/dd-mooon/tennismatcher/internal/excel"
	"github.com/dd-mooon/tennismatcher/internal/roster"
	"github.com/dd-mooon/tennismatcher/internal/schedule"
)

// testConfig has women W1..W5 and men M1..M5; W1, W2, M1 and M2 are club.
func testConfig() *config.Config {
	cfg := &config.Config{Session: config.Session{Participants: 10}}
	for _, g := range []string{"female", "male"} {
		prefix := "W"
		if g == "male" {
			prefix = "M"
		}
		for i := 1; i <= 5; i++ {
			cat := "guest"
			if i <= 2 {
				cat = "club"
			}
			name := fmt.Sprintf("%s%d", prefix, i)
			cfg.Players = append(cfg.Players, config.Player{ID: name, Name: name, Gender: g, Category: cat})
		}
	}
	return cfg
}

func testRoster(t *testing.T, cfg *config.Config) *roster.Roster {
	t.Helper()
	r, err := cfg.Roster()
	if err != nil {
		t.Fatalf("Roster() error: %v", err)
	}
	return r
}

var settings = config.Settings{Participants: 10, RestPerRound: 2, Courts: 2, Rounds: 5}

func court(row, number int, t1, t2, rep string) excel.Court {
	split := func(s string) []string {
		var out []string
		for _, p := range strings.Split(s, "/") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	}
	return excel.Court{Row: row, Number: number, Team1: split(t1), Team2: split(t2), Representative: rep}
}

// goodRound is a valid round: two courts and two resting players.
func goodRound(n int) excel.Round {
	return excel.Round{
		Number: n,
		Courts: []excel.Court{
			court(2, 1, "W1 / W2", "W3 / W4", "W1"),
			court(3, 2, "M1 / M2", "M3 / M4", "M2"),
		},
		Resting: []string{"W5", "M5"},
		RestRow: 4,
	}
}

func errorsOf(vs []Violation) []Violation {
	var out []Violation
	for _, v := range vs {
		if v.Type == "error" {
			out = append(out, v)
		}
	}
	return out
}

func TestValidateGeneratedSchedule(t *testing.T) {
	cfg := testConfig()
	r := testRoster(t, cfg)
	result, err := schedule.Schedule(cfg, r, schedule.Options{Rand: rand.New(rand.NewSource(11))})
	if err != nil {
		t.Fatalf("Schedule() error: %v", err)
	}

	f, err := excel.Generate(result)
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	path := filepath.Join(t.TempDir(), "schedule.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("SaveAs error: %v", err)
	}

	violations, err := Validate(cfg, path)
	if err != nil {
		t.Fatalf("Validate() error: %v", err)
	}

	t.Run("no rule violations", func(t *testing.T) {
		for _, v := range errorsOf(violations) {
			t.Errorf("rule violation: %s", v.Message)
		}
	})

	t.Run("reports guidelines as warnings", func(t *testing.T) {
		warnings := 0
		for _, v := range violations {
			if v.Type == "warning" {
				warnings++
				t.Logf("WARNING: %s", v.Message)
			}
		}
		t.Logf("Total warnings: %d", warnings)
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := Validate(cfg, filepath.Join(t.TempDir(), "nope.xlsx")); err == nil {
			t.Error("expected error for missing file")
		}
	})
}

func TestCheckRoundCount(t *testing.T) {
	t.Run("all rounds present", func(t *testing.T) {
		var rounds []excel.Round
		for n := 1; n <= 5; n++ {
			rounds = append(rounds, goodRound(n))
		}
		if v := checkRoundCount(settings, rounds); len(v) != 0 {
			t.Errorf("expected 0 violations, got %v", v)
		}
	})

	t.Run("missing round", func(t *testing.T) {
		rounds := []excel.Round{goodRound(1), goodRound(2), goodRound(4), goodRound(5)}
		v := checkRoundCount(settings, rounds)
		if len(v) != 2 {
			t.Errorf("expected count and gap violations, got %v", v)
		}
	})
}

func TestCheckCoverage(t *testing.T) {
	r := testRoster(t, testConfig())

	t.Run("complete round", func(t *testing.T) {
		if v := checkCoverage(r, []excel.Round{goodRound(1)}); len(v) != 0 {
			t.Errorf("expected 0 violations, got %v", v)
		}
	})

	t.Run("player missing", func(t *testing.T) {
		round := goodRound(1)
		round.Resting = []string{"W5"}
		v := checkCoverage(r, []excel.Round{round})
		if len(v) != 1 || !strings.Contains(v[0].Message, "M5") {
			t.Errorf("expected M5 to be reported, got %v", v)
		}
	})

	t.Run("player twice", func(t *testing.T) {
		round := goodRound(1)
		round.Resting = []string{"W5", "M5", "W1"}
		v := checkCoverage(r, []excel.Round{round})
		if len(v) != 1 || !strings.Contains(v[0].Message, "W1 appears 2 times") {
			t.Errorf("expected W1 duplicate, got %v", v)
		}
	})

	t.Run("unknown name", func(t *testing.T) {
		round := goodRound(1)
		round.Resting = []string{"W5", "M5", "Zed"}
		v := checkCoverage(r, []excel.Round{round})
		if len(v) != 1 || !strings.Contains(v[0].Message, "Zed") {
			t.Errorf("expected Zed to be reported, got %v", v)
		}
	})

	t.Run("idle players count as present", func(t *testing.T) {
		round := goodRound(1)
		round.Resting = []string{"W5"}
		round.Idle = []string{"M5"}
		if v := checkCoverage(r, []excel.Round{round}); len(v) != 0 {
			t.Errorf("expected 0 violations, got %v", v)
		}
	})
}

func TestCheckTeamSize(t *testing.T) {
	round := goodRound(1)
	round.Courts[1] = court(3, 2, "M1 / M2 / M3", "M4", "M2")
	v := checkTeamSize([]excel.Round{round})
	if len(v) != 1 || v[0].Row != 3 {
		t.Errorf("expected one violation on row 3, got %v", v)
	}
}

func TestCheckRestQuota(t *testing.T) {
	r := testRoster(t, testConfig())

	t.Run("quota met", func(t *testing.T) {
		if v := checkRestQuota(settings, r, []excel.Round{goodRound(1)}); len(v) != 0 {
			t.Errorf("expected 0 violations, got %v", v)
		}
	})

	t.Run("too many resting", func(t *testing.T) {
		round := goodRound(1)
		round.Resting = []string{"W5", "M5", "W4"}
		v := checkRestQuota(settings, r, []excel.Round{round})
		if len(v) != 1 || v[0].Row != 4 {
			t.Errorf("expected one violation on the rest row, got %v", v)
		}
	})

	t.Run("manual courts shrink the pool", func(t *testing.T) {
		big := config.Settings{Participants: 10, RestPerRound: 4, Courts: 2, Rounds: 5}
		round := goodRound(1)
		for i := range round.Courts {
			round.Courts[i].Manual = true
		}
		if v := checkRestQuota(big, r, []excel.Round{round}); len(v) != 0 {
			t.Errorf("two players remain after manual courts, expected 0 violations, got %v", v)
		}
	})
}

func TestCheckCourtNumbers(t *testing.T) {
	round := goodRound(1)
	round.Courts[1].Number = 1
	round.Courts = append(round.Courts, court(4, 3, "W5 / M5", "", ""))
	v := checkCourtNumbers(settings, []excel.Round{round})
	if len(v) != 2 {
		t.Errorf("expected duplicate and out of range violations, got %v", v)
	}
}

func TestCheckRepresentatives(t *testing.T) {
	r := testRoster(t, testConfig())
	cases := []struct {
		name string
		rep  string
		want string
	}{
		{"club player on court", "W1", ""},
		{"guest player", "W3", "error"},
		{"club player elsewhere", "M1", "error"},
		{"missing", "", "warning"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			round := goodRound(1)
			round.Courts[0].Representative = c.rep
			v := checkRepresentatives(r, []excel.Round{round})
			if c.want == "" {
				if len(v) != 0 {
					t.Errorf("expected 0 violations, got %v", v)
				}
				return
			}
			if len(v) != 1 || v[0].Type != c.want {
				t.Errorf("expected one %s, got %v", c.want, v)
			}
		})
	}
}

func TestCheckGuidelines(t *testing.T) {
	r := testRoster(t, testConfig())

	t.Run("guest only court", func(t *testing.T) {
		round := goodRound(1)
		round.Courts[0] = court(2, 1, "W3 / W4", "W5 / M5", "")
		v := checkGuestOnlyCourts(r, []excel.Round{round})
		if len(v) != 1 || v[0].Type != "warning" {
			t.Errorf("expected one warning, got %v", v)
		}
	})

	t.Run("indeterminate court", func(t *testing.T) {
		round := goodRound(1)
		round.Courts[0] = court(2, 1, "W1 / W2", "W3 / M5", "W1")
		v := checkCourtTypes(r, []excel.Round{round})
		if len(v) != 1 || !strings.Contains(v[0].Message, "neither") {
			t.Errorf("expected indeterminate warning, got %v", v)
		}
	})

	t.Run("stale type cell", func(t *testing.T) {
		round := goodRound(1)
		round.Courts[0].Type = "male-doubles"
		v := checkCourtTypes(r, []excel.Round{round})
		if len(v) != 1 || !strings.Contains(v[0].Message, "female-doubles") {
			t.Errorf("expected type mismatch warning, got %v", v)
		}
	})

	t.Run("repeated group", func(t *testing.T) {
		next := goodRound(2)
		next.Courts[0] = court(6, 1, "W1 / W3", "W2 / W5", "W1")
		next.Resting = []string{"W4", "M5"}
		v := checkRepeatedGroups([]excel.Round{goodRound(1), next})
		if len(v) != 2 {
			t.Errorf("expected both courts to repeat, got %v", v)
		}
	})

	t.Run("game imbalance", func(t *testing.T) {
		rounds := []excel.Round{goodRound(1), goodRound(2), goodRound(3)}
		v := checkGameBalance(r, rounds)
		if len(v) != 1 || !strings.Contains(v[0].Message, "plays 0") {
			t.Errorf("expected imbalance warning, got %v", v)
		}
	})

	t.Run("balanced games", func(t *testing.T) {
		if v := checkGameBalance(r, []excel.Round{goodRound(1)}); len(v) != 0 {
			t.Errorf("expected 0 violations, got %v", v)
		}
	})
}
