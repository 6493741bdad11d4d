package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/dd-mooon/tennismatcher/internal/roster"
	"github.com/dd-mooon/tennismatcher/internal/strategy"
)

// DefaultRepairAttempts bounds the overlap repair loop of a round.
const DefaultRepairAttempts = 20

// SeedEnv overrides the seed from the session file when set.
const SeedEnv = "TENNISMATCH_SEED"

// ErrUnsupportedSize is returned when a participant count has no preset and
// no explicit settings were given.
var ErrUnsupportedSize = errors.New("unsupported participant count")

// Settings are the effective numbers that drive one scheduling run.
type Settings struct {
	Participants   int
	RestPerRound   int
	Courts         int
	Rounds         int
	RepairAttempts int
}

// Presets maps the supported participant counts to their settings.
var Presets = map[int]Settings{
	10: {Participants: 10, RestPerRound: 2, Courts: 2, Rounds: 5, RepairAttempts: DefaultRepairAttempts},
	15: {Participants: 15, RestPerRound: 3, Courts: 3, Rounds: 5, RepairAttempts: DefaultRepairAttempts},
	20: {Participants: 20, RestPerRound: 4, Courts: 4, Rounds: 5, RepairAttempts: DefaultRepairAttempts},
}

// PresetSizes returns the supported participant counts in ascending order.
func PresetSizes() []int {
	sizes := make([]int, 0, len(Presets))
	for n := range Presets {
		sizes = append(sizes, n)
	}
	sort.Ints(sizes)
	return sizes
}

type Session struct {
	Participants   int  `yaml:"participants"`
	RestPerRound   *int `yaml:"rest_per_round"`
	Courts         *int `yaml:"courts"`
	Rounds         *int `yaml:"rounds"`
	RepairAttempts int  `yaml:"repair_attempts"`
}

// Resolve returns the effective settings. An explicit rest/courts/rounds
// triple wins over the preset for the participant count.
func (s Session) Resolve() (Settings, error) {
	explicit := s.RestPerRound != nil || s.Courts != nil || s.Rounds != nil
	complete := s.RestPerRound != nil && s.Courts != nil && s.Rounds != nil

	var st Settings
	switch {
	case complete:
		st = Settings{
			Participants: s.Participants,
			RestPerRound: *s.RestPerRound,
			Courts:       *s.Courts,
			Rounds:       *s.Rounds,
		}
	case explicit:
		return Settings{}, fmt.Errorf("rest_per_round, courts and rounds must be given together")
	default:
		preset, ok := Presets[s.Participants]
		if !ok {
			return Settings{}, fmt.Errorf("%w: %d (presets are %v; otherwise set rest_per_round, courts and rounds)",
				ErrUnsupportedSize, s.Participants, PresetSizes())
		}
		st = preset
	}

	st.RepairAttempts = DefaultRepairAttempts
	if s.RepairAttempts > 0 {
		st.RepairAttempts = s.RepairAttempts
	}
	return st, nil
}

// Player is one roster entry of the session file.
type Player struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	Gender   string `yaml:"gender"`
	Category string `yaml:"category"`
}

// Override fixes one court of one round to four named players.
type Override struct {
	Round          int      `yaml:"round"`
	Court          int      `yaml:"court"`
	Team1          []string `yaml:"team1"`
	Team2          []string `yaml:"team2"`
	Representative string   `yaml:"representative"`
}

// Names returns the four player names, team 1 first.
func (o Override) Names() []string {
	names := make([]string, 0, 4)
	names = append(names, o.Team1...)
	names = append(names, o.Team2...)
	return names
}

// Tie-break rules for players with equal counters.
const (
	TieBreakRoster  = "roster"
	TieBreakShuffle = "shuffle"
)

type Config struct {
	Session   Session    `yaml:"session"`
	Seed      *int64     `yaml:"seed"`
	Strategy  string     `yaml:"strategy"`
	TieBreak  string     `yaml:"tie_break"`
	Players   []Player   `yaml:"players"`
	Overrides []Override `yaml:"overrides"`
}

// Roster builds the roster snapshot for a run. Players without an id get a
// generated one.
func (c *Config) Roster() (*roster.Roster, error) {
	players := make([]roster.Participant, 0, len(c.Players))
	for _, p := range c.Players {
		g, err := roster.ParseGender(p.Gender)
		if err != nil {
			return nil, fmt.Errorf("player %q: %w", p.Name, err)
		}
		cat, err := roster.ParseCategory(p.Category)
		if err != nil {
			return nil, fmt.Errorf("player %q: %w", p.Name, err)
		}
		id := p.ID
		if id == "" {
			id = uuid.NewString()
		}
		players = append(players, roster.Participant{
			ID:       id,
			Name:     strings.TrimSpace(p.Name),
			Gender:   g,
			Category: cat,
		})
	}
	return roster.New(players)
}

// OverridesByRound groups overrides by round number, keeping file order.
func (c *Config) OverridesByRound() map[int][]Override {
	m := make(map[int][]Override)
	for _, o := range c.Overrides {
		m[o.Round] = append(m[o.Round], o)
	}
	return m
}

// LoadFromBytes parses YAML bytes into a Config and validates it.
func LoadFromBytes(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFromFile reads a YAML config file. A .env file in the same directory is
// loaded first, and SeedEnv overrides the configured seed.
func LoadFromFile(path string) (*Config, error) {
	envPath := filepath.Join(filepath.Dir(path), ".env")
	if err := godotenv.Load(envPath); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("loading .env file: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	cfg, err := LoadFromBytes(data)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv(SeedEnv); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", SeedEnv, v, err)
		}
		cfg.Seed = &seed
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Session.Participants <= 0 {
		return fmt.Errorf("session.participants must be positive")
	}
	st, err := c.Session.Resolve()
	if err != nil {
		return err
	}
	if st.RestPerRound < 0 {
		return fmt.Errorf("rest_per_round must not be negative")
	}
	if st.Courts < 1 {
		return fmt.Errorf("courts must be at least 1")
	}
	if st.Rounds < 1 {
		return fmt.Errorf("rounds must be at least 1")
	}
	if c.Session.RepairAttempts < 0 {
		return fmt.Errorf("repair_attempts must not be negative")
	}

	if _, err := strategy.Get(c.Strategy); err != nil {
		return err
	}
	switch c.TieBreak {
	case "", TieBreakRoster, TieBreakShuffle:
	default:
		return fmt.Errorf("unknown tie_break %q (want %s or %s)", c.TieBreak, TieBreakRoster, TieBreakShuffle)
	}

	// Check for duplicate names and workbook separators
	seen := make(map[string]bool)
	for i, p := range c.Players {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			return fmt.Errorf("player %d has no name", i+1)
		}
		if strings.ContainsAny(name, "/,") {
			return fmt.Errorf("player name %q must not contain '/' or ','", name)
		}
		if seen[name] {
			return fmt.Errorf("player %q appears more than once", name)
		}
		seen[name] = true
		if _, err := roster.ParseGender(p.Gender); err != nil {
			return fmt.Errorf("player %q: %w", name, err)
		}
		if _, err := roster.ParseCategory(p.Category); err != nil {
			return fmt.Errorf("player %q: %w", name, err)
		}
	}

	for i, o := range c.Overrides {
		if o.Round < 1 {
			return fmt.Errorf("override %d: round must be at least 1", i+1)
		}
		if len(o.Team1) != 2 || len(o.Team2) != 2 {
			return fmt.Errorf("override %d (round %d): each team needs exactly two players", i+1, o.Round)
		}
	}

	return nil
}
