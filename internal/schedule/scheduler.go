package schedule

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/rs/zerolog"

	"github.com/dd-mooon/tennismatcher/internal/config"
	"github.com/dd-mooon/tennismatcher/internal/roster"
	"github.com/dd-mooon/tennismatcher/internal/strategy"
)

// Round is one round of the session.
type Round struct {
	Number  int
	Courts  []Court
	Resting []roster.Participant
	// Idle players were active but no court type fit them.
	Idle []roster.Participant

	RepairSwaps        int
	ConflictUnresolved bool
	SkippedOverrides   []SkippedOverride
}

// Seated returns every player on a court this round.
func (r *Round) Seated() []roster.Participant {
	var ps []roster.Participant
	for _, c := range r.Courts {
		ps = append(ps, c.Players()...)
	}
	return ps
}

// Result is the output of a scheduling run.
type Result struct {
	Settings config.Settings
	Rounds   []Round
	Stats    []PlayerStats // final ledger, roster order
	Warnings []string
}

// SizeError is returned when the roster does not match the configured size.
type SizeError struct {
	Expected int
	Actual   int
}

func (e *SizeError) Error() string {
	return fmt.Sprintf("exactly %d participants are required, got %d", e.Expected, e.Actual)
}

// Options carries the collaborators of a run.
type Options struct {
	// Rand drives representative selection and the shuffle tie-break.
	// Defaults to a source seeded with 42.
	Rand *rand.Rand
	// Pattern picks the preferred match type per court. Defaults to the
	// pattern named by the config's strategy.
	Pattern strategy.Pattern
	// Logger defaults to a no-op logger.
	Logger *zerolog.Logger
}

type scheduler struct {
	settings  config.Settings
	roster    *roster.Roster
	overrides map[int][]config.Override
	pattern   strategy.Pattern
	shuffle   bool
	rng       *rand.Rand
	log       zerolog.Logger

	ledger   *Ledger
	rounds   []Round
	warnings []string
}

// Schedule produces every round of a session. Input errors are reported
// before any round is built; everything else degrades into warnings.
func Schedule(cfg *config.Config, players *roster.Roster, opts Options) (*Result, error) {
	settings, err := cfg.Session.Resolve()
	if err != nil {
		return nil, err
	}
	if players.Len() != settings.Participants {
		return nil, &SizeError{Expected: settings.Participants, Actual: players.Len()}
	}

	pattern := opts.Pattern
	if pattern == nil {
		if pattern, err = strategy.Get(cfg.Strategy); err != nil {
			return nil, err
		}
	}
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(42))
	}
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	s := &scheduler{
		settings:  settings,
		roster:    players,
		overrides: cfg.OverridesByRound(),
		pattern:   pattern,
		shuffle:   cfg.TieBreak == config.TieBreakShuffle,
		rng:       rng,
		log:       logger.With().Str("component", "scheduler").Logger(),
		ledger:    NewLedger(players.Players()),
	}
	s.run()

	return &Result{
		Settings: settings,
		Rounds:   s.rounds,
		Stats:    s.ledger.Snapshot(players),
		Warnings: s.warnings,
	}, nil
}

func (s *scheduler) run() {
	var late []int
	for round := range s.overrides {
		if round > s.settings.Rounds {
			late = append(late, round)
		}
	}
	sort.Ints(late)
	for _, round := range late {
		s.warnf("manual courts for round %d ignored: session has %d rounds", round, s.settings.Rounds)
	}

	s.log.Info().
		Int("participants", s.settings.Participants).
		Int("rest_per_round", s.settings.RestPerRound).
		Int("courts", s.settings.Courts).
		Int("rounds", s.settings.Rounds).
		Msg("Scheduling session")

	for n := 1; n <= s.settings.Rounds; n++ {
		s.rounds = append(s.rounds, s.playRound(n))
	}
}

func (s *scheduler) playRound(n int) Round {
	log := s.log.With().Int("round", n).Logger()
	round := Round{Number: n}

	order := s.roster.Players()
	if s.shuffle {
		s.rng.Shuffle(len(order), func(i, j int) {
			order[i], order[j] = order[j], order[i]
		})
	}

	fixed, pool, skipped := s.applyOverrides(n, order)
	round.SkippedOverrides = skipped
	for _, sk := range skipped {
		s.warnf("round %d: manual court %d skipped: %s", n, sk.Override.Court, sk.Reason)
	}
	for _, c := range fixed {
		s.ledger.seat(c)
	}

	round.Resting = selectRest(pool, s.ledger, s.settings.RestPerRound)
	pool = without(pool, round.Resting)

	open := openCourts(s.settings.Courts, fixed)
	composed, idle := s.composeCourts(n, pool, open)
	round.Idle = idle
	round.Courts = append(fixed, composed...)
	sortCourts(round.Courts)

	if len(round.Courts) < s.settings.Courts {
		log.Warn().Int("filled", len(round.Courts)).Int("idle", len(idle)).Msg("Round has unfilled courts")
		s.warnf("round %d: %d of %d courts filled (%s idle)",
			n, len(round.Courts), s.settings.Courts, countOrNone(idle))
	}

	if len(s.rounds) > 0 {
		prev := s.rounds[len(s.rounds)-1]
		out := repairOverlap(prev.Courts, round.Courts, s.settings.RepairAttempts)
		round.RepairSwaps = out.Swaps
		round.ConflictUnresolved = !out.Resolved
		if !out.Resolved {
			log.Warn().Int("swaps", out.Swaps).Msg("Repeated court groups remain after repair")
			s.warnf("round %d: courts repeat three or more players from round %d", n, n-1)
		}
	}

	for i := range round.Courts {
		c := &round.Courts[i]
		if c.Manual {
			continue
		}
		c.Representative = pickRepresentative(*c, s.rng)
		if c.Representative == nil {
			log.Debug().Int("court", c.Number).Msg("Court has no club player")
		}
	}

	log.Debug().
		Int("courts", len(round.Courts)).
		Str("resting", names(round.Resting)).
		Msg("Round complete")
	return round
}

// composeCourts fills the open court numbers in order. Composition stops at
// the first court no match type fits; the players left over are returned in
// roster order.
func (s *scheduler) composeCourts(round int, pool []roster.Participant, numbers []int) ([]Court, []roster.Participant) {
	gp := newGenderPools(pool, s.ledger)
	var courts []Court

	for _, number := range numbers {
		log := s.log.With().Int("round", round).Int("court", number).Logger()

		preferred := s.pattern.Preferred(round, number-1)
		t, ok := gp.choose(preferred)
		if !ok {
			log.Debug().
				Int("women", len(gp.female)).
				Int("men", len(gp.male)).
				Msg("No match type fits the remaining players")
			break
		}
		if t != preferred {
			log.Debug().Stringer("preferred", preferred).Stringer("type", t).Msg("Falling back")
		}

		c := gp.draw(t, number)
		if !c.hasClub() {
			if gp.swapInClub(&c) {
				log.Debug().Msg("Swapped a club player onto a guest-only court")
			} else {
				log.Debug().Msg("No club player available for guest-only court")
			}
		}
		spreadClubs(&c)

		s.ledger.seat(c)
		courts = append(courts, c)
	}

	idle := gp.remaining()
	sort.SliceStable(idle, func(i, j int) bool {
		return s.roster.Index(idle[i].ID) < s.roster.Index(idle[j].ID)
	})
	return courts, idle
}

func (s *scheduler) warnf(format string, args ...any) {
	s.warnings = append(s.warnings, fmt.Sprintf(format, args...))
}

func countOrNone(ps []roster.Participant) string {
	if len(ps) == 0 {
		return "none"
	}
	return names(ps)
}
