package main

import (
	"errors"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/dd-mooon/tennismatcher/internal/config"
	"github.com/dd-mooon/tennismatcher/internal/excel"
	"github.com/dd-mooon/tennismatcher/internal/roster"
	"github.com/dd-mooon/tennismatcher/internal/schedule"
	"github.com/dd-mooon/tennismatcher/internal/validator"
)

const defaultConfigFile = "session.yaml"

func resolveConfigPath(configFlag string) (string, error) {
	if configFlag != "" {
		return configFlag, nil
	}
	if _, err := os.Stat(defaultConfigFile); err == nil {
		return defaultConfigFile, nil
	}
	return "", fmt.Errorf("no config file found. Either create %s in the current directory or pass --config", defaultConfigFile)
}

func newLogger(level string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid --log-level: %w", err)
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(lvl).
		With().Timestamp().Logger(), nil
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "tennismatch",
		Short: "Doubles tennis round scheduler",
		Long: heredoc.Doc(`tennismatch builds the rounds of a doubles tennis session:
			who rests, who plays on which court, and with whom.

			Rest and games are spread evenly across players, courts
			prefer at least one club member, and consecutive rounds
			avoid putting the same group of players back together.`),
	}

	var initOutputPath string
	initCmd := &cobra.Command{
		Use:          "init",
		Short:        "Create a starter session.yaml in the current directory",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(initOutputPath)
		},
	}
	initCmd.Flags().StringVarP(&initOutputPath, "output", "o", defaultConfigFile, "Output path for the session file")

	scheduleCmd := &cobra.Command{
		Use:   "schedule",
		Short: "Generate and validate session schedules",
	}

	var configFile, logLevel string
	scheduleCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to session file (default: session.yaml in current directory)")
	scheduleCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	var outputFile string
	var seed int64
	generateCmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a schedule from a session file",
		Long: heredoc.Doc(`generate reads the session file, schedules every round and
			writes the result to an Excel workbook.

			The seed decides representative picks and, with
			tie_break: shuffle, the order among equally placed
			players. It is taken from --seed, then TENNISMATCH_SEED
			(also read from a .env file next to the session file),
			then the session file. Without any of them a fresh seed
			is drawn and printed so the run can be repeated.`),
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, err := resolveConfigPath(configFile)
			if err != nil {
				return err
			}
			logger, err := newLogger(logLevel)
			if err != nil {
				return err
			}
			var seedFlag *int64
			if cmd.Flags().Changed("seed") {
				seedFlag = &seed
			}
			return runGenerate(configPath, outputFile, seedFlag, logger)
		},
	}
	generateCmd.Flags().StringVarP(&outputFile, "output", "o", "schedule.xlsx", "Output Excel file path")
	generateCmd.Flags().Int64Var(&seed, "seed", 0, "Random seed (overrides the session file)")

	validateCmd := &cobra.Command{
		Use:   "validate <schedule.xlsx>",
		Short: "Validate a schedule against the session file",
		Long: heredoc.Doc(`validate re-reads a generated and possibly hand-edited
			workbook, reports broken rules and guidelines, and
			recomputes the Players sheet from the edited rounds.`),
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, err := resolveConfigPath(configFile)
			if err != nil {
				return err
			}
			return runValidate(configPath, args[0])
		},
	}

	scheduleCmd.AddCommand(generateCmd, validateCmd)
	rootCmd.AddCommand(initCmd, scheduleCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runInit(outputPath string) error {
	if _, err := os.Stat(outputPath); err == nil {
		return fmt.Errorf("%s already exists; remove it first or use -o to write elsewhere", outputPath)
	}

	if err := os.WriteFile(outputPath, []byte(sessionTemplate), 0644); err != nil {
		return fmt.Errorf("writing session file: %w", err)
	}

	fmt.Printf("✓ Created %s\n", outputPath)
	return nil
}

var sessionTemplate = heredoc.Doc(`
	# Tennis Session
	# ==============
	# One session is a fixed number of rounds of doubles. Every round some
	# players rest and the rest are placed on courts, two teams of two.

	session:
	  # 10, 15 and 20 players have presets:
	  #   10 -> 2 resting, 2 courts, 5 rounds
	  #   15 -> 3 resting, 3 courts, 5 rounds
	  #   20 -> 4 resting, 4 courts, 5 rounds
	  # Any other size needs rest_per_round, courts and rounds. Giving all
	  # three also replaces the preset.
	  participants: 10
	  # rest_per_round: 2
	  # courts: 2
	  # rounds: 5

	  # How many partner swaps a round may use to break up groups of three
	  # or more players who shared a court in the previous round.
	  repair_attempts: 20

	# The seed makes representative picks repeatable. TENNISMATCH_SEED and
	# --seed take precedence.
	# seed: 42

	# rotating: round 1 starts with women's doubles, later rounds rotate
	#           women's, men's and mixed doubles across the courts.
	# fixed:    every court tries women's, then men's, then mixed doubles.
	strategy: rotating

	# Order among players with the same number of games or rests.
	# roster keeps the order below; shuffle reorders randomly every round.
	tie_break: roster

	# Players. gender is male or female; category is club or guest
	# (default guest). Club members are spread across courts and one of
	# them represents each court. Names must be unique and must not
	# contain '/' or ','.
	players:
	  - {name: Ana, gender: female, category: club}
	  - {name: Bea, gender: female}
	  - {name: Cleo, gender: female}
	  - {name: Dora, gender: female, category: club}
	  - {name: Eve, gender: female}
	  - {name: Finn, gender: male, category: club}
	  - {name: Gus, gender: male}
	  - {name: Hal, gender: male}
	  - {name: Ivo, gender: male, category: club}
	  - {name: Jon, gender: male}

	# Manual courts fix four players for one court of one round. They are
	# skipped with a warning when a name is unknown or already taken.
	# overrides:
	#   - round: 2
	#     court: 1
	#     team1: [Ana, Finn]
	#     team2: [Bea, Gus]
	#     representative: Ana
`)

func runGenerate(configPath, outputPath string, seedFlag *int64, logger zerolog.Logger) error {
	cfg, err := config.LoadFromFile(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	players, err := cfg.Roster()
	if err != nil {
		return fmt.Errorf("building roster: %w", err)
	}

	seed := time.Now().UnixNano()
	switch {
	case seedFlag != nil:
		seed = *seedFlag
	case cfg.Seed != nil:
		seed = *cfg.Seed
	default:
		fmt.Printf("Seed: %d\n", seed)
	}

	result, err := schedule.Schedule(cfg, players, schedule.Options{
		Rand:   rand.New(rand.NewSource(seed)),
		Logger: &logger,
	})
	var sizeErr *schedule.SizeError
	if errors.As(err, &sizeErr) {
		return fmt.Errorf("%s has %d players but the session needs %d", configPath, sizeErr.Actual, sizeErr.Expected)
	}
	if err != nil {
		return err
	}

	st := result.Settings
	fmt.Printf("Scheduling %d players: %d rounds, %d courts, %d resting per round\n",
		st.Participants, st.Rounds, st.Courts, st.RestPerRound)

	for _, round := range result.Rounds {
		fmt.Printf("\nRound %d\n", round.Number)
		for _, c := range round.Courts {
			rep := "-"
			if c.Representative != nil {
				rep = c.Representative.Name
			}
			fmt.Printf("  Court %d  %-15s %-40s rep %s\n", c.Number, c.Type, c.String(), rep)
		}
		if len(round.Resting) > 0 {
			fmt.Printf("  Resting  %s\n", joinNames(round.Resting))
		}
		if len(round.Idle) > 0 {
			fmt.Printf("  Idle     %s\n", joinNames(round.Idle))
		}
	}

	fmt.Println("\nPer Player Metrics:")
	fmt.Printf("  %-15s %-7s %-6s %6s %6s %6s\n", "Player", "Gender", "Cat", "Games", "Rested", "Mixed")
	for _, s := range result.Stats {
		p := s.Participant
		fmt.Printf("  %-15s %-7s %-6s %6d %6d %6d\n", p.Name, p.Gender, p.Category, s.GamesPlayed, s.RoundsRested, s.MixedParticipations)
	}

	if len(result.Warnings) > 0 {
		fmt.Printf("\nWarnings (%d):\n", len(result.Warnings))
		for _, w := range result.Warnings {
			fmt.Printf("  ⚠ %s\n", w)
		}
	} else {
		fmt.Println("\n✓ No warnings")
	}

	f, err := excel.Generate(result)
	if err != nil {
		return fmt.Errorf("generating Excel: %w", err)
	}
	if err := f.SaveAs(outputPath); err != nil {
		return fmt.Errorf("saving file: %w", err)
	}

	fmt.Printf("\n✓ Schedule saved to %s\n", outputPath)
	return nil
}

func runValidate(configPath, schedulePath string) error {
	cfg, err := config.LoadFromFile(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	violations, err := validator.Validate(cfg, schedulePath)
	if err != nil {
		return fmt.Errorf("validating: %w", err)
	}

	errors := 0
	warnings := 0
	for _, v := range violations {
		switch v.Type {
		case "error":
			errors++
			fmt.Printf("✗ Rule violation: %s\n", v.Message)
		case "warning":
			warnings++
			fmt.Printf("⚠ Guideline violation: %s\n", v.Message)
		}
	}

	fmt.Printf("\nValidation complete: %d rule violations, %d guideline violations\n", errors, warnings)

	players, err := cfg.Roster()
	if err != nil {
		return fmt.Errorf("building roster: %w", err)
	}
	if err := excel.RefreshPlayers(schedulePath, players); err != nil {
		return fmt.Errorf("updating players sheet: %w", err)
	}
	fmt.Printf("✓ Players sheet updated in %s\n", schedulePath)

	if errors > 0 {
		return fmt.Errorf("%d rule violations found", errors)
	}
	return nil
}

func joinNames(ps []roster.Participant) string {
	names := make([]string, len(ps))
	for i, p := range ps {
		names[i] = p.Name
	}
	return strings.Join(names, ", ")
}
