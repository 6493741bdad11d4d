package excel

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/dd-mooon/tennismatcher/internal/roster"
	"github.com/dd-mooon/tennismatcher/internal/schedule"
	"github.com/dd-mooon/tennismatcher/internal/strategy"
)

// Court is a court row read back from the Schedule sheet. Names are kept as
// written so that hand edits can be checked against the roster.
type Court struct {
	Row            int
	Number         int
	Type           string
	Team1          []string
	Team2          []string
	Representative string
	Manual         bool
}

// Players returns the names of both teams, team 1 first.
func (c Court) Players() []string {
	names := make([]string, 0, len(c.Team1)+len(c.Team2))
	names = append(names, c.Team1...)
	return append(names, c.Team2...)
}

// Round groups the rows of one round number.
type Round struct {
	Number  int
	Courts  []Court
	Resting []string
	Idle    []string
	RestRow int
}

// Read parses the Schedule sheet. Blank rows are skipped; rows whose round or
// court cell cannot be parsed are an error.
func Read(f *excelize.File) ([]Round, error) {
	rows, err := f.GetRows(ScheduleSheet)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", ScheduleSheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s is empty", ScheduleSheet)
	}

	byNumber := make(map[int]*Round)
	for i, row := range rows {
		if i == 0 || len(row) == 0 || strings.TrimSpace(row[0]) == "" {
			continue
		}
		line := i + 1
		cell := func(col int) string {
			if col < len(row) {
				return strings.TrimSpace(row[col])
			}
			return ""
		}

		n, err := strconv.Atoi(cell(0))
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid round %q", line, cell(0))
		}
		round, ok := byNumber[n]
		if !ok {
			round = &Round{Number: n}
			byNumber[n] = round
		}

		switch label := cell(1); label {
		case RestLabel:
			round.Resting = append(round.Resting, splitNames(cell(3), ",")...)
			round.RestRow = line
		case IdleLabel:
			round.Idle = append(round.Idle, splitNames(cell(3), ",")...)
		default:
			number, err := strconv.Atoi(label)
			if err != nil {
				return nil, fmt.Errorf("row %d: invalid court %q", line, label)
			}
			round.Courts = append(round.Courts, Court{
				Row:            line,
				Number:         number,
				Type:           cell(2),
				Team1:          splitNames(cell(3), "/"),
				Team2:          splitNames(cell(4), "/"),
				Representative: cell(5),
				Manual:         strings.Contains(strings.ToLower(cell(6)), noteManual),
			})
		}
	}

	rounds := make([]Round, 0, len(byNumber))
	for _, r := range byNumber {
		rounds = append(rounds, *r)
	}
	sort.Slice(rounds, func(i, j int) bool { return rounds[i].Number < rounds[j].Number })
	return rounds, nil
}

func splitNames(s, sep string) []string {
	var out []string
	for _, part := range strings.Split(s, sep) {
		if name := strings.TrimSpace(part); name != "" {
			out = append(out, name)
		}
	}
	return out
}

// Stats recounts games, rests and mixed participations from parsed rounds.
// Names missing from the roster are ignored.
func Stats(r *roster.Roster, rounds []Round) []schedule.PlayerStats {
	players := r.Players()
	ledger := schedule.NewLedger(players)
	for _, round := range rounds {
		for _, c := range round.Courts {
			var seated []roster.Participant
			for _, name := range c.Players() {
				if p, ok := r.Lookup(name); ok {
					seated = append(seated, p)
				}
			}
			ledger.Record(seated, strategy.Classify(seated))
		}
		for _, name := range round.Resting {
			if p, ok := r.Lookup(name); ok {
				ledger.Rest(p)
			}
		}
	}
	return ledger.Snapshot(r)
}

// RefreshPlayers rewrites the Players sheet of the workbook at path from the
// rounds on its Schedule sheet.
func RefreshPlayers(path string, r *roster.Roster) error {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	rounds, err := Read(f)
	if err != nil {
		return err
	}
	if err := writePlayersSheet(f, Stats(r, rounds)); err != nil {
		return fmt.Errorf("writing players sheet: %w", err)
	}
	return f.Save()
}
