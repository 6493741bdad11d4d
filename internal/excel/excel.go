package excel

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/dd-mooon/tennismatcher/internal/roster"
	"github.com/dd-mooon/tennismatcher/internal/schedule"
)

const (
	ScheduleSheet = "Schedule"
	PlayersSheet  = "Players"
)

// Labels used in the Court column for the per-round rest and idle rows.
const (
	RestLabel = "Rest"
	IdleLabel = "Idle"
)

const (
	noteManual     = "manual"
	noteUnresolved = "overlap unresolved"
)

var (
	scheduleHeaders = []string{"Round", "Court", "Type", "Team 1", "Team 2", "Representative", "Notes"}
	playerHeaders   = []string{"Name", "Gender", "Category", "Games", "Rested", "Mixed"}
)

// Generate creates a workbook with the round-by-round schedule and the final
// per-player counters.
func Generate(result *schedule.Result) (*excelize.File, error) {
	f := excelize.NewFile()
	f.SetDefaultFont("Arial")

	if err := writeScheduleSheet(f, result.Rounds); err != nil {
		return nil, fmt.Errorf("writing schedule sheet: %w", err)
	}
	if err := writePlayersSheet(f, result.Stats); err != nil {
		return nil, fmt.Errorf("writing players sheet: %w", err)
	}

	f.DeleteSheet("Sheet1")
	if idx, err := f.GetSheetIndex(ScheduleSheet); err == nil && idx >= 0 {
		f.SetActiveSheet(idx)
	}
	return f, nil
}

type styles struct {
	header int
	cell   int
	center int
	alert  int
}

func newStyles(f *excelize.File) styles {
	var s styles
	s.header, _ = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 14, Family: "Arial"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#2E7D32"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	s.cell, _ = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Size: 14, Family: "Arial"},
	})
	s.center, _ = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Size: 14, Family: "Arial"},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	s.alert, _ = f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#FFC7CE"}},
		Font: &excelize.Font{Size: 14, Family: "Arial"},
	})
	return s
}

func writeHeader(f *excelize.File, sheet string, headers []string, st styles) error {
	row := make([]interface{}, len(headers))
	for i, h := range headers {
		row[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &row); err != nil {
		return err
	}
	if st.header != 0 {
		f.SetCellStyle(sheet, "A1", cellRef(len(headers), 1), st.header)
	}
	return nil
}

func writeScheduleSheet(f *excelize.File, rounds []schedule.Round) error {
	sheet := ScheduleSheet
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	st := newStyles(f)
	if err := writeHeader(f, sheet, scheduleHeaders, st); err != nil {
		return err
	}

	row := 2
	put := func(values ...interface{}) error {
		if err := f.SetSheetRow(sheet, cellRef(1, row), &values); err != nil {
			return fmt.Errorf("row %d: %w", row, err)
		}
		if st.cell != 0 {
			f.SetCellStyle(sheet, cellRef(1, row), cellRef(len(scheduleHeaders), row), st.cell)
			f.SetCellStyle(sheet, cellRef(1, row), cellRef(3, row), st.center)
		}
		row++
		return nil
	}

	for _, round := range rounds {
		for _, c := range round.Courts {
			rep := ""
			if c.Representative != nil {
				rep = c.Representative.Name
			}
			note := ""
			if c.Manual {
				note = noteManual
			}
			if err := put(round.Number, c.Number, c.Type.String(),
				joinNames(c.Team1[:], " / "), joinNames(c.Team2[:], " / "), rep, note); err != nil {
				return err
			}
		}

		note := ""
		if round.ConflictUnresolved {
			note = fmt.Sprintf("%s after %d swaps", noteUnresolved, round.RepairSwaps)
		}
		if err := put(round.Number, RestLabel, "", joinNames(round.Resting, ", "), "", "", note); err != nil {
			return err
		}
		if len(round.Idle) > 0 {
			if err := put(round.Number, IdleLabel, "", joinNames(round.Idle, ", "), "", "", ""); err != nil {
				return err
			}
		}
	}

	widths := map[string]float64{"A": 10, "B": 10, "C": 20, "D": 30, "E": 30, "F": 20, "G": 32}
	for col, w := range widths {
		f.SetColWidth(sheet, col, col, w)
	}

	// Court rows without a representative get a light red cell.
	lastRow := row - 1
	if lastRow >= 2 && st.alert != 0 {
		f.SetConditionalFormat(sheet, fmt.Sprintf("F2:F%d", lastRow), []excelize.ConditionalFormatOptions{
			{
				Type:     "formula",
				Criteria: `AND(ISNUMBER($B2),$F2="")`,
				Format:   &st.alert,
			},
		})
	}
	return nil
}

func writePlayersSheet(f *excelize.File, stats []schedule.PlayerStats) error {
	sheet := PlayersSheet
	if idx, err := f.GetSheetIndex(sheet); err == nil && idx >= 0 {
		if err := f.DeleteSheet(sheet); err != nil {
			return err
		}
	}
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	st := newStyles(f)
	if err := writeHeader(f, sheet, playerHeaders, st); err != nil {
		return err
	}

	for i, s := range stats {
		row := i + 2
		values := []interface{}{
			s.Participant.Name,
			string(s.Participant.Gender),
			string(s.Participant.Category),
			s.GamesPlayed,
			s.RoundsRested,
			s.MixedParticipations,
		}
		if err := f.SetSheetRow(sheet, cellRef(1, row), &values); err != nil {
			return fmt.Errorf("row %d: %w", row, err)
		}
		if st.cell != 0 {
			f.SetCellStyle(sheet, cellRef(1, row), cellRef(3, row), st.cell)
			f.SetCellStyle(sheet, cellRef(4, row), cellRef(6, row), st.center)
		}
	}

	widths := map[string]float64{"A": 24, "B": 12, "C": 12, "D": 10, "E": 10, "F": 10}
	for col, w := range widths {
		f.SetColWidth(sheet, col, col, w)
	}
	return nil
}

func joinNames(ps []roster.Participant, sep string) string {
	parts := make([]string, len(ps))
	for i, p := range ps {
		parts[i] = p.Name
	}
	return strings.Join(parts, sep)
}

func cellRef(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}
