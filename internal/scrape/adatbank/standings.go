package adatbank

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// StandingRow is one row of the league table, keyed by the free-text
// team name until identity resolution.
type StandingRow struct {
	Position      int
	TeamName      string
	MatchesPlayed int
	Wins          int
	Draws         int
	Losses        int
	GoalsFor      int
	GoalsAgainst  int
	GoalDiff      int
	Points        int
}

// ParseStandings extracts the league table from a round's schedule
// page. Rows the parser cannot make sense of are skipped.
func ParseStandings(doc *goquery.Document) []StandingRow {
	var rows []StandingRow

	doc.Find("div.team_tabella div#tabella_panel tbody#tableContent tr.template-tr-selectable").
		Each(func(_ int, tr *goquery.Selection) {
			if row, ok := parseStandingRow(tr); ok {
				rows = append(rows, row)
			}
		})

	return rows
}

func parseStandingRow(tr *goquery.Selection) (StandingRow, bool) {
	tds := tr.Find("td")
	if tds.Length() < 11 {
		return StandingRow{}, false
	}

	name := tds.Eq(2).Text()
	// The table pads team names with non-breaking spaces.
	name = strings.ReplaceAll(name, "\u00a0", " ")
	name = strings.Join(strings.Fields(name), " ")
	if name == "" {
		return StandingRow{}, false
	}

	row := StandingRow{
		Position:      cellInt(tds.Eq(0)),
		TeamName:      name,
		MatchesPlayed: cellInt(tds.Eq(3)),
		Wins:          cellInt(tds.Eq(4)),
		Draws:         cellInt(tds.Eq(5)),
		Losses:        cellInt(tds.Eq(6)),
		GoalsFor:      cellInt(tds.Eq(7)),
		GoalsAgainst:  cellInt(tds.Eq(8)),
		Points:        cellInt(tds.Eq(10)),
	}

	// The goal difference lives in its own styled cell and can be
	// negative.
	row.GoalDiff = cellInt(tr.Find("td.remove700").First())

	return row, true
}

func cellInt(s *goquery.Selection) int {
	n, err := strconv.Atoi(strings.TrimSpace(s.Text()))
	if err != nil {
		return 0
	}
	return n
}
