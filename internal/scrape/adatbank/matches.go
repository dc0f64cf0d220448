package adatbank

import (
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/patrikb/ligafeed/internal/extract"
)

// MatchSummary is one played match from a round's schedule page.
type MatchSummary struct {
	HomeTeam  string
	AwayTeam  string
	HomeScore int
	AwayScore int
	Arena     string
	Date      time.Time
	Ref       string
}

// MatchDetail is the parsed match page.
type MatchDetail struct {
	Referee string
	Home    []extract.PlayerRow
	Away    []extract.PlayerRow
}

// ParseRound extracts the played matches from a round's schedule
// page. The first match without a result link marks the unplayed
// remainder of the round, so parsing stops there.
func ParseRound(doc *goquery.Document) []MatchSummary {
	var matches []MatchSummary

	doc.Find("div.schedule_box div.schedule").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		ref, _ := s.Find("div.result-cont a").First().Attr("href")
		if ref == "" {
			return false
		}

		m := MatchSummary{
			HomeTeam: strings.TrimSpace(s.Find("div.home_team").First().Text()),
			AwayTeam: strings.TrimSpace(s.Find("div.away_team").First().Text()),
			Arena:    strings.TrimSpace(s.Find("div.team_sorsolas_arena").First().Text()),
			Ref:      ref,
		}

		result := strings.TrimSpace(s.Find("div.result-cont span.schedule-points").First().Text())
		if home, away, ok := parseResult(result); ok {
			m.HomeScore, m.AwayScore = home, away
		}

		if d, ok := parseMatchDate(s.Find("div.team_sorsolas_date").First().Text()); ok {
			m.Date = d
		}

		matches = append(matches, m)
		return true
	})

	return matches
}

// ParseMatchPage extracts the referee and both teams' lineup rows
// from a match detail page.
func ParseMatchPage(doc *goquery.Document) *MatchDetail {
	detail := &MatchDetail{}

	doc.Find("div.team_info_wrapper div.detail").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		label := strings.TrimSpace(s.Find("div.dataname").First().Text())
		if !strings.Contains(label, "Játékvezető") || strings.Contains(label, "Tartalék") {
			return true
		}
		detail.Referee = strings.TrimSpace(s.Find("div.datas").First().Text())
		return false
	})

	teams := doc.Find("div.match_teams_players").First()
	detail.Home = parseLineup(teams.Find("div#left_team").First())
	detail.Away = parseLineup(teams.Find("div#right_team").First())

	return detail
}

// parseLineup reads one side's tables: the first table holds the
// starters, the table with class "replacement" holds the substitutes.
func parseLineup(team *goquery.Selection) []extract.PlayerRow {
	var rows []extract.PlayerRow

	starters := team.Find("table").Not(".replacement").First()
	starters.Find("tr.template-tr-selectable").Each(func(_ int, tr *goquery.Selection) {
		if row, ok := parsePlayerRow(tr, true); ok {
			rows = append(rows, row)
		}
	})

	subs := team.Find("table.replacement").First()
	subs.Find("tr.template-tr-selectable").Each(func(_ int, tr *goquery.Selection) {
		if row, ok := parsePlayerRow(tr, false); ok {
			rows = append(rows, row)
		}
	})

	return rows
}

func parsePlayerRow(tr *goquery.Selection, starter bool) (extract.PlayerRow, bool) {
	name := strings.TrimSpace(tr.Find("td.match_players_name a").First().Text())
	if name == "" {
		return extract.PlayerRow{}, false
	}

	row := extract.PlayerRow{Name: name, Starter: starter}

	tr.Find("td.match_players_cards span").Each(func(_ int, span *goquery.Selection) {
		minute, ok := parseMinute(span.Text())
		if !ok {
			return
		}
		style, _ := span.Attr("style")
		row.Markers = append(row.Markers, extract.Marker{Minute: minute, Style: style})
	})

	return row, true
}

// parseMinute pulls the digits out of a marker label like "67'".
func parseMinute(raw string) (int, bool) {
	var digits strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return 0, false
	}
	minute, err := strconv.Atoi(digits.String())
	if err != nil {
		return 0, false
	}
	return minute, true
}

// parseResult splits a "2 - 1" result label into the two scores.
func parseResult(raw string) (int, int, bool) {
	parts := strings.Split(raw, " - ")
	if len(parts) != 2 {
		return 0, 0, false
	}
	home, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, false
	}
	away, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, false
	}
	return home, away, true
}

// parseMatchDate parses the schedule page's "2025. 07. 25.20:00"
// form. The kickoff time is dropped; matches are keyed by day.
func parseMatchDate(raw string) (time.Time, bool) {
	normalized := strings.ReplaceAll(strings.TrimSpace(raw), ". ", ".")
	if len(normalized) < 10 {
		return time.Time{}, false
	}
	d, err := time.Parse("2006.01.02", normalized[:10])
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}
