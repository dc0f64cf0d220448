package adatbank

import (
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// TeamSummary is one entry from the league team index.
type TeamSummary struct {
	Name string
	Ref  string
}

// RosterEntry is one row of a team page's player table.
type RosterEntry struct {
	Name string
	Ref  string
}

// TeamDetail is the parsed team page.
type TeamDetail struct {
	Name    string
	Address string
	Website string
	Players []RosterEntry
}

// PlayerDetail is the parsed player page.
type PlayerDetail struct {
	BirthDate *time.Time
}

// ParseTeamIndex extracts the league's teams from any club page.
// Every club page carries the full league list in its header, so one
// fetch covers all teams. Duplicate names are dropped.
func ParseTeamIndex(doc *goquery.Document) []TeamSummary {
	var teams []TeamSummary
	seen := make(map[string]bool)

	doc.Find("div.league_teams a.league-team").Each(func(_ int, s *goquery.Selection) {
		name := strings.TrimSpace(s.Find("span").First().Text())
		ref, _ := s.Attr("href")
		if name == "" || seen[name] {
			return
		}
		seen[name] = true
		teams = append(teams, TeamSummary{Name: name, Ref: ref})
	})

	return teams
}

// ParseTeamDetail extracts a team's base data and roster from its
// club page.
func ParseTeamDetail(doc *goquery.Document) *TeamDetail {
	detail := &TeamDetail{
		Name: strings.TrimSpace(doc.Find("h1.container_title").First().Text()),
	}

	data := doc.Find("div.team_data").First()
	detail.Address = strings.TrimSpace(data.Find("div.detail.address div.datas").First().Text())

	data.Find("div.detail.phone").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if !strings.Contains(s.Text(), "Web") {
			return true
		}
		if href, ok := s.Find("a").First().Attr("href"); ok {
			detail.Website = href
		}
		return false
	})

	doc.Find("div#jatekos_panel tbody#teamPlayers tr").Each(func(_ int, row *goquery.Selection) {
		link := row.Find("a").First()
		if link.Length() == 0 {
			return
		}
		name := strings.TrimSpace(link.Find("span.playerName").First().Text())
		if name == "" {
			return
		}
		ref, _ := link.Attr("href")
		detail.Players = append(detail.Players, RosterEntry{Name: name, Ref: ref})
	})

	return detail
}

// ParsePlayerPage extracts the birth date from a player page. The
// page lays personal data out as label/value table cell pairs.
func ParsePlayerPage(doc *goquery.Document) *PlayerDetail {
	detail := &PlayerDetail{}

	doc.Find("td").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if strings.TrimSpace(s.Text()) != "Születési idő" {
			return true
		}
		if d, ok := parseBirthDate(s.Next().Text()); ok {
			detail.BirthDate = &d
		}
		return false
	})

	return detail
}

// parseBirthDate parses the "1986. 12. 23." form the player pages use.
func parseBirthDate(raw string) (time.Time, bool) {
	cleaned := strings.NewReplacer(".", "", " ", "").Replace(raw)
	d, err := time.Parse("20060102", cleaned)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}
