// Package adatbank scrapes the MLSZ Adatbank pages for NB I teams,
// rosters, matches and league tables. Parsing is split into pure
// functions over goquery documents so the selectors can be tested
// against literal HTML.
package adatbank

import (
	"context"
	"fmt"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/patrikb/ligafeed/internal/fetch"
)

// Client fetches Adatbank pages through the polite fetcher and parses
// them.
type Client struct {
	fetcher   *fetch.Fetcher
	seasonRef int
	leagueRef int
	indexPath string
	log       *zap.SugaredLogger
}

// NewClient creates an Adatbank client. seasonRef and leagueRef are
// the numeric identifiers the site uses in its URLs; indexPath is any
// club page, since every club page lists the whole league.
func NewClient(fetcher *fetch.Fetcher, seasonRef, leagueRef int, indexPath string, log *zap.SugaredLogger) *Client {
	return &Client{
		fetcher:   fetcher,
		seasonRef: seasonRef,
		leagueRef: leagueRef,
		indexPath: indexPath,
		log:       log,
	}
}

func (c *Client) roundRef(round int) string {
	return fmt.Sprintf("league/%d/0/%d/%d.html", c.seasonRef, c.leagueRef, round)
}

// Teams lists every team in the league from the configured index page.
func (c *Client) Teams(ctx context.Context) ([]TeamSummary, error) {
	doc, err := c.fetcher.Fetch(ctx, c.indexPath)
	if err != nil {
		return nil, fmt.Errorf("fetching team index: %w", err)
	}
	return ParseTeamIndex(doc), nil
}

// TeamDetail fetches one team page: base data plus the roster rows.
func (c *Client) TeamDetail(ctx context.Context, ref string) (*TeamDetail, error) {
	doc, err := c.fetcher.Fetch(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("fetching team page %s: %w", ref, err)
	}
	return ParseTeamDetail(doc), nil
}

// PlayerPage fetches one player page and returns the parsed birth
// date, or nil when the page does not carry one.
func (c *Client) PlayerPage(ctx context.Context, ref string) (*PlayerDetail, error) {
	doc, err := c.fetcher.Fetch(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("fetching player page %s: %w", ref, err)
	}
	return ParsePlayerPage(doc), nil
}

// Round fetches one round's schedule page and parses the match list.
// An unplayed round yields an empty slice.
func (c *Client) Round(ctx context.Context, round int) ([]MatchSummary, error) {
	doc, err := c.fetcher.Fetch(ctx, c.roundRef(round))
	if err != nil {
		return nil, fmt.Errorf("fetching round %d: %w", round, err)
	}
	return ParseRound(doc), nil
}

// Match fetches one match page: referee plus both lineups.
func (c *Client) Match(ctx context.Context, ref string) (*MatchDetail, error) {
	doc, err := c.fetcher.Fetch(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("fetching match page %s: %w", ref, err)
	}
	return ParseMatchPage(doc), nil
}

// Standings fetches one round's schedule page and parses the league
// table. The bool reports whether the round has been played; the table
// on an unplayed round's page still shows the previous state and must
// not be stored.
func (c *Client) Standings(ctx context.Context, round int) ([]StandingRow, bool, error) {
	doc, err := c.fetcher.Fetch(ctx, c.roundRef(round))
	if err != nil {
		return nil, false, fmt.Errorf("fetching round %d: %w", round, err)
	}
	if !RoundPlayed(doc) {
		return nil, false, nil
	}
	return ParseStandings(doc), true, nil
}

// RoundPlayed reports whether the first match of the round page links
// to a match detail page. Before kickoff the result cell has no link.
func RoundPlayed(doc *goquery.Document) bool {
	first := doc.Find("div.schedule_box div.schedule").First()
	if first.Length() == 0 {
		return false
	}
	href, ok := first.Find("div.result-cont a").First().Attr("href")
	return ok && href != ""
}
