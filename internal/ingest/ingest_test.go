package ingest

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/patrikb/ligafeed/internal/extract"
	"github.com/patrikb/ligafeed/internal/scrape/adatbank"
	"github.com/patrikb/ligafeed/internal/scrape/nso"
	"github.com/patrikb/ligafeed/internal/store/memory"
)

var testLog = zap.NewNop().Sugar()

// fakeTeamSource serves a small league from memory.
type fakeTeamSource struct {
	teams   []adatbank.TeamSummary
	details map[string]*adatbank.TeamDetail
	players map[string]*adatbank.PlayerDetail
}

func (f *fakeTeamSource) Teams(context.Context) ([]adatbank.TeamSummary, error) {
	return f.teams, nil
}

func (f *fakeTeamSource) TeamDetail(_ context.Context, ref string) (*adatbank.TeamDetail, error) {
	d, ok := f.details[ref]
	if !ok {
		return nil, errors.New("no such team page")
	}
	return d, nil
}

func (f *fakeTeamSource) PlayerPage(_ context.Context, ref string) (*adatbank.PlayerDetail, error) {
	if d, ok := f.players[ref]; ok {
		return d, nil
	}
	return &adatbank.PlayerDetail{}, nil
}

func newLeagueSource() *fakeTeamSource {
	birth := time.Date(1998, 3, 14, 0, 0, 0, 0, time.UTC)
	return &fakeTeamSource{
		teams: []adatbank.TeamSummary{
			{Name: "DVSC", Ref: "club/1.html"},
			{Name: "Paksi FC", Ref: "club/2.html"},
		},
		details: map[string]*adatbank.TeamDetail{
			"club/1.html": {
				Name:    "DVSC",
				Address: "Debrecen",
				Players: []adatbank.RosterEntry{
					{Name: "Kovács Péter", Ref: "player/1.html"},
					{Name: "Szabó Gábor", Ref: "player/2.html"},
				},
			},
			"club/2.html": {
				Name:    "Paksi FC",
				Players: []adatbank.RosterEntry{{Name: "Tóth Márk"}},
			},
		},
		players: map[string]*adatbank.PlayerDetail{
			"player/1.html": {BirthDate: &birth},
		},
	}
}

func TestRosterStageIdempotent(t *testing.T) {
	ctx := context.Background()
	gw := memory.NewStore()
	stage := NewRosterStage(newLeagueSource(), gw, testLog)

	report, err := stage.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, report.TeamsCreated)
	assert.Equal(t, 3, report.PlayersCreated)
	assert.Equal(t, 0, report.Skipped)

	id, ok, err := gw.PlayerIDByNameAndTeam(ctx, "Kovács Péter", "DVSC")
	require.NoError(t, err)
	require.True(t, ok)
	p, ok := gw.Player(id)
	require.True(t, ok)
	assert.True(t, p.BirthDate.Valid)

	// Second run recognizes everything.
	report, err = stage.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, report.TeamsCreated)
	assert.Equal(t, 2, report.TeamsExisting)
	assert.Equal(t, 0, report.PlayersCreated)
	assert.Equal(t, 3, report.PlayersExisting)
	assert.Equal(t, 2, gw.TeamCount())
}

func TestRosterStageSkipsFailedTeamPage(t *testing.T) {
	src := newLeagueSource()
	delete(src.details, "club/2.html")

	gw := memory.NewStore()
	report, err := NewRosterStage(src, gw, testLog).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.TeamsCreated)
	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, 1, gw.TeamCount())
}

// fakeMatchSource serves one round with one match.
type fakeMatchSource struct {
	rounds  map[int][]adatbank.MatchSummary
	details map[string]*adatbank.MatchDetail
}

func (f *fakeMatchSource) Round(_ context.Context, round int) ([]adatbank.MatchSummary, error) {
	return f.rounds[round], nil
}

func (f *fakeMatchSource) Match(_ context.Context, ref string) (*adatbank.MatchDetail, error) {
	d, ok := f.details[ref]
	if !ok {
		return nil, errors.New("no such match page")
	}
	return d, nil
}

func seedLeague(t *testing.T, gw *memory.Store) {
	t.Helper()
	_, err := NewRosterStage(newLeagueSource(), gw, testLog).Run(context.Background())
	require.NoError(t, err)
}

func newMatchSource() *fakeMatchSource {
	return &fakeMatchSource{
		rounds: map[int][]adatbank.MatchSummary{
			1: {{
				HomeTeam:  "DVSC",
				AwayTeam:  "Paksi FC",
				HomeScore: 2,
				AwayScore: 1,
				Arena:     "Nagyerdei Stadion",
				Date:      time.Date(2025, 7, 25, 0, 0, 0, 0, time.UTC),
				Ref:       "match/1.html",
			}},
		},
		details: map[string]*adatbank.MatchDetail{
			"match/1.html": {
				Referee: "Nagy Antal",
				Home: []extract.PlayerRow{
					{
						Name:    "Kovács Péter",
						Starter: true,
						Markers: []extract.Marker{
							{Minute: 12, Style: "url(event_goal.png)"},
							{Minute: 60, Style: "url(event_swap.png)"},
						},
					},
					{
						Name:    "Szabó Gábor",
						Markers: []extract.Marker{{Minute: 60, Style: "url(event_swap.png)"}},
					},
				},
				Away: []extract.PlayerRow{
					// The site lists this side's scorer with reversed
					// name order.
					{
						Name:    "Márk Tóth",
						Starter: true,
						Markers: []extract.Marker{{Minute: 80, Style: "url(event_yellowcard.png)"}},
					},
					{Name: "Ismeretlen Játékos", Starter: true},
				},
			},
		},
	}
}

func TestMatchStageStoresMatchEventsAndStats(t *testing.T) {
	ctx := context.Background()
	gw := memory.NewStore()
	seedLeague(t, gw)

	stage := NewMatchStage(newMatchSource(), gw, "2025/26", 33, testLog)
	report, err := stage.Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, report.MatchesCreated)
	assert.Equal(t, 1, gw.MatchCount())
	// Goal + two substitution markers + yellow card.
	assert.Equal(t, 4, report.EventsCreated)
	assert.Len(t, gw.Events(), 4)
	// Two resolvable home players, one resolvable away player; the
	// unknown away player is dropped.
	assert.Equal(t, 3, report.StatsApplied)
	assert.Equal(t, 1, report.Skipped)

	kovacsID, _, err := gw.PlayerIDByNameAndTeam(ctx, "Kovács Péter", "DVSC")
	require.NoError(t, err)
	ps, ok := gw.PlayerStats(kovacsID, teamID(t, gw, "DVSC"))
	require.True(t, ok)
	assert.Equal(t, 1, ps.Goals)
	assert.Equal(t, 60, ps.MinutesPlayed)
	assert.Equal(t, 1, ps.MatchesPlayed)

	// Substitute entered at 60'.
	szaboID, _, err := gw.PlayerIDByNameAndTeam(ctx, "Szabó Gábor", "DVSC")
	require.NoError(t, err)
	ps, ok = gw.PlayerStats(szaboID, teamID(t, gw, "DVSC"))
	require.True(t, ok)
	assert.Equal(t, 30, ps.MinutesPlayed)

	// Reversed-order name resolved against the roster.
	tothID, _, err := gw.PlayerIDByNameAndTeam(ctx, "Tóth Márk", "Paksi FC")
	require.NoError(t, err)
	ps, ok = gw.PlayerStats(tothID, teamID(t, gw, "Paksi FC"))
	require.True(t, ok)
	assert.Equal(t, 1, ps.YellowCards)
	assert.Equal(t, 90, ps.MinutesPlayed)
}

func TestMatchStageRerunDoesNotDoubleCount(t *testing.T) {
	ctx := context.Background()
	gw := memory.NewStore()
	seedLeague(t, gw)

	stage := NewMatchStage(newMatchSource(), gw, "2025/26", 33, testLog)
	_, err := stage.Run(ctx)
	require.NoError(t, err)

	report, err := stage.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, report.MatchesCreated)
	assert.Equal(t, 1, report.MatchesExisting)
	assert.Equal(t, 0, report.EventsCreated)
	assert.Equal(t, 0, report.StatsApplied)

	assert.Equal(t, 1, gw.MatchCount())
	assert.Len(t, gw.Events(), 4)

	kovacsID, _, err := gw.PlayerIDByNameAndTeam(ctx, "Kovács Péter", "DVSC")
	require.NoError(t, err)
	ps, _ := gw.PlayerStats(kovacsID, teamID(t, gw, "DVSC"))
	assert.Equal(t, 1, ps.MatchesPlayed, "re-run must not touch the accumulator")
}

func teamID(t *testing.T, gw *memory.Store, name string) int64 {
	t.Helper()
	id, ok, err := gw.TeamIDByName(context.Background(), name)
	require.NoError(t, err)
	require.True(t, ok)
	return id
}

// fakeStandingSource plays rounds 1..played, then reports unplayed.
type fakeStandingSource struct {
	played int
	rows   []adatbank.StandingRow
	calls  []int
}

func (f *fakeStandingSource) Standings(_ context.Context, round int) ([]adatbank.StandingRow, bool, error) {
	f.calls = append(f.calls, round)
	if round > f.played {
		return nil, false, nil
	}
	return f.rows, true, nil
}

func TestStandingStageStopsAtUnplayedRound(t *testing.T) {
	ctx := context.Background()
	gw := memory.NewStore()
	seedLeague(t, gw)

	src := &fakeStandingSource{
		played: 2,
		rows: []adatbank.StandingRow{
			{Position: 1, TeamName: "Paksi FC", MatchesPlayed: 2, Wins: 2, GoalsFor: 5, GoalsAgainst: 1, GoalDiff: 4, Points: 6},
			{Position: 2, TeamName: "DVSC", MatchesPlayed: 2, Wins: 1, Draws: 1, GoalsFor: 3, GoalsAgainst: 2, GoalDiff: 1, Points: 4},
		},
	}

	report, err := NewStandingStage(src, gw, "2025/26", 33, testLog).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, report.RoundsStored)
	assert.Equal(t, 4, report.RowsStored)
	// Stops after probing round 3.
	assert.Equal(t, []int{1, 2, 3}, src.calls)

	st, ok := gw.Standing("2025/26", 2, teamID(t, gw, "Paksi FC"))
	require.True(t, ok)
	assert.Equal(t, 6, st.Points)
	assert.Equal(t, 1, st.Position)
}

func TestStandingStageRerunOverwrites(t *testing.T) {
	ctx := context.Background()
	gw := memory.NewStore()
	seedLeague(t, gw)

	src := &fakeStandingSource{
		played: 1,
		rows:   []adatbank.StandingRow{{Position: 1, TeamName: "DVSC", Points: 3}},
	}
	stage := NewStandingStage(src, gw, "2025/26", 33, testLog)
	_, err := stage.Run(ctx)
	require.NoError(t, err)

	// The site corrected the round's table.
	src.rows = []adatbank.StandingRow{{Position: 1, TeamName: "DVSC", Points: 1}}
	_, err = stage.Run(ctx)
	require.NoError(t, err)

	st, ok := gw.Standing("2025/26", 1, teamID(t, gw, "DVSC"))
	require.True(t, ok)
	assert.Equal(t, 1, st.Points)
	assert.Equal(t, 1, gw.StandingCount())
}

// fakeArticleSource serves articles from memory.
type fakeArticleSource struct {
	links    []string
	articles map[string]*nso.Article
}

func (f *fakeArticleSource) ArticleLinks(context.Context) ([]string, error) {
	return f.links, nil
}

func (f *fakeArticleSource) Article(_ context.Context, url string) (*nso.Article, error) {
	a, ok := f.articles[url]
	if !ok {
		return nil, errors.New("no such article")
	}
	return a, nil
}

// fakeClassifier answers by URL keyword.
type fakeClassifier struct {
	responses map[string]string
}

func (f *fakeClassifier) Generate(_ context.Context, prompt string) string {
	for key, resp := range f.responses {
		if key != "" && strings.Contains(prompt, key) {
			return resp
		}
	}
	return f.responses[""]
}

func TestArticleStageStoresInjuryAndFlagsPlayer(t *testing.T) {
	ctx := context.Background()
	gw := memory.NewStore()
	seedLeague(t, gw)

	published := time.Date(2025, 8, 12, 0, 0, 0, 0, time.UTC)
	src := &fakeArticleSource{
		links: []string{"https://nso.hu/labdarugo-nb-i/serules"},
		articles: map[string]*nso.Article{
			"https://nso.hu/labdarugo-nb-i/serules": {
				URL:         "https://nso.hu/labdarugo-nb-i/serules",
				Title:       "Megsérült Kovács Péter",
				Lead:        "Hetekig nem játszhat.",
				Text:        "A DVSC támadója bokaszalag-szakadást szenvedett.",
				PublishedAt: &published,
			},
		},
	}
	classifier := &fakeClassifier{responses: map[string]string{
		"bokaszalag": `{"is_injured": true, "player_name": "Kovács Péter", "team": "DVSC", "injury_description": "bokaszalag-szakadás", "recovery_time": "6 hét", "comment": ""}`,
	}}

	stage := NewArticleStage(src, classifier, gw, testLog)
	report, err := stage.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Classified)
	assert.Equal(t, 1, report.Injuries)
	assert.Equal(t, 0, report.ManualChecks)

	rec, ok := gw.InjuryRecordByURL("https://nso.hu/labdarugo-nb-i/serules")
	require.True(t, ok)
	assert.False(t, rec.NeedsManualCheck)
	assert.True(t, rec.PlayerID.Valid)
	assert.Equal(t, "bokaszalag-szakadás", rec.InjuryType.String)
	assert.Equal(t, "6 hét", rec.Duration.String)

	p, ok := gw.Player(rec.PlayerID.Int64)
	require.True(t, ok)
	assert.True(t, p.IsInjured)

	// Re-run: the URL is already recorded.
	report, err = stage.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Injuries)
	assert.Equal(t, 1, report.Duplicates)
}

func TestArticleStageUnknownPlayerNeedsManualCheck(t *testing.T) {
	ctx := context.Background()
	gw := memory.NewStore()
	seedLeague(t, gw)

	src := &fakeArticleSource{
		links: []string{"https://nso.hu/labdarugo-nb-i/uj-igazolas-serulese"},
		articles: map[string]*nso.Article{
			"https://nso.hu/labdarugo-nb-i/uj-igazolas-serulese": {
				URL:   "https://nso.hu/labdarugo-nb-i/uj-igazolas-serulese",
				Title: "Megsérült az új igazolás",
				Text:  "Az érkező légiós combizomsérülést szenvedett.",
			},
		},
	}
	classifier := &fakeClassifier{responses: map[string]string{
		"combizom": `{"is_injured": true, "player_name": "John Smith", "team": "DVSC", "injury_description": "combizomsérülés", "recovery_time": "", "comment": ""}`,
	}}

	report, err := NewArticleStage(src, classifier, gw, testLog).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Injuries)
	assert.Equal(t, 1, report.ManualChecks)

	rec, ok := gw.InjuryRecordByURL("https://nso.hu/labdarugo-nb-i/uj-igazolas-serulese")
	require.True(t, ok)
	assert.True(t, rec.NeedsManualCheck)
	assert.False(t, rec.PlayerID.Valid)
}

func TestArticleStageMalformedVerdictNeedsManualCheck(t *testing.T) {
	ctx := context.Background()
	gw := memory.NewStore()
	seedLeague(t, gw)

	src := &fakeArticleSource{
		links: []string{"https://nso.hu/labdarugo-nb-i/zavaros"},
		articles: map[string]*nso.Article{
			"https://nso.hu/labdarugo-nb-i/zavaros": {
				URL:  "https://nso.hu/labdarugo-nb-i/zavaros",
				Text: "Zavaros cikk a hétvégi fordulóról.",
			},
		},
	}
	// The model answers without braces; only the literal scan fires.
	classifier := &fakeClassifier{responses: map[string]string{
		"": `"is_injured": true, sajnos elrontottam a formátumot`,
	}}

	report, err := NewArticleStage(src, classifier, gw, testLog).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Injuries)
	assert.Equal(t, 1, report.ManualChecks)

	rec, ok := gw.InjuryRecordByURL("https://nso.hu/labdarugo-nb-i/zavaros")
	require.True(t, ok)
	assert.True(t, rec.NeedsManualCheck)
}

func TestArticleStageModelDownSkips(t *testing.T) {
	ctx := context.Background()
	gw := memory.NewStore()
	seedLeague(t, gw)

	src := &fakeArticleSource{
		links: []string{"https://nso.hu/labdarugo-nb-i/cikk"},
		articles: map[string]*nso.Article{
			"https://nso.hu/labdarugo-nb-i/cikk": {URL: "https://nso.hu/labdarugo-nb-i/cikk", Text: "Cikk."},
		},
	}
	classifier := &fakeClassifier{responses: map[string]string{}}

	report, err := NewArticleStage(src, classifier, gw, testLog).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Classified)
	assert.Equal(t, 1, report.Skipped)

	_, ok := gw.InjuryRecordByURL("https://nso.hu/labdarugo-nb-i/cikk")
	assert.False(t, ok)
}

func TestRunnerRunsAllStages(t *testing.T) {
	ctx := context.Background()
	gw := memory.NewStore()

	rosters := NewRosterStage(newLeagueSource(), gw, testLog)
	matches := NewMatchStage(newMatchSource(), gw, "2025/26", 33, testLog)
	standings := NewStandingStage(&fakeStandingSource{
		played: 1,
		rows:   []adatbank.StandingRow{{Position: 1, TeamName: "DVSC", Points: 3}},
	}, gw, "2025/26", 33, testLog)
	articles := NewArticleStage(
		&fakeArticleSource{},
		&fakeClassifier{responses: map[string]string{}},
		gw, testLog)

	err := NewRunner(rosters, matches, standings, articles, testLog).Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, gw.TeamCount())
	assert.Equal(t, 1, gw.MatchCount())
	assert.Equal(t, 1, gw.StandingCount())
}
