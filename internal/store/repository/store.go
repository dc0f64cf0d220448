package repository

import (
	"context"
	"time"

	"github.com/patrikb/ligafeed/internal/store"
)

// Store bundles the per-aggregate repositories behind the single
// gateway surface the ingest pipelines consume.
type Store struct {
	Teams     *TeamRepository
	Players   *PlayerRepository
	Matches   *MatchRepository
	Standings *StandingRepository
	Stats     *StatsRepository
	Injuries  *InjuryRepository
}

// NewStore creates repositories over one database handle.
func NewStore(db *store.Database) *Store {
	return &Store{
		Teams:     NewTeamRepository(db),
		Players:   NewPlayerRepository(db),
		Matches:   NewMatchRepository(db),
		Standings: NewStandingRepository(db),
		Stats:     NewStatsRepository(db),
		Injuries:  NewInjuryRepository(db),
	}
}

func (s *Store) CreateOrGetTeam(ctx context.Context, name, address, website string) (int64, bool, error) {
	return s.Teams.CreateOrGetTeam(ctx, name, address, website)
}

func (s *Store) TeamIDByName(ctx context.Context, name string) (int64, bool, error) {
	return s.Teams.TeamIDByName(ctx, name)
}

func (s *Store) TeamNames(ctx context.Context) ([]string, error) {
	return s.Teams.TeamNames(ctx)
}

func (s *Store) CreatePlayer(ctx context.Context, name string, birthDate *time.Time) (int64, error) {
	return s.Players.CreatePlayer(ctx, name, birthDate)
}

func (s *Store) PlayerIDByNameAndTeam(ctx context.Context, playerName, teamName string) (int64, bool, error) {
	return s.Players.PlayerIDByNameAndTeam(ctx, playerName, teamName)
}

func (s *Store) LinkPlayerToTeam(ctx context.Context, playerID, teamID int64) (bool, error) {
	return s.Players.LinkPlayerToTeam(ctx, playerID, teamID)
}

func (s *Store) SetPlayerInjured(ctx context.Context, playerID int64, injured bool) error {
	return s.Players.SetPlayerInjured(ctx, playerID, injured)
}

func (s *Store) MatchExists(ctx context.Context, homeTeamID, awayTeamID int64, date time.Time, round int) (bool, error) {
	return s.Matches.MatchExists(ctx, homeTeamID, awayTeamID, date, round)
}

func (s *Store) CreateMatch(ctx context.Context, m store.Match) (int64, error) {
	return s.Matches.CreateMatch(ctx, m)
}

func (s *Store) CreateMatchEvent(ctx context.Context, ev store.MatchEvent) error {
	return s.Matches.CreateMatchEvent(ctx, ev)
}

func (s *Store) UpsertStanding(ctx context.Context, st store.Standing) error {
	return s.Standings.UpsertStanding(ctx, st)
}

func (s *Store) AddPlayerStats(ctx context.Context, ps store.PlayerStats) error {
	return s.Stats.AddPlayerStats(ctx, ps)
}

func (s *Store) CreateInjuryRecord(ctx context.Context, rec store.InjuryRecord) (int64, bool, error) {
	return s.Injuries.CreateInjuryRecord(ctx, rec)
}
