// Package ingest drives the scrape pipelines: rosters, matches,
// standings and injury articles. Every stage talks to persistence
// through the Gateway interface and is therefore testable against the
// in-memory store.
package ingest

import (
	"context"
	"time"

	"github.com/patrikb/ligafeed/internal/store"
)

// Gateway is the persistence surface the pipelines write through. The
// PostgreSQL repositories and the in-memory store both implement it.
type Gateway interface {
	CreateOrGetTeam(ctx context.Context, name, address, website string) (int64, bool, error)
	TeamIDByName(ctx context.Context, name string) (int64, bool, error)
	TeamNames(ctx context.Context) ([]string, error)

	CreatePlayer(ctx context.Context, name string, birthDate *time.Time) (int64, error)
	PlayerIDByNameAndTeam(ctx context.Context, playerName, teamName string) (int64, bool, error)
	LinkPlayerToTeam(ctx context.Context, playerID, teamID int64) (bool, error)
	SetPlayerInjured(ctx context.Context, playerID int64, injured bool) error

	MatchExists(ctx context.Context, homeTeamID, awayTeamID int64, date time.Time, round int) (bool, error)
	CreateMatch(ctx context.Context, m store.Match) (int64, error)
	CreateMatchEvent(ctx context.Context, ev store.MatchEvent) error

	UpsertStanding(ctx context.Context, st store.Standing) error
	AddPlayerStats(ctx context.Context, ps store.PlayerStats) error

	CreateInjuryRecord(ctx context.Context, rec store.InjuryRecord) (int64, bool, error)
}
