// Package identity maps free-text team and player names from scraped
// pages and articles to persisted entity identifiers.
package identity

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

// Normalize prepares a name for comparison: trim, collapse internal
// whitespace, uppercase. Every store implementation compares names
// under the same normalization.
func Normalize(name string) string {
	return strings.ToUpper(strings.Join(strings.Fields(name), " "))
}

// Directory is the lookup surface the resolver needs from the store.
// Implementations match names under Normalize semantics and report
// absence as (0, false, nil), never as an error.
type Directory interface {
	TeamIDByName(ctx context.Context, name string) (int64, bool, error)
	PlayerIDByNameAndTeam(ctx context.Context, playerName, teamName string) (int64, bool, error)
}

// Resolver resolves names against a Directory.
type Resolver struct {
	dir Directory
	log *zap.SugaredLogger
}

// NewResolver creates a resolver.
func NewResolver(dir Directory, log *zap.SugaredLogger) *Resolver {
	return &Resolver{dir: dir, log: log}
}

// ResolveTeam finds a team by normalized name. Exact match only; team
// names are stable enough that no fuzzy fallback is warranted.
func (r *Resolver) ResolveTeam(ctx context.Context, name string) (int64, bool, error) {
	return r.dir.TeamIDByName(ctx, Normalize(name))
}

// ResolvePlayer finds a player by normalized name among the members of
// the named team. Scoping by team is mandatory: player names are not
// unique across the league. When the name has exactly two tokens and
// the direct lookup misses, the tokens are retried swapped once —
// sources disagree on family-name-first vs given-name-first order.
func (r *Resolver) ResolvePlayer(ctx context.Context, name, teamName string) (int64, bool, error) {
	playerName := Normalize(name)
	team := Normalize(teamName)

	id, ok, err := r.dir.PlayerIDByNameAndTeam(ctx, playerName, team)
	if err != nil || ok {
		return id, ok, err
	}

	parts := strings.Split(playerName, " ")
	if len(parts) != 2 {
		return 0, false, nil
	}

	reversed := parts[1] + " " + parts[0]
	id, ok, err = r.dir.PlayerIDByNameAndTeam(ctx, reversed, team)
	if err != nil {
		return 0, false, err
	}
	if ok {
		r.log.Debugw("resolved player via reversed name order",
			"name", name, "team", teamName)
	}
	return id, ok, nil
}
