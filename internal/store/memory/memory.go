// Package memory implements the persistence gateway on in-memory maps
// with the same semantics as the PostgreSQL repositories: normalized
// name comparison, natural-key checks, additive stats merge, URL
// deduplication. It backs the pipeline tests and offline runs.
package memory

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/patrikb/ligafeed/internal/identity"
	"github.com/patrikb/ligafeed/internal/store"
)

// Store is an in-memory persistence gateway.
type Store struct {
	mu sync.Mutex

	nextID    int64
	teams     map[int64]*store.Team
	players   map[int64]*store.Player
	links     map[[2]int64]bool // (team, player)
	matches   map[int64]*store.Match
	events    []store.MatchEvent
	standings map[standingKey]store.Standing
	stats     map[[2]int64]store.PlayerStats // (player, team)
	injuries  map[int64]*store.InjuryRecord
	seenURLs  map[string]int64
}

type standingKey struct {
	season string
	round  int
	teamID int64
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		teams:     make(map[int64]*store.Team),
		players:   make(map[int64]*store.Player),
		links:     make(map[[2]int64]bool),
		matches:   make(map[int64]*store.Match),
		standings: make(map[standingKey]store.Standing),
		stats:     make(map[[2]int64]store.PlayerStats),
		injuries:  make(map[int64]*store.InjuryRecord),
		seenURLs:  make(map[string]int64),
	}
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *Store) CreateOrGetTeam(_ context.Context, name, address, website string) (int64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	norm := identity.Normalize(name)
	for id, t := range s.teams {
		if identity.Normalize(t.Name) == norm {
			return id, false, nil
		}
	}

	id := s.id()
	s.teams[id] = &store.Team{
		TeamID:    id,
		Name:      name,
		Address:   nullString(address),
		Website:   nullString(website),
		CreatedAt: time.Now(),
	}
	return id, true, nil
}

func (s *Store) TeamIDByName(_ context.Context, name string) (int64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	norm := identity.Normalize(name)
	for id, t := range s.teams {
		if identity.Normalize(t.Name) == norm {
			return id, true, nil
		}
	}
	return 0, false, nil
}

func (s *Store) TeamNames(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.teams))
	for _, t := range s.teams {
		names = append(names, t.Name)
	}
	return names, nil
}

// TeamCount reports how many teams are stored.
func (s *Store) TeamCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.teams)
}

func (s *Store) CreatePlayer(_ context.Context, name string, birthDate *time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.id()
	p := &store.Player{PlayerID: id, Name: name, CreatedAt: time.Now()}
	if birthDate != nil {
		p.BirthDate.Time = *birthDate
		p.BirthDate.Valid = true
	}
	s.players[id] = p
	return id, nil
}

func (s *Store) PlayerIDByNameAndTeam(_ context.Context, playerName, teamName string) (int64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	normPlayer := identity.Normalize(playerName)
	normTeam := identity.Normalize(teamName)

	var teamID int64
	found := false
	for id, t := range s.teams {
		if identity.Normalize(t.Name) == normTeam {
			teamID, found = id, true
			break
		}
	}
	if !found {
		return 0, false, nil
	}

	for id, p := range s.players {
		if identity.Normalize(p.Name) == normPlayer && s.links[[2]int64{teamID, id}] {
			return id, true, nil
		}
	}
	return 0, false, nil
}

func (s *Store) LinkPlayerToTeam(_ context.Context, playerID, teamID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := [2]int64{teamID, playerID}
	if s.links[key] {
		return false, nil
	}
	s.links[key] = true
	return true, nil
}

func (s *Store) SetPlayerInjured(_ context.Context, playerID int64, injured bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p, ok := s.players[playerID]; ok {
		p.IsInjured = injured
	}
	return nil
}

// Player returns a stored player by id.
func (s *Store) Player(playerID int64) (*store.Player, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.players[playerID]
	return p, ok
}

func (s *Store) MatchExists(_ context.Context, homeTeamID, awayTeamID int64, date time.Time, round int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, m := range s.matches {
		if m.HomeTeamID == homeTeamID && m.AwayTeamID == awayTeamID &&
			m.Date.Equal(date) && m.Round == round {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) CreateMatch(_ context.Context, m store.Match) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.id()
	m.MatchID = id
	s.matches[id] = &m
	return id, nil
}

// MatchCount reports how many matches are stored.
func (s *Store) MatchCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.matches)
}

func (s *Store) CreateMatchEvent(_ context.Context, ev store.MatchEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ev.EventID = s.id()
	s.events = append(s.events, ev)
	return nil
}

// Events returns a copy of the appended match events.
func (s *Store) Events() []store.MatchEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]store.MatchEvent, len(s.events))
	copy(out, s.events)
	return out
}

func (s *Store) UpsertStanding(_ context.Context, st store.Standing) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.standings[standingKey{st.Season, st.Round, st.TeamID}] = st
	return nil
}

// Standing returns the stored row for (season, round, team).
func (s *Store) Standing(season string, round int, teamID int64) (store.Standing, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.standings[standingKey{season, round, teamID}]
	return st, ok
}

// StandingCount reports how many standing rows are stored.
func (s *Store) StandingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.standings)
}

func (s *Store) AddPlayerStats(_ context.Context, ps store.PlayerStats) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := [2]int64{ps.PlayerID, ps.TeamID}
	cur := s.stats[key]
	cur.PlayerID = ps.PlayerID
	cur.TeamID = ps.TeamID
	cur.MatchesPlayed += ps.MatchesPlayed
	cur.Goals += ps.Goals
	cur.OwnGoals += ps.OwnGoals
	cur.YellowCards += ps.YellowCards
	cur.RedCards += ps.RedCards
	cur.MinutesPlayed += ps.MinutesPlayed
	s.stats[key] = cur
	return nil
}

// PlayerStats returns the accumulated row for (player, team).
func (s *Store) PlayerStats(playerID, teamID int64) (store.PlayerStats, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ps, ok := s.stats[[2]int64{playerID, teamID}]
	return ps, ok
}

func (s *Store) CreateInjuryRecord(_ context.Context, rec store.InjuryRecord) (int64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, dup := s.seenURLs[rec.URL]; dup {
		return 0, false, nil
	}

	id := s.id()
	rec.ID = id
	rec.ScrapedAt = time.Now()
	s.injuries[id] = &rec
	s.seenURLs[rec.URL] = id
	return id, true, nil
}

// InjuryRecordByURL returns the stored record for a URL, if any.
func (s *Store) InjuryRecordByURL(url string) (*store.InjuryRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.seenURLs[url]
	if !ok {
		return nil, false
	}
	return s.injuries[id], true
}

func nullString(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}
