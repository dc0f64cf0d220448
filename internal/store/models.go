package store

import (
	"database/sql"
	"time"
)

// Team is a club in the league. Names are unique under case- and
// whitespace-insensitive comparison.
type Team struct {
	TeamID    int64          `json:"team_id" db:"team_id"`
	Name      string         `json:"name" db:"name"`
	Address   sql.NullString `json:"address,omitempty" db:"address"`
	Website   sql.NullString `json:"website,omitempty" db:"website"`
	CreatedAt time.Time      `json:"created_at" db:"created_at"`
}

// Player is a registered player. Player names are not unique across the
// league, so lookups are always scoped by team membership.
type Player struct {
	PlayerID  int64        `json:"player_id" db:"player_id"`
	Name      string       `json:"name" db:"name"`
	BirthDate sql.NullTime `json:"birth_date,omitempty" db:"birth_date"`
	IsInjured bool         `json:"is_injured" db:"is_injured"`
	CreatedAt time.Time    `json:"created_at" db:"created_at"`
}

// Match is one fixture. The natural key for deduplication is
// (home_team_id, away_team_id, date, round).
type Match struct {
	MatchID    int64          `json:"match_id" db:"match_id"`
	Season     string         `json:"season" db:"season"`
	Round      int            `json:"round" db:"round"`
	Date       time.Time      `json:"date" db:"date"`
	HomeTeamID int64          `json:"home_team_id" db:"home_team_id"`
	AwayTeamID int64          `json:"away_team_id" db:"away_team_id"`
	HomeScore  sql.NullInt32  `json:"home_score,omitempty" db:"home_score"`
	AwayScore  sql.NullInt32  `json:"away_score,omitempty" db:"away_score"`
	Stadium    sql.NullString `json:"stadium,omitempty" db:"stadium"`
	Referee    sql.NullString `json:"referee,omitempty" db:"referee"`
}

// EventType classifies a match event.
type EventType string

const (
	EventGoal         EventType = "goal"
	EventOwnGoal      EventType = "own_goal"
	EventYellowCard   EventType = "yellow_card"
	EventRedCard      EventType = "red_card"
	EventSubstitution EventType = "substitution"
)

// MatchEvent is append-only; there is no natural deduplication key.
type MatchEvent struct {
	EventID  int64         `json:"event_id" db:"event_id"`
	MatchID  int64         `json:"match_id" db:"match_id"`
	Type     EventType     `json:"event_type" db:"event_type"`
	Minute   int           `json:"minute" db:"minute"`
	PlayerID sql.NullInt64 `json:"player_id,omitempty" db:"player_id"`
	TeamID   sql.NullInt64 `json:"team_id,omitempty" db:"team_id"`
}

// Standing is a team's table row as of a round; keyed by
// (season, round, team) and fully overwritten on re-ingestion.
type Standing struct {
	Season         string `json:"season" db:"season"`
	Round          int    `json:"round" db:"round"`
	TeamID         int64  `json:"team_id" db:"team_id"`
	Position       int    `json:"position" db:"position"`
	MatchesPlayed  int    `json:"matches_played" db:"matches_played"`
	Wins           int    `json:"wins" db:"wins"`
	Draws          int    `json:"draws" db:"draws"`
	Losses         int    `json:"losses" db:"losses"`
	GoalsFor       int    `json:"goals_for" db:"goals_for"`
	GoalsAgainst   int    `json:"goals_against" db:"goals_against"`
	GoalDifference int    `json:"goal_difference" db:"goal_difference"`
	Points         int    `json:"points" db:"points"`
}

// PlayerStats is an accumulator keyed by (player, team): every apply
// adds to the stored counters. Callers must apply it at most once per
// (player, team, match).
type PlayerStats struct {
	PlayerID      int64 `json:"player_id" db:"player_id"`
	TeamID        int64 `json:"team_id" db:"team_id"`
	MatchesPlayed int   `json:"matches_played" db:"matches_played"`
	Goals         int   `json:"goals" db:"goals"`
	OwnGoals      int   `json:"own_goals" db:"own_goals"`
	YellowCards   int   `json:"yellow_cards" db:"yellow_cards"`
	RedCards      int   `json:"red_cards" db:"red_cards"`
	MinutesPlayed int   `json:"minutes_played" db:"minutes_played"`
}

// InjuryRecord is one classified article. URLs are globally unique;
// a duplicate write is a no-op, not an error.
type InjuryRecord struct {
	ID               int64          `json:"id" db:"id"`
	PlayerID         sql.NullInt64  `json:"player_id,omitempty" db:"player_id"`
	URL              string         `json:"url" db:"url"`
	Title            sql.NullString `json:"title,omitempty" db:"title"`
	PublishedDate    sql.NullTime   `json:"published_date,omitempty" db:"published_date"`
	ScrapedAt        time.Time      `json:"scraped_at" db:"scraped_at"`
	InjuryType       sql.NullString `json:"injury_type,omitempty" db:"injury_type"`
	InjuryStart      sql.NullTime   `json:"injury_start,omitempty" db:"injury_start"`
	Duration         sql.NullString `json:"duration,omitempty" db:"duration"`
	NeedsManualCheck bool           `json:"needs_manual_check" db:"needs_manual_check"`
}
