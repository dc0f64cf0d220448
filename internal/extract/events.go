// Package extract derives per-player statistics and a flat event list
// from the raw lineup rows a match page decodes to. It is pure: no
// I/O, no store access.
package extract

import (
	"strings"

	"github.com/patrikb/ligafeed/internal/store"
)

const fullMatchMinutes = 90

// Marker is one event icon next to a player's name: the minute and the
// style token carrying the icon file name.
type Marker struct {
	Minute int
	Style  string
}

// PlayerRow is one player's line from a match page lineup table.
type PlayerRow struct {
	Name    string
	Starter bool
	Markers []Marker
}

// Event is one derived match event, still keyed by free-text player
// name; identity resolution happens later.
type Event struct {
	Minute int
	Player string
	Kind   store.EventType
	// Entered is meaningful only for substitutions: true when this
	// marker represents the player coming on (substitutes), false when
	// it represents them going off (starters).
	Entered bool
}

// PlayerLine is the per-player statistic derived from one match.
type PlayerLine struct {
	Starter       bool
	MinutesPlayed int
	Goals         int
	OwnGoals      int
	YellowCards   int
	RedCards      int
}

// ClassifyStyle maps an icon style token to an event kind. Penalty
// goals count as goals.
func ClassifyStyle(style string) (store.EventType, bool) {
	switch {
	case strings.Contains(style, "event_goal.png"), strings.Contains(style, "event_penalty_goal.png"):
		return store.EventGoal, true
	case strings.Contains(style, "event_own_goal.png"):
		return store.EventOwnGoal, true
	case strings.Contains(style, "event_yellowcard.png"):
		return store.EventYellowCard, true
	case strings.Contains(style, "event_redcard.png"):
		return store.EventRedCard, true
	case strings.Contains(style, "event_swap.png"):
		return store.EventSubstitution, true
	}
	return "", false
}

// Process walks one team's lineup rows and derives per-player lines
// plus the flat event list. Rows without a name are skipped; unknown
// style tokens are ignored.
func Process(rows []PlayerRow) (map[string]PlayerLine, []Event) {
	lines := make(map[string]PlayerLine, len(rows))
	var events []Event

	for _, row := range rows {
		if strings.TrimSpace(row.Name) == "" {
			continue
		}

		line := PlayerLine{
			Starter:       row.Starter,
			MinutesPlayed: minutesPlayed(row),
		}

		for _, m := range row.Markers {
			kind, ok := ClassifyStyle(m.Style)
			if !ok {
				continue
			}

			switch kind {
			case store.EventGoal:
				line.Goals++
			case store.EventOwnGoal:
				line.OwnGoals++
			case store.EventYellowCard:
				line.YellowCards++
			case store.EventRedCard:
				line.RedCards++
			}

			events = append(events, Event{
				Minute:  m.Minute,
				Player:  row.Name,
				Kind:    kind,
				Entered: kind == store.EventSubstitution && !row.Starter,
			})
		}

		lines[row.Name] = line
	}

	return lines, events
}

// minutesPlayed computes how long a player was on the pitch. With no
// substitution marker a starter plays the full match and an unused
// substitute plays nothing. Otherwise the earliest substitution minute
// is the moment a starter went off or a substitute came on.
func minutesPlayed(row PlayerRow) int {
	earliest := -1
	for _, m := range row.Markers {
		if kind, ok := ClassifyStyle(m.Style); !ok || kind != store.EventSubstitution {
			continue
		}
		if earliest < 0 || m.Minute < earliest {
			earliest = m.Minute
		}
	}

	if earliest < 0 {
		if row.Starter {
			return fullMatchMinutes
		}
		return 0
	}

	if row.Starter {
		return earliest
	}
	return fullMatchMinutes - earliest
}
