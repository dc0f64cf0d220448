package rest

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/patrikb/ligafeed/internal/store"
	"github.com/patrikb/ligafeed/internal/store/repository"
)

// Handler contains dependencies for the HTTP handlers.
type Handler struct {
	db            *store.Database
	repos         *repository.Store
	defaultSeason string
}

// NewHandler creates a handler.
func NewHandler(db *store.Database, repos *repository.Store, defaultSeason string) *Handler {
	return &Handler{db: db, repos: repos, defaultSeason: defaultSeason}
}

// HealthCheck reports service and database health.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if err := h.db.HealthCheck(r.Context()); err != nil {
		respondError(w, http.StatusServiceUnavailable, "Database unreachable", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "ligafeed",
	})
}

// GetTeams returns all teams.
func (h *Handler) GetTeams(w http.ResponseWriter, r *http.Request) {
	teams, err := h.repos.Teams.Teams(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch teams", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"teams": teams, "count": len(teams)})
}

// GetStandings returns the table for one round. The season defaults
// to the configured one; the round is required.
func (h *Handler) GetStandings(w http.ResponseWriter, r *http.Request) {
	season := r.URL.Query().Get("season")
	if season == "" {
		season = h.defaultSeason
	}

	round, err := strconv.Atoi(r.URL.Query().Get("round"))
	if err != nil || round < 1 {
		respondError(w, http.StatusBadRequest, "Missing or invalid 'round' parameter", err)
		return
	}

	standings, err := h.repos.Standings.Standings(r.Context(), season, round)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch standings", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"season":    season,
		"round":     round,
		"standings": standings,
	})
}

// GetInjuredPlayers returns the players currently flagged injured.
func (h *Handler) GetInjuredPlayers(w http.ResponseWriter, r *http.Request) {
	players, err := h.repos.Players.InjuredPlayers(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch injured players", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"players": players, "count": len(players)})
}

// GetPlayerStats returns a player's accumulated statistics for one
// team.
func (h *Handler) GetPlayerStats(w http.ResponseWriter, r *http.Request) {
	playerID, err := strconv.ParseInt(mux.Vars(r)["playerID"], 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid player ID", err)
		return
	}

	teamID, err := strconv.ParseInt(r.URL.Query().Get("team_id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Missing or invalid 'team_id' parameter", err)
		return
	}

	stats, ok, err := h.repos.Stats.PlayerStats(r.Context(), playerID, teamID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch player stats", err)
		return
	}
	if !ok {
		respondError(w, http.StatusNotFound, "No statistics for this player and team", nil)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

// GetInjuryRecords returns every stored injury record, newest first.
func (h *Handler) GetInjuryRecords(w http.ResponseWriter, r *http.Request) {
	records, err := h.repos.Injuries.Records(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch injury records", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"records": records, "count": len(records)})
}

// injuryPatch is the PATCH body for the manual review workflow.
// Absent fields are left untouched.
type injuryPatch struct {
	PlayerID         *int64  `json:"player_id"`
	Title            *string `json:"title"`
	InjuryType       *string `json:"injury_type"`
	Duration         *string `json:"duration"`
	NeedsManualCheck *bool   `json:"needs_manual_check"`
}

// UpdateInjuryRecord applies a partial update to one record. Manual
// review resolves the player and clears the needs_manual_check flag
// through this endpoint.
func (h *Handler) UpdateInjuryRecord(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["recordID"], 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid record ID", err)
		return
	}

	var patch injuryPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	ok, err := h.repos.Injuries.UpdateInjuryRecord(r.Context(), id, repository.InjuryRecordUpdate{
		PlayerID:         patch.PlayerID,
		Title:            patch.Title,
		InjuryType:       patch.InjuryType,
		Duration:         patch.Duration,
		NeedsManualCheck: patch.NeedsManualCheck,
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to update injury record", err)
		return
	}
	if !ok {
		respondError(w, http.StatusNotFound, "Injury record not found", nil)
		return
	}

	if patch.PlayerID != nil {
		if err := h.repos.Players.SetPlayerInjured(r.Context(), *patch.PlayerID, true); err != nil {
			respondError(w, http.StatusInternalServerError, "Failed to flag player injured", err)
			return
		}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"updated": true, "id": id})
}

// respondJSON writes a JSON response.
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError writes an error response.
func respondError(w http.ResponseWriter, status int, message string, err error) {
	response := map[string]interface{}{
		"error":  message,
		"status": status,
	}
	if err != nil {
		response["details"] = err.Error()
	}
	respondJSON(w, status, response)
}
