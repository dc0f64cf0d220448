// Package rest exposes the stored league data over a small JSON API.
package rest

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/patrikb/ligafeed/internal/store"
	"github.com/patrikb/ligafeed/internal/store/repository"
)

// Server is the REST API server.
type Server struct {
	server *http.Server
	log    *zap.SugaredLogger
}

// NewServer wires the router. season is the default season for the
// standings endpoint.
func NewServer(port string, db *store.Database, repos *repository.Store, season string, log *zap.SugaredLogger) *Server {
	handler := NewHandler(db, repos, season)

	router := mux.NewRouter()
	router.Use(RecoveryMiddleware(log))
	router.Use(LoggingMiddleware(log))
	router.Use(CORSMiddleware)

	router.HandleFunc("/health", handler.HealthCheck).Methods("GET")

	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/teams", handler.GetTeams).Methods("GET")
	api.HandleFunc("/standings", handler.GetStandings).Methods("GET")
	api.HandleFunc("/players/injured", handler.GetInjuredPlayers).Methods("GET")
	api.HandleFunc("/players/{playerID}/stats", handler.GetPlayerStats).Methods("GET")
	api.HandleFunc("/injuries", handler.GetInjuryRecords).Methods("GET")
	api.HandleFunc("/injuries/{recordID}", handler.UpdateInjuryRecord).Methods("PATCH")

	return &Server{
		log: log,
		server: &http.Server{
			Addr:         fmt.Sprintf(":%s", port),
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
		},
	}
}

// Start starts the server and blocks until it stops.
func (s *Server) Start() error {
	s.log.Infow("api server listening", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
