package server

import (
	"net/http"
	"sync"
	"time"

	"memematch/internal/config"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

type Server struct {
	store    *Store
	db       *gorm.DB
	hub      *wsHub
	cfg      config.Config
	catalog  Catalog
	validate *validator.Validate
	timersMu sync.Mutex
	timers   map[string]*time.Timer
}

// New wires a server. A nil connection is allowed: sessions then live purely
// in memory and cards come from the built-in fallback deck.
func New(conn *gorm.DB, cfg config.Config) *Server {
	return &Server{
		store:    NewStore(),
		db:       conn,
		hub:      newWSHub(),
		cfg:      cfg,
		catalog:  newCatalog(conn),
		validate: newValidator(),
		timers:   make(map[string]*time.Timer),
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/games", s.handleCreateGame)
	mux.HandleFunc("GET /api/games", s.handleListGames)
	mux.HandleFunc("GET /api/games/", s.handleGameSubroutes)
	mux.HandleFunc("POST /api/games/", s.handleGameSubroutes)
	mux.HandleFunc("GET /ws/games/", s.handleWebsocket)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
