package server

import (
	"log"
	"net/http"

	"memematch/internal/db"

	"github.com/google/uuid"
)

type createRequest struct {
	Name string `json:"name" validate:"required,playername"`
}

type joinRequest struct {
	Name     string `json:"name" validate:"required,playername"`
	PlayerID string `json:"player_id"`
}

func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, codePrecondition, "name is required")
		return
	}
	name, err := validateName(req.Name)
	if err != nil {
		writeError(w, http.StatusBadRequest, codePrecondition, err.Error())
		return
	}

	hostID := uuid.NewString()
	game := s.store.CreateGame(hostID, name, s.cfg)
	if err := s.persistGame(game); err != nil {
		log.Printf("persist game failed code=%s err=%v", game.Code, err)
	}
	var host *Player
	_, _ = s.store.UpdateGame(game.Code, func(g *Game) error {
		host, _ = findPlayer(g, hostID)
		return nil
	})
	if host != nil {
		if err := s.persistPlayer(game, host); err != nil {
			log.Printf("persist host failed code=%s err=%v", game.Code, err)
		}
	}
	log.Printf("game created code=%s host=%s", game.Code, hostID)
	writeJSON(w, http.StatusCreated, map[string]any{
		"code":      game.Code,
		"player_id": hostID,
		"is_host":   true,
	})
}

func (s *Server) handleListGames(w http.ResponseWriter, r *http.Request) {
	summaries := s.store.ListGameSummaries()
	games := make([]map[string]any, 0, len(summaries))
	for _, summary := range summaries {
		games = append(games, map[string]any{
			"code":    summary.Code,
			"status":  summary.Status,
			"players": summary.Players,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"games": games})
}

func (s *Server) handleGameSubroutes(w http.ResponseWriter, r *http.Request) {
	code, action, ok := parseGamePath(r.URL.Path)
	if !ok {
		http.NotFound(w, r)
		return
	}
	if _, err := validateCode(code); err != nil {
		writeError(w, http.StatusBadRequest, codePrecondition, err.Error())
		return
	}

	switch r.Method {
	case http.MethodGet:
		switch action {
		case "":
			s.handleGetGame(w, r, code)
		case "events":
			s.handleEvents(w, r, code)
		default:
			http.NotFound(w, r)
		}
	case http.MethodPost:
		switch action {
		case "join":
			s.handleJoinGame(w, r, code)
		default:
			http.NotFound(w, r)
		}
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request, code string) {
	view, err := s.snapshotOf(code)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleJoinGame(w http.ResponseWriter, r *http.Request, code string) {
	var req joinRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, codePrecondition, "name is required")
		return
	}
	name, err := validateName(req.Name)
	if err != nil {
		writeError(w, http.StatusBadRequest, codePrecondition, err.Error())
		return
	}
	playerID := req.PlayerID
	if playerID == "" {
		playerID = uuid.NewString()
	}

	game, player, err := s.store.AddPlayer(code, playerID, name)
	if err != nil {
		writeFailure(w, err)
		return
	}
	if err := s.persistPlayer(game, player); err != nil {
		log.Printf("persist player failed code=%s err=%v", game.Code, err)
	}
	log.Printf("player joined code=%s player=%s name=%s", game.Code, playerID, name)

	var roster rosterPayload
	_, _ = s.store.UpdateGame(code, func(g *Game) error {
		roster = rosterOf(g, playerID)
		return nil
	})
	writeJSON(w, http.StatusOK, map[string]any{
		"code":      game.Code,
		"player_id": playerID,
		"is_host":   false,
	})
	s.broadcast(normalizeCode(code), eventPlayerJoined, roster)
}

// handleEvents replays the persisted event log for a session, oldest first.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request, code string) {
	if s.db == nil {
		writeError(w, http.StatusServiceUnavailable, codeTransient, "events not available")
		return
	}
	game, ok := s.store.GetGame(code)
	if !ok {
		writeFailure(w, ErrGameNotFound)
		return
	}
	dbID := s.gameDBID(game)
	if dbID == 0 {
		writeError(w, http.StatusInternalServerError, codeTransient, "failed to load game")
		return
	}
	var records []db.Event
	if err := s.db.Where("game_id = ?", dbID).Order("created_at asc").Find(&records).Error; err != nil {
		writeError(w, http.StatusInternalServerError, codeTransient, "failed to load events")
		return
	}
	events := make([]map[string]any, 0, len(records))
	for _, record := range records {
		events = append(events, map[string]any{
			"id":         record.ID,
			"type":       record.Type,
			"round_id":   record.RoundID,
			"created_at": record.CreatedAt,
			"payload":    record.Payload,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"code":   game.Code,
		"events": events,
	})
}
