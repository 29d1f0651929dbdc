package server

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

const sendBuffer = 32

// wsClient is one player's websocket attachment to a session. Outbound
// messages go through the buffered send channel; a slow reader gets dropped
// rather than stalling anyone else.
type wsClient struct {
	conn     *websocket.Conn
	send     chan []byte
	code     string
	playerID string

	closeOnce sync.Once
}

func (c *wsClient) close() {
	c.closeOnce.Do(func() {
		close(c.send)
		_ = c.conn.Close()
	})
}

type wsHub struct {
	mu     sync.Mutex
	groups map[string]map[*wsClient]struct{}
}

func newWSHub() *wsHub {
	return &wsHub{
		groups: make(map[string]map[*wsClient]struct{}),
	}
}

func (h *wsHub) Add(code string, client *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	group := h.groups[code]
	if group == nil {
		group = make(map[*wsClient]struct{})
		h.groups[code] = group
	}
	group[client] = struct{}{}
}

func (h *wsHub) Remove(code string, client *wsClient) {
	h.mu.Lock()
	group := h.groups[code]
	if group != nil {
		delete(group, client)
		if len(group) == 0 {
			delete(h.groups, code)
		}
	}
	h.mu.Unlock()
	client.close()
}

// Send queues one message for one client. Full buffer means the client is
// too far behind to be useful; it gets disconnected.
func (h *wsHub) Send(client *wsClient, event string, payload any) {
	data, err := json.Marshal(eventMessage{Type: event, Payload: payload})
	if err != nil {
		return
	}
	select {
	case client.send <- data:
	default:
		h.Remove(client.code, client)
	}
}

// Broadcast queues one message for every client attached to a session. It
// never writes to a socket directly, so it returns without blocking no matter
// what the network is doing.
func (h *wsHub) Broadcast(code string, event string, payload any) {
	h.mu.Lock()
	group := h.groups[code]
	clients := make([]*wsClient, 0, len(group))
	for client := range group {
		clients = append(clients, client)
	}
	h.mu.Unlock()

	data, err := json.Marshal(eventMessage{Type: event, Payload: payload})
	if err != nil {
		return
	}
	for _, client := range clients {
		select {
		case client.send <- data:
		default:
			h.Remove(code, client)
		}
	}
}

func (s *Server) broadcast(code string, event string, payload any) {
	if s.hub == nil {
		return
	}
	s.hub.Broadcast(code, event, payload)
}

func (s *Server) sendError(client *wsClient, err error) {
	s.hub.Send(client, eventError, errorPayload{
		Code:    errorCode(err),
		Message: err.Error(),
	})
}

// handleWebsocket attaches a joined player to their session's event stream.
// The player must already be on the roster (via create or join); connecting
// marks them connected and announces the updated roster.
func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	code, ok := parseWebsocketPath(r.URL.Path)
	if !ok {
		http.NotFound(w, r)
		return
	}
	playerID := r.URL.Query().Get("player_id")
	if playerID == "" {
		writeError(w, http.StatusBadRequest, codePrecondition, "player_id is required")
		return
	}

	var roster rosterPayload
	game, err := s.store.UpdateGame(code, func(g *Game) error {
		player, ok := findPlayer(g, playerID)
		if !ok {
			return ErrPlayerNotFound
		}
		player.IsConnected = true
		roster = rosterOf(g, playerID)
		return nil
	})
	if err != nil {
		writeError(w, httpStatus(err), errorCode(err), err.Error())
		return
	}

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	log.Printf("ws connected code=%s player=%s remote=%s", game.Code, playerID, r.RemoteAddr)

	client := &wsClient{
		conn:     conn,
		send:     make(chan []byte, sendBuffer),
		code:     normalizeCode(code),
		playerID: playerID,
	}
	s.hub.Add(client.code, client)
	if err := s.persistConnection(game, playerID, true); err != nil {
		log.Printf("persist connect failed code=%s err=%v", game.Code, err)
	}
	s.broadcast(client.code, eventPlayerJoined, roster)

	go s.writeWS(client)
	go s.readWS(client)
}

func rosterOf(game *Game, playerID string) rosterPayload {
	return rosterPayload{
		PlayerID: playerID,
		Players:  playerInfos(game),
	}
}

func (s *Server) writeWS(client *wsClient) {
	for data := range client.send {
		if err := client.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return
		}
	}
}

func (s *Server) readWS(client *wsClient) {
	defer s.detach(client)
	for {
		_, data, err := client.conn.ReadMessage()
		if err != nil {
			log.Printf("ws disconnected code=%s player=%s error=%v", client.code, client.playerID, err)
			return
		}
		s.dispatch(client, data)
	}
}

// dispatch routes one client action. Action failures go back to the sender as
// an error event; they never touch the rest of the session. Malformed frames
// and unknown actions are client faults, not transient ones: they map to the
// precondition code so clients do not retry them verbatim.
func (s *Server) dispatch(client *wsClient, data []byte) {
	var msg clientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		s.sendError(client, fmt.Errorf("%w: %v", ErrInvalidMessage, err))
		return
	}
	if err := s.validate.Struct(msg); err != nil {
		s.sendError(client, fmt.Errorf("%w: %v", ErrInvalidMessage, err))
		return
	}

	var err error
	switch msg.Type {
	case actionStart:
		err = s.startGame(client.code, client.playerID)
	case actionSubmit:
		var req submitPayload
		if err = s.decodeAction(msg.Payload, &req); err == nil {
			err = s.submitCard(client.code, client.playerID, req)
		}
	case actionVote:
		var req votePayload
		if err = s.decodeAction(msg.Payload, &req); err == nil {
			err = s.castVote(client.code, client.playerID, req)
		}
	}
	if err != nil {
		log.Printf("ws action failed code=%s player=%s action=%s err=%v", client.code, client.playerID, msg.Type, err)
		s.sendError(client, err)
	}
}

func (s *Server) decodeAction(raw json.RawMessage, out any) error {
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	if err := s.validate.Struct(out); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	return nil
}

// detach marks the player disconnected and announces it. The round threshold
// does not change: a player who was connected when the round opened still
// counts toward it.
func (s *Server) detach(client *wsClient) {
	s.hub.Remove(client.code, client)

	var (
		roster    rosterPayload
		abandoned bool
	)
	game, err := s.store.UpdateGame(client.code, func(g *Game) error {
		player, ok := findPlayer(g, client.playerID)
		if !ok {
			return ErrPlayerNotFound
		}
		player.IsConnected = false
		roster = rosterOf(g, client.playerID)
		abandoned = g.Status == statusFinished && connectedCount(g) == 0
		return nil
	})
	if err != nil {
		return
	}
	if err := s.persistConnection(game, client.playerID, false); err != nil {
		log.Printf("persist disconnect failed code=%s err=%v", game.Code, err)
	}
	s.broadcast(client.code, eventPlayerLeft, roster)

	// A finished session with nobody attached has nothing left to serve.
	if abandoned {
		log.Printf("session reaped code=%s", client.code)
		s.removeGame(client.code)
	}
}
