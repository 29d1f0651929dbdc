package server

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"memematch/internal/config"

	"github.com/gorilla/websocket"
)

func TestWebsocketAnnouncesRoster(t *testing.T) {
	srv := New(nil, config.Default())
	ts := newTestServer(t, srv.Handler())
	t.Cleanup(ts.Close)

	code, hostID := createGame(t, ts, "Ada")
	hostConn := dialPlayer(t, ts, code, hostID)

	joined := waitForEvent(t, hostConn, "player_joined", 5*time.Second)
	if joined["player_id"] != hostID {
		t.Fatalf("expected host join announcement, got %v", joined)
	}

	benID := joinPlayer(t, ts, code, "Ben")
	joined = waitForEvent(t, hostConn, "player_joined", 5*time.Second)
	if joined["player_id"] != benID {
		t.Fatalf("expected ben join announcement, got %v", joined)
	}
	players := joined["players"].([]any)
	if len(players) != 2 {
		t.Fatalf("expected 2 players on roster, got %d", len(players))
	}
}

func TestWebsocketDisconnectAnnouncesLeave(t *testing.T) {
	srv := New(nil, config.Default())
	ts := newTestServer(t, srv.Handler())
	t.Cleanup(ts.Close)

	code, hostID := createGame(t, ts, "Ada")
	benID := joinPlayer(t, ts, code, "Ben")

	hostConn := dialPlayer(t, ts, code, hostID)
	benConn := dialPlayer(t, ts, code, benID)
	waitForEvent(t, hostConn, "player_joined", 5*time.Second)

	_ = benConn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	_ = benConn.Close()

	left := waitForEvent(t, hostConn, "player_left", 5*time.Second)
	if left["player_id"] != benID {
		t.Fatalf("expected ben leave announcement, got %v", left)
	}
	for _, entry := range left["players"].([]any) {
		player := entry.(map[string]any)
		if player["id"] == benID && player["is_connected"].(bool) {
			t.Fatalf("expected ben marked disconnected, got %v", player)
		}
	}
}

func TestWebsocketRejectsUnknownPlayer(t *testing.T) {
	srv := New(nil, config.Default())
	ts := newTestServer(t, srv.Handler())
	t.Cleanup(ts.Close)

	code, _ := createGame(t, ts, "Ada")
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/games/" + code + "?player_id=strangler"
	if _, resp, err := websocket.DefaultDialer.Dial(wsURL, nil); err == nil {
		t.Fatalf("expected dial rejection for unknown player")
	} else if resp != nil && resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, resp.StatusCode)
	}
}

func TestWebsocketRejectsUnknownAction(t *testing.T) {
	srv := New(nil, config.Default())
	ts := newTestServer(t, srv.Handler())
	t.Cleanup(ts.Close)

	code, hostID := createGame(t, ts, "Ada")
	hostConn := dialPlayer(t, ts, code, hostID)

	// an unknown action is the client's fault, not a server hiccup
	sendAction(t, hostConn, "dance", nil)
	failure := waitForEvent(t, hostConn, "error", 5*time.Second)
	if failure["code"] != codePrecondition {
		t.Fatalf("expected precondition failure, got %v", failure)
	}
}

func TestWebsocketRejectsMalformedFrame(t *testing.T) {
	srv := New(nil, config.Default())
	ts := newTestServer(t, srv.Handler())
	t.Cleanup(ts.Close)

	code, hostID := createGame(t, ts, "Ada")
	hostConn := dialPlayer(t, ts, code, hostID)

	if err := hostConn.WriteMessage(websocket.TextMessage, []byte("{not json")); err != nil {
		t.Fatalf("write: %v", err)
	}
	failure := waitForEvent(t, hostConn, "error", 5*time.Second)
	if failure["code"] != codePrecondition {
		t.Fatalf("expected precondition failure, got %v", failure)
	}
}

func TestJoinWithLowercaseCode(t *testing.T) {
	srv := New(nil, config.Default())
	ts := newTestServer(t, srv.Handler())
	t.Cleanup(ts.Close)

	code, _ := createGame(t, ts, "Ada")
	benID := joinPlayer(t, ts, strings.ToLower(code), "Ben")
	if benID == "" {
		t.Fatalf("expected join via lowercase code")
	}
	view := fetchSnapshot(t, ts, strings.ToLower(code))
	if view["code"] != code {
		t.Fatalf("expected canonical code %s, got %v", code, view["code"])
	}
}

func TestSnapshotUnknownGame(t *testing.T) {
	srv := New(nil, config.Default())
	ts := newTestServer(t, srv.Handler())
	t.Cleanup(ts.Close)

	resp := doRequest(t, ts, http.MethodGet, "/api/games/ZZZZZZ", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, resp.StatusCode)
	}
}
