package server

import (
	"bytes"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func newTestServer(t *testing.T, handler http.Handler) *httptest.Server {
	t.Helper()
	listener, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		t.Skipf("skipping test; listen unavailable: %v", err)
	}
	ts := &httptest.Server{
		Listener: listener,
		Config:   &http.Server{Handler: handler},
	}
	ts.Start()
	return ts
}

func createGame(t *testing.T, ts *httptest.Server, hostName string) (string, string) {
	t.Helper()
	resp := doRequest(t, ts, http.MethodPost, "/api/games", map[string]string{
		"name": hostName,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected status %d, got %d", http.StatusCreated, resp.StatusCode)
	}
	body := decodeBody(t, resp)
	return body["code"].(string), body["player_id"].(string)
}

func joinPlayer(t *testing.T, ts *httptest.Server, code, name string) string {
	t.Helper()
	resp := doRequest(t, ts, http.MethodPost, "/api/games/"+code+"/join", map[string]string{
		"name": name,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	body := decodeBody(t, resp)
	return body["player_id"].(string)
}

func fetchSnapshot(t *testing.T, ts *httptest.Server, code string) map[string]any {
	t.Helper()
	resp := doRequest(t, ts, http.MethodGet, "/api/games/"+code, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	return decodeBody(t, resp)
}

func doRequest(t *testing.T, ts *httptest.Server, method, path string, payload any) *http.Response {
	t.Helper()
	var body *bytes.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(data)
	} else {
		body = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, ts.URL+path, body)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return body
}

func dialPlayer(t *testing.T, ts *httptest.Server, code, playerID string) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/games/" + code + "?player_id=" + playerID
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Skipf("skipping test; websocket dial unavailable: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func sendAction(t *testing.T, conn *websocket.Conn, action string, payload any) {
	t.Helper()
	var raw json.RawMessage
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal action payload: %v", err)
		}
		raw = data
	} else {
		raw = json.RawMessage(`{}`)
	}
	msg := map[string]any{"type": action, "payload": raw}
	if err := conn.WriteJSON(msg); err != nil {
		t.Fatalf("write action: %v", err)
	}
}

// waitForEvent reads messages until one of the given type arrives, skipping
// unrelated broadcasts, and returns its payload.
func waitForEvent(t *testing.T, conn *websocket.Conn, eventType string, timeout time.Duration) map[string]any {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for {
		_ = conn.SetReadDeadline(deadline)
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("waiting for %s: %v", eventType, err)
		}
		var msg struct {
			Type    string          `json:"type"`
			Payload json.RawMessage `json:"payload"`
		}
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatalf("decode event: %v", err)
		}
		if msg.Type != eventType {
			continue
		}
		var payload map[string]any
		if len(msg.Payload) > 0 {
			if err := json.Unmarshal(msg.Payload, &payload); err != nil {
				t.Fatalf("decode %s payload: %v", eventType, err)
			}
		}
		return payload
	}
}

func expectNoEvent(t *testing.T, conn *websocket.Conn, eventType string, timeout time.Duration) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for {
		_ = conn.SetReadDeadline(deadline)
		_, data, err := conn.ReadMessage()
		if err != nil {
			netErr, ok := err.(net.Error)
			if !ok || !netErr.Timeout() {
				t.Fatalf("expected timeout, got %v", err)
			}
			return
		}
		var msg struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}
		if msg.Type == eventType {
			t.Fatalf("unexpected %s event", eventType)
		}
	}
}

func ownHand(t *testing.T, payload map[string]any, playerID string) []map[string]any {
	t.Helper()
	hands, ok := payload["hands"].(map[string]any)
	if !ok {
		t.Fatalf("expected hands in payload, got %#v", payload)
	}
	raw, ok := hands[playerID].([]any)
	if !ok {
		t.Fatalf("expected hand for player %s", playerID)
	}
	hand := make([]map[string]any, 0, len(raw))
	for _, entry := range raw {
		card, ok := entry.(map[string]any)
		if !ok {
			t.Fatalf("expected card object, got %#v", entry)
		}
		hand = append(hand, card)
	}
	return hand
}
