package server

import (
	"testing"

	"memematch/internal/config"
)

func pendingTimers(srv *Server) int {
	srv.timersMu.Lock()
	defer srv.timersMu.Unlock()
	return len(srv.timers)
}

func TestCancelTimerDropsPendingAdvance(t *testing.T) {
	cfg := config.Default()
	cfg.NextRoundDelaySeconds = 60
	srv := New(nil, cfg)

	srv.scheduleNextRound("ROOMAA", 1)
	if pendingTimers(srv) != 1 {
		t.Fatalf("expected an armed timer, got %d", pendingTimers(srv))
	}

	srv.cancelTimer("ROOMAA")
	if pendingTimers(srv) != 0 {
		t.Fatalf("expected no timers after cancel, got %d", pendingTimers(srv))
	}

	// cancelling an unknown code is a no-op
	srv.cancelTimer("ROOMBB")
}

func TestRemoveGameCancelsPendingAdvance(t *testing.T) {
	cfg := config.Default()
	cfg.NextRoundDelaySeconds = 60
	srv := New(nil, cfg)
	ts := newTestServer(t, srv.Handler())
	t.Cleanup(ts.Close)

	code, _ := createGame(t, ts, "Ada")
	srv.scheduleNextRound(code, 1)

	srv.removeGame(code)
	if pendingTimers(srv) != 0 {
		t.Fatalf("expected timer gone with the session, got %d", pendingTimers(srv))
	}
	if _, ok := srv.store.GetGame(code); ok {
		t.Fatalf("expected session removed")
	}
}
