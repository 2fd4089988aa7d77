package ingest

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"sidecoach/internal/delivery"
	"sidecoach/internal/pipeline"
	"sidecoach/internal/rules"
	"sidecoach/internal/snapshot"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	catalog, err := rules.Load("")
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	pipe := pipeline.New(catalog, &delivery.CaptureChannel{}, nil, pipeline.DefaultConfig())
	return NewServer("127.0.0.1:0", pipe)
}

func TestSnapshotPostAccepted(t *testing.T) {
	s := testServer(t)

	body := `{"session_id":"s1","elapsed_seconds":42}`
	req := httptest.NewRequest(http.MethodPost, "/snapshot", strings.NewReader(body))
	w := httptest.NewRecorder()
	s.handleSnapshot(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	select {
	case snap := <-s.ticks:
		if snap.SessionID != "s1" || snap.Elapsed != 42 {
			t.Fatalf("decoded snapshot mismatch: %+v", snap)
		}
	default:
		t.Fatal("snapshot never reached the loop channel")
	}
}

func TestSnapshotRejectsNonPost(t *testing.T) {
	s := testServer(t)

	req := httptest.NewRequest(http.MethodGet, "/snapshot", nil)
	w := httptest.NewRecorder()
	s.handleSnapshot(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", w.Code)
	}
}

func TestSnapshotRejectsGarbage(t *testing.T) {
	s := testServer(t)

	req := httptest.NewRequest(http.MethodPost, "/snapshot", strings.NewReader("{not json"))
	w := httptest.NewRecorder()
	s.handleSnapshot(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	select {
	case <-s.ticks:
		t.Fatal("garbage must not reach the loop")
	default:
	}
}

func TestBusyLoopKeepsFreshestSnapshot(t *testing.T) {
	s := testServer(t)

	post := func(elapsed int) int {
		req := httptest.NewRequest(http.MethodPost, "/snapshot",
			strings.NewReader(fmt.Sprintf(`{"session_id":"s1","elapsed_seconds":%d}`, elapsed)))
		w := httptest.NewRecorder()
		s.handleSnapshot(w, req)
		return w.Code
	}

	if post(1) != http.StatusNoContent {
		t.Fatal("first post should land")
	}
	// Channel full: the handler must still answer 204, evicting the stale
	// snapshot so the newer one wins.
	if post(2) != http.StatusNoContent {
		t.Fatal("replacement must not surface as an error to the poster")
	}
	if len(s.ticks) != 1 {
		t.Fatalf("expected exactly 1 buffered snapshot, got %d", len(s.ticks))
	}
	if snap := <-s.ticks; snap.Elapsed != 2 {
		t.Fatalf("expected the freshest snapshot buffered, got elapsed %.0f", snap.Elapsed)
	}
}

func postSnap(id string) *snapshot.Snapshot {
	return &snapshot.Snapshot{SessionID: id, Elapsed: 1}
}

func TestRollSessionTransitions(t *testing.T) {
	s := testServer(t)

	if got := s.rollSession("", postSnap("s1")); got != "s1" {
		t.Fatalf("expected session s1, got %q", got)
	}
	// Same ID: no transition.
	if got := s.rollSession("s1", postSnap("s1")); got != "s1" {
		t.Fatal("same session should not roll")
	}
	// New ID: the old session ends and the new one starts.
	if got := s.rollSession("s1", postSnap("s2")); got != "s2" {
		t.Fatal("new session id should roll")
	}
}

func TestRollSessionAssignsMissingID(t *testing.T) {
	s := testServer(t)

	snap := postSnap("")
	got := s.rollSession("", snap)
	if got == "" {
		t.Fatal("expected a generated session id")
	}
	if snap.SessionID != got {
		t.Fatal("generated id should be written back onto the snapshot")
	}
}
