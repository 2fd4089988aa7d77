package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"sidecoach/internal/pipeline"
	"sidecoach/internal/snapshot"
)

// #region server

// Server receives snapshot JSON posts from the game-state integration and
// feeds them to the pipeline one at a time. The HTTP handler never blocks
// the poster: a snapshot arriving while the loop is busy replaces the
// buffered one, so the loop always picks up the freshest state.
type Server struct {
	addr  string
	pipe  *pipeline.Pipeline
	ticks chan *snapshot.Snapshot
}

// NewServer creates an ingest server for the given pipeline.
func NewServer(addr string, pipe *pipeline.Pipeline) *Server {
	return &Server{
		addr: addr,
		pipe: pipe,
		// Capacity 1: the loop only ever wants the freshest snapshot.
		ticks: make(chan *snapshot.Snapshot, 1),
	}
}

// ListenAndServe runs the HTTP listener and the decision loop until ctx is
// canceled. The decision loop is the sole goroutine touching pipeline
// state.
func (s *Server) ListenAndServe(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/snapshot", s.handleSnapshot)

	srv := &http.Server{Addr: s.addr, Handler: mux}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	log.Printf("[INGEST] listening on %s", s.addr)

	current := ""
	for {
		select {
		case <-ctx.Done():
			if current != "" {
				s.pipe.EndSession()
			}
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)

		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err

		case snap := <-s.ticks:
			current = s.rollSession(current, snap)
			s.pipe.Tick(snap)
		}
	}
}

// rollSession starts and ends sessions as the posted session ID changes.
func (s *Server) rollSession(current string, snap *snapshot.Snapshot) string {
	id := snap.SessionID
	if id == "" {
		id = uuid.New().String()
		snap.SessionID = id
	}
	if id == current {
		return current
	}
	if current != "" {
		s.pipe.EndSession()
	}
	s.pipe.StartSession(id)
	return id
}

// handleSnapshot decodes a posted snapshot and hands it to the loop
// without blocking. Partial payloads are fine; garbage is not.
func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "post only", http.StatusMethodNotAllowed)
		return
	}
	var snap snapshot.Snapshot
	if err := json.NewDecoder(r.Body).Decode(&snap); err != nil {
		http.Error(w, "bad snapshot", http.StatusBadRequest)
		return
	}

	select {
	case s.ticks <- &snap:
	default:
		// Loop is mid-tick; evict the stale buffered snapshot so the
		// freshest state wins, without ever stalling the poster.
		select {
		case <-s.ticks:
		default:
		}
		select {
		case s.ticks <- &snap:
		default:
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

// #endregion server
