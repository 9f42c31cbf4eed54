package session

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/psantana5/stopper/internal/report"
	"github.com/psantana5/stopper/internal/shutdown"
	"github.com/psantana5/stopper/pkg/stopwatch"
)

// Snapshot is the body of GET /laps.
type Snapshot struct {
	SessionID string           `json:"session_id"`
	Timer     stopwatch.Record `json:"timer"`
	Rows      []report.Row     `json:"rows"`
	Slow      []report.SlowLap `json:"slow,omitempty"`
}

// RegisterRoutes registers the session API on r.
func (s *Session) RegisterRoutes(r *mux.Router) {
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})).Methods("GET")
	r.HandleFunc("/laps", s.handleLaps).Methods("GET")
	r.HandleFunc("/laps/{name}", s.handleLap).Methods("GET")
	r.HandleFunc("/split", s.handleSplit).Methods("POST")
	r.HandleFunc("/stop", s.handleStop).Methods("POST")
	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}).Methods("GET")
}

// Handler returns a router serving the session API.
func (s *Session) Handler() http.Handler {
	r := mux.NewRouter()
	s.RegisterRoutes(r)
	return r
}

// Listen serves the session API on addr until mgr shuts down and returns
// the bound address.
func (s *Session) Listen(addr string, mgr *shutdown.Manager) (net.Addr, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.WithError(err).Error("Session server failed")
		}
	}()
	mgr.Register("session-http", shutdown.StopHTTPServer(srv))

	s.log.WithField("addr", ln.Addr().String()).Info("Serving session API")
	return ln.Addr(), nil
}

func (s *Session) handleLaps(w http.ResponseWriter, r *http.Request) {
	rec := s.Record()
	writeJSON(w, http.StatusOK, Snapshot{
		SessionID: s.ID,
		Timer:     rec,
		Rows:      report.Rows(rec),
		Slow:      s.Slow(),
	})
}

func (s *Session) handleLap(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	lap, ok := s.Lap(name)
	if !ok {
		http.Error(w, "Lap not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, lap)
}

func (s *Session) handleSplit(w http.ResponseWriter, r *http.Request) {
	lap, err := s.Split(r.URL.Query().Get("name"))
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	writeJSON(w, http.StatusCreated, lap)
}

func (s *Session) handleStop(w http.ResponseWriter, r *http.Request) {
	if err := s.Stop(); err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, s.Record())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, stopwatch.ErrNotStarted), errors.Is(err, stopwatch.ErrAlreadyStopped):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
