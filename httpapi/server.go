// Package httpapi exposes the Service Orchestrator's control surface (§6:
// "logical RPCs ListServices, GetHealth, RestartService, GetDependencies,
// GetMetrics, GetService, ForceHealthCheck") and Fog Coordinator job
// submission (§6: "transport is outside scope; implementations MAY expose
// it as an RPC") over plain JSON-over-HTTP, since the spec leaves the
// transport unspecified and nothing in the teacher's or the pack's
// dependency set supplies a lighter-weight RPC framework than the standard
// library already does for a single-binary control plane.
package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/fogcompute/platform/fogcoord"
	"github.com/fogcompute/platform/orchestrator"
	"github.com/fogcompute/platform/placement"
)

// Server adapts an Orchestrator (and, optionally, a Coordinator) onto HTTP
// handlers.
type Server struct {
	orch  *orchestrator.Orchestrator
	coord *fogcoord.Coordinator
	mux   *http.ServeMux
}

// NewServer builds the control-surface HTTP mux. coord may be nil, in which
// case no /submit route is registered.
func NewServer(orch *orchestrator.Orchestrator, coord *fogcoord.Coordinator) *Server {
	s := &Server{orch: orch, coord: coord, mux: http.NewServeMux()}
	s.mux.HandleFunc("/services", s.handleListServices)
	s.mux.HandleFunc("/service", s.handleGetService)
	s.mux.HandleFunc("/health", s.handleGetHealth)
	s.mux.HandleFunc("/dependencies", s.handleGetDependencies)
	s.mux.HandleFunc("/metrics.json", s.handleGetMetrics)
	s.mux.HandleFunc("/restart", s.handleRestart)
	s.mux.HandleFunc("/force-health-check", s.handleForceHealthCheck)
	if coord != nil {
		s.mux.HandleFunc("/submit", s.handleSubmit)
	}
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *Server) handleListServices(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.orch.ListServices())
}

func (s *Server) handleGetService(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	info, err := s.orch.GetService(name)
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (s *Server) handleGetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]orchestrator.CompositeHealth{"health": s.orch.GetHealth()})
}

func (s *Server) handleGetDependencies(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	deps, err := s.orch.GetDependencies(name)
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeJSON(w, http.StatusOK, deps)
}

func (s *Server) handleGetMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.orch.GetMetrics())
}

func (s *Server) handleRestart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, errMethodNotAllowed)
		return
	}
	name := r.URL.Query().Get("name")
	force := r.URL.Query().Get("force") == "true"
	if err := s.orch.RestartService(r.Context(), name, force); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleForceHealthCheck(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	s.orch.ForceHealthCheck(name)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, errMethodNotAllowed)
		return
	}
	var job placement.Job
	if err := json.NewDecoder(r.Body).Decode(&job); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.coord.SubmitTask(job); err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]bool{"queued": true})
}

var errMethodNotAllowed = httpError("method not allowed")

type httpError string

func (e httpError) Error() string { return string(e) }
