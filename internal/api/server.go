// Package api exposes the engine's runtime state over a small
// read-only HTTP interface.
package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/Tayebwa-ian/DDoS-Detection/internal/mitigate"
	"github.com/Tayebwa-ian/DDoS-Detection/internal/pipeline"
)

// Server serves live flows, the block list and recent detections.
type Server struct {
	orch *pipeline.Orchestrator
	ctrl *mitigate.Controller
	http *http.Server
}

// NewServer creates the status API server. ctrl may be nil when
// mitigation is disabled.
func NewServer(addr string, orch *pipeline.Orchestrator, ctrl *mitigate.Controller) *Server {
	s := &Server{orch: orch, ctrl: ctrl}

	r := mux.NewRouter()
	r.HandleFunc("/api/v1/flows", s.flowsHandler).Methods("GET")
	r.HandleFunc("/api/v1/blocked", s.blockedHandler).Methods("GET")
	r.HandleFunc("/api/v1/detections", s.detectionsHandler).Methods("GET")
	r.HandleFunc("/healthz", s.healthHandler).Methods("GET")

	s.http = &http.Server{
		Addr:    addr,
		Handler: r,
	}
	return s
}

// Start begins serving in a background goroutine.
func (s *Server) Start() {
	go func() {
		log.Printf("API server starting on %s", s.http.Addr)
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v", s.http.Addr, err)
		}
	}()
}

// Stop shuts the server down gracefully.
func (s *Server) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.http.Shutdown(ctx); err != nil {
		log.Printf("API server forced to shutdown: %v", err)
	}
	log.Println("API server exited.")
}

func writeJSON(w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("failed to encode API response: %v", err)
	}
}

func (s *Server) flowsHandler(w http.ResponseWriter, r *http.Request) {
	flows := s.orch.ActiveFlows()
	writeJSON(w, map[string]interface{}{
		"count": len(flows),
		"flows": flows,
	})
}

func (s *Server) blockedHandler(w http.ResponseWriter, r *http.Request) {
	state := "Disabled"
	var blocked []string
	if s.ctrl != nil {
		state = s.ctrl.State().String()
		blocked = s.ctrl.BlockedIPs()
	}
	writeJSON(w, map[string]interface{}{
		"filter_state": state,
		"blocked_ips":  blocked,
	})
}

func (s *Server) detectionsHandler(w http.ResponseWriter, r *http.Request) {
	detections := s.orch.RecentDetections()
	writeJSON(w, map[string]interface{}{
		"count":      len(detections),
		"detections": detections,
	})
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}
