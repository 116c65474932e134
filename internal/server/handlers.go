package server

import (
	"encoding/json"
	"net/http"
	"strconv"
)

const defaultReportLimit = 20

// handleState returns the payload of the latest state message.
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	latest := s.hub.Latest()
	if latest == nil {
		http.Error(w, "No state yet", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(latest.Payload)
}

// handleReports returns the latest posted reports of the running save.
func (s *Server) handleReports(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.reports == nil {
		http.Error(w, "Report history disabled", http.StatusNotFound)
		return
	}

	limit := defaultReportLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	reports, err := s.reports.GetReports(s.cfg.Save, limit)
	if err != nil {
		s.logger.Printf("Failed to list reports: %v", err)
		http.Error(w, "Failed to list reports", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(reports)
}
