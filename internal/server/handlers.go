package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "public, max-age=60")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("failed to write response", "error", err)
	}
}

func formatCount(v *int64) string {
	if v == nil {
		return "unknown"
	}
	return strconv.FormatInt(*v, 10)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	g := s.cache.Global()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w,
		"%s cases are reported of the COVID-19 Novel Coronavirus strain<br> %s have died from it <br>\n"+
			"%s have recovered from it <br> Get the endpoint /all to get information for all cases <br> "+
			"get the endpoint /countries for getting the data sorted country wise",
		formatCount(g.Cases), formatCount(g.Deaths), formatCount(g.Recovered),
	)
}

func (s *Server) handleAll(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.cache.Global())
}

func (s *Server) handleCountries(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.cache.Countries())
}

func (s *Server) handleInvite(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, s.cfg.InviteURL, http.StatusFound)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	updatedAt := s.cache.UpdatedAt()

	resp := map[string]any{
		"status": "ok",
	}
	if !updatedAt.IsZero() {
		resp["last_update"] = updatedAt.Format(time.RFC3339)
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	json.NewEncoder(w).Encode(resp)
}
