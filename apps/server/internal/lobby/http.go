package lobby

import (
	"encoding/json"
	"errors"
	"net/http"
)

// RegisterRoutes serves GET /api/tables (list) and POST /api/tables (create).
func (l *Lobby) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/tables", l.handleTables)
}

func (l *Lobby) handleTables(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]any{"tables": l.ListTables()})
	case http.MethodPost:
		t, err := l.CreateTable()
		if errors.Is(err, ErrTooManyTables) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
			return
		}
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "create table failed"})
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"id": t.ID})
	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
