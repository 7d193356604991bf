package ledger

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const tablesPrefix = "/api/tables/"

type HTTPHandler struct {
	ledger Service
	// known reports whether a table id exists; nil accepts every id
	known func(id string) bool
}

type errorResponse struct {
	Error string `json:"error"`
}

func NewHTTPHandler(ledgerService Service, known func(id string) bool) *HTTPHandler {
	return &HTTPHandler{ledger: ledgerService, known: known}
}

func (h *HTTPHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc(tablesPrefix, h.handleTables)
}

// handleTables serves GET /api/tables/{id}/history?limit=n.
func (h *HTTPHandler) handleTables(w http.ResponseWriter, r *http.Request) {
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, tablesPrefix), "/")
	parts := strings.Split(path, "/")
	if len(parts) != 2 || parts[1] != "history" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	gameID := strings.TrimSpace(parts[0])
	if gameID == "" {
		writeError(w, http.StatusBadRequest, "missing table id")
		return
	}
	if h.known != nil && !h.known(gameID) {
		writeError(w, http.StatusNotFound, "table not found")
		return
	}

	limit := parseLimit(r.URL.Query().Get("limit"))
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	events, err := h.ledger.ListEvents(ctx, gameID, limit)
	if err != nil {
		logFailure("list events", gameID, err)
		writeError(w, http.StatusInternalServerError, "query history failed")
		return
	}
	results, err := h.ledger.ListResults(ctx, gameID, limit)
	if err != nil {
		logFailure("list results", gameID, err)
		writeError(w, http.StatusInternalServerError, "query results failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"game_id": gameID,
		"events":  events,
		"results": results,
	})
}

func parseLimit(raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return defaultListLimit
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return defaultListLimit
	}
	return min(n, maxListLimit)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
