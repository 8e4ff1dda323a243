package handlers

import (
	"encoding/json"
	"net/http"
)

// MsgRouteNotFound is the body message for unmatched routes.
const MsgRouteNotFound = "Route not found"

// MsgInternalError is the only detail ever returned for unexpected failures.
const MsgInternalError = "Internal server error"

// envelope is the response shape shared by every endpoint.
type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Count   *int   `json:"count,omitempty"`
	Message string `json:"message,omitempty"`
}

// writeJSON serialises v as JSON and writes it to the response with the
// given HTTP status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a failure envelope of the form
// {"success": false, "message": "..."}.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, envelope{Success: false, Message: message})
}

// RouteNotFound answers requests that match no route, including known
// paths requested with an unsupported method.
func RouteNotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, MsgRouteNotFound)
}
