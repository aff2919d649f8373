package httptransport

import (
	"encoding/json"
	"net/http"
)

// problemBody is the fixed error shape. It deliberately carries no detail:
// internal error text never leaves the process on this surface.
type problemBody struct {
	Title string `json:"title"`
	Type  string `json:"type"`
	Code  int    `json:"code"`
}

func writeBadRequest(w http.ResponseWriter) {
	writeJSON(w, http.StatusBadRequest, problemBody{Title: "bad_request", Type: "about:blank", Code: http.StatusBadRequest})
}

func writeNotFound(w http.ResponseWriter) {
	writeJSON(w, http.StatusNotFound, problemBody{Title: "not_found", Type: "about:blank", Code: http.StatusNotFound})
}

func writeInternalError(w http.ResponseWriter) {
	writeJSON(w, http.StatusInternalServerError, problemBody{Title: "internal_error", Type: "about:blank", Code: http.StatusInternalServerError})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
