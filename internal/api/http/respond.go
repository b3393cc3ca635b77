package http

import (
	"encoding/json"
	"net/http"
)

const msgEncodeFailed = "No se pudo generar la respuesta"

type errorBody struct {
	Message string `json:"message"`
}

// writeJSON encodes v before touching the status line, so an unencodable
// value turns into a 500 instead of a success status with an empty body.
func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		status = http.StatusInternalServerError
		body, _ = json.Marshal(errorBody{Message: msgEncodeFailed})
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Message: msg})
}
