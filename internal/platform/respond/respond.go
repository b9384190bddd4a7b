package respond

import (
	"encoding/json"
	"net/http"
)

// ErrorBody es el cuerpo estándar de error de la API.
type ErrorBody struct {
	Error string `json:"error"`
}

// JSON escribe v como JSON con el status dado.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func Error(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, ErrorBody{Error: msg})
}
