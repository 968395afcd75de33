package pipeline

import (
	"encoding/json"
	"net/http"

	"middleware-users/middleware/apperr"
)

// WriteJSON escreve v como JSON com o status informado.
func WriteJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	_, _ = apperr.Write(w, err)
}
