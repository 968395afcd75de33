package apperr

import (
	"encoding/json"
	"net/http"
)

type Body struct {
	Message string `json:"message"`
}

// Report traduz qualquer erro para (status, corpo). Nunca falha.
func Report(err error) (int, Body) {
	if err == nil {
		return http.StatusOK, Body{}
	}

	appErr, ok := As(err)
	if !ok {
		return http.StatusInternalServerError, Body{Message: GenericMessage}
	}

	status := appErr.StatusCode
	if status < 400 || status > 599 {
		status = http.StatusInternalServerError
	}
	msg := appErr.Message
	if msg == "" {
		msg = GenericMessage
	}
	return status, Body{Message: msg}
}

// StatusOf devolve apenas o status que Report usaria para err.
func StatusOf(err error) int {
	status, _ := Report(err)
	return status
}

// Write escreve a resposta JSON de erro. O erro devolvido é apenas de escrita.
func Write(w http.ResponseWriter, err error) (int, error) {
	status, body := Report(err)
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	return status, json.NewEncoder(w).Encode(body)
}
