package apperr

import (
	"errors"
	"net/http"
)

// GenericMessage é a mensagem devolvida para erros não reconhecidos.
const GenericMessage = "Something went wrong"

type Error struct {
	Message     string
	StatusCode  int
	Operational bool

	cause error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// New cria um erro operacional com status e mensagem visíveis ao cliente.
func New(statusCode int, message string) *Error {
	if statusCode == 0 {
		statusCode = http.StatusInternalServerError
	}
	return &Error{Message: message, StatusCode: statusCode, Operational: true}
}

// Wrap anexa uma causa interna. A causa aparece só nos logs, nunca no corpo.
func Wrap(cause error, statusCode int, message string) *Error {
	e := New(statusCode, message)
	e.cause = cause
	return e
}

func BadRequest(message string) *Error {
	if message == "" {
		message = "Invalid Request"
	}
	return New(http.StatusBadRequest, message)
}

func Unauthorized(message string) *Error {
	if message == "" {
		message = "Unauthorized"
	}
	return New(http.StatusUnauthorized, message)
}

func NotFound(message string) *Error {
	if message == "" {
		message = "Not Found"
	}
	return New(http.StatusNotFound, message)
}

func MethodNotAllowed() *Error {
	return New(http.StatusMethodNotAllowed, "Method not allowed")
}

func TooManyRequests(message string) *Error {
	if message == "" {
		message = "Too many requests"
	}
	return New(http.StatusTooManyRequests, message)
}

func Unavailable(message string) *Error {
	if message == "" {
		message = "Service unavailable"
	}
	return New(http.StatusServiceUnavailable, message)
}

// Internal representa uma falha inesperada já conhecida pelo código
// (ex.: I/O do store). Não é operacional.
func Internal(cause error) *Error {
	e := Wrap(cause, http.StatusInternalServerError, GenericMessage)
	e.Operational = false
	return e
}

// As devolve o *Error presente na cadeia de err, se houver.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) && appErr != nil {
		return appErr, true
	}
	return nil, false
}

// IsOperational indica se err é uma falha esperada (status definido).
func IsOperational(err error) bool {
	appErr, ok := As(err)
	return ok && appErr.Operational
}
