package apperr

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReport_RecognizedError(t *testing.T) {
	status, body := Report(TooManyRequests("Rate limit exceeded"))
	assert.Equal(t, http.StatusTooManyRequests, status)
	assert.Equal(t, "Rate limit exceeded", body.Message)
}

func TestReport_WrappedRecognizedError(t *testing.T) {
	err := errors.WithMessage(BadRequest("User id missing"), "ratelimit gate")
	status, body := Report(err)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "User id missing", body.Message)
}

func TestReport_UnknownErrorIsGeneric500(t *testing.T) {
	status, body := Report(errors.New("open /var/data/users.json: permission denied"))
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, GenericMessage, body.Message)
}

func TestReport_InvalidStatusFallsBackTo500(t *testing.T) {
	status, body := Report(&Error{Message: "odd", StatusCode: 200})
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "odd", body.Message)
}

func TestDefaults(t *testing.T) {
	assert.Equal(t, "Invalid Request", BadRequest("").Message)
	assert.Equal(t, "Unauthorized", Unauthorized("").Message)
	assert.Equal(t, "Not Found", NotFound("").Message)
	assert.Equal(t, http.StatusNotFound, NotFound("").StatusCode)
	assert.True(t, NotFound("").Operational)
	assert.Equal(t, "Service unavailable", Unavailable("").Message)
	assert.Equal(t, http.StatusServiceUnavailable, Unavailable("").StatusCode)
	assert.Equal(t, http.StatusMethodNotAllowed, MethodNotAllowed().StatusCode)
}

func TestInternal_KeepsCauseOutOfBody(t *testing.T) {
	cause := errors.New("disk full")
	err := Internal(cause)

	assert.False(t, IsOperational(err))
	assert.ErrorIs(t, err, cause)

	status, body := Report(err)
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, GenericMessage, body.Message)
}

func TestWrite(t *testing.T) {
	rec := httptest.NewRecorder()
	status, err := Write(rec, Unauthorized(""))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, map[string]string{"message": "Unauthorized"}, body)
}
