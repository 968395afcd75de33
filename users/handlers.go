// Package users expõe as rotas HTTP de usuários.
package users

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"

	"middleware-users/middleware/apperr"
	"middleware-users/middleware/pipeline"
	"middleware-users/users/application"
)

const maxBodyBytes = 1 << 20

type Handlers struct {
	Service application.Service
}

// Routes registra /users em r.
func (h Handlers) Routes(r chi.Router) {
	r.Post("/", pipeline.Endpoint(h.create))
	r.Get("/", pipeline.Endpoint(h.list))
	r.Get("/{id}", pipeline.Endpoint(h.get))
}

func (h Handlers) create(w http.ResponseWriter, r *http.Request) error {
	var in application.CreateInput
	if err := decodeJSON(r, &in); err != nil {
		return err
	}

	u, err := h.Service.Create(r.Context(), in)
	if err != nil {
		return err
	}
	return pipeline.WriteJSON(w, http.StatusCreated, u)
}

func (h Handlers) list(w http.ResponseWriter, r *http.Request) error {
	users, err := h.Service.List(r.Context())
	if err != nil {
		return err
	}
	return pipeline.WriteJSON(w, http.StatusOK, users)
}

func (h Handlers) get(w http.ResponseWriter, r *http.Request) error {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		return apperr.BadRequest("Invalid user id")
	}

	u, err := h.Service.Get(r.Context(), id)
	if err != nil {
		return err
	}
	return pipeline.WriteJSON(w, http.StatusOK, u)
}

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()

	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.Wrap(err, http.StatusBadRequest, application.InvalidUserMessage)
		}
		return apperr.Wrap(errors.WithMessage(err, "decode body"), http.StatusBadRequest, "Invalid request body")
	}
	return nil
}
