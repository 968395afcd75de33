// Package routes monta o roteador chi da aplicação.
package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"

	"middleware-users/middleware/apperr"
	"middleware-users/middleware/pipeline"
	"middleware-users/middleware/ratelimit/infra"
	"middleware-users/users"
)

type StatsSource interface {
	Snapshot() infra.StatsSnapshot
}

type Deps struct {
	Users users.Handlers
	// Stats é opcional; sem ele GET /stats não é registrado.
	Stats StatsSource
}

func New(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.NotFound(pipeline.Endpoint(func(w http.ResponseWriter, r *http.Request) error {
		return apperr.NotFound("")
	}))
	r.MethodNotAllowed(pipeline.Endpoint(func(w http.ResponseWriter, r *http.Request) error {
		return apperr.MethodNotAllowed()
	}))

	r.Get("/health", pipeline.Endpoint(health))
	r.Get("/error", pipeline.Endpoint(fail))
	r.Route("/users", deps.Users.Routes)

	if deps.Stats != nil {
		r.Get("/stats", pipeline.Endpoint(func(w http.ResponseWriter, r *http.Request) error {
			return pipeline.WriteJSON(w, http.StatusOK, deps.Stats.Snapshot())
		}))
	}

	return r
}

func health(w http.ResponseWriter, _ *http.Request) error {
	return pipeline.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// fail existe para exercitar o boundary com um erro não reconhecido.
func fail(http.ResponseWriter, *http.Request) error {
	return errors.New("Something went wrong")
}
