// Package application contém os casos de uso de usuários e a tradução dos
// erros do repositório para a taxonomia de apperr.
package application

import (
	"context"
	"net/http"

	"github.com/pkg/errors"

	"middleware-users/middleware/apperr"
	"middleware-users/users/domain"
)

const (
	InvalidUserMessage = "Invalid user data"
	NotFoundMessage    = "User not found"
)

type CreateInput struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type Service struct {
	Repo domain.Repository
}

func (s Service) Create(ctx context.Context, in CreateInput) (domain.User, error) {
	if err := domain.Validate(in.Name, in.Email); err != nil {
		return domain.User{}, apperr.Wrap(err, http.StatusBadRequest, InvalidUserMessage)
	}

	u, err := s.Repo.Create(ctx, in.Name, in.Email)
	if err != nil {
		return domain.User{}, translate(errors.WithMessage(err, "create user"))
	}
	return u, nil
}

func (s Service) Get(ctx context.Context, id int) (domain.User, error) {
	u, err := s.Repo.Get(ctx, id)
	if err != nil {
		return domain.User{}, translate(errors.WithMessagef(err, "get user %d", id))
	}
	return u, nil
}

func (s Service) List(ctx context.Context) ([]domain.User, error) {
	users, err := s.Repo.List(ctx)
	if err != nil {
		return nil, translate(errors.WithMessage(err, "list users"))
	}
	return users, nil
}

func translate(err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidUser):
		return apperr.Wrap(err, http.StatusBadRequest, InvalidUserMessage)
	case errors.Is(err, domain.ErrNotFound):
		return apperr.Wrap(err, http.StatusNotFound, NotFoundMessage)
	default:
		return apperr.Internal(err)
	}
}
