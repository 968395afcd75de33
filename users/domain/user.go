// Package domain define a entidade User e o contrato do repositório.
package domain

import (
	"context"
	"errors"
)

var (
	ErrInvalidUser = errors.New("invalid user data")
	ErrNotFound    = errors.New("user not found")
)

type User struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Validate exige name e email não vazios. Os valores não são normalizados.
func Validate(name, email string) error {
	if name == "" || email == "" {
		return ErrInvalidUser
	}
	return nil
}

// NextID devolve max(ids)+1, ou 1 para coleção vazia.
func NextID(users []User) int {
	next := 1
	for _, u := range users {
		if u.ID >= next {
			next = u.ID + 1
		}
	}
	return next
}

type Repository interface {
	Create(ctx context.Context, name, email string) (User, error)
	Get(ctx context.Context, id int) (User, error)
	List(ctx context.Context) ([]User, error)
}
