package domain

import (
	"context"
	"errors"
)

// ErrSaturated indica que nenhuma vaga foi obtida antes do prazo.
var ErrSaturated = errors.New("no request slot available")

// SlotPool representa um recurso com capacidade finita (requisições em voo).
//
// Acquire bloqueia até conseguir uma vaga ou até o ctx encerrar.
// Ao adquirir, retorna uma função de release que deve ser chamada exatamente uma vez.
type SlotPool interface {
	Acquire(ctx context.Context) (release func(), ok bool)
	InUse() int
	Capacity() int
}
