package domain

// Camada de domínio do rate limit (admission control).
//
// Regras e contratos (interfaces/tipos) sem dependência de net/http.

import "time"

// Key é a identidade do chamador, usada como veio no header (sem normalização).
type Key string

type Reason int

const (
	ReasonAllowed Reason = iota
	// ReasonMissingKey: requisição sem identidade. É erro do cliente (400),
	// não throttling.
	ReasonMissingKey
	ReasonThrottled
)

func (r Reason) String() string {
	switch r {
	case ReasonAllowed:
		return "allowed"
	case ReasonMissingKey:
		return "missing_key"
	case ReasonThrottled:
		return "throttled"
	default:
		return "unknown"
	}
}

// Window é o estado de janela fixa de uma identidade.
//
// Invariante: Count <= limite enquanto now-Start < tamanho da janela.
type Window struct {
	Count int
	Start time.Time
}

// Expired indica se a janela já terminou em now.
func (w Window) Expired(now time.Time, size time.Duration) bool {
	return now.Sub(w.Start) >= size
}

// Admitter decide se uma requisição da identidade key pode seguir em now.
//
// Implementações devem tratar o read-modify-write do estado da chave como
// uma unidade atômica.
type Admitter interface {
	Admit(key Key, now time.Time) Decision
}

type Decision struct {
	Allowed bool
	Reason  Reason

	// Limit e Remaining são informativos (headers X-RateLimit-*).
	Limit     int
	Remaining int

	// RetryAfter é o valor a ser retornado em Retry-After quando bloquear.
	// Se 0, não há recomendação.
	RetryAfter time.Duration
}

func Allow(limit, remaining int) Decision {
	return Decision{Allowed: true, Reason: ReasonAllowed, Limit: limit, Remaining: remaining}
}

func Throttle(limit int, retryAfter time.Duration) Decision {
	return Decision{Allowed: false, Reason: ReasonThrottled, Limit: limit, RetryAfter: retryAfter}
}
