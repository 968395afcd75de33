package application

import (
	"time"

	"middleware-users/middleware/ratelimit/domain"
)

// Service concentra a regra de aplicação do rate limit.
//
// Ele não sabe nada sobre HTTP (headers/status), apenas retorna uma decisão.
type Service struct {
	Admitter   domain.Admitter
	RetryAfter time.Duration
	// Now permite injetar o relógio nos testes. Padrão: time.Now.
	Now func() time.Time
}

func (s Service) Decide(key domain.Key) domain.Decision {
	if key == "" {
		return domain.Decision{Allowed: false, Reason: domain.ReasonMissingKey}
	}
	if s.Admitter == nil {
		return domain.Decision{Allowed: true}
	}
	if s.RetryAfter <= 0 {
		s.RetryAfter = 1 * time.Second
	}
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}

	dec := s.Admitter.Admit(key, now())
	if !dec.Allowed && dec.RetryAfter <= 0 {
		dec.RetryAfter = s.RetryAfter
	}
	return dec
}
