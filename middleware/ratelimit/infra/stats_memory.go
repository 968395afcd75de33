package infra

import (
	"context"
	"sync"

	"middleware-users/middleware/ratelimit/domain"
)

type Counters struct {
	Allowed    int64 `json:"allowed"`
	Throttled  int64 `json:"throttled"`
	MissingKey int64 `json:"missingKey"`
}

func (c *Counters) add(reason domain.Reason) {
	switch reason {
	case domain.ReasonAllowed:
		c.Allowed++
	case domain.ReasonThrottled:
		c.Throttled++
	case domain.ReasonMissingKey:
		c.MissingKey++
	}
}

type StatsSnapshot struct {
	Total   Counters            `json:"total"`
	ByRoute map[string]Counters `json:"byRoute"`
	ByKey   map[string]Counters `json:"byKey,omitempty"`
}

// MemoryStatsStore é uma implementação simples em memória.
// Alimenta GET /stats e os testes.
//
// Não faz expiração. Com trackKeys o mapa por chave cresce com o número de identidades.
type MemoryStatsStore struct {
	mu      sync.Mutex
	total   Counters
	byRoute map[string]Counters
	byKey   map[string]Counters

	trackKeys bool
}

type MemoryStatsOption func(*MemoryStatsStore)

func WithTrackKeys(track bool) MemoryStatsOption {
	return func(s *MemoryStatsStore) { s.trackKeys = track }
}

func NewMemoryStatsStore(opts ...MemoryStatsOption) *MemoryStatsStore {
	s := &MemoryStatsStore{
		byRoute: make(map[string]Counters),
		byKey:   make(map[string]Counters),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryStatsStore) Record(_ context.Context, ev domain.StatsEvent) error {
	route := ev.Method + " " + ev.Path

	s.mu.Lock()
	defer s.mu.Unlock()

	s.total.add(ev.Reason)

	c := s.byRoute[route]
	c.add(ev.Reason)
	s.byRoute[route] = c

	// sem chave não há o que agrupar
	if s.trackKeys && ev.Key != "" {
		k := s.byKey[string(ev.Key)]
		k.add(ev.Reason)
		s.byKey[string(ev.Key)] = k
	}
	return nil
}

func (s *MemoryStatsStore) Total() Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

func (s *MemoryStatsStore) Snapshot() StatsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := StatsSnapshot{
		Total:   s.total,
		ByRoute: make(map[string]Counters, len(s.byRoute)),
	}
	for k, v := range s.byRoute {
		out.ByRoute[k] = v
	}
	if s.trackKeys {
		out.ByKey = make(map[string]Counters, len(s.byKey))
		for k, v := range s.byKey {
			out.ByKey[k] = v
		}
	}
	return out
}
