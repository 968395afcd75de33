package infra

import (
	"sync"
	"time"

	"middleware-users/middleware/ratelimit/domain"
)

const (
	DefaultMaxRequests = 5
	DefaultWindowSize  = 60 * time.Second
)

// FixedWindowStore implementa domain.Admitter com janela fixa por chave.
//
// O tempo é dividido em janelas de tamanho fixo que começam na primeira
// requisição da chave. Dentro da janela passam no máximo maxRequests; ao
// cruzar o limite a janela reinicia com Count=1.
//
// Limitação conhecida: como as janelas não se sobrepõem, uma rajada no fim de
// uma janela seguida de outra no começo da próxima deixa passar até
// 2*maxRequests requisições em um intervalo menor que windowSize.
type FixedWindowStore struct {
	mu           sync.Mutex
	windows      map[domain.Key]*domain.Window
	maxRequests  int
	windowSize   time.Duration
	cleanupEvery time.Duration
}

type FixedWindowOption func(*FixedWindowStore)

// WithWindowCleanupEvery define o intervalo do janitor. <= 0 desliga.
func WithWindowCleanupEvery(d time.Duration) FixedWindowOption {
	return func(s *FixedWindowStore) { s.cleanupEvery = d }
}

func NewFixedWindowStore(maxRequests int, windowSize time.Duration, opts ...FixedWindowOption) *FixedWindowStore {
	if maxRequests <= 0 {
		maxRequests = DefaultMaxRequests
	}
	if windowSize <= 0 {
		windowSize = DefaultWindowSize
	}
	s := &FixedWindowStore{
		windows:      make(map[domain.Key]*domain.Window),
		maxRequests:  maxRequests,
		windowSize:   windowSize,
		cleanupEvery: time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *FixedWindowStore) Limit() int                  { return s.maxRequests }
func (s *FixedWindowStore) Window() time.Duration       { return s.windowSize }
func (s *FixedWindowStore) CleanupEvery() time.Duration { return s.cleanupEvery }

// Admit implementa domain.Admitter.
func (s *FixedWindowStore) Admit(key domain.Key, now time.Time) domain.Decision {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.windows[key]
	if !ok {
		s.windows[key] = &domain.Window{Count: 1, Start: now}
		return domain.Allow(s.maxRequests, s.maxRequests-1)
	}

	if w.Expired(now, s.windowSize) {
		w.Count = 1
		w.Start = now
		return domain.Allow(s.maxRequests, s.maxRequests-1)
	}

	if w.Count >= s.maxRequests {
		return domain.Throttle(s.maxRequests, w.Start.Add(s.windowSize).Sub(now))
	}
	w.Count++
	return domain.Allow(s.maxRequests, s.maxRequests-w.Count)
}

// Snapshot devolve uma cópia da janela da chave.
func (s *FixedWindowStore) Snapshot(key domain.Key) (domain.Window, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.windows[key]
	if !ok {
		return domain.Window{}, false
	}
	return *w, true
}

func (s *FixedWindowStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.windows)
}

// Cleanup remove janelas expiradas em now. Uma janela expirada e uma chave
// ausente levam à mesma próxima decisão ({1, now}).
func (s *FixedWindowStore) Cleanup(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for k, w := range s.windows {
		if w.Expired(now, s.windowSize) {
			delete(s.windows, k)
		}
	}
}

// StartJanitor inicia uma goroutine que remove janelas expiradas periodicamente.
// Pare cancelando o contexto.
func (s *FixedWindowStore) StartJanitor(ctx DoneContext) {
	startJanitor(ctx, s.cleanupEvery, s.Cleanup)
}
