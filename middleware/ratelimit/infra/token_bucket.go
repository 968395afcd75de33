package infra

import (
	"sync"
	"time"

	"middleware-users/middleware/ratelimit/domain"

	"golang.org/x/time/rate"
)

// TokenBucketStore é a alternativa à janela fixa baseada em token-bucket
// (x/time/rate), com cache por chave e limpeza periódica.
//
// Com maxRequests por windowSize o bucket tem burst=maxRequests e reposição
// contínua de maxRequests/windowSize tokens por segundo.
type TokenBucketStore struct {
	mu           sync.Mutex
	entries      map[domain.Key]*bucketEntry
	rps          rate.Limit
	burst        int
	window       time.Duration
	idleTTL      time.Duration
	cleanupEvery time.Duration
}

type bucketEntry struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

type TokenBucketOption func(*TokenBucketStore)

func WithIdleTTL(d time.Duration) TokenBucketOption {
	return func(s *TokenBucketStore) { s.idleTTL = d }
}

func WithCleanupEvery(d time.Duration) TokenBucketOption {
	return func(s *TokenBucketStore) { s.cleanupEvery = d }
}

func NewTokenBucketStore(maxRequests int, window time.Duration, opts ...TokenBucketOption) *TokenBucketStore {
	if maxRequests <= 0 {
		maxRequests = DefaultMaxRequests
	}
	if window <= 0 {
		window = DefaultWindowSize
	}
	s := &TokenBucketStore{
		entries:      make(map[domain.Key]*bucketEntry),
		rps:          rate.Limit(float64(maxRequests) / window.Seconds()),
		burst:        maxRequests,
		window:       window,
		idleTTL:      15 * time.Minute,
		cleanupEvery: 2 * time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *TokenBucketStore) RPS() float64                { return float64(s.rps) }
func (s *TokenBucketStore) Limit() int                  { return s.burst }
func (s *TokenBucketStore) Window() time.Duration       { return s.window }
func (s *TokenBucketStore) CleanupEvery() time.Duration { return s.cleanupEvery }

// Admit implementa domain.Admitter.
func (s *TokenBucketStore) Admit(key domain.Key, now time.Time) domain.Decision {
	lim := s.limiter(key, now)

	if lim.AllowN(now, 1) {
		return domain.Allow(s.burst, int(lim.TokensAt(now)))
	}

	// Reserva só para descobrir o atraso; a reserva é devolvida em seguida.
	r := lim.ReserveN(now, 1)
	delay := r.DelayFrom(now)
	r.CancelAt(now)
	return domain.Throttle(s.burst, delay)
}

func (s *TokenBucketStore) limiter(key domain.Key, now time.Time) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ent, ok := s.entries[key]; ok {
		ent.lastSeen = now
		return ent.lim
	}

	lim := rate.NewLimiter(s.rps, s.burst)
	s.entries[key] = &bucketEntry{lim: lim, lastSeen: now}
	return lim
}

func (s *TokenBucketStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *TokenBucketStore) Cleanup(now time.Time) {
	cutoff := now.Add(-s.idleTTL)

	s.mu.Lock()
	defer s.mu.Unlock()

	for k, ent := range s.entries {
		if ent.lastSeen.Before(cutoff) {
			delete(s.entries, k)
		}
	}
}

// StartJanitor inicia uma goroutine que limpa chaves inativas periodicamente.
// Pare cancelando o contexto.
func (s *TokenBucketStore) StartJanitor(ctx DoneContext) {
	startJanitor(ctx, s.cleanupEvery, s.Cleanup)
}
