package ratelimit

import (
	"net/http"
	"time"

	"middleware-users/middleware/apperr"
	"middleware-users/middleware/pipeline"
	"middleware-users/middleware/ratelimit/application"
	"middleware-users/middleware/ratelimit/domain"
)

const (
	DefaultKeyHeader = "X-User-Id"

	MissingKeyMessage = "User id missing"
	ThrottledMessage  = "Rate limit exceeded"
)

type KeyFunc func(r *http.Request) string

type Options struct {
	Admitter            domain.Admitter
	Stats               domain.StatsStore
	KeyFn               KeyFunc
	KeyHeader           string
	RetryAfter          time.Duration
	AddRateLimitHeaders bool
	Now                 func() time.Time
}

// HeaderKeyFunc usa o valor do header como veio. Header ausente ou vazio
// resulta em chave vazia (identidade ausente).
func HeaderKeyFunc(keyHeader string) KeyFunc {
	if keyHeader == "" {
		keyHeader = DefaultKeyHeader
	}
	return func(r *http.Request) string {
		return r.Header.Get(keyHeader)
	}
}

// Gate é o gate de admissão. Deve ser o primeiro gate de domínio da cadeia.
func Gate(opts Options) pipeline.Middleware {
	if opts.RetryAfter == 0 {
		opts.RetryAfter = 1 * time.Second
	}
	if opts.KeyFn == nil {
		opts.KeyFn = HeaderKeyFunc(opts.KeyHeader)
	}

	if opts.Now == nil {
		opts.Now = time.Now
	}

	svc := application.Service{
		Admitter:   opts.Admitter,
		RetryAfter: opts.RetryAfter,
		Now:        opts.Now,
	}

	return func(next pipeline.Handler) pipeline.Handler {
		return pipeline.HandlerFunc(func(w http.ResponseWriter, r *http.Request) error {
			key := domain.Key(opts.KeyFn(r))

			dec := svc.Decide(key)
			if opts.Stats != nil {
				_ = opts.Stats.Record(r.Context(), domain.StatsEvent{
					Key:     key,
					Allowed: dec.Allowed,
					Reason:  dec.Reason,
					Method:  r.Method,
					Path:    r.URL.Path,
					At:      opts.Now(),
				})
			}

			switch {
			case dec.Reason == domain.ReasonMissingKey:
				return apperr.BadRequest(MissingKeyMessage)
			case !dec.Allowed:
				w.Header().Set("Retry-After", formatSeconds(dec.RetryAfter))
				if opts.AddRateLimitHeaders {
					setRateLimitHeaders(w, dec)
				}
				return apperr.TooManyRequests(ThrottledMessage)
			}

			if opts.AddRateLimitHeaders {
				setRateLimitHeaders(w, dec)
			}
			return next.Handle(w, r)
		})
	}
}

func setRateLimitHeaders(w http.ResponseWriter, dec domain.Decision) {
	if dec.Limit <= 0 {
		return
	}
	remaining := dec.Remaining
	if remaining < 0 {
		remaining = 0
	}
	w.Header().Set("X-RateLimit-Limit", formatInt(dec.Limit))
	w.Header().Set("X-RateLimit-Remaining", formatInt(remaining))
}
