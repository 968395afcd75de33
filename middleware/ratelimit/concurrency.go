package ratelimit

import (
	"net/http"
	"time"

	"github.com/pkg/errors"

	"middleware-users/middleware/apperr"
	"middleware-users/middleware/pipeline"
	"middleware-users/middleware/ratelimit/application"
	"middleware-users/middleware/ratelimit/infra"
)

type ConcurrencyOptions struct {
	Max            int
	AcquireTimeout time.Duration
}

// ConcurrencyGate limita o número de requisições em voo. Max <= 0 desliga.
func ConcurrencyGate(opts ConcurrencyOptions) pipeline.Middleware {
	if opts.Max <= 0 {
		return func(next pipeline.Handler) pipeline.Handler { return next }
	}

	svc := application.ConcurrencyService{
		Pool:           infra.NewChanPool(opts.Max),
		AcquireTimeout: opts.AcquireTimeout,
	}

	return func(next pipeline.Handler) pipeline.Handler {
		return pipeline.HandlerFunc(func(w http.ResponseWriter, r *http.Request) error {
			release, err := svc.Acquire(r.Context())
			if err != nil {
				return apperr.Wrap(errors.WithMessage(err, "concurrency gate"), http.StatusServiceUnavailable, "Service unavailable")
			}
			defer release()

			return next.Handle(w, r)
		})
	}
}
