package pipeline

import (
	"context"
	"net/http"

	"github.com/pkg/errors"

	"middleware-users/middleware/apperr"
)

// Verifier valida a credencial de fato. Sem Verifier o gate só confere presença.
type Verifier interface {
	Verify(ctx context.Context, credential string) error
}

type AuthOptions struct {
	Header   string
	Verifier Verifier
}

func Auth(opts AuthOptions) Middleware {
	if opts.Header == "" {
		opts.Header = "Authorization"
	}

	return func(next Handler) Handler {
		return HandlerFunc(func(w http.ResponseWriter, r *http.Request) error {
			credential := r.Header.Get(opts.Header)
			if credential == "" {
				return apperr.Unauthorized("")
			}
			if opts.Verifier != nil {
				if err := opts.Verifier.Verify(r.Context(), credential); err != nil {
					if _, ok := apperr.As(err); ok {
						return err
					}
					return apperr.Wrap(errors.WithMessage(err, "auth: verify credential"), http.StatusUnauthorized, "Unauthorized")
				}
			}
			return next.Handle(w, r)
		})
	}
}
