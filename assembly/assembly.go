// Package assembly monta a cadeia completa da aplicação a partir das opções
// já carregadas pelo binário.
package assembly

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"middleware-users/middleware/pipeline"
	"middleware-users/middleware/ratelimit"
	"middleware-users/middleware/ratelimit/domain"
	"middleware-users/middleware/ratelimit/infra"
	"middleware-users/routes"
	"middleware-users/users"
	"middleware-users/users/application"
	usersinfra "middleware-users/users/infra"
)

const (
	AlgorithmFixed = "fixed"
	AlgorithmToken = "token"
)

type RateOptions struct {
	Enabled      bool
	Algorithm    string
	Window       time.Duration
	MaxRequests  int
	KeyHeader    string
	CleanupEvery time.Duration
	RetryAfter   time.Duration
	AddHeaders   bool
}

type Options struct {
	Logger *zap.Logger

	Rate RateOptions
	// Stats recebe os eventos do gate de admissão (opcional).
	Stats domain.StatsStore
	// StatsSource expõe GET /stats (opcional).
	StatsSource routes.StatsSource

	AuthHeader string
	UsersFile  string

	ConcurrencyMax     int
	ConcurrencyTimeout time.Duration

	// Now substitui o relógio do rate limit (testes).
	Now func() time.Time
}

type janitor interface {
	StartJanitor(ctx infra.DoneContext)
}

type Assembly struct {
	handler  http.Handler
	admitter domain.Admitter
	store    *usersinfra.FileStore
}

func New(opts Options) (*Assembly, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if strings.TrimSpace(opts.UsersFile) == "" {
		return nil, errors.New("users file is required")
	}

	a := &Assembly{store: usersinfra.NewFileStore(opts.UsersFile)}

	var rateGate pipeline.Middleware
	if opts.Rate.Enabled {
		admitter, err := newAdmitter(opts.Rate)
		if err != nil {
			return nil, err
		}
		a.admitter = admitter
		rateGate = ratelimit.Gate(ratelimit.Options{
			Admitter:            admitter,
			Stats:               opts.Stats,
			KeyHeader:           opts.Rate.KeyHeader,
			RetryAfter:          opts.Rate.RetryAfter,
			AddRateLimitHeaders: opts.Rate.AddHeaders,
			Now:                 opts.Now,
		})
	}

	router := routes.New(routes.Deps{
		Users: users.Handlers{Service: application.Service{Repo: a.store}},
		Stats: opts.StatsSource,
	})

	chain := pipeline.Chain(pipeline.Router(router),
		pipeline.RequestID(),
		rateGate,
		ratelimit.ConcurrencyGate(ratelimit.ConcurrencyOptions{
			Max:            opts.ConcurrencyMax,
			AcquireTimeout: opts.ConcurrencyTimeout,
		}),
		pipeline.Logging(logger),
		pipeline.Auth(pipeline.AuthOptions{Header: opts.AuthHeader}),
	)
	a.handler = pipeline.Boundary(logger, chain)
	return a, nil
}

func newAdmitter(opts RateOptions) (domain.Admitter, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Algorithm)) {
	case "", AlgorithmFixed:
		return infra.NewFixedWindowStore(opts.MaxRequests, opts.Window,
			infra.WithWindowCleanupEvery(opts.CleanupEvery),
		), nil
	case AlgorithmToken:
		return infra.NewTokenBucketStore(opts.MaxRequests, opts.Window,
			infra.WithCleanupEvery(opts.CleanupEvery),
		), nil
	default:
		return nil, errors.Errorf("unknown rate algorithm %q", opts.Algorithm)
	}
}

func (a *Assembly) Handler() http.Handler { return a.handler }

func (a *Assembly) UsersFile() string { return a.store.Path() }

// Start inicia as rotinas de fundo (limpeza do rate limit) até ctx encerrar.
func (a *Assembly) Start(ctx context.Context) {
	if j, ok := a.admitter.(janitor); ok {
		j.StartJanitor(ctx)
	}
}
