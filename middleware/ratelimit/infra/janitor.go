package infra

import "time"

// DoneContext é o mínimo necessário para aceitar context.Context sem importar context aqui.
type DoneContext interface {
	Done() <-chan struct{}
}

// startJanitor roda sweep a cada every até ctx encerrar.
func startJanitor(ctx DoneContext, every time.Duration, sweep func(now time.Time)) {
	if every <= 0 {
		return
	}

	t := time.NewTicker(every)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-t.C:
				sweep(now)
			}
		}
	}()
}
