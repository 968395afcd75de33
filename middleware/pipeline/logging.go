package pipeline

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"middleware-users/middleware/apperr"
)

type statusWriter struct {
	http.ResponseWriter

	statusCode int
}

func (w *statusWriter) WriteHeader(statusCode int) {
	if w.statusCode == 0 {
		w.statusCode = statusCode
	}
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if w.statusCode == 0 {
		w.statusCode = http.StatusOK
	}
	return w.ResponseWriter.Write(b)
}

func (w *statusWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }

// Logging registra cada requisição. É apenas observacional: devolve
// exatamente o erro do próximo handler.
func Logging(sink Sink) Middleware {
	sink = sinkOrNop(sink)

	return func(next Handler) Handler {
		return HandlerFunc(func(w http.ResponseWriter, r *http.Request) error {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w}

			err := next.Handle(sw, r)

			status := sw.statusCode
			switch {
			case status != 0:
			case err != nil:
				status = apperr.StatusOf(err)
			default:
				status = http.StatusOK
			}

			sink.Info(r.Method+" "+r.URL.RequestURI(),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", status),
				zap.Duration("elapsed", time.Since(start)),
				zap.String("requestId", RequestIDFrom(r.Context())),
			)
			return err
		})
	}
}
