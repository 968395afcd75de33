package pipeline

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"middleware-users/middleware/apperr"
)

// Boundary converte a cadeia em http.Handler. Todo erro devolvido (ou panic)
// vira uma resposta JSON {"message": ...} e é registrado no sink.
func Boundary(sink Sink, h Handler) http.Handler {
	sink = sinkOrNop(sink)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sw := &statusWriter{ResponseWriter: w}
		err := handleRecover(h, sw, r)
		if err == nil {
			return
		}

		fields := []zap.Field{
			zap.Error(err),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
		}
		if id := RequestIDFrom(r.Context()); id != "" {
			fields = append(fields, zap.String("requestId", id))
		}

		// resposta já iniciada: um segundo status corromperia o corpo
		if sw.statusCode != 0 {
			sink.Error("request failed after response started",
				append(fields, zap.Int("status", sw.statusCode))...)
			return
		}

		status, writeErr := apperr.Write(sw, err)
		fields = append(fields, zap.Int("status", status))
		if apperr.IsOperational(err) {
			sink.Warn("request failed", fields...)
		} else {
			sink.Error("request failed", fields...)
		}
		if writeErr != nil {
			sink.Warn("write error response", zap.Error(writeErr))
		}
	})
}

func handleRecover(h Handler, w http.ResponseWriter, r *http.Request) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			err = errors.Errorf("panic: %s", fmt.Sprint(rec))
		}
	}()
	return h.Handle(w, r)
}
