package pipeline

import (
	"context"
	"net/http"
)

type slotKey struct{}

type errSlot struct {
	err error
}

// Router adapta um http.Handler (ex.: chi) ao fim da cadeia. Endpoints
// registrados com Endpoint devolvem seus erros para a cadeia por aqui.
func Router(h http.Handler) Handler {
	return HandlerFunc(func(w http.ResponseWriter, r *http.Request) error {
		slot := &errSlot{}
		ctx := context.WithValue(r.Context(), slotKey{}, slot)
		h.ServeHTTP(w, r.WithContext(ctx))
		return slot.err
	})
}

// Endpoint transforma um handler de rota que devolve erro em http.HandlerFunc.
// Fora de Router o erro é escrito diretamente com apperr.Write.
func Endpoint(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := h(w, r)
		if err == nil {
			return
		}
		if slot, ok := r.Context().Value(slotKey{}).(*errSlot); ok {
			slot.err = err
			return
		}
		writeError(w, err)
	}
}
