package pipeline

import "net/http"

type Handler interface {
	Handle(w http.ResponseWriter, r *http.Request) error
}

type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

func (f HandlerFunc) Handle(w http.ResponseWriter, r *http.Request) error {
	return f(w, r)
}

type Middleware func(next Handler) Handler

// Chain monta a cadeia de forma que middlewares[0] roda primeiro.
func Chain(root Handler, middlewares ...Middleware) Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		if middlewares[i] == nil {
			continue
		}
		root = middlewares[i](root)
	}
	return root
}
