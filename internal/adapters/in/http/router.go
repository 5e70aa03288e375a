package httpin

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	usecase "launchpad/internal/application/usecase"
)

// RouterDeps collects the dependencies injected from main.go.
type RouterDeps struct {
	SessionUC *usecase.SessionUsecase
}

// NewRouter wires the HTTP surface consumed by the presentation layer.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	sh := NewSessionHandler(deps.SessionUC)
	r.Get("/session", sh.GetView)
	r.Post("/session/wallet", sh.SetWallet)
	r.Post("/session/refresh", sh.Refresh)
	r.Post("/session/mint", sh.Mint)

	ws := NewEventsHandler(deps.SessionUC)
	r.Get("/session/events", ws.Serve)

	return r
}
