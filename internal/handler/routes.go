package handler

import (
	"io/fs"
	"net/http"

	"connectrpc.com/connect"
	"github.com/go-chi/chi/v5"

	"github.com/mmynk/khata/internal/auth"
	"github.com/mmynk/khata/internal/ledger"
	"github.com/mmynk/khata/internal/metrics"
	"github.com/mmynk/khata/internal/middleware"
	"github.com/mmynk/khata/internal/service"
	"github.com/mmynk/khata/internal/view"
	"github.com/mmynk/khata/web"
)

// RouterConfig aggregates the dependencies of the HTTP surface.
type RouterConfig struct {
	Ledger   *ledger.Ledger
	Engine   *view.Engine
	Tokens   *auth.FormTokenManager
	Operator auth.Authenticator
	Metrics  *metrics.Metrics
	Stack    middleware.StackConfig
}

// NewRouter builds the complete HTTP handler: ops endpoints, the HTML ledger,
// static assets and the Connect service.
func NewRouter(cfg RouterConfig) (http.Handler, error) {
	static, err := fs.Sub(web.Static, "static")
	if err != nil {
		return nil, err
	}

	h := New(cfg.Ledger, cfg.Engine, cfg.Tokens)
	rpcPath, rpcHandler := service.NewHandler(
		service.NewLedgerService(cfg.Ledger),
		connect.WithInterceptors(middleware.LoggingInterceptor()),
	)

	r := chi.NewRouter()
	r.Use(middleware.Stack(cfg.Stack)...)
	r.Use(cfg.Metrics.Middleware)

	r.Get("/healthz", Healthz)
	r.Handle("/metrics", cfg.Metrics.Handler())
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireOperator(cfg.Operator))

		r.Handle(rpcPath+"*", rpcHandler)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireFormToken(cfg.Tokens))

			r.Get("/", h.Index)
			r.Get("/customers", h.Customers)
			r.Post("/entries", h.Submit)
			r.Get("/entries/{id}/edit", h.Edit)
			r.Post("/entries/{id}/delete", h.Delete)
			r.Post("/customers/{id}/totals/{kind}", h.AnnounceTotal)
		})
	})

	return r, nil
}
