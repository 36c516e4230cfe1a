// Package handlers exposes the ledger service over HTTP.
package handlers

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvloznov/ledger-core/internal/api/middleware"
)

// only rejects requests with any other method.
func only(method string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		h(w, r)
	}
}

// NewRouter wires every endpoint and the middleware chain.
func NewRouter(svc LedgerService, defaults Defaults, log zerolog.Logger) http.Handler {
	accounts := NewAccountsHandler(svc, defaults, log)
	registers := NewRegisterHandler(svc, defaults, log)
	templates := NewTemplatesHandler(svc, defaults, log)

	mux := http.NewServeMux()

	mux.HandleFunc("/api/accounts", only(http.MethodGet, accounts.ListAccounts))
	mux.HandleFunc("/api/accounts/toggle", only(http.MethodPost, accounts.Toggle))
	mux.HandleFunc("/api/snapshot", only(http.MethodGet, accounts.Snapshot))

	mux.HandleFunc("/api/register", only(http.MethodGet, registers.GetRegister))
	mux.HandleFunc("/api/register/refresh", only(http.MethodPost, registers.Refresh))
	mux.HandleFunc("/api/register/latest", only(http.MethodGet, registers.Latest))

	mux.HandleFunc("/api/templates/apply", only(http.MethodPost, templates.Apply))
	mux.HandleFunc("/api/templates/check", only(http.MethodGet, templates.Check))

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	return middleware.Chain(mux,
		middleware.RequestID,
		middleware.Recovery(log),
		middleware.Logger(log),
		middleware.CORS,
	)
}
