package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/justinas/alice"
)

// routes wires all endpoints. Authenticated routes go through the
// requireAuth chain; everything passes through request logging.
func (s *Server) routes() http.Handler {
	r := mux.NewRouter()

	api := r.PathPrefix("/api/v1").Subrouter()
	authed := alice.New(s.requireAuth)

	api.HandleFunc("/users/register", s.handleRegister).Methods(http.MethodPost)
	api.HandleFunc("/users/login", s.handleLogin).Methods(http.MethodPost)

	api.Handle("/session", authed.ThenFunc(s.handleSession)).Methods(http.MethodGet)

	api.Handle("/scans", authed.ThenFunc(s.handleSubmitScan)).Methods(http.MethodPost)
	api.Handle("/scans", authed.ThenFunc(s.handleHistory)).Methods(http.MethodGet)
	api.Handle("/scans/{code}", authed.ThenFunc(s.handleContains)).Methods(http.MethodGet)

	api.Handle("/ledger/export", authed.ThenFunc(s.handleExport)).Methods(http.MethodPost)

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)

	chain := alice.New(s.logRequest)
	return chain.Then(r)
}
