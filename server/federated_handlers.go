package server

import (
	"net/http"

	autherrors "github.com/jrsteele09/go-auth-exchange/internal/errors"
	"github.com/rs/zerolog/log"
)

// FederatedLoginHandler sends the user agent to the named provider for a
// verified client.
func (s *Server) FederatedLoginHandler(provider string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		client, ok := clientFromContext(r.Context())
		if !ok {
			writeError(w, autherrors.ErrClientInvalid)
			return
		}

		target, err := s.auth.Federated.Begin(provider, client.ClientID)
		if err != nil {
			writeError(w, err)
			return
		}
		http.Redirect(w, r, target, http.StatusFound)
	}
}

// FederatedCallbackHandler completes the provider round trip and redirects to
// the client with a fresh authorization code.
func (s *Server) FederatedCallbackHandler(provider string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if e := q.Get("error"); e != "" {
			log.Warn().Str("provider", provider).Str("provider_error", e).Msg("federated login rejected by provider")
			writeError(w, autherrors.ErrInvalidCredentials)
			return
		}

		target, err := s.auth.Federated.Callback(r.Context(), provider, q.Get("code"), q.Get("state"))
		if err != nil {
			writeError(w, err)
			return
		}
		http.Redirect(w, r, target, http.StatusFound)
	}
}
