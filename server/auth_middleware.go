package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-auth-exchange/auth"
	"github.com/jrsteele09/go-auth-exchange/clients"
	"github.com/jrsteele09/go-auth-exchange/oauthmodel"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// ContextKeyClient stores the verified *clients.Client
	ContextKeyClient ContextKey = "client"
	// ContextKeyAuthUser stores the *auth.AuthUser behind the bearer token
	ContextKeyAuthUser ContextKey = "auth_user"
	// ContextKeyBearer stores the raw bearer token
	ContextKeyBearer ContextKey = "bearer"
)

// RequireClientAuth verifies the client id and secret before the route runs.
// Credentials are taken from HTTP Basic auth, then from a JSON body, then from
// a url-encoded body. Query values are never read. A JSON body is left
// readable for the handler.
func (s *Server) RequireClientAuth() Middleware {
	return s.requireClientAuth(false)
}

// RequireQueryClientAuth also accepts credentials from the query string. It
// only backs the deprecated GET login routes.
func (s *Server) RequireQueryClientAuth() Middleware {
	return s.requireClientAuth(true)
}

func (s *Server) requireClientAuth(allowQuery bool) Middleware {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

			clientID, clientSecret, err := clientCredentials(r, allowQuery)
			if err != nil {
				writeBadRequest(w, err)
				return
			}

			client, err := s.auth.Clients.Verify(r.Context(), clientID, clientSecret)
			if err != nil {
				if clientID == "" || clientSecret == "" {
					w.Header().Set("WWW-Authenticate", `Basic realm="Client Authentication"`)
				}
				writeError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyClient, client)
			next(w, r.WithContext(ctx))
		}
	}
}

// RequireBearer validates the Authorization bearer token and stores the
// caller in the request context.
func (s *Server) RequireBearer() Middleware {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			bearer := bearerToken(r)

			user, err := s.auth.CurrentUser(r.Context(), bearer)
			if err != nil {
				writeError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyBearer, bearer)
			ctx = context.WithValue(ctx, ContextKeyAuthUser, user)
			next(w, r.WithContext(ctx))
		}
	}
}

func clientCredentials(r *http.Request, allowQuery bool) (string, string, error) {
	if id, secret, ok := r.BasicAuth(); ok {
		return id, secret, nil
	}

	if isJSON(r) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			return "", "", fmt.Errorf("read body: %w", err)
		}
		r.Body = io.NopCloser(bytes.NewReader(body))

		var creds oauthmodel.ClientAuthRequest
		if len(bytes.TrimSpace(body)) > 0 {
			if err := json.Unmarshal(body, &creds); err != nil {
				return "", "", fmt.Errorf("decode client credentials: %w", err)
			}
		}
		return creds.ClientID, creds.ClientSecret, nil
	}

	if err := r.ParseForm(); err != nil {
		return "", "", fmt.Errorf("parse form: %w", err)
	}
	if allowQuery {
		return r.Form.Get("client_id"), r.Form.Get("client_secret"), nil
	}
	return r.PostForm.Get("client_id"), r.PostForm.Get("client_secret"), nil
}

func bearerToken(r *http.Request) string {
	scheme, token, found := strings.Cut(r.Header.Get("Authorization"), " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func isJSON(r *http.Request) bool {
	return strings.HasPrefix(strings.ToLower(r.Header.Get("Content-Type")), "application/json")
}

func clientFromContext(ctx context.Context) (*clients.Client, bool) {
	c, ok := ctx.Value(ContextKeyClient).(*clients.Client)
	return c, ok
}

func authUserFromContext(ctx context.Context) (*auth.AuthUser, bool) {
	u, ok := ctx.Value(ContextKeyAuthUser).(*auth.AuthUser)
	return u, ok
}

func bearerFromContext(ctx context.Context) string {
	b, _ := ctx.Value(ContextKeyBearer).(string)
	return b
}
