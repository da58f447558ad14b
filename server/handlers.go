package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/jrsteele09/go-auth-exchange/auth"
	autherrors "github.com/jrsteele09/go-auth-exchange/internal/errors"
	"github.com/jrsteele09/go-auth-exchange/oauthmodel"
	"github.com/rs/zerolog/log"
)

const maxBodyBytes = 1 << 20

// LoginHandler issues an authorization code to a verified client for a local user.
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		client, ok := clientFromContext(r.Context())
		if !ok {
			writeError(w, autherrors.ErrClientInvalid)
			return
		}

		var req oauthmodel.LoginRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeBadRequest(w, err)
			return
		}

		code, err := s.auth.Login(r.Context(), client, req.Username, req.Password)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, oauthmodel.CodeResponse{Code: code})
	}
}

// LoginTokenHandler is the resource-owner password grant.
func (s *Server) LoginTokenHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		client, ok := clientFromContext(r.Context())
		if !ok {
			writeError(w, autherrors.ErrClientInvalid)
			return
		}

		var req oauthmodel.LoginRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeBadRequest(w, err)
			return
		}

		pair, err := s.auth.LoginToken(r.Context(), client, req.Username, req.Password, deviceInfo(r))
		if err != nil {
			writeError(w, err)
			return
		}
		writeTokens(w, pair)
	}
}

func (s *Server) TokenHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req oauthmodel.AuthTokenRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeBadRequest(w, err)
			return
		}

		pair, err := s.auth.Tokens.ExchangeCode(r.Context(), req.ClientID, req.Code, deviceInfo(r))
		if err != nil {
			writeError(w, err)
			return
		}
		writeTokens(w, pair)
	}
}

func (s *Server) TokenRefreshHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req oauthmodel.AuthRefreshTokenRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeBadRequest(w, err)
			return
		}

		pair, err := s.auth.Tokens.Refresh(r.Context(), req.RefreshToken, deviceInfo(r))
		if err != nil {
			writeError(w, err)
			return
		}
		writeTokens(w, pair)
	}
}

func (s *Server) ChangePasswordHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		current, _ := authUserFromContext(r.Context())

		var req oauthmodel.ResetPasswordRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeBadRequest(w, err)
			return
		}

		if err := s.auth.Passwords.Reset(r.Context(), bearerFromContext(r.Context()), req.ToReset(), current); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, oauthmodel.SuccessResponse{Success: true})
	}
}

// MeHandler returns the caller behind the bearer token. Device details stay
// out of the response.
func (s *Server) MeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		current, ok := authUserFromContext(r.Context())
		if !ok {
			writeError(w, autherrors.ErrTokenInvalid)
			return
		}
		me := *current
		me.DeviceInfo = nil
		writeJSON(w, http.StatusOK, me)
	}
}

func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := s.health(r.Context())

		status, code := "ok", http.StatusOK
		for _, v := range checks {
			if v != "up" {
				status, code = "degraded", http.StatusServiceUnavailable
				break
			}
		}
		writeJSON(w, code, map[string]any{"status": status, "checks": checks})
	}
}

func deviceInfo(r *http.Request) auth.DeviceInfo {
	return auth.DeviceInfo{
		DeviceID:  r.Header.Get("device_id"),
		UserAgent: r.UserAgent(),
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("failed to write response")
	}
}

func writeTokens(w http.ResponseWriter, pair *auth.TokenPair) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
	writeJSON(w, http.StatusOK, oauthmodel.NewTokenResponse(pair))
}

// writeJSONError writes an error response
func writeJSONError(w http.ResponseWriter, errorCode, description string, statusCode int) {
	writeJSON(w, statusCode, oauthmodel.ErrorResponse{Error: errorCode, Description: description})
}

// writeError renders a classified error with its status. Anything else is
// logged and answered as InvalidCredentials.
func writeError(w http.ResponseWriter, err error) {
	var e *autherrors.Error
	if !errors.As(err, &e) {
		log.Error().Err(err).Msg("unclassified error reached the transport")
		e = autherrors.ErrInvalidCredentials
	}
	writeJSONError(w, string(e.Kind), e.Message, e.Status)
}

func writeBadRequest(w http.ResponseWriter, err error) {
	log.Debug().Err(err).Msg("bad request")
	writeJSONError(w, "invalid_request", "Malformed request", http.StatusBadRequest)
}
