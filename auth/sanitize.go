package auth

import (
	autherrors "github.com/jrsteele09/go-auth-exchange/internal/errors"
	"github.com/rs/zerolog/log"
)

// sanitize lets classified errors through untouched and turns anything else
// into InvalidCredentials after logging it.
func sanitize(op string, err error) error {
	if err == nil || autherrors.IsClassified(err) {
		return err
	}
	log.Error().Err(err).Str("op", op).Msg("unexpected authentication failure")
	return autherrors.WithCause(autherrors.ErrInvalidCredentials, err)
}
