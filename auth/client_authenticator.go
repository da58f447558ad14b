package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/jrsteele09/go-auth-exchange/clients"
	autherrors "github.com/jrsteele09/go-auth-exchange/internal/errors"
)

type ClientAuthenticator struct {
	clients clients.Repo
}

func NewClientAuthenticator(repo clients.Repo) (*ClientAuthenticator, error) {
	if repo == nil {
		return nil, errors.New("[NewClientAuthenticator] Clients repo is required")
	}
	return &ClientAuthenticator{clients: repo}, nil
}

// Verify checks a client id and secret pair.
func (ca *ClientAuthenticator) Verify(ctx context.Context, clientID, secret string) (*clients.Client, error) {
	if clientID == "" {
		return nil, autherrors.ErrClientInvalid
	}
	if secret == "" {
		return nil, autherrors.ErrClientSecretMissing
	}

	client, err := ca.clients.Get(ctx, clientID)
	if errors.Is(err, clients.ErrNotFound) {
		return nil, autherrors.ErrClientInvalid
	}
	if err != nil {
		return nil, fmt.Errorf("[ClientAuthenticator.Verify] %w", err)
	}

	if !client.VerifySecret(secret) {
		return nil, autherrors.ErrClientInvalid
	}
	return client, nil
}
