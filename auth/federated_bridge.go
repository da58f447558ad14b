package auth

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/jrsteele09/go-auth-exchange/clients"
	"github.com/jrsteele09/go-auth-exchange/federated"
	autherrors "github.com/jrsteele09/go-auth-exchange/internal/errors"
)

const stateClientIDKey = "client_id"

// IdentityProvider is an external login the bridge can send users to.
type IdentityProvider interface {
	Name() string
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*federated.Identity, error)
}

var _ IdentityProvider = (*federated.Provider)(nil)

// FederatedBridge sends the user agent to an external provider and, on the
// way back, issues an authorization code for the client named in state.
type FederatedBridge struct {
	clients   clients.Repo
	users     *UserAuthenticator
	codes     *CodeIssuer
	writer    CodeWriter
	providers map[string]IdentityProvider
}

func (fb *FederatedBridge) Provider(name string) (IdentityProvider, bool) {
	p, ok := fb.providers[name]
	return p, ok
}

// Begin returns the provider URL to redirect to for clientID.
func (fb *FederatedBridge) Begin(providerName, clientID string) (string, error) {
	p, ok := fb.providers[providerName]
	if !ok {
		return "", fmt.Errorf("[FederatedBridge.Begin] unknown provider %q", providerName)
	}
	if clientID == "" {
		return "", autherrors.ErrClientInvalid
	}
	return p.AuthCodeURL(EncodeState(clientID)), nil
}

// Callback completes the provider round trip and returns the client redirect
// URL carrying the new code.
func (fb *FederatedBridge) Callback(ctx context.Context, providerName, code, state string) (string, error) {
	redirect, err := fb.callback(ctx, providerName, code, state)
	return redirect, sanitize("FederatedBridge.Callback", err)
}

func (fb *FederatedBridge) callback(ctx context.Context, providerName, code, state string) (string, error) {
	p, ok := fb.providers[providerName]
	if !ok {
		return "", fmt.Errorf("unknown provider %q", providerName)
	}

	clientID := DecodeState(state)
	if clientID == "" {
		return "", autherrors.ErrClientInvalid
	}

	client, err := fb.clients.Get(ctx, clientID)
	if errors.Is(err, clients.ErrNotFound) {
		return "", autherrors.ErrClientInvalid
	}
	if err != nil {
		return "", fmt.Errorf("get client: %w", err)
	}
	if client.RedirectURL == "" {
		return "", autherrors.ErrClientInvalid
	}

	identity, err := p.Exchange(ctx, code)
	if err != nil {
		return "", err
	}

	user, err := fb.users.ResolveFederated(ctx, identity)
	if err != nil {
		return "", err
	}

	raw, err := fb.codes.Issue(PayloadForUser(client.ClientID, user), client)
	if err != nil {
		return "", err
	}
	raw, err = fb.writer(ctx, raw)
	if err != nil {
		return "", fmt.Errorf("write code: %w", err)
	}

	return appendCode(client.RedirectURL, raw)
}

// EncodeState carries the target client through the provider as client_id=<id>.
func EncodeState(clientID string) string {
	return stateClientIDKey + "=" + url.QueryEscape(clientID)
}

func DecodeState(state string) string {
	values, err := url.ParseQuery(state)
	if err != nil {
		return ""
	}
	return values.Get(stateClientIDKey)
}

func appendCode(redirectURL, code string) (string, error) {
	u, err := url.Parse(redirectURL)
	if err != nil {
		return "", fmt.Errorf("parse redirect url: %w", err)
	}
	q := u.Query()
	q.Set("code", code)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
