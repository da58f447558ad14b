package server

import (
	"fmt"

	"github.com/jrsteele09/go-auth-exchange/federated"
)

func (s *Server) initRoutes() {
	s.RegisterRouteHandler("POST "+RouteAuthLogin, ChainMiddleware(s.LoginHandler(), s.APIMiddleware(s.RequireClientAuth())...))
	s.RegisterRouteHandler("POST "+RouteAuthLoginToken, ChainMiddleware(s.LoginTokenHandler(), s.APIMiddleware(s.RequireClientAuth())...))
	s.RegisterRouteHandler("POST "+RouteAuthToken, ChainMiddleware(s.TokenHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAuthRefresh, ChainMiddleware(s.TokenRefreshHandler(), s.APIMiddleware()...))

	s.RegisterRouteHandler("PATCH "+RouteAuthChangePassword, ChainMiddleware(s.ChangePasswordHandler(), s.APIMiddleware(s.RequireBearer())...))
	s.RegisterRouteHandler("GET "+RouteAuthMe, ChainMiddleware(s.MeHandler(), s.APIMiddleware(s.RequireBearer())...))

	for _, name := range []string{federated.GoogleName, federated.KeycloakName} {
		s.initFederatedRoutes(name)
	}

	s.RegisterRouteHandler("GET "+RouteHealth, ChainMiddleware(s.HealthHandler(), s.RecoverMiddleware))
}

// initFederatedRoutes registers a provider's routes only when it is configured.
// The GET login variant takes the client secret in the query string and is
// only registered behind ENABLE_DEPRECATED_GET_LOGIN.
func (s *Server) initFederatedRoutes(name string) {
	if _, ok := s.auth.Federated.Provider(name); !ok {
		return
	}
	login := fmt.Sprintf(RouteFederatedLogin, name)
	callback := fmt.Sprintf(RouteFederatedCallback, name)

	s.RegisterRouteHandler("POST "+login, ChainMiddleware(s.FederatedLoginHandler(name), s.APIMiddleware(s.RequireClientAuth())...))
	if s.config.GetEnableDeprecatedGetLogin() {
		s.RegisterRouteHandler("GET "+login, ChainMiddleware(s.FederatedLoginHandler(name), s.APIMiddleware(s.RequireQueryClientAuth())...))
	}
	s.RegisterRouteHandler("GET "+callback, ChainMiddleware(s.FederatedCallbackHandler(name), s.APIMiddleware()...))
}
