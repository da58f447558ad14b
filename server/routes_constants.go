package server

// Route path constants
const (
	RouteAuthLogin      = "/auth/login"
	RouteAuthLoginToken = "/auth/login-token"
	RouteAuthToken      = "/auth/token"
	RouteAuthRefresh    = "/auth/token-refresh"

	RouteAuthChangePassword = "/auth/change-password"
	RouteAuthMe             = "/auth/me"

	// Federated login. The provider name is substituted into these.
	RouteFederatedLogin    = "/auth/%s"
	RouteFederatedCallback = "/auth/%s-auth-redirect"

	RouteHealth = "/health"
)
