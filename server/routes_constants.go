package server

const (
	RouteAuthenticate = "/v1/authenticate"
	RouteLogout       = "/v1/logout"
	RouteConsent      = "/v1/consent"
	RouteOperation    = "/v1/operations/{operation}"
	RouteSchema       = "/v1/schema"
	RouteHealth       = "/v1/health"
)
