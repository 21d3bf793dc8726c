package server

func (s *Server) initRoutes() {
	s.RegisterRouteFunc("GET "+RouteHealth, ChainMiddleware(s.HealthHandler(), s.APIMiddleware()...))

	s.RegisterRouteFunc("POST "+RouteAuthenticate, ChainMiddleware(s.AuthenticateHandler(), s.APIMiddleware()...))

	// Everything below requires the bearer token issued at authenticate time.
	s.RegisterRouteFunc("POST "+RouteLogout, ChainMiddleware(s.LogoutHandler(), s.APIMiddleware(s.RequireBearer())...))
	s.RegisterRouteFunc("POST "+RouteConsent, ChainMiddleware(s.ConsentHandler(), s.APIMiddleware(s.RequireBearer())...))
	s.RegisterRouteFunc("POST "+RouteOperation, ChainMiddleware(s.OperationHandler(), s.APIMiddleware(s.RequireBearer())...))
	s.RegisterRouteFunc("GET "+RouteSchema, ChainMiddleware(s.SchemaHandler(), s.APIMiddleware(s.RequireBearer())...))
}
