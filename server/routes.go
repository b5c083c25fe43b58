package server

import "net/http"

func (s *Server) initRoutes() {
	api := s.APIMiddleware()
	protected := s.APIMiddleware(s.RequireAuth)

	s.RegisterRouteFunc("GET /health", ChainMiddleware(s.handleHealth, api...))

	// Preflight requests never carry a bearer token, so they resolve
	// through the CORS middleware alone.
	s.RegisterRouteFunc("OPTIONS /api/v1/", ChainMiddleware(s.handlePreflight, api...))

	// Auth
	s.RegisterRouteFunc("POST /api/v1/auth/login", ChainMiddleware(s.handleLogin, api...))
	s.RegisterRouteFunc("POST /api/v1/auth/register", ChainMiddleware(s.handleRegister, api...))
	s.RegisterRouteFunc("POST /api/v1/auth/refresh", ChainMiddleware(s.handleRefresh, api...))
	s.RegisterRouteFunc("POST /api/v1/auth/logout", ChainMiddleware(s.handleLogout, protected...))
	s.RegisterRouteFunc("GET /api/v1/auth/me", ChainMiddleware(s.handleMe, protected...))

	// Users
	s.RegisterRouteFunc("GET /api/v1/users", ChainMiddleware(s.handleListUsers, protected...))
	s.RegisterRouteFunc("GET /api/v1/users/me", ChainMiddleware(s.handleMe, protected...))
	s.RegisterRouteFunc("PUT /api/v1/users/me", ChainMiddleware(s.handleUpdateProfile, protected...))
	s.RegisterRouteFunc("GET /api/v1/users/{id}", ChainMiddleware(s.handleGetUser, protected...))
	s.RegisterRouteFunc("DELETE /api/v1/users/{id}", ChainMiddleware(s.handleDeleteUser, protected...))

	// Deals
	s.RegisterRouteFunc("GET /api/v1/deals", ChainMiddleware(s.handleListDeals, protected...))
	s.RegisterRouteFunc("POST /api/v1/deals", ChainMiddleware(s.handleCreateDeal, protected...))
	s.RegisterRouteFunc("GET /api/v1/deals/{id}", ChainMiddleware(s.handleGetDeal, protected...))
	s.RegisterRouteFunc("PUT /api/v1/deals/{id}", ChainMiddleware(s.handleUpdateDeal, protected...))
	s.RegisterRouteFunc("DELETE /api/v1/deals/{id}", ChainMiddleware(s.handleDeleteDeal, protected...))
	s.RegisterRouteFunc("POST /api/v1/deals/{id}/start-processing", ChainMiddleware(s.handleStartDealProcessing, protected...))
	s.RegisterRouteFunc("GET /api/v1/deals/{id}/status", ChainMiddleware(s.handleDealStatus, protected...))

	// Documents
	s.RegisterRouteFunc("GET /api/v1/documents", ChainMiddleware(s.handleListDocuments, protected...))
	s.RegisterRouteFunc("POST /api/v1/documents/upload", ChainMiddleware(s.handleUploadDocument, protected...))
	s.RegisterRouteFunc("GET /api/v1/documents/{id}", ChainMiddleware(s.handleGetDocument, protected...))
	s.RegisterRouteFunc("POST /api/v1/documents/{id}/process", ChainMiddleware(s.handleProcessDocument, protected...))
	s.RegisterRouteFunc("DELETE /api/v1/documents/{id}", ChainMiddleware(s.handleDeleteDocument, protected...))

	// Analytics
	s.RegisterRouteFunc("GET /api/v1/analytics/dashboard", ChainMiddleware(s.handleDashboardStats, protected...))
	s.RegisterRouteFunc("GET /api/v1/analytics/performance", ChainMiddleware(s.handlePerformanceMetrics, protected...))
	s.RegisterRouteFunc("GET /api/v1/analytics/pipeline", ChainMiddleware(s.handleDealPipeline, protected...))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": s.config.GetAppName(),
	})
}

func (s *Server) handlePreflight(w http.ResponseWriter, r *http.Request) {
	// CorsMiddleware already wrote the headers and the status for
	// OPTIONS requests; nothing reaches here.
}
