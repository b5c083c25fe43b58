package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/aibanker/go-aibanker/analytics"
	"github.com/aibanker/go-aibanker/auth"
	"github.com/aibanker/go-aibanker/deals"
	"github.com/aibanker/go-aibanker/documents"
	"github.com/aibanker/go-aibanker/internal/config"
	"github.com/aibanker/go-aibanker/token"
	"github.com/aibanker/go-aibanker/token/refresh"
	"github.com/aibanker/go-aibanker/users"
)

// Repos holds every repository the server needs.
type Repos struct {
	Users         users.Repo
	Deals         deals.Repo
	Documents     documents.Repo
	RefreshTokens refresh.Repo
}

type Server struct {
	env       string // Environment (e.g., "DEV", "PROD")
	mux       *http.ServeMux
	routes    []string
	config    config.Config
	repos     Repos
	auth      *auth.AuthService
	tokens    *token.Manager
	analytics *analytics.Service
	logger    zerolog.Logger
}

func New(cfg config.Config, repos Repos) (*Server, error) {
	tokenManager := token.New(
		token.NewHMACSigner(cfg.GetJWTSecret()),
		token.WithIssuer(cfg.GetBaseURL()),
		token.WithAudience(cfg.GetAudience()),
		token.WithAccessTokenExpiry(cfg.GetAccessTokenExpiry()),
	)

	refreshManager := refresh.NewManager(repos.RefreshTokens, cfg.GetRefreshTokenExpiry(),
		refresh.WithTokenLength(cfg.GetRefreshTokenLength()))

	authService, err := auth.NewAuthService(auth.Repos{
		Users:         repos.Users,
		RefreshTokens: repos.RefreshTokens,
	}, tokenManager, refreshManager)
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to create auth service: %w", err)
	}

	s := &Server{
		mux:       http.NewServeMux(),
		config:    cfg,
		repos:     repos,
		auth:      authService,
		tokens:    tokenManager,
		analytics: analytics.NewService(repos.Deals, repos.Documents),
		logger:    log.With().Str("component", "server").Logger(),
	}
	s.env = cfg.GetEnv()

	// Bootstrap: ensure the admin account exists when one is configured
	if err := s.seedAdminUser(context.Background()); err != nil {
		return nil, fmt.Errorf("[Server New] failed to seed admin user: %w", err)
	}

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	var displayMethod string
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		displayMethod = color + paddedMethod + ResetColor
	} else {
		displayMethod = Gray + paddedMethod + ResetColor
	}
	log.Printf("[%-19s] %s", displayMethod, path)
}
