package server

import (
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-dbgate/auth"
	"github.com/jrsteele09/go-dbgate/consent"
	"github.com/jrsteele09/go-dbgate/gate"
	"github.com/jrsteele09/go-dbgate/internal/config"
	"github.com/jrsteele09/go-dbgate/sessions"
	"github.com/jrsteele09/go-dbgate/storage"
	"github.com/jrsteele09/go-dbgate/users"
	"github.com/jrsteele09/go-dbgate/users/repomem"
)

type Server struct {
	env     string // Environment (e.g., "DEV", "PROD")
	mux     *http.ServeMux
	routes  []string
	config  config.Config
	gateway *gate.Gateway
	tokens  *TokenCodec
}

// New wires the full gateway stack over the given storage collaborator:
// credential store (seeded from config), session repo, consent cache,
// gateway and HTTP routes.
func New(cfg config.Config, store storage.Store, authOptions ...auth.ServiceOption) (*Server, error) {
	userRepo, err := bootstrapUsers(cfg)
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to bootstrap users: %w", err)
	}

	repos := auth.Repos{
		Users:    userRepo,
		Sessions: sessions.NewInMemorySessionRepo(),
	}

	options := append([]auth.ServiceOption{auth.WithSessionTimeout(cfg.GetSessionTimeout())}, authOptions...)
	gateway, err := gate.New(repos, consent.NewCache(), store, options...)
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to create gateway: %w", err)
	}

	tokens, err := NewTokenCodec(cfg.GetTokenSigningSecret())
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to create token codec: %w", err)
	}

	s := &Server{
		env:     cfg.GetEnv(),
		mux:     http.NewServeMux(),
		config:  cfg,
		gateway: gateway,
		tokens:  tokens,
	}

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

// bootstrapUsers seeds the static credential store from configuration.
func bootstrapUsers(cfg config.SecurityConfig) (users.Repo, error) {
	repo := repomem.NewInMemoryUserRepo()
	for _, account := range cfg.GetBootstrapAccounts() {
		capabilities := make([]users.Capability, 0, len(account.Capabilities))
		for _, name := range account.Capabilities {
			capability, ok := users.ParseCapability(name)
			if !ok {
				return nil, fmt.Errorf("unknown capability %q for %q", name, account.Identity)
			}
			capabilities = append(capabilities, capability)
		}

		hash, err := users.HashPassword(account.Password)
		if err != nil {
			return nil, fmt.Errorf("hashing password for %q: %w", account.Identity, err)
		}

		if err := repo.Upsert(&users.User{
			Identity:     account.Identity,
			PasswordHash: hash,
			Capabilities: capabilities,
		}); err != nil {
			return nil, fmt.Errorf("seeding %q: %w", account.Identity, err)
		}
	}
	return repo, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
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
	log.Printf("[%-7s] %s\n", method, path)
}
