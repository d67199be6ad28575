// Package fakeapi is an in-memory authorizations API with basic auth and a
// TOTP-checked two-factor challenge on the get-or-create endpoint.
package fakeapi

import (
	"net/http"
	"sync"
	"time"

	"github.com/brizzai/tokenctl/internal/authorizations"
	"github.com/brizzai/tokenctl/internal/logger"
	"github.com/brizzai/tokenctl/internal/requester"
	"github.com/brizzai/tokenctl/internal/utils"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

type application struct {
	name     string
	clientID string
	secret   string
}

// Server holds the fake API state. It is safe for concurrent use.
type Server struct {
	router *chi.Mux

	username string
	password string

	totpSecret string
	method     requester.TwoFactorType

	mu       sync.Mutex
	nextID   int64
	order    []int64
	auths    map[int64]*authorizations.Authorization
	apps     map[string]application
	requests map[string]int
	resends  int
	now      func() time.Time
}

// Option configures a Server
type Option func(*Server)

// WithCredentials requires basic auth with the given user on every request
func WithCredentials(username, password string) Option {
	return func(s *Server) {
		s.username = username
		s.password = password
	}
}

// WithTwoFactor demands a TOTP code for get-or-create, reported as
// delivered via method
func WithTwoFactor(secret string, method requester.TwoFactorType) Option {
	return func(s *Server) {
		s.totpSecret = secret
		s.method = method
	}
}

// WithApplication registers an OAuth application
func WithApplication(name, clientID, clientSecret string) Option {
	return func(s *Server) {
		s.apps[clientID] = application{name: name, clientID: clientID, secret: clientSecret}
	}
}

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		s.now = now
	}
}

// New creates a fake API server
func New(opts ...Option) *Server {
	s := &Server{
		router:   chi.NewRouter(),
		nextID:   1,
		auths:    make(map[int64]*authorizations.Authorization),
		apps:     make(map[string]application),
		requests: make(map[string]int),
		now:      time.Now,
		method:   requester.TwoFactorSMS,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.router.Use(middleware.Recoverer)
	s.router.Use(s.countRequests)
	s.router.Use(s.basicAuth)
	s.routes()

	return s
}

func (s *Server) routes() {
	s.router.Route("/authorizations", func(r chi.Router) {
		r.Get("/", s.handleList)
		r.Post("/", s.handleCreate)
		r.Get("/{id}", s.handleGet)
		r.Patch("/{id}", s.handleUpdate)
		r.Delete("/{id}", s.handleDelete)
		r.Put("/clients/{clientID}", s.handleGetOrCreate)
	})
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Requests reports how often method and path were requested
func (s *Server) Requests(method, path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[method+" "+path]
}

// Resends reports how many code-less get-or-create requests were challenged
func (s *Server) Resends() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resends
}

func (s *Server) countRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests[r.Method+" "+r.URL.Path]++
		s.mu.Unlock()

		logger.Debug("fake api request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("request_id", r.Header.Get(requester.RequestIDHeader)),
		)
		next.ServeHTTP(w, r)
	})
}

func (s *Server) basicAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.username == "" {
			next.ServeHTTP(w, r)
			return
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != s.username || pass != s.password {
			utils.WriteError(w, http.StatusUnauthorized, "Bad credentials")
			return
		}
		next.ServeHTTP(w, r)
	})
}
