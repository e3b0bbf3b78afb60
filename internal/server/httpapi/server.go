// Package httpapi exposes the DefComm REST surface under /api.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/defcomm/internal/common"
	"github.com/dmitrijs2005/defcomm/internal/logging"
	"github.com/dmitrijs2005/defcomm/internal/server/config"
	"github.com/dmitrijs2005/defcomm/internal/server/models"
	"github.com/dmitrijs2005/defcomm/internal/server/services"
	"github.com/go-playground/validator/v10"
)

// Services bundles what the handlers call into.
type Services struct {
	Auth     *services.AuthService
	Users    *services.UserService
	Groups   *services.GroupService
	Messages *services.MessageService
	Admin    *services.AdminService
}

type Server struct {
	config   *config.Config
	logger   logging.Logger
	validate *validator.Validate
	metrics  *metrics

	auth     *services.AuthService
	users    *services.UserService
	groups   *services.GroupService
	messages *services.MessageService
	admin    *services.AdminService

	handler http.Handler
}

func NewServer(c *config.Config, l logging.Logger, svc Services) *Server {
	s := &Server{
		config:   c,
		logger:   l.With("module", "http_server"),
		validate: newValidator(),
		metrics:  newMetrics(),
		auth:     svc.Auth,
		users:    svc.Users,
		groups:   svc.Groups,
		messages: svc.Messages,
		admin:    svc.Admin,
	}
	s.handler = s.routes()
	return s
}

// Handler returns the fully wrapped handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	api := func(pattern string) string {
		method, path, _ := strings.Cut(pattern, " ")
		return method + " " + common.APIPrefix + path
	}
	hq := []models.Role{models.RoleHQ}

	mux.HandleFunc(api("POST /auth/register"), s.handleRegister)
	mux.HandleFunc(api("POST /auth/login"), s.handleLogin)
	mux.HandleFunc(api("POST /auth/logout"), s.handleLogout)
	mux.Handle(api("GET /auth/check"), s.authed(s.handleCheck))

	mux.Handle(api("GET /users"), s.authed(s.requireRole(s.handleListUsers, hq...)))
	mux.Handle(api("GET /users/pending"), s.authed(s.requireRole(s.handleListPending, hq...)))
	mux.Handle(api("PUT /users/{id}/approve"), s.authed(s.requireRole(s.handleApproveUser, hq...)))
	mux.Handle(api("PUT /users/{id}/reject"), s.authed(s.requireRole(s.handleRejectUser, hq...)))
	mux.Handle(api("PUT /users/{id}"), s.authed(s.requireRole(s.handleUpdateUser, hq...)))
	mux.Handle(api("DELETE /users/{id}"), s.authed(s.requireRole(s.handleDeleteUser, hq...)))

	mux.Handle(api("GET /groups"), s.authed(s.handleListGroups))
	mux.Handle(api("POST /groups"), s.authed(s.requireRole(s.handleCreateGroup, hq...)))
	mux.Handle(api("GET /groups/{id}"), s.authed(s.handleGetGroup))
	mux.Handle(api("PUT /groups/{id}"), s.authed(s.requireRole(s.handleRenameGroup, hq...)))
	mux.Handle(api("DELETE /groups/{id}"), s.authed(s.requireRole(s.handleDeleteGroup, hq...)))
	mux.Handle(api("PUT /groups/{id}/members"), s.authed(s.requireRole(s.handleAddMember, hq...)))
	mux.Handle(api("DELETE /groups/{id}/members/{userId}"), s.authed(s.requireRole(s.handleRemoveMember, hq...)))

	mux.Handle(api("GET /groups/{groupId}/messages"), s.authed(s.handleListMessages))
	mux.Handle(api("POST /groups/{groupId}/messages"), s.authed(s.handleSendMessage))

	mux.Handle(api("GET /admin/stats"), s.authed(s.requireRole(s.handleStats, hq...)))
	mux.Handle(api("GET /admin/recent-messages"), s.authed(s.requireRole(s.handleRecentMessages, hq...)))

	mux.HandleFunc("GET /{$}", s.handleHealth)
	if s.config.MetricsEnabled {
		mux.Handle("GET /metrics", s.metrics.handler())
	}
	mux.HandleFunc("/", s.handleNotFound)

	var h http.Handler = mux
	h = s.limitBody(h)
	h = s.securityHeaders(h)
	h = s.cors(h)
	h = s.recoverPanic(h)
	h = s.accessLog(h)
	return h
}

// Run serves until ctx is cancelled, then drains in-flight requests for up
// to the configured shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.config.EndpointAddrHTTP)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.config.EndpointAddrHTTP, err)
	}
	return s.Serve(ctx, listen)
}

func (s *Server) Serve(ctx context.Context, listen net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	done := make(chan error, 1)
	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.config.ShutdownTimeout)
		defer cancel()
		done <- srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return <-done
}
