// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/olegiv/landed/internal/auth"
	"github.com/olegiv/landed/internal/middleware"
	"github.com/olegiv/landed/internal/service"
)

// Route paths
const (
	RouteHealth      = "/health"
	RouteMetrics     = "/metrics"
	RouteLogin       = "/api/auth/login"
	RouteLogout      = "/api/auth/logout"
	RouteMe          = "/api/auth/me"
	RouteSubdomain   = "/api/subdomain"
	RoutePages       = "/api/pages"
	RoutePagesID     = "/api/pages/{id}"
	RouteDomains     = "/api/domains"
	RouteDomainsID   = "/api/domains/{id}"
	RouteEvents      = "/api/events"
	RouteSite        = middleware.SitesPathPrefix + "/{subdomain}/*"
	RouteApp         = middleware.AppPathPrefix
	RouteAppWildcard = middleware.AppPathPrefix + "/*"
)

// publicMaxAge is the shared-cache lifetime of published pages, in seconds.
const publicMaxAge = 60

// RouterConfig holds everything the router serves.
type RouterConfig struct {
	Sessions *scs.SessionManager
	Identity auth.Resolver
	Tokens   *auth.TokenService

	Accounts   *service.AccountService
	Subdomains *service.SubdomainService
	Pages      *service.PageService
	Publish    *service.PublishService
	Domains    *service.DomainService
	Events     *service.EventService

	Health  *HealthHandler
	Metrics http.Handler // Optional Prometheus handler

	CSRF            middleware.CSRFConfig
	Security        middleware.SecurityHeadersConfig
	LoginProtection *middleware.LoginProtection
	LoginLimiter    *middleware.RateLimiter // Optional
	VerifyLimiter   *middleware.RateLimiter // Optional

	// HostRouter rewrites site and application hosts before routing. Optional.
	HostRouter *middleware.HostRouter

	// RequestTimeout defaults to 30s.
	RequestTimeout time.Duration
}

// NewRouter builds the HTTP handler of the whole server.
func NewRouter(cfg RouterConfig) http.Handler {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}

	authHandler := NewAuthHandler(cfg.Accounts, cfg.Tokens, cfg.Sessions, cfg.LoginProtection)
	subdomainHandler := NewSubdomainHandler(cfg.Subdomains)
	pagesHandler := NewPagesHandler(cfg.Pages, cfg.Publish)
	domainsHandler := NewDomainsHandler(cfg.Domains)
	eventsHandler := NewEventsHandler(cfg.Events)
	publicHandler := NewPublicHandler(cfg.Pages)
	appHandler := NewAppHandler(cfg.Accounts)

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.RequestPath)
	r.Use(middleware.SecurityHeaders(cfg.Security))
	r.Use(cfg.Sessions.LoadAndSave)
	r.Use(middleware.LoadIdentity(cfg.Identity))

	if cfg.Health != nil {
		r.Get(RouteHealth, cfg.Health.Health)
		r.Get(RouteHealth+"/live", cfg.Health.Liveness)
		r.Get(RouteHealth+"/ready", cfg.Health.Readiness)
	}
	if cfg.Metrics != nil {
		r.Handle(RouteMetrics, cfg.Metrics)
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.NoStore)
		r.Use(middleware.CSRF(cfg.CSRF))

		r.With(optional(cfg.LoginLimiter)).Post(RouteLogin, authHandler.Login)
		r.Post(RouteLogout, authHandler.Logout)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)

			r.Get(RouteMe, authHandler.Me)

			r.Get(RouteSubdomain, subdomainHandler.Get)
			r.Post(RouteSubdomain, subdomainHandler.Claim)

			r.Get(RoutePages, pagesHandler.List)
			r.Post(RoutePages, pagesHandler.Create)
			r.Get(RoutePagesID, pagesHandler.Get)
			r.Put(RoutePagesID, pagesHandler.Update)
			r.Delete(RoutePagesID, pagesHandler.Delete)
			r.Post(RoutePagesID+"/publish", pagesHandler.Publish)
			r.Post(RoutePagesID+"/unpublish", pagesHandler.Unpublish)

			r.Get(RouteDomains, domainsHandler.List)
			r.Post(RouteDomains, domainsHandler.Add)
			r.With(optional(cfg.VerifyLimiter)).Post(RouteDomainsID+"/verify", domainsHandler.Verify)
			r.Delete(RouteDomainsID, domainsHandler.Delete)

			r.With(middleware.RequireAdmin).Get(RouteEvents, eventsHandler.List)
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.NoStore)
		r.Use(middleware.RequireAuth)
		r.Get(RouteApp, appHandler.Dashboard)
		r.Get(RouteAppWildcard, appHandler.Dashboard)
	})

	r.With(middleware.PublicCache(publicMaxAge)).Get(RouteSite, publicHandler.Page)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeJSONError(w, http.StatusNotFound, string(service.KindNotFound), "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeJSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed")
	})

	if cfg.HostRouter != nil {
		return cfg.HostRouter.Middleware(r)
	}
	return r
}

// optional returns the limiter's middleware, or a pass-through for nil.
func optional(rl *middleware.RateLimiter) func(http.Handler) http.Handler {
	if rl == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return rl.Middleware
}
