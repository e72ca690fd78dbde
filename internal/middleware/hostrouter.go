// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/olegiv/landed/internal/metrics"
	"github.com/olegiv/landed/internal/model"
	"github.com/olegiv/landed/internal/util"
)

// Internal path spaces the host router rewrites into.
const (
	AppPathPrefix   = "/app"
	SitesPathPrefix = "/_sites"
)

// Route names recorded by the host router.
const (
	RoutePassthrough  = "passthrough"
	RouteApp          = "app"
	RouteDevSite      = "dev_site"
	RouteSubdomain    = "subdomain"
	RouteCustomDomain = "custom_domain"
	RouteUnmatched    = "unmatched"
)

// passthroughPrefixes are served the same way on every host.
var passthroughPrefixes = []string{"/api", "/static", "/health", "/metrics", "/favicon.ico"}

// HostLookup resolves a verified custom domain to its owner's subdomain.
// It returns "" for unknown hosts.
type HostLookup interface {
	ResolveHost(ctx context.Context, host string) (string, error)
}

// HostRouterConfig holds the host names the router matches against.
type HostRouterConfig struct {
	BaseDomain   string // e.g. landed.page
	DevHost      string // e.g. localhost:8080
	AppSubdomain string // e.g. app

	// Domains is consulted last, for hosts matching nothing else. Optional.
	Domains HostLookup
	Metrics *metrics.Metrics
	Logger  *slog.Logger
}

// HostRouter rewrites the request path from the Host header so that chi can
// route on paths alone:
//
//	app.{base}/x, app.{dev}/x   -> /app/x
//	{dev}/{sub}/{slug}          -> /_sites/{sub}/{slug}
//	{sub}.{base}/{slug}         -> /_sites/{sub}/{slug}
//	{verified custom domain}/x  -> /_sites/{owner subdomain}/x
//
// API, asset and health paths are never rewritten. The router does no page
// lookup of its own.
type HostRouter struct {
	cfg     HostRouterConfig
	appHost string
	devApp  string
}

// NewHostRouter creates a host router.
func NewHostRouter(cfg HostRouterConfig) *HostRouter {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	cfg.BaseDomain = strings.ToLower(cfg.BaseDomain)
	cfg.DevHost = strings.ToLower(cfg.DevHost)
	return &HostRouter{
		cfg:     cfg,
		appHost: strings.ToLower(cfg.AppSubdomain) + "." + cfg.BaseDomain,
		devApp:  strings.ToLower(cfg.AppSubdomain) + "." + cfg.DevHost,
	}
}

// Route returns the rewritten path for host and path and the route taken.
// It does not consult the custom domain lookup.
func (hr *HostRouter) Route(host, path string) (string, string) {
	if isPassthrough(path) {
		return path, RoutePassthrough
	}

	host = strings.ToLower(strings.TrimSuffix(host, "."))
	hostname := stripPort(host)

	switch {
	case host == hr.appHost || host == hr.devApp || hostname == hr.appHost:
		return AppPathPrefix + ensureLeadingSlash(path), RouteApp

	case host == hr.cfg.DevHost:
		rest := strings.TrimPrefix(path, "/")
		segment, slug, _ := strings.Cut(rest, "/")
		if segment == "" {
			return path, RouteUnmatched
		}
		return sitePath(segment, slug), RouteDevSite

	case hr.cfg.BaseDomain != "" && strings.HasSuffix(hostname, "."+hr.cfg.BaseDomain):
		label := strings.TrimSuffix(hostname, "."+hr.cfg.BaseDomain)
		if !util.IsValidSubdomain(label) {
			return path, RouteUnmatched
		}
		return sitePath(label, strings.TrimPrefix(path, "/")), RouteSubdomain
	}

	return path, RouteUnmatched
}

// Middleware returns the rewriting middleware. It must run before chi's
// routing, i.e. wrap the router rather than be mounted with Use.
func (hr *HostRouter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path, route := hr.Route(r.Host, r.URL.Path)

		if route == RouteUnmatched && hr.cfg.Domains != nil && !isPassthrough(r.URL.Path) {
			host := stripPort(strings.ToLower(r.Host))
			sub, err := hr.cfg.Domains.ResolveHost(r.Context(), host)
			switch {
			case err != nil:
				hr.cfg.Logger.Warn("custom domain lookup failed",
					"host", host,
					"error", err,
					"category", model.EventCategoryDomain,
				)
			case sub != "":
				path, route = sitePath(sub, strings.TrimPrefix(r.URL.Path, "/")), RouteCustomDomain
			}
		}

		hr.cfg.Metrics.HostRoute(route)
		if path == r.URL.Path {
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, rewrite(r, path))
	})
}

// rewrite returns a shallow copy of r with a new path.
func rewrite(r *http.Request, path string) *http.Request {
	r2 := new(http.Request)
	*r2 = *r
	u := *r.URL
	u.Path = path
	u.RawPath = ""
	r2.URL = &u
	return r2
}

func sitePath(subdomain, slug string) string {
	return SitesPathPrefix + "/" + subdomain + "/" + slug
}

func isPassthrough(path string) bool {
	for _, p := range passthroughPrefixes {
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}

func ensureLeadingSlash(path string) string {
	if !strings.HasPrefix(path, "/") {
		return "/" + path
	}
	return path
}

func stripPort(host string) string {
	if h, _, err := net.SplitHostPort(host); err == nil {
		return h
	}
	return host
}
