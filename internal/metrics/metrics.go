// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package metrics exposes Prometheus counters for the publication pipeline.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups the application collectors.
type Metrics struct {
	SubdomainClaims    *prometheus.CounterVec
	Publishes          *prometheus.CounterVec
	DomainVerification *prometheus.CounterVec
	DNSCheckDuration   prometheus.Histogram
	HostRoutes         *prometheus.CounterVec
	PublicLookups      *prometheus.CounterVec
}

// New registers all collectors with reg. Pass prometheus.DefaultRegisterer in
// production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		SubdomainClaims: f.NewCounterVec(prometheus.CounterOpts{
			Name: "landed_subdomain_claims_total",
			Help: "Subdomain claim attempts by outcome",
		}, []string{"outcome"}),
		Publishes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "landed_page_publications_total",
			Help: "Publish and unpublish operations by action and outcome",
		}, []string{"action", "outcome"}),
		DomainVerification: f.NewCounterVec(prometheus.CounterOpts{
			Name: "landed_domain_verifications_total",
			Help: "Custom domain verification attempts by outcome",
		}, []string{"outcome"}),
		DNSCheckDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "landed_dns_check_duration_seconds",
			Help:    "Duration of custom domain DNS checks",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		HostRoutes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "landed_host_routes_total",
			Help: "Requests by host routing decision",
		}, []string{"route"}),
		PublicLookups: f.NewCounterVec(prometheus.CounterOpts{
			Name: "landed_public_page_lookups_total",
			Help: "Public page lookups by result",
		}, []string{"result"}),
	}
}

// Claim records a subdomain claim outcome.
func (m *Metrics) Claim(outcome string) {
	if m == nil {
		return
	}
	m.SubdomainClaims.WithLabelValues(outcome).Inc()
}

// Publication records a publish or unpublish outcome.
func (m *Metrics) Publication(action, outcome string) {
	if m == nil {
		return
	}
	m.Publishes.WithLabelValues(action, outcome).Inc()
}

// Verification records a verification outcome.
func (m *Metrics) Verification(outcome string) {
	if m == nil {
		return
	}
	m.DomainVerification.WithLabelValues(outcome).Inc()
}

// ObserveDNSCheck records the duration of a DNS check started at start.
func (m *Metrics) ObserveDNSCheck(start time.Time) {
	if m == nil {
		return
	}
	m.DNSCheckDuration.Observe(time.Since(start).Seconds())
}

// HostRoute records a host routing decision.
func (m *Metrics) HostRoute(route string) {
	if m == nil {
		return
	}
	m.HostRoutes.WithLabelValues(route).Inc()
}

// PublicLookup records a public page lookup result.
func (m *Metrics) PublicLookup(result string) {
	if m == nil {
		return
	}
	m.PublicLookups.WithLabelValues(result).Inc()
}
