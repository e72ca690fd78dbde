// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"net"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/olegiv/landed/internal/cache"
	"github.com/olegiv/landed/internal/dnscheck"
	"github.com/olegiv/landed/internal/dnscheck/mocks"
	"github.com/olegiv/landed/internal/metrics"
	"github.com/olegiv/landed/internal/model"
	"github.com/olegiv/landed/internal/testutil"
)

const testPlatformIP = "203.0.113.10"

var testDomainConfig = DomainConfig{PlatformIP: testPlatformIP, BaseDomain: "landed.test"}

func newTestDomainService(t *testing.T, db *sql.DB, resolver dnscheck.Resolver, hosts *cache.HostCache, m *metrics.Metrics) *DomainService {
	t.Helper()
	return NewDomainService(db, dnscheck.NewChecker(resolver, time.Second), hosts, testDomainConfig, testutil.TestLogger(), m)
}

func TestDomainService_Add(t *testing.T) {
	db := testutil.TestDB(t)
	ctrl := gomock.NewController(t)
	svc := newTestDomainService(t, db, mocks.NewMockResolver(ctrl), nil, nil)
	ctx := context.Background()

	acc := testutil.CreateStandardAccount(t, db)
	other := testutil.CreateStandardAccount(t, db)

	d, err := svc.Add(ctx, acc.ID, "  WWW.Example.com. ")
	require.NoError(t, err)
	assert.Equal(t, "www.example.com", d.Name)
	assert.Equal(t, model.DomainStatusPending, d.Status)
	assert.Equal(t, "landed-verification="+acc.ID, d.VerificationTxt)
	assert.Nil(t, d.VerifiedAt)

	tests := []struct {
		name      string
		accountID string
		domain    string
		want      error
	}{
		{"duplicate", acc.ID, "www.example.com", ErrAlreadyExists},
		{"duplicate other account", other.ID, "WWW.EXAMPLE.COM", ErrAlreadyExists},
		{"single label", acc.ID, "localhost", ErrInvalidFormat},
		{"bad label", acc.ID, "-bad.example.com", ErrInvalidFormat},
		{"empty", acc.ID, "", ErrInvalidFormat},
		{"base domain", acc.ID, "landed.test", ErrInvalidFormat},
		{"platform subdomain", acc.ID, "acme.landed.test", ErrInvalidFormat},
		{"anonymous", "", "shop.example.com", ErrUnauthenticated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Add(ctx, tt.accountID, tt.domain)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestDomainService_Verify(t *testing.T) {
	tests := []struct {
		name   string
		addrs  []string
		addErr error
		txts   []string
		txtErr error
		want   dnscheck.Reason
	}{
		{
			name:  "verified",
			addrs: []string{"198.51.100.1", testPlatformIP},
			txts:  []string{"v=spf1 -all", "TOKEN"},
		},
		{
			name:  "address mismatch",
			addrs: []string{"198.51.100.1"},
			txts:  []string{"TOKEN"},
			want:  dnscheck.ReasonAddressMismatch,
		},
		{
			name:  "token missing",
			addrs: []string{testPlatformIP},
			txts:  []string{"landed-verification=someone-else"},
			want:  dnscheck.ReasonTokenMissing,
		},
		{
			name:   "not propagated",
			addErr: &net.DNSError{Err: "no such host", Name: "shop.example.com", IsNotFound: true},
			txtErr: &net.DNSError{Err: "no such host", Name: "shop.example.com", IsNotFound: true},
			want:   dnscheck.ReasonNotPropagated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := testutil.TestDB(t)
			ctrl := gomock.NewController(t)
			resolver := mocks.NewMockResolver(ctrl)
			m := metrics.New(prometheus.NewRegistry())
			svc := newTestDomainService(t, db, resolver, nil, m)
			ctx := context.Background()

			acc := testutil.CreateStandardAccount(t, db)
			d, err := svc.Add(ctx, acc.ID, "shop.example.com")
			require.NoError(t, err)

			txts := make([]string, len(tt.txts))
			for i, rec := range tt.txts {
				if rec == "TOKEN" {
					rec = d.VerificationTxt
				}
				txts[i] = rec
			}
			resolver.EXPECT().LookupHost(gomock.Any(), "shop.example.com").Return(tt.addrs, tt.addErr)
			resolver.EXPECT().LookupTXT(gomock.Any(), "shop.example.com").Return(txts, tt.txtErr)

			got, err := svc.Verify(ctx, acc.ID, d.ID)
			if tt.want == "" {
				require.NoError(t, err)
				assert.True(t, got.IsVerified())
				assert.NotNil(t, got.VerifiedAt)
				assert.Equal(t, 1.0, promtest.ToFloat64(m.DomainVerification.WithLabelValues("ok")))
				return
			}
			assert.ErrorIs(t, err, &Error{Kind: KindDNS, DNS: tt.want})
			assert.Equal(t, 1.0, promtest.ToFloat64(m.DomainVerification.WithLabelValues(string(tt.want))))

			list, err := svc.List(ctx, acc.ID)
			require.NoError(t, err)
			require.Len(t, list, 1)
			assert.Equal(t, model.DomainStatusPending, list[0].Status)
		})
	}
}

func TestDomainService_ReverifyDoesNoLookups(t *testing.T) {
	db := testutil.TestDB(t)
	ctrl := gomock.NewController(t)
	resolver := mocks.NewMockResolver(ctrl)
	svc := newTestDomainService(t, db, resolver, nil, nil)
	ctx := context.Background()

	acc := testutil.CreateStandardAccount(t, db)
	d, err := svc.Add(ctx, acc.ID, "shop.example.com")
	require.NoError(t, err)

	resolver.EXPECT().LookupHost(gomock.Any(), gomock.Any()).Return([]string{testPlatformIP}, nil).Times(1)
	resolver.EXPECT().LookupTXT(gomock.Any(), gomock.Any()).Return([]string{d.VerificationTxt}, nil).Times(1)

	first, err := svc.Verify(ctx, acc.ID, d.ID)
	require.NoError(t, err)
	second, err := svc.Verify(ctx, acc.ID, d.ID)
	require.NoError(t, err)
	assert.True(t, second.IsVerified())
	assert.WithinDuration(t, *first.VerifiedAt, *second.VerifiedAt, time.Second)
}

func TestDomainService_VerifyAccess(t *testing.T) {
	db := testutil.TestDB(t)
	ctrl := gomock.NewController(t)
	svc := newTestDomainService(t, db, mocks.NewMockResolver(ctrl), nil, nil)
	ctx := context.Background()

	owner := testutil.CreateStandardAccount(t, db)
	other := testutil.CreateStandardAccount(t, db)
	d, err := svc.Add(ctx, owner.ID, "shop.example.com")
	require.NoError(t, err)

	_, err = svc.Verify(ctx, other.ID, d.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = svc.Verify(ctx, owner.ID, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, other.ID, d.ID), ErrForbidden)
}

func TestDomainService_VerifyNotConfigured(t *testing.T) {
	db := testutil.TestDB(t)
	ctrl := gomock.NewController(t)
	svc := NewDomainService(db, dnscheck.NewChecker(mocks.NewMockResolver(ctrl), time.Second), nil,
		DomainConfig{BaseDomain: "landed.test"}, testutil.TestLogger(), nil)
	ctx := context.Background()

	acc := testutil.CreateStandardAccount(t, db)
	d, err := svc.Add(ctx, acc.ID, "shop.example.com")
	require.NoError(t, err)

	_, err = svc.Verify(ctx, acc.ID, d.ID)
	assert.ErrorIs(t, err, &Error{Kind: KindDNS, DNS: dnscheck.ReasonOther})
}

func TestDomainService_ResolveHost(t *testing.T) {
	db := testutil.TestDB(t)
	ctrl := gomock.NewController(t)
	resolver := mocks.NewMockResolver(ctrl)
	backend := cache.NewMemoryCache(cache.MemoryCacheOptions{DefaultTTL: time.Hour})
	t.Cleanup(func() { _ = backend.Close() })
	svc := newTestDomainService(t, db, resolver, cache.NewHostCache(backend, time.Hour, time.Minute), nil)
	ctx := context.Background()

	acc := testutil.CreateStandardAccount(t, db)
	claim(t, db, acc, "acme")
	d, err := svc.Add(ctx, acc.ID, "shop.example.com")
	require.NoError(t, err)

	// Pending domains do not route, and the miss is remembered
	sub, err := svc.ResolveHost(ctx, "shop.example.com")
	require.NoError(t, err)
	assert.Empty(t, sub)
	has, err := backend.Has(ctx, cache.HostKey("shop.example.com"))
	require.NoError(t, err)
	assert.True(t, has)

	resolver.EXPECT().LookupHost(gomock.Any(), gomock.Any()).Return([]string{testPlatformIP}, nil)
	resolver.EXPECT().LookupTXT(gomock.Any(), gomock.Any()).Return([]string{d.VerificationTxt}, nil)
	_, err = svc.Verify(ctx, acc.ID, d.ID)
	require.NoError(t, err)

	// Verification drops the negative entry
	sub, err = svc.ResolveHost(ctx, "Shop.Example.com")
	require.NoError(t, err)
	assert.Equal(t, "acme", sub)

	require.NoError(t, svc.Delete(ctx, acc.ID, d.ID))
	sub, err = svc.ResolveHost(ctx, "shop.example.com")
	require.NoError(t, err)
	assert.Empty(t, sub)

	list, err := svc.List(ctx, acc.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}
