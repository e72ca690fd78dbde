// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/olegiv/landed/internal/cache"
)

// Token errors. Callers resolving identities treat all of them the same way.
var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token has expired")
	ErrTokenRevoked = errors.New("token has been revoked")
)

// DefaultIssuer is the iss claim of bearer tokens.
const DefaultIssuer = "landed"

// Claims are the claims of a bearer token. Subject is the account id.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// TokenService issues, validates and revokes HS256 bearer tokens.
// Revoked token ids live in the cache until the token would have expired.
type TokenService struct {
	signingKey []byte
	issuer     string
	ttl        time.Duration
	revoked    cache.Cacher
	now        func() time.Time
}

// NewTokenService creates a token service. revoked may be shared with other
// caches; keys are namespaced.
func NewTokenService(signingKey string, ttl time.Duration, revoked cache.Cacher) *TokenService {
	return &TokenService{
		signingKey: []byte(signingKey),
		issuer:     DefaultIssuer,
		ttl:        ttl,
		revoked:    revoked,
		now:        time.Now,
	}
}

func revokedKey(jti string) string {
	return "revoked:" + jti
}

// Issue signs a token for the account.
func (s *TokenService) Issue(accountID, role string) (string, *Claims, error) {
	now := s.now()
	claims := &Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   accountID,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
	if err != nil {
		return "", nil, err
	}
	return signed, claims, nil
}

// Validate parses the token, checks its signature, expiry and issuer, and
// rejects revoked token ids.
func (s *TokenService) Validate(ctx context.Context, tokenString string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	},
		jwt.WithIssuer(s.issuer),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.Subject == "" || claims.ID == "" {
		return nil, ErrInvalidToken
	}

	revoked, err := s.revoked.Has(ctx, revokedKey(claims.ID))
	if err != nil {
		// Revocation state unknown
		return nil, err
	}
	if revoked {
		return nil, ErrTokenRevoked
	}
	return claims, nil
}

// Revoke marks the token id as revoked for the rest of its lifetime.
func (s *TokenService) Revoke(ctx context.Context, claims *Claims) error {
	if claims == nil || claims.ID == "" {
		return ErrInvalidToken
	}
	ttl := time.Minute
	if claims.ExpiresAt != nil {
		if left := claims.ExpiresAt.Sub(s.now()); left > 0 {
			ttl = left
		}
	}
	return s.revoked.Set(ctx, revokedKey(claims.ID), []byte{1}, ttl)
}
