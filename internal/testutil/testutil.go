// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package testutil provides shared test helpers for landed.
package testutil

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/olegiv/landed/internal/model"
	"github.com/olegiv/landed/internal/store"
)

// TestLogger creates a silent test logger that only outputs warnings and errors.
func TestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
}

// TestDB creates a temporary test database with migrations applied.
// The database is closed when the test finishes.
func TestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := store.NewDB(filepath.Join(t.TempDir(), "landed-test.db"))
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := store.Migrate(db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return db
}

// CreateAccount inserts an account with the given role and no subdomain.
func CreateAccount(t *testing.T, db *sql.DB, role string) store.Account {
	t.Helper()

	id := uuid.NewString()
	now := time.Now().UTC()
	acc, err := store.New(db).CreateAccount(context.Background(), store.CreateAccountParams{
		ID:           id,
		Email:        id + "@example.com",
		PasswordHash: "x",
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}
	return acc
}

// CreateStandardAccount inserts a standard account.
func CreateStandardAccount(t *testing.T, db *sql.DB) store.Account {
	t.Helper()
	return CreateAccount(t, db, model.RoleStandard)
}
