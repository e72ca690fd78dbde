// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs periodic housekeeping jobs.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/olegiv/landed/internal/model"
	"github.com/olegiv/landed/internal/service"
)

// DefaultPruneSchedule runs event log pruning daily at 03:00.
const DefaultPruneSchedule = "0 3 * * *"

// pruneTimeout bounds a single pruning run.
const pruneTimeout = time.Minute

// Config configures the scheduler.
type Config struct {
	// EventRetention is how long audit events are kept. 0 keeps them forever.
	EventRetention time.Duration
	// PruneSchedule is a standard five-field cron expression.
	PruneSchedule string
}

// Scheduler handles scheduled tasks like pruning the event log.
type Scheduler struct {
	cfg    Config
	events *service.EventService
	cron   *cron.Cron
	logger *slog.Logger
}

// New creates a new scheduler instance.
func New(events *service.EventService, cfg Config, logger *slog.Logger) *Scheduler {
	if cfg.PruneSchedule == "" {
		cfg.PruneSchedule = DefaultPruneSchedule
	}
	return &Scheduler{
		cfg:    cfg,
		events: events,
		cron:   cron.New(),
		logger: logger,
	}
}

// Start registers the jobs and starts the cron runner.
func (s *Scheduler) Start() error {
	if s.cfg.EventRetention > 0 {
		if _, err := s.cron.AddFunc(s.cfg.PruneSchedule, s.pruneEvents); err != nil {
			return err
		}
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()))
	return nil
}

// Stop gracefully stops the scheduler, waiting for running jobs.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) pruneEvents() {
	ctx, cancel := context.WithTimeout(context.Background(), pruneTimeout)
	defer cancel()

	n, err := s.events.DeleteOldEvents(ctx, s.cfg.EventRetention)
	if err != nil {
		s.logger.Error("failed to prune event log", "error", err, "category", model.EventCategorySystem)
		return
	}
	if n > 0 {
		s.logger.Info("pruned event log", "deleted", n, "retention", s.cfg.EventRetention.String())
	}
}
