package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// CacheCleaner is implemented by caches that need periodic expiry
// sweeps (the in-process cache; Redis expires keys itself).
type CacheCleaner interface {
	Cleanup()
}

// RefreshService keeps the player pool fresh on a schedule.
type RefreshService struct {
	pool      *PoolService
	cleaner   CacheCleaner
	logger    *logrus.Logger
	cron      *cron.Cron
	mu        sync.Mutex
	isRunning bool
	interval  time.Duration
}

// NewRefreshService creates a new refresh scheduler. cleaner may be
// nil when the cache handles its own expiry.
func NewRefreshService(pool *PoolService, cleaner CacheCleaner, interval time.Duration, logger *logrus.Logger) *RefreshService {
	return &RefreshService{
		pool:     pool,
		cleaner:  cleaner,
		logger:   logger,
		cron:     cron.New(),
		interval: interval,
	}
}

// Start schedules periodic pool refreshes and kicks off an initial
// load in the background.
func (s *RefreshService) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("refresh service is already running")
	}

	schedule := fmt.Sprintf("@every %s", s.interval.String())
	if _, err := s.cron.AddFunc(schedule, s.refreshPool); err != nil {
		return fmt.Errorf("failed to schedule pool refresh: %w", err)
	}

	if s.cleaner != nil {
		if _, err := s.cron.AddFunc("0 3 * * *", s.cleaner.Cleanup); err != nil {
			return fmt.Errorf("failed to schedule cache cleanup: %w", err)
		}
	}

	s.cron.Start()
	s.isRunning = true

	go s.initialLoad()

	s.logger.Info("Refresh service started")
	return nil
}

// Stop halts the scheduler and waits for running jobs to finish.
func (s *RefreshService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()

	s.isRunning = false
	s.logger.Info("Refresh service stopped")
}

// initialLoad warms the pool at startup, preferring the cached
// snapshot over a scrape.
func (s *RefreshService) initialLoad() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := s.pool.EnsurePool(ctx); err != nil {
		s.logger.WithError(err).Error("Initial pool load failed")
		return
	}
	if err := s.pool.AddMarketValues(ctx); err != nil {
		s.logger.WithError(err).Warn("Initial market value pass failed")
	}
}

func (s *RefreshService) refreshPool() {
	s.logger.Info("Starting scheduled pool refresh")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := s.pool.Refresh(ctx); err != nil {
		s.logger.WithError(err).Error("Scheduled pool refresh failed")
		return
	}
	if err := s.pool.AddMarketValues(ctx); err != nil {
		s.logger.WithError(err).Warn("Market value pass failed")
	}

	s.logger.Info("Completed scheduled pool refresh")
}
