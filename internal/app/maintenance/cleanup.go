package maintenance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/SugiKent/attendance-system/internal/models"
	"github.com/SugiKent/attendance-system/pkg/logger"
)

const defaultCleanupSpec = "@daily"

// Cleaner periodically clears expired verification tokens from user rows so
// stale links stop accumulating. Verified accounts are never touched; their
// token columns are already null.
type Cleaner struct {
	db   *gorm.DB
	cron *cron.Cron
	now  func() time.Time
	log  *zap.Logger

	schedule string
}

// Option customises the Cleaner.
type Option func(*Cleaner)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(cleaner *Cleaner) {
		if c != nil {
			cleaner.cron = c
		}
	}
}

// WithNow overrides the clock used for expiry comparisons.
func WithNow(now func() time.Time) Option {
	return func(cleaner *Cleaner) {
		if now != nil {
			cleaner.now = now
		}
	}
}

// WithSchedule overrides the cron expression for token cleanup.
func WithSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.schedule = spec
		}
	}
}

// NewCleaner constructs a Cleaner with sensible defaults.
func NewCleaner(db *gorm.DB, opts ...Option) *Cleaner {
	cleaner := &Cleaner{
		db:       db,
		now:      time.Now,
		schedule: defaultCleanupSpec,
		log:      logger.WithModule("maintenance"),
	}

	for _, opt := range opts {
		opt(cleaner)
	}

	if cleaner.cron == nil {
		cleaner.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}

	return cleaner
}

// Start registers the cleanup job with the cron scheduler and launches it.
func (c *Cleaner) Start() error {
	if c.db == nil {
		return nil
	}

	if _, err := c.cron.AddFunc(c.schedule, func() {
		ctx := context.Background()
		purged, err := CleanupVerificationTokens(ctx, c.db, c.now())
		if err != nil {
			c.log.Warn("verification token cleanup failed", zap.Error(err))
			return
		}
		if purged > 0 {
			c.log.Info("purged expired verification tokens", zap.Int64("count", purged))
		}
	}); err != nil {
		return err
	}

	c.cron.Start()
	return nil
}

// Stop halts the underlying scheduler, waiting for any running jobs to complete.
func (c *Cleaner) Stop() context.Context {
	if c.cron == nil {
		return context.Background()
	}
	return c.cron.Stop()
}

// RunOnce executes the cleanup routine immediately. Primarily used in tests
// and during graceful shutdown.
func (c *Cleaner) RunOnce(ctx context.Context) error {
	if c.db == nil {
		return nil
	}
	_, err := CleanupVerificationTokens(ctx, c.db, c.now())
	return err
}

// CleanupVerificationTokens nulls out verification tokens whose expiry has
// passed, returning the number of affected rows. The accounts stay
// unverified; users request a fresh token through the resend endpoint.
func CleanupVerificationTokens(ctx context.Context, db *gorm.DB, now time.Time) (int64, error) {
	if db == nil {
		return 0, errors.New("cleanup tokens: db is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	result := db.WithContext(ctx).
		Model(&models.User{}).
		Where("verification_token IS NOT NULL AND verification_token_expiry < ?", now).
		Updates(map[string]any{
			"verification_token":        nil,
			"verification_token_expiry": nil,
		})
	if result.Error != nil {
		return 0, fmt.Errorf("cleanup tokens: %w", result.Error)
	}

	return result.RowsAffected, nil
}
