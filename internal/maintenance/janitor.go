package maintenance

import (
	"context"
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/daily-diet-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SessionPruner deletes sessions past their expiry.
type SessionPruner interface {
	PruneExpired(ctx context.Context) (int64, error)
}

// Janitor removes expired sessions and system logs older than the retention.
type Janitor struct {
	db        *gorm.DB
	sessions  SessionPruner
	retention time.Duration
	now       func() time.Time
}

func NewJanitor(db *gorm.DB, sessions SessionPruner, retention time.Duration) *Janitor {
	return &Janitor{db: db, sessions: sessions, retention: retention, now: time.Now}
}

// Start runs RunOnce every interval until done is closed.
func (j *Janitor) Start(interval time.Duration, done <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				j.RunOnce(context.Background())
			case <-done:
				return
			}
		}
	}()
}

// RunOnce performs a single cleanup pass and reports what it removed.
func (j *Janitor) RunOnce(ctx context.Context) (sessions, logs int64) {
	sessions, err := j.sessions.PruneExpired(ctx)
	if err != nil {
		slog.Error("session cleanup failed", "action", "janitor", "error", err)
	} else if sessions > 0 {
		slog.Info("session cleanup completed", "deleted", sessions)
	}

	cutoff := j.now().Add(-j.retention)
	result := j.db.WithContext(ctx).Scopes(loggedBefore(cutoff)).Delete(&models.SystemLog{})
	if result.Error != nil {
		slog.Error("log cleanup failed", "action", "janitor", "error", result.Error)
	} else if result.RowsAffected > 0 {
		logs = result.RowsAffected
		slog.Info("log cleanup completed", "deleted", logs)
	}
	return sessions, logs
}

// loggedBefore filters system logs older than cutoff. timestamp is a type
// name in both SQL dialects, so the column goes through a quoted clause.
func loggedBefore(cutoff time.Time) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(clause.Lt{Column: clause.Column{Name: "timestamp"}, Value: cutoff})
	}
}
