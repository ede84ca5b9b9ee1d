package maintenance

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/daily-diet-api/internal/models"
	"github.com/ahmetcoskunkizilkaya/daily-diet-api/internal/services"
	"github.com/ahmetcoskunkizilkaya/daily-diet-api/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type stubPruner struct {
	n   int64
	err error
}

func (p stubPruner) PruneExpired(context.Context) (int64, error) {
	return p.n, p.err
}

func seedLog(t *testing.T, db *gorm.DB, at time.Time) {
	t.Helper()
	require.NoError(t, db.Create(&models.SystemLog{
		ID: uuid.New(), Timestamp: at, Level: "ERROR", Message: "boom",
	}).Error)
}

func TestJanitor_RunOnce(t *testing.T) {
	db := testutil.NewDB(t)
	now := time.Now()

	user := models.User{ID: uuid.New(), Name: "Ann", Email: "ann@x.com"}
	require.NoError(t, db.Create(&user).Error)
	for _, exp := range []time.Time{now.Add(-time.Minute), now.Add(time.Hour)} {
		require.NoError(t, db.Create(&models.Session{
			ID: uuid.New(), UserID: user.ID, SessionID: uuid.NewString(), ExpiresAt: exp,
		}).Error)
	}

	seedLog(t, db, now.Add(-48*time.Hour))
	seedLog(t, db, now.Add(-time.Hour))

	j := NewJanitor(db, services.NewSessionService(db, time.Hour), 24*time.Hour)
	sessions, logs := j.RunOnce(context.Background())
	assert.Equal(t, int64(1), sessions)
	assert.Equal(t, int64(1), logs)

	var remaining int64
	require.NoError(t, db.Model(&models.Session{}).Count(&remaining).Error)
	assert.Equal(t, int64(1), remaining)
	require.NoError(t, db.Model(&models.SystemLog{}).Count(&remaining).Error)
	assert.Equal(t, int64(1), remaining)
}

func TestJanitor_PrunerFailureStillCleansLogs(t *testing.T) {
	db := testutil.NewDB(t)
	seedLog(t, db, time.Now().Add(-48*time.Hour))

	j := NewJanitor(db, stubPruner{err: errors.New("down")}, 24*time.Hour)
	sessions, logs := j.RunOnce(context.Background())
	assert.Zero(t, sessions)
	assert.Equal(t, int64(1), logs)
}

func TestJanitor_StartStops(t *testing.T) {
	db := testutil.NewDB(t)
	done := make(chan struct{})

	NewJanitor(db, stubPruner{}, time.Hour).Start(time.Millisecond, done)
	time.Sleep(10 * time.Millisecond)
	close(done)
}
