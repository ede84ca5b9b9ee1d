package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/daily-diet-api/internal/models"
	"github.com/ahmetcoskunkizilkaya/daily-diet-api/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedUser(t *testing.T, svc *SessionService, email string) models.User {
	t.Helper()
	user := models.User{ID: uuid.New(), Name: "Test", Email: email}
	require.NoError(t, svc.db.Create(&user).Error)
	return user
}

func TestSessionService_IssueAndResolve(t *testing.T) {
	ctx := context.Background()
	svc := NewSessionService(testutil.NewDB(t), time.Hour)
	user := seedUser(t, svc, "ann@x.com")

	token, err := svc.Issue(ctx, svc.db, user.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	owner, err := svc.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, owner)

	var stored models.Session
	require.NoError(t, svc.db.First(&stored, "user_id = ?", user.ID).Error)
	assert.NotEqual(t, token, stored.SessionID, "raw token must not be persisted")
	assert.Equal(t, hashToken(token), stored.SessionID)
}

func TestSessionService_IssueReturnsDistinctTokens(t *testing.T) {
	ctx := context.Background()
	svc := NewSessionService(testutil.NewDB(t), time.Hour)
	user := seedUser(t, svc, "ann@x.com")

	first, err := svc.Issue(ctx, svc.db, user.ID)
	require.NoError(t, err)
	second, err := svc.Issue(ctx, svc.db, user.ID)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	for _, token := range []string{first, second} {
		owner, err := svc.Resolve(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, user.ID, owner)
	}
}

func TestSessionService_ResolveRejectsUnknownTokens(t *testing.T) {
	ctx := context.Background()
	svc := NewSessionService(testutil.NewDB(t), time.Hour)

	for _, token := range []string{"", "not-a-session"} {
		_, err := svc.Resolve(ctx, token)
		assert.ErrorIs(t, err, ErrUnauthenticated, "token %q", token)
	}
}

func TestSessionService_ExpiredSessionDoesNotResolve(t *testing.T) {
	ctx := context.Background()
	svc := NewSessionService(testutil.NewDB(t), time.Hour)
	user := seedUser(t, svc, "ann@x.com")

	token, err := svc.Issue(ctx, svc.db, user.ID)
	require.NoError(t, err)

	later := time.Now().Add(2 * time.Hour)
	svc.now = func() time.Time { return later }

	_, err = svc.Resolve(ctx, token)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	pruned, err := svc.PruneExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), pruned)
}

func TestSessionService_Revoke(t *testing.T) {
	ctx := context.Background()
	svc := NewSessionService(testutil.NewDB(t), time.Hour)
	user := seedUser(t, svc, "ann@x.com")

	token, err := svc.Issue(ctx, svc.db, user.ID)
	require.NoError(t, err)

	require.NoError(t, svc.Revoke(ctx, token))

	_, err = svc.Resolve(ctx, token)
	assert.ErrorIs(t, err, ErrUnauthenticated)
	assert.ErrorIs(t, svc.Revoke(ctx, token), ErrUnauthenticated)
}

func TestSessionService_StoreFailureIsInternal(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	svc := NewSessionService(db, time.Hour)
	testutil.BreakDB(t, db)

	_, err := svc.Resolve(ctx, "anything")
	assert.ErrorIs(t, err, ErrInternal)
	assert.False(t, errors.Is(err, ErrUnauthenticated))
}
