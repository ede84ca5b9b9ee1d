package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/ahmetcoskunkizilkaya/daily-diet-api/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/daily-diet-api/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SessionService maps opaque session tokens to the users that own them.
type SessionService struct {
	db  *gorm.DB
	ttl time.Duration
	now func() time.Time
}

func NewSessionService(db *gorm.DB, ttl time.Duration) *SessionService {
	return &SessionService{db: db, ttl: ttl, now: time.Now}
}

// Issue stores a new session for userID using tx and returns the raw token.
// Pass the service's own handle when no transaction is open.
func (s *SessionService) Issue(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (string, error) {
	rawBytes := make([]byte, 32)
	if _, err := rand.Read(rawBytes); err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}
	token := base64.RawURLEncoding.EncodeToString(rawBytes)

	record := models.Session{
		ID:        uuid.New(),
		UserID:    userID,
		SessionID: hashToken(token),
		ExpiresAt: s.now().Add(s.ttl),
	}
	if err := tx.WithContext(ctx).Create(&record).Error; err != nil {
		return "", storeError("create session", err)
	}
	return token, nil
}

// Resolve returns the owner of token, or ErrUnauthenticated.
func (s *SessionService) Resolve(ctx context.Context, token string) (uuid.UUID, error) {
	if token == "" {
		return uuid.Nil, ErrUnauthenticated
	}

	var stored models.Session
	err := s.db.WithContext(ctx).
		Where("session_id = ? AND expires_at > ?", hashToken(token), s.now()).
		First(&stored).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return uuid.Nil, ErrUnauthenticated
	}
	if err != nil {
		return uuid.Nil, storeError("resolve session", err)
	}
	return stored.UserID, nil
}

// Revoke deletes the session row so the token stops resolving.
func (s *SessionService) Revoke(ctx context.Context, token string) error {
	if token == "" {
		return ErrUnauthenticated
	}

	result := s.db.WithContext(ctx).
		Where("session_id = ?", hashToken(token)).
		Delete(&models.Session{})
	if result.Error != nil {
		return storeError("revoke session", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrUnauthenticated
	}
	metrics.SessionsRevoked.Inc()
	return nil
}

// PruneExpired removes sessions past their expiry.
func (s *SessionService) PruneExpired(ctx context.Context) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("expires_at <= ?", s.now()).
		Delete(&models.Session{})
	if result.Error != nil {
		return 0, storeError("prune sessions", result.Error)
	}
	return result.RowsAffected, nil
}

func hashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return fmt.Sprintf("%x", h)
}
