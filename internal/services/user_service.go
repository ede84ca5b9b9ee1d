package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ahmetcoskunkizilkaya/daily-diet-api/internal/dto"
	"github.com/ahmetcoskunkizilkaya/daily-diet-api/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/daily-diet-api/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Sealer turns a raw session token into the value handed to the client.
type Sealer func(userID uuid.UUID, token string) (string, error)

func rawToken(_ uuid.UUID, token string) (string, error) {
	return token, nil
}

type UserService struct {
	db       *gorm.DB
	sessions *SessionService
	seal     Sealer
}

// NewUserService returns a service that seals issued tokens with seal. A nil
// seal hands out the raw token.
func NewUserService(db *gorm.DB, sessions *SessionService, seal Sealer) *UserService {
	if seal == nil {
		seal = rawToken
	}
	return &UserService{db: db, sessions: sessions, seal: seal}
}

// Register creates the user and its first session in one transaction and
// returns the sealed token. Nothing is kept if sealing fails.
func (s *UserService) Register(ctx context.Context, req *dto.RegisterRequest) (*models.User, string, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = normalizeEmail(req.Email)
	if err := validateStruct(req); err != nil {
		return nil, "", err
	}

	user := models.User{
		ID:    uuid.New(),
		Name:  req.Name,
		Email: req.Email,
	}

	var bearer string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&models.User{}).Where("email = ?", req.Email).Count(&existing).Error; err != nil {
			return storeError("lookup email", err)
		}
		if existing > 0 {
			return ErrEmailTaken
		}

		if err := tx.Create(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrEmailTaken
			}
			return storeError("create user", err)
		}

		var err error
		bearer, err = s.issueSealed(ctx, tx, user.ID)
		return err
	})
	if err := settle("register", err); err != nil {
		return nil, "", err
	}

	metrics.SessionsIssued.WithLabelValues("register").Inc()
	return &user, bearer, nil
}

// Login opens a new session for the user owning req.Email and returns it
// sealed. Earlier sessions stay valid.
func (s *UserService) Login(ctx context.Context, req *dto.LoginRequest) (*models.User, string, error) {
	req.Email = normalizeEmail(req.Email)
	if err := validateStruct(req); err != nil {
		return nil, "", err
	}

	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", req.Email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", ErrUserNotFound
	}
	if err != nil {
		return nil, "", storeError("lookup user", err)
	}

	var bearer string
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		bearer, err = s.issueSealed(ctx, tx, user.ID)
		return err
	})
	if err := settle("login", err); err != nil {
		return nil, "", err
	}

	metrics.SessionsIssued.WithLabelValues("login").Inc()
	return &user, bearer, nil
}

// issueSealed stores a session inside tx and seals its token, so a failed
// seal rolls the session back.
func (s *UserService) issueSealed(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (string, error) {
	token, err := s.sessions.Issue(ctx, tx, userID)
	if err != nil {
		return "", err
	}
	bearer, err := s.seal(userID, token)
	if err != nil {
		return "", fmt.Errorf("seal session: %w", err)
	}
	return bearer, nil
}

func (s *UserService) CurrentUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUnauthenticated
	}
	if err != nil {
		return nil, storeError("lookup user", err)
	}
	return &user, nil
}

func (s *UserService) Logout(ctx context.Context, token string) error {
	return s.sessions.Revoke(ctx, token)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
