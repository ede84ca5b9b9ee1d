package services

import (
	"context"
	"errors"
	"math"
	"strings"

	"github.com/ahmetcoskunkizilkaya/daily-diet-api/internal/dto"
	"github.com/ahmetcoskunkizilkaya/daily-diet-api/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/daily-diet-api/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ForOwner returns a GORM scope that filters meals by owner. The column is
// passed as a clause so it gets quoted: session_user is a keyword in Postgres.
func ForOwner(userID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(clause.Eq{Column: clause.Column{Name: "session_user"}, Value: userID})
	}
}

// MealService reads and writes meals on behalf of an already resolved owner.
// A meal owned by someone else is reported exactly like a missing one.
type MealService struct {
	db *gorm.DB
}

func NewMealService(db *gorm.DB) *MealService {
	return &MealService{db: db}
}

func (s *MealService) Create(ctx context.Context, userID uuid.UUID, req *dto.CreateMealRequest) (*models.Meal, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	meal := models.Meal{
		ID:          uuid.New(),
		UserID:      userID,
		Name:        req.Name,
		Description: req.Description,
		Diet:        *req.Diet,
		OccurredAt:  req.OccurredAt.Ptr(),
	}
	if err := s.db.WithContext(ctx).Create(&meal).Error; err != nil {
		return nil, storeError("create meal", err)
	}

	metrics.MealOperations.WithLabelValues("create").Inc()
	return &meal, nil
}

// List never fails for an owner without meals; it returns an empty slice.
func (s *MealService) List(ctx context.Context, userID uuid.UUID) ([]models.Meal, error) {
	meals := []models.Meal{}
	err := s.db.WithContext(ctx).Scopes(ForOwner(userID)).
		Order("created_at DESC").
		Find(&meals).Error
	if err != nil {
		return nil, storeError("list meals", err)
	}
	return meals, nil
}

func (s *MealService) Get(ctx context.Context, userID, mealID uuid.UUID) (*models.Meal, error) {
	return findOwned(s.db.WithContext(ctx), userID, mealID)
}

func (s *MealService) Update(ctx context.Context, userID, mealID uuid.UUID, req *dto.UpdateMealRequest) (*models.Meal, error) {
	if req.Empty() {
		return nil, invalid("body", "at least one field is required")
	}
	if req.Name != nil {
		trimmed := strings.TrimSpace(*req.Name)
		if trimmed == "" {
			return nil, invalid("name", "must not be empty")
		}
		req.Name = &trimmed
	}
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	var meal *models.Meal
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		meal, err = findOwned(tx, userID, mealID)
		if err != nil {
			return err
		}

		if req.Name != nil {
			meal.Name = *req.Name
		}
		switch {
		case req.ClearDescription:
			meal.Description = nil
		case req.Description != nil:
			meal.Description = req.Description
		}
		if req.Diet != nil {
			meal.Diet = *req.Diet
		}
		if req.OccurredAt != nil {
			meal.OccurredAt = req.OccurredAt.Ptr()
		}

		if err := tx.Save(meal).Error; err != nil {
			return storeError("update meal", err)
		}
		return nil
	})
	if err := settle("update meal", err); err != nil {
		return nil, err
	}

	metrics.MealOperations.WithLabelValues("update").Inc()
	return meal, nil
}

func (s *MealService) Delete(ctx context.Context, userID, mealID uuid.UUID) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		meal, err := findOwned(tx, userID, mealID)
		if err != nil {
			return err
		}
		if err := tx.Delete(meal).Error; err != nil {
			return storeError("delete meal", err)
		}
		return nil
	})
	if err := settle("delete meal", err); err != nil {
		return err
	}

	metrics.MealOperations.WithLabelValues("delete").Inc()
	return nil
}

// Metrics summarises the owner's meals as returned by List.
func (s *MealService) Metrics(ctx context.Context, userID uuid.UUID) (*dto.MealMetrics, error) {
	meals, err := s.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	return summarize(meals), nil
}

func summarize(meals []models.Meal) *dto.MealMetrics {
	out := &dto.MealMetrics{TotalMeals: len(meals)}
	for _, m := range meals {
		if m.Diet {
			out.TotalDietMeals++
		}
	}
	out.TotalNonDietMeals = out.TotalMeals - out.TotalDietMeals

	if out.TotalMeals > 0 {
		pct := float64(out.TotalDietMeals) / float64(out.TotalMeals) * 100
		out.DietPercentage = math.Round(pct*100) / 100
	}
	return out
}

// ownedMeal narrows a query to one meal of one owner.
func ownedMeal(userID, mealID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Scopes(ForOwner(userID)).
			Where(clause.Eq{Column: clause.PrimaryColumn, Value: mealID})
	}
}

func findOwned(db *gorm.DB, userID, mealID uuid.UUID) (*models.Meal, error) {
	var meal models.Meal
	err := db.Scopes(ownedMeal(userID, mealID)).First(&meal).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrMealNotFound
	}
	if err != nil {
		return nil, storeError("find meal", err)
	}
	return &meal, nil
}
