package services

import (
	"context"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/daily-diet-api/internal/dto"
	"github.com/ahmetcoskunkizilkaya/daily-diet-api/internal/models"
	"github.com/ahmetcoskunkizilkaya/daily-diet-api/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

type MealServiceSuite struct {
	suite.Suite
	ctx   context.Context
	db    *gorm.DB
	meals *MealService
	ann   uuid.UUID
	bob   uuid.UUID
}

func (s *MealServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.db = testutil.NewDB(s.T())
	s.meals = NewMealService(s.db)

	users := NewUserService(s.db, NewSessionService(s.db, time.Hour), nil)
	ann, _, err := users.Register(s.ctx, &dto.RegisterRequest{Name: "Ann", Email: "ann@x.com"})
	s.Require().NoError(err)
	bob, _, err := users.Register(s.ctx, &dto.RegisterRequest{Name: "Bob", Email: "bob@x.com"})
	s.Require().NoError(err)
	s.ann, s.bob = ann.ID, bob.ID
}

func (s *MealServiceSuite) create(owner uuid.UUID, name string, diet bool) *models.Meal {
	meal, err := s.meals.Create(s.ctx, owner, &dto.CreateMealRequest{
		Name:        name,
		Description: testutil.Ptr("rice and beans"),
		Diet:        testutil.Ptr(diet),
	})
	s.Require().NoError(err)
	return meal
}

func (s *MealServiceSuite) TestCreateAndList() {
	created := s.create(s.ann, "Lunch", true)

	meals, err := s.meals.List(s.ctx, s.ann)
	s.Require().NoError(err)
	s.Require().Len(meals, 1)
	s.Equal(created.ID, meals[0].ID)
	s.Equal("Lunch", meals[0].Name)
	s.True(meals[0].Diet)
	s.Equal(s.ann, meals[0].UserID)
}

func (s *MealServiceSuite) TestCreateKeepsOccurredAt() {
	at := time.Date(2025, 6, 24, 12, 30, 0, 0, time.UTC)
	meal, err := s.meals.Create(s.ctx, s.ann, &dto.CreateMealRequest{
		Name:       "Lunch",
		Diet:       testutil.Ptr(false),
		OccurredAt: &dto.MealTime{Time: at},
	})
	s.Require().NoError(err)

	got, err := s.meals.Get(s.ctx, s.ann, meal.ID)
	s.Require().NoError(err)
	s.Require().NotNil(got.OccurredAt)
	s.True(at.Equal(*got.OccurredAt))
	s.Nil(got.Description)
}

func (s *MealServiceSuite) TestCreateValidation() {
	_, err := s.meals.Create(s.ctx, s.ann, &dto.CreateMealRequest{Name: "  "})

	var verr *ValidationError
	s.Require().ErrorAs(err, &verr)
	s.Contains(verr.Fields, "name")
	s.Contains(verr.Fields, "diet")

	var n int64
	s.Require().NoError(s.db.Model(&models.Meal{}).Count(&n).Error)
	s.Zero(n)
}

func (s *MealServiceSuite) TestListEmptyIsNotAnError() {
	meals, err := s.meals.List(s.ctx, s.ann)
	s.Require().NoError(err)
	s.NotNil(meals)
	s.Empty(meals)
}

func (s *MealServiceSuite) TestListOnlyReturnsOwnMeals() {
	s.create(s.ann, "Lunch", true)
	s.create(s.bob, "Dinner", false)

	meals, err := s.meals.List(s.ctx, s.bob)
	s.Require().NoError(err)
	s.Require().Len(meals, 1)
	s.Equal("Dinner", meals[0].Name)
}

func (s *MealServiceSuite) TestOtherOwnerSeesNotFound() {
	meal := s.create(s.ann, "Lunch", true)

	_, err := s.meals.Get(s.ctx, s.bob, meal.ID)
	s.ErrorIs(err, ErrMealNotFound)

	_, err = s.meals.Update(s.ctx, s.bob, meal.ID, &dto.UpdateMealRequest{Diet: testutil.Ptr(false)})
	s.ErrorIs(err, ErrMealNotFound)

	s.ErrorIs(s.meals.Delete(s.ctx, s.bob, meal.ID), ErrMealNotFound)

	// Ann's meal is untouched.
	got, err := s.meals.Get(s.ctx, s.ann, meal.ID)
	s.Require().NoError(err)
	s.True(got.Diet)
}

func (s *MealServiceSuite) TestUpdateOnlySuppliedFields() {
	meal := s.create(s.ann, "Lunch", true)

	updated, err := s.meals.Update(s.ctx, s.ann, meal.ID, &dto.UpdateMealRequest{Diet: testutil.Ptr(false)})
	s.Require().NoError(err)
	s.False(updated.Diet)

	got, err := s.meals.Get(s.ctx, s.ann, meal.ID)
	s.Require().NoError(err)
	s.Equal("Lunch", got.Name)
	s.Require().NotNil(got.Description)
	s.Equal("rice and beans", *got.Description)
	s.False(got.Diet)
}

func (s *MealServiceSuite) TestUpdateClearsDescription() {
	meal := s.create(s.ann, "Lunch", true)

	_, err := s.meals.Update(s.ctx, s.ann, meal.ID, &dto.UpdateMealRequest{ClearDescription: true})
	s.Require().NoError(err)

	got, err := s.meals.Get(s.ctx, s.ann, meal.ID)
	s.Require().NoError(err)
	s.Nil(got.Description)
	s.Equal("Lunch", got.Name)
	s.True(got.Diet)
}

func (s *MealServiceSuite) TestUpdateRejectsEmptyBody() {
	meal := s.create(s.ann, "Lunch", true)

	_, err := s.meals.Update(s.ctx, s.ann, meal.ID, &dto.UpdateMealRequest{})
	var verr *ValidationError
	s.ErrorAs(err, &verr)

	_, err = s.meals.Update(s.ctx, s.ann, meal.ID, &dto.UpdateMealRequest{Name: testutil.Ptr(" ")})
	s.ErrorAs(err, &verr)
	s.Contains(verr.Fields, "name")
}

func (s *MealServiceSuite) TestDeleteThenGet() {
	meal := s.create(s.ann, "Lunch", true)

	s.Require().NoError(s.meals.Delete(s.ctx, s.ann, meal.ID))

	_, err := s.meals.Get(s.ctx, s.ann, meal.ID)
	s.ErrorIs(err, ErrMealNotFound)
	s.ErrorIs(s.meals.Delete(s.ctx, s.ann, meal.ID), ErrMealNotFound)
}

func (s *MealServiceSuite) TestMetrics() {
	m, err := s.meals.Metrics(s.ctx, s.ann)
	s.Require().NoError(err)
	s.Equal(dto.MealMetrics{}, *m)

	s.create(s.ann, "Breakfast", true)
	s.create(s.ann, "Lunch", true)
	s.create(s.ann, "Dinner", false)
	s.create(s.bob, "Snack", false)

	m, err = s.meals.Metrics(s.ctx, s.ann)
	s.Require().NoError(err)
	s.Equal(3, m.TotalMeals)
	s.Equal(2, m.TotalDietMeals)
	s.Equal(1, m.TotalNonDietMeals)
	s.Equal(66.67, m.DietPercentage)
}

func TestMealServiceSuite(t *testing.T) {
	suite.Run(t, new(MealServiceSuite))
}

func TestSummarize(t *testing.T) {
	tests := []struct {
		name  string
		diets []bool
		want  dto.MealMetrics
	}{
		{"no meals", nil, dto.MealMetrics{}},
		{"all diet", []bool{true, true}, dto.MealMetrics{DietPercentage: 100, TotalMeals: 2, TotalDietMeals: 2}},
		{"none diet", []bool{false}, dto.MealMetrics{TotalMeals: 1, TotalNonDietMeals: 1}},
		{"one third", []bool{true, false, false}, dto.MealMetrics{DietPercentage: 33.33, TotalMeals: 3, TotalDietMeals: 1, TotalNonDietMeals: 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meals := make([]models.Meal, len(tt.diets))
			for i, d := range tt.diets {
				meals[i].Diet = d
			}
			assert.Equal(t, tt.want, *summarize(meals))
		})
	}
}

func TestMealService_StoreFailureIsInternal(t *testing.T) {
	db := testutil.NewDB(t)
	meals := NewMealService(db)
	testutil.BreakDB(t, db)

	_, err := meals.List(context.Background(), uuid.New())
	require.ErrorIs(t, err, ErrInternal)

	err = meals.Delete(context.Background(), uuid.New(), uuid.New())
	require.ErrorIs(t, err, ErrInternal)
}
