package dto

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/daily-diet-api/internal/models"
)

type CreateMealRequest struct {
	Name        string    `json:"name" validate:"required,max=255"`
	Description *string   `json:"description" validate:"omitempty,max=1000"`
	Diet        *bool     `json:"diet" validate:"required"`
	OccurredAt  *MealTime `json:"occurredAt"`
}

// UpdateMealRequest only touches the fields that are present in the body.
// An explicit "description": null sets ClearDescription, which the JSON
// decoder cannot tell apart from an omitted field on its own.
type UpdateMealRequest struct {
	Name             *string   `json:"name" validate:"omitempty,min=1,max=255"`
	Description      *string   `json:"description" validate:"omitempty,max=1000"`
	Diet             *bool     `json:"diet"`
	OccurredAt       *MealTime `json:"occurredAt"`
	ClearDescription bool      `json:"-"`
}

func (r *UpdateMealRequest) Empty() bool {
	return r.Name == nil && r.Description == nil && !r.ClearDescription &&
		r.Diet == nil && r.OccurredAt == nil
}

// FieldError reports a body field whose value could not be decoded.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Reason
}

// mealTimeLayouts are tried in order. The date-only and minute forms cover
// clients that still send a separate date and time of day.
var mealTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

const mealTimeFormat = "must be an RFC 3339 timestamp or a date like 2006-01-02, optionally followed by HH:MM"

// MealTime is when a meal happened. Layouts without an offset are read as UTC.
type MealTime struct {
	time.Time
}

func (t *MealTime) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}

	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return &FieldError{Field: "occurredAt", Reason: mealTimeFormat}
	}
	raw = strings.TrimSpace(raw)
	for _, layout := range mealTimeLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return &FieldError{Field: "occurredAt", Reason: mealTimeFormat}
}

// Ptr returns the wrapped time, or nil when t is nil.
func (t *MealTime) Ptr() *time.Time {
	if t == nil {
		return nil
	}
	v := t.Time
	return &v
}

type MealResponse struct {
	Message string       `json:"message"`
	Meal    *models.Meal `json:"meal,omitempty"`
}

type MealMetrics struct {
	DietPercentage    float64 `json:"porcentageDietMeals"`
	TotalMeals        int     `json:"totalMeals"`
	TotalDietMeals    int     `json:"totalDietMeals"`
	TotalNonDietMeals int     `json:"totalNonDietMeals"`
}

type MealMetricsResponse struct {
	Metrics MealMetrics `json:"metrics"`
}
