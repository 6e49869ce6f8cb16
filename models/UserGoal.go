package models

import (
	"strings"
	"time"

	"gorm.io/gorm"

	"sugarbeat/internal/nutrition"
)

const (
	GoalAddedSugar = "added_sugar"
	GoalCalories   = "calories"
	GoalProtein    = "protein"
	GoalSugar      = "sugar"
	GoalCarbs      = "carbs"
	GoalFat        = "fat"
	GoalSodium     = "sodium"
	GoalFiber      = "fiber"

	TimeframeDaily  = "daily"
	TimeframeWeekly = "weekly"
)

var goalNutrients = map[string]nutrition.Nutrient{
	GoalAddedSugar: nutrition.AddedSugar,
	GoalCalories:   nutrition.Calories,
	GoalProtein:    nutrition.Protein,
	GoalSugar:      nutrition.Sugar,
	GoalCarbs:      nutrition.Carbs,
	GoalFat:        nutrition.Fat,
	GoalSodium:     nutrition.Sodium,
	GoalFiber:      nutrition.Fiber,
}

type UserGoal struct {
	gorm.Model
	UserID      uint       `gorm:"not null;index:idx_user_goals_user_type" json:"user_id"`
	GoalType    string     `gorm:"type:varchar(32);not null;index:idx_user_goals_user_type" json:"goal_type"`
	TargetValue float64    `gorm:"not null" json:"target_value"`
	Timeframe   string     `gorm:"type:varchar(16);not null;default:daily" json:"timeframe"`
	IsActive    bool       `gorm:"not null;default:false" json:"is_active"`
	StartDate   time.Time  `gorm:"not null" json:"start_date"`
	EndDate     *time.Time `json:"end_date,omitempty"`
}

// GoalNutrient maps a goal type onto the nutrient it tracks.
func GoalNutrient(goalType string) (nutrition.Nutrient, bool) {
	n, ok := goalNutrients[strings.ToLower(strings.TrimSpace(goalType))]
	return n, ok
}

// ValidTimeframe reports whether value is a supported goal timeframe.
func ValidTimeframe(value string) bool {
	return value == TimeframeDaily || value == TimeframeWeekly
}
