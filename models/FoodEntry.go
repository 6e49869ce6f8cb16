package models

import (
	"time"

	"gorm.io/gorm"

	"sugarbeat/internal/nutrition"
)

// FoodEntry is one logged consumption event.
type FoodEntry struct {
	gorm.Model
	UserID uint `gorm:"not null;index:idx_food_entries_user_consumed" json:"user_id"`

	// --- Source Link ---
	// At most one of these is set; none means an ad hoc entry.
	CustomFoodID *uint   `json:"custom_food_id,omitempty"`
	EdamamFoodID *string `gorm:"type:varchar(255)" json:"edamam_food_id,omitempty"`
	RecipeID     *uint   `json:"recipe_id,omitempty"`

	Name        string    `gorm:"not null" json:"name"`
	ServingSize float64   `gorm:"not null" json:"serving_size"`
	ServingUnit string    `gorm:"type:varchar(32);not null" json:"serving_unit"`
	Calories    float64   `gorm:"not null;default:0" json:"calories"`
	Protein     float64   `gorm:"not null;default:0" json:"protein"`
	AddedSugar  float64   `gorm:"not null;default:0" json:"added_sugar"`
	ConsumedAt  time.Time `gorm:"not null;index:idx_food_entries_user_consumed" json:"consumed_at"`

	CustomFood *CustomFood `gorm:"foreignKey:CustomFoodID" json:"custom_food,omitempty"`
	Recipe     *Recipe     `gorm:"foreignKey:RecipeID" json:"recipe,omitempty"`
}

// Nutrient returns the stored value for n. Entries only carry calories,
// protein and added sugar; everything else reads as 0.
func (e FoodEntry) Nutrient(n nutrition.Nutrient) float64 {
	switch n {
	case nutrition.Calories:
		return e.Calories
	case nutrition.Protein:
		return e.Protein
	case nutrition.AddedSugar:
		return e.AddedSugar
	default:
		return 0
	}
}

// References counts the populated source references.
func (e FoodEntry) References() int {
	count := 0
	if e.CustomFoodID != nil {
		count++
	}
	if e.EdamamFoodID != nil {
		count++
	}
	if e.RecipeID != nil {
		count++
	}
	return count
}

// Source adapts the entry and its joined records for nutrition.Normalize.
func (e FoodEntry) Source() nutrition.LoggedEntry {
	src := nutrition.LoggedEntry{
		ID:           FormatID(e.ID),
		Name:         e.Name,
		CustomFoodID: formatOptionalID(e.CustomFoodID),
		RecipeID:     formatOptionalID(e.RecipeID),
		EdamamFoodID: optionalString(e.EdamamFoodID),
		ServingSize:  e.ServingSize,
		ServingUnit:  e.ServingUnit,
		Calories:     e.Calories,
		Protein:      e.Protein,
		AddedSugar:   e.AddedSugar,
	}
	if e.CustomFood != nil {
		cf := e.CustomFood.Source()
		src.CustomFood = &cf
	}
	if e.Recipe != nil {
		recipe := e.Recipe.Source(map[nutrition.Nutrient]float64{
			nutrition.Calories:   e.Calories,
			nutrition.Protein:    e.Protein,
			nutrition.AddedSugar: e.AddedSugar,
		})
		src.Recipe = &recipe
	}
	return src
}
