package models

import (
	"gorm.io/gorm"

	"sugarbeat/internal/nutrition"
)

type Recipe struct {
	gorm.Model
	UserID      uint               `gorm:"not null;index" json:"user_id"`
	Name        string             `gorm:"not null" json:"name"`
	Description string             `gorm:"type:text" json:"description"`
	Servings    int                `gorm:"not null;default:1" json:"servings"`
	IsShared    bool               `gorm:"not null;default:false" json:"is_shared"`
	Ingredients []RecipeIngredient `gorm:"foreignKey:RecipeID" json:"ingredients"`
}

// Source adapts the row for nutrition.Normalize. Recipes store no nutrients
// of their own; callers pass whatever aggregate values they know.
func (r Recipe) Source(nutrients map[nutrition.Nutrient]float64) nutrition.Recipe {
	return nutrition.Recipe{
		ID:        FormatID(r.ID),
		Name:      r.Name,
		Nutrients: nutrients,
	}
}

type RecipeIngredient struct {
	gorm.Model
	RecipeID uint    `gorm:"not null;index" json:"recipe_id"`
	Amount   float64 `gorm:"not null" json:"amount"`
	Unit     string  `gorm:"not null" json:"unit"`

	// One of these will be non-null, the other will be null.
	CustomFoodID *uint   `json:"custom_food_id,omitempty"`
	EdamamFoodID *string `gorm:"type:varchar(255)" json:"edamam_food_id,omitempty"`

	CustomFood *CustomFood `gorm:"foreignKey:CustomFoodID" json:"custom_food,omitempty"`
}
