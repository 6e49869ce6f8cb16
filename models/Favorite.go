package models

import "gorm.io/gorm"

// Favorite bookmarks exactly one custom food, recipe or database food.
type Favorite struct {
	gorm.Model
	UserID       uint    `gorm:"not null;index" json:"user_id"`
	Name         string  `gorm:"not null" json:"name"`
	CustomFoodID *uint   `json:"custom_food_id,omitempty"`
	EdamamFoodID *string `gorm:"type:varchar(255)" json:"edamam_food_id,omitempty"`
	RecipeID     *uint   `json:"recipe_id,omitempty"`

	CustomFood *CustomFood `gorm:"foreignKey:CustomFoodID" json:"custom_food,omitempty"`
	Recipe     *Recipe     `gorm:"foreignKey:RecipeID" json:"recipe,omitempty"`
}

// References counts the populated source references.
func (f Favorite) References() int {
	count := 0
	if f.CustomFoodID != nil {
		count++
	}
	if f.EdamamFoodID != nil {
		count++
	}
	if f.RecipeID != nil {
		count++
	}
	return count
}
