package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"sugarbeat/internal/nutrition"
)

// NutritionValue is one stored nutrient of a custom food.
type NutritionValue struct {
	Label    string  `json:"label,omitempty"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
}

// NutritionValues is keyed by nutrient key ("calories", "sugar", ...).
type NutritionValues map[string]NutritionValue

type CustomFood struct {
	gorm.Model
	UserID          uint                                `gorm:"not null;index" json:"user_id"`
	Name            string                              `gorm:"not null" json:"name"`
	ServingSize     float64                             `gorm:"not null;default:100" json:"serving_size"`
	ServingUnit     string                              `gorm:"type:varchar(32);not null;default:g" json:"serving_unit"`
	IsShared        bool                                `gorm:"not null;default:false" json:"is_shared"`
	NutritionValues datatypes.JSONType[NutritionValues] `json:"nutrition_values"`
}

// Source adapts the row for nutrition.Normalize.
func (c CustomFood) Source() nutrition.CustomFood {
	values := c.NutritionValues.Data()
	converted := make(map[string]nutrition.Quantity, len(values))
	for key, value := range values {
		converted[key] = nutrition.Quantity{Quantity: value.Quantity, Unit: value.Unit}
	}
	return nutrition.CustomFood{
		ID:              FormatID(c.ID),
		Name:            c.Name,
		NutritionValues: converted,
		ServingSize:     c.ServingSize,
		ServingUnit:     c.ServingUnit,
	}
}
