package store

import (
	"context"
	"strings"

	"gorm.io/datatypes"

	"sugarbeat/internal/nutrition"
	"sugarbeat/models"
)

const defaultCustomServingSize = 100

// CustomFoodInput carries the editable fields of a custom food.
type CustomFoodInput struct {
	Name            string
	ServingSize     float64
	ServingUnit     string
	IsShared        bool
	NutritionValues models.NutritionValues
}

func (in CustomFoodInput) normalize(op string) (CustomFoodInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return in, invalid(op, "name is required")
	}
	if in.ServingSize = nutrition.NonNegative(in.ServingSize); in.ServingSize == 0 {
		in.ServingSize = defaultCustomServingSize
	}
	in.ServingUnit = nutrition.NormalizeUnit(in.ServingUnit)

	values := make(models.NutritionValues, len(in.NutritionValues))
	for key, value := range in.NutritionValues {
		n, err := nutrition.ParseNutrient(key)
		if err != nil {
			return in, invalid(op, "unknown nutrient %q", key)
		}
		if value.Unit == "" {
			value.Unit = n.DefaultUnit()
		}
		value.Quantity = nutrition.NonNegative(value.Quantity)
		values[n.String()] = value
	}
	in.NutritionValues = values
	return in, nil
}

// CreateCustomFood stores a new food owned by userID.
func (s *Store) CreateCustomFood(ctx context.Context, userID uint, in CustomFoodInput) (*models.CustomFood, error) {
	const op = "create custom food"
	in, err := in.normalize(op)
	if err != nil {
		return nil, err
	}
	food := &models.CustomFood{
		UserID:          userID,
		Name:            in.Name,
		ServingSize:     in.ServingSize,
		ServingUnit:     in.ServingUnit,
		IsShared:        in.IsShared,
		NutritionValues: datatypes.NewJSONType(in.NutritionValues),
	}
	if err := s.conn(ctx).Create(food).Error; err != nil {
		return nil, fail(op, err)
	}
	return food, nil
}

// ListCustomFoods returns the user's foods ordered by name.
func (s *Store) ListCustomFoods(ctx context.Context, userID uint) ([]models.CustomFood, error) {
	var foods []models.CustomFood
	err := s.conn(ctx).Where("user_id = ?", userID).Order("name ASC").Find(&foods).Error
	if err != nil {
		return nil, fail("list custom foods", err)
	}
	return foods, nil
}

// GetCustomFood loads one of the user's foods.
func (s *Store) GetCustomFood(ctx context.Context, userID, id uint) (*models.CustomFood, error) {
	var food models.CustomFood
	err := s.conn(ctx).Where("user_id = ?", userID).First(&food, id).Error
	if err != nil {
		return nil, fail("get custom food", err)
	}
	return &food, nil
}

// UpdateCustomFood replaces the editable fields of a food.
func (s *Store) UpdateCustomFood(ctx context.Context, userID, id uint, in CustomFoodInput) (*models.CustomFood, error) {
	const op = "update custom food"
	in, err := in.normalize(op)
	if err != nil {
		return nil, err
	}
	food, err := s.GetCustomFood(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	food.Name = in.Name
	food.ServingSize = in.ServingSize
	food.ServingUnit = in.ServingUnit
	food.IsShared = in.IsShared
	food.NutritionValues = datatypes.NewJSONType(in.NutritionValues)
	if err := s.conn(ctx).Save(food).Error; err != nil {
		return nil, fail(op, err)
	}
	return food, nil
}

// DeleteCustomFood soft deletes a food.
func (s *Store) DeleteCustomFood(ctx context.Context, userID, id uint) error {
	result := s.conn(ctx).Where("user_id = ?", userID).Delete(&models.CustomFood{}, id)
	if result.Error != nil {
		return fail("delete custom food", result.Error)
	}
	if result.RowsAffected == 0 {
		return &Error{Op: "delete custom food", Err: ErrNotFound}
	}
	return nil
}
