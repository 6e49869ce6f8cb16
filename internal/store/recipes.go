package store

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"sugarbeat/internal/nutrition"
	"sugarbeat/models"
)

// RecipeInput describes a recipe and its ingredients.
type RecipeInput struct {
	Name        string
	Description string
	Servings    int
	IsShared    bool
	Ingredients []IngredientInput
}

// IngredientInput references exactly one of a custom food or a database food.
type IngredientInput struct {
	Amount       float64
	Unit         string
	CustomFoodID *uint
	EdamamFoodID *string
}

// CreateRecipe stores a recipe with its ingredients in one transaction.
func (s *Store) CreateRecipe(ctx context.Context, userID uint, in RecipeInput) (*models.Recipe, error) {
	const op = "create recipe"
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, invalid(op, "name is required")
	}
	servings := in.Servings
	if servings <= 0 {
		servings = 1
	}

	recipe := &models.Recipe{
		UserID:      userID,
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		Servings:    servings,
		IsShared:    in.IsShared,
	}
	for i, ing := range in.Ingredients {
		refs := 0
		if ing.CustomFoodID != nil {
			refs++
		}
		if ing.EdamamFoodID != nil && strings.TrimSpace(*ing.EdamamFoodID) != "" {
			refs++
		} else {
			ing.EdamamFoodID = nil
		}
		if refs != 1 {
			return nil, invalid(op, "ingredient %d must reference exactly one food", i)
		}
		recipe.Ingredients = append(recipe.Ingredients, models.RecipeIngredient{
			Amount:       nutrition.NonNegative(ing.Amount),
			Unit:         nutrition.NormalizeUnit(ing.Unit),
			CustomFoodID: ing.CustomFoodID,
			EdamamFoodID: ing.EdamamFoodID,
		})
	}

	err := s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		for _, ing := range recipe.Ingredients {
			if ing.CustomFoodID == nil {
				continue
			}
			var count int64
			if err := tx.Model(&models.CustomFood{}).
				Where("id = ? AND (user_id = ? OR is_shared = ?)", *ing.CustomFoodID, userID, true).
				Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return invalid(op, "custom food %d is not available", *ing.CustomFoodID)
			}
		}
		return tx.Create(recipe).Error
	})
	if err != nil {
		var storeErr *Error
		if errors.As(err, &storeErr) {
			return nil, err
		}
		return nil, fail(op, err)
	}
	return recipe, nil
}

// ListRecipes returns the user's recipes with their ingredients.
func (s *Store) ListRecipes(ctx context.Context, userID uint) ([]models.Recipe, error) {
	var recipes []models.Recipe
	err := s.conn(ctx).Preload("Ingredients").Where("user_id = ?", userID).Order("name ASC").Find(&recipes).Error
	if err != nil {
		return nil, fail("list recipes", err)
	}
	return recipes, nil
}

// GetRecipe loads a recipe the user owns, or a shared recipe of a friend.
func (s *Store) GetRecipe(ctx context.Context, userID, id uint) (*models.Recipe, error) {
	var recipe models.Recipe
	err := s.conn(ctx).Preload("Ingredients.CustomFood").First(&recipe, id).Error
	if err != nil {
		return nil, fail("get recipe", err)
	}
	if recipe.UserID == userID {
		return &recipe, nil
	}
	if recipe.IsShared {
		friends, err := s.AreFriends(ctx, userID, recipe.UserID)
		if err != nil {
			return nil, err
		}
		if friends {
			return &recipe, nil
		}
	}
	return nil, &Error{Op: "get recipe", Err: ErrNotFound}
}

// ListFriendsSharedRecipes returns shared recipes owned by accepted friends.
func (s *Store) ListFriendsSharedRecipes(ctx context.Context, userID uint) ([]models.Recipe, error) {
	ids, err := s.friendIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []models.Recipe{}, nil
	}
	var recipes []models.Recipe
	err = s.conn(ctx).Preload("Ingredients").
		Where("user_id IN ? AND is_shared = ?", ids, true).
		Order("name ASC").
		Find(&recipes).Error
	if err != nil {
		return nil, fail("list shared recipes", err)
	}
	return recipes, nil
}
