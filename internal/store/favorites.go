package store

import (
	"context"
	"errors"
	"strings"

	"sugarbeat/models"
)

// FavoriteInput bookmarks exactly one food.
type FavoriteInput struct {
	Name         string
	CustomFoodID *uint
	EdamamFoodID *string
	RecipeID     *uint
}

// AddFavorite bookmarks a food; bookmarking the same food twice conflicts.
func (s *Store) AddFavorite(ctx context.Context, userID uint, in FavoriteInput) (*models.Favorite, error) {
	const op = "add favorite"
	if in.EdamamFoodID != nil && strings.TrimSpace(*in.EdamamFoodID) == "" {
		in.EdamamFoodID = nil
	}
	fav := &models.Favorite{
		UserID:       userID,
		Name:         strings.TrimSpace(in.Name),
		CustomFoodID: in.CustomFoodID,
		EdamamFoodID: in.EdamamFoodID,
		RecipeID:     in.RecipeID,
	}
	if fav.References() != 1 {
		return nil, invalid(op, "a favorite references exactly one food")
	}
	if fav.Name == "" {
		return nil, invalid(op, "name is required")
	}

	if err := s.checkFavoriteVisible(ctx, userID, fav); err != nil {
		return nil, err
	}

	query := s.conn(ctx).Model(&models.Favorite{}).Where("user_id = ?", userID)
	switch {
	case fav.CustomFoodID != nil:
		query = query.Where("custom_food_id = ?", *fav.CustomFoodID)
	case fav.RecipeID != nil:
		query = query.Where("recipe_id = ?", *fav.RecipeID)
	default:
		query = query.Where("edamam_food_id = ?", *fav.EdamamFoodID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return nil, fail(op, err)
	}
	if count > 0 {
		return nil, &Error{Op: op, Err: ErrConflict}
	}

	if err := s.conn(ctx).Create(fav).Error; err != nil {
		return nil, fail(op, err)
	}
	return fav, nil
}

// checkFavoriteVisible rejects bookmarks of foods and recipes the user can
// not see: only their own, or a friend's shared ones.
func (s *Store) checkFavoriteVisible(ctx context.Context, userID uint, fav *models.Favorite) error {
	const op = "add favorite"
	switch {
	case fav.CustomFoodID != nil:
		var food models.CustomFood
		if err := s.conn(ctx).First(&food, *fav.CustomFoodID).Error; err != nil {
			return fail(op, err)
		}
		if food.UserID == userID {
			return nil
		}
		if food.IsShared {
			friends, err := s.AreFriends(ctx, userID, food.UserID)
			if err != nil {
				return err
			}
			if friends {
				return nil
			}
		}
		return &Error{Op: op, Err: ErrNotFound}
	case fav.RecipeID != nil:
		if _, err := s.GetRecipe(ctx, userID, *fav.RecipeID); err != nil {
			if errors.Is(err, ErrNotFound) {
				return &Error{Op: op, Err: ErrNotFound}
			}
			return err
		}
	}
	return nil
}

// ListFavorites returns the user's bookmarks, newest first, with joined
// custom foods and recipes.
func (s *Store) ListFavorites(ctx context.Context, userID uint) ([]models.Favorite, error) {
	var favorites []models.Favorite
	err := s.conn(ctx).
		Preload("CustomFood", "user_id = ? OR is_shared = ?", userID, true).
		Preload("Recipe", "user_id = ? OR is_shared = ?", userID, true).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&favorites).Error
	if err != nil {
		return nil, fail("list favorites", err)
	}
	return favorites, nil
}

// RemoveFavorite deletes a bookmark.
func (s *Store) RemoveFavorite(ctx context.Context, userID, id uint) error {
	result := s.conn(ctx).Where("user_id = ?", userID).Delete(&models.Favorite{}, id)
	if result.Error != nil {
		return fail("remove favorite", result.Error)
	}
	if result.RowsAffected == 0 {
		return &Error{Op: "remove favorite", Err: ErrNotFound}
	}
	return nil
}
