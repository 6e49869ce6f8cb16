package store

import (
	"context"
	"strings"
	"time"

	"sugarbeat/internal/nutrition"
	"sugarbeat/models"
)

// EntryInput is a new consumption event. At most one reference may be set.
type EntryInput struct {
	Name         string
	ServingSize  float64
	ServingUnit  string
	Calories     float64
	Protein      float64
	AddedSugar   float64
	CustomFoodID *uint
	EdamamFoodID *string
	RecipeID     *uint
}

// EntryPatch holds the fields an entry edit may change.
type EntryPatch struct {
	ServingSize float64
	ServingUnit string
	Calories    float64
	Protein     float64
	AddedSugar  float64
}

// LogEntry appends a consumption event timestamped with the store clock.
func (s *Store) LogEntry(ctx context.Context, userID uint, in EntryInput) (*models.FoodEntry, error) {
	const op = "log entry"
	if in.EdamamFoodID != nil && strings.TrimSpace(*in.EdamamFoodID) == "" {
		in.EdamamFoodID = nil
	}
	entry := &models.FoodEntry{
		UserID:       userID,
		CustomFoodID: in.CustomFoodID,
		EdamamFoodID: in.EdamamFoodID,
		RecipeID:     in.RecipeID,
		Name:         strings.TrimSpace(in.Name),
		ServingSize:  nutrition.NonNegative(in.ServingSize),
		ServingUnit:  nutrition.NormalizeUnit(in.ServingUnit),
		Calories:     nutrition.NonNegative(in.Calories),
		Protein:      nutrition.NonNegative(in.Protein),
		AddedSugar:   nutrition.NonNegative(in.AddedSugar),
		ConsumedAt:   s.now(),
	}
	if entry.References() > 1 {
		return nil, invalid(op, "an entry references at most one food")
	}
	if entry.Name == "" {
		return nil, invalid(op, "name is required")
	}
	if err := s.conn(ctx).Create(entry).Error; err != nil {
		return nil, fail(op, err)
	}
	return entry, nil
}

// UpdateEntry patches serving and nutrient values; references and the
// consumption time never change.
func (s *Store) UpdateEntry(ctx context.Context, userID, id uint, patch EntryPatch) (*models.FoodEntry, error) {
	const op = "update entry"
	result := s.conn(ctx).Model(&models.FoodEntry{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(map[string]any{
			"serving_size": nutrition.NonNegative(patch.ServingSize),
			"serving_unit": nutrition.NormalizeUnit(patch.ServingUnit),
			"calories":     nutrition.NonNegative(patch.Calories),
			"protein":      nutrition.NonNegative(patch.Protein),
			"added_sugar":  nutrition.NonNegative(patch.AddedSugar),
		})
	if result.Error != nil {
		return nil, fail(op, result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, &Error{Op: op, Err: ErrNotFound}
	}
	return s.GetEntry(ctx, userID, id)
}

// GetEntry loads an entry with its joined custom food and recipe.
func (s *Store) GetEntry(ctx context.Context, userID, id uint) (*models.FoodEntry, error) {
	var entry models.FoodEntry
	err := s.conn(ctx).
		Preload("CustomFood").
		Preload("Recipe").
		Where("user_id = ?", userID).
		First(&entry, id).Error
	if err != nil {
		return nil, fail("get entry", err)
	}
	return &entry, nil
}

// ListEntriesBetween returns entries consumed in [start, end], oldest first.
func (s *Store) ListEntriesBetween(ctx context.Context, userID uint, start, end time.Time) ([]models.FoodEntry, error) {
	if end.Before(start) {
		return nil, invalid("list entries", "end precedes start")
	}
	var entries []models.FoodEntry
	err := s.conn(ctx).
		Preload("CustomFood").
		Preload("Recipe").
		Where("user_id = ? AND consumed_at >= ? AND consumed_at <= ?", userID, start.UTC(), end.UTC()).
		Order("consumed_at ASC, id ASC").
		Find(&entries).Error
	if err != nil {
		return nil, fail("list entries", err)
	}
	return entries, nil
}
