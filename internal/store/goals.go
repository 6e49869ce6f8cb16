package store

import (
	"context"
	"math"
	"strings"
	"time"

	"gorm.io/gorm"

	"sugarbeat/models"
)

// GoalInput describes a new goal. StartDate defaults to the store clock.
type GoalInput struct {
	GoalType    string
	TargetValue float64
	Timeframe   string
	StartDate   time.Time
	EndDate     *time.Time
}

// CreateGoal inserts an active goal and deactivates every other active goal
// of the same type, so at most one is active per type.
func (s *Store) CreateGoal(ctx context.Context, userID uint, in GoalInput) (*models.UserGoal, error) {
	const op = "create goal"
	goalType := strings.ToLower(strings.TrimSpace(in.GoalType))
	if _, ok := models.GoalNutrient(goalType); !ok {
		return nil, invalid(op, "unknown goal type %q", in.GoalType)
	}
	timeframe := strings.ToLower(strings.TrimSpace(in.Timeframe))
	if timeframe == "" {
		timeframe = models.TimeframeDaily
	}
	if !models.ValidTimeframe(timeframe) {
		return nil, invalid(op, "unknown timeframe %q", in.Timeframe)
	}
	if in.TargetValue < 0 || math.IsNaN(in.TargetValue) || math.IsInf(in.TargetValue, 0) {
		return nil, invalid(op, "target must be a non-negative number")
	}
	start := in.StartDate
	if start.IsZero() {
		start = s.now()
	}
	if in.EndDate != nil && in.EndDate.Before(start) {
		return nil, invalid(op, "end date precedes start date")
	}

	goal := &models.UserGoal{
		UserID:      userID,
		GoalType:    goalType,
		TargetValue: in.TargetValue,
		Timeframe:   timeframe,
		IsActive:    true,
		StartDate:   start.UTC(),
		EndDate:     in.EndDate,
	}
	err := s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.UserGoal{}).
			Where("user_id = ? AND goal_type = ? AND is_active = ?", userID, goalType, true).
			Update("is_active", false).Error; err != nil {
			return err
		}
		return tx.Create(goal).Error
	})
	if err != nil {
		return nil, fail(op, err)
	}
	return goal, nil
}

// ListGoals returns every goal of the user, newest first.
func (s *Store) ListGoals(ctx context.Context, userID uint) ([]models.UserGoal, error) {
	var goals []models.UserGoal
	err := s.conn(ctx).Where("user_id = ?", userID).Order("created_at DESC, id DESC").Find(&goals).Error
	if err != nil {
		return nil, fail("list goals", err)
	}
	return goals, nil
}

// ActiveGoals returns the user's active goals in id order.
func (s *Store) ActiveGoals(ctx context.Context, userID uint) ([]models.UserGoal, error) {
	var goals []models.UserGoal
	err := s.conn(ctx).Where("user_id = ? AND is_active = ?", userID, true).Order("id ASC").Find(&goals).Error
	if err != nil {
		return nil, fail("active goals", err)
	}
	return goals, nil
}

// DeactivateGoal turns a goal off; it stays in the history.
func (s *Store) DeactivateGoal(ctx context.Context, userID, id uint) error {
	result := s.conn(ctx).Model(&models.UserGoal{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_active", false)
	if result.Error != nil {
		return fail("deactivate goal", result.Error)
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := s.conn(ctx).Model(&models.UserGoal{}).Where("id = ? AND user_id = ?", id, userID).Count(&count).Error; err != nil {
			return fail("deactivate goal", err)
		}
		if count == 0 {
			return &Error{Op: "deactivate goal", Err: ErrNotFound}
		}
	}
	return nil
}
