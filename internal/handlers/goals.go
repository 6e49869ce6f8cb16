package handlers

import (
	"net/http"
	"time"

	applog "sugarbeat/internal/log"
	"sugarbeat/internal/store"
	"sugarbeat/models"
)

type goalRequest struct {
	GoalType    string     `json:"goal_type" validate:"required,oneof=added_sugar calories protein sugar carbs fat sodium fiber"`
	TargetValue float64    `json:"target_value" validate:"gte=0"`
	Timeframe   string     `json:"timeframe" validate:"omitempty,oneof=daily weekly"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
}

type goalResponse struct {
	ID          uint       `json:"id"`
	GoalType    string     `json:"goal_type"`
	TargetValue float64    `json:"target_value"`
	Timeframe   string     `json:"timeframe"`
	IsActive    bool       `json:"is_active"`
	StartDate   time.Time  `json:"start_date"`
	EndDate     *time.Time `json:"end_date,omitempty"`
}

func projectGoal(goal models.UserGoal) goalResponse {
	return goalResponse{
		ID:          goal.ID,
		GoalType:    goal.GoalType,
		TargetValue: goal.TargetValue,
		Timeframe:   goal.Timeframe,
		IsActive:    goal.IsActive,
		StartDate:   goal.StartDate,
		EndDate:     goal.EndDate,
	}
}

// GoalResource handles /api/goals and /api/goals/{id}. Creating a goal
// replaces the active goal of the same type; DELETE deactivates.
func GoalResource(w http.ResponseWriter, r *http.Request) {
	userID, ok := authorize(w, r)
	if !ok {
		return
	}

	segments := resourcePath(r, "/api/goals")
	if len(segments) == 0 {
		switch r.Method {
		case http.MethodGet:
			goals, err := service.Store().ListGoals(r.Context(), userID)
			if err != nil {
				writeServiceError(w, r, err, "unable to load goals")
				return
			}
			out := make([]goalResponse, 0, len(goals))
			for _, goal := range goals {
				out = append(out, projectGoal(goal))
			}
			writeJSON(w, http.StatusOK, out)
		case http.MethodPost:
			var payload goalRequest
			if !decodeJSON(w, r, &payload) {
				return
			}
			in := store.GoalInput{
				GoalType:    payload.GoalType,
				TargetValue: payload.TargetValue,
				Timeframe:   payload.Timeframe,
				EndDate:     payload.EndDate,
			}
			if payload.StartDate != nil {
				in.StartDate = *payload.StartDate
			}
			goal, err := service.Store().CreateGoal(r.Context(), userID, in)
			if err != nil {
				writeServiceError(w, r, err, "unable to create goal")
				return
			}
			applog.Info(r.Context(), "goal created", "user_id", userID, "goal_id", goal.ID, "goal_type", goal.GoalType)
			writeJSON(w, http.StatusCreated, projectGoal(*goal))
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	goalID, ok := parseUintSegment(segments[0])
	if !ok || len(segments) > 1 {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodDelete {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := service.Store().DeactivateGoal(r.Context(), userID, goalID); err != nil {
		writeServiceError(w, r, err, "unable to deactivate goal")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
