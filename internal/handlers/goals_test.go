package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"sugarbeat/internal/nutrition"
)

func TestGoalsReplaceAndDeactivate(t *testing.T) {
	sm, cleanupSession := withTestSessionManager(t)
	t.Cleanup(cleanupSession)
	svc, cleanupService := withTestService(t, nil)
	t.Cleanup(cleanupService)

	user := createTestUser(t, svc, "goals@example.com")

	var first, second goalResponse
	for i, target := range []float64{30, 25} {
		w := httptest.NewRecorder()
		GoalResource(w, authenticateRequest(t, sm, jsonRequest(t, http.MethodPost, "/api/goals", map[string]any{
			"goal_type":    "added_sugar",
			"target_value": target,
		}), user.ID))
		if w.Code != http.StatusCreated {
			t.Fatalf("expected status 201, got %d: %s", w.Code, w.Body.String())
		}
		if i == 0 {
			decodeBody(t, w, &first)
		} else {
			decodeBody(t, w, &second)
		}
	}
	if second.Timeframe != "daily" || !second.IsActive {
		t.Fatalf("unexpected goal %+v", second)
	}

	w := httptest.NewRecorder()
	GoalResource(w, authenticateRequest(t, sm, httptest.NewRequest(http.MethodGet, "/api/goals", nil), user.ID))
	var goals []goalResponse
	decodeBody(t, w, &goals)
	active := 0
	for _, goal := range goals {
		if goal.IsActive {
			active++
			if goal.ID != second.ID {
				t.Fatalf("expected newest goal to be active, got %d", goal.ID)
			}
		}
	}
	if len(goals) != 2 || active != 1 {
		t.Fatalf("expected 2 goals with 1 active, got %d/%d", len(goals), active)
	}

	w = httptest.NewRecorder()
	GoalResource(w, authenticateRequest(t, sm, jsonRequest(t, http.MethodPost, "/api/goals", map[string]any{
		"goal_type": "caffeine", "target_value": 1,
	}), user.ID))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for unknown goal type, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	GoalResource(w, authenticateRequest(t, sm, httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/api/goals/%d", second.ID), nil), user.ID))
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", w.Code)
	}

	summary, err := svc.Dashboard(t.Context(), user.ID, testNow)
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if _, ok := summary.Progress["added_sugar"]; ok {
		t.Fatal("expected no progress without an active goal")
	}
}

func TestDashboard(t *testing.T) {
	sm, cleanupSession := withTestSessionManager(t)
	t.Cleanup(cleanupSession)
	svc, cleanupService := withTestService(t, nil)
	t.Cleanup(cleanupService)

	user := createTestUser(t, svc, "dash@example.com")
	ctx := t.Context()
	for _, sugar := range []float64{10, 20} {
		if _, err := svc.LogItem(ctx, user.ID, nutrition.FoodItem{
			Label:           "Cookie",
			Category:        nutrition.CategoryFoodDatabase,
			ServingSize:     1,
			ServingSizeUnit: "serving",
			Nutrients:       nutrition.Nutrients{nutrition.AddedSugar: {Quantity: sugar, Unit: "g"}},
		}); err != nil {
			t.Fatalf("failed to log entry: %v", err)
		}
	}
	w := httptest.NewRecorder()
	GoalResource(w, authenticateRequest(t, sm, jsonRequest(t, http.MethodPost, "/api/goals", map[string]any{
		"goal_type": "added_sugar", "target_value": 25, "timeframe": "daily",
	}), user.ID))
	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	Dashboard(w, authenticateRequest(t, sm, httptest.NewRequest(http.MethodGet, "/api/dashboard?date=2025-03-12", nil), user.ID))
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	var summary summaryResponse
	decodeBody(t, w, &summary)
	if summary.DailyTotals[nutrition.AddedSugar] != 30 || summary.WeeklyTotals[nutrition.AddedSugar] != 30 {
		t.Fatalf("unexpected totals %+v / %+v", summary.DailyTotals, summary.WeeklyTotals)
	}
	progress, ok := summary.Progress["added_sugar"]
	if !ok || progress.Ratio != 1 || progress.Total != 30 {
		t.Fatalf("unexpected progress %+v", summary.Progress)
	}

	w = httptest.NewRecorder()
	Dashboard(w, authenticateRequest(t, sm, httptest.NewRequest(http.MethodGet, "/api/dashboard?date=2025-03-13", nil), user.ID))
	decodeBody(t, w, &summary)
	if len(summary.Today) != 0 || len(summary.Weekly) != 2 {
		t.Fatalf("expected empty day inside a populated week, got %d/%d", len(summary.Today), len(summary.Weekly))
	}

	w = httptest.NewRecorder()
	Dashboard(w, authenticateRequest(t, sm, httptest.NewRequest(http.MethodGet, "/api/dashboard?tz=Mars/Olympus", nil), user.ID))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for unknown timezone, got %d", w.Code)
	}
}
