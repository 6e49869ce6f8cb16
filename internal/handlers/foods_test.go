package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"sugarbeat/internal/nutrition"
	"sugarbeat/internal/provider"
)

func TestFoodSearch(t *testing.T) {
	sm, cleanupSession := withTestSessionManager(t)
	t.Cleanup(cleanupSession)
	p := &fakeProvider{foods: map[string]nutrition.ProviderFood{"food_cereal": cerealFood()}}
	_, cleanupService := withTestService(t, p)
	t.Cleanup(cleanupService)

	req := authenticateRequest(t, sm, httptest.NewRequest(http.MethodGet, "/api/foods/search?q=cereal", nil), 1)
	w := httptest.NewRecorder()
	FoodResource(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	var items []nutrition.FoodItem
	decodeBody(t, w, &items)
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	if items[0].Category != nutrition.CategoryFoodDatabase {
		t.Fatalf("expected food database category, got %q", items[0].Category)
	}
	if got := items[0].Value(nutrition.AddedSugar); got != 8 {
		t.Fatalf("expected added sugar 8, got %v", got)
	}

	req = authenticateRequest(t, sm, httptest.NewRequest(http.MethodGet, "/api/foods/search?q=%20", nil), 1)
	w = httptest.NewRecorder()
	FoodSearch(w, req)
	if w.Code != http.StatusOK || w.Body.String() != "[]\n" {
		t.Fatalf("expected empty result for blank query, got %d %q", w.Code, w.Body.String())
	}
}

func TestFoodSearchProviderFailure(t *testing.T) {
	sm, cleanupSession := withTestSessionManager(t)
	t.Cleanup(cleanupSession)
	p := &fakeProvider{err: &provider.Error{Provider: "fake", Op: "search", StatusCode: 500, Err: errors.New("boom")}}
	_, cleanupService := withTestService(t, p)
	t.Cleanup(cleanupService)

	req := authenticateRequest(t, sm, httptest.NewRequest(http.MethodGet, "/api/foods/search?q=cereal", nil), 1)
	w := httptest.NewRecorder()
	FoodSearch(w, req)

	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected status 502, got %d", w.Code)
	}
}

func TestFoodLookup(t *testing.T) {
	sm, cleanupSession := withTestSessionManager(t)
	t.Cleanup(cleanupSession)
	p := &fakeProvider{foods: map[string]nutrition.ProviderFood{"food_cereal": cerealFood()}}
	_, cleanupService := withTestService(t, p)
	t.Cleanup(cleanupService)

	req := authenticateRequest(t, sm, httptest.NewRequest(http.MethodGet, "/api/foods/food_cereal", nil), 1)
	w := httptest.NewRecorder()
	FoodResource(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	var item nutrition.FoodItem
	decodeBody(t, w, &item)
	if item.FoodID != "food_cereal" || item.ServingSize != 100 {
		t.Fatalf("unexpected item %+v", item)
	}

	req = authenticateRequest(t, sm, httptest.NewRequest(http.MethodGet, "/api/foods/food_missing", nil), 1)
	w = httptest.NewRecorder()
	FoodResource(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	FoodResource(w, loadSession(t, sm, httptest.NewRequest(http.MethodGet, "/api/foods/food_cereal", nil)))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401 without a session, got %d", w.Code)
	}
}
