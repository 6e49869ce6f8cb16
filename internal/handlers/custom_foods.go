package handlers

import (
	"net/http"
	"time"

	applog "sugarbeat/internal/log"
	"sugarbeat/internal/store"
	"sugarbeat/models"
)

type customFoodResponse struct {
	ID              uint                   `json:"id"`
	Name            string                 `json:"name"`
	ServingSize     float64                `json:"serving_size"`
	ServingUnit     string                 `json:"serving_unit"`
	IsShared        bool                   `json:"is_shared"`
	NutritionValues models.NutritionValues `json:"nutrition_values"`
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
	FavoriteID      uint                   `json:"favorite_id,omitempty"`
}

type customFoodRequest struct {
	Name            string                 `json:"name" validate:"required,max=200"`
	ServingSize     float64                `json:"serving_size" validate:"gte=0"`
	ServingUnit     string                 `json:"serving_unit" validate:"max=32"`
	IsShared        bool                   `json:"is_shared"`
	NutritionValues models.NutritionValues `json:"nutrition_values"`
	Favorite        bool                   `json:"favorite"`
}

func (p customFoodRequest) input() store.CustomFoodInput {
	return store.CustomFoodInput{
		Name:            p.Name,
		ServingSize:     p.ServingSize,
		ServingUnit:     p.ServingUnit,
		IsShared:        p.IsShared,
		NutritionValues: p.NutritionValues,
	}
}

func projectCustomFood(food models.CustomFood) customFoodResponse {
	values := food.NutritionValues.Data()
	if values == nil {
		values = models.NutritionValues{}
	}
	return customFoodResponse{
		ID:              food.ID,
		Name:            food.Name,
		ServingSize:     food.ServingSize,
		ServingUnit:     food.ServingUnit,
		IsShared:        food.IsShared,
		NutritionValues: values,
		CreatedAt:       food.CreatedAt,
		UpdatedAt:       food.UpdatedAt,
	}
}

// CustomFoodResource handles /api/custom-foods and /api/custom-foods/{id}.
func CustomFoodResource(w http.ResponseWriter, r *http.Request) {
	userID, ok := authorize(w, r)
	if !ok {
		return
	}

	segments := resourcePath(r, "/api/custom-foods")
	if len(segments) == 0 {
		switch r.Method {
		case http.MethodGet:
			listCustomFoods(w, r, userID)
		case http.MethodPost:
			createCustomFood(w, r, userID)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	foodID, ok := parseUintSegment(segments[0])
	if !ok || len(segments) > 1 {
		applog.Debug(r.Context(), "invalid custom food identifier", "path", r.URL.Path)
		http.NotFound(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		food, err := service.Store().GetCustomFood(r.Context(), userID, foodID)
		if err != nil {
			writeServiceError(w, r, err, "unable to load custom food")
			return
		}
		writeJSON(w, http.StatusOK, projectCustomFood(*food))
	case http.MethodPut:
		var payload customFoodRequest
		if !decodeJSON(w, r, &payload) {
			return
		}
		food, err := service.Store().UpdateCustomFood(r.Context(), userID, foodID, payload.input())
		if err != nil {
			writeServiceError(w, r, err, "unable to update custom food")
			return
		}
		writeJSON(w, http.StatusOK, projectCustomFood(*food))
	case http.MethodDelete:
		if err := service.Store().DeleteCustomFood(r.Context(), userID, foodID); err != nil {
			writeServiceError(w, r, err, "unable to delete custom food")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func listCustomFoods(w http.ResponseWriter, r *http.Request, userID uint) {
	foods, err := service.Store().ListCustomFoods(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err, "unable to load custom foods")
		return
	}
	responses := make([]customFoodResponse, 0, len(foods))
	for _, food := range foods {
		responses = append(responses, projectCustomFood(food))
	}
	writeJSON(w, http.StatusOK, responses)
}

func createCustomFood(w http.ResponseWriter, r *http.Request, userID uint) {
	var payload customFoodRequest
	if !decodeJSON(w, r, &payload) {
		return
	}

	food, err := service.Store().CreateCustomFood(r.Context(), userID, payload.input())
	if err != nil {
		writeServiceError(w, r, err, "unable to create custom food")
		return
	}
	response := projectCustomFood(*food)

	if payload.Favorite {
		fav, err := service.Store().AddFavorite(r.Context(), userID, store.FavoriteInput{Name: food.Name, CustomFoodID: &food.ID})
		if err != nil {
			writeServiceError(w, r, err, "unable to favorite custom food")
			return
		}
		response.FavoriteID = fav.ID
	}
	applog.Info(r.Context(), "custom food created", "user_id", userID, "custom_food_id", food.ID, "favorite", payload.Favorite)
	writeJSON(w, http.StatusCreated, response)
}
