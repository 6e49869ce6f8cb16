package handlers

import (
	"net/http"
	"time"

	applog "sugarbeat/internal/log"
	"sugarbeat/internal/store"
	"sugarbeat/models"
)

type ingredientRequest struct {
	Amount       float64 `json:"amount" validate:"gt=0"`
	Unit         string  `json:"unit" validate:"required,max=32"`
	CustomFoodID *uint   `json:"custom_food_id"`
	EdamamFoodID *string `json:"edamam_food_id" validate:"omitempty,max=255"`
}

type recipeRequest struct {
	Name        string              `json:"name" validate:"required,max=200"`
	Description string              `json:"description" validate:"max=2000"`
	Servings    int                 `json:"servings" validate:"gte=0"`
	IsShared    bool                `json:"is_shared"`
	Ingredients []ingredientRequest `json:"ingredients" validate:"dive"`
}

type ingredientResponse struct {
	ID           uint    `json:"id"`
	Amount       float64 `json:"amount"`
	Unit         string  `json:"unit"`
	CustomFoodID *uint   `json:"custom_food_id,omitempty"`
	EdamamFoodID *string `json:"edamam_food_id,omitempty"`
}

type recipeResponse struct {
	ID          uint                 `json:"id"`
	UserID      uint                 `json:"user_id"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Servings    int                  `json:"servings"`
	IsShared    bool                 `json:"is_shared"`
	Ingredients []ingredientResponse `json:"ingredients"`
	CreatedAt   time.Time            `json:"created_at"`
}

func projectRecipe(recipe models.Recipe) recipeResponse {
	ingredients := make([]ingredientResponse, 0, len(recipe.Ingredients))
	for _, ing := range recipe.Ingredients {
		ingredients = append(ingredients, ingredientResponse{
			ID:           ing.ID,
			Amount:       ing.Amount,
			Unit:         ing.Unit,
			CustomFoodID: ing.CustomFoodID,
			EdamamFoodID: ing.EdamamFoodID,
		})
	}
	return recipeResponse{
		ID:          recipe.ID,
		UserID:      recipe.UserID,
		Name:        recipe.Name,
		Description: recipe.Description,
		Servings:    recipe.Servings,
		IsShared:    recipe.IsShared,
		Ingredients: ingredients,
		CreatedAt:   recipe.CreatedAt,
	}
}

func projectRecipes(recipes []models.Recipe) []recipeResponse {
	out := make([]recipeResponse, 0, len(recipes))
	for _, recipe := range recipes {
		out = append(out, projectRecipe(recipe))
	}
	return out
}

// RecipeResource handles /api/recipes, /api/recipes/shared and /api/recipes/{id}.
func RecipeResource(w http.ResponseWriter, r *http.Request) {
	userID, ok := authorize(w, r)
	if !ok {
		return
	}

	segments := resourcePath(r, "/api/recipes")
	switch {
	case len(segments) == 0:
		switch r.Method {
		case http.MethodGet:
			recipes, err := service.Store().ListRecipes(r.Context(), userID)
			if err != nil {
				writeServiceError(w, r, err, "unable to load recipes")
				return
			}
			writeJSON(w, http.StatusOK, projectRecipes(recipes))
		case http.MethodPost:
			createRecipe(w, r, userID)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	case len(segments) == 1 && segments[0] == "shared":
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		recipes, err := service.Store().ListFriendsSharedRecipes(r.Context(), userID)
		if err != nil {
			writeServiceError(w, r, err, "unable to load shared recipes")
			return
		}
		writeJSON(w, http.StatusOK, projectRecipes(recipes))
	case len(segments) == 1:
		recipeID, ok := parseUintSegment(segments[0])
		if !ok {
			http.NotFound(w, r)
			return
		}
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		recipe, err := service.Store().GetRecipe(r.Context(), userID, recipeID)
		if err != nil {
			writeServiceError(w, r, err, "unable to load recipe")
			return
		}
		writeJSON(w, http.StatusOK, projectRecipe(*recipe))
	default:
		http.NotFound(w, r)
	}
}

func createRecipe(w http.ResponseWriter, r *http.Request, userID uint) {
	var payload recipeRequest
	if !decodeJSON(w, r, &payload) {
		return
	}

	in := store.RecipeInput{
		Name:        payload.Name,
		Description: payload.Description,
		Servings:    payload.Servings,
		IsShared:    payload.IsShared,
		Ingredients: make([]store.IngredientInput, 0, len(payload.Ingredients)),
	}
	for _, ing := range payload.Ingredients {
		in.Ingredients = append(in.Ingredients, store.IngredientInput{
			Amount:       ing.Amount,
			Unit:         ing.Unit,
			CustomFoodID: ing.CustomFoodID,
			EdamamFoodID: ing.EdamamFoodID,
		})
	}

	recipe, err := service.Store().CreateRecipe(r.Context(), userID, in)
	if err != nil {
		writeServiceError(w, r, err, "unable to create recipe")
		return
	}
	applog.Info(r.Context(), "recipe created", "user_id", userID, "recipe_id", recipe.ID, "ingredients", len(recipe.Ingredients))
	writeJSON(w, http.StatusCreated, projectRecipe(*recipe))
}
