package handlers

import (
	"net/http"

	applog "sugarbeat/internal/log"
	"sugarbeat/internal/store"
)

type favoriteRequest struct {
	Name         string  `json:"name" validate:"max=200"`
	CustomFoodID *uint   `json:"custom_food_id"`
	EdamamFoodID *string `json:"edamam_food_id" validate:"omitempty,max=255"`
	RecipeID     *uint   `json:"recipe_id"`
}

type favoriteResponse struct {
	ID           uint    `json:"id"`
	Name         string  `json:"name"`
	CustomFoodID *uint   `json:"custom_food_id,omitempty"`
	EdamamFoodID *string `json:"edamam_food_id,omitempty"`
	RecipeID     *uint   `json:"recipe_id,omitempty"`
}

// FavoriteResource handles /api/favorites and /api/favorites/{id}. Listing
// returns the bookmarks resolved into canonical items.
func FavoriteResource(w http.ResponseWriter, r *http.Request) {
	userID, ok := authorize(w, r)
	if !ok {
		return
	}

	segments := resourcePath(r, "/api/favorites")
	if len(segments) == 0 {
		switch r.Method {
		case http.MethodGet:
			items, err := service.ResolveFavorites(r.Context(), userID)
			if err != nil {
				writeServiceError(w, r, err, "unable to load favorites")
				return
			}
			writeJSON(w, http.StatusOK, items)
		case http.MethodPost:
			var payload favoriteRequest
			if !decodeJSON(w, r, &payload) {
				return
			}
			fav, err := service.Store().AddFavorite(r.Context(), userID, store.FavoriteInput{
				Name:         payload.Name,
				CustomFoodID: payload.CustomFoodID,
				EdamamFoodID: payload.EdamamFoodID,
				RecipeID:     payload.RecipeID,
			})
			if err != nil {
				writeServiceError(w, r, err, "unable to add favorite")
				return
			}
			applog.Debug(r.Context(), "favorite added", "user_id", userID, "favorite_id", fav.ID)
			writeJSON(w, http.StatusCreated, favoriteResponse{
				ID:           fav.ID,
				Name:         fav.Name,
				CustomFoodID: fav.CustomFoodID,
				EdamamFoodID: fav.EdamamFoodID,
				RecipeID:     fav.RecipeID,
			})
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	favoriteID, ok := parseUintSegment(segments[0])
	if !ok || len(segments) > 1 {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodDelete {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := service.Store().RemoveFavorite(r.Context(), userID, favoriteID); err != nil {
		writeServiceError(w, r, err, "unable to remove favorite")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
