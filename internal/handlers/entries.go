package handlers

import (
	"net/http"
	"time"

	applog "sugarbeat/internal/log"
	"sugarbeat/internal/nutrition"
	"sugarbeat/models"
)

type entryResponse struct {
	ID           uint      `json:"id"`
	Name         string    `json:"name"`
	ServingSize  float64   `json:"serving_size"`
	ServingUnit  string    `json:"serving_unit"`
	Calories     float64   `json:"calories"`
	Protein      float64   `json:"protein"`
	AddedSugar   float64   `json:"added_sugar"`
	ConsumedAt   time.Time `json:"consumed_at"`
	CustomFoodID *uint     `json:"custom_food_id,omitempty"`
	EdamamFoodID *string   `json:"edamam_food_id,omitempty"`
	RecipeID     *uint     `json:"recipe_id,omitempty"`
}

func projectEntry(entry models.FoodEntry) entryResponse {
	return entryResponse{
		ID:           entry.ID,
		Name:         entry.Name,
		ServingSize:  entry.ServingSize,
		ServingUnit:  entry.ServingUnit,
		Calories:     entry.Calories,
		Protein:      entry.Protein,
		AddedSugar:   entry.AddedSugar,
		ConsumedAt:   entry.ConsumedAt,
		CustomFoodID: entry.CustomFoodID,
		EdamamFoodID: entry.EdamamFoodID,
		RecipeID:     entry.RecipeID,
	}
}

func projectEntries(entries []models.FoodEntry) []entryResponse {
	out := make([]entryResponse, 0, len(entries))
	for _, entry := range entries {
		out = append(out, projectEntry(entry))
	}
	return out
}

// EntryResource handles /api/entries and /api/entries/{id}.
//
// GET /api/entries lists the reference day, or its week with ?scope=week.
// POST logs a canonical item. GET /api/entries/{id} returns the item rebuilt
// for editing and PUT writes an edited item back.
func EntryResource(w http.ResponseWriter, r *http.Request) {
	userID, ok := authorize(w, r)
	if !ok {
		return
	}

	segments := resourcePath(r, "/api/entries")
	if len(segments) == 0 {
		switch r.Method {
		case http.MethodGet:
			listEntries(w, r, userID)
		case http.MethodPost:
			var item nutrition.FoodItem
			if !decodeJSON(w, r, &item) {
				return
			}
			entry, err := service.LogItem(r.Context(), userID, item)
			if err != nil {
				writeServiceError(w, r, err, "unable to log entry")
				return
			}
			writeJSON(w, http.StatusCreated, projectEntry(*entry))
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	entryID, ok := parseUintSegment(segments[0])
	if !ok || len(segments) > 1 {
		applog.Debug(r.Context(), "invalid entry identifier", "path", r.URL.Path)
		http.NotFound(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		item, err := service.ItemForEntry(r.Context(), userID, entryID)
		if err != nil {
			writeServiceError(w, r, err, "unable to load entry")
			return
		}
		writeJSON(w, http.StatusOK, item)
	case http.MethodPut:
		var item nutrition.FoodItem
		if !decodeJSON(w, r, &item) {
			return
		}
		entry, err := service.SaveEntryEdit(r.Context(), userID, entryID, item)
		if err != nil {
			writeServiceError(w, r, err, "unable to update entry")
			return
		}
		applog.Debug(r.Context(), "entry updated", "user_id", userID, "entry_id", entry.ID)
		writeJSON(w, http.StatusOK, projectEntry(*entry))
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func listEntries(w http.ResponseWriter, r *http.Request, userID uint) {
	ref, err := referenceTime(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid date or timezone")
		return
	}
	week := r.URL.Query().Get("scope") == "week"
	entries, err := service.Entries(r.Context(), userID, ref, week)
	if err != nil {
		writeServiceError(w, r, err, "unable to load entries")
		return
	}
	writeJSON(w, http.StatusOK, projectEntries(entries))
}
