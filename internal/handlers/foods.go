package handlers

import (
	"net/http"
	"net/url"
	"strings"

	applog "sugarbeat/internal/log"
	"sugarbeat/internal/nutrition"
)

// FoodSearch queries the food database: GET /api/foods/search?q=.
func FoodSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := authorize(w, r); !ok {
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeJSON(w, http.StatusOK, []nutrition.FoodItem{})
		return
	}

	items, err := service.Search(r.Context(), query)
	if err != nil {
		writeServiceError(w, r, err, "unable to search foods")
		return
	}
	applog.Debug(r.Context(), "food search completed", "query", query, "results", len(items))
	writeJSON(w, http.StatusOK, items)
}

// FoodResource returns one database food: GET /api/foods/{id}.
func FoodResource(w http.ResponseWriter, r *http.Request) {
	if _, ok := authorize(w, r); !ok {
		return
	}

	segments := resourcePath(r, "/api/foods")
	if len(segments) != 1 {
		http.NotFound(w, r)
		return
	}
	if segments[0] == "search" {
		FoodSearch(w, r)
		return
	}
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	id, err := url.PathUnescape(segments[0])
	if err != nil {
		http.NotFound(w, r)
		return
	}
	item, err := service.LookupFood(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, "unable to load food")
		return
	}
	writeJSON(w, http.StatusOK, item)
}
