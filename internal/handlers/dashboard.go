package handlers

import (
	"net/http"
	"time"

	"sugarbeat/internal/aggregate"
	"sugarbeat/internal/nutrition"
)

type summaryResponse struct {
	Reference    time.Time                      `json:"reference"`
	Week         aggregate.Window               `json:"week"`
	Day          aggregate.Window               `json:"day"`
	Today        []entryResponse                `json:"today"`
	Weekly       []entryResponse                `json:"weekly"`
	DailyTotals  map[nutrition.Nutrient]float64 `json:"daily_totals"`
	WeeklyTotals map[nutrition.Nutrient]float64 `json:"weekly_totals"`
	Progress     map[string]aggregate.Progress  `json:"progress"`
}

func projectSummary(summary aggregate.Summary) summaryResponse {
	return summaryResponse{
		Reference:    summary.Reference,
		Week:         summary.Partition.Week,
		Day:          summary.Partition.Day,
		Today:        projectEntries(summary.Partition.Today),
		Weekly:       projectEntries(summary.Partition.Weekly),
		DailyTotals:  summary.DailyTotals,
		WeeklyTotals: summary.WeeklyTotals,
		Progress:     summary.Progress,
	}
}

// Dashboard returns the day and week totals of the signed-in user together
// with progress towards every active goal.
func Dashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	userID, ok := authorize(w, r)
	if !ok {
		return
	}

	ref, err := referenceTime(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid date or timezone")
		return
	}
	summary, err := service.Dashboard(r.Context(), userID, ref)
	if err != nil {
		writeServiceError(w, r, err, "unable to load dashboard")
		return
	}
	writeJSON(w, http.StatusOK, projectSummary(summary))
}
