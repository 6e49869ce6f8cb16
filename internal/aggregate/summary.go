package aggregate

import (
	"time"

	"sugarbeat/internal/nutrition"
	"sugarbeat/models"
)

// trackedNutrients are the values stored on every logged entry.
var trackedNutrients = []nutrition.Nutrient{nutrition.Calories, nutrition.Protein, nutrition.AddedSugar}

// Progress compares one active goal with the matching total.
type Progress struct {
	GoalID    uint    `json:"goal_id"`
	GoalType  string  `json:"goal_type"`
	Timeframe string  `json:"timeframe"`
	Target    float64 `json:"target"`
	Total     float64 `json:"total"`
	Ratio     float64 `json:"ratio"`
}

// Summary is the day/week view of a user's log. Goal types without an active
// goal have no Progress entry at all.
type Summary struct {
	Reference    time.Time                      `json:"reference"`
	Partition    Partition                      `json:"partition"`
	DailyTotals  map[nutrition.Nutrient]float64 `json:"daily_totals"`
	WeeklyTotals map[nutrition.Nutrient]float64 `json:"weekly_totals"`
	Progress     map[string]Progress            `json:"progress"`
}

// Summarize partitions entries around ref and computes progress for every
// goal type that has an active goal.
func Summarize(entries []models.FoodEntry, goals []models.UserGoal, ref time.Time) Summary {
	partition := PartitionByWeek(entries, ref)
	summary := Summary{
		Reference:    ref,
		Partition:    partition,
		DailyTotals:  totals(partition.Today),
		WeeklyTotals: totals(partition.Weekly),
		Progress:     map[string]Progress{},
	}

	for _, goal := range goals {
		if _, seen := summary.Progress[goal.GoalType]; seen {
			continue
		}
		active, ok := ActiveGoal(goals, goal.GoalType)
		if !ok {
			continue
		}
		n, ok := models.GoalNutrient(active.GoalType)
		if !ok {
			continue
		}

		scope := partition.Today
		if active.Timeframe == models.TimeframeWeekly {
			scope = partition.Weekly
		}
		total := SumNutrient(scope, n)
		summary.Progress[active.GoalType] = Progress{
			GoalID:    active.ID,
			GoalType:  active.GoalType,
			Timeframe: active.Timeframe,
			Target:    active.TargetValue,
			Total:     total,
			Ratio:     ProgressRatio(total, active.TargetValue),
		}
	}
	return summary
}

func totals(entries []models.FoodEntry) map[nutrition.Nutrient]float64 {
	out := make(map[nutrition.Nutrient]float64, len(trackedNutrients))
	for _, n := range trackedNutrients {
		out[n] = SumNutrient(entries, n)
	}
	return out
}
