// Package aggregate sums logged entries per nutrient and compares the totals
// with the user's active goals.
package aggregate

import (
	"math"
	"time"

	"sugarbeat/internal/nutrition"
	"sugarbeat/models"
)

// Window is an inclusive time range.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls inside the window, bounds included.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// DayBounds returns 00:00:00.000 through 23:59:59.999 of ref's day in ref's location.
func DayBounds(ref time.Time) Window {
	y, m, d := ref.Date()
	loc := ref.Location()
	return Window{
		Start: time.Date(y, m, d, 0, 0, 0, 0, loc),
		End:   time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), loc),
	}
}

// WeekBounds returns Monday 00:00:00.000 through Sunday 23:59:59.999 of the
// week containing ref. Weeks always start on Monday.
func WeekBounds(ref time.Time) Window {
	y, m, d := ref.Date()
	loc := ref.Location()
	sinceMonday := (int(ref.Weekday()) + 6) % 7
	return Window{
		Start: time.Date(y, m, d-sinceMonday, 0, 0, 0, 0, loc),
		End:   time.Date(y, m, d-sinceMonday+6, 23, 59, 59, int(999*time.Millisecond), loc),
	}
}

// Partition splits entries into the reference week and the reference day.
type Partition struct {
	Week   Window             `json:"week"`
	Day    Window             `json:"day"`
	Weekly []models.FoodEntry `json:"weekly"`
	Today  []models.FoodEntry `json:"today"`
}

// PartitionByWeek keeps the entries consumed in ref's week and, among those,
// the ones consumed on ref's day. Input order is preserved.
func PartitionByWeek(entries []models.FoodEntry, ref time.Time) Partition {
	p := Partition{
		Week:   WeekBounds(ref),
		Day:    DayBounds(ref),
		Weekly: []models.FoodEntry{},
		Today:  []models.FoodEntry{},
	}
	for _, entry := range entries {
		if !p.Week.Contains(entry.ConsumedAt) {
			continue
		}
		p.Weekly = append(p.Weekly, entry)
		if p.Day.Contains(entry.ConsumedAt) {
			p.Today = append(p.Today, entry)
		}
	}
	return p
}

// SumNutrient adds up n across entries; absent values count as 0.
func SumNutrient(entries []models.FoodEntry, n nutrition.Nutrient) float64 {
	total := 0.0
	for _, entry := range entries {
		total += entry.Nutrient(n)
	}
	return total
}

// ProgressRatio returns total/target clamped to [0, 1]. A non-positive
// target counts as met as soon as anything was consumed.
func ProgressRatio(total, target float64) float64 {
	if math.IsNaN(total) || total <= 0 {
		return 0
	}
	if target <= 0 {
		return 1
	}
	return math.Min(total/target, 1)
}

// ActiveGoal returns the first active goal of goalType in lookup order.
func ActiveGoal(goals []models.UserGoal, goalType string) (models.UserGoal, bool) {
	for _, goal := range goals {
		if goal.IsActive && goal.GoalType == goalType {
			return goal, true
		}
	}
	return models.UserGoal{}, false
}
