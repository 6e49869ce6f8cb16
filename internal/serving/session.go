// Package serving keeps nutrient quantities proportional to a user-edited
// serving size.
//
// An editing session is an immutable State value. Every transition returns a
// new State and never mutates its receiver, so the serving size in effect
// before an edit is always available when the next factor is computed.
package serving

import (
	"strconv"

	"sugarbeat/internal/nutrition"
)

// State is one snapshot of an editing session.
type State struct {
	// OriginalServingSize is captured by Begin and never changes.
	OriginalServingSize float64 `json:"originalServingSize"`
	// PreviousServingSize is the serving size that was in effect before the
	// most recent committed rescale.
	PreviousServingSize float64 `json:"previousServingSize"`
	// ServingText is the raw, possibly partial, serving size input.
	ServingText string `json:"servingText"`
	// Current is the last committed item; its nutrients match its ServingSize.
	Current nutrition.FoodItem `json:"current"`
}

// Begin starts a session for item.
func Begin(item nutrition.FoodItem) State {
	current := item.Clone()
	return State{
		OriginalServingSize: current.ServingSize,
		PreviousServingSize: current.ServingSize,
		ServingText:         formatSize(current.ServingSize),
		Current:             current,
	}
}

// Type records keystroke-level input. Nutrients are left untouched until
// Commit so that partial input such as "1." never drives a rescale.
func (s State) Type(text string) State {
	next := s.copy()
	next.ServingText = text
	return next
}

// Commit rescales to the typed serving size; called on blur or submit.
func (s State) Commit() State {
	return RescaleByServingSize(s, nutrition.ParseQuantity(s.ServingText))
}

// SelectUnit changes the serving unit label without rescaling.
func (s State) SelectUnit(unit string) State {
	next := s.copy()
	next.Current.ServingSizeUnit = nutrition.NormalizeUnit(unit)
	return next
}

// Dirty reports whether typed input has not been committed yet.
func (s State) Dirty() bool {
	return nutrition.ParseQuantity(s.ServingText) != s.Current.ServingSize
}

// RescaleByServingSize multiplies every nutrient by newSize divided by the
// serving size in effect before this edit. A previous size of 0 yields a
// factor of 0. Negative or non-finite sizes, factors and products are
// treated as 0.
func RescaleByServingSize(s State, newSize float64) State {
	newSize = nutrition.NonNegative(newSize)

	previous := s.Current.ServingSize
	factor := 0.0
	if previous > 0 {
		factor = nutrition.NonNegative(newSize / previous)
	}

	next := s.copy()
	for n, q := range next.Current.Nutrients {
		q.Quantity = nutrition.NonNegative(q.Quantity * factor)
		next.Current.Nutrients[n] = q
	}
	next.Current.ServingSize = newSize
	next.PreviousServingSize = previous
	next.ServingText = formatSize(newSize)
	return next
}

// RescaleByNutrientEdit overwrites a single nutrient with the parsed value.
// Serving size and every other nutrient stay as they are, which knowingly
// lets the user correct one value away from strict proportionality.
func RescaleByNutrientEdit(s State, n nutrition.Nutrient, text string) State {
	next := s.copy()
	if !n.Valid() {
		return next
	}
	q, ok := next.Current.Nutrients[n]
	if !ok {
		q.Unit = n.DefaultUnit()
	}
	q.Quantity = nutrition.ParseQuantity(text)
	next.Current.Nutrients[n] = q
	return next
}

func (s State) copy() State {
	next := s
	next.Current = s.Current.Clone()
	return next
}

func formatSize(size float64) string {
	return strconv.FormatFloat(size, 'f', -1, 64)
}
