// Package nutrition holds the canonical food model shared by normalization,
// serving scaling and aggregation.
package nutrition

import (
	"fmt"
	"strings"
)

// Nutrient enumerates the nutrient keys tracked by SugarBeat.
type Nutrient int

const (
	Sugar Nutrient = iota
	AddedSugar
	Calories
	Protein
	Carbs
	Fat
	Sodium
	Fiber

	nutrientCount
)

var nutrientKeys = [nutrientCount]string{
	Sugar:      "sugar",
	AddedSugar: "addedSugar",
	Calories:   "calories",
	Protein:    "protein",
	Carbs:      "carbs",
	Fat:        "fat",
	Sodium:     "sodium",
	Fiber:      "fiber",
}

// aliases maps lower-cased keys seen across sources onto the vocabulary.
// Edamam codes, USDA nutrient ids and the snake_case spellings used by
// stored rows all land here.
var aliases = map[string]Nutrient{
	"sugar":        Sugar,
	"sugars":       Sugar,
	"totalsugars":  Sugar,
	"total_sugars": Sugar,
	"2000":         Sugar,

	"addedsugar":   AddedSugar,
	"added_sugar":  AddedSugar,
	"addedsugars":  AddedSugar,
	"added_sugars": AddedSugar,
	"sugar_added":  AddedSugar,
	"sugar.added":  AddedSugar,
	"1235":         AddedSugar,

	"calories":   Calories,
	"energy":     Calories,
	"enerc_kcal": Calories,
	"1008":       Calories,

	"protein": Protein,
	"procnt":  Protein,
	"1003":    Protein,

	"carbs":         Carbs,
	"carbohydrates": Carbs,
	"chocdf":        Carbs,
	"1005":          Carbs,

	"fat":  Fat,
	"1004": Fat,

	"sodium": Sodium,
	"na":     Sodium,
	"1093":   Sodium,

	"fiber": Fiber,
	"fibtg": Fiber,
	"1079":  Fiber,
}

// AllNutrients returns every nutrient in declaration order.
func AllNutrients() []Nutrient {
	out := make([]Nutrient, 0, nutrientCount)
	for n := Nutrient(0); n < nutrientCount; n++ {
		out = append(out, n)
	}
	return out
}

// Valid reports whether n is part of the vocabulary.
func (n Nutrient) Valid() bool {
	return n >= 0 && n < nutrientCount
}

func (n Nutrient) String() string {
	if !n.Valid() {
		return fmt.Sprintf("Nutrient(%d)", int(n))
	}
	return nutrientKeys[n]
}

// DefaultUnit is the conventional unit used when a source omits one.
func (n Nutrient) DefaultUnit() string {
	switch n {
	case Calories:
		return "kcal"
	case Sodium:
		return "mg"
	default:
		return "g"
	}
}

// ParseNutrient resolves a source-specific key (case-insensitive) to a Nutrient.
func ParseNutrient(key string) (Nutrient, error) {
	if n, ok := aliases[strings.ToLower(strings.TrimSpace(key))]; ok {
		return n, nil
	}
	return 0, fmt.Errorf("nutrition: unknown nutrient %q", key)
}

func (n Nutrient) MarshalText() ([]byte, error) {
	if !n.Valid() {
		return nil, fmt.Errorf("nutrition: invalid nutrient %d", int(n))
	}
	return []byte(nutrientKeys[n]), nil
}

func (n *Nutrient) UnmarshalText(text []byte) error {
	parsed, err := ParseNutrient(string(text))
	if err != nil {
		return err
	}
	*n = parsed
	return nil
}
