package nutrition

import (
	"math"
	"strconv"
	"strings"
)

// Serving units understood by the editor. Recipes use UnitServing.
const (
	UnitGram       = "g"
	UnitMilliliter = "ml"
	UnitOunce      = "oz"
	UnitCup        = "cup"
	UnitTablespoon = "tbsp"
	UnitServing    = "serving"
)

var unitAliases = map[string]string{
	"g":           UnitGram,
	"gm":          UnitGram,
	"gr":          UnitGram,
	"grm":         UnitGram,
	"gram":        UnitGram,
	"grams":       UnitGram,
	"ml":          UnitMilliliter,
	"mlt":         UnitMilliliter,
	"milliliter":  UnitMilliliter,
	"milliliters": UnitMilliliter,
	"millilitre":  UnitMilliliter,
	"oz":          UnitOunce,
	"ounce":       UnitOunce,
	"ounces":      UnitOunce,
	"onz":         UnitOunce,
	"cup":         UnitCup,
	"cups":        UnitCup,
	"tbsp":        UnitTablespoon,
	"tablespoon":  UnitTablespoon,
	"tablespoons": UnitTablespoon,
	"serving":     UnitServing,
	"servings":    UnitServing,
}

// NormalizeUnit maps provider-specific unit labels onto the serving unit
// vocabulary. Labels outside the vocabulary are returned trimmed and lower
// cased; an empty label becomes grams.
func NormalizeUnit(label string) string {
	key := strings.ToLower(strings.TrimSpace(label))
	if key == "" {
		return UnitGram
	}
	if unit, ok := unitAliases[key]; ok {
		return unit
	}
	return key
}

// KnownUnit reports whether unit is part of the serving unit vocabulary.
func KnownUnit(unit string) bool {
	_, ok := unitAliases[strings.ToLower(strings.TrimSpace(unit))]
	return ok
}

// ParseQuantity parses free-text numeric input. Malformed, negative or
// non-finite input yields 0.
func ParseQuantity(text string) float64 {
	value, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil {
		return 0
	}
	return sanitize(value)
}

func sanitize(value float64) float64 {
	if math.IsNaN(value) || math.IsInf(value, 0) || value < 0 {
		return 0
	}
	return value
}

// NonNegative returns value, or 0 when it is negative or not finite.
func NonNegative(value float64) float64 {
	return sanitize(value)
}
