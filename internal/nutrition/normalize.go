package nutrition

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrMissingSourceData is returned when a source has no usable name or label.
var ErrMissingSourceData = errors.New("nutrition: missing source data")

const (
	defaultProviderServingSize = 100
	defaultCustomServingSize   = 100
	defaultRecipeServingSize   = 1
)

// Source is the closed set of inputs Normalize accepts: ProviderFood,
// CustomFood, Recipe and LoggedEntry.
type Source interface {
	source()
}

// ProviderNutrient is a nutrient value as reported by an external provider.
type ProviderNutrient struct {
	Quantity float64
	Unit     string
}

// ProviderFood is the food-description contract returned by external
// providers. Nutrient keys are provider specific (ENERC_KCAL, 1008, ...).
type ProviderFood struct {
	ID              string
	Label           string
	Category        string
	Nutrients       map[string]ProviderNutrient
	ServingSize     float64
	ServingSizeUnit string
	ServingSizes    []ServingOption
	Image           string
}

// CustomFood is a user-defined food as stored.
type CustomFood struct {
	ID              string
	Name            string
	NutritionValues map[string]Quantity
	ServingSize     float64
	ServingUnit     string
}

// Recipe carries the aggregate nutrients known for a recipe, usually the
// ones stored on the entry that logged it.
type Recipe struct {
	ID        string
	Name      string
	Nutrients map[Nutrient]float64
}

// LoggedEntry is a persisted consumption event together with its joined
// source record, if any.
type LoggedEntry struct {
	ID           string
	Name         string
	CustomFoodID string
	RecipeID     string
	EdamamFoodID string
	ServingSize  float64
	ServingUnit  string
	Calories     float64
	Protein      float64
	AddedSugar   float64

	CustomFood *CustomFood
	Recipe     *Recipe
}

func (ProviderFood) source() {}
func (CustomFood) source()   {}
func (Recipe) source()       {}
func (LoggedEntry) source()  {}

// Normalize converts any Source into a FoodItem. Quantities are taken as
// given, so the result is consistent with its serving size on construction.
// Missing nutrients default to 0; only a missing name is an error.
func Normalize(src Source) (FoodItem, error) {
	switch s := src.(type) {
	case ProviderFood:
		return normalizeProvider(s)
	case CustomFood:
		return normalizeCustomFood(s)
	case Recipe:
		return normalizeRecipe(s)
	case LoggedEntry:
		return normalizeLoggedEntry(s)
	default:
		return FoodItem{}, fmt.Errorf("nutrition: unsupported source %T", src)
	}
}

func normalizeProvider(s ProviderFood) (FoodItem, error) {
	label := strings.TrimSpace(s.Label)
	if label == "" {
		return FoodItem{}, fmt.Errorf("%w: provider food %q has no label", ErrMissingSourceData, s.ID)
	}

	nutrients := emptyNutrients()
	for _, key := range sortedKeys(s.Nutrients) {
		n, err := ParseNutrient(key)
		if err != nil {
			continue
		}
		value := s.Nutrients[key]
		unit := strings.ToLower(strings.TrimSpace(value.Unit))
		if unit == "" {
			unit = n.DefaultUnit()
		}
		nutrients[n] = Quantity{Quantity: sanitize(value.Quantity), Unit: unit}
	}

	item := FoodItem{
		FoodID:          s.ID,
		Label:           label,
		Category:        CategoryFoodDatabase,
		Nutrients:       nutrients,
		ServingSize:     defaultProviderServingSize,
		ServingSizeUnit: UnitGram,
		ServingSizes:    append([]ServingOption{}, s.ServingSizes...),
		Image:           strings.TrimSpace(s.Image),
	}
	if size := sanitize(s.ServingSize); size > 0 {
		item.ServingSize = size
		item.ServingSizeUnit = NormalizeUnit(s.ServingSizeUnit)
	}
	return item, nil
}

func normalizeCustomFood(s CustomFood) (FoodItem, error) {
	name := strings.TrimSpace(s.Name)
	if name == "" {
		return FoodItem{}, fmt.Errorf("%w: custom food %q has no name", ErrMissingSourceData, s.ID)
	}

	size := sanitize(s.ServingSize)
	if size == 0 {
		size = defaultCustomServingSize
	}

	return FoodItem{
		FoodID:          s.ID,
		Label:           name,
		Category:        CategoryCustomFood,
		Nutrients:       nutrientsFromValues(s.NutritionValues, 1),
		ServingSize:     size,
		ServingSizeUnit: NormalizeUnit(s.ServingUnit),
		ServingSizes:    []ServingOption{},
	}, nil
}

func normalizeRecipe(s Recipe) (FoodItem, error) {
	name := strings.TrimSpace(s.Name)
	if name == "" {
		return FoodItem{}, fmt.Errorf("%w: recipe %q has no name", ErrMissingSourceData, s.ID)
	}

	nutrients := emptyNutrients()
	for n, value := range s.Nutrients {
		if !n.Valid() {
			continue
		}
		nutrients[n] = Quantity{Quantity: sanitize(value), Unit: n.DefaultUnit()}
	}

	return FoodItem{
		FoodID:          s.ID,
		Label:           name,
		Category:        CategoryRecipe,
		Nutrients:       nutrients,
		ServingSize:     defaultRecipeServingSize,
		ServingSizeUnit: UnitServing,
		ServingSizes:    []ServingOption{},
	}, nil
}

func normalizeLoggedEntry(s LoggedEntry) (FoodItem, error) {
	label := strings.TrimSpace(s.Name)
	if label == "" && s.CustomFood != nil {
		label = strings.TrimSpace(s.CustomFood.Name)
	}
	if label == "" && s.Recipe != nil {
		label = strings.TrimSpace(s.Recipe.Name)
	}
	if label == "" {
		return FoodItem{}, fmt.Errorf("%w: entry %q has no name", ErrMissingSourceData, s.ID)
	}

	size := sanitize(s.ServingSize)
	unit := NormalizeUnit(s.ServingUnit)

	// An ad hoc entry has no source, so FoodID stays empty.
	item := FoodItem{
		Label:           label,
		Category:        CategoryFoodDatabase,
		Nutrients:       emptyNutrients(),
		ServingSize:     size,
		ServingSizeUnit: unit,
		ServingSizes:    []ServingOption{},
		EntryID:         s.ID,
	}

	switch {
	case s.CustomFoodID != "":
		item.FoodID = s.CustomFoodID
		item.Category = CategoryCustomFood
		if cf := s.CustomFood; cf != nil {
			// The joined food describes its own serving; bring it to the
			// entry's serving before the entry's own values override it.
			base := sanitize(cf.ServingSize)
			if base > 0 && NormalizeUnit(cf.ServingUnit) == unit {
				item.Nutrients = nutrientsFromValues(cf.NutritionValues, size/base)
			}
		}
	case s.RecipeID != "":
		item.FoodID = s.RecipeID
		item.Category = CategoryRecipe
	case s.EdamamFoodID != "":
		item.FoodID = s.EdamamFoodID
	}

	item.Nutrients[Calories] = Quantity{Quantity: sanitize(s.Calories), Unit: Calories.DefaultUnit()}
	item.Nutrients[Protein] = Quantity{Quantity: sanitize(s.Protein), Unit: Protein.DefaultUnit()}
	item.Nutrients[AddedSugar] = Quantity{Quantity: sanitize(s.AddedSugar), Unit: AddedSugar.DefaultUnit()}
	return item, nil
}

func nutrientsFromValues(values map[string]Quantity, factor float64) Nutrients {
	nutrients := emptyNutrients()
	for _, key := range sortedKeys(values) {
		n, err := ParseNutrient(key)
		if err != nil {
			continue
		}
		value := values[key]
		unit := strings.TrimSpace(value.Unit)
		if unit == "" {
			unit = n.DefaultUnit()
		}
		nutrients[n] = Quantity{Quantity: sanitize(value.Quantity) * factor, Unit: unit}
	}
	return nutrients
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
