package nutrition

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeProviderMapsKeysAndDefaults(t *testing.T) {
	t.Parallel()

	item, err := Normalize(ProviderFood{
		ID:    "food_apple",
		Label: "Apple",
		Nutrients: map[string]ProviderNutrient{
			"ENERC_KCAL": {Quantity: 52},
			"SUGAR":      {Quantity: 10.4, Unit: "g"},
			"PROCNT":     {Quantity: 0.3},
			"NA":         {Quantity: 1},
			"VITC":       {Quantity: 4.6, Unit: "mg"},
		},
		ServingSizes: []ServingOption{{Label: "Whole", Quantity: 182}},
		Image:        "https://example.com/apple.jpg",
	})
	require.NoError(t, err)

	assert.Equal(t, CategoryFoodDatabase, item.Category)
	assert.Equal(t, "food_apple", item.FoodID)
	assert.Equal(t, 100.0, item.ServingSize)
	assert.Equal(t, UnitGram, item.ServingSizeUnit)
	assert.Equal(t, Quantity{Quantity: 52, Unit: "kcal"}, item.Nutrients[Calories])
	assert.Equal(t, Quantity{Quantity: 10.4, Unit: "g"}, item.Nutrients[Sugar])
	assert.Equal(t, Quantity{Quantity: 1, Unit: "mg"}, item.Nutrients[Sodium])
	assert.Equal(t, Quantity{Quantity: 0, Unit: "g"}, item.Nutrients[AddedSugar])
	assert.Equal(t, Quantity{Quantity: 0, Unit: "g"}, item.Nutrients[Fiber])
	assert.Len(t, item.Nutrients, len(AllNutrients()))
	assert.Equal(t, []ServingOption{{Label: "Whole", Quantity: 182}}, item.ServingSizes)
	assert.Equal(t, "https://example.com/apple.jpg", item.Image)
}

func TestNormalizeProviderUsesServingHint(t *testing.T) {
	t.Parallel()

	item, err := Normalize(ProviderFood{ID: "1", Label: "Juice", ServingSize: 240, ServingSizeUnit: "MLT"})
	require.NoError(t, err)
	assert.Equal(t, 240.0, item.ServingSize)
	assert.Equal(t, UnitMilliliter, item.ServingSizeUnit)
	assert.NotNil(t, item.ServingSizes)
}

func TestNormalizeCustomFood(t *testing.T) {
	t.Parallel()

	item, err := Normalize(CustomFood{
		ID:   "7",
		Name: "Granola",
		NutritionValues: map[string]Quantity{
			"calories": {Quantity: 450, Unit: "kcal"},
			"SUGAR":    {Quantity: 20, Unit: "g"},
			"sodium":   {Quantity: 80},
		},
		ServingSize: 50,
		ServingUnit: "grams",
	})
	require.NoError(t, err)

	assert.Equal(t, CategoryCustomFood, item.Category)
	assert.Equal(t, 50.0, item.ServingSize)
	assert.Equal(t, UnitGram, item.ServingSizeUnit)
	assert.Empty(t, item.ServingSizes)
	assert.Equal(t, 20.0, item.Value(Sugar))
	assert.Equal(t, Quantity{Quantity: 80, Unit: "mg"}, item.Nutrients[Sodium])
	assert.Equal(t, 0.0, item.Value(Protein))
}

func TestNormalizeRecipeDefaults(t *testing.T) {
	t.Parallel()

	item, err := Normalize(Recipe{ID: "3", Name: "Pancakes", Nutrients: map[Nutrient]float64{Calories: 350}})
	require.NoError(t, err)

	assert.Equal(t, CategoryRecipe, item.Category)
	assert.Equal(t, 1.0, item.ServingSize)
	assert.Equal(t, UnitServing, item.ServingSizeUnit)
	assert.Equal(t, 350.0, item.Value(Calories))
	assert.Equal(t, 0.0, item.Value(AddedSugar))
}

func TestNormalizeLoggedEntryRescalesJoinedCustomFood(t *testing.T) {
	t.Parallel()

	item, err := Normalize(LoggedEntry{
		ID:           "11",
		CustomFoodID: "7",
		ServingSize:  25,
		ServingUnit:  "g",
		Calories:     112.5,
		Protein:      2,
		AddedSugar:   4,
		CustomFood: &CustomFood{
			ID:          "7",
			Name:        "Granola",
			ServingSize: 50,
			ServingUnit: "g",
			NutritionValues: map[string]Quantity{
				"calories": {Quantity: 225, Unit: "kcal"},
				"fat":      {Quantity: 10, Unit: "g"},
			},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "Granola", item.Label)
	assert.Equal(t, CategoryCustomFood, item.Category)
	assert.Equal(t, "7", item.FoodID)
	assert.Equal(t, "11", item.EntryID)
	assert.Equal(t, 25.0, item.ServingSize)
	assert.InDelta(t, 5.0, item.Value(Fat), 1e-9)
	assert.Equal(t, 112.5, item.Value(Calories))
	assert.Equal(t, 2.0, item.Value(Protein))
	assert.Equal(t, 4.0, item.Value(AddedSugar))
}

func TestNormalizeLoggedEntryReferences(t *testing.T) {
	t.Parallel()

	recipe, err := Normalize(LoggedEntry{ID: "1", RecipeID: "9", Recipe: &Recipe{ID: "9", Name: "Stew"}, ServingSize: 2, ServingUnit: "serving"})
	require.NoError(t, err)
	assert.Equal(t, CategoryRecipe, recipe.Category)
	assert.Equal(t, "9", recipe.FoodID)
	assert.Equal(t, "Stew", recipe.Label)

	external, err := Normalize(LoggedEntry{ID: "2", Name: "Banana", EdamamFoodID: "food_b", ServingSize: 118, ServingUnit: "g"})
	require.NoError(t, err)
	assert.Equal(t, CategoryFoodDatabase, external.Category)
	assert.Equal(t, "food_b", external.FoodID)

	adHoc, err := Normalize(LoggedEntry{ID: "3", Name: "Birthday Cake", ServingSize: 1, ServingUnit: "slice", Calories: 350})
	require.NoError(t, err)
	assert.Empty(t, adHoc.FoodID)
	assert.Equal(t, "3", adHoc.EntryID)
	assert.Equal(t, 350.0, adHoc.Value(Calories))
}

func TestNormalizeMissingName(t *testing.T) {
	t.Parallel()

	sources := []Source{
		ProviderFood{ID: "x", Label: "  "},
		CustomFood{ID: "x"},
		Recipe{ID: "x"},
		LoggedEntry{ID: "x"},
	}
	for _, src := range sources {
		_, err := Normalize(src)
		assert.Truef(t, errors.Is(err, ErrMissingSourceData), "source %T: got %v", src, err)
	}

	_, err := Normalize(nil)
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrMissingSourceData))
}

func TestParseNutrientAliases(t *testing.T) {
	t.Parallel()

	cases := map[string]Nutrient{
		"SUGAR":       Sugar,
		"sugar":       Sugar,
		"addedSugar":  AddedSugar,
		"SUGAR.added": AddedSugar,
		"added_sugar": AddedSugar,
		"ENERC_KCAL":  Calories,
		"1008":        Calories,
		"CHOCDF":      Carbs,
		"FIBTG":       Fiber,
	}
	for key, want := range cases {
		got, err := ParseNutrient(key)
		require.NoErrorf(t, err, "key %q", key)
		assert.Equalf(t, want, got, "key %q", key)
	}

	_, err := ParseNutrient("VITC")
	assert.Error(t, err)
}

func TestNutrientsJSONUsesKeys(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(Nutrients{AddedSugar: {Quantity: 3, Unit: "g"}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"addedSugar":{"quantity":3,"unit":"g"}}`, string(data))

	var decoded Nutrients
	require.NoError(t, json.Unmarshal([]byte(`{"SUGAR":{"quantity":5,"unit":"g"}}`), &decoded))
	assert.Equal(t, Quantity{Quantity: 5, Unit: "g"}, decoded[Sugar])
}

func TestParseQuantity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want float64
	}{
		{"", 0},
		{"abc", 0},
		{"-4", 0},
		{"NaN", 0},
		{"Inf", 0},
		{"1.", 1},
		{" 2.5 ", 2.5},
	}
	for _, tt := range tests {
		assert.Equalf(t, tt.want, ParseQuantity(tt.in), "ParseQuantity(%q)", tt.in)
	}
}

func TestNormalizeUnit(t *testing.T) {
	t.Parallel()

	assert.Equal(t, UnitGram, NormalizeUnit(""))
	assert.Equal(t, UnitTablespoon, NormalizeUnit("Tablespoon"))
	assert.Equal(t, UnitOunce, NormalizeUnit("OZ"))
	assert.Equal(t, "slice", NormalizeUnit(" Slice "))
	assert.True(t, KnownUnit("cups"))
	assert.False(t, KnownUnit("slice"))
}

func TestCloneIsIndependent(t *testing.T) {
	t.Parallel()

	item, err := Normalize(CustomFood{ID: "1", Name: "Oats", NutritionValues: map[string]Quantity{"protein": {Quantity: 5, Unit: "g"}}})
	require.NoError(t, err)

	clone := item.Clone()
	clone.Nutrients[Protein] = Quantity{Quantity: 99, Unit: "g"}
	assert.Equal(t, 5.0, item.Value(Protein))
}
