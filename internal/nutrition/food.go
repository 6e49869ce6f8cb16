package nutrition

// Category identifies which source a canonical item came from. It decides
// which reference column is populated when the item is logged.
type Category string

const (
	CategoryCustomFood   Category = "Custom Food"
	CategoryRecipe       Category = "Recipe"
	CategoryFoodDatabase Category = "Food Database"
)

// Quantity is a nutrient amount expressed in Unit.
type Quantity struct {
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
}

// Nutrients maps every tracked nutrient to its quantity for one serving size.
type Nutrients map[Nutrient]Quantity

// Clone returns an independent copy.
func (n Nutrients) Clone() Nutrients {
	out := make(Nutrients, len(n))
	for k, v := range n {
		out[k] = v
	}
	return out
}

// ServingOption is an alternative unit offered by a source, e.g. "Cup" = 240.
type ServingOption struct {
	Label    string  `json:"label"`
	Quantity float64 `json:"quantity"`
	URI      string  `json:"uri,omitempty"`
}

// FoodItem is the canonical nutrient-bearing representation every source is
// normalized into. All nutrient quantities refer to ServingSize/ServingSizeUnit.
type FoodItem struct {
	FoodID          string          `json:"foodId"`
	Label           string          `json:"label"`
	Category        Category        `json:"category"`
	Nutrients       Nutrients       `json:"nutrients"`
	ServingSize     float64         `json:"servingSize"`
	ServingSizeUnit string          `json:"servingSizeUnit"`
	ServingSizes    []ServingOption `json:"servingSizes"`
	Image           string          `json:"image,omitempty"`

	// EntryID is set when the item was reconstructed from a logged entry.
	EntryID string `json:"entryId,omitempty"`
}

// Value returns the quantity of n, or 0 when the item does not carry it.
func (f FoodItem) Value(n Nutrient) float64 {
	return f.Nutrients[n].Quantity
}

// Clone returns a deep copy so transitions never share maps or slices.
func (f FoodItem) Clone() FoodItem {
	out := f
	out.Nutrients = f.Nutrients.Clone()
	out.ServingSizes = append([]ServingOption(nil), f.ServingSizes...)
	if out.ServingSizes == nil {
		out.ServingSizes = []ServingOption{}
	}
	return out
}

// emptyNutrients returns every nutrient at zero in its default unit.
func emptyNutrients() Nutrients {
	out := make(Nutrients, nutrientCount)
	for _, n := range AllNutrients() {
		out[n] = Quantity{Quantity: 0, Unit: n.DefaultUnit()}
	}
	return out
}
