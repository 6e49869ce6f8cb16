package usda

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sugarbeat/internal/nutrition"
	"sugarbeat/internal/provider"
)

const searchPayload = `{
  "totalHits": 1,
  "currentPage": 1,
  "foods": [{
    "fdcId": 2345678,
    "description": "CHOCOLATE MILK",
    "foodCategory": "Milk",
    "servingSize": 240,
    "servingSizeUnit": "MLT",
    "foodNutrients": [
      {"nutrientId": 1008, "nutrientName": "Energy", "unitName": "KCAL", "value": 83},
      {"nutrientId": 2000, "nutrientName": "Sugars, total", "unitName": "G", "value": 10.4},
      {"nutrientId": 1235, "nutrientName": "Sugars, added", "unitName": "G", "value": 5.42},
      {"nutrientId": 1093, "nutrientName": "Sodium, Na", "unitName": "MG", "value": 63},
      {"nutrientId": 1087, "nutrientName": "Calcium", "unitName": "MG", "value": 125}
    ]
  }]
}`

const detailPayload = `{
  "fdcId": 1750340,
  "description": "Apples, fuji, with skin, raw",
  "foodCategory": {"id": 9, "code": "0900", "description": "Fruits and Fruit Juices"},
  "foodNutrients": [
    {"nutrient": {"id": 1008, "name": "Energy", "unitName": "kcal"}, "amount": 63},
    {"nutrient": {"id": 1003, "name": "Protein", "unitName": "g"}, "amount": 0.15},
    {"nutrient": {"id": 1079, "name": "Fiber, total dietary", "unitName": "g"}, "amount": 2.1}
  ]
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{
		APIKey:  "demo",
		BaseURL: srv.URL,
		Limiter: provider.LimiterConfig{RequestsPerSecond: 1000, Burst: 10},
	})
}

func TestSearchKeepsPer100Nutrients(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/foods/search", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "demo", q.Get("api_key"))
		assert.Equal(t, "chocolate milk", q.Get("query"))
		assert.Equal(t, "50", q.Get("pageSize"))
		assert.Equal(t, "1", q.Get("pageNumber"))
		_, _ = w.Write([]byte(searchPayload))
	})

	foods, err := client.Search(context.Background(), "chocolate milk")
	require.NoError(t, err)
	require.Len(t, foods, 1)

	milk := foods[0]
	assert.Equal(t, "2345678", milk.ID)
	assert.Equal(t, "Milk", milk.Category)
	assert.Equal(t, 100.0, milk.ServingSize)
	assert.Equal(t, nutrition.UnitMilliliter, milk.ServingSizeUnit)
	assert.NotContains(t, milk.Nutrients, "1087")
	require.Len(t, milk.ServingSizes, 1)
	assert.Equal(t, 240.0, milk.ServingSizes[0].Quantity)
	assert.Equal(t, "Serving (240 ml)", milk.ServingSizes[0].Label)

	item, err := nutrition.Normalize(milk)
	require.NoError(t, err)
	assert.Equal(t, 83.0, item.Value(nutrition.Calories))
	assert.Equal(t, 5.42, item.Value(nutrition.AddedSugar))
	assert.Equal(t, 63.0, item.Value(nutrition.Sodium))
	assert.Equal(t, "mg", item.Nutrients[nutrition.Sodium].Unit)
	assert.Equal(t, 100.0, item.ServingSize)
}

func TestGetByIDDetailShape(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/food/1750340":
			_, _ = w.Write([]byte(detailPayload))
		default:
			http.NotFound(w, r)
		}
	})

	food, found, err := client.GetByID(context.Background(), "1750340")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Fruits and Fruit Juices", food.Category)
	assert.Equal(t, 2.1, food.Nutrients["1079"].Quantity)
	assert.Empty(t, food.ServingSizes)

	_, found, err = client.GetByID(context.Background(), "99")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestGetByIDRejectsNonNumericIDs(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request to %s", r.URL)
	})
	_, found, err := client.GetByID(context.Background(), "food_apple")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestServerErrorIsProviderError(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	_, _, err := client.GetByID(context.Background(), "1")
	var perr *provider.Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, http.StatusBadGateway, perr.StatusCode)
	assert.Equal(t, "lookup", perr.Op)
}

func TestMissingAPIKey(t *testing.T) {
	t.Parallel()

	_, err := NewClient(Config{}).Search(context.Background(), "apple")
	require.ErrorIs(t, err, provider.ErrMissingCredentials)
}
