package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"sugarbeat/internal/db"
	"sugarbeat/internal/handlers"
	"sugarbeat/internal/nutrition"
)

type stubProvider struct{}

func (stubProvider) Name() string { return "stub" }

func (stubProvider) Search(context.Context, string) ([]nutrition.ProviderFood, error) {
	return []nutrition.ProviderFood{{
		ID:        "food_apple",
		Label:     "Apple",
		Nutrients: map[string]nutrition.ProviderNutrient{"SUGAR": {Quantity: 10, Unit: "g"}},
	}}, nil
}

func (stubProvider) GetByID(context.Context, string) (nutrition.ProviderFood, bool, error) {
	return nutrition.ProviderFood{}, false, nil
}

func openTestDatabase(t *testing.T) *gorm.DB {
	t.Helper()
	database, err := gorm.Open(sqlite.Open("file:server_"+t.Name()+"?mode=memory&cache=shared"), db.GormConfig(logger.Silent))
	if err != nil {
		t.Fatalf("failed to open sqlite database: %v", err)
	}
	sqlDB, err := database.DB()
	if err != nil {
		t.Fatalf("failed to access sql database: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	if err := db.AutoMigrate(database); err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}
	return database
}

func TestNewAppliesSessionDefaults(t *testing.T) {
	cfg := Config{Addr: ":8080", Session: SessionConfig{CookieSecure: true}, Database: openTestDatabase(t), Provider: stubProvider{}}
	srv, err := New(cfg)
	if err != nil {
		t.Fatalf("New() returned error: %v", err)
	}
	t.Cleanup(func() {
		handlers.Configure(nil, nil)
	})

	if srv.httpServer.Addr != ":8080" {
		t.Fatalf("expected server addr :8080, got %q", srv.httpServer.Addr)
	}

	body, _ := json.Marshal(map[string]string{"email": "user@example.com", "password": "password123"})
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/signup", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	srv.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201 after signup, got %d: %s", rr.Code, rr.Body.String())
	}
	cookies := rr.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("expected session cookie to be set")
	}
	if cookies[0].Name != "sugarbeat_session" {
		t.Fatalf("expected default session cookie name, got %q", cookies[0].Name)
	}
	if !cookies[0].Secure {
		t.Fatal("expected cookie secure flag to be true")
	}
	if rr.Header().Get(requestIDHeader) == "" {
		t.Fatal("expected request id header")
	}

	rr = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/foods/search?q=apple", nil)
	req.AddCookie(cookies[0])
	srv.Handler().ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected authenticated search to succeed, got %d: %s", rr.Code, rr.Body.String())
	}
	var items []nutrition.FoodItem
	if err := json.Unmarshal(rr.Body.Bytes(), &items); err != nil {
		t.Fatalf("failed to decode search results: %v", err)
	}
	if len(items) != 1 || items[0].Label != "Apple" {
		t.Fatalf("unexpected search results %+v", items)
	}
}

func TestEditorStateSurvivesRequests(t *testing.T) {
	srv, err := New(Config{Addr: ":0", Database: openTestDatabase(t), Provider: stubProvider{}})
	if err != nil {
		t.Fatalf("New() returned error: %v", err)
	}
	t.Cleanup(func() { handlers.Configure(nil, nil) })

	do := func(method, path string, payload any, cookie *http.Cookie) *httptest.ResponseRecorder {
		var body bytes.Buffer
		if payload != nil {
			if err := json.NewEncoder(&body).Encode(payload); err != nil {
				t.Fatalf("encode: %v", err)
			}
		}
		req := httptest.NewRequest(method, path, &body)
		if cookie != nil {
			req.AddCookie(cookie)
		}
		rr := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rr, req)
		return rr
	}

	rr := do(http.MethodPost, "/signup", map[string]string{"email": "cook@example.com", "password": "password123"}, nil)
	if rr.Code != http.StatusCreated {
		t.Fatalf("signup failed: %d", rr.Code)
	}
	cookie := rr.Result().Cookies()[0]

	rr = do(http.MethodPost, "/api/custom-foods", map[string]any{
		"name":             "Jam",
		"serving_size":     20,
		"serving_unit":     "g",
		"nutrition_values": map[string]any{"addedSugar": map[string]any{"quantity": 10, "unit": "g"}},
	}, cookie)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create custom food failed: %d %s", rr.Code, rr.Body.String())
	}
	var food struct {
		ID uint `json:"id"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &food); err != nil {
		t.Fatalf("decode: %v", err)
	}

	rr = do(http.MethodPost, "/api/editor", map[string]any{"kind": "custom", "id": fmt.Sprint(food.ID)}, cookie)
	if rr.Code != http.StatusCreated {
		t.Fatalf("begin editor failed: %d %s", rr.Code, rr.Body.String())
	}
	if rr = do(http.MethodPut, "/api/editor/serving", map[string]string{"text": "40"}, cookie); rr.Code != http.StatusOK {
		t.Fatalf("type serving failed: %d", rr.Code)
	}
	rr = do(http.MethodPost, "/api/editor/save", nil, cookie)
	if rr.Code != http.StatusCreated {
		t.Fatalf("save failed: %d %s", rr.Code, rr.Body.String())
	}
	var entry struct {
		AddedSugar  float64 `json:"added_sugar"`
		ServingSize float64 `json:"serving_size"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &entry); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if entry.ServingSize != 40 || entry.AddedSugar != 20 {
		t.Fatalf("expected doubled serving, got %+v", entry)
	}
}

func TestServerHandlerWithoutDatabase(t *testing.T) {
	srv, err := New(Config{Addr: ":9090"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() {
		handlers.Configure(nil, nil)
	})

	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected /healthz to return 200, got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader([]byte(`{}`))))
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected login to be unavailable without a database, got %d", rr.Code)
	}
}
