// Package edamam queries the Edamam Food Database API.
package edamam

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	applog "sugarbeat/internal/log"
	"sugarbeat/internal/nutrition"
	"sugarbeat/internal/provider"
)

const (
	// Name is reported in provider errors.
	Name           = "edamam"
	defaultBaseURL = "https://api.edamam.com/api/food-database/v2"
	gramMeasureURI = "http://www.edamam.com/ontologies/edamam.owl#Measure_gram"
	lookupQuantity = 100
)

// Config describes how the client should be initialised.
type Config struct {
	AppID      string
	AppKey     string
	BaseURL    string
	Timeout    time.Duration
	Limiter    provider.LimiterConfig
	HTTPClient *http.Client
}

// Client is a rate-limited Edamam client, safe for concurrent use.
type Client struct {
	appID      string
	appKey     string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

var _ provider.Provider = (*Client)(nil)

// NewClient builds a Client. Missing credentials are reported by the first
// call rather than here.
func NewClient(cfg Config) *Client {
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = provider.DefaultTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		appID:      strings.TrimSpace(cfg.AppID),
		appKey:     strings.TrimSpace(cfg.AppKey),
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		limiter:    provider.NewLimiter(cfg.Limiter),
	}
}

func (c *Client) Name() string { return Name }

type parserResponse struct {
	Hints []struct {
		Food food `json:"food"`
	} `json:"hints"`
}

type food struct {
	FoodID       string             `json:"foodId"`
	Label        string             `json:"label"`
	Category     string             `json:"category"`
	Nutrients    map[string]float64 `json:"nutrients"`
	Image        string             `json:"image"`
	ServingSizes []struct {
		URI      string  `json:"uri"`
		Label    string  `json:"label"`
		Quantity float64 `json:"quantity"`
	} `json:"servingSizes"`
}

// Search calls the parser endpoint. Nutrients are reported per 100 g.
func (c *Client) Search(ctx context.Context, query string) ([]nutrition.ProviderFood, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []nutrition.ProviderFood{}, nil
	}
	if err := c.ready(ctx, "search"); err != nil {
		return nil, err
	}

	params := c.credentials()
	params.Set("ingr", query)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/parser?"+params.Encode(), nil)
	if err != nil {
		return nil, provider.Wrap(Name, "search", 0, fmt.Errorf("build request: %w", err))
	}

	var parsed parserResponse
	status, err := c.do(req, &parsed)
	if err != nil {
		return nil, provider.Wrap(Name, "search", status, err)
	}

	results := make([]nutrition.ProviderFood, 0, len(parsed.Hints))
	seen := make(map[string]struct{}, len(parsed.Hints))
	for _, hint := range parsed.Hints {
		if _, dup := seen[hint.Food.FoodID]; dup {
			continue
		}
		seen[hint.Food.FoodID] = struct{}{}
		results = append(results, hint.Food.toProviderFood())
	}
	applog.Debug(ctx, "edamam search completed", "query", query, "results", len(results))
	return results, nil
}

type nutrientsRequest struct {
	Ingredients []ingredient `json:"ingredients"`
}

type ingredient struct {
	Quantity   float64 `json:"quantity"`
	MeasureURI string  `json:"measureURI"`
	FoodID     string  `json:"foodId"`
}

type nutrientsResponse struct {
	TotalNutrients map[string]struct {
		Label    string  `json:"label"`
		Quantity float64 `json:"quantity"`
		Unit     string  `json:"unit"`
	} `json:"totalNutrients"`
	Ingredients []struct {
		Parsed []struct {
			Food         string `json:"food"`
			FoodID       string `json:"foodId"`
			FoodCategory string `json:"foodCategory"`
			Image        string `json:"image"`
		} `json:"parsed"`
	} `json:"ingredients"`
}

// GetByID asks the nutrients endpoint for 100 g of the food.
func (c *Client) GetByID(ctx context.Context, id string) (nutrition.ProviderFood, bool, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nutrition.ProviderFood{}, false, nil
	}
	if err := c.ready(ctx, "lookup"); err != nil {
		return nutrition.ProviderFood{}, false, err
	}

	body, err := json.Marshal(nutrientsRequest{Ingredients: []ingredient{{
		Quantity:   lookupQuantity,
		MeasureURI: gramMeasureURI,
		FoodID:     id,
	}}})
	if err != nil {
		return nutrition.ProviderFood{}, false, provider.Wrap(Name, "lookup", 0, fmt.Errorf("encode request: %w", err))
	}

	endpoint := c.baseURL + "/nutrients?" + c.credentials().Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nutrition.ProviderFood{}, false, provider.Wrap(Name, "lookup", 0, fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	var parsed nutrientsResponse
	status, err := c.do(req, &parsed)
	if status == http.StatusNotFound {
		applog.Debug(ctx, "edamam food not found", "food_id", id)
		return nutrition.ProviderFood{}, false, nil
	}
	if err != nil {
		return nutrition.ProviderFood{}, false, provider.Wrap(Name, "lookup", status, err)
	}
	if len(parsed.Ingredients) == 0 || len(parsed.Ingredients[0].Parsed) == 0 {
		return nutrition.ProviderFood{}, false, nil
	}

	match := parsed.Ingredients[0].Parsed[0]
	out := nutrition.ProviderFood{
		ID:              id,
		Label:           match.Food,
		Category:        match.FoodCategory,
		Nutrients:       make(map[string]nutrition.ProviderNutrient, len(parsed.TotalNutrients)),
		ServingSize:     lookupQuantity,
		ServingSizeUnit: nutrition.UnitGram,
		Image:           match.Image,
	}
	for code, n := range parsed.TotalNutrients {
		out.Nutrients[code] = nutrition.ProviderNutrient{Quantity: n.Quantity, Unit: n.Unit}
	}
	return out, true, nil
}

func (f food) toProviderFood() nutrition.ProviderFood {
	out := nutrition.ProviderFood{
		ID:              f.FoodID,
		Label:           f.Label,
		Category:        f.Category,
		Nutrients:       make(map[string]nutrition.ProviderNutrient, len(f.Nutrients)),
		ServingSize:     lookupQuantity,
		ServingSizeUnit: nutrition.UnitGram,
		Image:           f.Image,
	}
	for code, quantity := range f.Nutrients {
		n, err := nutrition.ParseNutrient(code)
		if err != nil {
			continue
		}
		out.Nutrients[code] = nutrition.ProviderNutrient{Quantity: quantity, Unit: n.DefaultUnit()}
	}
	for _, size := range f.ServingSizes {
		out.ServingSizes = append(out.ServingSizes, nutrition.ServingOption{
			Label:    size.Label,
			Quantity: size.Quantity,
			URI:      size.URI,
		})
	}
	return out
}

func (c *Client) ready(ctx context.Context, op string) error {
	if c.appID == "" || c.appKey == "" {
		return provider.Wrap(Name, op, 0, provider.ErrMissingCredentials)
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return provider.Wrap(Name, op, 0, fmt.Errorf("rate limit: %w", err))
	}
	return nil
}

func (c *Client) credentials() url.Values {
	params := url.Values{}
	params.Set("app_id", c.appID)
	params.Set("app_key", c.appKey)
	return params
}

// do sends req and decodes a 200 response into out. The status code is
// returned whenever a response was received.
func (c *Client) do(req *http.Request, out any) (int, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("call api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return resp.StatusCode, fmt.Errorf("unexpected status %s: %s", resp.Status, strings.TrimSpace(string(snippet)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return resp.StatusCode, errors.New("empty response body")
		}
		return resp.StatusCode, fmt.Errorf("decode response: %w", err)
	}
	return resp.StatusCode, nil
}
