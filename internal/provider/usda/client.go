// Package usda queries the USDA FoodData Central API.
package usda

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	applog "sugarbeat/internal/log"
	"sugarbeat/internal/nutrition"
	"sugarbeat/internal/provider"
)

const (
	// Name is reported in provider errors.
	Name            = "usda"
	defaultBaseURL  = "https://api.nal.usda.gov/fdc/v1"
	defaultPageSize = 50
	// FoodData Central reports nutrients per 100 g or 100 ml.
	referenceAmount = 100
)

// Config describes how the client should be initialised.
type Config struct {
	APIKey     string
	BaseURL    string
	PageSize   int
	Timeout    time.Duration
	Limiter    provider.LimiterConfig
	HTTPClient *http.Client
}

// Client is a rate-limited FoodData Central client, safe for concurrent use.
type Client struct {
	apiKey     string
	baseURL    string
	pageSize   int
	httpClient *http.Client
	limiter    *rate.Limiter
}

var _ provider.Provider = (*Client)(nil)

// NewClient builds a Client. A missing API key is reported by the first call.
func NewClient(cfg Config) *Client {
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
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
		apiKey:     strings.TrimSpace(cfg.APIKey),
		baseURL:    strings.TrimRight(baseURL, "/"),
		pageSize:   pageSize,
		httpClient: httpClient,
		limiter:    provider.NewLimiter(cfg.Limiter),
	}
}

func (c *Client) Name() string { return Name }

type searchResponse struct {
	TotalHits int    `json:"totalHits"`
	Foods     []food `json:"foods"`
}

// food covers both the abridged search shape and the full detail shape.
type food struct {
	FdcID           int             `json:"fdcId"`
	Description     string          `json:"description"`
	BrandName       string          `json:"brandName"`
	FoodCategory    json.RawMessage `json:"foodCategory"`
	ServingSize     float64         `json:"servingSize"`
	ServingSizeUnit string          `json:"servingSizeUnit"`
	FoodNutrients   []foodNutrient  `json:"foodNutrients"`
}

type foodNutrient struct {
	// Search results.
	NutrientID int     `json:"nutrientId"`
	UnitName   string  `json:"unitName"`
	Value      float64 `json:"value"`

	// Food details.
	Nutrient *struct {
		ID       int    `json:"id"`
		UnitName string `json:"unitName"`
	} `json:"nutrient"`
	Amount float64 `json:"amount"`
}

// Search runs a foods/search query and returns the first page.
func (c *Client) Search(ctx context.Context, query string) ([]nutrition.ProviderFood, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []nutrition.ProviderFood{}, nil
	}
	if err := c.ready(ctx, "search"); err != nil {
		return nil, err
	}

	params := c.credentials()
	params.Set("query", query)
	params.Set("pageSize", strconv.Itoa(c.pageSize))
	params.Set("pageNumber", "1")

	var parsed searchResponse
	status, err := c.get(ctx, "/foods/search?"+params.Encode(), &parsed)
	if err != nil {
		return nil, provider.Wrap(Name, "search", status, err)
	}

	results := make([]nutrition.ProviderFood, 0, len(parsed.Foods))
	for _, f := range parsed.Foods {
		results = append(results, f.toProviderFood())
	}
	applog.Debug(ctx, "usda search completed", "query", query, "results", len(results), "total_hits", parsed.TotalHits)
	return results, nil
}

// GetByID fetches /food/{fdcId}. Ids that are not FDC numbers are unknown.
func (c *Client) GetByID(ctx context.Context, id string) (nutrition.ProviderFood, bool, error) {
	fdcID, err := strconv.Atoi(strings.TrimSpace(id))
	if err != nil || fdcID <= 0 {
		return nutrition.ProviderFood{}, false, nil
	}
	if err := c.ready(ctx, "lookup"); err != nil {
		return nutrition.ProviderFood{}, false, err
	}

	var parsed food
	status, err := c.get(ctx, "/food/"+strconv.Itoa(fdcID)+"?"+c.credentials().Encode(), &parsed)
	if status == http.StatusNotFound {
		applog.Debug(ctx, "usda food not found", "fdc_id", fdcID)
		return nutrition.ProviderFood{}, false, nil
	}
	if err != nil {
		return nutrition.ProviderFood{}, false, provider.Wrap(Name, "lookup", status, err)
	}
	return parsed.toProviderFood(), true, nil
}

func (f food) toProviderFood() nutrition.ProviderFood {
	out := nutrition.ProviderFood{
		ID:              strconv.Itoa(f.FdcID),
		Label:           strings.TrimSpace(f.Description),
		Category:        f.category(),
		Nutrients:       make(map[string]nutrition.ProviderNutrient, len(f.FoodNutrients)),
		ServingSize:     referenceAmount,
		ServingSizeUnit: nutrition.UnitGram,
	}

	for _, fn := range f.FoodNutrients {
		id, unit, value := fn.NutrientID, fn.UnitName, fn.Value
		if fn.Nutrient != nil {
			id, unit, value = fn.Nutrient.ID, fn.Nutrient.UnitName, fn.Amount
		}
		key := strconv.Itoa(id)
		if _, err := nutrition.ParseNutrient(key); err != nil {
			continue
		}
		out.Nutrients[key] = nutrition.ProviderNutrient{Quantity: value, Unit: strings.ToLower(unit)}
	}

	// The label serving is offered as an option; nutrients stay per 100 units.
	if f.ServingSize > 0 {
		unit := nutrition.NormalizeUnit(f.ServingSizeUnit)
		if unit == nutrition.UnitMilliliter {
			out.ServingSizeUnit = nutrition.UnitMilliliter
		}
		out.ServingSizes = append(out.ServingSizes, nutrition.ServingOption{
			Label:    fmt.Sprintf("Serving (%s %s)", strconv.FormatFloat(f.ServingSize, 'f', -1, 64), unit),
			Quantity: f.ServingSize,
		})
	}
	return out
}

// category reads foodCategory, a string in search results and an object in
// food details.
func (f food) category() string {
	if len(f.FoodCategory) == 0 {
		return ""
	}
	var name string
	if err := json.Unmarshal(f.FoodCategory, &name); err == nil {
		return name
	}
	var obj struct {
		Description string `json:"description"`
	}
	if err := json.Unmarshal(f.FoodCategory, &obj); err == nil {
		return obj.Description
	}
	return ""
}

func (c *Client) ready(ctx context.Context, op string) error {
	if c.apiKey == "" {
		return provider.Wrap(Name, op, 0, provider.ErrMissingCredentials)
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return provider.Wrap(Name, op, 0, fmt.Errorf("rate limit: %w", err))
	}
	return nil
}

func (c *Client) credentials() url.Values {
	params := url.Values{}
	params.Set("api_key", c.apiKey)
	return params
}

func (c *Client) get(ctx context.Context, path string, out any) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

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
