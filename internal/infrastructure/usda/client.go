// Package usda is a small client for the USDA FoodData Central search API
package usda

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/alchemorsel/cookbook/internal/domain/ingredient"
	"github.com/alchemorsel/cookbook/internal/infrastructure/config"
	"github.com/alchemorsel/cookbook/internal/ports/outbound"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

const defaultBaseURL = "https://api.nal.usda.gov/fdc/v1"

// Search prefers the curated data types over branded products
var preferredDataTypes = []string{"Foundation", "SR Legacy", "Survey (FNDDS)"}

// FoodData Central nutrient ids. Energy has an Atwater variant on
// Foundation foods that is used when the classic id is absent.
const (
	nutrientEnergy        = 1008
	nutrientEnergyAtwater = 2047
	nutrientProtein       = 1003
	nutrientFat           = 1004
	nutrientCarbohydrate  = 1005
	nutrientFiber         = 1079
	nutrientSugars        = 2000
	nutrientSugarsNLEA    = 1063
	nutrientSodium        = 1093
)

// Client implements outbound.USDAClient
type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

var _ outbound.USDAClient = (*Client)(nil)

// NewClient creates a client; without an API key SearchFood returns
// outbound.ErrNotConfigured
func NewClient(cfg config.USDAConfig, logger *zap.Logger) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	httpClient := &http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
	return &Client{
		apiKey:  cfg.APIKey,
		baseURL: baseURL,
		client:  httpClient,
		logger:  logger.Named("usda"),
	}
}

type searchResponse struct {
	TotalHits int    `json:"totalHits"`
	Foods     []food `json:"foods"`
}

type food struct {
	FdcID         int64          `json:"fdcId"`
	Description   string         `json:"description"`
	DataType      string         `json:"dataType"`
	FoodNutrients []foodNutrient `json:"foodNutrients"`
}

type foodNutrient struct {
	NutrientID int     `json:"nutrientId"`
	UnitName   string  `json:"unitName"`
	Value      float64 `json:"value"`
}

// SearchFood returns the best match for query, or outbound.ErrNoMatch
func (c *Client) SearchFood(ctx context.Context, query string) (*ingredient.USDAMatch, error) {
	if c.apiKey == "" {
		return nil, outbound.ErrNotConfigured
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, outbound.ErrNoMatch
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("pageSize", "5")
	params.Set("dataType", strings.Join(preferredDataTypes, ","))
	params.Set("api_key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/foods/search?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("usda request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("usda API error %d", resp.StatusCode)
	}

	var result searchResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4<<20)).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode usda response: %w", err)
	}

	c.logger.Debug("USDA search completed",
		zap.String("query", query),
		zap.Int("hits", result.TotalHits),
		zap.Duration("duration", time.Since(start)),
	)

	best, ok := bestMatch(result.Foods)
	if !ok {
		return nil, outbound.ErrNoMatch
	}
	return &ingredient.USDAMatch{
		FdcID:       best.FdcID,
		Description: best.Description,
		DataType:    best.DataType,
		Nutrition:   toNutrition(best.FoodNutrients),
	}, nil
}

// bestMatch picks the first food of the most preferred data type that
// carries at least one nutrient we know
func bestMatch(foods []food) (food, bool) {
	for _, dataType := range preferredDataTypes {
		for _, f := range foods {
			if strings.EqualFold(f.DataType, dataType) && !toNutrition(f.FoodNutrients).IsEmpty() {
				return f, true
			}
		}
	}
	for _, f := range foods {
		if f.FdcID != 0 && !toNutrition(f.FoodNutrients).IsEmpty() {
			return f, true
		}
	}
	return food{}, false
}

func toNutrition(nutrients []foodNutrient) ingredient.Nutrition {
	byID := make(map[int]foodNutrient, len(nutrients))
	for _, n := range nutrients {
		if n.Value < 0 {
			continue
		}
		byID[n.NutrientID] = n
	}

	pick := func(ids ...int) *float64 {
		for _, id := range ids {
			if n, ok := byID[id]; ok {
				v := n.Value
				if id == nutrientEnergy && strings.EqualFold(n.UnitName, "kJ") {
					v = v / 4.184
				}
				return &v
			}
		}
		return nil
	}

	return ingredient.Nutrition{
		Calories:      pick(nutrientEnergy, nutrientEnergyAtwater),
		Protein:       pick(nutrientProtein),
		Carbohydrates: pick(nutrientCarbohydrate),
		Fat:           pick(nutrientFat),
		Fiber:         pick(nutrientFiber),
		Sugar:         pick(nutrientSugars, nutrientSugarsNLEA),
		Sodium:        pick(nutrientSodium),
	}
}
