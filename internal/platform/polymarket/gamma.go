// Package polymarket implements the market provider against the Polymarket
// Gamma API, which serves market discovery and metadata.
package polymarket

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/nagavaishak/Celsius/internal/domain"
)

// defaultListLimit bounds a single market page when the caller does not.
const defaultListLimit = 200

// weatherTerms identify temperature markets by their question text.
var weatherTerms = []string{"temperature", "temp", "°f", "°c"}

// GammaClient is the REST client for the Gamma API. It satisfies
// domain.MarketLister.
type GammaClient struct {
	baseURL    string
	limit      int
	httpClient *http.Client
}

// NewGammaClient creates a Gamma API client. baseURL is the API root, e.g.
// "https://gamma-api.polymarket.com". limit caps the markets fetched per
// listing; values <= 0 use the default.
func NewGammaClient(baseURL string, limit int) *GammaClient {
	if limit <= 0 {
		limit = defaultListLimit
	}
	return &GammaClient{
		baseURL: baseURL,
		limit:   limit,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// ListWeatherMarkets returns the open temperature markets currently listed,
// as quote candidates carrying the raw question text and the implied Yes
// probability. Markets without a resolvable price are skipped; an empty
// result is an ordinary outcome.
func (g *GammaClient) ListWeatherMarkets(ctx context.Context) ([]domain.MarketQuote, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(g.limit))
	params.Set("offset", "0")

	body, err := g.doGet(ctx, "/markets?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("polymarket/gamma: list markets: %w", err)
	}

	var apiMarkets []APIMarket
	if err := json.Unmarshal(body, &apiMarkets); err != nil {
		return nil, fmt.Errorf("polymarket/gamma: decode markets: %w", err)
	}

	var quotes []domain.MarketQuote
	for i := range apiMarkets {
		m := &apiMarkets[i]
		if m.Closed || !bool(m.Active) {
			continue
		}
		if !isWeatherQuestion(m.Question) {
			continue
		}
		prob, ok := m.ImpliedYesProbability()
		if !ok {
			continue
		}
		quotes = append(quotes, domain.MarketQuote{
			ImpliedProbability: prob,
			Question:           m.Question,
		})
	}
	return quotes, nil
}

func isWeatherQuestion(question string) bool {
	q := strings.ToLower(question)
	for _, term := range weatherTerms {
		if strings.Contains(q, term) {
			return true
		}
	}
	return false
}

// doGet sends an unauthenticated GET request to the Gamma API.
func (g *GammaClient) doGet(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if len(body) > 256 {
			body = body[:256]
		}
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, body)
	}
	return body, nil
}
