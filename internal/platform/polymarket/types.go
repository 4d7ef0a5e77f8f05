package polymarket

import (
	"encoding/json"
	"strconv"
	"strings"
)

// flexBool unmarshals from JSON bool or string ("true"/"false") so Gamma API
// responses work whether "active" is sent as bool or string.
type flexBool bool

func (f *flexBool) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*f = flexBool(b)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*f = flexBool(strings.EqualFold(s, "true") || s == "1")
	return nil
}

// APIMarket is the subset of a Gamma API market record the validation run
// consumes.
type APIMarket struct {
	ID       string   `json:"id"`
	Question string   `json:"question"`
	Slug     string   `json:"slug"`
	Active   flexBool `json:"active"`
	Closed   bool     `json:"closed"`
	// Outcomes and OutcomePrices are JSON-encoded string arrays, e.g.
	// "[\"Yes\",\"No\"]" and "[\"0.62\",\"0.38\"]".
	Outcomes       string  `json:"outcomes"`
	OutcomePrices  string  `json:"outcomePrices"`
	LastTradePrice float64 `json:"lastTradePrice"`
}

// ImpliedYesProbability derives the market's implied probability of the Yes
// outcome. It prefers the outcome-price leg labeled "Yes", falls back to the
// first outcome price, and finally to the last trade price. ok=false means
// the market carries no usable price and should be skipped.
func (m *APIMarket) ImpliedYesProbability() (float64, bool) {
	var outcomes, prices []string
	if json.Unmarshal([]byte(m.Outcomes), &outcomes) == nil &&
		json.Unmarshal([]byte(m.OutcomePrices), &prices) == nil {
		for i, outcome := range outcomes {
			if strings.EqualFold(outcome, "Yes") && i < len(prices) {
				if p, ok := parseProbability(prices[i]); ok {
					return p, true
				}
			}
		}
		if len(prices) > 0 {
			if p, ok := parseProbability(prices[0]); ok {
				return p, true
			}
		}
	}
	if m.LastTradePrice > 0 && m.LastTradePrice <= 1 {
		return m.LastTradePrice, true
	}
	return 0, false
}

func parseProbability(s string) (float64, bool) {
	p, err := strconv.ParseFloat(s, 64)
	if err != nil || p < 0 || p > 1 {
		return 0, false
	}
	return p, true
}
