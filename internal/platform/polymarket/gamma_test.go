package polymarket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const marketsPage = `[
  {"id":"1","question":"Will the temperature in London exceed 59°F on March 3?",
   "active":true,"closed":false,
   "outcomes":"[\"Yes\",\"No\"]","outcomePrices":"[\"0.62\",\"0.38\"]"},
  {"id":"2","question":"Chicago high temp above 70F this week?",
   "active":"true","closed":false,
   "outcomes":"[\"Yes\",\"No\"]","outcomePrices":"[]","lastTradePrice":0.41},
  {"id":"3","question":"Will BTC close above $100k?",
   "active":true,"closed":false,
   "outcomes":"[\"Yes\",\"No\"]","outcomePrices":"[\"0.5\",\"0.5\"]"},
  {"id":"4","question":"New York temperature above 59F tomorrow?",
   "active":true,"closed":true,
   "outcomes":"[\"Yes\",\"No\"]","outcomePrices":"[\"0.9\",\"0.1\"]"},
  {"id":"5","question":"Miami temp above 80F?","active":true,"closed":false,
   "outcomes":"[\"Yes\",\"No\"]","outcomePrices":"[\"1.7\",\"-0.7\"]"}
]`

func TestListWeatherMarkets(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/markets", r.URL.Path)
		assert.Equal(t, "200", r.URL.Query().Get("limit"))
		w.Write([]byte(marketsPage))
	}))
	t.Cleanup(srv.Close)

	g := NewGammaClient(srv.URL, 0)
	quotes, err := g.ListWeatherMarkets(context.Background())
	require.NoError(t, err)

	// Non-weather, closed, and unpriceable markets are filtered out.
	require.Len(t, quotes, 2)
	assert.Equal(t, "Will the temperature in London exceed 59°F on March 3?", quotes[0].Question)
	assert.InDelta(t, 0.62, quotes[0].ImpliedProbability, 1e-9)
	assert.Equal(t, "Chicago high temp above 70F this week?", quotes[1].Question)
	assert.InDelta(t, 0.41, quotes[1].ImpliedProbability, 1e-9)
}

func TestListWeatherMarketsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	t.Cleanup(srv.Close)

	g := NewGammaClient(srv.URL, 50)
	quotes, err := g.ListWeatherMarkets(context.Background())
	require.NoError(t, err)
	assert.Empty(t, quotes)
}

func TestImpliedYesProbability(t *testing.T) {
	t.Run("prefers the Yes leg", func(t *testing.T) {
		m := APIMarket{
			Outcomes:      `["No","Yes"]`,
			OutcomePrices: `["0.3","0.7"]`,
		}
		p, ok := m.ImpliedYesProbability()
		require.True(t, ok)
		assert.InDelta(t, 0.7, p, 1e-9)
	})

	t.Run("falls back to the first price", func(t *testing.T) {
		m := APIMarket{
			Outcomes:      `["Up","Down"]`,
			OutcomePrices: `["0.55","0.45"]`,
		}
		p, ok := m.ImpliedYesProbability()
		require.True(t, ok)
		assert.InDelta(t, 0.55, p, 1e-9)
	})

	t.Run("falls back to the last trade", func(t *testing.T) {
		m := APIMarket{LastTradePrice: 0.33}
		p, ok := m.ImpliedYesProbability()
		require.True(t, ok)
		assert.InDelta(t, 0.33, p, 1e-9)
	})

	t.Run("unpriceable", func(t *testing.T) {
		m := APIMarket{Outcomes: `["Yes","No"]`, OutcomePrices: `["1.7","-0.7"]`}
		_, ok := m.ImpliedYesProbability()
		assert.False(t, ok)
	})
}
