package marketdata

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "options-collector/internal/errors"
	"options-collector/internal/models"
)

const chainFixture = `{
  "optionChain": {
    "result": [
      {
        "underlyingSymbol": "AAPL",
        "expirationDates": [1718928000, 1721606400],
        "quote": {"regularMarketPrice": 192.53},
        "options": [
          {
            "expirationDate": 1718928000,
            "calls": [
              {"contractSymbol": "AAPL240621C00190000", "strike": 190.0, "lastPrice": 5.4,
               "bid": 5.3, "ask": 5.5, "volume": 1200, "openInterest": 5400,
               "impliedVolatility": 0.2513, "expiration": 1718928000}
            ],
            "puts": [
              {"contractSymbol": "AAPL240621P00190000", "strike": 190.0, "lastPrice": 4.8,
               "bid": 4.7, "ask": 4.9, "volume": 900, "openInterest": 6100,
               "impliedVolatility": 0.2701, "expiration": 1718928000}
            ]
          }
        ]
      }
    ],
    "error": null
  }
}`

func newTestProvider(t *testing.T, handler http.HandlerFunc) *YahooProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	p := NewYahooProvider(zerolog.Nop())
	p.baseURL = server.URL
	return p
}

func TestYahooProvider_ListExpirations(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v7/finance/options/AAPL", r.URL.Path)
		fmt.Fprint(w, chainFixture)
	})

	expirations, err := p.ListExpirations(context.Background(), "AAPL")
	require.NoError(t, err)
	require.Len(t, expirations, 2)
	assert.Equal(t, time.Unix(1718928000, 0).UTC(), expirations[0])
	assert.True(t, expirations[0].Before(expirations[1]))
}

func TestYahooProvider_FetchChain(t *testing.T) {
	expiry := time.Unix(1718928000, 0).UTC()
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1718928000", r.URL.Query().Get("date"))
		fmt.Fprint(w, chainFixture)
	})

	chain, err := p.FetchChain(context.Background(), "AAPL", expiry)
	require.NoError(t, err)
	require.Len(t, chain.Calls, 1)
	require.Len(t, chain.Puts, 1)

	call := chain.Calls[0]
	assert.Equal(t, "AAPL240621C00190000", call.ContractSymbol)
	assert.Equal(t, models.KindCall, call.Kind)
	assert.Equal(t, 190.0, call.Strike)
	assert.Equal(t, int64(5400), call.OpenInterest)
	assert.InDelta(t, 0.2513, call.ImpliedVol, 1e-9)
	assert.Equal(t, expiry, call.Expiration)
	assert.Equal(t, models.KindPut, chain.Puts[0].Kind)
}

func TestYahooProvider_SpotPrice(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, chainFixture)
	})

	spot, err := p.SpotPrice(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.InDelta(t, 192.53, spot, 1e-9)
}

func TestYahooProvider_EmptyResult(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"optionChain": {"result": [], "error": null}}`)
	})

	expirations, err := p.ListExpirations(context.Background(), "ZZZZ")
	require.NoError(t, err)
	assert.Empty(t, expirations, "no expirations is a skip, not an error")

	_, err = p.SpotPrice(context.Background(), "ZZZZ")
	assert.ErrorIs(t, err, apperrors.ErrSpotUnavailable)
}

func TestYahooProvider_ErrorStatuses(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusNotFound, apperrors.ErrSymbolNotFound},
		{http.StatusTooManyRequests, apperrors.ErrRateLimited},
	}
	for _, tt := range tests {
		p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
		})
		_, err := p.ListExpirations(context.Background(), "AAPL")
		require.Error(t, err)
		assert.ErrorIs(t, err, tt.want)

		var dataErr *apperrors.DataError
		require.ErrorAs(t, err, &dataErr)
		assert.Equal(t, "AAPL", dataErr.Symbol)
	}
}

func TestYahooProvider_APIError(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"optionChain": {"result": [], "error": {"code": "Not Found", "description": "No data found"}}}`)
	})

	_, err := p.FetchChain(context.Background(), "AAPL", time.Now())
	var dataErr *apperrors.DataError
	require.ErrorAs(t, err, &dataErr)
}
