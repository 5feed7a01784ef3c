package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	apperrors "options-collector/internal/errors"
	"options-collector/internal/models"
)

const defaultYahooBaseURL = "https://query1.finance.yahoo.com"

// YahooProvider fetches option chains from the Yahoo Finance options
// endpoint. It carries no credentials; the endpoint rate-limits aggressively,
// which is why the collector paces requests between expirations.
type YahooProvider struct {
	baseURL string
	client  *http.Client
	logger  zerolog.Logger
}

// NewYahooProvider creates a Yahoo-backed provider.
func NewYahooProvider(logger zerolog.Logger) *YahooProvider {
	return &YahooProvider{
		baseURL: defaultYahooBaseURL,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

// yahooOptionQuote mirrors one contract in the options payload.
type yahooOptionQuote struct {
	ContractSymbol    string  `json:"contractSymbol"`
	Strike            float64 `json:"strike"`
	LastPrice         float64 `json:"lastPrice"`
	Bid               float64 `json:"bid"`
	Ask               float64 `json:"ask"`
	Volume            int64   `json:"volume"`
	OpenInterest      int64   `json:"openInterest"`
	ImpliedVolatility float64 `json:"impliedVolatility"`
	Expiration        int64   `json:"expiration"`
}

// yahooOptionsResponse mirrors the optionChain envelope of the endpoint.
type yahooOptionsResponse struct {
	OptionChain struct {
		Result []struct {
			UnderlyingSymbol string  `json:"underlyingSymbol"`
			ExpirationDates  []int64 `json:"expirationDates"`
			Quote            struct {
				RegularMarketPrice float64 `json:"regularMarketPrice"`
			} `json:"quote"`
			Options []struct {
				ExpirationDate int64              `json:"expirationDate"`
				Calls          []yahooOptionQuote `json:"calls"`
				Puts           []yahooOptionQuote `json:"puts"`
			} `json:"options"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"optionChain"`
}

func (p *YahooProvider) fetch(ctx context.Context, symbol string, expiry *time.Time) (*yahooOptionsResponse, error) {
	endpoint := fmt.Sprintf("%s/v7/finance/options/%s", p.baseURL, url.PathEscape(symbol))
	if expiry != nil {
		endpoint += fmt.Sprintf("?date=%d", expiry.Unix())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, apperrors.NewDataError("request", symbol, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "options-collector/1.0")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, apperrors.NewDataError("fetch", symbol, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, apperrors.NewDataError("fetch", symbol, apperrors.ErrSymbolNotFound)
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, apperrors.NewDataError("fetch", symbol, apperrors.ErrRateLimited)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, apperrors.NewDataError("fetch", symbol,
			fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var payload yahooOptionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, apperrors.NewDataError("decode", symbol, err)
	}
	if e := payload.OptionChain.Error; e != nil {
		return nil, apperrors.NewDataError("fetch", symbol,
			fmt.Errorf("%s: %s", e.Code, e.Description))
	}

	return &payload, nil
}

// ListExpirations implements Provider.
func (p *YahooProvider) ListExpirations(ctx context.Context, symbol string) ([]time.Time, error) {
	payload, err := p.fetch(ctx, symbol, nil)
	if err != nil {
		return nil, err
	}
	if len(payload.OptionChain.Result) == 0 {
		return nil, nil
	}

	stamps := payload.OptionChain.Result[0].ExpirationDates
	expirations := make([]time.Time, 0, len(stamps))
	for _, ts := range stamps {
		expirations = append(expirations, time.Unix(ts, 0).UTC())
	}
	p.logger.Debug().Str("symbol", symbol).Int("expirations", len(expirations)).Msg("listed expirations")
	return expirations, nil
}

// FetchChain implements Provider.
func (p *YahooProvider) FetchChain(ctx context.Context, symbol string, expiry time.Time) (*models.OptionChain, error) {
	payload, err := p.fetch(ctx, symbol, &expiry)
	if err != nil {
		return nil, err
	}
	if len(payload.OptionChain.Result) == 0 || len(payload.OptionChain.Result[0].Options) == 0 {
		return &models.OptionChain{Symbol: symbol, Expiry: expiry}, nil
	}

	opts := payload.OptionChain.Result[0].Options[0]
	chain := &models.OptionChain{
		Symbol: symbol,
		Expiry: expiry,
		Calls:  make([]models.ContractQuote, 0, len(opts.Calls)),
		Puts:   make([]models.ContractQuote, 0, len(opts.Puts)),
	}
	for _, q := range opts.Calls {
		chain.Calls = append(chain.Calls, toQuote(q, models.KindCall))
	}
	for _, q := range opts.Puts {
		chain.Puts = append(chain.Puts, toQuote(q, models.KindPut))
	}
	return chain, nil
}

// SpotPrice implements Provider.
func (p *YahooProvider) SpotPrice(ctx context.Context, symbol string) (float64, error) {
	payload, err := p.fetch(ctx, symbol, nil)
	if err != nil {
		return 0, err
	}
	if len(payload.OptionChain.Result) == 0 {
		return 0, apperrors.NewDataError("spot", symbol, apperrors.ErrSpotUnavailable)
	}
	spot := payload.OptionChain.Result[0].Quote.RegularMarketPrice
	if spot <= 0 {
		return 0, apperrors.NewDataError("spot", symbol, apperrors.ErrSpotUnavailable)
	}
	return spot, nil
}

func toQuote(q yahooOptionQuote, kind models.OptionKind) models.ContractQuote {
	return models.ContractQuote{
		ContractSymbol: q.ContractSymbol,
		Kind:           kind,
		Expiration:     time.Unix(q.Expiration, 0).UTC(),
		Strike:         q.Strike,
		LastPrice:      q.LastPrice,
		Bid:            q.Bid,
		Ask:            q.Ask,
		Volume:         q.Volume,
		OpenInterest:   q.OpenInterest,
		ImpliedVol:     q.ImpliedVolatility,
	}
}
