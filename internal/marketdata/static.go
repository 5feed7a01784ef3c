package marketdata

import (
	"context"
	"sort"
	"time"

	apperrors "options-collector/internal/errors"
	"options-collector/internal/models"
)

// StaticProvider serves canned chains from memory. It backs tests and the
// demo path the same way a paper broker stands in for a live one.
type StaticProvider struct {
	Spots  map[string]float64
	Chains map[string][]*models.OptionChain

	// FailSymbols forces a data error for specific symbols, to exercise
	// the per-symbol failure boundary.
	FailSymbols map[string]error
}

// NewStaticProvider creates an empty static provider.
func NewStaticProvider() *StaticProvider {
	return &StaticProvider{
		Spots:       make(map[string]float64),
		Chains:      make(map[string][]*models.OptionChain),
		FailSymbols: make(map[string]error),
	}
}

// AddChain registers a chain and its underlying spot price.
func (p *StaticProvider) AddChain(symbol string, spot float64, chain *models.OptionChain) {
	p.Spots[symbol] = spot
	p.Chains[symbol] = append(p.Chains[symbol], chain)
}

func (p *StaticProvider) failure(symbol string) error {
	if err, ok := p.FailSymbols[symbol]; ok {
		return err
	}
	return nil
}

// ListExpirations implements Provider.
func (p *StaticProvider) ListExpirations(ctx context.Context, symbol string) ([]time.Time, error) {
	if err := p.failure(symbol); err != nil {
		return nil, apperrors.NewDataError("expirations", symbol, err)
	}
	chains := p.Chains[symbol]
	expirations := make([]time.Time, 0, len(chains))
	for _, c := range chains {
		expirations = append(expirations, c.Expiry)
	}
	sort.Slice(expirations, func(i, j int) bool { return expirations[i].Before(expirations[j]) })
	return expirations, nil
}

// FetchChain implements Provider.
func (p *StaticProvider) FetchChain(ctx context.Context, symbol string, expiry time.Time) (*models.OptionChain, error) {
	if err := p.failure(symbol); err != nil {
		return nil, apperrors.NewDataError("chain", symbol, err)
	}
	for _, c := range p.Chains[symbol] {
		if c.Expiry.Equal(expiry) {
			return c, nil
		}
	}
	return &models.OptionChain{Symbol: symbol, Expiry: expiry}, nil
}

// SpotPrice implements Provider.
func (p *StaticProvider) SpotPrice(ctx context.Context, symbol string) (float64, error) {
	if err := p.failure(symbol); err != nil {
		return 0, apperrors.NewDataError("spot", symbol, err)
	}
	spot, ok := p.Spots[symbol]
	if !ok || spot <= 0 {
		return 0, apperrors.NewDataError("spot", symbol, apperrors.ErrSpotUnavailable)
	}
	return spot, nil
}
