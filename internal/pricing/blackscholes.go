// Package pricing implements closed-form Black-Scholes sensitivities for a
// non-dividend-paying underlying.
//
// The standard normal CDF and PDF come from gonum's distuv.UnitNormal.
// Floating-point reproducibility is guaranteed only within that
// implementation.
package pricing

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	apperrors "options-collector/internal/errors"
	"options-collector/internal/models"
)

var stdNormal = distuv.UnitNormal

// Inputs holds the market inputs to the pricing model.
type Inputs struct {
	Spot   float64 // S, underlying spot price
	Strike float64 // K
	Expiry float64 // T, time to expiry in years; may be <= 0 near/after expiry
	Rate   float64 // r, annualized risk-free rate
	Sigma  float64 // annualized volatility
}

// validate rejects inputs the model cannot price. Non-positive spot or
// strike is an invalid input; non-positive expiry or volatility is a domain
// boundary where the formulas divide by zero.
func validate(in Inputs) error {
	if in.Spot <= 0 || in.Strike <= 0 {
		return apperrors.ErrInvalidInputs
	}
	if in.Expiry <= 0 || in.Sigma <= 0 {
		return apperrors.ErrNotComputable
	}
	return nil
}

// d1d2 computes the d1 and d2 terms of the Black-Scholes formulas.
// Callers must validate inputs first.
func d1d2(in Inputs) (float64, float64) {
	volSqrtT := in.Sigma * math.Sqrt(in.Expiry)
	d1 := (math.Log(in.Spot/in.Strike) + (in.Rate+0.5*in.Sigma*in.Sigma)*in.Expiry) / volSqrtT
	return d1, d1 - volSqrtT
}

// Compute returns all five sensitivities for one contract. It is pure and
// deterministic: the same inputs always produce identical outputs.
func Compute(kind models.OptionKind, in Inputs) (models.Greeks, error) {
	if err := validate(in); err != nil {
		return models.Greeks{}, err
	}

	d1, d2 := d1d2(in)
	sqrtT := math.Sqrt(in.Expiry)
	pdfD1 := stdNormal.Prob(d1)
	discount := math.Exp(-in.Rate * in.Expiry)

	g := models.Greeks{
		Gamma: pdfD1 / (in.Spot * in.Sigma * sqrtT),
		Vega:  in.Spot * pdfD1 * sqrtT,
	}

	switch kind {
	case models.KindCall:
		g.Delta = stdNormal.CDF(d1)
		g.Theta = -in.Spot*pdfD1*in.Sigma/(2*sqrtT) - in.Rate*in.Strike*discount*stdNormal.CDF(d2)
		g.Rho = in.Strike * in.Expiry * discount * stdNormal.CDF(d2)
	case models.KindPut:
		g.Delta = stdNormal.CDF(d1) - 1
		g.Theta = -in.Spot*pdfD1*in.Sigma/(2*sqrtT) + in.Rate*in.Strike*discount*stdNormal.CDF(-d2)
		g.Rho = -in.Strike * in.Expiry * discount * stdNormal.CDF(-d2)
	default:
		return models.Greeks{}, apperrors.ErrInvalidInputs
	}

	return g, nil
}

// Price returns the theoretical Black-Scholes price of one contract, with
// the same input guards as Compute.
func Price(kind models.OptionKind, in Inputs) (float64, error) {
	if err := validate(in); err != nil {
		return 0, err
	}

	d1, d2 := d1d2(in)
	discount := math.Exp(-in.Rate * in.Expiry)

	switch kind {
	case models.KindCall:
		return in.Spot*stdNormal.CDF(d1) - in.Strike*discount*stdNormal.CDF(d2), nil
	case models.KindPut:
		return in.Strike*discount*stdNormal.CDF(-d2) - in.Spot*stdNormal.CDF(-d1), nil
	default:
		return 0, apperrors.ErrInvalidInputs
	}
}
