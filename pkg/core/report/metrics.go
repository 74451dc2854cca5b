// Package report derives the daily, monthly and annual figures for an
// estimate and composes the narrative that explains how it was produced.
package report

import (
	"math"

	"bsr_estimator/pkg/core/estimate"

	"github.com/shopspring/decimal"
)

// MonthsPerYear scales monthly revenue to annual.
const MonthsPerYear = 12

// Result is the full answer for one estimation request.
type Result struct {
	Category       string          `json:"category"`
	Rank           int64           `json:"rank"`
	MonthlyUnits   int             `json:"monthly_units"`
	DailyUnits     int             `json:"daily_units"`
	Method         estimate.Method `json:"method"`
	MonthlyRevenue float64         `json:"monthly_revenue"`
	DailyRevenue   float64         `json:"daily_revenue"`
	AnnualRevenue  float64         `json:"annual_revenue"`
	// PriceProvided distinguishes "no price" from a computed zero revenue.
	PriceProvided bool     `json:"price_provided"`
	Price         *float64 `json:"price,omitempty"`
	Narrative     string   `json:"narrative"`
}

// DailyUnits is round(monthly / 30).
func DailyUnits(monthly int) int {
	return int(math.Round(float64(monthly) / estimate.UnitsPerMonth))
}

// Compose builds the Result for est. Revenue fields stay zero when price is nil.
// It fails only when est.Method has no narrative.
func Compose(category string, rank float64, est estimate.Estimation, price *float64) (Result, error) {
	res := Result{
		Category:     category,
		Rank:         int64(rank),
		MonthlyUnits: est.MonthlyUnits,
		DailyUnits:   DailyUnits(est.MonthlyUnits),
		Method:       est.Method,
	}

	if price != nil {
		p := decimal.NewFromFloat(*price)
		monthly := decimal.NewFromInt(int64(res.MonthlyUnits)).Mul(p)
		daily := decimal.NewFromInt(int64(res.DailyUnits)).Mul(p)
		annual := monthly.Mul(decimal.NewFromInt(MonthsPerYear))

		res.MonthlyRevenue = monthly.InexactFloat64()
		res.DailyRevenue = daily.InexactFloat64()
		res.AnnualRevenue = annual.InexactFloat64()
		res.PriceProvided = true
		pc := *price
		res.Price = &pc
	}

	narrative, err := Narrative(category, rank, est.Method, price)
	if err != nil {
		return Result{}, err
	}
	res.Narrative = narrative
	return res, nil
}
