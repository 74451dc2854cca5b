// Package estimate turns a sales rank into a monthly unit estimate using a
// category's calibration record.
//
// Strategy order:
//   - the first observed bracket containing the rank (inclusive) wins and is
//     linearly interpolated;
//   - below the observed range the power law is extrapolated;
//   - above it the power law regression is used.
//
// Every result is rounded to the nearest multiple of UnitsPerMonth and floored
// at UnitsPerMonth.
package estimate

import (
	"errors"
	"fmt"
	"math"

	"bsr_estimator/pkg/core/calibration"
)

// UnitsPerMonth is the normalization unit: 30 days per month, so estimates
// always correspond to a whole number of units per day.
const UnitsPerMonth = 30

// ErrUnknownCategory is returned when the category is not in the table.
var ErrUnknownCategory = errors.New("unknown category")

// Estimation is the outcome for one (category, rank) pair.
type Estimation struct {
	MonthlyUnits int     `json:"monthly_units"`
	Method       Method  `json:"method"`
	RawUnits     float64 `json:"raw_units"`
	// Bracket is the index i of the interpolated pair (points[i], points[i+1]), or -1.
	Bracket int `json:"bracket"`
}

// Estimator serves estimates from a read-only calibration table.
type Estimator struct {
	table *calibration.Table
}

// NewEstimator creates an estimator over table.
func NewEstimator(table *calibration.Table) *Estimator {
	return &Estimator{table: table}
}

// Table returns the calibration table the estimator reads from.
func (e *Estimator) Table() *calibration.Table { return e.table }

// Estimate looks up category and estimates its monthly units at rank.
// Rank range checks belong to the caller's validator.
func (e *Estimator) Estimate(category string, rank float64) (Estimation, error) {
	rec, ok := e.table.Lookup(category)
	if !ok {
		return Estimation{}, fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}
	return EstimateRecord(rec, rank), nil
}

// Estimate is the bare form: units and method for rank under rec.
func Estimate(rec *calibration.Record, rank float64) (int, Method) {
	est := EstimateRecord(rec, rank)
	return est.MonthlyUnits, est.Method
}

// EstimateRecord runs the strategy selection over rec.
func EstimateRecord(rec *calibration.Record, rank float64) Estimation {
	for i := 0; i < rec.Len()-1; i++ {
		lo, hi := rec.At(i), rec.At(i+1)
		if rank >= lo.Rank && rank <= hi.Rank {
			raw := interpolate(rank, lo.Rank, lo.Units, hi.Rank, hi.Units)
			return Estimation{
				MonthlyUnits: normalize(raw),
				Method:       Interpolation,
				RawUnits:     raw,
				Bracket:      i,
			}
		}
	}

	raw := powerLaw(rank, rec.Coefficient(), rec.Exponent())
	method := PowerLaw
	if rank < rec.MinRank() {
		method = Extrapolation
	}
	return Estimation{
		MonthlyUnits: normalize(raw),
		Method:       method,
		RawUnits:     raw,
		Bracket:      -1,
	}
}

func interpolate(x, x1, y1, x2, y2 float64) float64 {
	return y1 + (y2-y1)*(x-x1)/(x2-x1)
}

func powerLaw(rank, coefficient, exponent float64) float64 {
	return coefficient * math.Pow(rank, exponent)
}

// normalize rounds to the nearest multiple of UnitsPerMonth, minimum UnitsPerMonth.
// NaN (a negative rank under a fractional exponent) falls to the floor and
// +Inf (rank 0 under a negative exponent) saturates.
func normalize(raw float64) int {
	if math.IsNaN(raw) {
		return UnitsPerMonth
	}
	rounded := math.Round(raw/UnitsPerMonth) * UnitsPerMonth
	if rounded < UnitsPerMonth {
		return UnitsPerMonth
	}
	if rounded > math.MaxInt32 {
		return math.MaxInt32 / UnitsPerMonth * UnitsPerMonth
	}
	return int(rounded)
}
