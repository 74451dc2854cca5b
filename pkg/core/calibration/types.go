// Package calibration holds the per-category rank-to-sales models.
//
// A Table is built once at process start and is read-only afterwards, so it is
// safe to share between goroutines without locking.
package calibration

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrDegenerateCalibration marks a category whose data cannot be served.
var ErrDegenerateCalibration = errors.New("degenerate calibration")

// Point is one observed (rank, monthly units) anchor.
type Point struct {
	Rank  float64 `json:"rank" yaml:"rank"`
	Units float64 `json:"units" yaml:"units"`
}

// Record is the model for a single category: units = Coefficient * rank^Exponent,
// plus the observed anchors used for interpolation.
type Record struct {
	coefficient float64
	exponent    float64
	points      []Point
}

// NewRecord checks the record invariants and returns an immutable record.
// The points slice is copied.
func NewRecord(coefficient, exponent float64, points []Point) (*Record, error) {
	if math.IsNaN(coefficient) || math.IsInf(coefficient, 0) || coefficient <= 0 {
		return nil, fmt.Errorf("%w: coefficient must be a positive number, got %v", ErrDegenerateCalibration, coefficient)
	}
	if math.IsNaN(exponent) || math.IsInf(exponent, 0) {
		return nil, fmt.Errorf("%w: exponent must be finite, got %v", ErrDegenerateCalibration, exponent)
	}
	if len(points) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 data points, got %d", ErrDegenerateCalibration, len(points))
	}
	for i, p := range points {
		if math.IsNaN(p.Rank) || math.IsInf(p.Rank, 0) || p.Rank < 1 {
			return nil, fmt.Errorf("%w: point %d has invalid rank %v", ErrDegenerateCalibration, i, p.Rank)
		}
		if math.IsNaN(p.Units) || math.IsInf(p.Units, 0) || p.Units < 0 {
			return nil, fmt.Errorf("%w: point %d has invalid units %v", ErrDegenerateCalibration, i, p.Units)
		}
		if i > 0 && p.Rank <= points[i-1].Rank {
			return nil, fmt.Errorf("%w: ranks must be strictly increasing (point %d: %v after %v)",
				ErrDegenerateCalibration, i, p.Rank, points[i-1].Rank)
		}
	}

	cp := make([]Point, len(points))
	copy(cp, points)
	return &Record{coefficient: coefficient, exponent: exponent, points: cp}, nil
}

func (r *Record) Coefficient() float64 { return r.coefficient }

func (r *Record) Exponent() float64 { return r.exponent }

// Len returns the number of observed points.
func (r *Record) Len() int { return len(r.points) }

// At returns the i-th point.
func (r *Record) At(i int) Point { return r.points[i] }

// Points returns a copy of the observed points.
func (r *Record) Points() []Point {
	cp := make([]Point, len(r.points))
	copy(cp, r.points)
	return cp
}

// MinRank and MaxRank bound the observed range.
func (r *Record) MinRank() float64 { return r.points[0].Rank }

func (r *Record) MaxRank() float64 { return r.points[len(r.points)-1].Rank }

// Rejection records a category that was excluded at load time.
type Rejection struct {
	Category string `json:"category"`
	Reason   string `json:"reason"`
}

// Table maps category names to their records.
type Table struct {
	source   string
	records  map[string]*Record
	names    []string
	rejected []Rejection
}

// NewTable builds a table from already validated records.
func NewTable(source string, records map[string]*Record, rejected []Rejection) *Table {
	t := &Table{
		source:   source,
		records:  make(map[string]*Record, len(records)),
		rejected: append([]Rejection(nil), rejected...),
	}
	for name, rec := range records {
		t.records[name] = rec
		t.names = append(t.names, name)
	}
	sort.Strings(t.names)
	sort.Slice(t.rejected, func(i, j int) bool { return t.rejected[i].Category < t.rejected[j].Category })
	return t
}

// Lookup returns the record for category.
func (t *Table) Lookup(category string) (*Record, bool) {
	rec, ok := t.records[category]
	return rec, ok
}

// Has reports whether category can be served.
func (t *Table) Has(category string) bool {
	_, ok := t.records[category]
	return ok
}

// Categories returns the served category names, sorted.
func (t *Table) Categories() []string {
	return append([]string(nil), t.names...)
}

// Rejected returns the categories excluded at load time.
func (t *Table) Rejected() []Rejection {
	return append([]Rejection(nil), t.rejected...)
}

// Source describes where the table was loaded from.
func (t *Table) Source() string { return t.source }

func (t *Table) Len() int { return len(t.records) }
