// Package validate checks user-supplied estimation input before it reaches the
// estimator. Messages are meant to be shown to the end user verbatim.
package validate

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// MaxRank is the sanity ceiling on user-supplied ranks.
const MaxRank = 10_000_000

// ErrInvalidInput matches every *InvalidInputError via errors.Is.
var ErrInvalidInput = errors.New("invalid input")

// Field names used in InvalidInputError.
const (
	FieldCategory = "category"
	FieldRank     = "rank"
	FieldPrice    = "price"
)

// Messages shown to the end user.
const (
	MsgCategoryRequired = "Please select a product category."
	MsgRankInvalid      = "Please enter a valid Best Seller Rank (must be 1 or greater)."
	MsgRankTooHigh      = "BSR value seems unusually high. Please verify your input."
	MsgPriceInvalid     = "Please enter a valid price (must be greater than 0)."
)

// InvalidInputError is a user-recoverable validation failure.
type InvalidInputError struct {
	Field   string
	Message string
}

func (e *InvalidInputError) Error() string { return e.Message }

func (e *InvalidInputError) Is(target error) bool { return target == ErrInvalidInput }

func invalid(field, msg string) error {
	return &InvalidInputError{Field: field, Message: msg}
}

// EstimationInput is a request for an estimate.
type EstimationInput struct {
	Category string
	Rank     float64
	// Price is nil when the caller did not supply one.
	Price *float64
}

// CategorySet reports which categories can be served.
type CategorySet interface {
	Has(category string) bool
}

// Input checks in against the rules below, reporting only the first failure:
//  1. category selected
//  2. rank a whole number >= 1
//  3. rank <= MaxRank
//  4. price, if present, a number > 0
//
// When known is non-nil the category must also be one it has.
func Input(in EstimationInput, known CategorySet) error {
	if strings.TrimSpace(in.Category) == "" {
		return invalid(FieldCategory, MsgCategoryRequired)
	}
	if known != nil && !known.Has(in.Category) {
		return invalid(FieldCategory, fmt.Sprintf("Unknown product category: %s", in.Category))
	}
	if math.IsNaN(in.Rank) || in.Rank < 1 || in.Rank != math.Trunc(in.Rank) {
		return invalid(FieldRank, MsgRankInvalid)
	}
	if in.Rank > MaxRank {
		return invalid(FieldRank, MsgRankTooHigh)
	}
	if in.Price != nil && (math.IsNaN(*in.Price) || math.IsInf(*in.Price, 0) || *in.Price <= 0) {
		return invalid(FieldPrice, MsgPriceInvalid)
	}
	return nil
}

// ParseRank reads a rank typed by a user. Thousands separators are accepted
// ("12,345"); anything other than digits is rejected. Empty input yields 0, which
// Input then rejects.
func ParseRank(raw string) (float64, error) {
	s := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if s == "" {
		return 0, nil
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, invalid(FieldRank, MsgRankInvalid)
		}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, invalid(FieldRank, MsgRankInvalid)
	}
	return v, nil
}

// ParsePrice reads an optional price. Empty input means no price.
func ParsePrice(raw string) (*float64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, nil
	}
	s = strings.TrimPrefix(s, "$")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, invalid(FieldPrice, MsgPriceInvalid)
	}
	return &v, nil
}
