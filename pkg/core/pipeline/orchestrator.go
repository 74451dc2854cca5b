package pipeline

import (
	"fmt"

	"bsr_estimator/pkg/core/estimate"
	"bsr_estimator/pkg/core/report"
	"bsr_estimator/pkg/core/validate"
)

// UnitEstimator produces the monthly unit estimate for a validated input.
// *estimate.Estimator is the production implementation.
type UnitEstimator interface {
	Estimate(category string, rank float64) (estimate.Estimation, error)
}

// Orchestrator runs one request end to end:
// Validate -> Estimate -> Compose (figures + narrative).
type Orchestrator struct {
	estimator UnitEstimator
	known     validate.CategorySet
}

// NewOrchestrator wires an estimator with the category set used by validation.
// known may be nil to skip the unknown-category pre-check.
func NewOrchestrator(estimator UnitEstimator, known validate.CategorySet) *Orchestrator {
	return &Orchestrator{estimator: estimator, known: known}
}

// ForEstimator is NewOrchestrator for the common case where the estimator's own
// table supplies the known categories.
func ForEstimator(e *estimate.Estimator) *Orchestrator {
	return NewOrchestrator(e, e.Table())
}

// Run validates in and, when it passes, estimates and composes the result.
// Validation failures are returned as *validate.InvalidInputError and the
// estimator is not called.
func (o *Orchestrator) Run(in validate.EstimationInput) (report.Result, error) {
	if err := validate.Input(in, o.known); err != nil {
		return report.Result{}, err
	}

	est, err := o.estimator.Estimate(in.Category, in.Rank)
	if err != nil {
		return report.Result{}, fmt.Errorf("estimate %q at rank %.0f: %w", in.Category, in.Rank, err)
	}

	res, err := report.Compose(in.Category, in.Rank, est, in.Price)
	if err != nil {
		return report.Result{}, fmt.Errorf("compose %q at rank %.0f: %w", in.Category, in.Rank, err)
	}
	return res, nil
}
