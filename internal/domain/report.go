package domain

import (
	"github.com/shopspring/decimal"
)

// Outcome is the terminal state of one asset within a run.
type Outcome int

const (
	// OutcomeSkipped means the configured amount exceeded the remaining
	// local balance; no network call was made for the asset.
	OutcomeSkipped Outcome = iota
	// OutcomePurchased means the exchange acknowledged the order and the
	// local balance was deducted.
	OutcomePurchased
	// OutcomeFailed means price fetch or order placement failed; the
	// local balance is unchanged.
	OutcomeFailed
)

// String returns the string representation of the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeSkipped:
		return "skipped"
	case OutcomePurchased:
		return "purchased"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// AssetResult is the per-asset entry of a RunReport.
type AssetResult struct {
	Pair    Pair
	Outcome Outcome
	// Detail carries the failure reason for OutcomeFailed, empty otherwise.
	Detail string
}

// RunReport summarizes one purchase run.
type RunReport struct {
	InitialBalance decimal.Decimal
	FinalBalance   decimal.Decimal
	Results        []AssetResult
}

// Purchased returns how many assets ended in OutcomePurchased.
func (r *RunReport) Purchased() int {
	var n int
	for _, res := range r.Results {
		if res.Outcome == OutcomePurchased {
			n++
		}
	}
	return n
}
