package core

import (
	"github.com/shopspring/decimal"
)

// InterestRateStrategyType interest rate strategy type
type InterestRateStrategyType string

const (
	// InterestRateStrategyDynamic PID controller strategy
	InterestRateStrategyDynamic InterestRateStrategyType = "dynamic"
	// InterestRateStrategyLinear two-slope linear strategy
	InterestRateStrategyLinear InterestRateStrategyType = "linear"
)

// DynamicInterestRate PID controller params
type DynamicInterestRate struct {
	MinBorrowRate           decimal.Decimal `json:"min_borrow_rate"`
	MaxBorrowRate           decimal.Decimal `json:"max_borrow_rate"`
	KpAugmentationThreshold decimal.Decimal `json:"kp_augmentation_threshold"`
	Kp1                     decimal.Decimal `json:"kp_1"`
	Kp2                     decimal.Decimal `json:"kp_2"`
	OptimalUtilizationRate  decimal.Decimal `json:"optimal_utilization_rate"`
}

// LinearInterestRate two-slope linear params
type LinearInterestRate struct {
	OptimalUtilizationRate decimal.Decimal `json:"optimal_utilization_rate"`
	Base                   decimal.Decimal `json:"base"`
	Slope1                 decimal.Decimal `json:"slope_1"`
	Slope2                 decimal.Decimal `json:"slope_2"`
}

// InterestRateStrategy tagged union over the two rate policies.
//
// Exactly one of Dynamic/Linear is set, matching Kind.
type InterestRateStrategy struct {
	Kind    InterestRateStrategyType `json:"kind"`
	Dynamic *DynamicInterestRate     `json:"dynamic,omitempty"`
	Linear  *LinearInterestRate      `json:"linear,omitempty"`
}

var one = decimal.New(1, 0)

// Validate validate strategy params, rejected before any market write
func (s InterestRateStrategy) Validate() error {
	switch s.Kind {
	case InterestRateStrategyDynamic:
		if s.Dynamic == nil {
			return ErrInvalidParams
		}
		if s.Dynamic.MinBorrowRate.GreaterThan(s.Dynamic.MaxBorrowRate) {
			return ErrInvalidParams
		}
		if s.Dynamic.OptimalUtilizationRate.GreaterThan(one) {
			return ErrInvalidParams
		}
		return nil
	case InterestRateStrategyLinear:
		if s.Linear == nil {
			return ErrInvalidParams
		}
		if s.Linear.OptimalUtilizationRate.GreaterThan(one) {
			return ErrInvalidParams
		}
		return nil
	default:
		return ErrInvalidParams
	}
}
