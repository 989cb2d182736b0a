package models

// TradingDaysPerYear annualizes a daily figure, alpha is the daily intercept times this
const TradingDaysPerYear = 252

// Beta and alpha cut offs used to interpret a market model fit
const (
	HighRiskBeta       = 1.5
	ModerateRiskBeta   = 1.0
	OutperformingAlpha = 0.0
)

// Lookback window bounds in years
const (
	MinLookbackYears     = 1
	MaxLookbackYears     = 10
	DefaultLookbackYears = 5
)
