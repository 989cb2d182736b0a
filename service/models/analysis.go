package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	m "github.com/Arushi-290602/Captial-Asset-Price-Management/data/models"
)

type RiskTier string

const (
	RiskHigh     RiskTier = "high"
	RiskModerate RiskTier = "moderate"
	RiskLow      RiskTier = "low"
)

type PerformanceTier string

const (
	Outperforming   PerformanceTier = "outperforming"
	Underperforming PerformanceTier = "underperforming"
)

type FailureKind string

const (
	FailureFetchUnavailable     FailureKind = "fetch_unavailable"
	FailureDegenerateRegression FailureKind = "degenerate_regression"
)

// AnalysisSettingsResources is what a front end needs to build the request form
type AnalysisSettingsResources struct {
	SymbolChoices  []string `json:"symbolChoices"`
	DefaultSymbols []string `json:"defaultSymbols"`
	DefaultYears   int      `json:"defaultYears"`
	MinYears       int      `json:"minYears"`
	MaxYears       int      `json:"maxYears"`
}

func GetAnalysisSettingsResources() AnalysisSettingsResources {
	return AnalysisSettingsResources{
		SymbolChoices:  []string{"TSLA", "AAPL", "NFLX", "MSFT", "MGM", "AMZN", "NVDA", "GOOGL"},
		DefaultSymbols: []string{"TSLA", "AAPL", "AMZN", "GOOGL"},
		DefaultYears:   DefaultLookbackYears,
		MinYears:       MinLookbackYears,
		MaxYears:       MaxLookbackYears,
	}
}

// AnalysisRequest is the body of an analysis request from the front end
type AnalysisRequest struct {
	Symbols []string `json:"symbols"`
	Years   int      `json:"years"`
}

// RegressionResult is the market model fit of one asset against the benchmark
type RegressionResult struct {
	Symbol       string  `json:"symbol"`
	Beta         float64 `json:"beta"`
	Intercept    float64 `json:"intercept"` // daily
	Alpha        float64 `json:"alpha"`     // annualized intercept
	RSquared     float64 `json:"rSquared"`
	Observations int     `json:"observations"`
}

type Interpretation struct {
	Risk        RiskTier        `json:"risk"`
	Performance PerformanceTier `json:"performance"`
}

// Describe puts the interpretation into a couple of plain sentences
func (i Interpretation) Describe(symbol string) string {
	var res string
	switch i.Risk {
	case RiskHigh:
		res = fmt.Sprintf("%s is highly volatile, meaning it reacts strongly to market changes.", symbol)
	case RiskModerate:
		res = fmt.Sprintf("%s has moderate risk, moving slightly more than the market.", symbol)
	default:
		res = fmt.Sprintf("%s is stable, moving less than the market.", symbol)
	}

	if i.Performance == Outperforming {
		return res + fmt.Sprintf(" Positive alpha suggests that %s is outperforming market expectations.", symbol)
	}
	return res + fmt.Sprintf(" Negative alpha means that %s is underperforming relative to expectations.", symbol)
}

type AssetAnalysis struct {
	RegressionResult
	Interpretation Interpretation `json:"interpretation"`
	Description    string         `json:"description"`
}

// SymbolFailure is a symbol that was requested but did not make it into the results
type SymbolFailure struct {
	Symbol  string      `json:"symbol"`
	Kind    FailureKind `json:"kind"`
	Message string      `json:"message"`
}

// SummaryRow is the rounded view of a result, HighestBeta flags the most market sensitive asset(s)
type SummaryRow struct {
	Symbol      string          `json:"symbol"`
	Beta        decimal.Decimal `json:"beta"`
	Alpha       decimal.Decimal `json:"alpha"`
	HighestBeta bool            `json:"highestBeta"`
}

// AnalysisResponse is everything one analysis pass produced
type AnalysisResponse struct {
	RunId           uuid.UUID       `json:"runId"`
	Benchmark       string          `json:"benchmark"`
	Years           int             `json:"years"`
	Start           time.Time       `json:"start"`
	End             time.Time       `json:"end"`
	MergedTable     *m.SeriesTable  `json:"mergedTable"`
	NormalizedTable *m.SeriesTable  `json:"normalizedTable"`
	Results         []AssetAnalysis `json:"results"`
	Failures        []SymbolFailure `json:"failures"`
	Summary         []SummaryRow    `json:"summary"`
}

// BuildSummary rounds beta and alpha to two places, order follows results
func BuildSummary(results []AssetAnalysis) []SummaryRow {
	res := make([]SummaryRow, len(results))
	highest := decimal.Zero
	for i, r := range results {
		res[i] = SummaryRow{
			Symbol: r.Symbol,
			Beta:   decimal.NewFromFloat(r.Beta).Round(2),
			Alpha:  decimal.NewFromFloat(r.Alpha).Round(2),
		}
		if i == 0 || res[i].Beta.GreaterThan(highest) {
			highest = res[i].Beta
		}
	}

	for i := range res {
		res[i].HighestBeta = res[i].Beta.Equal(highest)
	}

	return res
}
