package core

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	ex "github.com/Arushi-290602/Captial-Asset-Price-Management/data/extensions"
	m "github.com/Arushi-290602/Captial-Asset-Price-Management/data/models"
	sm "github.com/Arushi-290602/Captial-Asset-Price-Management/service/models"
)

// RunAnalysis computes beta and alpha of every symbol against the benchmark over the last years.
// Symbols that can not be fetched or fit are reported as failures next to the results,
// a benchmark that can not be fetched or data that does not overlap fails the whole run.
func (sc *ServiceContext) RunAnalysis(symbols []string, years int) (*sm.AnalysisResponse, error) {
	start := time.Now()
	runId := uuid.New()
	logger := sc.logger().With(zap.String("runId", runId.String()))

	assets, err := validateAnalysisRequest(symbols, years)
	if err != nil {
		logger.Info("rejected analysis request", zap.Error(err))
		return nil, err
	}

	windowEnd := sc.now()
	windowStart := windowEnd.AddDate(-years, 0, 0)
	benchmarkSymbol := sc.benchmarkSymbol()

	logger.Info("received request to run analysis",
		zap.Strings("symbols", assets),
		zap.Int("years", years),
		zap.String("benchmark", benchmarkSymbol))

	requests := make([]seriesRequest, 0, len(assets)+1)
	requests = append(requests, seriesRequest{symbol: benchmarkSymbol, column: m.BenchmarkColumn})
	for _, a := range assets {
		requests = append(requests, seriesRequest{symbol: a, column: m.CloseColumn(a)})
	}

	fetched := sc.fetchSeries(requests, windowStart, windowEnd)
	logger.Info("fetched price history", zap.Duration("elapsed", time.Since(start)))

	benchmark := fetched[0]
	if benchmark.err != nil {
		return nil, fmt.Errorf("%w: benchmark %w", ErrNoOverlappingData, benchmark.err)
	}

	failures := make([]sm.SymbolFailure, 0)
	assetSeries := make([]*m.SeriesTable, 0, len(assets))
	for _, f := range fetched[1:] {
		if f.err != nil {
			failures = append(failures, symbolFailure(f.symbol, sm.FailureFetchUnavailable, f.err))
			continue
		}
		assetSeries = append(assetSeries, f.series)
	}

	merged, err := Align(benchmark.series, assetSeries)
	if err != nil {
		if len(failures) > 0 {
			err = fmt.Errorf("%w (unavailable: %s)", err, strings.Join(failedSymbols(failures), ", "))
		}
		logger.Warn("alignment failed", zap.Error(err))
		return nil, err
	}

	logger.Debug("aligned price table",
		zap.Int("rows", merged.Len()),
		zap.Any("head", merged.Head(5)),
		zap.Any("tail", merged.Tail(5)))

	normalized, err := Normalize(merged)
	if err != nil {
		return nil, err
	}

	dailyReturns, err := DailyReturn(merged)
	if err != nil {
		return nil, err
	}

	results := make([]sm.AssetAnalysis, 0, len(assetSeries))
	for _, series := range assetSeries {
		column := series.Columns[0]
		symbol := m.SymbolFromColumn(column)

		rr, err := EstimateMarketModel(dailyReturns, column)
		if err != nil {
			if errors.Is(err, ErrDegenerateRegression) {
				logger.Warn("market model could not be fit", zap.String("symbol", symbol), zap.Error(err))
				failures = append(failures, symbolFailure(symbol, sm.FailureDegenerateRegression, err))
				continue
			}
			return nil, err
		}

		interpretation := Classify(rr.Beta, rr.Alpha)
		results = append(results, sm.AssetAnalysis{
			RegressionResult: *rr,
			Interpretation:   interpretation,
			Description:      interpretation.Describe(symbol),
		})
	}

	logger.Info("analysis completed",
		zap.Int("rows", merged.Len()),
		zap.Int("results", len(results)),
		zap.Int("failures", len(failures)),
		zap.Duration("elapsed", time.Since(start)))

	return &sm.AnalysisResponse{
		RunId:           runId,
		Benchmark:       benchmarkSymbol,
		Years:           years,
		Start:           windowStart,
		End:             windowEnd,
		MergedTable:     merged,
		NormalizedTable: normalized,
		Results:         results,
		Failures:        failures,
		Summary:         sm.BuildSummary(results),
	}, nil
}

// validateAnalysisRequest returns the cleaned up symbol list: trimmed, upper cased
// and de-duplicated with the first occurrence's order kept
func validateAnalysisRequest(symbols []string, years int) ([]string, error) {
	if years < sm.MinLookbackYears || years > sm.MaxLookbackYears {
		return nil, fmt.Errorf("%w: years must be between %d and %d, got %d", ErrInvalidRequest, sm.MinLookbackYears, sm.MaxLookbackYears, years)
	}

	cleaned := make([]string, 0, len(symbols))
	for _, s := range symbols {
		if s = strings.ToUpper(strings.TrimSpace(s)); s != "" {
			cleaned = append(cleaned, s)
		}
	}

	cleaned = ex.Distinct(cleaned, func(s string) string { return s })
	if len(cleaned) == 0 {
		return nil, fmt.Errorf("%w: at least one symbol is required", ErrInvalidRequest)
	}

	return cleaned, nil
}

func failedSymbols(failures []sm.SymbolFailure) []string {
	res := make([]string, len(failures))
	for i, f := range failures {
		res[i] = f.Symbol
	}
	return res
}

func symbolFailure(symbol string, kind sm.FailureKind, err error) sm.SymbolFailure {
	return sm.SymbolFailure{
		Symbol:  symbol,
		Kind:    kind,
		Message: err.Error(),
	}
}
