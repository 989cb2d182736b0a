package core

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	ex "github.com/Arushi-290602/Captial-Asset-Price-Management/data/extensions"
	m "github.com/Arushi-290602/Captial-Asset-Price-Management/data/models"
	sm "github.com/Arushi-290602/Captial-Asset-Price-Management/service/models"
)

// EstimateMarketModel fits asset return = beta * benchmark return + intercept by
// ordinary least squares over the rows of a daily return table.
// Alpha is the intercept annualized by TradingDaysPerYear, no risk free rate is taken out.
func EstimateMarketModel(returns *m.SeriesTable, assetColumn string) (*sm.RegressionResult, error) {
	x, ok := returns.Column(m.BenchmarkColumn)
	if !ok {
		return nil, fmt.Errorf("%w: benchmark column %s", ErrUnknownColumn, m.BenchmarkColumn)
	}

	y, ok := returns.Column(assetColumn)
	if !ok || assetColumn == m.BenchmarkColumn {
		return nil, fmt.Errorf("%w: asset column %s", ErrUnknownColumn, assetColumn)
	}

	n := len(x)
	if n < 2 {
		return nil, fmt.Errorf("%w: %s has %d aligned returns, at least 2 are needed", ErrDegenerateRegression, assetColumn, n)
	}

	// a flat benchmark has no variance, the slope is undefined
	if ex.AreAllEqual(x) {
		return nil, fmt.Errorf("%w: benchmark returns have zero variance", ErrDegenerateRegression)
	}

	intercept, beta := stat.LinearRegression(x, y, nil, false)
	if !isFinite(intercept) || !isFinite(beta) {
		return nil, fmt.Errorf("%w: %s fit is not finite (beta %v, intercept %v)", ErrDegenerateRegression, assetColumn, beta, intercept)
	}

	// a flat asset has no variance to explain
	rSquared := stat.RSquared(x, y, nil, intercept, beta)
	if !isFinite(rSquared) {
		rSquared = 0
	}

	return &sm.RegressionResult{
		Symbol:       m.SymbolFromColumn(assetColumn),
		Beta:         beta,
		Intercept:    intercept,
		Alpha:        intercept * sm.TradingDaysPerYear,
		RSquared:     rSquared,
		Observations: n,
	}, nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
