package core

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	ex "github.com/Arushi-290602/Captial-Asset-Price-Management/data/extensions"
	m "github.com/Arushi-290602/Captial-Asset-Price-Management/data/models"
)

// PriceProvider supplies one symbol's daily closing prices over a date range
type PriceProvider interface {
	GetDailyCloses(ctx context.Context, symbol string, start, end time.Time) ([]*m.PricePoint, error)
}

type seriesRequest struct {
	symbol string
	column string
}

type seriesResult struct {
	seriesRequest
	series *m.SeriesTable
	err    error
}

// fetchSeries pulls every requested series concurrently.
// A failed symbol does not stop the others, its error is kept on its own result.
// Results come back in request order no matter which fetch finished first.
func (sc *ServiceContext) fetchSeries(requests []seriesRequest, start, end time.Time) []seriesResult {
	res := make([]seriesResult, len(requests))
	if len(requests) == 0 {
		return res
	}

	var g errgroup.Group
	g.SetLimit(ex.Min(sc.fetchWorkers(), len(requests)))

	for i, req := range requests {
		g.Go(func() error {
			fetchStart := time.Now()
			series, err := sc.fetchOne(sc.ctx(), req, start, end)
			if err != nil {
				sc.logger().Warn("price history unavailable",
					zap.String("symbol", req.symbol),
					zap.Error(err))
			} else {
				sc.logger().Debug("price history fetched",
					zap.String("symbol", req.symbol),
					zap.Int("rows", series.Len()),
					zap.Duration("elapsed", time.Since(fetchStart)))
			}

			res[i] = seriesResult{seriesRequest: req, series: series, err: err}
			return nil
		})
	}

	_ = g.Wait() // workers never return an error, failures live on the results

	return res
}

func (sc *ServiceContext) fetchOne(ctx context.Context, req seriesRequest, start, end time.Time) (*m.SeriesTable, error) {
	points, err := sc.PriceProvider.GetDailyCloses(ctx, req.symbol, start, end)
	if err != nil {
		return nil, &SymbolError{Symbol: req.symbol, Err: fmt.Errorf("%w: %w", ErrFetchUnavailable, err)}
	}

	series, err := m.NewPriceSeries(req.column, points)
	if err != nil {
		return nil, &SymbolError{Symbol: req.symbol, Err: fmt.Errorf("%w: %w", ErrFetchUnavailable, err)}
	}

	if series.IsEmpty() {
		return nil, &SymbolError{Symbol: req.symbol, Err: fmt.Errorf("%w: no prices between %s and %s", ErrFetchUnavailable, ex.FmtShort(start), ex.FmtShort(end))}
	}

	return series, nil
}
