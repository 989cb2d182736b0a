package core

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	m "github.com/Arushi-290602/Captial-Asset-Price-Management/data/models"
)

var (
	firstDay = time.Date(2025, time.September, 1, 0, 0, 0, 0, time.UTC)
	testNow  = time.Date(2025, time.October, 15, 16, 0, 0, 0, time.UTC)

	// day over day benchmark returns the fixtures are built from
	benchmarkReturns = []float64{0.01, -0.02, 0.03, 0.00, 0.015, -0.005, 0.012, -0.011, 0.004, 0.02}

	errNotListed = errors.New("symbol not listed")
)

func day(i int) time.Time {
	return firstDay.AddDate(0, 0, i)
}

func priceSeries(t *testing.T, column string, days []int, closes []float64) *m.SeriesTable {
	t.Helper()
	points := make([]*m.PricePoint, len(days))
	for i, d := range days {
		points[i] = &m.PricePoint{Date: day(d), Symbol: m.SymbolFromColumn(column), Close: closes[i]}
	}

	st, err := m.NewPriceSeries(column, points)
	if err != nil {
		t.Fatalf("error building %s fixture: %v", column, err)
	}
	return st
}

func returnsTable(t *testing.T, columns []string, values ...[]float64) *m.SeriesTable {
	t.Helper()
	dates := make([]time.Time, len(values[0]))
	for i := range dates {
		dates[i] = day(i + 1)
	}

	st, err := m.NewSeriesTable(dates, columns, values)
	if err != nil {
		t.Fatalf("error building returns fixture: %v", err)
	}
	return st
}

// compound turns day over day returns scaled by k into a price path starting at 100
func compound(returns []float64, k float64) []float64 {
	res := make([]float64, len(returns)+1)
	res[0] = 100
	for i, r := range returns {
		res[i+1] = res[i] * (1 + r*k)
	}
	return res
}

func pricePoints(symbol string, firstDayIndex int, closes []float64) []*m.PricePoint {
	res := make([]*m.PricePoint, len(closes))
	for i, c := range closes {
		res[i] = &m.PricePoint{Date: day(firstDayIndex + i).Add(20 * time.Hour), Symbol: symbol, Close: c}
	}
	return res
}

type fakeProvider struct {
	mu     sync.Mutex
	prices map[string][]*m.PricePoint
	delay  map[string]time.Duration
	calls  []string
}

func (fp *fakeProvider) GetDailyCloses(ctx context.Context, symbol string, start, end time.Time) ([]*m.PricePoint, error) {
	fp.mu.Lock()
	fp.calls = append(fp.calls, symbol)
	fp.mu.Unlock()

	if d, ok := fp.delay[symbol]; ok {
		time.Sleep(d)
	}

	points, ok := fp.prices[symbol]
	if !ok {
		return nil, errNotListed
	}
	return points, nil
}

func (fp *fakeProvider) callCount() int {
	fp.mu.Lock()
	defer fp.mu.Unlock()
	return len(fp.calls)
}

// newTestProvider lists SPY, AAPL moving twice as much as the market and TSLA moving half as much
func newTestProvider() *fakeProvider {
	return &fakeProvider{
		prices: map[string][]*m.PricePoint{
			"SPY":  pricePoints("SPY", 0, compound(benchmarkReturns, 1)),
			"AAPL": pricePoints("AAPL", 0, compound(benchmarkReturns, 2)),
			"TSLA": pricePoints("TSLA", 0, compound(benchmarkReturns, 0.5)),
		},
	}
}

func newTestContext(provider PriceProvider) ServiceContext {
	return ServiceContext{
		Context:       context.Background(),
		Logger:        zap.NewNop(),
		PriceProvider: provider,
		FetchWorkers:  2,
		Now:           func() time.Time { return testNow },
	}
}
