package core

import (
	"fmt"
	"slices"
	"time"

	ex "github.com/Arushi-290602/Captial-Asset-Price-Management/data/extensions"
	m "github.com/Arushi-290602/Captial-Asset-Price-Management/data/models"
)

// DailyReturn converts every column to its simple day over day return,
// r[i] = (p[i] - p[i-1]) / p[i-1]. The first row has no prior day and is dropped.
func DailyReturn(table *m.SeriesTable) (*m.SeriesTable, error) {
	n := table.Len()
	if n < 2 {
		return emptyLike(table), nil
	}

	values := make([][]float64, len(table.Columns))
	for c, prices := range table.Values {
		returns := make([]float64, n-1)
		for i := 1; i < n; i++ {
			prev := prices[i-1]
			if prev == 0 {
				return nil, fmt.Errorf("%w: %s on %s", ErrZeroPrice, table.Columns[c], ex.FmtShort(table.Dates[i-1]))
			}
			returns[i-1] = (prices[i] - prev) / prev
		}
		values[c] = returns
	}

	return m.NewSeriesTable(slices.Clone(table.Dates[1:]), slices.Clone(table.Columns), values)
}

// Normalize rebases every column so its first value is exactly 1
func Normalize(table *m.SeriesTable) (*m.SeriesTable, error) {
	if table.IsEmpty() {
		return emptyLike(table), nil
	}

	values := make([][]float64, len(table.Columns))
	for c, prices := range table.Values {
		base := prices[0]
		if base == 0 {
			return nil, fmt.Errorf("%w: %s on %s", ErrZeroBaselinePrice, table.Columns[c], ex.FmtShort(table.Dates[0]))
		}

		normalized := make([]float64, len(prices))
		for i, p := range prices {
			normalized[i] = p / base
		}
		values[c] = normalized
	}

	return m.NewSeriesTable(slices.Clone(table.Dates), slices.Clone(table.Columns), values)
}

func emptyLike(table *m.SeriesTable) *m.SeriesTable {
	values := make([][]float64, len(table.Columns))
	for c := range values {
		values[c] = []float64{}
	}

	return &m.SeriesTable{
		Dates:   []time.Time{},
		Columns: slices.Clone(table.Columns),
		Values:  values,
	}
}
