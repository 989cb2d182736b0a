package core

import (
	"fmt"
	"time"

	ex "github.com/Arushi-290602/Captial-Asset-Price-Management/data/extensions"
	m "github.com/Arushi-290602/Captial-Asset-Price-Management/data/models"
)

// Align inner joins the asset series and the benchmark on date.
// Only dates present in every non empty input survive, rows come out ascending,
// asset columns keep the order they were given in and the benchmark columns go last.
// Empty asset series are skipped, an empty benchmark or no surviving dates is ErrNoOverlappingData.
func Align(benchmark *m.SeriesTable, assets []*m.SeriesTable) (*m.SeriesTable, error) {
	if benchmark.IsEmpty() {
		return nil, fmt.Errorf("%w: benchmark series is empty", ErrNoOverlappingData)
	}

	inputs := ex.FilterMultiplePtr(assets, func(st *m.SeriesTable) bool { return !st.IsEmpty() })
	if len(inputs) == 0 {
		return nil, fmt.Errorf("%w: every asset series is empty", ErrNoOverlappingData)
	}
	inputs = append(inputs, benchmark)

	// row index of every date, per input
	lookups := make([]map[int64]int, len(inputs))
	for i, st := range inputs {
		lookups[i] = make(map[int64]int, st.Len())
		for row, d := range st.Dates {
			lookups[i][d.Unix()] = row
		}
	}

	columns := make([]string, 0, len(inputs))
	for _, st := range inputs {
		columns = append(columns, st.Columns...)
	}

	// the benchmark is already ascending, walking it keeps the output ascending
	dates := make([]time.Time, 0, benchmark.Len())
	rows := make([][]int, 0, benchmark.Len())
	for _, d := range benchmark.Dates {
		key := d.Unix()
		row := make([]int, len(inputs))
		found := true
		for i, lookup := range lookups {
			idx, ok := lookup[key]
			if !ok {
				found = false
				break
			}
			row[i] = idx
		}

		if found {
			dates = append(dates, d)
			rows = append(rows, row)
		}
	}

	if len(dates) == 0 {
		return nil, fmt.Errorf("%w: the benchmark and assets share no trading dates", ErrNoOverlappingData)
	}

	values := make([][]float64, 0, len(columns))
	for i, st := range inputs {
		for c := range st.Columns {
			v := make([]float64, len(rows))
			for r, row := range rows {
				v[r] = st.Values[c][row[i]]
			}
			values = append(values, v)
		}
	}

	res, err := m.NewSeriesTable(dates, columns, values)
	if err != nil {
		return nil, fmt.Errorf("error aligning series: %w", err)
	}

	return res, nil
}
