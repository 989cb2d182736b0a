package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	ex "github.com/Arushi-290602/Captial-Asset-Price-Management/data/extensions"
)

const (
	DateColumn      = "Date"
	BenchmarkColumn = "sp500"

	closeSuffix = "_close"
)

var (
	ErrDuplicateDate = errors.New("duplicate date in series")
	ErrMalformed     = errors.New("malformed series table")
)

// CloseColumn is the column name an asset's closing prices live under
func CloseColumn(symbol string) string {
	return symbol + closeSuffix
}

// SymbolFromColumn reverses CloseColumn, the benchmark column is returned as is
func SymbolFromColumn(column string) string {
	return strings.TrimSuffix(column, closeSuffix)
}

// SeriesTable is a date indexed table of named float columns.
// Dates are strictly ascending and every column has exactly one value per date,
// Values[c][i] is the value of Columns[c] on Dates[i].
type SeriesTable struct {
	Dates   []time.Time
	Columns []string
	Values  [][]float64
}

// NewSeriesTable validates the shape before handing the table out
func NewSeriesTable(dates []time.Time, columns []string, values [][]float64) (*SeriesTable, error) {
	st := &SeriesTable{
		Dates:   dates,
		Columns: columns,
		Values:  values,
	}

	if err := st.Validate(); err != nil {
		return nil, err
	}

	return st, nil
}

// NewPriceSeries builds a single column series out of provider price points.
// Points without a usable close are gaps and are skipped, timestamps are reduced
// to their trading date.
func NewPriceSeries(column string, points []*PricePoint) (*SeriesTable, error) {
	usable := make([]PricePoint, 0, len(points))
	for _, p := range points {
		if p == nil || math.IsNaN(p.Close) || math.IsInf(p.Close, 0) {
			continue
		}
		usable = append(usable, PricePoint{Date: ex.TradingDate(p.Date), Symbol: p.Symbol, Close: p.Close})
	}

	slices.SortFunc(usable, func(a, b PricePoint) int {
		return a.Date.Compare(b.Date)
	})

	dates := make([]time.Time, 0, len(usable))
	closes := make([]float64, 0, len(usable))
	for _, p := range usable {
		if n := len(dates); n > 0 && dates[n-1].Equal(p.Date) {
			return nil, fmt.Errorf("%w: %s has more than one close on %s", ErrDuplicateDate, column, ex.FmtShort(p.Date))
		}
		dates = append(dates, p.Date)
		closes = append(closes, p.Close)
	}

	return NewSeriesTable(dates, []string{column}, [][]float64{closes})
}

func (st *SeriesTable) Validate() error {
	if len(st.Columns) != len(st.Values) {
		return fmt.Errorf("%w: %d columns but %d value vectors", ErrMalformed, len(st.Columns), len(st.Values))
	}

	seen := make(map[string]struct{}, len(st.Columns))
	for c, name := range st.Columns {
		if name == "" || ex.AreEqual(name, DateColumn) {
			return fmt.Errorf("%w: invalid column name %q", ErrMalformed, name)
		}
		if _, ok := seen[name]; ok {
			return fmt.Errorf("%w: column %s appears more than once", ErrMalformed, name)
		}
		seen[name] = struct{}{}

		if len(st.Values[c]) != len(st.Dates) {
			return fmt.Errorf("%w: column %s has %d values for %d dates", ErrMalformed, name, len(st.Values[c]), len(st.Dates))
		}
	}

	for i := 1; i < len(st.Dates); i++ {
		if !st.Dates[i-1].Before(st.Dates[i]) {
			return fmt.Errorf("%w: dates are not strictly ascending at %s", ErrMalformed, ex.FmtShort(st.Dates[i]))
		}
	}

	return nil
}

// Len is the number of rows
func (st *SeriesTable) Len() int {
	if st == nil {
		return 0
	}
	return len(st.Dates)
}

func (st *SeriesTable) IsEmpty() bool {
	return st.Len() == 0
}

// ColumnNames returns the header as it would be displayed, date column first
func (st *SeriesTable) ColumnNames() []string {
	return append([]string{DateColumn}, st.Columns...)
}

func (st *SeriesTable) HasColumn(name string) bool {
	return slices.Contains(st.Columns, name)
}

// Column returns the values of a column, the slice is shared with the table
func (st *SeriesTable) Column(name string) ([]float64, bool) {
	idx := slices.Index(st.Columns, name)
	if idx < 0 {
		return nil, false
	}
	return st.Values[idx], true
}

// Head returns a copy of the first n rows
func (st *SeriesTable) Head(n int) *SeriesTable {
	return st.slice(0, ex.Min(max(n, 0), st.Len()))
}

// Tail returns a copy of the last n rows
func (st *SeriesTable) Tail(n int) *SeriesTable {
	return st.slice(st.Len()-ex.Min(max(n, 0), st.Len()), st.Len())
}

func (st *SeriesTable) slice(from, to int) *SeriesTable {
	values := make([][]float64, len(st.Values))
	for c, v := range st.Values {
		values[c] = slices.Clone(v[from:to])
	}

	return &SeriesTable{
		Dates:   slices.Clone(st.Dates[from:to]),
		Columns: slices.Clone(st.Columns),
		Values:  values,
	}
}

type seriesTableJson struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// MarshalJSON writes the table row wise, dates as yyyy-mm-dd
func (st *SeriesTable) MarshalJSON() ([]byte, error) {
	rows := make([][]any, st.Len())
	for i, d := range st.Dates {
		row := make([]any, 0, len(st.Columns)+1)
		row = append(row, ex.FmtShort(d))
		for c := range st.Columns {
			row = append(row, st.Values[c][i])
		}
		rows[i] = row
	}

	return json.Marshal(seriesTableJson{
		Columns: st.ColumnNames(),
		Rows:    rows,
	})
}
