package alpha_vantage

import (
	"maps"
	"strings"
)

type TimeSeries uint8

// TimeSeries picks raw or split/dividend adjusted daily prices
const (
	TimeSeriesDaily TimeSeries = iota
	TimeSeriesDailyAdjusted
)

func (t TimeSeries) Function() string {
	switch t {
	case TimeSeriesDaily:
		return "TIME_SERIES_DAILY"
	case TimeSeriesDailyAdjusted:
		return "TIME_SERIES_DAILY_ADJUSTED"
	default:
		return ""
	}
}

// TimeSeriesKey is the key the series itself sits under in the response body
func (t TimeSeries) TimeSeriesKey() string {
	switch t {
	case TimeSeriesDaily, TimeSeriesDailyAdjusted:
		return "Time Series (Daily)"
	default:
		return ""
	}
}

func (t TimeSeries) IsAdjusted() bool {
	return strings.HasSuffix(t.Function(), "_ADJUSTED")
}

// ohlcvKeys maps struct fields to the suffix of the payload key holding them,
// adjusted series report the adjusted close next to the raw one
func (t TimeSeries) ohlcvKeys() map[string]string {
	res := maps.Clone(ohlcvResultKeys)
	if t.IsAdjusted() {
		res["Close"] = ". adjusted close"
	}
	return res
}
