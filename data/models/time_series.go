package models

import (
	"time"

	"github.com/guregu/null/v6"
)

type TimeSeriesResult struct {
	Metadata   *TimeSeriesMetadata
	TimeSeries []*TimeSeriesData
}

type TimeSeriesMetadata struct {
	Information   null.String
	Symbol        string
	LastRefreshed time.Time
	OutputSize    null.String
	TimeZone      string
}

// TimeSeriesData is one provider row, any field can be missing in the payload
type TimeSeriesData struct {
	Timestamp time.Time
	Open      null.Float
	High      null.Float
	Low       null.Float
	Close     null.Float
	Volume    null.Float
}

// PricePoint is a single closing price for a symbol on a trading date
type PricePoint struct {
	Date   time.Time `json:"date"`
	Symbol string    `json:"symbol"`
	Close  float64   `json:"close"`
}

// ToPricePoints drops rows without a close, those are gaps in the provider data
func (tsr *TimeSeriesResult) ToPricePoints() []*PricePoint {
	res := make([]*PricePoint, 0, len(tsr.TimeSeries))
	for _, d := range tsr.TimeSeries {
		if !d.Close.Valid {
			continue
		}
		res = append(res, &PricePoint{
			Date:   d.Timestamp,
			Symbol: tsr.Metadata.Symbol,
			Close:  d.Close.Float64,
		})
	}
	return res
}
