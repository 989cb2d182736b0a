package alpha_vantage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"net/http"
	"net/url"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/guregu/null/v6"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	ex "github.com/Arushi-290602/Captial-Asset-Price-Management/data/extensions"
	m "github.com/Arushi-290602/Captial-Asset-Price-Management/data/models"
	c "github.com/Arushi-290602/Captial-Asset-Price-Management/service/api"
)

// public
const (
	HostDefault = "www.alphavantage.co"

	// free tier allowance
	DefaultRequestsPerMinute = 5
)

// private
const (
	// default query parameters
	defaultDataType = "json"
	defaultTimeout  = time.Second * 30

	outputSizeCompact = "compact"
	outputSizeFull    = "full"

	// api request elements
	query    = "query"
	symbol   = "symbol"
	function = "function"

	metaDataKey = "Meta Data"
)

var (
	ErrApiResponse = errors.New("alpha vantage returned an error payload")

	timeSeriesDateFormats = []string{
		"2006-01-02",
		"2006-01-02 15:04:05",
	}

	ohlcvResultKeys = map[string]string{
		"Open":   ". Open",
		"High":   ". High",
		"Low":    ". Low",
		"Close":  ". Close",
		"Volume": ". Volume",
	}

	// keys alpha vantage answers with instead of data when a call is rejected
	apiErrorKeys = []string{"Error Message", "Note", "Information"}
)

type AlphaVantageClient struct {
	*c.Client
	series  TimeSeries
	limiter *rate.Limiter
	logger  *zap.Logger
}

// GetClient builds a throttled client, adjusted switches daily closes to split/dividend adjusted ones
func GetClient(apiKey string, requestsPerMinute int, adjusted bool, logger *zap.Logger) AlphaVantageClient {
	if requestsPerMinute <= 0 {
		requestsPerMinute = DefaultRequestsPerMinute
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	series := TimeSeriesDaily
	if adjusted {
		series = TimeSeriesDailyAdjusted
	}

	return AlphaVantageClient{
		Client:  c.ClientFactory(HostDefault, apiKey, defaultTimeout),
		series:  series,
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), 1),
		logger:  logger,
	}
}

// GetDailyCloses returns the daily closes of ticker between start and end (inclusive)
func (avc *AlphaVantageClient) GetDailyCloses(ctx context.Context, ticker string, start, end time.Time) ([]*m.PricePoint, error) {
	tsr, err := avc.GetStockTimeSeries(ctx, avc.series, ticker)
	if err != nil {
		return nil, err
	}

	from, to := ex.TradingDate(start), ex.TradingDate(end)
	f := func(d *m.TimeSeriesData) bool {
		td := ex.TradingDate(d.Timestamp)
		return !td.Before(from) && !td.After(to)
	}
	tsr.TimeSeries = ex.FilterMultiplePtr(tsr.TimeSeries, f)

	return tsr.ToPricePoints(), nil
}

// https://www.alphavantage.co/documentation/#time-series-data
func (avc *AlphaVantageClient) GetStockTimeSeries(ctx context.Context, timeSeries TimeSeries, ticker string) (*m.TimeSeriesResult, error) {
	if avc == nil || avc.Client == nil {
		panic("alpha vantage client has not been set.")
	}

	// compact is only the last 100 points
	endpoint := avc.buildRequestPath(map[string]string{
		function:     timeSeries.Function(),
		symbol:       ticker,
		"outputsize": outputSizeFull,
	})

	if avc.limiter != nil {
		if err := avc.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("error waiting on alpha vantage rate limit: %w", err)
		}
	}

	avc.logger.Debug("alpha vantage request",
		zap.String("function", timeSeries.Function()),
		zap.String("symbol", ticker))

	response, err := avc.Client.Connection.Request(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("error requesting %s for %s: %w", timeSeries.Function(), ticker, err)
	}

	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d for %s", ErrApiResponse, response.StatusCode, ticker)
	}

	raw, err := parseRawJson(response.Body)
	if err != nil {
		return nil, err
	}

	if err := checkApiError(raw); err != nil {
		return nil, fmt.Errorf("error requesting %s for %s: %w", timeSeries.Function(), ticker, err)
	}

	metaData, timeZone, err := parseMetaData(raw, avc.logger)
	if err != nil {
		return nil, err
	}

	timeSeriesData, err := parseTimeSeriesDataResult(raw, timeSeries, timeZone)
	if err != nil {
		return nil, err
	}

	return &m.TimeSeriesResult{
		Metadata:   metaData,
		TimeSeries: timeSeriesData,
	}, nil
}

func (avc *AlphaVantageClient) buildRequestPath(params map[string]string) *url.URL {
	// build our URL
	endpoint := &url.URL{}
	endpoint.Path = query

	// base parameters
	query := endpoint.Query()
	query.Set("apikey", avc.Client.ApiKey)
	query.Set("datatype", defaultDataType)
	query.Set("outputsize", outputSizeCompact)

	// additional parameters
	for key, value := range params {
		query.Set(key, value)
	}

	endpoint.RawQuery = query.Encode()

	return endpoint
}

func parseRawJson(reader io.Reader) (raw map[string]json.RawMessage, err error) {
	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("error reading response body: %w", err)
	}

	// converting to a <string, raw message> map
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("error unmarshaling response: %w", err)
	}

	return
}

func checkApiError(raw map[string]json.RawMessage) error {
	if _, ok := raw[metaDataKey]; ok {
		return nil
	}

	for _, key := range apiErrorKeys {
		if msg, ok := raw[key]; ok {
			var s string
			if err := json.Unmarshal(msg, &s); err != nil {
				s = string(msg)
			}
			return fmt.Errorf("%w: %s", ErrApiResponse, s)
		}
	}

	return fmt.Errorf("%w: response has no meta data, keys: %v", ErrApiResponse, slices.Sorted(maps.Keys(raw)))
}

func parseMetaData(raw map[string]json.RawMessage, logger *zap.Logger) (*m.TimeSeriesMetadata, *time.Location, error) {
	var metadataElements map[string]string
	if err := json.Unmarshal(raw[metaDataKey], &metadataElements); err != nil {
		return nil, nil, fmt.Errorf("error unmarshaling meta data: %w", err)
	}

	metaDataKeys := slices.Collect(maps.Keys(metadataElements))

	// parse symbol
	sf := func(s string) bool { return strings.HasSuffix(s, ". Symbol") }
	symbolKey, err := ex.FilterSingle(metaDataKeys, sf)
	if err != nil {
		return nil, nil, fmt.Errorf("error extracting symbol for meta data")
	}

	// parse time zone
	tzf := func(s string) bool { return strings.HasSuffix(s, ". Time Zone") }
	timeZoneKey, err := ex.FilterSingle(metaDataKeys, tzf)
	if err != nil {
		return nil, nil, fmt.Errorf("error extracting time zone for meta data")
	}

	timeZone, err := getTimeZone(metadataElements[timeZoneKey], logger)
	if err != nil {
		return nil, nil, fmt.Errorf("error converting time zone key %s, to time.Location: %w", metadataElements[timeZoneKey], err)
	}

	// parse last refreshed
	lrf := func(s string) bool { return strings.HasSuffix(s, ". Last Refreshed") }
	lastRefreshedKey, err := ex.FilterSingle(metaDataKeys, lrf)
	if err != nil {
		return nil, nil, fmt.Errorf("error extracting last refreshed date")
	}

	lastRefreshed, err := parseDate(metadataElements[lastRefreshedKey], timeZone)
	if err != nil {
		return nil, nil, fmt.Errorf("error parsing last refreshed date")
	}

	res := m.TimeSeriesMetadata{
		Information:   optionalMetaData(metadataElements, metaDataKeys, ". Information"),
		Symbol:        metadataElements[symbolKey],
		LastRefreshed: lastRefreshed,
		OutputSize:    optionalMetaData(metadataElements, metaDataKeys, ". Output Size"),
		TimeZone:      metadataElements[timeZoneKey],
	}

	return &res, timeZone, nil
}

func optionalMetaData(elements map[string]string, keys []string, suffix string) null.String {
	key, err := ex.FilterSingle(keys, func(s string) bool { return strings.HasSuffix(s, suffix) })
	if err != nil {
		return null.String{}
	}
	return null.StringFrom(elements[key])
}

func parseTimeSeriesDataResult(raw map[string]json.RawMessage, timeSeries TimeSeries, location *time.Location) ([]*m.TimeSeriesData, error) {
	var timeSeriesElements map[string]map[string]string
	if err := json.Unmarshal(raw[timeSeries.TimeSeriesKey()], &timeSeriesElements); err != nil {
		return nil, fmt.Errorf("error unmarshaling time series: %w", err)
	}

	if len(timeSeriesElements) == 0 {
		return []*m.TimeSeriesData{}, nil
	}

	// populate the lookups
	var firstValue map[string]string
	for _, v := range timeSeriesElements {
		firstValue = v
		break
	}

	ohlcvLookup, err := getLookupKey(timeSeries.ohlcvKeys(), firstValue)
	if err != nil {
		return nil, err
	}

	series := make([]*m.TimeSeriesData, 0, len(timeSeriesElements))
	for timeSeriesKey, timeSeriesValue := range timeSeriesElements {
		// get timestamp
		timestamp, err := parseDate(timeSeriesKey, location)
		if err != nil {
			return nil, fmt.Errorf("error converting TIMESTAMP from string to time.Time: %w", err)
		}

		tsd := m.TimeSeriesData{Timestamp: timestamp}
		if err := parseOHLCV(&tsd, timeSeriesValue, ohlcvLookup); err != nil {
			return nil, fmt.Errorf("error parsing OHLCV: %w", err)
		}

		series = append(series, &tsd)
	}

	// map iteration order is random, callers get the series oldest first
	slices.SortFunc(series, func(a, b *m.TimeSeriesData) int {
		return a.Timestamp.Compare(b.Timestamp)
	})

	return series, nil
}

func parseOHLCV(res *m.TimeSeriesData, value, lookup map[string]string) error {
	v := reflect.ValueOf(res).Elem()
	for jsonKey, structAttribute := range lookup {
		field := v.FieldByName(structAttribute)
		if !field.IsValid() {
			return fmt.Errorf("field %s does not exist", structAttribute)
		}
		if !field.CanSet() {
			return fmt.Errorf("field %s cannot be set", structAttribute)
		}

		field.Set(reflect.ValueOf(parseFloat(value[jsonKey])))
	}
	return nil
}

func getLookupKey(expectedKeys, values map[string]string) (map[string]string, error) {
	res := make(map[string]string)
	responseValueHeaders := slices.Collect(maps.Keys(values))

	for key, value := range expectedKeys {
		f := func(s string) bool {
			return strings.HasSuffix(strings.ToLower(s), strings.ToLower(value))
		}
		if jsonKey, err := ex.FilterSingle(responseValueHeaders, f); err == nil {
			res[jsonKey] = key
		}
	}

	if len(res) == 0 {
		return nil, fmt.Errorf("error generating key value map from av response object. Available headers: %v", responseValueHeaders)
	}

	return res, nil
}

func getTimeZone(location string, logger *zap.Logger) (*time.Location, error) {
	var loc string
	switch strings.ToUpper(location) {
	case "US/EASTERN":
		loc = "America/New_York"
	default:
		logger.Warn("default time zone hit, time zone is not recognized", zap.String("timeZone", location))
		return time.UTC, nil
	}

	res, err := time.LoadLocation(loc)
	if err != nil {
		return nil, fmt.Errorf("error parsing time zone %s in time.LoadLocation", loc)
	}

	return res, nil
}

func parseDate(dateString string, location *time.Location) (time.Time, error) {
	for _, format := range timeSeriesDateFormats {
		t, err := time.ParseInLocation(format, dateString, location)
		if err != nil {
			continue
		}
		return t, nil
	}
	return time.Time{}, fmt.Errorf("error converting date %s to time.Time", dateString)
}

func parseFloat(val string) null.Float {
	if val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return null.FloatFrom(f)
		}
	}
	return null.Float{}
}
