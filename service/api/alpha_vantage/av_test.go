package alpha_vantage

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	ex "github.com/Arushi-290602/Captial-Asset-Price-Management/data/extensions"
	c "github.com/Arushi-290602/Captial-Asset-Price-Management/service/api"
)

const dailyResponse = `{
    "Meta Data": {
        "1. Information": "Daily Prices (open, high, low, close) and Volumes",
        "2. Symbol": "AAPL",
        "3. Last Refreshed": "2025-10-31",
        "4. Output Size": "Full size",
        "5. Time Zone": "US/Eastern"
    },
    "Time Series (Daily)": {
        "2025-10-31": {
            "1. open": "276.9900",
            "2. high": "277.3200",
            "3. low": "269.1600",
            "4. close": "270.3700",
            "5. volume": "86167123"
        },
        "2025-10-30": {
            "1. open": "271.9900",
            "2. high": "274.1400",
            "3. low": "268.4800",
            "4. close": "271.4000",
            "5. volume": "69886534"
        },
        "2025-10-29": {
            "1. open": "269.2750",
            "2. high": "271.4100",
            "3. low": "267.1100",
            "4. close": "",
            "5. volume": "51086742"
        },
        "2025-09-30": {
            "1. open": "254.8550",
            "2. high": "255.9190",
            "3. low": "253.1100",
            "4. close": "254.6300",
            "5. volume": "37704259"
        }
    }
}`

type mockConnection struct {
	status   int
	body     string
	requests []*url.URL
}

func (mc *mockConnection) Request(ctx context.Context, endpoint *url.URL) (*http.Response, error) {
	mc.requests = append(mc.requests, endpoint)
	return &http.Response{
		StatusCode: mc.status,
		Body:       io.NopCloser(strings.NewReader(mc.body)),
	}, nil
}

func getMockClient(t *testing.T, status int, body string) (*AlphaVantageClient, *mockConnection) {
	return getMockClientAdjusted(t, status, body, false)
}

func getMockClientAdjusted(t *testing.T, status int, body string, adjusted bool) (*AlphaVantageClient, *mockConnection) {
	t.Helper()
	conn := &mockConnection{status: status, body: body}
	avc := GetClient("av-test-api-key", 6000, adjusted, zap.NewNop())
	avc.Client = &c.Client{Connection: conn, ApiKey: "av-test-api-key"}
	return &avc, conn
}

func Test_AlphaVantage_StockTimeSeriesDaily(t *testing.T) {
	avc, conn := getMockClient(t, http.StatusOK, dailyResponse)

	res, err := avc.GetStockTimeSeries(context.Background(), TimeSeriesDaily, "AAPL")
	if err != nil {
		t.Fatalf("error getting stock time series: %s", err)
	}

	// request
	ex.AssertAreEqual(t, "requests", 1, len(conn.requests))
	q := conn.requests[0].Query()
	ex.AssertAreEqual(t, "function", "TIME_SERIES_DAILY", q.Get("function"))
	ex.AssertAreEqual(t, "symbol", "AAPL", q.Get("symbol"))
	ex.AssertAreEqual(t, "output size", "full", q.Get("outputsize"))
	ex.AssertAreEqual(t, "api key", "av-test-api-key", q.Get("apikey"))

	// meta data
	ex.AssertAreEqual(t, "symbol", "AAPL", res.Metadata.Symbol)
	ex.AssertAreEqual(t, "time zone", "US/Eastern", res.Metadata.TimeZone)
	ex.AssertAreEqual(t, "output size", "Full size", res.Metadata.OutputSize.String)
	ex.AssertAreEqual(t, "last refreshed", "2025-10-31", ex.FmtShort(res.Metadata.LastRefreshed))

	// time series is sorted oldest first
	ex.AssertAreEqual(t, "length", 4, len(res.TimeSeries))
	ex.AssertAreEqual(t, "first", "2025-09-30", ex.FmtShort(res.TimeSeries[0].Timestamp))
	ex.AssertAreEqual(t, "last", "2025-10-31", ex.FmtShort(res.TimeSeries[3].Timestamp))

	s := res.TimeSeries[3]
	ex.AssertAreEqual(t, "open", 276.99, s.Open.Float64)
	ex.AssertAreEqual(t, "high", 277.32, s.High.Float64)
	ex.AssertAreEqual(t, "low", 269.16, s.Low.Float64)
	ex.AssertAreEqual(t, "close", 270.37, s.Close.Float64)
	ex.AssertAreEqual(t, "volume", float64(86167123), s.Volume.Float64)

	ex.AssertAreEqual(t, "missing close is null", false, res.TimeSeries[1].Close.Valid)
}

func Test_AlphaVantage_DailyClosesWindowAndGaps(t *testing.T) {
	avc, _ := getMockClient(t, http.StatusOK, dailyResponse)

	start := time.Date(2025, time.October, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, time.October, 31, 0, 0, 0, 0, time.UTC)
	points, err := avc.GetDailyCloses(context.Background(), "AAPL", start, end)
	if err != nil {
		t.Fatalf("error getting daily closes: %s", err)
	}

	// 09-30 is outside the window and 10-29 has no close
	ex.AssertAreEqual(t, "points", 2, len(points))
	ex.AssertAreEqual(t, "first date", "2025-10-30", ex.FmtShort(points[0].Date))
	ex.AssertAreEqual(t, "first close", 271.40, points[0].Close)
	ex.AssertAreEqual(t, "symbol", "AAPL", points[1].Symbol)
}

func Test_AlphaVantage_ErrorPayloads(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
	}{
		{"invalid symbol", http.StatusOK, `{"Error Message": "Invalid API call. Please retry or visit the documentation."}`},
		{"rate limited", http.StatusOK, `{"Note": "Thank you for using Alpha Vantage! Our standard API call frequency is 5 calls per minute."}`},
		{"information", http.StatusOK, `{"Information": "This is a premium endpoint."}`},
		{"empty", http.StatusOK, `{}`},
		{"status", http.StatusServiceUnavailable, `oops`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			avc, _ := getMockClient(t, tc.status, tc.body)
			_, err := avc.GetStockTimeSeries(context.Background(), TimeSeriesDaily, "NOPE")
			if !errors.Is(err, ErrApiResponse) {
				t.Fatalf("expected ErrApiResponse, got %v", err)
			}
		})
	}
}

func Test_AlphaVantage_CancelledContextStopsBeforeRequest(t *testing.T) {
	avc, conn := getMockClient(t, http.StatusOK, dailyResponse)
	avc.limiter.Allow() // spend the only token so the next call has to wait

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := avc.GetStockTimeSeries(ctx, TimeSeriesDaily, "AAPL"); err == nil {
		t.Fatalf("expected an error for a cancelled context")
	}
	ex.AssertAreEqual(t, "requests", 0, len(conn.requests))
}

const dailyAdjustedResponse = `{
    "Meta Data": {
        "1. Information": "Daily Time Series with Splits and Dividend Events",
        "2. Symbol": "NVDA",
        "3. Last Refreshed": "2024-06-11",
        "4. Output Size": "Full size",
        "5. Time Zone": "US/Eastern"
    },
    "Time Series (Daily)": {
        "2024-06-11": {
            "1. open": "121.7700",
            "2. high": "122.8700",
            "3. low": "118.7400",
            "4. close": "120.9100",
            "5. adjusted close": "120.9000",
            "6. volume": "222551157",
            "7. dividend amount": "0.0000",
            "8. split coefficient": "1.0"
        },
        "2024-06-07": {
            "1. open": "1197.7000",
            "2. high": "1216.9171",
            "3. low": "1180.2200",
            "4. close": "1208.8800",
            "5. adjusted close": "120.8700",
            "6. volume": "41238580",
            "7. dividend amount": "0.0000",
            "8. split coefficient": "1.0"
        }
    }
}`

func Test_AlphaVantage_AdjustedDailyCloses(t *testing.T) {
	avc, conn := getMockClientAdjusted(t, http.StatusOK, dailyAdjustedResponse, true)

	start := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, time.June, 30, 0, 0, 0, 0, time.UTC)
	points, err := avc.GetDailyCloses(context.Background(), "NVDA", start, end)
	if err != nil {
		t.Fatalf("error getting adjusted daily closes: %s", err)
	}

	ex.AssertAreEqual(t, "function", "TIME_SERIES_DAILY_ADJUSTED", conn.requests[0].Query().Get("function"))
	ex.AssertAreEqual(t, "points", 2, len(points))

	// the split day has a raw close ten times the adjusted one
	ex.AssertAreEqual(t, "pre split close", 120.87, points[0].Close)
	ex.AssertAreEqual(t, "post split close", 120.90, points[1].Close)
}

func Test_AlphaVantage_TimeSeries(t *testing.T) {
	ex.AssertAreEqual(t, "daily", "TIME_SERIES_DAILY", TimeSeriesDaily.Function())
	ex.AssertAreEqual(t, "adjusted key", "Time Series (Daily)", TimeSeriesDailyAdjusted.TimeSeriesKey())
	ex.AssertAreEqual(t, "adjusted", true, TimeSeriesDailyAdjusted.IsAdjusted())
	ex.AssertAreEqual(t, "not adjusted", false, TimeSeriesDaily.IsAdjusted())
	ex.AssertAreEqual(t, "raw close key", ". Close", TimeSeriesDaily.ohlcvKeys()["Close"])
	ex.AssertAreEqual(t, "adjusted close key", ". adjusted close", TimeSeriesDailyAdjusted.ohlcvKeys()["Close"])
}
