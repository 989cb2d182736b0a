package alpaca

import (
	"context"
	"fmt"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
	"go.uber.org/zap"

	ex "github.com/Arushi-290602/Captial-Asset-Price-Management/data/extensions"
	m "github.com/Arushi-290602/Captial-Asset-Price-Management/data/models"
)

// BarsClient is the part of the alpaca market data client we depend on
type BarsClient interface {
	GetBars(symbol string, req marketdata.GetBarsRequest) ([]marketdata.Bar, error)
}

type AlpacaClient struct {
	bars   BarsClient
	feed   marketdata.Feed
	logger *zap.Logger
}

func GetClient(apiKey, apiSecret string, logger *zap.Logger) AlpacaClient {
	if logger == nil {
		logger = zap.NewNop()
	}

	return AlpacaClient{
		bars: marketdata.NewClient(marketdata.ClientOpts{
			APIKey:    apiKey,
			APISecret: apiSecret,
		}),
		feed:   marketdata.IEX, // the free plan only has iex
		logger: logger,
	}
}

// GetDailyCloses returns split and dividend adjusted daily closes between start and end
func (ac *AlpacaClient) GetDailyCloses(ctx context.Context, symbol string, start, end time.Time) ([]*m.PricePoint, error) {
	// the sdk call takes no context, at least don't start one for a caller that is gone
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ac.logger.Debug("alpaca bars request",
		zap.String("symbol", symbol),
		zap.String("start", ex.FmtShort(start)),
		zap.String("end", ex.FmtShort(end)))

	bars, err := ac.bars.GetBars(symbol, marketdata.GetBarsRequest{
		TimeFrame:  marketdata.OneDay,
		Adjustment: marketdata.All,
		Start:      start,
		End:        end,
		Feed:       ac.feed,
	})
	if err != nil {
		return nil, fmt.Errorf("error getting daily bars for %s: %w", symbol, err)
	}

	res := make([]*m.PricePoint, 0, len(bars))
	for _, b := range bars {
		res = append(res, &m.PricePoint{
			Date:   b.Timestamp,
			Symbol: symbol,
			Close:  b.Close,
		})
	}

	return res, nil
}
