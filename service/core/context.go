package core

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultBenchmarkSymbol = "SPY"
	DefaultFetchWorkers    = 4
)

type ServiceContext struct {
	Context         context.Context
	Logger          *zap.Logger
	PriceProvider   PriceProvider
	BenchmarkSymbol string
	FetchWorkers    int
	Now             func() time.Time // wall clock unless a test pins it
}

// WithContext returns a copy bound to ctx, used to scope a request
func (sc ServiceContext) WithContext(ctx context.Context) ServiceContext {
	sc.Context = ctx
	return sc
}

func (sc *ServiceContext) ctx() context.Context {
	if sc.Context == nil {
		return context.Background()
	}
	return sc.Context
}

func (sc *ServiceContext) logger() *zap.Logger {
	if sc.Logger == nil {
		return zap.NewNop()
	}
	return sc.Logger
}

func (sc *ServiceContext) now() time.Time {
	if sc.Now == nil {
		return time.Now()
	}
	return sc.Now()
}

func (sc *ServiceContext) benchmarkSymbol() string {
	if sc.BenchmarkSymbol == "" {
		return DefaultBenchmarkSymbol
	}
	return sc.BenchmarkSymbol
}

func (sc *ServiceContext) fetchWorkers() int {
	if sc.FetchWorkers <= 0 {
		return DefaultFetchWorkers
	}
	return sc.FetchWorkers
}
