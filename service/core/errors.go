package core

import (
	"errors"
	"fmt"
)

var (
	// ErrFetchUnavailable means one symbol's price history could not be retrieved
	ErrFetchUnavailable = errors.New("price history unavailable")

	// ErrNoOverlappingData fails the whole request, there is nothing to regress on
	ErrNoOverlappingData = errors.New("no overlapping price data")

	// ErrDegenerateRegression means the market model can not be fit for one symbol
	ErrDegenerateRegression = errors.New("degenerate regression")

	ErrZeroBaselinePrice = errors.New("zero baseline price")
	ErrZeroPrice         = errors.New("zero price")
	ErrUnknownColumn     = errors.New("unknown column")
	ErrInvalidRequest    = errors.New("invalid analysis request")
)

// SymbolError ties an error to the symbol it happened for
type SymbolError struct {
	Symbol string
	Err    error
}

func (e *SymbolError) Error() string {
	return fmt.Sprintf("%s: %v", e.Symbol, e.Err)
}

func (e *SymbolError) Unwrap() error {
	return e.Err
}
