package domain

import (
	"github.com/shopspring/decimal"
)

// AssetOrder is one configured periodic purchase: spend FiatAmount of the
// quote currency on Pair. The position in the configured list is the
// purchase order; later assets see the balance as left by earlier ones.
type AssetOrder struct {
	Pair       Pair
	FiatAmount decimal.Decimal
}

// PriceQuote is the last-trade price for a pair, fetched fresh per asset.
type PriceQuote struct {
	Pair  Pair
	Price decimal.Decimal
}

// OrderResult is the exchange's immediate acknowledgement of an order.
// A rejected order is a normal outcome, not an error: Success is false
// and ErrorDetail carries the exchange's reason.
type OrderResult struct {
	Success       bool
	TransactionID string
	ErrorDetail   string
}
