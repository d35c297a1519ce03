package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TradeRecord is one completed purchase, immutable once written.
// FiatSpent is the configured amount that triggered the purchase, not a
// price*volume recomputation, so exchange-side rounding never leaks into
// the books.
type TradeRecord struct {
	Timestamp     time.Time
	Pair          Pair
	Price         decimal.Decimal
	Volume        decimal.Decimal
	FiatSpent     decimal.Decimal
	TransactionID string
}
