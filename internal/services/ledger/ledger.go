// Package ledger appends completed purchases to two columnar files: an
// operational trade log and an accounting export shaped for portfolio and
// tax tools.
package ledger

import (
	"encoding/csv"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/rcr1994/dcabot/internal/domain"
	"go.uber.org/zap"
)

const volumePrecision = 8

var tradesHeader = []string{"timestamp", "pair", "price", "volume", "fiat_spent", "txid"}

var exportHeader = []string{
	"Date",
	"Sent Amount",
	"Sent Currency",
	"Received Amount",
	"Received Currency",
	"Fee Amount",
	"Fee Currency",
	"Net Worth Amount",
	"Net Worth Currency",
	"Label",
	"Description",
	"TxHash",
}

// Ledger is an append-only trade record writer. Records are purely
// additive: identical records append identical rows, nothing is deduped.
type Ledger struct {
	tradesPath   string
	exportPath   string
	fiatCurrency string
	logger       *zap.Logger
}

// New creates a ledger writing the operational log to tradesPath and the
// accounting export to exportPath. fiatCurrency is the display symbol of
// the spent currency in export rows (e.g. "EUR").
func New(tradesPath, exportPath, fiatCurrency string, logger *zap.Logger) *Ledger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ledger{
		tradesPath:   tradesPath,
		exportPath:   exportPath,
		fiatCurrency: fiatCurrency,
		logger:       logger,
	}
}

// Record appends the trade to both files. Each file self-initializes its
// header the first time it is absent or empty. A write failure is
// returned so the caller can surface it to the operator, but it must
// never abort remaining asset processing.
func (l *Ledger) Record(record domain.TradeRecord) error {
	timestamp := record.Timestamp.UTC()

	tradeRow := []string{
		timestamp.Format(time.RFC3339),
		record.Pair.String(),
		record.Price.String(),
		record.Volume.StringFixed(volumePrecision),
		record.FiatSpent.String(),
		record.TransactionID,
	}
	if err := appendRow(l.tradesPath, tradesHeader, tradeRow); err != nil {
		l.logger.Error("failed to append trade log row", zap.Error(err))
		return errors.Wrap(err, "trade log write failed")
	}

	exportRow := []string{
		timestamp.Format("2006-01-02 15:04:05 UTC"),
		record.FiatSpent.String(),
		l.fiatCurrency,
		record.Volume.StringFixed(volumePrecision),
		BaseSymbol(record.Pair),
		"", // fee amount
		"", // fee currency
		"", // net worth amount
		"", // net worth currency
		"trade",
		"DCA market buy " + record.Pair.String(),
		record.TransactionID,
	}
	if err := appendRow(l.exportPath, exportHeader, exportRow); err != nil {
		l.logger.Error("failed to append accounting export row", zap.Error(err))
		return errors.Wrap(err, "accounting export write failed")
	}

	return nil
}

func appendRow(path string, header, row []string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return errors.Wrapf(err, "stat %s", path)
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(header); err != nil {
			return errors.Wrapf(err, "write header to %s", path)
		}
	}
	if err := w.Write(row); err != nil {
		return errors.Wrapf(err, "write row to %s", path)
	}
	w.Flush()
	return errors.Wrapf(w.Error(), "flush %s", path)
}
