// Package purchaser drives one dollar-cost-average purchase run: verify
// the fiat balance, then price, buy, record and notify per configured
// asset.
package purchaser

import (
	"context"
	"fmt"
	"time"

	"github.com/rcr1994/dcabot/internal/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type exchange interface {
	GetBalance(ctx context.Context, asset string) (decimal.Decimal, error)
	GetPrice(ctx context.Context, pair domain.Pair) (domain.PriceQuote, error)
	PlaceMarketBuy(ctx context.Context, pair domain.Pair, volume decimal.Decimal) (domain.OrderResult, error)
}

type recorder interface {
	Record(record domain.TradeRecord) error
}

type messenger interface {
	Notify(ctx context.Context, message string)
}

// Purchaser sequences the per-asset purchase state machine. One instance
// owns one run; it is not reused.
type Purchaser struct {
	exchange   exchange
	notifier   messenger
	ledger     recorder
	journal    *intentJournal
	quoteAsset string
	assets     []domain.AssetOrder
	logger     *zap.Logger

	now func() time.Time
}

// New creates a purchaser for the configured assets. quoteAsset is the
// balance-map key of the fiat currency in Kraken notation (e.g. "ZEUR").
// journalDir, when non-empty, enables the durable purchase intent
// journal.
func New(exch exchange, notif messenger, ledg recorder, quoteAsset string,
	assets []domain.AssetOrder, journalDir string, logger *zap.Logger) (*Purchaser, error) {

	if logger == nil {
		logger = zap.NewNop()
	}

	var journal *intentJournal
	if journalDir != "" {
		var err error
		journal, err = newIntentJournal(journalDir)
		if err != nil {
			return nil, err
		}
	}

	return &Purchaser{
		exchange:   exch,
		notifier:   notif,
		ledger:     ledg,
		journal:    journal,
		quoteAsset: quoteAsset,
		assets:     assets,
		logger:     logger,
		now:        time.Now,
	}, nil
}

// Close releases the purchase journal.
func (p *Purchaser) Close() error {
	if p.journal == nil {
		return nil
	}
	return p.journal.Close()
}

// Run executes one purchase pass over the configured assets, in
// configuration order. A balance-fetch failure aborts the run before any
// asset is processed; every other failure is isolated to its asset. The
// local balance counter is an optimistic estimate: it is deducted only on
// acknowledged orders and never re-queried mid-run.
func (p *Purchaser) Run(ctx context.Context) (*domain.RunReport, error) {
	balance, err := p.exchange.GetBalance(ctx, p.quoteAsset)
	if err != nil {
		p.logger.Error("balance fetch failed, aborting run", zap.Error(err))
		p.notifier.Notify(ctx, fmt.Sprintf("dcabot: could not fetch %s balance, run aborted: %v", p.quoteAsset, err))
		return nil, err
	}

	p.logger.Info("starting purchase run",
		zap.String("balance", balance.String()),
		zap.Int("assets", len(p.assets)))

	report := &domain.RunReport{InitialBalance: balance}

	for _, asset := range p.assets {
		result, remaining := p.processAsset(ctx, asset, balance)
		report.Results = append(report.Results, result)
		balance = remaining
	}

	report.FinalBalance = balance

	var skipped, failed int
	for _, res := range report.Results {
		switch res.Outcome {
		case domain.OutcomeSkipped:
			skipped++
		case domain.OutcomeFailed:
			failed++
		}
	}
	p.notifier.Notify(ctx, fmt.Sprintf("dcabot: run complete: %d purchased, %d skipped, %d failed, balance %s -> %s",
		report.Purchased(), skipped, failed, report.InitialBalance, report.FinalBalance))

	return report, nil
}

// processAsset runs the per-asset leg of the state machine and returns
// the asset's outcome together with the balance left for the next asset.
// The balance is only ever reduced on a successful purchase.
func (p *Purchaser) processAsset(ctx context.Context, asset domain.AssetOrder, balance decimal.Decimal) (domain.AssetResult, decimal.Decimal) {
	log := p.logger.With(zap.String("pair", asset.Pair.String()))

	if asset.FiatAmount.GreaterThan(balance) {
		log.Warn("insufficient funds, skipping asset",
			zap.String("required", asset.FiatAmount.String()),
			zap.String("available", balance.String()))
		p.notifier.Notify(ctx, fmt.Sprintf("dcabot: skipping %s: requires %s, only %s available",
			asset.Pair, asset.FiatAmount, balance))
		return domain.AssetResult{Pair: asset.Pair, Outcome: domain.OutcomeSkipped}, balance
	}

	quote, err := p.exchange.GetPrice(ctx, asset.Pair)
	if err != nil {
		log.Error("price fetch failed", zap.Error(err))
		p.notifier.Notify(ctx, fmt.Sprintf("dcabot: %s purchase failed, could not fetch price: %v", asset.Pair, err))
		return domain.AssetResult{Pair: asset.Pair, Outcome: domain.OutcomeFailed, Detail: err.Error()}, balance
	}

	volume := asset.FiatAmount.Div(quote.Price)

	intent := p.prepareIntent(asset, quote.Price, volume)

	order, err := p.exchange.PlaceMarketBuy(ctx, asset.Pair, volume)
	if err != nil {
		p.failIntent(intent, err.Error())
		log.Error("order placement failed", zap.Error(err))
		p.notifier.Notify(ctx, fmt.Sprintf("dcabot: %s purchase failed: %v", asset.Pair, err))
		return domain.AssetResult{Pair: asset.Pair, Outcome: domain.OutcomeFailed, Detail: err.Error()}, balance
	}
	if !order.Success {
		p.failIntent(intent, order.ErrorDetail)
		log.Warn("order rejected by exchange", zap.String("detail", order.ErrorDetail))
		p.notifier.Notify(ctx, fmt.Sprintf("dcabot: %s order rejected by exchange: %s", asset.Pair, order.ErrorDetail))
		return domain.AssetResult{Pair: asset.Pair, Outcome: domain.OutcomeFailed, Detail: order.ErrorDetail}, balance
	}

	p.doneIntent(intent, order.TransactionID)

	remaining := balance.Sub(asset.FiatAmount)

	record := domain.TradeRecord{
		Timestamp:     p.now(),
		Pair:          asset.Pair,
		Price:         quote.Price,
		Volume:        volume,
		FiatSpent:     asset.FiatAmount,
		TransactionID: order.TransactionID,
	}
	if err := p.ledger.Record(record); err != nil {
		log.Error("ledger write failed", zap.Error(err))
		p.notifier.Notify(ctx, fmt.Sprintf("dcabot: %s purchased but ledger write failed: %v", asset.Pair, err))
	}

	log.Info("asset purchased",
		zap.String("price", quote.Price.String()),
		zap.String("volume", volume.StringFixed(8)),
		zap.String("txid", order.TransactionID),
		zap.String("remaining", remaining.String()))
	p.notifier.Notify(ctx, fmt.Sprintf("dcabot: bought %s for %s at price %s (volume %s, tx %s), %s remaining",
		asset.Pair, asset.FiatAmount, quote.Price, volume.StringFixed(8), order.TransactionID, remaining))

	return domain.AssetResult{Pair: asset.Pair, Outcome: domain.OutcomePurchased}, remaining
}

// prepareIntent writes the pending journal entry. Journal trouble is
// logged and never blocks the purchase.
func (p *Purchaser) prepareIntent(asset domain.AssetOrder, price, volume decimal.Decimal) *intentRecord {
	if p.journal == nil {
		return nil
	}
	intent, err := p.journal.Prepare(asset.Pair, asset.FiatAmount, price, volume, p.now())
	if err != nil {
		p.logger.Warn("failed to journal purchase intent", zap.Error(err))
		return nil
	}
	return intent
}

func (p *Purchaser) failIntent(intent *intentRecord, detail string) {
	if p.journal == nil {
		return
	}
	if err := p.journal.MarkFailed(intent, detail); err != nil {
		p.logger.Warn("failed to journal intent failure", zap.Error(err))
	}
}

func (p *Purchaser) doneIntent(intent *intentRecord, txid string) {
	if p.journal == nil {
		return
	}
	if err := p.journal.MarkDone(intent, txid); err != nil {
		p.logger.Warn("failed to journal intent completion", zap.Error(err))
	}
}
