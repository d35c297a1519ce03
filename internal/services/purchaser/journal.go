package purchaser

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rcr1994/dcabot/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/gowal"
)

const (
	intentKeyPrefix     = "purchase_intent_"
	intentStatusPending = "pending"
	intentStatusDone    = "done"
	intentStatusFailed  = "failed"

	walSegmentThreshold = 1000
	walMaxSegments      = 100
)

// intentRecord is one durable entry in the purchase journal: what the bot
// was about to buy, and how it ended.
type intentRecord struct {
	ID         string          `json:"id"`
	Status     string          `json:"status"`
	Pair       string          `json:"pair"`
	FiatAmount decimal.Decimal `json:"fiat_amount"`
	Price      decimal.Decimal `json:"price"`
	Volume     decimal.Decimal `json:"volume"`
	Time       time.Time       `json:"time"`
	TxID       string          `json:"txid,omitempty"`
	Error      string          `json:"error,omitempty"`
}

// intentJournal persists purchase intents to a WAL before the order goes
// out, so an operator can see what a crashed run was attempting.
type intentJournal struct {
	wal *gowal.Wal
}

func newIntentJournal(dir string) (*intentJournal, error) {
	wal, err := gowal.NewWAL(gowal.Config{
		Dir:              dir,
		Prefix:           "log_",
		SegmentThreshold: walSegmentThreshold,
		MaxSegments:      walMaxSegments,
		IsInSyncDiskMode: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "open purchase journal")
	}
	return &intentJournal{wal: wal}, nil
}

func (j *intentJournal) Prepare(pair domain.Pair, fiatAmount, price, volume decimal.Decimal, at time.Time) (*intentRecord, error) {
	intent := &intentRecord{
		ID:         uuid.New().String(),
		Status:     intentStatusPending,
		Pair:       pair.String(),
		FiatAmount: fiatAmount,
		Price:      price,
		Volume:     volume,
		Time:       at,
	}
	if err := j.persist(intent); err != nil {
		return nil, err
	}
	return intent, nil
}

func (j *intentJournal) MarkDone(intent *intentRecord, txid string) error {
	if intent == nil {
		return nil
	}
	intent.Status = intentStatusDone
	intent.TxID = txid
	intent.Error = ""
	return j.persist(intent)
}

func (j *intentJournal) MarkFailed(intent *intentRecord, detail string) error {
	if intent == nil {
		return nil
	}
	intent.Status = intentStatusFailed
	intent.Error = detail
	return j.persist(intent)
}

func (j *intentJournal) Close() error {
	return j.wal.Close()
}

func (j *intentJournal) persist(intent *intentRecord) error {
	data, err := json.Marshal(intent)
	if err != nil {
		return errors.Wrap(err, "marshal purchase intent")
	}
	key := fmt.Sprintf("%s%s", intentKeyPrefix, intent.ID)
	return j.wal.Write(j.wal.CurrentIndex()+1, key, data)
}
