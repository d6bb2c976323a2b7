package xeno

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"
)

// Aggregator periodically drains the receipt queue and folds the drained
// batch into the communication log and the per-campaign delivery totals.
//
// The drain is destructive: receipts are removed from the queue before they
// are durably folded, so a write failure after the drain loses that batch
// (at-most-once). Counters are only ever applied as increments, which keeps
// consecutive batches composable by addition.
type Aggregator struct {
	settings   Settings
	logger     Logger
	queue      ReceiptQueue
	logs       CommunicationLogStore
	campaigns  CampaignStore
	successCtr Counter
	errorCtr   Counter
	draining   atomic.Bool
}

var _ worker = (*Aggregator)(nil)

// NewAggregator creates a batch aggregator over the provided queue and
// stores.
func NewAggregator(s Settings, q ReceiptQueue, logs CommunicationLogStore, campaigns CampaignStore, options ...Option) *Aggregator {
	if q == nil || logs == nil || campaigns == nil {
		panic("you must provide a queue, a communication log store and a campaign store")
	}
	validateSettings(&s)

	a := &Aggregator{
		settings:   s,
		logger:     &NopLogger{},
		queue:      q,
		logs:       logs,
		campaigns:  campaigns,
		successCtr: &NopCounter{},
		errorCtr:   &NopCounter{},
	}
	for _, o := range options {
		o(a)
	}
	return a
}

func (a *Aggregator) setLogger(l Logger) {
	a.logger = l
}

func (a *Aggregator) setCounters(success Counter, failure Counter) {
	if success != nil {
		a.successCtr = success
	}
	if failure != nil {
		a.errorCtr = failure
	}
}

// Run executes the periodic drain loop until the context is cancelled. An
// in-flight batch finishes before Run returns; no batch error ever
// terminates the loop.
func (a *Aggregator) Run(ctx context.Context) {
	a.logger.Debug(fmt.Sprintf("batch aggregator started (flush interval %s)", a.settings.FlushInterval))
	ticker := time.NewTicker(a.settings.FlushInterval)
	defer ticker.Stop()

	for {
		a.flush(ctx)
		select {
		case <-ctx.Done():
			a.logger.Info("batch aggregator stopped")
			return
		case <-ticker.C:
		}
	}
}

// flush performs one drain-and-fold pass. A tick that fires while a previous
// drain is still in progress is skipped, never run in parallel: a split
// queue read would double-count receipts.
func (a *Aggregator) flush(ctx context.Context) {
	if !a.draining.CompareAndSwap(false, true) {
		a.logger.Warn("previous drain still in progress; skipping this tick")
		return
	}
	defer a.draining.Store(false)

	receipts, err := a.queue.DrainAll(ctx)
	if err != nil {
		a.logger.Error("draining the receipt queue", err)
		return
	}
	if len(receipts) == 0 {
		return
	}

	upserts, deltas := foldReceipts(receipts)

	if err := a.logs.BulkUpsert(ctx, upserts); err != nil {
		a.logger.Error(fmt.Sprintf("writing %d communication log rows (batch of %d receipts lost)", len(upserts), len(receipts)), err)
		a.errorCtr.Inc(int64(len(receipts)))
		return
	}

	var lost int
	for campaignID, delta := range deltas {
		if err := a.campaigns.IncrementDeliveryStats(ctx, campaignID, *delta); err != nil {
			a.logger.Error(fmt.Sprintf("incrementing delivery stats for campaign '%s'", campaignID), err)
			a.errorCtr.Inc(int64(delta.Sent + delta.Failed))
			lost += delta.Sent + delta.Failed
		}
	}

	// a receipt counts as folded or lost, never both
	if folded := len(receipts) - lost; folded > 0 {
		a.successCtr.Inc(int64(folded))
	}
	a.logger.Info(fmt.Sprintf("%d receipts folded into %d communication log rows across %d campaigns", len(receipts), len(upserts), len(deltas)))
}

type logKey struct {
	userID     string
	campaignID string
}

// foldReceipts groups a drained batch by (user, campaign) and accumulates the
// per-pair and per-campaign deltas. The upsert slice preserves the FIFO order
// of first appearance; the status kept for a pair is the one of the last
// receipt processed, matching the order-sensitivity of the log entry.
func foldReceipts(receipts []*DeliveryReceipt) ([]*CommunicationLogUpsert, map[string]*CampaignDelta) {
	byPair := make(map[logKey]*CommunicationLogUpsert, len(receipts))
	upserts := make([]*CommunicationLogUpsert, 0, len(receipts))
	deltas := make(map[string]*CampaignDelta)

	for _, r := range receipts {
		key := logKey{userID: r.UserID, campaignID: r.CampaignID}
		row, ok := byPair[key]
		if !ok {
			row = &CommunicationLogUpsert{UserID: r.UserID, CampaignID: r.CampaignID}
			byPair[key] = row
			upserts = append(upserts, row)
		}
		row.Status = r.Status
		row.LastUpdated = r.Timestamp

		delta, ok := deltas[r.CampaignID]
		if !ok {
			delta = &CampaignDelta{}
			deltas[r.CampaignID] = delta
		}
		if r.Status == StatusSent {
			row.SentDelta++
			delta.Sent++
		} else {
			row.FailedDelta++
			delta.Failed++
		}
	}

	return upserts, deltas
}
