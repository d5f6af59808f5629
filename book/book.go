package book

import (
	"time"

	"github.com/bookworks/rebook/logging"
	"github.com/bookworks/rebook/types"
)

// OrderBook rebuilds the depth-limited MBP view of a single instrument from
// its MBO event stream. It owns one side per direction and the pending-trade
// table, and is driven by exactly one submitter at a time; it performs no
// internal locking.
type OrderBook struct {
	log *logging.Logger

	Config

	instrumentID uint32
	bid          *OrderBookSide
	ask          *OrderBookSide
	pending      *pendingTrades
	stats        Stats
}

// NewOrderBook instantiate a new book for one instrument.
func NewOrderBook(log *logging.Logger, config Config, instrumentID uint32) *OrderBook {
	log = log.Named(namedLogger)
	log.SetLevel(config.Level.Get())

	return &OrderBook{
		log:          log,
		Config:       config,
		instrumentID: instrumentID,
		bid:          newSide(log, types.SideBid),
		ask:          newSide(log, types.SideAsk),
		pending:      newPendingTrades(),
	}
}

// ReloadConf update the internal configuration of the book engine.
func (b *OrderBook) ReloadConf(cfg Config) {
	b.log.Info("reloading configuration")
	if b.log.GetLevel() != cfg.Level.Get() {
		b.log.Info("updating log level",
			logging.String("old", b.log.GetLevel().String()),
			logging.String("new", cfg.Level.String()),
		)
		b.log.SetLevel(cfg.Level.Get())
	}
	b.Config = cfg
}

// Process applies one MBO event to the book and projects the resulting
// depth-10 snapshot. It is total over business input: semantically dead
// events are absorbed as no-ops and still produce a snapshot. The only
// events that produce no snapshot are initial-clear sentinels (action 'R' at
// sequence 0), reported by the second return value.
func (b *OrderBook) Process(rec *types.MBORecord) (*types.MBPRecord, bool) {
	// initial clear sentinel: dropped before dispatch, no mutation, no
	// snapshot, no stats
	if rec.Action == types.ActionReplace && rec.Sequence == 0 {
		return nil, false
	}

	start := time.Now()

	switch rec.Action {
	case types.ActionAdd:
		b.handleAdd(rec)
	case types.ActionCancel:
		b.handleCancel(rec)
	case types.ActionTrade:
		b.pending.open(rec.OrderID, rec.Side, rec.Price, rec.Size, rec.TsEvent)
	case types.ActionFill:
		b.pending.fill(rec.OrderID, rec.Size)
	default:
		// replace is not present in the supported input, ignore
	}

	b.stats.update(rec.Action, time.Since(start))

	if b.LogPriceLevelsDebug && b.log.GetLevel() == logging.DebugLevel {
		bidPrice, bidVolume := b.bid.bestPriceAndVolume()
		askPrice, askVolume := b.ask.bestPriceAndVolume()
		b.log.Debug("book state",
			logging.Uint64("sequence", rec.Sequence),
			logging.Int64("best-bid-price", bidPrice),
			logging.Uint64("best-bid-volume", bidVolume),
			logging.Int64("best-ask-price", askPrice),
			logging.Uint64("best-ask-volume", askVolume),
		)
	}

	return b.snapshot(rec), true
}

func (b *OrderBook) handleAdd(rec *types.MBORecord) {
	switch rec.Side {
	case types.SideBid:
		b.bid.addOrder(rec.OrderID, rec.Price, rec.Size)
	case types.SideAsk:
		b.ask.addOrder(rec.OrderID, rec.Price, rec.Size)
	}
}

// handleCancel distinguishes the terminator of a Trade→Fill→Cancel sequence
// from a plain cancel by presence of a pending entry for the order id.
func (b *OrderBook) handleCancel(rec *types.MBORecord) {
	if entry, ok := b.pending.take(rec.OrderID); ok {
		b.settleTrade(rec.OrderID, entry)
		return
	}

	switch rec.Side {
	case types.SideBid:
		b.bid.cancelOrder(rec.OrderID, rec.Price, rec.Size)
	case types.SideAsk:
		b.ask.cancelOrder(rec.OrderID, rec.Price, rec.Size)
	}
}

// settleTrade removes the traded quantity from the book. The Trade event
// carries the aggressor side, so the resting liquidity lives on the opposite
// side. A neutral-sided trade never touches the book.
func (b *OrderBook) settleTrade(orderID uint64, entry pendingTrade) {
	quantity := entry.tradedQuantity()
	switch entry.side.Opposite() {
	case types.SideBid:
		b.bid.tradeOrder(orderID, quantity)
	case types.SideAsk:
		b.ask.tradeOrder(orderID, quantity)
	default:
		if b.log.GetLevel() == logging.DebugLevel {
			b.log.Debug("discarding neutral-sided trade sequence",
				logging.Uint64("order-id", orderID))
		}
	}

	if b.LogRemovedOrdersDebug && b.log.GetLevel() == logging.DebugLevel {
		b.log.Debug("trade sequence settled",
			logging.Uint64("order-id", orderID),
			logging.String("aggressor-side", entry.side.String()),
			logging.Uint32("quantity", quantity),
		)
	}
}

// snapshot projects the current book state onto an MBP record, forwarding
// the non-book fields of the event that produced it.
func (b *OrderBook) snapshot(rec *types.MBORecord) *types.MBPRecord {
	return &types.MBPRecord{
		TsRecv:       rec.TsRecv,
		TsEvent:      rec.TsEvent,
		RType:        types.RTypeMBP,
		PublisherID:  rec.PublisherID,
		InstrumentID: rec.InstrumentID,
		Action:       rec.Action,
		Side:         rec.Side,
		Depth:        0,
		Price:        rec.Price,
		Size:         rec.Size,
		Flags:        rec.Flags,
		TsInDelta:    rec.TsInDelta,
		Sequence:     rec.Sequence,
		BidLevels:    b.bid.topLevels(),
		AskLevels:    b.ask.topLevels(),
		Symbol:       rec.Symbol,
		OrderID:      rec.OrderID,
	}
}

// Stats returns a copy of the processing counters.
func (b *OrderBook) Stats() Stats {
	return b.stats
}

// InstrumentID returns the instrument this book is keyed on.
func (b *OrderBook) InstrumentID() uint32 {
	return b.instrumentID
}

// BidLevelCount returns the number of live bid levels.
func (b *OrderBook) BidLevelCount() int {
	return b.bid.getNumberOfLevels()
}

// AskLevelCount returns the number of live ask levels.
func (b *OrderBook) AskLevelCount() int {
	return b.ask.getNumberOfLevels()
}

// BidOrderCount returns the number of orders resting on the bid side.
func (b *OrderBook) BidOrderCount() int {
	return b.bid.getNumberOfOrders()
}

// AskOrderCount returns the number of orders resting on the ask side.
func (b *OrderBook) AskOrderCount() int {
	return b.ask.getNumberOfOrders()
}

// PendingTradeCount returns the number of open trade sequences.
func (b *OrderBook) PendingTradeCount() int {
	return b.pending.len()
}
