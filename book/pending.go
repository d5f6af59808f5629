package book

import (
	"github.com/bookworks/rebook/types"
)

// pendingTrade tracks one open Trade→Fill→Cancel sequence. The side is kept
// as tagged on the Trade event, which is the aggressor side; the terminator
// rewrites it to the resting side before touching the book.
type pendingTrade struct {
	side      types.Side
	price     int64
	size      uint32
	remaining uint32
	timestamp int64
}

// tradedQuantity is the quantity the terminating Cancel removes from the
// resting side: the running total confirmed by Fill events, or the full trade
// size when the venue skipped straight from Trade to Cancel.
func (p pendingTrade) tradedQuantity() uint32 {
	filled := p.size - p.remaining
	if filled == 0 {
		return p.remaining
	}
	return filled
}

// pendingTrades is a short-lived table of open trade sequences keyed by order
// id. Entries are created by a Trade, decremented by Fills and destroyed by
// the terminating Cancel.
type pendingTrades struct {
	entries map[uint64]pendingTrade
}

func newPendingTrades() *pendingTrades {
	return &pendingTrades{
		entries: map[uint64]pendingTrade{},
	}
}

// open records a new sequence for the order id. An existing entry is
// overwritten, the previous sequence is considered abandoned.
func (p *pendingTrades) open(orderID uint64, side types.Side, price int64, size uint32, ts int64) {
	p.entries[orderID] = pendingTrade{
		side:      side,
		price:     price,
		size:      size,
		remaining: size,
		timestamp: ts,
	}
}

// fill decrements the remaining size of an open sequence, clamped at zero.
// A fill with no open sequence is a no-op.
func (p *pendingTrades) fill(orderID uint64, size uint32) {
	entry, ok := p.entries[orderID]
	if !ok {
		return
	}
	if size >= entry.remaining {
		entry.remaining = 0
	} else {
		entry.remaining -= size
	}
	p.entries[orderID] = entry
}

// take returns and removes the open sequence for the order id, if any.
func (p *pendingTrades) take(orderID uint64) (pendingTrade, bool) {
	entry, ok := p.entries[orderID]
	if ok {
		delete(p.entries, orderID)
	}
	return entry, ok
}

func (p *pendingTrades) len() int {
	return len(p.entries)
}
