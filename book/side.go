package book

import (
	"github.com/google/btree"

	"github.com/bookworks/rebook/logging"
	"github.com/bookworks/rebook/types"
)

const levelTreeDegree = 32

// orderRef locates an order's resting contribution: the price level it lives
// on and the size it rests with there.
type orderRef struct {
	price int64
	size  uint32
}

// OrderBookSide represent a side of the book, either bid or ask.
// Levels are kept in a btree ordered best-to-worst for the side, so the
// depth projection is a plain in-order walk. An order-id index gives O(1)
// targeting for cancels and trades that cannot trust the event price.
type OrderBookSide struct {
	log  *logging.Logger
	side types.Side

	levels     *btree.BTreeG[*PriceLevel]
	orderIndex map[uint64]orderRef
}

func newSide(log *logging.Logger, side types.Side) *OrderBookSide {
	// bids walk from the highest price down, asks from the lowest up
	less := func(a, b *PriceLevel) bool { return a.price < b.price }
	if side == types.SideBid {
		less = func(a, b *PriceLevel) bool { return a.price > b.price }
	}
	return &OrderBookSide{
		log:        log,
		side:       side,
		levels:     btree.NewG(levelTreeDegree, less),
		orderIndex: map[uint64]orderRef{},
	}
}

// getPriceLevel returns the level at the given price, creating it if needed.
func (s *OrderBookSide) getPriceLevel(price int64) *PriceLevel {
	if level, ok := s.levels.Get(&PriceLevel{price: price}); ok {
		return level
	}
	level := NewPriceLevel(price)
	s.levels.ReplaceOrInsert(level)
	return level
}

// addOrder rests a new order on the side. A zero size or a reused order id is
// absorbed as a no-op, the venue owns the stream and is allowed to be sloppy.
func (s *OrderBookSide) addOrder(orderID uint64, price int64, size uint32) {
	if size == 0 {
		return
	}
	if _, ok := s.orderIndex[orderID]; ok {
		if s.log.GetLevel() == logging.DebugLevel {
			s.log.Debug("add for an order id already on the side",
				logging.Uint64("order-id", orderID),
				logging.String("side", s.side.String()))
		}
		return
	}
	s.getPriceLevel(price).addOrder(orderID, size)
	s.orderIndex[orderID] = orderRef{price: price, size: size}
}

// cancelOrder reduces the order's resting contribution by size, removing the
// order when the cancel consumes it fully. The order index is authoritative
// for targeting; the event-carried price is only checked for debug logging as
// some venues echo a stale price on cancel.
func (s *OrderBookSide) cancelOrder(orderID uint64, price int64, size uint32) {
	if ref, ok := s.orderIndex[orderID]; ok && ref.price != price &&
		s.log.GetLevel() == logging.DebugLevel {
		s.log.Debug("cancel carries a stale price",
			logging.Uint64("order-id", orderID),
			logging.Int64("event-price", price),
			logging.Int64("resting-price", ref.price))
	}
	s.reduceOrder(orderID, size)
}

// tradeOrder removes traded quantity from the resting order. Decrement
// semantics are identical to cancelOrder.
func (s *OrderBookSide) tradeOrder(orderID uint64, size uint32) {
	s.reduceOrder(orderID, size)
}

func (s *OrderBookSide) reduceOrder(orderID uint64, size uint32) {
	ref, ok := s.orderIndex[orderID]
	if !ok {
		// cleanup event for an order the venue already removed
		return
	}

	level, ok := s.levels.Get(&PriceLevel{price: ref.price})
	if !ok {
		// the index always points at a live level
		s.log.Panic("order index points at a missing price level",
			logging.Uint64("order-id", orderID),
			logging.Int64("price", ref.price))
	}

	if size >= ref.size {
		// clamp to the resting size, remove the order entirely
		level.removeOrder(orderID)
		delete(s.orderIndex, orderID)
	} else {
		level.reduceOrder(orderID, size)
		ref.size -= size
		s.orderIndex[orderID] = ref
	}

	if level.totalSize == 0 {
		s.levels.Delete(level)
	}
}

// topLevels projects the first depth levels of the side in best-to-worst
// order. Unused trailing slots stay zero.
func (s *OrderBookSide) topLevels() [types.MaxDepth]types.PriceLevel {
	var out [types.MaxDepth]types.PriceLevel
	i := 0
	s.levels.Ascend(func(level *PriceLevel) bool {
		if i >= types.MaxDepth {
			return false
		}
		out[i] = level.export()
		i++
		return true
	})
	return out
}

// bestPriceAndVolume returns the top of book price and volume, or zeros when
// the side is empty.
func (s *OrderBookSide) bestPriceAndVolume() (int64, uint64) {
	var price int64
	var volume uint64
	s.levels.Ascend(func(level *PriceLevel) bool {
		price, volume = level.price, level.totalSize
		return false
	})
	return price, volume
}

func (s *OrderBookSide) hasOrder(orderID uint64) bool {
	_, ok := s.orderIndex[orderID]
	return ok
}

func (s *OrderBookSide) getOrderSize(orderID uint64) uint32 {
	return s.orderIndex[orderID].size
}

func (s *OrderBookSide) getNumberOfLevels() int {
	return s.levels.Len()
}

func (s *OrderBookSide) getNumberOfOrders() int {
	return len(s.orderIndex)
}
