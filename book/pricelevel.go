package book

import (
	"github.com/bookworks/rebook/types"
)

// PriceLevel aggregates all resting orders at a single price on one side of
// the book. The orders map is the authoritative store of resting sizes; the
// side's order index is only a locator onto it.
type PriceLevel struct {
	price     int64
	totalSize uint64
	orders    map[uint64]uint32
}

// NewPriceLevel instantiate a new PriceLevel.
func NewPriceLevel(price int64) *PriceLevel {
	return &PriceLevel{
		price:  price,
		orders: map[uint64]uint32{},
	}
}

func (l *PriceLevel) addOrder(orderID uint64, size uint32) {
	l.orders[orderID] = size
	l.totalSize += uint64(size)
}

// reduceOrder shrinks the resting size of the given order. The caller
// guarantees size is strictly smaller than the resting size.
func (l *PriceLevel) reduceOrder(orderID uint64, size uint32) {
	l.orders[orderID] -= size
	l.totalSize -= uint64(size)
}

// removeOrder takes the order out of the level entirely and returns the size
// it was resting with.
func (l *PriceLevel) removeOrder(orderID uint64) uint32 {
	size := l.orders[orderID]
	l.totalSize -= uint64(size)
	delete(l.orders, orderID)
	return size
}

func (l *PriceLevel) orderCount() uint32 {
	return uint32(len(l.orders))
}

func (l *PriceLevel) export() types.PriceLevel {
	return types.PriceLevel{
		Price: l.price,
		Size:  uint32(l.totalSize),
		Count: l.orderCount(),
	}
}
