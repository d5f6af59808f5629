package book

import (
	"github.com/bookworks/rebook/logging"
	"github.com/bookworks/rebook/types"
)

const testInstrument uint32 = 1108

func getTestSide(side types.Side) *OrderBookSide {
	return newSide(logging.NewTestLogger(), side)
}

func getTestBook() *OrderBook {
	return NewOrderBook(logging.NewTestLogger(), NewDefaultConfig(), testInstrument)
}

func newMBO(action types.Action, side types.Side, price int64, size uint32, orderID uint64) *types.MBORecord {
	return &types.MBORecord{
		TsRecv:       1000,
		TsEvent:      1000,
		RType:        types.RTypeMBO,
		PublisherID:  2,
		InstrumentID: testInstrument,
		Action:       action,
		Side:         side,
		Price:        price,
		Size:         size,
		OrderID:      orderID,
		Sequence:     1,
		Symbol:       "TEST",
	}
}
