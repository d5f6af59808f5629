package book

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookworks/rebook/types"
)

func TestBookAddOneBid(t *testing.T) {
	b := getTestBook()

	snap, ok := b.Process(newMBO(types.ActionAdd, types.SideBid, 1000000, 100, 12345))
	require.True(t, ok)

	assert.Equal(t, types.PriceLevel{Price: 1000000, Size: 100, Count: 1}, snap.BidLevels[0])
	for i := 1; i < types.MaxDepth; i++ {
		assert.Equal(t, types.PriceLevel{}, snap.BidLevels[i])
	}
	for i := 0; i < types.MaxDepth; i++ {
		assert.Equal(t, types.PriceLevel{}, snap.AskLevels[i])
	}
}

func TestBookAddThenCancelSameOrder(t *testing.T) {
	b := getTestBook()

	_, ok := b.Process(newMBO(types.ActionAdd, types.SideBid, 1000000, 100, 12345))
	require.True(t, ok)

	snap, ok := b.Process(newMBO(types.ActionCancel, types.SideBid, 1000000, 100, 12345))
	require.True(t, ok)

	for i := 0; i < types.MaxDepth; i++ {
		assert.Equal(t, types.PriceLevel{}, snap.BidLevels[i])
		assert.Equal(t, types.PriceLevel{}, snap.AskLevels[i])
	}
	assert.Equal(t, 0, b.BidLevelCount())
	assert.Equal(t, 0, b.BidOrderCount())
}

func TestBookMultipleLevelsBothSides(t *testing.T) {
	b := getTestBook()

	b.Process(newMBO(types.ActionAdd, types.SideBid, 1000000, 100, 1))
	b.Process(newMBO(types.ActionAdd, types.SideBid, 990000, 200, 2))
	b.Process(newMBO(types.ActionAdd, types.SideBid, 980000, 300, 3))
	b.Process(newMBO(types.ActionAdd, types.SideAsk, 1010000, 150, 4))
	snap, ok := b.Process(newMBO(types.ActionAdd, types.SideAsk, 1020000, 250, 5))
	require.True(t, ok)

	assert.Equal(t, types.PriceLevel{Price: 1000000, Size: 100, Count: 1}, snap.BidLevels[0])
	assert.Equal(t, types.PriceLevel{Price: 990000, Size: 200, Count: 1}, snap.BidLevels[1])
	assert.Equal(t, types.PriceLevel{Price: 980000, Size: 300, Count: 1}, snap.BidLevels[2])
	assert.Equal(t, types.PriceLevel{}, snap.BidLevels[3])

	assert.Equal(t, types.PriceLevel{Price: 1010000, Size: 150, Count: 1}, snap.AskLevels[0])
	assert.Equal(t, types.PriceLevel{Price: 1020000, Size: 250, Count: 1}, snap.AskLevels[1])
	assert.Equal(t, types.PriceLevel{}, snap.AskLevels[2])
}

// A Trade carries the aggressor side; the resting liquidity it removes lives
// on the opposite side.
func TestBookTradeSequenceSideRewrite(t *testing.T) {
	b := getTestBook()

	b.Process(newMBO(types.ActionAdd, types.SideBid, 1000000, 100, 42))

	b.Process(newMBO(types.ActionTrade, types.SideAsk, 1000000, 40, 42))
	// the trade alone does not touch the book
	assert.Equal(t, uint32(100), b.bid.getOrderSize(42))
	assert.Equal(t, 1, b.PendingTradeCount())

	b.Process(newMBO(types.ActionFill, types.SideAsk, 1000000, 40, 42))
	assert.Equal(t, uint32(100), b.bid.getOrderSize(42))

	snap, ok := b.Process(newMBO(types.ActionCancel, types.SideAsk, 1000000, 40, 42))
	require.True(t, ok)

	assert.Equal(t, types.PriceLevel{Price: 1000000, Size: 60, Count: 1}, snap.BidLevels[0])
	assert.Equal(t, 0, b.PendingTradeCount())
	for i := 0; i < types.MaxDepth; i++ {
		assert.Equal(t, types.PriceLevel{}, snap.AskLevels[i])
	}
}

func TestBookTradeWithoutFillThenCancel(t *testing.T) {
	b := getTestBook()

	b.Process(newMBO(types.ActionAdd, types.SideAsk, 1010000, 150, 7))
	b.Process(newMBO(types.ActionTrade, types.SideBid, 1010000, 50, 7))
	snap, _ := b.Process(newMBO(types.ActionCancel, types.SideBid, 1010000, 50, 7))

	assert.Equal(t, types.PriceLevel{Price: 1010000, Size: 100, Count: 1}, snap.AskLevels[0])
}

func TestBookNeutralTradeSequenceIsDiscarded(t *testing.T) {
	b := getTestBook()

	b.Process(newMBO(types.ActionAdd, types.SideBid, 1000000, 100, 42))
	b.Process(newMBO(types.ActionTrade, types.SideNeutral, 1000000, 40, 42))
	snap, _ := b.Process(newMBO(types.ActionCancel, types.SideNeutral, 1000000, 40, 42))

	assert.Equal(t, types.PriceLevel{Price: 1000000, Size: 100, Count: 1}, snap.BidLevels[0])
	assert.Equal(t, 0, b.PendingTradeCount())
}

func TestBookInitialClearIsSuppressed(t *testing.T) {
	b := getTestBook()

	rec := newMBO(types.ActionReplace, types.SideNeutral, 0, 0, 0)
	rec.Sequence = 0

	snap, ok := b.Process(rec)
	assert.Nil(t, snap)
	assert.False(t, ok)
	assert.Equal(t, uint64(0), b.Stats().RecordsProcessed)
}

func TestBookLateReplaceIsNoopButSnapshots(t *testing.T) {
	b := getTestBook()

	b.Process(newMBO(types.ActionAdd, types.SideBid, 1000000, 100, 1))

	rec := newMBO(types.ActionReplace, types.SideBid, 990000, 50, 2)
	rec.Sequence = 77
	snap, ok := b.Process(rec)
	require.True(t, ok)

	assert.Equal(t, types.PriceLevel{Price: 1000000, Size: 100, Count: 1}, snap.BidLevels[0])
	assert.Equal(t, types.PriceLevel{}, snap.BidLevels[1])
}

func TestBookUnknownCancelIsNoop(t *testing.T) {
	b := getTestBook()

	snap, ok := b.Process(newMBO(types.ActionCancel, types.SideBid, 1000000, 100, 99999))
	require.True(t, ok)

	for i := 0; i < types.MaxDepth; i++ {
		assert.Equal(t, types.PriceLevel{}, snap.BidLevels[i])
		assert.Equal(t, types.PriceLevel{}, snap.AskLevels[i])
	}

	stats := b.Stats()
	assert.Equal(t, uint64(1), stats.RecordsProcessed)
	assert.Equal(t, uint64(1), stats.OrdersCancelled)
}

func TestBookUnknownFillIsNoop(t *testing.T) {
	b := getTestBook()

	b.Process(newMBO(types.ActionAdd, types.SideBid, 1000000, 100, 1))
	snap, _ := b.Process(newMBO(types.ActionFill, types.SideAsk, 1000000, 40, 99999))

	assert.Equal(t, types.PriceLevel{Price: 1000000, Size: 100, Count: 1}, snap.BidLevels[0])
	assert.Equal(t, 0, b.PendingTradeCount())
}

func TestBookNeutralAddIsNoop(t *testing.T) {
	b := getTestBook()

	snap, _ := b.Process(newMBO(types.ActionAdd, types.SideNeutral, 1000000, 100, 1))
	assert.Equal(t, types.PriceLevel{}, snap.BidLevels[0])
	assert.Equal(t, types.PriceLevel{}, snap.AskLevels[0])
}

func TestBookSnapshotForwardsEventFields(t *testing.T) {
	b := getTestBook()

	rec := newMBO(types.ActionAdd, types.SideBid, 1000000, 100, 12345)
	rec.TsRecv = 111
	rec.TsEvent = 222
	rec.Flags = 130
	rec.TsInDelta = 17000
	rec.Sequence = 851012

	snap, _ := b.Process(rec)
	assert.Equal(t, types.RTypeMBP, snap.RType)
	assert.Equal(t, uint8(0), snap.Depth)
	assert.Equal(t, int64(111), snap.TsRecv)
	assert.Equal(t, int64(222), snap.TsEvent)
	assert.Equal(t, rec.PublisherID, snap.PublisherID)
	assert.Equal(t, rec.InstrumentID, snap.InstrumentID)
	assert.Equal(t, types.ActionAdd, snap.Action)
	assert.Equal(t, types.SideBid, snap.Side)
	assert.Equal(t, int64(1000000), snap.Price)
	assert.Equal(t, uint32(100), snap.Size)
	assert.Equal(t, uint32(130), snap.Flags)
	assert.Equal(t, uint32(17000), snap.TsInDelta)
	assert.Equal(t, uint64(851012), snap.Sequence)
	assert.Equal(t, "TEST", snap.Symbol)
	assert.Equal(t, uint64(12345), snap.OrderID)
}

func TestBookStatsCounters(t *testing.T) {
	b := getTestBook()

	b.Process(newMBO(types.ActionAdd, types.SideBid, 1000000, 100, 42))
	b.Process(newMBO(types.ActionTrade, types.SideAsk, 1000000, 40, 42))
	b.Process(newMBO(types.ActionFill, types.SideAsk, 1000000, 40, 42))
	b.Process(newMBO(types.ActionCancel, types.SideAsk, 1000000, 40, 42))

	stats := b.Stats()
	assert.Equal(t, uint64(4), stats.RecordsProcessed)
	assert.Equal(t, uint64(1), stats.TradesProcessed)
	assert.Equal(t, uint64(1), stats.OrdersAdded)
	assert.Equal(t, uint64(1), stats.OrdersCancelled)
}

// Matched adds and cancels must drain the book back to empty on both sides.
func TestBookRandomAddCancelNetsToEmpty(t *testing.T) {
	b := getTestBook()
	rng := rand.New(rand.NewSource(42))

	type liveOrder struct {
		side  types.Side
		price int64
		size  uint32
		id    uint64
	}
	var live []liveOrder
	nextID := uint64(1)

	for i := 0; i < 5000; i++ {
		if len(live) == 0 || rng.Intn(2) == 0 {
			side := types.SideBid
			if rng.Intn(2) == 0 {
				side = types.SideAsk
			}
			o := liveOrder{
				side:  side,
				price: int64(900000 + rng.Intn(200)*1000),
				size:  uint32(1 + rng.Intn(1000)),
				id:    nextID,
			}
			nextID++
			live = append(live, o)
			_, ok := b.Process(newMBO(types.ActionAdd, o.side, o.price, o.size, o.id))
			require.True(t, ok)
		} else {
			j := rng.Intn(len(live))
			o := live[j]
			live = append(live[:j], live[j+1:]...)
			_, ok := b.Process(newMBO(types.ActionCancel, o.side, o.price, o.size, o.id))
			require.True(t, ok)
		}
	}
	for _, o := range live {
		b.Process(newMBO(types.ActionCancel, o.side, o.price, o.size, o.id))
	}

	assert.Equal(t, 0, b.BidLevelCount())
	assert.Equal(t, 0, b.AskLevelCount())
	assert.Equal(t, 0, b.BidOrderCount())
	assert.Equal(t, 0, b.AskOrderCount())
}

// Adds alone project to the adds grouped by price, best first.
func TestBookAddsOnlyProjectionGroupsByPrice(t *testing.T) {
	b := getTestBook()

	adds := []struct {
		price int64
		size  uint32
	}{
		{1000000, 100},
		{990000, 50},
		{1000000, 25},
		{980000, 10},
		{990000, 75},
	}
	var snap *types.MBPRecord
	for i, a := range adds {
		snap, _ = b.Process(newMBO(types.ActionAdd, types.SideBid, a.price, a.size, uint64(i+1)))
	}

	assert.Equal(t, types.PriceLevel{Price: 1000000, Size: 125, Count: 2}, snap.BidLevels[0])
	assert.Equal(t, types.PriceLevel{Price: 990000, Size: 125, Count: 2}, snap.BidLevels[1])
	assert.Equal(t, types.PriceLevel{Price: 980000, Size: 10, Count: 1}, snap.BidLevels[2])
	assert.Equal(t, types.PriceLevel{}, snap.BidLevels[3])
}

func TestBookReloadConf(t *testing.T) {
	b := getTestBook()

	cfg := NewDefaultConfig()
	cfg.LogPriceLevelsDebug = true
	b.ReloadConf(cfg)
	assert.True(t, b.LogPriceLevelsDebug)
}

func BenchmarkBookProcess(b *testing.B) {
	ob := getTestBook()
	rng := rand.New(rand.NewSource(1))

	recs := make([]*types.MBORecord, 0, 10000)
	for i := 0; i < cap(recs); i++ {
		side := types.SideBid
		if i%2 == 1 {
			side = types.SideAsk
		}
		recs = append(recs, newMBO(types.ActionAdd, side,
			int64(900000+rng.Intn(200)*1000), uint32(1+rng.Intn(1000)), uint64(i+1)))
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		add := *recs[i%len(recs)]
		add.OrderID = uint64(i + 1)
		ob.Process(&add)

		cancel := add
		cancel.Action = types.ActionCancel
		ob.Process(&cancel)
	}
}
