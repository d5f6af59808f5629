package csvio

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookworks/rebook/types"
)

func TestHeader(t *testing.T) {
	h := Header()

	assert.True(t, strings.HasPrefix(h, ",ts_recv,ts_event,rtype,publisher_id,instrument_id,action,side,depth,price,size,flags,ts_in_delta,sequence,"))
	assert.True(t, strings.HasSuffix(h, ",symbol,order_id"))
	assert.Contains(t, h, ",bid_px_00,bid_sz_00,bid_ct_00,")
	assert.Contains(t, h, ",bid_px_09,bid_sz_09,bid_ct_09,")
	assert.Contains(t, h, ",ask_px_00,ask_sz_00,ask_ct_00,")
	assert.Contains(t, h, ",ask_px_09,ask_sz_09,ask_ct_09,")

	// leading empty column + 13 fields + 60 level columns + symbol + order_id
	assert.Equal(t, 75, strings.Count(h, ","))
}

func TestAppendMBPRecord(t *testing.T) {
	rec := &types.MBPRecord{
		TsRecv:       1000000005,
		TsEvent:      0,
		RType:        types.RTypeMBP,
		PublisherID:  2,
		InstrumentID: 1108,
		Action:       types.ActionAdd,
		Side:         types.SideBid,
		Depth:        0,
		Price:        5510000,
		Size:         100,
		Flags:        130,
		TsInDelta:    165200,
		Sequence:     851012,
		Symbol:       "ARL",
		OrderID:      817593,
	}
	rec.BidLevels[0] = types.PriceLevel{Price: 5510000, Size: 100, Count: 1}

	got := string(AppendMBPRecord(nil, rec))

	want := ",1970-01-01T00:00:01.000000005Z,1970-01-01T00:00:00.000000000Z,10,2,1108,A,B,0,5.510000,100,130,165200,851012" +
		",5.510000,100,1" +
		strings.Repeat(",0.000000,0,0", 9) +
		strings.Repeat(",0.000000,0,0", 10) +
		",ARL,817593"
	assert.Equal(t, want, got)
}

func TestAppendMBPRecordReusesBuffer(t *testing.T) {
	rec := &types.MBPRecord{RType: types.RTypeMBP, Action: types.ActionAdd, Side: types.SideNeutral, Symbol: "X"}

	buf := AppendMBPRecord(nil, rec)
	first := string(buf)
	buf = AppendMBPRecord(buf[:0], rec)
	assert.Equal(t, first, string(buf))
}

func TestAppendPrice(t *testing.T) {
	cases := []struct {
		in   int64
		want string
	}{
		{0, "0.000000"},
		{1, "0.000001"},
		{5510000, "5.510000"},
		{5243500000, "5243.500000"},
		{-1250000, "-1.250000"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, string(appendPrice(nil, c.in)), c.in)
	}
}

func TestAppendTimestamp(t *testing.T) {
	assert.Equal(t, "1970-01-01T00:00:00.000000000Z", string(appendTimestamp(nil, 0)))
	assert.Equal(t, "1970-01-01T00:00:01.000000005Z", string(appendTimestamp(nil, 1000000005)))
}

func TestRowRoundTripsThroughParser(t *testing.T) {
	// format a timestamp and parse it back
	ts := int64(1752739503360677248)
	formatted := string(appendTimestamp(nil, ts))
	back, err := parseTimestamp(formatted)
	require.NoError(t, err)
	assert.Equal(t, ts, back)

	// same for a price
	price := int64(987654321)
	priceText := string(appendPrice(nil, price))
	priceBack, err := parsePrice(priceText)
	require.NoError(t, err)
	assert.Equal(t, price, priceBack)
}
