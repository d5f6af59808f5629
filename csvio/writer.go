package csvio

import (
	"strconv"
	"time"

	"github.com/bookworks/rebook/types"
)

// Header returns the MBP output header row, without trailing newline. The
// leading empty column is an index placeholder expected by downstream
// readers.
func Header() string {
	out := make([]byte, 0, 512)
	out = append(out, ",ts_recv,ts_event,rtype,publisher_id,instrument_id,action,side,depth,price,size,flags,ts_in_delta,sequence"...)
	for i := 0; i < types.MaxDepth; i++ {
		out = appendLevelHeader(out, "bid", i)
	}
	for i := 0; i < types.MaxDepth; i++ {
		out = appendLevelHeader(out, "ask", i)
	}
	out = append(out, ",symbol,order_id"...)
	return string(out)
}

func appendLevelHeader(dst []byte, side string, i int) []byte {
	for _, col := range []string{"px", "sz", "ct"} {
		dst = append(dst, ',')
		dst = append(dst, side...)
		dst = append(dst, '_')
		dst = append(dst, col...)
		dst = append(dst, '_')
		dst = append(dst, '0'+byte(i/10), '0'+byte(i%10))
	}
	return dst
}

// AppendMBPRecord appends one MBP output row to dst, without trailing
// newline, and returns the extended buffer. Callers on the hot path reuse
// dst across rows.
func AppendMBPRecord(dst []byte, rec *types.MBPRecord) []byte {
	dst = append(dst, ',')
	dst = appendTimestamp(dst, rec.TsRecv)
	dst = append(dst, ',')
	dst = appendTimestamp(dst, rec.TsEvent)
	dst = append(dst, ',')
	dst = strconv.AppendUint(dst, uint64(rec.RType), 10)
	dst = append(dst, ',')
	dst = strconv.AppendUint(dst, uint64(rec.PublisherID), 10)
	dst = append(dst, ',')
	dst = strconv.AppendUint(dst, uint64(rec.InstrumentID), 10)
	dst = append(dst, ',')
	dst = append(dst, byte(rec.Action))
	dst = append(dst, ',')
	dst = append(dst, byte(rec.Side))
	dst = append(dst, ',')
	dst = strconv.AppendUint(dst, uint64(rec.Depth), 10)
	dst = append(dst, ',')
	dst = appendPrice(dst, rec.Price)
	dst = append(dst, ',')
	dst = strconv.AppendUint(dst, uint64(rec.Size), 10)
	dst = append(dst, ',')
	dst = strconv.AppendUint(dst, uint64(rec.Flags), 10)
	dst = append(dst, ',')
	dst = strconv.AppendUint(dst, uint64(rec.TsInDelta), 10)
	dst = append(dst, ',')
	dst = strconv.AppendUint(dst, rec.Sequence, 10)

	for i := 0; i < types.MaxDepth; i++ {
		dst = appendLevel(dst, rec.BidLevels[i])
	}
	for i := 0; i < types.MaxDepth; i++ {
		dst = appendLevel(dst, rec.AskLevels[i])
	}

	dst = append(dst, ',')
	dst = append(dst, rec.Symbol...)
	dst = append(dst, ',')
	dst = strconv.AppendUint(dst, rec.OrderID, 10)
	return dst
}

func appendLevel(dst []byte, level types.PriceLevel) []byte {
	dst = append(dst, ',')
	dst = appendPrice(dst, level.Price)
	dst = append(dst, ',')
	dst = strconv.AppendUint(dst, uint64(level.Size), 10)
	dst = append(dst, ',')
	dst = strconv.AppendUint(dst, uint64(level.Count), 10)
	return dst
}

// appendTimestamp renders nanoseconds since the Unix epoch as
// YYYY-MM-DDTHH:MM:SS.nnnnnnnnnZ in UTC.
func appendTimestamp(dst []byte, ts int64) []byte {
	t := time.Unix(0, ts).UTC()
	dst = t.AppendFormat(dst, "2006-01-02T15:04:05")
	dst = append(dst, '.')
	dst = appendPadded(dst, uint64(t.Nanosecond()), 9)
	dst = append(dst, 'Z')
	return dst
}

// appendPrice renders a fixed-point price as decimal with six fraction
// digits.
func appendPrice(dst []byte, price int64) []byte {
	if price < 0 {
		dst = append(dst, '-')
		price = -price
	}
	dst = strconv.AppendInt(dst, price/types.PriceScale, 10)
	dst = append(dst, '.')
	return appendPadded(dst, uint64(price%types.PriceScale), 6)
}

func appendPadded(dst []byte, v uint64, width int) []byte {
	var buf [20]byte
	s := strconv.AppendUint(buf[:0], v, 10)
	for i := len(s); i < width; i++ {
		dst = append(dst, '0')
	}
	return append(dst, s...)
}
