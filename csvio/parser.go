package csvio

import (
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/bookworks/rebook/types"
)

// mboFieldCount is the number of columns of an MBO input row.
const mboFieldCount = 15

var (
	// ErrInvalidFieldCount signals a row with the wrong number of columns
	ErrInvalidFieldCount = errors.New("invalid field count for MBO row")
	// ErrInvalidAction signals an action glyph outside the supported taxonomy
	ErrInvalidAction = errors.New("invalid action")
	// ErrInvalidSide signals an unknown side glyph
	ErrInvalidSide = errors.New("invalid side")
)

// ParseMBOLine parses one MBO CSV row into a normalized event record.
// Column order: ts_recv, ts_event, rtype, publisher_id, instrument_id,
// action, side, price, size, channel_id, order_id, flags, ts_in_delta,
// sequence, symbol.
func ParseMBOLine(line string) (*types.MBORecord, error) {
	if line == "" {
		return nil, ErrInvalidFieldCount
	}

	var fields [mboFieldCount]string
	n := 0
	for n < mboFieldCount-1 {
		i := strings.IndexByte(line, ',')
		if i < 0 {
			break
		}
		fields[n] = line[:i]
		line = line[i+1:]
		n++
	}
	if n != mboFieldCount-1 || strings.IndexByte(line, ',') >= 0 {
		return nil, ErrInvalidFieldCount
	}
	fields[n] = line

	rec := &types.MBORecord{}

	var err error
	if rec.TsRecv, err = parseTimestamp(fields[0]); err != nil {
		return nil, errors.Wrap(err, "ts_recv")
	}
	if rec.TsEvent, err = parseTimestamp(fields[1]); err != nil {
		return nil, errors.Wrap(err, "ts_event")
	}

	rtype, err := strconv.ParseUint(fields[2], 10, 16)
	if err != nil {
		return nil, errors.Wrap(err, "rtype")
	}
	rec.RType = uint16(rtype)

	publisherID, err := strconv.ParseUint(fields[3], 10, 16)
	if err != nil {
		return nil, errors.Wrap(err, "publisher_id")
	}
	rec.PublisherID = uint16(publisherID)

	instrumentID, err := strconv.ParseUint(fields[4], 10, 32)
	if err != nil {
		return nil, errors.Wrap(err, "instrument_id")
	}
	rec.InstrumentID = uint32(instrumentID)

	if len(fields[5]) != 1 || !types.Action(fields[5][0]).Valid() {
		return nil, ErrInvalidAction
	}
	rec.Action = types.Action(fields[5][0])

	if len(fields[6]) != 1 || !types.Side(fields[6][0]).Valid() {
		return nil, ErrInvalidSide
	}
	rec.Side = types.Side(fields[6][0])

	if rec.Price, err = parsePrice(fields[7]); err != nil {
		return nil, errors.Wrap(err, "price")
	}

	size, err := strconv.ParseUint(fields[8], 10, 32)
	if err != nil {
		return nil, errors.Wrap(err, "size")
	}
	rec.Size = uint32(size)

	channelID, err := strconv.ParseUint(fields[9], 10, 16)
	if err != nil {
		return nil, errors.Wrap(err, "channel_id")
	}
	rec.ChannelID = uint16(channelID)

	if rec.OrderID, err = strconv.ParseUint(fields[10], 10, 64); err != nil {
		return nil, errors.Wrap(err, "order_id")
	}

	flags, err := strconv.ParseUint(fields[11], 10, 32)
	if err != nil {
		return nil, errors.Wrap(err, "flags")
	}
	rec.Flags = uint32(flags)

	tsInDelta, err := strconv.ParseUint(fields[12], 10, 32)
	if err != nil {
		return nil, errors.Wrap(err, "ts_in_delta")
	}
	rec.TsInDelta = uint32(tsInDelta)

	if rec.Sequence, err = strconv.ParseUint(fields[13], 10, 64); err != nil {
		return nil, errors.Wrap(err, "sequence")
	}

	rec.Symbol = fields[14]

	return rec, nil
}

// parseTimestamp converts the venue's ISO-8601 nanosecond representation to
// nanoseconds since the Unix epoch. An empty field maps to zero.
func parseTimestamp(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return 0, err
	}
	return t.UnixNano(), nil
}

// parsePrice converts a decimal price string into fixed point with six
// implied decimals. The conversion stays in the integer domain so prices
// round-trip exactly. An empty field maps to zero.
func parsePrice(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}

	neg := false
	switch s[0] {
	case '-':
		neg = true
		s = s[1:]
	case '+':
		s = s[1:]
	}

	intPart := s
	fracPart := ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, fracPart = s[:i], s[i+1:]
	}

	var whole int64
	if intPart != "" {
		v, err := strconv.ParseUint(intPart, 10, 64)
		if err != nil {
			return 0, err
		}
		whole = int64(v)
	}

	// digits past the implied scale are not representable, drop them
	if len(fracPart) > 6 {
		fracPart = fracPart[:6]
	}
	var frac int64
	if fracPart != "" {
		v, err := strconv.ParseUint(fracPart, 10, 32)
		if err != nil {
			return 0, err
		}
		frac = int64(v)
		for i := len(fracPart); i < 6; i++ {
			frac *= 10
		}
	}

	price := whole*types.PriceScale + frac
	if neg {
		price = -price
	}
	return price, nil
}
