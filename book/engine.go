package book

import (
	"github.com/bookworks/rebook/logging"
	"github.com/bookworks/rebook/types"
)

// Engine routes MBO events to one OrderBook per instrument. Books are
// created lazily on the first event for an instrument id and are never
// shared between engines. The engine inherits the book's threading contract:
// one submitter at a time.
type Engine struct {
	log    *logging.Logger
	config Config
	books  map[uint32]*OrderBook
}

// NewEngine instantiate a new book engine.
func NewEngine(log *logging.Logger, config Config) *Engine {
	return &Engine{
		log:    log,
		config: config,
		books:  map[uint32]*OrderBook{},
	}
}

// ReloadConf update the internal configuration of the engine and of all its
// books.
func (e *Engine) ReloadConf(cfg Config) {
	e.config = cfg
	for _, b := range e.books {
		b.ReloadConf(cfg)
	}
}

// Process routes the event to the book of its instrument and returns that
// book's snapshot.
func (e *Engine) Process(rec *types.MBORecord) (*types.MBPRecord, bool) {
	b, exists := e.books[rec.InstrumentID]
	if !exists {
		b = NewOrderBook(e.log, e.config, rec.InstrumentID)
		e.books[rec.InstrumentID] = b
	}
	return b.Process(rec)
}

// Book returns the book for the given instrument, or nil if no event has
// been seen for it.
func (e *Engine) Book(instrumentID uint32) *OrderBook {
	return e.books[instrumentID]
}

// Books returns all live books, in no particular order.
func (e *Engine) Books() []*OrderBook {
	out := make([]*OrderBook, 0, len(e.books))
	for _, b := range e.books {
		out = append(out, b)
	}
	return out
}

// Stats returns the processing counters summed over all books.
func (e *Engine) Stats() Stats {
	var out Stats
	for _, b := range e.books {
		out = out.add(b.Stats())
	}
	return out
}
