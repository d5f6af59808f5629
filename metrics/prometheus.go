package metrics

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "rebook"

const (
	// Gauge ...
	Gauge instrument = iota
	// Counter ...
	Counter
)

var (
	// ErrInstrumentNotSupported signals the specified instrument is not yet supported
	ErrInstrumentNotSupported = errors.New("instrument type unsupported")
	// ErrInstrumentTypeMismatch signal the type of the instrument is not expected
	ErrInstrumentTypeMismatch = errors.New("instrument is not of the expected type")
)

var (
	engineTime     *prometheus.CounterVec
	eventCounter   *prometheus.CounterVec
	bookOrderGauge *prometheus.GaugeVec
	pendingTradeG  *prometheus.GaugeVec
	lineCounter    *prometheus.CounterVec
)

// abstract prometheus types
type instrument int

// combine the prometheus options + way to differentiate between regular or vector type
type instrumentOpts struct {
	opts    prometheus.Opts
	vectors []string
}

type mi struct {
	gaugeV   *prometheus.GaugeVec
	gauge    prometheus.Gauge
	counterV *prometheus.CounterVec
	counter  prometheus.Counter
}

// InstrumentOption - vararg for instrument options setting
type InstrumentOption func(o *instrumentOpts)

// Vectors - configuration used to create a vector of a given interface, slice of label names
func Vectors(labels ...string) InstrumentOption {
	return func(o *instrumentOpts) {
		o.vectors = labels
	}
}

// Help - set the help field on instrument
func Help(help string) InstrumentOption {
	return func(o *instrumentOpts) {
		o.opts.Help = help
	}
}

// Namespace - set namespace
func Namespace(ns string) InstrumentOption {
	return func(o *instrumentOpts) {
		o.opts.Namespace = ns
	}
}

// AddInstrument configure and register new metrics instrument
func AddInstrument(t instrument, name string, opts ...InstrumentOption) (*mi, error) {
	var col prometheus.Collector
	ret := mi{}
	opt := instrumentOpts{
		opts: prometheus.Opts{
			Name: name,
		},
	}
	// apply options
	for _, o := range opts {
		o(&opt)
	}
	switch t {
	case Gauge:
		o := opt.gauge()
		if len(opt.vectors) == 0 {
			ret.gauge = prometheus.NewGauge(o)
			col = ret.gauge
		} else {
			ret.gaugeV = prometheus.NewGaugeVec(o, opt.vectors)
			col = ret.gaugeV
		}
	case Counter:
		o := opt.counter()
		if len(opt.vectors) == 0 {
			ret.counter = prometheus.NewCounter(o)
			col = ret.counter
		} else {
			ret.counterV = prometheus.NewCounterVec(o, opt.vectors)
			col = ret.counterV
		}
	default:
		return nil, ErrInstrumentNotSupported
	}
	if err := prometheus.Register(col); err != nil {
		return nil, err
	}
	return &ret, nil
}

// Start enable metrics (given config)
func Start(conf Config) {
	if !conf.Enabled {
		return
	}
	err := setupMetrics()
	if err != nil {
		panic("could not set up metrics")
	}
	http.Handle(conf.Path, promhttp.Handler())
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", conf.Port),
		ReadHeaderTimeout: conf.Timeout.Get(),
	}
	go func() {
		log.Fatal(srv.ListenAndServe())
	}()
}

func (i instrumentOpts) gauge() prometheus.GaugeOpts {
	return prometheus.GaugeOpts(i.opts)
}

func (i instrumentOpts) counter() prometheus.CounterOpts {
	return prometheus.CounterOpts(i.opts)
}

// Gauge returns a prometheus Gauge instrument
func (m mi) Gauge() (prometheus.Gauge, error) {
	if m.gauge == nil {
		return nil, ErrInstrumentTypeMismatch
	}
	return m.gauge, nil
}

// GaugeVec returns a prometheus GaugeVec instrument
func (m mi) GaugeVec() (*prometheus.GaugeVec, error) {
	if m.gaugeV == nil {
		return nil, ErrInstrumentTypeMismatch
	}
	return m.gaugeV, nil
}

// Counter returns a prometheus Counter instrument
func (m mi) Counter() (prometheus.Counter, error) {
	if m.counter == nil {
		return nil, ErrInstrumentTypeMismatch
	}
	return m.counter, nil
}

// CounterVec returns a prometheus CounterVec instrument
func (m mi) CounterVec() (*prometheus.CounterVec, error) {
	if m.counterV == nil {
		return nil, ErrInstrumentTypeMismatch
	}
	return m.counterV, nil
}

func setupMetrics() error {
	h, err := AddInstrument(
		Counter,
		"engine_seconds_total",
		Namespace(namespace),
		Vectors("instrument", "fn"),
		Help("Time spent in the book engine"),
	)
	if err != nil {
		return err
	}
	est, err := h.CounterVec()
	if err != nil {
		return err
	}
	engineTime = est

	h, err = AddInstrument(
		Counter,
		"events_total",
		Namespace(namespace),
		Vectors("instrument", "action"),
		Help("Number of MBO events processed"),
	)
	if err != nil {
		return err
	}
	ec, err := h.CounterVec()
	if err != nil {
		return err
	}
	eventCounter = ec

	h, err = AddInstrument(
		Gauge,
		"book_orders",
		Namespace(namespace),
		Vectors("instrument", "side"),
		Help("Number of orders currently resting on the book"),
	)
	if err != nil {
		return err
	}
	g, err := h.GaugeVec()
	if err != nil {
		return err
	}
	bookOrderGauge = g

	h, err = AddInstrument(
		Gauge,
		"pending_trades",
		Namespace(namespace),
		Vectors("instrument"),
		Help("Number of open trade sequences waiting for their terminator"),
	)
	if err != nil {
		return err
	}
	pg, err := h.GaugeVec()
	if err != nil {
		return err
	}
	pendingTradeG = pg

	h, err = AddInstrument(
		Counter,
		"lines_total",
		Namespace(namespace),
		Vectors("status"),
		Help("Number of input lines consumed"),
	)
	if err != nil {
		return err
	}
	lc, err := h.CounterVec()
	if err != nil {
		return err
	}
	lineCounter = lc

	return nil
}

// EventCounterInc increments the processed-event counter
func EventCounterInc(labelValues ...string) {
	if eventCounter == nil {
		return
	}
	eventCounter.WithLabelValues(labelValues...).Inc()
}

// EngineTimeCounterAdd accounts engine time spent on an instrument
func EngineTimeCounterAdd(duration time.Duration, labelValues ...string) {
	if engineTime == nil {
		return
	}
	engineTime.WithLabelValues(labelValues...).Add(duration.Seconds())
}

// BookOrderGaugeSet updates the resting-order count for a book side
func BookOrderGaugeSet(n int, labelValues ...string) {
	if bookOrderGauge == nil {
		return
	}
	bookOrderGauge.WithLabelValues(labelValues...).Set(float64(n))
}

// PendingTradeGaugeSet updates the open trade-sequence count for a book
func PendingTradeGaugeSet(n int, labelValues ...string) {
	if pendingTradeG == nil {
		return
	}
	pendingTradeG.WithLabelValues(labelValues...).Set(float64(n))
}

// LineCounterInc increments the consumed-line counter
func LineCounterInc(status string) {
	if lineCounter == nil {
		return
	}
	lineCounter.WithLabelValues(status).Inc()
}
