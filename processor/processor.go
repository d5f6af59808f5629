package processor

import (
	"bufio"
	"os"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"github.com/bookworks/rebook/book"
	"github.com/bookworks/rebook/csvio"
	"github.com/bookworks/rebook/logging"
	"github.com/bookworks/rebook/metrics"
)

// maxLineSize bounds a single input row. Symbol aside, MBO rows are short;
// this leaves generous headroom.
const maxLineSize = 1 << 16

// Processor drives the book engine over an MBO CSV file and writes one MBP
// row per processed event.
type Processor struct {
	log *logging.Logger

	Config

	engine *book.Engine

	// instrument-id label cache for telemetry
	instLabels map[uint32]string
}

// Summary reports what a ProcessFile run did.
type Summary struct {
	LinesRead        uint64
	LinesSkipped     uint64
	SnapshotsWritten uint64
	Elapsed          time.Duration
	Stats            book.Stats
}

// New instantiate a new processor on top of the given engine.
func New(log *logging.Logger, config Config, engine *book.Engine) *Processor {
	log = log.Named(namedLogger)
	log.SetLevel(config.Level.Get())

	return &Processor{
		log:        log,
		Config:     config,
		engine:     engine,
		instLabels: map[uint32]string{},
	}
}

// ReloadConf update the internal configuration of the processor.
func (p *Processor) ReloadConf(cfg Config) {
	p.log.Info("reloading configuration")
	if p.log.GetLevel() != cfg.Level.Get() {
		p.log.Info("updating log level",
			logging.String("old", p.log.GetLevel().String()),
			logging.String("new", cfg.Level.String()),
		)
		p.log.SetLevel(cfg.Level.Get())
	}
	p.Config = cfg
}

// ProcessFile streams the MBO input file through the engine into the MBP
// output file. The input's header row is skipped; rows that fail to parse
// are counted and dropped.
func (p *Processor) ProcessFile(inputPath, outputPath string) (*Summary, error) {
	input, err := os.Open(inputPath)
	if err != nil {
		return nil, errors.Wrap(err, "cannot open input file")
	}
	defer input.Close()

	output, err := os.Create(outputPath)
	if err != nil {
		return nil, errors.Wrap(err, "cannot open output file")
	}
	defer output.Close()

	p.log.Info("processing started",
		logging.String("input", inputPath),
		logging.String("output", outputPath),
	)
	start := time.Now()

	scanner := bufio.NewScanner(input)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	writer := bufio.NewWriterSize(output, 1<<20)

	if _, err := writer.WriteString(csvio.Header() + "\n"); err != nil {
		return nil, errors.Wrap(err, "cannot write output header")
	}

	// the first input row is the MBO header
	scanner.Scan()

	summary := &Summary{}
	row := make([]byte, 0, 1024)
	sinceFlush := 0

	for scanner.Scan() {
		summary.LinesRead++

		rec, err := csvio.ParseMBOLine(scanner.Text())
		if err != nil {
			summary.LinesSkipped++
			metrics.LineCounterInc("skipped")
			if p.log.GetLevel() == logging.DebugLevel {
				p.log.Debug("skipping unparseable row",
					logging.Uint64("line", summary.LinesRead),
					logging.Error(err),
				)
			}
			continue
		}
		metrics.LineCounterInc("processed")

		engineStart := time.Now()
		snap, ok := p.engine.Process(rec)
		label := p.instrumentLabel(rec.InstrumentID)
		metrics.EngineTimeCounterAdd(time.Since(engineStart), label, "process")
		metrics.EventCounterInc(label, rec.Action.String())
		if !ok {
			// initial clear sentinel, no snapshot for this row
			continue
		}

		row = csvio.AppendMBPRecord(row[:0], snap)
		row = append(row, '\n')
		if _, err := writer.Write(row); err != nil {
			return nil, errors.Wrap(err, "cannot write output row")
		}
		summary.SnapshotsWritten++

		if sinceFlush++; sinceFlush >= p.BufferSize {
			sinceFlush = 0
			if err := writer.Flush(); err != nil {
				return nil, errors.Wrap(err, "cannot flush output")
			}
			p.updateGauges()
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "cannot read input file")
	}
	if err := writer.Flush(); err != nil {
		return nil, errors.Wrap(err, "cannot flush output")
	}
	p.updateGauges()

	summary.Elapsed = time.Since(start)
	summary.Stats = p.engine.Stats()

	p.log.Info("processing completed",
		logging.Uint64("lines-read", summary.LinesRead),
		logging.Uint64("lines-skipped", summary.LinesSkipped),
		logging.Uint64("snapshots-written", summary.SnapshotsWritten),
		logging.Duration("elapsed", summary.Elapsed),
		logging.Uint64("lines-per-second", perSecond(summary.LinesRead, summary.Elapsed)),
	)

	return summary, nil
}

func (p *Processor) updateGauges() {
	for _, b := range p.engine.Books() {
		label := p.instrumentLabel(b.InstrumentID())
		metrics.BookOrderGaugeSet(b.BidOrderCount(), label, "bid")
		metrics.BookOrderGaugeSet(b.AskOrderCount(), label, "ask")
		metrics.PendingTradeGaugeSet(b.PendingTradeCount(), label)
	}
}

func (p *Processor) instrumentLabel(id uint32) string {
	label, ok := p.instLabels[id]
	if !ok {
		label = strconv.FormatUint(uint64(id), 10)
		p.instLabels[id] = label
	}
	return label
}

func perSecond(n uint64, elapsed time.Duration) uint64 {
	if elapsed <= 0 {
		return 0
	}
	return uint64(float64(n) / elapsed.Seconds())
}
