package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jessevdk/go-flags"

	"github.com/bookworks/rebook/book"
	"github.com/bookworks/rebook/config"
	"github.com/bookworks/rebook/logging"
	"github.com/bookworks/rebook/metrics"
	"github.com/bookworks/rebook/processor"
)

type options struct {
	Config      string `long:"config" description:"Path to a TOML configuration file"`
	WatchConfig bool   `long:"watch-config" description:"Reload the root log level when the configuration file changes"`
	Output      string `short:"o" long:"output" default:"output_mbp.csv" description:"Path of the MBP output file"`

	Args struct {
		Input string `positional-arg-name:"input" description:"Path of the MBO input file"`
	} `positional-args:"yes" required:"yes"`
}

func main() {
	os.Exit(run())
}

func run() int {
	var opts options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			return 0
		}
		return 1
	}

	cfg := config.NewDefaultConfig()
	if opts.Config != "" {
		var err error
		if cfg, err = config.Read(opts.Config); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			return 1
		}
	}

	log := logging.NewLoggerFromConfig(cfg.Logging)
	defer log.AtExit()

	if opts.WatchConfig && opts.Config != "" {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		watcher, err := config.NewFromFile(ctx, log, opts.Config)
		if err != nil {
			log.Error("unable to start config watcher", logging.Error(err))
			return 1
		}
		// only the root log level is safe to update from the watcher
		// goroutine, the processing path reads its config unlocked
		watcher.OnConfigUpdate(func(cfg config.Config) {
			log.SetLevel(cfg.Logging.Level)
		})
	}

	metrics.Start(cfg.Metrics)

	engine := book.NewEngine(log, cfg.Book)
	proc := processor.New(log, cfg.Processor, engine)

	summary, err := proc.ProcessFile(opts.Args.Input, opts.Output)
	if err != nil {
		log.Error("processing failed", logging.Error(err))
		return 1
	}

	printSummary(opts.Output, summary)
	return 0
}

func printSummary(output string, summary *processor.Summary) {
	stats := summary.Stats
	fmt.Printf("Processing results\n")
	fmt.Printf("==================\n")
	fmt.Printf("Lines read:              %d\n", summary.LinesRead)
	fmt.Printf("Lines skipped:           %d\n", summary.LinesSkipped)
	fmt.Printf("Snapshots written:       %d\n", summary.SnapshotsWritten)
	fmt.Printf("Records processed:       %d\n", stats.RecordsProcessed)
	fmt.Printf("Trades processed:        %d\n", stats.TradesProcessed)
	fmt.Printf("Orders added:            %d\n", stats.OrdersAdded)
	fmt.Printf("Orders cancelled:        %d\n", stats.OrdersCancelled)
	fmt.Printf("Average processing time: %v\n", stats.AverageProcessingTime)
	fmt.Printf("Total elapsed:           %v\n", summary.Elapsed)
	if summary.Elapsed > 0 && summary.LinesRead > 0 {
		fmt.Printf("Throughput:              %.2f records/second\n",
			float64(summary.LinesRead)/summary.Elapsed.Seconds())
	}
	fmt.Printf("Output written to:       %s\n", output)
}
