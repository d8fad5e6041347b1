package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	staticcatalog "loopplanner/internal/adapter/catalog/static"
	"loopplanner/internal/adapter/learningcsv"
	"loopplanner/internal/app/predict"
	"loopplanner/internal/domain/familiarity"

	"github.com/charmbracelet/log"
)

func main() {
	dataDir := flag.String("data", "./data", "directory holding actions.json, locations.json, events.json and tuning.yaml")
	learningPath := flag.String("learning", "", "learning CSV exported from the planner (optional)")
	planPath := flag.String("plan", "", "file with one action per line (default stdin)")
	asJSON := flag.Bool("json", false, "print the full prediction as JSON")
	verbose := flag.Bool("v", false, "log engine steps")
	flag.Parse()

	logger := log.NewWithOptions(os.Stderr, log.Options{Prefix: "predict"})
	if *verbose {
		logger.SetLevel(log.DebugLevel)
	}

	if err := run(context.Background(), options{
		dataDir:      *dataDir,
		learningPath: *learningPath,
		planPath:     *planPath,
		asJSON:       *asJSON,
	}, os.Stdin, os.Stdout, logger); err != nil {
		logger.Fatal("prediction failed", "err", err)
	}
}

type options struct {
	dataDir      string
	learningPath string
	planPath     string
	asJSON       bool
}

func run(ctx context.Context, opts options, stdin io.Reader, stdout io.Writer, logger *log.Logger) error {
	planInput := stdin
	if opts.planPath != "" {
		f, err := os.Open(opts.planPath)
		if err != nil {
			return fmt.Errorf("open plan: %w", err)
		}
		defer f.Close()
		planInput = f
	}
	actions, err := readPlan(planInput)
	if err != nil {
		return err
	}

	learning := familiarity.State{}
	if opts.learningPath != "" {
		f, err := os.Open(opts.learningPath)
		if err != nil {
			return fmt.Errorf("open learning: %w", err)
		}
		parsed, err := learningcsv.Parse(f)
		_ = f.Close()
		if err != nil {
			return fmt.Errorf("parse learning: %w", err)
		}
		if len(parsed.Skipped) > 0 {
			logger.Warn("skipped malformed learning rows", "lines", parsed.Skipped)
		}
		learning = parsed.State
	}

	uc := predict.UseCase{
		Catalog: staticcatalog.NewProvider(opts.dataDir),
		Logger:  logger,
	}
	resp, err := uc.Execute(ctx, predict.Request{Actions: actions, Learning: learning})
	if err != nil {
		return err
	}

	if opts.asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}
	_, err = io.WriteString(stdout, renderReport(resp))
	return err
}
