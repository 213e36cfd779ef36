package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/nguyentantai21042004/slide-flow/internal/assembler"
	"github.com/nguyentantai21042004/slide-flow/internal/config"
	"github.com/nguyentantai21042004/slide-flow/internal/logger"
	"github.com/nguyentantai21042004/slide-flow/internal/processor"
	"github.com/nguyentantai21042004/slide-flow/internal/report"
	"github.com/nguyentantai21042004/slide-flow/pkg/durfmt"
	"github.com/nguyentantai21042004/slide-flow/pkg/executor"
)

// errItemsFailed makes the process exit non-zero when a run finished but
// some pairs, clips or scripts failed.
var errItemsFailed = errors.New("some items failed, see the report")

type flags struct {
	configPath   string
	envFile      string
	yes          bool
	jobs         int
	skipExisting bool
}

type app struct {
	cfg  *config.Config
	log  logger.Logger
	proc processor.Processor
}

func newApp(ctx context.Context, f *flags, stdin io.Reader) (*app, error) {
	cfg, err := config.Load(f.configPath, f.envFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log := logger.NewWithFormat(cfg.Logging.Level, cfg.Logging.Format)
	log.Debug(ctx, "System: %s/%s, CPU cores: %d", runtime.GOOS, runtime.GOARCH, runtime.NumCPU())

	opts := processor.Options{
		Jobs:         f.jobs,
		SkipExisting: f.skipExisting,
	}
	if !f.yes {
		opts.Confirm = confirmPrompt(stdin, os.Stdout)
	}

	proc, err := processor.New(cfg, executor.New(), log, opts)
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, log: log, proc: proc}, nil
}

// withReport runs fn under a fresh run id and writes the report next to the
// final video whatever the outcome.
func (a *app) withReport(ctx context.Context, command string, fn func(ctx context.Context, rep *report.Report) error) error {
	rep := report.New(a.cfg.Project, command)
	ctx = logger.WithRunID(ctx, rep.RunID)

	err := fn(ctx, rep)
	rep.Finish(err)

	jsonPath, docxPath, saveErr := rep.Save(a.cfg.FinalDir())
	if saveErr != nil {
		a.log.Warn(ctx, "Failed to write run report: %v", saveErr)
	} else {
		a.log.Info(ctx, "Run report: %s, run sheet: %s", jsonPath, docxPath)
	}

	if errors.Is(err, assembler.ErrAborted) {
		a.log.Info(ctx, "Full video creation cancelled.")
		return nil
	}
	if err != nil {
		return err
	}
	if len(rep.Failures) > 0 {
		return errItemsFailed
	}
	return nil
}

// confirmPrompt asks on out and reads y/n from in before the final encode.
func confirmPrompt(in io.Reader, out io.Writer) assembler.ConfirmFunc {
	reader := bufio.NewReader(in)
	return func(_ context.Context, est assembler.Estimate) bool {
		fmt.Fprintf(out, "\nFound %d valid clips", len(est.Clips))
		if len(est.Dropped) > 0 {
			fmt.Fprintf(out, " (%d unreadable, will be skipped)", len(est.Dropped))
		}
		fmt.Fprintf(out, ". Estimated final video length: %s\n", durfmt.Format(est.Seconds))
		fmt.Fprint(out, "Proceed with creating the full video? (y/n): ")

		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return false
		}
		answer := strings.ToLower(strings.TrimSpace(line))
		return answer == "y" || answer == "yes"
	}
}
