package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/nguyentantai21042004/slide-flow/internal/models"
	"github.com/nguyentantai21042004/slide-flow/internal/report"
	"github.com/nguyentantai21042004/slide-flow/internal/watcher"
	"github.com/nguyentantai21042004/slide-flow/pkg/durfmt"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	f := &flags{}
	var a *app

	root := &cobra.Command{
		Use:   "slideflow",
		Short: "Turn slide images and narration into a finished video",
		Long: `Turn slide images and narration into a finished video.
Scripts are narrated into audio, each slide image is paired with its audio
by logical id, every pair becomes a still-image clip, and the clips are
stitched into one video with fades between slides.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			a, err = newApp(cmd.Context(), f, cmd.InOrStdin())
			return err
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&f.configPath, "config", "c", "config.yaml", "path to the YAML config file")
	pf.StringVar(&f.envFile, "env", ".env", "dotenv file holding API keys")
	pf.BoolVarP(&f.yes, "yes", "y", false, "do not ask for confirmation before the final encode")
	pf.IntVarP(&f.jobs, "jobs", "j", 0, "clips rendered at once (default performance.max_concurrent)")
	pf.BoolVar(&f.skipExisting, "skip-existing", false, "reuse clips that already exist")

	root.AddCommand(
		&cobra.Command{
			Use:   "synthesize",
			Short: "Narrate every script into an mp3",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.withReport(cmd.Context(), "synthesize", func(ctx context.Context, rep *report.Report) error {
					_, err := a.proc.Synthesize(ctx, rep)
					return err
				})
			},
		},
		&cobra.Command{
			Use:   "estimate",
			Short: "Estimate narration length from the scripts",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				_, err := a.proc.Estimate(cmd.Context())
				return err
			},
		},
		&cobra.Command{
			Use:   "pair",
			Short: "Show which slide images and audio files pair up",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.withReport(cmd.Context(), "pair", func(ctx context.Context, rep *report.Report) error {
					res, err := a.proc.Pair(ctx, rep)
					if err != nil {
						return err
					}
					for i, p := range res.Pairs {
						fmt.Fprintf(cmd.OutOrStdout(), "%d. %s: %s & %s\n", i+1, p.ID, p.Image.Name, p.Audio.Name)
					}
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "clips",
			Short: "Render a clip for every pair",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.withReport(cmd.Context(), "clips", func(ctx context.Context, rep *report.Report) error {
					_, err := a.proc.RenderClips(ctx, rep)
					return err
				})
			},
		},
		&cobra.Command{
			Use:   "clip <id>",
			Short: "Render the clip of one logical id",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.withReport(cmd.Context(), "clip", func(ctx context.Context, rep *report.Report) error {
					clip, err := a.proc.RenderOne(ctx, rep, args[0])
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", clip.FilePath, durfmt.Format(clip.DurationSeconds))
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "assemble",
			Short: "Stitch the rendered clips into the final video",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.withReport(cmd.Context(), "assemble", func(ctx context.Context, rep *report.Report) error {
					_, err := a.proc.Assemble(ctx, rep)
					return err
				})
			},
		},
		&cobra.Command{
			Use:   "run",
			Short: "Pair, render and assemble in one go",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.withReport(cmd.Context(), "run", a.proc.Run)
			},
		},
		&cobra.Command{
			Use:   "watch",
			Short: "Render clips as new slides and narration arrive",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.watch(cmd.Context())
			},
		},
	)

	return root
}

func (a *app) watch(ctx context.Context) error {
	dirs := []watcher.Dir{
		{Path: a.cfg.Paths.Images, Kind: models.KindImage},
		{Path: a.cfg.AudioDir(), Kind: models.KindAudio},
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d.Path, 0755); err != nil {
			return fmt.Errorf("create directory %s: %w", d.Path, err)
		}
	}

	debounce := time.Duration(a.cfg.Watch.DebounceMillis) * time.Millisecond
	w, err := watcher.New(dirs, a.proc.HandleChanges, a.log, debounce)
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Stop()

	if err := a.proc.HandleChanges(ctx, nil); err != nil {
		a.log.Warn(ctx, "Initial pass: %v", err)
	}

	a.log.Info(ctx, "========================================")
	a.log.Info(ctx, "Slide pipeline is watching!")
	a.log.Info(ctx, "Slides: %s", a.cfg.Paths.Images)
	a.log.Info(ctx, "Narration: %s", a.cfg.AudioDir())
	a.log.Info(ctx, "Clips: %s", a.cfg.ClipsDir())
	a.log.Info(ctx, "Press Ctrl+C to stop")
	a.log.Info(ctx, "========================================")

	if err := w.Start(ctx); err != nil && err != context.Canceled {
		return err
	}
	a.log.Info(ctx, "Slide pipeline stopped")
	return nil
}
