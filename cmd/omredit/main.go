package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/katalvlaran/omredit/config"
	"github.com/katalvlaran/omredit/editor"
	"github.com/katalvlaran/omredit/replay"
	"github.com/katalvlaran/omredit/sheet"
	"github.com/katalvlaran/omredit/sig"
)

func newLogger(cfg config.AppConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	if cfg.LogFormat == config.FormatText {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}

	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

func loadConfig(path string) (*config.Config, error) {
	cfg := config.NewDefault()
	if path == "" {
		return cfg, nil
	}
	if err := config.Load(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return cfg, nil
}

func replayAction(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	logger := newLogger(cfg.App)
	slog.SetDefault(logger)
	editor.SetMetricsEnabled(cfg.Observability.Metrics)

	if cmd.NArg() != 1 {
		return fmt.Errorf("expected one scenario file, got %d arguments", cmd.NArg())
	}
	sc, err := replay.Load(cmd.Args().First())
	if err != nil {
		return fmt.Errorf("load scenario: %w", err)
	}

	broker := sheet.NewBroker()
	defer broker.Close()
	sh, named, err := replay.Build(sc.Sheet, sheet.WithLogger(logger), sheet.WithBroker(broker))
	if err != nil {
		return fmt.Errorf("build sheet: %w", err)
	}

	ctrl := editor.New(sh,
		editor.WithLogger(logger),
		editor.WithEditorConfig(cfg.Editor),
		editor.WithTracing(cfg.Observability.Tracing),
	)

	logger.Info("Scenario loaded",
		slog.String("sheet", sh.Name()),
		slog.Int("systems", len(sh.Systems())),
		slog.Int("inters", len(named)),
		slog.Int("steps", len(sc.Steps)))

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gCtx := errgroup.WithContext(runCtx)

	g.Go(func() error { return ctrl.Run(gCtx) })

	if cmd.Bool("watch") && configPath != "" {
		g.Go(func() error {
			return config.Watch(gCtx, configPath, logger, func(next *config.Config) {
				ctrl.SetEditorConfig(next.Editor)
				editor.SetMetricsEnabled(next.Observability.Metrics)
			})
		})
	}

	g.Go(func() error {
		defer cancel()
		player := replay.NewPlayer(ctrl, named, logger)
		if _, err := player.Play(gCtx, sc.Steps); err != nil {
			return err
		}
		summarize(logger, sh)
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Replay error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Replay finished", slog.Bool("modified", sh.IsModified()))
	return nil
}

// summarize logs the content of every system graph.
func summarize(logger *slog.Logger, sh *sheet.Sheet) {
	for _, sys := range sh.Systems() {
		g := sys.SIG()
		logger.Info("System content",
			slog.Int("system", sys.ID()),
			slog.Int("inters", g.VertexCount()),
			slog.Int("relations", g.EdgeCount()),
			slog.Int("chords", len(g.Inters(sig.KindHeadChord, sig.KindRestChord))),
		)
	}
	logger.Info("Glyph index", slog.Int("glyphs", sh.GlyphIndex().Len()))
}

func main() {
	cmd := &cli.Command{
		Name:  "omredit",
		Usage: "Interactive score editing engine",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file",
				Sources: cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "replay",
				Usage:     "Play the editing gestures of a scenario on its sheet",
				ArgsUsage: "SCENARIO",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "watch",
						Usage: "Reload the editor configuration when the config file changes",
					},
				},
				Action: replayAction,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
