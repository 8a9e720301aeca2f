package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ThatOrJohn/flowturi-designer/internal/adapters/document"
	"github.com/ThatOrJohn/flowturi-designer/internal/adapters/repository"
	"github.com/ThatOrJohn/flowturi-designer/internal/app/editor"
	"github.com/ThatOrJohn/flowturi-designer/internal/app/services"
	"github.com/ThatOrJohn/flowturi-designer/internal/infrastructure/config"
	"github.com/ThatOrJohn/flowturi-designer/internal/infrastructure/logging"
	"github.com/ThatOrJohn/flowturi-designer/internal/infrastructure/metrics"
)

// globalFlags are shared by every subcommand
type globalFlags struct {
	configFile string
	envFiles   []string
	logLevel   string
	logFormat  string
}

func (g *globalFlags) load(cmd *cobra.Command) (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(config.Options{File: g.configFile, EnvFiles: g.envFiles})
	if err != nil {
		return nil, nil, err
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Log.Level = g.logLevel
	}
	if cmd.Flags().Changed("log-format") {
		cfg.Log.Format = g.logFormat
	}
	logger, err := logging.New(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		return nil, nil, err
	}
	for _, w := range cfg.Warnings() {
		logger.Warn("configuration warning", zap.String("warning", w))
	}
	return cfg, logger, nil
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:           "flowturi",
		Short:         "Design data-flow diagrams and export synthetic historical series",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&g.configFile, "config", "", "YAML config file")
	rootCmd.PersistentFlags().StringSliceVar(&g.envFiles, "env-file", []string{".env"}, ".env files to load (missing files are ignored)")
	rootCmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&g.logFormat, "log-format", "console", "Log format (json or console)")

	rootCmd.AddCommand(newExportCmd(g), newReplayCmd(g), newVersionCmd())
	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "flowturi %s (commit: %s, built: %s)\n", Version, Commit, BuildTime)
		},
	}
}

type exportFlags struct {
	sink        string
	dir         string
	compression string
	duration    int
	interval    int
	skipScript  bool
}

func newExportCmd(g *globalFlags) *cobra.Command {
	f := &exportFlags{}

	cmd := &cobra.Command{
		Use:   "export <document>",
		Short: "Generate a synthetic series for a diagram document and write it to a sink",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := g.load(cmd)
			if err != nil {
				return err
			}
			defer logger.Sync()
			return runExport(cmd.Context(), cmd, cfg, logger, f, args[0])
		},
	}
	cmd.Flags().StringVar(&f.sink, "sink", "", "Export sink (file, archive, sqlite, postgres, memory)")
	cmd.Flags().StringVar(&f.dir, "dir", "", "Output directory for file and archive sinks")
	cmd.Flags().StringVar(&f.compression, "compression", "", "Archive compression (none, gzip, zstd)")
	cmd.Flags().IntVar(&f.duration, "duration", 0, "Total duration in minutes (overrides the document)")
	cmd.Flags().IntVar(&f.interval, "interval", 0, "Tick interval in seconds (overrides the document)")
	cmd.Flags().BoolVar(&f.skipScript, "skip-script", false, "Export the diagram without applying its edit script")
	return cmd
}

func runExport(ctx context.Context, cmd *cobra.Command, cfg *config.Config, logger *zap.Logger, f *exportFlags, path string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if f.sink != "" {
		cfg.Export.Sink = f.sink
	}
	if f.dir != "" {
		cfg.Export.Dir = f.dir
	}
	if f.compression != "" {
		cfg.Export.Compression = f.compression
	}

	doc, err := document.Load(path)
	if err != nil {
		return err
	}
	ed, err := replay(ctx, doc, logger, f.skipScript)
	if err != nil {
		return err
	}

	settings := doc.SettingsOr(cfg.Simulation)
	if f.duration > 0 {
		settings.TotalDuration = f.duration
	}
	if f.interval > 0 {
		settings.Interval = f.interval
	}

	sink, err := repository.OpenSink(ctx, cfg.Export)
	if err != nil {
		return err
	}
	defer sink.Close()

	svc := services.NewExportService(
		services.WithExportLogger(logger),
		services.WithExportMetrics(metrics.DefaultRegistry()),
	)
	artifact, err := svc.Export(ctx, ed.State(), settings, sink)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "exported %s: %d ticks, %d rows to %s sink\n",
		artifact.Filename, len(artifact.Records), artifact.Rows(), sink.Name())
	return nil
}

type replayFlags struct {
	out string
}

func newReplayCmd(g *globalFlags) *cobra.Command {
	f := &replayFlags{}

	cmd := &cobra.Command{
		Use:   "replay <document>",
		Short: "Apply a document's edit script and print the resulting history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := g.load(cmd)
			if err != nil {
				return err
			}
			defer logger.Sync()

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			doc, err := document.Load(args[0])
			if err != nil {
				return err
			}
			ed, err := replay(ctx, doc, logger, false)
			if err != nil {
				return err
			}

			printTimeline(cmd.OutOrStdout(), ed)

			if f.out != "" {
				settings := doc.SettingsOr(cfg.Simulation)
				if err := document.Save(f.out, document.FromSnapshot(ed.State(), &settings)); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "saved %s\n", f.out)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&f.out, "out", "", "Write the final diagram to this YAML or JSON file")
	return cmd
}

// replay seeds an editor with the document's diagram and dispatches its
// script in order. The first failing command stops the replay.
func replay(ctx context.Context, doc *document.Document, logger *zap.Logger, skipScript bool) (*editor.Editor, error) {
	ed := editor.New(
		editor.WithInitialState(doc.Snapshot()),
		editor.WithLogger(logger),
		editor.WithMetrics(metrics.DefaultRegistry()),
	)
	if skipScript {
		return ed, nil
	}

	cmds, err := doc.Commands()
	if err != nil {
		return nil, err
	}
	for i, c := range cmds {
		if _, err := ed.Dispatch(ctx, c); err != nil {
			return nil, fmt.Errorf("script[%d]: %w", i, err)
		}
	}
	return ed, nil
}

func printTimeline(w io.Writer, ed *editor.Editor) {
	for _, e := range ed.Timeline() {
		marker := " "
		if e.Offset == 0 {
			marker = "*"
		}
		fmt.Fprintf(w, "%s %+3d  %-24s nodes=%d connections=%d\n", marker, e.Offset, e.Description, e.Nodes, e.Edges)
	}
}
