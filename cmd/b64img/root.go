package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	b64img "github.com/nicholasgasior/b64img-go"
	"github.com/nicholasgasior/b64img-go/internal/config"
	"github.com/nicholasgasior/b64img-go/internal/observability"
)

// app carries state shared by all subcommands for one invocation.
type app struct {
	configPath string
	logLevel   string
	logFormat  string
	quiet      bool

	stdout io.Writer
	stderr io.Writer

	logger     zerolog.Logger
	dispatcher *b64img.Dispatcher
}

func newRootCmd() *cobra.Command {
	a := &app{stdout: os.Stdout, stderr: os.Stderr}

	root := &cobra.Command{
		Use:               "b64img",
		Short:             "Convert between base64 image payloads and raw image bytes",
		Version:           version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "YAML config file")
	flags.StringVar(&a.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flags.StringVar(&a.logFormat, "log-format", "", "Log format (console or json)")
	flags.BoolVarP(&a.quiet, "quiet", "q", false, "Hide progress and summaries")

	for _, sub := range []*cobra.Command{newExtractCmd(a), newEncodeCmd(a), newSampleCmd(a)} {
		sub.RunE = a.closing(sub.RunE)
		root.AddCommand(sub)
	}
	return root
}

func (a *app) setup(cmd *cobra.Command, args []string) error {
	a.stdout = cmd.OutOrStdout()
	a.stderr = cmd.ErrOrStderr()

	cfg, err := config.Load(a.configPath, ".env")
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if a.logFormat != "" {
		cfg.Log.Format = a.logFormat
	}

	a.logger = observability.NewLogger(observability.LogConfig{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		Output:      a.stderr,
		ServiceName: "b64img",
	})

	engine := b64img.New(cfg.EngineOptions(a.logger)...)
	a.dispatcher = b64img.NewDispatcher(engine)
	if err := a.dispatcher.Start(cmd.Context()); err != nil {
		return fmt.Errorf("start worker: %w", err)
	}
	return nil
}

// closing stops the worker after run returns, including on failure, which
// PersistentPostRunE would skip.
func (a *app) closing(run func(*cobra.Command, []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := run(cmd, args)
		return errors.Join(err, a.teardown())
	}
}

func (a *app) teardown() error {
	if a.dispatcher == nil {
		return nil
	}
	return a.dispatcher.Close()
}

// run sends req to the worker and draws its progress until it finishes.
func (a *app) run(ctx context.Context, req b64img.Request) (b64img.Message, error) {
	bar := newProgress(a.stderr, a.quiet)
	defer bar.Finish()

	return a.dispatcher.Do(ctx, req, func(m b64img.Message) {
		bar.Update(m.Percent, m.Label)
	})
}

// summary prints the metrics line shown after a successful operation.
func (a *app) summary(verb string, m *b64img.Metrics) {
	if a.quiet || m == nil {
		return
	}
	fmt.Fprintf(a.stderr, "%s %s in %.3fs (%.1f MB/s)\n",
		verb, b64img.FormatFileSize(m.ByteSize), m.ElapsedMs/1000, m.Throughput())
}
