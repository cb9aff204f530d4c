package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/untoldecay/movestories/internal/config"
	"github.com/untoldecay/movestories/internal/debug"
	"github.com/untoldecay/movestories/internal/ui"
)

// CommandContext holds the runtime state shared by every command.
// PersistentPreRunE fills it in after flags and config are resolved.
type CommandContext struct {
	ConfigPath string
	JSONOutput bool

	Logger    *slog.Logger
	logCloser io.Closer

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

func newCommandContext() *CommandContext {
	return &CommandContext{
		Logger: debug.Discard(),
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// flagKeys maps flag names to the config keys they override. Flags that
// are not defined on the running command are skipped.
var flagKeys = map[string]string{
	"input":     "input",
	"output":    "output",
	"workers":   "workers",
	"delimiter": "export.delimiter",
	"index":     "export.include-index",
	"manifest":  "export.write-manifest",
	"limit":     "preview.limit",
	"verbose":   "verbose",
	"no-color":  "no-color",
	"log-file":  "log.file",
}

func newRootCmd(cc *CommandContext) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "movestories",
		Short: "Turn annotated move stories into a deduplicated entity table",
		Long: `movestories reads relation annotations exported as JSON Lines, extracts
the two entities of every relation and writes the unique entity occurrences
as a delimited table.

Running movestories without a subcommand performs an export.

Settings resolve in order: flags, MOVES_* environment variables,
.movestories/config.yaml, built-in defaults.

Examples:
  movestories -i annotations.jsonl -o entities.csv
  MOVES_INPUT=annotations.jsonl MOVES_OUTPUT=entities.csv movestories
  movestories preview -i annotations.jsonl --limit 5`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return cc.setup(cmd)
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			cc.teardown()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runExport(cmd, cc)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cc.ConfigPath, "config", "", "Config file (default: .movestories/config.yaml)")
	pf.BoolVar(&cc.JSONOutput, "json", false, "Output in JSON format")
	pf.BoolP("verbose", "v", false, "Enable verbose/debug output")
	pf.Bool("no-color", false, "Disable colored output")
	pf.String("log-file", "", "Append logs to this file (rotated)")
	pf.StringP("input", "i", "", "Annotations file in JSON Lines format ('-' for stdin)")
	pf.StringP("output", "o", "", "Destination of the entity table")
	pf.Int("workers", 1, "Parse stories concurrently with this many workers")
	pf.String("delimiter", ",", "Field delimiter of the entity table ('\\t' or 'tab' for TSV)")

	// The root command exports too, so it carries the export-only flags
	addExportFlags(rootCmd)

	rootCmd.AddCommand(
		newExportCmd(cc),
		newPreviewCmd(cc),
		newConfigCmd(cc),
		newHistoryCmd(cc),
		newVersionCmd(cc),
	)
	rootCmd.SetIn(cc.Stdin)
	rootCmd.SetOut(cc.Stdout)
	rootCmd.SetErr(cc.Stderr)
	return rootCmd
}

func (cc *CommandContext) setup(cmd *cobra.Command) error {
	debug.SetOutput(cc.Stderr)
	if err := config.Initialize(cc.ConfigPath); err != nil {
		return err
	}
	for name, key := range flagKeys {
		if f := cmd.Flags().Lookup(name); f != nil {
			if err := config.BindPFlag(key, f); err != nil {
				return err
			}
		}
	}

	// MOVES_DEBUG may also come from .env, which Initialize has loaded by now
	verbose := config.GetBool("verbose") || os.Getenv("MOVES_DEBUG") != ""
	debug.SetVerbose(verbose)
	ui.ConfigureColor(config.GetBool("no-color"), cc.Stdout)

	cc.Logger, cc.logCloser = debug.NewLogger(debug.LogOptions{
		File:       config.GetString("log.file"),
		MaxSizeMB:  config.GetInt("log.max-size-mb"),
		MaxBackups: config.GetInt("log.max-backups"),
		MaxAgeDays: config.GetInt("log.max-age-days"),
		Verbose:    verbose,
	})
	if used := config.ConfigFileUsed(); used != "" {
		cc.Logger.Info("config loaded", "path", used)
	}
	return nil
}

func (cc *CommandContext) teardown() {
	if cc.logCloser != nil {
		_ = cc.logCloser.Close()
		cc.logCloser = nil
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	cc := newCommandContext()
	err := newRootCmd(cc).ExecuteContext(ctx)
	cc.teardown()
	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
