package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/untoldecay/movestories"
	"github.com/untoldecay/movestories/internal/audit"
	"github.com/untoldecay/movestories/internal/config"
	"github.com/untoldecay/movestories/internal/export"
	"github.com/untoldecay/movestories/internal/hooks"
	"github.com/untoldecay/movestories/internal/metrics"
	"github.com/untoldecay/movestories/internal/ui"
)

func addExportFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("index", false, "Prepend an unnamed 0-based row index column")
	cmd.Flags().Bool("manifest", false, "Write <output>.manifest.yaml describing the run")
}

func newExportCmd(cc *CommandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the deduplicated entity table",
		Long: `Read every story from the input file, extract the entities of each
relation and write the unique rows to the output file.

Nothing is written unless every story parses. The output is replaced
atomically, and a concurrent export to the same path fails fast.

Examples:
  movestories export -i annotations.jsonl -o entities.csv
  movestories export -i annotations.jsonl -o entities.tsv --delimiter tab
  cat annotations.jsonl | movestories export -i - -o entities.csv --manifest`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runExport(cmd, cc)
		},
	}
	addExportFlags(cmd)
	return cmd
}

// exportSummary is the --json output of an export
type exportSummary struct {
	Input      string            `json:"input"`
	Output     string            `json:"output"`
	Manifest   string            `json:"manifest,omitempty"`
	Stats      movestories.Stats `json:"stats"`
	DurationMS int64             `json:"duration_ms"`
}

func runExport(cmd *cobra.Command, cc *CommandContext) error {
	input := config.GetString("input")
	output := config.GetString("output")
	if input == "" {
		return errors.New("no input file: use --input, MOVES_INPUT or 'input' in config.yaml")
	}
	if output == "" {
		return errors.New("no output file: use --output, MOVES_OUTPUT or 'output' in config.yaml")
	}

	cfg, err := export.LoadConfig(config.Store{})
	if err != nil {
		return err
	}

	cc.Logger.Info("export started", "input", input, "output", output, "workers", config.GetInt("workers"))
	start := time.Now()
	res, err := movestories.Run(cmd.Context(), movestories.Options{
		InputPath:  input,
		OutputPath: output,
		Export:     cfg,
		Workers:    config.GetInt("workers"),
		Stdin:      cc.Stdin,
	})
	if errors.Is(err, movestories.ErrManifest) && res != nil {
		cc.Logger.Warn("manifest not written", "output", res.OutputPath, "error", err)
		fmt.Fprintln(cc.Stderr, ui.RenderWarn("⚠ "+err.Error()))
		err = nil
	}
	runner := hooks.NewRunner(config.GetString("hooks.dir"), config.GetDuration("hooks.timeout"))
	// Hooks still run when the export was interrupted
	hookCtx := context.WithoutCancel(cmd.Context())
	if err != nil {
		cc.Logger.Error("export failed", "input", input, "error", err)
		cc.runHook(hookCtx, runner, hooks.EventExportFailed, hooks.Payload{Input: input, Output: output, Error: err.Error()})
		cc.recordRun(&audit.Entry{Kind: audit.KindExportFailed, Input: input, Output: output, Error: err.Error()})
		cc.writeMetrics(func(m *metrics.Run) { m.ObserveFailure(time.Since(start)) })
		return err
	}
	cc.Logger.Info("export finished",
		"rows", res.Stats.RowsUnique,
		"duplicates", res.Stats.Duplicates,
		"duration", res.Duration)
	cc.runHook(hookCtx, runner, hooks.EventExport, hooks.Payload{
		Input:    input,
		Output:   res.OutputPath,
		Manifest: res.ManifestPath,
		Stats:    &res.Stats,
	})
	cc.recordRun(&audit.Entry{
		Kind:       audit.KindExport,
		Input:      input,
		Output:     res.OutputPath,
		Manifest:   res.ManifestPath,
		Stories:    res.Stats.Records,
		Rows:       res.Stats.RowsUnique,
		Duplicates: res.Stats.Duplicates,
		DurationMS: res.Duration.Milliseconds(),
	})
	cc.writeMetrics(func(m *metrics.Run) { m.ObserveSuccess(res.Stats, res.Duration, time.Now()) })

	if cc.JSONOutput {
		return outputJSON(cc.Stdout, exportSummary{
			Input:      input,
			Output:     res.OutputPath,
			Manifest:   res.ManifestPath,
			Stats:      res.Stats,
			DurationMS: res.Duration.Milliseconds(),
		})
	}

	fmt.Fprintln(cc.Stdout, ui.RenderExportReport(ui.ExportReport{
		Input:    input,
		Output:   res.OutputPath,
		Manifest: res.ManifestPath,
		Stats:    res.Stats,
		Duration: res.Duration,
	}, ui.Width(cc.Stdout)))
	return nil
}

// runHook runs an export hook. A failing hook is reported but never fails
// the export, whose output is already in place.
func (cc *CommandContext) runHook(ctx context.Context, runner *hooks.Runner, event string, p hooks.Payload) {
	if !runner.HookExists(event) {
		return
	}
	cc.Logger.Info("running hook", "event", event)
	if err := runner.RunSync(ctx, event, p); err != nil {
		cc.Logger.Warn("hook failed", "event", event, "error", err)
		fmt.Fprintln(cc.Stderr, ui.RenderWarn("⚠ "+err.Error()))
	}
}

// recordRun appends to the run history when one is configured
func (cc *CommandContext) recordRun(e *audit.Entry) {
	path := config.GetString("history.file")
	if path == "" {
		return
	}
	if _, err := audit.Append(path, e); err != nil {
		cc.Logger.Warn("recording run history failed", "path", path, "error", err)
	}
}

// writeMetrics writes the run metrics textfile when one is configured
func (cc *CommandContext) writeMetrics(observe func(*metrics.Run)) {
	path := config.GetString("metrics.textfile")
	if path == "" {
		return
	}
	m := metrics.NewRun()
	observe(m)
	if err := m.WriteTextfile(path); err != nil {
		cc.Logger.Warn("writing metrics failed", "path", path, "error", err)
	}
}
