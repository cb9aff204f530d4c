package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/untoldecay/movestories/internal/audit"
	"github.com/untoldecay/movestories/internal/config"
	"github.com/untoldecay/movestories/internal/ui"
)

func newHistoryCmd(cc *CommandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded export runs",
		Long: `List the export runs recorded in the history file.

Recording is off by default. Enable it with history.file in config.yaml
or MOVES_HISTORY_FILE, e.g.:

  history:
    file: .movestories/runs.jsonl`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			last, _ := cmd.Flags().GetInt("last")
			return runHistory(cc, last)
		},
	}
	cmd.Flags().Int("last", 10, "Show only the most recent runs (0 shows all)")
	return cmd
}

func runHistory(cc *CommandContext, last int) error {
	path := config.GetString("history.file")
	if path == "" {
		return errors.New("run history is disabled: set history.file or MOVES_HISTORY_FILE")
	}
	entries, err := audit.Read(path)
	if err != nil {
		return err
	}
	if last > 0 && len(entries) > last {
		entries = entries[len(entries)-last:]
	}

	if cc.JSONOutput {
		if entries == nil {
			entries = []audit.Entry{}
		}
		return outputJSON(cc.Stdout, entries)
	}
	if len(entries) == 0 {
		fmt.Fprintln(cc.Stdout, ui.RenderMuted("No runs recorded in "+path))
		return nil
	}
	fmt.Fprintln(cc.Stdout, ui.RenderHistoryTable(entries, ui.Width(cc.Stdout)))
	return nil
}
