package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/untoldecay/movestories"
	"github.com/untoldecay/movestories/internal/config"
	"github.com/untoldecay/movestories/internal/export"
	"github.com/untoldecay/movestories/internal/ui"
)

func newPreviewCmd(cc *CommandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Show the entity table without writing it",
		Long: `Run the extraction and print the first rows of the deduplicated entity
table. With --from, an existing export is read back and shown instead.

Examples:
  movestories preview -i annotations.jsonl
  movestories preview -i annotations.jsonl --limit 0
  movestories preview --from entities.csv --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			from, _ := cmd.Flags().GetString("from")
			return runPreview(cmd, cc, from)
		},
	}
	cmd.Flags().Int("limit", 20, "Maximum rows to show (0 shows all)")
	cmd.Flags().String("from", "", "Read rows from an exported table instead of the input file")
	return cmd
}

// previewOutput is the --json output of preview
type previewOutput struct {
	Total int               `json:"total"`
	Rows  []movestories.Row `json:"rows"`
}

func runPreview(cmd *cobra.Command, cc *CommandContext, from string) error {
	cfg, err := export.LoadConfig(config.Store{})
	if err != nil {
		return err
	}

	var rows []movestories.Row
	if from != "" {
		cc.Logger.Info("preview started", "from", from)
		rows, err = export.ReadFile(from, cfg)
		if err != nil {
			return err
		}
	} else {
		input := config.GetString("input")
		if input == "" {
			return errors.New("no input file: use --input, --from, MOVES_INPUT or 'input' in config.yaml")
		}
		cc.Logger.Info("preview started", "input", input)
		res, err := movestories.Preview(cmd.Context(), movestories.Options{
			InputPath: input,
			Workers:   config.GetInt("workers"),
			Stdin:     cc.Stdin,
		})
		if err != nil {
			return err
		}
		rows = res.Rows
	}

	total := len(rows)
	limit := config.GetInt("preview.limit")
	if limit < 0 {
		return fmt.Errorf("invalid limit %d", limit)
	}
	if limit > 0 && limit < total {
		rows = rows[:limit]
	}

	if cc.JSONOutput {
		if rows == nil {
			rows = []movestories.Row{}
		}
		return outputJSON(cc.Stdout, previewOutput{Total: total, Rows: rows})
	}

	if total == 0 {
		fmt.Fprintln(cc.Stdout, ui.RenderMuted("No entities found"))
		return nil
	}
	fmt.Fprintln(cc.Stdout, ui.RenderEntityTable(rows, 0, ui.Width(cc.Stdout)))
	if len(rows) < total {
		fmt.Fprintln(cc.Stdout, ui.RenderMuted(fmt.Sprintf("Showing %d of %d rows (use --limit 0 for all)", len(rows), total)))
	} else {
		fmt.Fprintln(cc.Stdout, ui.RenderMuted(fmt.Sprintf("%d rows", total)))
	}
	return nil
}
