package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/untoldecay/movestories/internal/config"
	"github.com/untoldecay/movestories/internal/ui"
)

func newConfigCmd(cc *CommandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration settings",
		Long: `Inspect the resolved configuration.

Settings come from, in order of precedence:
  1. command-line flags
  2. MOVES_* environment variables (MOVES_EXPORT_DELIMITER for export.delimiter)
  3. .movestories/config.yaml, searched upward from the working directory,
     then the user config directory
  4. built-in defaults

Examples:
  movestories config show
  MOVES_WORKERS=4 movestories config show --json`,
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show every setting with its value and source",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runConfigShow(cc)
		},
	}

	configCmd.AddCommand(showCmd)
	return configCmd
}

type configShowOutput struct {
	ConfigFile string           `json:"config_file,omitempty"`
	Settings   []config.Setting `json:"settings"`
}

func runConfigShow(cc *CommandContext) error {
	settings := config.Settings()
	file := config.ConfigFileUsed()

	if cc.JSONOutput {
		return outputJSON(cc.Stdout, configShowOutput{ConfigFile: file, Settings: settings})
	}

	if file != "" {
		fmt.Fprintf(cc.Stdout, "Config file: %s\n\n", file)
	} else {
		fmt.Fprintf(cc.Stdout, "Config file: %s\n\n", ui.RenderMuted("none"))
	}

	width := 0
	for _, s := range settings {
		width = max(width, len(s.Key))
	}
	for _, s := range settings {
		fmt.Fprintf(cc.Stdout, "  %-*s = %-12v %s\n", width, s.Key, s.Value,
			ui.RenderMuted(fmt.Sprintf("(%s)", describeSource(s))))
	}
	return nil
}

func describeSource(s config.Setting) string {
	if s.Source == config.SourceEnvVar {
		return fmt.Sprintf("%s %s", s.Source, config.EnvKey(s.Key))
	}
	return string(s.Source)
}
