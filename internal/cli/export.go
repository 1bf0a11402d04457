package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/valter-silva-au/tempo/internal/core"
)

var (
	exportFormat string
	exportOutput string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export tasks as markdown, JSON, or YAML",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Store == nil {
			return fmt.Errorf("task store not initialized")
		}

		tasks := Store.Tasks()

		var (
			out string
			err error
		)
		switch exportFormat {
		case "md", "markdown":
			out = core.ExportMarkdown(tasks)
		case "json":
			out, err = core.ExportJSON(tasks)
		case "yaml", "yml":
			out, err = core.ExportYAML(tasks)
		default:
			return fmt.Errorf("unknown format %q (expected md, json, or yaml)", exportFormat)
		}
		if err != nil {
			return fmt.Errorf("exporting tasks: %w", err)
		}

		if exportOutput == "" {
			fmt.Print(out)
			if len(out) > 0 && !strings.HasSuffix(out, "\n") {
				fmt.Println()
			}
			return nil
		}

		if err := os.WriteFile(exportOutput, []byte(out), 0o644); err != nil {
			return fmt.Errorf("writing export file: %w", err)
		}
		fmt.Printf("Exported %d tasks to %s\n", len(tasks), exportOutput)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "md", "Export format (md, json, yaml)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Write to file instead of stdout")
	_ = exportCmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{"md", "json", "yaml"}, cobra.ShellCompDirectiveNoFileComp
	})
	rootCmd.AddCommand(exportCmd)
}
