package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/valter-silva-au/tempo/internal/core"
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace all tasks with the contents of a JSON export",
	Long: `Import reads a JSON task export and replaces the entire task list.
The import is all-or-nothing: if the file cannot be parsed, the
current tasks are left untouched.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Store == nil {
			return fmt.Errorf("task store not initialized")
		}

		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading import file: %w", err)
		}

		tasks, err := core.ImportJSON(string(data))
		if err != nil {
			return err
		}

		Store.ReplaceAll(tasks)
		fmt.Printf("Imported %d tasks from %s\n", len(tasks), args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
}
