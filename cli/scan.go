package cli

import (
	"github.com/spf13/cobra"

	"github.com/kvesta/scanconsole/internal/console"
	"github.com/kvesta/scanconsole/internal/router"
)

func scan() {
	uploadCmd := &cobra.Command{
		Use:     "upload <file>",
		Aliases: []string{"scan"},
		Short:   "Upload a file for scanning and show the result",
		Long: `Examples:
  # Scan a python file
  $ scanconsole upload app.py`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) > 0 {
				path = args[0]
			}

			return runPage(cmd, func(c *console.Console) {
				c.Navigate(router.Upload)
				c.SubmitUpload(path)
			})
		},
	}

	rootCmd.AddCommand(uploadCmd)
}
