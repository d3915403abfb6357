package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kvesta/scanconsole/config"
)

var minServerVersion string

func configure() {
	configureCmd := &cobra.Command{
		Use:   "configure",
		Short: "Save the connection settings",
		Long: `Examples:
  # Point the client at another server and require at least version 1.2
  $ scanconsole configure --api https://scan.example.com/api --min-server-version 1.2.0`,
		Args: NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings(cmd)
			if err != nil {
				return err
			}

			if cmd.Flags().Changed("min-server-version") {
				s.MinServerVersion = minServerVersion
			}

			path := configFile
			if path == "" {
				dir, err := home()
				if err != nil {
					return err
				}
				path = config.SettingsPath(dir)
			}

			if err = s.Save(path); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Settings saved in: %s\n", config.Yellow(path))
			return nil
		},
	}

	configureCmd.Flags().StringVar(&minServerVersion, "min-server-version", "", "oldest server version to accept")

	rootCmd.AddCommand(configureCmd)
}
