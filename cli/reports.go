package cli

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/kvesta/scanconsole/config"
	"github.com/kvesta/scanconsole/internal/console"
	"github.com/kvesta/scanconsole/internal/router"
	"github.com/kvesta/scanconsole/pkg/apiclient"
)

var (
	assumeYes bool
	outfile   string
)

func reports() {
	reportsCmd := &cobra.Command{
		Use:   "reports",
		Short: "List every scan report",
		Args:  NoArgs,
		RunE:  navigate(router.Reports),
	}

	viewCmd := &cobra.Command{
		Use:     "view <id>",
		Aliases: []string{"report"},
		Short:   "Show the findings of a report",
		Args:    ReportID,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPage(cmd, func(c *console.Console) {
				c.ViewReport(apiclient.ID(args[0]))
			})
		},
	}

	deleteCmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a report",
		Long: `Examples:
  # Delete report 3 without asking
  $ scanconsole delete 3 --yes`,
		Args: ReportID,
		RunE: func(cmd *cobra.Command, args []string) error {
			id := apiclient.ID(args[0])

			if !assumeYes {
				fmt.Fprintf(cmd.OutOrStdout(), "Delete report #%s? [y/N] ", id)
				answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				switch strings.ToLower(strings.TrimSpace(answer)) {
				case "y", "yes":
				default:
					fmt.Fprintln(cmd.OutOrStdout(), "Cancelled")
					return nil
				}
			}

			return runPage(cmd, func(c *console.Console) {
				c.Navigate(router.Reports)
				c.Wait()
				c.DeleteReport(id)
			})
		},
	}

	exportCmd := &cobra.Command{
		Use:   "export <id>",
		Short: "Print the export link of a report, or download it",
		Long: `Examples:
  # Print the link to open in a browser
  $ scanconsole export 7

  # Download the export
  $ scanconsole export 7 -o reports/`,
		Args: ReportID,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			id := apiclient.ID(args[0])
			if outfile == "" {
				fmt.Fprintln(cmd.OutOrStdout(), a.console.ExportURL(id))
				return nil
			}

			return download(cmd, a, id)
		},
	}

	adminCmd := &cobra.Command{
		Use:   "admin",
		Short: "Administrative view of all reports",
		Args:  NoArgs,
		RunE:  navigate(router.Admin),
	}

	deleteCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "do not ask for confirmation")
	exportCmd.Flags().StringVarP(&outfile, "output", "o", "", "file or folder to save the export in")

	rootCmd.AddCommand(reportsCmd)
	rootCmd.AddCommand(viewCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(adminCmd)
}

// download saves the export of id. When outfile is a folder the name
// suggested by the server is used.
func download(cmd *cobra.Command, a *app, id apiclient.ID) error {
	tmp, err := os.CreateTemp("", "scanconsole-export-*")
	if err != nil {
		return errors.Wrap(err, "create temp file")
	}
	defer os.Remove(tmp.Name())

	suggested, err := a.client.Export(cmd.Context(), id, tmp)
	if cerr := tmp.Close(); err == nil && cerr != nil {
		err = errors.Wrap(cerr, "write export")
	}
	if err != nil {
		fmt.Fprintln(cmd.OutOrStdout(), apiclient.UserMessage(err, "Export failed"))
		return err
	}

	target, err := exportTarget(outfile, suggested, id)
	if err != nil {
		return err
	}

	if err = moveFile(tmp.Name(), target); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Output file is saved in: %s\n", config.Yellow(target))
	return nil
}

// exportTarget resolves the file an export is saved to. An existing folder,
// or a path ending in a separator, receives the name the server suggested.
func exportTarget(outfile, suggested string, id apiclient.ID) (string, error) {
	isDir := strings.HasSuffix(outfile, "/") || strings.HasSuffix(outfile, string(os.PathSeparator))
	if info, err := os.Stat(outfile); err == nil && info.IsDir() {
		isDir = true
	}

	if !isDir {
		return outfile, config.MkFolder(filepath.Dir(outfile))
	}

	if err := config.MkFolder(outfile); err != nil {
		return "", err
	}
	if suggested == "" {
		suggested = fmt.Sprintf("report_%s", id)
	}
	return filepath.Join(outfile, filepath.Base(suggested)), nil
}

func moveFile(from, to string) error {
	if err := os.Rename(from, to); err == nil {
		return nil
	}

	// rename fails across devices, copy instead
	data, err := os.ReadFile(from)
	if err != nil {
		return err
	}
	return os.WriteFile(to, data, 0644)
}
