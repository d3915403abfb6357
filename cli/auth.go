package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/kvesta/scanconsole/internal/console"
	"github.com/kvesta/scanconsole/internal/router"
)

var (
	username string
	password string
)

func auth() {
	loginCmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and keep the session",
		Long: `Examples:
  # Log in, the password is asked for
  $ scanconsole login -u admin

  # Log in against another server
  $ scanconsole login -u admin -p secret --api https://scan.example.com/api`,
		Args: NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if username == "" {
				return errors.New("a username is required, use -u")
			}

			if password == "" {
				fmt.Fprint(cmd.OutOrStdout(), "Password: ")
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return errors.Wrap(err, "read password")
				}
				password = strings.TrimRight(line, "\r\n")
			}

			return runPage(cmd, func(c *console.Console) {
				c.Navigate(router.Login)
				c.SubmitLogin(username, password)
			})
		},
	}

	logoutCmd := &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			if err = a.console.Logout(); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}

	loginCmd.Flags().StringVarP(&username, "username", "u", "", "account name")
	loginCmd.Flags().StringVarP(&password, "password", "p", "", "account password")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
}
