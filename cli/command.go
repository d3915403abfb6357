package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/kvesta/scanconsole/config"
	"github.com/kvesta/scanconsole/internal/console"
	"github.com/kvesta/scanconsole/internal/router"
	"github.com/kvesta/scanconsole/pkg/apiclient"
	"github.com/kvesta/scanconsole/pkg/session"
)

var Version = "0.1.0"

var (
	rootCmd = &cobra.Command{
		Use:   "scanconsole [OPTIONS]",
		Short: "Terminal client for the code scan service",
		Long: `scanconsole uploads source files to a scan service and browses the
resulting reports: findings, raw scanner output, export and delete.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			initLogger()
		},
	}

	apiURL     string
	configFile string
	homeDir    string
	timeout    time.Duration
	ephemeral  bool
	verbose    bool
	noColor    bool
)

func initLogger() {
	if noColor {
		config.DisableColor()
	}

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	log.Logger = log.Output(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		NoColor:    noColor,
		TimeFormat: "15:04:05",
	})
}

// app is everything a command needs to talk to the backend.
type app struct {
	settings *config.Settings
	store    session.Store
	client   *apiclient.Client
	console  *console.Console
}

func (a *app) Close() {
	a.console.Router.Close()

	if db, ok := a.store.(*session.DB); ok {
		if err := db.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close session database")
		}
	}
}

func home() (string, error) {
	if homeDir != "" {
		return homeDir, nil
	}
	return config.HomeDir()
}

func loadSettings(cmd *cobra.Command) (*config.Settings, error) {
	dir, err := home()
	if err != nil {
		return nil, err
	}

	path := configFile
	if path == "" {
		path = config.SettingsPath(dir)
	}

	s, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	if cmd.Flags().Changed("api") {
		s.API = apiURL
	}
	if cmd.Flags().Changed("timeout") {
		s.Timeout = timeout
	}

	return s, nil
}

func setup(cmd *cobra.Command) (*app, error) {
	s, err := loadSettings(cmd)
	if err != nil {
		return nil, err
	}

	var store session.Store
	if ephemeral {
		store = session.NewMemory()
	} else {
		dir, err := home()
		if err != nil {
			return nil, err
		}

		db, err := session.Open(dir)
		if err != nil {
			return nil, err
		}
		log.Debug().Str("path", db.Path()).Msg("session store opened")
		store = db
	}

	apiclient.UserAgent = "scanconsole/" + Version
	client := apiclient.New(s, store)

	c := console.New(cmd.Context(), client, store)
	c.MinServerVersion = s.MinServerVersion

	return &app{
		settings: s,
		store:    store,
		client:   client,
		console:  c,
	}, nil
}

// runPage runs one user event against a fresh console, waits for it to
// settle, and prints the page that ends up active.
func runPage(cmd *cobra.Command, event func(c *console.Console)) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	event(a.console)
	a.console.Wait()
	a.console.Render(cmd.OutOrStdout())

	return a.console.Err()
}

func navigate(p router.Page) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		return runPage(cmd, func(c *console.Console) {
			c.Navigate(p)
		})
	}
}

func Execute() error {
	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information and quit",
		Args:  NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "scanconsole version %s\n", Version)
		},
	}

	dashboardCmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show service status and the latest reports",
		Args:  NoArgs,
		RunE:  navigate(router.Dashboard),
	}

	healthCmd := &cobra.Command{
		Use:   "health",
		Short: "Check whether the scan service is up",
		Args:  NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			return printHealth(cmd.Context(), cmd.OutOrStdout(), a)
		},
	}

	consoleCmd := &cobra.Command{
		Use:   "console",
		Short: "Interactive mode",
		Args:  NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			return a.console.Run(cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	rootCmd.PersistentFlags().StringVar(&apiURL, "api", config.DefaultAPI, "scan service API base URL")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "settings file (default ~/.scanconsole/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&homeDir, "home", "", "folder holding the session and settings")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", config.DefaultTimeout, "request timeout")
	rootCmd.PersistentFlags().BoolVar(&ephemeral, "ephemeral", false, "keep the session in memory only")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colors")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(dashboardCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(consoleCmd)

	auth()
	scan()
	reports()
	configure()

	initLogger()

	ctx, stop := signal.NotifyContext(config.Ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return rootCmd.ExecuteContext(ctx)
}

func printHealth(ctx context.Context, w io.Writer, a *app) error {
	h, err := a.client.Health(ctx)
	if err != nil {
		fmt.Fprintf(w, "API status: %s (%s)\n", config.Red("down"), apiclient.UserMessage(err, "unexpected answer"))
		return err
	}

	fmt.Fprintf(w, "API status: %s\n", config.Green(h.Status))
	if h.Version != "" {
		fmt.Fprintf(w, "Server version: %s\n", h.Version)
	}

	old, err := h.Outdated(a.settings.MinServerVersion)
	if err != nil {
		return err
	}
	if old {
		fmt.Fprintf(w, "%s\n", config.Yellow(fmt.Sprintf("server is older than required %s", a.settings.MinServerVersion)))
	}

	return nil
}
