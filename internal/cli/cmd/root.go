package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/hospoda/shiftboard/internal/cli/api"
	"github.com/hospoda/shiftboard/internal/cli/config"
	"github.com/spf13/cobra"
)

var (
	flagJSON      bool
	flagServerURL string

	store     *config.Store
	cfg       *config.Config
	apiClient *api.Client
)

var rootCmd = &cobra.Command{
	Use:   "shiftctl",
	Short: "Shift board CLI for the restaurant staff",
	Long: `shiftctl lets staff browse and claim shifts, tick off tasks and
read the board without opening the web app.

Get started:
  shiftctl login --email pavel@hospoda.cz   Sign in with email and password
  shiftctl shifts list --view open          Show shifts nobody has taken
  shiftctl shifts claim <id>                Take an open shift`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if store, err = config.Open(); err != nil {
			return err
		}
		if cfg, err = store.Load(); err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if flagServerURL != "" {
			cfg.ServerURL = flagServerURL
		}
		apiClient = api.NewClient(cfg.ServerURL, cfg.Token())
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Output as JSON")
	rootCmd.PersistentFlags().StringVar(&flagServerURL, "server", "", "Override server URL (default: from config or http://localhost:8080)")
}

// Execute runs the root command.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

func requireAuth() error {
	if cfg == nil || !cfg.HasToken() {
		return errors.New(`not authenticated, run "shiftctl login" first`)
	}
	return nil
}

// requireAdmin rejects manager commands before any request when the role
// cached at login is not admin.
func requireAdmin() error {
	if err := requireAuth(); err != nil {
		return err
	}
	if !cfg.IsAdmin() {
		return fmt.Errorf(`admin role required, signed in as %s (%s); run "shiftctl whoami" if your role changed`,
			cfg.Email(), cfg.Role())
	}
	return nil
}

// saveConfig persists cfg to the opened store.
func saveConfig() error {
	if err := store.Save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	return nil
}

// explain turns the server's state conflicts into something a waiter can act on.
func explain(err error, action string) error {
	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Status {
		case 401:
			return fmt.Errorf("%s: session expired, run \"shiftctl login\" again", action)
		case 403:
			return fmt.Errorf("%s: not allowed (%s)", action, apiErr.Message)
		case 409:
			return fmt.Errorf("%s: %s", action, apiErr.Message)
		}
	}
	return fmt.Errorf("%s: %w", action, err)
}
