package cmd

import (
	"fmt"

	"github.com/hospoda/shiftboard/internal/cli/config"
	"github.com/spf13/cobra"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session",
	Long: `Forget the stored session token and role. A non-default --server or
saved server URL is kept so the next login goes to the same pub.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		email := cfg.Email()
		cfg.SignOut()
		if cfg.ServerURL == config.DefaultURL {
			if err := store.Remove(); err != nil {
				return fmt.Errorf("clearing config: %w", err)
			}
		} else if err := saveConfig(); err != nil {
			return err
		}

		if email != "" {
			fmt.Printf("Logged out %s.\n", email)
		} else {
			fmt.Println("Logged out.")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}
