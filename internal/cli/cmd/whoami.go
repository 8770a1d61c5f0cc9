package cmd

import (
	"fmt"

	"github.com/hospoda/shiftboard/internal/cli/api"
	"github.com/hospoda/shiftboard/internal/cli/output"
	"github.com/spf13/cobra"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in profile and refresh the cached role",
	Long: `Fetch the signed-in profile from the server. When a manager has
changed your role since you logged in, the cached role is updated so
admin commands unlock (or lock) without logging in again.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}

		var resp api.Response[api.Profile]
		if err := apiClient.Get("/auth/me", nil, &resp); err != nil {
			return explain(err, "fetching profile")
		}
		profile := resp.Data

		previousRole := cfg.Role()
		changed := refreshSession(profile)
		if changed {
			if err := saveConfig(); err != nil {
				return err
			}
		}

		if flagJSON {
			output.JSON(struct {
				api.Profile
				Server      string `json:"server"`
				RoleChanged bool   `json:"roleChanged"`
			}{profile, cfg.ServerURL, changed && previousRole != profile.Role})
			return nil
		}
		output.ProfileInfo(profile)
		output.SessionInfo(cfg.ServerURL, cfg.Session.SignedInAt)
		if changed && previousRole != profile.Role {
			fmt.Fprintf(cmd.ErrOrStderr(), "Role changed from %q to %q, cached session updated.\n", previousRole, profile.Role)
		}
		return nil
	},
}

// refreshSession copies the server's view of the profile into the cached
// session and reports whether anything differed.
func refreshSession(p api.Profile) bool {
	s := cfg.Session
	if s.Email == p.Email && s.DisplayName == p.DisplayName && s.Role == p.Role {
		return false
	}
	s.Email = p.Email
	s.DisplayName = p.DisplayName
	s.Role = p.Role
	return true
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
}
