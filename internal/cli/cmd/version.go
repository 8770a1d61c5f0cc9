package cmd

import (
	"fmt"

	"github.com/hospoda/shiftboard/internal/cli/api"
	"github.com/hospoda/shiftboard/internal/cli/output"
	"github.com/spf13/cobra"
)

// Version is stamped by the release build with -ldflags "-X .../cmd.Version=...".
var Version = "dev"

// apiVersion is the server API revision this build speaks.
const apiVersion = "v1"

type versionReport struct {
	CLIVersion string           `json:"cliVersion"`
	ServerURL  string           `json:"serverUrl"`
	Server     *api.VersionInfo `json:"server,omitempty"`
	Error      string           `json:"error,omitempty"`
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the CLI build and the server's timezone and storage",
	RunE: func(cmd *cobra.Command, args []string) error {
		report := versionReport{CLIVersion: Version, ServerURL: cfg.ServerURL}

		var resp api.Response[api.VersionInfo]
		serverErr := apiClient.Get("/version", nil, &resp)
		if serverErr == nil {
			report.Server = &resp.Data
		} else {
			report.Error = serverErr.Error()
		}

		if flagJSON {
			output.JSON(report)
		} else {
			output.VersionInfo(report.CLIVersion, report.ServerURL, report.Server, serverErr)
		}
		if report.Server != nil && report.Server.APIVersion != apiVersion {
			fmt.Fprintf(cmd.ErrOrStderr(), "Warning: server speaks API %s, this shiftctl expects %s.\n",
				report.Server.APIVersion, apiVersion)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
