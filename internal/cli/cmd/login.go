package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/hospoda/shiftboard/internal/cli/api"
	"github.com/hospoda/shiftboard/internal/cli/config"
	"github.com/spf13/cobra"
)

var (
	flagToken    string
	flagEmail    string
	flagPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to the shift board",
	Long: `Sign in with email and password, or store an existing session token.

Password:
  shiftctl login --email pavel@hospoda.cz
  The password is read from SHIFTCTL_PASSWORD or prompted for.

Token:
  shiftctl login --token eyJhbGciOi...`,
	RunE: runLogin,
}

func init() {
	loginCmd.Flags().StringVar(&flagToken, "token", "", "Existing session token")
	loginCmd.Flags().StringVar(&flagEmail, "email", "", "Account email")
	loginCmd.Flags().StringVar(&flagPassword, "password", "", "Account password (prefer SHIFTCTL_PASSWORD)")
	rootCmd.AddCommand(loginCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	if flagToken != "" {
		return loginWithToken(flagToken)
	}
	if flagEmail == "" {
		return errors.New("either --email or --token is required")
	}

	password := flagPassword
	if password == "" {
		password = os.Getenv("SHIFTCTL_PASSWORD")
	}
	if password == "" {
		var err error
		if password, err = promptPassword(cmd); err != nil {
			return err
		}
	}
	return loginWithPassword(flagEmail, password)
}

func promptPassword(cmd *cobra.Command) (string, error) {
	fmt.Fprint(cmd.OutOrStderr(), "Password: ")
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func loginWithPassword(email, password string) error {
	client := api.NewClient(cfg.ServerURL, "")
	var resp api.Response[api.LoginResponse]
	err := client.Post("/auth/login", map[string]string{"email": email, "password": password}, &resp)
	if err != nil {
		var apiErr *api.APIError
		if errors.As(err, &apiErr) && apiErr.Message != "" {
			return errors.New(apiErr.Message)
		}
		return fmt.Errorf("signing in: %w", err)
	}
	return saveSession(resp.Data.Token, resp.Data.User)
}

func loginWithToken(token string) error {
	client := api.NewClient(cfg.ServerURL, token)
	var resp api.Response[api.Profile]
	if err := client.Get("/auth/me", nil, &resp); err != nil {
		var apiErr *api.APIError
		if errors.As(err, &apiErr) && apiErr.Status == 401 {
			return errors.New("invalid token, server returned 401")
		}
		return fmt.Errorf("validating token: %w", err)
	}
	return saveSession(token, resp.Data)
}

func saveSession(token string, profile api.Profile) error {
	cfg.Session = &config.Session{
		Token:       token,
		Email:       profile.Email,
		DisplayName: profile.DisplayName,
		Role:        profile.Role,
		SignedInAt:  time.Now().UTC(),
	}
	if err := saveConfig(); err != nil {
		return err
	}
	fmt.Printf("Logged in as %s (%s, %s)\n", profile.DisplayName, profile.Email, profile.Role)
	return nil
}
