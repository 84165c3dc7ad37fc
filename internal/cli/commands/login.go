package commands

import (
	"fmt"
	"os"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/lessond-dev/lessond/internal/cli/auth"
	"github.com/lessond-dev/lessond/internal/cli/client"
	"github.com/lessond-dev/lessond/internal/cli/config"
	"github.com/lessond-dev/lessond/internal/cli/serverselect"
)

// NewLoginCmd creates the login command
func NewLoginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate with a Lessond server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(email, password)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address (or set LESSOND_EMAIL)")
	cmd.Flags().StringVar(&password, "password", "", "Password (or set LESSOND_PASSWORD, will prompt if not provided)")

	return cmd
}

func runLogin(email, password string) error {
	// Check for environment variables (useful for CI/CD)
	if email == "" {
		email = os.Getenv("LESSOND_EMAIL")
	}
	if password == "" {
		password = os.Getenv("LESSOND_PASSWORD")
	}

	// Validate email
	if email == "" {
		return fmt.Errorf("email is required (use --email flag or LESSOND_EMAIL env var)")
	}

	// Load config
	cfg, err := config.LoadFromCurrentDir()
	if err != nil {
		return fmt.Errorf("failed to load config: %w\nRun 'lessond init' to create a configuration file", err)
	}

	// Resolve which server to use (respects selected server from select-server command)
	server, err := serverselect.ResolveServer(cfg, "")
	if err != nil {
		return err
	}

	if server.URL == "" {
		return fmt.Errorf("server URL is empty. Please edit lessond.json and add a valid server URL")
	}

	// Prompt for password if not provided via flag or env var
	if password == "" {
		// Check if stdin is a terminal (not piped)
		if term.IsTerminal(int(syscall.Stdin)) {
			fmt.Print("Password: ")
			bytePassword, err := term.ReadPassword(int(syscall.Stdin))
			if err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}
			password = string(bytePassword)
			fmt.Println() // New line after password input
		} else {
			return fmt.Errorf("password is required in non-interactive mode (use --password flag or LESSOND_PASSWORD env var)")
		}
	}

	// Create API client
	apiClient := client.New(server.URL)

	// Attempt login
	fmt.Printf("Logging in to %s (%s)...\n", server.Alias, server.URL)

	loginResp, err := apiClient.Login(email, password)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	// Save token
	if err := auth.SaveToken(server.URL, loginResp.Token); err != nil {
		return fmt.Errorf("failed to save authentication token: %w", err)
	}

	fmt.Println("✓ Login successful!")
	fmt.Printf("  User: %s (%s)\n", loginResp.User.Name, loginResp.User.Email)
	if loginResp.User.IsAdmin {
		fmt.Println("  Role: Admin")
	}

	return nil
}
