package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/lessond-dev/lessond/internal/cli/config"
)

// initOptions controls init behavior, mainly for tests
type initOptions struct {
	skipBrowser bool
}

// NewInitCmd creates the init command
func NewInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init <server-url>",
		Short: "Register a lessond server in this project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInitWithOptions(args, &initOptions{})
		},
	}
}

func runInitWithOptions(args []string, opts *initOptions) error {
	serverURL := config.NormalizeURL(args[0])
	if serverURL == "" {
		return fmt.Errorf("server URL is empty")
	}

	currentDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current directory: %w", err)
	}

	configPath := filepath.Join(currentDir, config.ConfigFileName)

	var cfg *config.Config
	isNewConfig := false

	// Check if config already exists
	if _, err := os.Stat(configPath); err == nil {
		// Load existing config
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load existing config: %w", err)
		}
		fmt.Println("Found existing lessond.json")
	} else {
		// Create new config
		cfg = &config.Config{
			Servers: []config.Server{},
		}
		isNewConfig = true
	}

	// Check if server already exists
	serverExists := false
	for _, server := range cfg.Servers {
		if server.URL == serverURL {
			serverExists = true
			break
		}
	}

	if serverExists {
		fmt.Printf("Server %s already exists in lessond.json\n", serverURL)
	} else {
		// Add new server
		alias := fmt.Sprintf("server-%d", len(cfg.Servers)+1)

		cfg.Servers = append(cfg.Servers, config.Server{
			URL:   serverURL,
			Alias: alias,
		})

		// Save to file
		if err := config.Save(configPath, cfg); err != nil {
			return err
		}

		if isNewConfig {
			fmt.Printf("✓ Created ./lessond.json with server %s (%s)\n", serverURL, alias)
		} else {
			fmt.Printf("✓ Added server %s (%s) to ./lessond.json\n", serverURL, alias)
		}
	}

	if opts.skipBrowser {
		return nil
	}

	// Open browser to setup page
	setupURL := fmt.Sprintf("%s/setup", serverURL)
	fmt.Printf("\nOpening setup page at %s...\n", setupURL)

	if err := openBrowser(setupURL); err != nil {
		fmt.Printf("⚠ Could not open browser automatically: %v\n", err)
		fmt.Printf("Please visit: %s\n", setupURL)
	}

	fmt.Println("\nNext steps:")
	fmt.Println("  1. Complete first-run setup in your browser")
	fmt.Println("  2. Run 'lessond login' to authenticate")

	return nil
}
