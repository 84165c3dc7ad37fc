package commands

import (
	"fmt"

	"github.com/lessond-dev/lessond/internal/cli/config"
	"github.com/lessond-dev/lessond/internal/cli/serverselect"
)

// getSelectedServer loads the config and returns the selected server.
// This is common logic used by most commands.
// If you need the config object itself, call config.LoadFromCurrentDir() separately.
func getSelectedServer(serverAlias string) (*config.Server, error) {
	// Load config
	cfg, err := config.LoadFromCurrentDir()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w\nRun 'lessond init' to create a configuration file", err)
	}

	// Resolve which server to use
	server, err := serverselect.ResolveServer(cfg, serverAlias)
	if err != nil {
		return nil, err
	}

	if server.URL == "" {
		return nil, fmt.Errorf("server URL is empty. Please edit lessond.json and add a valid server URL")
	}

	return server, nil
}
