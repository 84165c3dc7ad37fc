package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lessond-dev/lessond/internal/cli/commands"
	"github.com/lessond-dev/lessond/internal/cli/update"
)

var version = "dev" // Will be set during build

var rootCmd = &cobra.Command{
	Use:   "lessond",
	Short: "Lessond - Curriculum lesson management",
	Long: `Lessond CLI - Publish and maintain curriculum lessons.

Lessond hosts Markdown lessons organized into per-language tracks, keeps
parallel track copies in sync, and runs content checks on every change.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Skip update check for the update and version commands
		if cmd.Name() == "update" || cmd.Name() == "version" {
			return
		}

		// Check for updates (runs before every command except update/version)
		update.PrintUpdateNotification(version)
	},
}

func init() {
	// Add version command
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("lessond version %s\n", version)
		},
	})

	// Add all subcommands
	rootCmd.AddCommand(commands.NewInitCmd())
	rootCmd.AddCommand(commands.NewLoginCmd())
	rootCmd.AddCommand(commands.NewListCmd())
	rootCmd.AddCommand(commands.NewPushCmd())
	rootCmd.AddCommand(commands.NewDeleteCmd())
	rootCmd.AddCommand(commands.NewLintCmd())
	rootCmd.AddCommand(commands.NewDashCmd())
	rootCmd.AddCommand(commands.NewSelectServerCmd())
	rootCmd.AddCommand(commands.NewUpdateCmd(version))
}

// Execute runs the root command
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
