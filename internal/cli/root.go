package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/osmium-toolchains/osmium-cli/internal/app"
	"github.com/osmium-toolchains/osmium-cli/internal/config"
)

// contextKey is the type for context keys
type contextKey string

const (
	// appKey is the context key for the app instance
	appKey contextKey = "app"
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	var cleanup func()

	rootCmd := &cobra.Command{
		Use:   "osmium",
		Short: "Project backend for Foundry smart contract tooling",
		Long: `Osmium keeps the wallets, environments and contracts of a Foundry project,
serves them to editor surfaces over websocket channels and runs deployments
and contract calls on their behalf.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Skip for help/version commands
			if skipsApp(cmd) {
				return nil
			}

			projectRoot, err := cmd.Flags().GetString("project-root")
			if err != nil {
				return err
			}
			if projectRoot == "" {
				if projectRoot, err = config.FindProjectRoot(); err != nil {
					return err
				}
			}

			// Set up viper
			v := config.SetupViper(projectRoot, cmd)

			// Initialize app with DI
			appInstance, release, err := app.InitApp(v)
			if err != nil {
				return fmt.Errorf("failed to initialize app: %w", err)
			}
			cleanup = release

			cmd.SetContext(context.WithValue(cmd.Context(), appKey, appInstance))
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if cleanup != nil {
				cleanup()
			}
		},
	}

	// Global flags
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug output")
	rootCmd.PersistentFlags().Bool("non-interactive", false, "Disable interactive prompts")
	rootCmd.PersistentFlags().Bool("json", false, "Output machine readable JSON")
	rootCmd.PersistentFlags().String("project-root", "", "Foundry project root (defaults to the nearest foundry.toml)")

	// Add command groups
	rootCmd.AddGroup(&cobra.Group{
		ID:    "main",
		Title: "Main Commands",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "resources",
		Title: "Resource Commands",
	})

	// Main commands
	serveCmd := NewServeCmd()
	serveCmd.GroupID = "main"
	rootCmd.AddCommand(serveCmd)

	sendCmd := NewSendCmd()
	sendCmd.GroupID = "main"
	rootCmd.AddCommand(sendCmd)

	listCmd := NewListCmd()
	listCmd.GroupID = "main"
	rootCmd.AddCommand(listCmd)

	// Resource commands
	walletCmd := NewWalletCmd()
	walletCmd.GroupID = "resources"
	rootCmd.AddCommand(walletCmd)

	envCmd := NewEnvCmd()
	envCmd.GroupID = "resources"
	rootCmd.AddCommand(envCmd)

	contractCmd := NewContractCmd()
	contractCmd.GroupID = "resources"
	rootCmd.AddCommand(contractCmd)

	// Version command
	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd
}

// skipsApp reports whether cmd runs without a project
func skipsApp(cmd *cobra.Command) bool {
	switch cmd.Name() {
	case "version", "help", "completion", "__complete":
		return true
	}
	// group commands only print their help
	return !cmd.Runnable()
}

// getApp retrieves the app instance from the command context
func getApp(cmd *cobra.Command) (*app.App, error) {
	appInstance := cmd.Context().Value(appKey)
	if appInstance == nil {
		return nil, fmt.Errorf("app not initialized")
	}

	app, ok := appInstance.(*app.App)
	if !ok {
		return nil, fmt.Errorf("invalid app instance")
	}

	return app, nil
}
