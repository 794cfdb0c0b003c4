package cli

import (
	"encoding/json"
	"fmt"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/osmium-toolchains/osmium-cli/internal/adapters/interactive"
	"github.com/osmium-toolchains/osmium-cli/internal/app"
	"github.com/osmium-toolchains/osmium-cli/internal/cli/render"
	"github.com/osmium-toolchains/osmium-cli/internal/domain"
	"github.com/osmium-toolchains/osmium-cli/internal/domain/models"
	"github.com/osmium-toolchains/osmium-cli/internal/usecase"
)

var environmentResource = resource{
	kind: domain.KindEnvironment,
	options: func(a *app.App) []interactive.Option {
		return lo.Map(a.Environments.GetAll(), func(e models.Environment, _ int) interactive.Option {
			return interactive.Option{ID: e.ID, Label: e.Name, Detail: e.RPCURL}
		})
	},
	edit: func(cmd *cobra.Command, a *app.App, id, field string, value json.RawMessage) error {
		update, err := models.ParseEnvironmentUpdate(field, value)
		if err != nil {
			return err
		}
		return a.ManageEnvironments.Edit(cmd.Context(), id, update)
	},
	remove: func(cmd *cobra.Command, a *app.App, id string) error {
		return a.ManageEnvironments.Remove(cmd.Context(), id)
	},
	fields: []string{"name", "rpc"},
}

// NewEnvCmd creates the env command group
func NewEnvCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "env",
		Aliases: []string{"environment"},
		Short:   "Manage deployment environments",
		Long: `Manage the named RPC endpoints deployments run against. Environments are
stored in .osmium/environments.json and identified by name.`,
	}

	cmd.AddCommand(newEnvAddCmd())
	cmd.AddCommand(environmentResource.newEditCmd())
	cmd.AddCommand(environmentResource.newRemoveCmd())

	return cmd
}

func newEnvAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <name> <rpc-url>",
		Short: "Add an environment",
		Example: `  # Local anvil node
  osmium env add anvil http://127.0.0.1:8545

  # Websocket endpoint
  osmium env add sepolia wss://ethereum-sepolia-rpc.publicnode.com`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			env, err := app.ManageEnvironments.Add(cmd.Context(), usecase.AddEnvironmentParams{Name: args[0], RPCURL: args[1]})
			if err != nil {
				return err
			}

			if app.Config.JSON {
				return printJSON(cmd, env)
			}
			fmt.Fprintln(cmd.OutOrStdout(), render.FormatSuccess(fmt.Sprintf("Saved environment %s (%s)", env.Name, env.RPCURL)))
			return nil
		},
	}
}
