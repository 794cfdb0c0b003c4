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

var walletResource = resource{
	kind: domain.KindWallet,
	options: func(a *app.App) []interactive.Option {
		return lo.Map(a.Wallets.GetAll(), func(w models.Wallet, _ int) interactive.Option {
			return interactive.Option{ID: w.ID, Label: w.Name, Detail: w.Address}
		})
	},
	edit: func(cmd *cobra.Command, a *app.App, id, field string, value json.RawMessage) error {
		update, err := models.ParseWalletUpdate(field, value)
		if err != nil {
			return err
		}
		return a.ManageWallets.Edit(cmd.Context(), id, update)
	},
	remove: func(cmd *cobra.Command, a *app.App, id string) error {
		return a.ManageWallets.Remove(cmd.Context(), id)
	},
	fields: []string{"name", "privateKey"},
}

// NewWalletCmd creates the wallet command group
func NewWalletCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wallet",
		Short: "Manage signing wallets",
		Long: `Manage the wallets used to sign transactions and deployments. Wallets are
stored in .osmium/wallets.json and identified by the address derived from their key.`,
	}

	cmd.AddCommand(newWalletAddCmd())
	cmd.AddCommand(walletResource.newEditCmd())
	cmd.AddCommand(walletResource.newRemoveCmd())

	return cmd
}

func newWalletAddCmd() *cobra.Command {
	var key string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a wallet from a private key",
		Example: `  # Add the first anvil account
  osmium wallet add deployer --key 0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80

  # Prompt for the key
  osmium wallet add deployer`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			privateKey, err := promptValue(app, "Private key", key, true)
			if err != nil {
				return err
			}

			w, err := app.ManageWallets.Add(cmd.Context(), usecase.AddWalletParams{Name: args[0], PrivateKey: privateKey})
			if err != nil {
				return err
			}

			if app.Config.JSON {
				return printJSON(cmd, walletRecord{ID: w.ID, Name: w.Name, Address: w.Address})
			}
			fmt.Fprintln(cmd.OutOrStdout(), render.FormatSuccess(fmt.Sprintf("Saved wallet %s (%s)", w.Name, w.Address)))
			return nil
		},
	}

	cmd.Flags().StringVar(&key, "key", "", "Hex private key (prompted when omitted)")

	return cmd
}

// printJSON writes v as indented JSON
func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
