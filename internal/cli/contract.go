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

var contractResource = resource{
	kind: domain.KindInteractContract,
	options: func(a *app.App) []interactive.Option {
		return lo.Map(a.InteractContracts.GetAll(), func(c models.InteractContract, _ int) interactive.Option {
			return interactive.Option{ID: c.ID, Label: c.Name, Detail: c.Address}
		})
	},
	edit: func(cmd *cobra.Command, a *app.App, id, field string, value json.RawMessage) error {
		update, err := models.ParseInteractContractUpdate(field, value)
		if err != nil {
			return err
		}
		return a.ManageContracts.Edit(cmd.Context(), id, update)
	},
	remove: func(cmd *cobra.Command, a *app.App, id string) error {
		return a.ManageContracts.Remove(cmd.Context(), id)
	},
	fields: []string{"name", "address", "abi", "chainId", "rpc"},
}

// NewContractCmd creates the contract command group
func NewContractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contract",
		Short: "Manage interactable contracts",
		Long: `Manage already deployed contracts that can be read from and written to.
Contracts are stored in .osmium/contracts.json and identified by address.`,
	}

	cmd.AddCommand(newContractAddCmd())
	cmd.AddCommand(contractResource.newEditCmd())
	cmd.AddCommand(contractResource.newRemoveCmd())

	return cmd
}

func newContractAddCmd() *cobra.Command {
	var (
		address string
		abiArg  string
		chainID uint64
		rpcURL  string
	)

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a deployed contract",
		Example: `  # ABI from a forge artifact
  osmium contract add Counter --address 0x5FbDB2315678afecb367f032d93F642f64180aa3 \
    --abi out/Counter.sol/Counter.json --chain-id 31337 --rpc http://127.0.0.1:8545`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			addr, err := promptValue(app, "Address", address, false)
			if err != nil {
				return err
			}
			abiSource, err := promptValue(app, "ABI file", abiArg, false)
			if err != nil {
				return err
			}
			abi, err := readABI(abiSource)
			if err != nil {
				return err
			}
			rpc, err := promptValue(app, "RPC URL", rpcURL, false)
			if err != nil {
				return err
			}

			c, err := app.ManageContracts.Add(cmd.Context(), usecase.AddContractParams{
				Name:    args[0],
				Address: addr,
				ABI:     abi,
				ChainID: chainID,
				RPCURL:  rpc,
			})
			if err != nil {
				return err
			}

			if app.Config.JSON {
				return printJSON(cmd, c)
			}
			fmt.Fprintln(cmd.OutOrStdout(), render.FormatSuccess(fmt.Sprintf("Saved contract %s (%s)", c.Name, c.Address)))
			return nil
		},
	}

	cmd.Flags().StringVar(&address, "address", "", "Deployed address")
	cmd.Flags().StringVar(&abiArg, "abi", "", "ABI JSON, or a path to an ABI or forge artifact file")
	cmd.Flags().Uint64Var(&chainID, "chain-id", 0, "Chain id the contract is deployed on")
	cmd.Flags().StringVar(&rpcURL, "rpc", "", "RPC endpoint the contract is reached through")

	return cmd
}
