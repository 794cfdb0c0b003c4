package cli

import (
	"fmt"
	"strconv"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/osmium-toolchains/osmium-cli/internal/app"
	"github.com/osmium-toolchains/osmium-cli/internal/cli/render"
	"github.com/osmium-toolchains/osmium-cli/internal/domain/models"
)

// walletRecord is a wallet without its key, for output
type walletRecord struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
}

var listKinds = []string{"wallets", "environments", "contracts", "artifacts", "scripts"}

// NewListCmd creates the list command
func NewListCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:     "list <wallets|environments|contracts|artifacts|scripts>",
		Aliases: []string{"ls"},
		Short:   "List a project collection",
		Long: `List one of the project collections: stored wallets, environments and
interactable contracts, or the contracts and scripts discovered in the build
output and script directory. Wallet keys are never printed.`,
		Example: `  # List environments as a table
  osmium list environments

  # List deployable contracts as YAML
  osmium list artifacts --format yaml`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: listKinds,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			f, err := render.ParseFormat(format)
			if err != nil {
				return err
			}
			if app.Config.JSON {
				f = render.FormatJSON
			}

			listing, err := buildListing(cmd, app, args[0])
			if err != nil {
				return err
			}

			renderer := render.NewResourcesRenderer(cmd.OutOrStdout(), !app.Config.NonInteractive)
			return renderer.Render(listing, f)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "o", "table", "Output format (table, json, yaml)")

	return cmd
}

func buildListing(cmd *cobra.Command, app *app.App, kind string) (render.Listing, error) {
	ctx := cmd.Context()
	list := app.ListResources

	switch kind {
	case "wallets":
		wallets := list.Wallets(ctx)
		return render.Listing{
			Kind:    kind,
			Columns: []string{"id", "name", "address"},
			Rows: lo.Map(wallets, func(w models.Wallet, _ int) []string {
				return []string{w.ID, w.Name, w.Address}
			}),
			Records: lo.Map(wallets, func(w models.Wallet, _ int) walletRecord {
				return walletRecord{ID: w.ID, Name: w.Name, Address: w.Address}
			}),
		}, nil

	case "environments":
		envs := list.Environments(ctx)
		return render.Listing{
			Kind:    kind,
			Columns: []string{"id", "name", "rpc"},
			Rows: lo.Map(envs, func(e models.Environment, _ int) []string {
				return []string{e.ID, e.Name, e.RPCURL}
			}),
			Records: envs,
		}, nil

	case "contracts":
		contracts := list.InteractContracts(ctx)
		return render.Listing{
			Kind:    kind,
			Columns: []string{"id", "name", "address", "chain", "rpc", "functions"},
			Rows: lo.Map(contracts, func(c models.InteractContract, _ int) []string {
				return []string{c.ID, c.Name, c.Address, strconv.FormatUint(c.ChainID, 10), c.RPCURL, functionCount(c)}
			}),
			Records: contracts,
		}, nil

	case "artifacts":
		artifacts := list.DeployContracts(ctx)
		return render.Listing{
			Kind:    kind,
			Columns: []string{"id", "name", "path"},
			Rows: lo.Map(artifacts, func(c models.DeployContract, _ int) []string {
				return []string{c.ID, c.Name, c.Path}
			}),
			Records: artifacts,
		}, nil

	case "scripts":
		scripts := list.Scripts(ctx)
		return render.Listing{
			Kind:    kind,
			Columns: []string{"id", "name", "path"},
			Rows: lo.Map(scripts, func(s models.Script, _ int) []string {
				return []string{s.ID, s.Name, s.Path}
			}),
			Records: scripts,
		}, nil

	default:
		return render.Listing{}, fmt.Errorf("unknown collection: %s (valid: wallets, environments, contracts, artifacts, scripts)", kind)
	}
}

func functionCount(c models.InteractContract) string {
	parsed, err := models.ParseABI(c.ABI)
	if err != nil {
		return "?"
	}
	return strconv.Itoa(len(parsed.Methods))
}
