package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/osmium-toolchains/osmium-cli/internal/adapters/interactive"
	"github.com/osmium-toolchains/osmium-cli/internal/app"
	"github.com/osmium-toolchains/osmium-cli/internal/cli/render"
	"github.com/osmium-toolchains/osmium-cli/internal/domain"
)

// resource adapts one stored collection to the shared add/edit/rm commands
type resource struct {
	kind    domain.EntityKind
	options func(a *app.App) []interactive.Option
	edit    func(cmd *cobra.Command, a *app.App, id, field string, value json.RawMessage) error
	remove  func(cmd *cobra.Command, a *app.App, id string) error
	fields  []string
}

// pickOne resolves the entity named by args, or asks for one when args is empty
func (r resource) pickOne(a *app.App, args []string) (interactive.Option, error) {
	options := r.options(a)
	if len(args) > 0 {
		return interactive.Resolve(r.kind, args[0], options)
	}
	if len(options) == 0 {
		return interactive.Option{}, fmt.Errorf("no %ss stored", r.kind)
	}
	return a.Selector.SelectOne(fmt.Sprintf("Select %s", r.kind), options)
}

// pickMany resolves every entity named by args, or offers a multi-select when args is empty
func (r resource) pickMany(a *app.App, args []string) ([]interactive.Option, error) {
	options := r.options(a)
	if len(args) == 0 {
		if len(options) == 0 {
			return nil, fmt.Errorf("no %ss stored", r.kind)
		}
		return a.Selector.SelectMany(fmt.Sprintf("Select %ss to remove", r.kind), options)
	}

	picked := make([]interactive.Option, 0, len(args))
	for _, arg := range args {
		o, err := interactive.Resolve(r.kind, arg, options)
		if err != nil {
			return nil, err
		}
		picked = append(picked, o)
	}
	return lo.UniqBy(picked, func(o interactive.Option) string { return o.ID }), nil
}

func (r resource) newEditCmd() *cobra.Command {
	return &cobra.Command{
		Use:   fmt.Sprintf("edit [%s] <field> <value>", r.kind),
		Short: fmt.Sprintf("Change one field of a %s", r.kind),
		Long: fmt.Sprintf(`Change one field of a %s. The %s is matched by id, then by name,
then by a unique fuzzy match on the name; without it a list is shown to pick from.

Fields: %s`, r.kind, r.kind, strings.Join(r.fields, ", ")),
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp(cmd)
			if err != nil {
				return err
			}
			query, field, raw := args[:len(args)-2], args[len(args)-2], args[len(args)-1]

			target, err := r.pickOne(a, query)
			if err != nil {
				return err
			}
			value, err := fieldValue(field, raw)
			if err != nil {
				return err
			}
			if err := r.edit(cmd, a, target.ID, field, value); err != nil {
				return err
			}
			if !a.Config.JSON {
				fmt.Fprintln(cmd.OutOrStdout(), render.FormatSuccess(fmt.Sprintf("Updated %s of %s %s", field, r.kind, target.Label)))
			}
			return nil
		},
	}
}

func (r resource) newRemoveCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     fmt.Sprintf("rm [%s...]", r.kind),
		Aliases: []string{"remove"},
		Short:   fmt.Sprintf("Remove %ss", r.kind),
		Long: fmt.Sprintf(`Remove one or more %ss. Without arguments a list is shown to pick from.
Removing a %s that does not exist is not an error.`, r.kind, r.kind),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp(cmd)
			if err != nil {
				return err
			}
			targets, err := r.pickMany(a, args)
			if err != nil {
				return err
			}
			if len(targets) == 0 {
				return nil
			}

			if !yes {
				labels := lo.Map(targets, func(o interactive.Option, _ int) string { return o.Label })
				ok, err := a.Selector.Confirm(fmt.Sprintf("Remove %s", strings.Join(labels, ", ")))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), render.FormatWarning("Nothing removed"))
					return nil
				}
			}

			for _, target := range targets {
				if err := r.remove(cmd, a, target.ID); err != nil {
					return err
				}
				if !a.Config.JSON {
					fmt.Fprintln(cmd.OutOrStdout(), render.FormatSuccess(fmt.Sprintf("Removed %s %s", r.kind, target.Label)))
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")

	return cmd
}

// fieldValue encodes a command line value the way a surface would send it.
// ABIs may be given inline or as a path to a JSON file.
func fieldValue(field, value string) (json.RawMessage, error) {
	if field == "abi" {
		return readABI(value)
	}
	return json.Marshal(value)
}

// readABI loads an ABI from a file path, or takes value as inline JSON.
// Forge artifacts are accepted and their abi member is used.
func readABI(value string) (json.RawMessage, error) {
	data := []byte(strings.TrimSpace(value))
	if len(data) == 0 || (data[0] != '[' && data[0] != '{') {
		var err error
		if data, err = os.ReadFile(value); err != nil {
			return nil, fmt.Errorf("failed to read ABI: %w", err)
		}
	}

	var artifact struct {
		ABI json.RawMessage `json:"abi"`
	}
	if trimmed := strings.TrimSpace(string(data)); strings.HasPrefix(trimmed, "{") {
		if err := json.Unmarshal(data, &artifact); err == nil && len(artifact.ABI) > 0 {
			return artifact.ABI, nil
		}
	}
	return json.RawMessage(data), nil
}

// promptValue returns flagValue, or asks for it when it is empty and prompting is allowed
func promptValue(a *app.App, label, flagValue string, secret bool) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if a.Config.NonInteractive {
		return "", fmt.Errorf("%s is required in non-interactive mode", strings.ToLower(label))
	}
	prompt := promptui.Prompt{Label: label}
	if secret {
		prompt.Mask = '*'
	}
	return prompt.Run()
}
