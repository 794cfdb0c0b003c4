package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/osmium-toolchains/osmium-cli/internal/adapters/progress"
	"github.com/osmium-toolchains/osmium-cli/internal/app"
	"github.com/osmium-toolchains/osmium-cli/internal/cli/render"
	"github.com/osmium-toolchains/osmium-cli/internal/domain"
	"github.com/osmium-toolchains/osmium-cli/internal/router"
)

// cliChannel is the name the send command attaches under
const cliChannel = "cli"

// NewSendCmd creates the send command
func NewSendCmd() *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "send <TYPE> [data]",
		Short: "Send one protocol message and print the response",
		Long: `Dispatch a single message through the backend in this process, exactly as an
editor surface would, and print what it is answered with. Data is JSON; a bare
word is sent as a JSON string.`,
		Example: `  # List wallets
  osmium send GET_WALLETS

  # Estimate gas for a call
  osmium send ESTIMATE_GAS '{"contract":"<id>","function":"setNumber","params":["7"]}'

  # Run a deployment script
  osmium send DEPLOY_SCRIPT '{"environment":"<id>","script":"<id>"}'`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp(cmd)
			if err != nil {
				return err
			}

			env, err := buildEnvelope(args)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			spinner := progress.NewSpinner(cmd.ErrOrStderr(), !a.Config.NonInteractive && !a.Config.JSON)
			defer spinner.Stop()

			resp, ok, err := send(ctx, a, env, spinner.Start)
			if err != nil {
				return err
			}
			spinner.Stop()
			if !ok {
				if !a.Config.JSON {
					fmt.Fprintln(cmd.OutOrStdout(), render.FormatSuccess(fmt.Sprintf("%s accepted", env.Type)))
				}
				return nil
			}
			return render.NewEnvelopeRenderer(cmd.OutOrStdout(), a.Config.JSON).Render(resp)
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Give up waiting for the response after this long (0 waits indefinitely)")

	return cmd
}

// buildEnvelope turns the TYPE and optional data arguments into a request
func buildEnvelope(args []string) (domain.Envelope, error) {
	t := domain.MessageType(strings.ToUpper(args[0]))
	if len(args) == 1 {
		return domain.Envelope{Type: t}, nil
	}

	raw := strings.TrimSpace(args[1])
	if !json.Valid([]byte(raw)) {
		quoted, err := json.Marshal(raw)
		if err != nil {
			return domain.Envelope{}, err
		}
		raw = string(quoted)
	}
	return domain.Envelope{Type: t, Data: json.RawMessage(raw)}, nil
}

// send dispatches env from a temporary in-memory channel. It waits for the reply
// when the message type has one and otherwise returns once the message was handled,
// reporting ok=false. An ERROR sent back is returned as the response.
func send(ctx context.Context, a *app.App, env domain.Envelope, status func(string)) (domain.Envelope, bool, error) {
	ch := router.NewMemoryChannel(cliChannel, 256)
	a.Bus.Attach(ch)
	defer a.Bus.Detach(ch)

	status(fmt.Sprintf("Waiting for %s...", env.Type))
	a.Router.Dispatch(ctx, ch.Name(), env)

	reply, expects := a.Router.Reply(env.Type)
	if !expects {
		// mutations and forwards only answer on failure, synchronously
		for {
			select {
			case msg := <-ch.Messages():
				if msg.Type == domain.ErrorMessage {
					return msg, true, nil
				}
			default:
				return domain.Envelope{}, false, nil
			}
		}
	}

	resp, err := ch.WaitFor(ctx, reply, domain.ErrorMessage)
	if err != nil {
		return domain.Envelope{}, false, fmt.Errorf("no %s received: %w", reply, err)
	}
	return resp, true, nil
}
