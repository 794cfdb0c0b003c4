package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/osmium-toolchains/osmium-cli/internal/domain"
)

// EnvelopeRenderer prints a backend response
type EnvelopeRenderer struct {
	out  io.Writer
	json bool
}

// NewEnvelopeRenderer creates a renderer; in JSON mode the whole envelope is written on one line
func NewEnvelopeRenderer(out io.Writer, jsonOutput bool) *EnvelopeRenderer {
	return &EnvelopeRenderer{out: out, json: jsonOutput}
}

// Render writes env. Failed responses are reported by the returned error.
func (r *EnvelopeRenderer) Render(env domain.Envelope) error {
	if r.json {
		data, err := json.Marshal(env)
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Fprintln(r.out, string(data))
		return responseError(env)
	}

	fmt.Fprintln(r.out, color.New(color.Bold).Sprint(env.Type))
	if len(env.Data) > 0 {
		var pretty bytes.Buffer
		if err := json.Indent(&pretty, env.Data, "", "  "); err != nil {
			pretty.Reset()
			pretty.Write(env.Data)
		}
		fmt.Fprintln(r.out, pretty.String())
	}
	return responseError(env)
}

// responseError reports ERROR messages and command responses carrying {error, code}
func responseError(env domain.Envelope) error {
	var payload domain.ErrorPayload
	if len(env.Data) == 0 || env.Data[0] != '{' {
		return nil
	}
	if err := json.Unmarshal(env.Data, &payload); err != nil || payload.Error == "" {
		return nil
	}
	return fmt.Errorf("%s (%s)", payload.Error, payload.Code)
}
