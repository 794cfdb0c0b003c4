package render

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osmium-toolchains/osmium-cli/internal/domain"
)

func init() {
	color.NoColor = true
}

type environmentRecord struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	RPCURL string `json:"rpc"`
}

func environmentsListing() Listing {
	records := []environmentRecord{
		{ID: "a1", Name: "anvil", RPCURL: "http://127.0.0.1:8545"},
		{ID: "b2", Name: "sepolia", RPCURL: "https://rpc.sepolia.org"},
	}
	l := Listing{Kind: "environments", Columns: []string{"id", "name", "rpc"}, Records: records}
	for _, r := range records {
		l.Rows = append(l.Rows, []string{r.ID, r.Name, r.RPCURL})
	}
	return l
}

func TestParseFormat(t *testing.T) {
	for _, s := range []string{"table", "JSON", "yaml"} {
		_, err := ParseFormat(s)
		assert.NoError(t, err, s)
	}
	_, err := ParseFormat("csv")
	assert.Error(t, err)
}

func TestResourcesRenderer(t *testing.T) {
	t.Run("table", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewResourcesRenderer(&buf, false).Render(environmentsListing(), FormatTable))
		out := buf.String()
		assert.Contains(t, out, "Environments (2)")
		assert.Contains(t, out, "NAME")
		assert.Contains(t, out, "sepolia")
		assert.Contains(t, out, "https://rpc.sepolia.org")
	})

	t.Run("empty table", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewResourcesRenderer(&buf, false).Render(Listing{Kind: "wallets", Records: []any{}}, FormatTable))
		assert.Equal(t, "No wallets found\n", buf.String())
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewResourcesRenderer(&buf, false).Render(environmentsListing(), FormatJSON))
		var decoded []environmentRecord
		require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
		assert.Equal(t, environmentsListing().Records, decoded)
	})

	t.Run("yaml keeps wire names in order", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewResourcesRenderer(&buf, false).Render(environmentsListing(), FormatYAML))
		assert.Equal(t, `- id: a1
  name: anvil
  rpc: http://127.0.0.1:8545
- id: b2
  name: sepolia
  rpc: https://rpc.sepolia.org
`, buf.String())
	})

	t.Run("yaml quotes strings that would change type", func(t *testing.T) {
		out, err := toYAML(map[string]string{"chainId": "31337"})
		require.NoError(t, err)
		assert.Equal(t, "chainId: \"31337\"\n", string(out))
	})
}

func TestEnvelopeRenderer(t *testing.T) {
	t.Run("pretty data", func(t *testing.T) {
		var buf bytes.Buffer
		env, err := domain.NewEnvelope(domain.EstimateGasResponse, map[string]string{"gas": "25200"})
		require.NoError(t, err)

		require.NoError(t, NewEnvelopeRenderer(&buf, false).Render(env))
		assert.Equal(t, "ESTIMATE_GAS_RESPONSE\n{\n  \"gas\": \"25200\"\n}\n", buf.String())
	})

	t.Run("json line", func(t *testing.T) {
		var buf bytes.Buffer
		env, err := domain.NewEnvelope(domain.ReadResponse, "42")
		require.NoError(t, err)

		require.NoError(t, NewEnvelopeRenderer(&buf, true).Render(env))
		assert.JSONEq(t, `{"type":"READ_RESPONSE","data":"42"}`, buf.String())
	})

	t.Run("failed command", func(t *testing.T) {
		var buf bytes.Buffer
		env, err := domain.NewEnvelope(domain.DeployScriptResponse, domain.ErrorPayload{Error: "environment nope not found", Code: domain.CodeNotFound})
		require.NoError(t, err)

		err = NewEnvelopeRenderer(&buf, false).Render(env)
		require.Error(t, err)
		assert.Equal(t, "environment nope not found (NOT_FOUND)", err.Error())
	})

	t.Run("deploy result is not an error", func(t *testing.T) {
		var buf bytes.Buffer
		env, err := domain.NewEnvelope(domain.DeployScriptResponse, map[string]any{"exitCode": 1, "output": "boom"})
		require.NoError(t, err)
		assert.NoError(t, NewEnvelopeRenderer(&buf, false).Render(env))
	})
}
