package router

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/osmium-toolchains/osmium-cli/internal/domain"
)

// flexString accepts a JSON string, number or null and keeps its text
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	switch {
	case trimmed == "null":
		*f = ""
	case strings.HasPrefix(trimmed, `"`):
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(strings.TrimSpace(s))
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("expected a string or number, got %s", trimmed)
		}
		*f = flexString(expandExponent(n.String()))
	}
	return nil
}

// maxNumberBits bounds the integers a JSON exponent literal is expanded to
const maxNumberBits = 256

// expandExponent rewrites an integral exponent literal such as 1e18 as plain
// digits. Fractional or oversized values are returned unchanged.
func expandExponent(text string) string {
	if !strings.ContainsAny(text, "eE") {
		return text
	}
	f, ok := new(big.Float).SetPrec(512).SetString(text)
	if !ok || !f.IsInt() || f.MantExp(nil) > maxNumberBits {
		return text
	}
	x, _ := f.Int(nil)
	return x.String()
}

// Uint parses the value as an unsigned integer; empty means zero
func (f flexString) Uint(field string) (uint64, error) {
	if f == "" {
		return 0, nil
	}
	n, err := strconv.ParseUint(string(f), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be a non-negative integer, got %q", domain.ErrInvalidPayload, field, string(f))
	}
	return n, nil
}

type idPayload struct {
	ID string `json:"id"`
}

type editPayload struct {
	ID    string          `json:"id"`
	Field string          `json:"field"`
	Value json.RawMessage `json:"value"`
}

type addContractPayload struct {
	Name    string          `json:"name"`
	Address string          `json:"address"`
	ABI     json.RawMessage `json:"abi"`
	ChainID flexString      `json:"chainId"`
	RPCURL  string          `json:"rpc"`
}

type writePayload struct {
	Wallet    string            `json:"wallet"`
	Contract  string            `json:"contract"`
	Function  string            `json:"function"`
	Inputs    []json.RawMessage `json:"inputs"`
	GasLimit  flexString        `json:"gasLimit"`
	Value     flexString        `json:"value"`
	ValueUnit domain.Unit       `json:"valueUnit"`
}

type readPayload struct {
	Contract string            `json:"contract"`
	Function string            `json:"function"`
	Inputs   []json.RawMessage `json:"inputs"`
}

type deployScriptPayload struct {
	Environment string `json:"environment"`
	Script      string `json:"script"`
	Verify      bool   `json:"verify"`
}

type deployContractPayload struct {
	Environment string            `json:"environment"`
	Contract    string            `json:"contract"`
	Wallet      string            `json:"wallet"`
	GasLimit    flexString        `json:"gasLimit"`
	Value       flexString        `json:"value"`
	ValueUnit   domain.Unit       `json:"valueUnit"`
	Inputs      []json.RawMessage `json:"inputs"`
	Verify      bool              `json:"verify"`
}

type estimateGasPayload struct {
	Address       string            `json:"address"`
	ABI           json.RawMessage   `json:"abi"`
	Function      string            `json:"function"`
	WalletAddress string            `json:"walletAddress"`
	Params        []json.RawMessage `json:"params"`
	Contract      string            `json:"contract"`
	RPCURL        string            `json:"rpc"`
}

type openPanelPayload struct {
	ID json.RawMessage `json:"id"`
}
