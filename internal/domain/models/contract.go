package models

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/osmium-toolchains/osmium-cli/internal/domain"
)

// InteractContract is a deployed contract the user can read from and write to
type InteractContract struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Address string          `json:"address"`
	ABI     json.RawMessage `json:"abi"`
	ChainID uint64          `json:"chainId"`
	RPCURL  string          `json:"rpc"`
}

// ParsedABI parses the stored interface description
func (c *InteractContract) ParsedABI() (*abi.ABI, error) {
	return ParseABI(c.ABI)
}

// Validate checks the address, ABI and endpoint of the contract
func (c *InteractContract) Validate() error {
	if !common.IsHexAddress(c.Address) {
		return fmt.Errorf("%w: %q", domain.ErrInvalidAddress, c.Address)
	}
	if _, err := ParseABI(c.ABI); err != nil {
		return err
	}
	return domain.ValidateRPCURL(c.RPCURL)
}

// DeployContract is a compiled contract discovered in the artifact output directory
type DeployContract struct {
	ID   string          `json:"id"`
	Name string          `json:"name"`
	Path string          `json:"path"`
	ABI  json.RawMessage `json:"abi"`
}

// Target returns the "path:name" reference understood by forge
func (c *DeployContract) Target() string {
	return c.Path + ":" + c.Name
}

// ParseABI parses a contract interface given either as a JSON array or as a JSON string holding one
func ParseABI(raw json.RawMessage) (*abi.ABI, error) {
	normalized, err := NormalizeABI(raw)
	if err != nil {
		return nil, err
	}
	parsed, err := abi.JSON(strings.NewReader(string(normalized)))
	if err != nil {
		return nil, domain.ErrInvalidABI
	}
	return &parsed, nil
}

// NormalizeABI unwraps an ABI that was sent as a JSON string
func NormalizeABI(raw json.RawMessage) (json.RawMessage, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return nil, domain.ErrInvalidABI
	}
	if strings.HasPrefix(trimmed, `"`) {
		var inner string
		if err := json.Unmarshal(raw, &inner); err != nil {
			return nil, domain.ErrInvalidABI
		}
		trimmed = strings.TrimSpace(inner)
	}
	if !strings.HasPrefix(trimmed, "[") || !json.Valid([]byte(trimmed)) {
		return nil, domain.ErrInvalidABI
	}
	return json.RawMessage(trimmed), nil
}

// BytecodeObject represents bytecode information in a Foundry artifact
type BytecodeObject struct {
	Object string `json:"object"`
}

// Artifact represents a Foundry compilation artifact
type Artifact struct {
	ABI      json.RawMessage  `json:"abi"`
	Bytecode BytecodeObject   `json:"bytecode"`
	Metadata ArtifactMetadata `json:"metadata"`
}

// ArtifactMetadata represents the metadata section of a Foundry artifact
type ArtifactMetadata struct {
	Settings struct {
		CompilationTarget map[string]string `json:"compilationTarget"`
	} `json:"settings"`
}
