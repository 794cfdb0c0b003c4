package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/osmium-toolchains/osmium-cli/internal/domain"
)

// WalletUpdate patches exactly one field of a Wallet
type WalletUpdate interface {
	Apply(w *Wallet) error
	walletUpdate()
}

// EnvironmentUpdate patches exactly one field of an Environment
type EnvironmentUpdate interface {
	Apply(e *Environment) error
	environmentUpdate()
}

// InteractContractUpdate patches exactly one field of an InteractContract
type InteractContractUpdate interface {
	Apply(c *InteractContract) error
	interactContractUpdate()
}

type SetWalletName struct{ Name string }

func (u SetWalletName) Apply(w *Wallet) error {
	w.Name = u.Name
	return nil
}

// SetWalletPrivateKey replaces the key and re-derives the address
type SetWalletPrivateKey struct{ PrivateKey string }

func (u SetWalletPrivateKey) Apply(w *Wallet) error {
	addr, err := DeriveAddress(u.PrivateKey)
	if err != nil {
		return err
	}
	w.PrivateKey = u.PrivateKey
	w.Address = addr
	return nil
}

type SetEnvironmentName struct{ Name string }

func (u SetEnvironmentName) Apply(e *Environment) error {
	e.Name = u.Name
	return nil
}

type SetEnvironmentRPC struct{ RPCURL string }

func (u SetEnvironmentRPC) Apply(e *Environment) error {
	if err := domain.ValidateRPCURL(u.RPCURL); err != nil {
		return err
	}
	e.RPCURL = u.RPCURL
	return nil
}

type SetContractName struct{ Name string }

func (u SetContractName) Apply(c *InteractContract) error {
	c.Name = u.Name
	return nil
}

type SetContractAddress struct{ Address string }

func (u SetContractAddress) Apply(c *InteractContract) error {
	if !common.IsHexAddress(u.Address) {
		return fmt.Errorf("%w: %q", domain.ErrInvalidAddress, u.Address)
	}
	c.Address = u.Address
	return nil
}

type SetContractABI struct{ ABI json.RawMessage }

func (u SetContractABI) Apply(c *InteractContract) error {
	normalized, err := NormalizeABI(u.ABI)
	if err != nil {
		return err
	}
	if _, err := ParseABI(normalized); err != nil {
		return err
	}
	c.ABI = normalized
	return nil
}

type SetContractChainID struct{ ChainID uint64 }

func (u SetContractChainID) Apply(c *InteractContract) error {
	c.ChainID = u.ChainID
	return nil
}

type SetContractRPC struct{ RPCURL string }

func (u SetContractRPC) Apply(c *InteractContract) error {
	if err := domain.ValidateRPCURL(u.RPCURL); err != nil {
		return err
	}
	c.RPCURL = u.RPCURL
	return nil
}

func (SetWalletName) walletUpdate() {}
func (SetWalletPrivateKey) walletUpdate() {}
func (SetEnvironmentName) environmentUpdate() {}
func (SetEnvironmentRPC) environmentUpdate() {}
func (SetContractName) interactContractUpdate() {}
func (SetContractAddress) interactContractUpdate() {}
func (SetContractABI) interactContractUpdate() {}
func (SetContractChainID) interactContractUpdate() {}
func (SetContractRPC) interactContractUpdate() {}

// ParseWalletUpdate builds the update for a named wallet field
func ParseWalletUpdate(field string, value json.RawMessage) (WalletUpdate, error) {
	s, err := stringValue(value)
	if err != nil {
		return nil, err
	}
	switch field {
	case "name":
		return SetWalletName{Name: s}, nil
	case "privateKey":
		return SetWalletPrivateKey{PrivateKey: s}, nil
	default:
		return nil, fmt.Errorf("%w: wallet field %q", domain.ErrInvalidUpdate, field)
	}
}

// ParseEnvironmentUpdate builds the update for a named environment field
func ParseEnvironmentUpdate(field string, value json.RawMessage) (EnvironmentUpdate, error) {
	s, err := stringValue(value)
	if err != nil {
		return nil, err
	}
	switch field {
	case "name":
		return SetEnvironmentName{Name: s}, nil
	case "rpc", "rpcUrl":
		return SetEnvironmentRPC{RPCURL: s}, nil
	default:
		return nil, fmt.Errorf("%w: environment field %q", domain.ErrInvalidUpdate, field)
	}
}

// ParseInteractContractUpdate builds the update for a named contract field
func ParseInteractContractUpdate(field string, value json.RawMessage) (InteractContractUpdate, error) {
	if field == "abi" {
		return SetContractABI{ABI: value}, nil
	}
	s, err := stringValue(value)
	if err != nil {
		return nil, err
	}
	switch field {
	case "name":
		return SetContractName{Name: s}, nil
	case "address":
		return SetContractAddress{Address: s}, nil
	case "chainId":
		id, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: chainId %q", domain.ErrInvalidUpdate, s)
		}
		return SetContractChainID{ChainID: id}, nil
	case "rpc", "rpcUrl":
		return SetContractRPC{RPCURL: s}, nil
	default:
		return nil, fmt.Errorf("%w: contract field %q", domain.ErrInvalidUpdate, field)
	}
}

// stringValue accepts a JSON string or number and returns its text
func stringValue(raw json.RawMessage) (string, error) {
	trimmed := strings.TrimSpace(string(raw))
	if strings.HasPrefix(trimmed, `"`) {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", fmt.Errorf("%w: %v", domain.ErrInvalidUpdate, err)
		}
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("%w: value must be a string or number", domain.ErrInvalidUpdate)
	}
	return n.String(), nil
}
