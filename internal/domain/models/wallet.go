package models

import (
	"crypto/ecdsa"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/osmium-toolchains/osmium-cli/internal/domain"
)

// Wallet is a named signing key
type Wallet struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Address    string `json:"address"`
	PrivateKey string `json:"privateKey"` //nolint:gosec // persisted in the project-local state file
}

// Key parses the wallet's private key
func (w *Wallet) Key() (*ecdsa.PrivateKey, error) {
	return ParsePrivateKey(w.PrivateKey)
}

// Derive recomputes Address from PrivateKey
func (w *Wallet) Derive() error {
	addr, err := DeriveAddress(w.PrivateKey)
	if err != nil {
		return err
	}
	w.Address = addr
	return nil
}

// ParsePrivateKey parses a hex private key, with or without 0x prefix
func ParsePrivateKey(hexKey string) (*ecdsa.PrivateKey, error) {
	key, err := crypto.HexToECDSA(stripHexPrefix(strings.TrimSpace(hexKey)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidPrivateKey, err)
	}
	return key, nil
}

// DeriveAddress returns the checksummed address controlled by hexKey
func DeriveAddress(hexKey string) (string, error) {
	key, err := ParsePrivateKey(hexKey)
	if err != nil {
		return "", err
	}
	return crypto.PubkeyToAddress(key.PublicKey).Hex(), nil
}

func stripHexPrefix(s string) string {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:]
	}
	return s
}
