package repository

import (
	"encoding/hex"

	"github.com/ethereum/go-ethereum/crypto"
)

// DerivedID returns a stable id for an entity discovered on disk: the first
// 16 bytes of keccak256("<path>:<name>"), hex encoded.
func DerivedID(path, name string) string {
	sum := crypto.Keccak256Hash([]byte(path + ":" + name))
	return hex.EncodeToString(sum[:16])
}
