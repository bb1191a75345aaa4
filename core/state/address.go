package state

import (
	"encoding/binary"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// DeriveAddress derives a deterministic address for a module instance from the
// creating address and a per-creator sequence number. Factories use this to
// give every launched instance a stable, collision-free identity.
func DeriveAddress(creator common.Address, nonce uint64) common.Address {
	var seq [8]byte
	binary.BigEndian.PutUint64(seq[:], nonce)
	hash := crypto.Keccak256(creator.Bytes(), seq[:])
	return common.BytesToAddress(hash[12:])
}

// DeriveAddressFromSeed derives a deterministic address from the creating
// address and an arbitrary seed string, e.g. a unique launch identifier.
func DeriveAddressFromSeed(creator common.Address, seed string) common.Address {
	hash := crypto.Keccak256(creator.Bytes(), []byte(seed))
	return common.BytesToAddress(hash[12:])
}
