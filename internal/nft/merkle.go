package nft

import (
	"bytes"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Leaf hashes an account into its allowlist leaf.
func Leaf(account common.Address) common.Hash {
	return crypto.Keccak256Hash(account.Bytes())
}

// VerifyProof walks a Merkle proof from leaf to root using sorted-pair
// hashing: each step hashes the lexicographically smaller node first, so
// proofs carry no left/right flags.
func VerifyProof(root, leaf common.Hash, proof []common.Hash) bool {
	node := leaf
	for _, sibling := range proof {
		node = hashPair(node, sibling)
	}
	return node == root
}

func hashPair(a, b common.Hash) common.Hash {
	if bytes.Compare(a.Bytes(), b.Bytes()) > 0 {
		a, b = b, a
	}
	return crypto.Keccak256Hash(a.Bytes(), b.Bytes())
}
