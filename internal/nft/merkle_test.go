package nft

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

// buildTree constructs a sorted-pair Merkle tree over the leaves and
// returns the root plus the proof for each leaf index.
func buildTree(leaves []common.Hash) (common.Hash, [][]common.Hash) {
	proofs := make([][]common.Hash, len(leaves))
	level := make([]common.Hash, len(leaves))
	copy(level, leaves)
	index := make([]int, len(leaves))
	for i := range index {
		index[i] = i
	}

	for len(level) > 1 {
		if len(level)%2 == 1 {
			level = append(level, level[len(level)-1])
		}
		next := make([]common.Hash, 0, len(level)/2)
		for i := 0; i < len(level); i += 2 {
			parent := hashPair(level[i], level[i+1])
			for leaf, pos := range index {
				if pos == i {
					proofs[leaf] = append(proofs[leaf], level[i+1])
					index[leaf] = len(next)
				} else if pos == i+1 {
					proofs[leaf] = append(proofs[leaf], level[i])
					index[leaf] = len(next)
				}
			}
			next = append(next, parent)
		}
		level = next
	}
	return level[0], proofs
}

func TestVerifyProof(t *testing.T) {
	accounts := []common.Address{
		common.HexToAddress("0x01"),
		common.HexToAddress("0x02"),
		common.HexToAddress("0x03"),
		common.HexToAddress("0x04"),
	}
	leaves := make([]common.Hash, len(accounts))
	for i, a := range accounts {
		leaves[i] = Leaf(a)
	}
	root, proofs := buildTree(leaves)

	for i, a := range accounts {
		if !VerifyProof(root, Leaf(a), proofs[i]) {
			t.Fatalf("valid proof rejected for %s", a.Hex())
		}
	}

	outsider := common.HexToAddress("0x99")
	if VerifyProof(root, Leaf(outsider), proofs[0]) {
		t.Fatalf("proof accepted for non-member")
	}

	// Tampered proof must fail.
	bad := append([]common.Hash{}, proofs[1]...)
	bad[0] = Leaf(outsider)
	if VerifyProof(root, Leaf(accounts[1]), bad) {
		t.Fatalf("tampered proof accepted")
	}
}

func TestVerifyProofOddLeafCount(t *testing.T) {
	leaves := []common.Hash{
		Leaf(common.HexToAddress("0x0a")),
		Leaf(common.HexToAddress("0x0b")),
		Leaf(common.HexToAddress("0x0c")),
	}
	root, proofs := buildTree(leaves)
	for i := range leaves {
		if !VerifyProof(root, leaves[i], proofs[i]) {
			t.Fatalf("leaf %d rejected", i)
		}
	}
}
