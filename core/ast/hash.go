package ast

import (
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// Hash computes the BLAKE3 hash of the tree's Dump and returns it as a hex
// string. Equal hashes mean structurally identical trees, which is how
// conversion determinism is checked.
func Hash(n Node) string {
	sum := blake3.Sum256([]byte(Dump(n)))
	return hex.EncodeToString(sum[:])
}

// HashString computes the BLAKE3 hash of a string and returns it as a hex string.
func HashString(s string) string {
	sum := blake3.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
