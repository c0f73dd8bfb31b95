package anchor

import (
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// quoteHashLen is the number of hash bytes kept in a QuoteHash.
// 16 bytes is plenty for drift detection; this is not a security boundary.
const quoteHashLen = 16

// Hash fingerprints a quoted span of text. The result is a fixed-width
// lowercase hex string, stable across runs and platforms. The empty string
// hashes to a regular, non-empty fingerprint like any other input.
func Hash(text string) string {
	sum := blake3.Sum256([]byte(text))
	return hex.EncodeToString(sum[:quoteHashLen])
}
