// Package uid generates short, case-insensitive, globally-unique identifiers
// for nodes, edges, and change batches.
package uid

import (
	"crypto/rand"
	"io"
	mathrand "math/rand"
	"strings"
)

// alphabet is the 36-symbol case-insensitive alphanumeric set. Lowercase is
// canonical; comparisons elsewhere should fold case if they ever accept
// externally-supplied uids.
const alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// Length is the number of symbols in a generated uid. 25 symbols over a
// 36-letter alphabet is log2(36^25) ≈ 129.2 bits of entropy.
const Length = 25

// New returns a fresh 25-character uid. It reads from crypto/rand when
// available and falls back to a seeded math/rand source if the system CSPRNG
// can't be reached (e.g. a sandboxed environment without /dev/urandom).
func New() string {
	buf := make([]byte, Length)
	if _, err := io.ReadFull(rand.Reader, buf); err != nil {
		return newInsecure()
	}
	return encode(buf)
}

// encode maps each random byte into the alphabet via modulo reduction. The
// small bias this introduces (256 isn't a multiple of 36) is immaterial at
// this entropy budget.
func encode(buf []byte) string {
	var sb strings.Builder
	sb.Grow(Length)
	for _, b := range buf {
		sb.WriteByte(alphabet[int(b)%len(alphabet)])
	}
	return sb.String()
}

// newInsecure falls back to math/rand when the CSPRNG is unavailable. Still
// unique enough for a single-process embedded store; just not
// cryptographically unpredictable.
func newInsecure() string {
	var sb strings.Builder
	sb.Grow(Length)
	for i := 0; i < Length; i++ {
		sb.WriteByte(alphabet[mathrand.Intn(len(alphabet))])
	}
	return sb.String()
}
