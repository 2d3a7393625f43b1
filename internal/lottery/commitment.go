package lottery

import (
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/holiman/uint256"
	"golang.org/x/crypto/sha3"
)

// SecretSize is the byte length of a commitment.
const SecretSize = 32

// Commitment binds number to addr: keccak256(uint256be(number) || addr).
func Commitment(number *uint256.Int, addr string) []byte {
	if number == nil {
		number = new(uint256.Int)
	}
	word := number.Bytes32()
	h := sha3.NewLegacyKeccak256()
	h.Write(word[:])
	h.Write([]byte(addr))
	return h.Sum(nil)
}

// VerifyCommitment reports whether number and addr open secret.
func VerifyCommitment(secret []byte, number *uint256.Int, addr string) bool {
	if len(secret) != SecretSize {
		return false
	}
	return subtle.ConstantTimeCompare(secret, Commitment(number, addr)) == 1
}

// ParseSecretHex decodes a 0x-prefixed or bare hex commitment.
func ParseSecretHex(s string) ([]byte, error) {
	ss := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "0x")
	if len(ss) != 2*SecretSize {
		return nil, fmt.Errorf("secret: want %d hex chars, got %d", 2*SecretSize, len(ss))
	}
	b, err := hex.DecodeString(ss)
	if err != nil {
		return nil, fmt.Errorf("secret: %w", err)
	}
	return b, nil
}

func SecretHex(b []byte) string {
	return "0x" + hex.EncodeToString(b)
}
