package wallet

import (
	"crypto/sha256"

	"github.com/btcsuite/btcd/btcutil/base58"
	"golang.org/x/crypto/ripemd160"
)

const checksumLen = 4

// encodeBase58Check encodes a payload that already carries its checksum.
func encodeBase58Check(payload []byte) string {
	return base58.Encode(payload)
}

// checksum returns the first 4 bytes of the double SHA-256 of payload.
func checksum(payload []byte) [checksumLen]byte {
	first := sha256.Sum256(payload)
	second := sha256.Sum256(first[:])

	var sum [checksumLen]byte
	copy(sum[:], second[:checksumLen])
	return sum
}

// hash160 returns RIPEMD-160(SHA-256(buf)).
func hash160(buf []byte) []byte {
	digest := sha256.Sum256(buf)
	hasher := ripemd160.New()
	hasher.Write(digest[:])
	return hasher.Sum(nil)
}
