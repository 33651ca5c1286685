package wallet

import (
	"crypto/sha512"
	"encoding/hex"

	"github.com/btcsuite/btcd/btcec/v2"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/pbkdf2"
)

const (
	// PublicKeySize is the length of a compressed secp256k1 public key
	PublicKeySize = btcec.PubKeyBytesLenCompressed
	// DefaultSalt is the PBKDF2 salt used when none is given
	DefaultSalt = "mnemonic"

	seedIterations = 2048
	seedLen        = sha512.Size
	privateKeyLen  = 32
)

// PublicKey is a compressed secp256k1 public key.
type PublicKey [PublicKeySize]byte

// NewPublicKey parses the given bytes as a compressed secp256k1 point.
func NewPublicKey(key []byte) (PublicKey, error) {
	var pubkey PublicKey
	if len(key) != PublicKeySize {
		return pubkey, ErrInvalidPublicKey
	}
	if _, err := btcec.ParsePubKey(key); err != nil {
		return pubkey, ErrInvalidPublicKey
	}
	copy(pubkey[:], key)
	return pubkey, nil
}

// NewPublicKeyFromString parses a hex encoded compressed public key.
func NewPublicKeyFromString(key string) (PublicKey, error) {
	buf, err := hex.DecodeString(key)
	if err != nil {
		return PublicKey{}, ErrInvalidPublicKey
	}
	return NewPublicKey(buf)
}

// Bytes returns a copy of the serialized key.
func (p PublicKey) Bytes() []byte {
	buf := make([]byte, PublicKeySize)
	copy(buf, p[:])
	return buf
}

func (p PublicKey) String() string {
	return hex.EncodeToString(p[:])
}

// DeriveKeyPair stretches the seed phrase with PBKDF2-HMAC-SHA512 and
// returns the compressed public key of the resulting private scalar. The
// first 32 bytes of the stretched seed are the private scalar, the last 32
// bytes the chain code.
func DeriveKeyPair(seedPhrase, salt string) (PublicKey, error) {
	seed := pbkdf2.Key(
		[]byte(seedPhrase), []byte(salt), seedIterations, seedLen, sha512.New,
	)
	defer zero(seed)

	// seed[privateKeyLen:] is the chain code, not needed to derive addresses.
	key, err := publicKeyFromScalar(seed[:privateKeyLen])
	if err != nil {
		return PublicKey{}, err
	}
	log.Debugf("master public key: %s", key)

	return key, nil
}

// publicKeyFromScalar returns the compressed public key of the given 32 byte
// big endian private scalar, which must be in range [1, N-1].
func publicKeyFromScalar(privateKey []byte) (PublicKey, error) {
	if len(privateKey) != privateKeyLen {
		return PublicKey{}, ErrInvalidPrivateKey
	}

	var scalar btcec.ModNScalar
	overflow := scalar.SetByteSlice(privateKey)
	defer scalar.Zero()
	if overflow || scalar.IsZero() {
		return PublicKey{}, ErrInvalidPrivateKey
	}

	prvkey, pubkey := btcec.PrivKeyFromBytes(privateKey)
	defer prvkey.Zero()

	var key PublicKey
	copy(key[:], pubkey.SerializeCompressed())
	return key, nil
}

func zero(buf []byte) {
	for i := range buf {
		buf[i] = 0
	}
}
