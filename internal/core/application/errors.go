package application

import (
	"errors"

	"github.com/tdex-network/btc-address-daemon/pkg/script"
	"github.com/tdex-network/btc-address-daemon/pkg/wallet"
)

var (
	// ErrNullSeed ...
	ErrNullSeed = errors.New("seed must not be empty")
	// ErrMalformedPublicKey is returned if a public key is not a hex encoded
	// compressed secp256k1 point
	ErrMalformedPublicKey = errors.New("public key must be a 33 byte compressed key in hex format")
)

var validationErrors = []error{
	ErrNullSeed,
	ErrMalformedPublicKey,
	wallet.ErrInvalidPrivateKey,
	wallet.ErrInvalidMnemonic,
	wallet.ErrEmptyN,
	wallet.ErrLargeN,
	wallet.ErrInvalidN,
	wallet.ErrInvalidM,
	wallet.ErrNumberOfKeysExceeds,
	script.ErrOutOfRange,
}

// IsValidationError returns whether err is caused by the input of a request,
// in which case retrying with the same input can't succeed.
func IsValidationError(err error) bool {
	for _, e := range validationErrors {
		if errors.Is(err, e) {
			return true
		}
	}
	return false
}
