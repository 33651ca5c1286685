package wallet

import (
	"errors"

	"github.com/btcsuite/btcd/chaincfg"
)

var (
	// ErrInvalidPrivateKey is returned if the private scalar derived from a
	// seed is zero or not lower than the secp256k1 curve order
	ErrInvalidPrivateKey = errors.New("derived private key is not a valid secp256k1 scalar")
	// ErrInvalidPublicKey ...
	ErrInvalidPublicKey = errors.New("public key must be a valid 33 byte compressed secp256k1 point")
	// ErrInvalidMnemonic ...
	ErrInvalidMnemonic = errors.New("seed is not a valid BIP-39 mnemonic")

	// ErrNumberOfKeysExceeds ...
	ErrNumberOfKeysExceeds = errors.New("Push Number Exceeds")
	// ErrInvalidM ...
	ErrInvalidM = errors.New("M should not be larger than N")
	// ErrEmptyN ...
	ErrEmptyN = errors.New("N should not be zero")
	// ErrLargeN ...
	ErrLargeN = errors.New("N is larger than the total number of public keys")
	// ErrInvalidN ...
	ErrInvalidN = errors.New("N is less than the total number of public keys")
)

// AddressType tags the format of an Address.
type AddressType int

const (
	// AddressTypeLegacy is a base58check pay-to-pubkey-hash address
	AddressTypeLegacy AddressType = iota
	// AddressTypeSegwit is a bech32 pay-to-witness-pubkey-hash (v0) address
	AddressTypeSegwit
	// AddressTypeMultisig is a base58check pay-to-script-hash address
	// committing to a m-of-n multisig redeem script
	AddressTypeMultisig
)

func (t AddressType) String() string {
	switch t {
	case AddressTypeLegacy:
		return "legacy"
	case AddressTypeSegwit:
		return "segwit"
	case AddressTypeMultisig:
		return "multisig"
	default:
		return "unknown"
	}
}

// Address is the result of every derivation. PublicKey is nil for multisig
// addresses.
type Address struct {
	Type      AddressType
	PublicKey *PublicKey
	Value     string
}

func (a *Address) String() string {
	return a.Value
}

func networkOrDefault(net *chaincfg.Params) *chaincfg.Params {
	if net == nil {
		return &chaincfg.MainNetParams
	}
	return net
}
