package wallet

import (
	"github.com/btcsuite/btcd/chaincfg"
	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/btc-address-daemon/pkg/bech32"
)

const witnessVersion = 0

// NewLegacyAddress returns the base58check encoding of
// version || HASH160(payload) || checksum. The payload is either a public key
// (pay-to-pubkey-hash) or a redeem script (pay-to-script-hash).
func NewLegacyAddress(version byte, payload []byte) string {
	digest := hash160(payload)
	log.Debugf("hash160 of payload: %x", digest)

	versioned := make([]byte, 0, 1+len(digest)+checksumLen)
	versioned = append(versioned, version)
	versioned = append(versioned, digest...)

	sum := checksum(versioned)
	log.Debugf("checksum of versioned hash: %x", sum)

	return encodeBase58Check(append(versioned, sum[:]...))
}

// NewSegwitAddress returns the bech32 encoded version 0 witness program of
// the public key hash.
func NewSegwitAddress(hrp string, pubkey PublicKey) string {
	digest := hash160(pubkey[:])
	log.Debugf("hash160 of public key: %x", digest)

	// 160 bits are exactly 32 groups of 5 bits, 8->5 regrouping can't fail.
	groups, _ := bech32.ConvertBits(digest, 8, 5, true)

	program := make([]byte, 0, 1+len(groups))
	program = append(program, witnessVersion)
	program = append(program, groups...)
	log.Debugf("witness program: %x", program)

	// All program values are < 32 by construction.
	address, _ := bech32.Encode(hrp, program)
	return address
}

// FromSeedOpts is the struct given to the NewSegwitAddressFromSeed and
// NewLegacyAddressFromSeed methods
type FromSeedOpts struct {
	Seed string
	// Salt defaults to DefaultSalt.
	Salt string
	// Network defaults to mainnet.
	Network *chaincfg.Params
	// StrictMnemonic rejects seeds that are not valid BIP-39 mnemonics.
	StrictMnemonic bool
}

func (o FromSeedOpts) validate() error {
	if o.StrictMnemonic && !IsMnemonicValid(o.Seed) {
		return ErrInvalidMnemonic
	}
	return nil
}

func (o FromSeedOpts) salt() string {
	if o.Salt == "" {
		return DefaultSalt
	}
	return o.Salt
}

// NewSegwitAddressFromSeed derives the master public key of the seed and
// returns its segwit address.
func NewSegwitAddressFromSeed(opts FromSeedOpts) (*Address, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	pubkey, err := DeriveKeyPair(opts.Seed, opts.salt())
	if err != nil {
		return nil, err
	}

	return NewSegwitAddressFromPublicKey(FromPublicKeyOpts{
		PublicKey: pubkey,
		Network:   opts.Network,
	}), nil
}

// NewLegacyAddressFromSeed derives the master public key of the seed and
// returns its pay-to-pubkey-hash address.
func NewLegacyAddressFromSeed(opts FromSeedOpts) (*Address, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	pubkey, err := DeriveKeyPair(opts.Seed, opts.salt())
	if err != nil {
		return nil, err
	}

	net := networkOrDefault(opts.Network)
	return &Address{
		Type:      AddressTypeLegacy,
		PublicKey: &pubkey,
		Value:     NewLegacyAddress(net.PubKeyHashAddrID, pubkey[:]),
	}, nil
}

// FromPublicKeyOpts is the struct given to the NewSegwitAddressFromPublicKey
// method
type FromPublicKeyOpts struct {
	PublicKey PublicKey
	// Network defaults to mainnet.
	Network *chaincfg.Params
}

// NewSegwitAddressFromPublicKey returns the segwit address of the given key.
func NewSegwitAddressFromPublicKey(opts FromPublicKeyOpts) *Address {
	net := networkOrDefault(opts.Network)
	pubkey := opts.PublicKey

	return &Address{
		Type:      AddressTypeSegwit,
		PublicKey: &pubkey,
		Value:     NewSegwitAddress(net.Bech32HRPSegwit, pubkey),
	}
}

// DeriveSegwitAddress returns the mainnet segwit address of the seed phrase.
func DeriveSegwitAddress(seedPhrase string) (*Address, error) {
	return NewSegwitAddressFromSeed(FromSeedOpts{Seed: seedPhrase})
}

// DeriveLegacyAddress returns the mainnet pay-to-pubkey-hash address of the
// seed phrase.
func DeriveLegacyAddress(seedPhrase string) (*Address, error) {
	return NewLegacyAddressFromSeed(FromSeedOpts{Seed: seedPhrase})
}

// DeriveSegwitAddressFromPublicKey returns the mainnet segwit address of the
// public key.
func DeriveSegwitAddressFromPublicKey(pubkey PublicKey) *Address {
	return NewSegwitAddressFromPublicKey(FromPublicKeyOpts{PublicKey: pubkey})
}
