package wallet

import (
	"github.com/btcsuite/btcd/chaincfg"
	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/btc-address-daemon/pkg/script"
)

// MultisigOpts is the struct given to the NewMultisigAddress method
type MultisigOpts struct {
	// M is the number of signatures required to spend
	M uint8
	// N must match the number of public keys
	N          uint8
	PublicKeys []PublicKey
	// Network defaults to mainnet.
	Network *chaincfg.Params
}

// validate checks, in order, N against the key list, M against N and the
// size of the key list. The order is relevant because every error assumes
// the previous checks passed.
func (o MultisigOpts) validate() error {
	if err := o.isValidN(); err != nil {
		return err
	}
	if err := o.isValidM(); err != nil {
		return err
	}
	return o.isValidKeyCount()
}

func (o MultisigOpts) isValidN() error {
	numOfKeys := len(o.PublicKeys)
	switch {
	case o.N == 0:
		return ErrEmptyN
	case int(o.N) > numOfKeys:
		return ErrLargeN
	case int(o.N) < numOfKeys:
		return ErrInvalidN
	default:
		return nil
	}
}

func (o MultisigOpts) isValidM() error {
	if o.M > o.N {
		return ErrInvalidM
	}
	return nil
}

func (o MultisigOpts) isValidKeyCount() error {
	if len(o.PublicKeys) > script.MaxPushNum {
		return ErrNumberOfKeysExceeds
	}
	return nil
}

// NewMultisigAddress returns the pay-to-script-hash address of the M-of-N
// multisig redeem script of the given public keys.
func NewMultisigAddress(opts MultisigOpts) (*Address, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	keys := make([][]byte, 0, len(opts.PublicKeys))
	for i := range opts.PublicKeys {
		keys = append(keys, opts.PublicKeys[i][:])
	}

	redeemScript, err := script.MultisigRedeemScript(opts.M, keys)
	if err != nil {
		return nil, err
	}
	log.Debugf("redeem script: %x", redeemScript)

	net := networkOrDefault(opts.Network)
	return &Address{
		Type:  AddressTypeMultisig,
		Value: NewLegacyAddress(net.ScriptHashAddrID, redeemScript),
	}, nil
}

// DeriveMultisigAddress returns the mainnet m-of-n pay-to-script-hash address
// of the public keys.
func DeriveMultisigAddress(m, n uint8, pubkeys []PublicKey) (*Address, error) {
	return NewMultisigAddress(MultisigOpts{
		M:          m,
		N:          n,
		PublicKeys: pubkeys,
	})
}
