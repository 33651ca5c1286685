package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/btcsuite/btcd/chaincfg"
	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/btc-address-daemon/pkg/stats"
	"github.com/tdex-network/btc-address-daemon/pkg/wallet"
)

// AddressService derives addresses from seeds or public keys. Inputs are
// received in their user facing format and validated before reaching the
// wallet package.
type AddressService interface {
	DeriveSegwitAddress(ctx context.Context, seed string) (*wallet.Address, error)
	DeriveLegacyAddress(ctx context.Context, seed string) (*wallet.Address, error)
	DeriveSegwitAddressFromPublicKey(
		ctx context.Context, pubkey string,
	) (*wallet.Address, error)
	DeriveMultisigAddress(
		ctx context.Context, req MultisigRequest,
	) (*wallet.Address, error)
}

// MultisigRequest holds the threshold, the declared number of keys and the
// hex encoded public keys of a multisig address.
type MultisigRequest struct {
	M          uint8
	N          uint8
	PublicKeys []string
}

// AddressServiceOpts is the struct given to NewAddressService
type AddressServiceOpts struct {
	Network        *chaincfg.Params
	Salt           string
	StrictMnemonic bool
}

func (o AddressServiceOpts) network() *chaincfg.Params {
	if o.Network == nil {
		return &chaincfg.MainNetParams
	}
	return o.Network
}

type addressService struct {
	network        *chaincfg.Params
	salt           string
	strictMnemonic bool
}

func NewAddressService(opts AddressServiceOpts) AddressService {
	salt := opts.Salt
	if salt == "" {
		salt = wallet.DefaultSalt
	}

	return &addressService{
		network:        opts.network(),
		salt:           salt,
		strictMnemonic: opts.StrictMnemonic,
	}
}

func (a *addressService) DeriveSegwitAddress(
	ctx context.Context, seed string,
) (addr *wallet.Address, err error) {
	defer observe(wallet.AddressTypeSegwit, time.Now(), &err)

	if err = a.validateSeed(ctx, seed); err != nil {
		return nil, err
	}

	addr, err = wallet.NewSegwitAddressFromSeed(a.seedOpts(seed))
	if err != nil {
		return nil, err
	}

	log.Debugf("derived segwit address %s from seed", addr)
	return addr, nil
}

func (a *addressService) DeriveLegacyAddress(
	ctx context.Context, seed string,
) (addr *wallet.Address, err error) {
	defer observe(wallet.AddressTypeLegacy, time.Now(), &err)

	if err = a.validateSeed(ctx, seed); err != nil {
		return nil, err
	}

	addr, err = wallet.NewLegacyAddressFromSeed(a.seedOpts(seed))
	if err != nil {
		return nil, err
	}

	log.Debugf("derived legacy address %s from seed", addr)
	return addr, nil
}

func (a *addressService) DeriveSegwitAddressFromPublicKey(
	ctx context.Context, pubkey string,
) (addr *wallet.Address, err error) {
	defer observe(wallet.AddressTypeSegwit, time.Now(), &err)

	if err = ctx.Err(); err != nil {
		return nil, err
	}

	key, err := parsePublicKey(pubkey)
	if err != nil {
		return nil, err
	}

	addr = wallet.NewSegwitAddressFromPublicKey(wallet.FromPublicKeyOpts{
		PublicKey: key,
		Network:   a.network,
	})

	log.Debugf("derived segwit address %s from public key %s", addr, key)
	return addr, nil
}

func (a *addressService) DeriveMultisigAddress(
	ctx context.Context, req MultisigRequest,
) (addr *wallet.Address, err error) {
	defer observe(wallet.AddressTypeMultisig, time.Now(), &err)

	if err = ctx.Err(); err != nil {
		return nil, err
	}

	pubkeys := make([]wallet.PublicKey, 0, len(req.PublicKeys))
	for i, k := range req.PublicKeys {
		key, err := parsePublicKey(k)
		if err != nil {
			return nil, fmt.Errorf("key %d: %w", i, err)
		}
		pubkeys = append(pubkeys, key)
	}

	addr, err = wallet.NewMultisigAddress(wallet.MultisigOpts{
		M:          req.M,
		N:          req.N,
		PublicKeys: pubkeys,
		Network:    a.network,
	})
	if err != nil {
		return nil, err
	}

	log.Debugf("derived %d-of-%d multisig address %s", req.M, req.N, addr)
	return addr, nil
}

func (a *addressService) validateSeed(ctx context.Context, seed string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(strings.TrimSpace(seed)) <= 0 {
		return ErrNullSeed
	}
	return nil
}

func (a *addressService) seedOpts(seed string) wallet.FromSeedOpts {
	return wallet.FromSeedOpts{
		Seed:           seed,
		Salt:           a.salt,
		Network:        a.network,
		StrictMnemonic: a.strictMnemonic,
	}
}

func parsePublicKey(pubkey string) (wallet.PublicKey, error) {
	key, err := wallet.NewPublicKeyFromString(strings.TrimSpace(pubkey))
	if err != nil {
		return wallet.PublicKey{}, ErrMalformedPublicKey
	}
	return key, nil
}

func observe(addressType wallet.AddressType, start time.Time, err *error) {
	stats.ObserveDerivation(addressType.String(), start, *err)
}
