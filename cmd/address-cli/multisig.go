package main

import (
	"fmt"
	"math"

	"github.com/tdex-network/btc-address-daemon/internal/core/application"
	"github.com/urfave/cli/v2"
)

var multisig = cli.Command{
	Name:  "multisig",
	Usage: "derive the P2SH address of an m-of-n multisig",
	Flags: []cli.Flag{
		&cli.UintFlag{
			Name:     "m",
			Usage:    "the number of required signatures",
			Required: true,
		},
		&cli.UintFlag{
			Name:  "n",
			Usage: "the number of public keys, defaults to the number of given keys",
		},
		&cli.StringSliceFlag{
			Name:     "public-key",
			Usage:    "a hex encoded compressed public key, repeat for each key",
			Required: true,
		},
	},
	Action: multisigAction,
}

func multisigAction(ctx *cli.Context) error {
	svc, err := getAddressService(ctx)
	if err != nil {
		return err
	}

	keys := ctx.StringSlice("public-key")
	m := ctx.Uint("m")
	n := uint(len(keys))
	if ctx.IsSet("n") {
		n = ctx.Uint("n")
	}
	if m > math.MaxUint8 || n > math.MaxUint8 {
		return fmt.Errorf("m and n must not exceed %d", math.MaxUint8)
	}

	addr, err := svc.DeriveMultisigAddress(ctx.Context, application.MultisigRequest{
		M:          uint8(m),
		N:          uint8(n),
		PublicKeys: keys,
	})
	if err != nil {
		return err
	}

	return printAddress(ctx.App.Writer, addr)
}
