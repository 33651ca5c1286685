package main

import (
	"github.com/urfave/cli/v2"
)

var pubkey = cli.Command{
	Name:  "pubkey",
	Usage: "derive the segwit address of a compressed public key",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "public-key",
			Usage:    "the hex encoded compressed public key",
			Required: true,
		},
	},
	Action: pubkeyAction,
}

func pubkeyAction(ctx *cli.Context) error {
	svc, err := getAddressService(ctx)
	if err != nil {
		return err
	}

	addr, err := svc.DeriveSegwitAddressFromPublicKey(
		ctx.Context, ctx.String("public-key"),
	)
	if err != nil {
		return err
	}

	return printAddress(ctx.App.Writer, addr)
}
