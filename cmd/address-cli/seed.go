package main

import (
	"github.com/urfave/cli/v2"
)

var seedFlags = []cli.Flag{
	&cli.StringFlag{
		Name:  "seed",
		Usage: "the seed phrase",
	},
	&cli.StringFlag{
		Name:  "seed-file",
		Usage: "path of a file containing the seed phrase",
	},
}

var seed = cli.Command{
	Name:   "seed",
	Usage:  "derive the segwit address of a seed",
	Flags:  seedFlags,
	Action: seedAction,
}

var legacy = cli.Command{
	Name:   "legacy",
	Usage:  "derive the legacy (P2PKH) address of a seed",
	Flags:  seedFlags,
	Action: legacyAction,
}

func seedAction(ctx *cli.Context) error {
	svc, err := getAddressService(ctx)
	if err != nil {
		return err
	}
	seedPhrase, err := readSeed(ctx)
	if err != nil {
		return err
	}

	addr, err := svc.DeriveSegwitAddress(ctx.Context, seedPhrase)
	if err != nil {
		return err
	}

	return printAddress(ctx.App.Writer, addr)
}

func legacyAction(ctx *cli.Context) error {
	svc, err := getAddressService(ctx)
	if err != nil {
		return err
	}
	seedPhrase, err := readSeed(ctx)
	if err != nil {
		return err
	}

	addr, err := svc.DeriveLegacyAddress(ctx.Context, seedPhrase)
	if err != nil {
		return err
	}

	return printAddress(ctx.App.Writer, addr)
}
