package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/tdex-network/btc-address-daemon/config"
	"github.com/tdex-network/btc-address-daemon/internal/core/application"
	"github.com/tdex-network/btc-address-daemon/pkg/wallet"
	"github.com/urfave/cli/v2"
)

var (
	version = "dev"

	networkFlag = &cli.StringFlag{
		Name:  "network",
		Usage: "one of mainnet, testnet, regtest or signet",
		Value: "mainnet",
	}
	saltFlag = &cli.StringFlag{
		Name:  "salt",
		Usage: "the salt used to stretch the seed",
		Value: wallet.DefaultSalt,
	}
	strictFlag = &cli.BoolFlag{
		Name:  "strict",
		Usage: "accept only valid BIP-39 mnemonics as seed",
	}
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fatal(err)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()

	app.Version = version
	app.Name = "address-cli"
	app.Usage = "Derive bitcoin addresses offline"
	app.Flags = []cli.Flag{networkFlag, saltFlag, strictFlag}
	app.Commands = append(
		app.Commands,
		&seed,
		&legacy,
		&pubkey,
		&multisig,
	)

	return app
}

func getAddressService(ctx *cli.Context) (application.AddressService, error) {
	net, err := config.ParseNetwork(ctx.String(networkFlag.Name))
	if err != nil {
		return nil, err
	}

	return application.NewAddressService(application.AddressServiceOpts{
		Network:        net,
		Salt:           ctx.String(saltFlag.Name),
		StrictMnemonic: ctx.Bool(strictFlag.Name),
	}), nil
}

// readSeed returns the seed given either inline or through a file. The seed
// is returned as given, only the line break ending a seed file is dropped.
func readSeed(ctx *cli.Context) (string, error) {
	seed := ctx.String("seed")
	seedFile := ctx.String("seed-file")

	if seed != "" && seedFile != "" {
		return "", fmt.Errorf("--seed and --seed-file are mutually exclusive")
	}
	if seedFile != "" {
		buf, err := os.ReadFile(seedFile)
		if err != nil {
			return "", fmt.Errorf("failed to read seed file: %w", err)
		}
		seed = strings.TrimRight(string(buf), "\r\n")
	}

	if seed == "" {
		return "", &invalidUsageError{ctx, ctx.Command.Name}
	}
	return seed, nil
}

func printAddress(w io.Writer, addr *wallet.Address) error {
	resp := map[string]string{"address": addr.Value}
	if addr.PublicKey != nil {
		resp["public_key"] = addr.PublicKey.String()
	}
	return printRespJSON(w, resp)
}

func printRespJSON(w io.Writer, resp interface{}) error {
	buf, err := json.MarshalIndent(resp, "", "\t")
	if err != nil {
		return fmt.Errorf("unable to decode response: %s", err)
	}

	_, err = fmt.Fprintln(w, string(buf))
	return err
}

type invalidUsageError struct {
	ctx     *cli.Context
	command string
}

func (e *invalidUsageError) Error() string {
	return fmt.Sprintf("invalid usage of command %s", e.command)
}

func fatal(err error) {
	var e *invalidUsageError
	if errors.As(err, &e) {
		_ = cli.ShowCommandHelp(e.ctx, e.command)
	} else {
		_, _ = fmt.Fprintf(os.Stderr, "[address-cli] %v\n", err)
	}
	os.Exit(1)
}
