package main

import (
	"context"
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/tdex-network/btc-address-daemon/config"
	"github.com/tdex-network/btc-address-daemon/internal/core/application"
	httpinterface "github.com/tdex-network/btc-address-daemon/internal/interfaces/http"
	"github.com/tdex-network/btc-address-daemon/pkg/auth"
	"github.com/tdex-network/btc-address-daemon/pkg/stats"
	"golang.org/x/sync/errgroup"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"

	app = &cobra.Command{
		Use:   "addressd",
		Short: "bitcoin address daemon",
		Long: "addressd derives segwit, legacy and multisig bitcoin addresses " +
			"from seeds and public keys over HTTP",
		Version:       formatVersion(),
		RunE:          action,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func init() {
	app.SetVersionTemplate("{{.Version}}\n")

	flags := app.Flags()
	flags.Int("port", 8080, "the port where the HTTP interface listens on")
	flags.String("datadir", "", "the directory where stats are dumped (default "+
		"is the OS app data dir)")
	flags.Int("log-level", 4, "the logrus level, from 0 (panic) to 6 (trace)")
	flags.String("network", "mainnet", "one of mainnet, testnet, regtest or signet")
	flags.String("authority", "", "the base url of the token issuer")
	flags.Bool("no-auth", false, "disable request authentication")
}

func main() {
	if err := app.Execute(); err != nil {
		log.Fatal(err)
	}
}

func action(cmd *cobra.Command, _ []string) error {
	if err := config.InitConfig(cmd.Flags()); err != nil {
		return err
	}
	log.SetLevel(log.Level(config.GetInt(config.LogLevelKey)))

	network := config.GetNetwork()
	addressSvc := application.NewAddressService(application.AddressServiceOpts{
		Network:        network,
		Salt:           config.GetString(config.SeedSaltKey),
		StrictMnemonic: config.GetBool(config.StrictMnemonicKey),
	})

	var validator httpinterface.TokenValidator
	if config.IsAuthEnabled() {
		v, err := auth.NewValidator(auth.ValidatorOpts{
			Authority: config.GetString(config.AuthorityKey),
			Timeout:   config.GetAuthRequestTimeout(),
		})
		if err != nil {
			return fmt.Errorf("error while setting up authentication: %s", err)
		}
		validator = v
	}

	httpSvc, err := httpinterface.NewService(httpinterface.ServiceOpts{
		Port:                  config.GetInt(config.ListeningPortKey),
		AddressSvc:            addressSvc,
		Validator:             validator,
		MaxConcurrentRequests: config.GetInt(config.MaxConcurrentRequestsKey),
		MaxRequestsPerSecond:  config.GetInt(config.MaxRequestsPerSecondKey),
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(
		context.Background(), syscall.SIGINT, syscall.SIGTERM,
	)
	defer stop()

	if err := httpSvc.Start(); err != nil {
		return fmt.Errorf("error while starting http interface: %s", err)
	}
	log.Infof("addressd started on %s network", network.Name)

	g, gctx := errgroup.WithContext(ctx)
	if config.GetBool(config.EnableProfilerKey) {
		statsFile := filepath.Join(
			config.GetDatadir(), config.ProfilerLocation, config.StatsFile,
		)
		g.Go(func() error {
			stats.EnableMemoryStatistics(gctx, config.GetStatsInterval(), statsFile)
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		httpSvc.Stop()
		return nil
	})

	err = g.Wait()
	log.Info("shutdown")
	return err
}

func formatVersion() string {
	return fmt.Sprintf(
		"Version: %s\nCommit: %s\nDate: %s",
		version, commit, date,
	)
}
