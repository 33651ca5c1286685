package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// ListeningPortKey is the port where the HTTP interface will listen on
	ListeningPortKey = "LISTENING_PORT"
	// DatadirKey is the local data directory where the daemon dumps its stats
	DatadirKey = "DATA_DIR_PATH"
	// LogLevelKey are the different logging levels. For reference on the values https://godoc.org/github.com/sirupsen/logrus#Level
	LogLevelKey = "LOG_LEVEL"
	// NetworkKey is the network to derive addresses for. One of "mainnet",
	// "testnet", "regtest" or "signet"
	NetworkKey = "NETWORK"
	// SeedSaltKey is the salt used to stretch seed phrases
	SeedSaltKey = "SEED_SALT"
	// StrictMnemonicKey makes the daemon reject seeds that are not valid
	// BIP-39 mnemonics
	StrictMnemonicKey = "STRICT_MNEMONIC"
	// AuthorityKey is the base url of the token issuer. When set, every
	// request must carry a bearer token signed by one of the keys published
	// at <authority>/.well-known/jwks.json
	AuthorityKey = "AUTHORITY"
	// NoAuthKey disables request authentication even if an authority is set
	NoAuthKey = "NO_AUTH"
	// AuthRequestTimeoutKey are the milliseconds to wait for the authority to
	// respond before timeouts
	AuthRequestTimeoutKey = "AUTH_REQUEST_TIMEOUT"
	// MaxConcurrentRequestsKey is the max number of requests served at the
	// same time. Exceeding requests are rejected
	MaxConcurrentRequestsKey = "MAX_CONCURRENT_REQUESTS"
	// MaxRequestsPerSecondKey throttles incoming requests. 0 disables it
	MaxRequestsPerSecondKey = "MAX_REQUESTS_PER_SECOND"
	// EnableProfilerKey enables profiler that can be used to investigate performance issues
	EnableProfilerKey = "ENABLE_PROFILER"
	// StatsIntervalKey defines interval in seconds for printing basic statistics
	StatsIntervalKey = "STATS_INTERVAL"

	ProfilerLocation = "stats"
	StatsFile        = "stats"

	defaultNetwork = "mainnet"
)

var (
	vip            *viper.Viper
	defaultDatadir = btcutil.AppDataDir("addressd", false)

	networks = map[string]*chaincfg.Params{
		"mainnet":  &chaincfg.MainNetParams,
		"testnet":  &chaincfg.TestNet3Params,
		"testnet3": &chaincfg.TestNet3Params,
		"regtest":  &chaincfg.RegressionNetParams,
		"signet":   &chaincfg.SigNetParams,
	}

	// flag name -> config key
	flagKeys = map[string]string{
		"port":      ListeningPortKey,
		"datadir":   DatadirKey,
		"log-level": LogLevelKey,
		"network":   NetworkKey,
		"authority": AuthorityKey,
		"no-auth":   NoAuthKey,
	}
)

// InitConfig loads the configuration from the environment (prefix
// ADDRESSD_) and from the given flags, if any, then validates it and creates
// the datadir.
func InitConfig(flags *pflag.FlagSet) error {
	vip = viper.New()
	vip.SetEnvPrefix("ADDRESSD")
	vip.AutomaticEnv()

	vip.SetDefault(ListeningPortKey, 8080)
	vip.SetDefault(DatadirKey, defaultDatadir)
	vip.SetDefault(LogLevelKey, 4)
	vip.SetDefault(NetworkKey, defaultNetwork)
	vip.SetDefault(SeedSaltKey, "mnemonic")
	vip.SetDefault(StrictMnemonicKey, false)
	vip.SetDefault(NoAuthKey, false)
	vip.SetDefault(AuthRequestTimeoutKey, 15000)
	vip.SetDefault(MaxConcurrentRequestsKey, 64)
	vip.SetDefault(MaxRequestsPerSecondKey, 0)
	vip.SetDefault(EnableProfilerKey, false)
	vip.SetDefault(StatsIntervalKey, 600)

	if flags != nil {
		if err := bindFlags(flags); err != nil {
			return fmt.Errorf("error while binding flags: %s", err)
		}
	}

	if err := validate(); err != nil {
		return fmt.Errorf("error while validating config: %s", err)
	}

	if err := initDatadir(); err != nil {
		return fmt.Errorf("error while creating datadir: %s", err)
	}

	return nil
}

func GetString(key string) string {
	return vip.GetString(key)
}

func GetInt(key string) int {
	return vip.GetInt(key)
}

func GetBool(key string) bool {
	return vip.GetBool(key)
}

func GetDuration(key string) time.Duration {
	return vip.GetDuration(key)
}

func GetDatadir() string {
	return GetString(DatadirKey)
}

// GetNetwork returns the chain params of the configured network.
func GetNetwork() *chaincfg.Params {
	net, _ := ParseNetwork(GetString(NetworkKey))
	return net
}

// ParseNetwork returns the chain params matching the given network name.
func ParseNetwork(name string) (*chaincfg.Params, error) {
	net, ok := networks[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf(
			"network must be one of 'mainnet', 'testnet', 'regtest' or 'signet', got '%s'",
			name,
		)
	}
	return net, nil
}

// GetAuthRequestTimeout returns the configured authority timeout.
func GetAuthRequestTimeout() time.Duration {
	return time.Duration(GetInt(AuthRequestTimeoutKey)) * time.Millisecond
}

// GetStatsInterval returns the configured interval between stats prints.
func GetStatsInterval() time.Duration {
	return time.Duration(GetInt(StatsIntervalKey)) * time.Second
}

// IsAuthEnabled returns whether requests must be authenticated.
func IsAuthEnabled() bool {
	return !GetBool(NoAuthKey) && GetString(AuthorityKey) != ""
}

// Set a value for the given key
func Set(key string, value interface{}) {
	vip.Set(key, value)
}

func bindFlags(flags *pflag.FlagSet) error {
	for name, key := range flagKeys {
		flag := flags.Lookup(name)
		if flag == nil {
			continue
		}
		if err := vip.BindPFlag(key, flag); err != nil {
			return err
		}
	}
	return nil
}

func validate() error {
	datadir := GetString(DatadirKey)
	if len(datadir) <= 0 {
		return fmt.Errorf("datadir must not be null")
	}

	port := GetInt(ListeningPortKey)
	if port <= 0 || port > 65535 {
		return fmt.Errorf("listening port must be in range [1, 65535]")
	}

	if _, err := ParseNetwork(GetString(NetworkKey)); err != nil {
		return err
	}

	if GetInt(MaxConcurrentRequestsKey) <= 0 {
		return fmt.Errorf("max concurrent requests must be a positive number")
	}
	if GetInt(MaxRequestsPerSecondKey) < 0 {
		return fmt.Errorf("max requests per second must not be a negative number")
	}

	if authority := GetString(AuthorityKey); authority != "" {
		u, err := url.Parse(authority)
		if err != nil {
			return fmt.Errorf("authority is not a valid url: %s", err)
		}
		if u.Scheme != "https" && u.Scheme != "http" {
			return fmt.Errorf("authority must be an http(s) url")
		}
		if GetInt(AuthRequestTimeoutKey) <= 0 {
			return fmt.Errorf("authority request timeout must be a positive number")
		}
	}

	if GetBool(EnableProfilerKey) && GetInt(StatsIntervalKey) <= 0 {
		return fmt.Errorf("stats interval must be a positive number")
	}

	return nil
}

func initDatadir() error {
	if !GetBool(EnableProfilerKey) {
		return nil
	}
	return makeDirectoryIfNotExists(filepath.Join(GetDatadir(), ProfilerLocation))
}

func makeDirectoryIfNotExists(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return os.MkdirAll(path, os.ModeDir|0755)
	}
	return nil
}
