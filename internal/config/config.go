package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/ethereum/go-ethereum/common"
	"github.com/tdex-network/futarchy-daemon/internal/core/application"

	"github.com/spf13/viper"
)

const (
	// HTTPListeningPortKey is the port where the REST interface will listen on
	HTTPListeningPortKey = "HTTP_LISTENING_PORT"
	// DatadirKey is the local data directory to store the internal state of daemon
	DatadirKey = "DATADIR"
	// LogLevelKey are the different logging levels. For reference on the values https://godoc.org/github.com/sirupsen/logrus#Level
	LogLevelKey = "LOG_LEVEL"
	// DBTypeKey is used to switch database type between those supported
	DBTypeKey = "DB_TYPE"
	// GovernanceAddressKey is the identity allowed to create markets and to
	// replace the oracle
	GovernanceAddressKey = "GOVERNANCE_ADDRESS"
	// OracleAddressKey is the identity allowed to resolve markets at startup
	OracleAddressKey = "ORACLE_ADDRESS"
	// SeedLiquidityKey is the settlement amount the governance deposits on
	// each side of every new market
	SeedLiquidityKey = "SEED_LIQUIDITY"
	// PricePrecisionKey is the fixed-point scale of spot prices
	PricePrecisionKey = "PRICE_PRECISION"
	// LedgerGenesisKey is the list of address:amount initial balances of the
	// development settlement ledger
	LedgerGenesisKey = "LEDGER_GENESIS"
	// CORSOriginsKey is the list of origins allowed to call the REST interface
	CORSOriginsKey = "CORS_ORIGINS"
	// WebhookRequestTimeoutKey is the timeout of every webhook notification
	WebhookRequestTimeoutKey = "WEBHOOK_REQUEST_TIMEOUT"
	// WebhookRateLimitKey caps the webhook notifications sent per second
	WebhookRateLimitKey = "WEBHOOK_RATE_LIMIT"
	// SignatureMaxSkewKey is the max distance between a signed request
	// timestamp and the daemon clock
	SignatureMaxSkewKey = "SIGNATURE_MAX_SKEW"
	// StatsIntervalKey defines interval for logging memory statistics, 0
	// disables them
	StatsIntervalKey = "STATS_INTERVAL"

	DbLocation = "db"
)

var vip *viper.Viper
var defaultDatadir = btcutil.AppDataDir("futarchyd", false)

func InitConfig() error {
	vip = viper.New()
	vip.SetEnvPrefix("FUTARCHY")
	vip.AutomaticEnv()

	vip.SetDefault(HTTPListeningPortKey, 9945)
	vip.SetDefault(LogLevelKey, 4)
	vip.SetDefault(DatadirKey, defaultDatadir)
	vip.SetDefault(DBTypeKey, application.DBBadger)
	vip.SetDefault(SeedLiquidityKey, 1000)
	vip.SetDefault(PricePrecisionKey, 1000000)
	vip.SetDefault(WebhookRequestTimeoutKey, 15*time.Second)
	vip.SetDefault(WebhookRateLimitKey, 50)
	vip.SetDefault(SignatureMaxSkewKey, 5*time.Minute)
	vip.SetDefault(StatsIntervalKey, 0)

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

func GetUint64(key string) uint64 {
	return vip.GetUint64(key)
}

// GetStringSlice returns the list for the given key. Env values are split on
// commas and whitespaces.
func GetStringSlice(key string) []string {
	list := make([]string, 0)
	for _, entry := range vip.GetStringSlice(key) {
		list = append(list, strings.FieldsFunc(entry, isListSeparator)...)
	}
	return list
}

func GetDuration(key string) time.Duration {
	return vip.GetDuration(key)
}

func GetBool(key string) bool {
	return vip.GetBool(key)
}

func GetAddress(key string) common.Address {
	return common.HexToAddress(GetString(key))
}

func GetDatadir() string {
	return GetString(DatadirKey)
}

func GetDbDir() string {
	if GetString(DBTypeKey) == application.DBInMemory {
		return ""
	}
	return filepath.Join(GetDatadir(), DbLocation)
}

func validate() error {
	datadir := GetString(DatadirKey)
	if len(datadir) <= 0 {
		return fmt.Errorf("missing datadir")
	}

	dbType := GetString(DBTypeKey)
	if _, ok := application.SupportedDBType[dbType]; !ok {
		return fmt.Errorf("unsupported db type %s", dbType)
	}

	for _, key := range []string{GovernanceAddressKey, OracleAddressKey} {
		addr := GetString(key)
		if addr == "" {
			return fmt.Errorf("missing %s", strings.ToLower(key))
		}
		if !common.IsHexAddress(addr) || common.HexToAddress(addr) == (common.Address{}) {
			return fmt.Errorf("%s must be a valid non-zero address", strings.ToLower(key))
		}
	}

	if GetUint64(SeedLiquidityKey) == 0 {
		return fmt.Errorf("%s must be greater than zero", SeedLiquidityKey)
	}
	if GetUint64(PricePrecisionKey) == 0 {
		return fmt.Errorf("%s must be greater than zero", PricePrecisionKey)
	}
	if GetInt(WebhookRateLimitKey) < 0 {
		return fmt.Errorf("%s must not be negative", WebhookRateLimitKey)
	}
	if GetDuration(WebhookRequestTimeoutKey) <= 0 {
		return fmt.Errorf("%s must be greater than zero", WebhookRequestTimeoutKey)
	}
	if GetDuration(SignatureMaxSkewKey) <= 0 {
		return fmt.Errorf("%s must be greater than zero", SignatureMaxSkewKey)
	}

	if GetDuration(StatsIntervalKey) < 0 {
		return fmt.Errorf("%s must not be negative", StatsIntervalKey)
	}

	return nil
}

func initDatadir() error {
	datadir := GetDatadir()
	if err := makeDirectoryIfNotExists(datadir); err != nil {
		return err
	}
	if dbDir := GetDbDir(); dbDir != "" {
		return makeDirectoryIfNotExists(dbDir)
	}
	return nil
}

func makeDirectoryIfNotExists(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return os.MkdirAll(path, os.ModeDir|0755)
	}
	return nil
}

func isListSeparator(r rune) bool {
	return r == ',' || r == ' ' || r == '\t' || r == '\n'
}
