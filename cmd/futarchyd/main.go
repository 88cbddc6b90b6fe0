package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/futarchy-daemon/internal/config"
	"github.com/tdex-network/futarchy-daemon/internal/core/application"
	ledgerinmemory "github.com/tdex-network/futarchy-daemon/internal/infrastructure/ledger/inmemory"
	streampubsub "github.com/tdex-network/futarchy-daemon/internal/infrastructure/pubsub/stream"
	webhookpubsub "github.com/tdex-network/futarchy-daemon/internal/infrastructure/pubsub/webhook"
	httpinterface "github.com/tdex-network/futarchy-daemon/internal/interfaces/http"
	"github.com/tdex-network/futarchy-daemon/pkg/stats"
)

func main() {
	if err := config.InitConfig(); err != nil {
		log.WithError(err).Fatal("failed to initialize config")
	}
	log.SetLevel(log.Level(config.GetInt(config.LogLevelKey)))

	dbType := config.GetString(config.DBTypeKey)

	genesis, err := ledgerinmemory.ParseGenesis(
		config.GetStringSlice(config.LedgerGenesisKey),
	)
	if err != nil {
		log.WithError(err).Fatal("invalid ledger genesis")
	}
	ledger := ledgerinmemory.NewLedger(genesis)
	log.Warn(
		"settlement ledger is kept in memory, balances are lost on restart",
	)

	pubsubOpts := webhookpubsub.Options{
		RequestTimeout: config.GetDuration(config.WebhookRequestTimeoutKey),
		RateLimit:      config.GetInt(config.WebhookRateLimitKey),
	}
	if dbType != application.DBInMemory {
		logger := log.New()
		logger.SetLevel(log.GetLevel())
		pubsubOpts.Datadir = config.GetDatadir()
		pubsubOpts.Logger = logger
	}
	webhooks, err := webhookpubsub.NewService(pubsubOpts)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize webhook pubsub")
	}
	eventStream := streampubsub.NewHub(streampubsub.DefaultBufferSize)
	pubsub := streampubsub.NewPubSub(webhooks, eventStream)

	appConfig := &application.Config{
		DBType:         dbType,
		DBConfig:       config.GetDbDir(),
		Ledger:         ledger,
		PubSub:         pubsub,
		Governance:     config.GetAddress(config.GovernanceAddressKey),
		Oracle:         config.GetAddress(config.OracleAddressKey),
		SeedLiquidity:  config.GetUint64(config.SeedLiquidityKey),
		PricePrecision: config.GetUint64(config.PricePrecisionKey),
	}
	if err := appConfig.Validate(); err != nil {
		log.WithError(err).Fatal("invalid application config")
	}

	svc, err := httpinterface.NewService(httpinterface.ServiceOpts{
		Address:          fmt.Sprintf(":%d", config.GetInt(config.HTTPListeningPortKey)),
		CORSOrigins:      config.GetStringSlice(config.CORSOriginsKey),
		SignatureMaxSkew: config.GetDuration(config.SignatureMaxSkewKey),
		MarketSvc:        appConfig.MarketService(),
		PubSubSvc:        appConfig.PubSubService(),
		BalanceReader:    ledger,
		EventStream:      eventStream,
	})
	if err != nil {
		log.WithError(err).Fatal("failed to initialize http interface")
	}

	log.Info("starting daemon")

	if err := svc.Start(); err != nil {
		log.WithError(err).Fatal("failed to start http interface")
	}
	defer appConfig.RepoManager().Close()
	defer func() {
		if err := pubsub.Close(); err != nil {
			log.WithError(err).Warn("failed to close pubsub")
		}
	}()
	defer svc.Stop()

	if interval := config.GetDuration(config.StatsIntervalKey); interval > 0 {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		stats.EnableMemoryStatistics(ctx, interval)
	}

	log.Infof(
		"governance %s, oracle %s, seed liquidity %d",
		appConfig.Governance.Hex(), appConfig.Oracle.Hex(), appConfig.SeedLiquidity,
	)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT, os.Interrupt)
	<-sigChan

	log.Info("shutting down daemon")
}
