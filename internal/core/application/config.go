package application

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/futarchy-daemon/internal/core/ports"
	dbbadger "github.com/tdex-network/futarchy-daemon/internal/infrastructure/storage/db/badger"
	"github.com/tdex-network/futarchy-daemon/internal/infrastructure/storage/db/inmemory"
)

const (
	DBInMemory = "inmemory"
	DBBadger   = "badger"
)

var (
	SupportedDBType = map[string]struct{}{
		DBInMemory: {},
		DBBadger:   {},
	}
)

type Config struct {
	DBType   string
	DBConfig interface{}

	Ledger         ports.SettlementLedger
	PubSub         ports.PubSub
	Governance     common.Address
	Oracle         common.Address
	SeedLiquidity  uint64
	PricePrecision uint64

	repo   ports.RepoManager
	pubsub PubSubService
	market MarketService
}

func (c *Config) Validate() error {
	if _, ok := SupportedDBType[c.DBType]; !ok {
		return fmt.Errorf("db type %q not supported", c.DBType)
	}
	if c.DBType == DBBadger {
		if _, ok := c.DBConfig.(string); !ok {
			return fmt.Errorf("missing badger datadir")
		}
	}
	if c.Ledger == nil {
		return fmt.Errorf("missing settlement ledger")
	}
	if c.PubSub == nil {
		return fmt.Errorf("missing pubsub")
	}
	if _, err := c.repoManager(); err != nil {
		return err
	}
	if _, err := c.marketService(); err != nil {
		return err
	}
	return nil
}

func (c *Config) RepoManager() ports.RepoManager {
	svc, _ := c.repoManager()
	return svc
}

func (c *Config) PubSubService() PubSubService {
	svc, _ := c.pubsubService()
	return svc
}

func (c *Config) MarketService() MarketService {
	svc, _ := c.marketService()
	return svc
}

func (c *Config) repoManager() (ports.RepoManager, error) {
	if c.repo == nil {
		switch c.DBType {
		case DBBadger:
			datadir, _ := c.DBConfig.(string)
			logger := log.New()
			logger.SetLevel(log.GetLevel())
			repoManager, err := dbbadger.NewRepoManager(datadir, logger)
			if err != nil {
				return nil, err
			}
			c.repo = repoManager
		case DBInMemory:
			c.repo = inmemory.NewRepoManager()
		default:
			return nil, fmt.Errorf("db type %q not supported", c.DBType)
		}
	}
	return c.repo, nil
}

func (c *Config) pubsubService() (PubSubService, error) {
	if c.pubsub == nil {
		c.pubsub = NewPubSubService(c.PubSub)
	}
	return c.pubsub, nil
}

func (c *Config) marketService() (MarketService, error) {
	if c.market == nil {
		repo, err := c.repoManager()
		if err != nil {
			return nil, err
		}
		pubsub, _ := c.pubsubService()
		market, err := NewMarketService(
			repo, c.Ledger, pubsub, c.Governance, c.Oracle,
			c.SeedLiquidity, c.PricePrecision,
		)
		if err != nil {
			return nil, err
		}
		c.market = market
	}
	return c.market, nil
}
