package pubsub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/tdex-network/futarchy-daemon/internal/core/domain"
	"github.com/tdex-network/futarchy-daemon/internal/core/ports"
)

const (
	EventMarketCreated   = "MARKET_CREATED"
	EventSharesBought    = "SHARES_BOUGHT"
	EventSharesSold      = "SHARES_SOLD"
	EventMarketResolved  = "MARKET_RESOLVED"
	EventWinningsClaimed = "WINNINGS_CLAIMED"
	EventOracleUpdated   = "ORACLE_UPDATED"
)

// ErrInvalidTopic is returned when managing webhooks for an unknown event.
var ErrInvalidTopic = errors.New("invalid webhook event type")

var topics = map[string]struct{}{
	ports.AnyTopic:       {},
	EventMarketCreated:   {},
	EventSharesBought:    {},
	EventSharesSold:      {},
	EventMarketResolved:  {},
	EventWinningsClaimed: {},
	EventOracleUpdated:   {},
}

// IsValidTopic returns whether a webhook can be registered for the topic.
func IsValidTopic(topic string) bool {
	_, ok := topics[topic]
	return ok
}

// Service formats the notifications emitted on market state transitions
// and publishes them through the underlying pubsub.
type Service struct {
	pubsub ports.PubSub
}

func NewService(pubsub ports.PubSub) *Service {
	return &Service{pubsub}
}

func (s *Service) PubSub() ports.PubSub {
	return s.pubsub
}

func (s *Service) AddWebhook(
	_ context.Context, topic, endpoint, secret string,
) (string, error) {
	if !IsValidTopic(topic) {
		return "", fmt.Errorf("%w %q", ErrInvalidTopic, topic)
	}
	return s.pubsub.Subscribe(topic, endpoint, secret)
}

func (s *Service) RemoveWebhook(_ context.Context, id string) error {
	return s.pubsub.Unsubscribe(id)
}

func (s *Service) ListWebhooks(
	_ context.Context, topic string,
) ([]ports.Subscription, error) {
	if topic != ports.UnspecifiedTopic && !IsValidTopic(topic) {
		return nil, fmt.Errorf("%w %q", ErrInvalidTopic, topic)
	}
	return s.pubsub.ListSubscriptionsForTopic(topic), nil
}

func (s *Service) PublishMarketCreatedEvent(
	market domain.Market, creator common.Address, seedLiquidity uint64,
) error {
	return s.publish(EventMarketCreated, map[string]interface{}{
		"market":         getMarketPayload(market),
		"creator":        creator.Hex(),
		"seed_liquidity": seedLiquidity,
	})
}

func (s *Service) PublishSharesBoughtEvent(
	market domain.Market, trader common.Address, side domain.Side,
	shares, tokens uint64,
) error {
	return s.publish(EventSharesBought, getTradePayload(
		market, trader, side, shares, tokens,
	))
}

func (s *Service) PublishSharesSoldEvent(
	market domain.Market, trader common.Address, side domain.Side,
	shares, tokens uint64,
) error {
	return s.publish(EventSharesSold, getTradePayload(
		market, trader, side, shares, tokens,
	))
}

func (s *Service) PublishMarketResolvedEvent(
	market domain.Market, oracle common.Address,
) error {
	return s.publish(EventMarketResolved, map[string]interface{}{
		"market": getMarketPayload(market),
		"oracle": oracle.Hex(),
	})
}

func (s *Service) PublishWinningsClaimedEvent(
	market domain.Market, trader common.Address, payout uint64,
) error {
	return s.publish(EventWinningsClaimed, map[string]interface{}{
		"proposal_id": market.ProposalId.Hex(),
		"trader":      trader.Hex(),
		"outcome":     market.Outcome.String(),
		"payout":      payout,
	})
}

func (s *Service) PublishOracleUpdatedEvent(
	oldOracle, newOracle common.Address,
) error {
	return s.publish(EventOracleUpdated, map[string]interface{}{
		"old_oracle": oldOracle.Hex(),
		"new_oracle": newOracle.Hex(),
	})
}

func (s *Service) publish(event string, payload map[string]interface{}) error {
	payload["event"] = event
	payload["id"] = uuid.New().String()
	payload["timestamp"] = time.Now().Unix()

	message, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return s.pubsub.Publish(event, string(message))
}
