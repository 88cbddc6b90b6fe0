package market_test

import (
	"context"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/mock"
	"github.com/tdex-network/futarchy-daemon/internal/core/ports"
)

// **** Settlement ledger ****

type mockLedger struct {
	mock.Mock
}

func (m *mockLedger) Debit(
	ctx context.Context, from common.Address, amount uint64,
) error {
	args := m.Called(ctx, from, amount)
	return args.Error(0)
}

func (m *mockLedger) Credit(
	ctx context.Context, to common.Address, amount uint64,
) error {
	args := m.Called(ctx, to, amount)
	return args.Error(0)
}

// **** PubSub ****

type publishedMessage struct {
	topic, message string
}

type mockPubSub struct {
	lock     sync.Mutex
	messages []publishedMessage
}

func (m *mockPubSub) Subscribe(_, _, _ string) (string, error) {
	return "", nil
}

func (m *mockPubSub) Unsubscribe(_ string) error {
	return nil
}

func (m *mockPubSub) ListSubscriptionsForTopic(_ string) []ports.Subscription {
	return nil
}

func (m *mockPubSub) Publish(topic, message string) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.messages = append(m.messages, publishedMessage{topic, message})
	return nil
}

func (m *mockPubSub) Close() error {
	return nil
}

func (m *mockPubSub) topics() []string {
	m.lock.Lock()
	defer m.lock.Unlock()

	topics := make([]string, 0, len(m.messages))
	for _, msg := range m.messages {
		topics = append(topics, msg.topic)
	}
	return topics
}
