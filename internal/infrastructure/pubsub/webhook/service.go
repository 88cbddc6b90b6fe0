package webhookpubsub

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v3"
	log "github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"github.com/tdex-network/futarchy-daemon/internal/core/ports"
	"github.com/tdex-network/futarchy-daemon/pkg/circuitbreaker"
	"go.uber.org/ratelimit"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultRequestTimeout = 15 * time.Second
	tokenExpiration       = time.Minute
	tokenIssuer           = "futarchyd"
)

// Options configures the webhook pubsub service.
type Options struct {
	// Datadir where subscriptions are persisted. If empty, subscriptions are
	// kept in memory and lost on restart.
	Datadir string
	// Logger for the underlying badger store.
	Logger badger.Logger
	// RequestTimeout for every webhook call, defaults to
	// DefaultRequestTimeout.
	RequestTimeout time.Duration
	// RateLimit caps the outgoing webhook calls per second. Zero means no
	// limit.
	RateLimit int
}

// Service is a ports.PubSub that notifies subscribers by POSTing the
// messages to their http endpoints. Messages are delivered in background:
// Publish never blocks on slow or unreachable endpoints.
type Service struct {
	store      subscriptionStore
	httpClient *deliveryClient
	cb         *gobreaker.CircuitBreaker
	limiter    ratelimit.Limiter

	lock   *sync.RWMutex
	wg     *sync.WaitGroup
	closed bool
}

func NewService(opts Options) (*Service, error) {
	var (
		store subscriptionStore
		err   error
	)
	if len(opts.Datadir) > 0 {
		dbDir := filepath.Join(opts.Datadir, "webhooks")
		store, err = newBadgerStore(dbDir, opts.Logger)
		if err != nil {
			return nil, fmt.Errorf("opening webhooks db: %w", err)
		}
	} else {
		store = newInmemoryStore()
	}

	requestTimeout := opts.RequestTimeout
	if requestTimeout <= 0 {
		requestTimeout = DefaultRequestTimeout
	}
	limiter := ratelimit.NewUnlimited()
	if opts.RateLimit > 0 {
		limiter = ratelimit.New(opts.RateLimit)
	}

	return &Service{
		store:      store,
		httpClient: newDeliveryClient(requestTimeout),
		cb:         circuitbreaker.NewCircuitBreaker("webhooks"),
		limiter:    limiter,
		lock:       &sync.RWMutex{},
		wg:         &sync.WaitGroup{},
	}, nil
}

func (s *Service) Subscribe(topic, endpoint, secret string) (string, error) {
	if s.isClosed() {
		return "", ErrServiceClosed
	}

	sub, err := NewSubscription(topic, endpoint, secret)
	if err != nil {
		return "", err
	}
	if err := s.store.add(*sub); err != nil {
		return "", err
	}
	log.Debugf("added webhook %s for event %s", sub.ID, sub.Event)
	return sub.ID, nil
}

func (s *Service) Unsubscribe(id string) error {
	if s.isClosed() {
		return ErrServiceClosed
	}
	if err := s.store.remove(id); err != nil {
		return err
	}
	log.Debugf("removed webhook %s", id)
	return nil
}

// ListSubscriptionsForTopic returns the subscriptions that would be notified
// for the topic: those registered for it plus those for any topic. An
// unspecified topic returns all subscriptions.
func (s *Service) ListSubscriptionsForTopic(topic string) []ports.Subscription {
	subs, err := s.listSubscriptionsForTopic(topic)
	if err != nil {
		log.WithError(err).Warn("failed to list webhooks")
		return nil
	}
	return subs.toPortable()
}

// Publish schedules the delivery of the message to every subscription of the
// topic.
func (s *Service) Publish(topic, message string) error {
	s.lock.RLock()
	defer s.lock.RUnlock()
	if s.closed {
		return ErrServiceClosed
	}

	subs, err := s.listSubscriptionsForTopic(topic)
	if err != nil {
		return err
	}
	if len(subs) <= 0 {
		return nil
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.publishToSubscriptions(subs, message); err != nil {
			log.WithError(err).Warnf("failed to notify webhooks for event %s", topic)
		}
	}()
	return nil
}

// Close waits for pending deliveries and closes the store.
func (s *Service) Close() error {
	s.lock.Lock()
	if s.closed {
		s.lock.Unlock()
		return nil
	}
	s.closed = true
	s.lock.Unlock()

	s.wg.Wait()
	return s.store.close()
}

func (s *Service) isClosed() bool {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.closed
}

func (s *Service) listSubscriptionsForTopic(topic string) (subscriptions, error) {
	subs, err := s.store.list(topic)
	if err != nil {
		return nil, err
	}
	if topic != ports.AnyTopic && topic != ports.UnspecifiedTopic {
		subsForAnyTopic, err := s.store.list(ports.AnyTopic)
		if err != nil {
			return nil, err
		}
		subs = append(subs, subsForAnyTopic...)
	}
	return subs, nil
}

func (s *Service) publishToSubscriptions(subs subscriptions, message string) error {
	eg := &errgroup.Group{}
	for i := range subs {
		sub := subs[i]
		eg.Go(func() error {
			s.limiter.Take()
			return s.doRequest(sub, message)
		})
	}
	return eg.Wait()
}

func (s *Service) doRequest(sub Subscription, payload string) error {
	var rejected error
	_, err := s.cb.Execute(func() (interface{}, error) {
		err := s.httpClient.deliver(sub, payload)
		var statusErr *StatusError
		if errors.As(err, &statusErr) && !statusErr.Temporary() {
			rejected = err
			return nil, nil
		}
		return nil, err
	})
	if err != nil {
		return err
	}
	return rejected
}
