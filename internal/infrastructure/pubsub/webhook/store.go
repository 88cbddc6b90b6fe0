package webhookpubsub

import (
	"errors"
	"sort"
	"sync"

	"github.com/dgraph-io/badger/v3"
	"github.com/dgraph-io/badger/v3/options"
	"github.com/tdex-network/futarchy-daemon/internal/core/ports"
	"github.com/timshannon/badgerhold/v4"
)

// subscriptionStore persists webhook subscriptions.
type subscriptionStore interface {
	add(sub Subscription) error
	remove(id string) error
	// list returns the subscriptions for the given topic, or all of them if
	// the topic is unspecified. Results are sorted by id.
	list(topic string) (subscriptions, error)
	close() error
}

type inmemoryStore struct {
	lock *sync.RWMutex
	subs map[string]Subscription
}

func newInmemoryStore() subscriptionStore {
	return &inmemoryStore{
		lock: &sync.RWMutex{},
		subs: make(map[string]Subscription),
	}
}

func (s *inmemoryStore) add(sub Subscription) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if _, ok := s.subs[sub.ID]; !ok {
		s.subs[sub.ID] = sub
	}
	return nil
}

func (s *inmemoryStore) remove(id string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if _, ok := s.subs[id]; !ok {
		return ErrSubscriptionNotFound
	}
	delete(s.subs, id)
	return nil
}

func (s *inmemoryStore) list(topic string) (subscriptions, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	subs := make(subscriptions, 0)
	for _, sub := range s.subs {
		if topic == ports.UnspecifiedTopic || sub.Event == topic {
			subs = append(subs, sub)
		}
	}
	sort.SliceStable(subs, func(i, j int) bool {
		return subs[i].ID < subs[j].ID
	})
	return subs, nil
}

func (s *inmemoryStore) close() error {
	return nil
}

type badgerStore struct {
	store *badgerhold.Store
}

func newBadgerStore(dbDir string, logger badger.Logger) (subscriptionStore, error) {
	opts := badger.DefaultOptions(dbDir)
	opts.Logger = logger
	opts.Compression = options.ZSTD

	store, err := badgerhold.Open(badgerhold.Options{
		Encoder:          badgerhold.DefaultEncode,
		Decoder:          badgerhold.DefaultDecode,
		SequenceBandwith: 100,
		Options:          opts,
	})
	if err != nil {
		return nil, err
	}
	return &badgerStore{store}, nil
}

func (s *badgerStore) add(sub Subscription) error {
	if err := s.store.Insert(sub.ID, sub); err != nil {
		if errors.Is(err, badgerhold.ErrKeyExists) {
			return nil
		}
		return err
	}
	return nil
}

func (s *badgerStore) remove(id string) error {
	if err := s.store.Delete(id, Subscription{}); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return ErrSubscriptionNotFound
		}
		return err
	}
	return nil
}

func (s *badgerStore) list(topic string) (subscriptions, error) {
	var query *badgerhold.Query
	if topic != ports.UnspecifiedTopic {
		query = badgerhold.Where("Event").Eq(topic).Index("Event")
	}

	var subs []Subscription
	if err := s.store.Find(&subs, query); err != nil {
		return nil, err
	}
	sort.SliceStable(subs, func(i, j int) bool {
		return subs[i].ID < subs[j].ID
	})
	return subs, nil
}

func (s *badgerStore) close() error {
	return s.store.Close()
}
