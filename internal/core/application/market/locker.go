package market

import (
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// locker serializes operations on the same market while letting operations
// on different markets proceed concurrently.
type locker struct {
	lock  sync.Mutex
	locks map[common.Hash]*refMutex
}

type refMutex struct {
	sync.Mutex
	refs int
}

func newLocker() *locker {
	return &locker{locks: make(map[common.Hash]*refMutex)}
}

// acquire blocks until the lock of the given market is held and returns the
// function to release it.
func (l *locker) acquire(proposalId common.Hash) func() {
	l.lock.Lock()
	m, ok := l.locks[proposalId]
	if !ok {
		m = &refMutex{}
		l.locks[proposalId] = m
	}
	m.refs++
	l.lock.Unlock()

	m.Lock()
	return func() {
		m.Unlock()

		l.lock.Lock()
		m.refs--
		if m.refs == 0 {
			delete(l.locks, proposalId)
		}
		l.lock.Unlock()
	}
}
