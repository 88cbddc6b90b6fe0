// Package inmemory implements a settlement ledger that keeps balances in
// memory. It's meant for development and testing deployments where no real
// token is bound to the engine: balances are lost on restart.
package inmemory

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/futarchy-daemon/internal/core/domain"
	"github.com/tdex-network/futarchy-daemon/internal/core/ports"
	"github.com/tdex-network/futarchy-daemon/pkg/mathutil"
)

// CustodyAccount is the account holding the settlement asset on behalf of
// the engine.
var CustodyAccount = common.Address{}

type Ledger interface {
	ports.SettlementLedger
	ports.BalanceReader
}

type ledger struct {
	lock     *sync.RWMutex
	balances map[common.Address]uint64
}

// NewLedger returns a ledger where every account in genesis starts with the
// associated balance.
func NewLedger(genesis map[common.Address]uint64) Ledger {
	balances := make(map[common.Address]uint64, len(genesis))
	for account, amount := range genesis {
		balances[account] = amount
	}
	return &ledger{
		lock:     &sync.RWMutex{},
		balances: balances,
	}
}

func (l *ledger) Debit(
	_ context.Context, from common.Address, amount uint64,
) error {
	l.lock.Lock()
	defer l.lock.Unlock()

	return l.transfer(from, CustodyAccount, amount)
}

func (l *ledger) Credit(
	_ context.Context, to common.Address, amount uint64,
) error {
	l.lock.Lock()
	defer l.lock.Unlock()

	return l.transfer(CustodyAccount, to, amount)
}

func (l *ledger) BalanceOf(
	_ context.Context, account common.Address,
) (uint64, error) {
	l.lock.RLock()
	defer l.lock.RUnlock()

	return l.balances[account], nil
}

func (l *ledger) transfer(from, to common.Address, amount uint64) error {
	if from == to {
		return nil
	}
	fromBalance := l.balances[from]
	if fromBalance < amount {
		return fmt.Errorf(
			"%w: %s has %d, needs %d",
			domain.ErrInsufficientFunds, from.Hex(), fromBalance, amount,
		)
	}
	toBalance, err := mathutil.Add(l.balances[to], amount)
	if err != nil {
		return err
	}

	l.balances[from] = fromBalance - amount
	l.balances[to] = toBalance
	log.Tracef("ledger: moved %d from %s to %s", amount, from.Hex(), to.Hex())
	return nil
}

// ParseGenesis parses a list of "address:amount" entries into the genesis
// allocations of a ledger. Repeated addresses are summed.
func ParseGenesis(entries []string) (map[common.Address]uint64, error) {
	genesis := make(map[common.Address]uint64)
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		parts := strings.Split(entry, ":")
		if len(parts) != 2 {
			return nil, fmt.Errorf(
				"invalid genesis entry %q, must be in the form address:amount",
				entry,
			)
		}
		if !common.IsHexAddress(parts[0]) {
			return nil, fmt.Errorf("invalid genesis address %q", parts[0])
		}
		amount, err := strconv.ParseUint(parts[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid genesis amount %q: %w", parts[1], err)
		}

		address := common.HexToAddress(parts[0])
		balance, err := mathutil.Add(genesis[address], amount)
		if err != nil {
			return nil, fmt.Errorf("genesis balance of %s: %w", address.Hex(), err)
		}
		genesis[address] = balance
	}
	return genesis, nil
}
