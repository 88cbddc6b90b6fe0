package ports

import (
	"context"

	"github.com/tdex-network/futarchy-daemon/internal/core/domain"
)

// RepoManager interface defines the methods for market and position
// repositories and for running all-or-nothing transactions over them.
type RepoManager interface {
	MarketRepository() domain.MarketRepository
	PositionRepository() domain.PositionRepository

	// RunTransaction runs the handler within a transaction. Repositories
	// called with the context given to the handler read and write within it.
	// Any error returned by the handler rolls back every write.
	RunTransaction(
		ctx context.Context,
		readOnly bool,
		handler func(ctx context.Context) (interface{}, error),
	) (interface{}, error)

	Close()
}
