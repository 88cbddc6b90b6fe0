package pubsub

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/tdex-network/futarchy-daemon/internal/core/domain"
)

func getMarketPayload(market domain.Market) map[string]interface{} {
	payload := map[string]interface{}{
		"proposal_id":   market.ProposalId.Hex(),
		"creation_time": market.CreationTime.Unix(),
		"trading_end":   market.TradingEnd().Unix(),
		"resolved":      market.Resolved,
		"outcome":       market.Outcome.String(),
		"yes_reserve":   market.YesReserve,
		"no_reserve":    market.NoReserve,
		"yes_shares":    market.YesShares,
		"no_shares":     market.NoShares,
	}
	if market.Resolved {
		payload["resolution_time"] = market.ResolutionTime.Unix()
	}
	return payload
}

func getTradePayload(
	market domain.Market, trader common.Address, side domain.Side,
	shares, tokens uint64,
) map[string]interface{} {
	return map[string]interface{}{
		"proposal_id": market.ProposalId.Hex(),
		"trader":      trader.Hex(),
		"side":        side.String(),
		"shares":      shares,
		"tokens":      tokens,
		"market":      getMarketPayload(market),
	}
}
