package httpinterface

import (
	"math"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/shopspring/decimal"
	"github.com/tdex-network/futarchy-daemon/internal/core/application"
	"github.com/tdex-network/futarchy-daemon/internal/core/domain"
	"github.com/tdex-network/futarchy-daemon/internal/core/ports"
)

// Amounts are encoded as json strings so that 64-bit values survive clients
// that decode numbers as floats.

type createMarketRequest struct {
	ProposalId           string `json:"proposal_id"`
	TradingPeriodSeconds int64  `json:"trading_period_seconds,string"`
}

type tradeRequest struct {
	Side   string `json:"side"`
	Amount uint64 `json:"amount,string"`
}

type tradeResponse struct {
	ProposalId string `json:"proposal_id"`
	Side       string `json:"side"`
	AmountIn   uint64 `json:"amount_in,string"`
	AmountOut  uint64 `json:"amount_out,string"`
}

type resolveMarketRequest struct {
	Outcome string `json:"outcome"`
}

type claimResponse struct {
	ProposalId string `json:"proposal_id"`
	Payout     uint64 `json:"payout,string"`
}

type winningsResponse struct {
	ProposalId string `json:"proposal_id"`
	Trader     string `json:"trader"`
	Amount     uint64 `json:"amount,string"`
}

type market struct {
	ProposalId           string           `json:"proposal_id"`
	CreationTime         int64            `json:"creation_time"`
	TradingPeriodSeconds int64            `json:"trading_period_seconds,string"`
	TradingEnd           int64            `json:"trading_end"`
	Tradable             bool             `json:"tradable"`
	Resolved             bool             `json:"resolved"`
	Outcome              string           `json:"outcome"`
	ResolutionTime       int64            `json:"resolution_time,omitempty"`
	YesReserve           uint64           `json:"yes_reserve,string"`
	NoReserve            uint64           `json:"no_reserve,string"`
	YesShares            uint64           `json:"yes_shares,string"`
	NoShares             uint64           `json:"no_shares,string"`
	YesPrice             *uint64          `json:"yes_price,string,omitempty"`
	NoPrice              *uint64          `json:"no_price,string,omitempty"`
	PricePrecision       *uint64          `json:"price_precision,string,omitempty"`
	YesProbability       *decimal.Decimal `json:"yes_probability,omitempty"`
}

type listMarketsResponse struct {
	Markets []market `json:"markets"`
}

type position struct {
	ProposalId string `json:"proposal_id"`
	Trader     string `json:"trader"`
	YesShares  uint64 `json:"yes_shares,string"`
	NoShares   uint64 `json:"no_shares,string"`
}

type listPositionsResponse struct {
	Positions []position `json:"positions"`
}

type quoteResponse struct {
	ProposalId     string          `json:"proposal_id"`
	Type           string          `json:"type"`
	Side           string          `json:"side"`
	AmountIn       uint64          `json:"amount_in,string"`
	AmountOut      uint64          `json:"amount_out,string"`
	EffectivePrice decimal.Decimal `json:"effective_price"`
}

type oracleResponse struct {
	Governance string `json:"governance"`
	Oracle     string `json:"oracle"`
}

type updateOracleRequest struct {
	Oracle string `json:"oracle"`
}

type balanceResponse struct {
	Address string `json:"address"`
	Balance uint64 `json:"balance,string"`
}

type addWebhookRequest struct {
	Event    string `json:"event"`
	Endpoint string `json:"endpoint"`
	Secret   string `json:"secret"`
}

type addWebhookResponse struct {
	Id string `json:"id"`
}

type webhook struct {
	Id        string `json:"id"`
	Event     string `json:"event"`
	Endpoint  string `json:"endpoint"`
	IsSecured bool   `json:"is_secured"`
}

type listWebhooksResponse struct {
	Webhooks []webhook `json:"webhooks"`
}

func parseProposalId(str string) (common.Hash, error) {
	buf, err := hexutil.Decode(str)
	if err != nil || len(buf) == 0 || len(buf) > common.HashLength {
		return common.Hash{}, errInvalidRequest
	}
	return common.BytesToHash(buf), nil
}

func parseAddress(str string) (common.Address, error) {
	if !common.IsHexAddress(str) {
		return common.Address{}, errInvalidRequest
	}
	return common.HexToAddress(str), nil
}

// maxTradingPeriodSeconds is the longest trading window a time.Duration can
// hold.
const maxTradingPeriodSeconds = math.MaxInt64 / int64(time.Second)

func parseTradingPeriod(seconds int64) (time.Duration, error) {
	if seconds < 0 || seconds > maxTradingPeriodSeconds {
		return 0, domain.ErrMarketInvalidTradingPeriod
	}
	return time.Duration(seconds) * time.Second, nil
}

func unixOrZero(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}

func fromDomainMarket(m domain.Market, now time.Time) market {
	return market{
		ProposalId:           m.ProposalId.Hex(),
		CreationTime:         m.CreationTime.Unix(),
		TradingPeriodSeconds: int64(m.TradingPeriod / time.Second),
		TradingEnd:           m.TradingEnd().Unix(),
		Tradable:             m.IsTradableAt(now),
		Resolved:             m.Resolved,
		Outcome:              m.Outcome.String(),
		ResolutionTime:       unixOrZero(m.ResolutionTime),
		YesReserve:           m.YesReserve,
		NoReserve:            m.NoReserve,
		YesShares:            m.YesShares,
		NoShares:             m.NoShares,
	}
}

func fromMarketInfo(info application.MarketInfo, now time.Time) market {
	m := fromDomainMarket(info.Market, now)
	yesPrice, noPrice, precision := info.YesPrice, info.NoPrice, info.Precision
	m.YesPrice = &yesPrice
	m.NoPrice = &noPrice
	m.PricePrecision = &precision
	probability := info.YesProbability()
	m.YesProbability = &probability
	return m
}

func fromDomainPosition(p domain.Position) position {
	return position{
		ProposalId: p.ProposalId.Hex(),
		Trader:     p.Trader.Hex(),
		YesShares:  p.YesShares,
		NoShares:   p.NoShares,
	}
}

func fromSubscriptions(subs []ports.Subscription) []webhook {
	hooks := make([]webhook, 0, len(subs))
	for _, s := range subs {
		hooks = append(hooks, webhook{
			Id:        s.Id(),
			Event:     s.Topic(),
			Endpoint:  s.NotifyAt(),
			IsSecured: s.IsSecured(),
		})
	}
	return hooks
}
