package httpinterface

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gorilla/mux"
	"github.com/tdex-network/futarchy-daemon/internal/core/application"
	"github.com/tdex-network/futarchy-daemon/internal/core/domain"
	"github.com/tdex-network/futarchy-daemon/internal/core/ports"
)

const (
	tradeTypeBuy  = "buy"
	tradeTypeSell = "sell"
)

type handler struct {
	marketSvc     application.MarketService
	pubsubSvc     application.PubSubService
	balanceReader ports.BalanceReader
	metrics       *metrics
	now           func() time.Time
}

func (h *handler) createMarket(w http.ResponseWriter, r *http.Request) {
	var req createMarketRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	proposalId, err := parseProposalId(req.ProposalId)
	if err != nil {
		writeError(w, err)
		return
	}

	tradingPeriod, err := parseTradingPeriod(req.TradingPeriodSeconds)
	if err != nil {
		writeError(w, err)
		return
	}

	mkt, err := h.marketSvc.CreateMarket(
		r.Context(), callerFromContext(r.Context()), proposalId, tradingPeriod,
	)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, fromDomainMarket(*mkt, h.now()))
}

func (h *handler) listMarkets(w http.ResponseWriter, r *http.Request) {
	infos, err := h.marketSvc.ListMarkets(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	now := h.now()
	markets := make([]market, 0, len(infos))
	for _, info := range infos {
		markets = append(markets, fromMarketInfo(info, now))
	}
	writeJSON(w, http.StatusOK, listMarketsResponse{markets})
}

func (h *handler) getMarket(w http.ResponseWriter, r *http.Request) {
	proposalId, err := parseProposalId(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	info, err := h.marketSvc.GetMarketInfo(r.Context(), proposalId)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, fromMarketInfo(*info, h.now()))
}

func (h *handler) buyShares(w http.ResponseWriter, r *http.Request) {
	h.trade(w, r, tradeTypeBuy)
}

func (h *handler) sellShares(w http.ResponseWriter, r *http.Request) {
	h.trade(w, r, tradeTypeSell)
}

func (h *handler) trade(w http.ResponseWriter, r *http.Request, tradeType string) {
	proposalId, err := parseProposalId(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	var req tradeRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	side, err := domain.ParseSide(req.Side)
	if err != nil {
		writeError(w, err)
		return
	}

	ctx := r.Context()
	caller := callerFromContext(ctx)
	var amountOut, volume uint64
	if tradeType == tradeTypeBuy {
		amountOut, err = h.marketSvc.BuyShares(ctx, caller, proposalId, side, req.Amount)
		volume = req.Amount
	} else {
		amountOut, err = h.marketSvc.SellShares(ctx, caller, proposalId, side, req.Amount)
		volume = amountOut
	}
	if err != nil {
		writeError(w, err)
		return
	}
	h.metrics.observeTrade(tradeType, side.String(), volume)

	writeJSON(w, http.StatusOK, tradeResponse{
		ProposalId: proposalId.Hex(),
		Side:       side.String(),
		AmountIn:   req.Amount,
		AmountOut:  amountOut,
	})
}

func (h *handler) quote(w http.ResponseWriter, r *http.Request) {
	proposalId, err := parseProposalId(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	query := r.URL.Query()
	side, err := domain.ParseSide(query.Get("side"))
	if err != nil {
		writeError(w, err)
		return
	}
	amount, err := strconv.ParseUint(query.Get("amount"), 10, 64)
	if err != nil {
		writeError(w, fmt.Errorf("%w: malformed amount", errInvalidRequest))
		return
	}

	tradeType := strings.ToLower(query.Get("type"))
	var quote *application.Quote
	switch tradeType {
	case tradeTypeBuy:
		quote, err = h.marketSvc.QuoteBuy(r.Context(), proposalId, side, amount)
	case tradeTypeSell:
		quote, err = h.marketSvc.QuoteSell(r.Context(), proposalId, side, amount)
	default:
		err = fmt.Errorf("%w: type must be either buy or sell", errInvalidRequest)
	}
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, quoteResponse{
		ProposalId:     proposalId.Hex(),
		Type:           tradeType,
		Side:           quote.Side.String(),
		AmountIn:       quote.AmountIn,
		AmountOut:      quote.AmountOut,
		EffectivePrice: quote.EffectivePrice,
	})
}

func (h *handler) resolveMarket(w http.ResponseWriter, r *http.Request) {
	proposalId, err := parseProposalId(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	var req resolveMarketRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	outcome, err := domain.ParseOutcome(req.Outcome)
	if err != nil {
		writeError(w, err)
		return
	}

	mkt, err := h.marketSvc.ResolveMarket(
		r.Context(), callerFromContext(r.Context()), proposalId, outcome,
	)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, fromDomainMarket(*mkt, h.now()))
}

func (h *handler) claimWinnings(w http.ResponseWriter, r *http.Request) {
	proposalId, err := parseProposalId(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	payout, err := h.marketSvc.ClaimWinnings(
		r.Context(), callerFromContext(r.Context()), proposalId,
	)
	if err != nil {
		writeError(w, err)
		return
	}
	h.metrics.observeClaim(payout)
	writeJSON(w, http.StatusOK, claimResponse{proposalId.Hex(), payout})
}

func (h *handler) getPosition(w http.ResponseWriter, r *http.Request) {
	proposalId, trader, err := parseMarketAndTrader(r)
	if err != nil {
		writeError(w, err)
		return
	}
	p, err := h.marketSvc.GetPosition(r.Context(), proposalId, trader)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, fromDomainPosition(*p))
}

func (h *handler) listPositions(w http.ResponseWriter, r *http.Request) {
	proposalId, err := parseProposalId(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	positions, err := h.marketSvc.ListPositions(r.Context(), proposalId)
	if err != nil {
		writeError(w, err)
		return
	}
	resp := listPositionsResponse{make([]position, 0, len(positions))}
	for _, p := range positions {
		resp.Positions = append(resp.Positions, fromDomainPosition(p))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handler) calculateWinnings(w http.ResponseWriter, r *http.Request) {
	proposalId, trader, err := parseMarketAndTrader(r)
	if err != nil {
		writeError(w, err)
		return
	}
	amount, err := h.marketSvc.CalculateWinnings(r.Context(), proposalId, trader)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, winningsResponse{
		proposalId.Hex(), trader.Hex(), amount,
	})
}

func (h *handler) getOracle(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, oracleResponse{
		Governance: h.marketSvc.Governance().Hex(),
		Oracle:     h.marketSvc.Oracle().Hex(),
	})
}

func (h *handler) updateOracle(w http.ResponseWriter, r *http.Request) {
	var req updateOracleRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	oracle, err := parseAddress(req.Oracle)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.marketSvc.UpdateOracle(
		r.Context(), callerFromContext(r.Context()), oracle,
	); err != nil {
		writeError(w, err)
		return
	}
	h.getOracle(w, r)
}

func (h *handler) getBalance(w http.ResponseWriter, r *http.Request) {
	if h.balanceReader == nil {
		writeError(w, errNotImplemented)
		return
	}
	account, err := parseAddress(mux.Vars(r)["address"])
	if err != nil {
		writeError(w, err)
		return
	}
	balance, err := h.balanceReader.BalanceOf(r.Context(), account)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, balanceResponse{account.Hex(), balance})
}

// Webhooks are managed by governance only.

func (h *handler) addWebhook(w http.ResponseWriter, r *http.Request) {
	if err := h.requireGovernance(r); err != nil {
		writeError(w, err)
		return
	}
	var req addWebhookRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	id, err := h.pubsubSvc.AddWebhook(r.Context(), req.Event, req.Endpoint, req.Secret)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, addWebhookResponse{id})
}

func (h *handler) removeWebhook(w http.ResponseWriter, r *http.Request) {
	if err := h.requireGovernance(r); err != nil {
		writeError(w, err)
		return
	}
	if err := h.pubsubSvc.RemoveWebhook(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) listWebhooks(w http.ResponseWriter, r *http.Request) {
	if err := h.requireGovernance(r); err != nil {
		writeError(w, err)
		return
	}
	subs, err := h.pubsubSvc.ListWebhooks(r.Context(), r.URL.Query().Get("event"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listWebhooksResponse{fromSubscriptions(subs)})
}

func (h *handler) requireGovernance(r *http.Request) error {
	if callerFromContext(r.Context()) != h.marketSvc.Governance() {
		return domain.ErrUnauthorized
	}
	return nil
}

func parseMarketAndTrader(r *http.Request) (common.Hash, common.Address, error) {
	vars := mux.Vars(r)
	proposalId, err := parseProposalId(vars["id"])
	if err != nil {
		return common.Hash{}, common.Address{}, err
	}
	trader, err := parseAddress(vars["trader"])
	if err != nil {
		return common.Hash{}, common.Address{}, err
	}
	return proposalId, trader, nil
}

// decodeBody decodes the json body of the request into v. An empty body
// leaves v untouched.
func decodeBody(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && err != io.EOF {
		return fmt.Errorf("%w: %s", errInvalidRequest, err)
	}
	return nil
}
