package httpinterface

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	marketservice "github.com/tdex-network/futarchy-daemon/internal/core/application/market"
	"github.com/tdex-network/futarchy-daemon/internal/core/application/pubsub"
	ledgerinmemory "github.com/tdex-network/futarchy-daemon/internal/infrastructure/ledger/inmemory"
	streampubsub "github.com/tdex-network/futarchy-daemon/internal/infrastructure/pubsub/stream"
	webhookpubsub "github.com/tdex-network/futarchy-daemon/internal/infrastructure/pubsub/webhook"
	"github.com/tdex-network/futarchy-daemon/internal/infrastructure/storage/db/inmemory"
	"github.com/tdex-network/futarchy-daemon/pkg/signature"
)

const (
	seedLiquidity  = 1000
	pricePrecision = 1000000
	marketPath     = "/v1/markets/0x01"
)

var startTime = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

// Well known development keys.
var (
	governanceKey = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	oracleKey     = "59c6995e998f97a5a0044966f0945389dc9e86dae88c7a8412f4603b6b78690d"
	traderKey     = "5de4111afa1a4b94908f83103eb1f1706367c2e68ca870fc3fb9a804cdab365a"
)

type testClock struct {
	lock sync.Mutex
	now  time.Time
}

func (c *testClock) Now() time.Time {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.now = c.now.Add(d)
}

type testServer struct {
	handler    http.Handler
	hub        *streampubsub.Hub
	clock      *testClock
	governance *signature.Signer
	oracle     *signature.Signer
	trader     *signature.Signer
}

func newTestServer(t *testing.T) *testServer {
	governance, err := signature.NewSigner(governanceKey)
	require.NoError(t, err)
	oracle, err := signature.NewSigner(oracleKey)
	require.NoError(t, err)
	trader, err := signature.NewSigner(traderKey)
	require.NoError(t, err)

	webhooks, err := webhookpubsub.NewService(webhookpubsub.Options{})
	require.NoError(t, err)
	hub := streampubsub.NewHub(0)
	ps := streampubsub.NewPubSub(webhooks, hub)
	t.Cleanup(func() { ps.Close() })
	pubsubSvc := pubsub.NewService(ps)

	ledger := ledgerinmemory.NewLedger(map[common.Address]uint64{
		governance.Address(): 10 * seedLiquidity,
		trader.Address():     100,
	})
	clock := &testClock{now: startTime}
	marketSvc, err := marketservice.NewService(
		inmemory.NewRepoManager(), ledger, pubsubSvc,
		governance.Address(), oracle.Address(),
		seedLiquidity, pricePrecision, clock.Now,
	)
	require.NoError(t, err)

	handler, err := NewHandler(ServiceOpts{
		MarketSvc:     marketSvc,
		PubSubSvc:     pubsubSvc,
		BalanceReader: ledger,
		EventStream:   hub,
		Now:           clock.Now,
	})
	require.NoError(t, err)

	return &testServer{handler, hub, clock, governance, oracle, trader}
}

func (s *testServer) do(
	t *testing.T, method, path string, body interface{}, signer *signature.Signer,
) *httptest.ResponseRecorder {
	var buf []byte
	if body != nil {
		var err error
		buf, err = json.Marshal(body)
		require.NoError(t, err)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(buf))
	if signer != nil {
		s.sign(t, req, signer, s.clock.Now().Unix(), buf)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) sign(
	t *testing.T, req *http.Request, signer *signature.Signer,
	timestamp int64, body []byte,
) {
	sig, err := signer.Sign(req.Method, req.URL.Path, timestamp, body)
	require.NoError(t, err)
	req.Header.Set(signature.HeaderAddress, signer.Address().Hex())
	req.Header.Set(signature.HeaderTimestamp, strconv.FormatInt(timestamp, 10))
	req.Header.Set(signature.HeaderSignature, sig)
}

func (s *testServer) createMarket(t *testing.T) {
	rec := s.do(t, http.MethodPost, "/v1/markets", map[string]string{
		"proposal_id":            "0x01",
		"trading_period_seconds": "86400",
	}, s.governance)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	require.NoError(t, json.NewDecoder(rec.Body).Decode(v))
}

func requireError(
	t *testing.T, rec *httptest.ResponseRecorder, status int, code string,
) {
	require.Equal(t, status, rec.Code, rec.Body.String())
	var resp errorResponse
	decode(t, rec, &resp)
	require.Equal(t, code, resp.Code)
}

func TestMarketLifecycle(t *testing.T) {
	s := newTestServer(t)
	trader := s.trader.Address().Hex()

	rec := s.do(t, http.MethodPost, "/v1/markets", map[string]string{
		"proposal_id":            "0x01",
		"trading_period_seconds": "86400",
	}, s.governance)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created market
	decode(t, rec, &created)
	require.Equal(t, uint64(seedLiquidity), created.YesReserve)
	require.Equal(t, uint64(seedLiquidity), created.NoShares)
	require.True(t, created.Tradable)
	require.Equal(t, "unresolved", created.Outcome)

	rec = s.do(t, http.MethodPost, "/v1/markets", map[string]string{
		"proposal_id": "0x01",
	}, s.governance)
	requireError(t, rec, http.StatusConflict, "MARKET_ALREADY_EXISTS")

	rec = s.do(t, http.MethodGet, marketPath, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var info market
	decode(t, rec, &info)
	require.NotNil(t, info.YesProbability)
	require.True(t, decimal.NewFromFloat(0.5).Equal(*info.YesProbability))
	require.Equal(t, uint64(pricePrecision), *info.PricePrecision)

	rec = s.do(t, http.MethodGet, marketPath+"/quote?type=buy&side=yes&amount=10", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var quote quoteResponse
	decode(t, rec, &quote)
	require.Equal(t, uint64(9), quote.AmountOut)
	require.Equal(t, "1.1111", quote.EffectivePrice.StringFixed(4))

	rec = s.do(t, http.MethodPost, marketPath+"/buy", map[string]string{
		"side": "yes", "amount": "10",
	}, s.trader)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var bought tradeResponse
	decode(t, rec, &bought)
	require.Equal(t, uint64(9), bought.AmountOut)

	rec = s.do(t, http.MethodGet, "/v1/balances/"+trader, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var balance balanceResponse
	decode(t, rec, &balance)
	require.Equal(t, uint64(90), balance.Balance)

	rec = s.do(t, http.MethodGet, marketPath+"/positions/"+trader, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var pos position
	decode(t, rec, &pos)
	require.Equal(t, uint64(9), pos.YesShares)
	require.Zero(t, pos.NoShares)

	rec = s.do(t, http.MethodGet, marketPath+"/positions", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var positions listPositionsResponse
	decode(t, rec, &positions)
	require.Equal(t, []position{pos}, positions.Positions)

	rec = s.do(t, http.MethodPost, marketPath+"/resolve", map[string]string{
		"outcome": "yes",
	}, s.oracle)
	requireError(t, rec, http.StatusConflict, "TRADING_ONGOING")

	s.clock.Advance(24 * time.Hour)

	rec = s.do(t, http.MethodPost, marketPath+"/buy", map[string]string{
		"side": "yes", "amount": "10",
	}, s.trader)
	requireError(t, rec, http.StatusConflict, "TRADING_CLOSED")

	rec = s.do(t, http.MethodPost, marketPath+"/resolve", map[string]string{
		"outcome": "yes",
	}, s.trader)
	requireError(t, rec, http.StatusForbidden, "UNAUTHORIZED")

	rec = s.do(t, http.MethodPost, marketPath+"/resolve", map[string]string{
		"outcome": "yes",
	}, s.oracle)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resolved market
	decode(t, rec, &resolved)
	require.True(t, resolved.Resolved)
	require.Equal(t, "yes", resolved.Outcome)
	require.Equal(t, s.clock.Now().Unix(), resolved.ResolutionTime)

	rec = s.do(t, http.MethodGet, marketPath+"/winnings/"+trader, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var winnings winningsResponse
	decode(t, rec, &winnings)
	require.NotZero(t, winnings.Amount)

	rec = s.do(t, http.MethodPost, marketPath+"/claim", nil, s.trader)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var claimed claimResponse
	decode(t, rec, &claimed)
	require.Equal(t, winnings.Amount, claimed.Payout)

	rec = s.do(t, http.MethodGet, "/v1/balances/"+trader, nil, nil)
	decode(t, rec, &balance)
	require.Equal(t, 90+claimed.Payout, balance.Balance)

	rec = s.do(t, http.MethodPost, marketPath+"/claim", nil, s.trader)
	requireError(t, rec, http.StatusUnprocessableEntity, "NO_WINNINGS")
}

func TestTradeErrors(t *testing.T) {
	s := newTestServer(t)
	s.createMarket(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   interface{}
		status int
		code   string
	}{
		{
			"invalid_side", http.MethodPost, marketPath + "/buy",
			map[string]string{"side": "maybe", "amount": "10"},
			http.StatusBadRequest, "INVALID_SIDE",
		},
		{
			"insufficient_funds", http.MethodPost, marketPath + "/buy",
			map[string]string{"side": "no", "amount": "1000"},
			http.StatusUnprocessableEntity, "INSUFFICIENT_FUNDS",
		},
		{
			"insufficient_shares", http.MethodPost, marketPath + "/sell",
			map[string]string{"side": "no", "amount": "1"},
			http.StatusUnprocessableEntity, "INSUFFICIENT_SHARES",
		},
		{
			"sell_above_supply", http.MethodPost, marketPath + "/sell",
			map[string]string{"side": "yes", "amount": "5000"},
			http.StatusUnprocessableEntity, "INSUFFICIENT_SHARES",
		},
		{
			"sell_zero", http.MethodPost, marketPath + "/sell",
			map[string]string{"side": "yes", "amount": "0"},
			http.StatusUnprocessableEntity, "ZERO_OUTPUT",
		},
		{
			"unknown_market", http.MethodPost, "/v1/markets/0x02/buy",
			map[string]string{"side": "yes", "amount": "10"},
			http.StatusNotFound, "MARKET_NOT_FOUND",
		},
		{
			"malformed_market_id", http.MethodPost, "/v1/markets/zz/buy",
			map[string]string{"side": "yes", "amount": "10"},
			http.StatusBadRequest, "INVALID_REQUEST",
		},
		{
			"unknown_field", http.MethodPost, marketPath + "/buy",
			map[string]string{"side": "yes", "amount": "10", "slippage": "1"},
			http.StatusBadRequest, "INVALID_REQUEST",
		},
		{
			"claim_before_resolution", http.MethodPost, marketPath + "/claim",
			nil, http.StatusConflict, "MARKET_NOT_RESOLVED",
		},
		{
			"invalid_quote_type", http.MethodGet,
			marketPath + "/quote?type=swap&side=yes&amount=10",
			nil, http.StatusBadRequest, "INVALID_REQUEST",
		},
		{
			"malformed_quote_amount", http.MethodGet,
			marketPath + "/quote?type=buy&side=yes&amount=-1",
			nil, http.StatusBadRequest, "INVALID_REQUEST",
		},
		{
			"malformed_trader", http.MethodGet, marketPath + "/positions/0x1",
			nil, http.StatusBadRequest, "INVALID_REQUEST",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, tt.method, tt.path, tt.body, s.trader)
			requireError(t, rec, tt.status, tt.code)
		})
	}
}

func TestCreateMarketTradingPeriod(t *testing.T) {
	s := newTestServer(t)
	governance := s.governance.Address().Hex()

	for _, period := range []string{"18446744074", "9223372037", "-1"} {
		rec := s.do(t, http.MethodPost, "/v1/markets", map[string]string{
			"proposal_id":            "0x01",
			"trading_period_seconds": period,
		}, s.governance)
		requireError(t, rec, http.StatusBadRequest, "INVALID_TRADING_PERIOD")
	}

	rec := s.do(t, http.MethodGet, marketPath, nil, nil)
	requireError(t, rec, http.StatusNotFound, "MARKET_NOT_FOUND")

	rec = s.do(t, http.MethodGet, "/v1/balances/"+governance, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var balance balanceResponse
	decode(t, rec, &balance)
	require.Equal(t, uint64(10*seedLiquidity), balance.Balance)

	rec = s.do(t, http.MethodPost, "/v1/markets", map[string]string{
		"proposal_id":            "0x01",
		"trading_period_seconds": "9223372036",
	}, s.governance)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created market
	decode(t, rec, &created)
	require.Equal(t, int64(9223372036), created.TradingPeriodSeconds)
	require.True(t, created.Tradable)
}

func TestAuthentication(t *testing.T) {
	s := newTestServer(t)
	body := []byte(`{"proposal_id":"0x01"}`)

	newRequest := func() *http.Request {
		return httptest.NewRequest(
			http.MethodPost, "/v1/markets", bytes.NewReader(body),
		)
	}
	serve := func(req *http.Request) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		s.handler.ServeHTTP(rec, req)
		return rec
	}

	t.Run("missing_headers", func(t *testing.T) {
		rec := serve(newRequest())
		requireError(t, rec, http.StatusUnauthorized, "UNAUTHENTICATED")
	})

	t.Run("expired_timestamp", func(t *testing.T) {
		req := newRequest()
		ts := s.clock.Now().Add(-DefaultSignatureMaxSkew - time.Second).Unix()
		s.sign(t, req, s.governance, ts, body)
		requireError(t, serve(req), http.StatusUnauthorized, "UNAUTHENTICATED")
	})

	t.Run("tampered_body", func(t *testing.T) {
		req := newRequest()
		s.sign(t, req, s.governance, s.clock.Now().Unix(), []byte(`{}`))
		requireError(t, serve(req), http.StatusUnauthorized, "UNAUTHENTICATED")
	})

	t.Run("address_mismatch", func(t *testing.T) {
		req := newRequest()
		s.sign(t, req, s.trader, s.clock.Now().Unix(), body)
		req.Header.Set(signature.HeaderAddress, s.governance.Address().Hex())
		requireError(t, serve(req), http.StatusUnauthorized, "UNAUTHENTICATED")
	})

	t.Run("valid", func(t *testing.T) {
		req := newRequest()
		s.sign(t, req, s.governance, s.clock.Now().Unix(), body)
		rec := serve(req)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	})
}

func TestOracle(t *testing.T) {
	s := newTestServer(t)
	newOracle := s.trader.Address().Hex()

	rec := s.do(t, http.MethodGet, "/v1/oracle", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp oracleResponse
	decode(t, rec, &resp)
	require.Equal(t, s.governance.Address().Hex(), resp.Governance)
	require.Equal(t, s.oracle.Address().Hex(), resp.Oracle)

	rec = s.do(t, http.MethodPut, "/v1/oracle", map[string]string{
		"oracle": newOracle,
	}, s.oracle)
	requireError(t, rec, http.StatusForbidden, "UNAUTHORIZED")

	rec = s.do(t, http.MethodPut, "/v1/oracle", map[string]string{
		"oracle": newOracle,
	}, s.governance)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decode(t, rec, &resp)
	require.Equal(t, newOracle, resp.Oracle)
}

func TestWebhooks(t *testing.T) {
	s := newTestServer(t)
	hook := map[string]string{
		"event":    pubsub.EventSharesBought,
		"endpoint": "http://127.0.0.1:9999/hook",
	}

	rec := s.do(t, http.MethodPost, "/v1/webhooks", hook, s.trader)
	requireError(t, rec, http.StatusForbidden, "UNAUTHORIZED")

	rec = s.do(t, http.MethodPost, "/v1/webhooks", map[string]string{
		"event": "SHARES_SWAPPED", "endpoint": "http://127.0.0.1:9999/hook",
	}, s.governance)
	requireError(t, rec, http.StatusBadRequest, "INVALID_REQUEST")

	rec = s.do(t, http.MethodPost, "/v1/webhooks", hook, s.governance)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var added addWebhookResponse
	decode(t, rec, &added)
	require.NotEmpty(t, added.Id)

	rec = s.do(t, http.MethodGet, "/v1/webhooks", nil, s.governance)
	require.Equal(t, http.StatusOK, rec.Code)
	var list listWebhooksResponse
	decode(t, rec, &list)
	require.Len(t, list.Webhooks, 1)
	require.Equal(t, added.Id, list.Webhooks[0].Id)
	require.False(t, list.Webhooks[0].IsSecured)

	rec = s.do(t, http.MethodDelete, "/v1/webhooks/"+added.Id, nil, s.governance)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodDelete, "/v1/webhooks/"+added.Id, nil, s.governance)
	requireError(t, rec, http.StatusNotFound, "WEBHOOK_NOT_FOUND")
}

func TestMetrics(t *testing.T) {
	s := newTestServer(t)
	s.createMarket(t)

	rec := s.do(t, http.MethodPost, marketPath+"/buy", map[string]string{
		"side": "yes", "amount": "10",
	}, s.trader)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/metrics", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	buf, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	out := string(buf)
	require.True(t, strings.Contains(
		out, `futarchyd_trades_total{side="yes",type="buy"} 1`,
	))
	require.True(t, strings.Contains(
		out, `futarchyd_http_requests_total{code="201",method="POST",route="/v1/markets"} 1`,
	))
}

func TestNewHandler(t *testing.T) {
	_, err := NewHandler(ServiceOpts{})
	require.Error(t, err)
}
