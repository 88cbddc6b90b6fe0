package client_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
	"github.com/tdex-network/futarchy-daemon/pkg/client"
	"github.com/tdex-network/futarchy-daemon/pkg/signature"
)

const testKey = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

type recordedRequest struct {
	method string
	path   string
	query  string
	body   map[string]string
	signer string
}

// newTestServer returns a server that records the last request and checks
// its signature, if any.
func newTestServer(t *testing.T, last *recordedRequest) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			buf, err := io.ReadAll(r.Body)
			require.NoError(t, err)

			*last = recordedRequest{
				method: r.Method,
				path:   r.URL.Path,
				query:  r.URL.RawQuery,
			}
			if len(buf) > 0 {
				require.NoError(t, json.Unmarshal(buf, &last.body))
			}

			if sig := r.Header.Get(signature.HeaderSignature); sig != "" {
				ts, err := strconv.ParseInt(r.Header.Get(signature.HeaderTimestamp), 10, 64)
				require.NoError(t, err)
				addr, err := signature.Recover(r.Method, r.URL.Path, ts, buf, sig)
				require.NoError(t, err)
				require.Equal(t, r.Header.Get(signature.HeaderAddress), addr.Hex())
				last.signer = addr.Hex()
			}

			if r.URL.Path == "/v1/markets/0x02" {
				w.WriteHeader(http.StatusNotFound)
				w.Write([]byte(`{"error":"market not found","code":"MARKET_NOT_FOUND"}`))
				return
			}
			if r.Method == http.MethodDelete {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			w.Write([]byte(`{"ok":true}`))
		},
	))
}

func TestNew(t *testing.T) {
	_, err := client.New("localhost:9945", nil)
	require.Error(t, err)
	_, err = client.New("ftp://localhost:9945", nil)
	require.Error(t, err)
	_, err = client.New("http://localhost:9945/", nil)
	require.NoError(t, err)
}

func TestSignedRequests(t *testing.T) {
	var last recordedRequest
	srv := newTestServer(t, &last)
	defer srv.Close()

	signer, err := signature.NewSigner(testKey)
	require.NoError(t, err)
	c, err := client.New(srv.URL, signer)
	require.NoError(t, err)
	ctx := context.Background()

	resp, err := c.CreateMarket(ctx, "0x01", 24*time.Hour)
	require.NoError(t, err)
	require.JSONEq(t, `{"ok":true}`, string(resp))
	require.Equal(t, http.MethodPost, last.method)
	require.Equal(t, "/v1/markets", last.path)
	require.Equal(t, "86400", last.body["trading_period_seconds"])
	require.Equal(t, signer.Address().Hex(), last.signer)

	_, err = c.BuyShares(ctx, "0x01", "yes", 10)
	require.NoError(t, err)
	require.Equal(t, "/v1/markets/0x01/buy", last.path)
	require.Equal(t, map[string]string{"side": "yes", "amount": "10"}, last.body)

	_, err = c.ClaimWinnings(ctx, "0x01")
	require.NoError(t, err)
	require.Equal(t, "/v1/markets/0x01/claim", last.path)
	require.Nil(t, last.body)
	require.Equal(t, signer.Address().Hex(), last.signer)

	_, err = c.ListWebhooks(ctx, "SHARES_BOUGHT")
	require.NoError(t, err)
	require.Equal(t, "/v1/webhooks", last.path)
	require.Equal(t, "event=SHARES_BOUGHT", last.query)
	require.Equal(t, signer.Address().Hex(), last.signer)

	require.NoError(t, c.RemoveWebhook(ctx, "hook-id"))
	require.Equal(t, http.MethodDelete, last.method)
	require.Equal(t, "/v1/webhooks/hook-id", last.path)
}

func TestReadRequests(t *testing.T) {
	var last recordedRequest
	srv := newTestServer(t, &last)
	defer srv.Close()

	c, err := client.New(srv.URL, nil)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = c.Quote(ctx, "0x01", "sell", "no", 5)
	require.NoError(t, err)
	require.Equal(t, "/v1/markets/0x01/quote", last.path)
	require.Equal(t, "amount=5&side=no&type=sell", last.query)
	require.Empty(t, last.signer)

	_, err = c.ListPositions(ctx, "0x01")
	require.NoError(t, err)
	require.Equal(t, http.MethodGet, last.method)
	require.Equal(t, "/v1/markets/0x01/positions", last.path)

	_, err = c.GetMarket(ctx, "0x02")
	require.Error(t, err)
	apiErr, ok := err.(*client.APIError)
	require.True(t, ok)
	require.Equal(t, http.StatusNotFound, apiErr.Status)
	require.Equal(t, "MARKET_NOT_FOUND", apiErr.Code)

	_, err = c.ResolveMarket(ctx, "0x01", "yes")
	require.Error(t, err)
}

func TestStream(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/v1/stream" || r.URL.Query().Get("event") != "SHARES_SOLD" {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			conn, err := upgrader.Upgrade(w, r, nil)
			if err != nil {
				return
			}
			defer conn.Close()
			conn.WriteMessage(websocket.TextMessage, []byte(`{"event":"SHARES_SOLD"}`))
			conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(
				websocket.CloseNormalClosure, "",
			))
		},
	))
	defer srv.Close()

	c, err := client.New(srv.URL, nil)
	require.NoError(t, err)

	events := make([]string, 0)
	err = c.Stream(context.Background(), "SHARES_SOLD", func(msg json.RawMessage) {
		events = append(events, string(msg))
	})
	require.NoError(t, err)
	require.Equal(t, []string{`{"event":"SHARES_SOLD"}`}, events)

	err = c.Stream(context.Background(), "FOO", func(json.RawMessage) {})
	require.Error(t, err)
}
