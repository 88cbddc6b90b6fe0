// Package client is a thin http client for the futarchyd REST api. Requests
// to mutating routes are signed with the configured key.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tdex-network/futarchy-daemon/pkg/signature"
)

const defaultTimeout = 30 * time.Second

// APIError is returned for every non 2xx response.
type APIError struct {
	Status  int
	Code    string `json:"code"`
	Message string `json:"error"`
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("request failed with status %d", e.Status)
	}
	return fmt.Sprintf("%s (%s)", e.Message, e.Code)
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	signer     *signature.Signer
	now        func() time.Time
}

// New returns a client for the daemon at baseURL. The signer is optional,
// without one only read routes can be called.
func New(baseURL string, signer *signature.Signer) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %s", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url must have http or https scheme")
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		signer:     signer,
		now:        time.Now,
	}, nil
}

func (c *Client) CreateMarket(
	ctx context.Context, proposalId string, tradingPeriod time.Duration,
) (json.RawMessage, error) {
	return c.signed(ctx, http.MethodPost, "/v1/markets", map[string]string{
		"proposal_id":            proposalId,
		"trading_period_seconds": strconv.FormatInt(int64(tradingPeriod/time.Second), 10),
	})
}

func (c *Client) ListMarkets(ctx context.Context) (json.RawMessage, error) {
	return c.get(ctx, "/v1/markets", nil)
}

func (c *Client) GetMarket(
	ctx context.Context, proposalId string,
) (json.RawMessage, error) {
	return c.get(ctx, marketPath(proposalId, ""), nil)
}

func (c *Client) BuyShares(
	ctx context.Context, proposalId, side string, amount uint64,
) (json.RawMessage, error) {
	return c.signed(ctx, http.MethodPost, marketPath(proposalId, "buy"), tradeBody(side, amount))
}

func (c *Client) SellShares(
	ctx context.Context, proposalId, side string, shareAmount uint64,
) (json.RawMessage, error) {
	return c.signed(ctx, http.MethodPost, marketPath(proposalId, "sell"), tradeBody(side, shareAmount))
}

// Quote previews a trade, tradeType is either buy or sell.
func (c *Client) Quote(
	ctx context.Context, proposalId, tradeType, side string, amount uint64,
) (json.RawMessage, error) {
	return c.get(ctx, marketPath(proposalId, "quote"), url.Values{
		"type":   {tradeType},
		"side":   {side},
		"amount": {strconv.FormatUint(amount, 10)},
	})
}

func (c *Client) ResolveMarket(
	ctx context.Context, proposalId, outcome string,
) (json.RawMessage, error) {
	return c.signed(ctx, http.MethodPost, marketPath(proposalId, "resolve"), map[string]string{
		"outcome": outcome,
	})
}

func (c *Client) ClaimWinnings(
	ctx context.Context, proposalId string,
) (json.RawMessage, error) {
	return c.signed(ctx, http.MethodPost, marketPath(proposalId, "claim"), nil)
}

func (c *Client) GetPosition(
	ctx context.Context, proposalId, trader string,
) (json.RawMessage, error) {
	return c.get(ctx, marketPath(proposalId, "positions/"+trader), nil)
}

func (c *Client) ListPositions(
	ctx context.Context, proposalId string,
) (json.RawMessage, error) {
	return c.get(ctx, marketPath(proposalId, "positions"), nil)
}

func (c *Client) CalculateWinnings(
	ctx context.Context, proposalId, trader string,
) (json.RawMessage, error) {
	return c.get(ctx, marketPath(proposalId, "winnings/"+trader), nil)
}

func (c *Client) GetOracle(ctx context.Context) (json.RawMessage, error) {
	return c.get(ctx, "/v1/oracle", nil)
}

func (c *Client) UpdateOracle(
	ctx context.Context, oracle string,
) (json.RawMessage, error) {
	return c.signed(ctx, http.MethodPut, "/v1/oracle", map[string]string{
		"oracle": oracle,
	})
}

func (c *Client) GetBalance(
	ctx context.Context, address string,
) (json.RawMessage, error) {
	return c.get(ctx, "/v1/balances/"+address, nil)
}

func (c *Client) AddWebhook(
	ctx context.Context, event, endpoint, secret string,
) (json.RawMessage, error) {
	return c.signed(ctx, http.MethodPost, "/v1/webhooks", map[string]string{
		"event":    event,
		"endpoint": endpoint,
		"secret":   secret,
	})
}

func (c *Client) ListWebhooks(
	ctx context.Context, event string,
) (json.RawMessage, error) {
	path := "/v1/webhooks"
	if event != "" {
		path += "?" + url.Values{"event": {event}}.Encode()
	}
	return c.signed(ctx, http.MethodGet, path, nil)
}

func (c *Client) RemoveWebhook(ctx context.Context, id string) error {
	_, err := c.signed(ctx, http.MethodDelete, "/v1/webhooks/"+url.PathEscape(id), nil)
	return err
}

func (c *Client) get(
	ctx context.Context, path string, query url.Values,
) (json.RawMessage, error) {
	if len(query) > 0 {
		path += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	return c.do(req)
}

// signed sends a request signed over the method, the path without query,
// the current timestamp and the json encoded body.
func (c *Client) signed(
	ctx context.Context, method, path string, body interface{},
) (json.RawMessage, error) {
	if c.signer == nil {
		return nil, fmt.Errorf("missing signing key")
	}

	var buf []byte
	if body != nil {
		var err error
		if buf, err = json.Marshal(body); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(
		ctx, method, c.baseURL+path, bytes.NewReader(buf),
	)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	timestamp := c.now().Unix()
	sig, err := c.signer.Sign(method, req.URL.Path, timestamp, buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set(signature.HeaderAddress, c.signer.Address().Hex())
	req.Header.Set(signature.HeaderTimestamp, strconv.FormatInt(timestamp, 10))
	req.Header.Set(signature.HeaderSignature, sig)

	return c.do(req)
}

func (c *Client) do(req *http.Request) (json.RawMessage, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	buf, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		// Proxies may answer with non json bodies.
		_ = json.Unmarshal(buf, apiErr)
		return nil, apiErr
	}
	if len(buf) == 0 {
		return nil, nil
	}
	return json.RawMessage(buf), nil
}

func marketPath(proposalId, action string) string {
	path := "/v1/markets/" + url.PathEscape(proposalId)
	if action != "" {
		path += "/" + action
	}
	return path
}

func tradeBody(side string, amount uint64) map[string]string {
	return map[string]string{
		"side":   side,
		"amount": strconv.FormatUint(amount, 10),
	}
}
