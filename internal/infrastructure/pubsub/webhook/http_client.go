package webhookpubsub

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt"
)

const (
	// maxResponseSize caps the response body kept from a failing endpoint.
	maxResponseSize = 1 << 12

	headerWebhookID = "X-Futarchy-Webhook-Id"
)

// StatusError is returned when a webhook endpoint answers with a non 2xx
// status code.
type StatusError struct {
	SubscriptionID string
	StatusCode     int
	Body           string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf(
		"webhook %s replied with status %d: %s",
		e.SubscriptionID, e.StatusCode, e.Body,
	)
}

// Temporary returns whether the failure is on the endpoint side and could go
// away by itself. Only these count against the circuit breaker.
func (e *StatusError) Temporary() bool {
	return e.StatusCode >= http.StatusInternalServerError ||
		e.StatusCode == http.StatusTooManyRequests
}

type deliveryClient struct {
	httpClient *http.Client
}

func newDeliveryClient(requestTimeout time.Duration) *deliveryClient {
	return &deliveryClient{&http.Client{Timeout: requestTimeout}}
}

// deliver POSTs the json payload to the endpoint of the subscription. Secured
// subscriptions get a short lived HS256 bearer token signed with their secret.
func (c *deliveryClient) deliver(sub Subscription, payload string) error {
	req, err := http.NewRequest(
		http.MethodPost, sub.Endpoint, strings.NewReader(payload),
	)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(headerWebhookID, sub.ID)
	if sub.IsSecured() {
		token, err := newToken(sub.Secret)
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{sub.ID, resp.StatusCode, string(body)}
	}
	return nil
}

func newToken(secret string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.StandardClaims{
		Issuer:    tokenIssuer,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(tokenExpiration).Unix(),
	})
	return token.SignedString([]byte(secret))
}
