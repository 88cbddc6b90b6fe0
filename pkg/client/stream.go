package client

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"
)

// Stream connects to the event stream of the daemon and calls onEvent for
// every received event until ctx is done or the connection drops. An empty
// event means all events.
func (c *Client) Stream(
	ctx context.Context, event string, onEvent func(json.RawMessage),
) error {
	wsURL := "ws" + strings.TrimPrefix(c.baseURL, "http") + "/v1/stream"
	if event != "" {
		wsURL += "?" + url.Values{"event": {event}}.Encode()
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		if resp != nil && resp.StatusCode >= 300 {
			return &APIError{Status: resp.StatusCode}
		}
		return err
	}
	defer conn.Close()

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(
				err, websocket.CloseNormalClosure, websocket.CloseGoingAway,
			) {
				return nil
			}
			return err
		}
		onEvent(json.RawMessage(msg))
	}
}
