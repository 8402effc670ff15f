package gateway

import (
	"context"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/gorilla/websocket"

	"meet-registration-portal/models"
)

// wsSubscription reads change frames off one websocket until unsubscribed
// or the connection drops. After Unsubscribe returns, no further callbacks
// are delivered.
type wsSubscription struct {
	conn   *websocket.Conn
	once   sync.Once
	closed chan struct{}
}

func (s *wsSubscription) Unsubscribe() {
	s.once.Do(func() {
		close(s.closed)
		_ = s.conn.Close()
	})
}

func (c *RESTClient) subscribe(ctx context.Context, query url.Values, onChange func(models.ChangeEvent)) (Subscription, error) {
	u, err := c.endpoint("/ws", query)
	if err != nil {
		return nil, err
	}
	// Same host and path, websocket scheme.
	wsURL := strings.Replace(u, "http", "ws", 1)

	header := http.Header{}
	header.Set("X-Service-Token", c.serviceToken)
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, wsURL, header)
	if err != nil {
		if resp != nil {
			_ = resp.Body.Close()
		}
		return nil, err
	}

	sub := &wsSubscription{conn: conn, closed: make(chan struct{})}
	go func() {
		for {
			var frame wireChange
			if err := conn.ReadJSON(&frame); err != nil {
				select {
				case <-sub.closed:
					// deliberate shutdown, stay quiet
				default:
					log.Printf("⚠️ [GATEWAY] Change feed closed: %v", err)
				}
				return
			}
			select {
			case <-sub.closed:
				return
			default:
			}
			onChange(fromWireChange(frame))
		}
	}()
	return sub, nil
}

// SubscribeToTeamChanges attaches to the change feed filtered to one team.
func (c *RESTClient) SubscribeToTeamChanges(ctx context.Context, teamID string, onChange func(models.ChangeEvent)) (Subscription, error) {
	return c.subscribe(ctx, url.Values{"team_id": {teamID}}, onChange)
}

// SubscribeToAllChanges attaches to the unscoped firehose (admin view).
func (c *RESTClient) SubscribeToAllChanges(ctx context.Context, onChange func(models.ChangeEvent)) (Subscription, error) {
	return c.subscribe(ctx, nil, onChange)
}
