package websocket

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	ws "github.com/coder/websocket"
)

const (
	sendBufferSize = 16
	pingInterval   = 30 * time.Second
	writeTimeout   = 10 * time.Second
)

// alwaysSent entities reach every client regardless of its filter: both
// invalidate whatever the client has cached.
var alwaysSent = map[string]bool{"feed": true, "snapshot": true}

// Client is one websocket connection. entities, when non-nil, limits the
// feed to those entity names.
type Client struct {
	hub      *Hub
	conn     *ws.Conn
	send     chan []byte
	entities map[string]bool
}

func NewClient(hub *Hub, conn *ws.Conn, entities []string) *Client {
	c := &Client{
		hub:  hub,
		conn: conn,
		send: make(chan []byte, sendBufferSize),
	}
	for _, e := range entities {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		if c.entities == nil {
			c.entities = make(map[string]bool)
		}
		c.entities[e] = true
	}
	return c
}

func (c *Client) wants(entity string) bool {
	return c.entities == nil || alwaysSent[entity] || c.entities[entity]
}

// Run registers the client and pumps messages until the connection or
// ctx ends.
func (c *Client) Run(ctx context.Context) {
	c.hub.Register(c)
	defer c.hub.Unregister(c)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// The feed is one-way; CloseRead discards client frames and cancels
	// ctx when the peer goes away.
	ctx = c.conn.CloseRead(ctx)
	c.writePump(ctx)
}

func (c *Client) writePump(ctx context.Context) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				c.conn.Close(ws.StatusNormalClosure, "")
				return
			}
			if err := c.write(ctx, msg); err != nil {
				return
			}
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := c.conn.Ping(pingCtx)
			cancel()
			if err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

func (c *Client) write(ctx context.Context, msg []byte) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return c.conn.Write(ctx, ws.MessageText, msg)
}

// HandleWebSocket upgrades GET /ws. ?entities=task,exam narrows the feed.
// Cross-origin upgrades are accepted only from origins; with none
// configured the origin is not checked.
func HandleWebSocket(hub *Hub, origins []string) http.HandlerFunc {
	opts := acceptOptions(origins)
	return func(w http.ResponseWriter, r *http.Request) {
		var entities []string
		if q := r.URL.Query().Get("entities"); q != "" {
			entities = strings.Split(q, ",")
		}

		conn, err := ws.Accept(w, r, opts)
		if err != nil {
			hub.logger.Warn("websocket accept", "error", err)
			return
		}

		NewClient(hub, conn, entities).Run(r.Context())
	}
}

func acceptOptions(origins []string) *ws.AcceptOptions {
	if len(origins) == 0 {
		return &ws.AcceptOptions{InsecureSkipVerify: true}
	}
	return &ws.AcceptOptions{OriginPatterns: originPatterns(origins)}
}

// originPatterns reduces CORS origins such as http://localhost:5173 to
// the host patterns the websocket origin check matches against.
func originPatterns(origins []string) []string {
	var patterns []string
	for _, o := range origins {
		o = strings.TrimSpace(o)
		if o == "" {
			continue
		}
		if u, err := url.Parse(o); err == nil && u.Host != "" {
			o = u.Host
		}
		patterns = append(patterns, o)
	}
	return patterns
}
