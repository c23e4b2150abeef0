package play

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/alsvik/yomitaisen/internal/duel"
)

// mode is the protocol state of one connection on one endpoint.
type mode interface {
	handle(ctx context.Context, msg duel.ClientMessage)
	// disconnect runs once, after the connection's outbox is closed.
	disconnect()
}

type conn struct {
	ws      *websocket.Conn
	out     *duel.Outbox
	limiter *rate.Limiter
	logger  *slog.Logger
}

func (c *conn) send(msg duel.ServerMessage) {
	c.out.Send(msg)
}

func (h *Handler) serve(w http.ResponseWriter, r *http.Request, newMode func(*conn) mode) {
	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.logger.Error("websocket accept failed", "error", err)
		return
	}
	defer ws.CloseNow()

	c := &conn{
		ws:      ws,
		out:     duel.NewOutbox(h.cfg.OutboxSize),
		limiter: rate.NewLimiter(rate.Limit(h.cfg.MessageRate), h.cfg.MessageBurst),
		logger:  h.logger.With("path", r.URL.Path, "remote", r.RemoteAddr),
	}
	if h.cfg.MessageRate <= 0 {
		c.limiter.SetLimit(rate.Inf)
	}
	m := newMode(c)

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error { return c.writeLoop(ctx) })
	g.Go(func() error { return c.readLoop(ctx, m) })
	err = g.Wait()

	c.out.Close()
	m.disconnect()

	switch {
	case err == nil, errors.Is(err, context.Canceled), websocket.CloseStatus(err) != -1:
		c.logger.Debug("websocket closed", "error", err)
	default:
		c.logger.Warn("websocket ended", "error", err)
	}
}

func (c *conn) readLoop(ctx context.Context, m mode) error {
	for {
		_, data, err := c.ws.Read(ctx)
		if err != nil {
			return err
		}
		if !c.limiter.Allow() {
			c.send(duel.ErrorMsg("slow down"))
			continue
		}

		var msg duel.ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.logger.Debug("malformed message", "error", err)
			continue
		}
		m.handle(ctx, msg)
	}
}

func (c *conn) writeLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-c.out.C():
			if !ok {
				return nil
			}
			if err := wsjson.Write(ctx, c.ws, msg); err != nil {
				return err
			}
		}
	}
}
