// Package gateway is the thin client on the chat platform's event socket.
// It does no domain work: role-change frames are republished to kafka and
// everything else is dropped, so the reconciler stays the only component
// that interprets membership signals.
package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/ashmount/ClanBot/internal/events"
	"github.com/ashmount/ClanBot/internal/pkg/kafka"
	logger "github.com/ashmount/ClanBot/middleware/log"
)

const (
	pingInterval   = 30 * time.Second
	pongWait       = 60 * time.Second
	writeWait      = 10 * time.Second
	reconnectDelay = 5 * time.Second
)

// frame is the platform's envelope for pushed events.
type frame struct {
	Op   string          `json:"op"`
	Data json.RawMessage `json:"d"`
}

// roleChange is the payload of a role add/remove frame.
type roleChange struct {
	RoleID  string `json:"role_id"`
	UserID  string `json:"user_id"`
	Granted bool   `json:"granted"`
}

// Gateway holds one platform socket and the producer it forwards to.
type Gateway struct {
	url      string
	token    string
	topic    string
	producer *kafka.Producer
	log      *logger.Logger
}

func New(url, token, topic string, producer *kafka.Producer, log *logger.Logger) *Gateway {
	return &Gateway{url: url, token: token, topic: topic, producer: producer, log: log}
}

// Run connects and forwards events until the context is cancelled,
// redialing after connection loss.
func (g *Gateway) Run(ctx context.Context) {
	for {
		if err := g.connectAndRead(ctx); err != nil {
			g.log.Warn("gateway connection lost", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(reconnectDelay):
		}
	}
}

func (g *Gateway) connectAndRead(ctx context.Context) error {
	header := http.Header{}
	if g.token != "" {
		header.Set("Authorization", "Bot "+g.token)
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, g.url, header)
	if err != nil {
		return err
	}
	defer conn.Close()
	g.log.Info("gateway connected", zap.String("url", g.url))

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	// Heartbeat loop; the platform drops quiet connections.
	pingCtx, stopPings := context.WithCancel(ctx)
	defer stopPings()
	go func() {
		ticker := time.NewTicker(pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-pingCtx.Done():
				return
			case <-ticker.C:
				deadline := time.Now().Add(writeWait)
				if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
					conn.Close()
					return
				}
			}
		}
	}()

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		g.handleFrame(raw)
	}
}

func (g *Gateway) handleFrame(raw []byte) {
	var f frame
	if err := json.Unmarshal(raw, &f); err != nil {
		g.log.Warn("dropping malformed gateway frame", zap.Error(err))
		return
	}
	if f.Op != "role_change" {
		return
	}

	var change roleChange
	if err := json.Unmarshal(f.Data, &change); err != nil {
		g.log.Warn("dropping malformed role change frame", zap.Error(err))
		return
	}

	event := events.RoleEvent{
		RoleID:     change.RoleID,
		UserID:     change.UserID,
		ObservedAt: time.Now(),
	}
	if change.Granted {
		event.Type = events.RoleGranted
	} else {
		event.Type = events.RoleRevoked
	}

	value, err := json.Marshal(event)
	if err != nil {
		g.log.Error("failed to encode role event", zap.Error(err))
		return
	}
	if _, _, err := g.producer.Produce(g.topic, []byte(event.UserID), value); err != nil {
		g.log.Error("failed to publish role event", zap.Error(err),
			zap.String("role_id", event.RoleID), zap.String("user_id", event.UserID))
	}
}
