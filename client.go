package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/voicewire/realtime-go/events"
	"github.com/voicewire/realtime-go/internal/websocket"
)

// Connect dials the realtime endpoint, starts a session on the connection and
// applies the configured session parameters.
func Connect(ctx context.Context, opts ...Option) (*Session, error) {
	cfg := &sessionConfig{}
	withDefaults()(cfg)
	WithOptions(opts...)(cfg)

	if cfg.apiKey == "" {
		return nil, fmt.Errorf("missing api key")
	}

	headers := http.Header{}
	headers.Add("Authorization", "Bearer "+cfg.apiKey)

	ws, err := websocket.Connect(ctx, websocket.Config{
		URL:     fmt.Sprintf("%s?model=%s", cfg.baseURL, cfg.model),
		Headers: headers,
		Logger:  cfg.logger,
	})
	if err != nil {
		return nil, err
	}

	session := NewSession(&wsTransport{ws: ws}, WithOptions(opts...))

	if err := session.UpdateSession(cfg.initialUpdate()); err != nil {
		_ = session.Close()
		return nil, fmt.Errorf("apply session config: %w", err)
	}

	return session, nil
}

// wsTransport binds the websocket client to the session's Transport.
type wsTransport struct {
	ws *websocket.Client
}

func (t *wsTransport) Send(ev events.ClientEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode client event: %w", err)
	}
	return t.ws.WriteText(data)
}

func (t *wsTransport) Next() (events.ServerEvent, error) {
	data, err := t.ws.Next()
	if err != nil {
		return nil, err
	}
	return events.ParseServerEvent(data), nil
}

func (t *wsTransport) Close() error {
	return t.ws.Close()
}
