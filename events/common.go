package events

import (
	"encoding/json"
	"fmt"

	nanoid "github.com/matoous/go-nanoid/v2"
)

// BaseEvent carries the fields shared by every outbound client event.
type BaseEvent struct {
	EventID string `json:"event_id,omitempty"`
	Type    string `json:"type"`
}

func NewBaseEvent(eventType string) BaseEvent {
	id, err := nanoid.New()
	if err != nil {
		panic(err)
	}
	return BaseEvent{
		EventID: id,
		Type:    eventType,
	}
}

// ServerError is an error reported by the server, either top-level or nested
// inside another event. It is protocol data, not a transport failure.
type ServerError struct {
	Type    string `json:"type"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
	Param   string `json:"param,omitempty"`
	EventID string `json:"event_id,omitempty"`
}

func (e *ServerError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// ValidationError rejects an outbound event before it reaches the connection.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid client event: " + e.Reason
}

func validationErrorf(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// marshalTagged marshals v and injects the type discriminator as the first
// key. Variant structs do not carry their own "type" field, so a value
// constructed in code always serializes with the right tag.
func marshalTagged(typ string, v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(b)+len(typ)+11)
	out = append(out, `{"type":"`...)
	out = append(out, typ...)
	out = append(out, '"')
	if len(b) > 2 {
		out = append(out, ',')
		out = append(out, b[1:len(b)-1]...)
	}
	out = append(out, '}')
	return out, nil
}

func peekType(data []byte) string {
	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return ""
	}
	return env.Type
}
