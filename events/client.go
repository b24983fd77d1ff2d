package events

// ClientEvent is implemented by every outbound command. Validate runs before
// the event is handed to the connection.
type ClientEvent interface {
	ClientEventType() string
	Validate() error
}

// Outbound discriminators.
const (
	TypeSessionUpdate            = "session.update"
	TypeInputAudioBufferAppend   = "input_audio_buffer.append"
	TypeInputAudioBufferCommit   = "input_audio_buffer.commit"
	TypeInputAudioBufferClear    = "input_audio_buffer.clear"
	TypeConversationItemCreate   = "conversation.item.create"
	TypeConversationItemRetrieve = "conversation.item.retrieve"
	TypeConversationItemTruncate = "conversation.item.truncate"
	TypeConversationItemDelete   = "conversation.item.delete"
	TypeResponseCreate           = "response.create"
	TypeResponseCancel           = "response.cancel"
	TypeOutputAudioBufferClear   = "output_audio_buffer.clear"
)

type SessionUpdateEvent struct {
	BaseEvent
	Session SessionUpdate `json:"session"`
}

func NewSessionUpdate(update SessionUpdate) *SessionUpdateEvent {
	return &SessionUpdateEvent{
		BaseEvent: NewBaseEvent(TypeSessionUpdate),
		Session:   update,
	}
}

func (e *SessionUpdateEvent) ClientEventType() string { return TypeSessionUpdate }
func (e *SessionUpdateEvent) Validate() error         { return e.Session.validate() }

type InputAudioBufferAppendEvent struct {
	BaseEvent
	Audio string `json:"audio"`
}

// NewInputAudioBufferAppend takes base64-encoded audio in the session's input
// format.
func NewInputAudioBufferAppend(audioB64 string) *InputAudioBufferAppendEvent {
	return &InputAudioBufferAppendEvent{
		BaseEvent: NewBaseEvent(TypeInputAudioBufferAppend),
		Audio:     audioB64,
	}
}

func (e *InputAudioBufferAppendEvent) ClientEventType() string { return TypeInputAudioBufferAppend }
func (e *InputAudioBufferAppendEvent) Validate() error         { return ValidateBase64Audio(e.Audio) }

type InputAudioBufferCommitEvent struct {
	BaseEvent
}

func NewInputAudioBufferCommit() *InputAudioBufferCommitEvent {
	return &InputAudioBufferCommitEvent{BaseEvent: NewBaseEvent(TypeInputAudioBufferCommit)}
}

func (e *InputAudioBufferCommitEvent) ClientEventType() string { return TypeInputAudioBufferCommit }
func (e *InputAudioBufferCommitEvent) Validate() error         { return nil }

type InputAudioBufferClearEvent struct {
	BaseEvent
}

func NewInputAudioBufferClear() *InputAudioBufferClearEvent {
	return &InputAudioBufferClearEvent{BaseEvent: NewBaseEvent(TypeInputAudioBufferClear)}
}

func (e *InputAudioBufferClearEvent) ClientEventType() string { return TypeInputAudioBufferClear }
func (e *InputAudioBufferClearEvent) Validate() error         { return nil }

type ConversationItemCreateEvent struct {
	BaseEvent
	PreviousItemID string `json:"previous_item_id,omitempty"`
	Item           Item   `json:"item"`
}

func NewConversationItemCreate(item Item) *ConversationItemCreateEvent {
	return &ConversationItemCreateEvent{
		BaseEvent: NewBaseEvent(TypeConversationItemCreate),
		Item:      item,
	}
}

func (e *ConversationItemCreateEvent) ClientEventType() string { return TypeConversationItemCreate }

func (e *ConversationItemCreateEvent) Validate() error {
	if m, ok := e.Item.Variant().(*MessageItem); ok {
		for i := range m.Content {
			if a, ok := m.Content[i].Variant().(*InputAudioPart); ok && a.Audio != "" {
				if err := ValidateBase64Audio(a.Audio); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

type ConversationItemRetrieveEvent struct {
	BaseEvent
	ItemID string `json:"item_id"`
}

func NewConversationItemRetrieve(itemID string) *ConversationItemRetrieveEvent {
	return &ConversationItemRetrieveEvent{
		BaseEvent: NewBaseEvent(TypeConversationItemRetrieve),
		ItemID:    itemID,
	}
}

func (e *ConversationItemRetrieveEvent) ClientEventType() string { return TypeConversationItemRetrieve }

func (e *ConversationItemRetrieveEvent) Validate() error {
	if e.ItemID == "" {
		return validationErrorf("conversation.item.retrieve: item_id is required")
	}
	return nil
}

type ConversationItemTruncateEvent struct {
	BaseEvent
	ItemID       string `json:"item_id"`
	ContentIndex int    `json:"content_index"`
	AudioEndMS   int    `json:"audio_end_ms"`
}

func NewConversationItemTruncate(itemID string, contentIndex, audioEndMS int) *ConversationItemTruncateEvent {
	return &ConversationItemTruncateEvent{
		BaseEvent:    NewBaseEvent(TypeConversationItemTruncate),
		ItemID:       itemID,
		ContentIndex: contentIndex,
		AudioEndMS:   audioEndMS,
	}
}

func (e *ConversationItemTruncateEvent) ClientEventType() string { return TypeConversationItemTruncate }

func (e *ConversationItemTruncateEvent) Validate() error {
	if e.ItemID == "" {
		return validationErrorf("conversation.item.truncate: item_id is required")
	}
	if e.AudioEndMS < 0 {
		return validationErrorf("conversation.item.truncate: audio_end_ms must not be negative")
	}
	return nil
}

type ConversationItemDeleteEvent struct {
	BaseEvent
	ItemID string `json:"item_id"`
}

func NewConversationItemDelete(itemID string) *ConversationItemDeleteEvent {
	return &ConversationItemDeleteEvent{
		BaseEvent: NewBaseEvent(TypeConversationItemDelete),
		ItemID:    itemID,
	}
}

func (e *ConversationItemDeleteEvent) ClientEventType() string { return TypeConversationItemDelete }

func (e *ConversationItemDeleteEvent) Validate() error {
	if e.ItemID == "" {
		return validationErrorf("conversation.item.delete: item_id is required")
	}
	return nil
}

type ResponseCreateEvent struct {
	BaseEvent
	Response *ResponseConfig `json:"response,omitempty"`
}

func NewResponseCreate(cfg *ResponseConfig) *ResponseCreateEvent {
	return &ResponseCreateEvent{
		BaseEvent: NewBaseEvent(TypeResponseCreate),
		Response:  cfg,
	}
}

func (e *ResponseCreateEvent) ClientEventType() string { return TypeResponseCreate }

func (e *ResponseCreateEvent) Validate() error {
	if e.Response == nil {
		return nil
	}
	for i := range e.Response.Tools {
		if err := e.Response.Tools[i].Validate(); err != nil {
			return err
		}
	}
	if a := e.Response.Audio; a != nil {
		if err := a.validate(); err != nil {
			return err
		}
	}
	return nil
}

type ResponseCancelEvent struct {
	BaseEvent
	ResponseID string `json:"response_id,omitempty"`
}

// NewResponseCancel cancels a specific response, or the in-progress one when
// responseID is empty.
func NewResponseCancel(responseID string) *ResponseCancelEvent {
	return &ResponseCancelEvent{
		BaseEvent:  NewBaseEvent(TypeResponseCancel),
		ResponseID: responseID,
	}
}

func (e *ResponseCancelEvent) ClientEventType() string { return TypeResponseCancel }
func (e *ResponseCancelEvent) Validate() error         { return nil }

type OutputAudioBufferClearEvent struct {
	BaseEvent
}

func NewOutputAudioBufferClear() *OutputAudioBufferClearEvent {
	return &OutputAudioBufferClearEvent{BaseEvent: NewBaseEvent(TypeOutputAudioBufferClear)}
}

func (e *OutputAudioBufferClearEvent) ClientEventType() string { return TypeOutputAudioBufferClear }
func (e *OutputAudioBufferClearEvent) Validate() error         { return nil }
