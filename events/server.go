package events

import "encoding/json"

// ServerEvent is implemented by every inbound notification.
type ServerEvent interface {
	EventType() string
}

// ParseServerEvent decodes one inbound frame. It never fails: an unrecognized
// discriminator or a malformed known event yields an *UnknownEvent that keeps
// the verbatim payload.
func ParseServerEvent(data []byte) ServerEvent {
	decode, ok := serverDecoders[peekType(data)]
	if !ok {
		return unknown(data)
	}
	ev, err := decode(data)
	if err != nil {
		return unknown(data)
	}
	return ev
}

// UnknownEvent carries a server event this client does not model. Marshal
// re-emits the original bytes unchanged.
type UnknownEvent struct {
	Raw json.RawMessage
}

func unknown(data []byte) *UnknownEvent {
	return &UnknownEvent{Raw: append(json.RawMessage(nil), data...)}
}

func (e *UnknownEvent) EventType() string           { return peekType(e.Raw) }
func (e UnknownEvent) MarshalJSON() ([]byte, error) { return e.Raw, nil }

func (e *UnknownEvent) UnmarshalJSON(d []byte) error {
	e.Raw = append(json.RawMessage(nil), d...)
	return nil
}

var serverDecoders = map[string]func(json.RawMessage) (ServerEvent, error){
	TypeError:                         decodeServer[ErrorEvent],
	TypeSessionCreated:                decodeServer[SessionCreatedEvent],
	TypeSessionUpdated:                decodeServer[SessionUpdatedEvent],
	TypeConversationItemAdded:         decodeServer[ConversationItemAddedEvent],
	TypeConversationItemDone:          decodeServer[ConversationItemDoneEvent],
	TypeConversationItemRetrieved:     decodeServer[ConversationItemRetrievedEvent],
	TypeConversationItemDeleted:       decodeServer[ConversationItemDeletedEvent],
	TypeConversationItemTruncated:     decodeServer[ConversationItemTruncatedEvent],
	TypeInputAudioBufferCommitted:     decodeServer[InputAudioBufferCommittedEvent],
	TypeInputAudioBufferCleared:       decodeServer[InputAudioBufferClearedEvent],
	TypeInputAudioBufferSpeechStarted: decodeServer[SpeechStartedEvent],
	TypeInputAudioBufferSpeechStopped: decodeServer[SpeechStoppedEvent],
	TypeInputAudioBufferTimeout:       decodeServer[InputAudioBufferTimeoutEvent],
	TypeInputAudioBufferDTMF:          decodeServer[DTMFEvent],
	TypeOutputAudioBufferStarted:      decodeServer[OutputAudioBufferStartedEvent],
	TypeOutputAudioBufferStopped:      decodeServer[OutputAudioBufferStoppedEvent],
	TypeOutputAudioBufferCleared:      decodeServer[OutputAudioBufferClearedEvent],
	TypeInputTranscriptionDelta:       decodeServer[InputTranscriptionDeltaEvent],
	TypeInputTranscriptionSegment:     decodeServer[InputTranscriptionSegmentEvent],
	TypeInputTranscriptionFailed:      decodeServer[InputTranscriptionFailedEvent],
	TypeInputTranscriptionCompleted:   decodeServer[InputTranscriptionCompletedEvent],
	TypeMCPListToolsInProgress:        decodeServer[MCPListToolsInProgressEvent],
	TypeMCPListToolsCompleted:         decodeServer[MCPListToolsCompletedEvent],
	TypeMCPListToolsFailed:            decodeServer[MCPListToolsFailedEvent],
	TypeResponseCreated:               decodeServer[ResponseCreatedEvent],
	TypeResponseDone:                  decodeServer[ResponseDoneEvent],
	TypeResponseOutputItemAdded:       decodeServer[ResponseOutputItemAddedEvent],
	TypeResponseOutputItemDone:        decodeServer[ResponseOutputItemDoneEvent],
	TypeResponseContentPartAdded:      decodeServer[ResponseContentPartAddedEvent],
	TypeResponseContentPartDone:       decodeServer[ResponseContentPartDoneEvent],
	TypeResponseTextDelta:             decodeServer[TextDeltaEvent],
	TypeResponseTextDone:              decodeServer[TextDoneEvent],
	TypeResponseAudioDelta:            decodeServer[AudioDeltaEvent],
	TypeResponseAudioDone:             decodeServer[AudioDoneEvent],
	TypeResponseAudioTranscriptDelta:  decodeServer[AudioTranscriptDeltaEvent],
	TypeResponseAudioTranscriptDone:   decodeServer[AudioTranscriptDoneEvent],
	TypeFunctionCallArgumentsDelta:    decodeServer[FunctionCallArgumentsDeltaEvent],
	TypeFunctionCallArgumentsDone:     decodeServer[FunctionCallArgumentsDoneEvent],
	TypeMCPCallArgumentsDelta:         decodeServer[MCPCallArgumentsDeltaEvent],
	TypeMCPCallArgumentsDone:          decodeServer[MCPCallArgumentsDoneEvent],
	TypeMCPCallInProgress:             decodeServer[MCPCallInProgressEvent],
	TypeMCPCallCompleted:              decodeServer[MCPCallCompletedEvent],
	TypeMCPCallFailed:                 decodeServer[MCPCallFailedEvent],
	TypeRateLimitsUpdated:             decodeServer[RateLimitsUpdatedEvent],
}

func decodeServer[T any, PT interface {
	*T
	ServerEvent
}](data json.RawMessage) (ServerEvent, error) {
	v := PT(new(T))
	if err := json.Unmarshal(data, v); err != nil {
		return nil, err
	}
	return v, nil
}

// Inbound discriminators.
const (
	TypeError                         = "error"
	TypeSessionCreated                = "session.created"
	TypeSessionUpdated                = "session.updated"
	TypeConversationItemAdded         = "conversation.item.added"
	TypeConversationItemDone          = "conversation.item.done"
	TypeConversationItemRetrieved     = "conversation.item.retrieved"
	TypeConversationItemDeleted       = "conversation.item.deleted"
	TypeConversationItemTruncated     = "conversation.item.truncated"
	TypeInputAudioBufferCommitted     = "input_audio_buffer.committed"
	TypeInputAudioBufferCleared       = "input_audio_buffer.cleared"
	TypeInputAudioBufferSpeechStarted = "input_audio_buffer.speech_started"
	TypeInputAudioBufferSpeechStopped = "input_audio_buffer.speech_stopped"
	TypeInputAudioBufferTimeout       = "input_audio_buffer.timeout_triggered"
	TypeInputAudioBufferDTMF          = "input_audio_buffer.dtmf_event_received"
	TypeOutputAudioBufferStarted      = "output_audio_buffer.started"
	TypeOutputAudioBufferStopped      = "output_audio_buffer.stopped"
	TypeOutputAudioBufferCleared      = "output_audio_buffer.cleared"
	TypeInputTranscriptionDelta       = "conversation.item.input_audio_transcription.delta"
	TypeInputTranscriptionSegment     = "conversation.item.input_audio_transcription.segment"
	TypeInputTranscriptionFailed      = "conversation.item.input_audio_transcription.failed"
	TypeInputTranscriptionCompleted   = "conversation.item.input_audio_transcription.completed"
	TypeMCPListToolsInProgress        = "mcp_list_tools.in_progress"
	TypeMCPListToolsCompleted         = "mcp_list_tools.completed"
	TypeMCPListToolsFailed            = "mcp_list_tools.failed"
	TypeResponseCreated               = "response.created"
	TypeResponseDone                  = "response.done"
	TypeResponseOutputItemAdded       = "response.output_item.added"
	TypeResponseOutputItemDone        = "response.output_item.done"
	TypeResponseContentPartAdded      = "response.content_part.added"
	TypeResponseContentPartDone       = "response.content_part.done"
	TypeResponseTextDelta             = "response.output_text.delta"
	TypeResponseTextDone              = "response.output_text.done"
	TypeResponseAudioDelta            = "response.output_audio.delta"
	TypeResponseAudioDone             = "response.output_audio.done"
	TypeResponseAudioTranscriptDelta  = "response.output_audio_transcript.delta"
	TypeResponseAudioTranscriptDone   = "response.output_audio_transcript.done"
	TypeFunctionCallArgumentsDelta    = "response.function_call_arguments.delta"
	TypeFunctionCallArgumentsDone     = "response.function_call_arguments.done"
	TypeMCPCallArgumentsDelta         = "response.mcp_call_arguments.delta"
	TypeMCPCallArgumentsDone          = "response.mcp_call_arguments.done"
	TypeMCPCallInProgress             = "response.mcp_call.in_progress"
	TypeMCPCallCompleted              = "response.mcp_call.completed"
	TypeMCPCallFailed                 = "response.mcp_call.failed"
	TypeRateLimitsUpdated             = "rate_limits.updated"
)

type ErrorEvent struct {
	EventID string      `json:"event_id,omitempty"`
	Error   ServerError `json:"error"`
}

func (*ErrorEvent) EventType() string { return TypeError }

type SessionCreatedEvent struct {
	EventID string  `json:"event_id,omitempty"`
	Session Session `json:"session"`
}

func (*SessionCreatedEvent) EventType() string { return TypeSessionCreated }

type SessionUpdatedEvent struct {
	EventID string  `json:"event_id,omitempty"`
	Session Session `json:"session"`
}

func (*SessionUpdatedEvent) EventType() string { return TypeSessionUpdated }

type ConversationItemAddedEvent struct {
	EventID        string `json:"event_id,omitempty"`
	PreviousItemID string `json:"previous_item_id,omitempty"`
	Item           Item   `json:"item"`
}

func (*ConversationItemAddedEvent) EventType() string { return TypeConversationItemAdded }

type ConversationItemDoneEvent struct {
	EventID        string `json:"event_id,omitempty"`
	PreviousItemID string `json:"previous_item_id,omitempty"`
	Item           Item   `json:"item"`
}

func (*ConversationItemDoneEvent) EventType() string { return TypeConversationItemDone }

type ConversationItemRetrievedEvent struct {
	EventID string `json:"event_id,omitempty"`
	Item    Item   `json:"item"`
}

func (*ConversationItemRetrievedEvent) EventType() string { return TypeConversationItemRetrieved }

type ConversationItemDeletedEvent struct {
	EventID string `json:"event_id,omitempty"`
	ItemID  string `json:"item_id"`
}

func (*ConversationItemDeletedEvent) EventType() string { return TypeConversationItemDeleted }

type ConversationItemTruncatedEvent struct {
	EventID      string `json:"event_id,omitempty"`
	ItemID       string `json:"item_id"`
	ContentIndex int    `json:"content_index"`
	AudioEndMS   int    `json:"audio_end_ms"`
}

func (*ConversationItemTruncatedEvent) EventType() string { return TypeConversationItemTruncated }

type InputAudioBufferCommittedEvent struct {
	EventID        string `json:"event_id,omitempty"`
	PreviousItemID string `json:"previous_item_id,omitempty"`
	ItemID         string `json:"item_id"`
}

func (*InputAudioBufferCommittedEvent) EventType() string { return TypeInputAudioBufferCommitted }

type InputAudioBufferClearedEvent struct {
	EventID string `json:"event_id,omitempty"`
}

func (*InputAudioBufferClearedEvent) EventType() string { return TypeInputAudioBufferCleared }

type SpeechStartedEvent struct {
	EventID      string `json:"event_id,omitempty"`
	AudioStartMS int    `json:"audio_start_ms"`
	ItemID       string `json:"item_id"`
}

func (*SpeechStartedEvent) EventType() string { return TypeInputAudioBufferSpeechStarted }

type SpeechStoppedEvent struct {
	EventID    string `json:"event_id,omitempty"`
	AudioEndMS int    `json:"audio_end_ms"`
	ItemID     string `json:"item_id"`
}

func (*SpeechStoppedEvent) EventType() string { return TypeInputAudioBufferSpeechStopped }

type InputAudioBufferTimeoutEvent struct {
	EventID      string `json:"event_id,omitempty"`
	AudioStartMS int    `json:"audio_start_ms"`
	AudioEndMS   int    `json:"audio_end_ms"`
	ItemID       string `json:"item_id"`
}

func (*InputAudioBufferTimeoutEvent) EventType() string { return TypeInputAudioBufferTimeout }

// DTMFEvent reports a telephone keypad digit received on a SIP call.
type DTMFEvent struct {
	EventID string `json:"event_id,omitempty"`
	Digit   string `json:"digit"`
}

func (*DTMFEvent) EventType() string { return TypeInputAudioBufferDTMF }

type OutputAudioBufferStartedEvent struct {
	EventID    string `json:"event_id,omitempty"`
	ResponseID string `json:"response_id"`
}

func (*OutputAudioBufferStartedEvent) EventType() string { return TypeOutputAudioBufferStarted }

type OutputAudioBufferStoppedEvent struct {
	EventID    string `json:"event_id,omitempty"`
	ResponseID string `json:"response_id"`
}

func (*OutputAudioBufferStoppedEvent) EventType() string { return TypeOutputAudioBufferStopped }

type OutputAudioBufferClearedEvent struct {
	EventID    string `json:"event_id,omitempty"`
	ResponseID string `json:"response_id,omitempty"`
}

func (*OutputAudioBufferClearedEvent) EventType() string { return TypeOutputAudioBufferCleared }

type InputTranscriptionDeltaEvent struct {
	EventID      string `json:"event_id,omitempty"`
	ItemID       string `json:"item_id"`
	ContentIndex int    `json:"content_index,omitempty"`
	Delta        string `json:"delta,omitempty"`
}

func (*InputTranscriptionDeltaEvent) EventType() string { return TypeInputTranscriptionDelta }

type InputTranscriptionSegmentEvent struct {
	EventID      string  `json:"event_id,omitempty"`
	ItemID       string  `json:"item_id"`
	ContentIndex int     `json:"content_index,omitempty"`
	ID           string  `json:"id,omitempty"`
	Speaker      string  `json:"speaker,omitempty"`
	Text         string  `json:"text"`
	Start        float64 `json:"start,omitempty"`
	End          float64 `json:"end,omitempty"`
}

func (*InputTranscriptionSegmentEvent) EventType() string { return TypeInputTranscriptionSegment }

type InputTranscriptionFailedEvent struct {
	EventID      string      `json:"event_id,omitempty"`
	ItemID       string      `json:"item_id"`
	ContentIndex int         `json:"content_index,omitempty"`
	Error        ServerError `json:"error"`
}

func (*InputTranscriptionFailedEvent) EventType() string { return TypeInputTranscriptionFailed }

type InputTranscriptionCompletedEvent struct {
	EventID      string `json:"event_id,omitempty"`
	ItemID       string `json:"item_id"`
	ContentIndex int    `json:"content_index,omitempty"`
	Transcript   string `json:"transcript"`
	Usage        *Usage `json:"usage,omitempty"`
}

func (*InputTranscriptionCompletedEvent) EventType() string { return TypeInputTranscriptionCompleted }

type MCPListToolsInProgressEvent struct {
	EventID string `json:"event_id,omitempty"`
	ItemID  string `json:"item_id,omitempty"`
}

func (*MCPListToolsInProgressEvent) EventType() string { return TypeMCPListToolsInProgress }

type MCPListToolsCompletedEvent struct {
	EventID string `json:"event_id,omitempty"`
	ItemID  string `json:"item_id,omitempty"`
}

func (*MCPListToolsCompletedEvent) EventType() string { return TypeMCPListToolsCompleted }

type MCPListToolsFailedEvent struct {
	EventID string `json:"event_id,omitempty"`
	ItemID  string `json:"item_id,omitempty"`
}

func (*MCPListToolsFailedEvent) EventType() string { return TypeMCPListToolsFailed }

type ResponseCreatedEvent struct {
	EventID  string   `json:"event_id,omitempty"`
	Response Response `json:"response"`
}

func (*ResponseCreatedEvent) EventType() string { return TypeResponseCreated }

type ResponseDoneEvent struct {
	EventID  string   `json:"event_id,omitempty"`
	Response Response `json:"response"`
}

func (*ResponseDoneEvent) EventType() string { return TypeResponseDone }

type ResponseOutputItemAddedEvent struct {
	EventID     string `json:"event_id,omitempty"`
	ResponseID  string `json:"response_id"`
	OutputIndex int    `json:"output_index"`
	Item        Item   `json:"item"`
}

func (*ResponseOutputItemAddedEvent) EventType() string { return TypeResponseOutputItemAdded }

type ResponseOutputItemDoneEvent struct {
	EventID     string `json:"event_id,omitempty"`
	ResponseID  string `json:"response_id"`
	OutputIndex int    `json:"output_index"`
	Item        Item   `json:"item"`
}

func (*ResponseOutputItemDoneEvent) EventType() string { return TypeResponseOutputItemDone }

type ResponseContentPartAddedEvent struct {
	EventID      string      `json:"event_id,omitempty"`
	ResponseID   string      `json:"response_id"`
	ItemID       string      `json:"item_id"`
	OutputIndex  int         `json:"output_index"`
	ContentIndex int         `json:"content_index"`
	Part         ContentPart `json:"part"`
}

func (*ResponseContentPartAddedEvent) EventType() string { return TypeResponseContentPartAdded }

type ResponseContentPartDoneEvent struct {
	EventID      string      `json:"event_id,omitempty"`
	ResponseID   string      `json:"response_id"`
	ItemID       string      `json:"item_id"`
	OutputIndex  int         `json:"output_index"`
	ContentIndex int         `json:"content_index"`
	Part         ContentPart `json:"part"`
}

func (*ResponseContentPartDoneEvent) EventType() string { return TypeResponseContentPartDone }

type TextDeltaEvent struct {
	EventID      string `json:"event_id,omitempty"`
	ResponseID   string `json:"response_id"`
	ItemID       string `json:"item_id"`
	OutputIndex  int    `json:"output_index"`
	ContentIndex int    `json:"content_index"`
	Delta        string `json:"delta"`
}

func (*TextDeltaEvent) EventType() string { return TypeResponseTextDelta }

type TextDoneEvent struct {
	EventID      string `json:"event_id,omitempty"`
	ResponseID   string `json:"response_id"`
	ItemID       string `json:"item_id"`
	OutputIndex  int    `json:"output_index"`
	ContentIndex int    `json:"content_index"`
	Text         string `json:"text"`
}

func (*TextDoneEvent) EventType() string { return TypeResponseTextDone }

type AudioDeltaEvent struct {
	EventID      string `json:"event_id,omitempty"`
	ResponseID   string `json:"response_id"`
	ItemID       string `json:"item_id"`
	OutputIndex  int    `json:"output_index"`
	ContentIndex int    `json:"content_index"`
	Delta        string `json:"delta"`
}

func (*AudioDeltaEvent) EventType() string { return TypeResponseAudioDelta }

// Bytes decodes the base64 PCM payload.
func (e *AudioDeltaEvent) Bytes() ([]byte, error) {
	return decodeBase64(e.Delta)
}

type AudioDoneEvent struct {
	EventID      string `json:"event_id,omitempty"`
	ResponseID   string `json:"response_id"`
	ItemID       string `json:"item_id"`
	OutputIndex  int    `json:"output_index"`
	ContentIndex int    `json:"content_index"`
}

func (*AudioDoneEvent) EventType() string { return TypeResponseAudioDone }

type AudioTranscriptDeltaEvent struct {
	EventID      string `json:"event_id,omitempty"`
	ResponseID   string `json:"response_id"`
	ItemID       string `json:"item_id"`
	OutputIndex  int    `json:"output_index"`
	ContentIndex int    `json:"content_index"`
	Delta        string `json:"delta"`
}

func (*AudioTranscriptDeltaEvent) EventType() string { return TypeResponseAudioTranscriptDelta }

type AudioTranscriptDoneEvent struct {
	EventID      string `json:"event_id,omitempty"`
	ResponseID   string `json:"response_id"`
	ItemID       string `json:"item_id"`
	OutputIndex  int    `json:"output_index"`
	ContentIndex int    `json:"content_index"`
	Transcript   string `json:"transcript"`
}

func (*AudioTranscriptDoneEvent) EventType() string { return TypeResponseAudioTranscriptDone }

type FunctionCallArgumentsDeltaEvent struct {
	EventID     string `json:"event_id,omitempty"`
	ResponseID  string `json:"response_id"`
	ItemID      string `json:"item_id"`
	OutputIndex int    `json:"output_index"`
	CallID      string `json:"call_id"`
	Delta       string `json:"delta"`
}

func (*FunctionCallArgumentsDeltaEvent) EventType() string { return TypeFunctionCallArgumentsDelta }

type FunctionCallArgumentsDoneEvent struct {
	EventID     string `json:"event_id,omitempty"`
	ResponseID  string `json:"response_id"`
	ItemID      string `json:"item_id"`
	OutputIndex int    `json:"output_index"`
	CallID      string `json:"call_id"`
	Name        string `json:"name,omitempty"`
	Arguments   string `json:"arguments"`
}

func (*FunctionCallArgumentsDoneEvent) EventType() string { return TypeFunctionCallArgumentsDone }

type MCPCallArgumentsDeltaEvent struct {
	EventID     string `json:"event_id,omitempty"`
	ResponseID  string `json:"response_id"`
	ItemID      string `json:"item_id"`
	OutputIndex int    `json:"output_index"`
	Delta       string `json:"delta"`
}

func (*MCPCallArgumentsDeltaEvent) EventType() string { return TypeMCPCallArgumentsDelta }

type MCPCallArgumentsDoneEvent struct {
	EventID     string `json:"event_id,omitempty"`
	ResponseID  string `json:"response_id"`
	ItemID      string `json:"item_id"`
	OutputIndex int    `json:"output_index"`
	Arguments   string `json:"arguments"`
}

func (*MCPCallArgumentsDoneEvent) EventType() string { return TypeMCPCallArgumentsDone }

type MCPCallInProgressEvent struct {
	EventID     string `json:"event_id,omitempty"`
	ItemID      string `json:"item_id"`
	OutputIndex int    `json:"output_index,omitempty"`
}

func (*MCPCallInProgressEvent) EventType() string { return TypeMCPCallInProgress }

type MCPCallCompletedEvent struct {
	EventID     string `json:"event_id,omitempty"`
	ItemID      string `json:"item_id"`
	OutputIndex int    `json:"output_index,omitempty"`
}

func (*MCPCallCompletedEvent) EventType() string { return TypeMCPCallCompleted }

type MCPCallFailedEvent struct {
	EventID     string `json:"event_id,omitempty"`
	ItemID      string `json:"item_id"`
	OutputIndex int    `json:"output_index,omitempty"`
}

func (*MCPCallFailedEvent) EventType() string { return TypeMCPCallFailed }

type RateLimitsUpdatedEvent struct {
	EventID    string      `json:"event_id,omitempty"`
	RateLimits []RateLimit `json:"rate_limits"`
}

func (*RateLimitsUpdatedEvent) EventType() string { return TypeRateLimitsUpdated }
