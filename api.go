package realtime

import (
	"encoding/binary"

	"github.com/voicewire/realtime-go/events"
)

// Say asks the model to speak the given text verbatim.
func (s *Session) Say(text string) error {
	return s.SendResponse(&events.ResponseConfig{
		Instructions: "Repeat the following text to the user, verbatim: " + text,
	})
}

// Ask adds a user message to the conversation and requests a response.
func (s *Session) Ask(text string) error {
	if err := s.CreateItem(events.UserText(text)); err != nil {
		return err
	}
	return s.Respond()
}

// Respond requests a model response with the session defaults.
func (s *Session) Respond() error {
	return s.Send(events.NewResponseCreate(nil))
}

// SendResponse requests a model response with per-response overrides.
func (s *Session) SendResponse(cfg *events.ResponseConfig) error {
	return s.Send(events.NewResponseCreate(cfg))
}

// CancelResponse cancels a specific response, or the in-progress one when id
// is empty.
func (s *Session) CancelResponse(id string) error {
	return s.Send(events.NewResponseCancel(id))
}

// UpdateSession applies a partial configuration change.
func (s *Session) UpdateSession(update events.SessionUpdate) error {
	return s.Send(events.NewSessionUpdate(update))
}

// CreateItem appends an item to the conversation.
func (s *Session) CreateItem(item events.Item) error {
	return s.Send(events.NewConversationItemCreate(item))
}

// RetrieveItem asks the server to send back the full item, inline audio
// included.
func (s *Session) RetrieveItem(itemID string) error {
	return s.Send(events.NewConversationItemRetrieve(itemID))
}

// DeleteItem removes an item from the conversation.
func (s *Session) DeleteItem(itemID string) error {
	return s.Send(events.NewConversationItemDelete(itemID))
}

// TruncateItem cuts an assistant audio item to the part the user actually
// heard.
func (s *Session) TruncateItem(itemID string, contentIndex, audioEndMS int) error {
	return s.Send(events.NewConversationItemTruncate(itemID, contentIndex, audioEndMS))
}

// AppendAudio appends raw PCM16 bytes to the input audio buffer.
func (s *Session) AppendAudio(pcm []byte) error {
	return s.Send(events.NewInputAudioBufferAppend(events.EncodeAudio(pcm)))
}

// AppendAudioSamples appends PCM16 samples to the input audio buffer.
func (s *Session) AppendAudioSamples(samples []int16) error {
	return s.AppendAudio(samplesToBytes(samples))
}

// CommitAudio commits the input audio buffer into a user item. Only needed
// without server-side turn detection.
func (s *Session) CommitAudio() error {
	return s.Send(events.NewInputAudioBufferCommit())
}

// ClearInputAudio drops all uncommitted input audio.
func (s *Session) ClearInputAudio() error {
	return s.Send(events.NewInputAudioBufferClear())
}

// SendAudio appends one complete utterance and commits it.
func (s *Session) SendAudio(pcm []byte) error {
	if err := s.AppendAudio(pcm); err != nil {
		return err
	}
	return s.CommitAudio()
}

// ClearOutputAudio drops server-buffered output audio.
func (s *Session) ClearOutputAudio() error {
	return s.Send(events.NewOutputAudioBufferClear())
}

// ApproveMCP answers an MCP approval request positively.
func (s *Session) ApproveMCP(requestID string) error {
	return s.CreateItem(events.MCPApprovalResponse(requestID, true, ""))
}

// DenyMCP answers an MCP approval request negatively.
func (s *Session) DenyMCP(requestID, reason string) error {
	return s.CreateItem(events.MCPApprovalResponse(requestID, false, reason))
}

func samplesToBytes(samples []int16) []byte {
	out := make([]byte, len(samples)*2)
	for i, v := range samples {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(v))
	}
	return out
}
