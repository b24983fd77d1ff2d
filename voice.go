package realtime

// VoiceEvent signals a boundary in the spoken exchange: response lifecycle,
// the assistant starting or stopping audio playback, or the user starting or
// stopping to speak.
type VoiceEvent interface {
	voiceEvent()
}

// ResponseCreated marks the server accepting a new response.
type ResponseCreated struct {
	ResponseID string
}

// ResponseDone marks a response reaching a terminal status.
type ResponseDone struct {
	ResponseID string
	Status     string
}

// AssistantAudioDone marks the end of one audio content part of the active
// response.
type AssistantAudioDone struct {
	ResponseID   string
	ItemID       string
	ContentIndex int
}

// AssistantSpeaking marks the start of assistant audio output.
type AssistantSpeaking struct {
	ResponseID string
}

// AssistantDone marks the end of assistant audio output.
type AssistantDone struct {
	ResponseID string
}

// UserSpeaking marks detected user speech. When auto barge-in is on, the
// active response has already been cancelled by the time this is published.
type UserSpeaking struct {
	ItemID       string
	AudioStartMS int
}

// UserDone marks the end of detected user speech.
type UserDone struct {
	ItemID     string
	AudioEndMS int
}

func (ResponseCreated) voiceEvent()    {}
func (ResponseDone) voiceEvent()       {}
func (AssistantSpeaking) voiceEvent()  {}
func (AssistantAudioDone) voiceEvent() {}
func (AssistantDone) voiceEvent()      {}
func (UserSpeaking) voiceEvent()       {}
func (UserDone) voiceEvent()           {}

// AudioChunk is one decoded PCM16 audio delta of the active response.
type AudioChunk struct {
	ResponseID   string
	ItemID       string
	ContentIndex int
	PCM          []byte
}

// TranscriptChunk is one piece of spoken-word transcript, from either side of
// the conversation.
type TranscriptChunk struct {
	ItemID       string
	ContentIndex int
	Role         string
	Text         string
	IsFinal      bool
}
