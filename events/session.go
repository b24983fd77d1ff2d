package events

import (
	"encoding/json"
	"fmt"
)

const DefaultModel = "gpt-realtime"

// PCMRate is the only sample rate the PCM wire formats accept.
const PCMRate = 24_000

type Modality string

const (
	ModalityText  Modality = "text"
	ModalityAudio Modality = "audio"
)

type SessionKind string

const (
	SessionKindRealtime      SessionKind = "realtime"
	SessionKindTranscription SessionKind = "transcription"
)

const (
	AudioFormatPCM  = "audio/pcm"
	AudioFormatPCMU = "audio/pcmu"
	AudioFormatPCMA = "audio/pcma"
)

// AudioFormat describes one of the wire audio encodings. Rate is only
// meaningful for audio/pcm; zero means the server default (24 kHz).
type AudioFormat struct {
	Type string `json:"type"`
	Rate int    `json:"rate,omitempty"`
}

func PCM24kHz() *AudioFormat {
	return &AudioFormat{Type: AudioFormatPCM, Rate: PCMRate}
}

func (f *AudioFormat) Validate() error {
	if f.Type == AudioFormatPCM && f.Rate != 0 && f.Rate != PCMRate {
		return validationErrorf("audio/pcm rate must be %d, got %d", PCMRate, f.Rate)
	}
	return nil
}

// Voice accepts both wire shapes: a bare string and {"id": "..."}.
type Voice string

func (v *Voice) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*v = Voice(s)
		return nil
	}
	var obj struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*v = Voice(obj.ID)
	return nil
}

// PromptRef accepts both wire shapes: a bare id and {"id": "..."}.
type PromptRef string

func (p *PromptRef) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*p = PromptRef(s)
		return nil
	}
	var obj struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*p = PromptRef(obj.ID)
	return nil
}

// MaxTokens is either a count or the literal "inf".
type MaxTokens struct {
	Count    int
	Infinite bool
}

func MaxTokensCount(n int) *MaxTokens { return &MaxTokens{Count: n} }

func MaxTokensInfinite() *MaxTokens { return &MaxTokens{Infinite: true} }

func (m MaxTokens) MarshalJSON() ([]byte, error) {
	if m.Infinite {
		return []byte(`"inf"`), nil
	}
	return json.Marshal(m.Count)
}

func (m *MaxTokens) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*m = MaxTokens{Count: n}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s != "inf" {
		return fmt.Errorf("max tokens: unexpected value %q", s)
	}
	*m = MaxTokens{Infinite: true}
	return nil
}

// Tracing is either the literal "auto" or an explicit configuration.
type Tracing struct {
	Auto   bool
	Config *TracingConfig
}

type TracingConfig struct {
	WorkflowName string         `json:"workflow_name,omitempty"`
	GroupID      string         `json:"group_id,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

func (t Tracing) MarshalJSON() ([]byte, error) {
	if t.Auto {
		return []byte(`"auto"`), nil
	}
	return json.Marshal(t.Config)
}

func (t *Tracing) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s != "auto" {
			return fmt.Errorf("tracing: unexpected value %q", s)
		}
		*t = Tracing{Auto: true}
		return nil
	}
	var cfg TracingConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return err
	}
	*t = Tracing{Config: &cfg}
	return nil
}

// Truncation is either a strategy keyword ("auto", "disabled") or a
// retention-ratio object.
type Truncation struct {
	Strategy       string
	RetentionRatio *RetentionRatioTruncation
}

type RetentionRatioTruncation struct {
	Type           string       `json:"type"`
	RetentionRatio float64      `json:"retention_ratio"`
	TokenLimits    *TokenLimits `json:"token_limits,omitempty"`
}

type TokenLimits struct {
	PostInstructions int `json:"post_instructions,omitempty"`
}

func (t Truncation) MarshalJSON() ([]byte, error) {
	if t.RetentionRatio != nil {
		return json.Marshal(t.RetentionRatio)
	}
	return json.Marshal(t.Strategy)
}

func (t *Truncation) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*t = Truncation{Strategy: s}
		return nil
	}
	var rr RetentionRatioTruncation
	if err := json.Unmarshal(data, &rr); err != nil {
		return err
	}
	*t = Truncation{RetentionRatio: &rr}
	return nil
}

// TurnDetection holds the VAD configuration. Type is "server_vad" or
// "semantic_vad"; Eagerness only applies to the latter.
type TurnDetection struct {
	Type              string  `json:"type"`
	Threshold         float64 `json:"threshold,omitempty"`
	PrefixPaddingMS   int     `json:"prefix_padding_ms,omitempty"`
	SilenceDurationMS int     `json:"silence_duration_ms,omitempty"`
	IdleTimeoutMS     int     `json:"idle_timeout_ms,omitempty"`
	Eagerness         string  `json:"eagerness,omitempty"`
	CreateResponse    *bool   `json:"create_response,omitempty"`
	InterruptResponse *bool   `json:"interrupt_response,omitempty"`
}

const (
	TurnDetectionServerVAD   = "server_vad"
	TurnDetectionSemanticVAD = "semantic_vad"
)

func ServerVAD() *TurnDetection {
	on := true
	return &TurnDetection{
		Type:              TurnDetectionServerVAD,
		CreateResponse:    &on,
		InterruptResponse: &on,
	}
}

type InputAudioTranscription struct {
	Model    string `json:"model,omitempty"`
	Language string `json:"language,omitempty"`
	Prompt   string `json:"prompt,omitempty"`
}

type NoiseReduction struct {
	Type string `json:"type"`
}

type AudioConfig struct {
	Input  *InputAudioConfig  `json:"input,omitempty"`
	Output *OutputAudioConfig `json:"output,omitempty"`
}

type InputAudioConfig struct {
	Format         *AudioFormat             `json:"format,omitempty"`
	TurnDetection  *TurnDetection           `json:"turn_detection,omitempty"`
	Transcription  *InputAudioTranscription `json:"transcription,omitempty"`
	NoiseReduction *NoiseReduction          `json:"noise_reduction,omitempty"`
}

type OutputAudioConfig struct {
	Format *AudioFormat `json:"format,omitempty"`
	Voice  Voice        `json:"voice,omitempty"`
	Speed  float64      `json:"speed,omitempty"`
}

func (a *AudioConfig) validate() error {
	if a == nil {
		return nil
	}
	if a.Input != nil && a.Input.Format != nil {
		if err := a.Input.Format.Validate(); err != nil {
			return err
		}
	}
	if a.Output != nil && a.Output.Format != nil {
		if err := a.Output.Format.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// SessionConfig is the full session configuration as sent to and reported by
// the server.
type SessionConfig struct {
	Type                    SessionKind              `json:"type,omitempty"`
	Model                   string                   `json:"model,omitempty"`
	OutputModalities        []Modality               `json:"output_modalities,omitempty"`
	Modalities              []Modality               `json:"modalities,omitempty"`
	Include                 []string                 `json:"include,omitempty"`
	Prompt                  *PromptRef               `json:"prompt,omitempty"`
	Truncation              *Truncation              `json:"truncation,omitempty"`
	Instructions            string                   `json:"instructions,omitempty"`
	InputAudioFormat        *AudioFormat             `json:"input_audio_format,omitempty"`
	OutputAudioFormat       *AudioFormat             `json:"output_audio_format,omitempty"`
	InputAudioTranscription *InputAudioTranscription `json:"input_audio_transcription,omitempty"`
	TurnDetection           *TurnDetection           `json:"turn_detection,omitempty"`
	Tools                   []Tool                   `json:"tools,omitempty"`
	ToolChoice              *ToolChoice              `json:"tool_choice,omitempty"`
	Temperature             float64                  `json:"temperature,omitempty"`
	MaxOutputTokens         *MaxTokens               `json:"max_output_tokens,omitempty"`
	Audio                   *AudioConfig             `json:"audio,omitempty"`
	Tracing                 *Tracing                 `json:"tracing,omitempty"`
	Voice                   Voice                    `json:"voice,omitempty"`
	Speed                   float64                  `json:"speed,omitempty"`
}

// Session is the server-side session object. Identity fields and the
// configuration share one flat JSON object on the wire, hence the embedding.
type Session struct {
	ID        string `json:"id,omitempty"`
	Object    string `json:"object,omitempty"`
	ExpiresAt int64  `json:"expires_at,omitempty"`
	SessionConfig
}

// SessionUpdate carries the partial configuration for session.update. The
// server rejects changes to model, voice and session type after creation, so
// those fields are absent here.
type SessionUpdate struct {
	OutputModalities        []Modality               `json:"output_modalities,omitempty"`
	Modalities              []Modality               `json:"modalities,omitempty"`
	Include                 []string                 `json:"include,omitempty"`
	Prompt                  *PromptRef               `json:"prompt,omitempty"`
	Truncation              *Truncation              `json:"truncation,omitempty"`
	Instructions            string                   `json:"instructions,omitempty"`
	InputAudioFormat        *AudioFormat             `json:"input_audio_format,omitempty"`
	OutputAudioFormat       *AudioFormat             `json:"output_audio_format,omitempty"`
	InputAudioTranscription *InputAudioTranscription `json:"input_audio_transcription,omitempty"`
	TurnDetection           *TurnDetection           `json:"turn_detection,omitempty"`
	Tools                   []Tool                   `json:"tools,omitempty"`
	ToolChoice              *ToolChoice              `json:"tool_choice,omitempty"`
	Temperature             float64                  `json:"temperature,omitempty"`
	MaxOutputTokens         *MaxTokens               `json:"max_output_tokens,omitempty"`
	Audio                   *AudioConfig             `json:"audio,omitempty"`
	Tracing                 *Tracing                 `json:"tracing,omitempty"`
	Speed                   float64                  `json:"speed,omitempty"`
}

func (u *SessionUpdate) validate() error {
	if u.InputAudioFormat != nil {
		if err := u.InputAudioFormat.Validate(); err != nil {
			return err
		}
	}
	if u.OutputAudioFormat != nil {
		if err := u.OutputAudioFormat.Validate(); err != nil {
			return err
		}
	}
	if err := u.Audio.validate(); err != nil {
		return err
	}
	for i := range u.Tools {
		if err := u.Tools[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}
