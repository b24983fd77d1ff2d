package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"

	"github.com/voicewire/realtime-go/events"
	"github.com/voicewire/realtime-go/tool"
)

const (
	ApiKeyEnvVarNameShort = "OPENAI_KEY"
	ApiKeyEnvVarNameLong  = "OPENAI_API_KEY"
)

const defaultBaseURL = "wss://api.openai.com/v1/realtime"

// ToolCallHandler runs a completed function call when no registry handler
// matches its name.
type ToolCallHandler func(ctx context.Context, call tool.Call) (json.RawMessage, error)

type sessionConfig struct {
	apiKey           string
	baseURL          string
	model            string
	instructions     string
	voice            string
	speed            float64
	temperature      float64
	outputModalities []events.Modality
	turnDetection    *events.TurnDetection
	transcription    *events.InputAudioTranscription
	registry         *tool.Registry
	autoBargeIn      bool
	autoToolResponse bool
	channelCapacity  int
	logger           *slog.Logger
	onText           func(text string)
	onToolCall       ToolCallHandler
	onRawEvent       func(ev events.ServerEvent)
}

// initialUpdate builds the session.update applied right after connecting.
func (c *sessionConfig) initialUpdate() events.SessionUpdate {
	update := events.SessionUpdate{
		Instructions:     c.instructions,
		Temperature:      c.temperature,
		OutputModalities: c.outputModalities,
		TurnDetection:    c.turnDetection,
		Audio: &events.AudioConfig{
			Input: &events.InputAudioConfig{
				Format:        events.PCM24kHz(),
				TurnDetection: c.turnDetection,
				Transcription: c.transcription,
			},
			Output: &events.OutputAudioConfig{
				Format: events.PCM24kHz(),
				Voice:  events.Voice(c.voice),
				Speed:  c.speed,
			},
		},
	}
	if c.registry != nil {
		update.Tools = c.registry.Tools()
		if len(update.Tools) > 0 {
			update.ToolChoice = events.ToolChoiceAuto()
		}
	}
	return update
}

type Option func(*sessionConfig)

func WithKey(apiKey string) Option {
	return func(o *sessionConfig) {
		o.apiKey = apiKey
	}
}

func WithEnvKey(vars ...string) Option {
	return func(o *sessionConfig) {
		for _, envVarName := range vars {
			if k := os.Getenv(envVarName); k != "" {
				o.apiKey = k
				return
			}
		}
	}
}

func WithBaseURL(url string) Option {
	return func(o *sessionConfig) {
		o.baseURL = url
	}
}

func WithModel(model string) Option {
	return func(o *sessionConfig) {
		o.model = model
	}
}

func WithInstructions(instructions string) Option {
	return func(o *sessionConfig) {
		o.instructions = instructions
	}
}

func WithVoice(voice string) Option {
	return func(o *sessionConfig) {
		o.voice = voice
	}
}

func WithSpeed(speed float64) Option {
	return func(o *sessionConfig) {
		o.speed = speed
	}
}

func WithTemperature(temperature float64) Option {
	return func(o *sessionConfig) {
		o.temperature = temperature
	}
}

func WithOutputModalities(modalities ...events.Modality) Option {
	return func(o *sessionConfig) {
		o.outputModalities = modalities
	}
}

func WithTurnDetection(td *events.TurnDetection) Option {
	return func(o *sessionConfig) {
		o.turnDetection = td
	}
}

func WithTranscription(t *events.InputAudioTranscription) Option {
	return func(o *sessionConfig) {
		o.transcription = t
	}
}

func WithTools(registry *tool.Registry) Option {
	return func(o *sessionConfig) {
		o.registry = registry
	}
}

// WithAutoBargeIn controls whether detected user speech interrupts the active
// response automatically.
func WithAutoBargeIn(enabled bool) Option {
	return func(o *sessionConfig) {
		o.autoBargeIn = enabled
	}
}

// WithAutoToolResponse controls whether a new response is requested after a
// tool output is sent back.
func WithAutoToolResponse(enabled bool) Option {
	return func(o *sessionConfig) {
		o.autoToolResponse = enabled
	}
}

func WithChannelCapacity(n int) Option {
	return func(o *sessionConfig) {
		o.channelCapacity = n
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *sessionConfig) {
		o.logger = logger
	}
}

func WithDefaultLogger() Option {
	return WithLogger(slog.Default())
}

// OnText is called with the full text of every completed text part.
func OnText(h func(text string)) Option {
	return func(o *sessionConfig) {
		o.onText = h
	}
}

// OnToolCall handles completed function calls that have no registry handler.
func OnToolCall(h ToolCallHandler) Option {
	return func(o *sessionConfig) {
		o.onToolCall = h
	}
}

// OnRawEvent is called with every inbound server event, unknown ones
// included.
func OnRawEvent(h func(ev events.ServerEvent)) Option {
	return func(o *sessionConfig) {
		o.onRawEvent = h
	}
}

func WithOptions(opts ...Option) Option {
	return func(o *sessionConfig) {
		for _, opt := range opts {
			opt(o)
		}
	}
}

func withDefaults() Option {
	return WithOptions(
		WithLogger(slog.New(slog.DiscardHandler)),
		WithBaseURL(defaultBaseURL),
		WithModel(events.DefaultModel),
		WithVoice("marin"),
		WithSpeed(1.0),
		WithTemperature(0.8),
		WithOutputModalities(events.ModalityAudio),
		WithTurnDetection(events.ServerVAD()),
		WithAutoBargeIn(true),
		WithAutoToolResponse(true),
		WithChannelCapacity(256),
		WithEnvKey(ApiKeyEnvVarNameShort, ApiKeyEnvVarNameLong),
	)
}
