package realtime

import (
	"github.com/voicewire/realtime-go/events"
	"github.com/voicewire/realtime-go/tool"
)

// ResponseBuilder assembles a per-response configuration fluently.
//
//	err := realtime.NewResponse().
//		Instructions("Answer in one sentence.").
//		TextOnly().
//		InputText("What is the capital of France?").
//		Send(session)
type ResponseBuilder struct {
	cfg events.ResponseConfig
}

func NewResponse() *ResponseBuilder {
	return &ResponseBuilder{}
}

func (b *ResponseBuilder) Instructions(instructions string) *ResponseBuilder {
	b.cfg.Instructions = instructions
	return b
}

func (b *ResponseBuilder) Modalities(modalities ...events.Modality) *ResponseBuilder {
	b.cfg.OutputModalities = modalities
	return b
}

func (b *ResponseBuilder) TextOnly() *ResponseBuilder {
	return b.Modalities(events.ModalityText)
}

func (b *ResponseBuilder) Voice(voice string) *ResponseBuilder {
	b.cfg.Voice = events.Voice(voice)
	return b
}

func (b *ResponseBuilder) Temperature(temperature float64) *ResponseBuilder {
	b.cfg.Temperature = temperature
	return b
}

func (b *ResponseBuilder) MaxTokens(n int) *ResponseBuilder {
	b.cfg.MaxOutputTokens = events.MaxTokensCount(n)
	return b
}

func (b *ResponseBuilder) UnlimitedTokens() *ResponseBuilder {
	b.cfg.MaxOutputTokens = events.MaxTokensInfinite()
	return b
}

func (b *ResponseBuilder) Metadata(metadata map[string]any) *ResponseBuilder {
	b.cfg.Metadata = metadata
	return b
}

// OutOfBand detaches the response from the default conversation; its output
// is not added to the session history.
func (b *ResponseBuilder) OutOfBand() *ResponseBuilder {
	b.cfg.Conversation = "none"
	return b
}

func (b *ResponseBuilder) Input(items ...events.Item) *ResponseBuilder {
	b.cfg.Input = append(b.cfg.Input, items...)
	return b
}

func (b *ResponseBuilder) InputText(text string) *ResponseBuilder {
	return b.Input(events.UserText(text))
}

func (b *ResponseBuilder) Tool(t events.Tool) *ResponseBuilder {
	b.cfg.Tools = append(b.cfg.Tools, t)
	return b
}

// Tools exposes every tool of the registry to this response.
func (b *ResponseBuilder) Tools(registry *tool.Registry) *ResponseBuilder {
	b.cfg.Tools = append(b.cfg.Tools, registry.Tools()...)
	return b
}

func (b *ResponseBuilder) ToolChoice(choice *events.ToolChoice) *ResponseBuilder {
	b.cfg.ToolChoice = choice
	return b
}

// Config returns the assembled configuration.
func (b *ResponseBuilder) Config() *events.ResponseConfig {
	cfg := b.cfg
	return &cfg
}

// Send requests the response on the given session.
func (b *ResponseBuilder) Send(s *Session) error {
	return s.SendResponse(b.Config())
}
