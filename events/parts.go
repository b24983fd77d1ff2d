package events

import "encoding/json"

// PartVariant is implemented by every known content part type.
type PartVariant interface {
	partType() string
}

// ContentPart is one entry of a message item's content list. Known
// discriminators decode to a typed variant; anything else is kept as raw JSON
// and re-serialized verbatim.
type ContentPart struct {
	variant PartVariant
	raw     json.RawMessage
}

func NewContentPart(v PartVariant) ContentPart { return ContentPart{variant: v} }

// Variant returns the typed part, or nil when the part is unrecognized.
func (p *ContentPart) Variant() PartVariant { return p.variant }

// Raw returns the original JSON for an unrecognized part.
func (p *ContentPart) Raw() json.RawMessage { return p.raw }

func (p *ContentPart) Type() string {
	if p.variant != nil {
		return p.variant.partType()
	}
	return peekType(p.raw)
}

// Text returns the textual payload of text-bearing parts and transcripts of
// audio parts, or "" for anything else.
func (p *ContentPart) Text() string {
	switch v := p.variant.(type) {
	case *InputTextPart:
		return v.Text
	case *OutputTextPart:
		return v.Text
	case *TextPart:
		return v.Text
	case *InputAudioPart:
		return v.Transcript
	case *OutputAudioPart:
		return v.Transcript
	case *AudioPart:
		return v.Transcript
	}
	return ""
}

func (p ContentPart) MarshalJSON() ([]byte, error) {
	if p.variant != nil {
		return marshalTagged(p.variant.partType(), p.variant)
	}
	if p.raw == nil {
		return []byte("null"), nil
	}
	return p.raw, nil
}

func (p *ContentPart) UnmarshalJSON(data []byte) error {
	decode, ok := partDecoders[peekType(data)]
	if !ok {
		p.variant = nil
		p.raw = append(json.RawMessage(nil), data...)
		return nil
	}
	v, err := decode(data)
	if err != nil {
		p.variant = nil
		p.raw = append(json.RawMessage(nil), data...)
		return nil
	}
	p.variant = v
	p.raw = nil
	return nil
}

var partDecoders = map[string]func(json.RawMessage) (PartVariant, error){
	"input_text":   decodePart[InputTextPart],
	"input_audio":  decodePart[InputAudioPart],
	"input_image":  decodePart[InputImagePart],
	"output_text":  decodePart[OutputTextPart],
	"output_audio": decodePart[OutputAudioPart],
	"text":         decodePart[TextPart],
	"audio":        decodePart[AudioPart],
}

func decodePart[T any, PT interface {
	*T
	PartVariant
}](data json.RawMessage) (PartVariant, error) {
	v := PT(new(T))
	if err := json.Unmarshal(data, v); err != nil {
		return nil, err
	}
	return v, nil
}

type InputTextPart struct {
	Text string `json:"text"`
}

func (*InputTextPart) partType() string { return "input_text" }

// AudioPartFormat names the encoding of an input_audio payload, either as a
// bare string or as a full format object.
type AudioPartFormat struct {
	Name   string
	Object *AudioFormat
}

func (f AudioPartFormat) MarshalJSON() ([]byte, error) {
	if f.Object != nil {
		return json.Marshal(f.Object)
	}
	return json.Marshal(f.Name)
}

func (f *AudioPartFormat) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = AudioPartFormat{Name: s}
		return nil
	}
	var obj AudioFormat
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*f = AudioPartFormat{Object: &obj}
	return nil
}

type InputAudioPart struct {
	Audio      string           `json:"audio,omitempty"`
	Format     *AudioPartFormat `json:"format,omitempty"`
	Transcript string           `json:"transcript,omitempty"`
}

func (*InputAudioPart) partType() string { return "input_audio" }

type InputImagePart struct {
	ImageURL string `json:"image_url"`
	Detail   string `json:"detail,omitempty"`
}

func (*InputImagePart) partType() string { return "input_image" }

type OutputTextPart struct {
	Text string `json:"text"`
}

func (*OutputTextPart) partType() string { return "output_text" }

type OutputAudioPart struct {
	Audio      string `json:"audio,omitempty"`
	Transcript string `json:"transcript,omitempty"`
}

func (*OutputAudioPart) partType() string { return "output_audio" }

type TextPart struct {
	Text string `json:"text"`
}

func (*TextPart) partType() string { return "text" }

type AudioPart struct {
	Audio      string `json:"audio,omitempty"`
	Transcript string `json:"transcript,omitempty"`
}

func (*AudioPart) partType() string { return "audio" }

func InputText(text string) ContentPart {
	return NewContentPart(&InputTextPart{Text: text})
}

func InputAudio(audioB64 string) ContentPart {
	return NewContentPart(&InputAudioPart{Audio: audioB64})
}

func OutputText(text string) ContentPart {
	return NewContentPart(&OutputTextPart{Text: text})
}
