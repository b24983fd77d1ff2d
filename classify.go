package realtime

import "github.com/voicewire/realtime-go/events"

// Event is a coarse classification of an inbound server event, suitable for a
// switch in consumer code. Anything without a dedicated variant comes through
// as Raw.
type Event interface {
	event()
}

type TextDelta struct {
	ResponseID   string
	ItemID       string
	ContentIndex int
	Delta        string
}

type TextDone struct {
	ResponseID   string
	ItemID       string
	ContentIndex int
	Text         string
}

type AudioDelta struct {
	ResponseID   string
	ItemID       string
	ContentIndex int
	Audio        string
}

type AudioDone struct {
	ResponseID   string
	ItemID       string
	ContentIndex int
}

type TranscriptDelta struct {
	ResponseID   string
	ItemID       string
	ContentIndex int
	Delta        string
}

type TranscriptDone struct {
	ResponseID   string
	ItemID       string
	ContentIndex int
	Transcript   string
}

type ContentPartAdded struct {
	ResponseID   string
	ItemID       string
	ContentIndex int
	Part         events.ContentPart
}

type ContentPartDone struct {
	ResponseID   string
	ItemID       string
	ContentIndex int
	Part         events.ContentPart
}

type ToolCallDelta struct {
	ResponseID string
	ItemID     string
	CallID     string
	Delta      string
}

type ToolCall struct {
	ResponseID string
	ItemID     string
	CallID     string
	Name       string
	Arguments  string
}

type InputTranscriptionDelta struct {
	ItemID       string
	ContentIndex int
	Delta        string
}

type InputTranscriptionCompleted struct {
	ItemID       string
	ContentIndex int
	Transcript   string
}

type Error struct {
	Err events.ServerError
}

type Raw struct {
	Event events.ServerEvent
}

func (TextDelta) event()                   {}
func (TextDone) event()                    {}
func (AudioDelta) event()                  {}
func (AudioDone) event()                   {}
func (TranscriptDelta) event()             {}
func (TranscriptDone) event()              {}
func (ContentPartAdded) event()            {}
func (ContentPartDone) event()             {}
func (ToolCallDelta) event()               {}
func (ToolCall) event()                    {}
func (InputTranscriptionDelta) event()     {}
func (InputTranscriptionCompleted) event() {}
func (Error) event()                       {}
func (Raw) event()                         {}

// Classify maps a server event to its coarse variant. It is total: every
// input, including UnknownEvent, yields exactly one Event and no error.
func Classify(ev events.ServerEvent) Event {
	switch e := ev.(type) {
	case *events.TextDeltaEvent:
		return TextDelta{ResponseID: e.ResponseID, ItemID: e.ItemID, ContentIndex: e.ContentIndex, Delta: e.Delta}
	case *events.TextDoneEvent:
		return TextDone{ResponseID: e.ResponseID, ItemID: e.ItemID, ContentIndex: e.ContentIndex, Text: e.Text}
	case *events.AudioDeltaEvent:
		return AudioDelta{ResponseID: e.ResponseID, ItemID: e.ItemID, ContentIndex: e.ContentIndex, Audio: e.Delta}
	case *events.AudioDoneEvent:
		return AudioDone{ResponseID: e.ResponseID, ItemID: e.ItemID, ContentIndex: e.ContentIndex}
	case *events.AudioTranscriptDeltaEvent:
		return TranscriptDelta{ResponseID: e.ResponseID, ItemID: e.ItemID, ContentIndex: e.ContentIndex, Delta: e.Delta}
	case *events.AudioTranscriptDoneEvent:
		return TranscriptDone{ResponseID: e.ResponseID, ItemID: e.ItemID, ContentIndex: e.ContentIndex, Transcript: e.Transcript}
	case *events.ResponseContentPartAddedEvent:
		return ContentPartAdded{ResponseID: e.ResponseID, ItemID: e.ItemID, ContentIndex: e.ContentIndex, Part: e.Part}
	case *events.ResponseContentPartDoneEvent:
		return ContentPartDone{ResponseID: e.ResponseID, ItemID: e.ItemID, ContentIndex: e.ContentIndex, Part: e.Part}
	case *events.FunctionCallArgumentsDeltaEvent:
		return ToolCallDelta{ResponseID: e.ResponseID, ItemID: e.ItemID, CallID: e.CallID, Delta: e.Delta}
	case *events.FunctionCallArgumentsDoneEvent:
		return ToolCall{ResponseID: e.ResponseID, ItemID: e.ItemID, CallID: e.CallID, Name: e.Name, Arguments: e.Arguments}
	case *events.InputTranscriptionDeltaEvent:
		return InputTranscriptionDelta{ItemID: e.ItemID, ContentIndex: e.ContentIndex, Delta: e.Delta}
	case *events.InputTranscriptionCompletedEvent:
		return InputTranscriptionCompleted{ItemID: e.ItemID, ContentIndex: e.ContentIndex, Transcript: e.Transcript}
	case *events.ErrorEvent:
		return Error{Err: e.Error}
	default:
		return Raw{Event: ev}
	}
}
