package realtime

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/voicewire/realtime-go/events"
	"github.com/voicewire/realtime-go/tool"
)

type mockTransport struct {
	mu        sync.Mutex
	sent      []events.ClientEvent
	incoming  chan events.ServerEvent
	closed    chan struct{}
	closeOnce sync.Once
}

func newMockTransport() *mockTransport {
	return &mockTransport{
		incoming: make(chan events.ServerEvent, 64),
		closed:   make(chan struct{}),
	}
}

func (m *mockTransport) Send(ev events.ClientEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, ev)
	return nil
}

func (m *mockTransport) Next() (events.ServerEvent, error) {
	select {
	case ev, ok := <-m.incoming:
		if !ok {
			return nil, io.EOF
		}
		return ev, nil
	case <-m.closed:
		return nil, io.EOF
	}
}

func (m *mockTransport) Close() error {
	m.closeOnce.Do(func() {
		close(m.closed)
	})
	return nil
}

func (m *mockTransport) deliver(ev events.ServerEvent) {
	m.incoming <- ev
}

func (m *mockTransport) waitSent(t *testing.T, n int) []events.ClientEvent {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		m.mu.Lock()
		if len(m.sent) >= n {
			out := append([]events.ClientEvent(nil), m.sent...)
			m.mu.Unlock()
			return out
		}
		m.mu.Unlock()
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d sent events", n)
	return nil
}

func (m *mockTransport) sentEvents() []events.ClientEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]events.ClientEvent(nil), m.sent...)
}

func recv[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(time.Second):
		t.Fatal("timed out waiting on channel")
	}
	panic("unreachable")
}

func TestSession_ToolCallSendsOutputAndFollowUp(t *testing.T) {
	registry := tool.NewRegistry()
	require.NoError(t, tool.Register(registry, "get_weather", "", func(_ context.Context, args struct {
		City string `json:"city"`
	}) (map[string]any, error) {
		return map[string]any{"temp_c": 21.5, "city": args.City}, nil
	}))

	mt := newMockTransport()
	s := NewSession(mt, WithTools(registry))
	defer s.Close()

	mt.deliver(&events.FunctionCallArgumentsDoneEvent{
		ResponseID: "resp_1",
		ItemID:     "item_1",
		CallID:     "call_1",
		Name:       "get_weather",
		Arguments:  `{"city":"Berlin"}`,
	})

	sent := mt.waitSent(t, 2)

	create, ok := sent[0].(*events.ConversationItemCreateEvent)
	require.True(t, ok)
	output, ok := create.Item.Variant().(*events.FunctionCallOutputItem)
	require.True(t, ok)
	require.Equal(t, "call_1", output.CallID)
	require.JSONEq(t, `{"temp_c":21.5,"city":"Berlin"}`, output.Output)

	_, ok = sent[1].(*events.ResponseCreateEvent)
	require.True(t, ok)
}

func TestSession_ToolErrorBecomesErrorOutput(t *testing.T) {
	registry := tool.NewRegistry()
	require.NoError(t, tool.Register(registry, "explode", "", func(_ context.Context, _ struct{}) (struct{}, error) {
		return struct{}{}, errors.New("boom")
	}))

	mt := newMockTransport()
	s := NewSession(mt, WithTools(registry))
	defer s.Close()

	mt.deliver(&events.FunctionCallArgumentsDoneEvent{CallID: "call_1", Name: "explode", Arguments: `{}`})

	sent := mt.waitSent(t, 1)
	create, ok := sent[0].(*events.ConversationItemCreateEvent)
	require.True(t, ok)
	output := create.Item.Variant().(*events.FunctionCallOutputItem)
	require.JSONEq(t, `{"error":"boom"}`, output.Output)

	// A failed call never triggers the automatic follow-up response.
	time.Sleep(20 * time.Millisecond)
	require.Len(t, mt.sentEvents(), 1)
}

func TestSession_UnknownToolReportsErrorOutput(t *testing.T) {
	registry := tool.NewRegistry()
	require.NoError(t, tool.Register(registry, "get_weather", "", func(_ context.Context, _ struct{}) (struct{}, error) {
		return struct{}{}, nil
	}))

	mt := newMockTransport()
	s := NewSession(mt, WithTools(registry))
	defer s.Close()

	mt.deliver(&events.FunctionCallArgumentsDoneEvent{CallID: "call_7", Name: "get_wether", Arguments: `{}`})

	sent := mt.waitSent(t, 1)
	create, ok := sent[0].(*events.ConversationItemCreateEvent)
	require.True(t, ok)
	output := create.Item.Variant().(*events.FunctionCallOutputItem)
	require.Equal(t, "call_7", output.CallID)
	require.Contains(t, output.Output, "not registered")
	require.Contains(t, output.Output, "get_wether")

	// Error output only; no follow-up response.
	time.Sleep(20 * time.Millisecond)
	require.Len(t, mt.sentEvents(), 1)
}

func TestSession_OnToolCallOverridesRegistry(t *testing.T) {
	registry := tool.NewRegistry()
	require.NoError(t, tool.Register(registry, "lookup", "", func(_ context.Context, _ struct{}) (map[string]any, error) {
		return map[string]any{"source": "registry"}, nil
	}))

	mt := newMockTransport()
	s := NewSession(mt, WithTools(registry), WithAutoToolResponse(false),
		OnToolCall(func(_ context.Context, call tool.Call) (json.RawMessage, error) {
			return json.RawMessage(`{"source":"handler"}`), nil
		}))
	defer s.Close()

	mt.deliver(&events.FunctionCallArgumentsDoneEvent{CallID: "call_3", Name: "lookup", Arguments: `{}`})

	sent := mt.waitSent(t, 1)
	output := sent[0].(*events.ConversationItemCreateEvent).Item.Variant().(*events.FunctionCallOutputItem)
	require.JSONEq(t, `{"source":"handler"}`, output.Output)
}

func TestSession_OnToolCallFallback(t *testing.T) {
	mt := newMockTransport()
	s := NewSession(mt, WithAutoToolResponse(false), OnToolCall(func(_ context.Context, call tool.Call) (json.RawMessage, error) {
		require.Equal(t, "custom", call.Name)
		return json.RawMessage(`{"handled":true}`), nil
	}))
	defer s.Close()

	mt.deliver(&events.FunctionCallArgumentsDoneEvent{CallID: "call_9", Name: "custom", Arguments: `{}`})

	sent := mt.waitSent(t, 1)
	output := sent[0].(*events.ConversationItemCreateEvent).Item.Variant().(*events.FunctionCallOutputItem)
	require.Equal(t, "call_9", output.CallID)
	require.JSONEq(t, `{"handled":true}`, output.Output)
}

func TestSession_AutoBargeInClearsThenCancels(t *testing.T) {
	mt := newMockTransport()
	s := NewSession(mt)
	defer s.Close()

	mt.deliver(&events.ResponseCreatedEvent{Response: events.Response{ID: "R"}})
	recv(t, s.Events())

	created, ok := recv(t, s.Voice()).(ResponseCreated)
	require.True(t, ok)
	require.Equal(t, "R", created.ResponseID)

	mt.deliver(&events.SpeechStartedEvent{ItemID: "item_1", AudioStartMS: 120})

	sent := mt.waitSent(t, 2)
	_, ok = sent[0].(*events.OutputAudioBufferClearEvent)
	require.True(t, ok)
	cancel, ok := sent[1].(*events.ResponseCancelEvent)
	require.True(t, ok)
	require.Equal(t, "R", cancel.ResponseID)

	speaking, ok := recv(t, s.Voice()).(UserSpeaking)
	require.True(t, ok)
	require.Equal(t, "item_1", speaking.ItemID)
}

func TestSession_AutoBargeInDisabled(t *testing.T) {
	mt := newMockTransport()
	s := NewSession(mt, WithAutoBargeIn(false))
	defer s.Close()

	mt.deliver(&events.ResponseCreatedEvent{Response: events.Response{ID: "R"}})
	require.IsType(t, ResponseCreated{}, recv(t, s.Voice()))
	mt.deliver(&events.SpeechStartedEvent{ItemID: "item_1"})
	require.IsType(t, UserSpeaking{}, recv(t, s.Voice()))

	require.Empty(t, mt.sentEvents())
}

func TestSession_BargeInExternal(t *testing.T) {
	mt := newMockTransport()
	s := NewSession(mt)
	defer s.Close()

	mt.deliver(&events.ResponseCreatedEvent{Response: events.Response{ID: "R"}})
	recv(t, s.Events())

	require.NoError(t, s.BargeIn())

	sent := mt.waitSent(t, 2)
	require.IsType(t, &events.OutputAudioBufferClearEvent{}, sent[0])
	require.Equal(t, "R", sent[1].(*events.ResponseCancelEvent).ResponseID)

	// Second barge-in finds nothing active: playback is still cleared, but
	// there is no response left to cancel.
	require.NoError(t, s.BargeIn())
	sent = mt.waitSent(t, 3)
	require.IsType(t, &events.OutputAudioBufferClearEvent{}, sent[2])
	time.Sleep(20 * time.Millisecond)
	require.Len(t, mt.sentEvents(), 3)
}

func TestSession_AudioGatedOnActiveResponse(t *testing.T) {
	mt := newMockTransport()
	s := NewSession(mt)
	defer s.Close()

	pcm := []byte{1, 2, 3, 4}
	encoded := base64.StdEncoding.EncodeToString(pcm)

	mt.deliver(&events.ResponseCreatedEvent{Response: events.Response{ID: "R1"}})
	recv(t, s.Events())

	// A delta for a stale response id is dropped from the audio stream.
	mt.deliver(&events.AudioDeltaEvent{ResponseID: "R2", Delta: encoded})
	recv(t, s.Events())
	select {
	case chunk := <-s.Audio():
		t.Fatalf("unexpected audio chunk: %+v", chunk)
	default:
	}

	mt.deliver(&events.AudioDeltaEvent{ResponseID: "R1", ItemID: "item_1", Delta: encoded})
	chunk := recv(t, s.Audio())
	require.Equal(t, "R1", chunk.ResponseID)
	require.Equal(t, pcm, chunk.PCM)
}

func TestSession_TrailingAudioAfterResponseDone(t *testing.T) {
	mt := newMockTransport()
	s := NewSession(mt)
	defer s.Close()

	mt.deliver(&events.ResponseCreatedEvent{Response: events.Response{ID: "R"}})
	recv(t, s.Events())
	mt.deliver(&events.ResponseDoneEvent{Response: events.Response{ID: "R"}})
	recv(t, s.Events())

	// With no response active anymore, late deltas for the finished response
	// still reach the audio stream.
	mt.deliver(&events.AudioDeltaEvent{ResponseID: "R", Delta: "AAAA"})
	chunk := recv(t, s.Audio())
	require.Equal(t, "R", chunk.ResponseID)
	require.Equal(t, []byte{0, 0, 0}, chunk.PCM)
}

func TestSession_TranscriptDoneGated(t *testing.T) {
	mt := newMockTransport()
	s := NewSession(mt)
	defer s.Close()

	mt.deliver(&events.ResponseCreatedEvent{Response: events.Response{ID: "R1"}})
	recv(t, s.Events())

	// A final transcript for a cancelled response is dropped like its audio.
	mt.deliver(&events.AudioTranscriptDoneEvent{ResponseID: "R0", ItemID: "item_0", Transcript: "stale"})
	recv(t, s.Events())
	select {
	case c := <-s.Transcripts():
		t.Fatalf("unexpected transcript: %+v", c)
	default:
	}

	mt.deliver(&events.AudioTranscriptDoneEvent{ResponseID: "R1", ItemID: "item_1", Transcript: "current"})
	c := recv(t, s.Transcripts())
	require.Equal(t, "current", c.Text)
	require.True(t, c.IsFinal)
}

func TestSession_VoiceResponseLifecycle(t *testing.T) {
	mt := newMockTransport()
	s := NewSession(mt)
	defer s.Close()

	mt.deliver(&events.ResponseCreatedEvent{Response: events.Response{ID: "R"}})
	created, ok := recv(t, s.Voice()).(ResponseCreated)
	require.True(t, ok)
	require.Equal(t, "R", created.ResponseID)

	mt.deliver(&events.AudioDoneEvent{ResponseID: "R", ItemID: "item_1", ContentIndex: 0})
	audioDone, ok := recv(t, s.Voice()).(AssistantAudioDone)
	require.True(t, ok)
	require.Equal(t, "item_1", audioDone.ItemID)

	mt.deliver(&events.ResponseDoneEvent{Response: events.Response{ID: "R", Status: "completed"}})
	done, ok := recv(t, s.Voice()).(ResponseDone)
	require.True(t, ok)
	require.Equal(t, "R", done.ResponseID)
	require.Equal(t, "completed", done.Status)
}

func TestSession_AudioDoneGatedOnActiveResponse(t *testing.T) {
	mt := newMockTransport()
	s := NewSession(mt)
	defer s.Close()

	mt.deliver(&events.ResponseCreatedEvent{Response: events.Response{ID: "R1"}})
	require.IsType(t, ResponseCreated{}, recv(t, s.Voice()))

	mt.deliver(&events.AudioDoneEvent{ResponseID: "R0", ItemID: "item_0"})
	recv(t, s.Events())
	select {
	case v := <-s.Voice():
		t.Fatalf("unexpected voice event: %+v", v)
	default:
	}

	mt.deliver(&events.AudioDoneEvent{ResponseID: "R1", ItemID: "item_1"})
	audioDone, ok := recv(t, s.Voice()).(AssistantAudioDone)
	require.True(t, ok)
	require.Equal(t, "R1", audioDone.ResponseID)
}

func TestSession_BargeInWithoutActiveResponse(t *testing.T) {
	mt := newMockTransport()
	s := NewSession(mt)
	defer s.Close()

	// Nothing active: playback still gets cleared, nothing gets cancelled.
	require.NoError(t, s.BargeIn())

	sent := mt.waitSent(t, 1)
	require.IsType(t, &events.OutputAudioBufferClearEvent{}, sent[0])
	time.Sleep(20 * time.Millisecond)
	require.Len(t, mt.sentEvents(), 1)
}

func TestSession_TextDeltasThenDone(t *testing.T) {
	var callbackText string
	mt := newMockTransport()
	s := NewSession(mt, OnText(func(text string) { callbackText = text }))
	defer s.Close()

	for _, delta := range []string{"Hel", "lo ", "world"} {
		mt.deliver(&events.TextDeltaEvent{ItemID: "item_1", ContentIndex: 0, Delta: delta})
		recv(t, s.Events())
	}
	mt.deliver(&events.TextDoneEvent{ItemID: "item_1", ContentIndex: 0, Text: "Hello world"})
	recv(t, s.Events())

	require.Equal(t, "Hello world", recv(t, s.Text()))
	require.Equal(t, "Hello world", callbackText)

	select {
	case extra := <-s.Text():
		t.Fatalf("unexpected second text emission: %q", extra)
	default:
	}
}

func TestSession_TranscriptsBothSides(t *testing.T) {
	mt := newMockTransport()
	s := NewSession(mt)
	defer s.Close()

	mt.deliver(&events.ResponseCreatedEvent{Response: events.Response{ID: "R"}})
	recv(t, s.Events())

	mt.deliver(&events.AudioTranscriptDeltaEvent{ResponseID: "R", ItemID: "item_1", Delta: "Hi "})
	assistant := recv(t, s.Transcripts())
	require.Equal(t, events.RoleAssistant, assistant.Role)
	require.Equal(t, "Hi ", assistant.Text)
	require.False(t, assistant.IsFinal)

	mt.deliver(&events.InputTranscriptionCompletedEvent{ItemID: "item_2", Transcript: "hello there"})
	user := recv(t, s.Transcripts())
	require.Equal(t, events.RoleUser, user.Role)
	require.Equal(t, "hello there", user.Text)
	require.True(t, user.IsFinal)
}

func TestSession_ValidationRejectsBeforeTransport(t *testing.T) {
	mt := newMockTransport()
	s := NewSession(mt)
	defer s.Close()

	err := s.Send(events.NewInputAudioBufferAppend("not base64!"))
	require.Error(t, err)

	var verr *events.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Empty(t, mt.sentEvents())
}

func TestSession_UnknownEventReachesEventsChannel(t *testing.T) {
	mt := newMockTransport()
	s := NewSession(mt)
	defer s.Close()

	mt.deliver(events.ParseServerEvent([]byte(`{"type":"totally.new","x":1}`)))

	raw, ok := recv(t, s.Events()).(Raw)
	require.True(t, ok)
	require.Equal(t, "totally.new", raw.Event.EventType())
}

func TestSession_CloseClosesChannelsAndRejectsSends(t *testing.T) {
	mt := newMockTransport()
	s := NewSession(mt)

	require.NoError(t, s.Close())

	_, open := <-s.Events()
	require.False(t, open)
	_, open = <-s.Audio()
	require.False(t, open)

	err := s.Send(events.NewResponseCreate(nil))
	require.ErrorIs(t, err, ErrConnectionClosed)
}

func TestSession_TransportEOFTerminates(t *testing.T) {
	mt := newMockTransport()
	s := NewSession(mt)

	close(mt.incoming)

	select {
	case _, open := <-s.Events():
		require.False(t, open)
	case <-time.After(time.Second):
		t.Fatal("session did not terminate on transport EOF")
	}
}

func TestSession_AskSendsItemThenResponse(t *testing.T) {
	mt := newMockTransport()
	s := NewSession(mt)
	defer s.Close()

	require.NoError(t, s.Ask("What time is it?"))

	sent := mt.sentEvents()
	require.Len(t, sent, 2)
	create := sent[0].(*events.ConversationItemCreateEvent)
	msg := create.Item.Variant().(*events.MessageItem)
	require.Equal(t, events.RoleUser, msg.Role)
	require.Equal(t, "What time is it?", msg.Text())
	require.IsType(t, &events.ResponseCreateEvent{}, sent[1])
}

func TestSession_SessionSnapshot(t *testing.T) {
	mt := newMockTransport()
	s := NewSession(mt)
	defer s.Close()

	mt.deliver(&events.SessionCreatedEvent{Session: events.Session{ID: "sess_1"}})
	recv(t, s.Events())

	require.Equal(t, "sess_1", s.Session().ID)
}
