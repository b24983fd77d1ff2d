package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/voicewire/realtime-go/events"
	"github.com/voicewire/realtime-go/tool"
)

// ErrConnectionClosed resolves commands that were queued or in flight when
// the session terminated.
var ErrConnectionClosed = errors.New("realtime: connection closed")

// Transport carries wire events to and from the server. Next blocks until an
// event arrives and returns io.EOF on graceful close. Implementations only
// need to be safe for one concurrent sender and one concurrent receiver.
type Transport interface {
	Send(ev events.ClientEvent) error
	Next() (events.ServerEvent, error)
	Close() error
}

type command struct {
	ev    events.ClientEvent
	reply chan error
}

type bufferKey struct {
	itemID       string
	contentIndex int
}

// Session owns one realtime connection. A single goroutine processes inbound
// events strictly in arrival order and is the only writer to the transport;
// callers interact through the command queue and the output channels.
type Session struct {
	cfg       *sessionConfig
	logger    *slog.Logger
	transport Transport
	registry  *tool.Registry

	cmds    chan command
	inbound chan events.ServerEvent

	done      chan struct{}
	closeOnce sync.Once
	exited    chan struct{}

	ctx    context.Context
	cancel context.CancelFunc

	eventsOut   chan Event
	textOut     chan string
	voiceOut    chan VoiceEvent
	audioOut    chan AudioChunk
	transcripts chan TranscriptChunk

	// Shared with caller goroutines: BargeIn reads and clears the active
	// response id, Session returns the last snapshot.
	mu               sync.Mutex
	activeResponseID string
	session          events.Session

	// Actor-private.
	textBuf map[bufferKey]*strings.Builder
}

// NewSession starts the actor on an established transport.
func NewSession(transport Transport, opts ...Option) *Session {
	cfg := &sessionConfig{}
	withDefaults()(cfg)
	WithOptions(opts...)(cfg)

	ctx, cancel := context.WithCancel(context.Background())

	s := &Session{
		cfg:         cfg,
		logger:      cfg.logger,
		transport:   transport,
		registry:    cfg.registry,
		cmds:        make(chan command, cfg.channelCapacity),
		inbound:     make(chan events.ServerEvent, cfg.channelCapacity),
		done:        make(chan struct{}),
		exited:      make(chan struct{}),
		ctx:         ctx,
		cancel:      cancel,
		eventsOut:   make(chan Event, cfg.channelCapacity),
		textOut:     make(chan string, cfg.channelCapacity),
		voiceOut:    make(chan VoiceEvent, cfg.channelCapacity),
		audioOut:    make(chan AudioChunk, cfg.channelCapacity),
		transcripts: make(chan TranscriptChunk, cfg.channelCapacity),
		textBuf:     make(map[bufferKey]*strings.Builder),
	}

	go s.pump()
	go s.run()

	return s
}

// Events delivers every inbound event, classified. The channel is closed when
// the session terminates.
func (s *Session) Events() <-chan Event { return s.eventsOut }

// Text delivers the full text of each completed text part.
func (s *Session) Text() <-chan string { return s.textOut }

// Voice delivers speaking boundary events for both sides.
func (s *Session) Voice() <-chan VoiceEvent { return s.voiceOut }

// Audio delivers decoded PCM16 chunks of the active response.
func (s *Session) Audio() <-chan AudioChunk { return s.audioOut }

// Transcripts delivers spoken-word transcripts for both sides.
func (s *Session) Transcripts() <-chan TranscriptChunk { return s.transcripts }

// Session returns the last session state reported by the server.
func (s *Session) Session() events.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session
}

// Send validates ev and hands it to the actor for transmission. Validation
// failures return immediately and nothing reaches the transport.
func (s *Session) Send(ev events.ClientEvent) error {
	if err := ev.Validate(); err != nil {
		return err
	}
	cmd := command{ev: ev, reply: make(chan error, 1)}
	select {
	case s.cmds <- cmd:
	case <-s.done:
		return ErrConnectionClosed
	}
	select {
	case err := <-cmd.reply:
		return err
	case <-s.done:
		return ErrConnectionClosed
	}
}

// SendRaw transmits a pre-encoded client event without validation.
func (s *Session) SendRaw(data json.RawMessage) error {
	return s.Send(&rawClientEvent{data: data})
}

type rawClientEvent struct {
	data json.RawMessage
}

func (e *rawClientEvent) ClientEventType() string      { return "raw" }
func (e *rawClientEvent) Validate() error              { return nil }
func (e *rawClientEvent) MarshalJSON() ([]byte, error) { return e.data, nil }

// BargeIn interrupts playback: buffered output audio is cleared regardless,
// and the response recorded at interrupt time, if any, is cancelled.
func (s *Session) BargeIn() error {
	s.mu.Lock()
	id := s.activeResponseID
	s.activeResponseID = ""
	s.mu.Unlock()
	if err := s.Send(events.NewOutputAudioBufferClear()); err != nil {
		return err
	}
	if id == "" {
		return nil
	}
	return s.Send(events.NewResponseCancel(id))
}

// RunTool dispatches a call against the session's registry directly.
func (s *Session) RunTool(ctx context.Context, call tool.Call) (tool.Result, error) {
	if s.registry == nil {
		return tool.Result{}, tool.ErrUnknownTool
	}
	return s.registry.Dispatch(ctx, call)
}

// Close terminates the session. Pending and in-flight commands resolve
// ErrConnectionClosed and all output channels are closed.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		close(s.done)
	})
	err := s.transport.Close()
	<-s.exited
	return err
}

// pump moves transport events onto the inbound channel until the connection
// ends.
func (s *Session) pump() {
	defer close(s.inbound)
	for {
		ev, err := s.transport.Next()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				s.logger.Error("transport receive failed", slog.Any("err", err))
			}
			return
		}
		select {
		case s.inbound <- ev:
		case <-s.done:
			return
		}
	}
}

func (s *Session) run() {
	defer s.finish()
	for {
		select {
		case <-s.done:
			return
		case cmd := <-s.cmds:
			cmd.reply <- s.transport.Send(cmd.ev)
		case ev, ok := <-s.inbound:
			if !ok {
				return
			}
			s.handle(ev)
		}
	}
}

func (s *Session) finish() {
	s.closeOnce.Do(func() {
		close(s.done)
	})
	s.cancel()
	close(s.eventsOut)
	close(s.textOut)
	close(s.voiceOut)
	close(s.audioOut)
	close(s.transcripts)
	close(s.exited)
}

// handle processes one inbound event. The steps run in a fixed order so that
// lifecycle state is current before gating decisions, and fan-out happens
// before tool follow-up traffic.
func (s *Session) handle(ev events.ServerEvent) {
	// 1) Response lifecycle and session snapshots.
	switch e := ev.(type) {
	case *events.ResponseCreatedEvent:
		s.setActiveResponse(e.Response.ID)
		s.emitVoice(ResponseCreated{ResponseID: e.Response.ID})
	case *events.ResponseDoneEvent:
		s.clearActiveResponse(e.Response.ID)
		s.emitVoice(ResponseDone{ResponseID: e.Response.ID, Status: e.Response.Status})
	case *events.SessionCreatedEvent:
		s.storeSession(e.Session)
	case *events.SessionUpdatedEvent:
		s.storeSession(e.Session)
	}

	// 2) Speech boundaries, with automatic barge-in on user speech.
	switch e := ev.(type) {
	case *events.SpeechStartedEvent:
		if s.cfg.autoBargeIn {
			s.interruptActive()
		}
		s.emitVoice(UserSpeaking{ItemID: e.ItemID, AudioStartMS: e.AudioStartMS})
	case *events.SpeechStoppedEvent:
		s.emitVoice(UserDone{ItemID: e.ItemID, AudioEndMS: e.AudioEndMS})
	case *events.OutputAudioBufferStartedEvent:
		s.emitVoice(AssistantSpeaking{ResponseID: e.ResponseID})
	case *events.OutputAudioBufferStoppedEvent:
		s.emitVoice(AssistantDone{ResponseID: e.ResponseID})
	}

	// 3) Audio, gated on the active response so cancelled audio is dropped
	// instead of played.
	switch a := ev.(type) {
	case *events.AudioDeltaEvent:
		if s.isActiveResponse(a.ResponseID) {
			if pcm, err := a.Bytes(); err == nil {
				s.emitAudio(AudioChunk{
					ResponseID:   a.ResponseID,
					ItemID:       a.ItemID,
					ContentIndex: a.ContentIndex,
					PCM:          pcm,
				})
			} else {
				s.logger.Error("audio delta decode failed", slog.Any("err", err))
			}
		}
	case *events.AudioDoneEvent:
		if s.isActiveResponse(a.ResponseID) {
			s.emitVoice(AssistantAudioDone{
				ResponseID:   a.ResponseID,
				ItemID:       a.ItemID,
				ContentIndex: a.ContentIndex,
			})
		}
	}

	// 4) Transcripts: assistant side gated like audio, user side always
	// published.
	switch e := ev.(type) {
	case *events.AudioTranscriptDeltaEvent:
		if s.isActiveResponse(e.ResponseID) {
			s.emitTranscript(TranscriptChunk{
				ItemID:       e.ItemID,
				ContentIndex: e.ContentIndex,
				Role:         events.RoleAssistant,
				Text:         e.Delta,
			})
		}
	case *events.AudioTranscriptDoneEvent:
		if s.isActiveResponse(e.ResponseID) {
			s.emitTranscript(TranscriptChunk{
				ItemID:       e.ItemID,
				ContentIndex: e.ContentIndex,
				Role:         events.RoleAssistant,
				Text:         e.Transcript,
				IsFinal:      true,
			})
		}
	case *events.InputTranscriptionDeltaEvent:
		s.emitTranscript(TranscriptChunk{
			ItemID:       e.ItemID,
			ContentIndex: e.ContentIndex,
			Role:         events.RoleUser,
			Text:         e.Delta,
		})
	case *events.InputTranscriptionCompletedEvent:
		s.emitTranscript(TranscriptChunk{
			ItemID:       e.ItemID,
			ContentIndex: e.ContentIndex,
			Role:         events.RoleUser,
			Text:         e.Transcript,
			IsFinal:      true,
		})
	}

	// 5) Classified fan-out and the raw hook.
	s.emitEvent(Classify(ev))
	if s.cfg.onRawEvent != nil {
		s.cfg.onRawEvent(ev)
	}
	if _, unknown := ev.(*events.UnknownEvent); unknown {
		s.logger.Debug("unhandled server event", slog.String("type", ev.EventType()))
	}

	// 6) Text accumulation keyed by (item, content index); the done event
	// carries the authoritative full text.
	switch e := ev.(type) {
	case *events.TextDeltaEvent:
		key := bufferKey{itemID: e.ItemID, contentIndex: e.ContentIndex}
		buf, ok := s.textBuf[key]
		if !ok {
			buf = &strings.Builder{}
			s.textBuf[key] = buf
		}
		buf.WriteString(e.Delta)
	case *events.TextDoneEvent:
		delete(s.textBuf, bufferKey{itemID: e.ItemID, contentIndex: e.ContentIndex})
		s.emitText(e.Text)
		if s.cfg.onText != nil {
			s.cfg.onText(e.Text)
		}
	}

	// 7) Completed function calls run their handler and report back.
	if e, ok := ev.(*events.FunctionCallArgumentsDoneEvent); ok {
		s.handleToolCall(e)
	}
}

func (s *Session) handleToolCall(e *events.FunctionCallArgumentsDoneEvent) {
	call := tool.Call{
		CallID:      e.CallID,
		Name:        e.Name,
		Arguments:   json.RawMessage(e.Arguments),
		ResponseID:  e.ResponseID,
		ItemID:      e.ItemID,
		OutputIndex: e.OutputIndex,
	}

	// The caller-supplied handler wins over the registry. Every completed
	// call gets exactly one output item, so an unregistered name runs
	// through Dispatch and comes back as an error output.
	var (
		output json.RawMessage
		err    error
	)
	switch {
	case s.cfg.onToolCall != nil:
		output, err = s.cfg.onToolCall(s.ctx, call)
	case s.registry != nil:
		var res tool.Result
		res, err = s.registry.Dispatch(s.ctx, call)
		output = res.Output
	default:
		err = fmt.Errorf("%w: %q", tool.ErrUnknownTool, call.Name)
	}

	// Tool failures are conversation content, not session failures.
	if err != nil {
		s.logger.Error("tool call failed", slog.String("name", call.Name), slog.Any("err", err))
		output, _ = json.Marshal(map[string]string{"error": err.Error()})
	} else if len(output) == 0 {
		output = json.RawMessage(`{"success":true}`)
	}

	create := events.NewConversationItemCreate(events.FunctionCallOutput(call.CallID, string(output)))
	if sendErr := s.transport.Send(create); sendErr != nil {
		s.logger.Error("tool output send failed", slog.Any("err", sendErr))
		return
	}
	// The follow-up response belongs to the success branch only; after an
	// error output the model is not re-prompted automatically.
	if err == nil && s.cfg.autoToolResponse {
		if sendErr := s.transport.Send(events.NewResponseCreate(nil)); sendErr != nil {
			s.logger.Error("tool follow-up response failed", slog.Any("err", sendErr))
		}
	}
}

// interruptActive performs barge-in from inside the actor: clear buffered
// output audio unconditionally, then cancel the response that was active.
func (s *Session) interruptActive() {
	s.mu.Lock()
	id := s.activeResponseID
	s.activeResponseID = ""
	s.mu.Unlock()
	if err := s.transport.Send(events.NewOutputAudioBufferClear()); err != nil {
		s.logger.Error("barge-in clear failed", slog.Any("err", err))
		return
	}
	if id == "" {
		return
	}
	if err := s.transport.Send(events.NewResponseCancel(id)); err != nil {
		s.logger.Error("barge-in cancel failed", slog.Any("err", err))
	}
}

func (s *Session) setActiveResponse(id string) {
	s.mu.Lock()
	s.activeResponseID = id
	s.mu.Unlock()
}

// clearActiveResponse resets the active id only if it still belongs to the
// finished response.
func (s *Session) clearActiveResponse(id string) {
	s.mu.Lock()
	if s.activeResponseID == id {
		s.activeResponseID = ""
	}
	s.mu.Unlock()
}

// isActiveResponse accepts events for the active response, and everything
// when no response is active, so trailing events right after response.done
// are not lost.
func (s *Session) isActiveResponse(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeResponseID == "" || s.activeResponseID == id
}

func (s *Session) storeSession(sess events.Session) {
	s.mu.Lock()
	s.session = sess
	s.mu.Unlock()
}

// The emit helpers block on a full channel but never outlive the session.

func (s *Session) emitEvent(e Event) {
	select {
	case s.eventsOut <- e:
	case <-s.done:
	}
}

func (s *Session) emitText(text string) {
	select {
	case s.textOut <- text:
	case <-s.done:
	}
}

func (s *Session) emitVoice(e VoiceEvent) {
	select {
	case s.voiceOut <- e:
	case <-s.done:
	}
}

func (s *Session) emitAudio(c AudioChunk) {
	select {
	case s.audioOut <- c:
	case <-s.done:
	}
}

func (s *Session) emitTranscript(c TranscriptChunk) {
	select {
	case s.transcripts <- c:
	case <-s.done:
	}
}
