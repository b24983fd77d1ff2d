package realtime

import (
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/smallnest/ringbuffer"

	"github.com/voicewire/realtime-go/events"
)

// AudioIO bridges caller-side audio devices and a session. The caller writes
// microphone PCM16 at its own sample rate and reads playback PCM16 back at
// that rate; resampling to and from the wire's 24 kHz and the paced append
// loop happen inside.
type AudioIO struct {
	session *Session

	captureBuf  *ringbuffer.RingBuffer
	playbackBuf *ringbuffer.RingBuffer

	captureWriter  io.Writer
	playbackReader io.Reader
}

// NewAudioIO starts the audio bridge on s. latency sets the chunk duration of
// the append loop; lower means snappier turn detection, more events.
func NewAudioIO(s *Session, userSampleRate int, latency time.Duration) *AudioIO {
	captureSize := chunkSize(events.PCMRate, latency, 2, 1) * 2
	captureBuf := ringbuffer.New(captureSize).SetBlocking(true)

	playbackSize := chunkSize(events.PCMRate, 60*time.Second, 2, 1) * 2
	playbackBuf := ringbuffer.New(playbackSize).SetBlocking(true)

	a := &AudioIO{
		session:     s,
		captureBuf:  captureBuf,
		playbackBuf: playbackBuf,
		captureWriter: &ResampleWriter{
			Sink:      captureBuf,
			FromRate:  userSampleRate,
			ToRate:    events.PCMRate,
			Resampler: LinearResampler{},
		},
		playbackReader: NewFixedAudioChunkReader(playbackBuf, userSampleRate, latency, 2, 1),
	}

	go a.captureLoop(latency)
	go a.playbackLoop(userSampleRate)

	return a
}

// Writer accepts microphone PCM16 at the caller's sample rate.
func (a *AudioIO) Writer() io.Writer { return a.captureWriter }

// Reader yields playback PCM16 at the caller's sample rate, in latency-sized
// chunks.
func (a *AudioIO) Reader() io.Reader { return a.playbackReader }

// ClearPlayback drops locally buffered playback audio, e.g. on barge-in.
func (a *AudioIO) ClearPlayback() {
	a.playbackBuf.Reset()
}

// Close stops both loops. The session itself stays open.
func (a *AudioIO) Close() {
	a.captureBuf.CloseWriter()
	a.playbackBuf.CloseWriter()
}

// captureLoop drains the capture buffer in even chunks and appends them to
// the input audio buffer until the session or the buffer closes.
func (a *AudioIO) captureLoop(latency time.Duration) {
	chunks := NewFixedAudioChunkReader(a.captureBuf, events.PCMRate, latency, 2, 1)
	buf := make([]byte, chunkSize(events.PCMRate, latency, 2, 1))
	for {
		n, err := chunks.Read(buf)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				a.session.logger.Error("audio capture read failed", slog.Any("err", err))
			}
			return
		}
		if n == 0 {
			continue
		}
		if err := a.session.AppendAudio(buf[:n]); err != nil {
			if !errors.Is(err, ErrConnectionClosed) {
				a.session.logger.Error("audio append failed", slog.Any("err", err))
			}
			return
		}
	}
}

// playbackLoop resamples response audio into the playback buffer. The Audio
// channel closes when the session terminates.
func (a *AudioIO) playbackLoop(userSampleRate int) {
	w := &ResampleWriter{
		Sink:      a.playbackBuf,
		FromRate:  events.PCMRate,
		ToRate:    userSampleRate,
		Resampler: LinearResampler{},
	}
	for chunk := range a.session.Audio() {
		if _, err := w.Write(chunk.PCM); err != nil {
			a.session.logger.Error("audio playback write failed", slog.Any("err", err))
			return
		}
	}
}
