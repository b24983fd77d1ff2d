package realtime

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/voicewire/realtime-go/events"
)

func TestAudioIO_CaptureAppendsChunks(t *testing.T) {
	mt := newMockTransport()
	s := NewSession(mt)
	defer s.Close()

	a := NewAudioIO(s, events.PCMRate, 10*time.Millisecond)
	defer a.Close()

	// One latency chunk at 24 kHz mono PCM16 is 480 bytes.
	pcm := make([]byte, 480)
	for i := range pcm {
		pcm[i] = byte(i)
	}
	_, err := a.Writer().Write(pcm)
	require.NoError(t, err)

	sent := mt.waitSent(t, 1)
	appendEv, ok := sent[0].(*events.InputAudioBufferAppendEvent)
	require.True(t, ok)

	decoded, err := base64.StdEncoding.DecodeString(appendEv.Audio)
	require.NoError(t, err)
	require.Equal(t, pcm, decoded)
}

func TestAudioIO_CaptureResamples(t *testing.T) {
	mt := newMockTransport()
	s := NewSession(mt)
	defer s.Close()

	a := NewAudioIO(s, 48000, 10*time.Millisecond)
	defer a.Close()

	// 20 ms at 48 kHz resamples to 960 bytes at the wire rate, two chunks.
	_, err := a.Writer().Write(make([]byte, 1920))
	require.NoError(t, err)

	sent := mt.waitSent(t, 2)
	require.Equal(t, 480, events.DecodedBase64Len(sent[0].(*events.InputAudioBufferAppendEvent).Audio))
	require.Equal(t, 480, events.DecodedBase64Len(sent[1].(*events.InputAudioBufferAppendEvent).Audio))
}

func TestAudioIO_PlaybackDeliversResponseAudio(t *testing.T) {
	mt := newMockTransport()
	s := NewSession(mt)
	defer s.Close()

	a := NewAudioIO(s, events.PCMRate, 10*time.Millisecond)
	defer a.Close()

	mt.deliver(&events.ResponseCreatedEvent{Response: events.Response{ID: "R"}})
	recv(t, s.Events())

	pcm := make([]byte, 960)
	mt.deliver(&events.AudioDeltaEvent{
		ResponseID: "R",
		Delta:      base64.StdEncoding.EncodeToString(pcm),
	})
	recv(t, s.Events())

	read := make(chan int, 1)
	go func() {
		buf := make([]byte, 480)
		n, err := a.Reader().Read(buf)
		if err == nil {
			read <- n
		}
	}()

	select {
	case n := <-read:
		require.Equal(t, 480, n)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for playback audio")
	}
}
