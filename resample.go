package realtime

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/faiface/beep"
)

// Resampler converts mono PCM16 between sample rates.
type Resampler interface {
	Resample(pcm []byte, fromRate, toRate int) ([]byte, error)
}

// LinearResampler interpolates between neighboring samples. Cheap enough for
// the streaming path; quality is fine for speech.
type LinearResampler struct{}

func (LinearResampler) Resample(pcm []byte, fromRate, toRate int) ([]byte, error) {
	if fromRate == toRate {
		return pcm, nil
	}
	in := bytesToSamples(pcm)
	if len(in) == 0 {
		return nil, nil
	}

	outLen := int(int64(len(in)) * int64(toRate) / int64(fromRate))
	out := make([]int16, outLen)
	ratio := float64(fromRate) / float64(toRate)
	for i := range out {
		pos := float64(i) * ratio
		j := int(pos)
		if j >= len(in)-1 {
			out[i] = in[len(in)-1]
			continue
		}
		frac := pos - float64(j)
		out[i] = int16(float64(in[j])*(1-frac) + float64(in[j+1])*frac)
	}
	return samplesToBytes(out), nil
}

// BeepResampler runs beep's band-limited resampler. Better quality than
// linear interpolation, intended for offline conversion of whole clips.
type BeepResampler struct {
	// Quality is beep's resampling quality, 1..64. Zero means 3.
	Quality int
}

func (r BeepResampler) Resample(pcm []byte, fromRate, toRate int) ([]byte, error) {
	if fromRate == toRate {
		return pcm, nil
	}
	quality := r.Quality
	if quality == 0 {
		quality = 3
	}

	streamer := newPCMStreamer(pcm)
	resampler := beep.Resample(quality, beep.SampleRate(fromRate), beep.SampleRate(toRate), streamer)

	buf := new(bytes.Buffer)
	sample := make([][2]float64, 1024)
	for {
		n, ok := resampler.Stream(sample)
		for i := 0; i < n; i++ {
			mono := (sample[i][0] + sample[i][1]) / 2.0
			if err := binary.Write(buf, binary.LittleEndian, int16(mono*32767)); err != nil {
				return nil, err
			}
		}
		if !ok {
			break
		}
	}
	return buf.Bytes(), nil
}

// pcmStreamer adapts mono PCM16 to beep's stereo float streamer.
type pcmStreamer struct {
	data []int16
	pos  int
}

func newPCMStreamer(b []byte) *pcmStreamer {
	return &pcmStreamer{data: bytesToSamples(b)}
}

func (s *pcmStreamer) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if s.pos >= len(s.data) {
			return i, false
		}
		val := float64(s.data[s.pos]) / 32768.0
		samples[i][0] = val
		samples[i][1] = val
		s.pos++
	}
	return len(samples), true
}

func (s *pcmStreamer) Err() error { return nil }

// ResampleWriter converts every write from FromRate to ToRate before passing
// it to Sink. Writes must be whole PCM16 samples.
type ResampleWriter struct {
	Sink      io.Writer
	FromRate  int
	ToRate    int
	Resampler Resampler
}

func (w *ResampleWriter) Write(p []byte) (int, error) {
	out, err := w.Resampler.Resample(p, w.FromRate, w.ToRate)
	if err != nil {
		return 0, err
	}
	if _, err := w.Sink.Write(out); err != nil {
		return 0, err
	}
	return len(p), nil
}

func bytesToSamples(b []byte) []int16 {
	samples := make([]int16, len(b)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(b[i*2:]))
	}
	return samples
}
