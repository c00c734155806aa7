package testutil

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// DefaultSampleRate is the rate used by the fixture generators.
const DefaultSampleRate = 8000

// WriteWAV encodes interleaved 16-bit samples to a PCM WAV file at path.
func WriteWAV(t testing.TB, path string, sampleRate, channels int, samples []int) string {
	t.Helper()

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, sampleRate, 16, channels, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: channels, SampleRate: sampleRate},
		Data:           samples,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("encode %s: %v", path, err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("finalize %s: %v", path, err)
	}
	return path
}

// WriteMonoWAV writes samples as a mono clip at DefaultSampleRate into dir.
func WriteMonoWAV(t testing.TB, dir, name string, samples []int) string {
	t.Helper()
	return WriteWAV(t, filepath.Join(dir, name), DefaultSampleRate, 1, samples)
}

// Tone returns a sine wave of the given frequency and peak amplitude.
func Tone(sampleRate int, d time.Duration, freq float64, amplitude int) []int {
	n := frames(sampleRate, d)
	out := make([]int, n)
	for i := range out {
		out[i] = int(float64(amplitude) * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate)))
	}
	return out
}

// Speech is a loud 400Hz tone at DefaultSampleRate, well above any silence threshold.
func Speech(d time.Duration) []int {
	return Tone(DefaultSampleRate, d, 400, 10000)
}

// Silence returns digital silence.
func Silence(sampleRate int, d time.Duration) []int {
	return make([]int, frames(sampleRate, d))
}

// Quiet returns digital silence at DefaultSampleRate.
func Quiet(d time.Duration) []int {
	return Silence(DefaultSampleRate, d)
}

// Level returns a constant signal, useful for probing thresholds.
func Level(sampleRate int, d time.Duration, value int) []int {
	out := make([]int, frames(sampleRate, d))
	for i := range out {
		out[i] = value
	}
	return out
}

// Concat joins sample slices end to end.
func Concat(parts ...[]int) []int {
	var n int
	for _, p := range parts {
		n += len(p)
	}
	out := make([]int, 0, n)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// Interleave merges two mono channels into stereo frames.
func Interleave(left, right []int) []int {
	n := min(len(left), len(right))
	out := make([]int, 0, 2*n)
	for i := 0; i < n; i++ {
		out = append(out, left[i], right[i])
	}
	return out
}

func frames(sampleRate int, d time.Duration) int {
	return int(int64(sampleRate) * int64(d) / int64(time.Second))
}
