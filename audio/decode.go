package audio

import (
	"fmt"
	"math"
	"os"
	"time"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/kbukum/whisperd/errors"
)

const wavFormatPCM = 1

// decodeChunkFrames is how many frames are read from the file per pass.
const decodeChunkFrames = 16 << 10

// DecodedAudio is a clip reduced to a single channel of integer PCM.
type DecodedAudio struct {
	// SampleRate is the number of frames per second.
	SampleRate int
	// SampleWidth is the number of bytes per sample as reported by the file header.
	SampleWidth int
	// Channels is always 1; the source channel count is kept in SourceChannels.
	Channels int
	// SourceChannels is the channel count before downmixing.
	SourceChannels int
	// Samples holds signed mono samples in the range of SampleWidth.
	Samples []int32
}

// Frames returns the number of mono frames.
func (a *DecodedAudio) Frames() int {
	return len(a.Samples)
}

// DurationMs returns the clip length in whole milliseconds, rounded half to even.
func (a *DecodedAudio) DurationMs() int {
	if a.SampleRate <= 0 {
		return 0
	}
	return int(math.RoundToEven(1000 * float64(len(a.Samples)) / float64(a.SampleRate)))
}

// Duration returns the clip length.
func (a *DecodedAudio) Duration() time.Duration {
	return time.Duration(a.DurationMs()) * time.Millisecond
}

// MaxAmplitude is the largest magnitude a sample of SampleWidth can hold.
func (a *DecodedAudio) MaxAmplitude() float64 {
	return math.Exp2(float64(a.SampleWidth*8 - 1))
}

// frameAt converts a millisecond offset into a sample index.
func (a *DecodedAudio) frameAt(ms int) int {
	idx := int(float64(ms) * float64(a.SampleRate) / 1000)
	return min(max(idx, 0), len(a.Samples))
}

// Decode reads a PCM WAV file at path and downmixes it to mono.
// Any failure is returned as a DECODE_FAILED AppError.
func Decode(path string) (*DecodedAudio, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.DecodeFailed("open audio", err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, errors.DecodeFailed("not a valid WAV file", dec.Err())
	}
	if dec.WavAudioFormat != wavFormatPCM {
		return nil, errors.DecodeFailed(fmt.Sprintf("unsupported WAV encoding %d, only integer PCM is accepted", dec.WavAudioFormat), nil)
	}

	width := int(dec.BitDepth) / 8
	switch {
	case dec.BitDepth%8 != 0, width < 1, width > 4:
		return nil, errors.DecodeFailed(fmt.Sprintf("unsupported bit depth %d", dec.BitDepth), nil)
	case dec.NumChans == 0:
		return nil, errors.DecodeFailed("WAV header reports zero channels", nil)
	case dec.SampleRate == 0:
		return nil, errors.DecodeFailed("WAV header reports a zero sample rate", nil)
	}

	if err := dec.FwdToPCM(); err != nil {
		return nil, errors.DecodeFailed("find PCM data", err)
	}
	pcmBytes := dec.PCMLen()
	if info, err := f.Stat(); err == nil {
		pcmBytes = min(pcmBytes, info.Size())
	}

	channels := int(dec.NumChans)
	samples, err := readMono(dec, channels, width, pcmBytes)
	if err != nil {
		return nil, errors.DecodeFailed("read PCM data", err)
	}

	return &DecodedAudio{
		SampleRate:     int(dec.SampleRate),
		SampleWidth:    width,
		Channels:       1,
		SourceChannels: channels,
		Samples:        samples,
	}, nil
}

// readMono streams the PCM chunk and downmixes it frame by frame, so only
// the mono result is held in full. pcmBytes sizes the result up front.
// 8-bit WAV stores unsigned samples centred on 128; they are shifted after
// averaging.
func readMono(dec *wav.Decoder, channels, width int, pcmBytes int64) ([]int32, error) {
	out := make([]int32, 0, max(pcmBytes, 0)/int64(width*channels))
	data := make([]int, decodeChunkFrames*channels)
	carry := 0
	for {
		n, err := dec.PCMBuffer(&goaudio.IntBuffer{Data: data[carry:]})
		if err != nil {
			return nil, err
		}
		if n == 0 {
			break
		}
		n += carry
		whole := n - n%channels
		start := len(out)
		out = downmix(out, data[:whole], channels)
		if width == 1 {
			for i := start; i < len(out); i++ {
				out[i] -= 128
			}
		}
		carry = copy(data, data[whole:n])
	}
	return out, nil
}

// downmix appends the average of each interleaved frame in data to dst.
// A trailing partial frame is dropped.
func downmix(dst []int32, data []int, channels int) []int32 {
	if channels <= 1 {
		for _, v := range data {
			dst = append(dst, int32(v))
		}
		return dst
	}
	frames := len(data) / channels
	for i := range frames {
		sum := 0
		for _, v := range data[i*channels : (i+1)*channels] {
			sum += v
		}
		dst = append(dst, int32(sum/channels))
	}
	return dst
}
