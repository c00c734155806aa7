package audio

import (
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
)

// SilenceConfig tunes silence detection.
type SilenceConfig struct {
	// MinSilence is the shortest run of quiet audio that splits two segments.
	MinSilence time.Duration `yaml:"min_silence" mapstructure:"min_silence" validate:"gt=0"`
	// Threshold is the level in dBFS at or below which audio counts as silent.
	Threshold float64 `yaml:"silence_threshold" mapstructure:"silence_threshold" validate:"lte=0"`
	// KeepSilence pads each segment on both sides.
	KeepSilence time.Duration `yaml:"keep_silence" mapstructure:"keep_silence" validate:"gte=0"`
}

// DefaultSilenceConfig returns 100ms minimum silence, -45 dBFS and 20ms padding.
func DefaultSilenceConfig() SilenceConfig {
	return SilenceConfig{
		MinSilence:  100 * time.Millisecond,
		Threshold:   -45,
		KeepSilence: 20 * time.Millisecond,
	}
}

// Segment is a speech-bearing range of a clip, in chronological order.
type Segment struct {
	Start time.Duration
	End   time.Duration
}

// Duration returns the segment length.
func (s Segment) Duration() time.Duration {
	return s.End - s.Start
}

// Samples returns the slice of a covered by the segment.
func (s Segment) Samples(a *DecodedAudio) []int32 {
	lo := a.frameAt(int(s.Start / time.Millisecond))
	hi := a.frameAt(int(s.End / time.Millisecond))
	return a.Samples[lo:hi]
}

// Split returns the non-silent segments of a, padded by cfg.KeepSilence.
// An empty result means the clip holds no speech.
func Split(a *DecodedAudio, cfg SilenceConfig) []Segment {
	if a == nil || len(a.Samples) == 0 || a.SampleRate <= 0 {
		return nil
	}

	minSilence := max(int(cfg.MinSilence/time.Millisecond), 1)
	keep := max(int(cfg.KeepSilence/time.Millisecond), 0)
	total := a.DurationMs()

	ranges := nonSilentRanges(a, minSilence, cfg.Threshold, total)
	if len(ranges) == 0 {
		return nil
	}

	for i := range ranges {
		ranges[i][0] -= keep
		ranges[i][1] += keep
	}
	for i := 0; i+1 < len(ranges); i++ {
		if next := ranges[i+1][0]; next < ranges[i][1] {
			mid := floorDiv(ranges[i][1]+next, 2)
			ranges[i][1] = mid
			ranges[i+1][0] = mid
		}
	}

	segments := make([]Segment, 0, len(ranges))
	for _, r := range ranges {
		start := max(r[0], 0)
		end := min(r[1], total)
		segments = append(segments, Segment{
			Start: time.Duration(start) * time.Millisecond,
			End:   time.Duration(end) * time.Millisecond,
		})
	}
	return segments
}

// nonSilentRanges inverts the silent ranges into [start, end) ms ranges.
func nonSilentRanges(a *DecodedAudio, minSilence int, thresholdDB float64, total int) [][2]int {
	silent := silentRanges(a, minSilence, thresholdDB, total)
	if len(silent) == 0 {
		return [][2]int{{0, total}}
	}
	if silent[0][0] == 0 && silent[0][1] >= total {
		return nil
	}

	var out [][2]int
	prevEnd := 0
	for _, r := range silent {
		out = append(out, [2]int{prevEnd, r[0]})
		prevEnd = r[1]
	}
	if prevEnd < total {
		out = append(out, [2]int{prevEnd, total})
	}
	if out[0] == [2]int{0, 0} {
		out = out[1:]
	}
	return out
}

// silentRanges steps a minSilence window across the clip one millisecond at
// a time and merges silent windows into [start, end) ms ranges.
func silentRanges(a *DecodedAudio, minSilence int, thresholdDB float64, total int) [][2]int {
	threshold := dbToRatio(thresholdDB) * a.MaxAmplitude()

	// A clip shorter than one window is judged as a single window.
	if total < minSilence {
		all := sumSquares(a.Samples)
		if rms(all, len(a.Samples)) <= threshold {
			return [][2]int{{0, total}}
		}
		return nil
	}

	energy := msEnergy(a, total)
	var starts []int
	last := total - minSilence
	for ms := 0; ms <= last; ms++ {
		lo, hi := a.frameAt(ms), a.frameAt(ms+minSilence)
		if rms(energy[ms+minSilence]-energy[ms], hi-lo) <= threshold {
			starts = append(starts, ms)
		}
	}
	if len(starts) == 0 {
		return nil
	}

	var ranges [][2]int
	rangeStart, prev := starts[0], starts[0]
	for _, s := range starts[1:] {
		continuous := s == prev+1
		gap := s > prev+minSilence
		if !continuous && gap {
			ranges = append(ranges, [2]int{rangeStart, prev + minSilence})
			rangeStart = s
		}
		prev = s
	}
	return append(ranges, [2]int{rangeStart, prev + minSilence})
}

// msEnergy returns cumulative squared sample values at each millisecond
// boundary: e[ms] is the energy of a.Samples[:a.frameAt(ms)] for ms in
// [0, total].
func msEnergy(a *DecodedAudio, total int) []float64 {
	e := make([]float64, total+1)
	for ms := range total {
		e[ms+1] = sumSquares(a.Samples[a.frameAt(ms):a.frameAt(ms+1)])
	}
	floats.CumSum(e, e)
	return e
}

func sumSquares(samples []int32) float64 {
	var sum float64
	for _, s := range samples {
		v := float64(s)
		sum += v * v
	}
	return sum
}

// rms is the integer-truncated RMS of n samples with the given energy.
func rms(energy float64, n int) float64 {
	if n <= 0 {
		return 0
	}
	return math.Floor(math.Sqrt(max(energy/float64(n), 0)))
}

func dbToRatio(db float64) float64 {
	return math.Pow(10, db/20)
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
