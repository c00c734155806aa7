// Package audio decodes uploaded clips into mono PCM and splits them on
// silence.
//
// Decode reads RIFF/WAVE PCM files through go-audio/wav and downmixes every
// channel into a single one. Split finds the speech-bearing ranges of a
// clip with the classic split-on-silence algorithm: a sliding window of
// MinSilence length is stepped one millisecond at a time, windows whose RMS
// is at or below the dBFS threshold are silent, and runs of silent windows
// separate the returned segments. Each segment is padded by KeepSilence on
// both sides without crossing its neighbours or the clip bounds.
//
//	a, err := audio.Decode(path)
//	if err != nil {
//	    return err
//	}
//	if segs := audio.Split(a, audio.DefaultSilenceConfig()); len(segs) == 0 {
//	    // nothing but silence
//	}
package audio
