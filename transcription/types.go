package transcription

// TaskTranslate asks the model to emit English regardless of the spoken language.
const TaskTranslate = "translate"

// Request identifies one clip to transcribe.
type Request struct {
	// AudioPath is the path to the uploaded clip.
	AudioPath string `json:"audio_path" validate:"required"`
	// ResultBase is the path, without extension, the external backend writes
	// its JSON output to. Other backends ignore it.
	ResultBase string `json:"result_base,omitempty"`
}

// Result is the normalized transcription returned to clients.
type Result struct {
	Transcription string `json:"transcription"`
	Language      string `json:"language,omitempty"`
	// Temperature and NoSpeechProb come from the first model segment only
	// and are nil for backends that do not report them.
	Temperature  *float64 `json:"temperature,omitempty"`
	NoSpeechProb *float64 `json:"no_speech_prob,omitempty"`
}

// Silent is the result for a clip with no speech.
func Silent() *Result {
	return &Result{Transcription: ""}
}

// ModelOptions are passed to Model.Transcribe.
type ModelOptions struct {
	Task     string
	Language string
}

// ModelOutput is what a Model returns for one clip.
type ModelOutput struct {
	Text     string         `json:"text"`
	Language string         `json:"language" validate:"required"`
	Segments []ModelSegment `json:"segments" validate:"dive"`
}

// ModelSegment is one decoded window with its decoder diagnostics.
type ModelSegment struct {
	Start        float64 `json:"start"`
	End          float64 `json:"end"`
	Text         string  `json:"text"`
	Temperature  float64 `json:"temperature"`
	NoSpeechProb float64 `json:"no_speech_prob" validate:"gte=0,lte=1"`
	AvgLogprob   float64 `json:"avg_logprob"`
}
