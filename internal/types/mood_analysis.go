package types

// Emotion is one entry of the closed vocabulary the model is instructed to
// classify into, with a per-emotion confidence in [0,100].
type Emotion struct {
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
}

// MoodAnalysis is the structured result returned by the inference provider.
// It is embedded as JSON inside MoodSession, never persisted on its own.
// Transcription is present only for voice analysis.
type MoodAnalysis struct {
	Emotions        []Emotion `json:"emotions"`
	OverallMood     string    `json:"overallMood"`
	MoodScore       int       `json:"moodScore"`
	Confidence      float64   `json:"confidence"`
	Transcription   string    `json:"transcription,omitempty"`
	Recommendations []string  `json:"recommendations"`
}
