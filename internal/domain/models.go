package domain

// DefaultResponseLength is the response length used when a request leaves it unset.
const DefaultResponseLength = 200

// MaxResponseLength is the default upper bound on response_length.
const MaxResponseLength = 65535

// CompletionRequest is the JSON body accepted by /api/completion.
type CompletionRequest struct {
	Context        string  `json:"context"`
	TopP           float64 `json:"top_p"`
	Temp           float64 `json:"temp"`
	ResponseLength int     `json:"response_length"`
	RemoveInput    *bool   `json:"remove_input,omitempty"`
	Model          string  `json:"model,omitempty"`
}

// ShouldRemoveInput reports whether the prompt must be stripped from the output.
func (r *CompletionRequest) ShouldRemoveInput() bool {
	return r.RemoveInput != nil && *r.RemoveInput
}

// CompletionResponse is the JSON body returned by /api/completion.
type CompletionResponse struct {
	GeneratedText string `json:"generated_text"`
	Duration      int64  `json:"duration"` // milliseconds
}

// GenerateOptions is what a provider receives for a single generation.
type GenerateOptions struct {
	Model        string
	Context      string
	MaxLength    int
	Temperature  float64
	TopP         float64
	StopSequence string
}

// Generation is the raw provider output before post-processing.
type Generation struct {
	Text     string
	Model    string
	Provider string
	Usage    Usage
}

// Usage tracks token consumption.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}
