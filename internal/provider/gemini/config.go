package gemini

// Config contains Gemini provider configuration.
type Config struct {
	APIKey  string `env:"GEMINI_API_KEY"`
	BaseURL string `env:"GEMINI_BASE_URL"`
	Model   string `env:"GEMINI_MODEL"    envDefault:"gemini-2.0-flash"`
}
