package openai

// Config contains OpenAI provider configuration. The provider is only
// registered when APIKey is set; Model is used when a request names none.
type Config struct {
	APIKey       string `env:"OPENAI_API_KEY"`
	Organization string `env:"OPENAI_ORGANIZATION"`
	BaseURL      string `env:"OPENAI_BASE_URL"     envDefault:"https://api.openai.com/v1"`
	Model        string `env:"OPENAI_MODEL"        envDefault:"gpt-4o-mini"`
	Timeout      int    `env:"OPENAI_TIMEOUT"      envDefault:"60"` // seconds
	MaxRetries   int    `env:"OPENAI_MAX_RETRIES"  envDefault:"3"`
}
