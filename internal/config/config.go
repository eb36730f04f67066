package config

import (
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"go.uber.org/dig"

	"github.com/davidbz/quill/internal/cache/redis"
	"github.com/davidbz/quill/internal/provider/gemini"
	"github.com/davidbz/quill/internal/provider/openai"
)

// Config represents the application configuration.
type Config struct {
	LogLevel   string `env:"LOG_LEVEL" envDefault:"info"`
	Server     ServerConfig
	CORS       CORSConfig
	Generation GenerationConfig
	Client     ClientConfig
	Cache      redis.Config
	OpenAI     openai.Config
	Gemini     gemini.Config
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port            int `env:"SERVER_PORT"             envDefault:"8080"`
	ReadTimeout     int `env:"SERVER_READ_TIMEOUT"     envDefault:"30"`
	WriteTimeout    int `env:"SERVER_WRITE_TIMEOUT"    envDefault:"30"`
	ShutdownTimeout int `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"10"`
}

// CORSConfig contains CORS policy settings.
type CORSConfig struct {
	AllowedOrigins   []string `env:"CORS_ALLOWED_ORIGINS"   envSeparator:"," envDefault:"*"`
	AllowedMethods   []string `env:"CORS_ALLOWED_METHODS"   envSeparator:"," envDefault:"GET,POST,PATCH,OPTIONS"`
	AllowedHeaders   []string `env:"CORS_ALLOWED_HEADERS"   envSeparator:"," envDefault:"*"`
	AllowCredentials bool     `env:"CORS_ALLOW_CREDENTIALS"                  envDefault:"true"`
	ExposedHeaders   []string `env:"CORS_EXPOSED_HEADERS"   envSeparator:"," envDefault:"X-Trace-Id,X-Request-Id"`
	MaxAge           int      `env:"CORS_MAX_AGE"                            envDefault:"86400"`
	Debug            bool     `env:"CORS_DEBUG"                              envDefault:"false"`
}

// GenerationConfig holds server-side generation defaults.
type GenerationConfig struct {
	Provider          string  `env:"GENERATION_PROVIDER"            envDefault:"markov"`
	TokenMaxLength    int     `env:"GENERATION_TOKEN_MAX_LENGTH"    envDefault:"200"`
	MaxResponseLength int     `env:"GENERATION_MAX_RESPONSE_LENGTH" envDefault:"65535"`
	Temperature       float64 `env:"GENERATION_TEMPERATURE"         envDefault:"0.9"`
	TopP              float64 `env:"GENERATION_TOP_P"               envDefault:"0.9"`
	StopSequence      string  `env:"GENERATION_STOP_SEQUENCE"`
}

// ClientConfig holds defaults for the generate command.
type ClientConfig struct {
	ServerURL      string `env:"QUILL_SERVER_URL"      envDefault:"http://localhost:8080"`
	ResponseLength int    `env:"QUILL_RESPONSE_LENGTH" envDefault:"200"`
}

// DepConfig is used for dependency injection with dig.
type DepConfig struct {
	dig.Out
	*ServerConfig
	*CORSConfig
	*GenerationConfig
	Cache  *redis.Config
	OpenAI *openai.Config
	Gemini *gemini.Config
}

// Load loads environment files and parses configuration.
func Load() *Config {
	for _, file := range []string{".env"} {
		_ = godotenv.Load(file)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		panic(err)
	}

	return &cfg
}

// ParseDependenciesConfig returns pointers to sub-configs for dependency injection.
func ParseDependenciesConfig(cfg *Config) DepConfig {
	return DepConfig{
		dig.Out{},
		&cfg.Server,
		&cfg.CORS,
		&cfg.Generation,
		&cfg.Cache,
		&cfg.OpenAI,
		&cfg.Gemini,
	}
}
