package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config is the full service configuration, loaded from the environment.
type Config struct {
	DBPath   string `env:"HARBORLIGHT_DB_PATH" env-default:"harborlight.db"`
	LogLevel string `env:"HARBORLIGHT_LOG_LEVEL" env-default:"info"`

	// VAPID key material, base64url-encoded raw P-256 bytes (65-byte
	// uncompressed public point, 32-byte private scalar). Missing keys
	// are fatal: no push can ever be sent without them.
	VAPIDPublicKey  string `env:"VAPID_PUBLIC_KEY"`
	VAPIDPrivateKey string `env:"VAPID_PRIVATE_KEY"`
	VAPIDSubject    string `env:"VAPID_SUBJECT" env-default:"mailto:care@harborlight.app"`

	AnthropicAPIKey string `env:"ANTHROPIC_API_KEY"`
	AnthropicModel  string `env:"ANTHROPIC_MODEL" env-default:"claude-3-5-haiku-latest"`

	OpenAIAPIKey  string `env:"OPENAI_API_KEY"`
	OpenAIBaseURL string `env:"OPENAI_BASE_URL" env-default:"https://api.openai.com"`
	OpenAIModel   string `env:"OPENAI_MODEL" env-default:"gpt-4o-mini"`

	DispatchWorkers  int           `env:"DISPATCH_WORKERS" env-default:"8"`
	DispatchInterval time.Duration `env:"DISPATCH_INTERVAL" env-default:"15m"`
	RunTimeout       time.Duration `env:"DISPATCH_RUN_TIMEOUT" env-default:"10m"`
	SubjectTimeout   time.Duration `env:"DISPATCH_SUBJECT_TIMEOUT" env-default:"30s"`
}

// Load reads configuration from the environment and validates it.
func Load() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config: read env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	return &cfg, nil
}

// Validate enforces the invariants a run cannot recover from.
func (c *Config) Validate() error {
	if c.VAPIDPublicKey == "" || c.VAPIDPrivateKey == "" {
		return errors.New("VAPID_PUBLIC_KEY and VAPID_PRIVATE_KEY are required")
	}
	if c.DispatchWorkers < 1 {
		return fmt.Errorf("DISPATCH_WORKERS must be >= 1, got %d", c.DispatchWorkers)
	}
	if c.SubjectTimeout <= 0 || c.RunTimeout <= 0 {
		return errors.New("dispatch timeouts must be positive")
	}
	return nil
}
