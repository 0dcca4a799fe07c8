package client

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

const (
	EnvAPIKey       = "OPENAI_API_KEY"
	EnvBaseURL      = "OPENAI_BASE_URL"
	EnvOrganization = "OPENAI_ORG_ID"
	EnvModel        = "PROMPTKIT_MODEL"

	// DefaultModel is used by ConfigFromEnv when PROMPTKIT_MODEL is unset.
	DefaultModel = "gpt-4o-mini"
)

var (
	// ErrMissingAPIKey is returned by New when Config.APIKey is empty.
	ErrMissingAPIKey = errors.New("client: missing API key")
	// ErrMissingModel is returned by New when Config.Model is empty.
	ErrMissingModel = errors.New("client: missing model")
)

// Config holds the credential, the default model and the passthrough
// options of a Client.
type Config struct {
	APIKey string
	// Model is the default model, overridable per call with WithModel.
	Model        string
	BaseURL      string
	Organization string
	// MaxRetries sets the SDK's retry count. Nil keeps the SDK default.
	MaxRetries *int
	// Options are request body keys forwarded verbatim with every call.
	Options map[string]any
}

// ConfigFromEnv builds a Config from OPENAI_API_KEY, OPENAI_BASE_URL,
// OPENAI_ORG_ID and PROMPTKIT_MODEL.
func ConfigFromEnv() Config {
	cfg := Config{
		APIKey:       os.Getenv(EnvAPIKey),
		BaseURL:      os.Getenv(EnvBaseURL),
		Organization: os.Getenv(EnvOrganization),
		Model:        os.Getenv(EnvModel),
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	return cfg
}

// LoadConfig loads the given .env files (".env" when none are given) into
// the environment and returns ConfigFromEnv. Variables already set in the
// environment take precedence. A missing default .env file is not an error.
func LoadConfig(files ...string) (Config, error) {
	if len(files) == 0 {
		if _, err := os.Stat(".env"); err == nil {
			files = []string{".env"}
		}
	}
	if len(files) > 0 {
		if err := godotenv.Load(files...); err != nil {
			return Config{}, fmt.Errorf("load env files: %w", err)
		}
	}
	return ConfigFromEnv(), nil
}

func (c Config) validate() error {
	if c.APIKey == "" {
		return ErrMissingAPIKey
	}
	if c.Model == "" {
		return ErrMissingModel
	}
	return nil
}
