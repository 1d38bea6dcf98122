// Package config loads application settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// ErrAPIKeyNotSet indicates the OpenAI API key is missing from the environment.
var ErrAPIKeyNotSet = errors.New("OPENAI_API_KEY is not set")

// Defaults applied when the corresponding environment variable is unset.
const (
	DefaultCredentialsPath  = "credentials.json"
	DefaultTokenPath        = "token.json"
	DefaultModel            = "gpt-4o"
	DefaultMaxIterations    = 10
	DefaultObservationLimit = 4000
)

// Settings holds all runtime configuration.
type Settings struct {
	OpenAIAPIKey     string
	Model            string
	CredentialsPath  string
	TokenPath        string
	MaxIterations    int
	ObservationLimit int
}

// Load reads settings from the environment, optionally loading an env file first.
// An empty envFile skips godotenv entirely.
func Load(envFile string) (*Settings, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("godotenv.Load failed: %w", err)
		}
	}

	s := &Settings{
		OpenAIAPIKey:     os.Getenv("OPENAI_API_KEY"),
		Model:            getEnv("OPENAI_MODEL", DefaultModel),
		CredentialsPath:  getEnv("GMAIL_CREDENTIALS_PATH", DefaultCredentialsPath),
		TokenPath:        getEnv("GMAIL_TOKEN_PATH", DefaultTokenPath),
		MaxIterations:    DefaultMaxIterations,
		ObservationLimit: DefaultObservationLimit,
	}

	var err error
	if s.MaxIterations, err = getEnvInt("AGENT_MAX_ITERATIONS", DefaultMaxIterations); err != nil {
		return nil, err
	}
	if s.ObservationLimit, err = getEnvInt("AGENT_OBSERVATION_LIMIT", DefaultObservationLimit); err != nil {
		return nil, err
	}

	return s, nil
}

// RequireOpenAI ensures the OpenAI API key is present. Only surfaces that
// construct the generation backend need it; serving MCP runs without one.
func (s *Settings) RequireOpenAI() error {
	if s.OpenAIAPIKey == "" {
		return ErrAPIKeyNotSet
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("invalid %s: must be positive, got %d", key, n)
	}

	return n, nil
}
