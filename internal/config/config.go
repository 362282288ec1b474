package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Provider string `yaml:"provider"`
	APIKey   string `yaml:"api_key,omitempty"`
	Model    string `yaml:"model"`
	BaseURL  string `yaml:"base_url,omitempty"`

	Policy Policy `yaml:"policy"`

	Debug bool `yaml:"debug,omitempty"`
}

// Policy holds the conversation bounds. These are product knobs, not
// invariants: the orchestrator enforces whatever values are configured.
type Policy struct {
	// MaxRounds is the number of clarification rounds allowed before the
	// orchestrator optimizes with whatever context it has.
	MaxRounds int `yaml:"max_rounds"`

	// MaxQuestions caps how many clarifying questions one round may ask.
	MaxQuestions int `yaml:"max_questions"`

	// TimeoutSeconds bounds every model call.
	TimeoutSeconds int `yaml:"timeout_seconds"`
}

func (p Policy) Timeout() time.Duration {
	if p.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(p.TimeoutSeconds) * time.Second
}

func DefaultPolicy() Policy {
	return Policy{
		MaxRounds:      2,
		MaxQuestions:   4,
		TimeoutSeconds: 30,
	}
}

func DefaultConfig() *Config {
	return &Config{
		Provider: "ollama",
		Model:    "llama3.1:8b",
		Policy:   DefaultPolicy(),
	}
}

func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "pilot"), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

func Exists() bool {
	path, err := ConfigPath()
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	// Older config files predate the policy block
	if cfg.Policy.MaxRounds == 0 {
		cfg.Policy.MaxRounds = DefaultPolicy().MaxRounds
	}
	if cfg.Policy.MaxQuestions == 0 {
		cfg.Policy.MaxQuestions = DefaultPolicy().MaxQuestions
	}
	if cfg.Policy.TimeoutSeconds == 0 {
		cfg.Policy.TimeoutSeconds = DefaultPolicy().TimeoutSeconds
	}

	return &cfg, nil
}

func (c *Config) Save() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	path, err := ConfigPath()
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}
