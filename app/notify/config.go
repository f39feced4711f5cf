package notify

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the YAML notification configuration file
type Config struct {
	Destinations []string      `yaml:"destinations"`
	Template     string        `yaml:"template"` // path to custom message template
	Timeout      time.Duration `yaml:"timeout"`
	Retries      int           `yaml:"retries"`
	Concurrency  int           `yaml:"concurrency"`

	SMTP struct {
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		Username string `yaml:"username"`
		Password string `yaml:"password"`
		TLS      bool   `yaml:"tls"`
	} `yaml:"smtp"`

	SlackToken string `yaml:"slack_token"`
}

// LoadConfig reads and parses the YAML notification config
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path) // nolint gosec
	if err != nil {
		return nil, fmt.Errorf("failed to read notification config %s: %w", path, err)
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse notification config %s: %w", path, err)
	}
	return cfg, nil
}

// NewServiceFromConfig makes a notification service from a parsed config
func NewServiceFromConfig(cfg *Config) *Service {
	return NewService(
		Params{
			TemplateFile: cfg.Template,
			Timeout:      cfg.Timeout,
			Retries:      cfg.Retries,
			Concurrency:  cfg.Concurrency,
		},
		SendersParams{
			Destinations: cfg.Destinations,
			SMTPHost:     cfg.SMTP.Host,
			SMTPPort:     cfg.SMTP.Port,
			SMTPUsername: cfg.SMTP.Username,
			SMTPPassword: cfg.SMTP.Password,
			SMTPTLS:      cfg.SMTP.TLS,
			SlackToken:   cfg.SlackToken,
		},
	)
}
