package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// SourceFile loads the question bank from questions.path.
	SourceFile = "file"
	// SourcePostgres loads the question bank named questions.name from the question_banks table.
	SourcePostgres = "postgres"
)

type Config struct {
	Server struct {
		Port      string `yaml:"port"`
		SecretKey string `yaml:"secret_key"`
	} `yaml:"server"`
	Session struct {
		TTL    string `yaml:"ttl"`
		Cookie string `yaml:"cookie"`
		Secure bool   `yaml:"secure"`
	} `yaml:"session"`
	Redis struct {
		URL      string `yaml:"url"`
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Database struct {
		URL string `yaml:"url"`
	} `yaml:"database"`
	Questions struct {
		Path   string `yaml:"path"`
		Source string `yaml:"source"`
		Name   string `yaml:"name"`
	} `yaml:"questions"`
}

// Load reads YAML config from path, then applies environment overrides.
// A missing file is not an error; the environment and defaults still apply.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return cfg, err
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	cfg.applyEnv(os.LookupEnv)
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup("SECRET_KEY"); ok {
		c.Server.SecretKey = v
	}
	if v, ok := lookup("DATABASE_URL"); ok {
		c.Database.URL = v
	}
	if v, ok := lookup("QUESTIONS_PATH"); ok {
		c.Questions.Path = v
	}
	if v, ok := lookup("PORT"); ok && v != "" {
		c.Server.Port = v
	}
	if v, ok := lookup("REDIS_URL"); ok {
		c.Redis.URL = v
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if c.Session.Cookie == "" {
		c.Session.Cookie = "sat_session"
	}
	if c.Questions.Source == "" {
		c.Questions.Source = SourceFile
	}
	if c.Questions.Path == "" {
		c.Questions.Path = "questions.json"
	}
	if c.Questions.Name == "" {
		c.Questions.Name = "default"
	}
}

// Validate reports settings the server cannot start without.
func (c Config) Validate() error {
	if c.Server.SecretKey == "" {
		return fmt.Errorf("secret key not configured (server.secret_key or SECRET_KEY)")
	}
	switch c.Questions.Source {
	case SourceFile, SourcePostgres:
	default:
		return fmt.Errorf("unknown questions source %q", c.Questions.Source)
	}
	return nil
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
