package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-storyform/pkg/catalog"
	"github.com/goliatone/go-storyform/pkg/submit"
)

// Environment variables that override file values.
const (
	EnvAPIURL   = "STORYFORM_API_URL"
	EnvToken    = "STORYFORM_TOKEN"
	EnvLogLevel = "STORYFORM_LOG_LEVEL"
)

const (
	defaultGraphQLPath = "/graphql"
	defaultTimeout     = 30 * time.Second
	defaultLogLevel    = "info"
)

// Config holds runtime settings for the CLI.
type Config struct {
	APIURL        string        `yaml:"api_url"`
	GraphQLPath   string        `yaml:"graphql_path"`
	Timeout       time.Duration `yaml:"timeout"`
	LogLevel      string        `yaml:"log_level"`
	HomeRoute     string        `yaml:"home_route"`
	DefaultStatus string        `yaml:"default_status"`
	Enums         Enums         `yaml:"enums"`
	Session       Session       `yaml:"session"`
}

// Enums names the server-side enum types backing the select fields.
type Enums struct {
	Category string `yaml:"category"`
	Priority string `yaml:"priority"`
}

// Session carries credentials for authenticated calls.
type Session struct {
	Token string `yaml:"token"`
}

// Default returns a configuration with every optional value filled in.
func Default() Config {
	return Config{
		GraphQLPath:   defaultGraphQLPath,
		Timeout:       defaultTimeout,
		LogLevel:      defaultLogLevel,
		HomeRoute:     submit.DefaultHomeRoute,
		DefaultStatus: submit.DefaultStatus,
		Enums: Enums{
			Category: catalog.CategoryEnum,
			Priority: catalog.PriorityEnum,
		},
	}
}

// Load reads path (when not empty), applies defaults for missing values and
// then environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := Parse(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: %s: %w", path, err)
		}
	}
	cfg.applyEnv(os.Getenv)
	cfg.applyDefaults()
	return cfg, nil
}

// Parse decodes YAML into cfg, keeping values the document leaves out.
func Parse(data []byte, cfg *Config) error {
	if cfg == nil {
		return errors.New("config: nil target")
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse yaml: %w", err)
	}
	return nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := strings.TrimSpace(getenv(EnvAPIURL)); v != "" {
		c.APIURL = v
	}
	if v := strings.TrimSpace(getenv(EnvToken)); v != "" {
		c.Session.Token = v
	}
	if v := strings.TrimSpace(getenv(EnvLogLevel)); v != "" {
		c.LogLevel = v
	}
}

func (c *Config) applyDefaults() {
	def := Default()
	if strings.TrimSpace(c.GraphQLPath) == "" {
		c.GraphQLPath = def.GraphQLPath
	}
	if c.Timeout == 0 {
		c.Timeout = def.Timeout
	}
	if strings.TrimSpace(c.LogLevel) == "" {
		c.LogLevel = def.LogLevel
	}
	if strings.TrimSpace(c.HomeRoute) == "" {
		c.HomeRoute = def.HomeRoute
	}
	if strings.TrimSpace(c.DefaultStatus) == "" {
		c.DefaultStatus = def.DefaultStatus
	}
	if strings.TrimSpace(c.Enums.Category) == "" {
		c.Enums.Category = def.Enums.Category
	}
	if strings.TrimSpace(c.Enums.Priority) == "" {
		c.Enums.Priority = def.Enums.Priority
	}
}

// Validate reports settings that cannot work.
func (c Config) Validate() error {
	if strings.TrimSpace(c.APIURL) == "" {
		return errors.New("config: api_url is required")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("config: timeout must be positive, got %s", c.Timeout)
	}
	return nil
}

// Endpoint joins the API URL and GraphQL path.
func (c Config) Endpoint() string {
	base := strings.TrimRight(strings.TrimSpace(c.APIURL), "/")
	path := strings.TrimSpace(c.GraphQLPath)
	if path == "" {
		path = defaultGraphQLPath
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return base + path
}
