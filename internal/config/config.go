// Package config loads the optional .ganttloom.yaml project file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/joshharrison/ganttloom/internal/calendar"
)

// DefaultFile is looked up in the working directory when no path is given.
const DefaultFile = ".ganttloom.yaml"

// Output formats for the schedule command.
const (
	FormatTable = "table"
	FormatJSON  = "json"
)

// Config is the ganttloom project configuration.
type Config struct {
	// Tasks is the default task file.
	Tasks  string       `yaml:"tasks"`
	Start  string       `yaml:"start"`
	Format string       `yaml:"format"`
	Chart  ChartConfig  `yaml:"chart"`
	Color  *bool        `yaml:"color"`
	Infer  InferConfig  `yaml:"infer"`
	Server ServerConfig `yaml:"server"`
}

// ChartConfig controls the ASCII Gantt chart.
type ChartConfig struct {
	Width int    `yaml:"width"`
	Unit  string `yaml:"unit"`
}

// InferConfig configures dependency inference.
type InferConfig struct {
	Model string `yaml:"model"`
}

// ServerConfig configures the HTTP endpoint.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Tasks:  "tasks.yaml",
		Start:  "today",
		Format: FormatTable,
		Chart:  ChartConfig{Width: 60, Unit: "days"},
		Server: ServerConfig{Port: 7700},
	}
}

// Load reads the config at path over the defaults. An empty path means
// DefaultFile, which may be absent; an explicit path must exist.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks field values that yaml decoding cannot.
func (c *Config) Validate() error {
	switch c.Format {
	case FormatTable, FormatJSON:
	default:
		return fmt.Errorf("format must be %q or %q, got %q", FormatTable, FormatJSON, c.Format)
	}
	if c.Chart.Width < 10 {
		return fmt.Errorf("chart.width must be at least 10, got %d", c.Chart.Width)
	}
	switch c.Chart.Unit {
	case "days", "weeks":
	default:
		return fmt.Errorf("chart.unit must be \"days\" or \"weeks\", got %q", c.Chart.Unit)
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	if _, err := c.StartDate(); err != nil {
		return err
	}
	return nil
}

// StartDate resolves Start, where "today" (or empty) means the current date.
func (c *Config) StartDate() (calendar.Date, error) {
	s := strings.TrimSpace(c.Start)
	if s == "" || strings.EqualFold(s, "today") {
		return calendar.Today(), nil
	}
	d, err := calendar.Parse(s)
	if err != nil {
		return calendar.Date{}, fmt.Errorf("start: %w", err)
	}
	return d, nil
}

// ColorEnabled reports whether colored output is wanted. Unset means yes.
func (c *Config) ColorEnabled() bool {
	return c.Color == nil || *c.Color
}
