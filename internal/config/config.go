// Package config loads CLI settings from a YAML file.
//
// Precedence, lowest first: Default, the config file, command-line flags.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config holds CLI settings.
type Config struct {
	// Database is the snapshot store location: a file for sqlite, a
	// directory for badger.
	Database string `yaml:"database" validate:"required"`

	// Backend selects the snapshot store.
	Backend string `yaml:"backend" validate:"oneof=sqlite badger"`

	// Format is the output format.
	Format string `yaml:"format" validate:"oneof=text json"`

	// Parallelism is the number of matcher workers.
	Parallelism int `yaml:"parallelism" validate:"gte=1,lte=256"`

	// LogLevel is the minimum slog level written to stderr.
	LogLevel string `yaml:"log_level" validate:"oneof=debug info warn error"`
}

// validate is safe for concurrent use and caches struct metadata.
var validate = validator.New(validator.WithRequiredStructEnabled())

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Database:    "semnet.db",
		Backend:     "sqlite",
		Format:      "text",
		Parallelism: 1,
		LogLevel:    "warn",
	}
}

// Load reads path over the defaults. A missing file yields the defaults
// when path is empty.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := cfg.decode(data); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) decode(data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse YAML: %w", err)
	}
	return nil
}

// Validate checks every field against its constraints.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, len(verrs))
	for i, fe := range verrs {
		msgs[i] = fieldMessage(fe)
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	name := yamlName(fe.StructField())
	switch fe.Tag() {
	case "required":
		return name + " is required"
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %q", name, fe.Param(), fe.Value())
	case "gte", "lte":
		return fmt.Sprintf("%s must be %s %s, got %v", name, fe.Tag(), fe.Param(), fe.Value())
	default:
		return fmt.Sprintf("%s failed %s", name, fe.Tag())
	}
}

func yamlName(field string) string {
	switch field {
	case "LogLevel":
		return "log_level"
	default:
		return strings.ToLower(field)
	}
}

// SlogLevel converts LogLevel to a slog.Level. Unknown values map to warn.
func (c Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
