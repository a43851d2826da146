// Package config loads and validates the YAML configuration describing
// a virtual console: identity, prompt, initial environment and the
// filesystem mount layout.
package config

import (
	_ "embed"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"sigs.k8s.io/yaml"
)

//go:embed default/config.yaml
var defaultConfigData []byte

// ConfigurationName is the filename a config directory is expected to
// hold.
const ConfigurationName = "config.yaml"

// Mount backends.
const (
	BackendMemory = "memory"
	BackendBolt   = "bolt"
)

type Configuration struct {
	// Hostname reported by the environment and the prompt.
	Hostname string `json:"hostname" validate:"required,hostname_rfc1123"`
	// User is the name the session runs as.
	User string `json:"user" validate:"required"`
	// Home is the user's home directory inside the virtual filesystem.
	Home string `json:"home" validate:"required,startswith=/"`
	// Prompt is the PS1 template. Supports \u \h \w \$.
	Prompt string `json:"prompt"`

	// HistorySize bounds session history; 0 means the default.
	HistorySize int `json:"history_size" validate:"gte=0"`

	// Env seeds every new session's environment.
	Env map[string]string `json:"env"`

	// StatePath, when set, points at a bbolt database used to persist
	// session state across runs.
	StatePath string `json:"state_path"`

	// EventsLog, when set, appends session and filesystem events to a
	// newline delimited JSON file.
	EventsLog string `json:"events_log"`

	Mounts []MountConfig `json:"mounts" validate:"unique=Path,dive"`
}

// MountConfig attaches one storage backend at a path.
type MountConfig struct {
	Path string `json:"path" validate:"required,startswith=/"`
	// Backend selects the provider implementation.
	Backend string `json:"backend" validate:"required,oneof=memory bolt"`
	// Source is the backing file for durable backends; unused by memory.
	Source   string `json:"source" validate:"required_if=Backend bolt"`
	ReadOnly bool   `json:"read_only"`
}

// Validate checks the configuration for semantic errors, reporting
// fields by their YAML names.
func (c *Configuration) Validate() error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	})
	return validate.Struct(c)
}

// Default returns the built-in configuration.
func Default() *Configuration {
	var out Configuration
	if err := yaml.UnmarshalStrict(defaultConfigData, &out); err != nil {
		panic(err)
	}
	return &out
}

// DefaultYAML returns the built-in configuration's raw YAML, suitable
// for writing a starter config file.
func DefaultYAML() []byte {
	return append([]byte(nil), defaultConfigData...)
}
