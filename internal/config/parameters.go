// Package config provides a centralized entrypoint for the application parameters.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/creasty/defaults"
	"go.yaml.in/yaml/v3"
)

// Runtime modes.
const (
	ModeService     = "service"
	ModeLambdaHTTP  = "lambda-http"
	ModeLambdaEvent = "lambda-event"
)

var (
	// Global is a struct that contains the global configuration.
	Global global
	// Zadarma is a struct that contains the API credentials configuration.
	Zadarma zadarma
	// Webhook is a struct that contains the webhook receiver configuration.
	Webhook webhook
	// Service is a struct that contains the configuration for the service mode.
	Service service
	// Lambda is a struct that contains the configuration for the lambda mode.
	Lambda lambda
	// Archive is a struct that contains the configuration for S3 archiving of deliveries.
	Archive archive
	// Forward is a struct that contains the configuration for SNS forwarding of deliveries.
	Forward forward
	// Dedup is a struct that contains the configuration for delivery de-duplication.
	Dedup dedup
)

type global struct {
	// Mode is the runtime mode of the application.
	Mode string `yaml:"mode,omitempty" default:"service"`
	// Logging is a struct that contains the logging configuration.
	Logging struct {
		// Verbosity is the verbosity level of the application. It represents slog levels.
		Verbosity int `yaml:"verbosity,omitempty"`
		// CallerTrace is a flag that enables the caller trace in the logger.
		CallerTrace bool `yaml:"callerTrace,omitempty"`
	} `yaml:"logging,omitempty"`
}

type zadarma struct {
	// AuthMode selects where the API credentials come from: 'static' or 'ssm'.
	AuthMode string `yaml:"authMode,omitempty" default:"static"`
	// SSMKey is the SSM parameter holding the credentials as JSON.
	SSMKey string `yaml:"ssmKey,omitempty"`
	Key    string `yaml:"key,omitempty"`
	Secret string `yaml:"secret,omitempty"`
	// Sandbox targets the sandbox API.
	Sandbox bool   `yaml:"sandbox,omitempty"`
	BaseURL string `yaml:"baseUrl,omitempty"`
}

type webhook struct {
	// Secret verifies delivery signatures. It defaults to the API secret.
	Secret           string   `yaml:"secret,omitempty"`
	SignatureHeader  string   `yaml:"signatureHeader,omitempty" default:"Signature"`
	RequireSignature bool     `yaml:"requireSignature,omitempty"`
	Events           []string `yaml:"events,omitempty"`
}

type service struct {
	Path    string        `yaml:"path,omitempty" default:"/"`
	Addr    string        `yaml:"addr,omitempty"`
	Port    string        `yaml:"port,omitempty" default:"8080"`
	Timeout time.Duration `yaml:"timeout,omitempty" default:"5s"`
}

type lambda struct {
	PayloadType string `yaml:"payloadType,omitempty" default:"api-gateway-v2"`
}

type archive struct {
	Enabled bool   `yaml:"enabled,omitempty"`
	Bucket  string `yaml:"bucket,omitempty"`
	Prefix  string `yaml:"prefix,omitempty" default:"zadarma"`
}

type forward struct {
	Enabled bool   `yaml:"enabled,omitempty"`
	Topic   string `yaml:"topic,omitempty"`
}

type dedup struct {
	// Backend is 'none', 'memory' or 'redis'.
	Backend string        `yaml:"backend,omitempty" default:"none"`
	TTL     time.Duration `yaml:"ttl,omitempty" default:"1h"`
	Redis   struct {
		Address  string `yaml:"address,omitempty" default:"localhost:6379"`
		Password string `yaml:"password,omitempty"`
		DB       int    `yaml:"db,omitempty"`
		Prefix   string `yaml:"prefix,omitempty"`
	} `yaml:"redis,omitempty"`
}

// SetDefaults sets the default values for the configuration.
func SetDefaults() error {
	return errors.Join(
		defaults.Set(&Global),
		defaults.Set(&Zadarma),
		defaults.Set(&Webhook),
		defaults.Set(&Service),
		defaults.Set(&Lambda),
		defaults.Set(&Archive),
		defaults.Set(&Forward),
		defaults.Set(&Dedup),
	)
}

// LoadFromFile loads the configuration from a file.
func LoadFromFile(path string) error {
	if len(path) == 0 {
		return nil
	}
	fstat, err := os.Stat(path)
	if err != nil {
		return nil //nolint:nilerr // If the file does not exist, we ignore it.
	}
	if fstat.IsDir() {
		return fmt.Errorf("configuration file %s is a directory", path)
	}
	if !fstat.Mode().IsRegular() {
		return fmt.Errorf("configuration file %s is not a regular file", path)
	}

	content, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("failed to read configuration file %s: %w", path, err)
	}
	type all struct {
		Global  global  `yaml:"global,omitempty"`
		Zadarma zadarma `yaml:"zadarma,omitempty"`
		Webhook webhook `yaml:"webhook,omitempty"`
		Service service `yaml:"service,omitempty"`
		Lambda  lambda  `yaml:"lambda,omitempty"`
		Archive archive `yaml:"archive,omitempty"`
		Forward forward `yaml:"forward,omitempty"`
		Dedup   dedup   `yaml:"dedup,omitempty"`
	}
	var a all
	if err = yaml.Unmarshal(content, &a); err != nil {
		return fmt.Errorf("failed to unmarshal configuration file %s: %w", path, err)
	}
	Global = a.Global
	Zadarma = a.Zadarma
	Webhook = a.Webhook
	Service = a.Service
	Lambda = a.Lambda
	Archive = a.Archive
	Forward = a.Forward
	Dedup = a.Dedup

	return nil
}
