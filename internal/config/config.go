// Package config loads the s3studio YAML configuration file.
package config

import (
	"errors"
	"os"

	"github.com/koustreak/s3studio/internal/errs"
	"github.com/koustreak/s3studio/internal/filestore"
	"github.com/koustreak/s3studio/internal/logger"
	"go.yaml.in/yaml/v3"
)

// Config is the whole file.
type Config struct {
	// Listen is the HTTP address for the serve command.
	Listen string `yaml:"listen"`

	// MaxUploadBytes caps a single PUT body.
	MaxUploadBytes int64 `yaml:"max_upload_bytes"`

	Log logger.Config `yaml:"log"`

	// Storage is used when no profile is selected.
	Storage filestore.Config `yaml:"storage"`

	// ProfilesFile is where saved profiles live.
	ProfilesFile string `yaml:"profiles_file"`

	// Profile selects a saved profile by ID or name. Empty means the
	// store's active profile, then Storage.
	Profile string `yaml:"profile"`
}

// Default returns the settings used when no file is given.
func Default() *Config {
	return &Config{
		Listen:         ":8080",
		MaxUploadBytes: 64 << 20,
		Log:            logger.Config{Level: "info", Format: "json", TimeFormat: "rfc3339"},
		Storage:        filestore.Config{Provider: filestore.ProviderS3, UseSSL: true},
		ProfilesFile:   "profiles.yaml",
	}
}

// Load reads path over the defaults. An empty path or a missing file
// yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindInvalidInput, "failed to read config "+path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errs.Wrap(errs.ErrKindInvalidInput, "failed to parse config "+path, err)
	}
	cfg.Storage.Normalize()
	return cfg, nil
}
