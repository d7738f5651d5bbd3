package config

import (
	"encoding/json"
	"path/filepath"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/sidkik/emoji-mirror/pkg/errors"
)

const (
	// DefaultConfigPath is read if it exists and no other path is given.
	DefaultConfigPath = "~/.emoji-mirror.yaml"

	// InitialConfigVersion is the first version of the config file. Config
	// files that do not specify a version default to this version.
	InitialConfigVersion = "v1alpha1"

	// SupportedConfigVersion is the config file version understood by this
	// binary.
	SupportedConfigVersion = "v1alpha1"
)

const missingTokenTemplate = "No Slack token is configured.\n" +
	"Set the SLACK_BOT_USER_TOKEN environment variable, add it to a .env " +
	"file in the working directory, or set `token` in %q."

// Config contains everything needed to run the mirror.
type Config struct {
	Version string `json:"version,omitempty"`

	// DataDir is the directory the emoji and index are mirrored into.
	DataDir string `json:"dataDir,omitempty"`

	// Listen is the address the HTTP server listens on.
	Listen string `json:"listen,omitempty"`

	// BasePath is the URL path the data directory is served under.
	BasePath string `json:"basePath,omitempty"`

	// Interval is the time between scheduled passes.
	Interval Duration `json:"interval,omitempty"`

	// RequestTimeout bounds each call to Slack.
	RequestTimeout Duration `json:"requestTimeout,omitempty"`

	// DownloadsPerSecond paces emoji downloads. Zero disables pacing.
	DownloadsPerSecond float64 `json:"downloadsPerSecond,omitempty"`

	SlackAPIURL string `json:"slackAPIURL,omitempty"`
	Token       string `json:"token,omitempty"`
	Cookie      string `json:"cookie,omitempty"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		Version:            InitialConfigVersion,
		DataDir:            "emoji",
		Listen:             ":3000",
		BasePath:           "/",
		Interval:           Duration{20 * time.Second},
		RequestTimeout:     Duration{60 * time.Second},
		DownloadsPerSecond: 5,
		SlackAPIURL:        "https://slack.com/api",
	}
}

// Load builds the configuration. The config file at path is read first; if
// path is empty, DefaultConfigPath is read if it exists. Settings in v (the
// environment, a .env file and command line flags) take precedence over the
// file.
func Load(path string, v *viper.Viper) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultConfigPath
	}
	path, err := homedirExpand(path)
	if err != nil {
		return Config{}, errors.WithContext(err, "expand config path")
	}

	err = readConfigFile(path, &cfg, SupportedConfigVersion)
	switch err.(type) {
	case nil:
		log.WithField("path", path).Debug("Loaded config file")
	case errors.FileNotFound:
		if explicit {
			return Config{}, errors.NewFriendlyError(
				"The config file %q doesn't exist.", path)
		}
	default:
		return Config{}, errors.WithContext(err, "parse")
	}

	if v != nil {
		applyOverrides(&cfg, v)
	}

	cfg.DataDir, err = homedirExpand(cfg.DataDir)
	if err != nil {
		return Config{}, errors.WithContext(err, "expand data directory")
	}
	cfg.DataDir = filepath.Clean(cfg.DataDir)

	if err := cfg.Validate(); err != nil {
		if missing, ok := err.(errors.MissingFieldError); ok && missing.Field == KeyToken {
			return Config{}, errors.NewFriendlyError(missingTokenTemplate, path)
		}
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that the required fields are set.
func (c Config) Validate() error {
	switch {
	case c.Token == "":
		return errors.MissingFieldError{Field: KeyToken}
	case c.DataDir == "":
		return errors.MissingFieldError{Field: KeyDataDir}
	case c.Listen == "":
		return errors.MissingFieldError{Field: KeyListen}
	case c.Interval.Duration <= 0:
		return errors.New("interval must be positive, got %s", c.Interval)
	case c.DownloadsPerSecond < 0:
		return errors.New("downloadsPerSecond can't be negative")
	}
	return nil
}

// Duration is a time.Duration that's written as a string such as "20s" in
// config files.
type Duration struct {
	time.Duration
}

// MarshalJSON implements json.Marshaler.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return errors.WithContext(err, "duration must be a string")
	}

	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}
