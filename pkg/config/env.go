package config

import (
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Keys shared by the config file overlay, environment variables and command
// line flags.
const (
	KeyDataDir            = "data-dir"
	KeyListen             = "listen"
	KeyBasePath           = "base-path"
	KeyInterval           = "interval"
	KeyRequestTimeout     = "request-timeout"
	KeyDownloadsPerSecond = "downloads-per-second"
	KeySlackAPIURL        = "slack-api-url"
	KeyToken              = "token"
	KeyCookie             = "cookie"
)

// EnvPrefix prefixes the environment variable of each key, e.g.
// EMOJI_MIRROR_DATA_DIR.
const EnvPrefix = "EMOJI_MIRROR"

// DotEnvPath is the .env file read from the working directory.
const DotEnvPath = ".env"

var keys = []string{
	KeyDataDir, KeyListen, KeyBasePath, KeyInterval, KeyRequestTimeout,
	KeyDownloadsPerSecond, KeySlackAPIURL, KeyToken, KeyCookie,
}

// legacyEnv are the environment variables the credentials were historically
// read from.
var legacyEnv = map[string]string{
	KeyToken:  "SLACK_BOT_USER_TOKEN",
	KeyCookie: "SLACK_COOKIE",
}

// NewViper returns a viper instance that reads every key from the
// environment, falling back to the .env file in the working directory.
// Callers bind their command line flags to it.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	for key, legacy := range legacyEnv {
		// BindEnv only fails if no key is given.
		_ = v.BindEnv(key, envName(key), legacy)
	}

	loadDotEnv(v)
	return v
}

// loadDotEnv makes the variables in the .env file the defaults for v, so
// that the real environment and flags take precedence.
func loadDotEnv(v *viper.Viper) {
	dotEnv := viper.New()
	dotEnv.SetFs(fs)
	dotEnv.SetConfigFile(DotEnvPath)
	dotEnv.SetConfigType("env")
	if err := dotEnv.ReadInConfig(); err != nil {
		log.WithError(err).Debug("Not using .env file")
		return
	}

	for _, key := range keys {
		names := []string{envName(key)}
		if legacy, ok := legacyEnv[key]; ok {
			names = append(names, legacy)
		}

		// Viper lowercases the keys it reads from files.
		for _, name := range names {
			if name = strings.ToLower(name); dotEnv.IsSet(name) {
				v.SetDefault(key, dotEnv.GetString(name))
				break
			}
		}
	}
}

func applyOverrides(cfg *Config, v *viper.Viper) {
	if v.IsSet(KeyDataDir) {
		cfg.DataDir = v.GetString(KeyDataDir)
	}
	if v.IsSet(KeyListen) {
		cfg.Listen = v.GetString(KeyListen)
	}
	if v.IsSet(KeyBasePath) {
		cfg.BasePath = v.GetString(KeyBasePath)
	}
	if v.IsSet(KeyInterval) {
		cfg.Interval = Duration{v.GetDuration(KeyInterval)}
	}
	if v.IsSet(KeyRequestTimeout) {
		cfg.RequestTimeout = Duration{v.GetDuration(KeyRequestTimeout)}
	}
	if v.IsSet(KeyDownloadsPerSecond) {
		cfg.DownloadsPerSecond = v.GetFloat64(KeyDownloadsPerSecond)
	}
	if v.IsSet(KeySlackAPIURL) {
		cfg.SlackAPIURL = v.GetString(KeySlackAPIURL)
	}
	if v.IsSet(KeyToken) {
		cfg.Token = v.GetString(KeyToken)
	}
	if v.IsSet(KeyCookie) {
		cfg.Cookie = v.GetString(KeyCookie)
	}
}

func envName(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, "-", "_"))
}
