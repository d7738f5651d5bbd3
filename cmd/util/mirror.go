package util

import (
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sidkik/emoji-mirror/pkg/config"
	"github.com/sidkik/emoji-mirror/pkg/errors"
	"github.com/sidkik/emoji-mirror/pkg/mirror"
	"github.com/sidkik/emoji-mirror/pkg/slack"
	"github.com/sidkik/emoji-mirror/pkg/store"
)

// ConfigFlags holds the flags shared by the commands that run passes.
type ConfigFlags struct {
	ConfigPath string
	Viper      *viper.Viper
}

// AddConfigFlags registers the config flags on cmd and binds them to the
// returned viper instance.
func AddConfigFlags(cmd *cobra.Command) *ConfigFlags {
	flags := &ConfigFlags{Viper: config.NewViper()}

	fs := cmd.Flags()
	fs.StringVar(&flags.ConfigPath, "config", "",
		"Path to the config file. Defaults to "+config.DefaultConfigPath+" if it exists.")
	fs.String(config.KeyDataDir, "", "Directory to mirror the emoji into.")
	fs.String(config.KeySlackAPIURL, "", "Base URL of the Slack Web API.")
	fs.Duration(config.KeyRequestTimeout, 0, "Timeout for each request to Slack.")
	fs.Float64(config.KeyDownloadsPerSecond, 0, "Maximum emoji downloads per second.")
	if err := flags.Viper.BindPFlags(fs); err != nil {
		// Only fails if the flag set is nil.
		panic(err)
	}
	return flags
}

// Load parses the config, applying the bound flags.
func (flags *ConfigFlags) Load() (config.Config, error) {
	return config.Load(flags.ConfigPath, flags.Viper)
}

// NewSyncer builds the syncer described by cfg. Its metrics are registered
// with reg.
func NewSyncer(cfg config.Config, reg prometheus.Registerer) (*mirror.Syncer, *store.Store, error) {
	st := store.New(afero.NewOsFs(), cfg.DataDir)
	if err := st.Init(); err != nil {
		return nil, nil, errors.WithContext(err, "init store")
	}

	client := slack.New(cfg.Token, cfg.Cookie, cfg.SlackAPIURL, cfg.RequestTimeout.Duration)
	syncer := mirror.NewSyncer(st, client, client, mirror.Options{
		DownloadsPerSecond: cfg.DownloadsPerSecond,
		Metrics:            mirror.MustNewMetrics(reg),
		Log:                log.StandardLogger(),
	})
	return syncer, st, nil
}
