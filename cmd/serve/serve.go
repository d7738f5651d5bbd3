package serve

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/sidkik/emoji-mirror/cmd/util"
	"github.com/sidkik/emoji-mirror/pkg/config"
	"github.com/sidkik/emoji-mirror/pkg/mirror"
	"github.com/sidkik/emoji-mirror/pkg/server"
)

// New creates a new `serve` command.
func New() *cobra.Command {
	var flags *util.ConfigFlags
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Mirror the Slack emoji and serve them over HTTP.",
		Long: "Mirror the workspace's custom emoji into the data directory, " +
			"keep them up to date\nin the background, and serve the directory " +
			"over HTTP.",
		Args: cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			cfg, err := flags.Load()
			if err != nil {
				util.HandleFatalError(err)
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := run(ctx, cfg); err != nil {
				util.HandleFatalError(err)
			}
		},
	}

	flags = util.AddConfigFlags(cmd)
	cmd.Flags().String(config.KeyListen, "", "Address to serve the emoji on.")
	cmd.Flags().String(config.KeyBasePath, "", "URL path to serve the emoji under.")
	cmd.Flags().Duration(config.KeyInterval, 0, "Time between synchronization passes.")
	if err := flags.Viper.BindPFlags(cmd.Flags()); err != nil {
		panic(err)
	}
	return cmd
}

func run(ctx context.Context, cfg config.Config) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	syncer, st, err := util.NewSyncer(cfg, reg)
	if err != nil {
		return err
	}
	scheduler := mirror.NewScheduler(syncer, cfg.Interval.Duration, nil)

	srv := server.New(server.Config{
		Address:  cfg.Listen,
		BasePath: cfg.BasePath,
		Fs:       st.Fs(),
		Dir:      st.Dir(),
		Gatherer: reg,
		Trigger:  scheduler.Trigger,
	})

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		defer util.HandlePanic()
		return scheduler.Run(ctx)
	})
	group.Go(func() error {
		defer util.HandlePanic()
		return srv.Run(ctx)
	})
	return group.Wait()
}
