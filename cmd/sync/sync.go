package sync

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/sidkik/emoji-mirror/cmd/util"
	"github.com/sidkik/emoji-mirror/pkg/config"
	"github.com/sidkik/emoji-mirror/pkg/errors"
)

// New creates a new `sync` command.
func New() *cobra.Command {
	var flags *util.ConfigFlags
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Run a single synchronization pass and exit.",
		Args:  cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			cfg, err := flags.Load()
			if err != nil {
				util.HandleFatalError(err)
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			if err := run(ctx, cfg); err != nil {
				util.HandleFatalError(err)
			}
		},
	}
	flags = util.AddConfigFlags(cmd)
	return cmd
}

func run(ctx context.Context, cfg config.Config) error {
	syncer, _, err := util.NewSyncer(cfg, nil)
	if err != nil {
		return err
	}

	res, err := syncer.Pass(ctx)
	if err != nil {
		return errors.WithContext(err, "sync")
	}

	fmt.Printf("Mirrored %d emoji into %s (%d downloaded, %d removed, %d unresolved aliases)\n",
		res.Mirrored, cfg.DataDir, res.Added, res.Removed, res.Unresolved)
	return nil
}
