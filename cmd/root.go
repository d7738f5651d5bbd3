package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/sidkik/emoji-mirror/cmd/serve"
	syncCmd "github.com/sidkik/emoji-mirror/cmd/sync"
	"github.com/sidkik/emoji-mirror/cmd/util"
	"github.com/sidkik/emoji-mirror/cmd/version"
)

// verboseLogKey is the environment variable used to enable verbose logging.
// When it's set to `true`, Debug events are logged, rather than just Info and
// above.
const verboseLogKey = "EMOJI_MIRROR_LOG_VERBOSE"

// Execute runs the main CLI process.
func Execute() {
	var verbose bool
	rootCmd := &cobra.Command{
		Use:   "emoji-mirror",
		Short: "Mirror a Slack workspace's custom emoji to disk and serve them over HTTP.",

		SilenceUsage: true,

		// The call to rootCmd.Execute prints the error, so we silence errors
		// here to avoid double printing.
		SilenceErrors: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			util.SetupLogging(verbose || os.Getenv(verboseLogKey) == "true")
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging.")
	rootCmd.AddCommand(
		serve.New(),
		syncCmd.New(),
		version.New(),
	)

	if err := rootCmd.Execute(); err != nil {
		util.HandleFatalError(err)
	}
}
