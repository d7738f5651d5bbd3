package version

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sidkik/emoji-mirror/pkg/version"
)

// New creates a new `version` command.
func New() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version of emoji-mirror.",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("emoji-mirror version: %s\n", version.Version)
		},
	}
}
