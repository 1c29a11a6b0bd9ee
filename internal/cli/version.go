package cli

import (
	"fmt"
	"io"

	"github.com/cperrin88/envpkgsearch/pkg/platform"
	"github.com/spf13/cobra"
)

// Build information. Version is overridden at link time with -ldflags.
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// NewVersionCmd creates the version command.
func NewVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  "Display version information for envpkgsearch",
		Run: func(cmd *cobra.Command, _ []string) {
			runVersion(cmd.OutOrStdout())
		},
	}

	return cmd
}

func runVersion(out io.Writer) {
	_, _ = fmt.Fprintf(out, "envpkgsearch version %s\n", Version)
	_, _ = fmt.Fprintf(out, "Build date: %s\n", BuildDate)
	_, _ = fmt.Fprintf(out, "Git commit: %s\n", GitCommit)
	_, _ = fmt.Fprintf(out, "Platform: %s\n", platform.CurrentPlatform())
}
