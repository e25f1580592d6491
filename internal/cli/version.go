package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// VersionInfo holds build-time version information
type VersionInfo struct {
	Version string
	Commit  string
	Date    string
}

// NewVersionCommand creates the version command
func NewVersionCommand(versionInfo VersionInfo) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Marketplace\n")
			fmt.Fprintf(out, "  Version:    %s\n", versionInfo.Version)
			fmt.Fprintf(out, "  Commit:     %s\n", versionInfo.Commit)
			fmt.Fprintf(out, "  Built:      %s\n", versionInfo.Date)
			fmt.Fprintf(out, "  Go version: %s\n", runtime.Version())
		},
	}
}
