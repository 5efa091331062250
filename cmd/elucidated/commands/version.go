package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roasbeef/elucidate/internal/build"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Display version information",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Printf("elucidated version %s\n", build.Version())
	},
}
