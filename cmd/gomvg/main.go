package main

import (
	"fmt"
	"log"
	"os"

	"github.com/philipparndt/gomvg/internal/monitoring"
	"github.com/philipparndt/gomvg/version"
	"github.com/spf13/cobra"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "gomvg",
	Short: "Build 3D faces from clicks on calibrated camera views",
	Long: `gomvg reconstructs planar quad faces from points picked in calibrated camera
views, using a sparse point cloud as depth reference. Scenes and scripted
pointer events are described in YAML and can be replayed, inspected and
projected from the command line.`,
	Version: version.GetFullVersion(),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if !verbose {
			monitoring.SetLogger(nil)
			return
		}
		logger := log.New(os.Stderr, "", log.Ltime)
		monitoring.SetLogger(logger.Printf)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log session events to stderr")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
