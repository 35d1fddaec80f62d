package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/camerakit/captureagent/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "captureagent",
	Short: "Scripted capture and 3A convergence driver for camera devices",
	Long: `captureagent drives a camera device through scripted capture jobs for
automated test and calibration runs: bulk captures from a JSON request list,
3A (AE/AF/AWB) convergence, and device-property dumps. Artifacts land in the
output directory; job history can be mirrored to a SQLite database.`,
}

var (
	rootOutDir  string
	rootDBPath  string
	rootVerbose bool
)

func init() {
	output := zerolog.ConsoleWriter{Out: os.Stderr}
	log.Logger = zerolog.New(output).With().Timestamp().Logger()
	rootCmd.PersistentFlags().StringVar(&rootOutDir, "out", "", "Artifact output directory overriding $CAPTURE_OUTPUT_DIR")
	rootCmd.PersistentFlags().StringVar(&rootDBPath, "db", "", "SQLite job-history path overriding $CAPTURE_DB_PATH (empty disables)")
	rootCmd.PersistentFlags().BoolVar(&rootVerbose, "verbose", false, "Log per-frame capture results")
	rootCmd.AddCommand(
		newCaptureCmd(),
		newConvergeCmd(),
		newPropsCmd(),
	)
	_ = config.Ensure()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal().Err(err).Msg("captureagent command failed")
	}
}
