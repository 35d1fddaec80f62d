package main

import (
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	captureagent "github.com/camerakit/captureagent"
	"github.com/camerakit/captureagent/internal/config"
	"github.com/camerakit/captureagent/pkg/storage"
	"github.com/camerakit/captureagent/providers/sim"
)

const (
	envOutputDir  = "CAPTURE_OUTPUT_DIR"
	envDBPath     = "CAPTURE_DB_PATH"
	envJobTimeout = "CAPTURE_JOB_TIMEOUT"
)

// runJob wires the agent (sim backend, file sink, optional SQLite recorder)
// and executes one job of the given kind.
func runJob(cmd *cobra.Command, kind captureagent.JobKind, jobPath string) error {
	if rootVerbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	outDir := strings.TrimSpace(rootOutDir)
	if outDir == "" {
		outDir = config.String(envOutputDir, "captures")
	}
	sink, err := captureagent.NewFileSink(outDir)
	if err != nil {
		return err
	}

	var recorder captureagent.Recorder
	dbPath := strings.TrimSpace(rootDBPath)
	if dbPath == "" {
		dbPath = config.String(envDBPath, "")
	}
	if dbPath != "" {
		sqlRec, err := storage.NewSQLiteRecorder(dbPath)
		if err != nil {
			return err
		}
		defer func() {
			if err := sqlRec.Close(); err != nil {
				log.Error().Err(err).Msg("close job-history db failed")
			}
		}()
		recorder = sqlRec
	}

	timeout := config.Duration(envJobTimeout, captureagent.DefaultJobTimeout)
	agent, err := captureagent.NewAgent(ctx, captureagent.Config{
		Provider:        sim.New(sim.Config{}),
		Sink:            sink,
		Recorder:        recorder,
		ConvergeTimeout: timeout,
		CaptureTimeout:  timeout,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := agent.Close(); err != nil {
			log.Error().Err(err).Msg("close camera session failed")
		}
	}()

	var job *captureagent.Job
	if jobPath != "" {
		job, err = captureagent.ParseJobFile(kind, jobPath)
	} else {
		job, err = captureagent.ParseJob(kind, nil)
	}
	if err != nil {
		return err
	}

	start := time.Now()
	if err := agent.RunJob(ctx, job); err != nil {
		return err
	}
	log.Info().Dur("elapsed", time.Since(start)).Str("out", outDir).Msg("job finished")
	return nil
}
