package main

import (
	"github.com/spf13/cobra"

	captureagent "github.com/camerakit/captureagent"
)

func newCaptureCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "capture <job.json>",
		Short: "Run a bulk capture job from a JSON request list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJob(cmd, captureagent.JobCapture, args[0])
		},
	}
}

func newConvergeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "converge [job.json]",
		Short: "Drive 3A until AE, AF and AWB all converge",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			return runJob(cmd, captureagent.JobConverge, path)
		},
	}
}

func newPropsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "props",
		Short: "Dump the device properties as a metadata artifact",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJob(cmd, captureagent.JobProps, "")
		},
	}
}
