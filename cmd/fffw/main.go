// Package main provides the fffw command line entry point.
package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/just-work/fffw-sub000/pkg/job"
	"github.com/just-work/fffw-sub000/pkg/prober"
	"github.com/just-work/fffw-sub000/pkg/wrapper"
)

var (
	verbose bool
	timeout time.Duration
)

func main() {
	root := &cobra.Command{
		Use:           "fffw",
		Short:         "ffmpeg filter graph builder and runner",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr,
				&slog.HandlerOptions{Level: level})))
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	runCmd := &cobra.Command{
		Use:   "run <job.yaml>",
		Short: "Compile a job spec and execute ffmpeg",
		Args:  cobra.ExactArgs(1),
		RunE:  runJob,
	}
	runCmd.Flags().DurationVar(&timeout, "timeout", 0, "kill ffmpeg after this duration")

	root.AddCommand(
		&cobra.Command{
			Use:   "probe <uri>",
			Short: "Probe a media file and print stream metadata as JSON",
			Args:  cobra.ExactArgs(1),
			RunE:  runProbe,
		},
		&cobra.Command{
			Use:   "render <job.yaml>",
			Short: "Compile a job spec and print the ffmpeg command line",
			Args:  cobra.ExactArgs(1),
			RunE:  runRender,
		},
		runCmd,
	)

	if err := root.Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func runProbe(cmd *cobra.Command, args []string) error {
	p := prober.NewProber()
	metadata, err := p.Analyze(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(metadata)
}

func runRender(cmd *cobra.Command, args []string) error {
	argv, err := compile(args[0])
	if err != nil {
		return err
	}
	for i, arg := range argv {
		if i > 0 {
			fmt.Print(" ")
		}
		fmt.Print(arg)
	}
	fmt.Println()
	return nil
}

func runJob(cmd *cobra.Command, args []string) error {
	argv, err := compile(args[0])
	if err != nil {
		return err
	}

	result, err := wrapper.Run(cmd.Context(), argv, &wrapper.RunOptions{
		Timeout: timeout,
		Logger:  slog.Default(),
	})
	if err != nil {
		return err
	}
	if result.ExitCode == wrapper.KilledByTimeout {
		return fmt.Errorf("ffmpeg killed after %s timeout", timeout)
	}
	if result.ExitCode != 0 {
		return fmt.Errorf("ffmpeg exited %d", result.ExitCode)
	}
	slog.Info("transcode finished")
	return nil
}

// compile loads a job spec and assembles the full ffmpeg argument vector.
func compile(path string) ([]string, error) {
	spec, err := job.Load(path)
	if err != nil {
		return nil, err
	}
	ff, err := job.Build(spec)
	if err != nil {
		return nil, err
	}
	return ff.Args()
}
