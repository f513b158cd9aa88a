package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"
)

const logFileName = "heartswarm.log"

var (
	dataDir string
	debug   bool
	// Run settings
	configFile  string
	preset      string
	integrator  string
	frames      int
	seed        int64
	targets     int
	sampleEvery int
	pointerPath string
	// Live view
	frameRate int
	theme     string
	scale     float32
	// Output files
	outFile string
	svgFile string
	history int
	// Tuning and sweeps
	tuneSteps  int
	sweepSteps int
	tuneMetric string
	elasticMin float64
	elasticMax float64
	dampMin    float64
	dampMax    float64
	sweepMin   float64
	sweepMax   float64
)

// main registers the commands, launches the live view when no subcommand is
// given and exits 1 when a command fails.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var logFile *os.File

	rootCmd := &cobra.Command{
		Use:          "heartswarm",
		Short:        "spring swarm tracing a breathing heart",
		SilenceUsage: true,
		RunE:         runLive,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logFile = setupLogging(debug, dataDir)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logFile != nil {
				logFile.Close()
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".heartswarm", "data directory")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "write a debug log to the data directory")
	addSwarmFlags(rootCmd)
	rootCmd.Flags().IntVar(&frameRate, "fps", 60, "frame rate")
	rootCmd.Flags().StringVar(&theme, "theme", "", "colour theme")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run the swarm in the terminal, following the mouse",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addSwarmFlags(liveCmd)
	liveCmd.Flags().IntVar(&frameRate, "fps", 60, "frame rate")
	liveCmd.Flags().StringVar(&theme, "theme", "", "colour theme")

	guiCmd := &cobra.Command{
		Use:   "gui",
		Short: "run the swarm in a desktop window",
		Args:  cobra.NoArgs,
		RunE:  runGUI,
	}
	addSwarmFlags(guiCmd)
	guiCmd.Flags().IntVar(&frameRate, "fps", 60, "frame rate")
	guiCmd.Flags().Float32Var(&scale, "scale", 1, "window pixels per swarm unit")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run the swarm headless and store the result",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addSwarmFlags(runCmd)
	runCmd.Flags().IntVar(&sampleEvery, "sample-every", 1, "frames between stored samples")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored run (latest by default)",
		Args:  cobra.MaximumNArgs(1),
		RunE:  plotRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run samples to CSV",
		Args:  cobra.MaximumNArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (stdout if empty)")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run metadata and samples to JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (stdout if empty)")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "spectrum and phase portrait of a stored run",
		Args:  cobra.MaximumNArgs(1),
		RunE:  analyzeRun,
	}

	snapshotCmd := &cobra.Command{
		Use:   "snapshot",
		Short: "run headless and write the last frames as SVG",
		Args:  cobra.NoArgs,
		RunE:  snapshot,
	}
	addSwarmFlags(snapshotCmd)
	snapshotCmd.Flags().StringVarP(&svgFile, "out", "o", "heartswarm.svg", "output file")
	snapshotCmd.Flags().IntVar(&history, "history", 8, "number of fading frames kept")

	compareCmd := &cobra.Command{
		Use:   "compare [stepper...]",
		Short: "compare steppers on the same swarm (all by default)",
		RunE:  compareSteppers,
	}
	addSwarmFlags(compareCmd)

	tuneCmd := &cobra.Command{
		Use:   "tune",
		Short: "grid search elasticity and damping",
		Args:  cobra.NoArgs,
		RunE:  tune,
	}
	addSwarmFlags(tuneCmd)
	tuneCmd.Flags().IntVar(&tuneSteps, "steps", 5, "grid points per parameter")
	tuneCmd.Flags().StringVar(&tuneMetric, "metric", "convergence", "metric to minimise")
	tuneCmd.Flags().Float64Var(&elasticMin, "elasticity-min", 0.05, "lowest elasticity")
	tuneCmd.Flags().Float64Var(&elasticMax, "elasticity-max", 0.3, "highest elasticity")
	tuneCmd.Flags().Float64Var(&dampMin, "damping-min", 0.05, "lowest damping")
	tuneCmd.Flags().Float64Var(&dampMax, "damping-max", 0.5, "highest damping")

	sweepCmd := &cobra.Command{
		Use:   "sweep [param]",
		Short: "sweep one swarm parameter",
		Args:  cobra.ExactArgs(1),
		RunE:  sweep,
	}
	addSwarmFlags(sweepCmd)
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 0.05, "first value")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 0.5, "last value")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 10, "number of values")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a yaml scenario of scripted pointer runs",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	rootCmd.AddCommand(liveCmd, guiCmd, runCmd, listCmd, plotCmd, exportCSVCmd, exportJSONCmd, analyzeCmd,
		snapshotCmd, compareCmd, tuneCmd, sweepCmd, presetsCmd, scenarioCmd)
	return rootCmd
}

// addSwarmFlags registers the flags that override the preset and config
// file. They only take effect when set on the command line.
func addSwarmFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "start from a named preset")
	cmd.Flags().StringVar(&integrator, "integrator", "", "stepper")
	cmd.Flags().IntVar(&frames, "frames", 0, "frames to run")
	cmd.Flags().Int64Var(&seed, "seed", 1, "random seed")
	cmd.Flags().IntVar(&targets, "targets", 0, "number of target slots")
	cmd.Flags().StringVar(&pointerPath, "pointer", "", "scripted pointer path (yaml)")
}

// setupLogging routes the standard logger to dir/heartswarm.log when debug is
// set and discards it otherwise. The caller closes the returned file.
func setupLogging(debug bool, dir string) *os.File {
	if !debug {
		log.SetOutput(io.Discard)
		return nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "log dir: %v\n", err)
		log.SetOutput(io.Discard)
		return nil
	}
	f, err := os.OpenFile(filepath.Join(dir, logFileName), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "log file: %v\n", err)
		log.SetOutput(io.Discard)
		return nil
	}
	log.SetOutput(f)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	return f
}
