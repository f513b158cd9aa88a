package main

import (
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/heartswarm/internal/analysis"
	"github.com/san-kum/heartswarm/internal/automation"
	"github.com/san-kum/heartswarm/internal/config"
	"github.com/san-kum/heartswarm/internal/dynamo"
	"github.com/san-kum/heartswarm/internal/experiment"
	"github.com/san-kum/heartswarm/internal/export"
	"github.com/san-kum/heartswarm/internal/gui"
	"github.com/san-kum/heartswarm/internal/input"
	"github.com/san-kum/heartswarm/internal/optim"
	"github.com/san-kum/heartswarm/internal/physics"
	"github.com/san-kum/heartswarm/internal/sim"
	"github.com/san-kum/heartswarm/internal/storage"
	"github.com/san-kum/heartswarm/internal/viz"
	"github.com/spf13/cobra"
)

// resolveConfig layers the preset, the config file and the changed flags, in
// that order.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	name := "custom"
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v): %w", preset, config.ListPresets(), dynamo.ErrUnknownName)
		}
		name = preset
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("integrator") {
		cfg.Run.Integrator = integrator
	}
	if flags.Changed("frames") {
		cfg.Run.Frames = frames
	}
	if flags.Changed("seed") {
		cfg.Run.Seed = seed
	}
	if flags.Changed("targets") {
		cfg.Swarm.Targets = targets
	}
	if flags.Changed("pointer") {
		cfg.PointerPath = pointerPath
	}
	if flags.Changed("fps") {
		cfg.Run.FPS = frameRate
	}
	if flags.Changed("theme") {
		cfg.Render.Theme = theme
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log.Printf("config %s: %d targets, stepper %s, seed %d", name, cfg.Swarm.Targets, cfg.Run.Integrator, cfg.Run.Seed)
	return cfg, nil
}

func runName() string {
	if preset != "" {
		return preset
	}
	return "custom"
}

// buildSwarm makes the configured swarm with its stepper and scripted pointer.
func buildSwarm(cfg *config.Config, registry *experiment.Registry) (*sim.Swarm, physics.Stepper, error) {
	var path *automation.Path
	if cfg.PointerPath != "" {
		p, err := automation.LoadPath(cfg.PointerPath)
		if err != nil {
			return nil, nil, fmt.Errorf("pointer path: %w", err)
		}
		path = p
	}

	s, err := automation.BuildSwarm(cfg, path)
	if err != nil {
		return nil, nil, err
	}
	stepper, err := registry.GetStepper(cfg.Run.Integrator)
	if err != nil {
		return nil, nil, err
	}
	s.SetStepper(stepper)
	return s, stepper, nil
}

func sortedNames(m map[string]float64) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	params, err := cfg.SwarmParams()
	if err != nil {
		return err
	}
	stepper, err := experiment.NewRegistry().GetStepper(cfg.Run.Integrator)
	if err != nil {
		return err
	}
	params.Stepper = stepper

	pointer := &input.Pointer{}
	m := viz.NewModel(sim.NewSwarm(params, pointer), pointer, viz.Options{
		FPS:        cfg.Run.FPS,
		Fade:       cfg.Render.Fade,
		Background: cfg.Render.Background,
		Theme:      cfg.Render.Theme,
		Stepper:    cfg.Run.Integrator,
		OutDir:     dataDir,
	})
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return err
	}

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion(), tea.WithContext(cmd.Context()))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("live view: %w", err)
	}
	return nil
}

func runGUI(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	s, _, err := buildSwarm(cfg, experiment.NewRegistry())
	if err != nil {
		return err
	}
	gui.Run(s, gui.Options{
		FPS:        int32(cfg.Run.FPS),
		Scale:      scale,
		Fade:       cfg.Render.Fade,
		Background: cfg.Render.Background,
	})
	return nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	registry := experiment.NewRegistry()
	swarm, stepper, err := buildSwarm(cfg, registry)
	if err != nil {
		return err
	}

	exp := experiment.New(experiment.Config{
		Stepper:     cfg.Run.Integrator,
		Frames:      cfg.Run.Frames,
		Seed:        cfg.Run.Seed,
		SampleEvery: sampleEvery,
	})
	if err := exp.Setup(swarm, stepper, registry.DefaultMetrics(swarm.Settings())); err != nil {
		return err
	}

	fmt.Fprintf(out, "running %d frames of %d targets...\n", cfg.Run.Frames, cfg.Swarm.Targets)
	start := time.Now()

	result, err := exp.Run(cmd.Context())
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	runID, err := st.Save(storage.RunInfo{
		Name:       runName(),
		Integrator: cfg.Run.Integrator,
		Seed:       cfg.Run.Seed,
		Frames:     cfg.Run.Frames,
		Targets:    cfg.Swarm.Targets,
		TrailSize:  cfg.Swarm.TrailSize,
		TrailMode:  cfg.Swarm.TrailMode,
		SwapMode:   cfg.Swarm.SwapMode,
	}, result)
	if err != nil {
		return err
	}
	log.Printf("run %s saved (%d frames in %v)", runID, result.FramesRun, elapsed)

	fmt.Fprintf(out, "completed in %v\n", elapsed)
	fmt.Fprintf(out, "run id: %s\n", runID)
	fmt.Fprintf(out, "frames: %d\n", result.FramesRun)
	for _, e := range result.Errors {
		fmt.Fprintf(out, "error: %v\n", e)
	}
	fmt.Fprintln(out, "\nmetrics:")
	printMetrics(out, result.Metrics)
	return nil
}

func printMetrics(w io.Writer, metrics map[string]float64) {
	for _, name := range sortedNames(metrics) {
		fmt.Fprintf(w, "  %s: %.6f\n", name, metrics[name])
	}
}

func listRuns(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Fprintln(out, "no runs found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTIME\tFRAMES\tTARGETS\tSTEPPER\tCONVERGENCE")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\t%.3f\n",
			run.ID,
			run.Name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.FramesRun,
			run.Targets,
			run.Integrator,
			run.Metric("convergence"),
		)
	}
	return w.Flush()
}

// runIDArg returns the run named on the command line, or the latest run.
func runIDArg(st *storage.Store, args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	return st.Latest()
}

func plotRun(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	st := storage.New(dataDir)
	runID, err := runIDArg(st, args)
	if err != nil {
		return err
	}
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	samples, err := st.LoadSeries(runID)
	if err != nil {
		return err
	}
	if len(samples) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Fprintf(out, "run: %s\n", meta.ID)
	fmt.Fprintf(out, "targets: %d, stepper: %s\n", meta.Targets, meta.Integrator)
	fmt.Fprintf(out, "samples: %d\n\n", len(samples))

	distance, energy := columns(samples)
	for _, series := range []struct {
		caption string
		data    []float64
	}{
		{"mean lead distance to target", distance},
		{"mean spring energy", energy},
	} {
		graph := asciigraph.Plot(series.data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(series.caption),
		)
		fmt.Fprintln(out, graph)
		fmt.Fprintln(out)
	}
	return nil
}

// columns splits samples into mean distance and energy series with
// non-finite values replaced by zero.
func columns(samples []dynamo.Sample) (distance, energy []float64) {
	distance = make([]float64, len(samples))
	energy = make([]float64, len(samples))
	for i, s := range samples {
		distance[i] = finite(s.MeanDistance)
		energy[i] = finite(s.Energy)
	}
	return distance, energy
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runID, err := runIDArg(st, args)
	if err != nil {
		return err
	}
	if outFile == "" {
		return st.CopySeries(runID, cmd.OutOrStdout())
	}

	f, err := os.Create(outFile)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := st.CopySeries(runID, f); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "exported to %s\n", outFile)
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runID, err := runIDArg(st, args)
	if err != nil {
		return err
	}
	if outFile == "" {
		return st.ExportJSON(runID, cmd.OutOrStdout())
	}
	if err := st.ExportJSONFile(runID, outFile); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "exported to %s\n", outFile)
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	st := storage.New(dataDir)
	runID, err := runIDArg(st, args)
	if err != nil {
		return err
	}
	samples, err := st.LoadSeries(runID)
	if err != nil {
		return err
	}
	if len(samples) < 4 {
		return fmt.Errorf("run %s has %d samples, need at least 4", runID, len(samples))
	}

	every := samples[1].Frame - samples[0].Frame
	if every < 1 {
		every = 1
	}
	distance, energy := columns(samples)

	fmt.Fprintf(out, "frequency analysis: %s\n\n", runID)

	ps := analysis.PowerSpectrum(distance)
	plotData := ps
	if len(plotData) > 80 {
		plotData = plotData[:80]
	}
	graph := asciigraph.Plot(plotData,
		asciigraph.Height(12),
		asciigraph.Width(80),
		asciigraph.Caption("power spectrum (mean distance)"),
	)
	fmt.Fprintln(out, graph)
	fmt.Fprintln(out)

	if period := analysis.DominantPeriod(distance, every); period > 0 {
		fmt.Fprintf(out, "dominant period: %.1f frames (breathing period %.1f)\n", period, 20*math.Pi)
	} else {
		fmt.Fprintln(out, "no dominant period")
	}
	if period := analysis.DominantPeriod(energy, every); period > 0 {
		fmt.Fprintf(out, "energy period: %.1f frames\n", period)
	}

	portrait := analysis.NewPhasePortrait("distance", distance, "d distance", analysis.Derivative(distance))
	fmt.Fprintf(out, "\nphase portrait: %s vs %s\n", portrait.YLabel, portrait.XLabel)
	fmt.Fprint(out, portrait.ASCII(60, 16))
	return nil
}

// observerFunc adapts a function to dynamo.Observer.
type observerFunc func(dynamo.Frame)

func (f observerFunc) OnFrame(fr dynamo.Frame) { f(fr) }

func snapshot(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	swarm, _, err := buildSwarm(cfg, experiment.NewRegistry())
	if err != nil {
		return err
	}

	svg := export.NewSVGRenderer(cfg.Canvas.Width, cfg.Canvas.Height)
	svg.Fade = cfg.Render.Fade
	svg.Background = cfg.Render.Background
	svg.History = history

	runner := sim.NewRunner(swarm)
	runner.SetRenderer(svg)
	runner.AddObserver(observerFunc(func(dynamo.Frame) {
		svg.Trace(swarm.Field().Center(swarm.Pointer()))
	}))

	result, err := runner.Run(cmd.Context(), cfg.RunSettings())
	if err != nil {
		return err
	}
	if err := svg.Save(svgFile); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s after %d frames\n", svgFile, result.FramesRun)
	return nil
}

func compareSteppers(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	registry := experiment.NewRegistry()

	names := args
	if len(names) == 0 {
		names = registry.ListSteppers()
	}

	fmt.Fprintf(out, "comparing steppers (%d targets, %d frames)\n\n", cfg.Swarm.Targets, cfg.Run.Frames)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEPPER\tCONVERGENCE\tPEAK_ENERGY\tSTABILITY\tDIVERGENCE\tTIME_MS")

	for _, name := range names {
		cfg.Run.Integrator = name
		swarm, stepper, err := buildSwarm(cfg, registry)
		if err != nil {
			fmt.Fprintf(w, "%s\terror: %v\n", name, err)
			continue
		}

		exp := experiment.New(experiment.Config{Stepper: name, Frames: cfg.Run.Frames, Seed: cfg.Run.Seed})
		if err := exp.Setup(swarm, stepper, registry.DefaultMetrics(swarm.Settings())); err != nil {
			return err
		}

		start := time.Now()
		result, err := exp.Run(cmd.Context())
		if err != nil {
			return err
		}
		elapsed := time.Since(start)

		params := swarm.Settings()
		params.Stepper, _ = registry.GetStepper(name)
		rate := analysis.Divergence(params, min(cfg.Run.Frames, 300), 1e-6)

		fmt.Fprintf(w, "%s\t%.4f\t%.4f\t%.3f\t%+.4f\t%.2f\n",
			name,
			result.Metrics["convergence"],
			result.Metrics["peak_energy"],
			result.Metrics["stability"],
			rate,
			float64(elapsed.Microseconds())/1000,
		)
	}
	return w.Flush()
}

func tune(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	registry := experiment.NewRegistry()

	build := func(params map[string]float64) (*experiment.Experiment, error) {
		swarm, stepper, err := buildSwarm(cfg, registry)
		if err != nil {
			return nil, err
		}
		exp := experiment.New(experiment.Config{
			Stepper: cfg.Run.Integrator,
			Frames:  cfg.Run.Frames,
			Seed:    cfg.Run.Seed,
			Params:  params,
		})
		return exp, exp.Setup(swarm, stepper, registry.DefaultMetrics(swarm.Settings()))
	}

	gs := optim.NewGridSearch(
		[]string{"elasticity", "damping"},
		[][]float64{
			optim.Linspace(elasticMin, elasticMax, tuneSteps),
			optim.Linspace(dampMin, dampMax, tuneSteps),
		},
	)
	best, err := gs.Search(cmd.Context(), build, tuneMetric)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ELASTICITY\tDAMPING\t%s\n", tuneMetric)
	for _, p := range best.Points {
		fmt.Fprintf(w, "%.4f\t%.4f\t%.4f\n", p.Params["elasticity"], p.Params["damping"], p.Value)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if best.Params == nil {
		fmt.Fprintln(out, "\nno finite result")
		return nil
	}
	fmt.Fprintf(out, "\nbest: elasticity=%.4f damping=%.4f %s=%.4f\n",
		best.Params["elasticity"], best.Params["damping"], tuneMetric, best.Value)
	return nil
}

func sweep(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	results, err := automation.RunSweep(cmd.Context(), &automation.ParameterSweep{
		Preset:     preset,
		Integrator: cfg.Run.Integrator,
		ParamName:  args[0],
		ParamMin:   sweepMin,
		ParamMax:   sweepMax,
		NumSteps:   sweepSteps,
		Frames:     cfg.Run.Frames,
		Seed:       cfg.Run.Seed,
	}, experiment.NewRegistry())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tCONVERGENCE\tPEAK_ENERGY\tSTABILITY\n", args[0])
	convergence := make([]float64, len(results))
	for i, r := range results {
		fmt.Fprintf(w, "%.4f\t%.4f\t%.4f\t%.3f\n", r.ParamValue, r.Convergence, r.PeakEnergy, r.Stability)
		convergence[i] = finite(r.Convergence)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if len(convergence) > 1 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, asciigraph.Plot(convergence, asciigraph.Height(8), asciigraph.Caption("convergence vs "+args[0])))
	}
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tTARGETS\tTRAIL\tTRAIL_MODE\tSWAP_MODE\tZERO_INDEX")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%d\t%d\t%s\t%s\t%s\n",
			name, p.Swarm.Targets, p.Swarm.TrailSize, p.Swarm.TrailMode, p.Swarm.SwapMode, p.Swarm.ZeroIndex)
	}
	return w.Flush()
}

func runScenario(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	fmt.Fprintf(out, "scenario %s: %d steps\n", scenario.Name, len(scenario.Steps))
	results, err := automation.RunScenario(cmd.Context(), scenario, experiment.NewRegistry())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tPRESET\tSTEPPER\tFRAMES\tCONVERGENCE\tRUN")
	for i, r := range results {
		runID := "-"
		if r.Step.SaveAs != "" {
			runID, err = st.Save(storage.RunInfo{
				Name:       r.Step.SaveAs,
				Integrator: r.Config.Run.Integrator,
				Seed:       r.Config.Run.Seed,
				Frames:     r.Config.Run.Frames,
				Targets:    r.Config.Swarm.Targets,
				TrailSize:  r.Config.Swarm.TrailSize,
				TrailMode:  r.Config.Swarm.TrailMode,
				SwapMode:   r.Config.Swarm.SwapMode,
			}, r.Result)
			if err != nil {
				return err
			}
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%.4f\t%s\n",
			i+1, r.Step.Preset, r.Config.Run.Integrator, r.Result.FramesRun, r.Result.Metrics["convergence"], runID)
	}
	return w.Flush()
}
