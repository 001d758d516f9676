package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/qgsim/internal/automation"
	"github.com/san-kum/qgsim/internal/chirp"
	"github.com/san-kum/qgsim/internal/config"
	"github.com/san-kum/qgsim/internal/dynamo"
	"github.com/san-kum/qgsim/internal/h5layout"
	"github.com/san-kum/qgsim/internal/metrics"
	"github.com/san-kum/qgsim/internal/optim"
	"github.com/san-kum/qgsim/internal/sim"
	"github.com/san-kum/qgsim/internal/storage"
	"github.com/san-kum/qgsim/internal/viz"
	"github.com/san-kum/qgsim/internal/waveform"
)

var (
	dataDir    string
	preset     string
	configFile string
	dt         float64
	duration   float64
	massSolar  float64
	radiusRs   float64
	rqRs       float64
	lambda     float64
	kScale     float64
	threshold  float64
	evaporate  bool
	keepGoing  bool

	field  string
	csvOut string
	wavOut string

	sweepParam  string
	sweepValues []float64

	batch int

	chirpSpec = chirp.DefaultSpec()
	fromRun   string

	totalMass float64

	trials int
	spread  float64
	seed    int64

	gridSpecs []string
	objective string
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("qgsim: ")

	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		var missing *h5layout.MissingError
		if errors.As(err, &missing) {
			fmt.Println(missing.Error())
		} else {
			log.Print(err)
		}
		os.Exit(exitCode(err))
	}
}

// exitCode maps command errors to process status.
func exitCode(err error) int {
	if errors.Is(err, h5layout.ErrMissing) {
		return 2
	}
	return 1
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "qgsim",
		Short:         "quantum-gravity black hole collapse simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("data") {
				return nil
			}
			env, err := config.LoadEnv()
			if err != nil {
				return err
			}
			dataDir = env.DataDir
			return nil
		},
		RunE: runLive,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", config.DefaultDataDir, "data directory (env QGSIM_DATA_DIR)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run simulation and store the trajectory",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addModelFlags(runCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run results",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&field, "field", "", "mass, radius or transition (default all)")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run data to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVar(&csvOut, "out", "", "output file (default stdout)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range config.ListPresets() {
				cfg := config.GetPreset(name)
				fmt.Printf("  %-12s M=%.3e kg  R=%.3e m  duration=%gs\n", name, cfg.InitialMass(), cfg.InitialRadius(), cfg.Duration)
			}
			return nil
		},
	}

	configCmd := &cobra.Command{
		Use:   "config <path>",
		Short: "write the resolved configuration as yaml",
		Args:  cobra.ExactArgs(1),
		RunE:  writeConfig,
	}
	addModelFlags(configCmd)

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "run one simulation per parameter value in parallel",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	addModelFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&sweepParam, "param", "lambda", fmt.Sprintf("parameter to vary %v", dynamo.ParamNames()))
	sweepCmd.Flags().Float64SliceVar(&sweepValues, "values", nil, "comma separated values")
	sweepCmd.MarkFlagRequired("values")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "interactive parameter surface",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addModelFlags(liveCmd)
	liveCmd.Flags().IntVar(&batch, "batch", 50, "steps per frame")

	chirpCmd := &cobra.Command{
		Use:   "chirp",
		Short: "synthesize an inspiral chirp to a wav file",
		Args:  cobra.NoArgs,
		RunE:  writeChirp,
	}
	chirpCmd.Flags().StringVar(&wavOut, "out", "chirp.wav", "output wav file")
	chirpCmd.Flags().Float64Var(&chirpSpec.M1, "m1", chirpSpec.M1, "first mass (solar masses)")
	chirpCmd.Flags().Float64Var(&chirpSpec.M2, "m2", chirpSpec.M2, "second mass (solar masses)")
	chirpCmd.Flags().Float64Var(&chirpSpec.Spin, "spin", chirpSpec.Spin, "dimensionless spin")
	chirpCmd.Flags().Float64Var(&chirpSpec.Duration, "duration", chirpSpec.Duration, "length in seconds")
	chirpCmd.Flags().Float64Var(&chirpSpec.Volume, "volume", chirpSpec.Volume, "volume 0..1")
	chirpCmd.Flags().IntVar(&chirpSpec.SampleRate, "rate", chirpSpec.SampleRate, "sample rate")
	chirpCmd.Flags().BoolVar(&chirpSpec.Rumble, "rumble", false, "add the transition rumble")
	chirpCmd.Flags().StringVar(&fromRun, "from-run", "", "add the rumble when this run transitioned")

	detectorCmd := &cobra.Command{
		Use:   "detector-frame [wavefile]",
		Short: "rescale geometric waveform times to seconds",
		Args:  cobra.ExactArgs(1),
		RunE:  detectorFrame,
	}
	detectorCmd.Flags().Float64Var(&totalMass, "mtot", waveform.DefaultTotalMass, "total mass in solar masses")

	validateCmd := &cobra.Command{
		Use:   "validate-h5 [file]",
		Short: "check the group layout of an hdf5 result file",
		Args:  cobra.ExactArgs(1),
		RunE:  validateH5,
	}

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a scripted sequence of simulations",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	monteCarloCmd := &cobra.Command{
		Use:   "montecarlo",
		Short: "perturb initial mass and radius and count outcomes",
		Args:  cobra.NoArgs,
		RunE:  runMonteCarlo,
	}
	addModelFlags(monteCarloCmd)
	monteCarloCmd.Flags().IntVar(&trials, "trials", 50, "number of trials")
	monteCarloCmd.Flags().Float64Var(&spread, "spread", 0.05, "relative perturbation")
	monteCarloCmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 = time based)")

	searchCmd := &cobra.Command{
		Use:   "search",
		Short: "grid search parameters for the earliest crossing",
		Args:  cobra.NoArgs,
		RunE:  runSearch,
	}
	addModelFlags(searchCmd)
	searchCmd.Flags().StringArrayVar(&gridSpecs, "grid", nil, "name=v1,v2,... (repeatable)")
	searchCmd.Flags().StringVar(&objective, "objective", "crossing", "crossing or a metric name to minimise")
	searchCmd.MarkFlagRequired("grid")

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, exportJSONCmd, exportCSVCmd, presetsCmd, configCmd,
		sweepCmd, liveCmd, chirpCmd, detectorCmd, validateCmd, scenarioCmd, monteCarloCmd, searchCmd)
	return rootCmd
}

func addModelFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&preset, "preset", "sgr-a", "preset configuration")
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	cmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration")
	cmd.Flags().Float64Var(&massSolar, "mass", config.DefaultMassSolar, "initial mass (solar masses)")
	cmd.Flags().Float64Var(&radiusRs, "radius", config.DefaultRadiusRs, "initial radius (schwarzschild radii)")
	cmd.Flags().Float64Var(&rqRs, "rq", config.DefaultRQRs, "quantum radius (schwarzschild radii)")
	cmd.Flags().Float64Var(&lambda, "lambda", 1e-23, "curvature-rate coupling")
	cmd.Flags().Float64Var(&kScale, "k", 1e30, "evaporation scale")
	cmd.Flags().Float64Var(&threshold, "threshold", dynamo.DefaultThreshold, "transition threshold")
	cmd.Flags().BoolVar(&evaporate, "evaporation", true, "enable mass loss")
	cmd.Flags().BoolVar(&keepGoing, "keep-going", false, "continue past the first crossing")
}

// resolveConfig layers preset, config file, environment and explicit flags,
// in increasing precedence.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.GetPreset(preset)
	if cfg == nil {
		return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	if err := config.ApplyEnv(cfg); err != nil {
		return nil, fmt.Errorf("environment: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("time") {
		cfg.Duration = duration
	}
	if flags.Changed("mass") {
		cfg.Initial.MassSolar, cfg.Initial.Mass = massSolar, 0
	}
	if flags.Changed("radius") {
		cfg.Initial.RadiusRs, cfg.Initial.Radius = radiusRs, 0
	}
	if flags.Changed("rq") {
		cfg.Physics.RQRs, cfg.Physics.RQ = rqRs, 0
	}
	if flags.Changed("lambda") {
		cfg.Physics.Lambda = lambda
	}
	if flags.Changed("k") {
		cfg.Physics.KScale = kScale
	}
	if flags.Changed("threshold") {
		cfg.Physics.Threshold = threshold
	}
	if flags.Changed("evaporation") {
		cfg.Physics.Evaporation = evaporate
	}
	if flags.Changed("keep-going") {
		cfg.Run.StopOnTransition = !keepGoing
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	integ, err := dynamo.NewIntegrator(cfg.Params())
	if err != nil {
		return err
	}
	runner := sim.New(integ)
	for _, m := range metrics.Defaults() {
		runner.AddMetric(m)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("running %s simulation (%d steps)...\n", cfg.Preset, integ.Steps(cfg.Duration))
	start := time.Now()

	result, err := runner.Run(ctx, cfg.InitialState(), cfg.SimConfig())
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	if err != nil {
		log.Printf("interrupted, saving %d samples", len(result.Samples))
	}

	elapsed := time.Since(start)

	runID, err := st.Save(storage.NewMetadata(cfg.Preset, integ.Params(), cfg.Duration, result), result.Samples)
	if err != nil {
		return err
	}

	for _, e := range result.Errors {
		log.Print(e)
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("outcome: %s\n", result.Outcome)
	fmt.Printf("steps: %d\n", result.StepsTaken)
	if result.CrossedAt >= 0 {
		fmt.Printf("first crossing: step %d (t=%.6fs)\n", result.CrossedAt, result.CrossedTime)
	}
	printMetrics(result.Metrics)

	return nil
}

func printMetrics(values map[string]float64) {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Println("\nmetrics:")
	for _, name := range names {
		fmt.Printf("  %s: %.6g\n", name, values[name])
	}
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPRESET\tTIME\tOUTCOME\tSTEPS\tCROSSED\tDT")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%gs\n",
			run.ID,
			run.Preset,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Outcome,
			run.StepsTaken,
			run.CrossedAt,
			run.Dt,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	samples, err := st.LoadSamples(runID)
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("preset: %s\n", meta.Preset)
	fmt.Printf("outcome: %s\n", meta.Outcome)
	fmt.Printf("samples: %d\n\n", len(samples))

	fields := viz.Fields
	if field != "" {
		fields = []string{field}
	}

	for _, f := range fields {
		var graph string
		if f == "transition" {
			limit, ok := meta.Params["threshold"]
			if !ok {
				limit = dynamo.DefaultThreshold
			}
			graph, err = viz.PlotTransition(samples, limit, 80, 10)
		} else {
			graph, err = viz.PlotSeries(samples, f, 80, 10)
		}
		if errors.Is(err, viz.ErrNoData) {
			log.Printf("%s: nothing to plot", f)
			continue
		}
		if err != nil {
			return err
		}
		fmt.Println(graph)
		fmt.Println()
	}

	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	samples, err := st.LoadSamples(runID)
	if err != nil {
		return err
	}

	return storage.ExportJSON(os.Stdout, *meta, samples)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	samples, err := storage.New(dataDir).LoadSamples(args[0])
	if err != nil {
		return err
	}

	if csvOut == "" {
		return storage.WriteCSV(os.Stdout, samples)
	}

	f, err := os.Create(csvOut)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := storage.WriteCSV(f, samples); err != nil {
		return err
	}
	fmt.Printf("wrote %d samples to %s\n", len(samples), csvOut)
	return nil
}

func writeConfig(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if err := config.Save(args[0], cfg); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", args[0])
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	variants, err := sim.Vary(cfg.Params(), sweepParam, sweepValues)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("sweeping %s over %d values...\n", sweepParam, len(variants))
	results, err := sim.Sweep(ctx, variants, cfg.InitialState(), cfg.SimConfig(), metrics.Defaults)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "VARIANT\tOUTCOME\tSTEPS\tCROSSED\tMIN_RADIUS\tPEAK_TRANSITION")
	for i, r := range results {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%.6g\t%.6g\n",
			variants[i].Label,
			r.Outcome,
			r.StepsTaken,
			r.CrossedAt,
			r.Metrics["min_radius"],
			r.Metrics["peak_transition"],
		)
	}
	return w.Flush()
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	return viz.RunLive(viz.LiveConfig{
		Params:   cfg.Params(),
		Mass:     cfg.InitialMass(),
		Radius:   cfg.InitialRadius(),
		Duration: cfg.Duration,
		Batch:    batch,
	})
}

func writeChirp(cmd *cobra.Command, args []string) error {
	spec := chirpSpec
	if fromRun != "" {
		meta, err := storage.New(dataDir).Load(fromRun)
		if err != nil {
			return err
		}
		spec.Rumble = spec.Rumble || meta.Outcome == sim.Transitioned.String()
	}

	samples, err := chirp.Synthesize(spec)
	if err != nil {
		return err
	}

	f, err := os.Create(wavOut)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := chirp.WriteWAV(f, samples, spec.SampleRate); err != nil {
		return err
	}

	f0, f1 := spec.Band()
	fmt.Printf("wrote %s (%.2fs, %d Hz)\n", wavOut, spec.Duration, spec.SampleRate)
	fmt.Printf("chirp mass: %.3f Msun\n", chirp.ChirpMass(spec.M1, spec.M2))
	fmt.Printf("sweep: %.1f -> %.1f Hz, dominant %.1f Hz\n", f0, f1, chirp.DominantFrequency(samples, spec.SampleRate))
	return nil
}

func detectorFrame(cmd *cobra.Command, args []string) error {
	w, err := waveform.Load(args[0])
	if err != nil {
		return err
	}

	scaled := waveform.ScaleTimes(w.T, totalMass)
	fmt.Println("First three scaled times (s):", waveform.Head(scaled, 3))
	return nil
}

func validateH5(cmd *cobra.Command, args []string) error {
	f, err := h5layout.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	if err := h5layout.Validate(f); err != nil {
		return err
	}
	fmt.Println("Basic HDF5 layout OK")
	return nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("scenario %s: %d steps\n", scenario.Name, len(scenario.Steps))
	results, err := automation.RunScenario(ctx, scenario, st)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tOUTCOME\tSTEPS\tCROSSED\tRUN")
	for _, r := range results {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\n", r.Name, r.Result.Outcome, r.Result.StepsTaken, r.Result.CrossedAt, r.RunID)
	}
	if ferr := w.Flush(); ferr != nil {
		return ferr
	}
	return err
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("running %d trials of %s (spread %.1f%%)...\n", trials, cfg.Preset, spread*100)
	results, err := automation.RunMonteCarlo(ctx, &automation.MonteCarloConfig{
		Base:         cfg,
		Perturbation: spread,
		NumTrials:    trials,
		Seed:         seed,
	})
	if err != nil {
		return err
	}

	stats := automation.MonteCarloStats(results)
	for _, o := range []sim.Outcome{sim.Exhausted, sim.Transitioned, sim.Degenerate} {
		fmt.Printf("  %-13s %d (%.1f%%)\n", o, stats[o], 100*float64(stats[o])/float64(len(results)))
	}
	return nil
}

// parseGrid reads "name=v1,v2,..." specs.
func parseGrid(specs []string) ([]string, [][]float64, error) {
	names := make([]string, 0, len(specs))
	ranges := make([][]float64, 0, len(specs))
	for _, spec := range specs {
		name, list, ok := strings.Cut(spec, "=")
		if !ok || name == "" || list == "" {
			return nil, nil, fmt.Errorf("invalid grid %q, want name=v1,v2", spec)
		}
		var values []float64
		for _, item := range strings.Split(list, ",") {
			v, err := strconv.ParseFloat(strings.TrimSpace(item), 64)
			if err != nil {
				return nil, nil, fmt.Errorf("grid %s: %w", name, err)
			}
			values = append(values, v)
		}
		names = append(names, name)
		ranges = append(ranges, values)
	}
	return names, ranges, nil
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	names, ranges, err := parseGrid(gridSpecs)
	if err != nil {
		return err
	}
	g, err := optim.NewGridSearch(names, ranges)
	if err != nil {
		return err
	}

	score := optim.EarliestCrossing
	if objective != "crossing" {
		score = optim.MetricObjective(objective)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	best, val, err := g.Search(ctx, cfg.Params(), cfg.InitialState(), cfg.SimConfig(), score)
	if err != nil {
		return err
	}

	fmt.Printf("best %s: %.6g\n", objective, val)
	for _, name := range names {
		fmt.Printf("  %s = %g\n", name, best[name])
	}
	return nil
}
