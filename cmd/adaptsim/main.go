package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/adaptsim/internal/config"
	"github.com/san-kum/adaptsim/internal/dynamo"
	"github.com/san-kum/adaptsim/internal/experiment"
	"github.com/san-kum/adaptsim/internal/report"
	"github.com/san-kum/adaptsim/internal/storage"
)

var (
	dataDir    string
	configFile string
	preset     string
	dt         float64
	duration   float64
	integrator string
	output     string
	metric     string
	component  int
	params     []string
	levels     int
	tolerance  float64
	maxRounds  int
	policy     string
	quiet      bool
	noSave     bool
	exportOut  string
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "adaptsim",
		Short:        "adaptive parameter sampling for simulation models",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".adaptsim", "data directory")

	runCmd := &cobra.Command{
		Use:   "run [model]",
		Short: "run an adaptive sampling study",
		Args:  cobra.ExactArgs(1),
		RunE:  runStudy,
	}
	runCmd.Flags().StringVar(&configFile, "config", "", "study file path (yaml)")
	runCmd.Flags().StringVar(&preset, "preset", "", "use preset study")
	runCmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	runCmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration")
	runCmd.Flags().StringVar(&integrator, "integrator", "rk4", "integrator")
	runCmd.Flags().StringVar(&output, "output", "field", "snapshot output (field|scalar)")
	runCmd.Flags().StringVar(&metric, "metric", "", "scalar metric (energy|final|frequency|peak)")
	runCmd.Flags().IntVar(&component, "component", 0, "state component to observe")
	runCmd.Flags().StringArrayVar(&params, "param", nil, "sampled parameter as name=min:max (repeatable)")
	runCmd.Flags().IntVar(&levels, "levels", config.DefaultLevels, "initial grid levels per parameter")
	runCmd.Flags().Float64Var(&tolerance, "tol", config.DefaultTolerance, "stop when the max leave-one-out error is at most tol")
	runCmd.Flags().IntVar(&maxRounds, "rounds", config.DefaultMaxRounds, "maximum number of added points")
	runCmd.Flags().StringVar(&policy, "zero-error", "centroid", "all-zero vertex errors (centroid|fail)")
	runCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "only print the summary")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the study")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored studies",
		RunE:  listStudies,
	}

	showCmd := &cobra.Command{
		Use:   "show [study_id]",
		Short: "show a stored study",
		Args:  cobra.ExactArgs(1),
		RunE:  showStudy,
	}

	exportCmd := &cobra.Command{
		Use:   "export [study_id]",
		Short: "export a stored study as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportStudy,
	}
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file (default stdout)")

	presetsCmd := &cobra.Command{
		Use:   "presets [model]",
		Short: "list available presets for a model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			presets := config.ListPresets(args[0])
			if len(presets) == 0 {
				fmt.Printf("no presets for model: %s\n", args[0])
				return nil
			}
			fmt.Printf("presets for %s:\n", args[0])
			for _, p := range presets {
				cfg := config.GetPreset(args[0], p)
				fmt.Printf("  %-20s %s output, params %s\n", p, cfg.Output, strings.Join(cfg.ParamNames(), ", "))
			}
			return nil
		},
	}

	modelsCmd := &cobra.Command{
		Use:   "models",
		Short: "list models and their parameters",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := experiment.NewRegistry()
			for _, name := range reg.ListModels() {
				sys, err := reg.GetModel(name)
				if err != nil {
					return err
				}
				fmt.Printf("%s (state dim %d)\n", report.Title.Render(name), sys.StateDim())
				if conf, ok := sys.(dynamo.Configurable); ok {
					for _, line := range sortedParams(conf.GetParams()) {
						fmt.Printf("  %s\n", line)
					}
				}
			}
			fmt.Printf("integrators: %s\n", strings.Join(reg.ListIntegrators(), ", "))
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, listCmd, showCmd, exportCmd, presetsCmd, modelsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runStudy(cmd *cobra.Command, args []string) error {
	model := args[0]

	cfg, err := baseConfig(model)
	if err != nil {
		return err
	}
	if err := applyFlags(cmd, cfg); err != nil {
		return err
	}

	study, err := experiment.NewStudy(cfg, experiment.NewRegistry())
	if err != nil {
		return err
	}
	if !quiet {
		study.OnRound = func(r experiment.Round) {
			fmt.Println(report.RoundLine(r))
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("running %s study over %s...\n", model, strings.Join(cfg.ParamNames(), ", "))
	start := time.Now()

	rep, runErr := study.Run(ctx)
	if rep == nil {
		return runErr
	}
	fmt.Println(report.Summary(rep, cfg.Sampling.Tolerance))
	fmt.Printf("completed in %v\n", time.Since(start).Round(time.Millisecond))

	if runErr == nil && !noSave {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		id, err := st.Save(cfg, rep)
		if err != nil {
			return err
		}
		fmt.Printf("study id: %s\n", id)
	}
	return runErr
}

// baseConfig picks the preset, the config file or the model's first
// preset, in that order, falling back to the defaults.
func baseConfig(model string) (*config.Config, error) {
	if preset != "" {
		cfg := config.GetPreset(model, preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(model))
		}
		return cfg, nil
	}
	if configFile != "" {
		cfg, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg.Model = model
		return cfg, nil
	}
	if names := config.ListPresets(model); len(names) > 0 {
		return config.GetPreset(model, names[0]), nil
	}
	cfg := config.DefaultConfig()
	cfg.Model = model
	return cfg, nil
}

func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("time") {
		cfg.Duration = duration
	}
	if flags.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if flags.Changed("output") {
		cfg.Output = output
	}
	if flags.Changed("metric") {
		cfg.Metric = metric
	}
	if flags.Changed("component") {
		cfg.Component = component
	}
	if flags.Changed("levels") {
		cfg.Sampling.Levels = levels
	}
	if flags.Changed("tol") {
		cfg.Sampling.Tolerance = tolerance
	}
	if flags.Changed("rounds") {
		cfg.Sampling.MaxRounds = maxRounds
	}
	if flags.Changed("zero-error") {
		cfg.Sampling.ZeroErrorPolicy = policy
	}
	if flags.Changed("param") {
		parsed, err := parseParams(params)
		if err != nil {
			return err
		}
		cfg.Params = parsed
	}
	return nil
}

// parseParams reads name=min:max specifications.
func parseParams(specs []string) ([]config.ParamConfig, error) {
	out := make([]config.ParamConfig, 0, len(specs))
	for _, s := range specs {
		name, bounds, ok := strings.Cut(s, "=")
		if !ok {
			return nil, fmt.Errorf("invalid param %q: want name=min:max", s)
		}
		lo, hi, ok := strings.Cut(bounds, ":")
		if !ok {
			return nil, fmt.Errorf("invalid param %q: want name=min:max", s)
		}
		pmin, err := strconv.ParseFloat(lo, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid param %q: %w", s, err)
		}
		pmax, err := strconv.ParseFloat(hi, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid param %q: %w", s, err)
		}
		out = append(out, config.ParamConfig{Name: name, Min: pmin, Max: pmax})
	}
	return out, nil
}

func sortedParams(p map[string]float64) []string {
	names := make([]string, 0, len(p))
	for n := range p {
		names = append(names, n)
	}
	sort.Strings(names)
	lines := make([]string, len(names))
	for i, n := range names {
		lines[i] = fmt.Sprintf("%-10s %g", n, p[n])
	}
	return lines
}

func listStudies(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	studies, err := st.List()
	if err != nil {
		return err
	}
	if len(studies) == 0 {
		fmt.Println("no studies found")
		return nil
	}
	return report.WriteStudies(os.Stdout, studies)
}

func showStudy(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	rounds, err := st.LoadRounds(args[0])
	if err != nil {
		return err
	}

	fmt.Println(report.StudySummary(meta))
	if len(rounds) == 0 {
		return nil
	}
	names := make([]string, len(meta.Params))
	for i, p := range meta.Params {
		names[i] = p.Name
	}
	fmt.Println()
	return report.WriteRounds(os.Stdout, names, rounds)
}

func exportStudy(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	if exportOut == "" {
		return st.Export(os.Stdout, args[0])
	}

	f, err := os.Create(exportOut)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := st.Export(f, args[0]); err != nil {
		return err
	}
	fmt.Printf("exported %s to %s\n", args[0], exportOut)
	return nil
}
