package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/rigidsim/internal/analysis"
	"github.com/san-kum/rigidsim/internal/collision"
	"github.com/san-kum/rigidsim/internal/config"
	"github.com/san-kum/rigidsim/internal/dynamo"
	"github.com/san-kum/rigidsim/internal/export"
	"github.com/san-kum/rigidsim/internal/frame"
	"github.com/san-kum/rigidsim/internal/metrics"
	"github.com/san-kum/rigidsim/internal/optim"
	"github.com/san-kum/rigidsim/internal/sim"
	"github.com/san-kum/rigidsim/internal/storage"
	"github.com/san-kum/rigidsim/internal/stream"
	"github.com/san-kum/rigidsim/internal/viz"
	"github.com/san-kum/rigidsim/internal/world"
	"github.com/spf13/cobra"
)

var (
	dataDir    string
	verbose    bool
	configFile string
	dt         float64
	duration   float64
	seed       int64
	workers    int
	numRuns    int
	columns    []string
	outFile    string
	renderAt   float64
	traceX     string
	traceY     string
	column     string
	sweepSpecs []string
	metricName string
	addr       string
	every      int
	realtime   bool
	level      float64
	watch      bool
	animate    bool

	shapeKind   string
	shapeSize   []float64
	shapeRadius float64
	subdivs     int
	density     float64
	otherKind   string
	otherSize   []float64
	offset      []float64
	rotation    []float64
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "rigidsim",
		Short:        "rigid body physics sandbox",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return viz.RunInteractive()
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".rigidsim", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging to stderr")

	sceneFlags := func(c *cobra.Command) {
		c.Flags().StringVar(&configFile, "config", "", "scene file (yaml), used instead of a preset")
		c.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
		c.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration")
		c.Flags().Int64Var(&seed, "seed", 0, "random seed for jittered scenes")
		c.Flags().IntVar(&workers, "workers", 0, "narrow phase workers (0 = all cores)")
	}

	runCmd := &cobra.Command{
		Use:   "run [preset]",
		Short: "run a scene and store the result",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runScene,
	}
	sceneFlags(runCmd)

	liveCmd := &cobra.Command{
		Use:   "live [preset]",
		Short: "watch a scene in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	sceneFlags(liveCmd)
	liveCmd.Flags().BoolVar(&watch, "watch", false, "reload the --config file when it changes")

	ensembleCmd := &cobra.Command{
		Use:   "ensemble [preset]",
		Short: "run a scene over consecutive seeds",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runEnsemble,
	}
	sceneFlags(ensembleCmd)
	ensembleCmd.Flags().IntVar(&numRuns, "runs", 8, "number of seeds")

	benchCmd := &cobra.Command{
		Use:   "bench [preset]",
		Short: "measure step throughput per worker count",
		Args:  cobra.MaximumNArgs(1),
		RunE:  benchScene,
	}
	sceneFlags(benchCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot stored columns of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringSliceVar(&columns, "column", nil, "columns to plot (default: energies)")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	renderCmd := &cobra.Command{
		Use:   "render [preset]",
		Short: "render a scene frame to svg, or an animation to gif",
		Args:  cobra.MaximumNArgs(1),
		RunE:  renderScene,
	}
	sceneFlags(renderCmd)
	renderCmd.Flags().Float64Var(&renderAt, "at", 0, "simulated time of the frame")
	renderCmd.Flags().StringVarP(&outFile, "out", "o", "scene.svg", "output file")
	renderCmd.Flags().BoolVar(&animate, "gif", false, "animate from t=0 to --at (or the scene duration)")

	traceCmd := &cobra.Command{
		Use:   "trace [run_id]",
		Short: "write one stored column against another as svg",
		Args:  cobra.ExactArgs(1),
		RunE:  traceRun,
	}
	traceCmd.Flags().StringVar(&traceX, "x", "time", "column for the horizontal axis")
	traceCmd.Flags().StringVar(&traceY, "y", "kinetic", "column for the vertical axis")
	traceCmd.Flags().StringVarP(&outFile, "out", "o", "trace.svg", "output file")

	sweepCmd := &cobra.Command{
		Use:   "sweep [preset]",
		Short: "grid search scene parameters for the lowest metric",
		Args:  cobra.MaximumNArgs(1),
		RunE:  sweepScene,
	}
	sceneFlags(sweepCmd)
	sweepCmd.Flags().StringArrayVar(&sweepSpecs, "param", nil, "name=v1,v2,... (repeatable)")
	sweepCmd.Flags().StringVar(&metricName, "metric", "energy_drift", "metric to minimize")

	serveCmd := &cobra.Command{
		Use:   "serve [preset]",
		Short: "stream a running scene to websocket clients",
		Args:  cobra.MaximumNArgs(1),
		RunE:  serveScene,
	}
	sceneFlags(serveCmd)
	serveCmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	serveCmd.Flags().IntVar(&every, "every", 2, "publish one snapshot per this many steps")
	serveCmd.Flags().BoolVar(&realtime, "realtime", true, "pace the simulation to wall-clock time")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency and phase analysis of a stored column",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().StringVar(&column, "column", "", "column to analyze (default: first body's y)")
	analyzeCmd.Flags().Float64Var(&level, "level", 0, "level for upward crossings")

	massCmd := &cobra.Command{
		Use:   "mass",
		Short: "mass properties of a primitive",
		RunE:  massProperties,
	}
	shapeFlags(massCmd)
	massCmd.Flags().Float64Var(&density, "density", config.DefaultDensity, "density")

	collideCmd := &cobra.Command{
		Use:   "collide",
		Short: "test two primitives for penetration",
		RunE:  collideShapes,
	}
	shapeFlags(collideCmd)
	collideCmd.Flags().StringVar(&otherKind, "other", "box", "second shape kind")
	collideCmd.Flags().Float64SliceVar(&otherSize, "other-size", []float64{1, 1, 1}, "second shape size")
	collideCmd.Flags().Float64SliceVar(&offset, "offset", []float64{0.8, 0, 0}, "position of the second shape")
	collideCmd.Flags().Float64SliceVar(&rotation, "rotation", []float64{0, 0, 0}, "rotation vector of the second shape")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list built-in scenes",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tBODIES\tDT\tDURATION")
			for _, name := range config.ListPresets() {
				p := config.Presets[name]
				fmt.Fprintf(w, "%s\t%d\t%.4f\t%.1fs\n", name, len(p.Bodies), p.Dt, p.Duration)
			}
			return w.Flush()
		},
	}

	rootCmd.AddCommand(runCmd, liveCmd, serveCmd, ensembleCmd, sweepCmd, benchCmd, listCmd, plotCmd, exportCmd, renderCmd, traceCmd, analyzeCmd, massCmd, collideCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func shapeFlags(c *cobra.Command) {
	c.Flags().StringVar(&shapeKind, "shape", "box", "box, tetrahedron or icosphere")
	c.Flags().Float64SliceVar(&shapeSize, "size", []float64{1, 1, 1}, "box extent or tetrahedron edge")
	c.Flags().Float64Var(&shapeRadius, "radius", 0.5, "icosphere radius")
	c.Flags().IntVar(&subdivs, "subdivisions", 1, "icosphere subdivisions")
}

func newLogger() *slog.Logger {
	if !verbose {
		return slog.New(slog.DiscardHandler)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// loadScene picks the scene from --config, the preset argument or the
// default, then applies the flags the user set explicitly.
func loadScene(cmd *cobra.Command, args []string) (*config.Config, error) {
	var cfg *config.Config
	switch {
	case configFile != "":
		c, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = c
	case len(args) > 0:
		cfg = config.GetPreset(args[0])
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", args[0], config.ListPresets())
		}
	default:
		cfg = config.DefaultConfig()
	}

	if cmd.Flags().Changed("dt") {
		cfg.Dt = dt
	}
	if cmd.Flags().Changed("time") {
		cfg.Duration = duration
	}
	if cmd.Flags().Changed("seed") {
		cfg.Seed = seed
	}
	if cmd.Flags().Changed("workers") {
		cfg.Workers = workers
	}
	return cfg, cfg.Check()
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func runScene(cmd *cobra.Command, args []string) error {
	cfg, err := loadScene(cmd, args)
	if err != nil {
		return err
	}
	logger := newLogger()

	w, err := cfg.Build(cfg.Seed)
	if err != nil {
		return err
	}
	w.SetLogger(logger)

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	s := sim.New(w)
	for _, m := range metrics.Standard() {
		s.AddMetric(m)
	}

	ctx, cancel := signalContext()
	defer cancel()

	rc := cfg.RunConfig()
	fmt.Printf("running %s (%d bodies)...\n", cfg.Name, len(w.Roots()))
	start := time.Now()

	result, err := s.Run(ctx, rc)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	runID, err := st.Save(cfg.Name, rc, result)
	if err != nil {
		return err
	}
	logger.Info("run stored", "id", runID, "dir", dataDir)

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n", result.StepsTaken)
	for _, e := range result.Errors {
		fmt.Printf("error: %v\n", e)
	}
	fmt.Println("\nmetrics:")
	for _, name := range slices.Sorted(maps.Keys(result.Metrics)) {
		fmt.Printf("  %s: %.6f\n", name, result.Metrics[name])
	}
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadScene(cmd, args)
	if err != nil {
		return err
	}
	m, err := viz.FromConfig(cfg)
	if err != nil {
		return err
	}
	if !watch {
		return viz.Run(m, nil)
	}
	if configFile == "" {
		return errors.New("--watch needs --config")
	}

	ctx, cancel := signalContext()
	defer cancel()
	reloads := make(chan viz.ReloadMsg, 1)
	go func() {
		err := config.Watch(ctx, configFile, func(c *config.Config, err error) {
			select {
			case reloads <- viz.Reload(c, err):
			case <-ctx.Done():
			}
		})
		if err != nil {
			reloads <- viz.Reload(nil, err)
		}
	}()
	return viz.Run(m, reloads)
}

// serveScene replays the scene in a loop until interrupted.
func serveScene(cmd *cobra.Command, args []string) error {
	cfg, err := loadScene(cmd, args)
	if err != nil {
		return err
	}
	logger := newLogger()
	if !verbose {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}

	hub := stream.NewHub(logger)
	mux := http.NewServeMux()
	mux.Handle("/ws", hub)
	srv := &http.Server{Addr: addr, Handler: mux}

	ctx, cancel := signalContext()
	defer cancel()

	errc := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()
	logger.Info("streaming", "scene", cfg.Name, "addr", addr, "path", "/ws")

	for run := 0; ctx.Err() == nil; run++ {
		w, err := cfg.Build(cfg.Seed + int64(run))
		if err != nil {
			return err
		}
		w.SetLogger(logger)
		err = stream.Publish(ctx, hub, sim.New(w), cfg.RunConfig(), stream.Options{Every: every, Realtime: realtime})
		if err != nil && ctx.Err() == nil {
			logger.Warn("run failed, restarting", "run", run, "err", err)
		}
		select {
		case err, ok := <-errc:
			if ok {
				return err
			}
		default:
		}
	}

	hub.Close()
	shutdown, stop := context.WithTimeout(context.Background(), 2*time.Second)
	defer stop()
	return srv.Shutdown(shutdown)
}

func builder(cfg *config.Config, logger *slog.Logger) sim.Builder {
	return func(seed int64) (sim.Stepper, error) {
		w, err := cfg.Build(seed)
		if err != nil {
			return nil, err
		}
		w.SetLogger(logger.With("seed", seed))
		return w, nil
	}
}

func runEnsemble(cmd *cobra.Command, args []string) error {
	cfg, err := loadScene(cmd, args)
	if err != nil {
		return err
	}
	if numRuns <= 0 {
		return fmt.Errorf("runs must be positive, got %d", numRuns)
	}

	e := sim.NewEnsemble(builder(cfg, newLogger()), numRuns, cfg.Seed)
	e.AddMetric(func() dynamo.Metric { return metrics.NewEnergyDrift() })
	e.AddMetric(func() dynamo.Metric { return metrics.NewPenetration() })
	e.AddMetric(func() dynamo.Metric { return metrics.NewContacts() })

	ctx, cancel := signalContext()
	defer cancel()

	rc := cfg.RunConfig()
	// the ensemble already spreads runs over cores
	rc.Workers = 1
	results, err := e.Run(ctx, rc)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SEED\tSTEPS\tDRIFT\tPENETRATION\tCONTACTS\tERRORS")
	for i, r := range results {
		fmt.Fprintf(w, "%d\t%d\t%.2e\t%.4f\t%.2f\t%d\n",
			cfg.Seed+int64(i),
			r.StepsTaken,
			r.Metrics["energy_drift"],
			r.Metrics["max_penetration"],
			r.Metrics["contacts"],
			len(r.Errors),
		)
	}
	return w.Flush()
}

// parseSweep reads "name=v1,v2" specs into parallel name and value lists.
func parseSweep(specs []string) ([]string, [][]float64, error) {
	names := make([]string, 0, len(specs))
	ranges := make([][]float64, 0, len(specs))
	for _, spec := range specs {
		name, list, ok := strings.Cut(spec, "=")
		if !ok || name == "" {
			return nil, nil, fmt.Errorf("bad --param %q, want name=v1,v2", spec)
		}
		var values []float64
		for _, f := range strings.Split(list, ",") {
			v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
			if err != nil {
				return nil, nil, fmt.Errorf("bad value in --param %q: %w", spec, err)
			}
			values = append(values, v)
		}
		names = append(names, name)
		ranges = append(ranges, values)
	}
	return names, ranges, nil
}

func sweepScene(cmd *cobra.Command, args []string) error {
	base, err := loadScene(cmd, args)
	if err != nil {
		return err
	}
	if len(sweepSpecs) == 0 {
		return fmt.Errorf("nothing to sweep, add --param (tunable: %v)", config.Tunable)
	}
	names, ranges, err := parseSweep(sweepSpecs)
	if err != nil {
		return err
	}
	for _, n := range names {
		if err := base.Clone().SetParam(n, 0); err != nil {
			return err
		}
	}
	g, err := optim.NewGridSearch(names, ranges)
	if err != nil {
		return err
	}

	logger := newLogger()
	run := func(ctx context.Context, params map[string]float64) (*dynamo.Result, error) {
		cfg := base.Clone()
		for k, v := range params {
			if err := cfg.SetParam(k, v); err != nil {
				return nil, err
			}
		}
		if err := cfg.Check(); err != nil {
			return nil, err
		}
		w, err := cfg.Build(cfg.Seed)
		if err != nil {
			return nil, err
		}
		w.SetLogger(logger)
		s := sim.New(w)
		for _, m := range metrics.Standard() {
			s.AddMetric(m)
		}
		return s.Run(ctx, cfg.RunConfig())
	}

	ctx, cancel := signalContext()
	defer cancel()

	best, val, trials, err := g.Search(ctx, run, metricName)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.ToUpper(strings.Join(names, "\t"))+"\t"+strings.ToUpper(metricName))
	for _, t := range trials {
		row := make([]string, 0, len(names)+1)
		for _, n := range names {
			row = append(row, strconv.FormatFloat(t.Params[n], 'g', 6, 64))
		}
		if t.Err != nil {
			row = append(row, "error: "+t.Err.Error())
		} else {
			row = append(row, fmt.Sprintf("%.6g", t.Value))
		}
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if best == nil {
		return fmt.Errorf("no successful runs")
	}
	fmt.Printf("\nbest %s = %.6g at %v\n", metricName, val, best)
	return nil
}

func benchScene(cmd *cobra.Command, args []string) error {
	cfg, err := loadScene(cmd, args)
	if err != nil {
		return err
	}

	fmt.Printf("benchmarking %s\n\n", cfg.Name)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "WORKERS\tSTEPS\tTIME\tSTEPS/SEC")

	for _, n := range []int{1, 2, 4, 0} {
		scene, err := cfg.Build(cfg.Seed)
		if err != nil {
			return err
		}
		rc := cfg.RunConfig()
		rc.Workers = n
		rc.ValidateState = false

		start := time.Now()
		result, err := sim.New(scene).Run(context.Background(), rc)
		if err != nil {
			return err
		}
		elapsed := time.Since(start)

		label := fmt.Sprintf("%d", n)
		if n == 0 {
			label = "all"
		}
		fmt.Fprintf(w, "%s\t%d\t%v\t%.0f\n", label, result.StepsTaken, elapsed, float64(result.StepsTaken)/elapsed.Seconds())
	}
	return w.Flush()
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
	fmt.Fprintln(w, "ID\tSCENE\tTIME\tDURATION\tDT\tBODIES\tDRIFT")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2fs\t%.4fs\t%d\t%.2e\n",
			run.ID,
			run.Scene,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Dt,
			len(run.Bodies),
			run.EnergyDrift,
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
	traj, err := st.LoadTrajectory(runID)
	if err != nil {
		return err
	}
	if len(traj.Rows) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("scene: %s\n", meta.Scene)
	fmt.Printf("samples: %d\n\n", len(traj.Rows))

	cols := columns
	if len(cols) == 0 {
		cols = []string{"kinetic", "potential"}
	}
	for _, name := range cols {
		data := traj.Column(name)
		if data == nil {
			return fmt.Errorf("unknown column %q (available: %s)", name, strings.Join(traj.Header[1:], ", "))
		}
		fmt.Println(asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(name),
		))
		fmt.Println()
	}
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func renderScene(cmd *cobra.Command, args []string) error {
	cfg, err := loadScene(cmd, args)
	if err != nil {
		return err
	}
	w, err := cfg.Build(cfg.Seed)
	if err != nil {
		return err
	}
	w.SetLogger(newLogger())

	ctx, cancel := signalContext()
	defer cancel()
	if animate {
		if !cmd.Flags().Changed("out") {
			outFile = "scene.gif"
		}
		return renderGIF(ctx, w, cfg)
	}
	for w.Time()+cfg.Dt/2 < renderAt {
		if err := w.Step(ctx, cfg.Dt); err != nil {
			return err
		}
	}

	cam := viz.NewCamera()
	cam.Focus(w)
	svg := export.SceneToSVG(w, cam, 80, 40, 4)
	if err := os.WriteFile(outFile, []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s at t=%.3fs\n", outFile, w.Time())
	return nil
}

const gifFPS = 15

func renderGIF(ctx context.Context, w *world.World, cfg *config.Config) error {
	end := renderAt
	if end <= 0 {
		end = cfg.Duration
	}
	stepsPerFrame := max(1, int(1/(cfg.Dt*gifFPS)))

	cam := viz.NewCamera()
	cam.Focus(w)
	canvas := viz.NewCanvas(80, 40)
	wire := &viz.Wireframe{}
	anim := export.NewAnimation(3, 100/gifFPS)
	for {
		viz.DrawWorld(canvas, wire, w, cam)
		anim.AddCanvas(canvas)
		if w.Time()+cfg.Dt/2 >= end {
			break
		}
		for range stepsPerFrame {
			if err := w.Step(ctx, cfg.Dt); err != nil {
				return err
			}
		}
	}

	f, err := os.Create(outFile)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := anim.Encode(f); err != nil {
		return err
	}
	fmt.Printf("wrote %s: %d frames to t=%.3fs\n", outFile, anim.Len(), w.Time())
	return f.Close()
}

func traceRun(cmd *cobra.Command, args []string) error {
	traj, err := storage.New(dataDir).LoadTrajectory(args[0])
	if err != nil {
		return err
	}
	column := func(name string) ([]float64, error) {
		if name == "time" {
			return traj.Times, nil
		}
		if data := traj.Column(name); data != nil {
			return data, nil
		}
		return nil, fmt.Errorf("unknown column %q", name)
	}
	xs, err := column(traceX)
	if err != nil {
		return err
	}
	ys, err := column(traceY)
	if err != nil {
		return err
	}

	svg := export.TrajectoryToSVG(xs, ys, 800, 600, "#00ffff")
	if svg == "" {
		return fmt.Errorf("not enough samples to trace")
	}
	if err := os.WriteFile(outFile, []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s (%d points)\n", outFile, len(xs))
	return nil
}

// velocityColumn maps a position column such as "cube_y" to "cube_vy".
func velocityColumn(name string) string {
	i := strings.LastIndexByte(name, '_')
	if i < 0 {
		return ""
	}
	switch axis := name[i+1:]; axis {
	case "x", "y", "z":
		return name[:i+1] + "v" + axis
	}
	return ""
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	traj, err := st.LoadTrajectory(args[0])
	if err != nil {
		return err
	}

	name := column
	if name == "" {
		if len(meta.Bodies) == 0 {
			return fmt.Errorf("run %s has no bodies", meta.ID)
		}
		name = meta.Bodies[len(meta.Bodies)-1] + "_y"
	}
	data := traj.Column(name)
	if data == nil {
		return fmt.Errorf("unknown column %q", name)
	}
	if len(data) == 0 {
		return fmt.Errorf("no data to analyze")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("column: %s (%d samples)\n", name, len(data))

	if len(traj.Times) > 1 {
		spacing := (traj.Times[len(traj.Times)-1] - traj.Times[0]) / float64(len(traj.Times)-1)
		if f, err := analysis.DominantFrequency(data, spacing); err == nil {
			fmt.Printf("dominant frequency: %.4f Hz\n", f)
		}
	}
	if !cmd.Flags().Changed("level") {
		lo, hi := slices.Min(data), slices.Max(data)
		level = (lo + hi) / 2
	}
	crossings := analysis.Crossings(traj.Times, data, level)
	fmt.Printf("upward crossings of %.4f: %d\n", level, len(crossings))

	if vname := velocityColumn(name); vname != "" {
		if v := traj.Column(vname); v != nil {
			fmt.Printf("\nphase portrait (%s vs %s):\n", vname, name)
			fmt.Print(analysis.PortraitToASCII(analysis.NewPortrait(data, v), 60, 20))
		}
	}
	return nil
}

func vec3Flag(name string, v []float64) (mgl64.Vec3, error) {
	if len(v) != 3 {
		return mgl64.Vec3{}, fmt.Errorf("--%s needs three values, got %d", name, len(v))
	}
	return mgl64.Vec3{v[0], v[1], v[2]}, nil
}

func sizeFlag(v []float64) [3]float64 {
	var out [3]float64
	copy(out[:], v)
	return out
}

func massProperties(cmd *cobra.Command, args []string) error {
	shape := config.ShapeConfig{Kind: shapeKind, Size: sizeFlag(shapeSize), Radius: shapeRadius, Subdivisions: subdivs}
	poly, err := shape.Build()
	if err != nil {
		return err
	}
	if density <= 0 {
		return fmt.Errorf("density must be positive, got %g", density)
	}

	volume := poly.Volume()
	com := poly.CenterOfMass()
	inertia := poly.InertiaAroundCenterOfMass().Mul(density)

	fmt.Printf("shape:    %s (%d vertices, %d triangles)\n", shapeKind, poly.VertexCount(), poly.TriangleCount())
	fmt.Printf("volume:   %.6f\n", volume)
	fmt.Printf("mass:     %.6f\n", volume*density)
	fmt.Printf("center:   (%.4f, %.4f, %.4f)\n", com[0], com[1], com[2])
	fmt.Println("inertia about center:")
	for r := 0; r < 3; r++ {
		row := inertia.Row(r)
		fmt.Printf("  [%10.5f %10.5f %10.5f]\n", row[0], row[1], row[2])
	}
	return nil
}

func collideShapes(cmd *cobra.Command, args []string) error {
	a, err := config.ShapeConfig{Kind: shapeKind, Size: sizeFlag(shapeSize), Radius: shapeRadius, Subdivisions: subdivs}.Build()
	if err != nil {
		return err
	}
	b, err := config.ShapeConfig{Kind: otherKind, Size: sizeFlag(otherSize), Radius: shapeRadius, Subdivisions: subdivs}.Build()
	if err != nil {
		return err
	}
	pos, err := vec3Flag("offset", offset)
	if err != nil {
		return err
	}
	rot, err := vec3Flag("rotation", rotation)
	if err != nil {
		return err
	}

	sa := collision.Transformed{Poly: a, Frame: frame.Identity()}
	sb := collision.Transformed{Poly: b, Frame: frame.New(pos, frame.RotationFromVec(rot))}

	res, hit := collision.Intersect(sa, sb, &collision.Buffers{})
	if !hit {
		fmt.Println("no penetration")
		return nil
	}
	fmt.Println("penetrating")
	fmt.Printf("depth:        %.6f\n", res.Exit.Len())
	fmt.Printf("exit:         (%.5f, %.5f, %.5f)\n", res.Exit[0], res.Exit[1], res.Exit[2])
	fmt.Printf("intersection: (%.5f, %.5f, %.5f)\n", res.Intersection[0], res.Intersection[1], res.Intersection[2])
	return nil
}
