// Command psode runs particle swarm optimization on the benchmark functions,
// optionally retuning the swarm coefficients with differential evolution
// before every step.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	psode "github.com/adameus03/pso-de"
	"github.com/adameus03/pso-de/bench"
	"github.com/adameus03/pso-de/config"
	"github.com/adameus03/pso-de/de"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	_ "modernc.org/sqlite"
)

var rootCmd = &cobra.Command{
	Use:   "psode",
	Short: "Particle swarm optimization with differential evolution meta-tuning",
	Long: `psode minimizes benchmark functions with a particle swarm.  In tuned mode
the social, cognitive and inertia coefficients are chosen before every step
by a differential evolution search over [0,1]^3.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Global flags
var (
	configPath string
	seed       uint64
	logLevel   string
	functions  []string
	dims       int
	particles  int
	partIters  int
	diffPop    uint32
	diffIters  uint64
	crossover  float64
	amplifier  float64
	lambda     float64
	accuracy   float64
	solverName string
	dbPath     string
	recordCSV  string
	recordJSON string
)

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "Configuration file path")
	pf.Uint64Var(&seed, "seed", 0, "Random seed (0 = from the clock)")
	pf.StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	pf.StringSliceVar(&functions, "functions", nil, "Benchmark functions to minimize (comma-separated)")
	pf.IntVar(&dims, "dims", 0, "Dimensions of the N-dimensional functions")

	pf.IntVar(&particles, "particles", 0, "Swarm size")
	pf.IntVar(&partIters, "part-iters", 0, "Swarm iterations per run")

	pf.Uint32Var(&diffPop, "diff-pop", 0, "Differential evolution population size")
	pf.Uint64Var(&diffIters, "diff-iters", 0, "Differential evolution generations per step")
	pf.Float64Var(&crossover, "crossover", 0, "Differential evolution crossover probability")
	pf.Float64Var(&amplifier, "amplifier", 0, "Differential evolution weight F")
	pf.Float64Var(&lambda, "lambda", 0, "Weight of the best member when reproducing")
	pf.Float64Var(&accuracy, "accuracy", 0, "Stop each tuning search below this value instead of after --diff-iters")
	pf.StringVar(&solverName, "solver", "", "Coefficient solver: go, gonum or native")

	pf.StringVar(&dbPath, "db", "", "Record every iteration to this SQLite database")
	pf.StringVar(&recordCSV, "record-csv", "", "Write particle positions per iteration to this CSV file")
	pf.StringVar(&recordJSON, "record-json", "", "Write particle positions per iteration to this JSON file")

	rootCmd.AddCommand(runCmd, psoCmd, batchCmd, funcsCmd, initConfigCmd)
}

// loadConfig reads the config file and applies every flag set on the
// command line over it.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	set := cmd.Flags().Changed
	if set("seed") {
		cfg.Seed = seed
	}
	if set("log-level") {
		cfg.Log.Level = logLevel
	}
	if set("functions") {
		cfg.Functions = functions
	}
	if set("dims") {
		cfg.Dimensions = dims
	}
	if set("particles") {
		cfg.Swarm.Particles = particles
	}
	if set("part-iters") {
		cfg.Swarm.Iterations = partIters
	}
	if set("diff-pop") {
		cfg.DE.Population = diffPop
	}
	if set("diff-iters") {
		cfg.DE.Iterations = diffIters
	}
	if set("crossover") {
		cfg.DE.Crossover = crossover
	}
	if set("amplifier") {
		cfg.DE.Amplifier = amplifier
	}
	if set("lambda") {
		cfg.DE.Lambda = lambda
	}
	if set("accuracy") {
		acc := accuracy
		cfg.DE.Accuracy = &acc
	}
	if set("solver") {
		cfg.DE.Solver = solverName
	}
	if set("db") {
		cfg.Output.DB = dbPath
	}
	if set("record-csv") {
		cfg.Output.RecordCSV = recordCSV
	}
	if set("record-json") {
		cfg.Output.RecordJSON = recordJSON
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setupLogger(cfg config.LogConfig) (*logrus.Logger, error) {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	if cfg.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}

	lvl, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	logger.SetLevel(lvl)
	return logger, nil
}

// newSolver builds the coefficient solver named by the config.
func newSolver(cfg *config.Config, seed uint64, log logrus.FieldLogger) (de.Solver, error) {
	switch cfg.DE.Solver {
	case "go":
		s := de.NewGoSolver(seed)
		s.MaxGenerations = cfg.DE.MaxGenerations
		s.Log = log
		return s, nil
	case "gonum":
		return &de.GonumSolver{MaxGenerations: cfg.DE.MaxGenerations, Log: log}, nil
	case "native":
		s, err := de.NewNativeSolver()
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	return nil, fmt.Errorf("unknown solver %q", cfg.DE.Solver)
}

// lookup resolves a function name, ignoring the configured dimensions for
// the planar functions.
func lookup(name string, dims int, log logrus.FieldLogger) (bench.Func, error) {
	fn, err := bench.Lookup(name, dims)
	var dimErr *psode.DimensionError
	if errors.As(err, &dimErr) {
		log.WithField("fn", name).Warnf("%v is planar, ignoring dims=%v", name, dims)
		return bench.Lookup(name, 0)
	}
	return fn, err
}

func openDB(path string) (*sql.DB, error) {
	if path == "" {
		return nil, nil
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// one connection so that in-memory databases are shared
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return db, nil
}

// runSeed returns the configured seed, or one from the clock.
func runSeed(cfg *config.Config) uint64 {
	if cfg.Seed != 0 {
		return cfg.Seed
	}
	return uint64(time.Now().UnixNano())
}

// outPath returns path, with the function name inserted before the
// extension when more than one function is run.
func outPath(path, fn string, multi bool) string {
	if !multi {
		return path
	}
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "_" + fn + ext
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "psode: %v\n", err)
		os.Exit(1)
	}
}
