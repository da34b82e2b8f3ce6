package main

import (
	"database/sql"
	"fmt"
	"os"

	psode "github.com/adameus03/pso-de"
	"github.com/adameus03/pso-de/bench"
	"github.com/adameus03/pso-de/config"
	"github.com/adameus03/pso-de/meta"
	"github.com/adameus03/pso-de/record"
	"github.com/adameus03/pso-de/swarm"
	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Minimize each function once with per-step coefficient tuning",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runEach(cmd, true)
	},
}

var psoCmd = &cobra.Command{
	Use:   "pso",
	Short: "Minimize each function once with fixed coefficients",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runEach(cmd, false)
	},
}

var funcsCmd = &cobra.Command{
	Use:   "funcs",
	Short: "List the benchmark functions",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		for _, name := range bench.Names() {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
	},
}

var initConfigCmd = &cobra.Command{
	Use:   "init-config <path>",
	Short: "Write the effective configuration to a YAML file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		return cfg.WriteYAML(args[0])
	},
}

// newSwarm builds a swarm over prob as configured.
func newSwarm(cfg *config.Config, prob psode.Problem, seed uint64, db *sql.DB, log logrus.FieldLogger) (*swarm.State, error) {
	opts := []swarm.Option{
		swarm.Coefficients(cfg.Coefs()),
		swarm.Seed(seed),
		swarm.Logger(log),
	}
	if cfg.Output.Cache > 0 {
		opts = append(opts, swarm.Cache(cfg.Output.Cache))
	}
	if db != nil {
		opts = append(opts, swarm.DB(db))
	}
	return swarm.New(cfg.Swarm.Particles, prob, opts...)
}

func runEach(cmd *cobra.Command, tuned bool) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log, err := setupLogger(cfg.Log)
	if err != nil {
		return err
	}
	db, err := openDB(cfg.Output.DB)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	seed := runSeed(cfg)
	log.WithField("seed", seed).Info("starting")
	rng := psode.NewRand(seed)

	multi := len(cfg.Functions) > 1
	for _, name := range cfg.Functions {
		if err := cmd.Context().Err(); err != nil {
			return err
		}
		fn, err := lookup(name, cfg.Dimensions, log)
		if err != nil {
			return err
		}
		if err := runOne(cmd, cfg, fn, rng.Uint64(), db, tuned, multi, log); err != nil {
			return fmt.Errorf("%v: %w", fn.Name(), err)
		}
	}
	return nil
}

func runOne(cmd *cobra.Command, cfg *config.Config, fn bench.Func, seed uint64, db *sql.DB, tuned, multi bool, log *logrus.Logger) error {
	counter := psode.NewObjectiveLogger(fn, log.WithField("fn", fn.Name()))
	prob := psode.WithObjective(fn, counter)

	st, err := newSwarm(cfg, prob, seed, db, log)
	if err != nil {
		return err
	}

	iters := cfg.Swarm.Iterations
	keep := cfg.Output.RecordCSV != "" || cfg.Output.RecordJSON != ""
	var snaps [][]psode.Vector
	if tuned {
		solver, err := newSolver(cfg, seed, log)
		if err != nil {
			return err
		}
		tuner, err := meta.New(st, solver, cfg.DEConfig(), meta.Logger(log))
		if err != nil {
			return err
		}
		if keep {
			snaps, err = tuner.RunRecord(iters)
		} else {
			err = tuner.Run(iters)
		}
		if err != nil {
			return err
		}
	} else if keep {
		snaps = st.RunRecord(iters)
	} else {
		st.Run(iters)
	}
	if err := st.Err(); err != nil {
		log.WithError(err).Warn("iterations were not all recorded to the database")
	}

	if err := writeSnapshots(cfg, fn.Name(), multi, snaps); err != nil {
		return err
	}

	best, val := st.Best()
	fmt.Fprintf(cmd.OutOrStdout(), "%v: best %v at %v after %v iterations (%v evaluations, run %v)\n",
		fn.Name(), humanize.Ftoa(val), best, st.Count(), humanize.Comma(counter.Count()), st.RunID())
	if !bench.Solved(fn, val, 0.01) {
		log.WithFields(logrus.Fields{"fn": fn.Name(), "optimum": fn.Optima()[0].Val}).Info("optimum not reached")
	}
	return nil
}

func writeSnapshots(cfg *config.Config, fn string, multi bool, snaps [][]psode.Vector) error {
	write := func(path string, w func(*os.File) error) error {
		if path == "" {
			return nil
		}
		f, err := os.Create(outPath(path, fn, multi))
		if err != nil {
			return err
		}
		defer f.Close()
		if err := w(f); err != nil {
			return err
		}
		return f.Close()
	}

	err := write(cfg.Output.RecordCSV, func(f *os.File) error { return record.WriteSnapshotsCSV(f, snaps) })
	if err != nil {
		return err
	}
	return write(cfg.Output.RecordJSON, func(f *os.File) error { return record.WriteSnapshotsJSON(f, snaps) })
}
