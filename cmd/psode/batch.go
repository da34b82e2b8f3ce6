package main

import (
	"context"
	"fmt"
	"sync/atomic"

	psode "github.com/adameus03/pso-de"
	"github.com/adameus03/pso-de/batch"
	"github.com/adameus03/pso-de/bench"
	"github.com/adameus03/pso-de/config"
	"github.com/adameus03/pso-de/meta"
	"github.com/adameus03/pso-de/record"
	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	tryCount int
	workers  int
	statsCSV string
	plain    bool
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Run many independent trials per function and summarize them",
	RunE:  runBatch,
}

func init() {
	batchCmd.Flags().IntVar(&tryCount, "try-count", 0, "Trials per function")
	batchCmd.Flags().IntVar(&workers, "workers", 0, "Trials run at once (0 = all CPUs)")
	batchCmd.Flags().StringVar(&statsCSV, "stats-csv", "", "Append one summary row per function to this CSV file")
	batchCmd.Flags().BoolVar(&plain, "plain", false, "Use fixed coefficients instead of tuning every step")
}

func runBatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("try-count") {
		cfg.Batch.Tries = tryCount
	}
	if cmd.Flags().Changed("workers") {
		cfg.Batch.Workers = workers
	}
	if cmd.Flags().Changed("stats-csv") {
		cfg.Output.StatsCSV = statsCSV
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.Batch.Tries == 0 {
		return fmt.Errorf("nothing to do: --try-count is 0")
	}

	log, err := setupLogger(cfg.Log)
	if err != nil {
		return err
	}
	seed := runSeed(cfg)
	log.WithFields(logrus.Fields{"seed": seed, "tries": cfg.Batch.Tries}).Info("starting batch")

	var rows []*record.StatsRow
	for _, name := range cfg.Functions {
		fn, err := lookup(name, cfg.Dimensions, log)
		if err != nil {
			return err
		}

		var evals atomic.Int64
		trial := newTrialFunc(cfg, fn, seed, !plain, &evals, log)
		stats, err := batch.Run(cmd.Context(), cfg.Batch.Tries, cfg.Batch.Workers, trial, batch.Logger(log))
		if err != nil {
			return fmt.Errorf("%v: %w", fn.Name(), err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%v: %v trials, %v evaluations\n", fn.Name(), stats.Count, humanize.Comma(evals.Load()))
		fmt.Fprintf(cmd.OutOrStdout(), "    min %v  median %v  mean %v  stddev %v  max %v\n",
			humanize.Ftoa(stats.Min), humanize.Ftoa(stats.Median()), humanize.Ftoa(stats.Mean()),
			humanize.Ftoa(stats.StdDev()), humanize.Ftoa(stats.Max))
		for _, r := range stats.Top(3) {
			fmt.Fprintf(cmd.OutOrStdout(), "    trial %v: %v (run %v)\n", r.Trial, humanize.Ftoa(r.Value), r.ID)
		}

		row := record.NewStatsRow(fn.Name(), cfg.Swarm.Particles, cfg.Swarm.Iterations, cfg.Coefs(), stats)
		rows = append(rows, &row)
	}

	if cfg.Output.StatsCSV != "" {
		return record.AppendStatsCSV(cfg.Output.StatsCSV, rows)
	}
	return nil
}

// newTrialFunc returns a factory of trials over fn.  Trial id runs with seed
// seed+id, so a batch is reproducible regardless of scheduling.
func newTrialFunc(cfg *config.Config, fn bench.Func, seed uint64, tuned bool, evals *atomic.Int64, log logrus.FieldLogger) func() batch.Trial {
	return func() batch.Trial {
		return func(ctx context.Context, id int) (float64, error) {
			s := seed + uint64(id)
			counter := psode.NewObjectiveLogger(fn, log.WithField("trial", id))
			defer func() { evals.Add(counter.Count()) }()

			st, err := newSwarm(cfg, psode.WithObjective(fn, counter), s, nil, log)
			if err != nil {
				return 0, err
			}
			if !tuned {
				st.Run(cfg.Swarm.Iterations)
				_, val := st.Best()
				return val, nil
			}

			solver, err := newSolver(cfg, s, log)
			if err != nil {
				return 0, err
			}
			tuner, err := meta.New(st, solver, cfg.DEConfig(), meta.Logger(log))
			if err != nil {
				return 0, err
			}
			if err := tuner.Run(cfg.Swarm.Iterations); err != nil {
				return 0, err
			}
			_, val := tuner.Best()
			return val, nil
		}
	}
}
