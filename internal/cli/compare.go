package cli

import (
	"fmt"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"github.com/Dilhara-Jayashan/bitonicSort/bitonic"
	"github.com/Dilhara-Jayashan/bitonicSort/bitonic/contrib/cluster"
	"github.com/Dilhara-Jayashan/bitonicSort/bitonic/contrib/parallel"
)

// run is one row of the comparison table.
type run struct {
	engine  string
	units   int
	elapsed time.Duration
}

func (c *CLI) compareCommand() *cobra.Command {
	var (
		threads []int
		workers []int
	)
	cmd := &cobra.Command{
		Use:   "compare <input>",
		Short: "Time every engine on the same input",
		Long: `Sorts the input once with the sequential network, then with the worker pool and
the in-process distributed engine for each requested thread and rank count, and
prints the timings with the speedup over the sequential run. Every result is
checked against the sequential one.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			data, err := loadInput(ctx, args[0])
			if err != nil {
				return err
			}
			strategy, err := cluster.ParseStrategy(c.cfg.Sort.Strategy)
			if err != nil {
				return err
			}

			padded, n, err := bitonic.Pad(slices.Clone(data), 1)
			if err != nil {
				return err
			}
			start := time.Now()
			if err := bitonic.Sort(padded); err != nil {
				return err
			}
			runs := []run{{engine: modeSerial, units: 1, elapsed: time.Since(start)}}
			want := bitonic.Truncate(padded, n)

			for _, t := range threads {
				logger.Debug("timing parallel engine", "threads", t)
				padded, n, err := bitonic.Pad(slices.Clone(data), 1)
				if err != nil {
					return err
				}
				s := parallel.New(t, parallel.WithGrain(c.cfg.Sort.Grain))
				start := time.Now()
				err = parallel.Sort(s, padded)
				elapsed := time.Since(start)
				s.Close()
				if err != nil {
					return err
				}
				if !slices.Equal(bitonic.Truncate(padded, n), want) {
					return fmt.Errorf("parallel engine with %d threads disagrees with the sequential one", t)
				}
				runs = append(runs, run{engine: modeParallel, units: t, elapsed: elapsed})
			}

			for _, w := range workers {
				logger.Debug("timing distributed engine", "workers", w, "strategy", strategy)
				timer := &phaseTimer{logger: logger, rank: cluster.Root}
				got, err := sortInProcess(ctx, w, data, cluster.Options{Strategy: strategy, OnPhase: timer.observe})
				if err != nil {
					return err
				}
				if !slices.Equal(got, want) {
					return fmt.Errorf("distributed engine with %d ranks disagrees with the sequential one", w)
				}
				runs = append(runs, run{engine: modeDistributed, units: w, elapsed: timer.sorted})
			}

			printComparison(cmd, len(data), runs)
			return nil
		},
	}
	cmd.Flags().IntSliceVar(&threads, "threads", []int{1, 2, 4, 8, 16}, "thread counts for the parallel engine")
	cmd.Flags().IntSliceVar(&workers, "workers", []int{1, 2, 4, 8, 16}, "rank counts for the distributed engine")
	return cmd
}

func printComparison(cmd *cobra.Command, count int, runs []run) {
	w := cmd.OutOrStdout()
	fmt.Fprintln(w, StyleTitle.Render(fmt.Sprintf("Dataset: %d elements", count)))

	base := runs[0].elapsed
	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		speedup := "-"
		if r.elapsed > 0 {
			speedup = fmt.Sprintf("%.2fx", base.Seconds()/r.elapsed.Seconds())
		}
		rows = append(rows, []string{r.engine, fmt.Sprint(r.units), formatSeconds(r.elapsed), speedup})
	}
	printTable(w, []string{"Engine", "Threads/Ranks", "Time", "Speedup"}, rows)
}
