package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/Dilhara-Jayashan/bitonicSort/bitonic"
	"github.com/Dilhara-Jayashan/bitonicSort/bitonic/contrib/parallel"
	"github.com/Dilhara-Jayashan/bitonicSort/internal/intio"
)

// Output file names per engine, under the configured output directory.
const (
	modeSerial      = "serial"
	modeParallel    = "parallel"
	modeDistributed = "distributed"
)

// loadInput reads the integers of path.
func loadInput(ctx context.Context, path string) ([]int32, error) {
	prog := newProgress(loggerFromContext(ctx))
	data, err := intio.ReadFile(path)
	if err != nil {
		return nil, err
	}
	prog.done(fmt.Sprintf("Read %d values from %s", len(data), path))
	return data, nil
}

// outputPath returns flag if set, <output.dir>/<mode>_output.txt otherwise.
func (c *CLI) outputPath(flag, mode string) string {
	if flag != "" {
		return flag
	}
	return filepath.Join(c.cfg.Output.Dir, mode+"_output.txt")
}

// finish writes the sorted values and prints the summary. Nothing is written
// unless the sort succeeded.
func finish(cmd *cobra.Command, s summary, sorted []int32) error {
	if err := intio.WriteFile(s.output, sorted); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	printSummary(cmd.OutOrStdout(), s)
	return nil
}

// =============================================================================
// serial
// =============================================================================

func (c *CLI) serialCommand() *cobra.Command {
	var (
		output    string
		recursive bool
	)
	cmd := &cobra.Command{
		Use:   "serial <input>",
		Short: "Sort with the sequential network",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := loadInput(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			padded, n, err := bitonic.Pad(data, 1)
			if err != nil {
				return err
			}

			start := time.Now()
			if recursive {
				err = bitonic.SortRecursive(padded, true)
			} else {
				err = bitonic.Sort(padded)
			}
			if err != nil {
				return err
			}
			elapsed := time.Since(start)

			return finish(cmd, summary{
				mode:    modeSerial,
				count:   n,
				padded:  len(padded),
				elapsed: elapsed,
				output:  c.outputPath(output, modeSerial),
			}, bitonic.Truncate(padded, n))
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default <output.dir>/serial_output.txt)")
	cmd.Flags().BoolVar(&recursive, "recursive", false, "use the recursive build-then-merge form")
	return cmd
}

// =============================================================================
// parallel
// =============================================================================

func (c *CLI) parallelCommand() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "parallel <input>",
		Short: "Sort on a shared-memory worker pool",
		Long:  `Runs every stage of the network as one fork-join over a pool of worker goroutines.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			threads := intSetting(cmd, "threads", c.cfg.Sort.Threads)
			if threads < 0 {
				return fmt.Errorf("%w: threads must be >= 0, got %d", bitonic.ErrInvalidPrecondition, threads)
			}
			schedule, err := parallel.ParseSchedule(stringSetting(cmd, "schedule", c.cfg.Sort.Schedule))
			if err != nil {
				return err
			}
			grain := intSetting(cmd, "grain", c.cfg.Sort.Grain)

			data, err := loadInput(ctx, args[0])
			if err != nil {
				return err
			}
			padded, n, err := bitonic.Pad(data, 1)
			if err != nil {
				return err
			}

			s := parallel.New(threads, parallel.WithGrain(grain), parallel.WithSchedule(schedule))
			defer s.Close()

			start := time.Now()
			if err := parallel.Sort(s, padded); err != nil {
				return err
			}
			elapsed := time.Since(start)

			stats := s.Stats()
			logger.Debug("pool stats", "threads", s.Threads(), "schedule", schedule, "joins", stats.Joins, "items", stats.Items)

			return finish(cmd, summary{
				mode:    modeParallel,
				count:   n,
				padded:  len(padded),
				unit:    "Threads",
				units:   s.Threads(),
				elapsed: elapsed,
				output:  c.outputPath(output, modeParallel),
			}, bitonic.Truncate(padded, n))
		},
	}
	cmd.Flags().IntP("threads", "t", 0, "worker threads (default GOMAXPROCS)")
	cmd.Flags().Int("grain", 1024, "smallest index range handed to a worker")
	cmd.Flags().String("schedule", "static", "chunking schedule: static or dynamic")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default <output.dir>/parallel_output.txt)")
	return cmd
}
