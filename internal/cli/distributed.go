package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/Dilhara-Jayashan/bitonicSort/bitonic"
	"github.com/Dilhara-Jayashan/bitonicSort/bitonic/contrib/cluster"
	"github.com/Dilhara-Jayashan/bitonicSort/bitonic/contrib/cluster/local"
	"github.com/Dilhara-Jayashan/bitonicSort/bitonic/contrib/cluster/wsnet"
)

// phaseTimer accumulates the time of the phases after distribution, which
// start at the post-scatter barrier.
type phaseTimer struct {
	logger *log.Logger
	rank   int
	sorted time.Duration
}

func (t *phaseTimer) observe(p cluster.Phase, elapsed time.Duration) {
	t.logger.Debug("phase done", "rank", t.rank, "phase", p, "elapsed", elapsed)
	if p != cluster.PhaseDistribute {
		t.sorted += elapsed
	}
}

// =============================================================================
// distributed
// =============================================================================

func (c *CLI) distributedCommand() *cobra.Command {
	var (
		output string
		job    string
	)
	cmd := &cobra.Command{
		Use:   "distributed <input>",
		Short: "Sort on a group of ranks",
		Long: `Scatters the padded input over a group of ranks, sorts the partitions locally and
merges them on rank 0.

Without --listen the ranks are goroutines of this process. With --listen this
process is rank 0 of a multi-process group and waits for the other ranks to
join with "bitonic worker".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			workers := intSetting(cmd, "workers", c.cfg.Sort.Workers)
			strategy, err := cluster.ParseStrategy(stringSetting(cmd, "strategy", c.cfg.Sort.Strategy))
			if err != nil {
				return err
			}
			listen := stringSetting(cmd, "listen", c.cfg.Cluster.Listen)
			timeout := durationSetting(cmd, "timeout", c.cfg.Cluster.Timeout)

			data, err := loadInput(ctx, args[0])
			if err != nil {
				return err
			}
			padded, err := bitonic.NextEligibleLength(len(data), workers)
			if err != nil {
				return err
			}

			timer := &phaseTimer{logger: logger, rank: cluster.Root}
			opts := cluster.Options{Strategy: strategy, OnPhase: timer.observe}

			var sorted []int32
			if listen == "" {
				sorted, err = sortInProcess(ctx, workers, data, opts)
			} else {
				sorted, err = sortAsCoordinator(ctx, logger, listen, job, timeout, workers, data, opts)
			}
			if err != nil {
				return err
			}

			return finish(cmd, summary{
				mode:    modeDistributed,
				count:   len(data),
				padded:  padded,
				unit:    "Processes",
				units:   workers,
				elapsed: timer.sorted,
				output:  c.outputPath(output, modeDistributed),
			}, sorted)
		},
	}
	cmd.Flags().IntP("workers", "n", 4, "group size, a power of two")
	cmd.Flags().String("strategy", "gather", "merge strategy: gather or pairwise")
	cmd.Flags().String("listen", "", "serve a multi-process group on this address (e.g. :7946)")
	cmd.Flags().Duration("timeout", 2*time.Minute, "how long to wait for workers to join")
	cmd.Flags().StringVar(&job, "job", "", "job id workers must present (default random)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default <output.dir>/distributed_output.txt)")
	return cmd
}

// sortInProcess runs every rank as a goroutine of this process.
func sortInProcess(ctx context.Context, workers int, data []int32, opts cluster.Options) ([]int32, error) {
	var sorted []int32
	err := local.Run(ctx, workers, func(ctx context.Context, comm *cluster.Comm) error {
		if comm.Rank() != cluster.Root {
			_, err := cluster.Sort(ctx, comm, nil, cluster.Options{})
			return err
		}
		out, err := cluster.Sort(ctx, comm, data, opts)
		sorted = out
		return err
	})
	return sorted, err
}

// sortAsCoordinator serves the group on listen, waits for workers-1 ranks to
// join and runs rank 0.
func sortAsCoordinator(ctx context.Context, logger *log.Logger, listen, job string, timeout time.Duration,
	workers int, data []int32, opts cluster.Options) ([]int32, error) {
	if workers < 1 || !bitonic.IsPowerOfTwo(workers) {
		return nil, fmt.Errorf("%w: %d workers is not a power of two", bitonic.ErrInvalidPrecondition, workers)
	}
	coord, err := wsnet.NewCoordinator(workers, wsnet.WithLogger(logger), wsnet.WithJobID(job))
	if err != nil {
		return nil, err
	}
	ln, err := net.Listen("tcp", listen)
	if err != nil {
		return nil, err
	}
	srv := &http.Server{Handler: coord, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			coord.Abort(fmt.Errorf("serve %s: %w", listen, err))
		}
	}()
	defer srv.Close()
	defer coord.Close()

	logger.Info("Waiting for workers", "addr", ln.Addr().String(), "workers", workers-1, "job", coord.JobID())
	prog := newProgress(logger)
	wctx, cancel := context.WithTimeout(ctx, timeout)
	err = coord.Wait(wctx)
	cancel()
	if err != nil {
		coord.Abort(err)
		return nil, err
	}
	prog.done(fmt.Sprintf("%d workers joined", workers-1))

	return cluster.Sort(ctx, cluster.NewComm(coord), data, opts)
}

// =============================================================================
// worker
// =============================================================================

func (c *CLI) workerCommand() *cobra.Command {
	var job string
	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Join a multi-process group as a non-root rank",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			addr := stringSetting(cmd, "coordinator", c.cfg.Cluster.Coordinator)
			if addr == "" {
				return errors.New("no coordinator address: pass --coordinator or set cluster.coordinator")
			}
			timeout := durationSetting(cmd, "timeout", c.cfg.Cluster.Timeout)

			dctx, cancel := context.WithTimeout(ctx, timeout)
			w, err := wsnet.Dial(dctx, coordinatorURL(addr), wsnet.WithLogger(logger), wsnet.WithJobID(job))
			cancel()
			if err != nil {
				return err
			}
			defer w.Close()
			logger.Info("Joined group", "rank", w.Rank(), "size", w.Size(), "job", w.JobID())

			timer := &phaseTimer{logger: logger, rank: w.Rank()}
			if _, err := cluster.Sort(ctx, cluster.NewComm(w), nil, cluster.Options{OnPhase: timer.observe}); err != nil {
				return err
			}
			printSuccess(cmd.OutOrStdout(), "Rank %d of %d done in %s", w.Rank(), w.Size(), formatSeconds(timer.sorted))
			return nil
		},
	}
	cmd.Flags().String("coordinator", "", "coordinator address, host:port or ws:// URL")
	cmd.Flags().Duration("timeout", 2*time.Minute, "how long to wait for the coordinator")
	cmd.Flags().StringVar(&job, "job", "", "job id printed by the coordinator")
	return cmd
}

// coordinatorURL accepts host:port as well as a full ws:// or wss:// URL.
func coordinatorURL(addr string) string {
	if strings.HasPrefix(addr, "ws://") || strings.HasPrefix(addr, "wss://") {
		return addr
	}
	return "ws://" + addr + "/"
}
