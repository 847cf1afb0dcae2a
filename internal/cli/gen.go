package cli

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/spf13/cobra"

	"github.com/Dilhara-Jayashan/bitonicSort/internal/intio"
)

func (c *CLI) genCommand() *cobra.Command {
	var (
		count  int
		seed   uint64
		lo, hi int32
	)
	cmd := &cobra.Command{
		Use:   "gen <output>",
		Short: "Write a file of random integers to sort",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if count < 0 {
				return fmt.Errorf("count must be >= 0, got %d", count)
			}
			if lo > hi {
				return fmt.Errorf("min %d is greater than max %d", lo, hi)
			}
			if !cmd.Flags().Changed("seed") {
				seed = uint64(time.Now().UnixNano())
			}
			values := generate(count, seed, lo, hi)
			if err := intio.WriteFile(args[0], values); err != nil {
				return err
			}
			loggerFromContext(cmd.Context()).Debug("generated input", "count", count, "seed", seed)
			printSuccess(cmd.OutOrStdout(), "Generated %s values", StyleNumber.Render(fmt.Sprint(count)))
			printFile(cmd.OutOrStdout(), args[0])
			return nil
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", 2048, "number of values")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "random seed (default time based)")
	cmd.Flags().Int32Var(&lo, "min", 0, "smallest value")
	cmd.Flags().Int32Var(&hi, "max", 100000, "largest value")
	return cmd
}

// generate returns count values drawn uniformly from [lo, hi].
func generate(count int, seed uint64, lo, hi int32) []int32 {
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	span := uint64(int64(hi)-int64(lo)) + 1
	values := make([]int32, count)
	for i := range values {
		values[i] = int32(int64(lo) + int64(r.Uint64N(span)))
	}
	return values
}
