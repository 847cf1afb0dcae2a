package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Dilhara-Jayashan/bitonicSort/bitonic"
)

// maxPairsShown bounds the comparator column; larger networks list counts only.
const maxPairsShown = 32

func (c *CLI) networkCommand() *cobra.Command {
	var size int
	cmd := &cobra.Command{
		Use:   "network",
		Short: "Print the stages of the sorting network",
		Long: `Prints one row per stage (k, j) of the network over --size inputs, with the
comparators it applies. An arrow marks the direction each pair is ordered in.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !bitonic.IsPowerOfTwo(size) {
				return fmt.Errorf("%w: size %d is not a power of two", bitonic.ErrInvalidPrecondition, size)
			}
			w := cmd.OutOrStdout()
			fmt.Fprintln(w, StyleTitle.Render(fmt.Sprintf("Bitonic network, %d inputs, %d stages", size, bitonic.StageCount(size))))

			rows := make([][]string, 0, bitonic.StageCount(size))
			step := 0
			for s := range bitonic.Stages(size) {
				step++
				rows = append(rows, []string{
					fmt.Sprint(step), fmt.Sprint(s.K), fmt.Sprint(s.J), formatPairs(s, size),
				})
			}
			printTable(w, []string{"#", "k", "j", "Comparators"}, rows)
			return nil
		},
	}
	cmd.Flags().IntVarP(&size, "size", "n", 8, "number of inputs, a power of two")
	return cmd
}

// formatPairs lists the comparators of s, or their count for wide networks.
func formatPairs(s bitonic.Stage, n int) string {
	if n/2 > maxPairsShown {
		return fmt.Sprintf("%d comparators", n/2)
	}
	var b strings.Builder
	for lo, hi := range s.Pairs(n) {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		arrow := styleAscending.Render(iconUp)
		if !s.Ascending(lo) {
			arrow = styleDescending.Render(iconDown)
		}
		fmt.Fprintf(&b, "%d:%d%s", lo, hi, arrow)
	}
	return b.String()
}
