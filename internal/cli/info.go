package cli

import (
	"fmt"
	"runtime"
	"strings"
	"unsafe"

	"github.com/spf13/cobra"
	"golang.org/x/sys/cpu"
)

func (c *CLI) infoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show the hardware the engines will run on",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			fmt.Fprintln(w, StyleTitle.Render(appName+" runtime"))
			printKeyValue(w, "Platform", runtime.GOOS+"/"+runtime.GOARCH)
			printKeyValue(w, "CPUs", fmt.Sprint(runtime.NumCPU()))
			printKeyValue(w, "GOMAXPROCS", fmt.Sprint(runtime.GOMAXPROCS(0)))
			printKeyValue(w, "Pool size", fmt.Sprint(defaultThreads(c.cfg.Sort.Threads)))
			printKeyValue(w, "Cache line", fmt.Sprintf("%d bytes", unsafe.Sizeof(cpu.CacheLinePad{})))
			printKeyValue(w, "Features", strings.Join(cpuFeatures(), " "))
			return nil
		},
	}
}

// defaultThreads resolves a configured thread count the way the worker pool
// does.
func defaultThreads(configured int) int {
	if configured > 0 {
		return configured
	}
	return runtime.GOMAXPROCS(0)
}

// cpuFeatures lists the SIMD extensions detected on this CPU.
func cpuFeatures() []string {
	var features []string
	add := func(name string, ok bool) {
		if ok {
			features = append(features, name)
		}
	}
	switch runtime.GOARCH {
	case "amd64", "386":
		add("sse4.2", cpu.X86.HasSSE42)
		add("avx", cpu.X86.HasAVX)
		add("avx2", cpu.X86.HasAVX2)
		add("fma", cpu.X86.HasFMA)
		add("avx512f", cpu.X86.HasAVX512F)
		add("avx512bw", cpu.X86.HasAVX512BW)
	case "arm64":
		add("asimd", cpu.ARM64.HasASIMD)
		add("sve", cpu.ARM64.HasSVE)
		add("sve2", cpu.ARM64.HasSVE2)
	}
	if len(features) == 0 {
		features = append(features, "none detected")
	}
	return features
}
