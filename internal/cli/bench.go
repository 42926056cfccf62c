package cli

import (
	"fmt"
	"io"
	"net/http"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"
	vegeta "github.com/tsenart/vegeta/lib"
)

var (
	benchTarget string
	benchMethod string
	benchRate   int
	benchDur    time.Duration
)

// benchCmd runs a constant-rate load test against a running server
var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Run a load test against a running tinyhttpd",
	Long: `Sends requests at a constant rate for a fixed duration and prints
latency percentiles and the status code histogram. Every request uses a
fresh connection.`,
	Args: cobra.NoArgs,
	RunE: runBench,
}

func init() {
	rootCmd.AddCommand(benchCmd)

	benchCmd.Flags().StringVar(&benchTarget, "target", "http://127.0.0.1:50000/", "URL to attack")
	benchCmd.Flags().StringVar(&benchMethod, "method", http.MethodGet, "HTTP method")
	benchCmd.Flags().IntVar(&benchRate, "rate", 100, "requests per second")
	benchCmd.Flags().DurationVar(&benchDur, "duration", 10*time.Second, "attack duration")
}

func runBench(cmd *cobra.Command, _ []string) error {
	if benchRate <= 0 {
		return fmt.Errorf("--rate must be positive")
	}
	if benchDur <= 0 {
		return fmt.Errorf("--duration must be positive")
	}

	targeter := vegeta.NewStaticTargeter(vegeta.Target{
		Method: strings.ToUpper(benchMethod),
		URL:    benchTarget,
	})
	rate := vegeta.Rate{Freq: benchRate, Per: time.Second}
	attacker := vegeta.NewAttacker(
		vegeta.Workers(uint64(runtime.NumCPU())),
		vegeta.KeepAlive(false),
	)

	fmt.Fprintf(cmd.OutOrStdout(), "attacking %s %s at %d/s for %s\n", benchMethod, benchTarget, benchRate, benchDur)
	var metrics vegeta.Metrics
	for res := range attacker.Attack(targeter, rate, benchDur, "tinyhttpd") {
		metrics.Add(res)
	}
	metrics.Close()

	return printBench(cmd.OutOrStdout(), &metrics)
}

func printBench(w io.Writer, m *vegeta.Metrics) error {
	fmt.Fprintf(w, "requests:    %d\n", m.Requests)
	fmt.Fprintf(w, "rate:        %.2f/s\n", m.Rate)
	fmt.Fprintf(w, "throughput:  %.2f/s\n", m.Throughput)
	fmt.Fprintf(w, "success:     %.2f%%\n", m.Success*100)
	fmt.Fprintf(w, "latency:     mean %s, p50 %s, p99 %s, max %s\n",
		m.Latencies.Mean, m.Latencies.P50, m.Latencies.P99, m.Latencies.Max)

	codes := make([]string, 0, len(m.StatusCodes))
	for code := range m.StatusCodes {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	parts := make([]string, 0, len(codes))
	for _, code := range codes {
		parts = append(parts, fmt.Sprintf("%s:%d", code, m.StatusCodes[code]))
	}
	fmt.Fprintf(w, "status:      %s\n", strings.Join(parts, " "))

	if len(m.Errors) > 0 {
		fmt.Fprintln(w, "errors:")
		for _, e := range m.Errors {
			fmt.Fprintf(w, "  %s\n", e)
		}
	}
	return nil
}
