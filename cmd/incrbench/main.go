// Command incrbench builds a balanced binary tree of Map2 nodes over
// a row of Var leaves and repeatedly stabilizes it, perturbing a
// random leaf between passes, to exercise the height-ordered
// recompute path under load. It replaces the ad hoc examples/benchmark
// driver with a proper cobra/viper CLI (SPEC_FULL.md domain stack).
package main

import (
	"bytes"
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	incr "github.com/wc-labs/incr"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "incrbench",
		Short: "Stress a generated incremental graph and report stabilization timing.",
		RunE:  runBenchmark,
	}
	cmd.Flags().Int("size", 128, "number of Var leaves in the generated tree")
	cmd.Flags().Int("rounds", 32, "number of perturb+stabilize rounds to run")
	cmd.Flags().Bool("debug", false, "enable verbose tracing to stderr")
	cmd.Flags().Bool("dot", false, "print a DOT render of the final graph to stdout")
	cmd.Flags().String("metrics-addr", "", "if set, serve Prometheus metrics on this address until the benchmark finishes")

	viper.SetEnvPrefix("incrbench")
	viper.AutomaticEnv()
	_ = viper.BindPFlags(cmd.Flags())

	return cmd
}

func runBenchmark(cmd *cobra.Command, _ []string) error {
	size := viper.GetInt("size")
	rounds := viper.GetInt("rounds")

	ctx := context.Background()
	if viper.GetBool("debug") {
		ctx = incr.WithTracing(ctx, os.Stderr)
		incr.SetVerbose(true)
	}

	graph := incr.New()

	if addr := viper.GetString("metrics-addr"); addr != "" {
		reg := prometheus.NewRegistry()
		reg.MustRegister(incr.NewMetricsCollector(graph))
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		srv := &http.Server{Addr: addr, Handler: mux}
		go func() { _ = srv.ListenAndServe() }()
		defer srv.Close()
	}

	leaves := make([]incr.VarIncr[string], size)
	nodes := make([]incr.Incr[string], size)
	for i := range leaves {
		leaves[i] = incr.Var(graph, fmt.Sprintf("var_%d", i))
		nodes[i] = leaves[i]
	}

	var cursor int
	for x := size; x > 1; x = (x + 1) / 2 {
		for y := 0; y+1 < x; y += 2 {
			n := incr.Map2(graph, nodes[cursor+y], nodes[cursor+y+1], concat)
			nodes = append(nodes, n)
		}
		cursor += x
	}

	root := nodes[len(nodes)-1]
	o, err := incr.Observe(ctx, graph, root)
	if err != nil {
		return err
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	started := time.Now()
	for n := 0; n < rounds; n++ {
		if err := graph.Stabilize(ctx); err != nil {
			return err
		}
		leaves[rng.Intn(len(leaves))].Set(fmt.Sprintf("var_%d_round_%d", n, n))
	}
	if err := graph.Stabilize(ctx); err != nil {
		return err
	}
	elapsed := time.Since(started)

	recomputed, changed := graph.Stats()
	fmt.Fprintf(cmd.OutOrStdout(), "nodes=%d rounds=%d elapsed=%s recomputed=%d changed=%d result_len=%d\n",
		graph.NumNodes(), rounds, elapsed, recomputed, changed, len(o.Value()))

	if viper.GetBool("dot") {
		buf := new(bytes.Buffer)
		if err := incr.Dot(buf, root); err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), buf.String())
	}

	o.Unobserve(ctx)
	return nil
}

func concat(a, b string) string { return a + "," + b }
