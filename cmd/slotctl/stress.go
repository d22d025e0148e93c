package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"net"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"

	atomicfile "github.com/natefinch/atomic"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/tailscale/hujson"

	"github.com/joshuapare/slotkit/cmd/slotctl/logger"
	"github.com/joshuapare/slotkit/pkg/slotmetrics"
	"github.com/joshuapare/slotkit/slot/table"
)

var (
	stressFlags       StressProfile
	stressProfilePath string
	stressOutPath     string
	stressMetricsAddr string
)

func init() {
	cmd := newStressCmd()
	cmd.Flags().IntVarP(&stressFlags.Capacity, "capacity", "c", 1024, "Number of slots")
	cmd.Flags().IntVarP(&stressFlags.Workers, "workers", "w", 8, "Concurrent workers")
	cmd.Flags().IntVarP(&stressFlags.Ops, "ops", "n", 100000, "Operations per worker")
	cmd.Flags().IntVar(&stressFlags.HoldMax, "hold", 16, "Maximum references a worker holds at once")
	cmd.Flags().Float64Var(&stressFlags.ReadRatio, "read-ratio", 0.8, "Fraction of operations that are loads")
	cmd.Flags().Int64Var(&stressFlags.Seed, "seed", 1, "Random seed")
	cmd.Flags().StringVar(&stressProfilePath, "profile", "", "Workload profile (JSON with comments)")
	cmd.Flags().StringVarP(&stressOutPath, "out", "o", "", "Write the JSON report to this file")
	cmd.Flags().StringVar(&stressMetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address while running")
	rootCmd.AddCommand(cmd)
}

func newStressCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stress",
		Short: "Run a concurrent insert/load/remove workload",
		Long: `The stress command runs workers that insert, load and remove references
in a shared table and verifies that every loaded reference belongs to the
slot it was read from.

Flags override values from --profile. A profile is a JSON object that may
contain comments and trailing commas:

  {
    // a small table under heavy churn
    "capacity": 64,
    "workers": 32,
    "read_ratio": 0.5,
  }

Example:
  slotctl stress --capacity 4096 --workers 16
  slotctl stress --profile churn.hujson --out report.json
  slotctl stress --metrics-addr :9100 --ops 10000000`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, err := resolveProfile(cmd)
			if err != nil {
				return err
			}
			return runStress(cmd.Context(), profile)
		},
	}
}

// StressProfile describes a stress workload.
type StressProfile struct {
	Capacity  int     `json:"capacity"`
	Workers   int     `json:"workers"`
	Ops       int     `json:"ops"`
	HoldMax   int     `json:"hold"`
	ReadRatio float64 `json:"read_ratio"`
	Seed      int64   `json:"seed"`
}

// StressReport summarizes a stress run.
type StressReport struct {
	Profile    StressProfile `json:"profile"`
	Duration   time.Duration `json:"duration_ns"`
	Operations int64         `json:"operations"`
	Loads      int64         `json:"loads"`
	Hits       int64         `json:"hits"`
	Inserts    int64         `json:"inserts"`
	Exhausted  int64         `json:"exhausted"`
	Removes    int64         `json:"removes"`
	Mismatches int64         `json:"mismatches"`
	Table      table.Stats   `json:"table"`
}

// OpsPerSecond returns the aggregate throughput.
func (r StressReport) OpsPerSecond() float64 {
	if r.Duration <= 0 {
		return 0
	}
	return float64(r.Operations) / r.Duration.Seconds()
}

func (p StressProfile) validate() error {
	switch {
	case p.Capacity <= 0:
		return fmt.Errorf("capacity must be positive, got %d", p.Capacity)
	case p.Workers <= 0:
		return fmt.Errorf("workers must be positive, got %d", p.Workers)
	case p.Ops < 0:
		return fmt.Errorf("ops must not be negative, got %d", p.Ops)
	case p.HoldMax <= 0:
		return fmt.Errorf("hold must be positive, got %d", p.HoldMax)
	case p.ReadRatio < 0 || p.ReadRatio > 1:
		return fmt.Errorf("read-ratio must be in [0, 1], got %v", p.ReadRatio)
	}
	return nil
}

// parseProfile decodes a HuJSON profile over base.
func parseProfile(data []byte, base StressProfile) (StressProfile, error) {
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return StressProfile{}, fmt.Errorf("invalid JSONC: %w", err)
	}

	p := base
	dec := json.NewDecoder(bytes.NewReader(standardized))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		return StressProfile{}, fmt.Errorf("invalid profile: %w", err)
	}
	return p, nil
}

// resolveProfile merges flag defaults, the profile file, and explicitly set
// flags, in that order.
func resolveProfile(cmd *cobra.Command) (StressProfile, error) {
	p := stressFlags
	if stressProfilePath != "" {
		data, err := os.ReadFile(stressProfilePath)
		if err != nil {
			return StressProfile{}, fmt.Errorf("failed to read profile: %w", err)
		}
		if p, err = parseProfile(data, p); err != nil {
			return StressProfile{}, fmt.Errorf("%s: %w", stressProfilePath, err)
		}

		flags := cmd.Flags()
		if flags.Changed("capacity") {
			p.Capacity = stressFlags.Capacity
		}
		if flags.Changed("workers") {
			p.Workers = stressFlags.Workers
		}
		if flags.Changed("ops") {
			p.Ops = stressFlags.Ops
		}
		if flags.Changed("hold") {
			p.HoldMax = stressFlags.HoldMax
		}
		if flags.Changed("read-ratio") {
			p.ReadRatio = stressFlags.ReadRatio
		}
		if flags.Changed("seed") {
			p.Seed = stressFlags.Seed
		}
	}
	return p, p.validate()
}

func runStress(ctx context.Context, p StressProfile) error {
	if ctx == nil {
		ctx = context.Background()
	}
	tbl, err := table.New[stressItem](p.Capacity, table.WithLogger(logger.L))
	if err != nil {
		return err
	}

	if stressMetricsAddr != "" {
		bound, stop, err := serveMetrics(stressMetricsAddr, tbl)
		if err != nil {
			return err
		}
		defer stop()
		printVerbose("Serving metrics on http://%s/metrics\n", bound)
	}

	printVerbose("Running %d workers x %d ops on %d slots\n", p.Workers, p.Ops, p.Capacity)
	logger.L.Info("stress started", "capacity", p.Capacity, "workers", p.Workers, "ops", p.Ops)

	report := stress(ctx, tbl, p)

	logger.L.Info("stress finished",
		"duration", report.Duration,
		"operations", report.Operations,
		"mismatches", report.Mismatches)

	if stressOutPath != "" {
		if err := writeReport(stressOutPath, report); err != nil {
			return err
		}
		printVerbose("Report written to %s\n", stressOutPath)
	}

	if jsonOut {
		if err := printJSON(report); err != nil {
			return err
		}
	} else {
		printReport(report)
	}

	if report.Mismatches > 0 {
		return fmt.Errorf("%d consistency violations during stress run", report.Mismatches)
	}
	return ctx.Err()
}

type stressItem struct {
	slot   int
	worker int
}

type stressCounters struct {
	loads, hits, inserts, exhausted, removes, mismatches atomic.Int64
}

// stress runs the workload and drains every held reference before
// returning, so the table ends empty.
func stress(ctx context.Context, tbl *table.Table[stressItem], p StressProfile) StressReport {
	var (
		wg sync.WaitGroup
		c  stressCounters
	)

	start := time.Now()
	wg.Add(p.Workers)
	for w := range p.Workers {
		go func(worker int) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(p.Seed + int64(worker)))
			held := make([]int, 0, p.HoldMax)

			for i := range p.Ops {
				if i%1024 == 0 && ctx.Err() != nil {
					break
				}

				if rng.Float64() < p.ReadRatio {
					idx := rng.Intn(p.Capacity)
					c.loads.Add(1)
					if item := tbl.Load(idx); item != nil {
						c.hits.Add(1)
						if item.slot != idx {
							c.mismatches.Add(1)
						}
					}
					continue
				}

				if len(held) < p.HoldMax && (len(held) == 0 || rng.Intn(2) == 0) {
					idx, ok := tbl.Alloc()
					if !ok {
						c.exhausted.Add(1)
						continue
					}
					if err := tbl.Publish(idx, &stressItem{slot: idx, worker: worker}); err != nil {
						logger.L.Error("publish failed", "index", idx, "error", err)
						c.mismatches.Add(1)
						tbl.Release(idx)
						continue
					}
					c.inserts.Add(1)
					held = append(held, idx)
					continue
				}

				k := rng.Intn(len(held))
				idx := held[k]
				held[k] = held[len(held)-1]
				held = held[:len(held)-1]
				if tbl.Remove(idx) == nil {
					c.mismatches.Add(1)
				}
				c.removes.Add(1)
			}

			for _, idx := range held {
				tbl.Remove(idx)
				c.removes.Add(1)
			}
		}(w)
	}
	wg.Wait()

	r := StressReport{
		Profile:    p,
		Duration:   time.Since(start),
		Loads:      c.loads.Load(),
		Hits:       c.hits.Load(),
		Inserts:    c.inserts.Load(),
		Exhausted:  c.exhausted.Load(),
		Removes:    c.removes.Load(),
		Mismatches: c.mismatches.Load(),
		Table:      tbl.Stats(),
	}
	r.Operations = r.Loads + r.Inserts + r.Exhausted + r.Removes
	return r
}

func printReport(r StressReport) {
	printInfo("Duration:     %v\n", r.Duration.Round(time.Millisecond))
	printInfo("Operations:   %d (%.0f ops/s)\n", r.Operations, r.OpsPerSecond())
	printInfo("Loads:        %d (%d hits)\n", r.Loads, r.Hits)
	printInfo("Inserts:      %d\n", r.Inserts)
	printInfo("Removes:      %d\n", r.Removes)
	printInfo("Exhausted:    %d\n", r.Exhausted)
	printInfo("Mismatches:   %d\n", r.Mismatches)
	printInfo("Final table:  boundary=%d in_use=%d occupied=%d\n",
		r.Table.Boundary, r.Table.InUse, r.Table.Occupied)
}

// writeReport replaces path with the JSON report in one rename.
func writeReport(path string, r StressReport) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	if err := atomicfile.WriteFile(path, bytes.NewReader(append(data, '\n'))); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// serveMetrics exposes the table on addr/metrics until stop is called. It
// binds before returning so a busy address fails the command, and reports
// the bound address for ports chosen by the kernel.
func serveMetrics(addr string, tbl *table.Table[stressItem]) (bound string, stop func(), err error) {
	reg := prometheus.NewRegistry()
	if err := reg.Register(slotmetrics.NewTableCollector(tbl, slotmetrics.WithLabel("table", "stress"))); err != nil {
		return "", nil, err
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return "", nil, fmt.Errorf("failed to serve metrics: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.L.Error("metrics server failed", "addr", ln.Addr().String(), "error", err)
		}
	}()

	bound = ln.Addr().String()
	logger.L.Info("serving metrics", "addr", bound)
	return bound, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}, nil
}
