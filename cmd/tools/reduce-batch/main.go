// Package main provides a batch line-segment deduplication tool. It reads a
// JSON array of segments, collapses near-duplicates, and writes the kept
// segments back out, optionally rendering charts and persisting the run to a
// database.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/sightline-data/linedup/internal/config"
	"github.com/sightline-data/linedup/internal/linedb"
	"github.com/sightline-data/linedup/internal/monitor"
	"github.com/sightline-data/linedup/lines"
)

// Config holds configuration for the batch reduction.
type Config struct {
	InputFile  string
	OutputFile string
	ConfigFile string
	Threshold  float64
	Method     string
	KeepFirst  bool
	Workers    int
	PlotDir    string
	ChartFile  string
	DBFile     string
	Label      string
	Verbose    bool
}

// Result holds the outcome of a batch reduction.
type Result struct {
	Method      string          `json:"method"`
	Threshold   float64         `json:"threshold"`
	InputCount  int             `json:"input_count"`
	OutputCount int             `json:"output_count"`
	Groups      [][]int         `json:"groups"`
	Reduced     []lines.Segment `json:"reduced"`
}

func main() {
	cfg := parseFlags()

	if cfg.InputFile == "" {
		log.Fatal("Input file is required (-input)")
	}

	segments, err := readSegments(cfg.InputFile)
	if err != nil {
		log.Fatalf("Failed to read segments: %v", err)
	}
	if cfg.Verbose {
		log.Printf("Loaded %d segments from %s", len(segments), cfg.InputFile)
	}

	tc, err := tuning(cfg)
	if err != nil {
		log.Fatalf("Invalid tuning: %v", err)
	}

	result, err := runReduction(tc, segments)
	if err != nil {
		log.Fatalf("Reduction failed: %v", err)
	}

	log.Printf("Reduced %d segments to %d (%d groups, method=%s threshold=%v)",
		result.InputCount, result.OutputCount, len(result.Groups), result.Method, result.Threshold)

	if err := writeResult(cfg.OutputFile, result); err != nil {
		log.Fatalf("Failed to write output: %v", err)
	}

	if cfg.PlotDir != "" {
		written, err := monitor.SaveReductionPlots(cfg.PlotDir, segments, result.Reduced, result.Groups)
		if err != nil {
			log.Printf("Warning: failed to save plots: %v", err)
		} else {
			log.Printf("Wrote %d plots to %s", written, cfg.PlotDir)
		}
	}

	if cfg.ChartFile != "" {
		if err := writeChart(cfg.ChartFile, cfg.InputFile, segments, result); err != nil {
			log.Printf("Warning: failed to write chart: %v", err)
		} else {
			log.Printf("Chart written to %s", cfg.ChartFile)
		}
	}

	if cfg.DBFile != "" {
		batchID, runID, err := persistResult(cfg, tc, segments, result)
		if err != nil {
			log.Fatalf("Failed to persist run: %v", err)
		}
		log.Printf("Persisted batch %s run %s to %s", batchID, runID, cfg.DBFile)
	}
}

func parseFlags() Config {
	cfg := Config{}

	flag.StringVar(&cfg.InputFile, "input", "", "JSON file with an array of segments {x1,y1,x2,y2}")
	flag.StringVar(&cfg.OutputFile, "output", "", "Output JSON file (default: stdout)")
	flag.StringVar(&cfg.ConfigFile, "config", "", "JSON tuning file; flags override its values")
	flag.Float64Var(&cfg.Threshold, "threshold", config.DefaultThreshold, "Grouping distance threshold")
	flag.StringVar(&cfg.Method, "method", config.DefaultMethod, "Distance method: parallel, angle, center, combined, hausdorff")
	flag.BoolVar(&cfg.KeepFirst, "keep-first", false, "Keep each group's first segment instead of its longest")
	flag.IntVar(&cfg.Workers, "workers", config.DefaultWorkers, "Worker goroutines for the distance matrix")
	flag.StringVar(&cfg.PlotDir, "plots", "", "Directory for before/after PNG plots")
	flag.StringVar(&cfg.ChartFile, "chart", "", "HTML file for an interactive scatter chart")
	flag.StringVar(&cfg.DBFile, "db", "", "SQLite database to persist the batch and run")
	flag.StringVar(&cfg.Label, "label", "", "Label for the persisted batch")
	flag.BoolVar(&cfg.Verbose, "verbose", false, "Enable verbose logging")

	flag.Parse()

	return cfg
}

func readSegments(path string) ([]lines.Segment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var segments []lines.Segment
	if err := json.Unmarshal(data, &segments); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return segments, nil
}

// tuning builds the effective config: file values first, then any flag the
// caller set explicitly on top.
func tuning(cfg Config) (*config.ReduceConfig, error) {
	base := config.EmptyReduceConfig()
	if cfg.ConfigFile != "" {
		var err error
		base, err = config.LoadReduceConfig(cfg.ConfigFile)
		if err != nil {
			return nil, err
		}
	}

	override := &config.ReduceConfig{}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "threshold":
			override.Threshold = &cfg.Threshold
		case "method":
			override.Method = &cfg.Method
		case "keep-first":
			keepLongest := !cfg.KeepFirst
			override.KeepLongest = &keepLongest
		case "workers":
			override.Workers = &cfg.Workers
		}
	})

	merged := base.Merge(override)
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	return merged, nil
}

func runReduction(tc *config.ReduceConfig, segments []lines.Segment) (*Result, error) {
	method := tc.GetMethod()
	params := tc.DistanceParams()
	threshold := tc.GetThreshold()

	m, err := lines.ParallelDistanceMatrix(segments, method, params, tc.GetWorkers())
	if err != nil {
		return nil, err
	}
	groups := lines.GroupsFromMatrix(m, threshold)
	reduced := lines.ReduceGroups(segments, groups, tc.GetKeepLongest())

	return &Result{
		Method:      method.String(),
		Threshold:   threshold,
		InputCount:  len(segments),
		OutputCount: len(reduced),
		Groups:      groups,
		Reduced:     reduced,
	}, nil
}

func writeResult(path string, result *Result) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	if path == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func writeChart(path, inputName string, segments []lines.Segment, result *Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	title := fmt.Sprintf("Reduction of %s (%s)", inputName, result.Method)
	return monitor.RenderReductionChart(f, title, segments, result.Reduced, result.Groups)
}

func persistResult(cfg Config, tc *config.ReduceConfig, segments []lines.Segment, result *Result) (batchID, runID string, err error) {
	db, err := linedb.Open(cfg.DBFile)
	if err != nil {
		return "", "", err
	}
	defer db.Close()

	if err := db.MigrateUp(); err != nil {
		return "", "", err
	}

	batch := &linedb.SegmentBatch{Label: cfg.Label, Segments: segments}
	if err := linedb.NewBatchStore(db).Insert(batch); err != nil {
		return "", "", err
	}

	paramsJSON, err := json.Marshal(tc)
	if err != nil {
		return "", "", fmt.Errorf("marshal tuning: %w", err)
	}

	run := &linedb.ReductionRun{
		BatchID:     batch.BatchID,
		Method:      result.Method,
		Threshold:   result.Threshold,
		KeepLongest: tc.GetKeepLongest(),
		Params:      paramsJSON,
		InputCount:  result.InputCount,
		OutputCount: result.OutputCount,
		Groups:      result.Groups,
		Reduced:     result.Reduced,
	}
	if err := linedb.NewRunStore(db).Insert(run); err != nil {
		return "", "", err
	}

	return batch.BatchID, run.RunID, nil
}
