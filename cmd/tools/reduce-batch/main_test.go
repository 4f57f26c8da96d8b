package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/sightline-data/linedup/internal/config"
	"github.com/sightline-data/linedup/internal/linedb"
	"github.com/sightline-data/linedup/internal/testutil"
	"github.com/sightline-data/linedup/lines"
)

func effectiveTuning(t *testing.T, cfg Config) *config.ReduceConfig {
	t.Helper()
	tc, err := tuning(cfg)
	if err != nil {
		t.Fatalf("tuning: %v", err)
	}
	return tc
}

func writeSegmentsFile(t *testing.T, segments []lines.Segment) string {
	t.Helper()
	data, err := json.Marshal(segments)
	if err != nil {
		t.Fatalf("marshal segments: %v", err)
	}
	path := filepath.Join(t.TempDir(), "segments.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("write segments: %v", err)
	}
	return path
}

func TestReadSegments(t *testing.T) {
	want := testutil.NearDuplicateSegments()
	path := writeSegmentsFile(t, want)

	got, err := readSegments(path)
	if err != nil {
		t.Fatalf("readSegments: %v", err)
	}
	testutil.AssertSegmentsEqual(t, got, want, 1e-12)
}

func TestReadSegments_Missing(t *testing.T) {
	if _, err := readSegments(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestReadSegments_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := readSegments(path); err == nil {
		t.Fatal("expected error for malformed JSON")
	}
}

func TestRunReduction_Defaults(t *testing.T) {
	segments := testutil.NearDuplicateSegments()

	result, err := runReduction(effectiveTuning(t, Config{}), segments)
	if err != nil {
		t.Fatalf("runReduction: %v", err)
	}

	if result.Method != "combined" {
		t.Errorf("method = %q, want combined", result.Method)
	}
	if len(result.Groups) != 2 {
		t.Fatalf("groups = %d, want 2", len(result.Groups))
	}
	testutil.AssertSegmentsEqual(t, result.Reduced, []lines.Segment{segments[0], segments[2]}, 1e-12)
}

func TestRunReduction_TuningFile(t *testing.T) {
	segments := testutil.NearDuplicateSegments()

	cfgPath := filepath.Join(t.TempDir(), "tuning.json")
	if err := os.WriteFile(cfgPath, []byte(`{"threshold": 0.01}`), 0644); err != nil {
		t.Fatal(err)
	}

	result, err := runReduction(effectiveTuning(t, Config{ConfigFile: cfgPath}), segments)
	if err != nil {
		t.Fatalf("runReduction: %v", err)
	}
	// with a tight threshold nothing groups
	if result.OutputCount != len(segments) {
		t.Errorf("output count = %d, want %d", result.OutputCount, len(segments))
	}
}

func TestTuning_BadMethodInFile(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "tuning.json")
	if err := os.WriteFile(cfgPath, []byte(`{"method": "mystery"}`), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := tuning(Config{ConfigFile: cfgPath}); err == nil {
		t.Fatal("expected error for unknown method")
	}
}

func TestWriteResult(t *testing.T) {
	result := &Result{
		Method:      "combined",
		Threshold:   10,
		InputCount:  3,
		OutputCount: 2,
		Groups:      [][]int{{0, 1}, {2}},
		Reduced:     []lines.Segment{{X1: 0, Y1: 0, X2: 10, Y2: 0}},
	}

	path := filepath.Join(t.TempDir(), "out.json")
	if err := writeResult(path, result); err != nil {
		t.Fatalf("writeResult: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var got Result
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if got.OutputCount != 2 {
		t.Errorf("output_count = %d, want 2", got.OutputCount)
	}
}

func TestPersistResult(t *testing.T) {
	segments := testutil.NearDuplicateSegments()
	cfg := Config{
		DBFile: filepath.Join(t.TempDir(), "runs.db"),
		Label:  "cli batch",
	}
	tc := effectiveTuning(t, cfg)

	result, err := runReduction(tc, segments)
	if err != nil {
		t.Fatalf("runReduction: %v", err)
	}

	batchID, runID, err := persistResult(cfg, tc, segments, result)
	if err != nil {
		t.Fatalf("persistResult: %v", err)
	}
	if batchID == "" || runID == "" {
		t.Fatal("expected non-empty batch and run IDs")
	}
}

func TestPersistResult_RecordsEffectiveTuning(t *testing.T) {
	// short founder first so keep-longest and keep-founder disagree
	segments := []lines.Segment{
		{X1: 0, Y1: 0, X2: 1, Y2: 0},
		{X1: 0, Y1: 0.1, X2: 10, Y2: 0.1},
	}

	cfgPath := filepath.Join(t.TempDir(), "tuning.json")
	if err := os.WriteFile(cfgPath, []byte(`{"keep_longest": false}`), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := Config{
		ConfigFile: cfgPath,
		DBFile:     filepath.Join(t.TempDir(), "runs.db"),
	}
	tc := effectiveTuning(t, cfg)

	result, err := runReduction(tc, segments)
	if err != nil {
		t.Fatalf("runReduction: %v", err)
	}
	// the config file turned keep-longest off, so the founder survives
	testutil.AssertSegmentsEqual(t, result.Reduced, []lines.Segment{segments[0]}, 1e-12)

	_, runID, err := persistResult(cfg, tc, segments, result)
	if err != nil {
		t.Fatalf("persistResult: %v", err)
	}

	db, err := linedb.Open(cfg.DBFile)
	if err != nil {
		t.Fatalf("reopen db: %v", err)
	}
	defer db.Close()

	run, err := linedb.NewRunStore(db).Get(runID)
	if err != nil {
		t.Fatalf("get run: %v", err)
	}
	if run.KeepLongest {
		t.Error("stored run reports keep_longest=true, want the file-configured false")
	}
	if len(run.Params) == 0 {
		t.Fatal("stored run has no tuning params")
	}
	var stored config.ReduceConfig
	if err := json.Unmarshal(run.Params, &stored); err != nil {
		t.Fatalf("unmarshal stored params: %v", err)
	}
	if stored.KeepLongest == nil || *stored.KeepLongest {
		t.Error("stored params missing keep_longest=false")
	}
}
