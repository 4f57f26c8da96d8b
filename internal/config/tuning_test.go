package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sightline-data/linedup/lines"
)

func ptrFloat64(v float64) *float64 { return &v }
func ptrBool(v bool) *bool          { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }

func TestEmptyReduceConfig_Defaults(t *testing.T) {
	cfg := EmptyReduceConfig()

	if got := cfg.GetThreshold(); got != DefaultThreshold {
		t.Errorf("GetThreshold() = %v, want %v", got, DefaultThreshold)
	}
	if got := cfg.GetMethod(); got != lines.MethodCombined {
		t.Errorf("GetMethod() = %v, want combined", got)
	}
	if !cfg.GetKeepLongest() {
		t.Error("GetKeepLongest() = false, want true")
	}
	if got := cfg.GetWorkers(); got != DefaultWorkers {
		t.Errorf("GetWorkers() = %d, want %d", got, DefaultWorkers)
	}
	if diff := cmp.Diff(lines.DefaultDistanceParams(), cfg.DistanceParams()); diff != "" {
		t.Errorf("DistanceParams() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadReduceConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tuning.json")
	contents := `{
		"threshold": 2.5,
		"method": "angle",
		"keep_longest": false,
		"angle_scale": 200
	}`
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadReduceConfig(path)
	if err != nil {
		t.Fatalf("LoadReduceConfig: %v", err)
	}

	if got := cfg.GetThreshold(); got != 2.5 {
		t.Errorf("GetThreshold() = %v, want 2.5", got)
	}
	if got := cfg.GetMethod(); got != lines.MethodAngle {
		t.Errorf("GetMethod() = %v, want angle", got)
	}
	if cfg.GetKeepLongest() {
		t.Error("GetKeepLongest() = true, want false")
	}

	params := cfg.DistanceParams()
	if params.AngleScale != 200 {
		t.Errorf("AngleScale = %v, want 200", params.AngleScale)
	}
	// Unset fields keep library defaults.
	if params.AngleWeight != lines.DefaultAngleWeight {
		t.Errorf("AngleWeight = %v, want default %v", params.AngleWeight, lines.DefaultAngleWeight)
	}
}

func TestLoadReduceConfig_RejectsNonJSON(t *testing.T) {
	if _, err := LoadReduceConfig("tuning.yaml"); err == nil {
		t.Error("expected error for non-.json extension")
	}
}

func TestLoadReduceConfig_RejectsBadMethod(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tuning.json")
	if err := os.WriteFile(path, []byte(`{"method": "bogus"}`), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadReduceConfig(path); err == nil {
		t.Error("expected error for unknown method tag")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *ReduceConfig
		wantErr bool
	}{
		{"empty", EmptyReduceConfig(), false},
		{"negative threshold", &ReduceConfig{Threshold: ptrFloat64(-1)}, true},
		{"zero threshold", &ReduceConfig{Threshold: ptrFloat64(0)}, false},
		{"zero workers", &ReduceConfig{Workers: ptrInt(0)}, true},
		{"cutoff above one", &ReduceConfig{ParallelDotCutoff: ptrFloat64(1.5)}, true},
		{"negative weight", &ReduceConfig{CenterWeight: ptrFloat64(-0.1)}, true},
		{"valid overrides", &ReduceConfig{
			Threshold:   ptrFloat64(3),
			Method:      ptrString("hausdorff"),
			KeepLongest: ptrBool(false),
			Workers:     ptrInt(4),
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestMerge(t *testing.T) {
	base := &ReduceConfig{
		Threshold: ptrFloat64(10),
		Method:    ptrString("combined"),
	}
	override := &ReduceConfig{
		Threshold: ptrFloat64(3),
		Workers:   ptrInt(8),
	}

	merged := base.Merge(override)

	want := &ReduceConfig{
		Threshold: ptrFloat64(3),
		Method:    ptrString("combined"),
		Workers:   ptrInt(8),
	}
	if diff := cmp.Diff(want, merged); diff != "" {
		t.Errorf("Merge() mismatch (-want +got):\n%s", diff)
	}

	// Base must be untouched.
	if *base.Threshold != 10 {
		t.Errorf("base threshold mutated to %v", *base.Threshold)
	}
}

func TestMerge_NilOverride(t *testing.T) {
	base := &ReduceConfig{Threshold: ptrFloat64(7)}
	merged := base.Merge(nil)
	if merged.GetThreshold() != 7 {
		t.Errorf("GetThreshold() = %v, want 7", merged.GetThreshold())
	}
}
