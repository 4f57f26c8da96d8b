package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sightline-data/linedup/lines"
)

// Default reduction settings used when the config file omits a field.
const (
	DefaultThreshold   = 10.0
	DefaultMethod      = "combined"
	DefaultKeepLongest = true
	DefaultWorkers     = 1
)

// ReduceConfig represents the tunable parameters of the reduction pipeline.
// The schema matches the /api/lines/reduce request body so the same JSON can
// be used for startup configuration and per-request overrides. Fields are
// pointers so omitted values fall back to defaults and partial configs are
// safe.
type ReduceConfig struct {
	// Grouping params
	Threshold   *float64 `json:"threshold,omitempty"`
	Method      *string  `json:"method,omitempty"`
	KeepLongest *bool    `json:"keep_longest,omitempty"`

	// Matrix params
	Workers *int `json:"workers,omitempty"`

	// Distance metric params
	ParallelDotCutoff *float64 `json:"parallel_dot_cutoff,omitempty"`
	AngleScale        *float64 `json:"angle_scale,omitempty"`
	AngleWeight       *float64 `json:"angle_weight,omitempty"`
	CenterWeight      *float64 `json:"center_weight,omitempty"`
	SeparationWeight  *float64 `json:"separation_weight,omitempty"`
}

// EmptyReduceConfig returns a ReduceConfig with all fields set to nil.
// Every getter then reports its default.
func EmptyReduceConfig() *ReduceConfig {
	return &ReduceConfig{}
}

// LoadReduceConfig loads a ReduceConfig from a JSON file. The file must have
// a .json extension and stay under the max file size. Fields omitted from
// the JSON retain their defaults, so partial configs are safe.
func LoadReduceConfig(path string) (*ReduceConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyReduceConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks value ranges and the method tag. A nil field is always
// valid (it means "use the default").
func (c *ReduceConfig) Validate() error {
	if c.Threshold != nil && *c.Threshold < 0 {
		return fmt.Errorf("threshold must be non-negative, got %v", *c.Threshold)
	}
	if c.Method != nil {
		if _, err := lines.ParseMethod(*c.Method); err != nil {
			return err
		}
	}
	if c.Workers != nil && *c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", *c.Workers)
	}
	if c.ParallelDotCutoff != nil && (*c.ParallelDotCutoff < 0 || *c.ParallelDotCutoff > 1) {
		return fmt.Errorf("parallel_dot_cutoff must be in [0,1], got %v", *c.ParallelDotCutoff)
	}
	for name, w := range map[string]*float64{
		"angle_scale":       c.AngleScale,
		"angle_weight":      c.AngleWeight,
		"center_weight":     c.CenterWeight,
		"separation_weight": c.SeparationWeight,
	} {
		if w != nil && *w < 0 {
			return fmt.Errorf("%s must be non-negative, got %v", name, *w)
		}
	}
	return nil
}

// Merge returns a copy of c with any non-nil fields of override applied on
// top. Neither receiver nor argument is modified.
func (c *ReduceConfig) Merge(override *ReduceConfig) *ReduceConfig {
	merged := *c
	if override == nil {
		return &merged
	}
	if override.Threshold != nil {
		merged.Threshold = override.Threshold
	}
	if override.Method != nil {
		merged.Method = override.Method
	}
	if override.KeepLongest != nil {
		merged.KeepLongest = override.KeepLongest
	}
	if override.Workers != nil {
		merged.Workers = override.Workers
	}
	if override.ParallelDotCutoff != nil {
		merged.ParallelDotCutoff = override.ParallelDotCutoff
	}
	if override.AngleScale != nil {
		merged.AngleScale = override.AngleScale
	}
	if override.AngleWeight != nil {
		merged.AngleWeight = override.AngleWeight
	}
	if override.CenterWeight != nil {
		merged.CenterWeight = override.CenterWeight
	}
	if override.SeparationWeight != nil {
		merged.SeparationWeight = override.SeparationWeight
	}
	return &merged
}

// GetThreshold returns the grouping threshold or its default.
func (c *ReduceConfig) GetThreshold() float64 {
	if c.Threshold != nil {
		return *c.Threshold
	}
	return DefaultThreshold
}

// GetMethod returns the parsed distance method or its default. The method
// tag must have been validated beforehand.
func (c *ReduceConfig) GetMethod() lines.Method {
	tag := DefaultMethod
	if c.Method != nil {
		tag = *c.Method
	}
	m, err := lines.ParseMethod(tag)
	if err != nil {
		m, _ = lines.ParseMethod(DefaultMethod)
	}
	return m
}

// GetKeepLongest returns whether reduction keeps the longest group member.
func (c *ReduceConfig) GetKeepLongest() bool {
	if c.KeepLongest != nil {
		return *c.KeepLongest
	}
	return DefaultKeepLongest
}

// GetWorkers returns the matrix worker count or its default.
func (c *ReduceConfig) GetWorkers() int {
	if c.Workers != nil {
		return *c.Workers
	}
	return DefaultWorkers
}

// DistanceParams assembles a lines.DistanceParams from the configured
// overrides on top of the library defaults.
func (c *ReduceConfig) DistanceParams() lines.DistanceParams {
	params := lines.DefaultDistanceParams()
	if c.ParallelDotCutoff != nil {
		params.ParallelDotCutoff = *c.ParallelDotCutoff
	}
	if c.AngleScale != nil {
		params.AngleScale = *c.AngleScale
	}
	if c.AngleWeight != nil {
		params.AngleWeight = *c.AngleWeight
	}
	if c.CenterWeight != nil {
		params.CenterWeight = *c.CenterWeight
	}
	if c.SeparationWeight != nil {
		params.SeparationWeight = *c.SeparationWeight
	}
	return params
}
