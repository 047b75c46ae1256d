// Package config loads the JSON run configuration: which islands to model,
// which rise series to apply and where results go.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/banshee-data/sealevel.report/internal/scenario"
	"github.com/banshee-data/sealevel.report/internal/simulation"
	"github.com/banshee-data/sealevel.report/internal/units"
)

// DefaultConfigPath is the path to the example configuration shipped with the repo.
const DefaultConfigPath = "config/sealevel.example.json"

// ErrConfig wraps every validation failure.
var ErrConfig = errors.New("config: invalid configuration")

const (
	defaultOutputDir = "target"
	defaultParallel  = 1
	maxFileSize      = 1 * 1024 * 1024 // 1MB
)

// Config is the root run configuration. Pointer fields are optional; the
// Get* methods supply defaults for anything omitted.
type Config struct {
	StartYear     *int    `json:"start_year,omitempty"`
	SnapshotEpoch *int    `json:"snapshot_epoch,omitempty"`
	SnapshotEvery *int    `json:"snapshot_every,omitempty"` // negative disables snapshots
	OutputDir     *string `json:"output_dir,omitempty"`
	DBPath        *string `json:"db_path,omitempty"` // empty disables sqlite persistence
	Parallel      *int    `json:"parallel,omitempty"`

	Influx *InfluxConfig `json:"influx,omitempty"`

	Islands   []IslandConfig   `json:"islands"`
	Scenarios []ScenarioConfig `json:"scenarios"`
}

// InfluxConfig enables the InfluxDB metrics sink when URL is set.
type InfluxConfig struct {
	URL    string `json:"url"`
	Token  string `json:"token"`
	Org    string `json:"org"`
	Bucket string `json:"bucket"`
}

// Enabled reports whether the sink should be constructed.
func (c *InfluxConfig) Enabled() bool {
	return c != nil && c.URL != ""
}

// IslandConfig names a heightmap and how to calibrate it. Fields left nil
// fall back to the preset island of the same name, if any.
type IslandConfig struct {
	Name                  string   `json:"name"`
	Heightmap             string   `json:"heightmap"`
	Scale                 *float64 `json:"scale,omitempty"`
	Offset                *float64 `json:"offset,omitempty"`
	DangerThresholdMeters *float64 `json:"danger_threshold_m,omitempty"`
	CutoffMeters          *float64 `json:"cutoff_m,omitempty"`
}

// ScenarioConfig selects a rise series either by preset name or inline.
type ScenarioConfig struct {
	Label    string    `json:"label"`
	Preset   string    `json:"preset,omitempty"`
	Rise     []float64 `json:"rise,omitempty"`
	RiseUnit string    `json:"rise_unit,omitempty"` // defaults to mm
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }

// Default returns the original study: the four preset islands under the
// three RCP series, with heightmaps read from resource/<Name>.png.
func Default() *Config {
	cfg := &Config{
		StartYear:     ptrInt(scenario.DefaultStartYear),
		SnapshotEpoch: ptrInt(simulation.DefaultSnapshotEpoch),
		SnapshotEvery: ptrInt(simulation.DefaultSnapshotEvery),
		OutputDir:     ptrString(defaultOutputDir),
		Parallel:      ptrInt(defaultParallel),
	}
	for _, is := range scenario.Islands() {
		cfg.Islands = append(cfg.Islands, IslandConfig{
			Name:                  is.Name,
			Heightmap:             filepath.Join("resource", is.Name+".png"),
			Scale:                 ptrFloat64(is.Calibration.Scale),
			Offset:                ptrFloat64(is.Calibration.Offset),
			DangerThresholdMeters: ptrFloat64(is.DangerThresholdMeters),
			CutoffMeters:          ptrFloat64(is.CutoffMeters),
		})
	}
	for _, name := range scenario.RCPNames() {
		cfg.Scenarios = append(cfg.Scenarios, ScenarioConfig{Label: name, Preset: name})
	}
	return cfg
}

// Load loads a Config from a JSON file.
// The file is validated to ensure it has a .json extension and is under the max file size.
func Load(path string) (*Config, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	// Heightmap paths are relative to the config file.
	dir := filepath.Dir(cleanPath)
	for i := range cfg.Islands {
		if hm := cfg.Islands[i].Heightmap; hm != "" && !filepath.IsAbs(hm) {
			cfg.Islands[i].Heightmap = filepath.Join(dir, hm)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks that the configuration values are valid.
func (c *Config) Validate() error {
	if c.Parallel != nil && *c.Parallel < 1 {
		return fmt.Errorf("parallel must be at least 1, got %d: %w", *c.Parallel, ErrConfig)
	}
	if c.SnapshotEvery != nil && *c.SnapshotEvery == 0 {
		return fmt.Errorf("snapshot_every must be non-zero: %w", ErrConfig)
	}
	if c.Influx != nil && c.Influx.URL != "" && c.Influx.Bucket == "" {
		return fmt.Errorf("influx bucket is required when url is set: %w", ErrConfig)
	}
	if len(c.Islands) == 0 {
		return fmt.Errorf("at least one island is required: %w", ErrConfig)
	}
	if len(c.Scenarios) == 0 {
		return fmt.Errorf("at least one scenario is required: %w", ErrConfig)
	}

	seen := make(map[string]bool, len(c.Islands))
	for i := range c.Islands {
		is := &c.Islands[i]
		if is.Name == "" {
			return fmt.Errorf("island %d: name is required: %w", i, ErrConfig)
		}
		if seen[is.Name] {
			return fmt.Errorf("island %q listed twice: %w", is.Name, ErrConfig)
		}
		seen[is.Name] = true
		if is.Heightmap == "" {
			return fmt.Errorf("island %q: heightmap is required: %w", is.Name, ErrConfig)
		}
		if _, err := is.Resolve(); err != nil {
			return err
		}
	}

	labels := make(map[string]bool, len(c.Scenarios))
	for i := range c.Scenarios {
		sc := &c.Scenarios[i]
		if sc.Label == "" {
			sc.Label = sc.Preset
		}
		if sc.Label == "" {
			return fmt.Errorf("scenario %d: label or preset is required: %w", i, ErrConfig)
		}
		if labels[sc.Label] {
			return fmt.Errorf("scenario %q listed twice: %w", sc.Label, ErrConfig)
		}
		labels[sc.Label] = true
		if _, err := sc.RiseMM(); err != nil {
			return err
		}
	}
	return nil
}

// Resolve merges the island with its preset and validates the result.
func (ic IslandConfig) Resolve() (scenario.Island, error) {
	is, preset := scenario.LookupIsland(ic.Name)
	is.Name = ic.Name
	if ic.Scale != nil {
		is.Calibration.Scale = *ic.Scale
	}
	if ic.Offset != nil {
		is.Calibration.Offset = *ic.Offset
	}
	if ic.DangerThresholdMeters != nil {
		is.DangerThresholdMeters = *ic.DangerThresholdMeters
	} else if !preset {
		is.DangerThresholdMeters = scenario.DefaultDangerThresholdMeters
	}
	if ic.CutoffMeters != nil {
		is.CutoffMeters = *ic.CutoffMeters
	}

	if !preset && ic.Scale == nil {
		return scenario.Island{}, fmt.Errorf("island %q: scale is required for non-preset islands: %w", ic.Name, ErrConfig)
	}
	if err := is.Calibration.Validate(); err != nil {
		return scenario.Island{}, fmt.Errorf("island %q: %v: %w", ic.Name, err, ErrConfig)
	}
	if d := is.DangerThresholdMeters; math.IsNaN(d) || d < 0 {
		return scenario.Island{}, fmt.Errorf("island %q: danger_threshold_m must be non-negative, got %v: %w", ic.Name, d, ErrConfig)
	}
	if co := is.CutoffMeters; math.IsNaN(co) || co <= 0 {
		return scenario.Island{}, fmt.Errorf("island %q: cutoff_m must be positive, got %v: %w", ic.Name, co, ErrConfig)
	}
	return is, nil
}

// RiseMM returns the scenario's cumulative rise series in millimeters.
func (sc ScenarioConfig) RiseMM() ([]float64, error) {
	if sc.Preset != "" && len(sc.Rise) > 0 {
		return nil, fmt.Errorf("scenario %q: preset and rise are mutually exclusive: %w", sc.Label, ErrConfig)
	}
	if sc.Preset != "" {
		series, ok := scenario.Series(sc.Preset)
		if !ok {
			return nil, fmt.Errorf("scenario %q: unknown preset %q (valid: %s): %w",
				sc.Label, sc.Preset, strings.Join(scenario.Names(), ", "), ErrConfig)
		}
		return series, nil
	}
	if len(sc.Rise) == 0 {
		return nil, fmt.Errorf("scenario %q: rise series is empty: %w", sc.Label, ErrConfig)
	}

	unit := sc.RiseUnit
	if unit == "" {
		unit = units.MM
	}
	if !units.IsValid(unit) {
		return nil, fmt.Errorf("scenario %q: invalid rise_unit %q (valid: %s): %w",
			sc.Label, unit, units.GetValidUnitsString(), ErrConfig)
	}
	out := make([]float64, len(sc.Rise))
	for i, v := range sc.Rise {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("scenario %q: rise step %d is not finite: %w", sc.Label, i, ErrConfig)
		}
		out[i] = units.ToMillimeters(v, unit)
	}
	return out, nil
}

// Scenario builds the simulation input for one island under this series.
func (c *Config) Scenario(is scenario.Island, sc ScenarioConfig) (simulation.Scenario, error) {
	rise, err := sc.RiseMM()
	if err != nil {
		return simulation.Scenario{}, err
	}
	return simulation.Scenario{
		Label:                 sc.Label,
		RiseMM:                rise,
		DangerThresholdMeters: is.DangerThresholdMeters,
		CutoffMeters:          is.CutoffMeters,
		StartYear:             c.GetStartYear(),
		SnapshotEpoch:         c.GetSnapshotEpoch(),
		SnapshotEvery:         c.GetSnapshotEvery(),
	}, nil
}

// GetStartYear returns the start_year value or the default.
func (c *Config) GetStartYear() int {
	if c.StartYear == nil {
		return scenario.DefaultStartYear
	}
	return *c.StartYear
}

// GetSnapshotEpoch returns the snapshot_epoch value or the default.
func (c *Config) GetSnapshotEpoch() int {
	if c.SnapshotEpoch == nil {
		return simulation.DefaultSnapshotEpoch
	}
	return *c.SnapshotEpoch
}

// GetSnapshotEvery returns the snapshot_every value or the default.
func (c *Config) GetSnapshotEvery() int {
	if c.SnapshotEvery == nil || *c.SnapshotEvery == 0 {
		return simulation.DefaultSnapshotEvery
	}
	return *c.SnapshotEvery
}

// GetOutputDir returns the output_dir value or the default.
func (c *Config) GetOutputDir() string {
	if c.OutputDir == nil || *c.OutputDir == "" {
		return defaultOutputDir
	}
	return *c.OutputDir
}

// GetDBPath returns the db_path value; empty disables persistence.
func (c *Config) GetDBPath() string {
	if c.DBPath == nil {
		return ""
	}
	return *c.DBPath
}

// GetParallel returns the parallel value or the default.
func (c *Config) GetParallel() int {
	if c.Parallel == nil || *c.Parallel < 1 {
		return defaultParallel
	}
	return *c.Parallel
}
