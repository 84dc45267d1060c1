// Package config loads and saves the flat JSON configuration consumed by
// the decoder core and the code emitter.
package config

import (
	"bytes"
	"encoding/json"
	"os"

	"github.com/pkg/errors"
)

// Config holds every tunable named in spec.md §4 and §6. It is a plain
// value, never a singleton, and is passed by reference alongside a
// Specification.
type Config struct {
	// Core tree-builder knobs (spec.md §4.5-4.7).
	AllowSwitch                 bool    `json:"AllowSwitch"`
	AllowSequence               bool    `json:"AllowSequence"`
	NoOptimiseIfConditionNodes  bool    `json:"NoOptimiseIfConditionNodes"`
	BitFlagCoef                 float64 `json:"BitFlagCoef"`
	BitfieldLengthDeltaPower    float64 `json:"BitfieldLengthDeltaPower"`
	BitfieldSetLengthDeltaPower float64 `json:"BitfieldSetLengthDeltaPower"`
	BitfieldSetCoef             float64 `json:"BitfieldSetCoef"`
	MinSwitchRules              int     `json:"MinSwitchRules"`
	MinSwitchBits               int     `json:"MinSwitchBits"`
	MaxSwitchBits               int     `json:"MaxSwitchBits"`
	MaxSwitchNestingDepth       int     `json:"MaxSwitchNestingDepth"`
	MaxTotalSwitchBits          int     `json:"MaxTotalSwitchBits"`
	MaxSwitchSplits             int     `json:"MaxSwitchSplits"`

	// Emitter-only knobs; the core ignores these but carries them through.
	InsertReturns    bool `json:"InsertReturns"`
	NoPrettyOutput   bool `json:"NoPrettyOutput"`
	NoBreakAfterRule bool `json:"NoBreakAfterRule"`

	// Driver knobs; the core ignores these.
	Verbose bool `json:"Verbose"`
	Timings bool `json:"Timings"`
}

// Default returns the built-in defaults enumerated in spec.md §6.
func Default() Config {
	return Config{
		AllowSwitch:                 true,
		AllowSequence:               true,
		InsertReturns:               false,
		NoPrettyOutput:              false,
		NoOptimiseIfConditionNodes:  false,
		NoBreakAfterRule:            true,
		BitFlagCoef:                 1.0,
		BitfieldLengthDeltaPower:    0.5,
		BitfieldSetLengthDeltaPower: 0.5,
		BitfieldSetCoef:             1.0,
		MinSwitchRules:              4,
		MinSwitchBits:               2,
		MaxSwitchBits:               8,
		MaxSwitchNestingDepth:       3,
		MaxTotalSwitchBits:          15,
		MaxSwitchSplits:             1,
	}
}

// Load reads a JSON file at path and merges it over Default(). Missing
// keys keep their default value; unknown keys are ignored, both per
// spec.md §6.
func Load(path string) (Config, error) {
	cfg := Default()

	f, err := os.Open(path)
	if err != nil {
		return cfg, errors.Wrapf(err, "config: opening %s", path)
	}
	defer f.Close()

	dec := json.NewDecoder(f)
	if err := dec.Decode(&cfg); err != nil {
		return cfg, errors.Wrapf(err, "config: decoding %s", path)
	}
	return cfg, nil
}

// Save writes cfg as pretty-printed JSON to path.
func Save(path string, cfg Config) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(cfg); err != nil {
		return errors.Wrapf(err, "config: encoding %s", path)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return errors.Wrapf(err, "config: writing %s", path)
	}
	return nil
}
