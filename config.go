package wavcheck

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// CheckConfig carries the policy thresholds the rule set compares
// against. The loudness bounds follow common scoring-delivery practice
// and can be loosened or tightened per project via a yaml file.
type CheckConfig struct {
	MinBitDepth     uint16  `yaml:"min_bit_depth"`
	MinSampleRateHz uint32  `yaml:"min_sample_rate_hz"`
	MinDurationSecs float64 `yaml:"min_duration_secs"`

	MaxIntegratedLUFS float64 `yaml:"max_integrated_lufs"`
	MaxShortTermLUFS  float64 `yaml:"max_short_term_lufs"`
	MaxMomentaryLUFS  float64 `yaml:"max_momentary_lufs"`
	MaxTruePeakDBTP   float64 `yaml:"max_true_peak_dbtp"`

	// FrameTolerance is the fractional frame remainder above which a BWF
	// start time is reported as not frame aligned.
	FrameTolerance float64 `yaml:"frame_tolerance"`
}

// DefaultCheckConfig returns the stock thresholds.
func DefaultCheckConfig() CheckConfig {
	return CheckConfig{
		MinBitDepth:       16,
		MinSampleRateHz:   44100,
		MinDurationSecs:   1.0,
		MaxIntegratedLUFS: -9.0,
		MaxShortTermLUFS:  -6.0,
		MaxMomentaryLUFS:  -3.0,
		MaxTruePeakDBTP:   0.0,
		FrameTolerance:    0.01,
	}
}

// LoadCheckConfig reads a yaml threshold file over the defaults; fields
// the file omits keep their default values.
func LoadCheckConfig(path string) (CheckConfig, error) {
	cfg := DefaultCheckConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	return cfg, nil
}
