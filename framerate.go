package wavcheck

import (
	"bufio"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// FrameRate is a fully specified SMPTE frame rate: an exact rational
// frames-per-wall-second value plus the drop-frame counting convention.
// Fractional rates use exact ratios (29.97 is 30000/1001) so long
// conversions never accumulate rounding error.
type FrameRate struct {
	Frames      int64
	PerWallSecs int64
	Drop        bool
}

type fpsConfig struct {
	label   string
	frames  int64
	per     int64
	aliases []string
	// canDrop marks the rates the drop-frame convention is defined for.
	canDrop bool
	// dropPer10Min is the number of frame labels skipped per 10 minutes.
	dropPer10Min int64
}

var standardRates = []fpsConfig{
	{label: "23.976", frames: 24000, per: 1001, aliases: []string{"23.98"}},
	{label: "24.000", frames: 24, per: 1},
	{label: "25.000", frames: 25, per: 1},
	{label: "29.970", frames: 30000, per: 1001, aliases: []string{"29.97"}, canDrop: true, dropPer10Min: 18},
	{label: "30.000", frames: 30, per: 1},
	{label: "47.952", frames: 48000, per: 1001, aliases: []string{"47.95"}},
	{label: "48.000", frames: 48, per: 1},
	{label: "50.000", frames: 50, per: 1},
	{label: "59.940", frames: 60000, per: 1001, aliases: []string{"59.94"}, canDrop: true, dropPer10Min: 36},
	{label: "60.000", frames: 60, per: 1},
}

const frameRateExpr = `(\d\d\.?\d?\d?\d?)\s*(non[-_\s]*drop|ndf?|drop|df?)?`

var (
	frameRateSearchRE = regexp.MustCompile(`(?i)` + frameRateExpr)
	frameRateFullRE   = regexp.MustCompile(`(?i)^` + frameRateExpr + `$`)

	// frameRateLabelRE recognizes hint-file names and labeled lines like
	// "Frame Rate: 29.970 drop".
	frameRateLabelRE = regexp.MustCompile(`(?i)frame[-_\s]*rate`)
)

func (fr FrameRate) config() *fpsConfig {
	for i := range standardRates {
		if standardRates[i].frames == fr.Frames && standardRates[i].per == fr.PerWallSecs {
			return &standardRates[i]
		}
	}

	return nil
}

// IntFPS returns the nominal integer frame count per timecode second
// (30 for 29.97, 24 for 23.976, ...).
func (fr FrameRate) IntFPS() int64 {
	return (fr.Frames + fr.PerWallSecs - 1) / fr.PerWallSecs
}

func (fr FrameRate) dropFramesPer10Min() int64 {
	if !fr.Drop {
		return 0
	}

	if cfg := fr.config(); cfg != nil {
		return cfg.dropPer10Min
	}

	return 0
}

// String renders the canonical form, e.g. "29.970 drop".
func (fr FrameRate) String() string {
	label := fmt.Sprintf("%d/%d", fr.Frames, fr.PerWallSecs)
	if cfg := fr.config(); cfg != nil {
		label = cfg.label
	}

	if fr.Drop {
		return label + " drop"
	}

	return label + " non-drop"
}

// ParseFrameRate parses text that is exactly a frame rate, such as
// "24.000 non-drop" or "29.97 df".
func ParseFrameRate(text string) (FrameRate, error) {
	match := frameRateFullRE.FindStringSubmatch(strings.TrimSpace(text))
	if match == nil {
		return FrameRate{}, fmt.Errorf("%w: %q", ErrInvalidFrameRate, text)
	}

	return frameRateFromMatch(match[1], match[2])
}

// findFrameRateWithin searches text for the first frame rate mention.
// A false return means nothing resembling a frame rate was found; an
// error means a mention was found but is unsupported or ambiguous.
func findFrameRateWithin(text string) (FrameRate, bool, error) {
	match := frameRateSearchRE.FindStringSubmatch(text)
	if match == nil {
		return FrameRate{}, false, nil
	}

	fr, err := frameRateFromMatch(match[1], match[2])
	if err != nil {
		return FrameRate{}, true, err
	}

	return fr, true, nil
}

func frameRateFromMatch(fpsStr, qualifier string) (FrameRate, error) {
	cfg := lookupRate(fpsStr)
	if cfg == nil {
		return FrameRate{}, fmt.Errorf("%w: unsupported frames per second %q", ErrInvalidFrameRate, fpsStr)
	}

	qualifier = strings.ToLower(strings.TrimSpace(qualifier))
	drop := qualifier != "" && !strings.HasPrefix(qualifier, "n")

	// 29.97 and 59.94 count either way in the wild; refuse to guess.
	if qualifier == "" && cfg.canDrop {
		return FrameRate{}, fmt.Errorf("%w: %s is ambiguous, specify drop or non-drop",
			ErrInvalidFrameRate, cfg.label)
	}

	if drop && !cfg.canDrop {
		return FrameRate{}, fmt.Errorf("%w: %s is not a drop-frame standard", ErrInvalidFrameRate, cfg.label)
	}

	return FrameRate{Frames: cfg.frames, PerWallSecs: cfg.per, Drop: drop}, nil
}

func lookupRate(fpsStr string) *fpsConfig {
	for i := range standardRates {
		cfg := &standardRates[i]
		if fpsStr == cfg.label {
			return cfg
		}

		for _, alias := range cfg.aliases {
			if fpsStr == alias {
				return cfg
			}
		}
	}

	// Whole rates may be written with any number of decimals ("24",
	// "24.0", "24.000"); fractional rates must match a label above so a
	// truncated "29.9" is not silently accepted.
	value, err := strconv.ParseFloat(fpsStr, 64)
	if err != nil {
		return nil
	}

	for i := range standardRates {
		cfg := &standardRates[i]
		if cfg.per == 1 && value == float64(cfg.frames) {
			return cfg
		}
	}

	return nil
}

// FrameRateSource is the input to ResolveFrameRate: either literal frame
// rate text, or the raw contents of a hint file plus an optional label
// pattern overriding the default "frame rate" one.
type FrameRateSource struct {
	Literal   string
	Contents  string
	LabelHint *regexp.Regexp
}

// ResolveFrameRate resolves a frame rate from the supplied source. A
// literal is matched in full. File contents are scanned for a labeled
// line first ("Frame Rate: 29.970 drop"), then matched in full as a last
// resort.
func ResolveFrameRate(src FrameRateSource) (FrameRate, error) {
	if src.Literal != "" {
		return ParseFrameRate(src.Literal)
	}

	label := src.LabelHint
	if label == nil {
		label = frameRateLabelRE
	}

	lines := bufio.NewScanner(strings.NewReader(src.Contents))
	for lines.Scan() {
		line := lines.Text()
		if !label.MatchString(line) {
			continue
		}

		fr, found, err := findFrameRateWithin(line)
		if err != nil {
			return FrameRate{}, err
		}

		if found {
			return fr, nil
		}
	}

	return ParseFrameRate(src.Contents)
}

// IsFrameRateHintName reports whether a file name looks like a frame rate
// hint file (FRAMERATE.txt and friends).
func IsFrameRateHintName(name string) bool {
	return frameRateLabelRE.MatchString(name)
}
