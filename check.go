package wavcheck

import (
	"fmt"
	"strings"
)

// Severity classifies a finding.
type Severity int

const (
	// SeverityInfo flags conditions worth knowing that may be intended.
	SeverityInfo Severity = iota
	// SeverityWarning flags probable delivery problems.
	SeverityWarning
)

func (s Severity) String() string {
	if s == SeverityWarning {
		return "WARNING"
	}

	return "INFO"
}

// FindingCode is a stable identifier for one validation rule.
type FindingCode string

const (
	CodeNonStandardFormat        FindingCode = "NonStandardFormat"
	CodeLowBitDepth              FindingCode = "LowBitDepth"
	CodeLowSampleRate            FindingCode = "LowSampleRate"
	CodeVeryShort                FindingCode = "VeryShort"
	CodeMissingBwf               FindingCode = "MissingBwf"
	CodeDuplicateBwf             FindingCode = "DuplicateBwf"
	CodeStartsAtZero             FindingCode = "StartsAtZero"
	CodeFractionalFrame          FindingCode = "FractionalFrame"
	CodeMissingUmid              FindingCode = "MissingUmid"
	CodeLoudnessTooHigh          FindingCode = "LoudnessTooHigh"
	CodeTruePeakAboveZero        FindingCode = "TruePeakAboveZero"
	CodeFilenameTimecodeMismatch FindingCode = "FilenameTimecodeMismatch"
	CodeInconsistentFormat       FindingCode = "InconsistentFormat"
	CodeDuplicateUmid            FindingCode = "DuplicateUmid"
	CodeMalformedContainer       FindingCode = "MalformedContainer"
	CodeMissingChunk             FindingCode = "MissingChunk"
	CodeUnsupportedFormat        FindingCode = "UnsupportedFormat"
	CodeIoError                  FindingCode = "IoError"
)

// Finding is one validation result. Files carries the single affected
// file for per-file rules and every involved file for cross-file ones.
type Finding struct {
	Severity Severity
	Code     FindingCode
	Message  string
	Files    []string
	// Fixable marks findings the repair engine can produce a FixPlan for.
	Fixable bool
}

// Report is the ordered outcome of a batch run: per-file findings in file
// iteration order, then cross-file findings grouped by code.
type Report struct {
	Findings []Finding
}

// WarningCount returns the number of warning-severity findings.
func (r Report) WarningCount() int {
	count := 0

	for _, f := range r.Findings {
		if f.Severity == SeverityWarning {
			count++
		}
	}

	return count
}

// CheckFile applies the per-file rule set. A nil frame rate skips the
// timecode-dependent rules and nothing else.
func CheckFile(w *WavFile, fr *FrameRate, cfg CheckConfig) []Finding {
	var findings []Finding

	warn := func(code FindingCode, fixable bool, format string, args ...any) {
		findings = append(findings, Finding{
			Severity: SeverityWarning,
			Code:     code,
			Message:  fmt.Sprintf(format, args...),
			Files:    []string{w.Path},
			Fixable:  fixable,
		})
	}

	if !w.Fmt.IsStandardPCM() {
		warn(CodeNonStandardFormat, false, "audio format tag 0x%04X is not standard PCM", w.Fmt.EffectiveFormatTag())
	}

	if w.Fmt.EffectiveBitDepth() < cfg.MinBitDepth {
		warn(CodeLowBitDepth, false, "bit depth %d is below %d", w.Fmt.EffectiveBitDepth(), cfg.MinBitDepth)
	}

	if w.Fmt.SampleRate < cfg.MinSampleRateHz {
		warn(CodeLowSampleRate, false, "sample rate %d Hz is below %d Hz", w.Fmt.SampleRate, cfg.MinSampleRateHz)
	}

	if w.DurationSeconds() < cfg.MinDurationSecs {
		warn(CodeVeryShort, false, "duration %.3fs is shorter than %.3fs", w.DurationSeconds(), cfg.MinDurationSecs)
	}

	if w.Bext == nil {
		warn(CodeMissingBwf, false, "no Broadcast Wave Format (bext) chunk; timecode, UMID and loudness unavailable")
		return findings
	}

	if w.ExtraBext {
		warn(CodeDuplicateBwf, false, "more than one bext chunk; only the first was read")
	}

	if w.Bext.TimeReference == 0 {
		warn(CodeStartsAtZero, false, "BWF time reference is 0 samples (00:00:00:00)")
	}

	var startTC Timecode

	if fr != nil {
		var frac float64

		startTC, frac = w.StartTimecode(*fr)
		if frac > cfg.FrameTolerance {
			warn(CodeFractionalFrame, false,
				"BWF start time lands %.3f of a frame past %s at %s", frac, startTC, *fr)
		}
	}

	if w.UMID() == nil {
		warn(CodeMissingUmid, false, "BWF metadata has no UMID")
	}

	if w.Bext.HasLoudness() {
		if w.Bext.IntegratedLUFS() >= cfg.MaxIntegratedLUFS ||
			w.Bext.MaxShortTermLUFS() >= cfg.MaxShortTermLUFS ||
			w.Bext.MaxMomentaryLUFS() >= cfg.MaxMomentaryLUFS {
			warn(CodeLoudnessTooHigh, false,
				"loudness %.2f LUFS integrated / %.2f max short-term / %.2f max momentary is unnaturally loud",
				w.Bext.IntegratedLUFS(), w.Bext.MaxShortTermLUFS(), w.Bext.MaxMomentaryLUFS())
		}

		if w.Bext.MaxTruePeakDBTP() >= cfg.MaxTruePeakDBTP {
			warn(CodeTruePeakAboveZero, false,
				"max true peak %.2f dBTP is at or above %.2f dBTP", w.Bext.MaxTruePeakDBTP(), cfg.MaxTruePeakDBTP)
		}
	}

	if fr != nil && w.FilenameTC != nil && !w.FilenameTC.TC.SameFrame(startTC) {
		warn(CodeFilenameTimecodeMismatch, true,
			"filename timecode %s does not match BWF start %s at %s", w.FilenameTC.TC, startTC, *fr)
	}

	return findings
}

type formatKey struct {
	sampleRate uint32
	bitDepth   uint16
}

// CrossCheck applies the whole-batch rules: mixed sample rate / bit depth
// groups and duplicated UMIDs. Findings come out grouped by code, format
// groups first, in first-seen order within each code.
func CrossCheck(files []*WavFile) []Finding {
	var findings []Finding

	// Group by (sample rate, bit depth); every group other than the
	// largest is reported. The earliest-seen group wins a size tie.
	var formatOrder []formatKey

	formatGroups := map[formatKey][]string{}

	for _, w := range files {
		key := formatKey{sampleRate: w.Fmt.SampleRate, bitDepth: w.Fmt.EffectiveBitDepth()}
		if _, ok := formatGroups[key]; !ok {
			formatOrder = append(formatOrder, key)
		}

		formatGroups[key] = append(formatGroups[key], w.Path)
	}

	if len(formatOrder) > 1 {
		majority := formatOrder[0]
		for _, key := range formatOrder[1:] {
			if len(formatGroups[key]) > len(formatGroups[majority]) {
				majority = key
			}
		}

		for _, key := range formatOrder {
			if key == majority {
				continue
			}

			findings = append(findings, Finding{
				Severity: SeverityInfo,
				Code:     CodeInconsistentFormat,
				Message: fmt.Sprintf("%d-bit/%d Hz differs from the majority %d-bit/%d Hz: %s",
					key.bitDepth, key.sampleRate, majority.bitDepth, majority.sampleRate,
					strings.Join(formatGroups[key], ", ")),
				Files: formatGroups[key],
			})
		}
	}

	var umidOrder []string

	umidGroups := map[string][]string{}

	for _, w := range files {
		umid := w.UMID()
		if umid == nil {
			continue
		}

		key := UMIDHex(umid)
		if _, ok := umidGroups[key]; !ok {
			umidOrder = append(umidOrder, key)
		}

		umidGroups[key] = append(umidGroups[key], w.Path)
	}

	for _, key := range umidOrder {
		group := umidGroups[key]
		if len(group) < 2 {
			continue
		}

		findings = append(findings, Finding{
			Severity: SeverityWarning,
			Code:     CodeDuplicateUmid,
			Message:  fmt.Sprintf("UMID %s is shared by %d files: %s", key, len(group), strings.Join(group, ", ")),
			Files:    group,
			Fixable:  true,
		})
	}

	return findings
}
