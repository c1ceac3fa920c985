package wavcheck

import (
	"bytes"
	"errors"
	"fmt"
	"os"
)

// Batch is the collect-then-analyze state for one validation run. Files
// are parsed up front (pass one), checked per file and across the batch
// (pass two), and only then repaired, so every cross-file rule sees the
// complete set.
type Batch struct {
	Config    CheckConfig
	FrameRate *FrameRate
	Files     []*WavFile

	parseFindings []Finding

	// seenUMIDs tracks every UMID in the batch, including freshly issued
	// ones, so regeneration can never re-collide within the run.
	seenUMIDs map[string]struct{}
}

// NewBatch creates an empty batch. A nil frame rate disables the
// timecode-dependent checks and the rename repair, nothing else.
func NewBatch(cfg CheckConfig, fr *FrameRate) *Batch {
	return &Batch{
		Config:    cfg,
		FrameRate: fr,
		seenUMIDs: make(map[string]struct{}),
	}
}

// Add parses one file into the batch. A file that fails to parse is
// recorded as a finding and excluded from per-file and cross-file checks;
// the error is also returned so callers can log it, but it never needs to
// abort the batch.
func (b *Batch) Add(path string) error {
	w, err := ReadWavFile(path)
	if err != nil {
		b.parseFindings = append(b.parseFindings, Finding{
			Severity: SeverityWarning,
			Code:     classifyFileError(err),
			Message:  err.Error(),
			Files:    []string{path},
		})

		return err
	}

	b.Files = append(b.Files, w)

	if umid := w.UMID(); umid != nil {
		b.seenUMIDs[UMIDHex(umid)] = struct{}{}
	}

	return nil
}

func classifyFileError(err error) FindingCode {
	switch {
	case errors.Is(err, ErrMissingChunk):
		return CodeMissingChunk
	case errors.Is(err, ErrUnsupportedFormat):
		return CodeUnsupportedFormat
	case errors.Is(err, ErrMalformedContainer):
		return CodeMalformedContainer
	default:
		return CodeIoError
	}
}

// Check runs the full rule set: per-file findings in the order files were
// added, then cross-file findings.
func (b *Batch) Check() Report {
	b.reconcileFilenameTimecodes()

	var findings []Finding

	findings = append(findings, b.parseFindings...)

	for _, w := range b.Files {
		findings = append(findings, CheckFile(w, b.FrameRate, b.Config)...)
	}

	findings = append(findings, CrossCheck(b.Files)...)

	return Report{Findings: findings}
}

// reconcileFilenameTimecodes drops bare digit-run timecodes when any file
// in the batch carries an explicit TC-prefixed token; in such batches the
// bare runs are almost certainly cue or take numbers.
func (b *Batch) reconcileFilenameTimecodes() {
	anyExplicit := false

	for _, w := range b.Files {
		if w.FilenameTC != nil && w.FilenameTC.Confidence == TCExplicitPrefix {
			anyExplicit = true
			break
		}
	}

	if !anyExplicit {
		return
	}

	for _, w := range b.Files {
		if w.FilenameTC != nil && w.FilenameTC.Confidence == TCImplicitDigits {
			w.FilenameTC = nil
		}
	}
}

// PlanFixes turns the fixable findings of a report into concrete repairs.
// For each duplicate-UMID group the first file keeps its identifier and
// every later file gets a fresh one, issued one at a time against the
// batch-wide seen set. Filename repairs need the frame rate and skip
// files whose rename target cannot be computed.
func (b *Batch) PlanFixes(report Report) []FixPlan {
	byPath := make(map[string]*WavFile, len(b.Files))
	for _, w := range b.Files {
		byPath[w.Path] = w
	}

	var plans []FixPlan

	for _, finding := range report.Findings {
		if !finding.Fixable {
			continue
		}

		switch finding.Code {
		case CodeDuplicateUmid:
			for _, path := range finding.Files[1:] {
				w := byPath[path]
				if w == nil || w.UMIDFileOffset() < 0 {
					continue
				}

				umid := GenerateUMID(b.seenUMIDs)
				b.seenUMIDs[UMIDHex(umid)] = struct{}{}

				plans = append(plans, FixPlan{
					Path:       path,
					Action:     FixRewriteUMID,
					NewUMID:    umid,
					UMIDOffset: w.UMIDFileOffset(),
				})
			}
		case CodeFilenameTimecodeMismatch:
			if b.FrameRate == nil {
				continue
			}

			for _, path := range finding.Files {
				w := byPath[path]
				if w == nil {
					continue
				}

				tc, _ := w.StartTimecode(*b.FrameRate)

				target, err := ComputeRenamedPath(path, tc)
				if err != nil || target == path {
					continue
				}

				plans = append(plans, FixPlan{
					Path:    path,
					Action:  FixRenameWithTimecode,
					NewPath: target,
				})
			}
		}
	}

	return plans
}

// Apply performs the planned repairs sequentially, one write in flight at
// a time. Each patched file is re-parsed from disk and verified, so the
// reported success reflects the bytes actually on disk. One failed repair
// never stops the rest.
func (b *Batch) Apply(plans []FixPlan) []FixResult {
	results := make([]FixResult, 0, len(plans))

	for _, plan := range plans {
		results = append(results, FixResult{Plan: plan, Err: b.applyOne(plan)})
	}

	return results
}

func (b *Batch) applyOne(plan FixPlan) error {
	switch plan.Action {
	case FixRewriteUMID:
		err := RewriteUMIDInPlace(plan.Path, plan.UMIDOffset, plan.NewUMID)
		if err != nil {
			return err
		}

		reparsed, err := ReadWavFile(plan.Path)
		if err != nil {
			return fmt.Errorf("patched file failed to re-parse: %w", err)
		}

		if !bytes.Equal(reparsed.UMID(), plan.NewUMID) {
			return fmt.Errorf("%w: %s: patched UMID did not read back", ErrIO, plan.Path)
		}

		b.replaceFile(plan.Path, reparsed)

		return nil
	case FixRenameWithTimecode:
		if _, err := os.Stat(plan.NewPath); err == nil {
			return fmt.Errorf("%w: %s", ErrNameCollision, plan.NewPath)
		}

		if err := os.Rename(plan.Path, plan.NewPath); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrIO, plan.Path, err)
		}

		reparsed, err := ReadWavFile(plan.NewPath)
		if err != nil {
			return fmt.Errorf("renamed file failed to re-parse: %w", err)
		}

		b.replaceFile(plan.Path, reparsed)

		return nil
	default:
		return fmt.Errorf("unknown fix action %d", plan.Action)
	}
}

func (b *Batch) replaceFile(oldPath string, w *WavFile) {
	for i := range b.Files {
		if b.Files[i].Path == oldPath {
			b.Files[i] = w
			return
		}
	}
}
