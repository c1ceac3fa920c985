// This tool validates a directory of Broadcast Wave files for delivery:
// container structure, format consistency, BWF start timecodes, UMIDs
// and loudness statistics. With -fix it also repairs what it safely can
// (rewrites duplicated UMIDs, renames files whose name carries the wrong
// timecode).
//
// The exit code is the number of warnings, so a clean directory exits 0.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/cwbudde/wavcheck"
)

func main() {
	warnings, err := run(os.Args[1:], os.Stdout)
	if err != nil {
		log.Fatal(err)
	}

	os.Exit(warnings)
}

// run checks one directory and returns the number of warnings left after
// any repairs.
func run(args []string, out io.Writer) (int, error) {
	flags := flag.NewFlagSet("wavcheck", flag.ContinueOnError)
	flags.SetOutput(out)

	frameRateText := flags.String("framerate", "",
		"frame rate, e.g. '24.000 non-drop' or '29.970 drop'; when empty a FRAMERATE hint file in the directory is used")
	configPath := flags.String("config", "", "yaml file overriding the validation thresholds")
	applyFixes := flags.Bool("fix", false, "apply the safe repairs instead of only reporting")
	verbose := flags.Bool("v", false, "list every file with its format and start timecode")

	if err := flags.Parse(args); err != nil {
		return 0, err
	}

	dir := "."
	if flags.NArg() > 0 {
		dir = flags.Arg(0)
	}

	cfg := wavcheck.DefaultCheckConfig()

	if *configPath != "" {
		var err error

		cfg, err = wavcheck.LoadCheckConfig(*configPath)
		if err != nil {
			return 0, err
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read %s: %w", dir, err)
	}

	fr, err := resolveFrameRate(*frameRateText, dir, entries)
	if err != nil {
		if *frameRateText != "" {
			return 0, err
		}

		// A broken hint file degrades to the non-timecode checks rather
		// than aborting the batch.
		fmt.Fprintf(out, "skipping timecode checks: %v\n", err)
		fr = nil
	}

	batch := wavcheck.NewBatch(cfg, fr)

	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".wav") {
			continue
		}

		// Parse failures become findings; the batch keeps going.
		_ = batch.Add(filepath.Join(dir, entry.Name()))
	}

	report := batch.Check()

	if len(batch.Files) == 0 && len(report.Findings) == 0 {
		fmt.Fprintf(out, "No wav files found in %s\n", dir)
		return 0, nil
	}

	if *verbose {
		for _, w := range batch.Files {
			listFile(out, w, fr)
		}
	}

	printFindings(out, report)

	if *applyFixes {
		results := batch.Apply(batch.PlanFixes(report))
		for _, result := range results {
			if result.Err != nil {
				fmt.Fprintf(out, "FAILED %s %s: %v\n", result.Plan.Action, result.Plan.Path, result.Err)
				continue
			}

			fmt.Fprintf(out, "fixed %s %s\n", result.Plan.Action, result.Plan.Path)
		}

		if len(results) > 0 {
			// Re-check so the summary and exit code reflect the repaired
			// state on disk.
			report = batch.Check()
		}
	}

	warnings := report.WarningCount()
	fmt.Fprintf(out, "%d files checked, %d warnings\n", len(batch.Files), warnings)

	return warnings, nil
}

// resolveFrameRate picks the frame rate from the -framerate flag, or from
// a hint file in the directory (FRAMERATE.txt and friends, where either
// the contents or the file name itself carries the rate). A nil result
// just disables the timecode rules.
func resolveFrameRate(literal, dir string, entries []os.DirEntry) (*wavcheck.FrameRate, error) {
	if literal != "" {
		fr, err := wavcheck.ParseFrameRate(literal)
		if err != nil {
			return nil, err
		}

		return &fr, nil
	}

	for _, entry := range entries {
		if entry.IsDir() || !wavcheck.IsFrameRateHintName(entry.Name()) {
			continue
		}

		contents, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read hint file %s: %w", entry.Name(), err)
		}

		fr, err := wavcheck.ResolveFrameRate(wavcheck.FrameRateSource{Contents: string(contents)})
		if err != nil {
			fr, err = wavcheck.ResolveFrameRate(wavcheck.FrameRateSource{Contents: entry.Name()})
		}

		if err != nil {
			return nil, fmt.Errorf("hint file %s: %w", entry.Name(), err)
		}

		return &fr, nil
	}

	return nil, nil
}

func listFile(out io.Writer, w *wavcheck.WavFile, fr *wavcheck.FrameRate) {
	format := w.Format()

	fmt.Fprintf(out, "%s: %dch %d-bit %d Hz %.3fs",
		w.Path, format.NumChannels, w.Fmt.EffectiveBitDepth(), format.SampleRate, w.DurationSeconds())

	if umid := w.UMID(); umid != nil {
		fmt.Fprintf(out, " UMID %s", wavcheck.UMIDHex(umid))
	}

	if fr != nil && w.Bext != nil {
		tc, _ := w.StartTimecode(*fr)
		fmt.Fprintf(out, " start %s", tc)
	}

	fmt.Fprintln(out)
}

func printFindings(out io.Writer, report wavcheck.Report) {
	for _, f := range report.Findings {
		fmt.Fprintf(out, "%s %s: %s\n", f.Severity, f.Code, f.Message)
	}
}
