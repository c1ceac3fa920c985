package wavcheck

import (
	"math"
	"testing"
)

func mustRate(t *testing.T, text string) FrameRate {
	t.Helper()

	fr, err := ParseFrameRate(text)
	if err != nil {
		t.Fatalf("ParseFrameRate(%q): %v", text, err)
	}

	return fr
}

func TestTimecodeAt(t *testing.T) {
	testCases := []struct {
		name    string
		rate    string
		samples uint64
		hz      uint32
		want    Timecode
	}{
		{
			name: "origin", rate: "24.000", samples: 0, hz: 48000,
			want: Timecode{Exact: true},
		},
		{
			name: "one second at 24fps", rate: "24.000", samples: 48000, hz: 48000,
			want: Timecode{SS: 1, Exact: true},
		},
		{
			name: "drop frame minute boundary", rate: "29.970 drop", samples: 2882880, hz: 48000,
			want: Timecode{MM: 1, FF: 2, Exact: true},
		},
		{
			name: "last frame before the drop", rate: "29.970 drop",
			samples: 1798 * 1001, hz: 30000,
			want: Timecode{SS: 59, FF: 28, Exact: true},
		},
		{
			name: "same position counted non-drop", rate: "29.970 non-drop", samples: 2882880, hz: 48000,
			want: Timecode{MM: 1, FF: 0, Exact: true},
		},
		{
			name: "drop frame across 10 minute blocks", rate: "29.970 drop",
			samples: 48048000, hz: 48000, // 1001 wall seconds, exactly 30000 frames
			want: Timecode{MM: 16, SS: 41, Exact: true},
		},
		{
			name: "59.94 drop skips four labels", rate: "59.940 drop",
			samples: 3600 * 1001, hz: 60000,
			want: Timecode{MM: 1, FF: 4, Exact: true},
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			fr := mustRate(t, testCase.rate)

			tc, frac := fr.TimecodeAt(testCase.samples, testCase.hz)
			if tc != testCase.want {
				t.Fatalf("got %v (exact=%v), want %v", tc, tc.Exact, testCase.want)
			}

			if tc.Exact && frac != 0 {
				t.Fatalf("exact position reported fraction %g", frac)
			}
		})
	}
}

// An exact frame boundary stays exact, and moving a single sample off it
// does not.
func TestTimecodeAtExactness(t *testing.T) {
	fr := mustRate(t, "24.000")

	const samplesPerFrame = 2000 // 48000 / 24

	for _, frames := range []uint64{1, 17, 24 * 3600, 24 * 86400} {
		samples := frames * samplesPerFrame

		tc, frac := fr.TimecodeAt(samples, 48000)
		if !tc.Exact || frac != 0 {
			t.Fatalf("%d frames: boundary not exact (frac=%g)", frames, frac)
		}

		tc, frac = fr.TimecodeAt(samples+1, 48000)
		if tc.Exact {
			t.Fatalf("%d frames + 1 sample: still exact", frames)
		}

		if frac <= 0 || frac >= 1 {
			t.Fatalf("fraction %g outside (0, 1)", frac)
		}
	}
}

func TestTimecodeAtFraction(t *testing.T) {
	// 48000 samples at 48 kHz is one wall second: 23.976 frames, so the
	// position sits 0.976... of a frame past label 23.
	fr := mustRate(t, "23.976")

	tc, frac := fr.TimecodeAt(48000, 48000)

	if want := (Timecode{FF: 23}); tc != want {
		t.Fatalf("got %v, want %v", tc, want)
	}

	if math.Abs(frac-977.0/1001.0) > 1e-12 {
		t.Fatalf("fraction = %g, want 977/1001", frac)
	}
}

func TestFrameIndexRoundTrip(t *testing.T) {
	rates := []string{"23.976", "24.000", "25.000", "29.970 drop", "29.970 non-drop", "59.940 drop"}

	for _, text := range rates {
		fr := mustRate(t, text)

		// Dense near the drop-frame discontinuities, sparse elsewhere.
		indices := []int64{0, 1, 1797, 1798, 1799, 1800, 17981, 17982, 107891, 107892}
		for _, idx := range indices {
			tc := fr.timecodeOfFrame(idx)
			if got := fr.FrameIndex(tc); got != idx {
				t.Fatalf("%s: frame %d -> %v -> frame %d", text, idx, tc, got)
			}
		}
	}
}

func TestFrameIndexDropFrame(t *testing.T) {
	fr := mustRate(t, "29.970 drop")

	tc := Timecode{MM: 1, FF: 2}
	if got := fr.FrameIndex(tc); got != 1800 {
		t.Fatalf("FrameIndex(%v) = %d, want 1800", tc, got)
	}

	if secs := fr.WallSeconds(tc); math.Abs(secs-60.06) > 1e-9 {
		t.Fatalf("WallSeconds(%v) = %g, want 60.06", tc, secs)
	}

	// The 10-minute mark drops nothing.
	tc = Timecode{MM: 10}
	if got := fr.FrameIndex(tc); got != 17982 {
		t.Fatalf("FrameIndex(%v) = %d, want 17982", tc, got)
	}
}

func TestTimecodeRendering(t *testing.T) {
	tc := Timecode{HH: 1, MM: 2, SS: 3, FF: 4}

	if tc.String() != "01:02:03:04" {
		t.Fatalf("String() = %q", tc.String())
	}

	if tc.Token() != "01020304" {
		t.Fatalf("Token() = %q", tc.Token())
	}
}

func TestParseTimecodeToken(t *testing.T) {
	testCases := []struct {
		in   string
		want Timecode
		ok   bool
	}{
		{"01020304", Timecode{HH: 1, MM: 2, SS: 3, FF: 4, Exact: true}, true},
		{"1020304", Timecode{HH: 1, MM: 2, SS: 3, FF: 4, Exact: true}, true}, // 7 digits pad to 8
		{"10.20.30.12", Timecode{HH: 10, MM: 20, SS: 30, FF: 12, Exact: true}, true},
		{"01:02:03;04", Timecode{HH: 1, MM: 2, SS: 3, FF: 4, Exact: true}, true},
		{"010203", Timecode{}, false},
		{"010203045", Timecode{}, false},
		{"", Timecode{}, false},
	}

	for _, testCase := range testCases {
		tc, err := ParseTimecodeToken(testCase.in)

		if testCase.ok != (err == nil) {
			t.Fatalf("%q: err = %v, ok = %v", testCase.in, err, testCase.ok)
		}

		if err == nil && tc != testCase.want {
			t.Fatalf("%q: got %v, want %v", testCase.in, tc, testCase.want)
		}
	}
}

func TestFindFilenameTimecode(t *testing.T) {
	testCases := []struct {
		name       string
		want       *Timecode
		confidence TCConfidence
	}{
		{"reel7_TC01020304.wav", &Timecode{HH: 1, MM: 2, SS: 3, FF: 4, Exact: true}, TCExplicitPrefix},
		{"reel7_tc 10.20.30.12_mix.wav", &Timecode{HH: 10, MM: 20, SS: 30, FF: 12, Exact: true}, TCExplicitPrefix},
		{"cue12_01020304.wav", &Timecode{HH: 1, MM: 2, SS: 3, FF: 4, Exact: true}, TCImplicitDigits},
		{"1020304.wav", &Timecode{HH: 1, MM: 2, SS: 3, FF: 4, Exact: true}, TCImplicitDigits},
		// Two bare runs: the last one wins.
		{"take_01000000_02000000.wav", &Timecode{HH: 2, Exact: true}, TCImplicitDigits},
		// An explicit token wins over a later bare run.
		{"TC01000000_02000000.wav", &Timecode{HH: 1, Exact: true}, TCExplicitPrefix},
		{"ambience_loop.wav", nil, 0},
		{"v2_mix_48k.wav", nil, 0},
	}

	for _, testCase := range testCases {
		got := FindFilenameTimecode(testCase.name)

		if (got == nil) != (testCase.want == nil) {
			t.Fatalf("%q: got %+v, want %+v", testCase.name, got, testCase.want)
		}

		if got == nil {
			continue
		}

		if got.TC != *testCase.want || got.Confidence != testCase.confidence {
			t.Fatalf("%q: got %v (confidence %d), want %v (confidence %d)",
				testCase.name, got.TC, got.Confidence, *testCase.want, testCase.confidence)
		}
	}
}

func TestInsertTimecodeToken(t *testing.T) {
	tc := Timecode{HH: 1, MM: 2, SS: 3, FF: 4}

	testCases := []struct {
		stem string
		want string
	}{
		{"reel7_mix", "reel7_mix_TC01020304"},
		{"reel7_TC09080706", "reel7_TC01020304"},
		{"reel7_tc 09.08.07.06_mix", "reel7_TC01020304_mix"},
		{"reel7_", "reel7_TC01020304"},
	}

	for _, testCase := range testCases {
		if got := insertTimecodeToken(testCase.stem, tc); got != testCase.want {
			t.Fatalf("%q: got %q, want %q", testCase.stem, got, testCase.want)
		}
	}
}
