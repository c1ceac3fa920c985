package wavcheck

import (
	"errors"
	"testing"
)

func TestParseFrameRate(t *testing.T) {
	testCases := []struct {
		in   string
		want FrameRate
	}{
		{"23.976", FrameRate{Frames: 24000, PerWallSecs: 1001}},
		{"23.98 ndf", FrameRate{Frames: 24000, PerWallSecs: 1001}},
		{"24", FrameRate{Frames: 24, PerWallSecs: 1}},
		{"24.000 non-drop", FrameRate{Frames: 24, PerWallSecs: 1}},
		{"25.000", FrameRate{Frames: 25, PerWallSecs: 1}},
		{"29.970 drop", FrameRate{Frames: 30000, PerWallSecs: 1001, Drop: true}},
		{"29.97 df", FrameRate{Frames: 30000, PerWallSecs: 1001, Drop: true}},
		{"29.970 non drop", FrameRate{Frames: 30000, PerWallSecs: 1001}},
		{"30 nd", FrameRate{Frames: 30, PerWallSecs: 1}},
		{"47.952", FrameRate{Frames: 48000, PerWallSecs: 1001}},
		{"48.000", FrameRate{Frames: 48, PerWallSecs: 1}},
		{"50", FrameRate{Frames: 50, PerWallSecs: 1}},
		{"59.940 drop", FrameRate{Frames: 60000, PerWallSecs: 1001, Drop: true}},
		{"  60.000  ", FrameRate{Frames: 60, PerWallSecs: 1}},
	}

	for _, testCase := range testCases {
		fr, err := ParseFrameRate(testCase.in)
		if err != nil {
			t.Fatalf("%q: %v", testCase.in, err)
		}

		if fr != testCase.want {
			t.Fatalf("%q: got %+v, want %+v", testCase.in, fr, testCase.want)
		}
	}
}

func TestParseFrameRateRejects(t *testing.T) {
	testCases := []string{
		"garbage",
		"",
		"29.9",
		"12.345",
		"29.970",      // drop or non-drop must be explicit
		"59.94",       // same
		"25 drop",     // not a drop-frame standard
		"24.000 drop", // same
		"24.000 non-drop trailing",
	}

	for _, in := range testCases {
		_, err := ParseFrameRate(in)
		if !errors.Is(err, ErrInvalidFrameRate) {
			t.Fatalf("%q: expected ErrInvalidFrameRate, got %v", in, err)
		}
	}
}

func TestFrameRateString(t *testing.T) {
	fr, err := ParseFrameRate("29.97 drop")
	if err != nil {
		t.Fatal(err)
	}

	if fr.String() != "29.970 drop" {
		t.Fatalf("String() = %q", fr.String())
	}

	if fr.IntFPS() != 30 {
		t.Fatalf("IntFPS() = %d", fr.IntFPS())
	}
}

func TestResolveFrameRateLiteral(t *testing.T) {
	fr, err := ResolveFrameRate(FrameRateSource{Literal: "23.976 non-drop"})
	if err != nil {
		t.Fatal(err)
	}

	if fr.Frames != 24000 || fr.PerWallSecs != 1001 || fr.Drop {
		t.Fatalf("got %+v", fr)
	}
}

func TestResolveFrameRateLabeledLine(t *testing.T) {
	contents := "Session notes for reel 3.\nFrame Rate: 29.970 drop\nComposer: A. Person\n"

	fr, err := ResolveFrameRate(FrameRateSource{Contents: contents})
	if err != nil {
		t.Fatal(err)
	}

	want := FrameRate{Frames: 30000, PerWallSecs: 1001, Drop: true}
	if fr != want {
		t.Fatalf("got %+v, want %+v", fr, want)
	}
}

func TestResolveFrameRateWholeContents(t *testing.T) {
	fr, err := ResolveFrameRate(FrameRateSource{Contents: "24.000 non-drop\n"})
	if err != nil {
		t.Fatal(err)
	}

	if fr.Frames != 24 || fr.Drop {
		t.Fatalf("got %+v", fr)
	}
}

func TestResolveFrameRateFromHintFileName(t *testing.T) {
	// The hint file's own name can carry the rate, as in
	// "FRAMERATE 24.000 non-drop.txt".
	fr, err := ResolveFrameRate(FrameRateSource{Contents: "FRAMERATE 24.000 non-drop.txt"})
	if err != nil {
		t.Fatal(err)
	}

	if fr.Frames != 24 || fr.Drop {
		t.Fatalf("got %+v", fr)
	}
}

func TestResolveFrameRateFails(t *testing.T) {
	_, err := ResolveFrameRate(FrameRateSource{Contents: "no rate anywhere in here"})
	if !errors.Is(err, ErrInvalidFrameRate) {
		t.Fatalf("expected ErrInvalidFrameRate, got %v", err)
	}
}

func TestIsFrameRateHintName(t *testing.T) {
	for name, want := range map[string]bool{
		"FRAMERATE.txt":               true,
		"frame rate 29.970 drop.txt":  true,
		"Frame_Rate.TXT":              true,
		"notes.txt":                   false,
		"reel3_TC01020304.wav":        false,
	} {
		if IsFrameRateHintName(name) != want {
			t.Fatalf("%q: want %v", name, want)
		}
	}
}
