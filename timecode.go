package wavcheck

import (
	"fmt"
	"math/big"
	"regexp"
	"strings"
)

const (
	minsPerHour = 60
	secsPerMin  = 60
)

// Timecode is an SMPTE hours:minutes:seconds:frames position. Exact is
// false when the position it was converted from does not land exactly on
// a frame boundary.
type Timecode struct {
	HH, MM, SS, FF int
	Exact          bool
}

// String renders the display form "01:02:03:04".
func (tc Timecode) String() string {
	return fmt.Sprintf("%02d:%02d:%02d:%02d", tc.HH, tc.MM, tc.SS, tc.FF)
}

// Token renders the canonical 8-digit filename form "01020304".
func (tc Timecode) Token() string {
	return fmt.Sprintf("%02d%02d%02d%02d", tc.HH, tc.MM, tc.SS, tc.FF)
}

// SameFrame reports equality at frame resolution, ignoring Exact.
func (tc Timecode) SameFrame(other Timecode) bool {
	return tc.HH == other.HH && tc.MM == other.MM && tc.SS == other.SS && tc.FF == other.FF
}

// TimecodeAt converts a sample-accurate position to the timecode of the
// closest frame at or before it. The conversion is exact integer
// arithmetic throughout; the second return value is the fractional frame
// remainder in [0, 1), zero iff the position sits on a frame boundary.
func (fr FrameRate) TimecodeAt(samples uint64, sampleRateHz uint32) (Timecode, float64) {
	if sampleRateHz == 0 || fr.Frames == 0 {
		return Timecode{Exact: true}, 0
	}

	num := new(big.Int).SetUint64(samples)
	num.Mul(num, big.NewInt(fr.Frames))

	den := new(big.Int).SetUint64(uint64(sampleRateHz))
	den.Mul(den, big.NewInt(fr.PerWallSecs))

	frameIdx, rem := new(big.Int).QuoRem(num, den, new(big.Int))

	tc := fr.timecodeOfFrame(frameIdx.Int64())
	tc.Exact = rem.Sign() == 0

	frac, _ := new(big.Rat).SetFrac(rem, den).Float64()

	return tc, frac
}

// timecodeOfFrame maps a zero-based frame index to timecode, skipping
// dropped frame labels for drop-frame rates.
func (fr FrameRate) timecodeOfFrame(frameIdx int64) Timecode {
	intFPS := fr.IntFPS()
	framesPerMin := intFPS * secsPerMin
	framesPerHour := framesPerMin * minsPerHour

	remaining := frameIdx + fr.framesDroppedBefore(frameIdx)

	hh := remaining / framesPerHour
	remaining -= hh * framesPerHour

	mm := remaining / framesPerMin
	remaining -= mm * framesPerMin

	ss := remaining / intFPS
	remaining -= ss * intFPS

	return Timecode{HH: int(hh), MM: int(mm), SS: int(ss), FF: int(remaining)}
}

// framesDroppedBefore counts the frame labels skipped between zero and
// frameIdx. Drop-frame rates skip a block of labels at the start of every
// minute except minutes 0, 10, 20, 30, 40 and 50.
func (fr FrameRate) framesDroppedBefore(frameIdx int64) int64 {
	dropPer10Min := fr.dropFramesPer10Min()
	if dropPer10Min == 0 {
		return 0
	}

	framesPerNonDropMin := fr.IntFPS() * secsPerMin
	perBlock := dropPer10Min / 9
	framesPerDropMin := framesPerNonDropMin - perBlock
	framesPer10Min := 10*framesPerNonDropMin - dropPer10Min

	remaining := frameIdx
	full10MinBlocks := remaining / framesPer10Min
	remaining -= framesPer10Min * full10MinBlocks

	dropped := full10MinBlocks * dropPer10Min

	if remaining >= framesPerNonDropMin {
		// The first minute of each 10-minute block drops nothing; every
		// later minute, including the one in progress, drops one block.
		remaining -= framesPerNonDropMin
		completeDropMins := remaining / framesPerDropMin
		dropped += (completeDropMins + 1) * perBlock
	}

	return dropped
}

// FrameIndex maps a timecode back to its zero-based frame index at fr.
func (fr FrameRate) FrameIndex(tc Timecode) int64 {
	totalMins := int64(minsPerHour*tc.HH + tc.MM)
	totalSecs := secsPerMin*totalMins + int64(tc.SS)
	frameIdx := fr.IntFPS()*totalSecs + int64(tc.FF)

	if dropPer10Min := fr.dropFramesPer10Min(); dropPer10Min > 0 {
		frameIdx -= int64(tc.HH) * 6 * dropPer10Min
		frameIdx -= int64(tc.MM/10) * dropPer10Min
		frameIdx -= int64(tc.MM%10) * (dropPer10Min / 9)
	}

	return frameIdx
}

// WallSeconds returns the wall-clock time of tc from origin in seconds.
func (fr FrameRate) WallSeconds(tc Timecode) float64 {
	return float64(fr.FrameIndex(tc)) * float64(fr.PerWallSecs) / float64(fr.Frames)
}

// TCConfidence says how a filename timecode was recognized.
type TCConfidence int

const (
	// TCImplicitDigits is a bare 7-8 digit run with no TC prefix.
	TCImplicitDigits TCConfidence = iota
	// TCExplicitPrefix is a digit run introduced by "TC".
	TCExplicitPrefix
)

// FilenameTimecode is a timecode recognized in a file name.
type FilenameTimecode struct {
	TC         Timecode
	Confidence TCConfidence
}

const tcDigitsExpr = `(?:\d?\d\d\d\d\d\d\d|\d?\d[-_. ]\d\d[-_. ]\d\d[-_. ]\d\d)`

var (
	tcExplicitRE = regexp.MustCompile(`(?i)TC[-_. ]*(` + tcDigitsExpr + `)(?:[^\d]|$)`)
	tcImplicitRE = regexp.MustCompile(`(?:^|[^\d])(` + tcDigitsExpr + `)(?:[^\d]|$)`)
	nonDigitRE   = regexp.MustCompile(`[^\d]`)
)

// ParseTimecodeToken parses digit-run timecode text such as "01020304",
// "1.02.03.04" or "01:02:03;04". Anything that does not normalize to
// exactly eight digits is rejected rather than guessed at.
func ParseTimecodeToken(s string) (Timecode, error) {
	digits := nonDigitRE.ReplaceAllString(s, "")
	if len(digits) == 7 {
		digits = "0" + digits
	}

	if len(digits) != 8 {
		return Timecode{}, fmt.Errorf("invalid timecode pattern %q", s)
	}

	pair := func(i int) int {
		return int(digits[i]-'0')*10 + int(digits[i+1]-'0')
	}

	return Timecode{HH: pair(0), MM: pair(2), SS: pair(4), FF: pair(6), Exact: true}, nil
}

// FindFilenameTimecode recognizes a timecode embedded in a file name,
// preferring an explicit TC-prefixed token over a bare digit run. Bare
// runs use the last match, since prefixes often carry cue numbers.
func FindFilenameTimecode(name string) *FilenameTimecode {
	if match := tcExplicitRE.FindStringSubmatch(name); match != nil {
		tc, err := ParseTimecodeToken(match[1])
		if err == nil {
			return &FilenameTimecode{TC: tc, Confidence: TCExplicitPrefix}
		}
	}

	last := ""
	// Resume each search at the end of the digit group, not the end of
	// the whole match: the trailing separator doubles as the next run's
	// leading boundary.
	for start := 0; start < len(name); {
		loc := tcImplicitRE.FindStringSubmatchIndex(name[start:])
		if loc == nil {
			break
		}

		last = name[start+loc[2] : start+loc[3]]
		start += loc[3]
	}

	if last == "" {
		return nil
	}

	tc, err := ParseTimecodeToken(last)
	if err != nil {
		return nil
	}

	return &FilenameTimecode{TC: tc, Confidence: TCImplicitDigits}
}

// tcTokenRE matches an explicit TC token including its prefix, for
// replacement during renames.
var tcTokenRE = regexp.MustCompile(`(?i)TC[-_. ]*` + tcDigitsExpr)

// insertTimecodeToken returns stem with the canonical TC token for tc:
// an existing explicit token is replaced in place, otherwise the token is
// appended with an underscore.
func insertTimecodeToken(stem string, tc Timecode) string {
	token := "TC" + tc.Token()

	if loc := tcTokenRE.FindStringIndex(stem); loc != nil {
		return stem[:loc[0]] + token + stem[loc[1]:]
	}

	return strings.TrimRight(stem, " _-") + "_" + token
}
