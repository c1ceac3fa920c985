package wavcheck

import (
	"bytes"
	"encoding/binary"
	"strings"
)

const (
	bextDescriptionLen         = 256
	bextOriginatorLen          = 32
	bextOriginatorReferenceLen = 32
	bextOriginationDateLen     = 10
	bextOriginationTimeLen     = 8
	bextUMIDLen                = 64
	bextReservedLen            = 180

	// bextUMIDOffset is the UMID's position within the bext payload; the
	// repair engine patches exactly these bextUMIDLen bytes.
	bextUMIDOffset = bextDescriptionLen + bextOriginatorLen + bextOriginatorReferenceLen +
		bextOriginationDateLen + bextOriginationTimeLen + 8 + 2
)

// BroadcastExtension stores the parsed bext chunk (EBU Tech 3285).
// UMID is meaningful for Version >= 1, the loudness statistics for
// Version >= 2.
type BroadcastExtension struct {
	Description         string
	Originator          string
	OriginatorReference string
	OriginationDate     string
	OriginationTime     string
	TimeReference       uint64
	Version             uint16
	UMID                [bextUMIDLen]byte

	// Loudness statistics, stored on the wire as value*100 int16.
	LoudnessValue        int16
	LoudnessRange        int16
	MaxTruePeakLevel     int16
	MaxMomentaryLoudness int16
	MaxShortTermLoudness int16

	Reserved      []byte
	CodingHistory string
}

// DecodeBroadcastChunk decodes a bext chunk payload. Short payloads are
// tolerated; missing trailing fields decode as zero.
func DecodeBroadcastChunk(body []byte) *BroadcastExtension {
	bext := &BroadcastExtension{}
	offset := 0

	take := func(n int) []byte {
		out := make([]byte, n)
		if offset < len(body) {
			end := min(offset+n, len(body))
			copy(out, body[offset:end])
		}

		offset += n

		return out
	}

	readFixedString := func(n int) string {
		s := nullTermStr(take(n))
		return strings.TrimRight(s, " ")
	}

	bext.Description = readFixedString(bextDescriptionLen)
	bext.Originator = readFixedString(bextOriginatorLen)
	bext.OriginatorReference = readFixedString(bextOriginatorReferenceLen)
	bext.OriginationDate = readFixedString(bextOriginationDateLen)
	bext.OriginationTime = readFixedString(bextOriginationTimeLen)

	timeRefLow := binary.LittleEndian.Uint32(take(4))
	timeRefHigh := binary.LittleEndian.Uint32(take(4))
	bext.TimeReference = uint64(timeRefHigh)<<32 | uint64(timeRefLow)
	bext.Version = binary.LittleEndian.Uint16(take(2))

	copy(bext.UMID[:], take(bextUMIDLen))

	bext.LoudnessValue = int16(binary.LittleEndian.Uint16(take(2)))
	bext.LoudnessRange = int16(binary.LittleEndian.Uint16(take(2)))
	bext.MaxTruePeakLevel = int16(binary.LittleEndian.Uint16(take(2)))
	bext.MaxMomentaryLoudness = int16(binary.LittleEndian.Uint16(take(2)))
	bext.MaxShortTermLoudness = int16(binary.LittleEndian.Uint16(take(2)))

	bext.Reserved = take(bextReservedLen)

	if offset < len(body) {
		codingHistory := bytes.TrimRight(body[offset:], "\x00")
		bext.CodingHistory = strings.TrimRight(string(codingHistory), "\r\n")
	}

	return bext
}

// ValidUMID returns the UMID bytes, or nil when the chunk predates BWF v1
// or carries an all-zero identifier. A basic UMID padded with a zero
// second half is trimmed to its 32 significant bytes.
func (b *BroadcastExtension) ValidUMID() []byte {
	if b == nil || b.Version < 1 || allZero(b.UMID[:]) {
		return nil
	}

	if allZero(b.UMID[UMIDBasicLen:]) {
		return b.UMID[:UMIDBasicLen]
	}

	return b.UMID[:]
}

// HasLoudness reports whether the loudness statistics fields are
// populated (BWF version 2 and later).
func (b *BroadcastExtension) HasLoudness() bool {
	return b != nil && b.Version >= 2
}

// IntegratedLUFS returns the integrated loudness value in LUFS.
func (b *BroadcastExtension) IntegratedLUFS() float64 { return float64(b.LoudnessValue) / 100.0 }

// LoudnessRangeLU returns the loudness range in LU.
func (b *BroadcastExtension) LoudnessRangeLU() float64 { return float64(b.LoudnessRange) / 100.0 }

// MaxTruePeakDBTP returns the maximum true peak level in dBTP.
func (b *BroadcastExtension) MaxTruePeakDBTP() float64 { return float64(b.MaxTruePeakLevel) / 100.0 }

// MaxMomentaryLUFS returns the maximum momentary loudness in LUFS.
func (b *BroadcastExtension) MaxMomentaryLUFS() float64 {
	return float64(b.MaxMomentaryLoudness) / 100.0
}

// MaxShortTermLUFS returns the maximum short-term loudness in LUFS.
func (b *BroadcastExtension) MaxShortTermLUFS() float64 {
	return float64(b.MaxShortTermLoudness) / 100.0
}

func nullTermStr(b []byte) string {
	return string(b[:clen(b)])
}

func clen(num []byte) int {
	for i := range num {
		if num[i] == 0 {
			return i
		}
	}

	return len(num)
}

func allZero(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}

	return true
}
