package wavcheck

import (
	"encoding/binary"
	"fmt"
)

const (
	wavFormatPCM        = 0x0001
	wavFormatMPEG       = 0x0050
	wavFormatExtensible = 0xFFFE

	// fmtChunkMinLen is the 16-byte base layout every fmt chunk must carry.
	fmtChunkMinLen = 16
	// fmtExtensibleLen is cbSize plus the WAVE_FORMAT_EXTENSIBLE fields.
	fmtExtensibleLen = 24
)

const (
	ksSubFormatGUIDTail0  = 0x00
	ksSubFormatGUIDTail1  = 0x00
	ksSubFormatGUIDTail2  = 0x10
	ksSubFormatGUIDTail3  = 0x00
	ksSubFormatGUIDTail4  = 0x80
	ksSubFormatGUIDTail5  = 0x00
	ksSubFormatGUIDTail6  = 0x00
	ksSubFormatGUIDTail7  = 0xAA
	ksSubFormatGUIDTail8  = 0x00
	ksSubFormatGUIDTail9  = 0x38
	ksSubFormatGUIDTail10 = 0x9B
	ksSubFormatGUIDTail11 = 0x71
)

// FmtChunk stores the parsed WAV fmt chunk, including extensible metadata.
type FmtChunk struct {
	FormatTag      uint16
	NumChannels    uint16
	SampleRate     uint32
	AvgBytesPerSec uint32
	BlockAlign     uint16
	BitsPerSample  uint16
	Extensible     *FmtExtensible
}

// FmtExtensible stores WAVE_FORMAT_EXTENSIBLE extra fields.
type FmtExtensible struct {
	ValidBitsPerSample uint16
	ChannelMask        uint32
	SubFormat          [16]byte
}

// DecodeFmtChunk decodes a fmt chunk payload. Both the 16-byte base layout
// and the extended layouts with a trailing cbSize field are accepted.
func DecodeFmtChunk(body []byte) (*FmtChunk, error) {
	if len(body) < fmtChunkMinLen {
		return nil, fmt.Errorf("%w: fmt chunk is %d bytes, need at least %d",
			ErrUnsupportedFormat, len(body), fmtChunkMinLen)
	}

	f := &FmtChunk{
		FormatTag:      binary.LittleEndian.Uint16(body[0:2]),
		NumChannels:    binary.LittleEndian.Uint16(body[2:4]),
		SampleRate:     binary.LittleEndian.Uint32(body[4:8]),
		AvgBytesPerSec: binary.LittleEndian.Uint32(body[8:12]),
		BlockAlign:     binary.LittleEndian.Uint16(body[12:14]),
		BitsPerSample:  binary.LittleEndian.Uint16(body[14:16]),
	}

	if f.FormatTag == wavFormatExtensible && len(body) >= fmtChunkMinLen+fmtExtensibleLen {
		ext := &FmtExtensible{
			ValidBitsPerSample: binary.LittleEndian.Uint16(body[18:20]),
			ChannelMask:        binary.LittleEndian.Uint32(body[20:24]),
		}
		copy(ext.SubFormat[:], body[24:40])
		f.Extensible = ext
	}

	return f, nil
}

// EffectiveFormatTag resolves WAVE_FORMAT_EXTENSIBLE to the format tag
// carried in its SubFormat GUID.
func (f *FmtChunk) EffectiveFormatTag() uint16 {
	if f == nil {
		return 0
	}

	if f.FormatTag == wavFormatExtensible && f.Extensible != nil {
		return binary.LittleEndian.Uint16(f.Extensible.SubFormat[:2])
	}

	return f.FormatTag
}

// EffectiveBitDepth returns ValidBitsPerSample for extensible files, which
// may be lower than the container bit depth.
func (f *FmtChunk) EffectiveBitDepth() uint16 {
	if f == nil {
		return 0
	}

	if f.FormatTag == wavFormatExtensible && f.Extensible != nil && f.Extensible.ValidBitsPerSample > 0 {
		return f.Extensible.ValidBitsPerSample
	}

	return f.BitsPerSample
}

// IsStandardPCM reports whether the file is plain PCM, either directly or
// through an extensible header whose SubFormat GUID names PCM.
func (f *FmtChunk) IsStandardPCM() bool {
	if f == nil {
		return false
	}

	if f.FormatTag == wavFormatExtensible {
		return f.Extensible != nil && f.Extensible.SubFormat == makeSubFormatGUID(wavFormatPCM)
	}

	return f.FormatTag == wavFormatPCM
}

func makeSubFormatGUID(formatTag uint16) [16]byte {
	var guid [16]byte
	binary.LittleEndian.PutUint32(guid[:4], uint32(formatTag))
	guid[4] = ksSubFormatGUIDTail0
	guid[5] = ksSubFormatGUIDTail1
	guid[6] = ksSubFormatGUIDTail2
	guid[7] = ksSubFormatGUIDTail3
	guid[8] = ksSubFormatGUIDTail4
	guid[9] = ksSubFormatGUIDTail5
	guid[10] = ksSubFormatGUIDTail6
	guid[11] = ksSubFormatGUIDTail7
	guid[12] = ksSubFormatGUIDTail8
	guid[13] = ksSubFormatGUIDTail9
	guid[14] = ksSubFormatGUIDTail10
	guid[15] = ksSubFormatGUIDTail11

	return guid
}
