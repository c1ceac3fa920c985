package wavcheck

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Synthetic WAV builders and an independent chunk walker, shared by the
// package tests. The walker deliberately does not reuse ChunkScanner so
// layout assertions do not depend on the code under test.

type testChunk struct {
	id   string
	data []byte
}

func buildWav(chunks ...testChunk) []byte {
	payload := []byte("WAVE")
	for _, ch := range chunks {
		payload = append(payload, ch.id...)
		payload = binary.LittleEndian.AppendUint32(payload, uint32(len(ch.data)))
		payload = append(payload, ch.data...)

		if len(ch.data)%2 == 1 {
			payload = append(payload, 0)
		}
	}

	out := append([]byte("RIFF"), binary.LittleEndian.AppendUint32(nil, uint32(len(payload)))...)

	return append(out, payload...)
}

func fmtBody(formatTag, numChannels uint16, sampleRate uint32, bitDepth uint16) []byte {
	blockAlign := numChannels * bitDepth / 8

	b := make([]byte, fmtChunkMinLen)
	binary.LittleEndian.PutUint16(b[0:], formatTag)
	binary.LittleEndian.PutUint16(b[2:], numChannels)
	binary.LittleEndian.PutUint32(b[4:], sampleRate)
	binary.LittleEndian.PutUint32(b[8:], sampleRate*uint32(blockAlign))
	binary.LittleEndian.PutUint16(b[12:], blockAlign)
	binary.LittleEndian.PutUint16(b[14:], bitDepth)

	return b
}

func fmtExtensibleBody(numChannels uint16, sampleRate uint32, bitDepth, validBits uint16, subFormat [16]byte) []byte {
	b := append(fmtBody(wavFormatExtensible, numChannels, sampleRate, bitDepth),
		make([]byte, fmtExtensibleLen)...)
	binary.LittleEndian.PutUint16(b[16:], fmtExtensibleLen-2)
	binary.LittleEndian.PutUint16(b[18:], validBits)
	binary.LittleEndian.PutUint32(b[20:], 0x3) // front left/right
	copy(b[24:], subFormat[:])

	return b
}

type testBextFields struct {
	description   string
	originator    string
	timeRef       uint64
	version       uint16
	umid          []byte
	loudness      [5]int16 // value, range, true peak, momentary, short-term (x100)
	codingHistory string
}

func bextBody(f testBextFields) []byte {
	b := make([]byte, bextUMIDOffset+bextUMIDLen+10+bextReservedLen)
	copy(b[0:], f.description)
	copy(b[bextDescriptionLen:], f.originator)
	binary.LittleEndian.PutUint64(b[338:], f.timeRef)
	binary.LittleEndian.PutUint16(b[346:], f.version)
	copy(b[bextUMIDOffset:], f.umid)

	for i, v := range f.loudness {
		binary.LittleEndian.PutUint16(b[412+2*i:], uint16(v))
	}

	return append(b, f.codingHistory...)
}

// oneSecondPCM returns a data payload sized to exactly one second.
func oneSecondPCM(numChannels uint16, sampleRate uint32, bitDepth uint16) []byte {
	return make([]byte, sampleRate*uint32(numChannels)*uint32(bitDepth)/8)
}

type chunkInventoryEntry struct {
	id     string
	size   uint32
	offset int64
}

var (
	errFileTooSmall         = errors.New("file too small")
	errInvalidRiffWaveHdr   = errors.New("invalid riff/wave header")
	errChunkExceedsFileSize = errors.New("chunk exceeds file size")
)

func chunkInventory(data []byte) ([]chunkInventoryEntry, error) {
	if len(data) < 12 {
		return nil, errFileTooSmall
	}

	if string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, errInvalidRiffWaveHdr
	}

	entries := make([]chunkInventoryEntry, 0)

	offset := 12
	for offset+8 <= len(data) {
		id := string(data[offset : offset+4])
		size := binary.LittleEndian.Uint32(data[offset+4 : offset+8])
		offset += 8

		end := offset + int(size)
		if end > len(data) {
			return nil, fmt.Errorf("%w: %q", errChunkExceedsFileSize, id)
		}

		entries = append(entries, chunkInventoryEntry{id: id, size: size, offset: int64(offset)})

		offset = end
		if size%2 == 1 {
			offset++
		}
	}

	return entries, nil
}
