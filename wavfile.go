package wavcheck

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/riff"
)

// CIDBext is the chunk ID for the broadcast extension chunk.
var CIDBext = [4]byte{'b', 'e', 'x', 't'}

// WavFile is the parsed per-file record the validation and repair engines
// work from. It keeps every chunk of the container (payload bytes for all
// but data) so repairs can address exact byte ranges.
type WavFile struct {
	Path   string
	Chunks []Chunk

	Fmt      *FmtChunk
	Bext     *BroadcastExtension
	DataSize uint32

	// ExtraBext records that more than one bext chunk was present; only
	// the first is decoded, the second is a reportable problem.
	ExtraBext bool

	// FilenameTC is the timecode token recognized in the file's name, if
	// any.
	FilenameTC *FilenameTimecode

	bextOffset int64
	hasData    bool
}

// ReadWavFile opens and parses the WAV file at path.
func ReadWavFile(path string) (*WavFile, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	return ParseWavFile(file, path)
}

// ParseWavFile parses a WAV byte stream. The path is only used to label
// errors and to recognize a filename timecode token.
func ParseWavFile(r io.ReadSeeker, path string) (*WavFile, error) {
	scanner, err := NewChunkScanner(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	w := &WavFile{
		Path:       path,
		FilenameTC: FindFilenameTimecode(filepath.Base(path)),
	}

	for {
		chnk, err := scanner.Next()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}

		w.Chunks = append(w.Chunks, chnk)

		switch chnk.ID {
		case riff.FmtID:
			if w.Fmt != nil {
				continue
			}

			w.Fmt, err = DecodeFmtChunk(chnk.Body)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", path, err)
			}
		case riff.DataFormatID:
			if !w.hasData {
				w.DataSize = chnk.Size
				w.hasData = true
			}
		case CIDBext:
			if w.Bext != nil {
				w.ExtraBext = true
				continue
			}

			w.Bext = DecodeBroadcastChunk(chnk.Body)
			w.bextOffset = chnk.Offset
		}
	}

	if w.Fmt == nil {
		return nil, fmt.Errorf("%s: %w: no fmt chunk", path, ErrMissingChunk)
	}

	if !w.hasData {
		return nil, fmt.Errorf("%s: %w: no data chunk", path, ErrMissingChunk)
	}

	return w, nil
}

// DurationSeconds returns the audio duration derived from the data chunk
// size and the fmt fields.
func (w *WavFile) DurationSeconds() float64 {
	if w == nil || w.Fmt == nil || w.Fmt.SampleRate == 0 {
		return 0
	}

	frameSize := uint32(w.Fmt.NumChannels) * uint32(w.Fmt.BitsPerSample) / 8
	if frameSize == 0 {
		return 0
	}

	frames := w.DataSize / frameSize

	return float64(frames) / float64(w.Fmt.SampleRate)
}

// Duration returns the audio duration as a time.Duration.
func (w *WavFile) Duration() time.Duration {
	return time.Duration(w.DurationSeconds() * float64(time.Second))
}

// Format returns the audio format of the file's content.
func (w *WavFile) Format() *audio.Format {
	if w == nil || w.Fmt == nil {
		return nil
	}

	return &audio.Format{
		NumChannels: int(w.Fmt.NumChannels),
		SampleRate:  int(w.Fmt.SampleRate),
	}
}

// UMID returns the file's UMID bytes, or nil when absent or all zero.
func (w *WavFile) UMID() []byte {
	if w == nil {
		return nil
	}

	return w.Bext.ValidUMID()
}

// UMIDFileOffset returns the absolute byte offset of the UMID field
// within the file, or -1 when the file has no bext chunk.
func (w *WavFile) UMIDFileOffset() int64 {
	if w == nil || w.Bext == nil {
		return -1
	}

	return w.bextOffset + bextUMIDOffset
}

// StartTimecode converts the BWF time reference to timecode at fr. The
// second return is the fractional frame remainder in [0, 1).
func (w *WavFile) StartTimecode(fr FrameRate) (Timecode, float64) {
	if w == nil || w.Fmt == nil || w.Bext == nil {
		return Timecode{}, 0
	}

	return fr.TimecodeAt(w.Bext.TimeReference, w.Fmt.SampleRate)
}
