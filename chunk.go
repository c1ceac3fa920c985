package wavcheck

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/go-audio/riff"
)

// Chunk is one tagged record of a RIFF/WAVE container. Offset is the
// absolute position of the payload within the file, which is what the
// repair engine patches against.
type Chunk struct {
	ID     [4]byte
	Size   uint32
	Offset int64
	// Body holds the payload for every chunk except data, whose (usually
	// large) payload is skipped rather than read.
	Body []byte
}

// ChunkScanner walks the chunks of a single RIFF/WAVE byte stream in
// order. A scanner is a one-shot forward pass; re-open the source to walk
// it again.
type ChunkScanner struct {
	r      io.ReadSeeker
	parser *riff.Parser

	// end is the first byte past the container's declared payload.
	end int64

	lastID       [4]byte
	lastZeroSize bool
}

// NewChunkScanner reads and validates the RIFF/WAVE header of r.
func NewChunkScanner(r io.ReadSeeker) (*ChunkScanner, error) {
	fileSize, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to measure input: %w", err)
	}

	if _, err = r.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to rewind input: %w", err)
	}

	s := &ChunkScanner{r: r, parser: riff.New(r)}

	id, size, err := s.parser.IDnSize()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read container header: %s", ErrMalformedContainer, err)
	}

	if id != riff.RiffID {
		return nil, fmt.Errorf("%w: container tag %q is not RIFF", ErrMalformedContainer, id)
	}

	if int64(size)+8 > fileSize {
		return nil, fmt.Errorf("%w: declared size %d exceeds the %d available bytes",
			ErrMalformedContainer, size, fileSize-8)
	}

	s.parser.ID = id
	s.parser.Size = size
	s.end = 8 + int64(size)

	err = binary.Read(s.r, binary.BigEndian, &s.parser.Format)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read container format: %s", ErrMalformedContainer, err)
	}

	if s.parser.Format != riff.WavFormatID {
		return nil, fmt.Errorf("%w: container format %q is not WAVE", ErrMalformedContainer, s.parser.Format)
	}

	return s, nil
}

// Next returns the next chunk, or io.EOF once the container's declared
// payload is exhausted.
func (s *ChunkScanner) Next() (Chunk, error) {
	pos, err := s.r.Seek(0, io.SeekCurrent)
	if err != nil {
		return Chunk{}, fmt.Errorf("failed to read position: %w", err)
	}

	if pos >= s.end {
		return Chunk{}, io.EOF
	}

	if s.end-pos < 8 {
		return Chunk{}, fmt.Errorf("%w: %d trailing bytes cannot hold a chunk header",
			ErrMalformedContainer, s.end-pos)
	}

	id, size, err := s.parser.IDnSize()
	if err != nil {
		return Chunk{}, fmt.Errorf("%w: failed to read chunk header: %s", ErrMalformedContainer, err)
	}

	// A repeated zero-size chunk means the stream is stuck in place.
	if size == 0 && s.lastZeroSize && id == s.lastID {
		return Chunk{}, fmt.Errorf("%w: repeated zero-size chunk %q", ErrMalformedContainer, id)
	}

	s.lastID = id
	s.lastZeroSize = size == 0

	payload := pos + 8
	if payload+int64(size) > s.end {
		return Chunk{}, fmt.Errorf("%w: chunk %q size %d reads past the container end",
			ErrMalformedContainer, id, size)
	}

	chnk := Chunk{ID: id, Size: size, Offset: payload}

	if id == riff.DataFormatID {
		if _, err = s.r.Seek(int64(size), io.SeekCurrent); err != nil {
			return Chunk{}, fmt.Errorf("failed to skip data chunk: %w", err)
		}
	} else {
		chnk.Body = make([]byte, size)
		if _, err = io.ReadFull(s.r, chnk.Body); err != nil {
			return Chunk{}, fmt.Errorf("%w: failed to read chunk %q payload: %s", ErrMalformedContainer, id, err)
		}
	}

	// Chunks are word aligned; an odd payload is followed by a pad byte
	// that is not counted in Size.
	if size%2 == 1 {
		if _, err = s.r.Seek(1, io.SeekCurrent); err != nil {
			return Chunk{}, fmt.Errorf("failed to skip pad byte: %w", err)
		}
	}

	return chnk, nil
}
