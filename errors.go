package wavcheck

import "errors"

var (
	// ErrMalformedContainer is returned when a file is not a structurally
	// valid RIFF/WAVE container (bad tags, sizes that overrun the file, or
	// a chunk stream that cannot make progress).
	ErrMalformedContainer = errors.New("malformed RIFF/WAVE container")

	// ErrMissingChunk is returned when a required chunk (fmt or data) is
	// absent from an otherwise well-formed container.
	ErrMissingChunk = errors.New("required chunk missing")

	// ErrUnsupportedFormat is returned when the fmt chunk is too short to
	// carry the mandatory fields.
	ErrUnsupportedFormat = errors.New("unsupported fmt chunk layout")

	// ErrInvalidFrameRate is returned when frame rate text cannot be
	// resolved to a supported SMPTE rate.
	ErrInvalidFrameRate = errors.New("invalid frame rate")

	// ErrNameCollision is returned when a rename target already exists.
	ErrNameCollision = errors.New("rename target already exists")

	// ErrIO is returned when a repair cannot be completed atomically; the
	// original file is left untouched.
	ErrIO = errors.New("i/o failure during repair")
)
