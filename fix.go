package wavcheck

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// FixAction names a repair the engine knows how to perform.
type FixAction int

const (
	// FixRewriteUMID patches a freshly generated UMID into the bext chunk.
	FixRewriteUMID FixAction = iota
	// FixRenameWithTimecode renames the file to carry the canonical TC
	// token matching its BWF start time.
	FixRenameWithTimecode
)

func (a FixAction) String() string {
	if a == FixRenameWithTimecode {
		return "rename-with-timecode"
	}

	return "rewrite-umid"
}

// FixPlan is one planned repair for one file.
type FixPlan struct {
	Path   string
	Action FixAction

	// For FixRewriteUMID:
	NewUMID    []byte
	UMIDOffset int64

	// For FixRenameWithTimecode:
	NewPath string
}

// FixResult reports the outcome of applying one plan.
type FixResult struct {
	Plan FixPlan
	Err  error
}

// RewriteUMIDInPlace overwrites the UMID byte range at offset with umid
// (zero padded to the full 64-byte field). Nothing else moves: chunk
// sizes, boundaries and file length are untouched. The write goes to a
// temporary copy which then atomically replaces the original, so a crash
// or I/O failure never leaves a half-patched chunk behind.
func RewriteUMIDInPlace(path string, offset int64, umid []byte) error {
	if len(umid) != UMIDBasicLen && len(umid) != UMIDExtendedLen {
		return fmt.Errorf("%w: %s: UMID must be %d or %d bytes, got %d",
			ErrIO, path, UMIDBasicLen, UMIDExtendedLen, len(umid))
	}

	patch := make([]byte, bextUMIDLen)
	copy(patch, umid)

	src, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrIO, path, err)
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrIO, path, err)
	}

	if offset < 0 || offset+bextUMIDLen > info.Size() {
		return fmt.Errorf("%w: %s: UMID range [%d, %d) is outside the file",
			ErrIO, path, offset, offset+bextUMIDLen)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".wavcheck-*")
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrIO, path, err)
	}

	tmpPath := tmp.Name()

	fail := func(cause error) error {
		tmp.Close()
		os.Remove(tmpPath)

		return fmt.Errorf("%w: %s: %v", ErrIO, path, cause)
	}

	if _, err = io.Copy(tmp, src); err != nil {
		return fail(err)
	}

	if _, err = tmp.WriteAt(patch, offset); err != nil {
		return fail(err)
	}

	if err = tmp.Sync(); err != nil {
		return fail(err)
	}

	if err = tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: %s: %v", ErrIO, path, err)
	}

	if err = os.Chmod(tmpPath, info.Mode()); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: %s: %v", ErrIO, path, err)
	}

	if err = os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: %s: %v", ErrIO, path, err)
	}

	return nil
}

// ComputeRenamedPath returns the path with the canonical TC token for tc
// inserted before the extension, replacing any existing explicit token.
// A distinct target that already exists on disk is a name collision.
func ComputeRenamedPath(path string, tc Timecode) (string, error) {
	dir := filepath.Dir(path)
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	target := filepath.Join(dir, insertTimecodeToken(stem, tc)+ext)
	if target == path {
		return path, nil
	}

	if _, err := os.Stat(target); err == nil {
		return "", fmt.Errorf("%w: %s", ErrNameCollision, target)
	}

	return target, nil
}
