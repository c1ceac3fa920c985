// Package wavcheck validates Broadcast Wave Format (BWF) WAV files for
// metadata and timecode consistency, and repairs a narrow set of problems
// in place.
//
// The package parses the RIFF container of each file (fmt, bext, and data
// chunks; everything else is preserved as raw byte ranges), interprets the
// BWF time reference as SMPTE timecode at a caller-resolved frame rate,
// and applies a rule set both per file and across a whole batch (duplicate
// UMIDs, mixed sample rates or bit depths).
//
// Repairs never re-serialize a file: a regenerated UMID is written as a
// byte-range patch inside the existing bext chunk via a temporary copy and
// an atomic rename, and filename fixes only insert the canonical
// TC-prefixed timecode token. The library returns findings and fix results
// instead of printing; cmd/wavcheck provides the command-line surface.
package wavcheck
