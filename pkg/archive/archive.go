// Package archive implements the template archive: a line-oriented text
// format holding a filtered snapshot of a directory tree. Empty directories
// are stored as bare DIR records; file contents are XOR-transformed, then
// base64-encoded into single-line FILE records.
//
// The XOR transform is obfuscation, not a security mechanism: the key is
// fixed and publicly known, and the transform provides no confidentiality
// or integrity protection.
package archive

import (
	"strings"

	"github.com/mrtigerst/tdm/pkg/errors"
)

// DefaultKey is the historical transform key. Encoder and Applier take the
// key as explicit configuration so it can be rotated without touching the
// pipeline; this is the value every published archive was written with.
var DefaultKey = []byte("tdmcliKeyy")

// Kind discriminates the record union.
type Kind int

const (
	KindDir Kind = iota
	KindFile
)

// Record is one self-delimited archive entry: either an empty directory or
// a file with its encoded payload.
type Record struct {
	Kind Kind

	// Path is relative to the restore root, slash-separated, never
	// starting with a separator.
	Path string

	// Payload is the base64 text of the transformed file bytes. Empty for
	// directory records.
	Payload string

	// DeclaredLen is the encoded-text length announced in the SIZE line.
	// It is diagnostic only and never authoritative; the actual payload
	// wins on mismatch.
	DeclaredLen int
}

// Wire format markers. Directory records precede file records in a
// well-formed archive.
const (
	dirHeader    = "DIR: "
	fileHeader   = "FILE: "
	sizeHeader   = "SIZE: "
	dirSentinel  = "END_OF_DIR"
	fileSentinel = "END_OF_FILE"
)

// recoveryPolicy states how a structural problem in a record of a given
// kind is handled during parsing.
type recoveryPolicy int

const (
	// recoverAndContinue reports the problem and resumes with the next
	// line as the next record header.
	recoverAndContinue recoveryPolicy = iota

	// abortParse reports the problem and stops parsing the remainder.
	abortParse
)

// recovery returns the parse recovery policy for the record kind: directory
// records are cheap to resynchronize past, file records are not (a missing
// line would misalign every record that follows).
func (k Kind) recovery() recoveryPolicy {
	if k == KindDir {
		return recoverAndContinue
	}
	return abortParse
}

// Transform applies the reversible XOR byte transform. It is its own
// inverse for a given key: Transform(Transform(b, k), k) == b.
func Transform(data, key []byte) []byte {
	out := make([]byte, len(data))
	for i, b := range data {
		out[i] = b ^ key[i%len(key)]
	}
	return out
}

// validatePath checks the record-path invariant: relative, slash-separated,
// and confined beneath the restore root.
func validatePath(p string) error {
	if p == "" {
		return errors.New(errors.ErrArchiveFormat, "record has empty path")
	}
	if strings.HasPrefix(p, "/") {
		return errors.Newf(errors.ErrArchiveFormat, "record path %q is absolute", p)
	}
	for _, segment := range strings.Split(p, "/") {
		if segment == ".." {
			return errors.Newf(errors.ErrArchiveFormat, "record path %q escapes the restore root", p)
		}
	}
	return nil
}
