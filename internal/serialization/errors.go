package serialization

import "errors"

// Sentinel errors returned by the reader.
var (
	// ErrInvalidMagic indicates the file does not start with "GROV".
	ErrInvalidMagic = errors.New("not a grove file: invalid magic bytes")

	// ErrUnsupportedVersion indicates a format version this build cannot read.
	ErrUnsupportedVersion = errors.New("unsupported grove format version")

	// ErrChecksumMismatch indicates the data section does not match the
	// recorded SHA-256 checksum.
	ErrChecksumMismatch = errors.New("checksum mismatch: file is corrupted")

	// ErrCorruptHeader indicates a header that cannot be parsed or whose
	// tensor metadata is inconsistent with the file.
	ErrCorruptHeader = errors.New("corrupt header")

	// ErrUnsupportedDType indicates tensor data this build cannot
	// materialize (grove computes in float32 only).
	ErrUnsupportedDType = errors.New("unsupported tensor dtype")

	// ErrClosed indicates use of a closed reader or writer.
	ErrClosed = errors.New("serialization: already closed")
)
