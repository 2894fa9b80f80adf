// Copyright 2025 Grove ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package checkpoint provides the public API for reading and writing .grove
// files: a binary container holding parameter trees, state collections, and
// optimizer buffers, with a JSON header and a SHA-256 data checksum.
//
// Example:
//
//	if err := checkpoint.Save("model.grove", "MLP", p, st, nil); err != nil { ... }
//	p2, st2, err := checkpoint.Load("model.grove")
package checkpoint

import (
	"github.com/grove-ml/grove/internal/params"
	"github.com/grove-ml/grove/internal/serialization"
)

// Header is the JSON header of a .grove file.
type Header = serialization.Header

// TensorMeta describes one tensor in a file's data section.
type TensorMeta = serialization.TensorMeta

// CheckpointMeta carries training state for resumable checkpoints.
type CheckpointMeta = serialization.CheckpointMeta

// Reader reads .grove files.
type Reader = serialization.Reader

// ReaderOptions configures reading behavior.
type ReaderOptions = serialization.ReaderOptions

// Writer writes .grove files.
type Writer = serialization.Writer

// Sentinel errors returned by readers.
var (
	ErrInvalidMagic       = serialization.ErrInvalidMagic
	ErrUnsupportedVersion = serialization.ErrUnsupportedVersion
	ErrChecksumMismatch   = serialization.ErrChecksumMismatch
	ErrCorruptHeader      = serialization.ErrCorruptHeader
)

// Save writes a parameter tree and state collection to path. st may be nil
// for stateless models; metadata round-trips through the header.
func Save(path, modelType string, p, st params.Tree, metadata map[string]string) error {
	return serialization.Save(path, modelType, p, st, metadata)
}

// Load reads back trees written by Save.
func Load(path string) (p, st params.Tree, err error) {
	return serialization.Load(path)
}

// SaveCheckpoint writes parameters, state, and optimizer buffers together
// with training progress, producing a resumable checkpoint.
func SaveCheckpoint(path, modelType string, p, st, optState params.Tree, ckpt CheckpointMeta, metadata map[string]string) error {
	return serialization.SaveCheckpoint(path, modelType, p, st, optState, ckpt, metadata)
}

// LoadCheckpoint reads back a checkpoint written by SaveCheckpoint.
func LoadCheckpoint(path string) (p, st, optState params.Tree, ckpt CheckpointMeta, err error) {
	return serialization.LoadCheckpoint(path)
}

// NewReader opens a .grove file with strict validation.
func NewReader(path string) (*Reader, error) {
	return serialization.NewReader(path)
}

// NewReaderWithOptions opens a .grove file with custom options.
func NewReaderWithOptions(path string, opts ReaderOptions) (*Reader, error) {
	return serialization.NewReaderWithOptions(path, opts)
}
