// Package serialization implements the .grove checkpoint container.
//
// Layout of a .grove file (all integers little-endian):
//
//	[0:4)    magic "GROV"
//	[4:8)    uint32 format version
//	[8:12)   uint32 flags
//	[12:44)  SHA-256 checksum of the tensor data section
//	[44:52)  uint64 header size in bytes
//	[52:...) header JSON
//	padding  zero bytes to the next 64-byte boundary
//	data     tensor payloads, at the offsets recorded in the header
//
// A file stores one flat tree of named tensors. Grove layers meaning on top
// through name prefixes: "params/..." for the parameter tree, "state/..."
// for the state collection, "opt/..." for optimizer buffers. The reader does
// not interpret prefixes; Save/Load and the checkpoint helpers do.
package serialization

import (
	"time"
)

// Container constants.
const (
	MagicBytes      = "GROV"
	FormatVersion   = 1
	HeaderAlignment = 64 // tensor data starts on a 64-byte boundary
	ChecksumSize    = 32
	fixedPrefixSize = 4 + 4 + 4 + ChecksumSize + 8
)

// Flags recorded in the container.
const (
	FlagHasState     uint32 = 1 << 0 // a state collection is present
	FlagHasOptimizer uint32 = 1 << 1 // optimizer buffers are present
	FlagHasMetadata  uint32 = 1 << 2 // custom metadata is present
)

// groveVersion is stamped into every written header.
const groveVersion = "0.3.1"

// Header is the JSON header of a .grove file.
type Header struct {
	FormatVersion int               `json:"format_version"`
	GroveVersion  string            `json:"grove_version"`
	ModelType     string            `json:"model_type"`
	CreatedAt     time.Time         `json:"created_at"`
	Tensors       []TensorMeta      `json:"tensors"`
	Metadata      map[string]string `json:"metadata,omitempty"`
	Checkpoint    *CheckpointMeta   `json:"checkpoint,omitempty"`
}

// TensorMeta describes one tensor in the data section.
type TensorMeta struct {
	Name   string `json:"name"`
	DType  string `json:"dtype"`
	Shape  []int  `json:"shape"`
	Offset int64  `json:"offset"` // bytes from the start of the data section
	Size   int64  `json:"size"`   // bytes
}

// CheckpointMeta carries training state for resumable checkpoints.
type CheckpointMeta struct {
	Step            int64              `json:"step"`
	Epoch           int                `json:"epoch"`
	Loss            float64            `json:"loss"`
	OptimizerType   string             `json:"optimizer_type"`
	OptimizerConfig map[string]float64 `json:"optimizer_config,omitempty"`
}
