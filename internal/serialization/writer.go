package serialization

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/grove-ml/grove/internal/params"
	"github.com/grove-ml/grove/internal/tensor"
)

// Writer writes .grove files.
type Writer struct {
	file   *os.File
	closed bool
}

// NewWriter creates a .grove file at path, truncating any existing file.
func NewWriter(path string) (*Writer, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	return &Writer{file: file}, nil
}

// WriteTree writes one flat tensor tree with the given header.
//
// Tensor metadata (names, dtypes, shapes, offsets) in the header is computed
// here; any Tensors already present in header are overwritten. Tensors are
// laid out in sorted name order, so files written from equal trees are
// byte-identical apart from CreatedAt.
func (w *Writer) WriteTree(tree params.Tree, header Header) error {
	if w.closed {
		return ErrClosed
	}

	header.FormatVersion = FormatVersion
	header.GroveVersion = groveVersion
	if header.CreatedAt.IsZero() {
		header.CreatedAt = time.Now().UTC()
	}

	names := tree.Names()
	header.Tensors = make([]TensorMeta, 0, len(names))

	// Lay out the data section and checksum it as we go.
	hash := sha256.New()
	var offset int64
	payloads := make([][]byte, 0, len(names))
	for _, name := range names {
		t := tree[name]
		data := tensorBytes(t)
		header.Tensors = append(header.Tensors, TensorMeta{
			Name:   name,
			DType:  tensor.Float32.String(),
			Shape:  []int(t.Shape()),
			Offset: offset,
			Size:   int64(len(data)),
		})
		hash.Write(data)
		offset += int64(len(data))
		payloads = append(payloads, data)
	}
	var checksum [ChecksumSize]byte
	copy(checksum[:], hash.Sum(nil))

	flags := uint32(0)
	if len(header.Metadata) > 0 {
		flags |= FlagHasMetadata
	}
	if header.Checkpoint != nil {
		flags |= FlagHasOptimizer
	}
	for _, name := range names {
		if params.HasPrefix(statePrefix)(name) {
			flags |= FlagHasState
			break
		}
	}

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("failed to marshal header: %w", err)
	}

	if _, err := w.file.WriteString(MagicBytes); err != nil {
		return fmt.Errorf("failed to write magic bytes: %w", err)
	}
	if err := binary.Write(w.file, binary.LittleEndian, uint32(FormatVersion)); err != nil {
		return fmt.Errorf("failed to write version: %w", err)
	}
	if err := binary.Write(w.file, binary.LittleEndian, flags); err != nil {
		return fmt.Errorf("failed to write flags: %w", err)
	}
	if _, err := w.file.Write(checksum[:]); err != nil {
		return fmt.Errorf("failed to write checksum: %w", err)
	}
	if err := binary.Write(w.file, binary.LittleEndian, uint64(len(headerJSON))); err != nil {
		return fmt.Errorf("failed to write header size: %w", err)
	}
	if _, err := w.file.Write(headerJSON); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	pos := int64(fixedPrefixSize) + int64(len(headerJSON))
	if padding := (HeaderAlignment - pos%HeaderAlignment) % HeaderAlignment; padding > 0 {
		if _, err := w.file.Write(make([]byte, padding)); err != nil {
			return fmt.Errorf("failed to write padding: %w", err)
		}
	}

	for i, data := range payloads {
		if _, err := w.file.Write(data); err != nil {
			return fmt.Errorf("failed to write tensor %s: %w", names[i], err)
		}
	}
	return nil
}

// Close closes the underlying file. Close is idempotent.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	return w.file.Close()
}

// tensorBytes encodes a tensor's elements as little-endian float32.
func tensorBytes(t *tensor.Tensor) []byte {
	data := t.Data()
	out := make([]byte, len(data)*4)
	for i, v := range data {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(v))
	}
	return out
}
