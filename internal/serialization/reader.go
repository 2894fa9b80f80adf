package serialization

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"sort"

	"github.com/grove-ml/grove/internal/params"
	"github.com/grove-ml/grove/internal/tensor"
)

// Reader reads .grove files.
type Reader struct {
	file       *os.File
	header     Header
	flags      uint32
	checksum   [ChecksumSize]byte
	dataOffset int64
	dataSize   int64
	opts       ReaderOptions
	closed     bool
}

// ReaderOptions configures reading behavior.
type ReaderOptions struct {
	// SkipChecksumValidation disables data-section checksum verification.
	// Faster, but corrupted files go undetected.
	SkipChecksumValidation bool
}

// NewReader opens a .grove file with strict validation.
func NewReader(path string) (*Reader, error) {
	return NewReaderWithOptions(path, ReaderOptions{})
}

// NewReaderWithOptions opens a .grove file with custom options.
func NewReaderWithOptions(path string, opts ReaderOptions) (*Reader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	r := &Reader{file: file, opts: opts}
	if err := r.parsePrefix(); err != nil {
		_ = file.Close()
		return nil, err
	}

	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	r.dataSize = info.Size() - r.dataOffset

	if err := r.validateHeader(); err != nil {
		_ = file.Close()
		return nil, err
	}
	return r, nil
}

func (r *Reader) parsePrefix() error {
	magic := make([]byte, 4)
	if _, err := io.ReadFull(r.file, magic); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidMagic, err)
	}
	if string(magic) != MagicBytes {
		return ErrInvalidMagic
	}

	var version uint32
	if err := binary.Read(r.file, binary.LittleEndian, &version); err != nil {
		return fmt.Errorf("%w: reading version: %v", ErrCorruptHeader, err)
	}
	if version != FormatVersion {
		return fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
	}

	if err := binary.Read(r.file, binary.LittleEndian, &r.flags); err != nil {
		return fmt.Errorf("%w: reading flags: %v", ErrCorruptHeader, err)
	}
	if _, err := io.ReadFull(r.file, r.checksum[:]); err != nil {
		return fmt.Errorf("%w: reading checksum: %v", ErrCorruptHeader, err)
	}

	var headerSize uint64
	if err := binary.Read(r.file, binary.LittleEndian, &headerSize); err != nil {
		return fmt.Errorf("%w: reading header size: %v", ErrCorruptHeader, err)
	}
	const maxHeaderSize = 64 << 20
	if headerSize == 0 || headerSize > maxHeaderSize {
		return fmt.Errorf("%w: implausible header size %d", ErrCorruptHeader, headerSize)
	}

	headerJSON := make([]byte, headerSize)
	if _, err := io.ReadFull(r.file, headerJSON); err != nil {
		return fmt.Errorf("%w: reading header: %v", ErrCorruptHeader, err)
	}
	if err := json.Unmarshal(headerJSON, &r.header); err != nil {
		return fmt.Errorf("%w: %v", ErrCorruptHeader, err)
	}

	pos := int64(fixedPrefixSize) + int64(headerSize)
	r.dataOffset = pos + (HeaderAlignment-pos%HeaderAlignment)%HeaderAlignment
	return nil
}

func (r *Reader) validateHeader() error {
	seen := make(map[string]bool, len(r.header.Tensors))
	for _, meta := range r.header.Tensors {
		if meta.Name == "" {
			return fmt.Errorf("%w: tensor with empty name", ErrCorruptHeader)
		}
		if seen[meta.Name] {
			return fmt.Errorf("%w: duplicate tensor %q", ErrCorruptHeader, meta.Name)
		}
		seen[meta.Name] = true

		dt, err := tensor.ParseDataType(meta.DType)
		if err != nil {
			return fmt.Errorf("%w: tensor %q: %v", ErrCorruptHeader, meta.Name, err)
		}
		if dt != tensor.Float32 {
			return fmt.Errorf("%w: tensor %q has dtype %s", ErrUnsupportedDType, meta.Name, meta.DType)
		}

		shape := tensor.Shape(meta.Shape)
		if err := shape.Validate(); err != nil {
			return fmt.Errorf("%w: tensor %q: %v", ErrCorruptHeader, meta.Name, err)
		}
		if want := int64(shape.NumElements() * dt.Size()); meta.Size != want {
			return fmt.Errorf("%w: tensor %q: size %d does not match shape %v",
				ErrCorruptHeader, meta.Name, meta.Size, shape)
		}
		if meta.Offset < 0 || meta.Offset+meta.Size > r.dataSize {
			return fmt.Errorf("%w: tensor %q extends past the data section",
				ErrCorruptHeader, meta.Name)
		}
	}

	// Extents must not overlap; two names must never alias the same bytes.
	metas := make([]TensorMeta, len(r.header.Tensors))
	copy(metas, r.header.Tensors)
	sort.Slice(metas, func(i, j int) bool { return metas[i].Offset < metas[j].Offset })
	for i := 1; i < len(metas); i++ {
		prev := metas[i-1]
		if metas[i].Offset < prev.Offset+prev.Size {
			return fmt.Errorf("%w: tensors %q and %q overlap",
				ErrCorruptHeader, prev.Name, metas[i].Name)
		}
	}
	return nil
}

// Header returns the parsed file header.
func (r *Reader) Header() Header {
	return r.header
}

// Flags returns the container flags.
func (r *Reader) Flags() uint32 {
	return r.flags
}

// ReadTree reads every tensor in the file into a flat tree.
//
// Unless disabled in options, the whole data section is checksummed against
// the stored SHA-256 before any tensor is materialized.
func (r *Reader) ReadTree() (params.Tree, error) {
	if r.closed {
		return nil, ErrClosed
	}

	if !r.opts.SkipChecksumValidation {
		if err := r.verifyChecksum(); err != nil {
			return nil, err
		}
	}

	tree := params.New()
	for _, meta := range r.header.Tensors {
		buf := make([]byte, meta.Size)
		if _, err := r.file.ReadAt(buf, r.dataOffset+meta.Offset); err != nil {
			return nil, fmt.Errorf("failed to read tensor %s: %w", meta.Name, err)
		}

		t := tensor.New(tensor.Shape(meta.Shape))
		data := t.Data()
		for i := range data {
			data[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
		}
		tree[meta.Name] = t
	}
	return tree, nil
}

// verifyChecksum streams the data section through SHA-256 and compares the
// digest against the one stored in the prefix.
func (r *Reader) verifyChecksum() error {
	if _, err := r.file.Seek(r.dataOffset, io.SeekStart); err != nil {
		return fmt.Errorf("failed to seek to data section: %w", err)
	}
	h := sha256.New()
	if _, err := io.Copy(h, io.LimitReader(r.file, r.dataSize)); err != nil {
		return fmt.Errorf("failed to checksum data section: %w", err)
	}
	var computed [ChecksumSize]byte
	copy(computed[:], h.Sum(nil))
	if computed != r.checksum {
		return ErrChecksumMismatch
	}
	return nil
}

// Close closes the underlying file. Close is idempotent.
func (r *Reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	return r.file.Close()
}
