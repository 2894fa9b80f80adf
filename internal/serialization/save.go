package serialization

import (
	"fmt"
	"strings"

	"github.com/grove-ml/grove/internal/params"
)

// Name prefixes distinguishing the trees stored in one file.
const (
	paramsPrefix = "params"
	statePrefix  = "state"
	optPrefix    = "opt"
)

// Save writes a parameter tree and state collection to path.
//
// st may be nil for stateless models. metadata is free-form and round-trips
// through the header.
func Save(path, modelType string, p, st params.Tree, metadata map[string]string) error {
	return saveFile(path, Header{ModelType: modelType, Metadata: metadata}, p, st, nil)
}

// Load reads back trees written by Save (or SaveCheckpoint, ignoring
// optimizer buffers).
func Load(path string) (p, st params.Tree, err error) {
	p, st, _, _, err = loadFile(path)
	return p, st, err
}

// SaveCheckpoint writes parameters, state, and optimizer buffers together
// with training progress, producing a resumable checkpoint.
func SaveCheckpoint(path, modelType string, p, st, optState params.Tree, ckpt CheckpointMeta, metadata map[string]string) error {
	header := Header{
		ModelType:  modelType,
		Metadata:   metadata,
		Checkpoint: &ckpt,
	}
	return saveFile(path, header, p, st, optState)
}

// LoadCheckpoint reads back a checkpoint written by SaveCheckpoint.
func LoadCheckpoint(path string) (p, st, optState params.Tree, ckpt CheckpointMeta, err error) {
	p, st, optState, header, err := loadFile(path)
	if err != nil {
		return nil, nil, nil, CheckpointMeta{}, err
	}
	if header.Checkpoint == nil {
		return nil, nil, nil, CheckpointMeta{}, fmt.Errorf("%s: not a checkpoint (no training metadata)", path)
	}
	return p, st, optState, *header.Checkpoint, nil
}

func saveFile(path string, header Header, p, st, optState params.Tree) error {
	merged := params.New()
	addPrefixed(merged, paramsPrefix, p)
	addPrefixed(merged, statePrefix, st)
	addPrefixed(merged, optPrefix, optState)

	w, err := NewWriter(path)
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.WriteTree(merged, header); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return w.Close()
}

func loadFile(path string) (p, st, optState params.Tree, header Header, err error) {
	r, err := NewReader(path)
	if err != nil {
		return nil, nil, nil, Header{}, err
	}
	defer r.Close()

	merged, err := r.ReadTree()
	if err != nil {
		return nil, nil, nil, Header{}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	p = stripPrefixed(merged, paramsPrefix)
	st = stripPrefixed(merged, statePrefix)
	optState = stripPrefixed(merged, optPrefix)
	return p, st, optState, r.Header(), nil
}

func addPrefixed(dst params.Tree, prefix string, src params.Tree) {
	for name, v := range src {
		dst[prefix+"/"+name] = v
	}
}

func stripPrefixed(src params.Tree, prefix string) params.Tree {
	out := params.New()
	for name, v := range src {
		if rest, ok := strings.CutPrefix(name, prefix+"/"); ok {
			out[rest] = v
		}
	}
	return out
}
