// Package tokenizer turns text into token id tensors for embedding layers.
//
// It wraps pkoukk/tiktoken-go for BPE encoding and folds the large OpenAI
// vocabularies into a configurable number of hash buckets, so examples can
// train small embedding tables without carrying a 100k-entry vocabulary.
package tokenizer

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"

	"github.com/grove-ml/grove/internal/tensor"
)

// Tokenizer encodes text into bucketed token ids.
type Tokenizer struct {
	encoding *tiktoken.Tiktoken
	buckets  int
}

// New loads a tiktoken encoding ("cl100k_base", "p50k_base") and folds its
// ids into the given number of buckets. buckets must be positive.
func New(encodingName string, buckets int) (*Tokenizer, error) {
	if buckets <= 0 {
		return nil, fmt.Errorf("buckets must be positive, got %d", buckets)
	}
	encoding, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		return nil, fmt.Errorf("failed to load tiktoken encoding %q: %w", encodingName, err)
	}
	return &Tokenizer{encoding: encoding, buckets: buckets}, nil
}

// Buckets returns the folded vocabulary size.
func (t *Tokenizer) Buckets() int {
	return t.buckets
}

// Encode converts text to bucketed token ids.
func (t *Tokenizer) Encode(text string) []int {
	tokens := t.encoding.Encode(text, nil, nil)
	for i, tok := range tokens {
		tokens[i] = tok % t.buckets
	}
	return tokens
}

// EncodeBatch encodes texts into a [len(texts), maxLen] id tensor for
// EmbedBag. Rows shorter than maxLen are padded with -1; longer rows are
// truncated.
func (t *Tokenizer) EncodeBatch(texts []string, maxLen int) *tensor.Tensor {
	out := tensor.Full(tensor.Shape{len(texts), maxLen}, -1)
	for r, text := range texts {
		ids := t.Encode(text)
		if len(ids) > maxLen {
			ids = ids[:maxLen]
		}
		for c, id := range ids {
			out.Set(float32(id), r, c)
		}
	}
	return out
}
