// Copyright 2025 Grove ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tokenizer turns text into token id tensors for embedding layers.
package tokenizer

import (
	"github.com/grove-ml/grove/internal/tokenizer"
)

// Tokenizer encodes text into bucketed token ids. It wraps a tiktoken BPE
// encoding and folds its vocabulary into a fixed number of hash buckets,
// so small embedding tables can consume real text.
type Tokenizer = tokenizer.Tokenizer

// New loads a tiktoken encoding ("cl100k_base", "p50k_base") and folds its
// ids into the given number of buckets.
//
// Example:
//
//	tok, err := tokenizer.New("cl100k_base", 256)
//	if err != nil { ... }
//	ids := tok.EncodeBatch(texts, 32) // [len(texts), 32], padded with -1
func New(encodingName string, buckets int) (*Tokenizer, error) {
	return tokenizer.New(encodingName, buckets)
}
