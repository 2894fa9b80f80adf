package tokenizer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grove-ml/grove/internal/tensor"
	"github.com/grove-ml/grove/internal/tokenizer"
)

// loadTokenizer skips the test when the tiktoken vocabulary cannot be
// fetched (offline CI without a populated cache).
func loadTokenizer(t *testing.T, buckets int) *tokenizer.Tokenizer {
	t.Helper()
	tok, err := tokenizer.New("cl100k_base", buckets)
	if err != nil {
		t.Skipf("tiktoken encoding unavailable: %v", err)
	}
	return tok
}

func TestNewRejectsBadBuckets(t *testing.T) {
	_, err := tokenizer.New("cl100k_base", 0)
	require.Error(t, err)
}

func TestEncodeStaysInBuckets(t *testing.T) {
	tok := loadTokenizer(t, 64)

	ids := tok.Encode("the quick brown fox jumps over the lazy dog")
	require.NotEmpty(t, ids)
	for _, id := range ids {
		assert.GreaterOrEqual(t, id, 0)
		assert.Less(t, id, 64)
	}
}

func TestEncodeDeterministic(t *testing.T) {
	tok := loadTokenizer(t, 64)
	assert.Equal(t, tok.Encode("hello world"), tok.Encode("hello world"))
}

func TestEncodeBatchPadsAndTruncates(t *testing.T) {
	tok := loadTokenizer(t, 64)

	batch := tok.EncodeBatch([]string{"hi", "a much longer sentence that should be truncated"}, 4)
	require.True(t, batch.Shape().Equal(tensor.Shape{2, 4}))

	// Short row: padding after the real tokens.
	assert.Equal(t, float32(-1), batch.At(0, 3))
	// Long row: every slot filled.
	for c := 0; c < 4; c++ {
		assert.GreaterOrEqual(t, batch.At(1, c), float32(0))
	}
}
