package gemini_test

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/stewardhq/steward"
	"github.com/stewardhq/steward/gemini"
)

func textChunk(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: text}}},
		}},
	}
}

// chunkIter returns a genai-style streaming iterator from pre-built chunks.
func chunkIter(chunks ...*genai.GenerateContentResponse) func(func(*genai.GenerateContentResponse, error) bool) {
	return func(yield func(*genai.GenerateContentResponse, error) bool) {
		for _, c := range chunks {
			if !yield(c, nil) {
				return
			}
		}
	}
}

func TestStream_TextChunks(t *testing.T) {
	t.Parallel()

	s := gemini.NewStreamFromIter(chunkIter(textChunk("Hello"), textChunk(" world")))
	defer s.Close()

	chunk, err := s.Next()
	require.NoError(t, err)
	assert.Equal(t, "Hello", chunk)

	chunk, err = s.Next()
	require.NoError(t, err)
	assert.Equal(t, " world", chunk)

	_, err = s.Next()
	assert.ErrorIs(t, err, io.EOF)

	// EOF is terminal.
	_, err = s.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestStream_SkipsTextlessChunks(t *testing.T) {
	t.Parallel()

	s := gemini.NewStreamFromIter(chunkIter(
		&genai.GenerateContentResponse{}, // metadata-only chunk
		textChunk("Hi"),
	))
	defer s.Close()

	chunk, err := s.Next()
	require.NoError(t, err)
	assert.Equal(t, "Hi", chunk)

	_, err = s.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestStream_MidStreamErrorIsSticky(t *testing.T) {
	t.Parallel()

	iterFn := func(yield func(*genai.GenerateContentResponse, error) bool) {
		if !yield(textChunk("partial"), nil) {
			return
		}
		yield(nil, assert.AnError)
	}

	s := gemini.NewStreamFromIter(iterFn)
	defer s.Close()

	chunk, err := s.Next()
	require.NoError(t, err)
	assert.Equal(t, "partial", chunk)

	_, err = s.Next()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gemini:")

	// Same error on every subsequent call, never EOF.
	_, again := s.Next()
	assert.Equal(t, err, again)
}

func TestStream_NextAfterClose(t *testing.T) {
	t.Parallel()

	s := gemini.NewStreamFromIter(chunkIter(textChunk("Hi")))
	require.NoError(t, s.Close())

	_, err := s.Next()
	assert.ErrorIs(t, err, steward.ErrStreamClosed)
}

func TestStream_EarlyCloseStopsIterator(t *testing.T) {
	t.Parallel()

	yielded := 0
	iterFn := func(yield func(*genai.GenerateContentResponse, error) bool) {
		for {
			yielded++
			if !yield(textChunk("chunk"), nil) {
				return
			}
		}
	}

	s := gemini.NewStreamFromIter(iterFn)

	_, err := s.Next()
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = s.Next()
	assert.ErrorIs(t, err, steward.ErrStreamClosed)
	// The producer stopped with the stream instead of spinning forever.
	assert.LessOrEqual(t, yielded, 2)
}
