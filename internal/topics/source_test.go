package topics_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/recall-api/internal/domain/srs"
	"github.com/phrazzld/recall-api/internal/topics"
)

func writeTopicsFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "topics.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestFileSourceListCandidates(t *testing.T) {
	t.Parallel()

	t.Run("reads candidates from file", func(t *testing.T) {
		t.Parallel()
		path := writeTopicsFile(t, `{
			"topics": [
				{"topic": "attention", "category": "Foundations", "why": "core mechanism"},
				{"topic": "dropout", "category": "Training"}
			]
		}`)

		source := topics.NewFileSource(nil, path)
		candidates, err := source.ListCandidates(context.Background())
		require.NoError(t, err)
		require.Len(t, candidates, 2)
		assert.Equal(t, srs.Candidate{
			Topic:     "attention",
			Category:  "Foundations",
			Rationale: "core mechanism",
		}, candidates[0])
		assert.Equal(t, "dropout", candidates[1].Topic)
	})

	t.Run("skips entries without a topic", func(t *testing.T) {
		t.Parallel()
		path := writeTopicsFile(t, `{
			"topics": [
				{"topic": "", "category": "General"},
				{"topic": "backprop"}
			]
		}`)

		source := topics.NewFileSource(nil, path)
		candidates, err := source.ListCandidates(context.Background())
		require.NoError(t, err)
		require.Len(t, candidates, 1)
		assert.Equal(t, "backprop", candidates[0].Topic)
	})

	t.Run("missing file yields no candidates", func(t *testing.T) {
		t.Parallel()
		source := topics.NewFileSource(nil, filepath.Join(t.TempDir(), "absent.json"))
		candidates, err := source.ListCandidates(context.Background())
		assert.NoError(t, err)
		assert.Empty(t, candidates)
	})

	t.Run("empty path yields no candidates", func(t *testing.T) {
		t.Parallel()
		source := topics.NewFileSource(nil, "")
		candidates, err := source.ListCandidates(context.Background())
		assert.NoError(t, err)
		assert.Empty(t, candidates)
	})

	t.Run("malformed JSON is an error", func(t *testing.T) {
		t.Parallel()
		path := writeTopicsFile(t, `{"topics": [`)
		source := topics.NewFileSource(nil, path)
		_, err := source.ListCandidates(context.Background())
		assert.Error(t, err)
	})
}

// stubSource is a canned generation.TopicSource.
type stubSource struct {
	candidates []srs.Candidate
	err        error
	calls      int
}

func (s *stubSource) ListCandidates(_ context.Context) ([]srs.Candidate, error) {
	s.calls++
	return s.candidates, s.err
}

func TestFallbackSource(t *testing.T) {
	t.Parallel()

	t.Run("uses primary when it has candidates", func(t *testing.T) {
		t.Parallel()
		primary := &stubSource{candidates: []srs.Candidate{{Topic: "attention"}}}
		secondary := &stubSource{candidates: []srs.Candidate{{Topic: "static"}}}

		source := topics.NewFallbackSource(nil, primary, secondary)
		candidates, err := source.ListCandidates(context.Background())
		require.NoError(t, err)
		require.Len(t, candidates, 1)
		assert.Equal(t, "attention", candidates[0].Topic)
		assert.Zero(t, secondary.calls)
	})

	t.Run("falls back when primary fails", func(t *testing.T) {
		t.Parallel()
		primary := &stubSource{err: errors.New("llm unavailable")}
		secondary := &stubSource{candidates: []srs.Candidate{{Topic: "static"}}}

		source := topics.NewFallbackSource(nil, primary, secondary)
		candidates, err := source.ListCandidates(context.Background())
		require.NoError(t, err)
		require.Len(t, candidates, 1)
		assert.Equal(t, "static", candidates[0].Topic)
	})

	t.Run("falls back when primary is empty", func(t *testing.T) {
		t.Parallel()
		primary := &stubSource{}
		secondary := &stubSource{candidates: []srs.Candidate{{Topic: "static"}}}

		source := topics.NewFallbackSource(nil, primary, secondary)
		candidates, err := source.ListCandidates(context.Background())
		require.NoError(t, err)
		require.Len(t, candidates, 1)
		assert.Equal(t, "static", candidates[0].Topic)
	})

	t.Run("secondary error surfaces when both are empty-handed", func(t *testing.T) {
		t.Parallel()
		primary := &stubSource{err: errors.New("llm unavailable")}
		secondary := &stubSource{err: errors.New("file unreadable")}

		source := topics.NewFallbackSource(nil, primary, secondary)
		_, err := source.ListCandidates(context.Background())
		assert.Error(t, err)
	})
}
