package store_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/phrazzld/recall-api/internal/store"
)

func TestErrorWrapping(t *testing.T) {
	t.Parallel()

	t.Run("card not found wraps the generic sentinel", func(t *testing.T) {
		t.Parallel()
		assert.ErrorIs(t, store.ErrCardNotFound, store.ErrNotFound)
		assert.True(t, store.IsNotFoundError(store.ErrCardNotFound))
		assert.True(t, store.IsNotFoundError(fmt.Errorf("looking up card: %w", store.ErrCardNotFound)))
	})

	t.Run("topic exists wraps the duplicate sentinel", func(t *testing.T) {
		t.Parallel()
		assert.ErrorIs(t, store.ErrTopicExists, store.ErrDuplicate)
		assert.True(t, store.IsDuplicateError(store.ErrTopicExists))
	})

	t.Run("unrelated errors do not match", func(t *testing.T) {
		t.Parallel()
		assert.False(t, store.IsNotFoundError(store.ErrTopicExists))
		assert.False(t, store.IsDuplicateError(store.ErrCardNotFound))
		assert.False(t, store.IsNotFoundError(nil))
	})
}
