package postgres

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/recall-api/internal/domain"
)

// fakeScanner feeds canned column values into scanCard.
type fakeScanner struct {
	values []any
	err    error
}

func (f *fakeScanner) Scan(dest ...any) error {
	if f.err != nil {
		return f.err
	}
	for i, d := range dest {
		switch target := d.(type) {
		case *uuid.UUID:
			*target = f.values[i].(uuid.UUID)
		case *string:
			*target = f.values[i].(string)
		case *time.Time:
			*target = f.values[i].(time.Time)
		case *int:
			*target = f.values[i].(int)
		}
	}
	return nil
}

func TestScanCard(t *testing.T) {
	t.Parallel()

	t.Run("renormalizes dates to UTC midnight", func(t *testing.T) {
		t.Parallel()
		id := uuid.New()
		est := time.FixedZone("EST", -5*3600)

		card, err := scanCard(&fakeScanner{values: []any{
			id,
			"attention",
			"Foundations",
			"summary",
			time.Date(2024, 6, 1, 0, 0, 0, 0, est),
			time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC),
			3,
		}})
		require.NoError(t, err)

		assert.Equal(t, id, card.ID)
		assert.Equal(t, "attention", card.Topic)
		assert.Equal(t, domain.CategoryFoundations, card.Category)
		assert.Equal(t, 3, card.ReviewStage)
		// Midnight EST is 05:00 UTC the same day; only the date survives.
		assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), card.CreatedAt)
		assert.Equal(t, time.UTC, card.CreatedAt.Location())
		assert.Equal(t, time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC), card.NextReviewDate)
	})

	t.Run("scan errors surface", func(t *testing.T) {
		t.Parallel()
		scanErr := errors.New("driver: bad connection")
		_, err := scanCard(&fakeScanner{err: scanErr})
		assert.ErrorIs(t, err, scanErr)
	})
}
