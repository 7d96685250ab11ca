package smtpmail

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/recall-api/internal/config"
	"github.com/phrazzld/recall-api/internal/domain"
	"github.com/phrazzld/recall-api/internal/notify"
)

func validSMTPConfig() config.SMTPConfig {
	return config.SMTPConfig{
		Host:     "smtp.example.com",
		Port:     587,
		Username: "sender@example.com",
		Password: "app-password",
		From:     "sender@example.com",
		To:       "reader@example.com",
	}
}

func sampleDigest() *notify.Digest {
	return &notify.Digest{
		Date: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		NewItem: &notify.NewItem{
			Topic:    "attention mechanisms",
			Category: domain.CategoryFoundations,
			Body:     "## Attention\n\nWeights tokens against each other.",
		},
		Reviews: []notify.ReviewItem{
			{
				Topic:    "dropout",
				Category: domain.CategoryTraining,
				Stage:    2,
				Prompt:   "What problem does dropout address?",
			},
		},
		Stats: notify.Stats{LearnedCount: 12, DueCount: 1},
	}
}

func TestNewNotifier(t *testing.T) {
	t.Parallel()

	t.Run("valid configuration", func(t *testing.T) {
		t.Parallel()
		n, err := NewNotifier(nil, validSMTPConfig())
		require.NoError(t, err)
		assert.Equal(t, []string{"reader@example.com"}, n.recipients)
	})

	t.Run("multiple recipients are split and trimmed", func(t *testing.T) {
		t.Parallel()
		cfg := validSMTPConfig()
		cfg.To = "a@example.com, b@example.com ,,c@example.com"
		n, err := NewNotifier(nil, cfg)
		require.NoError(t, err)
		assert.Equal(t, []string{"a@example.com", "b@example.com", "c@example.com"}, n.recipients)
	})

	t.Run("missing host", func(t *testing.T) {
		t.Parallel()
		cfg := validSMTPConfig()
		cfg.Host = ""
		_, err := NewNotifier(nil, cfg)
		assert.ErrorIs(t, err, notify.ErrDeliveryFailed)
	})

	t.Run("missing recipients", func(t *testing.T) {
		t.Parallel()
		cfg := validSMTPConfig()
		cfg.To = ""
		_, err := NewNotifier(nil, cfg)
		assert.ErrorIs(t, err, notify.ErrDeliveryFailed)
	})

	t.Run("only separators in recipients", func(t *testing.T) {
		t.Parallel()
		cfg := validSMTPConfig()
		cfg.To = " , ,"
		_, err := NewNotifier(nil, cfg)
		assert.ErrorIs(t, err, notify.ErrDeliveryFailed)
	})
}

func TestSubjectFor(t *testing.T) {
	t.Parallel()

	date := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	testCases := []struct {
		name     string
		digest   *notify.Digest
		expected string
	}{
		{
			name:     "new item and reviews",
			digest:   sampleDigest(),
			expected: "Daily Knowledge 2024-06-01: attention mechanisms + 1 reviews",
		},
		{
			name: "new item only",
			digest: &notify.Digest{
				Date:    date,
				NewItem: &notify.NewItem{Topic: "dropout"},
			},
			expected: "Daily Knowledge 2024-06-01: dropout",
		},
		{
			name: "reviews only",
			digest: &notify.Digest{
				Date:    date,
				Reviews: []notify.ReviewItem{{Topic: "a"}, {Topic: "b"}},
			},
			expected: "Daily Knowledge 2024-06-01: 2 reviews",
		},
		{
			name:     "empty digest",
			digest:   &notify.Digest{Date: date},
			expected: "Daily Knowledge 2024-06-01",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expected, subjectFor(tc.digest))
		})
	}
}

func TestRenderHTML(t *testing.T) {
	t.Parallel()

	t.Run("full digest", func(t *testing.T) {
		t.Parallel()
		html, err := RenderHTML(sampleDigest())
		require.NoError(t, err)

		assert.Contains(t, html, "Daily Knowledge — 2024-06-01")
		assert.Contains(t, html, "Today&#39;s Topic: attention mechanisms")
		assert.Contains(t, html, "Weights tokens against each other.")
		assert.Contains(t, html, "Reviews Due (1)")
		assert.Contains(t, html, "What problem does dropout address?")
		assert.Contains(t, html, "(stage 2)")
		assert.Contains(t, html, "Topics learned: 12")
		assert.Contains(t, html, "Due today: 1")
	})

	t.Run("empty digest renders the rest-day note", func(t *testing.T) {
		t.Parallel()
		html, err := RenderHTML(&notify.Digest{
			Date: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		})
		require.NoError(t, err)
		assert.Contains(t, html, "Nothing new and nothing due today.")
		assert.NotContains(t, html, "Reviews Due")
	})

	t.Run("body content is HTML-escaped", func(t *testing.T) {
		t.Parallel()
		digest := sampleDigest()
		digest.NewItem.Body = `<script>alert("x")</script>`
		html, err := RenderHTML(digest)
		require.NoError(t, err)
		assert.NotContains(t, html, "<script>")
	})
}

func TestBuildMessage(t *testing.T) {
	t.Parallel()

	cfg := validSMTPConfig()
	cfg.To = "a@example.com,b@example.com"
	n, err := NewNotifier(nil, cfg)
	require.NoError(t, err)

	msg := string(n.buildMessage("Daily Knowledge 2024-06-01", "<html></html>"))

	assert.Contains(t, msg, "From: sender@example.com\r\n")
	assert.Contains(t, msg, "To: a@example.com, b@example.com\r\n")
	assert.Contains(t, msg, "Subject: Daily Knowledge 2024-06-01\r\n")
	assert.Contains(t, msg, "Content-Type: text/html; charset=utf-8\r\n")

	headerEnd := strings.Index(msg, "\r\n\r\n")
	require.GreaterOrEqual(t, headerEnd, 0)
	assert.Equal(t, "<html></html>", msg[headerEnd+4:])
}
