package gemini

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/phrazzld/recall-api/internal/generation"
	"google.golang.org/genai"
)

// callWithRetry makes a call to the Gemini API with exponential backoff
// retry logic. It attempts the call up to MaxRetries+1 times, backing
// off with jitter between attempts for transient errors. Permanent
// errors (content blocked by safety filters, malformed responses) are
// returned immediately without retrying.
func (g *GeminiGenerator) callWithRetry(
	ctx context.Context,
	prompt string,
	temperature float32,
) (string, error) {
	if prompt == "" {
		return "", fmt.Errorf("%w: prompt is empty", generation.ErrGenerationFailed)
	}

	maxRetries := g.config.MaxRetries
	baseDelaySeconds := g.config.RetryDelaySeconds
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	if maxRetries < 0 {
		g.logger.WarnContext(ctx, "invalid max retries value, using default", "max_retries", 3)
		maxRetries = 3
	}

	if baseDelaySeconds < 1 {
		g.logger.WarnContext(ctx, "invalid retry delay value, using default", "base_delay_seconds", 2)
		baseDelaySeconds = 2
	}

	genConfig := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(temperature),
		MaxOutputTokens: g.config.MaxOutputTokens,
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		attemptNum := attempt + 1
		g.logger.DebugContext(ctx, "making Gemini API call",
			"attempt", attemptNum,
			"max_attempts", maxRetries+1)

		text, err := g.call(ctx, prompt, genConfig)
		if err == nil {
			return text, nil
		}
		lastErr = err

		g.logger.ErrorContext(ctx, "Gemini API call failed",
			"attempt", attemptNum,
			"error", err)

		if errors.Is(err, generation.ErrContentBlocked) ||
			errors.Is(err, generation.ErrInvalidResponse) {
			return "", err
		}

		if attempt >= maxRetries {
			break
		}

		// delay = baseDelay * 2^attempt * (0.5 + rand(0, 0.5))
		backoffSeconds := float64(baseDelaySeconds) * math.Pow(2, float64(attempt))
		jitterFactor := 0.5 + rng.Float64()*0.5
		delay := time.Duration(backoffSeconds * jitterFactor * float64(time.Second))

		g.logger.InfoContext(ctx, "retrying after delay",
			"attempt", attemptNum,
			"delay", delay.String())

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			g.logger.WarnContext(ctx, "API call cancelled during retry delay",
				"attempt", attemptNum,
				"ctx_err", ctx.Err())
			return "", fmt.Errorf("%w: %v", generation.ErrTransientFailure, ctx.Err())
		}
	}

	return "", fmt.Errorf("%w: exceeded maximum retry attempts (%d): %v",
		generation.ErrTransientFailure, maxRetries, lastErr)
}

// call performs a single generation request and classifies its failure
// modes into the generation error taxonomy.
func (g *GeminiGenerator) call(
	ctx context.Context,
	prompt string,
	genConfig *genai.GenerateContentConfig,
) (string, error) {
	resp, err := g.client.Models.GenerateContent(
		ctx,
		g.config.ModelName,
		genai.Text(prompt),
		genConfig,
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", generation.ErrTransientFailure, err)
	}

	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("%w: no content generated", generation.ErrInvalidResponse)
	}

	if resp.Candidates[0].FinishReason == genai.FinishReasonSafety {
		return "", fmt.Errorf("%w: finish reason safety", generation.ErrContentBlocked)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("%w: empty response text", generation.ErrInvalidResponse)
	}

	return text, nil
}

// Ping performs a minimal generation request, used by the
// test-connections command to verify API reachability and credentials.
func (g *GeminiGenerator) Ping(ctx context.Context) error {
	_, err := g.client.Models.GenerateContent(
		ctx,
		g.config.ModelName,
		genai.Text("Reply with the single word: ok"),
		&genai.GenerateContentConfig{MaxOutputTokens: 8},
	)
	if err != nil {
		return fmt.Errorf("gemini connection test failed: %w", err)
	}
	return nil
}
