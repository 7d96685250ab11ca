// Package gemini implements the generation boundary interfaces against
// Google's Gemini API: article and review-prompt generation, and the
// dynamic topic source that proposes the next topic to learn.
package gemini
