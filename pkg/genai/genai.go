// Package genai turns source material into diagrams and instructions using a
// text-generation model.
//
// The [Generator] interface is the injection point: production code uses the
// [Gemini] adapter backed by google.golang.org/genai, tests substitute a fake.
// The package-level operations ([DiagramFromTerraform],
// [InstructionFromReadme]) only depend on the interface.
package genai

import (
	"context"
	"strings"

	genai "google.golang.org/genai"

	"github.com/autoclouddeploy/archmap/pkg/errors"
)

// DefaultModel is the model used when no override is configured.
const DefaultModel = "gemini-2.5-pro"

// Generator produces text completions for a prompt.
// Implementations must be safe for concurrent use.
type Generator interface {
	// Generate returns the model's text response for the prompt.
	Generate(ctx context.Context, prompt string) (string, error)

	// Model returns the model identifier, used for cache keys and logging.
	Model() string

	// Close releases client resources.
	Close() error
}

// Gemini is a thin wrapper around the official genai client.
type Gemini struct {
	cli   *genai.Client
	model string
}

// NewGemini creates a Gemini-backed generator.
// Pass an empty model to use [DefaultModel].
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if apiKey == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "gemini api key is required")
	}
	if model == "" {
		model = DefaultModel
	}
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "create gemini client")
	}
	return &Gemini{cli: cli, model: model}, nil
}

// Generate sends the prompt and returns the first candidate's text.
func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.cli.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{{Parts: []*genai.Part{{Text: prompt}}}},
		nil,
	)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeGeneration, err, "gemini request failed")
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", errors.New(errors.ErrCodeGeneration, "gemini returned no candidates")
	}
	return resp.Candidates[0].Content.Parts[0].Text, nil
}

// Model returns the configured model identifier.
func (g *Gemini) Model() string { return g.model }

// Close releases client resources.
func (g *Gemini) Close() error { return nil }

// stripFences removes a wrapping markdown code fence from a model response.
// Models frequently wrap output in ```xml or ```json fences despite being
// told not to.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		// Drop the opening fence with its optional language tag.
		if idx := strings.IndexByte(s, '\n'); idx >= 0 {
			s = s[idx+1:]
		} else {
			s = strings.TrimPrefix(s, "```")
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
