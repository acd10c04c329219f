package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiClient is the Gemini-backed Completer.
type GeminiClient struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

func NewGeminiClient(ctx context.Context, apiKey, model string, timeout time.Duration) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{client: client, model: model, timeout: timeout}, nil
}

func (c *GeminiClient) Close() {
	if c.client != nil {
		c.client.Close()
	}
}

// Complete issues one completion call with a per-call timeout. Errors are
// returned as *CallError so callers can branch on the failure kind.
func (c *GeminiClient) Complete(ctx context.Context, prompt string) (string, error) {
	if cerr := validatePrompt(prompt); cerr != nil {
		return "", cerr
	}

	cctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	model := c.client.GenerativeModel(c.model)
	resp, err := model.GenerateContent(cctx, genai.Text(prompt))
	if err != nil {
		return "", classify(cctx, err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", &CallError{Kind: FailureUpstream, Err: fmt.Errorf("no response candidates")}
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}

	out := strings.TrimSpace(b.String())
	if out == "" {
		return "", &CallError{Kind: FailureUpstream, Err: fmt.Errorf("empty completion")}
	}
	return out, nil
}
