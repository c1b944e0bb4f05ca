package assist

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Generation parameters are fixed constants, not user-tunable.
const (
	geminiModel     = "gemini-2.5-flash"
	temperature     = 0.4
	topK            = 40
	topP            = 0.95
	maxOutputTokens = 8192
)

// Completer turns one prompt into one reply. The Gemini client implements
// it; tests substitute fakes.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// GeminiCompleter calls the hosted Gemini generation endpoint.
type GeminiCompleter struct {
	key string
}

func NewGemini(key string) *GeminiCompleter {
	return &GeminiCompleter{key: key}
}

func (g *GeminiCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	if g.key == "" {
		return "", ErrMissingCredential
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(g.key))
	if err != nil {
		return "", mapError(err)
	}
	defer client.Close()

	model := client.GenerativeModel(geminiModel)
	model.SetTemperature(temperature)
	model.SetTopK(topK)
	model.SetTopP(topP)
	model.SetMaxOutputTokens(maxOutputTokens)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", mapError(err)
	}

	var out strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				out.WriteString(string(text))
			}
		}
	}
	if out.Len() == 0 {
		return "", fmt.Errorf("%w: reply has no text candidates", ErrMalformedResponse)
	}
	return out.String(), nil
}
