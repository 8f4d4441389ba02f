package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	cohere "github.com/cohere-ai/cohere-go/v2"
	cohereclient "github.com/cohere-ai/cohere-go/v2/client"

	"github.com/franclarke/multidub-ai/timeline"
	"github.com/franclarke/multidub-ai/types"
)

// languageNames maps supported ISO codes to the names used in prompts.
var languageNames = map[string]string{
	"es": "Spanish",
	"en": "English",
	"fr": "French",
	"de": "German",
	"it": "Italian",
	"pt": "Portuguese",
	"ru": "Russian",
	"zh": "Chinese",
	"ja": "Japanese",
}

// Cohere translates timelines with one chat call per timeline, sending the
// segments as numbered lines and parsing them back in order so offsets and
// segment count are preserved exactly.
type Cohere struct {
	client *cohereclient.Client
	model  string
}

// NewCohere builds a Cohere translator.
func NewCohere(apiKey, model string) *Cohere {
	httpClient := &http.Client{Timeout: 60 * time.Second}
	client := cohereclient.NewClient(
		cohereclient.WithToken(apiKey),
		cohereclient.WithHTTPClient(httpClient),
	)
	return &Cohere{client: client, model: model}
}

// Translate implements Translator. Empty timelines pass through untouched.
func (c *Cohere) Translate(ctx context.Context, t timeline.Timeline, targetLanguage string) (timeline.Timeline, error) {
	if t.Empty() {
		return t, nil
	}
	name, ok := languageNames[targetLanguage]
	if !ok {
		return timeline.Timeline{}, types.Permanent("translate",
			fmt.Errorf("%w: %s", types.ErrUnsupportedLanguagePair, targetLanguage))
	}

	prompt := buildTranslatePrompt(t.Texts(), name)
	resp, err := c.client.Chat(ctx, &cohere.ChatRequest{
		Message: prompt,
		Model:   &c.model,
	})
	if err != nil {
		return timeline.Timeline{}, types.Transient("translate", fmt.Errorf("%w: %v", types.ErrProviderUnavailable, err))
	}
	if resp == nil || resp.Text == "" {
		return timeline.Timeline{}, types.Transient("translate", errors.New("empty chat response"))
	}

	texts, err := parseNumberedLines(resp.Text, len(t.Segments))
	if err != nil {
		return timeline.Timeline{}, types.Permanent("translate", err)
	}
	out, err := t.WithTexts(texts)
	if err != nil {
		return timeline.Timeline{}, types.Permanent("translate", err)
	}
	return out, nil
}

func buildTranslatePrompt(texts []string, language string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Translate the following %d numbered lines into %s.\n", len(texts), language)
	b.WriteString("Reply with exactly the same number of lines, each prefixed with its number and a period, and nothing else.\n\n")
	for i, t := range texts {
		fmt.Fprintf(&b, "%d. %s\n", i+1, t)
	}
	return b.String()
}

// parseNumberedLines maps a "1. text" style response back onto segment order.
// A count mismatch means the model merged or dropped lines, which would break
// the positional correspondence downstream, so it is a hard failure.
func parseNumberedLines(s string, want int) ([]string, error) {
	out := make([]string, want)
	seen := 0
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		numEnd := strings.IndexAny(line, ".)")
		if numEnd <= 0 {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(line[:numEnd]))
		if err != nil || n < 1 || n > want {
			continue
		}
		text := strings.TrimSpace(line[numEnd+1:])
		if text == "" {
			continue
		}
		if out[n-1] == "" {
			seen++
		}
		out[n-1] = text
	}
	if seen != want {
		return nil, fmt.Errorf("translation returned %d of %d lines", seen, want)
	}
	return out, nil
}
