package variant

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// suggestMaxTokens bounds the completion; handle lists are tiny.
const suggestMaxTokens = 256

// DefaultSuggestModel is the model used when none is configured.
const DefaultSuggestModel = "gpt-4o-mini"

const suggestSystemPrompt = "You generate plausible alternative usernames " +
	"a person might use on other platforms. Reply with one username per " +
	"line, no numbering, no commentary."

// OpenAISuggester proposes handle variants via a chat completion.
type OpenAISuggester struct {
	client *openai.Client
	model  string
}

// NewOpenAISuggester creates a suggester. An empty model selects
// DefaultSuggestModel.
func NewOpenAISuggester(apiKey, model string) *OpenAISuggester {
	if model == "" {
		model = DefaultSuggestModel
	}
	return &OpenAISuggester{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

// Suggest implements Suggester. Responses are split by line; handle
// validation downstream drops anything malformed the model emits.
func (s *OpenAISuggester) Suggest(ctx context.Context, seed string, n int) ([]string, error) {
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     s.model,
		MaxTokens: suggestMaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: suggestSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf("Suggest up to %d username variants of %q.", n, seed)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, nil
	}

	var suggestions []string
	for _, line := range strings.Split(resp.Choices[0].Message.Content, "\n") {
		line = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "-"))
		if line == "" {
			continue
		}
		suggestions = append(suggestions, line)
		if len(suggestions) >= n {
			break
		}
	}
	return suggestions, nil
}
