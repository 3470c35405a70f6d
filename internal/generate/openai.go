package generate

import (
	"context"
	"fmt"
	"io"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/ssestream"
)

// DefaultSystemPrompt frames the assistant as a study tutor.
const DefaultSystemPrompt = "You are EduMentor, a patient study assistant. " +
	"Answer using the student's uploaded material and conversation so far. " +
	"Use markdown. Be concise and accurate; say so when you do not know."

// OpenAIGenerator generates answers through the OpenAI chat completions API.
type OpenAIGenerator struct {
	client openai.Client
	model  string
}

// NewOpenAIGenerator creates a generator backed by the OpenAI API.
func NewOpenAIGenerator(apiKey, model string) *OpenAIGenerator {
	return &OpenAIGenerator{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}
}

func (g *OpenAIGenerator) Name() string {
	return "openai/" + g.model
}

func (g *OpenAIGenerator) params(req Request) openai.ChatCompletionNewParams {
	system := req.System
	if system == "" {
		system = DefaultSystemPrompt
	}

	messages := []openai.ChatCompletionMessageParamUnion{openai.SystemMessage(system)}
	for _, turn := range req.History {
		switch turn.Role {
		case "assistant":
			messages = append(messages, openai.AssistantMessage(turn.Content))
		default:
			messages = append(messages, openai.UserMessage(turn.Content))
		}
	}
	messages = append(messages, openai.UserMessage(req.Message))

	return openai.ChatCompletionNewParams{
		Model:    g.model,
		Messages: messages,
	}
}

// Stream starts a streamed chat completion. Fragments are the non-empty
// content deltas in arrival order.
func (g *OpenAIGenerator) Stream(ctx context.Context, req Request) (Stream, error) {
	return &openaiStream{stream: g.client.Chat.Completions.NewStreaming(ctx, g.params(req))}, nil
}

// Complete runs a non-streaming chat completion.
func (g *OpenAIGenerator) Complete(ctx context.Context, req Request) (string, error) {
	resp, err := g.client.Chat.Completions.New(ctx, g.params(req))
	if err != nil {
		return "", fmt.Errorf("openai chat: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai chat: empty response")
	}
	return resp.Choices[0].Message.Content, nil
}

type openaiStream struct {
	stream *ssestream.Stream[openai.ChatCompletionChunk]
}

func (s *openaiStream) Next() (string, error) {
	for s.stream.Next() {
		chunk := s.stream.Current()
		if len(chunk.Choices) == 0 {
			continue
		}
		delta := chunk.Choices[0].Delta.Content
		if delta == "" {
			continue
		}
		return delta, nil
	}
	if err := s.stream.Err(); err != nil && err != io.EOF {
		return "", fmt.Errorf("openai stream: %w", err)
	}
	return "", io.EOF
}

func (s *openaiStream) Close() error {
	return s.stream.Close()
}
