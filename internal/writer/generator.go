package writer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"

	"github.com/hyperifyio/termforge/internal/cache"
	"github.com/hyperifyio/termforge/internal/llm"
)

// ErrGeneration wraps every failure of the generation service, including
// output that does not match the requested shape.
var ErrGeneration = errors.New("generation failed")

// Generator is the boundary to the text generation service.
type Generator interface {
	// Object asks for JSON matching schema and decodes it into out. When out
	// has a Validate() error method it is called after decoding.
	Object(ctx context.Context, model string, schema jsonschema.Definition, prompt string, out any) error
	// Text asks for free-form text.
	Text(ctx context.Context, model string, prompt string) (string, error)
}

type validator interface{ Validate() error }

// OpenAIGenerator implements Generator over an OpenAI-compatible chat API.
type OpenAIGenerator struct {
	Client llm.Client
	// Cache, when set, replays responses for identical model and prompt.
	Cache       *cache.GenerationCache
	Temperature float32
	// SystemPrompt, when non-empty, replaces the default writer persona.
	SystemPrompt string
}

const defaultSystemPrompt = "You are a careful educational writer. Use the provided reference documents for facts and do not invent sources. Keep the style clear and factual."

func (g *OpenAIGenerator) system() string {
	if strings.TrimSpace(g.SystemPrompt) != "" {
		return g.SystemPrompt
	}
	return defaultSystemPrompt
}

func (g *OpenAIGenerator) Text(ctx context.Context, model string, prompt string) (string, error) {
	system := g.system()
	out, err := g.complete(ctx, model, system, prompt, nil)
	if err != nil {
		return "", err
	}
	if out == "" {
		return "", fmt.Errorf("%w: empty response", ErrGeneration)
	}
	g.save(ctx, model, system, prompt, out)
	return out, nil
}

func (g *OpenAIGenerator) Object(ctx context.Context, model string, schema jsonschema.Definition, prompt string, out any) error {
	rawSchema, err := json.Marshal(schema)
	if err != nil {
		return fmt.Errorf("encode schema: %w", err)
	}
	system := g.system() + "\n\nRespond with strict JSON only. The JSON must match this JSON Schema:\n" + string(rawSchema)
	content, err := g.complete(ctx, model, system, prompt, &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject})
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(stripFences(content)), out); err != nil {
		return fmt.Errorf("%w: decode object: %w", ErrGeneration, err)
	}
	if v, ok := out.(validator); ok {
		if err := v.Validate(); err != nil {
			return fmt.Errorf("%w: %w", ErrGeneration, err)
		}
	}
	g.save(ctx, model, system, prompt, content)
	return nil
}

func (g *OpenAIGenerator) complete(ctx context.Context, model, system, user string, format *openai.ChatCompletionResponseFormat) (string, error) {
	if g.Client == nil || strings.TrimSpace(model) == "" {
		return "", fmt.Errorf("%w: generator not configured", ErrGeneration)
	}
	key := cache.KeyFrom(model, system+"\n\n"+user)
	if g.Cache != nil {
		if raw, ok, _ := g.Cache.Get(ctx, key); ok {
			var c cachedCompletion
			if err := json.Unmarshal(raw, &c); err == nil && c.Content != "" {
				log.Debug().Str("key", key[:12]).Msg("generation cache hit")
				return c.Content, nil
			}
		}
	}
	req := openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature:    g.Temperature,
		N:              1,
		ResponseFormat: format,
	}
	resp, err := g.Client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrGeneration, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices", ErrGeneration)
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// save records a reply that has passed the caller's checks. Replies that
// failed decoding or validation are never cached so a retry reaches the model.
func (g *OpenAIGenerator) save(ctx context.Context, model, system, user, content string) {
	if g.Cache == nil || content == "" {
		return
	}
	payload, err := json.Marshal(cachedCompletion{Content: content})
	if err != nil {
		return
	}
	if err := g.Cache.Save(ctx, cache.KeyFrom(model, system+"\n\n"+user), payload); err != nil {
		log.Debug().Err(err).Msg("generation cache save failed")
	}
}

type cachedCompletion struct {
	Content string `json:"content"`
}

// stripFences removes a surrounding ```json fence some models add even in
// JSON mode.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "```"))
}
