package ai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"hackerbrief/internal/model"

	openai "github.com/sashabaranov/go-openai"
)

// Summarizer generates one summary of a post's extracted text in the register
// named by the prompt type. style is the user's free-form writing-style
// preference; empty means no styling beyond the prompt type.
type Summarizer interface {
	Summarize(ctx context.Context, post model.Post, text string, pt model.PromptType, style, language string) (string, error)
}

// OpenAIClient implements Summarizer using OpenAI Chat Completions API.
type OpenAIClient struct {
	client *openai.Client
	model  string
}

type Config struct {
	APIKey  string
	Model   string
	BaseURL string // optional
}

func NewOpenAI(cfg Config) *OpenAIClient {
	var c *openai.Client
	if cfg.BaseURL != "" {
		cc := openai.DefaultConfig(cfg.APIKey)
		cc.BaseURL = cfg.BaseURL
		c = openai.NewClientWithConfig(cc)
	} else {
		c = openai.NewClient(cfg.APIKey)
	}
	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &OpenAIClient{client: c, model: model}
}

func (o *OpenAIClient) Summarize(ctx context.Context, post model.Post, text string, pt model.PromptType, style, language string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 120*time.Second)
	defer cancel()

	// Trim inputs to keep tokens reasonable
	text = strings.TrimSpace(text)
	if text == "" {
		text = post.Title
	}
	if len([]rune(text)) > 4000 {
		text = string([]rune(text)[:4000])
	}

	sys, err := systemPrompt(pt, language)
	if err != nil {
		return "", err
	}
	if s := strings.TrimSpace(style); s != "" {
		sys += fmt.Sprintf("\nWrite in this style: %s.", s)
	}
	user := fmt.Sprintf("Title: %s\nURL: %s\nContent: %s", post.Title, post.URL, text)
	out, err := o.create(ctx, sys, user)
	if err != nil {
		slog.Error("openai: summarize error", "post_id", post.ID, "prompt_type", pt, "err", err)
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func systemPrompt(pt model.PromptType, language string) (string, error) {
	lang := langOrDefault(language)
	switch pt {
	case model.PromptConcise:
		return fmt.Sprintf(`
			Rewrite the text into a summary, write in %s, return 1-3 sentences (30-120 words).
			Keep only the central claim and the single most interesting detail.
			No preamble, no links.
			`, lang), nil
	case model.PromptDetailed:
		return fmt.Sprintf(`
			Rewrite the text into a summary, write in %s, return 3-6 sentences (120-300 words).
			Cover the main argument, supporting evidence, and any stated caveats.
			You must summarize in the author's writing style.
			`, lang), nil
	case model.PromptZen:
		return fmt.Sprintf(`
			Rewrite the text into a summary, write in %s, return 1-2 sentences (20-90 words).
			The summary should retain the deep meaning or deep wisdom of the text.
			The summary should be as short as possible.
			You must try your best to get the deep principal idea of the text, may be in ZEN way.
			`, lang), nil
	default:
		return "", fmt.Errorf("ai: unsupported prompt type %q", pt)
	}
}

func (o *OpenAIClient) create(ctx context.Context, system, user string) (string, error) {
	// Default timeout guard, if caller didn't set one
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 300*time.Second)
		defer cancel()
	}
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: 0.4,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

func langOrDefault(lang string) string {
	l := strings.TrimSpace(lang)
	if l == "" {
		return "English"
	}
	return l
}
