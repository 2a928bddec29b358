package main

import (
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.0-flash"

type geminiCaller struct {
	client    *genai.Client
	model     string
	system    string
	maxTokens int32
}

func newGeminiCaller(ctx context.Context, cfg Config) (*geminiCaller, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating Gemini client: %w", err)
	}

	return &geminiCaller{
		client:    client,
		model:     cfg.GeminiModel,
		system:    cfg.SystemPrompt,
		maxTokens: int32(cfg.MaxOutputTokens),
	}, nil
}

func (c *geminiCaller) Call(ctx context.Context, batch []json.RawMessage) (Response, error) {
	text, err := batchText(batch)
	if err != nil {
		return nil, err
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(text),
		}, genai.RoleUser),
	}

	config := &genai.GenerateContentConfig{
		MaxOutputTokens: c.maxTokens,
	}
	if c.system != "" {
		config.SystemInstruction = genai.NewContentFromText(c.system, genai.RoleUser)
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, config)
	if err != nil {
		return nil, fmt.Errorf("generating content: %w", err)
	}

	return geminiResponse(c.model, resp), nil
}

// geminiResponse reshapes a Gemini reply into the output/usage layout the
// merger and writer expect.
func geminiResponse(model string, resp *genai.GenerateContentResponse) Response {
	text := resp.Text()

	r := Response{
		"id":     resp.ResponseID,
		"object": "response",
		"model":  model,
		"output": []any{
			map[string]any{
				"type": "message",
				"role": "assistant",
				"content": []any{
					map[string]any{"type": "output_text", "text": text},
				},
			},
		},
		"output_text": text,
	}
	if resp.ModelVersion != "" {
		r["model"] = resp.ModelVersion
	}

	if u := resp.UsageMetadata; u != nil {
		r["usage"] = map[string]any{
			"input_tokens":  int64(u.PromptTokenCount),
			"output_tokens": int64(u.CandidatesTokenCount),
			"total_tokens":  int64(u.TotalTokenCount),
			"input_tokens_details": map[string]any{
				"cached_tokens": int64(u.CachedContentTokenCount),
			},
			"output_tokens_details": map[string]any{
				"reasoning_tokens": int64(u.ThoughtsTokenCount),
			},
		}
	}

	return r
}
