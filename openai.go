package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/responses"
	"github.com/openai/openai-go/v3/shared"
)

const (
	promptVersion          = "25"
	defaultMaxOutputTokens = 16384
)

var includeSources = responses.ResponseIncludable("web_search_call.action.sources")

type openaiCaller struct {
	client    openai.Client
	promptID  string
	mode      InputMode
	maxTokens int64
}

func newOpenAICaller(cfg Config) *openaiCaller {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.OpenAIKey),
		option.WithMaxRetries(0),
	}
	if cfg.OpenAIBaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.OpenAIBaseURL))
	}

	return &openaiCaller{
		client:    openai.NewClient(opts...),
		promptID:  cfg.PromptID,
		mode:      cfg.InputMode,
		maxTokens: int64(cfg.MaxOutputTokens),
	}
}

func (c *openaiCaller) Call(ctx context.Context, batch []json.RawMessage) (Response, error) {
	params, err := c.params(batch)
	if err != nil {
		return nil, err
	}

	// The SDK omits an empty reasoning struct; the prompt expects "reasoning": {}.
	resp, err := c.client.Responses.New(ctx, params, option.WithJSONSet("reasoning", map[string]any{}))
	if err != nil {
		return nil, fmt.Errorf("creating response: %w", err)
	}

	return decodeResponse([]byte(resp.RawJSON()))
}

func (c *openaiCaller) params(batch []json.RawMessage) (responses.ResponseNewParams, error) {
	params := responses.ResponseNewParams{
		Prompt: responses.ResponsePromptParam{
			ID:      c.promptID,
			Version: openai.String(promptVersion),
		},
		Text: responses.ResponseTextConfigParam{
			Format: responses.ResponseFormatTextConfigUnionParam{
				OfText: &shared.ResponseFormatTextParam{},
			},
		},
		Reasoning:       shared.ReasoningParam{},
		MaxOutputTokens: openai.Int(c.maxTokens),
		Store:           openai.Bool(false),
		Include:         []responses.ResponseIncludable{includeSources},
	}

	switch c.mode {
	case InputNone:
		params.Input = responses.ResponseNewParamsInputUnion{
			OfInputItemList: responses.ResponseInputParam{},
		}
	case InputString:
		text, err := batchText(batch)
		if err != nil {
			return params, err
		}
		params.Input = responses.ResponseNewParamsInputUnion{
			OfString: openai.String(text),
		}
	default:
		text, err := batchText(batch)
		if err != nil {
			return params, err
		}
		params.Input = responses.ResponseNewParamsInputUnion{
			OfInputItemList: responses.ResponseInputParam{
				responses.ResponseInputItemParamOfMessage(text, responses.EasyInputMessageRoleUser),
			},
		}
	}

	return params, nil
}

// apiStatus reports the HTTP status carried by an API error, or 0.
func apiStatus(err error) int {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
