package main

import (
	"context"
	"encoding/json"
	"fmt"
)

// Caller sends one batch to the model and returns its raw reply.
type Caller interface {
	Call(ctx context.Context, batch []json.RawMessage) (Response, error)
}

type InputMode string

const (
	InputMessage InputMode = "message"
	InputString  InputMode = "string"
	InputNone    InputMode = "none"
)

func parseInputMode(s string) (InputMode, error) {
	switch m := InputMode(s); m {
	case InputMessage, InputString, InputNone:
		return m, nil
	}
	return "", fmt.Errorf("unknown input mode %q, use message/string/none", s)
}

func (m InputMode) loadsData() bool {
	return m != InputNone
}

// batchText is the payload embedded in a request: the batch as a JSON array.
func batchText(batch []json.RawMessage) (string, error) {
	if batch == nil {
		batch = []json.RawMessage{}
	}
	data, err := json.Marshal(batch)
	if err != nil {
		return "", fmt.Errorf("encoding batch: %w", err)
	}
	return string(data), nil
}

func newCaller(ctx context.Context, cfg Config) (Caller, error) {
	switch cfg.Provider {
	case ProviderGemini:
		c, err := newGeminiCaller(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return newOpenAICaller(cfg), nil
	}
}
