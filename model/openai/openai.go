// Package openai provides a model.Invoker backed by the OpenAI-compatible
// chat completion API.
package openai

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/museworks/ideaflow/model"
)

const defaultModel = "gpt-4o-mini"

// Invoker calls a chat completion endpoint with a fixed model, temperature
// and optional system prompt. It satisfies model.Invoker.
type Invoker struct {
	name         string
	model        string
	temperature  float64
	systemPrompt string
	client       openai.Client
}

// Option configures an Invoker.
type Option func(*options)

type options struct {
	model        string
	temperature  float64
	systemPrompt string
	apiKey       string
	baseURL      string
	extraOptions []option.RequestOption
}

// WithModel sets the provider-side model identifier.
func WithModel(m string) Option {
	return func(o *options) { o.model = m }
}

// WithTemperature fixes the sampling temperature.
func WithTemperature(t float64) Option {
	return func(o *options) { o.temperature = t }
}

// WithSystemPrompt sets a system message sent before every prompt.
func WithSystemPrompt(p string) Option {
	return func(o *options) { o.systemPrompt = p }
}

// WithAPIKey overrides the OPENAI_API_KEY environment variable.
func WithAPIKey(key string) Option {
	return func(o *options) { o.apiKey = key }
}

// WithBaseURL points the client at an OpenAI-compatible endpoint.
func WithBaseURL(url string) Option {
	return func(o *options) { o.baseURL = url }
}

// WithExtraOptions forwards additional request options to the underlying
// client.
func WithExtraOptions(opts ...option.RequestOption) Option {
	return func(o *options) { o.extraOptions = append(o.extraOptions, opts...) }
}

// New creates an Invoker with the given caller-facing name.
func New(name string, opts ...Option) *Invoker {
	o := options{
		model:       defaultModel,
		temperature: 0.7,
		apiKey:      os.Getenv("OPENAI_API_KEY"),
	}
	for _, opt := range opts {
		opt(&o)
	}
	clientOpts := []option.RequestOption{option.WithAPIKey(o.apiKey)}
	if o.baseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(o.baseURL))
	}
	clientOpts = append(clientOpts, o.extraOptions...)
	return &Invoker{
		name:         name,
		model:        o.model,
		temperature:  o.temperature,
		systemPrompt: o.systemPrompt,
		client:       openai.NewClient(clientOpts...),
	}
}

// Invoke implements model.Invoker.
func (m *Invoker) Invoke(ctx context.Context, prompt string) (string, error) {
	if prompt == "" {
		return "", errors.New("prompt cannot be empty")
	}
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if m.systemPrompt != "" {
		messages = append(messages, openai.SystemMessage(m.systemPrompt))
	}
	messages = append(messages, openai.UserMessage(prompt))

	resp, err := m.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(m.model),
		Messages:    messages,
		Temperature: openai.Float(m.temperature),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// Info implements model.Invoker.
func (m *Invoker) Info() model.Info {
	return model.Info{
		Name:        m.name,
		Model:       m.model,
		Temperature: m.temperature,
	}
}
