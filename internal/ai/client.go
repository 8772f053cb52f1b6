// Package ai is the generation boundary: audio in, structured lesson notes
// out. Any failure between here and the provider collapses into a single
// generation error; nothing is retried or repaired.
package ai

import (
	"bytes"
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	apperr "github.com/oskarkuder/lesson-notes-ai/internal/errors"
	"github.com/oskarkuder/lesson-notes-ai/internal/model"
)

// Result is the structured output of one generation call.
type Result struct {
	Transcription string
	Title         string
	Summary       string
	KeyTopics     model.KeyTopics
}

// Generator is implemented by the AI boundary client and faked in tests.
type Generator interface {
	GenerateNotes(ctx context.Context, audio []byte, mimeType, languageCode string) (*Result, error)
}

// Client generates notes in two provider calls: a transcription of the audio,
// then a chat completion structuring it into title/summary/key topics.
type Client struct {
	api             *openai.Client
	transcribeModel string
	notesModel      string
}

var _ Generator = (*Client)(nil)

// NewClient builds a client against the configured provider. baseURL is
// optional and overrides the provider endpoint.
func NewClient(apiKey, baseURL, transcribeModel, notesModel string) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &Client{
		api:             openai.NewClientWithConfig(cfg),
		transcribeModel: transcribeModel,
		notesModel:      notesModel,
	}
}

// GenerateNotes transcribes the audio and structures it into notes.
// languageCode is a BCP 47 tag or "auto" for automatic detection.
func (c *Client) GenerateNotes(ctx context.Context, audio []byte, mimeType, languageCode string) (*Result, error) {
	if len(audio) == 0 {
		return nil, fmt.Errorf("%w: empty recording", apperr.ErrGeneration)
	}

	req := openai.AudioRequest{
		Model:    c.transcribeModel,
		Reader:   bytes.NewReader(audio),
		FilePath: "recording" + extensionForMIME(mimeType),
	}
	if hint := transcriptionLanguage(languageCode); hint != "" {
		req.Language = hint
	}
	transcription, err := c.api.CreateTranscription(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: transcribe: %v", apperr.ErrGeneration, err)
	}
	if transcription.Text == "" {
		return nil, fmt.Errorf("%w: empty transcription", apperr.ErrGeneration)
	}

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.notesModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: notesPrompt(languageCode)},
			{Role: openai.ChatMessageRoleUser, Content: transcription.Text},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: structure notes: %v", apperr.ErrGeneration, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: provider returned no choices", apperr.ErrGeneration)
	}

	payload, err := parseNotesPayload([]byte(resp.Choices[0].Message.Content))
	if err != nil {
		return nil, err
	}
	return &Result{
		Transcription: transcription.Text,
		Title:         payload.Title,
		Summary:       payload.Summary,
		KeyTopics:     payload.KeyTopics,
	}, nil
}

func extensionForMIME(mimeType string) string {
	switch mimeType {
	case "audio/webm":
		return ".webm"
	case "audio/ogg":
		return ".ogg"
	case "audio/mpeg", "audio/mp3":
		return ".mp3"
	case "audio/wav", "audio/x-wav":
		return ".wav"
	case "audio/mp4", "audio/m4a":
		return ".m4a"
	default:
		return ".webm"
	}
}
