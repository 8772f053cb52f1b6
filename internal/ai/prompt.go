package ai

import (
	"encoding/json"
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	apperr "github.com/oskarkuder/lesson-notes-ai/internal/errors"
	"github.com/oskarkuder/lesson-notes-ai/internal/model"
)

// LanguageAuto asks the provider to detect the spoken language itself.
const LanguageAuto = "auto"

const autoPrompt = `You are an expert academic assistant. Detect the primary language of the following lecture transcript, then generate a comprehensive, well-structured set of notes in that language. Respond with a JSON object containing exactly these fields: "title" (a concise, descriptive title), "summary" (a 2-3 sentence summary), and "keyTopics" (an array of objects, each with a "topic" string and a "points" array of detailed bullet-point strings).`

const languagePromptFormat = `You are an expert academic assistant. The following lecture transcript is in %s. Generate a comprehensive, well-structured set of notes in %s. Respond with a JSON object containing exactly these fields: "title" (a concise, descriptive title), "summary" (a 2-3 sentence summary), and "keyTopics" (an array of objects, each with a "topic" string and a "points" array of detailed bullet-point strings).`

// notesPrompt builds the system prompt, spelling the language out by its
// English name when one was requested.
func notesPrompt(languageCode string) string {
	if languageCode == "" || languageCode == LanguageAuto {
		return autoPrompt
	}
	name := languageName(languageCode)
	return fmt.Sprintf(languagePromptFormat, name, name)
}

// languageName resolves a BCP 47 tag to the English name of its base
// language ("en-US" -> "English"), falling back to the raw code.
func languageName(code string) string {
	tag, err := language.Parse(code)
	if err != nil {
		return code
	}
	base, conf := tag.Base()
	if conf == language.No {
		return code
	}
	if name := display.English.Languages().Name(language.Make(base.String())); name != "" {
		return name
	}
	return code
}

// transcriptionLanguage maps the requested tag to the ISO 639-1 hint the
// transcription endpoint accepts; empty means no hint (auto-detect).
func transcriptionLanguage(code string) string {
	if code == "" || code == LanguageAuto {
		return ""
	}
	tag, err := language.Parse(code)
	if err != nil {
		return ""
	}
	base, conf := tag.Base()
	if conf == language.No {
		return ""
	}
	return base.String()
}

type notesPayload struct {
	Title     string          `json:"title"`
	Summary   string          `json:"summary"`
	KeyTopics model.KeyTopics `json:"keyTopics"`
}

// parseNotesPayload enforces the wire contract strictly: malformed or
// incomplete JSON is a hard failure, never repaired.
func parseNotesPayload(data []byte) (*notesPayload, error) {
	var payload notesPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("%w: invalid response format", apperr.ErrGeneration)
	}
	if payload.Title == "" || payload.Summary == "" || payload.KeyTopics == nil {
		return nil, fmt.Errorf("%w: response missing required fields", apperr.ErrGeneration)
	}
	return &payload, nil
}
