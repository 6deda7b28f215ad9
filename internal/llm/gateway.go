package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/dpetrov/notewise/internal/tags"
)

const (
	translateSystemPrompt = "You are a helpful assistant that translates text to other languages."

	translateTagSystemPrompt = "You are a strict translator. When asked to translate a single word or short phrase, " +
		"respond with ONLY the translated word or phrase in the target language. " +
		"Do NOT add any extra text, explanation, punctuation, or quotes."

	detectSystemPrompt = "You are a helpful assistant that detects the language of text. " +
		"Respond with only the language name in English (e.g., 'English', 'French', 'Spanish', etc.)."

	extractSystemPrompt = `Today's date and time: %s.
Extract the user's notes into the following structured fields:
1. Title: A concise title of the notes less than 5 words
2. Notes: The notes based on user input written in full sentences.
3. Tags (A list): At most 3 Keywords or tags that categorize the content of the notes.
Output in JSON format without ` + "```json" + `. Output title and notes in the language: %s.
4. Event date
5. Event time
Example:
Input: "Badminton tmr 5pm @polyu".
Output:
{
 "Title": "Badminton at PolyU",
 "Notes": "Remember to play badminton at 5pm tomorrow at PolyU.",
 "Tags": ["badminton", "sports"],
 "Event date": "2023-10-06",
 "Event time": "17:00"
}`
)

type completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Gateway wraps the completion client with the prompt construction and
// response cleanup for each note workflow. It performs no retries: a failed
// completion surfaces to the caller as-is.
type Gateway struct {
	client completer
	now    func() time.Time
}

type GatewayOption func(*Gateway)

// WithClock overrides the clock used to stamp the extraction prompt.
func WithClock(now func() time.Time) GatewayOption {
	return func(g *Gateway) {
		g.now = now
	}
}

func NewGateway(client completer, opts ...GatewayOption) *Gateway {
	g := &Gateway{client: client, now: time.Now}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Translate translates free text to the target language. The model output is
// returned as-is.
func (g *Gateway) Translate(ctx context.Context, text, targetLanguage string) (string, error) {
	user := fmt.Sprintf("Translate the following text to %s: %s", targetLanguage, text)
	return g.client.Complete(ctx, translateSystemPrompt, user)
}

// TranslateTags translates each tag independently and joins the cleaned
// results with ", ". One completion call per tag keeps the model from
// conflating or reordering a batch; tag counts are small so the extra round
// trips are acceptable. A tag whose call fails or cleans to empty is dropped.
func (g *Gateway) TranslateTags(ctx context.Context, rawTags any, targetLanguage string) (string, error) {
	list := tags.Normalize(rawTags)
	if len(list) == 0 {
		return "", nil
	}

	var translations []string
	for _, tag := range list {
		user := fmt.Sprintf("Translate the following word to %s: %s", targetLanguage, tag)
		res, err := g.client.Complete(ctx, translateTagSystemPrompt, user)
		if err != nil {
			continue
		}
		if cleaned := cleanTagResponse(res); cleaned != "" {
			translations = append(translations, cleaned)
		}
	}

	return strings.Join(translations, ", "), nil
}

// cleanTagResponse strips the decoration models add around a single-word
// answer: backticks, a bracketed array, surrounding quotes, extra lines.
func cleanTagResponse(res string) string {
	res = strings.TrimSpace(strings.ReplaceAll(res, "`", ""))

	if strings.HasPrefix(res, "[") && strings.HasSuffix(res, "]") {
		var parsed []any
		if err := json.Unmarshal([]byte(res), &parsed); err == nil && len(parsed) > 0 {
			res = strings.TrimSpace(fmt.Sprintf("%v", parsed[0]))
		} else {
			res = strings.TrimSuffix(strings.TrimPrefix(res, "["), "]")
		}
	}

	if len(res) >= 2 {
		if (res[0] == '"' && res[len(res)-1] == '"') || (res[0] == '\'' && res[len(res)-1] == '\'') {
			res = strings.TrimSpace(res[1 : len(res)-1])
		}
	}

	if strings.Contains(res, "\n") {
		for _, line := range strings.Split(res, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				return line
			}
		}
	}

	return strings.TrimSpace(res)
}

// DetectLanguage asks the model for the English name of the language the
// text is written in. Callers must not pass empty text.
func (g *Gateway) DetectLanguage(ctx context.Context, text string) (string, error) {
	user := fmt.Sprintf("What language is this text written in? Text: %s", text)
	res, err := g.client.Complete(ctx, detectSystemPrompt, user)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(res), nil
}

// GenerateFromTitle expands a short title into full-sentence note content in
// the given language. The model output is returned unmodified.
func (g *Gateway) GenerateFromTitle(ctx context.Context, title, lang string) (string, error) {
	system := fmt.Sprintf(
		"You are a helpful assistant that expands short titles into detailed notes in %s. "+
			"Write concise, clear notes in full sentences based on the title.", lang)
	user := fmt.Sprintf("Write detailed notes for the title: %s", title)
	return g.client.Complete(ctx, system, user)
}

// ExtractResult is the outcome of a structured extraction. When the model
// response is not valid JSON, Parsed is false and Raw carries the original
// text so prompt drift can be diagnosed; that is a degraded result, not an
// error.
type ExtractResult struct {
	Title     string
	Notes     string
	Tags      []string
	EventDate string
	EventTime string
	Raw       string
	Parsed    bool
}

type extractPayload struct {
	Title     string `json:"Title"`
	Notes     string `json:"Notes"`
	Tags      []any  `json:"Tags"`
	EventDate string `json:"Event date"`
	EventTime string `json:"Event time"`
}

// ExtractNote asks the model to break free text into title, notes, tags and
// event metadata. Only a transport failure is an error; an unparsable model
// response comes back with Parsed=false.
func (g *Gateway) ExtractNote(ctx context.Context, text, lang string) (ExtractResult, error) {
	system := fmt.Sprintf(extractSystemPrompt, g.now().Format("2006-01-02 15:04"), lang)
	user := fmt.Sprintf("Extract structured notes from the following text: %s", text)

	res, err := g.client.Complete(ctx, system, user)
	if err != nil {
		return ExtractResult{}, err
	}

	var payload extractPayload
	if err := json.Unmarshal([]byte(res), &payload); err != nil {
		return ExtractResult{Raw: res}, nil
	}

	return ExtractResult{
		Title:     payload.Title,
		Notes:     payload.Notes,
		Tags:      tags.Normalize(payload.Tags),
		EventDate: payload.EventDate,
		EventTime: payload.EventTime,
		Raw:       res,
		Parsed:    true,
	}, nil
}
