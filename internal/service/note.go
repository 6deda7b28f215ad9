// Package service orchestrates the note store and the LLM gateway: manual
// reordering, the translate-if-needed policy, and the generate-then-tag
// workflows live here.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/dpetrov/notewise/internal/llm"
	"github.com/dpetrov/notewise/internal/model"
	"github.com/dpetrov/notewise/internal/store"
	"github.com/dpetrov/notewise/internal/tags"
)

// ErrNoInput is returned by Generate when neither a title nor free text was
// provided.
var ErrNoInput = errors.New("title or text required")

// Gateway is the slice of the LLM gateway the note workflows consume.
type Gateway interface {
	Translate(ctx context.Context, text, targetLanguage string) (string, error)
	TranslateTags(ctx context.Context, rawTags any, targetLanguage string) (string, error)
	DetectLanguage(ctx context.Context, text string) (string, error)
	GenerateFromTitle(ctx context.Context, title, lang string) (string, error)
	ExtractNote(ctx context.Context, text, lang string) (llm.ExtractResult, error)
}

type NoteService struct {
	store  *store.NoteStore
	llm    Gateway
	logger *slog.Logger
}

func NewNoteService(s *store.NoteStore, gw Gateway, logger *slog.Logger) *NoteService {
	return &NoteService{store: s, llm: gw, logger: logger}
}

type CreateNoteInput struct {
	Title     string
	Content   string
	Tags      any
	EventDate *string
	EventTime *string
}

// UpdateNoteInput carries partial updates; nil pointer fields keep the
// stored value. Tags are only replaced when UpdateTags is set, so an absent
// tags key leaves stored tags alone.
type UpdateNoteInput struct {
	Title      *string
	Content    *string
	Tags       any
	UpdateTags bool
	EventDate  *string
	EventTime  *string
}

func (s *NoteService) List() ([]model.Note, error) {
	return s.store.GetAll()
}

func (s *NoteService) Get(id int64) (*model.Note, error) {
	note, err := s.store.GetByID(id)
	if err != nil {
		return nil, err
	}
	if note == nil {
		return nil, model.ErrNoteNotFound
	}
	return note, nil
}

// Search returns notes matching the query; a blank query short-circuits to
// an empty result without touching the store.
func (s *NoteService) Search(query string) ([]model.Note, error) {
	if strings.TrimSpace(query) == "" {
		return []model.Note{}, nil
	}
	return s.store.Search(query)
}

// Create stores a new note positioned above all existing ones.
func (s *NoteService) Create(in CreateNoteInput) (*model.Note, error) {
	max, err := s.store.MaxOrder()
	if err != nil {
		return nil, err
	}

	return s.store.Create(store.NoteFields{
		Title:     in.Title,
		Content:   in.Content,
		Order:     max + 1,
		Tags:      tags.Serialize(tags.Normalize(in.Tags)),
		EventDate: in.EventDate,
		EventTime: in.EventTime,
	})
}

func (s *NoteService) Update(id int64, in UpdateNoteInput) (*model.Note, error) {
	existing, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	fields := store.NoteFields{
		Title:     existing.Title,
		Content:   existing.Content,
		Order:     existing.Order,
		Tags:      tags.Serialize(existing.Tags),
		EventDate: existing.EventDate,
		EventTime: existing.EventTime,
	}
	if in.Title != nil {
		fields.Title = *in.Title
	}
	if in.Content != nil {
		fields.Content = *in.Content
	}
	if in.UpdateTags {
		fields.Tags = tags.Serialize(tags.Normalize(in.Tags))
	}
	if in.EventDate != nil {
		fields.EventDate = in.EventDate
	}
	if in.EventTime != nil {
		fields.EventTime = in.EventTime
	}

	return s.store.Update(id, fields)
}

func (s *NoteService) Delete(id int64) error {
	if _, err := s.Get(id); err != nil {
		return err
	}
	return s.store.Delete(id)
}

// Reorder applies the requested display sequence: the first id gets the
// highest order value so listing by order descending reproduces the
// sequence. Ids missing from the store are skipped silently.
func (s *NoteService) Reorder(ids []int64) error {
	updates := make([]store.OrderUpdate, len(ids))
	for i, id := range ids {
		updates[i] = store.OrderUpdate{ID: id, Order: len(ids) - i}
	}
	return s.store.UpdateSortOrders(updates)
}

// Translation is the outcome of a translate preview. The stored note is
// never mutated.
type Translation struct {
	NoTranslationNeeded bool
	Title               string
	Content             string
	Tags                string
}

// Translate previews the note in the target language. If language detection
// reports the note is already in the target language the translation is
// skipped; if detection itself fails the translation proceeds anyway.
func (s *NoteService) Translate(ctx context.Context, id int64, targetLanguage string) (Translation, error) {
	note, err := s.Get(id)
	if err != nil {
		return Translation{}, err
	}

	combined := strings.TrimSpace(note.Title + " " + note.Content + " " + tags.Flatten(note.Tags))
	if combined == "" {
		return Translation{NoTranslationNeeded: true}, nil
	}

	detected, err := s.llm.DetectLanguage(ctx, combined)
	if err != nil {
		s.logger.Warn("language detection failed, translating anyway", "note_id", id, "error", err)
	} else if strings.EqualFold(detected, targetLanguage) {
		return Translation{NoTranslationNeeded: true}, nil
	}

	translatedTitle, err := s.llm.Translate(ctx, note.Title, targetLanguage)
	if err != nil {
		return Translation{}, err
	}
	translatedContent, err := s.llm.Translate(ctx, note.Content, targetLanguage)
	if err != nil {
		return Translation{}, err
	}

	var translatedTags string
	if len(note.Tags) > 0 {
		translatedTags, err = s.llm.TranslateTags(ctx, note.Tags, targetLanguage)
		if err != nil {
			return Translation{}, err
		}
	}

	return Translation{
		Title:   translatedTitle,
		Content: translatedContent,
		Tags:    translatedTags,
	}, nil
}

// GenerateTags derives tags from the note's content (or title when content
// is empty) and persists them when the extraction yields any. The returned
// list may be empty; an unparsable model response counts as no tags.
func (s *NoteService) GenerateTags(ctx context.Context, id int64, lang string) ([]string, error) {
	note, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	text := note.Content
	if text == "" {
		text = note.Title
	}

	res, err := s.llm.ExtractNote(ctx, text, lang)
	if err != nil {
		return nil, err
	}

	if len(res.Tags) > 0 {
		if _, err := s.store.SetTags(id, tags.Serialize(res.Tags)); err != nil {
			return nil, err
		}
	}

	return res.Tags, nil
}

type GenerateNoteInput struct {
	Title string
	Text  string
	Lang  string
}

// Generate creates a note from a short title or free text. The title path
// expands the title into content; the text path extracts a structured note,
// falling back to a truncated title and the raw text when the extraction
// response is unparsable. After creation a second extraction pass derives
// tags from the generated content; its failure never fails the call.
func (s *NoteService) Generate(ctx context.Context, in GenerateNoteInput) (*model.Note, error) {
	lang := in.Lang
	if lang == "" {
		lang = "English"
	}

	title := strings.TrimSpace(in.Title)
	var content string

	if title != "" {
		generated, err := s.llm.GenerateFromTitle(ctx, title, lang)
		if err != nil {
			return nil, err
		}
		content = generated
	} else {
		text := strings.TrimSpace(in.Text)
		if text == "" {
			return nil, ErrNoInput
		}

		res, err := s.llm.ExtractNote(ctx, text, lang)
		if err != nil {
			return nil, err
		}
		title = res.Title
		if title == "" {
			title = truncate(text, 50) + "..."
		}
		content = res.Notes
		if content == "" {
			content = text
		}
	}

	max, err := s.store.MaxOrder()
	if err != nil {
		return nil, err
	}
	note, err := s.store.Create(store.NoteFields{
		Title:   title,
		Content: content,
		Order:   max + 1,
	})
	if err != nil {
		return nil, err
	}

	// Best-effort enrichment: the note is already created, so a tagging
	// failure is logged and swallowed rather than reported.
	if res, err := s.llm.ExtractNote(ctx, content, lang); err != nil {
		s.logger.Warn("tag enrichment failed", "note_id", note.ID, "error", err)
	} else if len(res.Tags) > 0 {
		if tagged, err := s.store.SetTags(note.ID, tags.Serialize(res.Tags)); err != nil {
			s.logger.Warn("persist generated tags failed", "note_id", note.ID, "error", err)
		} else {
			note = tagged
		}
	}

	return note, nil
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
