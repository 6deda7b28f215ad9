package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dpetrov/notewise/internal/model"
	"github.com/dpetrov/notewise/internal/service"
	"github.com/dpetrov/notewise/internal/websocket"
)

type NoteHandler struct {
	notes  *service.NoteService
	hub    *websocket.Hub
	logger *slog.Logger
}

func NewNoteHandler(notes *service.NoteService, hub *websocket.Hub, logger *slog.Logger) *NoteHandler {
	return &NoteHandler{notes: notes, hub: hub, logger: logger}
}

func (h *NoteHandler) broadcast(msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(msg)
	}
}

type noteRequest struct {
	Title     *string         `json:"title"`
	Content   *string         `json:"content"`
	Tags      json.RawMessage `json:"tags"`
	EventDate *string         `json:"event_date"`
	EventTime *string         `json:"event_time"`
}

func (h *NoteHandler) List(w http.ResponseWriter, r *http.Request) {
	notes, err := h.notes.List()
	if err != nil {
		h.logger.Error("list notes", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list notes"})
		return
	}
	if notes == nil {
		notes = []model.Note{}
	}
	writeJSON(w, http.StatusOK, notes)
}

func (h *NoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req noteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	if req.Title == nil || strings.TrimSpace(*req.Title) == "" || req.Content == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "title and content are required"})
		return
	}

	note, err := h.notes.Create(service.CreateNoteInput{
		Title:     *req.Title,
		Content:   *req.Content,
		Tags:      req.Tags,
		EventDate: req.EventDate,
		EventTime: req.EventTime,
	})
	if err != nil {
		h.logger.Error("create note", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create note"})
		return
	}

	h.broadcast(websocket.NewMessage("note", "created", note.ID, nil))

	writeJSON(w, http.StatusCreated, note)
}

func (h *NoteHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	note, err := h.notes.Get(id)
	if errors.Is(err, model.ErrNoteNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "note not found"})
		return
	}
	if err != nil {
		h.logger.Error("get note", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get note"})
		return
	}
	writeJSON(w, http.StatusOK, note)
}

func (h *NoteHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	var req noteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	note, err := h.notes.Update(id, service.UpdateNoteInput{
		Title:      req.Title,
		Content:    req.Content,
		Tags:       req.Tags,
		UpdateTags: len(req.Tags) > 0 && string(req.Tags) != "null",
		EventDate:  req.EventDate,
		EventTime:  req.EventTime,
	})
	if errors.Is(err, model.ErrNoteNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "note not found"})
		return
	}
	if err != nil {
		h.logger.Error("update note", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update note"})
		return
	}

	h.broadcast(websocket.NewMessage("note", "updated", id, nil))

	writeJSON(w, http.StatusOK, note)
}

func (h *NoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	err = h.notes.Delete(id)
	if errors.Is(err, model.ErrNoteNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "note not found"})
		return
	}
	if err != nil {
		h.logger.Error("delete note", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete note"})
		return
	}

	h.broadcast(websocket.NewMessage("note", "deleted", id, nil))

	w.WriteHeader(http.StatusNoContent)
}

func (h *NoteHandler) Search(w http.ResponseWriter, r *http.Request) {
	notes, err := h.notes.Search(r.URL.Query().Get("q"))
	if err != nil {
		h.logger.Error("search notes", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to search notes"})
		return
	}
	if notes == nil {
		notes = []model.Note{}
	}
	writeJSON(w, http.StatusOK, notes)
}

func (h *NoteHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Order *[]int64 `json:"order"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Order == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": `invalid payload, expected {"order": [ids...]}`})
		return
	}

	if err := h.notes.Reorder(*req.Order); err != nil {
		h.logger.Error("reorder notes", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to reorder notes"})
		return
	}

	h.broadcast(websocket.NewMessage("note", "reordered", 0, nil))

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *NoteHandler) Translate(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	// Body is optional; an absent or empty body means the default target.
	var req struct {
		TargetLanguage string `json:"target_language"`
	}
	json.NewDecoder(r.Body).Decode(&req)
	if req.TargetLanguage == "" {
		req.TargetLanguage = "French"
	}

	result, err := h.notes.Translate(r.Context(), id, req.TargetLanguage)
	if errors.Is(err, model.ErrNoteNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "note not found"})
		return
	}
	if err != nil {
		h.logger.Error("translate note", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	if result.NoTranslationNeeded {
		writeJSON(w, http.StatusOK, map[string]bool{"no_translation_needed": true})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"translated_title": result.Title,
		"translated":       result.Content,
		"translated_tags":  result.Tags,
	})
}

func (h *NoteHandler) GenerateTags(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	var req struct {
		Lang string `json:"lang"`
	}
	json.NewDecoder(r.Body).Decode(&req)
	if req.Lang == "" {
		req.Lang = "English"
	}

	generated, err := h.notes.GenerateTags(r.Context(), id, req.Lang)
	if errors.Is(err, model.ErrNoteNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "note not found"})
		return
	}
	if err != nil {
		h.logger.Error("generate tags", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	if generated == nil {
		generated = []string{}
	}

	h.broadcast(websocket.NewMessage("note", "tagged", id, nil))

	writeJSON(w, http.StatusOK, map[string][]string{"tags": generated})
}

func (h *NoteHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title string `json:"title"`
		Text  string `json:"text"`
		Lang  string `json:"lang"`
	}
	json.NewDecoder(r.Body).Decode(&req)

	if strings.TrimSpace(req.Title) == "" && strings.TrimSpace(req.Text) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "no title or text provided"})
		return
	}

	note, err := h.notes.Generate(r.Context(), service.GenerateNoteInput{
		Title: req.Title,
		Text:  req.Text,
		Lang:  req.Lang,
	})
	if errors.Is(err, service.ErrNoInput) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "no title or text provided"})
		return
	}
	if err != nil {
		h.logger.Error("generate note", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	h.broadcast(websocket.NewMessage("note", "created", note.ID, nil))

	writeJSON(w, http.StatusCreated, note)
}
