package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dpetrov/notewise/internal/model"
	"github.com/dpetrov/notewise/internal/store"
	"github.com/dpetrov/notewise/internal/websocket"
)

type UserHandler struct {
	users  *store.UserStore
	hub    *websocket.Hub
	logger *slog.Logger
}

func NewUserHandler(users *store.UserStore, hub *websocket.Hub, logger *slog.Logger) *UserHandler {
	return &UserHandler{users: users, hub: hub, logger: logger}
}

func (h *UserHandler) broadcast(msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(msg)
	}
}

type userRequest struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.GetAll()
	if err != nil {
		h.logger.Error("list users", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list users"})
		return
	}
	if users == nil {
		users = []model.User{}
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	if req.Username == nil || strings.TrimSpace(*req.Username) == "" ||
		req.Email == nil || strings.TrimSpace(*req.Email) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "username and email are required"})
		return
	}

	user, err := h.users.Create(*req.Username, *req.Email)
	if err != nil {
		h.logger.Error("create user", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create user"})
		return
	}

	h.broadcast(websocket.NewMessage("user", "created", user.ID, nil))

	writeJSON(w, http.StatusCreated, user)
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	user, err := h.users.GetByID(id)
	if err != nil {
		h.logger.Error("get user", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get user"})
		return
	}
	if user == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "user not found"})
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	existing, err := h.users.GetByID(id)
	if err != nil {
		h.logger.Error("get user", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get user"})
		return
	}
	if existing == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "user not found"})
		return
	}

	var req userRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	username := existing.Username
	if req.Username != nil {
		username = *req.Username
	}
	email := existing.Email
	if req.Email != nil {
		email = *req.Email
	}

	user, err := h.users.Update(id, username, email)
	if err != nil {
		h.logger.Error("update user", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update user"})
		return
	}

	h.broadcast(websocket.NewMessage("user", "updated", id, nil))

	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	existing, err := h.users.GetByID(id)
	if err != nil {
		h.logger.Error("get user", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get user"})
		return
	}
	if existing == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "user not found"})
		return
	}

	if err := h.users.Delete(id); err != nil {
		h.logger.Error("delete user", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete user"})
		return
	}

	h.broadcast(websocket.NewMessage("user", "deleted", id, nil))

	w.WriteHeader(http.StatusNoContent)
}
