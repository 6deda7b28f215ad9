package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/dpetrov/notewise/internal/backup"
	"github.com/dpetrov/notewise/internal/handler"
	"github.com/dpetrov/notewise/internal/llm"
	"github.com/dpetrov/notewise/internal/middleware"
	"github.com/dpetrov/notewise/internal/service"
	"github.com/dpetrov/notewise/internal/store"
	ws "github.com/dpetrov/notewise/internal/websocket"
)

type Server struct {
	db      *sql.DB
	hub     *ws.Hub
	noteH   *handler.NoteHandler
	userH   *handler.UserHandler
	backupH *handler.BackupHandler
	logger  *slog.Logger
}

func New(db *sql.DB, llmClient *llm.Client, backupCfg backup.Config, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	noteStore := store.NewNoteStore(db)
	userStore := store.NewUserStore(db)

	gateway := llm.NewGateway(llmClient)
	noteSvc := service.NewNoteService(noteStore, gateway, logger.With("component", "note_service"))

	backupMgr := backup.NewManager(backupCfg, db, logger.With("component", "backup"), func(s backup.Status) {
		hub.Broadcast(ws.NewMessage("backup", string(s.State), 0, nil))
	})

	return &Server{
		db:      db,
		hub:     hub,
		noteH:   handler.NewNoteHandler(noteSvc, hub, logger.With("component", "note")),
		userH:   handler.NewUserHandler(userStore, hub, logger.With("component", "user")),
		backupH: handler.NewBackupHandler(backupMgr, logger.With("component", "backup")),
		logger:  logger,
	}
}

// Backups returns the snapshot manager so main can run its schedule loop.
func (s *Server) Backups() *backup.Manager {
	return s.backupH.Manager()
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	// Note routes
	mux.HandleFunc("GET /notes", s.noteH.List)
	mux.HandleFunc("POST /notes", s.noteH.Create)
	mux.HandleFunc("GET /notes/search", s.noteH.Search)
	mux.HandleFunc("POST /notes/reorder", s.noteH.Reorder)
	mux.HandleFunc("POST /notes/generate", s.noteH.Generate)
	mux.HandleFunc("GET /notes/{id}", s.noteH.Get)
	mux.HandleFunc("PUT /notes/{id}", s.noteH.Update)
	mux.HandleFunc("DELETE /notes/{id}", s.noteH.Delete)
	mux.HandleFunc("POST /notes/{id}/translate", s.noteH.Translate)
	mux.HandleFunc("POST /notes/{id}/generate-tags", s.noteH.GenerateTags)

	// User routes
	mux.HandleFunc("GET /users", s.userH.List)
	mux.HandleFunc("POST /users", s.userH.Create)
	mux.HandleFunc("GET /users/{id}", s.userH.Get)
	mux.HandleFunc("PUT /users/{id}", s.userH.Update)
	mux.HandleFunc("DELETE /users/{id}", s.userH.Delete)

	// Backup routes
	mux.HandleFunc("GET /backup/status", s.backupH.Status)
	mux.HandleFunc("GET /backup/snapshots", s.backupH.List)
	mux.HandleFunc("POST /backup/run", s.backupH.Run)
	mux.HandleFunc("POST /backup/restore", s.backupH.Restore)

	// Live update feed
	mux.Handle("GET /ws", ws.Handle(s.hub, s.logger.With("component", "websocket")))

	mux.HandleFunc("GET /health", s.healthHandler)

	return middleware.RequestLogger(s.logger.With("component", "http"))(mux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
