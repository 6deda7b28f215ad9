package store

import (
	"database/sql"
	"fmt"

	"github.com/dpetrov/notewise/internal/model"
	"github.com/dpetrov/notewise/internal/tags"
)

type NoteStore struct {
	db *sql.DB
}

func NewNoteStore(db *sql.DB) *NoteStore {
	return &NoteStore{db: db}
}

// NoteFields carries the writable columns of a note. Tags holds the
// serialized storage form (JSON array or nil), produced by the tags package.
type NoteFields struct {
	Title     string
	Content   string
	Order     int
	Tags      *string
	EventDate *string
	EventTime *string
}

// OrderUpdate assigns a new manual order value to one note.
type OrderUpdate struct {
	ID    int64
	Order int
}

func scanNote(scanner interface{ Scan(...any) error }) (*model.Note, error) {
	var n model.Note
	var storedTags sql.NullString
	var eventDate, eventTime sql.NullString

	err := scanner.Scan(
		&n.ID, &n.Title, &n.Content, &n.Order, &storedTags,
		&eventDate, &eventTime, &n.CreatedAt, &n.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	n.Tags = []string{}
	if storedTags.Valid {
		if decoded := tags.Normalize(storedTags.String); decoded != nil {
			n.Tags = decoded
		}
	}
	if eventDate.Valid {
		n.EventDate = &eventDate.String
	}
	if eventTime.Valid {
		n.EventTime = &eventTime.String
	}
	return &n, nil
}

const noteCols = `id, title, content, sort_order, tags, event_date, event_time, created_at, updated_at`

func (s *NoteStore) Create(f NoteFields) (*model.Note, error) {
	result, err := s.db.Exec(
		`INSERT INTO notes (title, content, sort_order, tags, event_date, event_time) VALUES (?, ?, ?, ?, ?, ?)`,
		f.Title, f.Content, f.Order, nullString(f.Tags), nullString(f.EventDate), nullString(f.EventTime),
	)
	if err != nil {
		return nil, fmt.Errorf("insert note: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *NoteStore) GetByID(id int64) (*model.Note, error) {
	row := s.db.QueryRow(`SELECT `+noteCols+` FROM notes WHERE id = ?`, id)
	n, err := scanNote(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get note: %w", err)
	}
	return n, nil
}

// GetAll returns every note ordered by manual order descending; ties broken
// by most recently updated.
func (s *NoteStore) GetAll() ([]model.Note, error) {
	rows, err := s.db.Query(
		`SELECT ` + noteCols + ` FROM notes ORDER BY sort_order DESC, updated_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()

	return collectNotes(rows)
}

// Search matches the query case-insensitively against title or content,
// most recently updated first.
func (s *NoteStore) Search(query string) ([]model.Note, error) {
	pattern := "%" + query + "%"
	rows, err := s.db.Query(
		`SELECT `+noteCols+` FROM notes
		 WHERE title LIKE ? COLLATE NOCASE OR content LIKE ? COLLATE NOCASE
		 ORDER BY updated_at DESC`,
		pattern, pattern,
	)
	if err != nil {
		return nil, fmt.Errorf("search notes: %w", err)
	}
	defer rows.Close()

	return collectNotes(rows)
}

// MaxOrder returns the highest order value across all notes, or 0 when the
// table is empty.
func (s *NoteStore) MaxOrder() (int, error) {
	var max int
	err := s.db.QueryRow(`SELECT COALESCE(MAX(sort_order), 0) FROM notes`).Scan(&max)
	if err != nil {
		return 0, fmt.Errorf("max order: %w", err)
	}
	return max, nil
}

func (s *NoteStore) Update(id int64, f NoteFields) (*model.Note, error) {
	_, err := s.db.Exec(
		`UPDATE notes SET title = ?, content = ?, sort_order = ?, tags = ?, event_date = ?, event_time = ?,
		 updated_at = datetime('now') WHERE id = ?`,
		f.Title, f.Content, f.Order, nullString(f.Tags), nullString(f.EventDate), nullString(f.EventTime), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update note: %w", err)
	}
	return s.GetByID(id)
}

// SetTags replaces only the stored tags of a note.
func (s *NoteStore) SetTags(id int64, serialized *string) (*model.Note, error) {
	_, err := s.db.Exec(
		`UPDATE notes SET tags = ?, updated_at = datetime('now') WHERE id = ?`,
		nullString(serialized), id,
	)
	if err != nil {
		return nil, fmt.Errorf("set tags: %w", err)
	}
	return s.GetByID(id)
}

func (s *NoteStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM notes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	return nil
}

// UpdateSortOrders applies the given order values in one transaction.
// Unknown ids are skipped silently.
func (s *NoteStore) UpdateSortOrders(updates []OrderUpdate) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`UPDATE notes SET sort_order = ? WHERE id = ?`)
	if err != nil {
		return fmt.Errorf("prepare stmt: %w", err)
	}
	defer stmt.Close()

	for _, u := range updates {
		if _, err := stmt.Exec(u.Order, u.ID); err != nil {
			return fmt.Errorf("update sort order for id %d: %w", u.ID, err)
		}
	}

	return tx.Commit()
}

func collectNotes(rows *sql.Rows) ([]model.Note, error) {
	var notes []model.Note
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		notes = append(notes, *n)
	}
	return notes, rows.Err()
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
