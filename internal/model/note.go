package model

import (
	"errors"
	"time"
)

var ErrNoteNotFound = errors.New("note not found")

// Note is a user-authored text record with optional tags and calendar
// metadata. Order controls manual display sequence; higher sorts first.
type Note struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Order     int       `json:"order"`
	Tags      []string  `json:"tags"`
	EventDate *string   `json:"event_date"`
	EventTime *string   `json:"event_time"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
