package store

import (
	"testing"

	"github.com/dpetrov/notewise/internal/database"
	"github.com/dpetrov/notewise/internal/tags"
)

func setupNoteTestDB(t *testing.T) *NoteStore {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewNoteStore(db)
}

func TestNoteCRUD(t *testing.T) {
	ns := setupNoteTestDB(t)

	stored := tags.Serialize([]string{"work", "urgent"})
	date := "2026-09-01"
	note, err := ns.Create(NoteFields{
		Title:     "Team sync",
		Content:   "Discuss roadmap",
		Order:     1,
		Tags:      stored,
		EventDate: &date,
	})
	if err != nil {
		t.Fatalf("create note: %v", err)
	}
	if note.Title != "Team sync" {
		t.Errorf("title = %q, want %q", note.Title, "Team sync")
	}
	if note.Content != "Discuss roadmap" {
		t.Errorf("content = %q, want %q", note.Content, "Discuss roadmap")
	}
	if note.Order != 1 {
		t.Errorf("order = %d, want 1", note.Order)
	}
	if len(note.Tags) != 2 || note.Tags[0] != "work" || note.Tags[1] != "urgent" {
		t.Errorf("tags = %v, want [work urgent]", note.Tags)
	}
	if note.EventDate == nil || *note.EventDate != "2026-09-01" {
		t.Errorf("event_date = %v, want 2026-09-01", note.EventDate)
	}
	if note.EventTime != nil {
		t.Errorf("event_time = %v, want nil", note.EventTime)
	}
	if note.CreatedAt.IsZero() || note.UpdatedAt.IsZero() {
		t.Error("timestamps should be set on create")
	}

	got, err := ns.GetByID(note.ID)
	if err != nil {
		t.Fatalf("get note: %v", err)
	}
	if got == nil {
		t.Fatal("expected note, got nil")
	}
	if got.Title != "Team sync" {
		t.Errorf("title = %q, want %q", got.Title, "Team sync")
	}

	updated, err := ns.Update(note.ID, NoteFields{
		Title:   "Updated title",
		Content: "Updated content",
		Order:   note.Order,
		Tags:    nil,
	})
	if err != nil {
		t.Fatalf("update note: %v", err)
	}
	if updated.Title != "Updated title" {
		t.Errorf("title = %q, want %q", updated.Title, "Updated title")
	}
	if len(updated.Tags) != 0 {
		t.Errorf("tags = %v, want empty", updated.Tags)
	}
	if updated.EventDate != nil {
		t.Errorf("event_date = %v, want cleared", updated.EventDate)
	}

	if err := ns.Delete(note.ID); err != nil {
		t.Fatalf("delete note: %v", err)
	}
	got, err = ns.GetByID(note.ID)
	if err != nil {
		t.Fatalf("get deleted note: %v", err)
	}
	if got != nil {
		t.Error("expected nil after delete")
	}
}

func TestNoteNotFound(t *testing.T) {
	ns := setupNoteTestDB(t)

	got, err := ns.GetByID(999)
	if err != nil {
		t.Fatalf("get note: %v", err)
	}
	if got != nil {
		t.Error("expected nil for non-existent note")
	}
}

func TestNoteTagsAlwaysSlice(t *testing.T) {
	ns := setupNoteTestDB(t)

	note, err := ns.Create(NoteFields{Title: "No tags", Content: "body", Order: 1})
	if err != nil {
		t.Fatalf("create note: %v", err)
	}
	if note.Tags == nil {
		t.Error("tags should be an empty slice, not nil")
	}
	if len(note.Tags) != 0 {
		t.Errorf("tags = %v, want empty", note.Tags)
	}
}

func TestNoteTagsToleratesCSVStoredForm(t *testing.T) {
	ns := setupNoteTestDB(t)

	// Rows written by older clients hold plain CSV instead of a JSON array.
	csv := "one, two, three"
	note, err := ns.Create(NoteFields{Title: "Legacy", Content: "body", Order: 1, Tags: &csv})
	if err != nil {
		t.Fatalf("create note: %v", err)
	}
	if len(note.Tags) != 3 || note.Tags[0] != "one" || note.Tags[2] != "three" {
		t.Errorf("tags = %v, want [one two three]", note.Tags)
	}
}

func TestNoteListOrdering(t *testing.T) {
	ns := setupNoteTestDB(t)

	ns.Create(NoteFields{Title: "Bottom", Content: "", Order: 1})
	ns.Create(NoteFields{Title: "Top", Content: "", Order: 3})
	ns.Create(NoteFields{Title: "Middle", Content: "", Order: 2})

	notes, err := ns.GetAll()
	if err != nil {
		t.Fatalf("list notes: %v", err)
	}
	if len(notes) != 3 {
		t.Fatalf("expected 3 notes, got %d", len(notes))
	}

	expected := []string{"Top", "Middle", "Bottom"}
	for i, e := range expected {
		if notes[i].Title != e {
			t.Errorf("notes[%d].Title = %q, want %q", i, notes[i].Title, e)
		}
	}
}

func TestNoteMaxOrder(t *testing.T) {
	ns := setupNoteTestDB(t)

	max, err := ns.MaxOrder()
	if err != nil {
		t.Fatalf("max order: %v", err)
	}
	if max != 0 {
		t.Errorf("max order on empty table = %d, want 0", max)
	}

	ns.Create(NoteFields{Title: "A", Content: "", Order: 5})
	ns.Create(NoteFields{Title: "B", Content: "", Order: 2})

	max, err = ns.MaxOrder()
	if err != nil {
		t.Fatalf("max order: %v", err)
	}
	if max != 5 {
		t.Errorf("max order = %d, want 5", max)
	}
}

func TestNoteSearch(t *testing.T) {
	ns := setupNoteTestDB(t)

	ns.Create(NoteFields{Title: "Grocery run", Content: "milk and eggs", Order: 1})
	ns.Create(NoteFields{Title: "Work meeting", Content: "quarterly review", Order: 2})
	ns.Create(NoteFields{Title: "Misc", Content: "pick up GROCERIES later", Order: 3})

	results, err := ns.Search("grocer")
	if err != nil {
		t.Fatalf("search notes: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	for _, n := range results {
		if n.Title == "Work meeting" {
			t.Error("search matched unrelated note")
		}
	}

	results, err = ns.Search("QUARTERLY")
	if err != nil {
		t.Fatalf("search notes: %v", err)
	}
	if len(results) != 1 || results[0].Title != "Work meeting" {
		t.Errorf("case-insensitive content search failed: %v", results)
	}

	results, err = ns.Search("nomatch")
	if err != nil {
		t.Fatalf("search notes: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected no results, got %d", len(results))
	}
}

func TestNoteUpdateSortOrders(t *testing.T) {
	ns := setupNoteTestDB(t)

	a, _ := ns.Create(NoteFields{Title: "A", Content: "", Order: 1})
	b, _ := ns.Create(NoteFields{Title: "B", Content: "", Order: 2})
	c, _ := ns.Create(NoteFields{Title: "C", Content: "", Order: 3})

	err := ns.UpdateSortOrders([]OrderUpdate{
		{ID: a.ID, Order: 3},
		{ID: b.ID, Order: 2},
		{ID: c.ID, Order: 1},
	})
	if err != nil {
		t.Fatalf("update sort orders: %v", err)
	}

	notes, err := ns.GetAll()
	if err != nil {
		t.Fatalf("list notes: %v", err)
	}
	expected := []string{"A", "B", "C"}
	for i, e := range expected {
		if notes[i].Title != e {
			t.Errorf("notes[%d].Title = %q, want %q", i, notes[i].Title, e)
		}
	}
}

func TestNoteUpdateSortOrdersSkipsUnknownIDs(t *testing.T) {
	ns := setupNoteTestDB(t)

	a, _ := ns.Create(NoteFields{Title: "A", Content: "", Order: 1})

	err := ns.UpdateSortOrders([]OrderUpdate{
		{ID: a.ID, Order: 2},
		{ID: 9999, Order: 1},
	})
	if err != nil {
		t.Fatalf("update sort orders: %v", err)
	}

	got, _ := ns.GetByID(a.ID)
	if got.Order != 2 {
		t.Errorf("order = %d, want 2", got.Order)
	}
}

func TestNoteSetTags(t *testing.T) {
	ns := setupNoteTestDB(t)

	note, _ := ns.Create(NoteFields{Title: "A", Content: "body", Order: 1})

	updated, err := ns.SetTags(note.ID, tags.Serialize([]string{"alpha", "beta"}))
	if err != nil {
		t.Fatalf("set tags: %v", err)
	}
	if len(updated.Tags) != 2 || updated.Tags[0] != "alpha" {
		t.Errorf("tags = %v, want [alpha beta]", updated.Tags)
	}

	cleared, err := ns.SetTags(note.ID, nil)
	if err != nil {
		t.Fatalf("clear tags: %v", err)
	}
	if len(cleared.Tags) != 0 {
		t.Errorf("tags = %v, want empty", cleared.Tags)
	}
}
