package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// MemoryNote is one free-form typed note the memory subsystem persists.
type MemoryNote struct {
	ID        string
	NoteType  string
	Content   string
	RelatedTo []string
	CreatedAt string
	UpdatedAt string
	Embedding []float32
}

// PutNote inserts or replaces a note by id.
func (s *Store) PutNote(n MemoryNote) (string, error) {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	related, err := json.Marshal(n.RelatedTo)
	if err != nil {
		return "", fmt.Errorf("marshal related ids: %w", err)
	}
	var embBlob []byte
	if len(n.Embedding) > 0 {
		embBlob = SerializeEmbedding(n.Embedding)
	}

	_, err = s.db.Exec(`
		INSERT INTO memory (id, note_type, content, related_ids, created_at, updated_at, embedding)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			note_type = excluded.note_type,
			content = excluded.content,
			related_ids = excluded.related_ids,
			updated_at = excluded.updated_at,
			embedding = excluded.embedding
	`, n.ID, n.NoteType, n.Content, string(related), n.CreatedAt, n.UpdatedAt, embBlob)
	if err != nil {
		return "", fmt.Errorf("put memory note %s: %w", n.ID, err)
	}
	return n.ID, nil
}

// DeleteNote removes a note by id.
func (s *Store) DeleteNote(id string) error {
	_, err := s.db.Exec("DELETE FROM memory WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete memory note %s: %w", id, err)
	}
	return nil
}

// NoteFilter narrows SearchNotes by type tag and/or related-note id. A
// zero-value field leaves that dimension unfiltered.
type NoteFilter struct {
	NoteType  string
	RelatedTo string
}

// SearchNotes returns notes matching the given filter, most-recently
// updated first.
func (s *Store) SearchNotes(filter NoteFilter) ([]MemoryNote, error) {
	query := "SELECT id, note_type, content, related_ids, created_at, updated_at, embedding FROM memory WHERE 1=1"
	var args []any
	if filter.NoteType != "" {
		query += " AND note_type = ?"
		args = append(args, filter.NoteType)
	}
	if filter.RelatedTo != "" {
		query += " AND related_ids LIKE ?"
		args = append(args, "%\""+filter.RelatedTo+"\"%")
	}
	query += " ORDER BY updated_at DESC"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("search memory notes: %w", err)
	}
	defer rows.Close()

	var out []MemoryNote
	for rows.Next() {
		var n MemoryNote
		var related string
		var emb []byte
		if err := rows.Scan(&n.ID, &n.NoteType, &n.Content, &related, &n.CreatedAt, &n.UpdatedAt, &emb); err != nil {
			return nil, err
		}
		_ = json.Unmarshal([]byte(related), &n.RelatedTo)
		if len(emb) > 0 {
			vec, err := DeserializeEmbedding(emb)
			if err != nil {
				return nil, fmt.Errorf("deserialize note embedding: %w", err)
			}
			n.Embedding = vec
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// GetNote fetches one note by id. ok is false if no such note exists.
func (s *Store) GetNote(id string) (note MemoryNote, ok bool, err error) {
	row := s.db.QueryRow("SELECT id, note_type, content, related_ids, created_at, updated_at, embedding FROM memory WHERE id = ?", id)
	var related string
	var emb []byte
	if scanErr := row.Scan(&note.ID, &note.NoteType, &note.Content, &related, &note.CreatedAt, &note.UpdatedAt, &emb); scanErr != nil {
		if errors.Is(scanErr, sql.ErrNoRows) {
			return MemoryNote{}, false, nil
		}
		return MemoryNote{}, false, scanErr
	}
	_ = json.Unmarshal([]byte(related), &note.RelatedTo)
	if len(emb) > 0 {
		vec, derr := DeserializeEmbedding(emb)
		if derr != nil {
			return MemoryNote{}, false, fmt.Errorf("deserialize note embedding: %w", derr)
		}
		note.Embedding = vec
	}
	return note, true, nil
}
