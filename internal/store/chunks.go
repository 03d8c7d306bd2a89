package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Question)

// Kind names double as the chunk table name and the vec0 table prefix.
const (
	KindCode     = "code_blocks"
	KindText     = "text_blocks"
	KindDocument = "document_blocks"
)

// CodeRow is one persisted code_blocks row.
type CodeRow struct {
	ID       string
	Path     string
	Content  string
	Start    int
	End      int
	Hash     string
	Language string
	Symbols  []string
}

// TextRow is one persisted text_blocks row.
type TextRow struct {
	ID      string
	Path    string
	Content string
	Start   int
	End     int
	Hash    string
}

// DocumentRow is one persisted document_blocks row.
type DocumentRow struct {
	ID      string
	Path    string
	Content string
	Start   int
	End     int
	Hash    string
	Title   string
	Context []string
	Level   int
}

// InsertCode writes code_blocks rows in one transaction and, after it
// commits, their vectors in a second; a failed vector write leaves the rows.
func (s *Store) InsertCode(rows []CodeRow, vectors [][]float32) error {
	if len(rows) == 0 {
		return nil
	}
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	builder := psql.Insert(KindCode).Columns("id", "path", "content", "start_line", "end_line", "content_hash", "language", "symbols")
	for i := range rows {
		if rows[i].ID == "" {
			rows[i].ID = uuid.NewString()
		}
		symbols, err := json.Marshal(rows[i].Symbols)
		if err != nil {
			return fmt.Errorf("marshal symbols: %w", err)
		}
		builder = builder.Values(rows[i].ID, rows[i].Path, rows[i].Content, rows[i].Start, rows[i].End, rows[i].Hash, rows[i].Language, string(symbols))
	}
	if _, err := execBuilder(tx, builder); err != nil {
		return fmt.Errorf("insert code_blocks: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	ids := make([]string, len(rows))
	for i, r := range rows {
		ids[i] = r.ID
	}
	return s.UpsertVectors(KindCode, ids, vectors)
}

// InsertText writes text_blocks rows in one transaction and, after it
// commits, their vectors in a second; a failed vector write leaves the rows.
func (s *Store) InsertText(rows []TextRow, vectors [][]float32) error {
	if len(rows) == 0 {
		return nil
	}
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	builder := psql.Insert(KindText).Columns("id", "path", "content", "start_line", "end_line", "content_hash")
	for i := range rows {
		if rows[i].ID == "" {
			rows[i].ID = uuid.NewString()
		}
		builder = builder.Values(rows[i].ID, rows[i].Path, rows[i].Content, rows[i].Start, rows[i].End, rows[i].Hash)
	}
	if _, err := execBuilder(tx, builder); err != nil {
		return fmt.Errorf("insert text_blocks: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	ids := make([]string, len(rows))
	for i, r := range rows {
		ids[i] = r.ID
	}
	return s.UpsertVectors(KindText, ids, vectors)
}

// InsertDocument writes document_blocks rows in one transaction and, after
// it commits, their vectors in a second; a failed vector write leaves the
// rows.
func (s *Store) InsertDocument(rows []DocumentRow, vectors [][]float32) error {
	if len(rows) == 0 {
		return nil
	}
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	builder := psql.Insert(KindDocument).Columns("id", "path", "content", "start_line", "end_line", "content_hash", "title", "context", "level")
	for i := range rows {
		if rows[i].ID == "" {
			rows[i].ID = uuid.NewString()
		}
		context, err := json.Marshal(rows[i].Context)
		if err != nil {
			return fmt.Errorf("marshal context: %w", err)
		}
		builder = builder.Values(rows[i].ID, rows[i].Path, rows[i].Content, rows[i].Start, rows[i].End, rows[i].Hash, rows[i].Title, string(context), rows[i].Level)
	}
	if _, err := execBuilder(tx, builder); err != nil {
		return fmt.Errorf("insert document_blocks: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	ids := make([]string, len(rows))
	for i, r := range rows {
		ids[i] = r.ID
	}
	return s.UpsertVectors(KindDocument, ids, vectors)
}

// HashesForPath returns the set of content hashes currently stored for path
// in kind's table, the input the differential updater (§4.G) reconciles
// against the newly computed chunk set.
func (s *Store) HashesForPath(kind, path string) (map[string]string, error) {
	rows, err := s.db.Query(fmt.Sprintf("SELECT id, content_hash FROM %s WHERE path = ?", kind), path)
	if err != nil {
		return nil, fmt.Errorf("query hashes for %s: %w", kind, err)
	}
	defer rows.Close()

	out := map[string]string{}
	for rows.Next() {
		var id, hash string
		if err := rows.Scan(&id, &hash); err != nil {
			return nil, err
		}
		out[hash] = id
	}
	return out, rows.Err()
}

// DeleteByIDs removes rows (and their vectors) by row id from kind's table.
func (s *Store) DeleteByIDs(kind string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	builder := psql.Delete(kind).Where(sq.Eq{"id": ids})
	if _, err := execBuilder(s.db, builder); err != nil {
		return fmt.Errorf("delete from %s: %w", kind, err)
	}
	return s.DeleteVectors(kind, ids)
}

// DeleteByPath removes every row (and vector) for path from kind's table.
// For text_blocks, it also purges chunks whose path matches the base path
// in the legacy chunked-path form "path#N".
func (s *Store) DeleteByPath(kind, path string) error {
	ids, err := s.idsForPath(kind, path)
	if err != nil {
		return err
	}
	if kind == KindText {
		legacy, err := s.idsForPathPrefix(kind, path+"#")
		if err != nil {
			return err
		}
		ids = append(ids, legacy...)
	}
	return s.DeleteByIDs(kind, ids)
}

func (s *Store) idsForPath(kind, path string) ([]string, error) {
	rows, err := s.db.Query(fmt.Sprintf("SELECT id FROM %s WHERE path = ?", kind), path)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanIDs(rows)
}

func (s *Store) idsForPathPrefix(kind, prefix string) ([]string, error) {
	rows, err := s.db.Query(fmt.Sprintf("SELECT id FROM %s WHERE path LIKE ?", kind), prefix+"%")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanIDs(rows)
}

func scanIDs(rows interface {
	Next() bool
	Scan(...any) error
	Err() error
}) ([]string, error) {
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ClearTable deletes every row from kind's table and its vector table.
func (s *Store) ClearTable(kind string) error {
	if _, err := s.db.Exec(fmt.Sprintf("DELETE FROM %s", kind)); err != nil {
		return fmt.Errorf("clear %s: %w", kind, err)
	}
	if _, err := s.db.Exec(fmt.Sprintf("DELETE FROM %s", vecTableName(kind))); err != nil {
		return fmt.Errorf("clear %s: %w", vecTableName(kind), err)
	}
	return nil
}

// ClearAll clears every chunk table.
func (s *Store) ClearAll() error {
	for _, kind := range []string{KindCode, KindText, KindDocument} {
		if err := s.ClearTable(kind); err != nil {
			return err
		}
	}
	return nil
}

// Flush is a no-op durability probe: SQLite has already fsynced on commit,
// so this simply confirms the connection is alive.
func (s *Store) Flush() error {
	return s.db.Ping()
}

// sqlExecer is satisfied by both *sql.DB and *sql.Tx.
type sqlExecer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

// execBuilder runs a squirrel insert/delete builder against either a plain
// connection or an open transaction.
func execBuilder(execer sqlExecer, builder sq.Sqlizer) (int64, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return 0, err
	}
	res, err := execer.Exec(query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
