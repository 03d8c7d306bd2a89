package store

import (
	"encoding/json"
	"fmt"

	sq "github.com/Masterminds/squirrel"
)

// GetCodeByIDs fetches code_blocks rows by id, in no particular order.
// Missing ids are simply absent from the result; no error is raised for a
// partial match, since callers (the query pipeline) diff the returned set
// against their requested ids when that matters.
func (s *Store) GetCodeByIDs(ids []string) ([]CodeRow, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	builder := psql.Select("id", "path", "content", "start_line", "end_line", "content_hash", "language", "symbols").
		From(KindCode).Where(sq.Eq{"id": ids})
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("get code_blocks by ids: %w", err)
	}
	defer rows.Close()

	var out []CodeRow
	for rows.Next() {
		var r CodeRow
		var symbols string
		if err := rows.Scan(&r.ID, &r.Path, &r.Content, &r.Start, &r.End, &r.Hash, &r.Language, &symbols); err != nil {
			return nil, err
		}
		_ = json.Unmarshal([]byte(symbols), &r.Symbols)
		out = append(out, r)
	}
	return out, rows.Err()
}

// GetTextByIDs fetches text_blocks rows by id.
func (s *Store) GetTextByIDs(ids []string) ([]TextRow, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	builder := psql.Select("id", "path", "content", "start_line", "end_line", "content_hash").
		From(KindText).Where(sq.Eq{"id": ids})
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("get text_blocks by ids: %w", err)
	}
	defer rows.Close()

	var out []TextRow
	for rows.Next() {
		var r TextRow
		if err := rows.Scan(&r.ID, &r.Path, &r.Content, &r.Start, &r.End, &r.Hash); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// GetDocumentByIDs fetches document_blocks rows by id.
func (s *Store) GetDocumentByIDs(ids []string) ([]DocumentRow, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	builder := psql.Select("id", "path", "content", "start_line", "end_line", "content_hash", "title", "context", "level").
		From(KindDocument).Where(sq.Eq{"id": ids})
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("get document_blocks by ids: %w", err)
	}
	defer rows.Close()

	var out []DocumentRow
	for rows.Next() {
		var r DocumentRow
		var context string
		if err := rows.Scan(&r.ID, &r.Path, &r.Content, &r.Start, &r.End, &r.Hash, &r.Title, &context, &r.Level); err != nil {
			return nil, err
		}
		_ = json.Unmarshal([]byte(context), &r.Context)
		out = append(out, r)
	}
	return out, rows.Err()
}

