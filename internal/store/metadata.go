package store

import (
	"database/sql"
	"errors"
	"fmt"
)

// SetFileMetadata records a file's last-modified time and the time it was
// last successfully indexed, so a subsequent pass can skip an unchanged
// file.
func (s *Store) SetFileMetadata(path, lastModified, lastIndexed string) error {
	_, err := s.db.Exec(`
		INSERT INTO file_metadata (path, last_modified, last_indexed)
		VALUES (?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			last_modified = excluded.last_modified,
			last_indexed = excluded.last_indexed
	`, path, lastModified, lastIndexed)
	if err != nil {
		return fmt.Errorf("set file metadata for %s: %w", path, err)
	}
	return nil
}

// FileMetadata returns the recorded last-modified time for path. ok is
// false when the path has never been indexed.
func (s *Store) FileMetadata(path string) (lastModified string, ok bool, err error) {
	row := s.db.QueryRow("SELECT last_modified FROM file_metadata WHERE path = ?", path)
	if scanErr := row.Scan(&lastModified); scanErr != nil {
		if errors.Is(scanErr, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, scanErr
	}
	return lastModified, true, nil
}

// AllFileMetadataPaths returns every path with a file_metadata row, so a
// full-index pass can detect files that were removed from disk since the
// last pass (present in the store, absent from the current walk).
func (s *Store) AllFileMetadataPaths() ([]string, error) {
	rows, err := s.db.Query("SELECT path FROM file_metadata")
	if err != nil {
		return nil, fmt.Errorf("list file metadata paths: %w", err)
	}
	defer rows.Close()
	return scanIDs(rows)
}

// DeleteFileMetadata removes the tracked mtime for path, on file removal.
func (s *Store) DeleteFileMetadata(path string) error {
	_, err := s.db.Exec("DELETE FROM file_metadata WHERE path = ?", path)
	if err != nil {
		return fmt.Errorf("delete file metadata for %s: %w", path, err)
	}
	return nil
}

// SetGitMetadata records one key/value pair in the git_metadata table
// (e.g. current commit, remote URL) supplied by the caller; this package
// has no git integration of its own (see DESIGN.md).
func (s *Store) SetGitMetadata(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO git_metadata (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("set git metadata %s: %w", key, err)
	}
	return nil
}

// GitMetadata reads one git_metadata value. ok is false if the key is unset.
func (s *Store) GitMetadata(key string) (value string, ok bool, err error) {
	row := s.db.QueryRow("SELECT value FROM git_metadata WHERE key = ?", key)
	if scanErr := row.Scan(&value); scanErr != nil {
		if errors.Is(scanErr, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, scanErr
	}
	return value, true, nil
}
