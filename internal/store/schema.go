// Package store is the columnar vector store: one table per
// chunk kind, one table per graph artifact, a memory table, and the two
// metadata tables, all backed by SQLite with sqlite-vec for vector columns.
package store

import (
	"database/sql"
	"fmt"
)

// Store wraps an open database handle with the schema this package defines.
type Store struct {
	db  *sql.DB
	dim int // embedding dimension, learned on first insert
}

// Open creates (if absent) the schema in db and returns a Store. dim is the
// embedding dimension; pass 0 to defer vector-column sizing to first use,
// in which case vector search is unavailable until a dimension is recorded.
func Open(db *sql.DB, dim int) (*Store, error) {
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	InitVectorExtension()

	s := &Store{db: db, dim: dim}
	if err := s.createSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) createSchema() error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin schema transaction: %w", err)
	}
	defer tx.Rollback()

	ddls := []string{
		createCodeBlocksTable,
		createTextBlocksTable,
		createDocumentBlocksTable,
		createGraphNodesTable,
		createGraphRelationshipsTable,
		createMemoryTable,
		createGitMetadataTable,
		createFileMetadataTable,
		createStoreMetadataTable,
	}
	for _, ddl := range ddls {
		if _, err := tx.Exec(ddl); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	for _, idx := range schemaIndexes {
		if _, err := tx.Exec(idx); err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema transaction: %w", err)
	}

	// FTS5 virtual tables and their sync triggers live outside the
	// transaction, matching sqlite3's restriction on virtual-table DDL
	// inside a transaction block together with regular DDL.
	if err := s.createFTSTables(); err != nil {
		return err
	}

	if s.dim > 0 {
		if err := s.ensureVectorTables(s.dim); err != nil {
			return err
		}
	}
	return nil
}

const createCodeBlocksTable = `
CREATE TABLE IF NOT EXISTS code_blocks (
    id          TEXT PRIMARY KEY,
    path        TEXT NOT NULL,
    content     TEXT NOT NULL,
    start_line  INTEGER NOT NULL,
    end_line    INTEGER NOT NULL,
    content_hash TEXT NOT NULL,
    language    TEXT NOT NULL,
    symbols     TEXT NOT NULL DEFAULT '[]',
    UNIQUE(path, start_line, end_line, content_hash)
)`

const createTextBlocksTable = `
CREATE TABLE IF NOT EXISTS text_blocks (
    id          TEXT PRIMARY KEY,
    path        TEXT NOT NULL,
    content     TEXT NOT NULL,
    start_line  INTEGER NOT NULL,
    end_line    INTEGER NOT NULL,
    content_hash TEXT NOT NULL,
    UNIQUE(path, start_line, end_line, content_hash)
)`

const createDocumentBlocksTable = `
CREATE TABLE IF NOT EXISTS document_blocks (
    id          TEXT PRIMARY KEY,
    path        TEXT NOT NULL,
    content     TEXT NOT NULL,
    start_line  INTEGER NOT NULL,
    end_line    INTEGER NOT NULL,
    content_hash TEXT NOT NULL,
    title       TEXT NOT NULL,
    context     TEXT NOT NULL DEFAULT '[]',
    level       INTEGER NOT NULL,
    UNIQUE(path, start_line, end_line, content_hash)
)`

const createGraphNodesTable = `
CREATE TABLE IF NOT EXISTS graphrag_nodes (
    id          TEXT PRIMARY KEY,
    display_name TEXT NOT NULL,
    kind        TEXT NOT NULL,
    language    TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    size_lines  INTEGER NOT NULL DEFAULT 0,
    symbols     TEXT NOT NULL DEFAULT '[]',
    imports     TEXT NOT NULL DEFAULT '[]',
    exports     TEXT NOT NULL DEFAULT '[]',
    summaries   TEXT NOT NULL DEFAULT '[]',
    content_hash TEXT NOT NULL,
    embedding   BLOB
)`

const createGraphRelationshipsTable = `
CREATE TABLE IF NOT EXISTS graphrag_relationships (
    id          TEXT PRIMARY KEY,
    source_id   TEXT NOT NULL,
    target_id   TEXT NOT NULL,
    relation_type TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    confidence  REAL NOT NULL DEFAULT 1.0,
    weight      REAL NOT NULL DEFAULT 1.0,
    UNIQUE(source_id, target_id, relation_type)
)`

const createMemoryTable = `
CREATE TABLE IF NOT EXISTS memory (
    id          TEXT PRIMARY KEY,
    note_type   TEXT NOT NULL,
    content     TEXT NOT NULL,
    related_ids TEXT NOT NULL DEFAULT '[]',
    created_at  TEXT NOT NULL,
    updated_at  TEXT NOT NULL,
    embedding   BLOB
)`

const createGitMetadataTable = `
CREATE TABLE IF NOT EXISTS git_metadata (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
)`

const createFileMetadataTable = `
CREATE TABLE IF NOT EXISTS file_metadata (
    path          TEXT PRIMARY KEY,
    last_modified TEXT NOT NULL,
    last_indexed  TEXT NOT NULL
)`

const createStoreMetadataTable = `
CREATE TABLE IF NOT EXISTS store_metadata (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
)`

var schemaIndexes = []string{
	"CREATE INDEX IF NOT EXISTS idx_code_blocks_path ON code_blocks(path)",
	"CREATE INDEX IF NOT EXISTS idx_code_blocks_hash ON code_blocks(content_hash)",
	"CREATE INDEX IF NOT EXISTS idx_text_blocks_path ON text_blocks(path)",
	"CREATE INDEX IF NOT EXISTS idx_text_blocks_hash ON text_blocks(content_hash)",
	"CREATE INDEX IF NOT EXISTS idx_document_blocks_path ON document_blocks(path)",
	"CREATE INDEX IF NOT EXISTS idx_document_blocks_hash ON document_blocks(content_hash)",
	"CREATE INDEX IF NOT EXISTS idx_graphrag_relationships_source ON graphrag_relationships(source_id)",
	"CREATE INDEX IF NOT EXISTS idx_graphrag_relationships_target ON graphrag_relationships(target_id)",
	"CREATE INDEX IF NOT EXISTS idx_memory_note_type ON memory(note_type)",
}

// createFTSTables wires a bleve-free FTS5 index per text-bearing table,
// synced by triggers. Neither the query pipeline nor the reranker reads
// these tables; the reranker's TF-IDF boost uses its own bleve index.
func (s *Store) createFTSTables() error {
	stmts := []string{
		`CREATE VIRTUAL TABLE IF NOT EXISTS code_blocks_fts USING fts5(
			id UNINDEXED, content, content='code_blocks', content_rowid='rowid')`,
		`CREATE VIRTUAL TABLE IF NOT EXISTS text_blocks_fts USING fts5(
			id UNINDEXED, content, content='text_blocks', content_rowid='rowid')`,
		`CREATE VIRTUAL TABLE IF NOT EXISTS document_blocks_fts USING fts5(
			id UNINDEXED, content, content='document_blocks', content_rowid='rowid')`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("create fts table: %w", err)
		}
	}
	return createFTSTriggers(s.db, "code_blocks", "text_blocks", "document_blocks")
}

func createFTSTriggers(db *sql.DB, tables ...string) error {
	for _, t := range tables {
		stmts := []string{
			fmt.Sprintf(`CREATE TRIGGER IF NOT EXISTS %s_ai AFTER INSERT ON %s BEGIN
				INSERT INTO %s_fts(rowid, id, content) VALUES (new.rowid, new.id, new.content);
			END`, t, t, t),
			fmt.Sprintf(`CREATE TRIGGER IF NOT EXISTS %s_ad AFTER DELETE ON %s BEGIN
				INSERT INTO %s_fts(%s_fts, rowid, id, content) VALUES('delete', old.rowid, old.id, old.content);
			END`, t, t, t, t),
		}
		for _, stmt := range stmts {
			if _, err := db.Exec(stmt); err != nil {
				return fmt.Errorf("create fts trigger on %s: %w", t, err)
			}
		}
	}
	return nil
}
