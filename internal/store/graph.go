package store

import (
	"encoding/json"
	"fmt"
)

// GraphNode is one graphrag_nodes row.
type GraphNode struct {
	ID          string
	DisplayName string
	Kind        string
	Language    string
	Description string
	SizeLines   int
	Symbols     []string
	Imports     []string
	Exports     []string
	Summaries   []FunctionSummary
	ContentHash string
	Embedding   []float32
}

// FunctionSummary is one per-function summary a graph node may carry.
type FunctionSummary struct {
	Name      string `json:"name"`
	Signature string `json:"signature"`
	StartLine int    `json:"start_line"`
	EndLine   int    `json:"end_line"`
}

// GraphRelationship is one graphrag_relationships row.
type GraphRelationship struct {
	ID           string
	SourceID     string
	TargetID     string
	RelationType string
	Description  string
	Confidence   float64
	Weight       float64
}

// UpsertNode replaces the node for path (nodes are keyed on path; re-
// indexing the same file replaces its node).
func (s *Store) UpsertNode(n GraphNode) error {
	symbols, _ := json.Marshal(n.Symbols)
	imports, _ := json.Marshal(n.Imports)
	exports, _ := json.Marshal(n.Exports)
	summaries, _ := json.Marshal(n.Summaries)

	var embBlob []byte
	if len(n.Embedding) > 0 {
		embBlob = SerializeEmbedding(n.Embedding)
	}

	_, err := s.db.Exec(`
		INSERT INTO graphrag_nodes (id, display_name, kind, language, description, size_lines, symbols, imports, exports, summaries, content_hash, embedding)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			display_name = excluded.display_name,
			kind = excluded.kind,
			language = excluded.language,
			description = excluded.description,
			size_lines = excluded.size_lines,
			symbols = excluded.symbols,
			imports = excluded.imports,
			exports = excluded.exports,
			summaries = excluded.summaries,
			content_hash = excluded.content_hash,
			embedding = excluded.embedding
	`, n.ID, n.DisplayName, n.Kind, n.Language, n.Description, n.SizeLines, string(symbols), string(imports), string(exports), string(summaries), n.ContentHash, embBlob)
	if err != nil {
		return fmt.Errorf("upsert graph node %s: %w", n.ID, err)
	}
	return nil
}

// DeleteNode removes a node and every relationship touching it, so that
// edges never reference an absent node.
func (s *Store) DeleteNode(id string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM graphrag_relationships WHERE source_id = ? OR target_id = ?", id, id); err != nil {
		return fmt.Errorf("delete relationships for %s: %w", id, err)
	}
	if _, err := tx.Exec("DELETE FROM graphrag_nodes WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete node %s: %w", id, err)
	}
	return tx.Commit()
}

// GetNode fetches one node by id.
func (s *Store) GetNode(id string) (*GraphNode, error) {
	row := s.db.QueryRow("SELECT id, display_name, kind, language, description, size_lines, symbols, imports, exports, summaries, content_hash, embedding FROM graphrag_nodes WHERE id = ?", id)
	n, err := scanNode(row)
	if err != nil {
		return nil, err
	}
	return n, nil
}

// AllNodes returns every node via a plain table scan — the columnar store
// here is SQLite, which supports a direct scan unlike vector-store-only
// backends.
func (s *Store) AllNodes() ([]GraphNode, error) {
	rows, err := s.db.Query("SELECT id, display_name, kind, language, description, size_lines, symbols, imports, exports, summaries, content_hash, embedding FROM graphrag_nodes")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []GraphNode
	for rows.Next() {
		n, err := scanNode(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *n)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNode(row rowScanner) (*GraphNode, error) {
	var n GraphNode
	var symbols, imports, exports, summaries string
	var emb []byte
	if err := row.Scan(&n.ID, &n.DisplayName, &n.Kind, &n.Language, &n.Description, &n.SizeLines, &symbols, &imports, &exports, &summaries, &n.ContentHash, &emb); err != nil {
		return nil, err
	}
	_ = json.Unmarshal([]byte(symbols), &n.Symbols)
	_ = json.Unmarshal([]byte(imports), &n.Imports)
	_ = json.Unmarshal([]byte(exports), &n.Exports)
	_ = json.Unmarshal([]byte(summaries), &n.Summaries)
	if len(emb) > 0 {
		vec, err := DeserializeEmbedding(emb)
		if err != nil {
			return nil, fmt.Errorf("deserialize node embedding: %w", err)
		}
		n.Embedding = vec
	}
	return &n, nil
}

// UpsertRelationship inserts or replaces one relationship, deduplicated on
// (source, target, relation_type)
func (s *Store) UpsertRelationship(r GraphRelationship) error {
	if r.ID == "" {
		r.ID = fmt.Sprintf("%s->%s:%s", r.SourceID, r.TargetID, r.RelationType)
	}
	_, err := s.db.Exec(`
		INSERT INTO graphrag_relationships (id, source_id, target_id, relation_type, description, confidence, weight)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(source_id, target_id, relation_type) DO UPDATE SET
			description = excluded.description,
			confidence = excluded.confidence,
			weight = excluded.weight
	`, r.ID, r.SourceID, r.TargetID, r.RelationType, r.Description, r.Confidence, r.Weight)
	if err != nil {
		return fmt.Errorf("upsert relationship %s->%s: %w", r.SourceID, r.TargetID, err)
	}
	return nil
}

// RelationshipsFor returns every relationship where id is the source or
// the target.
func (s *Store) RelationshipsFor(id string) ([]GraphRelationship, error) {
	rows, err := s.db.Query(
		"SELECT id, source_id, target_id, relation_type, description, confidence, weight FROM graphrag_relationships WHERE source_id = ? OR target_id = ?",
		id, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []GraphRelationship
	for rows.Next() {
		var r GraphRelationship
		if err := rows.Scan(&r.ID, &r.SourceID, &r.TargetID, &r.RelationType, &r.Description, &r.Confidence, &r.Weight); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// SearchNodesBySubstring does a case-insensitive LIKE scan over display
// names and symbols, used by the graph query component to boost exact
// substring hits alongside vector similarity.
func (s *Store) SearchNodesBySubstring(term string) ([]GraphNode, error) {
	rows, err := s.db.Query(
		"SELECT id, display_name, kind, language, description, size_lines, symbols, imports, exports, summaries, content_hash, embedding FROM graphrag_nodes WHERE display_name LIKE ? OR symbols LIKE ? OR description LIKE ?",
		"%"+term+"%", "%"+term+"%", "%"+term+"%")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []GraphNode
	for rows.Next() {
		n, err := scanNode(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *n)
	}
	return out, rows.Err()
}

