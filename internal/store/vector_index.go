package store

import (
	"fmt"
	"math"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
)

// InitVectorExtension registers sqlite-vec with the driver. Must run once
// before any vector table is created or queried.
func InitVectorExtension() {
	sqlite_vec.Auto()
}

// minIndexRows is the row count below which maybeReoptimize records no
// index parameters. SearchVectors scans every row at any table size; no
// separate index structure is built.
const minIndexRows = 1000

// growthMilestones are the row counts at which the index is re-optimized.
var growthMilestones = []int{1000, 5000, 10000, 25000, 50000, 100000}

func vecTableName(kind string) string { return kind + "_vec" }

// ensureVectorTables creates the vec0 virtual table for every chunk kind at
// the given dimension, if not already present.
func (s *Store) ensureVectorTables(dim int) error {
	for _, kind := range []string{"code_blocks", "text_blocks", "document_blocks"} {
		ddl := fmt.Sprintf(
			"CREATE VIRTUAL TABLE IF NOT EXISTS %s USING vec0(id TEXT PRIMARY KEY, embedding float[%d])",
			vecTableName(kind), dim)
		if _, err := s.db.Exec(ddl); err != nil {
			return fmt.Errorf("create vector table for %s: %w", kind, err)
		}
	}
	s.dim = dim
	return nil
}

// UpsertVectors writes (or replaces) the embedding for each id in kind's
// vector table, then re-optimizes the index if a growth milestone was
// crossed.
func (s *Store) UpsertVectors(kind string, ids []string, vectors [][]float32) error {
	if len(ids) == 0 {
		return nil
	}
	if s.dim == 0 {
		if err := s.ensureVectorTables(len(vectors[0])); err != nil {
			return err
		}
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin vector upsert: %w", err)
	}
	defer tx.Rollback()

	table := vecTableName(kind)
	del, err := tx.Prepare(fmt.Sprintf("DELETE FROM %s WHERE id = ?", table))
	if err != nil {
		return err
	}
	defer del.Close()
	ins, err := tx.Prepare(fmt.Sprintf("INSERT INTO %s (id, embedding) VALUES (?, ?)", table))
	if err != nil {
		return err
	}
	defer ins.Close()

	for i, id := range ids {
		if _, err := del.Exec(id); err != nil {
			return fmt.Errorf("delete existing vector for %s: %w", id, err)
		}
		blob, err := sqlite_vec.SerializeFloat32(vectors[i])
		if err != nil {
			return fmt.Errorf("serialize embedding for %s: %w", id, err)
		}
		if _, err := ins.Exec(id, blob); err != nil {
			return fmt.Errorf("insert vector for %s: %w", id, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit vector upsert: %w", err)
	}

	return s.maybeReoptimize(kind)
}

// DeleteVectors removes the given ids from kind's vector table.
func (s *Store) DeleteVectors(kind string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	table := vecTableName(kind)
	stmt, err := s.db.Prepare(fmt.Sprintf("DELETE FROM %s WHERE id = ?", table))
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, id := range ids {
		if _, err := stmt.Exec(id); err != nil {
			return fmt.Errorf("delete vector %s: %w", id, err)
		}
	}
	return nil
}

// VectorMatch is one nearest-neighbor hit.
type VectorMatch struct {
	ID       string
	Distance float64
}

// SearchVectors returns an oversampled candidate set: requestedMax *
// refineFactor(count) nearest neighbors by cosine distance, so the reranker
// downstream has a wider pool to work from once the table is large enough
// that a flat top-k alone risks missing true neighbors (spec.md §4.F).
func (s *Store) SearchVectors(kind string, query []float32, requestedMax int) ([]VectorMatch, error) {
	table := vecTableName(kind)
	var count int
	if err := s.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", table)).Scan(&count); err != nil {
		return nil, fmt.Errorf("count %s: %w", table, err)
	}

	k := requestedMax * refineFactor(count)
	if k < 1 {
		k = 2
	}

	queryBlob, err := sqlite_vec.SerializeFloat32(query)
	if err != nil {
		return nil, fmt.Errorf("serialize query embedding: %w", err)
	}

	sql := fmt.Sprintf(
		"SELECT id, vec_distance_cosine(embedding, ?) AS distance FROM %s ORDER BY distance LIMIT ?",
		table)
	rows, err := s.db.Query(sql, queryBlob, k)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", table, err)
	}
	defer rows.Close()

	var out []VectorMatch
	for rows.Next() {
		var m VectorMatch
		if err := rows.Scan(&m.ID, &m.Distance); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// indexParams computes IVF+PQ-style sizing: num_partitions ~ sqrt(N),
// skewed up whenever sqrt(N) alone would leave more than 8000 rows per
// partition, clamped to [2,1024] — above roughly 8.2M rows (1024 × 8000) even 1024
// partitions can't hold rows/partition under 8000, so the cap wins and the
// target is no longer met. num_sub_vectors is a factor of dim near dim/16,
// preferring multiples of 4 (or <= 8).
func indexParams(n, dim int) (numPartitions, numSubVectors int) {
	numPartitions = int(math.Sqrt(float64(n)))
	if bySize := n / 8000; bySize > numPartitions {
		numPartitions = bySize
	}
	if numPartitions < 2 {
		numPartitions = 2
	}
	if numPartitions > 1024 {
		numPartitions = 1024
	}

	target := dim / 16
	if target < 1 {
		target = 1
	}
	numSubVectors = target
	for numSubVectors > 1 && dim%numSubVectors != 0 {
		numSubVectors--
	}
	if numSubVectors > 8 && numSubVectors%4 != 0 {
		numSubVectors -= numSubVectors % 4
	}
	if numSubVectors < 1 {
		numSubVectors = 1
	}
	return numPartitions, numSubVectors
}

// maybeReoptimize re-derives index sizing parameters when the table's row
// count has just crossed a growth milestone. sqlite-vec's vec0 tables don't
// expose index-rebuild knobs directly; this records the parameters that
// would drive a rebuild in a backend with explicit IVF+PQ controls, and is
// the hook a future backend swap attaches to.
func (s *Store) maybeReoptimize(kind string) error {
	table := vecTableName(kind)
	var count int
	if err := s.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", table)).Scan(&count); err != nil {
		return err
	}
	if count < minIndexRows {
		return nil
	}
	for _, milestone := range growthMilestones {
		if count == milestone {
			partitions, subVectors := indexParams(count, s.dim)
			_, err := s.db.Exec(
				`INSERT INTO store_metadata (key, value) VALUES (?, ?)
				 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
				kind+"_index_params",
				fmt.Sprintf(`{"num_partitions":%d,"num_sub_vectors":%d,"rows":%d}`, partitions, subVectors, count))
			return err
		}
	}
	return nil
}

// refineFactor returns the oversampling factor SearchVectors applies to its
// candidate-fetch size for large tables (10 above 10k rows, 20 above 100k);
// below that, the caller's own 2x oversampling in query.searchOneQuery is
// enough and this returns 1. There is no nprobes equivalent here: vec0 is a
// flat virtual table with no partition/IVF structure for sqlite-vec to probe
// a subset of, so unlike a real IVF+PQ backend there is no partition-count
// knob to narrow a query against (see DESIGN.md).
func refineFactor(n int) int {
	switch {
	case n > 100000:
		return 20
	case n > 10000:
		return 10
	default:
		return 1
	}
}
