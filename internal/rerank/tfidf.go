package rerank

import (
	"log"

	"github.com/blevesearch/bleve/v2"
)

// applyCodeTFIDFBoost runs a throwaway bleve index over just this
// candidate set's code chunks (not a corpus-wide index — the document
// frequencies that drive bleve's own TF-IDF scoring are meant to reflect
// only what's competing in this result set) and uses the resulting scores
// to further multiply each code candidate's distance, clamped to
// [0.5, 1.0] so it can only tighten, never loosen, the earlier per-chunk
// factors.
func applyCodeTFIDFBoost(words []string, candidates []Candidate) {
	if len(words) == 0 {
		return
	}

	var codeIdx []int
	for i, c := range candidates {
		if c.Kind == "code" {
			codeIdx = append(codeIdx, i)
		}
	}
	if len(codeIdx) == 0 {
		return
	}

	idx, err := bleve.NewMemOnly(bleve.NewIndexMapping())
	if err != nil {
		log.Printf("rerank: tf-idf index unavailable, skipping boost: %v", err)
		return
	}
	defer idx.Close()

	batch := idx.NewBatch()
	for _, i := range codeIdx {
		if err := batch.Index(candidates[i].ID, map[string]string{"content": candidates[i].Content}); err != nil {
			log.Printf("rerank: skipping tf-idf doc %s: %v", candidates[i].ID, err)
		}
	}
	if err := idx.Batch(batch); err != nil {
		log.Printf("rerank: tf-idf batch failed, skipping boost: %v", err)
		return
	}

	query := bleve.NewDisjunctionQuery()
	for _, w := range words {
		mq := bleve.NewMatchQuery(w)
		mq.SetField("content")
		query.AddQuery(mq)
	}
	req := bleve.NewSearchRequest(query)
	req.Size = len(codeIdx)
	result, err := idx.Search(req)
	if err != nil {
		log.Printf("rerank: tf-idf search failed, skipping boost: %v", err)
		return
	}

	scores := make(map[string]float64, len(result.Hits))
	maxScore := 0.0
	for _, hit := range result.Hits {
		scores[hit.ID] = hit.Score
		if hit.Score > maxScore {
			maxScore = hit.Score
		}
	}
	if maxScore == 0 {
		return
	}

	for _, i := range codeIdx {
		score, ok := scores[candidates[i].ID]
		if !ok {
			continue
		}
		multiplier := clamp(1.0-0.5*(score/maxScore), 0.5, 1.0)
		candidates[i].Distance *= multiplier
	}
}
