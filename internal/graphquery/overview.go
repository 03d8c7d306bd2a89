package graphquery

import "github.com/mvp-joe/codetrace/internal/store"

// Overview implements spec.md §4.K's summary operation: aggregate counts
// by node kind and relationship type, plus totals.
type Overview struct {
	TotalNodes         int
	TotalRelationships int
	NodesByKind        map[string]int
	RelationshipsByType map[string]int
}

func (s *Searcher) Overview() (Overview, error) {
	if err := s.ensureLoaded(); err != nil {
		return Overview{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	ov := Overview{
		NodesByKind:         make(map[string]int),
		RelationshipsByType: make(map[string]int),
	}
	for _, n := range s.nodes {
		ov.TotalNodes++
		ov.NodesByKind[n.Kind]++
	}

	seen := make(map[string]bool)
	countRel := func(r store.GraphRelationship) {
		key := r.SourceID + "\x00" + r.TargetID + "\x00" + r.RelationType
		if seen[key] {
			return
		}
		seen[key] = true
		ov.TotalRelationships++
		ov.RelationshipsByType[r.RelationType]++
	}
	for _, rels := range s.out {
		for _, r := range rels {
			countRel(r)
		}
	}

	return ov, nil
}
