package graphquery

// FindPaths implements spec.md §4.K's path finding: bounded enumeration
// of every simple path (no repeated node) from source to target up to
// maxDepth edges, returned as ordered node-id sequences. Neighbors come
// from the dominikbraun/graph adjacency map built in ensureLoaded, not a
// reimplemented edge list; dominikbraun/graph itself only exposes
// ShortestPath, not an all-paths-up-to-depth-N traversal, so the bounded
// backtracking walk stays hand-written on top of that adjacency view.
// Cyclic import graphs are expected (spec.md §9 design notes); visiting
// each node at most once per path is what keeps enumeration from looping
// forever.
func (s *Searcher) FindPaths(source, target string, maxDepth int) ([][]string, error) {
	if err := s.ensureLoaded(); err != nil {
		return nil, err
	}
	if maxDepth < 1 {
		maxDepth = 1
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.nodes[source]; !ok {
		return nil, nil
	}
	if _, ok := s.nodes[target]; !ok {
		return nil, nil
	}

	var paths [][]string
	visited := map[string]bool{source: true}
	path := []string{source}

	var walk func(current string, depth int)
	walk = func(current string, depth int) {
		if current == target {
			found := make([]string, len(path))
			copy(found, path)
			paths = append(paths, found)
			return
		}
		if depth >= maxDepth {
			return
		}
		for next := range s.adjOut[current] {
			if visited[next] {
				continue
			}
			visited[next] = true
			path = append(path, next)
			walk(next, depth+1)
			path = path[:len(path)-1]
			visited[next] = false
		}
	}
	walk(source, 0)

	return paths, nil
}
