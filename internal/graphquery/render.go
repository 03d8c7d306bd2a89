package graphquery

import (
	"context"
	"fmt"
	"strings"
)

// RenderSearch implements spec.md §6's graphrag_search(query) external
// interface: run Search and format the ranked nodes as markdown.
func (s *Searcher) RenderSearch(ctx context.Context, query string, maxResults int) (string, error) {
	matches, err := s.Search(ctx, query, maxResults)
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return fmt.Sprintf("No graph nodes matched %q.\n", query), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Graph search: %s\n\n", query)
	for _, m := range matches {
		n := m.Node
		fmt.Fprintf(&b, "## %s (%s, score %.2f)\n", n.DisplayName, n.Kind, m.Similarity)
		if n.Description != "" {
			fmt.Fprintf(&b, "%s\n", n.Description)
		}
		fmt.Fprintf(&b, "- path: `%s`\n", n.ID)
		fmt.Fprintf(&b, "- language: %s\n", n.Language)
		if len(n.Symbols) > 0 {
			fmt.Fprintf(&b, "- symbols: %s\n", strings.Join(n.Symbols, ", "))
		}
		b.WriteString("\n")
	}
	return b.String(), nil
}

// RenderOverview implements spec.md §6's overview external interface.
func (s *Searcher) RenderOverview() (string, error) {
	ov, err := s.Overview()
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Graph overview\n\n")
	fmt.Fprintf(&b, "- total nodes: %d\n", ov.TotalNodes)
	fmt.Fprintf(&b, "- total relationships: %d\n\n", ov.TotalRelationships)

	b.WriteString("## Nodes by kind\n")
	for kind, count := range ov.NodesByKind {
		fmt.Fprintf(&b, "- %s: %d\n", kind, count)
	}
	b.WriteString("\n## Relationships by type\n")
	for relType, count := range ov.RelationshipsByType {
		fmt.Fprintf(&b, "- %s: %d\n", relType, count)
	}
	return b.String(), nil
}
