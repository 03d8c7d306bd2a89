package lang

import (
	"fmt"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// commentLikeSuffixes matches the trailing component of tree-sitter node
// kinds used for comments, decorators, and attributes across the grammars
// wired through the modern tree-sitter/go-tree-sitter bindings.
var commentLikeSuffixes = []string{"comment", "decorator", "attribute_item", "attribute"}

func isCommentLike(kind string) bool {
	for _, suf := range commentLikeSuffixes {
		if strings.HasSuffix(kind, suf) {
			return true
		}
	}
	return false
}

// meaningfulRegions walks a tree-sitter parse tree and returns one Region
// per node whose kind is in kinds, folding in any immediately preceding
// comment/decorator/attribute sibling. Recursion does not descend into a
// matched node: nested meaningful children are never re-emitted.
func meaningfulRegions(language *sitter.Language, langName string, source []byte, kinds map[string]bool) ([]Region, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	if err := parser.SetLanguage(language); err != nil {
		return nil, fmt.Errorf("set language %s: %w", langName, err)
	}

	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil, fmt.Errorf("failed to parse %s source", langName)
	}
	defer tree.Close()

	var regions []Region
	var walk func(node *sitter.Node)
	walk = func(node *sitter.Node) {
		if node == nil {
			return
		}
		if kinds[node.Kind()] {
			regions = append(regions, buildRegion(node, source))
			return // do not recurse into a matched node
		}
		for i := 0; i < int(node.ChildCount()); i++ {
			walk(node.Child(uint(i)))
		}
	}
	walk(tree.RootNode())
	return regions, nil
}

func buildRegion(node *sitter.Node, source []byte) Region {
	start := node
	for {
		prev := start.PrevSibling()
		if prev == nil || !isCommentLike(prev.Kind()) {
			break
		}
		start = prev
	}

	startLine := int(start.StartPosition().Row) + 1
	endLine := int(node.EndPosition().Row) + 1

	name := symbolName(node, source)
	var symbols []string
	if name != "" {
		symbols = []string{name}
	} else {
		symbols = []string{fmt.Sprintf("%s_%d", node.Kind(), startLine)}
	}

	return Region{
		Kind:      node.Kind(),
		Name:      name,
		StartLine: startLine,
		EndLine:   endLine,
		Symbols:   symbols,
	}
}

func symbolName(node *sitter.Node, source []byte) string {
	if nameNode := node.ChildByFieldName("name"); nameNode != nil {
		return nodeText(nameNode, source)
	}
	return ""
}

func nodeText(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	return string(source[node.StartByte():node.EndByte()])
}

// linesWithPrefix returns every raw source line matching any of the given
// prefixes, case-sensitive, trimmed — the shared basis for the lightweight
// regex-free import/export scanning used by the language plugins.
func linesWithPrefix(source []byte, prefixes ...string) []string {
	var out []string
	for _, line := range strings.Split(string(source), "\n") {
		trimmed := strings.TrimSpace(line)
		for _, p := range prefixes {
			if strings.HasPrefix(trimmed, p) {
				out = append(out, trimmed)
				break
			}
		}
	}
	return out
}
