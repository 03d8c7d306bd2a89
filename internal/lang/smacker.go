package lang

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
)

// smackerMeaningfulRegions is the smacker/go-tree-sitter counterpart of
// meaningfulRegions, used for the grammars the modern tree-sitter bindings
// in this module's dependency set don't cover (Go, JavaScript, Bash, CSS).
func smackerMeaningfulRegions(language *sitter.Language, langName string, source []byte, kinds map[string]bool) ([]Region, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(language)

	tree, err := parser.ParseCtx(context.Background(), nil, source)
	if err != nil {
		return nil, fmt.Errorf("parse %s source: %w", langName, err)
	}

	var regions []Region
	var walk func(node *sitter.Node)
	walk = func(node *sitter.Node) {
		if node == nil {
			return
		}
		if kinds[node.Type()] {
			regions = append(regions, buildSmackerRegion(node, source))
			return
		}
		for i := 0; i < int(node.ChildCount()); i++ {
			walk(node.Child(i))
		}
	}
	walk(tree.RootNode())
	return regions, nil
}

func buildSmackerRegion(node *sitter.Node, source []byte) Region {
	start := node
	for {
		prev := start.PrevSibling()
		if prev == nil || !isCommentLike(prev.Type()) {
			break
		}
		start = prev
	}

	startLine := int(start.StartPoint().Row) + 1
	endLine := int(node.EndPoint().Row) + 1

	var name string
	if nameNode := node.ChildByFieldName("name"); nameNode != nil {
		name = nameNode.Content(source)
	}

	var symbols []string
	if name != "" {
		symbols = []string{name}
	} else {
		symbols = []string{fmt.Sprintf("%s_%d", node.Type(), startLine)}
	}

	return Region{
		Kind:      node.Type(),
		Name:      name,
		StartLine: startLine,
		EndLine:   endLine,
		Symbols:   symbols,
	}
}
