package chunk

import (
	"strings"

	"github.com/mvp-joe/codetrace/internal/hash"
)

// heading is one `#`-counted header line.
type heading struct {
	level int
	title string
	line  int // 1-indexed line of the heading itself
}

// node is one section of the header tree: a heading plus the body lines up
// to (but not including) the next sibling or ancestor heading, plus children.
type node struct {
	heading  heading // zero value for the synthetic document root (level 0)
	bodyFrom int     // 1-indexed, inclusive
	bodyTo   int     // 1-indexed, inclusive
	children []*node
}

const (
	levelScaleL1 = 2.0
	levelScaleL2 = 1.0
	levelScaleL3 = 0.75
	levelScaleL4 = 0.5
	levelScaleL5 = 1.0 / 3.0
)

func levelScale(level int) float64 {
	switch level {
	case 1:
		return levelScaleL1
	case 2:
		return levelScaleL2
	case 3:
		return levelScaleL3
	case 4:
		return levelScaleL4
	default:
		return levelScaleL5
	}
}

// BuildDocumentChunks runs the hierarchical markdown chunker
// for one file against a configured target size S, in characters.
func BuildDocumentChunks(path, content string, targetSize int) []Document {
	if strings.TrimSpace(content) == "" {
		return nil
	}

	lines := strings.Split(content, "\n")
	root := buildHeaderTree(lines)

	var emitted []*emittedChunk
	collectChunks(root, nil, targetSize, &emitted)

	emitted = postProcess(emitted, targetSize)

	out := make([]Document, 0, len(emitted))
	for _, e := range emitted {
		body := strings.Join(lines[e.bodyFrom-1:e.bodyTo], "\n")
		out = append(out, Document{
			Base: Base{
				Path:      path,
				Content:   body,
				StartLine: e.bodyFrom,
				EndLine:   e.bodyTo,
				Hash:      hash.Region(body, path, e.bodyFrom, e.bodyTo),
			},
			Title:   e.title,
			Context: e.context,
			Level:   e.level,
		})
	}
	return out
}

// buildHeaderTree parses lines into a tree rooted at a synthetic level-0
// node, where a section of level L nests under the nearest preceding
// section of level < L.
func buildHeaderTree(lines []string) *node {
	root := &node{bodyFrom: 1, bodyTo: len(lines)}
	stack := []*node{root}

	for i, line := range lines {
		level := headingLevel(line)
		if level == 0 {
			continue
		}
		n := &node{
			heading:  heading{level: level, title: strings.TrimSpace(strings.TrimLeft(line, "#")), line: i + 1},
			bodyFrom: i + 2,
			bodyTo:   len(lines),
		}
		for len(stack) > 1 && stack[len(stack)-1].heading.level >= level {
			stack = stack[:len(stack)-1]
		}
		parent := stack[len(stack)-1]
		parent.children = append(parent.children, n)
		stack = append(stack, n)
	}

	fixBodyEnds(root, len(lines))
	return root
}

// fixBodyEnds trims each node's bodyTo down to just before its next sibling
// (or, for the last child, its parent's end).
func fixBodyEnds(n *node, docEnd int) {
	for i, child := range n.children {
		end := docEnd
		if i+1 < len(n.children) {
			end = n.children[i+1].heading.line - 1
		} else {
			end = n.bodyTo
		}
		child.bodyTo = end
		fixBodyEnds(child, docEnd)
	}
	if len(n.children) > 0 {
		n.bodyTo = n.children[0].heading.line - 1
	}
}

func headingLevel(line string) int {
	trimmed := line
	level := 0
	for level < len(trimmed) && trimmed[level] == '#' {
		level++
	}
	if level == 0 || level > len(trimmed) {
		return 0
	}
	if level == len(trimmed) || trimmed[level] != ' ' {
		return 0
	}
	return level
}

type emittedChunk struct {
	bodyFrom, bodyTo int
	title            string
	context          []string
	level            int
}

// subtreeSpan returns the full line span a node and all its descendants
// cover (own body plus every child's span), used for the level-scaled fit
// check and for rendering a "single chunk with headings interleaved".
func subtreeSpan(n *node) (int, int) {
	from, to := n.bodyFrom, n.bodyTo
	for _, c := range n.children {
		cf, ct := subtreeSpan(c)
		if cf < from {
			from = cf
		}
		if ct > to {
			to = ct
		}
	}
	return from, to
}

func subtreeSize(n *node) int {
	from, to := subtreeSpan(n)
	if to < from {
		return 0
	}
	return to - from + 1
}

// collectChunks implements the bottom-up pass: try to fit a section plus
// its whole subtree into the level-scaled target; if it doesn't fit,
// best-merge the children first and emit this section alone.
func collectChunks(n *node, ancestors []string, targetSize int, out *[]*emittedChunk) {
	level := n.heading.level
	if level == 0 {
		// Synthetic document root: never emitted as its own chunk, only
		// its children are processed (or the whole body, if no children).
		if len(n.children) == 0 {
			if n.bodyTo >= n.bodyFrom {
				*out = append(*out, &emittedChunk{bodyFrom: n.bodyFrom, bodyTo: n.bodyTo, level: 0})
			}
			return
		}
		for _, c := range n.children {
			collectChunks(c, nil, targetSize, out)
		}
		return
	}

	scaled := int(float64(targetSize) * levelScale(level))
	from, to := subtreeSpan(n)
	size := to - from + 1

	if size <= scaled || len(n.children) == 0 {
		*out = append(*out, &emittedChunk{
			bodyFrom: from,
			bodyTo:   to,
			title:    n.heading.title,
			context:  append(append([]string{}, ancestors...)),
			level:    level,
		})
		return
	}

	mergedGroups := bestMergeChildren(n.children, targetSize)
	childAncestors := append(append([]string{}, ancestors...), n.heading.title)
	for _, group := range mergedGroups {
		if len(group) == 1 {
			collectChunks(group[0], childAncestors, targetSize, out)
			continue
		}
		from, to := subtreeSpan(group[0])
		for _, g := range group[1:] {
			_, gt := subtreeSpan(g)
			if gt > to {
				to = gt
			}
		}
		*out = append(*out, &emittedChunk{
			bodyFrom: from,
			bodyTo:   to,
			title:    group[0].heading.title,
			context:  append([]string{}, childAncestors...),
			level:    group[0].heading.level,
		})
	}

	// Emit this section's own heading/body alone (the part not covered by
	// any child's span), if it has content beyond its children.
	ownFrom, ownTo := n.bodyFrom, n.bodyTo
	if len(n.children) > 0 {
		ownTo = n.children[0].heading.line - 1
	}
	if ownTo >= ownFrom {
		*out = append(*out, &emittedChunk{
			bodyFrom: ownFrom,
			bodyTo:   ownTo,
			title:    n.heading.title,
			context:  append([]string{}, ancestors...),
			level:    level,
		})
	}
}

// bestMergeChildren greedily combines consecutive siblings whose combined
// size fits targetSize, preferring merges of more siblings (tie-break:
// greater size-utilization efficiency plus 0.1 per additional sibling).
func bestMergeChildren(children []*node, targetSize int) [][]*node {
	var groups [][]*node
	i := 0
	for i < len(children) {
		bestRun := 1
		bestScore := -1.0
		for run := 1; i+run <= len(children); run++ {
			size := 0
			for _, c := range children[i : i+run] {
				size += subtreeSize(c)
			}
			if size > targetSize {
				break
			}
			utilization := float64(size) / float64(targetSize)
			score := utilization + 0.1*float64(run-1)
			if score > bestScore {
				bestScore = score
				bestRun = run
			}
		}
		groups = append(groups, children[i:i+bestRun])
		i += bestRun
	}
	return groups
}

// postProcess merges any chunk smaller than S/4 with the next chunk if
// their line ranges are within 5 lines; otherwise the trailing tiny chunk
// is appended to the previous one.
func postProcess(chunks []*emittedChunk, targetSize int) []*emittedChunk {
	threshold := targetSize / 4
	changed := true
	for changed {
		changed = false
		for i := 0; i < len(chunks); i++ {
			size := chunks[i].bodyTo - chunks[i].bodyFrom + 1
			if size >= threshold {
				continue
			}
			if i+1 < len(chunks) && chunks[i+1].bodyFrom-chunks[i].bodyTo <= 5 {
				chunks[i+1].bodyFrom = chunks[i].bodyFrom
				if chunks[i].title != "" && chunks[i+1].title == "" {
					chunks[i+1].title = chunks[i].title
					chunks[i+1].context = chunks[i].context
				}
				chunks = append(chunks[:i], chunks[i+1:]...)
			} else if i > 0 {
				chunks[i-1].bodyTo = chunks[i].bodyTo
				chunks = append(chunks[:i], chunks[i+1:]...)
			} else {
				continue
			}
			changed = true
			break
		}
	}
	return chunks
}
