package graphrag

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/mvp-joe/codetrace/internal/store"
)

// RelationCandidate is one pattern-level relationship an LLM proposes
// between two architecturally significant nodes (spec.md §4.J step 5's
// "optional AI augmentation"). DiscoverAIRelationships keeps only the
// candidates that pass the confidence and target-exists checks.
type RelationCandidate struct {
	TargetID     string
	RelationType string
	Description  string
	Confidence   float64
}

// Summarizer generates LLM-augmented graph content: a one-line description
// for a node (Describe, consulted only when a node is architecturally
// significant per kind.go) and pattern-level relationships between
// significant nodes (DiscoverRelationships, spec.md §4.J step 5). Both are
// always optional: every caller must fall back gracefully on any error
// (spec.md §7, LLM-augmentation errors never abort indexing).
type Summarizer interface {
	Describe(ctx context.Context, n nodeDraft) (string, error)

	// DiscoverRelationships proposes pattern-level relationships from node
	// to any of candidateIDs (every other architecturally significant node
	// in this batch). Implementations should return only relationships
	// they have some confidence in; the caller still re-applies spec.md
	// §4.J step 5's confidence > 0.7 and target-exists gates regardless.
	DiscoverRelationships(ctx context.Context, node store.GraphNode, candidateIDs []string) ([]RelationCandidate, error)
}

// GeminiSummarizer implements Summarizer via Gemini text generation,
// grounded on the same genai wiring kokodak-docod's gemini_summarizer.go
// uses for its doc-section generation.
type GeminiSummarizer struct {
	client *genai.Client
	model  string
}

// NewGeminiSummarizer builds a Summarizer backed by the Gemini API.
func NewGeminiSummarizer(ctx context.Context, apiKey, model string) (*GeminiSummarizer, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &GeminiSummarizer{client: client, model: model}, nil
}

func (s *GeminiSummarizer) Describe(ctx context.Context, n nodeDraft) (string, error) {
	prompt := fmt.Sprintf(
		"In one plain sentence, describe the purpose of this %s source file %q. "+
			"It defines: %s. It imports: %s. Respond with the sentence only, no markdown.",
		n.language, n.path, strings.Join(n.symbols, ", "), strings.Join(n.imports, ", "))

	resp, err := s.client.Models.GenerateContent(ctx, s.model, genai.Text(prompt), nil)
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("empty response from model")
	}
	return text, nil
}

// aiRelationJSON is the wire shape DiscoverRelationships asks the model to
// respond in; fields map directly onto RelationCandidate.
type aiRelationJSON struct {
	TargetPath   string  `json:"target_path"`
	RelationType string  `json:"relation_type"`
	Description  string  `json:"description"`
	Confidence   float64 `json:"confidence"`
}

func (s *GeminiSummarizer) DiscoverRelationships(ctx context.Context, node store.GraphNode, candidateIDs []string) ([]RelationCandidate, error) {
	if len(candidateIDs) == 0 {
		return nil, nil
	}

	prompt := fmt.Sprintf(
		"You are analyzing architectural relationships between source files in a codebase.\n"+
			"Source file: %q (%s). It defines: %s. It imports: %s. Description: %s.\n"+
			"Other architecturally significant files in this project: %s.\n"+
			"Identify pattern-level relationships from the source file to any of those other files "+
			"— for example implements_pattern, dependency_injection, extends_pattern, factory_of, orchestrates. "+
			"Only propose a relationship you have real confidence in; omit anything speculative.\n"+
			"Respond with a JSON array only, no markdown fences. Each element: "+
			`{"target_path": "<one of the listed files>", "relation_type": "<short snake_case tag>", `+
			`"description": "<one sentence>", "confidence": <0 to 1 number>}. `+
			"Respond with [] if no such relationship exists.",
		node.ID, node.Language, strings.Join(node.Symbols, ", "), strings.Join(node.Imports, ", "),
		node.Description, strings.Join(candidateIDs, ", "))

	cfg := &genai.GenerateContentConfig{ResponseMIMEType: "application/json"}
	resp, err := s.client.Models.GenerateContent(ctx, s.model, genai.Text(prompt), cfg)
	if err != nil {
		return nil, err
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return nil, nil
	}

	var raw []aiRelationJSON
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, fmt.Errorf("parse relationship response: %w", err)
	}

	out := make([]RelationCandidate, 0, len(raw))
	for _, r := range raw {
		out = append(out, RelationCandidate{
			TargetID:     r.TargetPath,
			RelationType: r.RelationType,
			Description:  r.Description,
			Confidence:   r.Confidence,
		})
	}
	return out, nil
}
