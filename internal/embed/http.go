package embed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"
)

// httpProvider is the Bearer-authenticated HTTP embedding service back end
//.
type httpProvider struct {
	endpoint   string
	apiKey     string
	dimensions int
	client     *http.Client
}

// NewHTTPProvider builds a provider that calls a remote embedding service.
// apiKeyEnv names the environment variable the bearer token is read from
// at construction time; the ambient config layer never reads files or
// other env vars on this path.
func NewHTTPProvider(endpoint, apiKeyEnv string, dimensions int) (Provider, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("http embedding provider: endpoint is required")
	}
	if dimensions <= 0 {
		dimensions = 384
	}
	return &httpProvider{
		endpoint:   endpoint,
		apiKey:     os.Getenv(apiKeyEnv),
		dimensions: dimensions,
		client:     &http.Client{Timeout: 30 * time.Second},
	}, nil
}

type httpEmbedRequest struct {
	Texts []string `json:"texts"`
	Mode  string   `json:"mode"`
}

type httpEmbedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

func (p *httpProvider) Embed(ctx context.Context, texts []string, mode EmbedMode) ([][]float32, error) {
	body, err := json.Marshal(httpEmbedRequest{Texts: texts, Mode: string(mode)})
	if err != nil {
		return nil, fmt.Errorf("marshal embed request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build embed request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embed request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embedding service returned status %d", resp.StatusCode)
	}

	var out httpEmbedResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode embed response: %w", err)
	}
	return out.Embeddings, nil
}

func (p *httpProvider) Dimensions() int { return p.dimensions }

func (p *httpProvider) Close() error { return nil }
