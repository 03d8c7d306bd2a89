package embed

import "fmt"

// Config selects and configures one embedding provider for one role.
type Config struct {
	// Provider is "local", "http", or "mock".
	Provider string

	// ModelID identifies the model for the local provider's process-wide
	// cache key.
	ModelID string

	// Role is the model role this provider serves.
	Role Role

	// Endpoint is the HTTP embedding service URL (http provider only).
	Endpoint string

	// APIKeyEnv names the environment variable holding the bearer token
	// for the HTTP provider (e.g. "CODETRACE_EMBED_API_KEY").
	APIKeyEnv string

	// Dimensions is the vector size this provider's model produces.
	Dimensions int
}

// NewProvider builds a Provider from Config.
func NewProvider(cfg Config) (Provider, error) {
	switch cfg.Provider {
	case "local", "":
		return NewLocalProvider(cfg.ModelID, cfg.Role, cfg.Dimensions), nil
	case "http":
		return NewHTTPProvider(cfg.Endpoint, cfg.APIKeyEnv, cfg.Dimensions)
	case "mock":
		return newMockProvider(), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s (supported: local, http, mock)", cfg.Provider)
	}
}
