// Package embedding talks to an external embedding provider over HTTP
// and memoizes results for identical text within the process lifetime.
package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/MikeSquared-Agency/scribe/internal/identity"
)

// Flavor selects the request/response field names the provider expects.
type Flavor string

const (
	// FlavorOllama sends {model, prompt} and reads the embedding field.
	FlavorOllama Flavor = "ollama"
	// FlavorOpenAI sends {model, input} and reads data[0].embedding.
	FlavorOpenAI Flavor = "openai"
)

type Client struct {
	baseURL string
	model   string
	apiKey  string
	flavor  Flavor
	client  *http.Client
	cache   *Cache
	logger  *slog.Logger
}

func NewClient(baseURL, model, apiKey string, flavor Flavor, logger *slog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		model:   model,
		apiKey:  apiKey,
		flavor:  flavor,
		client:  &http.Client{Timeout: 60 * time.Second},
		cache:   NewCache(),
		logger:  logger,
	}
}

type request struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt,omitempty"`
	Input  string `json:"input,omitempty"`
}

type response struct {
	Embedding []float64 `json:"embedding"`
	Data      []struct {
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
}

// Embed returns one vector for the given text. Results are cached by
// (provider flavor, model, normalized text), so repeated requests for the
// same content short-circuit.
func (c *Client) Embed(ctx context.Context, text string) ([]float64, error) {
	key := cacheKey(string(c.flavor), c.model, text)
	if vec, ok := c.cache.Get(key); ok {
		return vec, nil
	}

	reqBody := request{Model: c.model}
	if c.flavor == FlavorOpenAI {
		reqBody.Input = text
	} else {
		reqBody.Prompt = text
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("api call: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("embedding api error %d: %s", resp.StatusCode, excerpt(respBody))
	}

	var apiResp response
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	vec := apiResp.Embedding
	if len(vec) == 0 && len(apiResp.Data) > 0 {
		vec = apiResp.Data[0].Embedding
	}
	if len(vec) == 0 {
		return nil, fmt.Errorf("no embedding in response")
	}

	c.cache.Put(key, vec)
	return vec, nil
}

func cacheKey(provider, model, text string) string {
	return provider + "|" + model + "|" + identity.NormalizeText(text)
}

func excerpt(body []byte) string {
	const limit = 256
	if len(body) > limit {
		body = body[:limit]
	}
	return string(body)
}
