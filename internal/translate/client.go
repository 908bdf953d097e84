package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Request is the payload forwarded to the external translator.
type Request struct {
	Text          string   `json:"text"`
	SourceLocale  string   `json:"sourceLocale"`
	TargetLocales []string `json:"targetLocales"`
}

// Response carries one translation per requested target locale.
type Response struct {
	Translations map[string]string `json:"translations"`
}

// Client talks to the external translation service over HTTP.
//
// The service is a local LLM-style collaborator; calls are time-bounded by
// the configured timeout and a failure is always safe to surface, because
// nothing on this path ever mutates catalog state.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient constructs a new [Client] for the given translator endpoint.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Translate forwards the request and decodes the translator's response.
func (client *Client) Translate(ctx context.Context, input Request) (*Response, error) {
	body, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("translate: encode request: %w", err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, client.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("translate: build request: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")

	response, err := client.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("translate: call translator: %w", err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("translate: translator returned status %d", response.StatusCode)
	}

	var decoded Response
	if err := json.NewDecoder(response.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("translate: decode response: %w", err)
	}
	return &decoded, nil
}
