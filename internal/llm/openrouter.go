package llm

import (
	"fmt"
	"net/http"
)

const defaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"

// openRouterHeaders identify the app on OpenRouter's usage dashboards.
var openRouterHeaders = map[string]string{
	"HTTP-Referer": "https://github.com/abhisek/parlo",
	"X-Title":      "Parlo",
}

// OpenRouterProvider is an OpenAIProvider aimed at OpenRouter. Model ids are
// vendor-prefixed ("openai/gpt-4o-mini") and used unchanged.
type OpenRouterProvider struct {
	*OpenAIProvider
}

func NewOpenRouterProvider(cfg OpenRouterConfig) (*OpenRouterProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openrouter API key is required")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultOpenRouterBaseURL
	}

	client := newOpenAIClient(cfg.APIKey, baseURL, &http.Client{
		Transport: headerTransport{headers: openRouterHeaders, next: http.DefaultTransport},
	})
	return &OpenRouterProvider{OpenAIProvider: &OpenAIProvider{client: client, model: cfg.Model}}, nil
}

// headerTransport adds fixed headers to every request.
type headerTransport struct {
	headers map[string]string
	next    http.RoundTripper
}

func (t headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	for k, v := range t.headers {
		req.Header.Set(k, v)
	}
	return t.next.RoundTrip(req)
}
