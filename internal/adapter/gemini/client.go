// Package gemini adapts the Google generative AI SDK to the chat,
// embedding and agent capabilities the service consumes.
package gemini

import (
	"context"
	"strings"
	"sync"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"libris/internal/apperr"
)

// Client wraps a lazily-constructed genai.Client. Construction failures
// surface as Config errors at call time rather than crashing startup, so
// the CRUD surface stays usable without provider credentials.
type Client struct {
	apiKey       string
	defaultModel string
	opts         []option.ClientOption

	mu  sync.Mutex
	api *genai.Client
}

// NewClient remembers the credentials; the underlying SDK client is built
// on first use. Extra options are for tests (fake endpoints).
func NewClient(apiKey, defaultModel string, opts ...option.ClientOption) *Client {
	return &Client{apiKey: apiKey, defaultModel: defaultModel, opts: opts}
}

func (c *Client) client(ctx context.Context) (*genai.Client, error) {
	if c.apiKey == "" {
		return nil, apperr.New(apperr.Config, "unable to initialize gemini client: GEMINI_API_KEY is not configured")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.api != nil {
		return c.api, nil
	}

	opts := append([]option.ClientOption{}, c.opts...)
	opts = append(opts, option.WithAPIKey(c.apiKey))
	api, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, apperr.Wrap(apperr.Config, "unable to initialize gemini client", err)
	}
	c.api = api
	return api, nil
}

// GenerateRequest is one system + user exchange.
type GenerateRequest struct {
	System      string
	Message     string
	Model       string
	Temperature float32
}

// Generate forwards the exchange to the provider and returns the generated
// text verbatim.
func (c *Client) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	api, err := c.client(ctx)
	if err != nil {
		return "", err
	}

	name := req.Model
	if name == "" {
		name = c.defaultModel
	}
	model := api.GenerativeModel(name)
	model.SetTemperature(req.Temperature)
	if req.System != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(req.System)}}
	}

	resp, err := model.GenerateContent(ctx, genai.Text(req.Message))
	if err != nil {
		return "", apperr.Wrap(apperr.Execution, "chat provider", err)
	}

	text := responseText(resp)
	if text == "" {
		return "", apperr.New(apperr.Execution, "chat provider returned no text")
	}
	return text, nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			sb.WriteString(string(t))
		}
	}
	return sb.String()
}
