package suggest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/frontmatter"
)

const (
	defaultModel       = "gpt-4o"
	defaultTimeout     = 60 * time.Second
	defaultMaxAttempts = 3
	defaultBackoff     = 2 * time.Second

	// maxBodyChars bounds how much document text goes into the prompt.
	maxBodyChars = 6000
)

const systemPrompt = `You are an SEO assistant for a documentation site.
Given a Markdown document, respond with a single JSON object containing:
  "description": a compelling meta description of at most 160 characters,
  "keywords": 5 to 8 relevant search keywords as a JSON array of strings,
  "structuredData": an object with a "type" field, either "Article" or "DefinedTerm".
Write the description in the document's own language. Respond with JSON only.`

// ClientOptions configures the remote suggestion client.
type ClientOptions struct {
	Endpoint    string        // full chat-completions URL
	Model       string        // model name sent in the request
	APIKey      string        // bearer credential
	Timeout     time.Duration // hard per-attempt timeout
	MaxAttempts int           // bounded retry, including the first try
	Backoff     time.Duration // base delay, doubled per retry
}

func (o *ClientOptions) defaults() {
	if o.Model == "" {
		o.Model = defaultModel
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = defaultMaxAttempts
	}
	if o.Backoff <= 0 {
		o.Backoff = defaultBackoff
	}
}

// Client asks an OpenAI-compatible chat-completions endpoint for metadata
// suggestions. Every failure mode (transport, non-2xx, malformed payload)
// surfaces as apperr.ErrSuggestUnavailable after the retry budget runs out.
type Client struct {
	hc   *http.Client
	opts ClientOptions
}

// NewClient builds a Client. The API key must be non-empty.
func NewClient(opts ClientOptions) (*Client, error) {
	opts.defaults()
	if opts.Endpoint == "" {
		return nil, fmt.Errorf("suggest: endpoint is required")
	}
	if opts.APIKey == "" {
		return nil, fmt.Errorf("suggest: missing API key")
	}
	return &Client{
		hc:   &http.Client{Timeout: opts.Timeout},
		opts: opts,
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	Temperature    float64       `json:"temperature"`
	ResponseFormat struct {
		Type string `json:"type"`
	} `json:"response_format"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Suggest implements Suggester with bounded retry and backoff.
func (c *Client) Suggest(ctx context.Context, path string, body string, existing *frontmatter.Block) (Candidate, error) {
	payload, err := c.encodeRequest(path, body, existing)
	if err != nil {
		return Candidate{}, fmt.Errorf("%w: encode request: %v", apperr.ErrSuggestUnavailable, err)
	}

	var lastErr error
	for attempt := 1; attempt <= c.opts.MaxAttempts; attempt++ {
		if attempt > 1 {
			delay := c.opts.Backoff << (attempt - 2)
			select {
			case <-ctx.Done():
				return Candidate{}, fmt.Errorf("%w: %v", apperr.ErrSuggestUnavailable, ctx.Err())
			case <-time.After(delay):
			}
		}

		cand, retryable, err := c.once(ctx, payload)
		if err == nil {
			return cand, nil
		}
		lastErr = err
		if !retryable {
			break
		}
	}
	return Candidate{}, fmt.Errorf("%w: %v", apperr.ErrSuggestUnavailable, lastErr)
}

// once performs a single request. retryable marks transient failures
// (transport errors, 408/429, 5xx); the rest fail fast.
func (c *Client) once(ctx context.Context, payload []byte) (Candidate, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.opts.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return Candidate{}, false, err
	}
	req.Header.Set("Authorization", "Bearer "+c.opts.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return Candidate{}, false, err
		}
		return Candidate{}, true, err
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		slurp, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		err := fmt.Errorf("upstream %d: %s", resp.StatusCode, strings.TrimSpace(string(slurp)))
		retryable := resp.StatusCode == http.StatusRequestTimeout ||
			resp.StatusCode == http.StatusTooManyRequests ||
			resp.StatusCode/100 == 5
		return Candidate{}, retryable, err
	}

	var cr chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return Candidate{}, false, fmt.Errorf("decode response: %v", err)
	}
	if len(cr.Choices) == 0 || cr.Choices[0].Message.Content == "" {
		return Candidate{}, false, fmt.Errorf("empty completion")
	}

	cand, err := decodeCandidate(cr.Choices[0].Message.Content)
	if err != nil {
		return Candidate{}, false, err
	}
	return cand, false, nil
}

func (c *Client) encodeRequest(path, body string, existing *frontmatter.Block) ([]byte, error) {
	truncated := body
	if len(truncated) > maxBodyChars {
		truncated = truncated[:maxBodyChars]
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Document path: %s\n", path)
	if existing.Len() > 0 {
		fmt.Fprintf(&sb, "Existing metadata keys: %s\n", strings.Join(existing.Keys(), ", "))
		if kw, ok := existing.Get("keywords"); ok {
			fmt.Fprintf(&sb, "Existing keywords: %s\n", strings.Join(kw.AsSequence(), ", "))
		}
	}
	sb.WriteString("\nDocument:\n")
	sb.WriteString(truncated)

	req := chatRequest{
		Model:       c.opts.Model,
		Temperature: 0.7,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: sb.String()},
		},
	}
	req.ResponseFormat.Type = "json_object"
	return json.Marshal(&req)
}

// decodeCandidate parses the model output, tolerating ```json fences and a
// keywords field delivered as one comma-separated string.
func decodeCandidate(content string) (Candidate, error) {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(strings.TrimSpace(content), "```")
	}

	var raw struct {
		Description    string            `json:"description"`
		Keywords       json.RawMessage   `json:"keywords"`
		Author         string            `json:"author"`
		DatePublished  string            `json:"datePublished"`
		DateModified   string            `json:"dateModified"`
		StructuredData map[string]string `json:"structuredData"`
	}
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return Candidate{}, fmt.Errorf("decode candidate: %v", err)
	}

	cand := Candidate{
		Description:    strings.TrimSpace(raw.Description),
		Author:         strings.TrimSpace(raw.Author),
		DatePublished:  strings.TrimSpace(raw.DatePublished),
		DateModified:   strings.TrimSpace(raw.DateModified),
		StructuredData: raw.StructuredData,
	}

	if len(raw.Keywords) > 0 {
		var list []string
		if err := json.Unmarshal(raw.Keywords, &list); err != nil {
			var joined string
			if err := json.Unmarshal(raw.Keywords, &joined); err != nil {
				return Candidate{}, fmt.Errorf("decode keywords: %v", err)
			}
			for _, k := range strings.Split(joined, ",") {
				if k = strings.TrimSpace(k); k != "" {
					list = append(list, k)
				}
			}
		}
		cand.Keywords = list
	}

	if cand.IsZero() {
		return Candidate{}, fmt.Errorf("candidate proposes nothing")
	}
	return cand, nil
}
