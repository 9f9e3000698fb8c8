// Package assistant proxies an OpenAI-compatible chat-completions API for
// the in-app helper ("Sakura Spirit") and for generating movie metadata in
// the admin studio. Every transport or parsing failure surfaces as
// ErrService so callers can fall back to a canned reply instead of crashing.
package assistant

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

	"github.com/holymotion/holymotion/internal/catalog"
)

var ErrService = errors.New("assistant service failed")

// Fallback replies shown to the user when the external service misbehaves.
const (
	FallbackReply      = "I'm sorry, my magical connection is weak right now."
	FallbackEmptyReply = "The spirits are silent for now..."
)

const chatSystemPrompt = `You are "Sakura Spirit", the AI assistant for the Holy Motion movie streaming service.
You are helpful, magical, and polite.
Answer the user's question. If they ask for recommendations, use the movie catalog provided below.`

type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey, model string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatChoice struct {
	Message chatMessage `json:"message"`
}

type chatResponse struct {
	Choices []chatChoice `json:"choices"`
}

// CatalogContext renders the movie list the way the assistant prompt expects.
func CatalogContext(movies []catalog.Movie) string {
	var b strings.Builder
	for _, m := range movies {
		fmt.Fprintf(&b, "- %s (%s): %s\n", m.Title, m.Genre, m.Description)
	}
	return b.String()
}

// Chat answers a viewer question with the catalog as context.
func (c *Client) Chat(ctx context.Context, catalogContext, userMessage string) (string, error) {
	system := chatSystemPrompt
	if catalogContext != "" {
		system += "\n\nCurrent movie catalog:\n" + catalogContext
	}

	content, err := c.complete(ctx, system, userMessage)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(content) == "" {
		return FallbackEmptyReply, nil
	}
	return content, nil
}

type MovieDetails struct {
	Description string   `json:"description"`
	Genre       string   `json:"genre"`
	ReleaseDate string   `json:"releaseDate"`
	Directors   []string `json:"directors"`
	Producers   []string `json:"producers"`
}

const detailsSystemPrompt = `You fill in metadata for a movie catalog. Given a movie title, return a JSON object with:
- "description": a 2-3 sentence synopsis (string)
- "genre": the primary genre (string)
- "releaseDate": the release date, YYYY-MM-DD (string)
- "directors": array of strings
- "producers": array of strings

Return ONLY valid JSON, no markdown formatting.`

// GenerateMovieDetails asks the model for structured metadata for a title.
func (c *Client) GenerateMovieDetails(ctx context.Context, title string) (*MovieDetails, error) {
	content, err := c.complete(ctx, detailsSystemPrompt, fmt.Sprintf("Generate details for a movie titled %q.", title))
	if err != nil {
		return nil, err
	}
	return parseDetailsJSON(content)
}

func (c *Client) complete(ctx context.Context, system, user string) (string, error) {
	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("%w: marshal request: %v", ErrService, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: create request: %v", ErrService, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: send request: %v", ErrService, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read response: %v", ErrService, err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: API returned status %d: %s", ErrService, resp.StatusCode, string(respBody))
	}

	var chatResp chatResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return "", fmt.Errorf("%w: unmarshal response: %v", ErrService, err)
	}
	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("%w: empty choices", ErrService)
	}
	return chatResp.Choices[0].Message.Content, nil
}

func parseDetailsJSON(content string) (*MovieDetails, error) {
	var details MovieDetails
	if err := json.Unmarshal([]byte(content), &details); err == nil {
		return &details, nil
	}

	stripped := stripMarkdownFences(content)
	if err := json.Unmarshal([]byte(stripped), &details); err != nil {
		return nil, fmt.Errorf("%w: parse details JSON: %v", ErrService, err)
	}
	return &details, nil
}

func stripMarkdownFences(content string) string {
	trimmed := strings.TrimSpace(content)
	if strings.HasPrefix(trimmed, "```") {
		firstNewline := strings.Index(trimmed, "\n")
		if firstNewline == -1 {
			return trimmed
		}
		trimmed = trimmed[firstNewline+1:]

		if idx := strings.LastIndex(trimmed, "```"); idx != -1 {
			trimmed = trimmed[:idx]
		}

		return strings.TrimSpace(trimmed)
	}
	return trimmed
}
