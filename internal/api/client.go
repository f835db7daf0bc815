package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/justyntemme/raito-t/pkg/models"
)

// ErrNotFound is returned when the catalog has no such resource
var ErrNotFound = errors.New("not found")

// Client is the HTTP client for the manga catalog API
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a new API client
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// request makes an HTTP request to the API
func (c *Client) request(ctx context.Context, method, path string, body interface{}) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	return c.httpClient.Do(req)
}

// parseResponse reads and unmarshals the response body
func parseResponse[T any](resp *http.Response) (T, error) {
	var result T
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return result, err
	}

	if resp.StatusCode == http.StatusNotFound {
		return result, ErrNotFound
	}
	if resp.StatusCode >= 400 {
		var errResp models.ErrorResponse
		if err := json.Unmarshal(body, &errResp); err != nil || errResp.Error == "" {
			return result, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
		}
		return result, fmt.Errorf("%s", errResp.Error)
	}

	if err := json.Unmarshal(body, &result); err != nil {
		return result, err
	}

	return result, nil
}

// Catalog methods

// GetManga returns a manga with both chapter orderings
func (c *Client) GetManga(ctx context.Context, id string) (*models.Manga, error) {
	resp, err := c.request(ctx, "GET", "/api/manga/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}
	manga, err := parseResponse[*models.Manga](resp)
	if err != nil {
		return nil, fmt.Errorf("get manga %s: %w", id, err)
	}
	return manga, nil
}

// GetChapter returns the ordered page URLs of a chapter
func (c *Client) GetChapter(ctx context.Context, chapterID string) ([]string, error) {
	resp, err := c.request(ctx, "GET", "/api/chapters/"+url.PathEscape(chapterID)+"/pages", nil)
	if err != nil {
		return nil, err
	}
	pages, err := parseResponse[*models.PagesResponse](resp)
	if err != nil {
		return nil, fmt.Errorf("get chapter %s: %w", chapterID, err)
	}
	return c.resolveAll(pages.URLs), nil
}

// resolveAll turns server-relative page paths into absolute URLs
func (c *Client) resolveAll(urls []string) []string {
	out := make([]string, len(urls))
	for i, u := range urls {
		if strings.HasPrefix(u, "/") {
			u = c.baseURL + u
		}
		out[i] = u
	}
	return out
}

// FetchImage downloads raw image bytes and returns them with the content type
func (c *Client) FetchImage(ctx context.Context, imageURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", imageURL, nil)
	if err != nil {
		return nil, "", err
	}
	if c.token != "" && strings.HasPrefix(imageURL, c.baseURL) {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, "", ErrNotFound
	}
	if resp.StatusCode >= 400 {
		return nil, "", fmt.Errorf("fetch image: HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("read image: %w", err)
	}
	return data, resp.Header.Get("Content-Type"), nil
}

// Reading methods

// GetPosition returns the saved reading position
func (c *Client) GetPosition(ctx context.Context, mangaID string) (*models.ReadingPosition, error) {
	resp, err := c.request(ctx, "GET", "/api/manga/"+url.PathEscape(mangaID)+"/position", nil)
	if err != nil {
		return nil, err
	}

	result, err := parseResponse[*models.PositionResponse](resp)
	if err != nil {
		return nil, err
	}
	return result.Position, nil
}

// SavePosition saves the current reading position
func (c *Client) SavePosition(ctx context.Context, mangaID, chapterID string, page int) error {
	resp, err := c.request(ctx, "POST", "/api/manga/"+url.PathEscape(mangaID)+"/position", map[string]interface{}{
		"chapter_id": chapterID,
		"page":       page,
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("failed to save position: %s", string(body))
	}
	return nil
}

// Health check

// Health checks if the server is available
func (c *Client) Health(ctx context.Context) error {
	resp, err := c.request(ctx, "GET", "/health", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return fmt.Errorf("server unhealthy: status %d", resp.StatusCode)
	}
	return nil
}
