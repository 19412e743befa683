package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"group-gallery-client/internal/models"

	"github.com/rs/zerolog/log"
)

// reachableTimeout bounds the base-URL redirect check. No other call
// carries a timeout; a hung request leaves its pending state standing
// until the caller's context is cancelled.
const reachableTimeout = 5 * time.Second

// Client talks to the media service over HTTP
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// New creates a new API client for the given base URL.
// token may be empty for services that do not require auth.
func New(baseURL, token string) *Client {
	return &Client{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{},
	}
}

// Upload is a local file handed to one of the multipart endpoints
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// CommentRequest is the body for the comment endpoints
type CommentRequest struct {
	UserID  string               `json:"userId"`
	Comment string               `json:"comment"`
	Media   *models.CommentMedia `json:"media,omitempty"`
}

type reactionRequest struct {
	UserID   string `json:"userId"`
	Reaction string `json:"reaction"`
}

// ListMedia fetches one page of the group feed. The server either returns
// the current {media, hasMore} shape or a legacy bare array; for the legacy
// shape hasMore is inferred from the page being non-empty, which cannot
// distinguish a full last page from more pages remaining.
func (c *Client) ListMedia(ctx context.Context, groupID string, page int) (models.PageResult, error) {
	u := fmt.Sprintf("%s/media/%s?page=%s", c.baseURL, url.PathEscape(groupID), strconv.Itoa(page))

	body, err := c.do(ctx, http.MethodGet, u, "", nil)
	if err != nil {
		return models.PageResult{}, err
	}

	result, err := decodePage(body)
	if err != nil {
		return models.PageResult{}, fmt.Errorf("failed to decode media page: %w", err)
	}

	for i := range result.Media {
		if err := result.Media[i].Validate(); err != nil {
			return models.PageResult{}, fmt.Errorf("invalid media item %q: %w", result.Media[i].Filename, err)
		}
	}

	return result, nil
}

// decodePage handles both response shapes of the media list endpoint
func decodePage(body []byte) (models.PageResult, error) {
	trimmed := bytes.TrimLeft(body, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var media []models.MediaItem
		if err := json.Unmarshal(trimmed, &media); err != nil {
			return models.PageResult{}, err
		}
		return models.PageResult{Media: media, HasMore: len(media) > 0}, nil
	}

	var result models.PageResult
	if err := json.Unmarshal(trimmed, &result); err != nil {
		return models.PageResult{}, err
	}
	return result, nil
}

// UploadMedia uploads one or more files to the group. The response body is
// ignored; callers refresh the feed to pick up the new items.
func (c *Client) UploadMedia(ctx context.Context, groupID, uploaderID string, files []Upload) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, f := range files {
		part, err := w.CreateFormFile("media[]", f.Filename)
		if err != nil {
			return fmt.Errorf("failed to create form file: %w", err)
		}
		if _, err := part.Write(f.Data); err != nil {
			return fmt.Errorf("failed to write form file: %w", err)
		}
	}
	if err := w.WriteField("group", groupID); err != nil {
		return fmt.Errorf("failed to write group field: %w", err)
	}
	if err := w.WriteField("uploaderId", uploaderID); err != nil {
		return fmt.Errorf("failed to write uploader field: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	u := fmt.Sprintf("%s/upload", c.baseURL)
	if _, err := c.do(ctx, http.MethodPost, u, w.FormDataContentType(), &buf); err != nil {
		return err
	}
	return nil
}

// ReactToItem posts a reaction to a single media item, keyed by filename
func (c *Client) ReactToItem(ctx context.Context, groupID, filename, userID, emoji string) error {
	u := fmt.Sprintf("%s/media/%s/%s/reactions",
		c.baseURL, url.PathEscape(groupID), url.PathEscape(filename))
	return c.postJSON(ctx, u, reactionRequest{UserID: userID, Reaction: emoji})
}

// ReactToPost posts a reaction to a post
func (c *Client) ReactToPost(ctx context.Context, groupID, postID, userID, emoji string) error {
	u := fmt.Sprintf("%s/media/%s/post/%s/reactions",
		c.baseURL, url.PathEscape(groupID), url.PathEscape(postID))
	return c.postJSON(ctx, u, reactionRequest{UserID: userID, Reaction: emoji})
}

// CommentOnItem adds a comment to a single media item (legacy item key)
func (c *Client) CommentOnItem(ctx context.Context, groupID, itemID string, req CommentRequest) error {
	u := fmt.Sprintf("%s/media/%s/%s/comment",
		c.baseURL, url.PathEscape(groupID), url.PathEscape(itemID))
	return c.postJSON(ctx, u, req)
}

// CommentOnPost adds a comment to a post
func (c *Client) CommentOnPost(ctx context.Context, groupID, postID string, req CommentRequest) error {
	u := fmt.Sprintf("%s/media/%s/post/%s/comment",
		c.baseURL, url.PathEscape(groupID), url.PathEscape(postID))
	return c.postJSON(ctx, u, req)
}

// ReactToComment posts a reaction to a comment. The endpoint addresses
// comments by position, so the caller must compute the index in the
// combined comment list at call time.
func (c *Client) ReactToComment(ctx context.Context, groupID, postID string, index int, userID, emoji string) error {
	u := fmt.Sprintf("%s/media/%s/post/%s/comment/%d/reactions",
		c.baseURL, url.PathEscape(groupID), url.PathEscape(postID), index)
	return c.postJSON(ctx, u, reactionRequest{UserID: userID, Reaction: emoji})
}

// UploadCommentMedia uploads a file attached to a comment and returns the
// server's media descriptor.
func (c *Client) UploadCommentMedia(ctx context.Context, groupID, postID, userID string, file Upload) (models.CommentMedia, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("media", file.Filename)
	if err != nil {
		return models.CommentMedia{}, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(file.Data); err != nil {
		return models.CommentMedia{}, fmt.Errorf("failed to write form file: %w", err)
	}
	if err := w.WriteField("userId", userID); err != nil {
		return models.CommentMedia{}, fmt.Errorf("failed to write user field: %w", err)
	}
	if err := w.Close(); err != nil {
		return models.CommentMedia{}, fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	u := fmt.Sprintf("%s/media/%s/post/%s/comment-media",
		c.baseURL, url.PathEscape(groupID), url.PathEscape(postID))

	body, err := c.do(ctx, http.MethodPost, u, w.FormDataContentType(), &buf)
	if err != nil {
		return models.CommentMedia{}, err
	}

	var media models.CommentMedia
	if err := json.Unmarshal(body, &media); err != nil {
		return models.CommentMedia{}, fmt.Errorf("failed to decode comment media: %w", err)
	}
	if err := media.Validate(); err != nil {
		return models.CommentMedia{}, fmt.Errorf("invalid comment media: %w", err)
	}

	return media, nil
}

// CheckReachable verifies the base URL answers within five seconds
func (c *Client) CheckReachable(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, reachableTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	c.setAuth(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("service unreachable: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	return nil
}

// postJSON sends a JSON body and discards any success response
func (c *Client) postJSON(ctx context.Context, url string, body interface{}) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}
	if _, err := c.do(ctx, http.MethodPost, url, "application/json", bytes.NewReader(data)); err != nil {
		return err
	}
	return nil
}

// do executes a request and returns the response body for 2xx responses.
// Non-2xx responses become an error carrying the server's JSON {error}
// message when one is present.
func (c *Client) do(ctx context.Context, method, url, contentType string, body io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	c.setAuth(req)

	log.Debug().Str("method", method).Str("url", url).Msg("API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Status: resp.StatusCode, Message: errorMessage(data)}
	}

	return data, nil
}

func (c *Client) setAuth(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

// StatusError is a non-2xx response from the service
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("service returned %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("service returned %d", e.Status)
}

// errorMessage extracts the message from a JSON error body, if any
func errorMessage(body []byte) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return payload.Error
}
