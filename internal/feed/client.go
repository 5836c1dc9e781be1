package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/comment-giveaway-api/internal/config"
	"golang.org/x/time/rate"
)

// HTTPClient fetches comment pages from a Graph-style HTTP API. A token
// bucket limiter throttles outgoing requests so budgeted advance loops
// cannot exhaust the upstream quota.
type HTTPClient struct {
	httpClient  *http.Client
	limiter     *rate.Limiter
	baseURL     string
	accessToken string
	pageSize    int
}

type mediaResponse struct {
	ID            string `json:"id"`
	Timestamp     string `json:"timestamp"`
	CommentsCount int    `json:"comments_count"`
}

type commentsResponse struct {
	Data   []RawComment `json:"data"`
	Paging struct {
		Cursors struct {
			After string `json:"after"`
		} `json:"cursors"`
		Next string `json:"next"`
	} `json:"paging"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// NewHTTPClient creates a rate-limited feed client
func NewHTTPClient(cfg *config.FeedConfig) *HTTPClient {
	return &HTTPClient{
		httpClient:  &http.Client{Timeout: cfg.RequestTimeout},
		limiter:     rate.NewLimiter(rate.Every(cfg.RequestInterval), 1),
		baseURL:     cfg.BaseURL,
		accessToken: cfg.AccessToken,
		pageSize:    cfg.PageSize,
	}
}

// FetchMedia returns post-level metadata for the given media id
func (c *HTTPClient) FetchMedia(ctx context.Context, mediaID string) (*Media, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("fields", "id,timestamp,comments_count")
	query.Set("access_token", c.accessToken)

	var resp mediaResponse
	if err := c.getJSON(ctx, fmt.Sprintf("%s/%s?%s", c.baseURL, mediaID, query.Encode()), &resp); err != nil {
		return nil, fmt.Errorf("fetch media %s: %w", mediaID, err)
	}

	return &Media{
		ID:            resp.ID,
		Timestamp:     resp.Timestamp,
		CommentsCount: resp.CommentsCount,
	}, nil
}

// FetchPage returns the page after cursor, or the first page when cursor
// is empty
func (c *HTTPClient) FetchPage(ctx context.Context, mediaID, cursor string) (*Page, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("fields", "id,text,timestamp,like_count,from")
	query.Set("limit", strconv.Itoa(c.pageSize))
	query.Set("access_token", c.accessToken)
	if cursor != "" {
		query.Set("after", cursor)
	}

	var resp commentsResponse
	endpoint := fmt.Sprintf("%s/%s/comments?%s", c.baseURL, mediaID, query.Encode())
	if err := c.getJSON(ctx, endpoint, &resp); err != nil {
		return nil, fmt.Errorf("fetch comments page for %s: %w", mediaID, err)
	}

	page := &Page{Items: resp.Data}
	// The feed signals a further page by echoing a "next" link; only then
	// is the after cursor a valid resumption token.
	if resp.Paging.Next != "" {
		page.NextCursor = resp.Paging.Cursors.After
	}
	return page, nil
}

func (c *HTTPClient) getJSON(ctx context.Context, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr apiError
		if decodeErr := json.NewDecoder(resp.Body).Decode(&apiErr); decodeErr == nil && apiErr.Error.Message != "" {
			return fmt.Errorf("feed API status %d: %s", resp.StatusCode, apiErr.Error.Message)
		}
		return fmt.Errorf("feed API status %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
