// Package api is the HTTP client for the Dem-News backend.
//
// It converts wire payloads into typed store patches and backend
// rejections into typed errors; no other package sees HTTP status
// codes or the backend's JSON dialect. Requests are rate limited to
// stay a good citizen of a shared backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/Dem-News/demnews/internal/news"
	"github.com/Dem-News/demnews/internal/store"
)

const userAgent = "demnews/1.0 (+https://github.com/Dem-News/demnews)"

// requestsPerSecond caps outbound request rate. Burst capacity covers
// a feed refresh plus a couple of user actions landing together.
const requestsPerSecond = 5

// TokenSource supplies the bearer token for authenticated requests.
// An empty string sends the request unauthenticated.
type TokenSource func() string

// Client talks to the Dem-News backend.
type Client struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
	token   TokenSource
}

// NewClient creates a Client for the given base URL. token may be nil
// for a client that only hits public endpoints.
func NewClient(baseURL string, timeout time.Duration, token TokenSource) *Client {
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), 10),
		token:   token,
	}
}

// do performs one JSON round-trip. body is marshaled when non-nil; the
// response is decoded into out when non-nil. Backend rejections come
// back as *Error with a classified kind.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != nil {
		if tok := c.token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return &Error{Kind: KindNetwork, Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errBody errorResponse
		_ = json.NewDecoder(resp.Body).Decode(&errBody)
		msg := errBody.text()
		if msg == "" {
			msg = resp.Status
		}
		return &Error{Kind: classify(resp.StatusCode, msg), Status: resp.StatusCode, Message: msg}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// FetchScoped retrieves one page of a scoped feed. The local scope
// queries by location and radius; explore searches without a
// geo-bound. Returned patches are KindFull in server order.
func (c *Client) FetchScoped(ctx context.Context, scope store.Scope, params store.FetchParams) ([]store.Patch, error) {
	q := url.Values{}
	path := "/news/search"
	if scope == store.ScopeLocal {
		path = "/news/location"
		if params.Location != nil {
			q.Set("latitude", strconv.FormatFloat(params.Location.Latitude, 'f', -1, 64))
			q.Set("longitude", strconv.FormatFloat(params.Location.Longitude, 'f', -1, 64))
		}
		if params.RadiusKm > 0 {
			q.Set("radius", strconv.FormatFloat(params.RadiusKm, 'f', -1, 64))
		}
	}
	if params.Category != "" {
		q.Set("category", params.Category)
	}
	if params.VerifiedOnly {
		q.Set("verified", "true")
	}
	if params.Query != "" {
		q.Set("query", params.Query)
	}

	var list listResponse
	if err := c.do(ctx, http.MethodGet, path, q, nil, &list); err != nil {
		return nil, err
	}

	patches := make([]store.Patch, len(list.News))
	for i, w := range list.News {
		patches[i] = w.toPatch(store.KindFull)
	}
	return patches, nil
}

// FetchEntity retrieves a single entity, used by the conflict resolver
// to observe the latest server state.
func (c *Client) FetchEntity(ctx context.Context, id string) (store.Patch, error) {
	var w wireNews
	if err := c.do(ctx, http.MethodGet, "/news/"+id, nil, nil, &w); err != nil {
		return store.Patch{}, err
	}
	return w.toPatch(store.KindFull), nil
}

// CreateNewsRequest is the body of a create call.
type CreateNewsRequest struct {
	Content  string
	Category string
	Location *news.GeoPoint
	Media    []news.Media
}

// CreateNews posts a new item and returns it as a full patch.
func (c *Client) CreateNews(ctx context.Context, reqData CreateNewsRequest) (store.Patch, error) {
	body := map[string]any{
		"content":  reqData.Content,
		"category": reqData.Category,
	}
	if reqData.Location != nil {
		body["location"] = fromPoint(*reqData.Location)
	}
	if len(reqData.Media) > 0 {
		media := make([]wireMedia, len(reqData.Media))
		for i, m := range reqData.Media {
			media[i] = wireMedia{URL: m.URL, Type: m.Type}
		}
		body["media"] = media
	}

	var w wireNews
	if err := c.do(ctx, http.MethodPost, "/news", nil, body, &w); err != nil {
		return store.Patch{}, err
	}
	return w.toPatch(store.KindFull), nil
}

// Like toggles the caller's like. The response is authoritative for
// the likes set only.
func (c *Client) Like(ctx context.Context, id string) (store.Patch, error) {
	var w wireNews
	if err := c.do(ctx, http.MethodPost, "/news/"+id+"/like", nil, nil, &w); err != nil {
		return store.Patch{}, err
	}
	return w.toPatch(store.KindLike), nil
}

// Verify records the caller's verification with their coordinates.
func (c *Client) Verify(ctx context.Context, id string, at news.GeoPoint) (store.Patch, error) {
	body := map[string]any{"coordinates": fromPoint(at)}
	var w wireNews
	if err := c.do(ctx, http.MethodPost, "/news/"+id+"/verify", nil, body, &w); err != nil {
		return store.Patch{}, err
	}
	return w.toPatch(store.KindVerify), nil
}

// Flag records the caller's flag with a reason.
func (c *Client) Flag(ctx context.Context, id, reason string) (store.Patch, error) {
	body := map[string]string{"reason": reason}
	var w wireNews
	if err := c.do(ctx, http.MethodPost, "/news/"+id+"/flag", nil, body, &w); err != nil {
		return store.Patch{}, err
	}
	return w.toPatch(store.KindFlag), nil
}

// AddComment posts a comment and returns the server-assigned record.
func (c *Client) AddComment(ctx context.Context, id, content string) (news.Comment, error) {
	body := map[string]string{"content": content}
	var w wireComment
	if err := c.do(ctx, http.MethodPost, "/news/"+id+"/comments", nil, body, &w); err != nil {
		return news.Comment{}, err
	}
	return w.toComment(), nil
}

// Comments retrieves the comment list as a patch authoritative for
// comments only.
func (c *Client) Comments(ctx context.Context, id string) (store.Patch, error) {
	var comments []wireComment
	if err := c.do(ctx, http.MethodGet, "/news/"+id+"/comments", nil, nil, &comments); err != nil {
		return store.Patch{}, err
	}
	p := store.Patch{Kind: store.KindComments, ID: id, Comments: make([]news.Comment, len(comments))}
	for i, cm := range comments {
		p.Comments[i] = cm.toComment()
	}
	return p, nil
}

// Login authenticates and returns the token plus profile.
func (c *Client) Login(ctx context.Context, email, password string) (string, User, error) {
	body := map[string]string{"email": email, "password": password}
	var resp authResponse
	if err := c.do(ctx, http.MethodPost, "/users/login", nil, body, &resp); err != nil {
		return "", User{}, err
	}
	return resp.Token, resp.User, nil
}

// Register creates an account and returns the token plus profile.
func (c *Client) Register(ctx context.Context, username, email, password string) (string, User, error) {
	body := map[string]string{"username": username, "email": email, "password": password}
	var resp authResponse
	if err := c.do(ctx, http.MethodPost, "/users/register", nil, body, &resp); err != nil {
		return "", User{}, err
	}
	return resp.Token, resp.User, nil
}

// UpdateLocation reports the user's current position to the backend.
func (c *Client) UpdateLocation(ctx context.Context, at news.GeoPoint) error {
	return c.do(ctx, http.MethodPatch, "/users/location", nil, fromPoint(at), nil)
}
