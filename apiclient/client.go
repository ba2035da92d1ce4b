package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	apperrors "github.com/jrsteele09/go-pos-client/internal/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

const (
	contentTypeJSON = "application/json; charset=utf-8"
	requestIDHeader = "X-Request-ID"
)

// TokenSource supplies the stored access token. A nil token means the request
// is sent without credentials.
type TokenSource interface {
	AccessToken(ctx context.Context) (*oauth2.Token, error)
}

// Client sends JSON requests to the shop API, attaching the stored bearer
// token when there is one. Requests are never retried.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
}

// New builds a Client for baseURL. A nil httpClient uses http.DefaultClient
// and a nil tokens source sends every request unauthenticated.
func New(baseURL string, httpClient *http.Client, tokens TokenSource) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		tokens:  tokens,
	}
}

// Response is the outcome of a request that reached the server, whatever its
// status.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// OK reports a 2xx status.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Decode parses the JSON body into v.
func (r *Response) Decode(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("[apiclient Decode] %w: %w", apperrors.ErrParse, err)
	}
	return nil
}

// Err returns an *errors.HTTPError for non-2xx responses and nil otherwise.
func (r *Response) Err() error {
	if r.OK() {
		return nil
	}
	return &apperrors.HTTPError{StatusCode: r.StatusCode, Body: r.Body}
}

// Get fetches path with the encoded query and decodes the JSON body into out.
// Non-2xx statuses are returned as *errors.HTTPError.
func (c *Client) Get(ctx context.Context, path string, query Params, out any) error {
	resp, err := c.do(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return err
	}
	if err := resp.Err(); err != nil {
		return fmt.Errorf("[apiclient Get] %s: %w", path, err)
	}
	if out == nil {
		return nil
	}
	return resp.Decode(out)
}

// Post sends body as JSON. Any response that arrives is returned, so the
// caller decides what each status means; only transport failures are errors.
func (c *Client) Post(ctx context.Context, path string, body any) (*Response, error) {
	return c.do(ctx, http.MethodPost, path, nil, body)
}

func (c *Client) do(ctx context.Context, method, path string, query Params, body any) (*Response, error) {
	url := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if encoded := query.Encode(); encoded != "" {
		url += "?" + encoded
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("[apiclient %s] encode body: %w", method, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("[apiclient %s] build request: %w", method, err)
	}
	requestID := uuid.New().String()
	req.Header.Set("Accept", "application/json")
	req.Header.Set(requestIDHeader, requestID)
	if body != nil {
		req.Header.Set("Content-Type", contentTypeJSON)
	}
	c.authorise(ctx, req)

	start := time.Now()
	httpResp, err := c.http.Do(req)
	if err != nil {
		log.Debug().Err(err).Str("request_id", requestID).Str("method", method).Str("path", path).Msg("api request failed")
		return nil, fmt.Errorf("[apiclient %s] %s: %w: %w", method, path, apperrors.ErrNetwork, err)
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("[apiclient %s] %s read body: %w: %w", method, path, apperrors.ErrNetwork, err)
	}

	log.Debug().
		Str("request_id", requestID).
		Str("method", method).
		Str("path", path).
		Int("status", httpResp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("api request")

	return &Response{StatusCode: httpResp.StatusCode, Header: httpResp.Header, Body: data}, nil
}

func (c *Client) authorise(ctx context.Context, req *http.Request) {
	if c.tokens == nil {
		return
	}
	tok, err := c.tokens.AccessToken(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("reading access token, sending request without credentials")
		return
	}
	if tok == nil || tok.AccessToken == "" {
		return
	}
	tok.SetAuthHeader(req)
}
