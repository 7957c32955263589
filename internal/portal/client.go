package portal

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"

	"github.com/vagabot/vagabot/internal/model"
)

// Ensure Client implements model.ListingFetcher.
var _ model.ListingFetcher = (*Client)(nil)

// Params describes the two portal endpoints and what to send to them.
type Params struct {
	LoginURL      string
	ListingURL    string
	Credentials   map[string]string // login form fields
	ListingParams map[string]string // query parameters for the listing request
	Timeout       time.Duration
}

// Client performs one authenticated listing fetch per FetchListing call.
type Client struct {
	params    Params
	transport http.RoundTripper
}

// NewClient creates a portal client. transport may be nil to use the default.
func NewClient(params Params, transport http.RoundTripper) *Client {
	if params.Timeout <= 0 {
		params.Timeout = 30 * time.Second
	}
	return &Client{params: params, transport: transport}
}

// FetchListing opens a fresh session, logs in and requests the listing page.
// The session lives only for this call. When the client owns the transport,
// its idle connections are dropped on every return path.
func (c *Client) FetchListing(ctx context.Context) (string, error) {
	sess, err := c.newSession()
	if err != nil {
		return "", err
	}
	if c.transport == nil {
		defer sess.CloseIdleConnections()
	}

	if err := c.login(ctx, sess); err != nil {
		return "", err
	}
	return c.listing(ctx, sess)
}

func (c *Client) newSession() (*http.Client, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("portal session: %w", err)
	}
	transport := c.transport
	if transport == nil {
		// Private pool, so closing it never touches http.DefaultTransport.
		transport = http.DefaultTransport.(*http.Transport).Clone()
	}
	return &http.Client{Jar: jar, Timeout: c.params.Timeout, Transport: transport}, nil
}

func (c *Client) login(ctx context.Context, sess *http.Client) error {
	form := url.Values{}
	for k, v := range c.params.Credentials {
		form.Set(k, v)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.params.LoginURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("portal login: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := sess.Do(req)
	if err != nil {
		return fmt.Errorf("portal login: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if !ok(resp.StatusCode) {
		return &model.HTTPError{
			Stage:      "login",
			StatusCode: resp.StatusCode,
		}
	}
	return nil
}

func (c *Client) listing(ctx context.Context, sess *http.Client) (string, error) {
	u, err := url.Parse(c.params.ListingURL)
	if err != nil {
		return "", fmt.Errorf("portal listing url: %w", err)
	}
	q := u.Query()
	for k, v := range c.params.ListingParams {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", fmt.Errorf("portal listing: %w", err)
	}

	resp, err := sess.Do(req)
	if err != nil {
		return "", fmt.Errorf("portal listing: %w", err)
	}
	defer resp.Body.Close()

	if !ok(resp.StatusCode) {
		_, _ = io.Copy(io.Discard, resp.Body)
		return "", &model.HTTPError{
			Stage:      "listing",
			StatusCode: resp.StatusCode,
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("portal listing body: %w", err)
	}
	return string(body), nil
}

func ok(status int) bool { return status >= 200 && status < 300 }
