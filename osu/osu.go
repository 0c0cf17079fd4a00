// Package osu is a thin client for the osu! API v2.
package osu

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-json-experiment/json"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/zephyrtronium/bathbot/auth"
	"github.com/zephyrtronium/bathbot/metrics"
)

var (
	// ErrNeedRefresh is an error indicating that the access token needs to be
	// refreshed. It must be checked using [errors.Is].
	ErrNeedRefresh = errors.New("need refresh")
	// ErrNotFound is an error indicating that the requested resource does not
	// exist. It must be checked using [errors.Is].
	ErrNotFound = errors.New("not found")
)

// DefaultBase is the osu! API v2 base URL.
const DefaultBase = "https://osu.ppy.sh/api/v2/"

// Client holds the context for requests to the osu! API.
type Client struct {
	// HTTP is the HTTP client for performing requests.
	// If nil, http.DefaultClient is used.
	HTTP *http.Client
	// Tokens is the source of access tokens.
	Tokens auth.TokenSource
	// Rate limits requests. If nil, requests are unlimited.
	Rate *rate.Limiter
	// Base is the API base URL. If empty, DefaultBase is used.
	Base string
	// Latency observes request times in seconds by endpoint. May be nil.
	Latency metrics.Observer
}

// reqjson performs an authorized GET request and decodes the response as JSON.
// The response body is truncated to 2 MB. An unauthorized response refreshes
// the access token and retries once.
func reqjson[Resp any](ctx context.Context, client *Client, endpoint, url string, u *Resp) error {
	if client.Rate != nil {
		if err := client.Rate.Wait(ctx); err != nil {
			return fmt.Errorf("couldn't wait for rate limit: %w", err)
		}
	}
	tok, err := client.Tokens.Token(ctx)
	if err != nil {
		return fmt.Errorf("couldn't get access token: %w", err)
	}
	err = reqonce(ctx, client, tok, endpoint, url, u)
	if !errors.Is(err, ErrNeedRefresh) {
		return err
	}
	tok, err = client.Tokens.Refresh(ctx, tok)
	if err != nil {
		return fmt.Errorf("couldn't refresh access token: %w", err)
	}
	return reqonce(ctx, client, tok, endpoint, url, u)
}

func reqonce[Resp any](ctx context.Context, client *Client, tok *oauth2.Token, endpoint, url string, u *Resp) error {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return fmt.Errorf("couldn't make request: %w", err)
	}
	tok.SetAuthHeader(req)
	req.Header.Set("Accept", "application/json")
	hc := client.HTTP
	if hc == nil {
		hc = http.DefaultClient
	}
	start := time.Now()
	resp, err := hc.Do(req)
	if client.Latency != nil {
		client.Latency.Observe(time.Since(start).Seconds(), endpoint)
	}
	if err != nil {
		return fmt.Errorf("couldn't GET %s: %w", endpoint, err)
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	if err != nil {
		return fmt.Errorf("couldn't read response: %w", err)
	}
	switch resp.StatusCode {
	case http.StatusOK: // do nothing
	case http.StatusUnauthorized:
		return fmt.Errorf("request failed: %s (%w)", b, ErrNeedRefresh)
	case http.StatusNotFound:
		return fmt.Errorf("%s: %w", endpoint, ErrNotFound)
	default:
		return fmt.Errorf("request failed: %s (%s)", b, resp.Status)
	}
	if err := json.Unmarshal(b, u); err != nil {
		return fmt.Errorf("couldn't decode JSON response: %w", err)
	}
	return nil
}

// apiurl creates an API URL for the given endpoint and with the given URL
// parameters.
func (c *Client) apiurl(ep string, values url.Values) string {
	base := c.Base
	if base == "" {
		base = DefaultBase
	}
	u, err := url.JoinPath(base, ep)
	if err != nil {
		panic("osu: bad url join with " + ep)
	}
	if len(values) == 0 {
		return u
	}
	return u + "?" + values.Encode()
}

func itoa(n int64) string { return strconv.FormatInt(n, 10) }
