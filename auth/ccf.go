package auth

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/go-json-experiment/json"
	"golang.org/x/oauth2"
)

// OsuEndpoint is the osu! OAuth2 endpoint.
var OsuEndpoint = oauth2.Endpoint{
	AuthURL:   "https://osu.ppy.sh/oauth/authorize",
	TokenURL:  "https://osu.ppy.sh/oauth/token",
	AuthStyle: oauth2.AuthStyleInParams,
}

type ccf struct {
	mu  sync.Mutex
	cur *oauth2.Token

	cfg    oauth2.Config
	client *http.Client
}

// ClientCredentialsFlow creates a TokenSource which retrieves tokens through
// the client credentials grant flow.
// If client is nil, [http.DefaultClient] is used instead.
// Note that the client credentials flow does not have refresh tokens, so the
// tokens are not stored across processes.
func ClientCredentialsFlow(cfg oauth2.Config, client *http.Client) TokenSource {
	if client == nil {
		client = http.DefaultClient
	}
	return &ccf{
		cfg:    cfg,
		client: client,
	}
}

// Token retrieves a token value, starting a new flow if the current one has
// expired.
// The result is always non-nil if the error is nil.
func (c *ccf) Token(ctx context.Context) (*oauth2.Token, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cur.Valid() {
		return c.cur, nil
	}
	return c.flowLocked(ctx)
}

// Refresh forces a refresh of the token if its current value is identical
// to old in the sense of [Equal].
// The result is the refreshed token.
func (c *ccf) Refresh(ctx context.Context, old *oauth2.Token) (*oauth2.Token, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !Equal(c.cur, old) {
		return c.cur, nil
	}
	return c.flowLocked(ctx)
}

func (c *ccf) flowLocked(ctx context.Context) (*oauth2.Token, error) {
	v := url.Values{
		"client_id":     {c.cfg.ClientID},
		"client_secret": {c.cfg.ClientSecret},
		"grant_type":    {"client_credentials"},
		"scope":         {strings.Join(c.cfg.Scopes, " ")},
	}
	slog.LogAttrs(ctx, slog.LevelDebug-4, "ccf refresh ### THIS MESSAGE CONTAINS SECRETS ###", slog.Any("values", v))
	req, err := http.NewRequestWithContext(ctx, "POST", c.cfg.Endpoint.TokenURL, strings.NewReader(v.Encode()))
	if err != nil {
		return nil, fmt.Errorf("couldn't create client credentials request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	now := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("client credentials request failed: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("couldn't read token response body: %w", err)
	}
	var d struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
		ExpiresIn   int64  `json:"expires_in"`
		Error       string `json:"error"`
		Message     string `json:"message"`
	}
	if err := json.Unmarshal(body, &d); err != nil {
		return nil, fmt.Errorf("couldn't decode token response: %w", err)
	}
	slog.InfoContext(ctx, "client credentials", slog.Int("status", resp.StatusCode), slog.Int64("expires_in", d.ExpiresIn))
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("token request failed: %s %s (%s)", d.Error, d.Message, resp.Status)
	}
	tok := &oauth2.Token{
		AccessToken: d.AccessToken,
		TokenType:   d.TokenType,
		ExpiresIn:   d.ExpiresIn,
	}
	if d.ExpiresIn > 0 {
		tok.Expiry = now.Add(time.Duration(d.ExpiresIn) * time.Second)
	}
	c.cur = tok
	return c.cur, nil
}
