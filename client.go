package bzgate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultHTTPTimeout = 30 * time.Second

// Client is the boundary to the bug tracker. Authentication and transport
// are the client's problem; the rest of the package only ever asks for one
// bug at a time.
type Client interface {
	FetchBug(ctx context.Context, id int) (*RawBug, error)
	// ShowBugURL returns the human-viewable page for a bug, for skip and
	// xfail reasons.
	ShowBugURL(id int) string
}

// RESTClient talks to the Bugzilla REST API (the /rest/bug endpoint).
type RESTClient struct {
	base       string
	apiKey     string
	username   string
	password   string
	httpClient *http.Client
}

// NewRESTClient builds a client for cfg.URL. The URL may be given in the
// legacy xmlrpc.cgi form; it is normalized to the instance root either way.
func NewRESTClient(cfg Config) *RESTClient {
	timeout := defaultHTTPTimeout
	if cfg.HTTPTimeoutSeconds > 0 {
		timeout = time.Duration(cfg.HTTPTimeoutSeconds) * time.Second
	}
	return &RESTClient{
		base:       normalizeEndpoint(cfg.URL),
		apiKey:     cfg.APIKey,
		username:   cfg.Username,
		password:   cfg.Password,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// normalizeEndpoint reduces a configured Bugzilla URL to the instance root,
// accepting the xmlrpc.cgi and rest forms that show up in older configs.
func normalizeEndpoint(raw string) string {
	s := strings.TrimRight(raw, "/")
	for _, suffix := range []string{"/xmlrpc.cgi", "/rest", "/rest.cgi"} {
		s = strings.TrimSuffix(s, suffix)
	}
	return s
}

type bugListResponse struct {
	Bugs []*RawBug `json:"bugs"`
}

func (c *RESTClient) FetchBug(ctx context.Context, id int) (*RawBug, error) {
	apiURL := fmt.Sprintf("%s/rest/bug/%d", c.base, id)
	if params := c.authParams(); params != "" {
		apiURL += "?" + params
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}

	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bugzilla returned %d for bug %d: %s", resp.StatusCode, id, string(body))
	}

	var result bugListResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("parsing response for bug %d: %w", id, err)
	}
	if len(result.Bugs) == 0 {
		return nil, fmt.Errorf("bugzilla returned no record for bug %d", id)
	}
	return result.Bugs[0], nil
}

func (c *RESTClient) authParams() string {
	v := url.Values{}
	switch {
	case c.apiKey != "":
		v.Set("api_key", c.apiKey)
	case c.username != "":
		v.Set("login", c.username)
		v.Set("password", c.password)
	}
	return v.Encode()
}

func (c *RESTClient) ShowBugURL(id int) string {
	return fmt.Sprintf("%s/show_bug.cgi?id=%d", c.base, id)
}
