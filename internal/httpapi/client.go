// Package httpapi is the authenticated JSON-over-HTTPS client shared by the
// REST backends. It owns query merging, rate-limit header observation, and
// the mapping from HTTP status codes to the importer error taxonomy.
package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/vcsync/vcsync/internal/remote"
)

// DefaultRateLimitWarnThreshold is the remaining-request count below which
// rate-limit headers are logged at WARN instead of DEBUG.
const DefaultRateLimitWarnThreshold = 10

// Config configures a Client.
type Config struct {
	// BaseURL is the API root, e.g. "https://api.github.com".
	BaseURL string
	// Token is the access token; empty means unauthenticated requests.
	Token string
	// AuthHeader overrides bearer auth with an explicit header name whose
	// value is "<AuthScheme> <token>" (e.g. Gitea's "Authorization: token x").
	// When empty and a token is present, an oauth2 bearer transport is used.
	AuthHeader string
	// AuthScheme is the scheme word used with AuthHeader. Defaults to "token".
	AuthScheme string
	// RateLimitWarnThreshold overrides DefaultRateLimitWarnThreshold.
	RateLimitWarnThreshold int
	// Logger defaults to zap.NewNop().
	Logger *zap.Logger
	// HTTPClient overrides the underlying client, mainly for tests.
	HTTPClient *http.Client
}

// Client performs authenticated GET requests against one API base URL.
type Client struct {
	baseURL    string
	token      string
	authHeader string
	authScheme string
	warnBelow  int
	logger     *zap.Logger
	httpClient *http.Client
}

// New builds a Client. Supplying a token alongside a non-HTTPS base URL logs
// a warning naming the host; the request still proceeds.
func New(cfg Config) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	warnBelow := cfg.RateLimitWarnThreshold
	if warnBelow <= 0 {
		warnBelow = DefaultRateLimitWarnThreshold
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		if cfg.Token != "" && cfg.AuthHeader == "" {
			ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token})
			httpClient = oauth2.NewClient(context.Background(), ts)
		} else {
			httpClient = &http.Client{Timeout: 30 * time.Second}
		}
	}
	if cfg.Token != "" {
		if u, err := url.Parse(cfg.BaseURL); err == nil && u.Scheme != "https" {
			logger.Warn("token supplied over non-HTTPS base URL",
				zap.String("host", u.Host),
				zap.String("scheme", u.Scheme))
		}
	}
	authScheme := cfg.AuthScheme
	if authScheme == "" {
		authScheme = "token"
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		token:      cfg.Token,
		authHeader: cfg.AuthHeader,
		authScheme: authScheme,
		warnBelow:  warnBelow,
		logger:     logger,
		httpClient: httpClient,
	}
}

// Get requests endpoint (a path, optionally already carrying a query string)
// with params merged in, decodes the body as JSON, and returns it with the
// response headers. Failures are returned as importer errors for service.
func (c *Client) Get(ctx context.Context, endpoint string, params url.Values, service string) (json.RawMessage, http.Header, error) {
	reqURL, err := c.buildURL(endpoint, params)
	if err != nil {
		return nil, nil, remote.WrapError(remote.KindConfiguration, service, err, "invalid endpoint %q", endpoint)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, nil, remote.WrapError(remote.KindConfiguration, service, err, "building request")
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" && c.authHeader != "" {
		req.Header.Set(c.authHeader, c.authScheme+" "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, remote.WrapError(remote.KindServiceUnavailable, service, err, "service unavailable")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, remote.WrapError(remote.KindServiceUnavailable, service, err, "service unavailable")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, nil, handleHTTPError(resp.StatusCode, body, service)
	}

	c.observeRateLimit(resp.Header, service)

	var decoded json.RawMessage
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, nil, remote.WrapError(remote.KindServiceUnavailable, service, err, "service unavailable")
	}
	return decoded, resp.Header, nil
}

// buildURL joins the base URL with endpoint and merges params into whatever
// query string the endpoint already carries. Path segments the caller has
// percent-encoded (GitLab subgroups) pass through untouched.
func (c *Client) buildURL(endpoint string, params url.Values) (string, error) {
	path, rawQuery, _ := strings.Cut(endpoint, "?")
	query, err := url.ParseQuery(rawQuery)
	if err != nil {
		return "", fmt.Errorf("parsing query of %q: %w", endpoint, err)
	}
	for key, values := range params {
		for _, v := range values {
			query.Set(key, v)
		}
	}
	full := c.baseURL + path
	if len(query) == 0 {
		return full, nil
	}
	return full + "?" + query.Encode(), nil
}

// observeRateLimit logs the standard rate-limit headers when both parse as
// integers; otherwise it stays silent.
func (c *Client) observeRateLimit(headers http.Header, service string) {
	remaining, err := strconv.Atoi(headers.Get("x-ratelimit-remaining"))
	if err != nil {
		return
	}
	limit, err := strconv.Atoi(headers.Get("x-ratelimit-limit"))
	if err != nil {
		return
	}
	fields := []zap.Field{
		zap.String("service", service),
		zap.Int("remaining", remaining),
		zap.Int("limit", limit),
	}
	if remaining < c.warnBelow {
		c.logger.Warn("rate limit nearly exhausted", fields...)
	} else {
		c.logger.Debug("rate limit", fields...)
	}
}
