package api

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/airlink-io/nodectl/pkg/log"
	"github.com/airlink-io/nodectl/pkg/options"
)

// TokenProvider supplies the bearer token attached to every request.
// The session layer implements it.
type TokenProvider interface {
	AuthToken() (string, error)
}

// Client issues authenticated JSON requests against the cloud API.
type Client struct {
	baseURL    string // endpoint including version, trailing slash
	rootURL    string // endpoint without version, for unversioned paths
	httpClient *http.Client
	tokens     TokenProvider
	log        log.Logger
}

// NewClient builds a Client from the given options. tokens may be nil for
// endpoints that do not require authentication (login, mqtt_host).
func NewClient(opts *options.APIOptions, tokens TokenProvider) (*Client, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()

	if opts.CACertFile != "" {
		pem, err := os.ReadFile(opts.CACertFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA bundle: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("no certificates found in %s", opts.CACertFile)
		}
		transport.TLSClientConfig = &tls.Config{RootCAs: pool}
	}

	root := strings.TrimSuffix(opts.Endpoint, "/") + "/"

	return &Client{
		baseURL: root + strings.Trim(opts.Version, "/") + "/",
		rootURL: root,
		httpClient: &http.Client{
			Timeout:   opts.Timeout,
			Transport: transport,
		},
		tokens: tokens,
		log:    log.WithName("api"),
	}, nil
}

// GetJSON issues a GET against a versioned API path and decodes the response.
func (c *Client) GetJSON(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, c.baseURL+path, query, nil, out)
}

// PostJSON issues a POST with a JSON body against a versioned API path.
func (c *Client) PostJSON(ctx context.Context, path string, query url.Values, body, out any) error {
	return c.do(ctx, http.MethodPost, c.baseURL+path, query, body, out)
}

// PutJSON issues a PUT with a JSON body against a versioned API path.
func (c *Client) PutJSON(ctx context.Context, path string, query url.Values, body, out any) error {
	return c.do(ctx, http.MethodPut, c.baseURL+path, query, body, out)
}

// GetUnversioned issues a GET against a path below the API root, outside the
// versioned prefix. Used for endpoint discovery (e.g. the MQTT host).
func (c *Client) GetUnversioned(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, c.rootURL+path, nil, nil, out)
}

func (c *Client) do(ctx context.Context, method, rawURL string, query url.Values, body, out any) error {
	op := fmt.Sprintf("%s %s", method, rawURL)

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return Fatal(op, fmt.Errorf("failed to encode request body: %w", err))
		}
		reader = bytes.NewReader(data)
	}

	if len(query) > 0 {
		rawURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return Fatal(op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.tokens != nil {
		token, err := c.tokens.AuthToken()
		if err != nil {
			return Fatal(op, fmt.Errorf("no usable session token: %w", err))
		}
		req.Header.Set("Authorization", token)
	}

	c.log.Debug("Sending request", "method", method, "url", rawURL)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return classify(op, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return classify(op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Error{
			Kind:   KindFatal,
			Op:     op,
			Status: resp.StatusCode,
			Err:    fmt.Errorf("api error: %s", strings.TrimSpace(string(payload))),
		}
	}

	if out == nil {
		return nil
	}

	if err := json.Unmarshal(payload, out); err != nil {
		return Fatal(op, fmt.Errorf("failed to decode response body: %w", err))
	}

	return nil
}
