package session

import (
	"context"
	"fmt"

	"github.com/airlink-io/nodectl/internal/api"
	"github.com/airlink-io/nodectl/internal/config"
	"github.com/airlink-io/nodectl/pkg/options"
)

// Session is the opaque authenticated context for one CLI invocation.
// It is created once, reused across all requests and never mutated
// mid-workflow.
type Session struct {
	userName string
	tokens   config.Tokens
	client   *api.Client
}

var _ api.TokenProvider = (*Session)(nil)

// New loads the stored credentials and builds an authenticated API client.
// It fails with config.ErrNotLoggedIn when no session has been established.
func New(store *config.Store, opts *options.APIOptions) (*Session, error) {
	tokens, err := store.Tokens()
	if err != nil {
		return nil, err
	}

	s := &Session{
		userName: store.UserName(),
		tokens:   tokens,
	}

	client, err := api.NewClient(opts, s)
	if err != nil {
		return nil, fmt.Errorf("failed to build api client: %w", err)
	}
	s.client = client

	return s, nil
}

// AuthToken returns the bearer token attached to every request.
func (s *Session) AuthToken() (string, error) {
	if s.tokens.Access == "" {
		return "", config.ErrNotLoggedIn
	}
	return s.tokens.Access, nil
}

// UserName returns the logged-in user name.
func (s *Session) UserName() string {
	return s.userName
}

// Client returns the authenticated API client bound to this session.
func (s *Session) Client() *api.Client {
	return s.client
}

// MQTTHost returns the MQTT endpoint advertised by the cloud API.
// The endpoint lives outside the versioned API prefix.
func (s *Session) MQTTHost(ctx context.Context) (string, error) {
	var resp struct {
		Host string `json:"mqtt_host"`
	}
	if err := s.client.GetUnversioned(ctx, "mqtt_host", &resp); err != nil {
		return "", err
	}
	if resp.Host == "" {
		return "", fmt.Errorf("cloud did not advertise an mqtt host")
	}
	return resp.Host, nil
}
