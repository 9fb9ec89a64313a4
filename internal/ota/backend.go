package ota

import (
	"context"

	"github.com/airlink-io/nodectl/internal/config"
	"github.com/airlink-io/nodectl/internal/node"
	"github.com/airlink-io/nodectl/internal/session"
	"github.com/airlink-io/nodectl/pkg/options"
)

// cloudBackend adapts the session and node packages to the orchestrator's
// collaborator interfaces.
type cloudBackend struct {
	store *config.Store
	opts  *options.APIOptions
}

// NewCloudBackend returns the production Backend over the cloud API.
func NewCloudBackend(store *config.Store, opts *options.APIOptions) Backend {
	return &cloudBackend{store: store, opts: opts}
}

func (b *cloudBackend) NewSession(ctx context.Context) (Session, error) {
	s, err := session.New(b.store, b.opts)
	if err != nil {
		return nil, err
	}
	return &cloudSession{sess: s}, nil
}

type cloudSession struct {
	sess *session.Session
}

func (c *cloudSession) Node(ctx context.Context, id string) (Node, error) {
	n, err := node.New(id, c.sess)
	if err != nil {
		return nil, err
	}
	return n, nil
}
